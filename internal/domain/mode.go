package domain

import (
	"fmt"
	"strings"
)

// Mode is the interaction state of the shortcut grid.
type Mode int

const (
	// ModeNormal opens shortcuts on activation.
	ModeNormal Mode = iota
	// ModeEdit opens the edit dialog on activation.
	ModeEdit
	// ModeDelete opens the delete confirmation on activation.
	ModeDelete
)

// String returns the wire name of the mode.
func (m Mode) String() string {
	switch m {
	case ModeEdit:
		return "edit"
	case ModeDelete:
		return "delete"
	default:
		return "normal"
	}
}

// ModeEvent is a user action that drives mode transitions.
type ModeEvent string

const (
	EventEnterEdit   ModeEvent = "edit"
	EventEnterDelete ModeEvent = "delete"
	EventDone        ModeEvent = "done"
)

// ParseModeEvent parses a user action name.
func ParseModeEvent(s string) (ModeEvent, error) {
	switch ev := ModeEvent(strings.ToLower(strings.TrimSpace(s))); ev {
	case EventEnterEdit, EventEnterDelete, EventDone:
		return ev, nil
	default:
		return "", fmt.Errorf("unknown mode event %q", s)
	}
}

// Transition returns the mode reached from m on ev.
// Done always lands on Normal. Edit and Delete may be entered from any
// mode; switching directly between them is equivalent to passing
// through Normal.
func (m Mode) Transition(ev ModeEvent) Mode {
	switch ev {
	case EventEnterEdit:
		return ModeEdit
	case EventEnterDelete:
		return ModeDelete
	case EventDone:
		return ModeNormal
	default:
		return m
	}
}
