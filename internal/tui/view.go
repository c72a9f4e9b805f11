package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/MrSnakeDoc/newtab/internal/domain"
	"github.com/MrSnakeDoc/newtab/internal/form"
)

func (m Model) View() string {
	var b strings.Builder

	left := clockStyle.Render(domain.FormatClock(m.now)) + "  " + dimStyle.Render(domain.FormatDate(m.now))
	right := m.reading.Temperature + " " + dimStyle.Render(m.reading.Location)
	b.WriteString(spread(left, right, m.width))
	b.WriteString("\n\n")

	snap := m.opts.Session.Snapshot()
	b.WriteString(dimStyle.Render(fmt.Sprintf("category: %s · sort: %s · mode: %s", snap.Category, snap.Sort, snap.Mode)))
	b.WriteString("\n\n")

	if len(m.entries) == 0 {
		b.WriteString(dimStyle.Render("  no shortcuts"))
		b.WriteString("\n")
	}
	for i, e := range m.entries {
		line := fmt.Sprintf("%-24s %s", e.Shortcut.Name, dimStyle.Render(e.Shortcut.URL))
		if e.Shortcut.Clicks > 0 {
			line += dimStyle.Render(" · " + humanize.Comma(e.Shortcut.Clicks))
		}
		if i == m.cursor {
			b.WriteString(cursorStyle.Render("> ") + modeStyle(snap.Mode).Render(line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}

	if m.dialog != nil {
		b.WriteString("\n")
		b.WriteString(m.renderDialog())
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(barStyle.Render(bar(snap.Mode)))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.status))
	return b.String()
}

func modeStyle(mode domain.Mode) lipgloss.Style {
	switch mode {
	case domain.ModeEdit:
		return editStyle
	case domain.ModeDelete:
		return deleteStyle
	default:
		return lipgloss.NewStyle()
	}
}

func bar(mode domain.Mode) string {
	if mode == domain.ModeNormal {
		return "a Add   e Edit   d Delete"
	}
	return "esc DONE"
}

func (m Model) renderDialog() string {
	d := m.dialog

	var b strings.Builder
	b.WriteString(titleStyle.Render(d.Title))
	b.WriteString("\n")

	if d.Kind == form.KindDelete {
		b.WriteString("\n" + d.Prompt() + "\n\n")
		b.WriteString(dimStyle.Render("y " + d.SubmitLabel + " · n " + d.CancelLabel))
		return dangerBorder.Render(b.String())
	}

	for i, f := range d.Fields {
		b.WriteString("\n" + f.Label + "\n")
		b.WriteString(m.inputs[i].View())
		b.WriteString("\n")
	}
	if d.Error != "" {
		b.WriteString("\n" + errorStyle.Render(d.Error) + "\n")
	}
	b.WriteString("\n" + dimStyle.Render("enter "+d.SubmitLabel+" · esc "+d.CancelLabel+" · tab next field"))
	return dialogStyle.Render(b.String())
}

// spread places left and right on one line of the given width.
func spread(left, right string, width int) string {
	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 2 {
		gap = 2
	}
	return left + strings.Repeat(" ", gap) + right
}
