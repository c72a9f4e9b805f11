// Package form describes the shortcut dialogs once so that every
// presentation (HTML page, terminal UI) renders the same fields, labels
// and buttons.
package form

import (
	"fmt"
	"strings"

	"github.com/MrSnakeDoc/newtab/internal/domain"
)

// Field names shared by all dialogs and read back by submit handlers.
const (
	FieldTitle    = "title"
	FieldURL      = "url"
	FieldCategory = "category"
)

// Kind identifies what a dialog does on submit.
type Kind string

const (
	KindNew    Kind = "new"
	KindEdit   Kind = "edit"
	KindDelete Kind = "delete"
)

// Field is one labelled text input.
type Field struct {
	Name        string
	Label       string
	Value       string
	Placeholder string
	Suggestions []string // offered as a datalist / completion source
}

// Dialog is a modal form.
type Dialog struct {
	Kind        Kind
	Index       int // stored index the dialog acts on, -1 for new shortcuts
	Title       string
	Message     string // free text shown above the fields
	Subject     string // emphasized part of Message (the shortcut name)
	Fields      []Field
	SubmitLabel string
	CancelLabel string
	Action      string // form POST target
	Danger      bool   // submit is destructive
	Error       string // validation message from the last submit
}

// NewShortcut builds the "New Shortcut" dialog. categories feeds the
// category field's suggestions.
func NewShortcut(categories []string) Dialog {
	return Dialog{
		Kind:  KindNew,
		Index: -1,
		Title: "New Shortcut",
		Fields: []Field{
			{Name: FieldTitle, Label: "Title:"},
			{Name: FieldURL, Label: "URL:", Placeholder: "example.com"},
			{Name: FieldCategory, Label: "Category:", Placeholder: "optional", Suggestions: categories},
		},
		SubmitLabel: "Save",
		CancelLabel: "Cancel",
		Action:      "/shortcuts",
	}
}

// EditShortcut builds the "Edit Shortcut" dialog prefilled from rec.
func EditShortcut(index int, rec domain.Shortcut, categories []string) Dialog {
	return Dialog{
		Kind:  KindEdit,
		Index: index,
		Title: "Edit Shortcut",
		Fields: []Field{
			{Name: FieldTitle, Label: "Title:", Value: rec.Name},
			{Name: FieldURL, Label: "URL:", Value: rec.URL},
			{Name: FieldCategory, Label: "Category:", Value: rec.Category, Placeholder: "optional", Suggestions: categories},
		},
		SubmitLabel: "Save",
		CancelLabel: "Cancel",
		Action:      fmt.Sprintf("/shortcuts/%d", index),
	}
}

// ConfirmDelete builds the delete confirmation for rec. It has no fields.
func ConfirmDelete(index int, rec domain.Shortcut) Dialog {
	return Dialog{
		Kind:        KindDelete,
		Index:       index,
		Title:       "Delete Shortcut",
		Message:     "Are you sure you want to delete",
		Subject:     rec.Name,
		SubmitLabel: "Delete",
		CancelLabel: "Cancel",
		Action:      fmt.Sprintf("/shortcuts/%d/delete", index),
		Danger:      true,
	}
}

// Value returns the current value of the named field.
func (d Dialog) Value(name string) string {
	for _, f := range d.Fields {
		if f.Name == name {
			return f.Value
		}
	}
	return ""
}

// Fill returns a copy of d with field values taken from get (typically
// url.Values.Get or a map lookup). Values are kept as typed, so a dialog
// re-rendered after a failed submit shows the user's own input.
func (d Dialog) Fill(get func(name string) string) Dialog {
	fields := make([]Field, len(d.Fields))
	copy(fields, d.Fields)
	for i := range fields {
		fields[i].Value = get(fields[i].Name)
	}
	d.Fields = fields
	return d
}

// WithError returns a copy of d carrying a validation message.
func (d Dialog) WithError(err error) Dialog {
	if err != nil {
		d.Error = err.Error()
	}
	return d
}

// Prompt renders the confirmation sentence as plain text.
func (d Dialog) Prompt() string {
	if d.Subject == "" {
		return d.Message
	}
	return fmt.Sprintf("%s %q?", strings.TrimSpace(d.Message), d.Subject)
}
