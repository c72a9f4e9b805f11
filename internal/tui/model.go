// Package tui renders the new tab page in the terminal.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MrSnakeDoc/newtab/internal/domain"
	"github.com/MrSnakeDoc/newtab/internal/form"
	"github.com/MrSnakeDoc/newtab/internal/logger"
	"github.com/MrSnakeDoc/newtab/internal/session"
	"github.com/MrSnakeDoc/newtab/internal/store"
	"github.com/MrSnakeDoc/newtab/internal/weather"
)

const weatherEvery = 10 * time.Minute

type (
	tickMsg    time.Time
	weatherMsg weather.Reading
)

// Options configures a Model. Weather and Open may be nil.
type Options struct {
	Store   *store.Store
	Session *session.Session
	Weather *weather.Panel
	Open    func(url string) error
	Now     func() time.Time
	Logger  logger.Logger
}

// Model is the bubbletea model of the shortcut grid.
type Model struct {
	ctx  context.Context
	opts Options

	entries []domain.Entry
	cursor  int

	dialog *form.Dialog
	inputs []textinput.Model
	focus  int

	now     time.Time
	reading weather.Reading
	status  string
	width   int
}

// New builds the model and its first view of the collection.
func New(ctx context.Context, opts Options) Model {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNop()
	}

	m := Model{
		ctx:     ctx,
		opts:    opts,
		now:     opts.Now(),
		reading: weather.Reading{Temperature: domain.TemperaturePlaceholder, Location: domain.LocationPlaceholder},
		status:  "enter open · a add · e edit · d delete · s sort · c category · q quit",
	}
	if opts.Weather != nil {
		m.reading = opts.Weather.Latest()
	}
	m.refresh()
	return m
}

// Run starts the terminal program and blocks until the user quits.
func Run(ctx context.Context, opts Options) error {
	_, err := tea.NewProgram(New(ctx, opts), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(tick(), m.fetchWeather())
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) fetchWeather() tea.Cmd {
	if m.opts.Weather == nil {
		return nil
	}
	panel, ctx := m.opts.Weather, m.ctx
	return func() tea.Msg { return weatherMsg(panel.Refresh(ctx)) }
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.now = m.opts.Now()
		return m, tick()
	case weatherMsg:
		m.reading = weather.Reading(msg)
		return m, tea.Tick(weatherEvery, func(time.Time) tea.Msg { return refreshWeather{} })
	case refreshWeather:
		return m, m.fetchWeather()
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case tea.KeyMsg:
		if m.dialog != nil {
			return m.updateDialog(msg)
		}
		return m.updateGrid(msg.String())
	}
	return m, nil
}

type refreshWeather struct{}

func (m Model) updateGrid(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.entries)-1 {
			m.cursor++
		}
	case "enter":
		return m.activate()
	case "a":
		m.openDialog(form.NewShortcut(m.opts.Store.ListCategories()))
	case "e":
		m.opts.Session.Fire(domain.EventEnterEdit)
	case "d":
		m.opts.Session.Fire(domain.EventEnterDelete)
	case "esc":
		m.opts.Session.Fire(domain.EventDone)
	case "s":
		m.opts.Session.ToggleSort()
		m.refresh()
	case "c":
		m.cycleCategory()
	}
	return m, nil
}

// activate handles enter on the selected tile according to the mode.
func (m Model) activate() (tea.Model, tea.Cmd) {
	e, ok := m.selected()
	if !ok {
		return m, nil
	}

	switch m.opts.Session.Mode() {
	case domain.ModeEdit:
		m.openDialog(form.EditShortcut(e.Index, e.Shortcut, m.opts.Store.ListCategories()))
	case domain.ModeDelete:
		m.openDialog(form.ConfirmDelete(e.Index, e.Shortcut))
	default:
		rec, err := m.opts.Store.RecordActivation(m.ctx, e.Index)
		if err != nil {
			m.opts.Logger.Warn("failed to record activation", logger.Error(err))
			rec = e.Shortcut
		}
		m.status = "Opened " + rec.Name
		if m.opts.Open != nil {
			if err := m.opts.Open(rec.URL); err != nil {
				m.status = "Could not open " + rec.URL
			}
		}
		m.refresh()
	}
	return m, nil
}

func (m Model) selected() (domain.Entry, bool) {
	if m.cursor < 0 || m.cursor >= len(m.entries) {
		return domain.Entry{}, false
	}
	return m.entries[m.cursor], true
}

func (m *Model) cycleCategory() {
	options := append([]string{domain.AllCategories}, m.opts.Store.ListCategories()...)
	current := m.opts.Session.Category()

	next := options[0]
	for i, c := range options {
		if c == current {
			next = options[(i+1)%len(options)]
			break
		}
	}
	m.opts.Session.SetCategory(next)
	m.cursor = 0
	m.refresh()
}

// refresh recomputes the view and keeps the cursor in range.
func (m *Model) refresh() {
	m.opts.Session.ReconcileCategory(m.opts.Store.ListCategories())
	snap := m.opts.Session.Snapshot()
	m.entries = m.opts.Store.View(snap.Sort, snap.Category)
	if m.cursor >= len(m.entries) {
		m.cursor = len(m.entries) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// ─────────────────────────────────────────────────────────────────
// Dialogs
// ─────────────────────────────────────────────────────────────────

func (m *Model) openDialog(d form.Dialog) {
	m.dialog = &d
	m.inputs = make([]textinput.Model, len(d.Fields))
	for i, f := range d.Fields {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Placeholder = f.Placeholder
		ti.CharLimit = 512
		ti.Width = 48
		ti.SetValue(f.Value)
		if f.Suggestions != nil {
			ti.ShowSuggestions = true
			ti.SetSuggestions(f.Suggestions)
		}
		m.inputs[i] = ti
	}
	m.focus = 0
	if len(m.inputs) > 0 {
		m.inputs[0].Focus()
	}
}

func (m *Model) closeDialog() {
	m.dialog = nil
	m.inputs = nil
	m.focus = 0
}

func (m Model) updateDialog(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if m.dialog.Kind == form.KindDelete {
		switch key {
		case "y", "Y", "enter":
			return m.submit()
		case "n", "N", "esc", "q":
			m.closeDialog()
			m.status = "Cancelled"
		}
		return m, nil
	}

	switch key {
	case "esc":
		m.closeDialog()
		m.status = "Cancelled"
		return m, nil
	case "enter":
		return m.submit()
	case "tab", "down":
		m.moveFocus(1)
		return m, nil
	case "shift+tab", "up":
		m.moveFocus(-1)
		return m, nil
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m *Model) moveFocus(delta int) {
	m.inputs[m.focus].Blur()
	m.focus = (m.focus + delta + len(m.inputs)) % len(m.inputs)
	m.inputs[m.focus].Focus()
}

func (m Model) value(name string) string {
	for i, f := range m.dialog.Fields {
		if f.Name == name {
			return m.inputs[i].Value()
		}
	}
	return ""
}

// submit applies the dialog. Validation errors keep the dialog open and
// show the message under the fields.
func (m Model) submit() (tea.Model, tea.Cmd) {
	d := *m.dialog
	st := m.opts.Store

	var err error
	switch d.Kind {
	case form.KindNew:
		_, err = st.Add(m.ctx, m.value(form.FieldTitle), m.value(form.FieldURL), m.value(form.FieldCategory))
	case form.KindEdit:
		_, err = st.Edit(m.ctx, d.Index, m.value(form.FieldTitle), m.value(form.FieldURL), m.value(form.FieldCategory))
	case form.KindDelete:
		_, err = st.Delete(m.ctx, d.Index)
	}

	if err != nil {
		if domain.IsValidationError(err) {
			m.dialog.Error = err.Error()
			return m, nil
		}
		m.closeDialog()
		m.status = fmt.Sprintf("%s failed: %v", strings.ToLower(d.Title), err)
		m.refresh()
		return m, nil
	}

	m.closeDialog()
	m.status = doneMessage(d)
	m.refresh()
	return m, nil
}

func doneMessage(d form.Dialog) string {
	switch d.Kind {
	case form.KindNew:
		return "Shortcut added"
	case form.KindEdit:
		return "Shortcut saved"
	default:
		return fmt.Sprintf("Deleted %q", d.Subject)
	}
}
