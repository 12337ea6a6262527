// Package ui provides the interactive terminal form and the list
// formatting shared with the command line.
package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nibzard/tasks-go/internal/config"
	"github.com/nibzard/tasks-go/internal/task"
)

// RunTUI starts the task form. Saved data that cannot be read is reported in
// a banner and the form starts from an empty list; the next add replaces it.
func RunTUI(ctx context.Context, cfg *config.Config, svc *task.Service) error {
	if !IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY")
	}

	tasks, err := svc.LoadInitialOrEmpty()
	if err != nil && !errors.Is(err, task.ErrMalformedStore) {
		return err
	}

	model := newTUIModel(svc, tasks, err, cfg.NewestFirst)
	model.dataFile = cfg.DataFile
	return runProgram(ctx, model)
}

func runProgram(ctx context.Context, model *tuiModel) error {
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

type focus int

const (
	focusTitle focus = iota
	focusDescription
	focusStatus
	focusSubmit
	focusCount
)

type tuiModel struct {
	svc         *task.Service
	tasks       []task.Task
	counts      task.Counts
	newestFirst bool
	dataFile    string

	focus       focus
	title       string
	description string
	status      *bool

	fieldErrs task.FieldErrors
	loadErr   error
	saveErr   error
	notice    string
	showHelp  bool
}

func newTUIModel(svc *task.Service, tasks []task.Task, loadErr error, newestFirst bool) *tuiModel {
	if tasks == nil {
		tasks = []task.Task{}
	}
	return &tuiModel{
		svc:         svc,
		tasks:       tasks,
		counts:      svc.CountByStatus(tasks),
		newestFirst: newestFirst,
		status:      task.Bool(false),
		loadErr:     loadErr,
	}
}

func (m *tuiModel) Init() tea.Cmd {
	return nil
}

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit
	case "tab", "down":
		m.focus = (m.focus + 1) % focusCount
		return m, nil
	case "shift+tab", "up":
		m.focus = (m.focus + focusCount - 1) % focusCount
		return m, nil
	case "ctrl+s":
		m.submit()
		return m, nil
	case "f1":
		m.showHelp = !m.showHelp
		return m, nil
	case "enter":
		if m.focus == focusSubmit {
			m.submit()
		} else {
			m.focus++
		}
		return m, nil
	}

	switch m.focus {
	case focusTitle:
		m.title = editText(m.title, key)
	case focusDescription:
		m.description = editText(m.description, key)
	case focusStatus:
		switch key.String() {
		case " ", "space", "x":
			m.toggleStatus()
		case "backspace":
			m.status = nil
		}
	}
	return m, nil
}

// editText applies a key press to a single-line text value.
func editText(value string, key tea.KeyMsg) string {
	switch key.Type {
	case tea.KeyBackspace:
		r := []rune(value)
		if len(r) == 0 {
			return value
		}
		return string(r[:len(r)-1])
	case tea.KeySpace:
		return value + " "
	case tea.KeyRunes:
		return value + string(key.Runes)
	}
	return value
}

// toggleStatus cycles an unset status to done, then flips it.
func (m *tuiModel) toggleStatus() {
	if m.status == nil {
		m.status = task.Bool(true)
		return
	}
	m.status = task.Bool(!*m.status)
}

func (m *tuiModel) submit() {
	m.notice = ""
	m.saveErr = nil

	next, err := m.svc.Create(task.RawInput{
		Title:       m.title,
		Description: m.description,
		Status:      m.status,
	}, m.tasks)
	if err != nil {
		var fe task.FieldErrors
		if errors.As(err, &fe) {
			m.fieldErrs = fe
			m.focus = firstErrorFocus(fe)
			return
		}
		m.fieldErrs = nil
		m.saveErr = err
		return
	}

	m.tasks = next
	m.counts = m.svc.CountByStatus(next)
	m.fieldErrs = nil
	m.loadErr = nil
	m.title = ""
	m.description = ""
	m.status = task.Bool(false)
	m.focus = focusTitle
	m.notice = "Task added."
}

func firstErrorFocus(fe task.FieldErrors) focus {
	switch {
	case len(fe[task.FieldTitle]) > 0:
		return focusTitle
	case len(fe[task.FieldDescription]) > 0:
		return focusDescription
	case len(fe[task.FieldStatus]) > 0:
		return focusStatus
	default:
		return focusSubmit
	}
}

func (m *tuiModel) View() string {
	var b strings.Builder
	writeTitle(&b)

	if m.showHelp {
		writeHelp(&b)
		writeFooter(&b)
		return b.String()
	}

	if m.loadErr != nil {
		writeLoadBanner(&b, m.loadErr)
	}
	if m.saveErr != nil {
		b.WriteString("Error saving task:\n")
		b.WriteString("  " + m.saveErr.Error() + "\n\n")
	}
	if m.notice != "" {
		b.WriteString(m.notice + "\n\n")
	}

	m.writeForm(&b)
	b.WriteString(FormatCounts(m.counts))
	b.WriteString("\n")
	writeTasks(&b, DisplayOrder(m.tasks, m.newestFirst))
	if m.dataFile != "" {
		b.WriteString(fmt.Sprintf("Data File: %s\n\n", m.dataFile))
	}
	writeFooter(&b)
	return b.String()
}

func writeTitle(b *strings.Builder) {
	title := "Tasks"
	b.WriteString(title + "\n")
	b.WriteString(strings.Repeat("=", len(title)) + "\n\n")
}

func writeLoadBanner(b *strings.Builder, err error) {
	if errors.Is(err, task.ErrMalformedStore) {
		b.WriteString("Saved tasks could not be read and were ignored.\n")
		b.WriteString("  " + err.Error() + "\n")
		b.WriteString("  Adding a task will replace them.\n\n")
		return
	}
	b.WriteString("Error loading tasks:\n")
	b.WriteString("  " + err.Error() + "\n\n")
}

func (m *tuiModel) writeForm(b *strings.Builder) {
	b.WriteString("New Task\n\n")
	m.writeField(b, focusTitle, "Title", m.title+m.cursor(focusTitle), task.FieldTitle)
	m.writeField(b, focusDescription, "Description", m.description+m.cursor(focusDescription), task.FieldDescription)
	m.writeField(b, focusStatus, "Status", statusLabel(m.status), task.FieldStatus)

	marker := " "
	if m.focus == focusSubmit {
		marker = ">"
	}
	b.WriteString(fmt.Sprintf("%s [ Add task ]\n\n", marker))
}

func (m *tuiModel) writeField(b *strings.Builder, f focus, label, value, field string) {
	marker := " "
	if m.focus == f {
		marker = ">"
	}
	b.WriteString(fmt.Sprintf("%s %-12s %s\n", marker, label+":", value))
	for _, msg := range m.fieldErrs[field] {
		b.WriteString("    " + msg + "\n")
	}
}

func (m *tuiModel) cursor(f focus) string {
	if m.focus == f {
		return "_"
	}
	return ""
}

func statusLabel(status *bool) string {
	switch {
	case status == nil:
		return "( ) not set"
	case *status:
		return "[x] Completed"
	default:
		return "[ ] Incomplete"
	}
}

func writeTasks(b *strings.Builder, tasks []task.Task) {
	b.WriteString("Saved Tasks\n\n")
	if len(tasks) == 0 {
		b.WriteString("  " + NoTasks + "\n\n")
		return
	}
	for _, t := range tasks {
		b.WriteString(FormatTask(t, true))
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func writeHelp(b *strings.Builder) {
	b.WriteString("Keyboard Shortcuts\n\n")
	b.WriteString("  tab, down       Next field\n")
	b.WriteString("  shift+tab, up   Previous field\n")
	b.WriteString("  space, x        Toggle status\n")
	b.WriteString("  enter           Next field, or add on the button\n")
	b.WriteString("  ctrl+s          Add task\n")
	b.WriteString("  F1              Toggle this help screen\n")
	b.WriteString("  esc, ctrl+c     Quit\n\n")
}

func writeFooter(b *strings.Builder) {
	b.WriteString("F1 for help | ctrl+s to add | esc to quit\n")
}

// IsTTY returns true if w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
