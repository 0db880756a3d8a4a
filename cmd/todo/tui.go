package main

import (
	"context"
	"fmt"
	"strings"

	"todoapp/internal/client"
	"todoapp/internal/domain"
	"todoapp/internal/viewmodel"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// stateChangedMsg comes from the view model's onChange hook.
type stateChangedMsg struct{}

// opDoneMsg is the result of a background mutation (toggle, delete, refresh).
type opDoneMsg struct{ err error }

const (
	focusTitle = iota
	focusDetail
)

type model struct {
	vm     *viewmodel.ViewModel
	server string

	cursor    int
	panelOpen bool
	focus     int
	title     textinput.Model
	detail    textinput.Model

	errText string
	width   int
}

func newModel(vm *viewmodel.ViewModel, server string) model {
	title := textinput.New()
	title.Prompt = ""
	title.Placeholder = "Title..."
	title.CharLimit = 200

	detail := textinput.New()
	detail.Prompt = ""
	detail.Placeholder = "Detail..."
	detail.CharLimit = 1000

	return model{vm: vm, server: server, title: title, detail: detail}
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case stateChangedMsg:
		m.clampCursor()
		return m, nil

	case feedEventMsg:
		return m, m.refreshCmd()

	case opDoneMsg:
		if msg.err != nil {
			m.errText = msg.err.Error()
		} else {
			m.errText = ""
		}
		m.clampCursor()
		return m, nil

	case tea.KeyMsg:
		if m.panelOpen {
			return m.updatePanel(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	todos := m.vm.Todos()

	switch msg.String() {
	case "q", "ctrl+c":
		m.vm.Close()
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(todos)-1 {
			m.cursor++
		}

	case " ":
		if m.cursor < len(todos) {
			id := todos[m.cursor].ID
			return m, func() tea.Msg {
				ctx, cancel := context.WithTimeout(context.Background(), client.DefaultTimeout)
				defer cancel()
				return opDoneMsg{err: m.vm.Toggle(ctx, id)}
			}
		}

	case "enter":
		if m.cursor < len(todos) {
			t := todos[m.cursor]
			m.vm.Open(t.ID)
			m.openPanel(t.Text, t.Detail)
		}

	case "a":
		m.vm.OpenBlank()
		m.openPanel("", "")

	case "d":
		if m.cursor < len(todos) {
			id := todos[m.cursor].ID
			return m, func() tea.Msg {
				ctx, cancel := context.WithTimeout(context.Background(), client.DefaultTimeout)
				defer cancel()
				return opDoneMsg{err: m.vm.Delete(ctx, id)}
			}
		}

	case "r":
		return m, m.refreshCmd()
	}
	return m, nil
}

func (m model) updatePanel(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.vm.Close()
		m.panelOpen = false
		m.title.Blur()
		m.detail.Blur()
		return m, nil

	case "tab", "enter":
		if m.focus == focusTitle {
			m.focus = focusDetail
			m.title.Blur()
			m.detail.Focus()
		} else {
			m.focus = focusTitle
			m.detail.Blur()
			m.title.Focus()
		}
		return m, nil
	}

	var cmd tea.Cmd
	if m.focus == focusTitle {
		before := m.title.Value()
		m.title, cmd = m.title.Update(msg)
		if v := m.title.Value(); v != before {
			m.vm.EditText(v)
		}
	} else {
		before := m.detail.Value()
		m.detail, cmd = m.detail.Update(msg)
		if v := m.detail.Value(); v != before {
			m.vm.EditDetail(v)
		}
	}
	return m, cmd
}

func (m *model) openPanel(title, detail string) {
	m.panelOpen = true
	m.focus = focusTitle
	m.title.SetValue(title)
	m.detail.SetValue(detail)
	m.title.Focus()
	m.detail.Blur()
	m.title.CursorEnd()
}

func (m *model) clampCursor() {
	if n := len(m.vm.Todos()); m.cursor >= n && n > 0 {
		m.cursor = n - 1
	} else if n == 0 {
		m.cursor = 0
	}
}

func (m model) refreshCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), client.DefaultTimeout)
		defer cancel()
		return opDoneMsg{err: m.vm.Refresh(ctx)}
	}
}

func (m model) View() string {
	todos := m.vm.Todos()

	var b strings.Builder
	done := 0
	for _, t := range todos {
		if t.Completed {
			done++
		}
	}
	b.WriteString(fmt.Sprintf("%s   %s %d  %s %d\n\n",
		titleStyle.Render("Todos"),
		successStyle.Render("✔"), done,
		pendingStyle.Render("•"), len(todos)-done,
	))

	if len(todos) == 0 {
		b.WriteString(mutedStyle.Render("  nothing here, press a to add") + "\n")
	}
	for i, t := range todos {
		b.WriteString(m.renderItem(i, t) + "\n")
	}

	left := b.String()

	if m.errText != "" {
		left += "\n" + errorStyle.Render("✖ "+m.errText) + "\n"
	}
	left += "\n" + helpStyle.Render("↑/↓ move · space toggle · enter open · a add · d delete · r reload · q quit")

	if !m.panelOpen {
		return left
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", m.renderPanel())
}

func (m model) renderItem(i int, t domain.Todo) string {
	box := mutedStyle.Render(boxUnchecked)
	text := t.Text
	if t.Completed {
		box = successStyle.Render(boxChecked)
		text = doneStyle.Render(text)
	}
	prefix := "  "
	if i == m.cursor && !m.panelOpen {
		prefix = selectedStyle.Render("> ")
	}
	if t.ID == m.vm.BoundID() && m.panelOpen {
		text = titleStyle.Render(t.Text)
	}
	return fmt.Sprintf("%s%s %s", prefix, box, text)
}

func (m model) renderPanel() string {
	header := titleStyle.Render("Detail")
	if m.vm.BoundID() == 0 {
		header = titleStyle.Render("New todo")
	}
	lines := []string{
		header,
		"",
		mutedStyle.Render("Title") + "\n" + m.title.View(),
		"",
		mutedStyle.Render("Detail") + "\n" + m.detail.View(),
		"",
		helpStyle.Render("tab switch · esc close"),
	}
	return panelStyle.Render(strings.Join(lines, "\n"))
}
