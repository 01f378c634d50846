// Package application drives the interactive terminal menu. Navigation
// walks the menu tree; selecting an item dispatches its action and the
// result is shown when the message comes back.
package application

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pbxtools/pbxray/internal/config"
	"github.com/pbxtools/pbxray/internal/handler"
	"github.com/pbxtools/pbxray/internal/store"
)

var (
	styleTitle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	styleSelected = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	styleStatus   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	styleErr      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	styleHelp     = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// Model holds the menu state. One action runs at a time; the model stays
// busy until the action's message arrives.
type Model struct {
	store    *store.Store
	analyzer *handler.Analyzer

	menu   *Menu
	cursor int

	input       textinput.Model
	inputActive bool
	inputAction func(value string) tea.Cmd

	busy   bool
	status string
	output string
	err    error
}

func New(st *store.Store, cfg *config.Config) *Model {
	ti := textinput.New()
	ti.Width = 60
	ti.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))

	m := &Model{
		store:    st,
		analyzer: handler.New(st, cfg),
		input:    ti,
	}
	m.menu = buildMenuTree(m)

	return m
}

// Run starts the menu and blocks until the user quits.
func (m *Model) Run() error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (*Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case handler.WdMsg:
		m.busy = false
		m.status = ""
		m.output = string(msg)
		m.err = nil
	case handler.DoneMsg:
		m.busy = false
		m.status = string(msg)
		m.output = ""
		m.err = nil
	case handler.ErrMsg:
		m.busy = false
		m.status = ""
		m.err = msg.Err
	default:
		if m.inputActive {
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	if m.inputActive {
		return m.handleInputKey(msg)
	}

	switch {
	case msg.Type == tea.KeyUp || msg.String() == "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case msg.Type == tea.KeyDown || msg.String() == "j":
		if m.cursor < len(m.menu.Items)-1 {
			m.cursor++
		}
	case msg.Type == tea.KeyEnter:
		return m.handleSelect()
	case msg.Type == tea.KeyEsc || msg.String() == "q":
		if m.menu.Parent == nil {
			return m, tea.Quit
		}
		m.menu = m.menu.Parent
		m.cursor = 0
		m.clearResult()
	}

	return m, nil
}

func (m *Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.inputActive = false
		m.input.Blur()
		return m, nil
	case tea.KeyEnter:
		value := strings.TrimSpace(m.input.Value())
		if value == "" {
			return m, nil
		}
		action := m.inputAction
		m.inputActive = false
		m.input.Blur()
		return m.run(action(value))
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m *Model) handleSelect() (tea.Model, tea.Cmd) {
	if m.busy || len(m.menu.Items) == 0 {
		return m, nil
	}

	item := m.menu.Items[m.cursor]

	switch {
	case item.Submenu != nil:
		m.menu = item.Submenu
		m.cursor = 0
		m.clearResult()
	case item.PromptAction != nil:
		m.inputAction = item.PromptAction
		m.inputActive = true
		m.input.Placeholder = item.Prompt
		m.input.SetValue("")
		m.input.Focus()
		m.clearResult()
		return m, textinput.Blink
	case item.Action != nil:
		return m.run(item.Action())
	}

	return m, nil
}

// run dispatches one action command and marks the model busy until its
// message comes back.
func (m *Model) run(cmd tea.Cmd) (tea.Model, tea.Cmd) {
	if cmd == nil {
		return m, nil
	}
	m.busy = true
	m.clearResult()
	return m, cmd
}

func (m *Model) clearResult() {
	m.status = ""
	m.output = ""
	m.err = nil
}

func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(styleTitle.Render(m.menu.Title) + "\n\n")

	if m.inputActive {
		b.WriteString(m.input.View() + "\n\n")
		b.WriteString(styleHelp.Render("enter run | esc cancel | ctrl+c quit"))
		return b.String()
	}

	for i, item := range m.menu.Items {
		if i == m.cursor {
			b.WriteString(styleSelected.Render("> "+item.Label) + "\n")
			continue
		}
		b.WriteString("  " + item.Label + "\n")
	}

	switch {
	case m.busy:
		b.WriteString("\n" + styleHelp.Render("working..."))
	case m.err != nil:
		b.WriteString("\n" + styleErr.Render("Error: "+m.err.Error()))
	case m.status != "":
		b.WriteString("\n" + styleStatus.Render(m.status))
	}

	if m.output != "" {
		b.WriteString("\n\n" + m.output)
	}

	b.WriteString("\n\n" + styleHelp.Render("up/down move | enter select | esc back | q quit"))

	return b.String()
}
