package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Model is the bubbletea model hosting the sliders. Posted tasks and key
// presses both run inside Update, which is the UI context.
type Model struct {
	dispatcher *Dispatcher
	title      string
	sliders    []*Slider
	focus      int
	width      int
	status     func() string
	quitting   bool
}

// NewModel creates a Model that runs tasks posted to d.
func NewModel(d *Dispatcher, title string, sliders ...*Slider) *Model {
	return &Model{dispatcher: d, title: title, sliders: sliders}
}

// Status sets a function whose result is shown under the sliders.
func (m *Model) Status(fn func() string) *Model {
	m.status = fn
	return m
}

// Focused returns the index of the focused slider.
func (m *Model) Focused() int {
	return m.focus
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case taskMsg:
		msg.task(m.dispatcher.Context())
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ctx := m.dispatcher.Context()

	switch msg.String() {
	case "q", "ctrl+c", "esc":
		m.quitting = true
		return m, tea.Quit
	case "up", "k", "shift+tab":
		m.moveFocus(-1)
	case "down", "j", "tab":
		m.moveFocus(1)
	case "left", "h":
		m.nudge(ctx, -1)
	case "right", "l":
		m.nudge(ctx, 1)
	case "shift+left", "H":
		m.nudge(ctx, -10)
	case "shift+right", "L":
		m.nudge(ctx, 10)
	case "r":
		if s := m.current(); s != nil {
			s.Reset(ctx)
		}
	}
	return m, nil
}

func (m *Model) moveFocus(delta int) {
	if len(m.sliders) == 0 {
		return
	}
	m.focus = (m.focus + delta + len(m.sliders)) % len(m.sliders)
}

func (m *Model) current() *Slider {
	if m.focus < 0 || m.focus >= len(m.sliders) {
		return nil
	}
	return m.sliders[m.focus]
}

func (m *Model) nudge(ctx context.Context, steps int) {
	if s := m.current(); s != nil {
		s.Nudge(ctx, steps)
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	rows := make([]string, 0, len(m.sliders)+4)
	if m.title != "" {
		rows = append(rows, titleStyle.Render(m.title), "")
	}
	for i, s := range m.sliders {
		rows = append(rows, s.Render(i == m.focus))
	}
	if m.status != nil {
		if line := m.status(); line != "" {
			rows = append(rows, "", statusStyle.Render(line))
		}
	}
	rows = append(rows, "", footerStyle.Render("←/→ adjust · shift faster · ↑/↓ select · r reset · q quit"))

	body := strings.Join(rows, "\n")
	if m.width > 0 {
		return lipgloss.NewStyle().MaxWidth(m.width).Render(body)
	}
	return body
}
