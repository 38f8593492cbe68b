// Package tui implements the interactive ask view: a text input for
// the question, a viewport for the grounded answer.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/docwhisper-labs/docwhisper-cli/internal/core/ports/driving"
)

var (
	headerStyle    = lipgloss.NewStyle().Bold(true)
	summaryStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	answerBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// answerMsg carries the result of an ask back into the update loop.
type answerMsg struct {
	answer string
	err    error
}

// Model is the Bubble Tea model for the ask view.
type Model struct {
	ctx      context.Context
	answerer driving.AnswerService
	engine   driving.EngineService
	topK     int

	input    textinput.Model
	viewport viewport.Model
	status   string
	answer   string
	waiting  bool
	ready    bool
}

// New creates the ask view model.
func New(ctx context.Context, answerer driving.AnswerService, engine driving.EngineService, topK int) Model {
	if ctx == nil {
		ctx = context.Background()
	}
	if topK <= 0 {
		topK = 3
	}

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Type a question and press Enter"
	ti.Focus()
	ti.CharLimit = 0

	return Model{
		ctx:      ctx,
		answerer: answerer,
		engine:   engine,
		topK:     topK,
		input:    ti,
		viewport: viewport.New(0, 0),
		status:   "Ready.",
	}
}

// Init starts the text input cursor blink.
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key, window and answer events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, ah := answerBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 2 + 1 + qh + 1 // header + summary, status, query box, spacer
		vh := msg.Height - reserved - ah
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = maxInt(20, msg.Width-4)
		m.viewport.Height = vh
		m.viewport.SetContent(m.renderAnswer())
		return m, nil

	case answerMsg:
		m.waiting = false
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
		} else {
			m.answer = msg.answer
			m.status = "Done. Ask another question."
		}
		m.viewport.SetContent(m.renderAnswer())
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		if msg.String() == "enter" && !m.waiting {
			question := strings.TrimSpace(m.input.Value())
			if question != "" {
				m.waiting = true
				m.status = "Thinking..."
				return m, m.askCmd(question)
			}
		}
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// View renders the ask layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := headerStyle.Render("DocWhisper")
	summary := summaryStyle.Render(m.summaryLine())
	answer := answerBoxStyle.Render(m.viewport.View())
	input := queryBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)

	return header + "\n" + summary + "\n" + answer + "\n" + input + "\n" + status
}

// askCmd runs the question off the update loop.
func (m Model) askCmd(question string) tea.Cmd {
	return func() tea.Msg {
		answer, err := m.answerer.Ask(m.ctx, question, m.topK, false)
		return answerMsg{answer: answer, err: err}
	}
}

func (m Model) summaryLine() string {
	if m.engine == nil {
		return ""
	}
	return fmt.Sprintf("%d chunk(s) indexed", m.engine.ChunkCount())
}

func (m Model) renderAnswer() string {
	if m.answer == "" {
		return "No answer yet."
	}
	return m.answer
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
