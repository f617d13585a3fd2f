// Package chat is the interactive trip assistant for a saved strategy.
package chat

import (
	"context"
	"fmt"
	"strings"

	"flytz/cmd/flytz/ui"
	"flytz/internal/types"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// SendFunc answers a message given the conversation so far.
type SendFunc func(ctx context.Context, history []types.ChatMessage, message string) string

// PersistFunc records a completed exchange.
type PersistFunc func(msgs ...types.ChatMessage) error

// replyMsg carries the assistant's answer back into Update.
type replyMsg struct {
	user  types.ChatMessage
	reply types.ChatMessage
}

// Model is the bubbletea model for the chat screen.
type Model struct {
	textarea textarea.Model
	viewport viewport.Model
	spinner  spinner.Model
	styles   ui.Styles

	title   string
	history []types.ChatMessage
	send    SendFunc
	persist PersistFunc
	ctx     context.Context

	isLoading bool
	err       error
	width     int
}

// New creates a chat model seeded with an existing history.
func New(ctx context.Context, title string, history []types.ChatMessage, send SendFunc, persist PersistFunc) Model {
	ta := textarea.New()
	ta.Placeholder = "Ask about layovers, visas, baggage..."
	ta.Focus()
	ta.CharLimit = 2000
	ta.SetWidth(80)
	ta.SetHeight(3)
	ta.ShowLineNumbers = false

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		textarea: ta,
		viewport: viewport.New(80, 20),
		spinner:  sp,
		styles:   ui.DefaultStyles(),
		title:    title,
		history:  append([]types.ChatMessage(nil), history...),
		send:     send,
		persist:  persist,
		ctx:      ctx,
		width:    80,
	}
	m.spinner.Style = m.styles.Spinner
	m.viewport.SetContent(m.renderHistory())
	m.viewport.GotoBottom()
	return m
}

// History returns the conversation shown on screen.
func (m Model) History() []types.ChatMessage {
	return m.history
}

// Err returns the last persistence error, if any.
func (m Model) Err() error {
	return m.err
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		taCmd tea.Cmd
		vpCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			if m.isLoading {
				return m, nil
			}
			input := strings.TrimSpace(m.textarea.Value())
			if input == "" {
				return m, nil
			}
			m.textarea.Reset()
			m.isLoading = true
			m.history = append(m.history, types.ChatMessage{Role: types.RoleUser, Text: input})
			m.viewport.SetContent(m.renderHistory())
			m.viewport.GotoBottom()
			return m, tea.Batch(m.spinner.Tick, m.ask(input))
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.textarea.SetWidth(msg.Width)
		m.viewport.Width = msg.Width
		if h := msg.Height - m.textarea.Height() - 4; h > 3 {
			m.viewport.Height = h
		}
		m.viewport.SetContent(m.renderHistory())
		return m, nil

	case replyMsg:
		m.isLoading = false
		m.history = append(m.history, msg.reply)
		if m.persist != nil {
			if err := m.persist(msg.user, msg.reply); err != nil {
				m.err = err
			}
		}
		m.viewport.SetContent(m.renderHistory())
		m.viewport.GotoBottom()
		return m, nil

	case spinner.TickMsg:
		if !m.isLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	m.textarea, taCmd = m.textarea.Update(msg)
	m.viewport, vpCmd = m.viewport.Update(msg)
	return m, tea.Batch(taCmd, vpCmd)
}

// ask runs the send function off the UI loop. The history passed excludes the
// pending user message.
func (m Model) ask(input string) tea.Cmd {
	prior := append([]types.ChatMessage(nil), m.history[:len(m.history)-1]...)
	send := m.send
	ctx := m.ctx
	return func() tea.Msg {
		reply := send(ctx, prior, input)
		return replyMsg{
			user:  types.ChatMessage{Role: types.RoleUser, Text: input},
			reply: types.ChatMessage{Role: types.RoleModel, Text: reply},
		}
	}
}

// View implements tea.Model.
func (m Model) View() string {
	status := m.styles.Muted.Render("Enter to send, Esc to quit")
	if m.isLoading {
		status = m.spinner.View() + " " + m.styles.Muted.Render("Thinking...")
	}
	if m.err != nil {
		status = m.styles.Error.Render(fmt.Sprintf("Save failed: %v", m.err))
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.styles.Header.Render(m.title),
		m.viewport.View(),
		status,
		m.textarea.View(),
	)
}

func (m Model) renderHistory() string {
	var sb strings.Builder
	for _, msg := range m.history {
		if msg.Role == types.RoleUser {
			sb.WriteString(m.styles.Prompt.Render("you> "))
			sb.WriteString(m.styles.UserInput.Render(msg.Text))
			sb.WriteString("\n\n")
			continue
		}
		sb.WriteString(m.styles.AgentResponse.Render(ui.RenderMarkdown(msg.Text, m.width-4)))
		sb.WriteString("\n")
	}
	return sb.String()
}
