// Package tui implements the interactive chat interface using Bubbletea.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/patrimonia-labs/sitechat/internal/core/domain"
	"github.com/patrimonia-labs/sitechat/internal/core/ports/driving"
)

// answerReceived carries a completed exchange back into the update loop.
type answerReceived struct {
	query          string
	answer         domain.Answer
	conversationID string
}

// answerFailed carries a generation failure.
type answerFailed struct {
	err error
}

// Config holds the collaborators and parameters for the chat model.
type Config struct {
	Chat    driving.ChatService
	History driving.HistoryService

	// TopK is how many context chunks back each answer.
	TopK int

	// ConversationID resumes an existing conversation when non-empty.
	ConversationID string
}

// Model is the chat TUI following the Elm architecture.
type Model struct {
	chat    driving.ChatService
	history driving.HistoryService
	styles  *Styles
	ctx     context.Context

	input    textinput.Model
	view     viewport.Model
	spin     spinner.Model
	topK     int
	convID   string
	turns    []domain.ConversationTurn
	waiting  bool
	err      error
	width    int
	height   int
	ready    bool
}

// Ensure Model implements tea.Model.
var _ tea.Model = (*Model)(nil)

// NewModel creates the chat model. If cfg.ConversationID is set, the
// conversation's turns are loaded so the exchange continues where it left off.
func NewModel(cfg Config) (*Model, error) {
	if cfg.Chat == nil {
		return nil, fmt.Errorf("creating chat view: chat service is required")
	}

	ti := textinput.New()
	ti.Placeholder = "Ask about an archaeological site..."
	ti.CharLimit = 500
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := &Model{
		chat:    cfg.Chat,
		history: cfg.History,
		styles:  DefaultStyles(),
		ctx:     context.Background(),
		input:   ti,
		view:    viewport.New(80, 20),
		spin:    sp,
		topK:    cfg.TopK,
		convID:  cfg.ConversationID,
	}

	if cfg.ConversationID != "" && cfg.History != nil {
		turns, err := cfg.History.Turns(m.ctx, cfg.ConversationID)
		if err != nil {
			return nil, fmt.Errorf("loading conversation: %w", err)
		}
		m.turns = turns
	}

	return m, nil
}

// WithContext sets the context used for service calls.
func (m *Model) WithContext(ctx context.Context) *Model {
	m.ctx = ctx
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		tea.SetWindowTitle("sitechat"),
	)
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.view.Width = msg.Width
		m.view.Height = msg.Height - 6
		m.input.Width = msg.Width - 6
		m.refreshViewport()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			if m.waiting {
				return m, nil
			}
			query := strings.TrimSpace(m.input.Value())
			if query == "" {
				return m, nil
			}
			m.input.SetValue("")
			m.err = nil
			m.waiting = true
			return m, tea.Batch(m.spin.Tick, m.submit(query))
		}

	case answerReceived:
		m.waiting = false
		m.convID = msg.conversationID
		m.turns = append(m.turns,
			domain.ConversationTurn{Role: domain.RoleUser, Content: msg.query},
			domain.ConversationTurn{
				Role:    domain.RoleAssistant,
				Content: msg.answer.Text,
				Sources: msg.answer.Sources,
			},
		)
		m.refreshViewport()
		m.view.GotoBottom()
		return m, nil

	case answerFailed:
		m.waiting = false
		m.err = msg.err
		return m, nil

	case spinner.TickMsg:
		if !m.waiting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.view, cmd = m.view.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// submit answers a query against the current history and records the
// exchange once generation succeeded. Nothing is persisted on failure.
func (m *Model) submit(query string) tea.Cmd {
	history := m.turns
	convID := m.convID

	return func() tea.Msg {
		answer, err := m.chat.Answer(m.ctx, query, history, m.topK)
		if err != nil {
			return answerFailed{err: err}
		}

		if m.history != nil {
			if convID == "" {
				convID, err = m.history.StartConversation(m.ctx, query)
				if err != nil {
					return answerFailed{err: err}
				}
			}
			if err := m.history.RecordExchange(m.ctx, convID, query, answer); err != nil {
				return answerFailed{err: err}
			}
		}

		return answerReceived{query: query, answer: answer, conversationID: convID}
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	if !m.ready {
		return "Initialising..."
	}

	var b strings.Builder
	b.WriteString(m.styles.Title.Render("sitechat"))
	b.WriteString("\n\n")
	b.WriteString(m.view.View())
	b.WriteString("\n")

	switch {
	case m.waiting:
		b.WriteString(m.spin.View() + m.styles.Muted.Render(" thinking..."))
	case m.err != nil:
		b.WriteString(m.styles.Error.Render("Error: " + m.err.Error()))
	default:
		b.WriteString(" ")
	}
	b.WriteString("\n")

	b.WriteString(m.styles.Input.Render(m.input.View()))
	b.WriteString("\n")
	b.WriteString(m.styles.Help.Render("enter send · esc quit"))
	return b.String()
}

// refreshViewport re-renders the transcript into the viewport.
func (m *Model) refreshViewport() {
	m.view.SetContent(m.renderTurns())
}

// renderTurns formats the conversation transcript.
func (m *Model) renderTurns() string {
	if len(m.turns) == 0 {
		return m.styles.Muted.Render("Ask a question to get started.")
	}

	var b strings.Builder
	for _, turn := range m.turns {
		switch turn.Role {
		case domain.RoleUser:
			b.WriteString(m.styles.UserLabel.Render("You: "))
			b.WriteString(turn.Content)
		case domain.RoleAssistant:
			b.WriteString(m.styles.BotLabel.Render("Assistant: "))
			b.WriteString(turn.Content)
			if len(turn.Sources) > 0 {
				sites := make([]string, 0, len(turn.Sources))
				for _, src := range turn.Sources {
					sites = append(sites, src.Site)
				}
				b.WriteString("\n")
				b.WriteString(m.styles.Muted.Render("Sources: " + strings.Join(sites, ", ")))
			}
		}
		b.WriteString("\n\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// ConversationID returns the active conversation id, empty before the first
// exchange of a fresh session.
func (m *Model) ConversationID() string {
	return m.convID
}

// Turns returns the transcript shown on screen.
func (m *Model) Turns() []domain.ConversationTurn {
	return m.turns
}

// Err returns the last error shown to the user.
func (m *Model) Err() error {
	return m.err
}

// Run starts the chat program.
func (m *Model) Run() error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
