// Package tui provides the Bubble Tea chat interface for the assistant.
//
// The router itself is stateless; the TUI keeps the rolling conversation
// context on the client side and passes it with every request.
package tui

import (
	"context"
	"errors"
	"strings"
	"time"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/textarea"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/supervisionhq/jarvis/internal/assistant"
)

// State represents the TUI state machine.
type State int

// TUI state machine states.
const (
	StateInput    State = iota // Awaiting user input
	StateThinking              // Waiting for the assistant
)

// Memory bounds to prevent unbounded growth.
const (
	maxMessages = 100 // Maximum messages stored
	maxHistory  = 100 // Maximum input history entries

	// contextTurns is how many recent exchanges travel with each request
	// as rolling conversation context.
	contextTurns = 6
)

// requestTimeout bounds a single assistant request.
const requestTimeout = 2 * time.Minute

// Message role constants for consistent display.
const (
	roleUser      = "user"
	roleAssistant = "assistant"
	roleSystem    = "system"
	roleError     = "error"
)

// Layout constants for viewport height calculation.
const (
	separatorLines = 2
	helpLines      = 1
	promptLines    = 1
	minViewport    = 3
)

// Message represents a conversation message for display.
type Message struct {
	Role     string // "user", "assistant", "system", "error"
	Text     string
	Category string // Set on assistant messages
}

// Assistant routes one request. Satisfied by *assistant.Assistant.
type Assistant interface {
	Handle(ctx context.Context, request, convContext string) (assistant.Reply, error)
}

// TUI is the Bubble Tea model for the chat interface.
type TUI struct {
	// Input (textarea for multi-line support, Shift+Enter for newline)
	input      textarea.Model
	history    []string
	historyIdx int

	// State
	state     State
	lastCtrlC time.Time

	// Output
	spinner  spinner.Model
	viewBuf  strings.Builder // Reusable buffer for View() to reduce allocations
	messages []Message

	// Scrollable message viewport
	viewport viewport.Model

	// Help bar for keyboard shortcuts
	help help.Model
	keys keyMap

	// In-flight request
	askCancel context.CancelFunc

	// Dependencies
	router    Assistant
	ctx       context.Context
	ctxCancel context.CancelFunc

	// Dimensions
	width  int
	height int

	// Styles
	styles Styles

	// Markdown rendering (nil = graceful degradation to plain text)
	markdown *markdownRenderer
}

// addMessage appends a message and enforces the maxMessages bound.
func (t *TUI) addMessage(msg Message) {
	t.messages = append(t.messages, msg)
	if len(t.messages) > maxMessages {
		t.messages = t.messages[len(t.messages)-maxMessages:]
	}
}

// rollingContext renders the last contextTurns exchanges as the
// conversation context sent with the next request.
func (t *TUI) rollingContext() string {
	var turns []string
	for _, msg := range t.messages {
		switch msg.Role {
		case roleUser:
			turns = append(turns, "User: "+msg.Text)
		case roleAssistant:
			turns = append(turns, "Assistant: "+msg.Text)
		}
	}
	if len(turns) > 2*contextTurns {
		turns = turns[len(turns)-2*contextTurns:]
	}
	return strings.Join(turns, "\n")
}

// New creates a TUI for chat interaction.
//
// ctx MUST be the same context passed to tea.WithContext() so cancellation
// behaves consistently.
func New(ctx context.Context, router Assistant) (*TUI, error) {
	if router == nil {
		return nil, errors.New("tui.New: assistant is required")
	}
	if ctx == nil {
		return nil, errors.New("tui.New: ctx is required")
	}

	ctx, cancel := context.WithCancel(ctx)

	// Enter submits, Shift+Enter adds a newline.
	ta := textarea.New()
	ta.Placeholder = "Ask anything, or /help..."
	ta.SetHeight(1)
	ta.SetWidth(120)
	ta.MaxWidth = 0
	ta.ShowLineNumbers = false

	cleanStyle := textarea.StyleState{
		Base:        lipgloss.NewStyle(),
		Text:        lipgloss.NewStyle(),
		Placeholder: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		Prompt:      lipgloss.NewStyle(),
	}
	ta.SetStyles(textarea.Styles{
		Focused: cleanStyle,
		Blurred: cleanStyle,
	})
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	// Keys are routed explicitly in handleKey; the viewport's own bindings
	// would conflict with textarea and history navigation.
	vp := viewport.New(viewport.WithWidth(80), viewport.WithHeight(20))
	vp.MouseWheelEnabled = true
	vp.SoftWrap = true
	vp.KeyMap = viewport.KeyMap{}

	return &TUI{
		router:    router,
		ctx:       ctx,
		ctxCancel: cancel,
		input:     ta,
		spinner:   sp,
		viewport:  vp,
		help:      help.New(),
		keys:      newKeyMap(),
		styles:    DefaultStyles(),
		history:   make([]string, 0, maxHistory),
		markdown:  newMarkdownRenderer(80),
		width:     80,
	}, nil
}

// Init implements tea.Model.
func (t *TUI) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		t.spinner.Tick,
		t.input.Focus(),
	)
}

// Run starts the chat interface and blocks until exit.
func Run(ctx context.Context, router Assistant) error {
	model, err := New(ctx, router)
	if err != nil {
		return err
	}

	p := tea.NewProgram(model, tea.WithContext(ctx))
	_, err = p.Run()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
