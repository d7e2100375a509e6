package tui

import (
	"strings"
	"time"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
)

// Slash command constants.
const (
	cmdHelp  = "/help"
	cmdClear = "/clear"
	cmdExit  = "/exit"
	cmdQuit  = "/quit"
)

const helpText = `Commands:
  /help   show this help
  /clear  clear the conversation (and its rolling context)
  /exit   leave the chat

Requests are routed automatically: general questions, research paper
questions, health questions, past conversations, and "text <name> ..."
all work from the same prompt.`

// keyMap holds key bindings for help bar display.
type keyMap struct {
	Submit     key.Binding
	NewLine    key.Binding
	History    key.Binding
	Cancel     key.Binding
	Quit       key.Binding
	ScrollUp   key.Binding
	ScrollDown key.Binding
	EscCancel  key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Submit:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "send")),
		NewLine:    key.NewBinding(key.WithKeys("shift+enter"), key.WithHelp("s+enter", "newline")),
		History:    key.NewBinding(key.WithKeys("up", "down"), key.WithHelp("↑/↓", "history")),
		Cancel:     key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "cancel")),
		Quit:       key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "exit")),
		ScrollUp:   key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "scroll up")),
		ScrollDown: key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "scroll down")),
		EscCancel:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	}
}

func (t *TUI) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	k := msg.Key()

	if k.Mod&tea.ModCtrl != 0 {
		switch k.Code {
		case 'c':
			return t.handleCtrlC()
		case 'd':
			return t, t.cleanup()
		}
	}

	switch k.Code {
	case tea.KeyEnter:
		if t.state == StateInput && k.Mod&tea.ModShift == 0 {
			return t.handleSubmit()
		}

	case tea.KeyUp:
		if t.state == StateInput && t.input.Line() == 0 {
			return t.navigateHistory(-1)
		}

	case tea.KeyDown:
		if t.state == StateInput && t.input.Line() == t.input.LineCount()-1 {
			return t.navigateHistory(1)
		}

	case tea.KeyPgUp:
		t.viewport.HalfPageUp()
		return t, nil

	case tea.KeyPgDown:
		t.viewport.HalfPageDown()
		return t, nil

	case tea.KeyEscape:
		if t.state == StateThinking {
			return t.cancelRequest()
		}
	}

	var cmd tea.Cmd
	t.input, cmd = t.input.Update(msg)
	return t, cmd
}

// handleCtrlC cancels an in-flight request, or exits on a double press.
func (t *TUI) handleCtrlC() (tea.Model, tea.Cmd) {
	if t.state == StateThinking {
		return t.cancelRequest()
	}

	now := time.Now()
	if now.Sub(t.lastCtrlC) < time.Second {
		return t, t.cleanup()
	}
	t.lastCtrlC = now
	t.addMessage(Message{Role: roleSystem, Text: "(Press Ctrl+C again to exit)"})
	t.rebuildViewportContent()
	return t, nil
}

func (t *TUI) cancelRequest() (tea.Model, tea.Cmd) {
	if t.askCancel != nil {
		t.askCancel()
	}
	return t, nil
}

func (t *TUI) cleanup() tea.Cmd {
	if t.askCancel != nil {
		t.askCancel()
	}
	t.ctxCancel()
	return tea.Quit
}

// handleSubmit sends the current input as a request, or runs it as a
// slash command.
func (t *TUI) handleSubmit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(t.input.Value())
	if text == "" {
		return t, nil
	}

	t.pushHistory(text)
	t.input.Reset()

	switch text {
	case cmdExit, cmdQuit:
		return t, t.cleanup()
	case cmdClear:
		t.messages = nil
		t.rebuildViewportContent()
		return t, nil
	case cmdHelp:
		t.addMessage(Message{Role: roleSystem, Text: helpText})
		t.rebuildViewportContent()
		t.viewport.GotoBottom()
		return t, nil
	}

	convContext := t.rollingContext()
	t.addMessage(Message{Role: roleUser, Text: text})
	t.state = StateThinking
	t.rebuildViewportContent()
	t.viewport.GotoBottom()
	return t, tea.Batch(t.ask(text, convContext), t.spinner.Tick)
}

func (t *TUI) pushHistory(text string) {
	t.history = append(t.history, text)
	if len(t.history) > maxHistory {
		t.history = t.history[len(t.history)-maxHistory:]
	}
	t.historyIdx = len(t.history)
}

func (t *TUI) navigateHistory(delta int) (tea.Model, tea.Cmd) {
	if len(t.history) == 0 {
		return t, nil
	}

	idx := t.historyIdx + delta
	if idx < 0 {
		idx = 0
	}
	if idx >= len(t.history) {
		t.historyIdx = len(t.history)
		t.input.Reset()
		return t, nil
	}

	t.historyIdx = idx
	t.input.SetValue(t.history[idx])
	t.input.CursorEnd()
	return t, nil
}
