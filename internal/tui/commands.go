package tui

import (
	"context"

	tea "charm.land/bubbletea/v2"

	"github.com/supervisionhq/jarvis/internal/assistant"
)

// askStartedMsg carries the cancel func for the in-flight request.
type askStartedMsg struct {
	cancel context.CancelFunc
	result <-chan tea.Msg
}

type replyMsg struct {
	reply assistant.Reply
}

type errMsg struct {
	err error
}

// ask creates a command that routes one request through the assistant.
// The goroutine exits when the request finishes or its context is
// cancelled; the result channel is buffered so it never blocks.
func (t *TUI) ask(request, convContext string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(t.ctx, requestTimeout)
		result := make(chan tea.Msg, 1)

		go func() {
			reply, err := t.router.Handle(ctx, request, convContext)
			if err != nil {
				result <- errMsg{err: err}
				return
			}
			result <- replyMsg{reply: reply}
		}()

		return askStartedMsg{cancel: cancel, result: result}
	}
}

// awaitReply blocks on the result channel as a Bubble Tea command.
func awaitReply(result <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-result
	}
}
