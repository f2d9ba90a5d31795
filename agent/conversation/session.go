package conversation

import (
	"strings"

	"github.com/cloudwego/eino/schema"

	contractx "github.com/idurar/emily-assistant/agent/contract"
	promptx "github.com/idurar/emily-assistant/agent/prompt"
)

// DefaultHistoryWindow bounds how many caller-supplied messages are sent to
// the model per turn. The preamble pair is never counted against it.
const DefaultHistoryWindow = 10

// Session holds the ordered message history for one inbound request.
// It is owned per request and never persisted; the caller re-supplies
// history on every turn.
type Session struct {
	window  int
	history []contractx.Message
}

func NewSession(history []contractx.Message) *Session {
	return &Session{
		window:  DefaultHistoryWindow,
		history: append([]contractx.Message(nil), history...),
	}
}

// WithWindow overrides the history window. Values below 1 keep the default.
func (s *Session) WithWindow(n int) *Session {
	if n >= 1 {
		s.window = n
	}
	return s
}

// Append records a message at the end of the session. Insertion order is
// significant; appended messages are never rewritten.
func (s *Session) Append(msg contractx.Message) {
	s.history = append(s.history, msg)
}

// ContextWindow renders the model context: the fixed persona preamble pair,
// then the most recent window of history. Messages with unknown roles or
// empty content are skipped rather than rejected, matching how the source
// system tolerated sloppy frontend history.
func (s *Session) ContextWindow() []*schema.Message {
	recent := s.history
	if len(recent) > s.window {
		recent = recent[len(recent)-s.window:]
	}

	msgs := make([]*schema.Message, 0, len(recent)+2)
	msgs = append(msgs,
		schema.SystemMessage(promptx.Persona()),
		schema.AssistantMessage(promptx.Acknowledgement, nil),
	)

	for _, m := range recent {
		content := strings.TrimSpace(m.Content)
		if content == "" {
			continue
		}
		switch m.Role {
		case contractx.RoleUser:
			msgs = append(msgs, schema.UserMessage(content))
		case contractx.RoleAssistant:
			msgs = append(msgs, schema.AssistantMessage(content, nil))
		}
	}
	return msgs
}
