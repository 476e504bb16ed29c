package messages

import (
	"encoding/json"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Kind identifies a message variant. It is the tag written next to the payload when a
// message is persisted.
type Kind string

const (
	KindText            Kind = "TextMessage"
	KindHandoff         Kind = "HandoffMessage"
	KindStop            Kind = "StopMessage"
	KindToolCallSummary Kind = "ToolCallSummaryMessage"
)

// Message is a single entry of a conversation thread.
// Implementations must be JSON-serializable; Validate reports missing required fields
// after a message has been decoded.
type Message interface {
	Kind() Kind
	Sender() string
	Text() string
	Validate() error
}

// Base carries the fields shared by every built-in kind.
type Base struct {
	ID        string            `json:"id"`
	Source    string            `json:"source"`
	CreatedAt time.Time         `json:"created_at"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

func newBase(source string) Base {
	return Base{
		ID:        uuid.NewString(),
		Source:    source,
		CreatedAt: time.Now().UTC(),
	}
}

// Sender returns the name of the participant that produced the message.
func (b Base) Sender() string { return b.Source }

// validate checks the shared fields plus any kind-specific text fields. Invalid
// UTF-8 is rejected because JSON encoding would rewrite it and a restored thread
// would no longer match the saved one.
func (b Base) validate(kind Kind, fields ...field) error {
	if b.Source == "" {
		return fmt.Errorf("%s: missing required field %q", kind, "source")
	}
	fields = append(fields, field{"id", b.ID}, field{"source", b.Source})
	for k, v := range b.Metadata {
		fields = append(fields, field{"metadata key", k}, field{"metadata." + k, v})
	}
	for _, f := range fields {
		if !utf8.ValidString(f.value) {
			return fmt.Errorf("%s: field %q is not valid UTF-8", kind, f.name)
		}
	}
	return nil
}

type field struct {
	name  string
	value string
}

// TextMessage is plain conversational output.
type TextMessage struct {
	Base
	Content string `json:"content"`
}

// NewTextMessage creates a text message from source.
func NewTextMessage(source, content string) *TextMessage {
	return &TextMessage{Base: newBase(source), Content: content}
}

func (m *TextMessage) Kind() Kind   { return KindText }
func (m *TextMessage) Text() string { return m.Content }
func (m *TextMessage) Validate() error {
	return m.validate(KindText, field{"content", m.Content})
}

// HandoffMessage transfers control of the conversation to Target.
type HandoffMessage struct {
	Base
	Target  string `json:"target"`
	Content string `json:"content"`
}

// NewHandoffMessage creates a handoff from source to target.
func NewHandoffMessage(source, target, content string) *HandoffMessage {
	return &HandoffMessage{Base: newBase(source), Target: target, Content: content}
}

func (m *HandoffMessage) Kind() Kind   { return KindHandoff }
func (m *HandoffMessage) Text() string { return m.Content }

func (m *HandoffMessage) Validate() error {
	if err := m.validate(KindHandoff, field{"target", m.Target}, field{"content", m.Content}); err != nil {
		return err
	}
	if m.Target == "" {
		return fmt.Errorf("%s: missing required field %q", KindHandoff, "target")
	}
	return nil
}

// StopMessage signals that a run has ended.
type StopMessage struct {
	Base
	Content string `json:"content"`
}

// NewStopMessage creates a stop message from source.
func NewStopMessage(source, content string) *StopMessage {
	return &StopMessage{Base: newBase(source), Content: content}
}

func (m *StopMessage) Kind() Kind   { return KindStop }
func (m *StopMessage) Text() string { return m.Content }
func (m *StopMessage) Validate() error {
	return m.validate(KindStop, field{"content", m.Content})
}

// ToolCall records one tool invocation summarized by a ToolCallSummaryMessage.
type ToolCall struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// ToolCallSummaryMessage summarizes tool calls made by a participant during its turn.
type ToolCallSummaryMessage struct {
	Base
	Content   string     `json:"content"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
}

// NewToolCallSummaryMessage creates a tool call summary from source.
func NewToolCallSummaryMessage(source, content string, calls ...ToolCall) *ToolCallSummaryMessage {
	return &ToolCallSummaryMessage{Base: newBase(source), Content: content, ToolCalls: calls}
}

func (m *ToolCallSummaryMessage) Kind() Kind   { return KindToolCallSummary }
func (m *ToolCallSummaryMessage) Text() string { return m.Content }
func (m *ToolCallSummaryMessage) Validate() error {
	fields := []field{{"content", m.Content}}
	for _, call := range m.ToolCalls {
		fields = append(fields, field{"tool_calls.id", call.ID}, field{"tool_calls.name", call.Name})
	}
	return m.validate(KindToolCallSummary, fields...)
}

// AsHandoff returns m as a handoff when it is one.
func AsHandoff(m Message) (*HandoffMessage, bool) {
	h, ok := m.(*HandoffMessage)
	return h, ok && h != nil
}
