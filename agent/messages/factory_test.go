package messages

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/swarmflow/types"
)

// approvalMessage is a custom kind registered by callers.
type approvalMessage struct {
	Base
	Approved bool `json:"approved"`
}

func (m *approvalMessage) Kind() Kind      { return "ApprovalMessage" }
func (m *approvalMessage) Text() string    { return "approval" }
func (m *approvalMessage) Validate() error { return m.validate(m.Kind()) }

func TestFactory_RoundTripBuiltins(t *testing.T) {
	f, err := NewFactory()
	require.NoError(t, err)

	originals := []Message{
		NewTextMessage("Alice", "hello"),
		NewHandoffMessage("Alice", "Bob", "your turn"),
		NewStopMessage("Bob", "done"),
		NewToolCallSummaryMessage("Bob", "looked it up", ToolCall{ID: "c1", Name: "search", Arguments: json.RawMessage(`{"q":"x"}`)}),
	}

	for _, original := range originals {
		s, err := Dump(original)
		require.NoError(t, err)
		assert.Equal(t, original.Kind(), s.Kind)

		restored, err := f.Create(s)
		require.NoError(t, err)
		assert.Equal(t, original, restored)
	}
}

func TestFactory_UnknownKind(t *testing.T) {
	f, err := NewFactory()
	require.NoError(t, err)

	_, err = f.Create(Serialized{Kind: "MysteryMessage", Payload: json.RawMessage(`{"source":"x"}`)})
	require.Error(t, err)
	assert.True(t, types.IsErrorCode(err, types.ErrDeserialization))
	assert.True(t, types.IsErrorCode(err, types.ErrUnknownMessageKind))
	assert.Contains(t, err.Error(), "MysteryMessage")
	assert.Contains(t, err.Error(), string(KindHandoff))
}

func TestFactory_MissingRequiredFields(t *testing.T) {
	f, err := NewFactory()
	require.NoError(t, err)

	tests := []struct {
		name    string
		in      Serialized
		wantMsg string
	}{
		{"handoff without target", Serialized{Kind: KindHandoff, Payload: json.RawMessage(`{"source":"Alice","content":"x"}`)}, "target"},
		{"text without source", Serialized{Kind: KindText, Payload: json.RawMessage(`{"content":"x"}`)}, "source"},
		{"empty payload", Serialized{Kind: KindText}, "no payload"},
		{"malformed payload", Serialized{Kind: KindText, Payload: json.RawMessage(`[1,2]`)}, "decode"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.Create(tt.in)
			require.Error(t, err)
			assert.True(t, types.IsErrorCode(err, types.ErrDeserialization))
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestValidate_RejectsInvalidUTF8(t *testing.T) {
	bad := "a\xffb"
	tests := []struct {
		name  string
		msg   Message
		field string
	}{
		{"text content", NewTextMessage("user", bad), "content"},
		{"text source", NewTextMessage(bad, "hi"), "source"},
		{"handoff target", NewHandoffMessage("Alice", bad, ""), "target"},
		{"handoff content", NewHandoffMessage("Alice", "Bob", bad), "content"},
		{"stop content", NewStopMessage("Bob", bad), "content"},
		{"tool call name", NewToolCallSummaryMessage("Bob", "ok", ToolCall{ID: "c1", Name: bad}), "tool_calls.name"},
		{"metadata value", &TextMessage{Base: Base{ID: "1", Source: "user", Metadata: map[string]string{"lang": bad}}}, "metadata.lang"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.msg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.field)

			_, err = Dump(tt.msg)
			assert.Error(t, err)
		})
	}

	assert.NoError(t, NewTextMessage("user", "héllo, 世界").Validate())
}

func TestFactory_CustomKinds(t *testing.T) {
	f, err := NewFactory(KindDescriptor{Kind: "ApprovalMessage", New: func() Message { return &approvalMessage{} }})
	require.NoError(t, err)
	assert.True(t, f.IsRegistered("ApprovalMessage"))
	assert.Len(t, f.Kinds(), 5)

	original := &approvalMessage{Base: newBase("Reviewer"), Approved: true}
	s, err := Dump(original)
	require.NoError(t, err)

	restored, err := f.Create(s)
	require.NoError(t, err)
	assert.Equal(t, original, restored)
}

func TestFactory_RejectsBadRegistrations(t *testing.T) {
	_, err := NewFactory(KindDescriptor{Kind: KindText, New: func() Message { return &TextMessage{} }})
	assert.True(t, types.IsErrorCode(err, types.ErrInvalidTeamConfiguration))

	_, err = NewFactory(KindDescriptor{Kind: "Other", New: func() Message { return &TextMessage{} }})
	assert.True(t, types.IsErrorCode(err, types.ErrInvalidTeamConfiguration))

	_, err = NewFactory(KindDescriptor{Kind: "NoCtor"})
	assert.True(t, types.IsErrorCode(err, types.ErrInvalidTeamConfiguration))
}

func TestAsHandoff(t *testing.T) {
	h, ok := AsHandoff(NewHandoffMessage("Alice", "Bob", ""))
	require.True(t, ok)
	assert.Equal(t, "Bob", h.Target)

	_, ok = AsHandoff(NewTextMessage("Alice", "hi"))
	assert.False(t, ok)
}
