package participants

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BaSui01/swarmflow/agent/declarative"
	"github.com/BaSui01/swarmflow/agent/messages"
)

func TestNewScriptedAgent_Validation(t *testing.T) {
	_, err := NewScriptedAgent("", "", nil)
	assert.Error(t, err)

	_, err = NewScriptedAgent("Alice", "", []string{"Bob"}, Reply{HandoffTo: "Carol"})
	assert.Error(t, err)

	_, err = NewScriptedAgent("Alice", "", []string{""})
	assert.Error(t, err)

	a, err := NewScriptedAgent("Alice", "", []string{"Bob", "Bob"}, Reply{HandoffTo: "Bob"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Bob"}, a.Handoffs())
	assert.NotEmpty(t, a.Description())
}

func TestScriptedAgent_ProducedMessageKinds(t *testing.T) {
	withHandoffs, err := NewScriptedAgent("Alice", "", []string{"Bob"})
	require.NoError(t, err)
	assert.Contains(t, withHandoffs.ProducedMessageKinds(), messages.KindHandoff)

	plain, err := NewScriptedAgent("Bob", "", nil)
	require.NoError(t, err)
	assert.NotContains(t, plain.ProducedMessageKinds(), messages.KindHandoff)
}

func TestScriptedAgent_OnMessages_Cycles(t *testing.T) {
	ctx := context.Background()
	a, err := NewScriptedAgent("Alice", "", []string{"Bob"},
		Reply{Content: "looking"},
		Reply{Content: "over to Bob", HandoffTo: "Bob"},
	)
	require.NoError(t, err)
	a.WithLogger(zap.NewNop())

	out, err := a.OnMessages(ctx, nil)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, messages.KindText, out[0].Kind())
	assert.Equal(t, "Alice", out[0].Sender())

	out, err = a.OnMessages(ctx, nil)
	require.NoError(t, err)
	h, ok := messages.AsHandoff(out[0])
	require.True(t, ok)
	assert.Equal(t, "Bob", h.Target)
	assert.Equal(t, "over to Bob", h.Content)

	out, err = a.OnMessages(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, "looking", out[0].Text())

	require.NoError(t, a.Reset(ctx))
	out, err = a.OnMessages(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, "looking", out[0].Text())
}

func TestScriptedAgent_NoReplies(t *testing.T) {
	a, err := NewScriptedAgent("Bob", "", nil)
	require.NoError(t, err)

	out, err := a.OnMessages(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Bob", out[0].Sender())
}

func TestScriptedAgent_CancelledContext(t *testing.T) {
	a, err := NewScriptedAgent("Bob", "", nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = a.OnMessages(ctx, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRegister_DumpAndRebuild(t *testing.T) {
	registry := declarative.NewComponentRegistry(zap.NewNop())
	require.NoError(t, Register(registry))

	original, err := NewScriptedAgent("Alice", "Travel agent", []string{"Bob", "user"},
		Reply{Content: "checking"},
		Reply{Content: "need you", HandoffTo: "user"},
	)
	require.NoError(t, err)

	model, err := original.DumpComponent()
	require.NoError(t, err)
	assert.Equal(t, ProviderScripted, model.Provider)

	built, err := registry.Build(model)
	require.NoError(t, err)
	rebuilt, ok := built.(*ScriptedAgent)
	require.True(t, ok)
	assert.Equal(t, original.Name(), rebuilt.Name())
	assert.Equal(t, original.Description(), rebuilt.Description())
	assert.Equal(t, original.Handoffs(), rebuilt.Handoffs())
	assert.Equal(t, original.replies, rebuilt.replies)
}

func TestRegister_InvalidConfig(t *testing.T) {
	registry := declarative.NewComponentRegistry(nil)
	require.NoError(t, Register(registry))

	_, err := registry.Build(declarative.ComponentModel{
		Provider: ProviderScripted,
		Config:   map[string]any{"name": "Alice", "replies": []any{map[string]any{"handoff_to": "Zed"}}},
	})
	assert.Error(t, err)
}
