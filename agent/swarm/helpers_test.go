package swarm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BaSui01/swarmflow/agent/messages"
)

// fakeAgent is a ChatAgent driven by a reply callback.
type fakeAgent struct {
	name     string
	kinds    []messages.Kind
	replyFn  func(ctx context.Context, thread []messages.Message) ([]messages.Message, error)
	resetErr error

	calls  int
	resets int
}

func newFakeAgent(name string, canHandoff bool) *fakeAgent {
	kinds := []messages.Kind{messages.KindText}
	if canHandoff {
		kinds = append(kinds, messages.KindHandoff)
	}
	return &fakeAgent{name: name, kinds: kinds}
}

func (a *fakeAgent) Name() string                          { return a.name }
func (a *fakeAgent) Description() string                   { return a.name + " agent" }
func (a *fakeAgent) ProducedMessageKinds() []messages.Kind { return a.kinds }

func (a *fakeAgent) OnMessages(ctx context.Context, thread []messages.Message) ([]messages.Message, error) {
	a.calls++
	if a.replyFn != nil {
		return a.replyFn(ctx, thread)
	}
	return []messages.Message{messages.NewTextMessage(a.name, "ok")}, nil
}

func (a *fakeAgent) Reset(ctx context.Context) error {
	a.resets++
	return a.resetErr
}

// script makes the agent return replies in order, repeating the last one.
func (a *fakeAgent) script(replies ...messages.Message) *fakeAgent {
	i := 0
	a.replyFn = func(context.Context, []messages.Message) ([]messages.Message, error) {
		r := replies[min(i, len(replies)-1)]
		i++
		return []messages.Message{r}, nil
	}
	return a
}

// fakeCondition records resets and can fail them.
type fakeCondition struct {
	resetErr error
	resets   int
}

func (c *fakeCondition) Check(context.Context, []messages.Message) (*messages.StopMessage, error) {
	return nil, nil
}
func (c *fakeCondition) Terminated() bool { return false }
func (c *fakeCondition) Reset(context.Context) error {
	c.resets++
	return c.resetErr
}

func newTestRegistry(t *testing.T, names ...string) *Registry {
	t.Helper()
	participants := make([]Participant, len(names))
	for i, n := range names {
		participants[i] = newFakeAgent(n, i == 0)
	}
	r, err := NewRegistry(participants...)
	require.NoError(t, err)
	return r
}

func newTestManager(t *testing.T, names ...string) (*Manager, *Thread) {
	t.Helper()
	thread := NewThread()
	m, err := NewManager(newTestRegistry(t, names...), thread, nil, nil, zap.NewNop())
	require.NoError(t, err)
	return m, thread
}

func text(source, content string) messages.Message {
	return messages.NewTextMessage(source, content)
}

func handoff(source, target string) messages.Message {
	return messages.NewHandoffMessage(source, target, "transfer to "+target)
}
