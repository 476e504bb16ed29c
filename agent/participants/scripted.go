package participants

import (
	"context"
	"fmt"
	"sync"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/BaSui01/swarmflow/agent/declarative"
	"github.com/BaSui01/swarmflow/agent/messages"
	"github.com/BaSui01/swarmflow/internal/ctxkeys"
)

// ProviderScripted is the declarative provider name of ScriptedAgent.
const ProviderScripted = "participants.scripted"

// Reply is one scripted turn. A non-empty HandoffTo turns the reply into a
// handoff directive.
type Reply struct {
	Content   string `json:"content" yaml:"content"`
	HandoffTo string `json:"handoff_to,omitempty" yaml:"handoff_to,omitempty"`
}

// ScriptedAgent answers with a fixed sequence of replies, cycling when the
// sequence is exhausted. It never looks at message content.
type ScriptedAgent struct {
	name        string
	description string
	handoffs    []string
	replies     []Reply

	next   int
	logger *zap.Logger
	mu     sync.Mutex
}

// NewScriptedAgent creates a scripted participant. Every reply that hands off must
// target a name listed in handoffs.
func NewScriptedAgent(name, description string, handoffs []string, replies ...Reply) (*ScriptedAgent, error) {
	if name == "" {
		return nil, fmt.Errorf("scripted agent requires a name")
	}
	if lo.Contains(handoffs, "") {
		return nil, fmt.Errorf("agent %s: handoff targets must be non-empty", name)
	}
	for i, r := range replies {
		if r.HandoffTo != "" && !lo.Contains(handoffs, r.HandoffTo) {
			return nil, fmt.Errorf("agent %s: reply %d hands off to %q which is not in handoffs %v", name, i, r.HandoffTo, handoffs)
		}
	}
	if description == "" {
		description = "A scripted agent."
	}
	return &ScriptedAgent{
		name:        name,
		description: description,
		handoffs:    lo.Uniq(handoffs),
		replies:     replies,
		logger:      zap.NewNop(),
	}, nil
}

// WithLogger sets the logger and returns the agent.
func (a *ScriptedAgent) WithLogger(logger *zap.Logger) *ScriptedAgent {
	if logger != nil {
		a.logger = logger.With(zap.String("agent", a.name))
	}
	return a
}

func (a *ScriptedAgent) Name() string        { return a.name }
func (a *ScriptedAgent) Description() string { return a.description }

// Handoffs returns the names this agent may hand off to.
func (a *ScriptedAgent) Handoffs() []string {
	return append([]string(nil), a.handoffs...)
}

// ProducedMessageKinds reports HandoffMessage only when handoff targets are configured.
func (a *ScriptedAgent) ProducedMessageKinds() []messages.Kind {
	if len(a.handoffs) > 0 {
		return []messages.Kind{messages.KindHandoff, messages.KindText}
	}
	return []messages.Kind{messages.KindText}
}

// OnMessages returns the next scripted reply. With no replies configured the
// agent acknowledges with a plain text message.
func (a *ScriptedAgent) OnMessages(ctx context.Context, thread []messages.Message) ([]messages.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if len(a.replies) == 0 {
		return []messages.Message{messages.NewTextMessage(a.name, "OK")}, nil
	}

	reply := a.replies[a.next%len(a.replies)]
	a.next++

	runID, _ := ctxkeys.RunID(ctx)
	a.logger.Debug("scripted reply",
		zap.String("run_id", runID),
		zap.Int("index", (a.next-1)%len(a.replies)),
		zap.Int("thread_len", len(thread)),
		zap.String("handoff_to", reply.HandoffTo),
	)

	if reply.HandoffTo != "" {
		return []messages.Message{messages.NewHandoffMessage(a.name, reply.HandoffTo, reply.Content)}, nil
	}
	return []messages.Message{messages.NewTextMessage(a.name, reply.Content)}, nil
}

// Reset rewinds the script.
func (a *ScriptedAgent) Reset(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.next = 0
	return nil
}

type scriptedConfig struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Handoffs    []string `json:"handoffs,omitempty"`
	Replies     []Reply  `json:"replies,omitempty"`
}

func (a *ScriptedAgent) DumpComponent() (declarative.ComponentModel, error) {
	config, err := declarative.EncodeConfig(scriptedConfig{
		Name:        a.name,
		Description: a.description,
		Handoffs:    a.handoffs,
		Replies:     a.replies,
	})
	if err != nil {
		return declarative.ComponentModel{}, err
	}
	return declarative.ComponentModel{
		Provider:    ProviderScripted,
		Description: a.description,
		Config:      config,
	}, nil
}

// Register adds the scripted agent provider to registry.
func Register(registry *declarative.ComponentRegistry) error {
	return registry.Register(ProviderScripted, func(model declarative.ComponentModel, _ *declarative.ComponentRegistry) (any, error) {
		var cfg scriptedConfig
		if err := declarative.DecodeConfig(model.Config, &cfg); err != nil {
			return nil, err
		}
		if cfg.Description == "" {
			cfg.Description = model.Description
		}
		return NewScriptedAgent(cfg.Name, cfg.Description, cfg.Handoffs, cfg.Replies...)
	})
}
