package termination

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/samber/lo"

	"github.com/BaSui01/swarmflow/agent/declarative"
	"github.com/BaSui01/swarmflow/agent/messages"
)

// ErrTerminated is returned by Check once a condition has fired and not been reset.
var ErrTerminated = errors.New("termination condition already reached")

// Source is the sender name used on stop messages produced by conditions.
const Source = "termination"

// Provider names used in declarative documents.
const (
	ProviderMaxMessage  = "termination.max_message"
	ProviderHandoff     = "termination.handoff"
	ProviderTextMention = "termination.text_mention"
	ProviderOr          = "termination.or"
)

// Condition is evaluated by the run loop after every batch of new messages.
type Condition interface {
	// Check inspects the messages appended since the previous call and returns a
	// stop message once the condition is met.
	Check(ctx context.Context, delta []messages.Message) (*messages.StopMessage, error)

	Terminated() bool

	Reset(ctx context.Context) error
}

// MaxMessageTermination stops after a number of messages has been observed.
type MaxMessageTermination struct {
	maxMessages int
	count       int
	terminated  bool
	mu          sync.Mutex
}

// NewMaxMessageTermination creates a condition that fires after maxMessages messages.
func NewMaxMessageTermination(maxMessages int) (*MaxMessageTermination, error) {
	if maxMessages < 1 {
		return nil, fmt.Errorf("max messages must be positive, got %d", maxMessages)
	}
	return &MaxMessageTermination{maxMessages: maxMessages}, nil
}

func (c *MaxMessageTermination) Check(ctx context.Context, delta []messages.Message) (*messages.StopMessage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.terminated {
		return nil, ErrTerminated
	}
	c.count += len(delta)
	if c.count >= c.maxMessages {
		c.terminated = true
		return messages.NewStopMessage(Source, fmt.Sprintf("Maximum number of messages %d reached, current message count: %d", c.maxMessages, c.count)), nil
	}
	return nil, nil
}

func (c *MaxMessageTermination) Terminated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.terminated
}

func (c *MaxMessageTermination) Reset(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.count = 0
	c.terminated = false
	return nil
}

type maxMessageConfig struct {
	MaxMessages int `json:"max_messages"`
}

func (c *MaxMessageTermination) DumpComponent() (declarative.ComponentModel, error) {
	config, err := declarative.EncodeConfig(maxMessageConfig{MaxMessages: c.maxMessages})
	if err != nil {
		return declarative.ComponentModel{}, err
	}
	return declarative.ComponentModel{Provider: ProviderMaxMessage, Config: config}, nil
}

// HandoffTermination stops when a handoff targets a given name. Handing off to a
// name outside the team (for example "user") pauses the run for a human reply.
type HandoffTermination struct {
	target     string
	terminated bool
	mu         sync.Mutex
}

// NewHandoffTermination creates a condition that fires on handoffs to target.
func NewHandoffTermination(target string) (*HandoffTermination, error) {
	if target == "" {
		return nil, fmt.Errorf("handoff termination requires a target")
	}
	return &HandoffTermination{target: target}, nil
}

func (c *HandoffTermination) Check(ctx context.Context, delta []messages.Message) (*messages.StopMessage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.terminated {
		return nil, ErrTerminated
	}
	for _, m := range delta {
		if h, ok := messages.AsHandoff(m); ok && h.Target == c.target {
			c.terminated = true
			return messages.NewStopMessage(Source, fmt.Sprintf("Handoff to %s from %s detected.", h.Target, h.Source)), nil
		}
	}
	return nil, nil
}

func (c *HandoffTermination) Terminated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.terminated
}

func (c *HandoffTermination) Reset(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.terminated = false
	return nil
}

type handoffConfig struct {
	Target string `json:"target"`
}

func (c *HandoffTermination) DumpComponent() (declarative.ComponentModel, error) {
	config, err := declarative.EncodeConfig(handoffConfig{Target: c.target})
	if err != nil {
		return declarative.ComponentModel{}, err
	}
	return declarative.ComponentModel{Provider: ProviderHandoff, Config: config}, nil
}

// TextMentionTermination stops when a message text contains a phrase. When sources
// is non-empty only messages from those senders are considered.
type TextMentionTermination struct {
	text       string
	sources    []string
	terminated bool
	mu         sync.Mutex
}

// NewTextMentionTermination creates a condition that fires when text is mentioned.
func NewTextMentionTermination(text string, sources ...string) (*TextMentionTermination, error) {
	if text == "" {
		return nil, fmt.Errorf("text mention termination requires text")
	}
	return &TextMentionTermination{text: text, sources: sources}, nil
}

func (c *TextMentionTermination) Check(ctx context.Context, delta []messages.Message) (*messages.StopMessage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.terminated {
		return nil, ErrTerminated
	}
	for _, m := range delta {
		if len(c.sources) > 0 && !lo.Contains(c.sources, m.Sender()) {
			continue
		}
		if strings.Contains(m.Text(), c.text) {
			c.terminated = true
			return messages.NewStopMessage(Source, fmt.Sprintf("Text '%s' mentioned", c.text)), nil
		}
	}
	return nil, nil
}

func (c *TextMentionTermination) Terminated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.terminated
}

func (c *TextMentionTermination) Reset(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.terminated = false
	return nil
}

type textMentionConfig struct {
	Text    string   `json:"text"`
	Sources []string `json:"sources,omitempty"`
}

func (c *TextMentionTermination) DumpComponent() (declarative.ComponentModel, error) {
	config, err := declarative.EncodeConfig(textMentionConfig{Text: c.text, Sources: c.sources})
	if err != nil {
		return declarative.ComponentModel{}, err
	}
	return declarative.ComponentModel{Provider: ProviderTextMention, Config: config}, nil
}

// OrTermination fires as soon as any child fires.
type OrTermination struct {
	conditions []Condition
}

// Or combines conditions.
func Or(conditions ...Condition) *OrTermination {
	return &OrTermination{conditions: conditions}
}

func (c *OrTermination) Check(ctx context.Context, delta []messages.Message) (*messages.StopMessage, error) {
	if c.Terminated() {
		return nil, ErrTerminated
	}

	var reasons []string
	for _, child := range c.conditions {
		stop, err := child.Check(ctx, delta)
		if err != nil {
			return nil, err
		}
		if stop != nil {
			reasons = append(reasons, stop.Content)
		}
	}
	if len(reasons) == 0 {
		return nil, nil
	}
	return messages.NewStopMessage(Source, strings.Join(reasons, "; ")), nil
}

func (c *OrTermination) Terminated() bool {
	for _, child := range c.conditions {
		if child.Terminated() {
			return true
		}
	}
	return false
}

// Reset resets every child and joins their errors.
func (c *OrTermination) Reset(ctx context.Context) error {
	var errs []error
	for _, child := range c.conditions {
		if err := child.Reset(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type orConfig struct {
	Conditions []declarative.ComponentModel `json:"conditions"`
}

func (c *OrTermination) DumpComponent() (declarative.ComponentModel, error) {
	children := make([]declarative.ComponentModel, 0, len(c.conditions))
	for _, child := range c.conditions {
		component, ok := child.(declarative.Component)
		if !ok {
			return declarative.ComponentModel{}, fmt.Errorf("termination condition %T cannot be dumped", child)
		}
		model, err := component.DumpComponent()
		if err != nil {
			return declarative.ComponentModel{}, err
		}
		children = append(children, model)
	}
	config, err := declarative.EncodeConfig(orConfig{Conditions: children})
	if err != nil {
		return declarative.ComponentModel{}, err
	}
	return declarative.ComponentModel{Provider: ProviderOr, Config: config}, nil
}
