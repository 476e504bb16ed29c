package swarm

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/BaSui01/swarmflow/agent/messages"
	"github.com/BaSui01/swarmflow/agent/persistence"
	"github.com/BaSui01/swarmflow/agent/termination"
	"github.com/BaSui01/swarmflow/internal/metrics"
	"github.com/BaSui01/swarmflow/types"
)

const (
	DefaultName        = "Swarm"
	DefaultDescription = "A team of agents."

	tracerName = "github.com/BaSui01/swarmflow/agent/swarm"
)

type teamOptions struct {
	name           string
	description    string
	termination    termination.Condition
	maxTurns       int
	customKinds    []messages.KindDescriptor
	emitTeamEvents bool
	eventSink      EventSink
	logger         *zap.Logger
	metrics        *metrics.Collector
	tracerProvider trace.TracerProvider
	store          persistence.StateStore
	conversationID string
}

// TeamOption configures a Team.
type TeamOption func(*teamOptions)

func WithName(name string) TeamOption {
	return func(o *teamOptions) { o.name = name }
}

func WithDescription(description string) TeamOption {
	return func(o *teamOptions) { o.description = description }
}

// WithTermination sets the condition checked after every batch of new messages.
func WithTermination(condition termination.Condition) TeamOption {
	return func(o *teamOptions) { o.termination = condition }
}

// WithMaxTurns limits the number of participant turns per run. Zero means no limit.
func WithMaxTurns(n int) TeamOption {
	return func(o *teamOptions) { o.maxTurns = n }
}

// WithCustomMessageKinds registers additional message kinds for state loading.
func WithCustomMessageKinds(kinds ...messages.KindDescriptor) TeamOption {
	return func(o *teamOptions) { o.customKinds = append(o.customKinds, kinds...) }
}

// WithEmitTeamEvents enables SpeakerSelectedEvent delivery to the event sink.
func WithEmitTeamEvents(emit bool) TeamOption {
	return func(o *teamOptions) { o.emitTeamEvents = emit }
}

func WithEventSink(sink EventSink) TeamOption {
	return func(o *teamOptions) { o.eventSink = sink }
}

func WithLogger(logger *zap.Logger) TeamOption {
	return func(o *teamOptions) { o.logger = logger }
}

func WithMetrics(collector *metrics.Collector) TeamOption {
	return func(o *teamOptions) { o.metrics = collector }
}

func WithTracerProvider(tp trace.TracerProvider) TeamOption {
	return func(o *teamOptions) { o.tracerProvider = tp }
}

// WithCheckpointStore saves the manager state to store under conversationID after
// every turn and at the end of every run.
func WithCheckpointStore(store persistence.StateStore, conversationID string) TeamOption {
	return func(o *teamOptions) {
		o.store = store
		o.conversationID = conversationID
	}
}

// Team is a swarm of chat agents whose turns are routed by handoff messages.
// All methods are safe for concurrent use; a second Run, Reset or LoadState
// while a run is in progress fails with ErrTeamRunning.
type Team struct {
	name        string
	description string

	participants []ChatAgent
	agents       map[string]ChatAgent
	registry     *Registry
	thread       *Thread
	manager      *Manager
	termination  termination.Condition
	maxTurns     int

	emitTeamEvents bool
	eventSink      EventSink

	store          persistence.StateStore
	conversationID string

	logger  *zap.Logger
	metrics *metrics.Collector
	tracer  trace.Tracer

	mu sync.Mutex
}

// NewTeam assembles a team. The first participant is the initial speaker and must
// be able to produce handoff messages.
func NewTeam(participants []ChatAgent, opts ...TeamOption) (*Team, error) {
	o := teamOptions{
		name:        DefaultName,
		description: DefaultDescription,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	if o.tracerProvider == nil {
		o.tracerProvider = otel.GetTracerProvider()
	}
	if o.maxTurns < 0 {
		return nil, types.Errorf(types.ErrInvalidTeamConfiguration, "max turns must be non-negative, got %d", o.maxTurns)
	}
	if o.store != nil {
		if err := persistence.ValidateConversationID(o.conversationID); err != nil {
			return nil, types.WrapError(err, types.ErrInvalidTeamConfiguration, "checkpoint store")
		}
	}

	routing := make([]Participant, len(participants))
	agents := make(map[string]ChatAgent, len(participants))
	for i, p := range participants {
		if isNil(p) {
			return nil, types.Errorf(types.ErrInvalidTeamConfiguration, "participant %d is nil", i)
		}
		routing[i] = p
		agents[p.Name()] = p
	}
	registry, err := NewRegistry(routing...)
	if err != nil {
		return nil, err
	}

	factory, err := messages.NewFactory(o.customKinds...)
	if err != nil {
		return nil, err
	}

	logger := o.logger.With(zap.String("component", "swarm"), zap.String("team", o.name))
	thread := NewThread()
	manager, err := NewManager(registry, thread, factory, o.termination, logger)
	if err != nil {
		return nil, err
	}

	return &Team{
		name:           o.name,
		description:    o.description,
		participants:   append([]ChatAgent(nil), participants...),
		agents:         agents,
		registry:       registry,
		thread:         thread,
		manager:        manager,
		termination:    o.termination,
		maxTurns:       o.maxTurns,
		emitTeamEvents: o.emitTeamEvents,
		eventSink:      o.eventSink,
		store:          o.store,
		conversationID: o.conversationID,
		logger:         logger,
		metrics:        o.metrics,
		tracer:         o.tracerProvider.Tracer(tracerName),
	}, nil
}

func (t *Team) Name() string        { return t.name }
func (t *Team) Description() string { return t.description }

// Participants returns participant names in order.
func (t *Team) Participants() []string { return t.registry.Names() }

// CurrentSpeaker returns the participant that holds the floor.
func (t *Team) CurrentSpeaker() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.manager.CurrentSpeaker()
}

// Messages returns a copy of the conversation thread.
func (t *Team) Messages() []messages.Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.thread.Messages()
}

// Reset clears the conversation, resets the termination condition and every
// participant.
func (t *Team) Reset(ctx context.Context) error {
	if !t.mu.TryLock() {
		return types.NewError(types.ErrTeamRunning, "cannot reset a team while it is running")
	}
	defer t.mu.Unlock()

	start := time.Now()
	errs := []error{t.manager.Reset(ctx)}
	for _, p := range t.participants {
		if err := p.Reset(ctx); err != nil {
			errs = append(errs, fmt.Errorf("reset participant %s: %w", p.Name(), err))
		}
	}
	err := errors.Join(errs...)
	t.metrics.RecordStateOperation("reset", err, time.Since(start))
	t.logger.Info("team reset", zap.Error(err))
	return err
}

// SaveState snapshots the routing state. It waits for a running Run to finish.
func (t *Team) SaveState() (*ManagerState, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	start := time.Now()
	state, err := t.manager.SaveState()
	t.metrics.RecordStateOperation("save", err, time.Since(start))
	return state, err
}

// LoadState restores routing state saved by SaveState.
func (t *Team) LoadState(state *ManagerState) error {
	if !t.mu.TryLock() {
		return types.NewError(types.ErrTeamRunning, "cannot load state while the team is running")
	}
	defer t.mu.Unlock()

	start := time.Now()
	err := t.manager.LoadState(state)
	t.metrics.RecordStateOperation("load", err, time.Since(start))
	if err == nil {
		t.logger.Info("state loaded",
			zap.Int("messages", t.thread.Len()),
			zap.Int("turn", t.manager.CurrentTurn()),
			zap.String("speaker", t.manager.CurrentSpeaker()),
		)
	}
	return err
}

// SaveTo writes the routing state to store under conversationID.
func (t *Team) SaveTo(ctx context.Context, store persistence.StateStore, conversationID string) error {
	state, err := t.SaveState()
	if err != nil {
		return err
	}
	return saveState(ctx, store, conversationID, state)
}

// LoadFrom restores routing state from store. A missing conversation yields an
// error wrapping persistence.ErrNotFound.
func (t *Team) LoadFrom(ctx context.Context, store persistence.StateStore, conversationID string) error {
	data, err := store.LoadState(ctx, conversationID)
	if err != nil {
		return types.WrapError(err, types.ErrStorage, "load state "+conversationID)
	}
	state, err := DecodeManagerState(data)
	if err != nil {
		return err
	}
	return t.LoadState(state)
}

func saveState(ctx context.Context, store persistence.StateStore, conversationID string, state *ManagerState) error {
	data, err := state.Encode()
	if err != nil {
		return err
	}
	if err := store.SaveState(ctx, conversationID, data); err != nil {
		return types.WrapError(err, types.ErrStorage, "save state "+conversationID).WithRetryable(true)
	}
	return nil
}
