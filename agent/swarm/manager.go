package swarm

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/BaSui01/swarmflow/agent/messages"
	"github.com/BaSui01/swarmflow/agent/termination"
	"github.com/BaSui01/swarmflow/types"
)

// GroupChatManager decides who speaks next in a group chat and owns the
// persisted routing state.
type GroupChatManager interface {
	// ValidateGroupState checks candidate messages (or, failing that, the thread)
	// for a handoff to an unknown participant.
	ValidateGroupState(candidates []messages.Message) error

	// SelectSpeaker returns the names of the next speakers.
	SelectSpeaker(window []messages.Message) ([]string, error)

	Reset(ctx context.Context) error
	SaveState() (*ManagerState, error)
	LoadState(state *ManagerState) error
}

var _ GroupChatManager = (*Manager)(nil)

// Manager routes turns by handoff messages only. The first participant speaks
// first; whoever is named by the latest handoff speaks next; otherwise the
// current speaker keeps the floor.
//
// A Manager is not safe for concurrent use. Team serializes access to it.
type Manager struct {
	registry    *Registry
	thread      *Thread
	factory     *messages.Factory
	termination termination.Condition

	currentTurn    int
	currentSpeaker string

	logger *zap.Logger
}

// NewManager creates a manager over thread. A nil thread or factory is replaced
// with an empty thread and the built-in message kinds. condition may be nil.
func NewManager(registry *Registry, thread *Thread, factory *messages.Factory, condition termination.Condition, logger *zap.Logger) (*Manager, error) {
	if registry == nil {
		return nil, types.NewError(types.ErrInvalidTeamConfiguration, "participant registry is required")
	}
	if thread == nil {
		thread = NewThread()
	}
	if factory == nil {
		f, err := messages.NewFactory()
		if err != nil {
			return nil, err
		}
		factory = f
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Manager{
		registry:       registry,
		thread:         thread,
		factory:        factory,
		termination:    condition,
		currentSpeaker: registry.First(),
		logger:         logger.With(zap.String("component", "swarm_manager")),
	}, nil
}

// ValidateGroupState checks handoff targets. When candidates is non-empty, the
// first handoff among them decides the outcome and the thread is not consulted.
// Otherwise only the most recent handoff in the thread is checked; older ones
// are ignored even if their target is unknown.
func (m *Manager) ValidateGroupState(candidates []messages.Message) error {
	for _, msg := range candidates {
		if h, ok := messages.AsHandoff(msg); ok {
			if !m.registry.Contains(h.Target) {
				m.logger.Warn("invalid handoff target in new messages",
					zap.String("target", h.Target),
					zap.Strings("participants", m.registry.Names()),
				)
				return types.Errorf(types.ErrInvalidHandoffTarget,
					"the target %s is not one of the participants %v; if you are resuming with a new handoff message make sure its target is a valid participant",
					h.Target, m.registry.Names())
			}
			return nil
		}
	}

	if h, ok := m.thread.latestHandoff(); ok && !m.registry.Contains(h.Target) {
		m.logger.Warn("invalid handoff target in thread",
			zap.String("target", h.Target),
			zap.Strings("participants", m.registry.Names()),
		)
		return types.Errorf(types.ErrInvalidHandoffTarget,
			"the existing handoff target %s is not one of the participants %v; when resuming, include a handoff message with a valid participant as the target in the new task",
			h.Target, m.registry.Names())
	}
	return nil
}

// SelectSpeaker picks exactly one speaker from window. The most recent handoff in
// window moves the floor to its target; without one the current speaker keeps it.
// A handoff target outside the registry is a broken invariant and panics.
func (m *Manager) SelectSpeaker(window []messages.Message) ([]string, error) {
	h, ok := latestHandoff(window)
	if !ok {
		m.logger.Debug("no handoff, keeping current speaker", zap.String("speaker", m.currentSpeaker))
		return []string{m.currentSpeaker}, nil
	}

	if !m.registry.Contains(h.Target) {
		panic(fmt.Sprintf("swarm: handoff target %q is not a registered participant %v", h.Target, m.registry.Names()))
	}
	m.currentSpeaker = h.Target
	m.logger.Debug("speaker selected by handoff",
		zap.String("from", h.Source),
		zap.String("speaker", h.Target),
	)
	return []string{m.currentSpeaker}, nil
}

// Reset returns the manager to its initial state and resets the termination
// condition. Local state is always reset; only the condition's error is returned.
func (m *Manager) Reset(ctx context.Context) error {
	m.currentTurn = 0
	m.thread.clear()
	m.currentSpeaker = m.registry.First()

	if m.termination != nil {
		if err := m.termination.Reset(ctx); err != nil {
			return fmt.Errorf("reset termination condition: %w", err)
		}
	}
	return nil
}

// SaveState snapshots the thread, turn and speaker.
func (m *Manager) SaveState() (*ManagerState, error) {
	thread := make([]messages.Serialized, 0, m.thread.Len())
	for _, msg := range m.thread.messages {
		s, err := messages.Dump(msg)
		if err != nil {
			return nil, types.WrapError(err, types.ErrInternalError, "save manager state")
		}
		thread = append(thread, s)
	}
	return &ManagerState{
		Type:           ManagerStateType,
		Version:        ManagerStateVersion,
		MessageThread:  thread,
		CurrentTurn:    m.currentTurn,
		CurrentSpeaker: m.currentSpeaker,
	}, nil
}

// LoadState replaces the thread, turn and speaker with state. Messages are rebuilt
// through the manager's factory. Nothing is modified unless every message
// decodes. Handoff targets are not validated here; ValidateGroupState does that
// at the start of the next run.
func (m *Manager) LoadState(state *ManagerState) error {
	if state == nil {
		return types.NewError(types.ErrDeserialization, "manager state is nil")
	}
	if state.Type != "" && state.Type != ManagerStateType {
		return types.Errorf(types.ErrDeserialization, "unexpected state type %q, want %q", state.Type, ManagerStateType)
	}
	if state.CurrentTurn < 0 {
		return types.Errorf(types.ErrDeserialization, "current_turn must be non-negative, got %d", state.CurrentTurn)
	}
	if state.CurrentSpeaker == "" {
		return types.NewError(types.ErrDeserialization, "current_speaker must be non-empty")
	}

	thread := make([]messages.Message, 0, len(state.MessageThread))
	for i, s := range state.MessageThread {
		msg, err := m.factory.Create(s)
		if err != nil {
			return types.WrapError(err, types.ErrDeserialization, fmt.Sprintf("message %d", i))
		}
		thread = append(thread, msg)
	}

	if !m.registry.Contains(state.CurrentSpeaker) {
		m.logger.Warn("loaded speaker is not a registered participant",
			zap.String("speaker", state.CurrentSpeaker),
			zap.Strings("participants", m.registry.Names()),
		)
	}

	m.thread.replace(thread)
	m.currentTurn = state.CurrentTurn
	m.currentSpeaker = state.CurrentSpeaker
	return nil
}

func (m *Manager) CurrentSpeaker() string { return m.currentSpeaker }
func (m *Manager) CurrentTurn() int       { return m.currentTurn }

// AdvanceTurn increments the turn counter and returns the new value.
func (m *Manager) AdvanceTurn() int {
	m.currentTurn++
	return m.currentTurn
}

// ResetTurn sets the turn counter back to zero without touching the thread.
func (m *Manager) ResetTurn() {
	m.currentTurn = 0
}
