package swarm

import (
	"context"
	"reflect"

	"github.com/samber/lo"

	"github.com/BaSui01/swarmflow/agent/messages"
	"github.com/BaSui01/swarmflow/types"
)

// Participant is the routing view of a team member.
type Participant interface {
	Name() string
	Description() string
	// ProducedMessageKinds lists the message kinds this participant may emit.
	ProducedMessageKinds() []messages.Kind
}

// ChatAgent is a participant the run loop can drive.
type ChatAgent interface {
	Participant

	// OnMessages is called when the agent is the selected speaker. thread is the
	// full conversation so far; the returned messages are appended to it.
	OnMessages(ctx context.Context, thread []messages.Message) ([]messages.Message, error)

	Reset(ctx context.Context) error
}

type participantInfo struct {
	name        string
	description string
	kinds       []messages.Kind
}

// Registry is the ordered, immutable set of participants in a team.
type Registry struct {
	participants []participantInfo
	index        map[string]int
}

// NewRegistry builds a registry from participants in order. The first participant
// is the initial speaker and must be able to produce handoff messages.
func NewRegistry(participants ...Participant) (*Registry, error) {
	if len(participants) == 0 {
		return nil, types.NewError(types.ErrInvalidTeamConfiguration, "at least one participant is required")
	}

	r := &Registry{
		participants: make([]participantInfo, 0, len(participants)),
		index:        make(map[string]int, len(participants)),
	}
	for i, p := range participants {
		if isNil(p) {
			return nil, types.Errorf(types.ErrInvalidTeamConfiguration, "participant %d is nil", i)
		}
		name := p.Name()
		if name == "" {
			return nil, types.Errorf(types.ErrInvalidTeamConfiguration, "participant %d has an empty name", i)
		}
		if _, dup := r.index[name]; dup {
			return nil, types.Errorf(types.ErrInvalidTeamConfiguration, "duplicate participant name %q", name)
		}
		r.index[name] = i
		r.participants = append(r.participants, participantInfo{
			name:        name,
			description: p.Description(),
			kinds:       append([]messages.Kind(nil), p.ProducedMessageKinds()...),
		})
	}

	first := r.participants[0]
	if !lo.Contains(first.kinds, messages.KindHandoff) {
		return nil, types.Errorf(types.ErrInvalidTeamConfiguration,
			"the first participant %q must be able to produce handoff messages", first.name)
	}
	return r, nil
}

// Names returns participant names in registration order.
func (r *Registry) Names() []string {
	return lo.Map(r.participants, func(p participantInfo, _ int) string { return p.name })
}

func (r *Registry) Contains(name string) bool {
	_, ok := r.index[name]
	return ok
}

// First returns the initial speaker.
func (r *Registry) First() string {
	return r.participants[0].name
}

func (r *Registry) Len() int {
	return len(r.participants)
}

// Description returns the description of name, or "" when name is unknown.
func (r *Registry) Description(name string) string {
	i, ok := r.index[name]
	if !ok {
		return ""
	}
	return r.participants[i].description
}

// CanProduce reports whether name declared kind among its produced message kinds.
func (r *Registry) CanProduce(name string, kind messages.Kind) bool {
	i, ok := r.index[name]
	if !ok {
		return false
	}
	return lo.Contains(r.participants[i].kinds, kind)
}

// isNil also catches typed nil pointers stored in an interface.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
