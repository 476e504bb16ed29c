package messages

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/samber/lo"

	"github.com/BaSui01/swarmflow/types"
)

// Constructor returns a zero value of a message kind, ready to be decoded into.
type Constructor func() Message

// KindDescriptor registers a message kind with a Factory.
type KindDescriptor struct {
	Kind Kind
	New  Constructor
}

// Serialized is the kind-preserving persisted form of a message.
type Serialized struct {
	Kind    Kind            `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

// BuiltinKinds returns descriptors for every kind shipped with this package.
func BuiltinKinds() []KindDescriptor {
	return []KindDescriptor{
		{Kind: KindText, New: func() Message { return &TextMessage{} }},
		{Kind: KindHandoff, New: func() Message { return &HandoffMessage{} }},
		{Kind: KindStop, New: func() Message { return &StopMessage{} }},
		{Kind: KindToolCallSummary, New: func() Message { return &ToolCallSummaryMessage{} }},
	}
}

// Factory reconstructs messages from their serialized form.
// It is populated at construction and read-only afterwards.
type Factory struct {
	constructors map[Kind]Constructor
}

// NewFactory creates a factory holding the built-in kinds plus custom.
func NewFactory(custom ...KindDescriptor) (*Factory, error) {
	f := &Factory{constructors: make(map[Kind]Constructor)}
	for _, d := range BuiltinKinds() {
		f.constructors[d.Kind] = d.New
	}
	for _, d := range custom {
		if err := f.register(d); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func (f *Factory) register(d KindDescriptor) error {
	if d.Kind == "" || d.New == nil {
		return types.NewError(types.ErrInvalidTeamConfiguration, "custom message kind requires a kind and a constructor")
	}
	if _, exists := f.constructors[d.Kind]; exists {
		return types.Errorf(types.ErrInvalidTeamConfiguration, "message kind %q is already registered", d.Kind)
	}
	if got := d.New(); got == nil || got.Kind() != d.Kind {
		return types.Errorf(types.ErrInvalidTeamConfiguration, "constructor for message kind %q produces a different kind", d.Kind)
	}
	f.constructors[d.Kind] = d.New
	return nil
}

// IsRegistered reports whether kind can be reconstructed.
func (f *Factory) IsRegistered(kind Kind) bool {
	_, ok := f.constructors[kind]
	return ok
}

// Kinds lists registered kinds in lexical order.
func (f *Factory) Kinds() []Kind {
	kinds := lo.Keys(f.constructors)
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Create rebuilds a message from s. Unknown kinds and payloads that fail to decode or
// validate produce an ErrDeserialization error; for unknown kinds its cause carries
// ErrUnknownMessageKind.
func (f *Factory) Create(s Serialized) (Message, error) {
	newFn, ok := f.constructors[s.Kind]
	if !ok {
		unknown := types.Errorf(types.ErrUnknownMessageKind, "unknown message kind %q, registered kinds are %v", s.Kind, f.Kinds())
		return nil, types.WrapError(unknown, types.ErrDeserialization, "cannot rebuild message")
	}
	if len(s.Payload) == 0 {
		return nil, types.Errorf(types.ErrDeserialization, "message of kind %q has no payload", s.Kind)
	}

	msg := newFn()
	if err := json.Unmarshal(s.Payload, msg); err != nil {
		return nil, types.Errorf(types.ErrDeserialization, "decode %s payload", s.Kind).WithCause(err)
	}
	if err := msg.Validate(); err != nil {
		return nil, types.WrapError(err, types.ErrDeserialization, "invalid message payload")
	}
	return msg, nil
}

// Dump converts m to its serialized form. Messages that fail Validate are refused
// so that Create always rebuilds exactly what was dumped.
func Dump(m Message) (Serialized, error) {
	if m == nil {
		return Serialized{}, fmt.Errorf("dump message: nil message")
	}
	if err := m.Validate(); err != nil {
		return Serialized{}, fmt.Errorf("dump %s: %w", m.Kind(), err)
	}
	payload, err := json.Marshal(m)
	if err != nil {
		return Serialized{}, fmt.Errorf("dump %s: %w", m.Kind(), err)
	}
	return Serialized{Kind: m.Kind(), Payload: payload}, nil
}
