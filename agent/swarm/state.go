package swarm

import (
	"encoding/json"

	"github.com/BaSui01/swarmflow/agent/messages"
	"github.com/BaSui01/swarmflow/types"
)

// Persisted document metadata.
const (
	ManagerStateType    = "SwarmManagerState"
	ManagerStateVersion = "1.0.0"
)

// ManagerState is the persisted form of a manager: the thread, the turn counter
// and the current speaker.
type ManagerState struct {
	Type           string                `json:"type"`
	Version        string                `json:"version"`
	MessageThread  []messages.Serialized `json:"message_thread"`
	CurrentTurn    int                   `json:"current_turn"`
	CurrentSpeaker string                `json:"current_speaker"`
}

// Encode marshals the state to JSON.
func (s *ManagerState) Encode() ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, types.WrapError(err, types.ErrInternalError, "encode manager state")
	}
	return data, nil
}

// persistedState mirrors ManagerState with pointer fields so absent keys can be
// told apart from zero values.
type persistedState struct {
	Type           string                 `json:"type"`
	Version        string                 `json:"version"`
	MessageThread  *[]messages.Serialized `json:"message_thread"`
	CurrentTurn    *int                   `json:"current_turn"`
	CurrentSpeaker *string                `json:"current_speaker"`
}

// DecodeManagerState parses a persisted document. message_thread, current_turn
// and current_speaker must all be present.
func DecodeManagerState(data []byte) (*ManagerState, error) {
	var raw persistedState
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, types.WrapError(err, types.ErrDeserialization, "decode manager state")
	}

	switch {
	case raw.MessageThread == nil:
		return nil, types.NewError(types.ErrDeserialization, "manager state is missing required field \"message_thread\"")
	case raw.CurrentTurn == nil:
		return nil, types.NewError(types.ErrDeserialization, "manager state is missing required field \"current_turn\"")
	case raw.CurrentSpeaker == nil:
		return nil, types.NewError(types.ErrDeserialization, "manager state is missing required field \"current_speaker\"")
	}
	if raw.Type != "" && raw.Type != ManagerStateType {
		return nil, types.Errorf(types.ErrDeserialization, "unexpected state type %q, want %q", raw.Type, ManagerStateType)
	}

	return &ManagerState{
		Type:           ManagerStateType,
		Version:        raw.Version,
		MessageThread:  *raw.MessageThread,
		CurrentTurn:    *raw.CurrentTurn,
		CurrentSpeaker: *raw.CurrentSpeaker,
	}, nil
}
