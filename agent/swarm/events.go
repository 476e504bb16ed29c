package swarm

import (
	"context"
	"time"
)

// Event is emitted by a team while it runs.
type Event interface {
	EventType() string
}

// SpeakerSelectedEvent is emitted once per turn when team events are enabled.
type SpeakerSelectedEvent struct {
	Team    string    `json:"team"`
	Speaker string    `json:"speaker"`
	Turn    int       `json:"turn"`
	Handoff bool      `json:"handoff"`
	At      time.Time `json:"at"`
}

func (e SpeakerSelectedEvent) EventType() string { return "speaker_selected" }

// EventSink receives team events. It is called synchronously from the run loop.
type EventSink func(ctx context.Context, event Event)
