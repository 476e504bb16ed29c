package swarm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BaSui01/swarmflow/agent/declarative"
	"github.com/BaSui01/swarmflow/agent/participants"
	"github.com/BaSui01/swarmflow/agent/termination"
	"github.com/BaSui01/swarmflow/types"
)

const travelTeamYAML = `
name: travel
description: Travel desk
participants:
  - provider: participants.scripted
    config:
      name: Planner
      handoffs: [Booker]
      replies:
        - content: let me hand you over
          handoff_to: Booker
  - provider: participants.scripted
    config:
      name: Booker
      replies:
        - content: booked, TERMINATE
termination_condition:
  provider: termination.or
  config:
    conditions:
      - provider: termination.text_mention
        config:
          text: TERMINATE
      - provider: termination.max_message
        config:
          max_messages: 20
max_turns: 10
emit_team_events: true
`

func newComponentRegistry(t *testing.T) *declarative.ComponentRegistry {
	t.Helper()
	registry := declarative.NewComponentRegistry(zap.NewNop())
	require.NoError(t, participants.Register(registry))
	require.NoError(t, termination.Register(registry))
	return registry
}

func TestFromDefinition_RunsTeam(t *testing.T) {
	def, err := declarative.NewYAMLLoader().LoadBytes([]byte(travelTeamYAML), "yaml")
	require.NoError(t, err)

	team, err := FromDefinition(def, newComponentRegistry(t))
	require.NoError(t, err)
	assert.Equal(t, "travel", team.Name())
	assert.Equal(t, []string{"Planner", "Booker"}, team.Participants())

	result, err := team.Run(context.Background(), text("user", "a flight to Lisbon"))
	require.NoError(t, err)
	assert.Len(t, result.Messages, 3)
	assert.Contains(t, result.StopReason, "TERMINATE")
	assert.Equal(t, "Booker", team.CurrentSpeaker())
}

func TestFromDefinition_DumpRoundTrip(t *testing.T) {
	registry := newComponentRegistry(t)
	def, err := declarative.NewYAMLLoader().LoadBytes([]byte(travelTeamYAML), "yaml")
	require.NoError(t, err)

	team, err := FromDefinition(def, registry)
	require.NoError(t, err)

	dumped, err := team.Definition()
	require.NoError(t, err)
	assert.Equal(t, def.Name, dumped.Name)
	assert.Equal(t, def.Description, dumped.Description)
	assert.Equal(t, *def.MaxTurns, *dumped.MaxTurns)
	assert.True(t, dumped.EmitTeamEvents)
	require.Len(t, dumped.Participants, 2)
	require.NotNil(t, dumped.TerminationCondition)
	assert.Equal(t, termination.ProviderOr, dumped.TerminationCondition.Provider)

	data, err := declarative.Marshal(dumped, "yaml")
	require.NoError(t, err)
	reloaded, err := declarative.NewYAMLLoader().LoadBytes(data, "yaml")
	require.NoError(t, err)

	rebuilt, err := FromDefinition(reloaded, registry)
	require.NoError(t, err)
	assert.Equal(t, team.Participants(), rebuilt.Participants())

	redumped, err := rebuilt.Definition()
	require.NoError(t, err)
	assert.Equal(t, dumped, redumped)
}

func TestFromDefinition_Errors(t *testing.T) {
	registry := newComponentRegistry(t)

	tests := []struct {
		name string
		yaml string
	}{
		{"no participants", `participants: []`},
		{"unknown provider", `
participants:
  - provider: participants.llm
`},
		{"first cannot hand off", `
participants:
  - provider: participants.scripted
    config: {name: Alice}
  - provider: participants.scripted
    config: {name: Bob, handoffs: [Alice]}
`},
		{"termination is not a condition", `
participants:
  - provider: participants.scripted
    config: {name: Alice, handoffs: [Bob]}
termination_condition:
  provider: participants.scripted
  config: {name: Bob}
`},
		{"participant is not an agent", `
participants:
  - provider: termination.handoff
    config: {target: user}
`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def, err := declarative.NewYAMLLoader().LoadBytes([]byte(tt.yaml), "yaml")
			require.NoError(t, err)

			_, err = FromDefinition(def, registry)
			require.Error(t, err)
			assert.True(t, types.IsErrorCode(err, types.ErrInvalidTeamConfiguration))
		})
	}
}

func TestDefinition_NonDumpableParticipant(t *testing.T) {
	team, err := NewTeam([]ChatAgent{newFakeAgent("Alice", true)})
	require.NoError(t, err)

	_, err = team.Definition()
	assert.Error(t, err)
}
