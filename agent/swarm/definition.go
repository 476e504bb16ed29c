package swarm

import (
	"fmt"

	"github.com/BaSui01/swarmflow/agent/declarative"
	"github.com/BaSui01/swarmflow/agent/termination"
	"github.com/BaSui01/swarmflow/types"
)

// FromDefinition builds a team from a declarative document. Components are built
// through registry; opts are applied after the document's own settings so callers
// can add a logger, metrics or a checkpoint store.
func FromDefinition(def *declarative.TeamDefinition, registry *declarative.ComponentRegistry, opts ...TeamOption) (*Team, error) {
	if err := registry.Validate(def); err != nil {
		return nil, types.WrapError(err, types.ErrInvalidTeamConfiguration, "invalid team definition")
	}

	participants := make([]ChatAgent, 0, len(def.Participants))
	for i, model := range def.Participants {
		component, err := registry.Build(model)
		if err != nil {
			return nil, types.WrapError(err, types.ErrInvalidTeamConfiguration, fmt.Sprintf("participant %d", i))
		}
		agent, ok := component.(ChatAgent)
		if !ok {
			return nil, types.Errorf(types.ErrInvalidTeamConfiguration,
				"participant %d: provider %s built %T which is not a chat agent", i, model.Provider, component)
		}
		participants = append(participants, agent)
	}

	var base []TeamOption
	if def.Name != "" {
		base = append(base, WithName(def.Name))
	}
	if def.Description != "" {
		base = append(base, WithDescription(def.Description))
	}
	if def.TerminationCondition != nil {
		condition, err := termination.Build(registry, *def.TerminationCondition)
		if err != nil {
			return nil, types.WrapError(err, types.ErrInvalidTeamConfiguration, "termination condition")
		}
		base = append(base, WithTermination(condition))
	}
	if def.MaxTurns != nil {
		base = append(base, WithMaxTurns(*def.MaxTurns))
	}
	base = append(base, WithEmitTeamEvents(def.EmitTeamEvents))

	return NewTeam(participants, append(base, opts...)...)
}

// Definition dumps the team to its declarative form. Every participant and the
// termination condition must implement declarative.Component.
func (t *Team) Definition() (*declarative.TeamDefinition, error) {
	def := &declarative.TeamDefinition{
		Name:           t.name,
		Description:    t.description,
		Participants:   make([]declarative.ComponentModel, 0, len(t.participants)),
		EmitTeamEvents: t.emitTeamEvents,
	}

	for _, p := range t.participants {
		component, ok := p.(declarative.Component)
		if !ok {
			return nil, fmt.Errorf("participant %s (%T) cannot be dumped", p.Name(), p)
		}
		model, err := component.DumpComponent()
		if err != nil {
			return nil, fmt.Errorf("dump participant %s: %w", p.Name(), err)
		}
		def.Participants = append(def.Participants, model)
	}

	if t.termination != nil {
		component, ok := t.termination.(declarative.Component)
		if !ok {
			return nil, fmt.Errorf("termination condition %T cannot be dumped", t.termination)
		}
		model, err := component.DumpComponent()
		if err != nil {
			return nil, fmt.Errorf("dump termination condition: %w", err)
		}
		def.TerminationCondition = &model
	}

	if t.maxTurns > 0 {
		maxTurns := t.maxTurns
		def.MaxTurns = &maxTurns
	}
	return def, nil
}
