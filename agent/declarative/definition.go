package declarative

// ComponentModel describes one buildable component (a participant or a termination
// condition) inside a team document. Provider selects the factory registered in a
// ComponentRegistry; Config is handed to that factory.
type ComponentModel struct {
	Provider    string         `yaml:"provider" json:"provider" validate:"required"`
	Description string         `yaml:"description,omitempty" json:"description,omitempty"`
	Config      map[string]any `yaml:"config,omitempty" json:"config,omitempty"`
}

// TeamDefinition is the declarative form of a swarm team.
// This struct is designed to be deserialized from YAML or JSON files.
type TeamDefinition struct {
	Name        string `yaml:"name,omitempty" json:"name,omitempty" validate:"omitempty,max=128"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	// Participants are ordered; the first one is the initial speaker.
	Participants []ComponentModel `yaml:"participants" json:"participants" validate:"required,min=1,dive"`

	TerminationCondition *ComponentModel `yaml:"termination_condition,omitempty" json:"termination_condition,omitempty"`

	// MaxTurns is nil for no limit.
	MaxTurns *int `yaml:"max_turns,omitempty" json:"max_turns,omitempty" validate:"omitempty,min=1"`

	EmitTeamEvents bool `yaml:"emit_team_events" json:"emit_team_events"`
}

// Component is implemented by runtime objects that can describe themselves as a
// ComponentModel.
type Component interface {
	DumpComponent() (ComponentModel, error)
}
