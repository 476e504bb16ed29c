package termination

import (
	"fmt"

	"github.com/BaSui01/swarmflow/agent/declarative"
)

// Register adds the built-in condition providers to registry.
func Register(registry *declarative.ComponentRegistry) error {
	builders := map[string]declarative.BuildFunc{
		ProviderMaxMessage: func(model declarative.ComponentModel, _ *declarative.ComponentRegistry) (any, error) {
			var cfg maxMessageConfig
			if err := declarative.DecodeConfig(model.Config, &cfg); err != nil {
				return nil, err
			}
			return NewMaxMessageTermination(cfg.MaxMessages)
		},
		ProviderHandoff: func(model declarative.ComponentModel, _ *declarative.ComponentRegistry) (any, error) {
			var cfg handoffConfig
			if err := declarative.DecodeConfig(model.Config, &cfg); err != nil {
				return nil, err
			}
			return NewHandoffTermination(cfg.Target)
		},
		ProviderTextMention: func(model declarative.ComponentModel, _ *declarative.ComponentRegistry) (any, error) {
			var cfg textMentionConfig
			if err := declarative.DecodeConfig(model.Config, &cfg); err != nil {
				return nil, err
			}
			return NewTextMentionTermination(cfg.Text, cfg.Sources...)
		},
		ProviderOr: func(model declarative.ComponentModel, registry *declarative.ComponentRegistry) (any, error) {
			var cfg orConfig
			if err := declarative.DecodeConfig(model.Config, &cfg); err != nil {
				return nil, err
			}
			if len(cfg.Conditions) == 0 {
				return nil, fmt.Errorf("or termination requires at least one condition")
			}
			children := make([]Condition, 0, len(cfg.Conditions))
			for _, childModel := range cfg.Conditions {
				child, err := Build(registry, childModel)
				if err != nil {
					return nil, err
				}
				children = append(children, child)
			}
			return Or(children...), nil
		},
	}

	for provider, build := range builders {
		if err := registry.Register(provider, build); err != nil {
			return err
		}
	}
	return nil
}

// Build constructs a Condition from model.
func Build(registry *declarative.ComponentRegistry, model declarative.ComponentModel) (Condition, error) {
	component, err := registry.Build(model)
	if err != nil {
		return nil, err
	}
	condition, ok := component.(Condition)
	if !ok {
		return nil, fmt.Errorf("component %q (%T) is not a termination condition", model.Provider, component)
	}
	return condition, nil
}
