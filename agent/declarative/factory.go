package declarative

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// BuildFunc constructs a runtime component from its model. The registry is passed
// through so composite components can build their children.
type BuildFunc func(model ComponentModel, registry *ComponentRegistry) (any, error)

// ComponentRegistry maps provider names to build functions.
type ComponentRegistry struct {
	builders map[string]BuildFunc
	validate *validator.Validate
	logger   *zap.Logger
	mu       sync.RWMutex
}

// NewComponentRegistry creates an empty registry.
func NewComponentRegistry(logger *zap.Logger) *ComponentRegistry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ComponentRegistry{
		builders: make(map[string]BuildFunc),
		validate: validator.New(),
		logger:   logger.With(zap.String("component", "component_registry")),
	}
}

// Register adds a provider. Registering the same provider twice is an error.
func (r *ComponentRegistry) Register(provider string, build BuildFunc) error {
	if provider == "" || build == nil {
		return fmt.Errorf("component provider and build function are required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.builders[provider]; exists {
		return fmt.Errorf("component provider %q already registered", provider)
	}
	r.builders[provider] = build
	return nil
}

// Providers lists registered providers in lexical order.
func (r *ComponentRegistry) Providers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	providers := make([]string, 0, len(r.builders))
	for p := range r.builders {
		providers = append(providers, p)
	}
	sort.Strings(providers)
	return providers
}

// Build constructs the component described by model.
func (r *ComponentRegistry) Build(model ComponentModel) (any, error) {
	if err := r.validate.Struct(model); err != nil {
		return nil, fmt.Errorf("invalid component: %w", err)
	}

	r.mu.RLock()
	build, ok := r.builders[model.Provider]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown component provider %q, registered providers are %v", model.Provider, r.Providers())
	}

	component, err := build(model, r)
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", model.Provider, err)
	}
	r.logger.Debug("built component", zap.String("provider", model.Provider))
	return component, nil
}

// Validate checks that required fields are present and constraints are met.
func (r *ComponentRegistry) Validate(def *TeamDefinition) error {
	if def == nil {
		return fmt.Errorf("team definition is nil")
	}
	if err := r.validate.Struct(def); err != nil {
		return fmt.Errorf("team definition: %w", err)
	}
	if def.TerminationCondition != nil {
		if err := r.validate.Struct(def.TerminationCondition); err != nil {
			return fmt.Errorf("team definition: termination_condition: %w", err)
		}
	}
	return nil
}

// DecodeConfig copies a component's loosely typed config into out.
func DecodeConfig(config map[string]any, out any) error {
	data, err := json.Marshal(config)
	if err != nil {
		return fmt.Errorf("encode component config: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode component config: %w", err)
	}
	return nil
}

// EncodeConfig is the inverse of DecodeConfig.
func EncodeConfig(in any) (map[string]any, error) {
	data, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("encode component config: %w", err)
	}
	var config map[string]any
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("decode component config: %w", err)
	}
	return config, nil
}
