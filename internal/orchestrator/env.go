package orchestrator

import (
	"github.com/flecs-run/edge-core/internal/model"
	"github.com/flecs-run/edge-core/internal/vault"
)

// GetEnvironment returns every environment variable declared on id.
func GetEnvironment(v *vault.Vault, id model.InstanceId) Lookup[[]model.EnvironmentVariable] {
	return readConfig(v, id, func(cfg *model.InstanceConfig) []model.EnvironmentVariable {
		out := make([]model.EnvironmentVariable, len(cfg.EnvironmentVariables))
		copy(out, cfg.EnvironmentVariables)
		return out
	})
}

// GetEnvironmentVariable returns the value of the named variable. First
// match wins; ItemMissing means no variable with that name is declared.
func GetEnvironmentVariable(v *vault.Vault, id model.InstanceId, name string) Lookup[*string] {
	return readConfigOptional(v, id, func(cfg *model.InstanceConfig) (*string, bool) {
		return cfg.EnvironmentValue(name)
	})
}

// PutEnvironmentVariable inserts or replaces the named variable, returning
// the prior value. ItemMissing indicates the variable did not previously
// exist (a new one was appended, preserving insertion order).
func PutEnvironmentVariable(v *vault.Vault, id model.InstanceId, name string, value *string) Lookup[*string] {
	return mutateConfigOptional(v, id, func(cfg *model.InstanceConfig) (*string, bool) {
		for i, ev := range cfg.EnvironmentVariables {
			if ev.Name == name {
				prior := ev.Value
				cfg.EnvironmentVariables[i].Value = value
				return prior, true
			}
		}
		cfg.EnvironmentVariables = append(cfg.EnvironmentVariables, model.EnvironmentVariable{Name: name, Value: value})
		return nil, false
	})
}

// DeleteEnvironmentVariable removes the named variable and returns its
// value. ItemMissing means no such variable was declared.
func DeleteEnvironmentVariable(v *vault.Vault, id model.InstanceId, name string) Lookup[*string] {
	return mutateConfigOptional(v, id, func(cfg *model.InstanceConfig) (*string, bool) {
		for i, ev := range cfg.EnvironmentVariables {
			if ev.Name == name {
				value := ev.Value
				cfg.EnvironmentVariables = append(cfg.EnvironmentVariables[:i], cfg.EnvironmentVariables[i+1:]...)
				return value, true
			}
		}
		return nil, false
	})
}

// DeleteEnvironment clears every declared variable and returns the
// previous list.
func DeleteEnvironment(v *vault.Vault, id model.InstanceId) Lookup[[]model.EnvironmentVariable] {
	return mutateConfig(v, id, func(cfg *model.InstanceConfig) []model.EnvironmentVariable {
		prior := cfg.EnvironmentVariables
		cfg.EnvironmentVariables = nil
		return prior
	})
}
