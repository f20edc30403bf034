// Package orchestrator implements the instance state-machine operations
// (the "spells" in the vault/quest vocabulary): create, mutate, run,
// redirect and delete instances, plus the config accessors exposed
// through every InstanceConfig field.
package orchestrator

import (
	"github.com/flecs-run/edge-core/internal/model"
	"github.com/flecs-run/edge-core/internal/vault"
)

// Presence disambiguates the three outcomes every config accessor can
// produce: the instance itself is missing, the instance exists but the
// requested sub-item does not, or both exist and Value holds the item.
type Presence int

const (
	InstanceMissing Presence = iota
	ItemMissing
	Present
)

// Lookup is the uniform three-state result of a config accessor. It
// replaces the triple-nested Option<Option<T>> the original design used:
// the contract is the three-state distinction, not the representation.
type Lookup[T any] struct {
	Presence Presence
	Value    T
}

func missingInstance[T any]() Lookup[T] { return Lookup[T]{Presence: InstanceMissing} }
func missingItem[T any]() Lookup[T]     { return Lookup[T]{Presence: ItemMissing} }
func found[T any](v T) Lookup[T]        { return Lookup[T]{Presence: Present, Value: v} }

// readConfig runs f against a snapshot of id's config under a shared
// instance-pouch reservation. f always produces a value, so the only
// failure mode is the instance itself being missing.
func readConfig[T any](v *vault.Vault, id model.InstanceId, f func(cfg *model.InstanceConfig) T) Lookup[T] {
	g := v.Reservation().ReserveInstancePouch().Grab()
	defer g.Release()
	inst, ok := g.Instances.Get(id)
	if !ok {
		return missingInstance[T]()
	}
	return found(f(&inst.Config))
}

// readConfigOptional is readConfig for accessors where the sub-item may
// itself be absent (f's second return value reports presence).
func readConfigOptional[T any](v *vault.Vault, id model.InstanceId, f func(cfg *model.InstanceConfig) (T, bool)) Lookup[T] {
	g := v.Reservation().ReserveInstancePouch().Grab()
	defer g.Release()
	inst, ok := g.Instances.Get(id)
	if !ok {
		return missingInstance[T]()
	}
	val, present := f(&inst.Config)
	if !present {
		return missingItem[T]()
	}
	return found(val)
}

// mutateConfig is readConfig's write counterpart: f runs under an
// exclusive instance-pouch reservation and may mutate cfg in place.
func mutateConfig[T any](v *vault.Vault, id model.InstanceId, f func(cfg *model.InstanceConfig) T) Lookup[T] {
	g := v.Reservation().ReserveInstancePouchMut().Grab()
	defer g.Release()
	inst, ok := g.Instances.Get(id)
	if !ok {
		return missingInstance[T]()
	}
	return found(f(&inst.Config))
}

// mutateConfigOptional is mutateConfig for accessors where f reports
// whether the sub-item it touched existed beforehand.
func mutateConfigOptional[T any](v *vault.Vault, id model.InstanceId, f func(cfg *model.InstanceConfig) (T, bool)) Lookup[T] {
	g := v.Reservation().ReserveInstancePouchMut().Grab()
	defer g.Release()
	inst, ok := g.Instances.Get(id)
	if !ok {
		return missingInstance[T]()
	}
	val, present := f(&inst.Config)
	if !present {
		return missingItem[T]()
	}
	return found(val)
}
