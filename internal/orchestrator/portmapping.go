package orchestrator

import (
	coreerrors "github.com/flecs-run/edge-core/internal/errors"
	"github.com/flecs-run/edge-core/internal/model"
	"github.com/flecs-run/edge-core/internal/vault"
)

// GetPortMappings returns every port mapping across all three protocols.
func GetPortMappings(v *vault.Vault, id model.InstanceId) Lookup[model.InstancePortMapping] {
	return readConfig(v, id, func(cfg *model.InstanceConfig) model.InstancePortMapping {
		return cloneInstancePortMapping(cfg.PortMapping)
	})
}

// GetProtocolPortMappings returns the ordered list of mappings for proto.
func GetProtocolPortMappings(v *vault.Vault, id model.InstanceId, proto model.TransportProtocol) Lookup[[]model.PortMapping] {
	return readConfig(v, id, func(cfg *model.InstanceConfig) []model.PortMapping {
		return clonePortMappings(*cfg.PortMapping.ByProtocol(proto))
	})
}

// GetPortMappingRange returns the mapping whose host range equals
// hostRange exactly, regardless of its container range. Overlapping but
// non-equal ranges are not returned; the caller must address them by
// their own exact range.
func GetPortMappingRange(v *vault.Vault, id model.InstanceId, proto model.TransportProtocol, hostRange model.PortRange) Lookup[model.PortMapping] {
	return readConfigOptional(v, id, func(cfg *model.InstanceConfig) (model.PortMapping, bool) {
		for _, m := range *cfg.PortMapping.ByProtocol(proto) {
			if m.Host == hostRange {
				return m, true
			}
		}
		return model.PortMapping{}, false
	})
}

// GetPortMapping is GetPortMappingRange for a single host port.
func GetPortMapping(v *vault.Vault, id model.InstanceId, proto model.TransportProtocol, hostPort uint16) Lookup[model.PortMapping] {
	return GetPortMappingRange(v, id, proto, model.SinglePort(hostPort))
}

// UpdatePortMapping inserts m, or replaces the existing mapping whose host
// range exactly matches m.Host. It returns whether a prior mapping was
// replaced. Inserting a mapping whose host range overlaps an existing,
// non-identical mapping for the same protocol is rejected.
func UpdatePortMapping(v *vault.Vault, id model.InstanceId, proto model.TransportProtocol, m model.PortMapping) (Lookup[bool], error) {
	g := v.Reservation().ReserveInstancePouchMut().Grab()
	defer g.Release()

	inst, ok := g.Instances.Get(id)
	if !ok {
		return Lookup[bool]{Presence: InstanceMissing}, nil
	}

	list := inst.Config.PortMapping.ByProtocol(proto)
	for i, existing := range *list {
		if existing.Host == m.Host {
			(*list)[i] = m
			return found(true), nil
		}
		if existing.Host.Overlaps(m.Host) {
			return Lookup[bool]{}, coreerrors.PortOverlap(string(proto))
		}
	}
	*list = append(*list, m)
	return found(false), nil
}

// DeletePortMappingRange removes the mapping whose host range is
// set-equal to hostRange and returns it.
func DeletePortMappingRange(v *vault.Vault, id model.InstanceId, proto model.TransportProtocol, hostRange model.PortRange) Lookup[model.PortMapping] {
	return mutateConfigOptional(v, id, func(cfg *model.InstanceConfig) (model.PortMapping, bool) {
		list := cfg.PortMapping.ByProtocol(proto)
		for i, m := range *list {
			if m.Host == hostRange {
				removed := m
				*list = append((*list)[:i], (*list)[i+1:]...)
				return removed, true
			}
		}
		return model.PortMapping{}, false
	})
}

// DeleteProtocolPortMappings clears every mapping for proto and returns
// the previous list.
func DeleteProtocolPortMappings(v *vault.Vault, id model.InstanceId, proto model.TransportProtocol) Lookup[[]model.PortMapping] {
	return mutateConfig(v, id, func(cfg *model.InstanceConfig) []model.PortMapping {
		list := cfg.PortMapping.ByProtocol(proto)
		prior := *list
		*list = nil
		return prior
	})
}

// DeletePortMappings clears every protocol's mappings and returns the
// previous combined state.
func DeletePortMappings(v *vault.Vault, id model.InstanceId) Lookup[model.InstancePortMapping] {
	return mutateConfig(v, id, func(cfg *model.InstanceConfig) model.InstancePortMapping {
		prior := cfg.PortMapping
		cfg.PortMapping = model.InstancePortMapping{}
		return prior
	})
}

func clonePortMappings(in []model.PortMapping) []model.PortMapping {
	out := make([]model.PortMapping, len(in))
	copy(out, in)
	return out
}

func cloneInstancePortMapping(in model.InstancePortMapping) model.InstancePortMapping {
	return model.InstancePortMapping{
		TCP:  clonePortMappings(in.TCP),
		UDP:  clonePortMappings(in.UDP),
		SCTP: clonePortMappings(in.SCTP),
	}
}
