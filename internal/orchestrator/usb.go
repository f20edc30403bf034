package orchestrator

import (
	"strconv"

	"github.com/flecs-run/edge-core/internal/capability"
	coreerrors "github.com/flecs-run/edge-core/internal/errors"
	"github.com/flecs-run/edge-core/internal/model"
	"github.com/flecs-run/edge-core/internal/vault"
)

// UsbDevicePair is a configured USB mapping alongside the live device
// currently enumerated at the same port, if any.
type UsbDevicePair struct {
	Config model.UsbPathConfig
	Live   *capability.UsbDevice
}

// GetInstanceUsbDeviceResult is the outcome of GetUsbDevice.
type GetInstanceUsbDeviceResult int

const (
	UsbInstanceNotFound GetInstanceUsbDeviceResult = iota
	UsbUnknownDevice
	UsbDeviceNotMapped
	UsbDeviceInactive
	UsbDeviceActive
)

// PutInstanceUsbDeviceResult is the outcome of PutUsbDevice.
type PutInstanceUsbDeviceResult int

const (
	PutUsbInstanceNotFound PutInstanceUsbDeviceResult = iota
	PutUsbDeviceNotFound
	PutUsbDeviceMappingCreated
	PutUsbDeviceMappingUpdated
)

// GetUsbDevices pairs every mapped USB device on id with whatever is
// currently enumerated at the same port.
func GetUsbDevices(v *vault.Vault, id model.InstanceId, reader capability.UsbDeviceReader) (Lookup[[]UsbDevicePair], error) {
	mapped := readConfig(v, id, func(cfg *model.InstanceConfig) map[string]model.UsbPathConfig {
		out := make(map[string]model.UsbPathConfig, len(cfg.UsbDevices))
		for k, v := range cfg.UsbDevices {
			out[k] = v
		}
		return out
	})
	if mapped.Presence != Present {
		return Lookup[[]UsbDevicePair]{Presence: mapped.Presence}, nil
	}

	live, err := reader.ReadUsbDevices()
	if err != nil {
		return Lookup[[]UsbDevicePair]{}, coreerrors.UpstreamUsbReader("read_usb_devices", err)
	}

	pairs := make([]UsbDevicePair, 0, len(mapped.Value))
	for port, cfg := range mapped.Value {
		pair := UsbDevicePair{Config: cfg}
		if dev, ok := live[port]; ok {
			d := dev
			pair.Live = &d
		}
		pairs = append(pairs, pair)
	}
	return found(pairs), nil
}

// GetUsbDevice reports the state of a single port: whether the instance
// has a mapping for it and whether a matching device is live.
func GetUsbDevice(v *vault.Vault, id model.InstanceId, port string, reader capability.UsbDeviceReader) (GetInstanceUsbDeviceResult, model.UsbPathConfig, *capability.UsbDevice, error) {
	mapped := readConfigOptional(v, id, func(cfg *model.InstanceConfig) (model.UsbPathConfig, bool) {
		c, ok := cfg.UsbDevices[port]
		return c, ok
	})
	if mapped.Presence == InstanceMissing {
		return UsbInstanceNotFound, model.UsbPathConfig{}, nil, nil
	}

	live, err := reader.ReadUsbDevices()
	if err != nil {
		return 0, model.UsbPathConfig{}, nil, coreerrors.UpstreamUsbReader("read_usb_devices", err)
	}
	dev, liveOk := live[port]

	switch {
	case mapped.Presence == Present && liveOk:
		return UsbDeviceActive, mapped.Value, &dev, nil
	case mapped.Presence == Present && !liveOk:
		return UsbDeviceInactive, mapped.Value, nil, nil
	case mapped.Presence == ItemMissing && liveOk:
		return UsbDeviceNotMapped, model.UsbPathConfig{}, nil, nil
	default:
		return UsbUnknownDevice, model.UsbPathConfig{}, nil, nil
	}
}

// PutUsbDevice reads the live device at port and replaces any prior
// mapping for it with a fresh UsbPathConfig.
func PutUsbDevice(v *vault.Vault, id model.InstanceId, port string, reader capability.UsbDeviceReader) (PutInstanceUsbDeviceResult, model.UsbPathConfig, error) {
	live, err := reader.ReadUsbDevices()
	if err != nil {
		return 0, model.UsbPathConfig{}, coreerrors.UpstreamUsbReader("read_usb_devices", err)
	}
	dev, ok := live[port]
	if !ok {
		return PutUsbDeviceNotFound, model.UsbPathConfig{}, nil
	}

	busNum, err := reader.GetUsbValue("busnum", port)
	if err != nil {
		return 0, model.UsbPathConfig{}, coreerrors.UpstreamUsbReader("get_usb_value(busnum)", err)
	}
	devNum, err := reader.GetUsbValue("devnum", port)
	if err != nil {
		return 0, model.UsbPathConfig{}, coreerrors.UpstreamUsbReader("get_usb_value(devnum)", err)
	}

	cfg := model.UsbPathConfig{Port: port, BusNum: parseUint8(busNum, dev.BusNum), DevNum: parseUint8(devNum, dev.DevNum)}

	result := mutateConfigOptional(v, id, func(c *model.InstanceConfig) (model.UsbPathConfig, bool) {
		prior, existed := c.UsbDevices[port]
		c.UsbDevices[port] = cfg
		return prior, existed
	})

	switch result.Presence {
	case InstanceMissing:
		return PutUsbInstanceNotFound, model.UsbPathConfig{}, nil
	case ItemMissing:
		return PutUsbDeviceMappingCreated, model.UsbPathConfig{}, nil
	default:
		return PutUsbDeviceMappingUpdated, result.Value, nil
	}
}

// DeleteUsbDevice removes the mapping at port and returns it.
func DeleteUsbDevice(v *vault.Vault, id model.InstanceId, port string) Lookup[model.UsbPathConfig] {
	return mutateConfigOptional(v, id, func(cfg *model.InstanceConfig) (model.UsbPathConfig, bool) {
		c, ok := cfg.UsbDevices[port]
		if ok {
			delete(cfg.UsbDevices, port)
		}
		return c, ok
	})
}

// DeleteUsbDevices clears every USB mapping and returns the previous set.
func DeleteUsbDevices(v *vault.Vault, id model.InstanceId) Lookup[map[string]model.UsbPathConfig] {
	return mutateConfig(v, id, func(cfg *model.InstanceConfig) map[string]model.UsbPathConfig {
		prior := cfg.UsbDevices
		cfg.UsbDevices = make(map[string]model.UsbPathConfig)
		return prior
	})
}

func parseUint8(s string, fallback uint8) uint8 {
	n, err := strconv.ParseUint(s, 10, 8)
	if err != nil {
		return fallback
	}
	return uint8(n)
}
