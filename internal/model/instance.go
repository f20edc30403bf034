package model

import "net"

// InstanceId is an opaque identifier, unique within a single Vault.
type InstanceId string

// InstanceStatus is the lifecycle status reported by the backing
// Deployment at read time. The vault never stores it; a Deployment may
// serve it from a short-lived cache (see internal/capability/cached).
type InstanceStatus string

const (
	InstanceStopped InstanceStatus = "Stopped"
	InstanceRunning InstanceStatus = "Running"
	InstanceUnknown InstanceStatus = "Unknown"
)

// UsbPathConfig is the USB pass-through mapping stored for one instance
// port: the bus/device numbers the deployment should bind at start time.
type UsbPathConfig struct {
	Port   string
	BusNum uint8
	DevNum uint8
}

// InstanceConfig is owned exclusively by its Instance; nothing else in the
// vault references it.
type InstanceConfig struct {
	EnvironmentVariables []EnvironmentVariable
	PortMapping          InstancePortMapping
	UsbDevices           map[string]UsbPathConfig
	ConnectedNetworks    map[string]net.IP
	MappedEditorPorts    map[uint16]uint16 // container port -> host port
}

// NewInstanceConfig returns a config with all maps initialized, seeded
// from the manifest's declared defaults.
func NewInstanceConfig(manifest *Manifest) InstanceConfig {
	cfg := InstanceConfig{
		UsbDevices:        make(map[string]UsbPathConfig),
		ConnectedNetworks: make(map[string]net.IP),
		MappedEditorPorts: make(map[uint16]uint16),
	}
	if manifest != nil {
		cfg.EnvironmentVariables = append([]EnvironmentVariable(nil), manifest.DefaultEnvironment...)
		cfg.PortMapping = InstancePortMapping{
			TCP:  append([]PortMapping(nil), manifest.DefaultPortMapping.TCP...),
			UDP:  append([]PortMapping(nil), manifest.DefaultPortMapping.UDP...),
			SCTP: append([]PortMapping(nil), manifest.DefaultPortMapping.SCTP...),
		}
	}
	return cfg
}

// EnvironmentValue returns the value of the first matching variable.
func (c *InstanceConfig) EnvironmentValue(name string) (*string, bool) {
	for _, v := range c.EnvironmentVariables {
		if v.Name == name {
			return v.Value, true
		}
	}
	return nil, false
}

// Instance is a runnable, stateful realization of an App on a specific
// Deployment.
type Instance struct {
	Id           InstanceId
	Name         string
	AppKey       AppKey
	DeploymentID string
	Config       InstanceConfig
}
