package sorcerer

import (
	"context"

	"github.com/flecs-run/edge-core/internal/capability"
	"github.com/flecs-run/edge-core/internal/model"
	"github.com/flecs-run/edge-core/internal/orchestrator"
	"github.com/flecs-run/edge-core/internal/quest"
	"github.com/flecs-run/edge-core/internal/vault"
)

// Instancius is every instance-orchestration operation the HTTP adapter
// may invoke, named after the vault/quest vocabulary's "spell caster".
type Instancius interface {
	Sorcerer

	CreateInstance(ctx context.Context, q *quest.Quest, appKey model.AppKey, name string) (model.InstanceId, error)
	StartInstance(ctx context.Context, id model.InstanceId) error
	StopInstance(ctx context.Context, id model.InstanceId) error
	DeleteInstance(ctx context.Context, id model.InstanceId) error

	GetInstance(ctx context.Context, id model.InstanceId) (orchestrator.InstanceInfo, error)
	GetInstanceDetailed(ctx context.Context, id model.InstanceId) (orchestrator.InstanceDetail, error)
	GetInstancesFiltered(ctx context.Context, appName, appVersion *string) ([]orchestrator.InstanceInfo, error)
	GetAllInstances(ctx context.Context) ([]orchestrator.InstanceInfo, error)
	DoesInstanceExist(id model.InstanceId) bool
	GetInstanceLogs(ctx context.Context, id model.InstanceId) (capability.Logs, error)
	GetInstanceLabels(id model.InstanceId) orchestrator.Lookup[[]model.Label]
	GetInstanceLabelValue(id model.InstanceId, name string) orchestrator.Lookup[*string]

	GetEnvironment(id model.InstanceId) orchestrator.Lookup[[]model.EnvironmentVariable]
	GetEnvironmentVariable(id model.InstanceId, name string) orchestrator.Lookup[*string]
	PutEnvironmentVariable(id model.InstanceId, name string, value *string) orchestrator.Lookup[*string]
	DeleteEnvironmentVariable(id model.InstanceId, name string) orchestrator.Lookup[*string]
	DeleteEnvironment(id model.InstanceId) orchestrator.Lookup[[]model.EnvironmentVariable]

	GetPortMappings(id model.InstanceId) orchestrator.Lookup[model.InstancePortMapping]
	GetProtocolPortMappings(id model.InstanceId, proto model.TransportProtocol) orchestrator.Lookup[[]model.PortMapping]
	GetPortMapping(id model.InstanceId, proto model.TransportProtocol, hostPort uint16) orchestrator.Lookup[model.PortMapping]
	UpdatePortMapping(id model.InstanceId, proto model.TransportProtocol, m model.PortMapping) (orchestrator.Lookup[bool], error)
	DeletePortMappingRange(id model.InstanceId, proto model.TransportProtocol, hostRange model.PortRange) orchestrator.Lookup[model.PortMapping]
	DeleteProtocolPortMappings(id model.InstanceId, proto model.TransportProtocol) orchestrator.Lookup[[]model.PortMapping]
	DeletePortMappings(id model.InstanceId) orchestrator.Lookup[model.InstancePortMapping]

	GetUsbDevices(id model.InstanceId) (orchestrator.Lookup[[]orchestrator.UsbDevicePair], error)
	GetUsbDevice(id model.InstanceId, port string) (orchestrator.GetInstanceUsbDeviceResult, model.UsbPathConfig, *capability.UsbDevice, error)
	PutUsbDevice(id model.InstanceId, port string) (orchestrator.PutInstanceUsbDeviceResult, model.UsbPathConfig, error)
	DeleteUsbDevice(id model.InstanceId, port string) orchestrator.Lookup[model.UsbPathConfig]
	DeleteUsbDevices(id model.InstanceId) orchestrator.Lookup[map[string]model.UsbPathConfig]

	RedirectEditorRequest(ctx context.Context, id model.InstanceId, containerPort uint16) (orchestrator.RedirectEditorRequestResult, uint16, error)
}

// instanciusImpl is a thin delegate: every method forwards to the
// corresponding orchestrator free function, supplying the vault and
// capabilities this instance was built with. It holds no state of its
// own beyond those dependencies.
type instanciusImpl struct {
	vault      *vault.Vault
	deployment capability.Deployment
	floxy      capability.Floxy
	usb        capability.UsbDeviceReader
}

// NewInstancius builds the default Instancius facade over a single
// deployment. Multi-deployment dispatch is not yet implemented; see
// create_instance's "first deployment wins" note.
func NewInstancius(v *vault.Vault, deployment capability.Deployment, floxy capability.Floxy, usb capability.UsbDeviceReader) Instancius {
	return &instanciusImpl{vault: v, deployment: deployment, floxy: floxy, usb: usb}
}

func (i *instanciusImpl) sorcerer() {}

func (i *instanciusImpl) CreateInstance(ctx context.Context, q *quest.Quest, appKey model.AppKey, name string) (model.InstanceId, error) {
	return orchestrator.CreateInstance(ctx, q, i.vault, appKey, name)
}

func (i *instanciusImpl) StartInstance(ctx context.Context, id model.InstanceId) error {
	return orchestrator.StartInstance(ctx, i.vault, i.deployment, id)
}

func (i *instanciusImpl) StopInstance(ctx context.Context, id model.InstanceId) error {
	return orchestrator.StopInstance(ctx, i.vault, i.deployment, id)
}

func (i *instanciusImpl) DeleteInstance(ctx context.Context, id model.InstanceId) error {
	return orchestrator.DeleteInstance(ctx, i.vault, i.deployment, i.floxy, id)
}

func (i *instanciusImpl) GetInstance(ctx context.Context, id model.InstanceId) (orchestrator.InstanceInfo, error) {
	return orchestrator.GetInstance(ctx, i.vault, i.deployment, id)
}

func (i *instanciusImpl) GetInstanceDetailed(ctx context.Context, id model.InstanceId) (orchestrator.InstanceDetail, error) {
	return orchestrator.GetInstanceDetailed(ctx, i.vault, i.deployment, id)
}

func (i *instanciusImpl) GetInstancesFiltered(ctx context.Context, appName, appVersion *string) ([]orchestrator.InstanceInfo, error) {
	return orchestrator.GetInstancesFiltered(ctx, i.vault, i.deployment, appName, appVersion)
}

func (i *instanciusImpl) GetAllInstances(ctx context.Context) ([]orchestrator.InstanceInfo, error) {
	return orchestrator.GetAllInstances(ctx, i.vault, i.deployment)
}

func (i *instanciusImpl) DoesInstanceExist(id model.InstanceId) bool {
	return orchestrator.DoesInstanceExist(i.vault, id)
}

func (i *instanciusImpl) GetInstanceLogs(ctx context.Context, id model.InstanceId) (capability.Logs, error) {
	return orchestrator.GetInstanceLogs(ctx, i.vault, i.deployment, id)
}

func (i *instanciusImpl) GetInstanceLabels(id model.InstanceId) orchestrator.Lookup[[]model.Label] {
	return orchestrator.GetInstanceLabels(i.vault, id)
}

func (i *instanciusImpl) GetInstanceLabelValue(id model.InstanceId, name string) orchestrator.Lookup[*string] {
	return orchestrator.GetInstanceLabelValue(i.vault, id, name)
}

func (i *instanciusImpl) GetEnvironment(id model.InstanceId) orchestrator.Lookup[[]model.EnvironmentVariable] {
	return orchestrator.GetEnvironment(i.vault, id)
}

func (i *instanciusImpl) GetEnvironmentVariable(id model.InstanceId, name string) orchestrator.Lookup[*string] {
	return orchestrator.GetEnvironmentVariable(i.vault, id, name)
}

func (i *instanciusImpl) PutEnvironmentVariable(id model.InstanceId, name string, value *string) orchestrator.Lookup[*string] {
	return orchestrator.PutEnvironmentVariable(i.vault, id, name, value)
}

func (i *instanciusImpl) DeleteEnvironmentVariable(id model.InstanceId, name string) orchestrator.Lookup[*string] {
	return orchestrator.DeleteEnvironmentVariable(i.vault, id, name)
}

func (i *instanciusImpl) DeleteEnvironment(id model.InstanceId) orchestrator.Lookup[[]model.EnvironmentVariable] {
	return orchestrator.DeleteEnvironment(i.vault, id)
}

func (i *instanciusImpl) GetPortMappings(id model.InstanceId) orchestrator.Lookup[model.InstancePortMapping] {
	return orchestrator.GetPortMappings(i.vault, id)
}

func (i *instanciusImpl) GetProtocolPortMappings(id model.InstanceId, proto model.TransportProtocol) orchestrator.Lookup[[]model.PortMapping] {
	return orchestrator.GetProtocolPortMappings(i.vault, id, proto)
}

func (i *instanciusImpl) GetPortMapping(id model.InstanceId, proto model.TransportProtocol, hostPort uint16) orchestrator.Lookup[model.PortMapping] {
	return orchestrator.GetPortMapping(i.vault, id, proto, hostPort)
}

func (i *instanciusImpl) UpdatePortMapping(id model.InstanceId, proto model.TransportProtocol, m model.PortMapping) (orchestrator.Lookup[bool], error) {
	return orchestrator.UpdatePortMapping(i.vault, id, proto, m)
}

func (i *instanciusImpl) DeletePortMappingRange(id model.InstanceId, proto model.TransportProtocol, hostRange model.PortRange) orchestrator.Lookup[model.PortMapping] {
	return orchestrator.DeletePortMappingRange(i.vault, id, proto, hostRange)
}

func (i *instanciusImpl) DeleteProtocolPortMappings(id model.InstanceId, proto model.TransportProtocol) orchestrator.Lookup[[]model.PortMapping] {
	return orchestrator.DeleteProtocolPortMappings(i.vault, id, proto)
}

func (i *instanciusImpl) DeletePortMappings(id model.InstanceId) orchestrator.Lookup[model.InstancePortMapping] {
	return orchestrator.DeletePortMappings(i.vault, id)
}

func (i *instanciusImpl) GetUsbDevices(id model.InstanceId) (orchestrator.Lookup[[]orchestrator.UsbDevicePair], error) {
	return orchestrator.GetUsbDevices(i.vault, id, i.usb)
}

func (i *instanciusImpl) GetUsbDevice(id model.InstanceId, port string) (orchestrator.GetInstanceUsbDeviceResult, model.UsbPathConfig, *capability.UsbDevice, error) {
	return orchestrator.GetUsbDevice(i.vault, id, port, i.usb)
}

func (i *instanciusImpl) PutUsbDevice(id model.InstanceId, port string) (orchestrator.PutInstanceUsbDeviceResult, model.UsbPathConfig, error) {
	return orchestrator.PutUsbDevice(i.vault, id, port, i.usb)
}

func (i *instanciusImpl) DeleteUsbDevice(id model.InstanceId, port string) orchestrator.Lookup[model.UsbPathConfig] {
	return orchestrator.DeleteUsbDevice(i.vault, id, port)
}

func (i *instanciusImpl) DeleteUsbDevices(id model.InstanceId) orchestrator.Lookup[map[string]model.UsbPathConfig] {
	return orchestrator.DeleteUsbDevices(i.vault, id)
}

func (i *instanciusImpl) RedirectEditorRequest(ctx context.Context, id model.InstanceId, containerPort uint16) (orchestrator.RedirectEditorRequestResult, uint16, error) {
	return orchestrator.RedirectEditorRequest(ctx, i.vault, i.deployment, i.floxy, id, containerPort)
}
