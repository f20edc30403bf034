package orchestrator

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flecs-run/edge-core/internal/capability"
	"github.com/flecs-run/edge-core/internal/capability/captest"
	"github.com/flecs-run/edge-core/internal/model"
	"github.com/flecs-run/edge-core/internal/vault"
)

func newTestInstance(v *vault.Vault, id model.InstanceId) {
	g := v.Reservation().ReserveInstancePouchMut().Grab()
	g.Instances.Set(&model.Instance{
		Id:     id,
		AppKey: model.AppKey{Name: "app", Version: "1"},
		Config: model.InstanceConfig{
			UsbDevices:        map[string]model.UsbPathConfig{},
			ConnectedNetworks: map[string]net.IP{},
		},
	})
	g.Release()
}

func TestGetUsbDevice_UnknownWhenNeitherMappedNorLive(t *testing.T) {
	v := vault.New()
	newTestInstance(v, "i1")
	reader := captest.NewUsbDeviceReader(map[string]capability.UsbDevice{})

	result, _, _, err := GetUsbDevice(v, "i1", "1-1", reader)
	require.NoError(t, err)
	assert.Equal(t, UsbUnknownDevice, result)
}

func TestGetUsbDevice_InstanceNotFound(t *testing.T) {
	v := vault.New()
	reader := captest.NewUsbDeviceReader(map[string]capability.UsbDevice{})

	result, _, _, err := GetUsbDevice(v, "missing", "1-1", reader)
	require.NoError(t, err)
	assert.Equal(t, UsbInstanceNotFound, result)
}

func TestPutThenGetUsbDevice_BecomesActive(t *testing.T) {
	v := vault.New()
	newTestInstance(v, "i1")
	reader := captest.NewUsbDeviceReader(map[string]capability.UsbDevice{
		"1-1": {Port: "1-1", BusNum: 1, DevNum: 2, Vendor: "0x1234", Product: "0x5678"},
	})

	putResult, _, err := PutUsbDevice(v, "i1", "1-1", reader)
	require.NoError(t, err)
	assert.Equal(t, PutUsbDeviceMappingCreated, putResult)

	getResult, cfg, dev, err := GetUsbDevice(v, "i1", "1-1", reader)
	require.NoError(t, err)
	assert.Equal(t, UsbDeviceActive, getResult)
	assert.Equal(t, uint8(1), cfg.BusNum)
	assert.Equal(t, uint8(2), cfg.DevNum)
	require.NotNil(t, dev)
	assert.Equal(t, "0x1234", dev.Vendor)
}

func TestPutUsbDevice_UpdatesExistingMapping(t *testing.T) {
	v := vault.New()
	newTestInstance(v, "i1")
	reader := captest.NewUsbDeviceReader(map[string]capability.UsbDevice{
		"1-1": {Port: "1-1", BusNum: 1, DevNum: 2},
	})

	first, _, err := PutUsbDevice(v, "i1", "1-1", reader)
	require.NoError(t, err)
	assert.Equal(t, PutUsbDeviceMappingCreated, first)

	reader.Devices["1-1"] = capability.UsbDevice{Port: "1-1", BusNum: 1, DevNum: 9}
	second, prior, err := PutUsbDevice(v, "i1", "1-1", reader)
	require.NoError(t, err)
	assert.Equal(t, PutUsbDeviceMappingUpdated, second)
	assert.Equal(t, uint8(2), prior.DevNum)
}

func TestPutUsbDevice_DeviceNotFound(t *testing.T) {
	v := vault.New()
	newTestInstance(v, "i1")
	reader := captest.NewUsbDeviceReader(map[string]capability.UsbDevice{})

	result, _, err := PutUsbDevice(v, "i1", "1-1", reader)
	require.NoError(t, err)
	assert.Equal(t, PutUsbDeviceNotFound, result)
}

func TestGetUsbDevice_InactiveWhenMappedButNotLive(t *testing.T) {
	v := vault.New()
	newTestInstance(v, "i1")
	reader := captest.NewUsbDeviceReader(map[string]capability.UsbDevice{
		"1-1": {Port: "1-1", BusNum: 1, DevNum: 2},
	})
	_, _, err := PutUsbDevice(v, "i1", "1-1", reader)
	require.NoError(t, err)

	unplugged := captest.NewUsbDeviceReader(map[string]capability.UsbDevice{})
	result, cfg, dev, err := GetUsbDevice(v, "i1", "1-1", unplugged)
	require.NoError(t, err)
	assert.Equal(t, UsbDeviceInactive, result)
	assert.Nil(t, dev)
	assert.Equal(t, uint8(1), cfg.BusNum)
}

func TestGetUsbDevice_NotMappedWhenLiveButUnconfigured(t *testing.T) {
	v := vault.New()
	newTestInstance(v, "i1")
	reader := captest.NewUsbDeviceReader(map[string]capability.UsbDevice{
		"1-1": {Port: "1-1", BusNum: 1, DevNum: 2},
	})

	result, _, _, err := GetUsbDevice(v, "i1", "1-1", reader)
	require.NoError(t, err)
	assert.Equal(t, UsbDeviceNotMapped, result)
}

func TestDeleteUsbDevice_RemovesMapping(t *testing.T) {
	v := vault.New()
	newTestInstance(v, "i1")
	reader := captest.NewUsbDeviceReader(map[string]capability.UsbDevice{
		"1-1": {Port: "1-1", BusNum: 1, DevNum: 2},
	})
	_, _, err := PutUsbDevice(v, "i1", "1-1", reader)
	require.NoError(t, err)

	deleted := DeleteUsbDevice(v, "i1", "1-1")
	require.Equal(t, Present, deleted.Presence)
	assert.Equal(t, uint8(1), deleted.Value.BusNum)

	again := DeleteUsbDevice(v, "i1", "1-1")
	assert.Equal(t, ItemMissing, again.Presence)
}

func TestGetUsbDevices_PairsConfiguredWithLive(t *testing.T) {
	v := vault.New()
	newTestInstance(v, "i1")
	reader := captest.NewUsbDeviceReader(map[string]capability.UsbDevice{
		"1-1": {Port: "1-1", BusNum: 1, DevNum: 2},
		"1-2": {Port: "1-2", BusNum: 1, DevNum: 3},
	})
	_, _, err := PutUsbDevice(v, "i1", "1-1", reader)
	require.NoError(t, err)

	pairs, err := GetUsbDevices(v, "i1", reader)
	require.NoError(t, err)
	require.Equal(t, Present, pairs.Presence)
	require.Len(t, pairs.Value, 1)
	assert.NotNil(t, pairs.Value[0].Live)
}
