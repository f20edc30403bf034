package ipam

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flecs-run/edge-core/internal/model"
	"github.com/flecs-run/edge-core/internal/vault"
)

func network(t *testing.T) model.Ipv4NetworkAccess {
	t.Helper()
	_, subnet, err := net.ParseCIDR("10.18.0.0/16")
	require.NoError(t, err)
	return model.Ipv4NetworkAccess{Subnet: subnet, Gateway: net.ParseIP("10.18.0.100")}
}

func TestMakeReservation_SequentialAddresses(t *testing.T) {
	v := vault.New()
	net1 := network(t)

	ip1, ok := MakeReservation(v, "net0", net1)
	require.True(t, ok)
	assert.Equal(t, "10.18.0.1", ip1.String())

	// Promote ip1 so the second reservation sees it as assigned, not pending.
	ClearReservation(v, "net0", ip1)
	g := v.Reservation().ReserveInstancePouchMut().Grab()
	g.Instances.Set(&model.Instance{
		Id:     "i1",
		AppKey: model.AppKey{Name: "b", Version: "1"},
		Config: model.InstanceConfig{ConnectedNetworks: map[string]net.IP{"net0": ip1}},
	})
	g.Release()

	ip2, ok := MakeReservation(v, "net0", net1)
	require.True(t, ok)
	assert.Equal(t, "10.18.0.2", ip2.String())
}

func TestMakeReservation_SkipsNetworkAddressAndPending(t *testing.T) {
	v := vault.New()
	net1 := network(t)

	// Gateway is 10.18.0.100; nothing else assigned, so the first address
	// after the network address 10.18.0.0 is handed out.
	ip, ok := MakeReservation(v, "net0", net1)
	require.True(t, ok)
	assert.Equal(t, "10.18.0.1", ip.String())

	// Without clearing, the same address must not be handed out again.
	ip2, ok := MakeReservation(v, "net0", net1)
	require.True(t, ok)
	assert.NotEqual(t, ip.String(), ip2.String())
}

func TestClearReservation_ReleasesAddress(t *testing.T) {
	v := vault.New()
	net1 := network(t)

	ip, ok := MakeReservation(v, "net0", net1)
	require.True(t, ok)

	ClearReservation(v, "net0", ip)

	again, ok := MakeReservation(v, "net0", net1)
	require.True(t, ok)
	assert.Equal(t, ip.String(), again.String())
}
