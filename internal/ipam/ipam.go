// Package ipam assigns free IPv4 addresses inside a deployment's default
// network, guaranteeing no two concurrent creators ever receive the same
// address and that an aborted create never leaks a reservation.
package ipam

import (
	"encoding/binary"
	"net"

	"github.com/flecs-run/edge-core/internal/model"
	"github.com/flecs-run/edge-core/internal/vault"
)

// MakeReservation scans network's subnet in ascending host order and
// reserves the first address that is not the network address, the
// broadcast address, the gateway, already assigned to a live instance on
// networkID, or already pending. It returns the reserved address and
// true, or the zero value and false if the subnet is exhausted.
//
// The caller must hold no instance pouch reservation of its own; this
// call takes an exclusive one internally for the duration of the scan.
func MakeReservation(v *vault.Vault, networkID string, network model.Ipv4NetworkAccess) (net.IP, bool) {
	g := v.Reservation().ReserveInstancePouchMut().Grab()
	defer g.Release()

	unavailable := make(map[string]struct{})
	unavailable[network.Gateway.String()] = struct{}{}
	netAddr := network.Subnet.IP.Mask(network.Subnet.Mask)
	unavailable[netAddr.String()] = struct{}{}
	unavailable[broadcast(network.Subnet).String()] = struct{}{}
	for _, ip := range g.Instances.AssignedAddresses(networkID) {
		unavailable[ip.String()] = struct{}{}
	}
	for ip := range g.Instances.PendingReservations(networkID) {
		unavailable[ip] = struct{}{}
	}

	for ip := networkAddress(network.Subnet); network.Subnet.Contains(ip); ip = nextIP(ip) {
		if _, taken := unavailable[ip.String()]; taken {
			continue
		}
		reserved := cloneIP(ip)
		g.Instances.AddPendingReservation(networkID, reserved)
		return reserved, true
	}
	return nil, false
}

// ClearReservation releases a pending reservation, whether abandoned on
// failure or about to be promoted into an instance's connected_networks.
func ClearReservation(v *vault.Vault, networkID string, ip net.IP) {
	g := v.Reservation().ReserveInstancePouchMut().Grab()
	defer g.Release()
	g.Instances.ClearPendingReservation(networkID, ip)
}

func networkAddress(subnet *net.IPNet) net.IP {
	return cloneIP(subnet.IP.Mask(subnet.Mask))
}

func broadcast(subnet *net.IPNet) net.IP {
	ip := subnet.IP.Mask(subnet.Mask).To4()
	mask := net.IP(subnet.Mask).To4()
	out := make(net.IP, 4)
	for i := 0; i < 4; i++ {
		out[i] = ip[i] | ^mask[i]
	}
	return out
}

func nextIP(ip net.IP) net.IP {
	v4 := ip.To4()
	n := binary.BigEndian.Uint32(v4)
	n++
	out := make(net.IP, 4)
	binary.BigEndian.PutUint32(out, n)
	return out
}

func cloneIP(ip net.IP) net.IP {
	v4 := ip.To4()
	out := make(net.IP, 4)
	copy(out, v4)
	return out
}
