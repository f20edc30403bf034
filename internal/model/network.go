package model

import "net"

// Network describes a deployment's view of a container network: its id
// and the subnet/gateway an instance connects into.
type Network struct {
	ID      string
	Subnet  *net.IPNet
	Gateway net.IP
}

// Ipv4NetworkAccess is the subset of Network the IP allocator needs: the
// subnet to scan plus its gateway. The network and broadcast addresses,
// which are also never assignable, are derived from the subnet.
type Ipv4NetworkAccess struct {
	Subnet  *net.IPNet
	Gateway net.IP
}
