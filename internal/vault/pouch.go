// Package vault implements the process-wide, reservation-based state
// store: apps, manifests, instances, deployments and secrets, each held
// in its own pouch and accessed only through a Reservation.
package vault

import (
	"net"

	"github.com/flecs-run/edge-core/internal/capability"
	"github.com/flecs-run/edge-core/internal/model"
)

// AppPouch holds every installed App, keyed by AppKey.
type AppPouch struct {
	apps map[model.AppKey]*model.App
}

func newAppPouch() *AppPouch { return &AppPouch{apps: make(map[model.AppKey]*model.App)} }

func (p *AppPouch) Get(key model.AppKey) (*model.App, bool) {
	app, ok := p.apps[key]
	return app, ok
}

func (p *AppPouch) Set(key model.AppKey, app *model.App) { p.apps[key] = app }

func (p *AppPouch) Delete(key model.AppKey) { delete(p.apps, key) }

func (p *AppPouch) Keys() []model.AppKey {
	keys := make([]model.AppKey, 0, len(p.apps))
	for k := range p.apps {
		keys = append(keys, k)
	}
	return keys
}

// ManifestPouch holds read-only, per-AppKey manifest metadata.
type ManifestPouch struct {
	manifests map[model.AppKey]*model.Manifest
}

func newManifestPouch() *ManifestPouch {
	return &ManifestPouch{manifests: make(map[model.AppKey]*model.Manifest)}
}

func (p *ManifestPouch) Get(key model.AppKey) (*model.Manifest, bool) {
	m, ok := p.manifests[key]
	return m, ok
}

func (p *ManifestPouch) Set(key model.AppKey, m *model.Manifest) { p.manifests[key] = m }

func (p *ManifestPouch) Delete(key model.AppKey) { delete(p.manifests, key) }

// DeploymentPouch holds every registered Deployment handle, keyed by its
// backend id. Deployments are shared, stateless-from-the-core's-viewpoint
// capabilities; multiple instances may reference one.
type DeploymentPouch struct {
	deployments map[string]capability.Deployment
}

func newDeploymentPouch() *DeploymentPouch {
	return &DeploymentPouch{deployments: make(map[string]capability.Deployment)}
}

func (p *DeploymentPouch) Get(id string) (capability.Deployment, bool) {
	d, ok := p.deployments[id]
	return d, ok
}

func (p *DeploymentPouch) Set(d capability.Deployment) { p.deployments[d.ID()] = d }

func (p *DeploymentPouch) Delete(id string) { delete(p.deployments, id) }

// All returns every deployment in insertion-independent order. The
// orchestrator's create_instance uses the first entry; see DESIGN.md for
// the open question this preserves.
func (p *DeploymentPouch) All() []capability.Deployment {
	out := make([]capability.Deployment, 0, len(p.deployments))
	for _, d := range p.deployments {
		out = append(out, d)
	}
	return out
}

// SecretPouch holds the session id captured from upstream console
// responses. Last write wins; there is no history.
type SecretPouch struct {
	sessionID *model.SessionId
}

func newSecretPouch() *SecretPouch { return &SecretPouch{} }

func (p *SecretPouch) SessionID() (model.SessionId, bool) {
	if p.sessionID == nil {
		return model.SessionId{}, false
	}
	return *p.sessionID, true
}

func (p *SecretPouch) SetSessionID(s model.SessionId) { p.sessionID = &s }

// InstancePouch holds every live Instance, keyed by InstanceId, plus the
// IPv4 addresses currently pending reservation per network (allocated but
// not yet promoted into an instance's connected_networks).
type InstancePouch struct {
	instances map[model.InstanceId]*model.Instance
	pending   map[string]map[string]struct{} // network id -> set of dotted IPv4 strings
}

func newInstancePouch() *InstancePouch {
	return &InstancePouch{
		instances: make(map[model.InstanceId]*model.Instance),
		pending:   make(map[string]map[string]struct{}),
	}
}

func (p *InstancePouch) Get(id model.InstanceId) (*model.Instance, bool) {
	i, ok := p.instances[id]
	return i, ok
}

func (p *InstancePouch) Set(i *model.Instance) { p.instances[i.Id] = i }

func (p *InstancePouch) Delete(id model.InstanceId) { delete(p.instances, id) }

func (p *InstancePouch) Keys() []model.InstanceId {
	keys := make([]model.InstanceId, 0, len(p.instances))
	for k := range p.instances {
		keys = append(keys, k)
	}
	return keys
}

func (p *InstancePouch) All() []*model.Instance {
	out := make([]*model.Instance, 0, len(p.instances))
	for _, i := range p.instances {
		out = append(out, i)
	}
	return out
}

func (p *InstancePouch) ByAppKey(key model.AppKey) []model.InstanceId {
	var out []model.InstanceId
	for id, i := range p.instances {
		if i.AppKey == key {
			out = append(out, id)
		}
	}
	return out
}

func (p *InstancePouch) ByAppName(name string) []model.InstanceId {
	var out []model.InstanceId
	for id, i := range p.instances {
		if i.AppKey.Name == name {
			out = append(out, id)
		}
	}
	return out
}

func (p *InstancePouch) ByAppVersion(version string) []model.InstanceId {
	var out []model.InstanceId
	for id, i := range p.instances {
		if i.AppKey.Version == version {
			out = append(out, id)
		}
	}
	return out
}

// AssignedAddresses returns every IPv4 address currently connected to
// networkID by a live instance.
func (p *InstancePouch) AssignedAddresses(networkID string) []net.IP {
	var out []net.IP
	for _, i := range p.instances {
		if addr, ok := i.Config.ConnectedNetworks[networkID]; ok {
			out = append(out, addr)
		}
	}
	return out
}

// AddPendingReservation marks ip as pending on networkID.
func (p *InstancePouch) AddPendingReservation(networkID string, ip net.IP) {
	set, ok := p.pending[networkID]
	if !ok {
		set = make(map[string]struct{})
		p.pending[networkID] = set
	}
	set[ip.String()] = struct{}{}
}

// ClearPendingReservation releases a pending reservation, whether it was
// promoted into an instance or abandoned on failure.
func (p *InstancePouch) ClearPendingReservation(networkID string, ip net.IP) {
	if set, ok := p.pending[networkID]; ok {
		delete(set, ip.String())
	}
}

// PendingReservations returns the set of dotted-IPv4 strings currently
// pending on networkID.
func (p *InstancePouch) PendingReservations(networkID string) map[string]struct{} {
	return p.pending[networkID]
}
