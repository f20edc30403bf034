package vault

import "sync"

type accessMode int

const (
	none accessMode = iota
	shared
	exclusive
)

// Reservation names the pouches a caller needs and the mode (shared vs
// exclusive) per pouch. Grab() acquires every requested pouch atomically:
// either all are held in a consistent snapshot or the call suspends. Pouch
// locks are always taken in a fixed order (alphabetical by pouch name) so
// combining reservations across concurrent callers can never deadlock.
type Reservation struct {
	vault *Vault

	app        accessMode
	deployment accessMode
	instance   accessMode
	manifest   accessMode
	secret     accessMode
}

func (r *Reservation) ReserveAppPouch() *Reservation    { r.app = shared; return r }
func (r *Reservation) ReserveAppPouchMut() *Reservation { r.app = exclusive; return r }

func (r *Reservation) ReserveDeploymentPouch() *Reservation    { r.deployment = shared; return r }
func (r *Reservation) ReserveDeploymentPouchMut() *Reservation { r.deployment = exclusive; return r }

func (r *Reservation) ReserveInstancePouch() *Reservation    { r.instance = shared; return r }
func (r *Reservation) ReserveInstancePouchMut() *Reservation { r.instance = exclusive; return r }

func (r *Reservation) ReserveManifestPouch() *Reservation    { r.manifest = shared; return r }
func (r *Reservation) ReserveManifestPouchMut() *Reservation { r.manifest = exclusive; return r }

func (r *Reservation) ReserveSecretPouch() *Reservation    { r.secret = shared; return r }
func (r *Reservation) ReserveSecretPouchMut() *Reservation { r.secret = exclusive; return r }

// Grabbed is the handle returned by Grab(). Every requested pouch is
// present; acquisition is infallible at the contract level. Release must
// be called on every exit path; defer it immediately after Grab().
type Grabbed struct {
	Apps        *AppPouch
	Deployments *DeploymentPouch
	Instances   *InstancePouch
	Manifests   *ManifestPouch
	Secrets     *SecretPouch

	locks []*sync.RWMutex
	modes []accessMode
}

// Grab acquires every requested pouch in fixed alphabetical order
// (app, deployment, instance, manifest, secret) and returns a handle
// exposing each one. Within the lifetime of the handle only non-blocking,
// pure-compute steps are allowed on the held pouches; I/O must release and
// reacquire.
func (r *Reservation) Grab() *Grabbed {
	g := &Grabbed{}

	if r.app != none {
		lock(&r.vault.appMu, r.app)
		g.Apps = r.vault.appPouch
		g.locks = append(g.locks, &r.vault.appMu)
		g.modes = append(g.modes, r.app)
	}
	if r.deployment != none {
		lock(&r.vault.deploymentMu, r.deployment)
		g.Deployments = r.vault.deploymentPouch
		g.locks = append(g.locks, &r.vault.deploymentMu)
		g.modes = append(g.modes, r.deployment)
	}
	if r.instance != none {
		lock(&r.vault.instanceMu, r.instance)
		g.Instances = r.vault.instancePouch
		g.locks = append(g.locks, &r.vault.instanceMu)
		g.modes = append(g.modes, r.instance)
	}
	if r.manifest != none {
		lock(&r.vault.manifestMu, r.manifest)
		g.Manifests = r.vault.manifestPouch
		g.locks = append(g.locks, &r.vault.manifestMu)
		g.modes = append(g.modes, r.manifest)
	}
	if r.secret != none {
		lock(&r.vault.secretMu, r.secret)
		g.Secrets = r.vault.secretPouch
		g.locks = append(g.locks, &r.vault.secretMu)
		g.modes = append(g.modes, r.secret)
	}

	return g
}

// Release unlocks every pouch this handle holds, in reverse acquisition
// order. It is safe to call exactly once per Grab(); calling it from every
// exit path (success, error, cancellation) is the caller's responsibility.
func (g *Grabbed) Release() {
	for i := len(g.locks) - 1; i >= 0; i-- {
		unlock(g.locks[i], g.modes[i])
	}
	g.locks = nil
	g.modes = nil
}

func lock(mu *sync.RWMutex, mode accessMode) {
	if mode == exclusive {
		mu.Lock()
	} else {
		mu.RLock()
	}
}

func unlock(mu *sync.RWMutex, mode accessMode) {
	if mode == exclusive {
		mu.Unlock()
	} else {
		mu.RUnlock()
	}
}
