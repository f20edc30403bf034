package vault

import "sync"

// Vault is the process-wide state store. Each pouch is guarded by its own
// read/write lock; there is no global lock and no cross-pouch transaction
// beyond what a single Reservation.Grab() provides.
type Vault struct {
	appMu        sync.RWMutex
	appPouch     *AppPouch
	manifestMu   sync.RWMutex
	manifestPouch *ManifestPouch
	instanceMu   sync.RWMutex
	instancePouch *InstancePouch
	deploymentMu sync.RWMutex
	deploymentPouch *DeploymentPouch
	secretMu     sync.RWMutex
	secretPouch  *SecretPouch
}

func New() *Vault {
	return &Vault{
		appPouch:        newAppPouch(),
		manifestPouch:   newManifestPouch(),
		instancePouch:   newInstancePouch(),
		deploymentPouch: newDeploymentPouch(),
		secretPouch:     newSecretPouch(),
	}
}

// Reservation starts building a multi-pouch reservation over this vault.
func (v *Vault) Reservation() *Reservation {
	return &Reservation{vault: v}
}

