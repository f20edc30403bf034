package orchestrator

import (
	"context"

	"github.com/flecs-run/edge-core/internal/capability"
	coreerrors "github.com/flecs-run/edge-core/internal/errors"
	"github.com/flecs-run/edge-core/internal/model"
	"github.com/flecs-run/edge-core/internal/vault"
)

// InstanceInfo is the shallow, list-friendly view of an instance: identity
// plus its live status, read fresh from the deployment on every call.
type InstanceInfo struct {
	Id       model.InstanceId
	Name     string
	AppKey   model.AppKey
	Status   model.InstanceStatus
}

// InstanceDetail is the full view of an instance, including its config.
type InstanceDetail struct {
	InstanceInfo
	Config model.InstanceConfig
}

// DoesInstanceExist reports whether id is present in the vault, regardless
// of its deployment-reported status.
func DoesInstanceExist(v *vault.Vault, id model.InstanceId) bool {
	g := v.Reservation().ReserveInstancePouch().Grab()
	defer g.Release()
	_, ok := g.Instances.Get(id)
	return ok
}

// GetInstance returns the shallow view of a single instance.
func GetInstance(ctx context.Context, v *vault.Vault, deployment capability.Deployment, id model.InstanceId) (InstanceInfo, error) {
	inst, err := snapshotInstance(v, id)
	if err != nil {
		return InstanceInfo{}, err
	}
	status, err := deployment.InstanceStatus(ctx, id)
	if err != nil {
		return InstanceInfo{}, coreerrors.UpstreamDeployment("instance_status", err)
	}
	return InstanceInfo{Id: inst.Id, Name: inst.Name, AppKey: inst.AppKey, Status: status}, nil
}

// GetInstanceDetailed is GetInstance plus the instance's full config.
func GetInstanceDetailed(ctx context.Context, v *vault.Vault, deployment capability.Deployment, id model.InstanceId) (InstanceDetail, error) {
	info, err := GetInstance(ctx, v, deployment, id)
	if err != nil {
		return InstanceDetail{}, err
	}
	inst, err := snapshotInstance(v, id)
	if err != nil {
		return InstanceDetail{}, err
	}
	return InstanceDetail{InstanceInfo: info, Config: inst.Config}, nil
}

// GetInstancesFiltered returns every instance matching the given optional
// app name/version filter, both empty meaning "all instances".
func GetInstancesFiltered(ctx context.Context, v *vault.Vault, deployment capability.Deployment, appName, appVersion *string) ([]InstanceInfo, error) {
	ids := filteredInstanceIds(v, appName, appVersion)
	return resolveInstanceInfos(ctx, v, deployment, ids)
}

// GetAllInstances returns every instance in the vault.
func GetAllInstances(ctx context.Context, v *vault.Vault, deployment capability.Deployment) ([]InstanceInfo, error) {
	g := v.Reservation().ReserveInstancePouch().Grab()
	ids := g.Instances.Keys()
	g.Release()
	return resolveInstanceInfos(ctx, v, deployment, ids)
}

// GetInstanceLogs returns the stdout/stderr tail from the instance's
// deployment.
func GetInstanceLogs(ctx context.Context, v *vault.Vault, deployment capability.Deployment, id model.InstanceId) (capability.Logs, error) {
	inst, err := snapshotInstance(v, id)
	if err != nil {
		return capability.Logs{}, err
	}
	logs, err := deployment.InstanceLogs(ctx, inst.Config, id)
	if err != nil {
		return capability.Logs{}, coreerrors.UpstreamDeployment("instance_logs", err)
	}
	return logs, nil
}

// GetInstanceLabels returns every label declared on the instance's
// manifest. ItemMissing cannot occur for a present instance: a manifest
// is a creation precondition, never removed underneath a live instance.
func GetInstanceLabels(v *vault.Vault, id model.InstanceId) Lookup[[]model.Label] {
	g := v.Reservation().ReserveInstancePouch().ReserveManifestPouch().Grab()
	defer g.Release()
	inst, ok := g.Instances.Get(id)
	if !ok {
		return missingInstance[[]model.Label]()
	}
	manifest, ok := g.Manifests.Get(inst.AppKey)
	if !ok {
		return missingItem[[]model.Label]()
	}
	return found(append([]model.Label(nil), manifest.Labels...))
}

// GetInstanceLabelValue returns the value of a single named label.
func GetInstanceLabelValue(v *vault.Vault, id model.InstanceId, name string) Lookup[*string] {
	g := v.Reservation().ReserveInstancePouch().ReserveManifestPouch().Grab()
	defer g.Release()
	inst, ok := g.Instances.Get(id)
	if !ok {
		return missingInstance[*string]()
	}
	manifest, ok := g.Manifests.Get(inst.AppKey)
	if !ok {
		return missingItem[*string]()
	}
	value, ok := manifest.LabelValue(name)
	if !ok {
		return missingItem[*string]()
	}
	return found(value)
}

func snapshotInstance(v *vault.Vault, id model.InstanceId) (*model.Instance, error) {
	g := v.Reservation().ReserveInstancePouch().Grab()
	defer g.Release()
	inst, ok := g.Instances.Get(id)
	if !ok {
		return nil, coreerrors.InstanceNotFound(string(id))
	}
	clone := *inst
	return &clone, nil
}

func filteredInstanceIds(v *vault.Vault, appName, appVersion *string) []model.InstanceId {
	g := v.Reservation().ReserveInstancePouch().Grab()
	defer g.Release()
	switch {
	case appName != nil && appVersion != nil:
		return g.Instances.ByAppKey(model.AppKey{Name: *appName, Version: *appVersion})
	case appName != nil:
		return g.Instances.ByAppName(*appName)
	case appVersion != nil:
		return g.Instances.ByAppVersion(*appVersion)
	default:
		return g.Instances.Keys()
	}
}

func resolveInstanceInfos(ctx context.Context, v *vault.Vault, deployment capability.Deployment, ids []model.InstanceId) ([]InstanceInfo, error) {
	out := make([]InstanceInfo, 0, len(ids))
	for _, id := range ids {
		info, err := GetInstance(ctx, v, deployment, id)
		if err != nil {
			continue // instance vanished between listing and resolution
		}
		out = append(out, info)
	}
	return out, nil
}
