package orchestrator

import (
	"context"

	"github.com/hashicorp/go-multierror"

	"github.com/flecs-run/edge-core/internal/capability"
	coreerrors "github.com/flecs-run/edge-core/internal/errors"
	"github.com/flecs-run/edge-core/internal/model"
	"github.com/flecs-run/edge-core/internal/vault"
)

// StartInstance transitions id to Running. Starting an already-running
// instance is a no-op success.
func StartInstance(ctx context.Context, v *vault.Vault, deployment capability.Deployment, id model.InstanceId) error {
	_, cfg, err := lookupInstance(v, id)
	if err != nil {
		return err
	}

	status, err := deployment.InstanceStatus(ctx, id)
	if err != nil {
		return coreerrors.UpstreamDeployment("instance_status", err)
	}
	if status == model.InstanceRunning {
		return nil
	}

	if _, err := deployment.StartInstance(ctx, cfg, id); err != nil {
		return coreerrors.UpstreamDeployment("start_instance", err)
	}
	return nil
}

// StopInstance transitions id to Stopped. Stopping an already-stopped
// instance is a no-op success.
func StopInstance(ctx context.Context, v *vault.Vault, deployment capability.Deployment, id model.InstanceId) error {
	_, cfg, err := lookupInstance(v, id)
	if err != nil {
		return err
	}

	status, err := deployment.InstanceStatus(ctx, id)
	if err != nil {
		return coreerrors.UpstreamDeployment("instance_status", err)
	}
	if status == model.InstanceStopped {
		return nil
	}

	if err := deployment.StopInstance(ctx, id, cfg); err != nil {
		return coreerrors.UpstreamDeployment("stop_instance", err)
	}
	return nil
}

// DeleteInstance stops id if running (retrying the stop once on failure
// before surfacing it), deletes it from the deployment, releases every
// reverse-proxy redirect, then removes it from the vault. Deleting an
// unknown id is NotFound; re-deletion of the same id is NotFound.
func DeleteInstance(ctx context.Context, v *vault.Vault, deployment capability.Deployment, floxy capability.Floxy, id model.InstanceId) error {
	_, cfg, err := lookupInstance(v, id)
	if err != nil {
		return err
	}

	status, err := deployment.InstanceStatus(ctx, id)
	if err != nil {
		return coreerrors.UpstreamDeployment("instance_status", err)
	}
	if status == model.InstanceRunning {
		if err := deployment.StopInstance(ctx, id, cfg); err != nil {
			if err2 := deployment.StopInstance(ctx, id, cfg); err2 != nil {
				var merr *multierror.Error
				merr = multierror.Append(merr, err, err2)
				return coreerrors.UpstreamDeployment("stop_instance", merr.ErrorOrNil())
			}
		}
	}

	if err := deployment.DeleteInstance(ctx, id); err != nil {
		return coreerrors.UpstreamDeployment("delete_instance", err)
	}

	if err := floxy.RemoveInstanceEditorRedirects(ctx, id); err != nil {
		return coreerrors.UpstreamFloxy("remove_instance_editor_redirects", err)
	}

	g := v.Reservation().ReserveInstancePouchMut().Grab()
	defer g.Release()
	if _, ok := g.Instances.Get(id); !ok {
		return coreerrors.InstanceNotFound(string(id))
	}
	g.Instances.Delete(id)
	return nil
}

func lookupInstance(v *vault.Vault, id model.InstanceId) (*model.Instance, model.InstanceConfig, error) {
	g := v.Reservation().ReserveInstancePouch().Grab()
	defer g.Release()
	inst, ok := g.Instances.Get(id)
	if !ok {
		return nil, model.InstanceConfig{}, coreerrors.InstanceNotFound(string(id))
	}
	return inst, inst.Config, nil
}
