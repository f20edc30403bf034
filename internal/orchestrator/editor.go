package orchestrator

import (
	"context"

	"github.com/flecs-run/edge-core/internal/capability"
	coreerrors "github.com/flecs-run/edge-core/internal/errors"
	"github.com/flecs-run/edge-core/internal/model"
	"github.com/flecs-run/edge-core/internal/vault"
)

// RedirectEditorRequestResult is the outcome of RedirectEditorRequest.
type RedirectEditorRequestResult int

const (
	EditorInstanceNotFound RedirectEditorRequestResult = iota
	EditorUnknownPort
	EditorSupportsReverseProxy
	EditorInstanceNotRunning
	EditorInstanceNotConnectedToNetwork
	EditorRedirected
)

func (r RedirectEditorRequestResult) String() string {
	switch r {
	case EditorInstanceNotFound:
		return "InstanceNotFound"
	case EditorUnknownPort:
		return "UnknownPort"
	case EditorSupportsReverseProxy:
		return "SupportsReverseProxy"
	case EditorInstanceNotRunning:
		return "InstanceNotRunning"
	case EditorInstanceNotConnectedToNetwork:
		return "InstanceNotConnectedToNetwork"
	case EditorRedirected:
		return "Redirected"
	default:
		return "Unknown"
	}
}

// RedirectEditorRequest resolves (instance_id, container_port) to a host
// port the caller should redirect to, following the seven-step algorithm:
// existence, known editor, reverse-proxy opt-out, an already-allocated
// redirect (checked before liveness, so it survives a stop), running
// state, network connectivity, then a fresh Floxy allocation.
func RedirectEditorRequest(ctx context.Context, v *vault.Vault, deployment capability.Deployment, floxy capability.Floxy, instanceID model.InstanceId, containerPort uint16) (RedirectEditorRequestResult, uint16, error) {
	g := v.Reservation().ReserveInstancePouchMut().ReserveManifestPouch().Grab()

	inst, ok := g.Instances.Get(instanceID)
	if !ok {
		g.Release()
		return EditorInstanceNotFound, 0, nil
	}

	manifest, ok := g.Manifests.Get(inst.AppKey)
	if !ok {
		g.Release()
		return EditorUnknownPort, 0, nil
	}

	editor, ok := manifest.Editor(containerPort)
	if !ok {
		g.Release()
		return EditorUnknownPort, 0, nil
	}
	if editor.SupportsReverseProxy {
		g.Release()
		return EditorSupportsReverseProxy, 0, nil
	}

	if hostPort, ok := inst.Config.MappedEditorPorts[containerPort]; ok {
		g.Release()
		return EditorRedirected, hostPort, nil
	}

	appName := inst.AppKey.Name
	g.Release()

	status, err := deployment.InstanceStatus(ctx, instanceID)
	if err != nil {
		return 0, 0, coreerrors.UpstreamDeployment("instance_status", err)
	}
	if status != model.InstanceRunning {
		return EditorInstanceNotRunning, 0, nil
	}

	network, err := deployment.DefaultNetwork(ctx)
	if err != nil {
		return 0, 0, coreerrors.UpstreamDeployment("default_network", err)
	}

	g = v.Reservation().ReserveInstancePouchMut().Grab()
	inst, ok = g.Instances.Get(instanceID)
	if !ok {
		g.Release()
		return EditorInstanceNotFound, 0, nil
	}
	address, ok := inst.Config.ConnectedNetworks[network.ID]
	if !ok {
		g.Release()
		return EditorInstanceNotConnectedToNetwork, 0, nil
	}
	g.Release()

	_, hostPort, err := floxy.AddInstanceEditorRedirectToFreePort(ctx, appName, instanceID, address, containerPort)
	if err != nil {
		return 0, 0, coreerrors.UpstreamFloxy("add_instance_editor_redirect_to_free_port", err)
	}

	g = v.Reservation().ReserveInstancePouchMut().Grab()
	defer g.Release()
	inst, ok = g.Instances.Get(instanceID)
	if !ok {
		return EditorInstanceNotFound, 0, nil
	}
	inst.Config.MappedEditorPorts[containerPort] = hostPort
	return EditorRedirected, hostPort, nil
}
