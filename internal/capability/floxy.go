package capability

import (
	"context"
	"net"

	"github.com/flecs-run/edge-core/internal/model"
)

// Floxy is the reverse-proxy capability. It is shared and internally
// synchronized; the orchestrator may invoke it concurrently from
// independent quests.
type Floxy interface {
	// AddInstanceEditorRedirectToFreePort allocates a free host port that
	// forwards to (address, containerPort) for the named instance editor.
	// created reports whether a new redirect was installed, as opposed to
	// one already existing for this exact (instance, port) pair.
	AddInstanceEditorRedirectToFreePort(
		ctx context.Context,
		appName string,
		instanceID model.InstanceId,
		address net.IP,
		containerPort uint16,
	) (created bool, hostPort uint16, err error)

	// RemoveInstanceEditorRedirects tears down every redirect previously
	// allocated for the instance, regardless of port.
	RemoveInstanceEditorRedirects(ctx context.Context, instanceID model.InstanceId) error
}
