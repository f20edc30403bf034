// Package capability declares the adapter interfaces the orchestrator
// consumes: Deployment (container engine), Floxy (reverse proxy) and
// UsbDeviceReader (USB enumeration). Production and test implementations
// coexist behind these interfaces; the orchestrator never imports a
// concrete backend.
package capability

import (
	"context"

	"github.com/flecs-run/edge-core/internal/model"
)

// Logs is the stdout/stderr pair returned by a deployment's log tail.
type Logs struct {
	Stdout string
	Stderr string
}

// AppInfo is backend-reported metadata about an installed app image.
type AppInfo struct {
	ImageID string
	Size    int64
}

// Deployment is a handle to a container-engine backend. The core treats
// each deployment as an opaque black box: it never interprets the backend
// beyond this interface.
type Deployment interface {
	ID() string
	DefaultNetwork(ctx context.Context) (model.Network, error)
	AppInfo(ctx context.Context, key model.AppKey) (AppInfo, error)

	StartInstance(ctx context.Context, cfg model.InstanceConfig, id model.InstanceId) (model.InstanceId, error)
	StopInstance(ctx context.Context, id model.InstanceId, cfg model.InstanceConfig) error
	DeleteInstance(ctx context.Context, id model.InstanceId) error
	InstanceStatus(ctx context.Context, id model.InstanceId) (model.InstanceStatus, error)
	InstanceLogs(ctx context.Context, cfg model.InstanceConfig, id model.InstanceId) (Logs, error)
}
