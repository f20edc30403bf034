// Package captest provides in-memory fakes of the capability interfaces
// for use in orchestrator and HTTP adapter tests.
package captest

import (
	"context"
	"sync"

	"github.com/flecs-run/edge-core/internal/capability"
	"github.com/flecs-run/edge-core/internal/model"
)

// Deployment is a scriptable fake of capability.Deployment. Every field is
// an optional override; when nil a sane default is used.
type Deployment struct {
	Id              string
	Network         model.Network
	NetworkErr      error
	StartErr        error
	StopErr         error
	DeleteErr       error
	StatusErr       error
	AppInfoErr      error

	mu        sync.Mutex
	statuses  map[model.InstanceId]model.InstanceStatus
	started   map[model.InstanceId]int
	stopped   map[model.InstanceId]int
	deleted   map[model.InstanceId]int
}

func NewDeployment(id string) *Deployment {
	return &Deployment{
		Id:       id,
		statuses: make(map[model.InstanceId]model.InstanceStatus),
		started:  make(map[model.InstanceId]int),
		stopped:  make(map[model.InstanceId]int),
		deleted:  make(map[model.InstanceId]int),
	}
}

func (d *Deployment) ID() string { return d.Id }

func (d *Deployment) DefaultNetwork(ctx context.Context) (model.Network, error) {
	if d.NetworkErr != nil {
		return model.Network{}, d.NetworkErr
	}
	return d.Network, nil
}

func (d *Deployment) AppInfo(ctx context.Context, key model.AppKey) (capability.AppInfo, error) {
	if d.AppInfoErr != nil {
		return capability.AppInfo{}, d.AppInfoErr
	}
	return capability.AppInfo{ImageID: key.String()}, nil
}

func (d *Deployment) StartInstance(ctx context.Context, cfg model.InstanceConfig, id model.InstanceId) (model.InstanceId, error) {
	if d.StartErr != nil {
		return "", d.StartErr
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.statuses[id] = model.InstanceRunning
	d.started[id]++
	return id, nil
}

func (d *Deployment) StopInstance(ctx context.Context, id model.InstanceId, cfg model.InstanceConfig) error {
	if d.StopErr != nil {
		return d.StopErr
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.statuses[id] = model.InstanceStopped
	d.stopped[id]++
	return nil
}

func (d *Deployment) DeleteInstance(ctx context.Context, id model.InstanceId) error {
	if d.DeleteErr != nil {
		return d.DeleteErr
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.statuses, id)
	d.deleted[id]++
	return nil
}

func (d *Deployment) InstanceStatus(ctx context.Context, id model.InstanceId) (model.InstanceStatus, error) {
	if d.StatusErr != nil {
		return model.InstanceUnknown, d.StatusErr
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	status, ok := d.statuses[id]
	if !ok {
		return model.InstanceStopped, nil
	}
	return status, nil
}

func (d *Deployment) InstanceLogs(ctx context.Context, cfg model.InstanceConfig, id model.InstanceId) (capability.Logs, error) {
	return capability.Logs{Stdout: "", Stderr: ""}, nil
}

// SetStatus forces the status InstanceStatus call will report for id.
func (d *Deployment) SetStatus(id model.InstanceId, status model.InstanceStatus) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.statuses[id] = status
}

func (d *Deployment) StopCount(id model.InstanceId) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stopped[id]
}

func (d *Deployment) DeleteCount(id model.InstanceId) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.deleted[id]
}
