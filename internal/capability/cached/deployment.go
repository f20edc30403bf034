// Package cached wraps a capability.Deployment with a short-lived status
// cache, so a burst of list/get requests against the same instance
// doesn't each round-trip the underlying container engine.
package cached

import (
	"context"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/flecs-run/edge-core/internal/capability"
	"github.com/flecs-run/edge-core/internal/model"
)

type statusEntry struct {
	status  model.InstanceStatus
	expires time.Time
}

// Deployment decorates a capability.Deployment, caching InstanceStatus
// results for TTL. Every other method passes straight through. A status
// mutation (start/stop/delete) evicts the affected instance immediately
// so callers never observe a stale status past their own mutation.
type Deployment struct {
	capability.Deployment

	ttl time.Duration
	mu  sync.Mutex
	hot *lru.Cache[model.InstanceId, statusEntry]
}

// NewDeployment wraps next with a status cache of up to size entries,
// each valid for ttl.
func NewDeployment(next capability.Deployment, size int, ttl time.Duration) (*Deployment, error) {
	hot, err := lru.New[model.InstanceId, statusEntry](size)
	if err != nil {
		return nil, err
	}
	return &Deployment{Deployment: next, ttl: ttl, hot: hot}, nil
}

func (d *Deployment) InstanceStatus(ctx context.Context, id model.InstanceId) (model.InstanceStatus, error) {
	d.mu.Lock()
	if entry, ok := d.hot.Get(id); ok && time.Now().Before(entry.expires) {
		d.mu.Unlock()
		return entry.status, nil
	}
	d.mu.Unlock()

	status, err := d.Deployment.InstanceStatus(ctx, id)
	if err != nil {
		return status, err
	}

	d.mu.Lock()
	d.hot.Add(id, statusEntry{status: status, expires: time.Now().Add(d.ttl)})
	d.mu.Unlock()
	return status, nil
}

func (d *Deployment) StartInstance(ctx context.Context, cfg model.InstanceConfig, id model.InstanceId) (model.InstanceId, error) {
	startedID, err := d.Deployment.StartInstance(ctx, cfg, id)
	d.evict(id)
	d.evict(startedID)
	return startedID, err
}

func (d *Deployment) StopInstance(ctx context.Context, id model.InstanceId, cfg model.InstanceConfig) error {
	err := d.Deployment.StopInstance(ctx, id, cfg)
	d.evict(id)
	return err
}

func (d *Deployment) DeleteInstance(ctx context.Context, id model.InstanceId) error {
	err := d.Deployment.DeleteInstance(ctx, id)
	d.evict(id)
	return err
}

func (d *Deployment) evict(id model.InstanceId) {
	if id == "" {
		return
	}
	d.mu.Lock()
	d.hot.Remove(id)
	d.mu.Unlock()
}
