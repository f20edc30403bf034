package captest

import (
	"context"
	"net"
	"sync"

	"github.com/flecs-run/edge-core/internal/model"
)

// Floxy is a scriptable fake of capability.Floxy backed by an
// auto-incrementing free-port counter.
type Floxy struct {
	NextPort uint16
	AddErr   error
	RemoveErr error

	mu        sync.Mutex
	redirects map[model.InstanceId]map[uint16]uint16 // instance -> container port -> host port
	calls     int
}

func NewFloxy(nextPort uint16) *Floxy {
	return &Floxy{NextPort: nextPort, redirects: make(map[model.InstanceId]map[uint16]uint16)}
}

func (f *Floxy) AddInstanceEditorRedirectToFreePort(
	ctx context.Context,
	appName string,
	instanceID model.InstanceId,
	address net.IP,
	containerPort uint16,
) (bool, uint16, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.AddErr != nil {
		return false, 0, f.AddErr
	}
	byInstance, ok := f.redirects[instanceID]
	if !ok {
		byInstance = make(map[uint16]uint16)
		f.redirects[instanceID] = byInstance
	}
	if hostPort, ok := byInstance[containerPort]; ok {
		return false, hostPort, nil
	}
	hostPort := f.NextPort
	f.NextPort++
	byInstance[containerPort] = hostPort
	return true, hostPort, nil
}

func (f *Floxy) RemoveInstanceEditorRedirects(ctx context.Context, instanceID model.InstanceId) error {
	if f.RemoveErr != nil {
		return f.RemoveErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.redirects, instanceID)
	return nil
}

// CallCount reports how many times AddInstanceEditorRedirectToFreePort was
// invoked, regardless of outcome.
func (f *Floxy) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}
