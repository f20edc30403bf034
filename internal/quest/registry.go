package quest

import (
	"context"
	"sync"

	"github.com/google/uuid"

	coreerrors "github.com/flecs-run/edge-core/internal/errors"
)

// Registry indexes root quests ("jobs") by id, backing the Jobs API:
// list every root, get one by id, delete a terminal one.
type Registry struct {
	mu   sync.RWMutex
	root context.Context
	jobs map[JobID]*Quest
}

func NewRegistry(root context.Context) *Registry {
	if root == nil {
		root = context.Background()
	}
	return &Registry{root: root, jobs: make(map[JobID]*Quest)}
}

// NewRoot creates a tracked top-level job and immediately starts running
// f concurrently, returning the quest so the caller can hand its id back
// to the HTTP layer without waiting for f to finish.
func (r *Registry) NewRoot(description string, f func(ctx context.Context, q *Quest) error) *Quest {
	q := newQuest(r.root, JobID(uuid.NewString()), description, nil)
	r.mu.Lock()
	r.jobs[q.id] = q
	r.mu.Unlock()

	q.setRunning()
	go func() {
		err := f(q.ctx, q)
		if err == nil && q.ctx.Err() != nil {
			err = coreerrors.Cancelled()
		}
		q.finish(err)
	}()
	return q
}

// List returns every tracked root job.
func (r *Registry) List() []*Quest {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Quest, 0, len(r.jobs))
	for _, q := range r.jobs {
		out = append(out, q)
	}
	return out
}

// Get returns the root job with the given id.
func (r *Registry) Get(id JobID) (*Quest, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	q, ok := r.jobs[id]
	return q, ok
}

// Delete removes a terminal root job. Deleting a job still Pending or
// Running is refused.
func (r *Registry) Delete(id JobID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, ok := r.jobs[id]
	if !ok {
		return coreerrors.JobNotFound(string(id))
	}
	switch q.State() {
	case Ok, Failed, Cancelled:
		delete(r.jobs, id)
		return nil
	default:
		return coreerrors.New(coreerrors.CodeInternal, "job is not terminal", 409).WithDetail("job_id", string(id))
	}
}
