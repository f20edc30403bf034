// Package quest implements the hierarchical, cancel-aware job tree that
// lets the HTTP layer return a job id immediately while a multi-step
// orchestration runs to completion in the background and publishes
// progress through sub-quests.
package quest

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	coreerrors "github.com/flecs-run/edge-core/internal/errors"
)

// State is the lifecycle state of one node in the quest tree.
type State string

const (
	Pending   State = "Pending"
	Running   State = "Running"
	Ok        State = "Ok"
	Failed    State = "Failed"
	Cancelled State = "Cancelled"
)

// JobID identifies a root quest tracked by a Registry.
type JobID string

// Quest is one node in a tree of concurrent, cancellable units of work.
type Quest struct {
	mu          sync.Mutex
	id          JobID
	description string
	detail      string
	state       State
	err         error
	children    []*Quest
	parent      *Quest

	ctx    context.Context
	cancel context.CancelFunc
}

func newQuest(ctx context.Context, id JobID, description string, parent *Quest) *Quest {
	qctx, cancel := context.WithCancel(ctx)
	return &Quest{
		id:          id,
		description: description,
		state:       Pending,
		parent:      parent,
		ctx:         qctx,
		cancel:      cancel,
	}
}

func (q *Quest) ID() JobID { return q.id }

func (q *Quest) Description() string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.description
}

// SetDetail publishes live progress text for this node.
func (q *Quest) SetDetail(detail string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.detail = detail
}

func (q *Quest) Detail() string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.detail
}

// State reports this node's own lifecycle state. It does not roll up
// children: a parent's state reflects its own function's completion,
// which in ordinary control flow already depends on every child it
// chose to await.
func (q *Quest) State() State {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.state
}

func (q *Quest) Err() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.err
}

// Children returns a snapshot of the sub-quests created under this node,
// in creation order, for tree serialization by the Jobs API.
func (q *Quest) Children() []*Quest {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]*Quest, len(q.children))
	copy(out, q.children)
	return out
}

// Cancel marks this node and its descendants cancelled. Propagation is
// downward only: cancelling a sub-quest never affects its parent or
// siblings. A well-behaved child observes cancellation at its next
// suspension point (ctx.Done(), a nested sub-quest await, or a capability
// call) and returns Cancelled.
func (q *Quest) Cancel() {
	q.cancel()
}

func (q *Quest) addChild(c *Quest) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.children = append(q.children, c)
}

func (q *Quest) finish(err error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.state == Ok || q.state == Failed || q.state == Cancelled {
		return // already terminal; finishing is idempotent
	}
	q.err = err
	switch {
	case err == nil:
		q.state = Ok
	case errors.Is(err, context.Canceled) || coreerrors.Is(err, coreerrors.CodeCancelled):
		q.state = Cancelled
	default:
		q.state = Failed
	}
}

func (q *Quest) setRunning() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.state == Pending {
		q.state = Running
	}
}

// SubResult is the eventual output of a sub-quest's function.
type SubResult struct {
	Value any
	Err   error
}

// CreateSubQuest schedules f(ctx, sub) to run concurrently with the
// caller. It returns the sub-quest (for progress inspection/cancellation)
// and a channel that receives exactly one SubResult once f returns.
func CreateSubQuest(q *Quest, description string, f func(ctx context.Context, sub *Quest) (any, error)) (*Quest, <-chan SubResult) {
	sub := newQuest(q.ctx, JobID(uuid.NewString()), description, q)
	q.addChild(sub)
	sub.setRunning()

	resultCh := make(chan SubResult, 1)
	go func() {
		value, err := f(sub.ctx, sub)
		if err == nil && sub.ctx.Err() != nil {
			err = coreerrors.Cancelled()
		}
		sub.finish(err)
		resultCh <- SubResult{Value: value, Err: err}
		close(resultCh)
	}()
	return sub, resultCh
}

// CreateInfallibleSubQuest is identical to CreateSubQuest except the
// child's function cannot fail; its result is swallowed into the parent
// and the sub-quest always finishes Ok (or Cancelled if pre-empted).
func CreateInfallibleSubQuest(q *Quest, description string, f func(ctx context.Context, sub *Quest) any) (*Quest, <-chan any) {
	resultCh := make(chan any, 1)
	sub, subCh := CreateSubQuest(q, description, func(ctx context.Context, sq *Quest) (any, error) {
		return f(ctx, sq), nil
	})
	go func() {
		res := <-subCh
		resultCh <- res.Value
		close(resultCh)
	}()
	return sub, resultCh
}

// Await blocks until ch delivers its result, returning the value and any
// error. It is a small convenience over the raw channel receive.
func Await(ch <-chan SubResult) (any, error) {
	res := <-ch
	return res.Value, res.Err
}
