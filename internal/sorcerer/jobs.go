package sorcerer

import (
	coreerrors "github.com/flecs-run/edge-core/internal/errors"
	"github.com/flecs-run/edge-core/internal/quest"
)

// Jobs exposes the quest Registry as the Jobs surface from the external
// interface list: list all roots, get one by id, delete a terminal one.
type Jobs interface {
	Sorcerer

	List() []*quest.Quest
	Get(id quest.JobID) (*quest.Quest, error)
	Delete(id quest.JobID) error
}

type jobsImpl struct {
	registry *quest.Registry
}

func NewJobs(registry *quest.Registry) Jobs {
	return &jobsImpl{registry: registry}
}

func (j *jobsImpl) sorcerer() {}

func (j *jobsImpl) List() []*quest.Quest { return j.registry.List() }

func (j *jobsImpl) Get(id quest.JobID) (*quest.Quest, error) {
	q, ok := j.registry.Get(id)
	if !ok {
		return nil, coreerrors.JobNotFound(string(id))
	}
	return q, nil
}

func (j *jobsImpl) Delete(id quest.JobID) error {
	return j.registry.Delete(id)
}
