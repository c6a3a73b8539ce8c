package scan

import (
	"errors"
	"sync"
	"time"
)

var ErrJobNotFound = errors.New("scan job not found")

// Registry keeps running and finished jobs so the progress page can poll them.
type Registry struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
	now  func() time.Time
}

func NewRegistry(ttl time.Duration) *Registry {
	return &Registry{
		jobs: make(map[string]*Job),
		ttl:  ttl,
		now:  time.Now,
	}
}

func (r *Registry) Add(job *Job) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sweep()
	r.jobs[job.ID] = job
}

func (r *Registry) Get(id string) (*Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return nil, ErrJobNotFound
	}
	return job, nil
}

// Forget drops a job once its result has been handed to the view.
func (r *Registry) Forget(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.jobs, id)
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.jobs)
}

// sweep drops expired jobs. Caller holds mu.
func (r *Registry) sweep() {
	if r.ttl <= 0 {
		return
	}
	cutoff := r.now().Add(-r.ttl)
	for id, job := range r.jobs {
		if job.Created.Before(cutoff) {
			delete(r.jobs, id)
		}
	}
}
