// ABOUTME: Job registry holding per-feed scheduling state across periods
// ABOUTME: Owned by the period executor; hands read-only snapshots to policies

package models

import (
	"fmt"
	"sort"
	"sync"
)

// Registry is the process-wide set of jobs for one scheduling run. It is
// explicitly owned by the period executor (never ambient state) so multiple
// independent experiments can run in the same process.
type Registry struct {
	// RWMutex: snapshot reads during a period vastly outnumber the single
	// commit write at period end.
	mu   sync.RWMutex
	jobs map[string]*Job
}

func NewRegistry() *Registry {
	return &Registry{jobs: make(map[string]*Job)}
}

// Add registers a new job. Job ids must be unique.
func (r *Registry) Add(j *Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.jobs[j.ID]; exists {
		return fmt.Errorf("job %s already registered", j.ID)
	}
	r.jobs[j.ID] = j
	return nil
}

// Get returns the live job record, or nil if absent.
func (r *Registry) Get(id string) *Job {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.jobs[id]
}

// Retire removes a job from active scheduling.
func (r *Registry) Retire(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.jobs, id)
}

// Len returns the number of registered jobs.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.jobs)
}

// Active returns the live records of jobs whose task cursor is in bounds,
// ordered by id so every per-period iteration is deterministic.
func (r *Registry) Active() []*Job {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Job, 0, len(r.jobs))
	for _, j := range r.jobs {
		if j.Active() {
			out = append(out, j)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out
}

// ActiveSnapshots returns deep copies of the active jobs, ordered by id.
// This is what policies consume: they must never mutate shared state.
func (r *Registry) ActiveSnapshots() []Job {
	live := r.Active()
	out := make([]Job, 0, len(live))
	for _, j := range live {
		out = append(out, j.Snapshot())
	}
	return out
}
