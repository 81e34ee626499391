package job

import (
	"context"
	"sort"
	"sync"

	"github.com/tradeease/tradeease/pkg/caldate"
)

// InMemoryRepository is an in-memory implementation of Repository.
// This is intended for testing and local runs.
type InMemoryRepository struct {
	mu   sync.RWMutex
	jobs map[string]*ScheduledJob
}

// NewInMemoryRepository creates a new in-memory job repository.
func NewInMemoryRepository(seed ...ScheduledJob) *InMemoryRepository {
	r := &InMemoryRepository{
		jobs: make(map[string]*ScheduledJob, len(seed)),
	}
	for i := range seed {
		cpy := seed[i]
		r.jobs[cpy.ID] = &cpy
	}
	return r
}

// Get retrieves a job by ID.
func (r *InMemoryRepository) Get(_ context.Context, id string) (*ScheduledJob, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	j, ok := r.jobs[id]
	if !ok {
		return nil, ErrJobNotFound
	}
	cpy := *j
	return &cpy, nil
}

// ListByDateRange retrieves jobs whose date key falls within [from, to].
func (r *InMemoryRepository) ListByDateRange(_ context.Context, from, to caldate.Date) ([]ScheduledJob, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fromKey, toKey := from.Key(), to.Key()
	var jobs []ScheduledJob
	for _, j := range r.jobs {
		if j.Date >= fromKey && j.Date <= toKey {
			jobs = append(jobs, *j)
		}
	}
	sortJobs(jobs)
	return jobs, nil
}

// List retrieves every job.
func (r *InMemoryRepository) List(_ context.Context) ([]ScheduledJob, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	jobs := make([]ScheduledJob, 0, len(r.jobs))
	for _, j := range r.jobs {
		jobs = append(jobs, *j)
	}
	sortJobs(jobs)
	return jobs, nil
}

// Save inserts or replaces a job.
func (r *InMemoryRepository) Save(_ context.Context, j *ScheduledJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cpy := *j
	r.jobs[j.ID] = &cpy
	return nil
}

// UpdateDate moves a job to another day.
func (r *InMemoryRepository) UpdateDate(_ context.Context, id string, date caldate.Date) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	j, ok := r.jobs[id]
	if !ok {
		return ErrJobNotFound
	}
	j.Date = date.Key()
	return nil
}

// sortJobs orders jobs by date key, then job number, then ID.
func sortJobs(jobs []ScheduledJob) {
	sort.SliceStable(jobs, func(a, b int) bool {
		if jobs[a].Date != jobs[b].Date {
			return jobs[a].Date < jobs[b].Date
		}
		if jobs[a].JobNumber != jobs[b].JobNumber {
			return jobs[a].JobNumber < jobs[b].JobNumber
		}
		return jobs[a].ID < jobs[b].ID
	})
}

// Ensure InMemoryRepository implements Repository interface.
var _ Repository = (*InMemoryRepository)(nil)
