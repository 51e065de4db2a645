package jobs

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/spacesedan/brandpulse/internal/models"
)

var (
	ErrJobNotFound    = errors.New("jobs: job not found")
	ErrJobNotTerminal = errors.New("jobs: job is still running")
	ErrJobExists      = errors.New("jobs: job already exists")
)

// Store keeps job records. Delete only succeeds for completed or failed jobs.
type Store interface {
	Create(ctx context.Context, job models.Job) error
	Get(ctx context.Context, id string) (models.Job, error)
	Update(ctx context.Context, job models.Job) error
	Delete(ctx context.Context, id string) error
	// List returns every job, oldest first
	List(ctx context.Context) ([]models.Job, error)
}

type MemoryStore struct {
	mu   sync.RWMutex
	jobs map[string]models.Job
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{jobs: make(map[string]models.Job)}
}

func (m *MemoryStore) Create(_ context.Context, job models.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.jobs[job.JobID]; ok {
		return ErrJobExists
	}
	m.jobs[job.JobID] = job
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (models.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	job, ok := m.jobs[id]
	if !ok {
		return models.Job{}, ErrJobNotFound
	}
	return job, nil
}

func (m *MemoryStore) Update(_ context.Context, job models.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.jobs[job.JobID]; !ok {
		return ErrJobNotFound
	}
	m.jobs[job.JobID] = job
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return ErrJobNotFound
	}
	if !job.Status.Terminal() {
		return ErrJobNotTerminal
	}
	delete(m.jobs, id)
	return nil
}

func (m *MemoryStore) List(_ context.Context) ([]models.Job, error) {
	m.mu.RLock()
	out := make([]models.Job, 0, len(m.jobs))
	for _, job := range m.jobs {
		out = append(out, job)
	}
	m.mu.RUnlock()

	sortJobs(out)
	return out, nil
}

func sortJobs(jobs []models.Job) {
	sort.Slice(jobs, func(i, j int) bool {
		if jobs[i].CreatedAt.Equal(jobs[j].CreatedAt) {
			return jobs[i].JobID < jobs[j].JobID
		}
		return jobs[i].CreatedAt.Before(jobs[j].CreatedAt)
	})
}
