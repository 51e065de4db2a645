package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spacesedan/brandpulse/internal/models"
)

// Progress messages shown while a job moves through its states
var progressMessages = map[models.JobStatus]string{
	models.JobQueued:             "Waiting to start...",
	models.JobScraping:           "Collecting data from sources...",
	models.JobAnalyzing:          "Running sentiment analysis...",
	models.JobGeneratingInsights: "Generating insights...",
	models.JobCompleted:          "Analysis complete",
}

// RunFunc executes one job. It reports each state change through update and
// returns where the results were written.
type RunFunc func(ctx context.Context, brandName string, limits models.FetchLimits, update func(models.JobStatus)) (resultsPath string, err error)

// Manager creates jobs and runs them in the background. Jobs are not
// cancellable once started.
type Manager struct {
	store Store
	run   RunFunc
	now   func() time.Time
	newID func() string
	wg    sync.WaitGroup
}

func NewManager(store Store, run RunFunc) *Manager {
	return &Manager{
		store: store,
		run:   run,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

func (m *Manager) Store() Store { return m.store }

// Submit records a queued job and starts it
func (m *Manager) Submit(ctx context.Context, brandName string, limits models.FetchLimits) (models.Job, error) {
	brandName = strings.TrimSpace(brandName)
	if brandName == "" {
		return models.Job{}, errors.New("brand name cannot be empty")
	}

	job := models.Job{
		JobID:     m.newID(),
		BrandName: brandName,
		Status:    models.JobQueued,
		Progress:  progressMessages[models.JobQueued],
		CreatedAt: m.now().UTC(),
	}
	if err := m.store.Create(ctx, job); err != nil {
		return models.Job{}, fmt.Errorf("create job: %w", err)
	}

	slog.Info("[JobManager] Job queued",
		slog.String("job_id", job.JobID),
		slog.String("brand", brandName))

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.execute(context.WithoutCancel(ctx), job, limits)
	}()

	return job, nil
}

func (m *Manager) execute(ctx context.Context, job models.Job, limits models.FetchLimits) {
	start := time.Now()
	update := func(status models.JobStatus) {
		job.Status = status
		job.Progress = progressMessages[status]
		m.save(ctx, job)
	}

	resultsPath, err := m.safeRun(ctx, job, limits, update)

	completedAt := m.now().UTC()
	job.CompletedAt = &completedAt
	if err != nil {
		job.Status = models.JobFailed
		job.Progress = "Error: " + err.Error()
		job.Error = err.Error()
		m.save(ctx, job)
		slog.Error("[JobManager] Job failed",
			slog.String("job_id", job.JobID),
			slog.String("error", err.Error()))
		return
	}

	job.Status = models.JobCompleted
	job.Progress = progressMessages[models.JobCompleted]
	job.ResultsPath = resultsPath
	m.save(ctx, job)
	slog.Info("[JobManager] Job completed",
		slog.String("job_id", job.JobID),
		slog.Duration("elapsed", time.Since(start)))
}

// safeRun turns a panic in the pipeline into a job failure
func (m *Manager) safeRun(ctx context.Context, job models.Job, limits models.FetchLimits, update func(models.JobStatus)) (resultsPath string, err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("[JobManager] Recovered from panic",
				slog.String("job_id", job.JobID),
				slog.Any("panic", r))
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()
	return m.run(ctx, job.BrandName, limits, update)
}

func (m *Manager) save(ctx context.Context, job models.Job) {
	if err := m.store.Update(ctx, job); err != nil {
		slog.Error("[JobManager] Failed to save job state",
			slog.String("job_id", job.JobID),
			slog.String("status", string(job.Status)),
			slog.String("error", err.Error()))
	}
}

// Wait blocks until every submitted job has finished
func (m *Manager) Wait() {
	m.wg.Wait()
}
