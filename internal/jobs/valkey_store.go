package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/spacesedan/brandpulse/internal/models"
)

const (
	JOB_KEY_PREFIX = "brandpulse:job:"
	JOB_INDEX_KEY  = "brandpulse:jobs"
)

// valkeyOps is the part of clients.ValkeyClient the job store uses
type valkeyOps interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Del(ctx context.Context, key string) error
	SetAdd(ctx context.Context, key, member string) error
	SetRemove(ctx context.Context, key, member string) error
	SetMembers(ctx context.Context, key string) ([]string, error)
}

// ValkeyStore persists each job as JSON under brandpulse:job:<id> and tracks
// ids in the brandpulse:jobs set, so jobs survive an API restart.
type ValkeyStore struct {
	vc valkeyOps
}

func NewValkeyStore(vc valkeyOps) *ValkeyStore {
	return &ValkeyStore{vc: vc}
}

func jobKey(id string) string { return JOB_KEY_PREFIX + id }

func (v *ValkeyStore) Create(ctx context.Context, job models.Job) error {
	_, found, err := v.vc.Get(ctx, jobKey(job.JobID))
	if err != nil {
		return err
	}
	if found {
		return ErrJobExists
	}
	if err := v.put(ctx, job); err != nil {
		return err
	}
	return v.vc.SetAdd(ctx, JOB_INDEX_KEY, job.JobID)
}

func (v *ValkeyStore) Get(ctx context.Context, id string) (models.Job, error) {
	data, found, err := v.vc.Get(ctx, jobKey(id))
	if err != nil {
		return models.Job{}, err
	}
	if !found {
		return models.Job{}, ErrJobNotFound
	}
	var job models.Job
	if err := json.Unmarshal(data, &job); err != nil {
		return models.Job{}, fmt.Errorf("decode job %s: %w", id, err)
	}
	return job, nil
}

func (v *ValkeyStore) Update(ctx context.Context, job models.Job) error {
	if _, err := v.Get(ctx, job.JobID); err != nil {
		return err
	}
	return v.put(ctx, job)
}

func (v *ValkeyStore) Delete(ctx context.Context, id string) error {
	job, err := v.Get(ctx, id)
	if err != nil {
		return err
	}
	if !job.Status.Terminal() {
		return ErrJobNotTerminal
	}
	if err := v.vc.Del(ctx, jobKey(id)); err != nil {
		return err
	}
	return v.vc.SetRemove(ctx, JOB_INDEX_KEY, id)
}

func (v *ValkeyStore) List(ctx context.Context) ([]models.Job, error) {
	ids, err := v.vc.SetMembers(ctx, JOB_INDEX_KEY)
	if err != nil {
		return nil, err
	}

	out := make([]models.Job, 0, len(ids))
	for _, id := range ids {
		job, err := v.Get(ctx, id)
		if err != nil {
			slog.Warn("[JobStore] Skipping unreadable job",
				slog.String("job_id", id),
				slog.String("error", err.Error()))
			continue
		}
		out = append(out, job)
	}
	sortJobs(out)
	return out, nil
}

func (v *ValkeyStore) put(ctx context.Context, job models.Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encode job %s: %w", job.JobID, err)
	}
	return v.vc.Set(ctx, jobKey(job.JobID), data)
}
