package mock

import (
	"context"

	"github.com/fwojciec/llmfetch"
)

var _ llmfetch.JobService = (*JobService)(nil)

// JobService is a mock implementation of llmfetch.JobService.
type JobService struct {
	CreateJobFn   func(ctx context.Context, job *llmfetch.Job) error
	FindJobByIDFn func(ctx context.Context, id int64) (*llmfetch.Job, error)
	FindJobsFn    func(ctx context.Context) ([]*llmfetch.Job, error)
	DeleteJobFn   func(ctx context.Context, id int64) (bool, error)
	InsertRowFn   func(ctx context.Context, jobID int64, values map[string]any) (int64, error)
	FindRowsFn    func(ctx context.Context, jobID int64, filter llmfetch.RowFilter) ([]*llmfetch.Row, error)
	DeleteRowFn   func(ctx context.Context, jobID, rowID int64) (bool, error)
}

func (s *JobService) CreateJob(ctx context.Context, job *llmfetch.Job) error {
	return s.CreateJobFn(ctx, job)
}

func (s *JobService) FindJobByID(ctx context.Context, id int64) (*llmfetch.Job, error) {
	return s.FindJobByIDFn(ctx, id)
}

func (s *JobService) FindJobs(ctx context.Context) ([]*llmfetch.Job, error) {
	return s.FindJobsFn(ctx)
}

func (s *JobService) DeleteJob(ctx context.Context, id int64) (bool, error) {
	return s.DeleteJobFn(ctx, id)
}

func (s *JobService) InsertRow(ctx context.Context, jobID int64, values map[string]any) (int64, error) {
	return s.InsertRowFn(ctx, jobID, values)
}

func (s *JobService) FindRows(ctx context.Context, jobID int64, filter llmfetch.RowFilter) ([]*llmfetch.Row, error) {
	return s.FindRowsFn(ctx, jobID, filter)
}

func (s *JobService) DeleteRow(ctx context.Context, jobID, rowID int64) (bool, error) {
	return s.DeleteRowFn(ctx, jobID, rowID)
}
