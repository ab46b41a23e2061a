package scheduler

import (
	"context"

	"go.uber.org/zap"
)

// Reindexer rebuilds the resource search index.
type Reindexer interface {
	ReindexResources(ctx context.Context) (int, error)
}

type searchReindexJob struct {
	schedule  string
	reindexer Reindexer
	logger    *zap.Logger
}

// NewSearchReindexJob keeps the search index in step with the resources table.
func NewSearchReindexJob(schedule string, reindexer Reindexer, logger *zap.Logger) Job {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &searchReindexJob{schedule: schedule, reindexer: reindexer, logger: logger}
}

func (j *searchReindexJob) Name() string     { return "search-reindex" }
func (j *searchReindexJob) Schedule() string { return j.schedule }

func (j *searchReindexJob) Execute(ctx context.Context) error {
	n, err := j.reindexer.ReindexResources(ctx)
	if err != nil {
		return err
	}
	j.logger.Info("resources reindexed", zap.Int("count", n))
	return nil
}
