package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/tokokita/tokokita/internal/jobs"
)

const defaultKeyRetention = 7 * 24 * time.Hour

// KeyCleaner prunes idempotency keys older than the retention window.
type KeyCleaner interface {
	Cleanup(ctx context.Context, olderThan time.Duration) error
}

// KeysCleanupJob keeps the posting_keys table from growing without bound.
// Keys only need to outlive client retries, so a generous window is safe.
type KeysCleanupJob struct {
	Store   KeyCleaner
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewKeysCleanupJob wires dependencies for the cleanup handler.
func NewKeysCleanupJob(store KeyCleaner, logger *slog.Logger, metrics *jobmetrics.Metrics) *KeysCleanupJob {
	return &KeysCleanupJob{Store: store, Logger: logger, Metrics: metrics}
}

// Handle processes key cleanup tasks.
func (j *KeysCleanupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Store == nil {
		return errors.New("keys cleanup: handler not configured")
	}
	var payload KeysCleanupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	retention := defaultKeyRetention
	if payload.RetentionHours > 0 {
		retention = time.Duration(payload.RetentionHours) * time.Hour
	}

	tracker := j.metrics().Track(TaskKeysCleanup)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger().With(slog.Duration("retention", retention))
	logger.Info("starting key cleanup")

	if err := j.Store.Cleanup(ctx, retention); err != nil {
		resultErr = err
		logger.Error("cleanup failed", slog.Any("error", err))
		return resultErr
	}

	logger.Info("completed key cleanup")
	return resultErr
}

func (j *KeysCleanupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskKeysCleanup))
	}
	return slog.Default().With(slog.String("job", TaskKeysCleanup))
}

func (j *KeysCleanupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
