package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskStatsWarmup pre-populates the dashboard cache.
	TaskStatsWarmup = "stats:warmup"
	// TaskStockLowScan reports products running below the stock threshold.
	TaskStockLowScan = "stock:lowscan"
	// TaskKeysCleanup prunes idempotency keys past the retention window.
	TaskKeysCleanup = "keys:cleanup"
)

// StatsWarmupPayload configures a dashboard warmup run.
type StatsWarmupPayload struct {
	Reason string `json:"reason"`
}

// StockLowScanPayload configures a low stock scan run.
type StockLowScanPayload struct {
	Threshold int64 `json:"threshold"`
}

// NewStatsWarmupTask constructs a stats warmup task.
func NewStatsWarmupTask(reason string) (*asynq.Task, error) {
	data, err := json.Marshal(StatsWarmupPayload{Reason: reason})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskStatsWarmup, data), nil
}

// NewStockLowScanTask constructs a low stock scan task.
func NewStockLowScanTask(threshold int64) (*asynq.Task, error) {
	data, err := json.Marshal(StockLowScanPayload{Threshold: threshold})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskStockLowScan, data), nil
}

// KeysCleanupPayload configures an idempotency key cleanup run.
type KeysCleanupPayload struct {
	RetentionHours int64 `json:"retention_hours"`
}

// NewKeysCleanupTask constructs a key cleanup task. retentionHours of zero
// or less lets the handler apply its default window.
func NewKeysCleanupTask(retentionHours int64) (*asynq.Task, error) {
	data, err := json.Marshal(KeysCleanupPayload{RetentionHours: retentionHours})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskKeysCleanup, data), nil
}
