package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	jobmetrics "github.com/tokokita/tokokita/internal/jobs"
	"github.com/tokokita/tokokita/internal/stats"
)

// StockLowScanJob reports products whose stock dropped below the threshold
// so the owner can restock before sales start bouncing.
type StockLowScanJob struct {
	Stats   *stats.Service
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	printer *message.Printer
	clock   func() time.Time
}

// NewStockLowScanJob initialises the low stock scan handler.
func NewStockLowScanJob(statsSvc *stats.Service, logger *slog.Logger, metrics *jobmetrics.Metrics) *StockLowScanJob {
	return &StockLowScanJob{
		Stats:   statsSvc,
		Logger:  logger,
		Metrics: metrics,
		printer: message.NewPrinter(language.Indonesian),
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle executes the low stock scan logic.
func (j *StockLowScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Stats == nil {
		return errors.New("stock lowscan: handler not configured")
	}
	var payload StockLowScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	tracker := j.metrics().Track(TaskStockLowScan)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger().With(slog.Int64("threshold", payload.Threshold))
	logger.Info("starting low stock scan")

	start := j.now()
	alerts, err := j.Stats.LowStock(ctx, payload.Threshold)
	if err != nil {
		resultErr = err
		logger.Error("scan failed", slog.Any("error", err))
		return resultErr
	}

	for _, a := range alerts {
		logger.Warn("product running low",
			slog.Int64("product_id", a.ProductID),
			slog.String("name", a.Name),
			slog.Int64("stock", a.Stock),
			slog.String("selling_price", j.formatRupiah(a.SellingPrice)),
		)
	}
	j.metrics().SetLowStock(len(alerts))

	logger.Info("completed low stock scan",
		slog.Int("products", len(alerts)),
		slog.Duration("duration", time.Since(start)),
	)
	return resultErr
}

func (j *StockLowScanJob) formatRupiah(amount float64) string {
	if j.printer == nil {
		j.printer = message.NewPrinter(language.Indonesian)
	}
	return j.printer.Sprintf("Rp%.2f", amount)
}

func (j *StockLowScanJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskStockLowScan))
	}
	return slog.Default().With(slog.String("job", TaskStockLowScan))
}

func (j *StockLowScanJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *StockLowScanJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
