package pipeline

import (
	"context"
	"time"

	"sales-etl/config"
	"sales-etl/internal/models"
	"sales-etl/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Stage names, in execution order.
const (
	StageCustomers  = "customers"
	StageProducts   = "products"
	StageOrders     = "orders"
	StageOrderItems = "order_items"
	StageShipments  = "shipments"
)

// Store is the storage surface the pipeline writes through. *store.Store
// satisfies it; tests substitute an in-memory fake.
type Store interface {
	InsertCustomers(ctx context.Context, customers []models.Customer) error
	InsertProducts(ctx context.Context, products []models.Product) error
	InsertOrders(ctx context.Context, orders []models.Order) error
	InsertOrderItems(ctx context.Context, items []models.OrderItem) error
	InsertShipments(ctx context.Context, shipments []models.Shipment) error
	CustomerIDsByEmail(ctx context.Context) (map[string]int64, error)
	ProductIDsBySKU(ctx context.Context) (map[string]int64, error)
	OrderIDsByExternalID(ctx context.Context) (map[string]int64, error)
}

// EventPublisher receives load lifecycle events. Implementations are
// best-effort; publish failures are logged, never fatal.
type EventPublisher interface {
	StageCompleted(ctx context.Context, runID, stage, table string, rows int) error
	RunCompleted(ctx context.Context, runID string, counts map[string]int, duration time.Duration) error
	RunFailed(ctx context.Context, runID, stage, reason string) error
}

// Summary reports what a completed run wrote.
type Summary struct {
	RunID            string
	Counts           map[string]int
	Duration         time.Duration
	ShipmentsPresent bool
}

// Pipeline executes the five load stages in order against a single scoped
// store handle. It is single-threaded: no stage starts until the previous
// stage's writes and mapping re-reads are done. Writes are not wrapped in a
// run-spanning transaction, so an abort leaves earlier stages' rows
// committed; re-run strategy is the operator's concern.
type Pipeline struct {
	store   Store
	extract config.ExtractConfig
	events  EventPublisher
	logger  *zap.Logger
}

// New creates a pipeline over an already-open store handle. events may be nil.
func New(store Store, extract config.ExtractConfig, events EventPublisher) *Pipeline {
	return &Pipeline{
		store:   store,
		extract: extract,
		events:  events,
		logger:  util.GetLogger(),
	}
}

// Run executes every present stage and returns a summary, or the first fatal
// error. A later stage never runs after an earlier one fails.
func (p *Pipeline) Run(ctx context.Context) (*Summary, error) {
	runID := uuid.New().String()
	start := time.Now()
	counts := make(map[string]int, 5)

	p.logger.Info("Starting ETL run",
		zap.String("run_id", runID),
		zap.String("data_dir", p.extract.DataDir))

	n, err := p.runStage(ctx, runID, StageCustomers, func(ctx context.Context) (int, error) {
		return p.loadCustomers(ctx)
	})
	if err != nil {
		return nil, p.fail(ctx, runID, StageCustomers, err)
	}
	counts[StageCustomers] = n

	n, err = p.runStage(ctx, runID, StageProducts, func(ctx context.Context) (int, error) {
		return p.loadProducts(ctx)
	})
	if err != nil {
		return nil, p.fail(ctx, runID, StageProducts, err)
	}
	counts[StageProducts] = n

	var orderIDs map[string]int64
	n, err = p.runStage(ctx, runID, StageOrders, func(ctx context.Context) (int, error) {
		var n int
		var err error
		n, orderIDs, err = p.loadOrders(ctx)
		return n, err
	})
	if err != nil {
		return nil, p.fail(ctx, runID, StageOrders, err)
	}
	counts[StageOrders] = n

	n, err = p.runStage(ctx, runID, StageOrderItems, func(ctx context.Context) (int, error) {
		return p.loadOrderItems(ctx, orderIDs)
	})
	if err != nil {
		return nil, p.fail(ctx, runID, StageOrderItems, err)
	}
	counts[StageOrderItems] = n

	var shipmentsPresent bool
	n, err = p.runStage(ctx, runID, StageShipments, func(ctx context.Context) (int, error) {
		var n int
		var err error
		n, shipmentsPresent, err = p.loadShipments(ctx, orderIDs)
		return n, err
	})
	if err != nil {
		return nil, p.fail(ctx, runID, StageShipments, err)
	}
	counts[StageShipments] = n

	summary := &Summary{
		RunID:            runID,
		Counts:           counts,
		Duration:         time.Since(start),
		ShipmentsPresent: shipmentsPresent,
	}

	util.RunsTotal.WithLabelValues("success").Inc()
	p.logger.Info("ETL run completed",
		zap.String("run_id", runID),
		zap.Any("row_counts", counts),
		zap.Duration("duration", summary.Duration))

	if p.events != nil {
		if err := p.events.RunCompleted(ctx, runID, counts, summary.Duration); err != nil {
			p.logger.Warn("Failed to publish run completion", zap.Error(err))
		}
	}
	return summary, nil
}

func (p *Pipeline) runStage(ctx context.Context, runID, stage string, load func(context.Context) (int, error)) (int, error) {
	ctx, span := util.StartSpan(ctx, "pipeline.load_"+stage)
	defer span.End()

	start := time.Now()
	n, err := load(ctx)
	util.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
	if err != nil {
		return 0, err
	}

	if p.events != nil {
		if pubErr := p.events.StageCompleted(ctx, runID, stage, stage, n); pubErr != nil {
			p.logger.Warn("Failed to publish stage completion",
				zap.String("stage", stage), zap.Error(pubErr))
		}
	}
	return n, nil
}

func (p *Pipeline) fail(ctx context.Context, runID, stage string, err error) error {
	util.RunsTotal.WithLabelValues("failed").Inc()
	p.logger.Error("ETL run aborted",
		zap.String("run_id", runID),
		zap.String("stage", stage),
		zap.Error(err))
	if p.events != nil {
		if pubErr := p.events.RunFailed(ctx, runID, stage, err.Error()); pubErr != nil {
			p.logger.Warn("Failed to publish run failure", zap.Error(pubErr))
		}
	}
	return err
}
