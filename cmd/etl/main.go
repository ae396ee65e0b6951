package main

import (
	"context"
	"log"
	"os"
	"time"

	"sales-etl/config"
	"sales-etl/internal/broker"
	"sales-etl/internal/pipeline"
	"sales-etl/internal/redisclient"
	"sales-etl/internal/store"
	"sales-etl/internal/util"

	"go.uber.org/zap"
)

func main() {
	// run owns all deferred cleanup; os.Exit must happen outside it so the
	// store handle is released on every exit path, aborts included.
	os.Exit(run())
}

func run() int {
	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Printf("Failed to initialize logger: %v", err)
		return 1
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting sales ETL")

	tp, err := util.InitTracer("sales-etl", cfg.Observ.JaegerEndpoint)
	if err != nil {
		logger.Error("Failed to initialize tracer", zap.Error(err))
		return 1
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			logger.Warn("Error shutting down tracer", zap.Error(err))
		}
	}()

	ctx := context.Background()

	if cfg.Redis.RunLockEnabled {
		redisClient, err := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Error("Failed to connect to Redis", zap.Error(err))
			return 1
		}
		defer redisClient.Close()

		ttl := time.Duration(cfg.Redis.RunLockTTLSecs) * time.Second
		acquired, err := redisClient.AcquireRunLock(ctx, ttl)
		if err != nil {
			logger.Error("Failed to acquire run lock", zap.Error(err))
			return 1
		}
		if !acquired {
			logger.Error("Another ETL run holds the lock, refusing to start")
			return 1
		}
		defer func() {
			if err := redisClient.ReleaseRunLock(ctx); err != nil {
				logger.Warn("Failed to release run lock", zap.Error(err))
			}
		}()
	}

	db, err := store.NewStore(cfg.Database.URL)
	if err != nil {
		logger.Error("Failed to connect to database", zap.Error(err))
		return 1
	}
	defer db.Close()
	logger.Info("Database connected")

	var events pipeline.EventPublisher
	if cfg.Kafka.Enabled {
		producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicLoads)
		defer producer.Close()
		events = broker.NewLoadEventPublisher(producer)
		logger.Info("Kafka producer initialized")
	}

	p := pipeline.New(db, cfg.Extract, events)
	summary, err := p.Run(ctx)
	if err != nil {
		// Committed stages stay committed: there is no run-spanning
		// transaction, so a failed run leaves a partially-loaded store.
		logger.Error("ETL aborted; earlier stages remain committed", zap.Error(err))
		return 1
	}

	logger.Info("ETL completed successfully",
		zap.String("run_id", summary.RunID),
		zap.Any("row_counts", summary.Counts),
		zap.Duration("duration", summary.Duration))
	return 0
}
