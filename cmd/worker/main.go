package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/Aireenelz/rag-employee-learning-system/internal/cache"
	"github.com/Aireenelz/rag-employee-learning-system/internal/config"
	"github.com/Aireenelz/rag-employee-learning-system/internal/database"
	"github.com/Aireenelz/rag-employee-learning-system/internal/document"
	"github.com/Aireenelz/rag-employee-learning-system/internal/embedding"
	"github.com/Aireenelz/rag-employee-learning-system/internal/llm"
	"github.com/Aireenelz/rag-employee-learning-system/internal/queue"
	"github.com/Aireenelz/rag-employee-learning-system/internal/queue/workers"
	"github.com/Aireenelz/rag-employee-learning-system/internal/rag"
	"github.com/Aireenelz/rag-employee-learning-system/internal/storage"
	"github.com/Aireenelz/rag-employee-learning-system/internal/vectorstore"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	db, err := database.NewPool(ctx, cfg.Database)
	if err != nil {
		slog.Error("database unavailable", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	store := storage.NewSupabaseStorage(cfg.Storage.SupabaseURL, cfg.Storage.SupabaseKey)
	meta := document.NewPostgresStore(db)
	vs := vectorstore.NewPgVectorStore(db)
	gateway := llm.NewGateway(cfg.LLM)
	embedSvc := embedding.NewService(gateway, cfg.LLM.EmbeddingModel)
	docSvc := document.NewService(meta, store, vs, embedSvc, cfg.Storage.Bucket, cfg.Ingest).
		WithCacheInvalidation(cache.NewCache(rdb), rag.ResultCachePrefix)

	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}

	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: 10,
		Queues: map[string]int{
			"critical": 6,
			"default":  3,
			"low":      1,
		},
	})

	registry := queue.NewHandlersRegistry()

	maintenance := workers.NewMaintenanceWorker(docSvc, vs)
	registry.Register(queue.TypeChunkResync, asynq.HandlerFunc(maintenance.HandleChunkResync))
	registry.Register(queue.TypeOrphanSweep, asynq.HandlerFunc(maintenance.HandleOrphanSweep))

	// Hourly orphan sweep. Rollbacks only best-effort clean the index, so
	// the sweep is what guarantees orphaned chunks eventually disappear.
	client := queue.NewClient(cfg.Redis)
	defer client.Close()
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			if err := client.EnqueueOrphanSweep(); err != nil {
				slog.Error("failed to enqueue orphan sweep", "error", err)
			}
		}
	}()

	slog.Info("starting worker", "concurrency", 10)
	if err := srv.Run(registry.Mux()); err != nil {
		slog.Error("worker error", "error", err)
		os.Exit(1)
	}
}
