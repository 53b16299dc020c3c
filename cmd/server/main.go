package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/eurkai/prospecting/internal/aiclient"
	"github.com/eurkai/prospecting/internal/api"
	"github.com/eurkai/prospecting/internal/assets"
	"github.com/eurkai/prospecting/internal/config"
	"github.com/eurkai/prospecting/internal/deliverables"
	"github.com/eurkai/prospecting/internal/repository"
	"github.com/eurkai/prospecting/internal/repository/postgres"
	"github.com/eurkai/prospecting/internal/runner"
	"github.com/eurkai/prospecting/internal/scheduler"
	"github.com/eurkai/prospecting/internal/scoring"
)

// checkPortAvailable verifies that the target port is not already in use.
func checkPortAvailable(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("address %s is already in use: %v", addr, err)
	}
	ln.Close()
	return nil
}

func main() {
	log.Println("[Server] EURKAI prospect pipeline starting")

	cfg, err := config.LoadFromEnv("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	addr := cfg.Server.Addr()
	if err := checkPortAvailable(addr); err != nil {
		log.Fatalf("Pre-flight check FAILED: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Backing store: PostgreSQL when configured, embedded snapshot otherwise.
	var store repository.Store
	var db *sql.DB
	if cfg.Storage.DatabaseURL != "" {
		pgStore, err := postgres.Open(ctx, cfg.Storage.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to open PostgreSQL store: %v", err)
		}
		defer pgStore.Close()
		store = pgStore
		db = pgStore.DB()
		log.Println("[Server] store: postgresql")
	} else {
		if err := os.MkdirAll(filepath.Dir(cfg.Storage.SnapshotPath), 0o755); err != nil {
			log.Fatalf("Failed to create data dir: %v", err)
		}
		store = repository.NewMemoryStore(cfg.Storage.SnapshotPath)
		log.Printf("[Server] store: embedded (snapshot %s)", cfg.Storage.SnapshotPath)
	}

	// Optional redis for sweep locks and landing-page caching.
	var redisClient *redis.Client
	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			redisClient = redis.NewClient(&redis.Options{Addr: cfg.Redis.URL})
		} else {
			redisClient = redis.NewClient(opts)
		}
		pingCtx, pingCancel := context.WithTimeout(ctx, 3*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			log.Printf("[Server] redis unreachable, sweep lock degrades: %v", err)
		}
		pingCancel()
	}

	registry := aiclient.NewRegistry()
	active := registry.ActiveModels(false)
	log.Printf("[Server] active AI models: %v (dry-run always has all three)", active)

	testRunner := runner.New(store, registry, redisClient, db)
	testRunner.SetStaleAfter(cfg.Runner.StaleAfter())

	scoringSvc := scoring.NewService(store)
	assetSvc := assets.NewService(store)

	var archiver deliverables.Archiver
	if cfg.Deliverable.S3Bucket != "" {
		s3Archiver, err := deliverables.NewS3Archiver(ctx, cfg.Deliverable.S3Bucket, cfg.Deliverable.S3Prefix)
		if err != nil {
			log.Fatalf("Failed to init S3 archiver: %v", err)
		}
		archiver = s3Archiver
	}
	deliverSvc := deliverables.New(store, cfg.Deliverable.OutputDir, cfg.Deliverable.BaseURL,
		cfg.Deliverable.SenderSignature, archiver)

	sched, err := scheduler.New(cfg.Scheduler.Timezone)
	if err != nil {
		log.Fatalf("Failed to init scheduler: %v", err)
	}
	scheduler.RegisterPipelineJobs(sched, store, testRunner, assetSvc)
	if cfg.Scheduler.Enabled {
		sched.Start()
	}

	server := api.NewServer(store, registry, testRunner, scoringSvc, assetSvc,
		deliverSvc, sched, redisClient, cfg.Admin.Token)

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("[Server] listening on %s", addr)
		if err := server.ListenAndServe(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-done
	log.Println("[Server] shutting down...")

	cancel()
	sched.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	if redisClient != nil {
		redisClient.Close()
	}

	log.Println("[Server] stopped")
}
