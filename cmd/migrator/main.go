package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/JonMunkholm/sqlmigrate/internal/config"
	"github.com/JonMunkholm/sqlmigrate/internal/core"
	"github.com/JonMunkholm/sqlmigrate/internal/logging"
	"github.com/joho/godotenv"
	_ "github.com/microsoft/go-mssqldb"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"db_max_open_conns", cfg.Database.MaxOpenConns,
		"job_worker_pool_size", cfg.Job.WorkerPoolSize,
	)

	rootFolder := flag.String("root-folder", "", "folder to scan for CSV files (submits a new job)")
	reprocessJob := flag.String("reprocess-job", "", "job id to fully reprocess")
	reprocessFile := flag.String("reprocess-file", "", "file id to reprocess; requires -reprocess-job")
	flag.Parse()

	openDB := func(connectionString string) (*sql.DB, error) {
		db, err := sql.Open("sqlserver", connectionString)
		if err != nil {
			return nil, err
		}
		db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
		db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
		db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)
		return db, nil
	}

	controlDB, err := openDB(cfg.Database.URL)
	if err != nil {
		slog.Error("failed to open database connection", "error", err)
		os.Exit(1)
	}
	defer controlDB.Close()

	ctx := context.Background()
	if err := controlDB.PingContext(ctx); err != nil {
		slog.Error("failed to ping database", "error", err)
		os.Exit(1)
	}
	slog.Info("connected to destination database")

	repo := core.NewRepository(controlDB)
	if err := repo.InitializeSchema(ctx); err != nil {
		slog.Error("failed to initialize control tables", "error", err)
		os.Exit(1)
	}

	orchestrator := core.NewOrchestrator(repo, cfg.Job.WorkerPoolSize, cfg.Job.BatchSize, cfg.Job.SampleSize, slog.Default())
	queue := core.NewJobQueue(orchestrator, openDB, cfg.Job.QueueCapacity, slog.Default())
	service := core.NewService(repo, orchestrator, queue, openDB)

	queueCtx, cancelQueue := context.WithCancel(context.Background())
	go queue.Run(queueCtx)

	switch {
	case *reprocessFile != "" && *reprocessJob != "":
		newJobID, err := service.SubmitReprocessFile(ctx, *reprocessJob, *reprocessFile)
		if err != nil {
			slog.Error("failed to submit file reprocess", "error", err)
			os.Exit(1)
		}
		slog.Info("submitted file reprocess", "jobId", newJobID)
	case *reprocessJob != "":
		newJobID, err := service.SubmitReprocessJob(ctx, *reprocessJob)
		if err != nil {
			slog.Error("failed to submit job reprocess", "error", err)
			os.Exit(1)
		}
		slog.Info("submitted job reprocess", "jobId", newJobID)
	case *rootFolder != "":
		jobID, err := service.SubmitJob(ctx, *rootFolder, cfg.Database.URL)
		if err != nil {
			slog.Error("failed to submit job", "error", err)
			os.Exit(1)
		}
		slog.Info("submitted job", "jobId", jobID)
	default:
		slog.Error("one of -root-folder, -reprocess-job, or -reprocess-file is required")
		flag.Usage()
		os.Exit(1)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	slog.Info("shutting down...")
	cancelQueue()
	queue.WaitForShutdown()

	drainCtx, cancelDrain := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelDrain()
	if err := orchestrator.Drain(drainCtx); err != nil {
		slog.Warn("shutdown: file workers did not drain in time", "error", err)
	}
}
