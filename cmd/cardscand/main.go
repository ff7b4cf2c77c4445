package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/joseph-ayodele/b2breeze/internal/app"
	"github.com/joseph-ayodele/b2breeze/internal/async"
	"github.com/joseph-ayodele/b2breeze/internal/common"
	"github.com/joseph-ayodele/b2breeze/internal/ingest"
	"github.com/joseph-ayodele/b2breeze/internal/pipeline"
	"github.com/joseph-ayodele/b2breeze/internal/server"
)

func main() {
	configPath := flag.String("config", "", "optional YAML config file")
	flag.Parse()

	// .env is optional; real env vars win
	_ = godotenv.Load()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(2)
	}
	logger := common.NewLogger(os.Stdout, cfg.Log)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("cardscand exited", "error", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*common.Config, error) {
	cfg := common.LoadConfig()
	if path != "" {
		var err error
		if cfg, err = common.LoadConfigFile(path); err != nil {
			return nil, err
		}
	}
	return cfg, cfg.Validate()
}

func run(cfg *common.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	queue := async.NewProcessorQueue(a.Processor, logger,
		async.WithWorkers(cfg.Ingest.Workers),
		async.WithQueueSize(cfg.Ingest.QueueSize),
		async.WithProcessTimeout(cfg.Ingest.JobTimeout),
		async.WithTelemetry(a.Telemetry),
		async.WithResultFunc(func(job async.Job, out pipeline.Outcome, err error) {
			if err == nil && out.NeedsReview {
				logger.Info("scan.needs_review", "file_id", job.FileID, "job_id", out.JobID, "contact_id", out.ContactID)
			}
		}),
	)

	grpcServer, healthServer := server.New(server.Services{
		Contacts: server.NewContactsService(a.Contacts, logger),
		Scan:     server.NewScanService(a.Ingestor, queue, a.Processor, a.Jobs, a.Contacts, logger),
		Export:   server.NewExportService(a.Export, logger),
	}, logger)

	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		return err
	}
	go func() {
		logger.Info("cardscand listening", "addr", cfg.Server.GRPCAddr)
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("gRPC serve error", "error", err)
			stop()
		}
	}()

	var metricsServer *http.Server
	if cfg.Server.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", a.Telemetry.Handler())
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
			if err := a.DB.HealthCheck(r.Context(), 2*time.Second); err != nil {
				http.Error(w, err.Error(), http.StatusServiceUnavailable)
				return
			}
			_, _ = w.Write([]byte("ok"))
		})
		metricsServer = &http.Server{Addr: cfg.Server.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			logger.Info("metrics listening", "addr", cfg.Server.MetricsAddr)
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics serve error", "error", err)
			}
		}()
	}

	if cfg.Ingest.InboxDir != "" {
		if err := watchInbox(ctx, cfg, a.Ingestor, queue, logger); err != nil {
			return err
		}
	}

	<-ctx.Done()
	logger.Info("shutting down")
	healthServer.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	grpcServer.GracefulStop()
	if metricsServer != nil {
		_ = metricsServer.Shutdown(shutdownCtx)
	}
	if err := queue.Shutdown(shutdownCtx); err != nil {
		logger.Warn("queue shutdown incomplete", "error", err)
	}
	return nil
}

// watchInbox ingests files dropped into the inbox and hands them to the queue.
func watchInbox(ctx context.Context, cfg *common.Config, ing ingest.Ingestor, queue async.Queue, logger *slog.Logger) error {
	if err := os.MkdirAll(cfg.Ingest.InboxDir, 0o755); err != nil {
		return err
	}
	events, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Roots:       []string{cfg.Ingest.InboxDir},
		InitialScan: true,
		SkipHidden:  true,
		Debounce:    cfg.Ingest.Debounce,
		Logger:      logger,
	})
	if err != nil {
		return err
	}
	logger.Info("inbox watcher started", "dir", cfg.Ingest.InboxDir)

	go func() {
		for {
			select {
			case path, ok := <-events:
				if !ok {
					return
				}
				r, err := ing.IngestPath(ctx, path)
				if err != nil {
					logger.Warn("inbox.ingest.failed", "path", path, "error", err)
					continue
				}
				if r.Deduplicated {
					logger.Info("inbox.duplicate", "path", path, "file_id", r.FileID)
					continue
				}
				if err := queue.Enqueue(ctx, async.Job{FileID: r.FileID}); err != nil {
					logger.Warn("inbox.enqueue.failed", "file_id", r.FileID, "error", err)
				}
			case err, ok := <-errs:
				if !ok {
					errs = nil
					continue
				}
				logger.Warn("inbox.watch.error", "error", err)
			}
		}
	}()
	return nil
}
