package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"support-pipeline-go/internal/classifier"
	"support-pipeline-go/internal/config"
	"support-pipeline-go/internal/credentials"
	"support-pipeline-go/internal/database"
	"support-pipeline-go/internal/handler"
	"support-pipeline-go/internal/mailsource"
	"support-pipeline-go/internal/metrics"
	"support-pipeline-go/internal/notifier"
	"support-pipeline-go/internal/pipeline"
	"support-pipeline-go/internal/recordstore"
	"support-pipeline-go/internal/repository"
	"support-pipeline-go/internal/scheduler"
	"support-pipeline-go/internal/server"
)

// Run initializes and starts the application
func Run() error {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetLevel(logrus.InfoLevel)

	logrus.Info("Starting Support Pipeline Service")

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	var db *gorm.DB
	var repo *repository.Repository
	if cfg.Database.Enabled() {
		db, err = database.Init(cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		repo = repository.New(db)
	} else {
		logrus.Info("No database configured, run history and deduplication disabled")
	}

	m := metrics.NewMetrics()

	var fetcher mailsource.Fetcher
	if cfg.Gmail.Configured() {
		if cfg.Gmail.UseIMAP {
			fetcher, err = mailsource.NewIMAPFetcher(&cfg.Gmail)
			if err != nil {
				return fmt.Errorf("failed to create IMAP fetcher: %w", err)
			}
			logrus.Info("Using IMAP for email fetching")
		} else {
			tokenStore := credentials.NewFileStore(cfg.Gmail.TokenFile)
			fetcher, err = mailsource.NewGmailFetcher(&cfg.Gmail, tokenStore)
			if err != nil {
				return fmt.Errorf("failed to create Gmail fetcher: %w", err)
			}
			logrus.Info("Using Gmail API for email fetching")
		}
	} else {
		logrus.Warn("Mailbox access not configured, fetch and pipeline endpoints disabled")
	}

	clf := classifier.NewOpenAIClassifier(&cfg.OpenAI)
	if cfg.OpenAI.APIKey == "" {
		logrus.Warn("No model API key configured, classifier runs in fallback mode")
	}

	store := recordstore.NewNotionStore(&cfg.Notion)
	if !store.Configured() {
		logrus.Warn("Record store not configured, appends will be skipped")
	}

	ntf := notifier.NewSlackNotifier(&cfg.Slack)

	var runner *pipeline.Runner
	var sched *scheduler.Scheduler
	if fetcher != nil {
		// A nil *Repository must stay a nil interface inside the runner.
		var bk pipeline.Bookkeeper
		if repo != nil {
			bk = repo
		}
		runner = pipeline.New(fetcher, clf, store, ntf, bk, m, cfg.Pipeline.Dedup)

		if cfg.Scheduler.Enabled {
			sched = scheduler.NewScheduler(&cfg.Scheduler, cfg.Pipeline.HoursBack, runner)
			if err := sched.Start(); err != nil {
				return fmt.Errorf("failed to start scheduler: %w", err)
			}
		}
	}

	h := handler.New(fetcher, clf, store, ntf, runner, sched, repo, db, cfg.Pipeline.HoursBack)
	router := server.SetupRouter(h)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logrus.Infof("Starting HTTP server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("HTTP server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if sched != nil {
		if err := sched.Stop(); err != nil {
			logrus.Errorf("Failed to stop scheduler: %v", err)
		}
		sched.Wait()
	}

	if err := srv.Shutdown(ctx); err != nil {
		logrus.Errorf("HTTP server shutdown error: %v", err)
	}

	if fetcher != nil {
		if err := fetcher.Close(); err != nil {
			logrus.Errorf("Failed to close fetcher: %v", err)
		}
	}

	logrus.Info("Server stopped gracefully")
	return nil
}
