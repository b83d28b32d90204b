package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	_ "github.com/lib/pq"

	"SecurityNewsScanner/internal/classifier"
	"SecurityNewsScanner/internal/config"
	"SecurityNewsScanner/internal/dedup"
	"SecurityNewsScanner/internal/domain"
	"SecurityNewsScanner/internal/fetcher"
	"SecurityNewsScanner/internal/infrastructure/llm"
	"SecurityNewsScanner/internal/infrastructure/ml"
	"SecurityNewsScanner/internal/infrastructure/parser"
	"SecurityNewsScanner/internal/infrastructure/scheduler"
	"SecurityNewsScanner/internal/infrastructure/storage"
	"SecurityNewsScanner/internal/infrastructure/store"
	"SecurityNewsScanner/internal/infrastructure/telegram"
	"SecurityNewsScanner/internal/logging"
	"SecurityNewsScanner/internal/metrics"
	"SecurityNewsScanner/internal/ports"
	"SecurityNewsScanner/internal/retry"
	"SecurityNewsScanner/internal/scanner"
	"SecurityNewsScanner/internal/summarize"
	"SecurityNewsScanner/internal/usecase"
)

const shutdownTimeout = 30 * time.Second

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg        config.Config
	logger     *slog.Logger
	store      ports.ArticleStore
	db         *sql.DB
	parser     *parser.HTMLParser
	classifier ports.Classifier
	summarizer ports.Summarizer
	notifier   *telegram.Notifier
	metrics    *metrics.Recorder
}

// New validates cfg and builds the long-lived collaborators shared by every run.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	taxonomy := cfg.Taxonomy
	if len(taxonomy) == 0 {
		taxonomy = classifier.DefaultTaxonomy()
	}
	kw, err := classifier.New(taxonomy)
	if err != nil {
		return nil, fmt.Errorf("taxonomy: %w", err)
	}

	htmlParser, err := parser.NewFromSite(scanner.NewRegistry(), cfg.Site, baseLogger.With("component", "parser"))
	if err != nil {
		return nil, err
	}

	a := &Application{
		cfg:        cfg,
		logger:     baseLogger,
		parser:     htmlParser,
		classifier: kw,
		summarizer: newSummarizer(cfg, baseLogger),
		notifier:   telegram.NewNotifier(cfg.Notifications.Telegram.BotToken, cfg.Notifications.Telegram.ChatID),
	}
	if cfg.Metrics.Textfile != "" {
		a.metrics = metrics.NewRecorder()
	}

	if err := a.openStore(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

func newSummarizer(cfg config.Config, logger *slog.Logger) ports.Summarizer {
	switch {
	case cfg.ML.InferenceURL != "":
		logger.Info("summarizer selected", "kind", "inference", "endpoint", cfg.ML.InferenceURL)
		return ml.NewClient(cfg.ML.InferenceURL, cfg.ML.APIKey, &http.Client{Timeout: cfg.Run.RequestTimeout.Duration})
	case cfg.ChatGPT.APIKey != "":
		logger.Info("summarizer selected", "kind", "chatgpt", "model", cfg.ChatGPT.Model)
		return llm.NewChatGPTClient(cfg.ChatGPT)
	default:
		logger.Info("summarizer selected", "kind", "lead")
		return summarize.Lead{}
	}
}

func (a *Application) retryPolicy() retry.Policy {
	return retry.Policy{
		MaxAttempts: a.cfg.Run.MaxRetries,
		Backoff:     retry.Constant(a.cfg.Run.RetryDelay.Duration),
	}
}

func (a *Application) openStore(ctx context.Context) error {
	if a.cfg.Database.DSN == "" {
		a.store = store.NewHTTPStore(
			a.cfg.Store.URL,
			&http.Client{Timeout: a.cfg.Store.Timeout.Duration},
			a.retryPolicy(),
		)
		a.logger.Info("article store selected", "kind", "http", "url", a.cfg.Store.URL)
		return nil
	}

	db, err := sql.Open("postgres", a.cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("ping database: %w", err)
	}

	repo := storage.NewPostgresRepository(db, a.cfg.Database.Table)
	if err := repo.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return err
	}
	a.db = db
	a.store = repo
	a.logger.Info("article store selected", "kind", "postgres", "table", a.cfg.Database.Table)
	return nil
}

// Close releases the database pool when one was opened.
func (a *Application) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

// Run performs one complete crawl and publishes its digest and metrics.
// Every run starts from a fresh title set seeded from the store.
func (a *Application) Run(ctx context.Context) (*domain.Report, error) {
	started := time.Now()
	run := a.cfg.Run

	fetch := fetcher.New(fetcher.Options{
		UserAgent: run.UserAgent,
		Timeout:   run.RequestTimeout.Duration,
		Retry:     a.retryPolicy(),
	}, a.logger.With("component", "fetcher"))

	titles := dedup.NewTitleSet()

	extractor := usecase.NewExtractor(usecase.ExtractorDeps{
		Fetcher:    fetch,
		Parser:     a.parser,
		Classifier: a.classifier,
		Summarizer: a.summarizer,
		Bounds: usecase.SummaryBounds{
			MaxInput:  run.MaxSummaryInput,
			MinLength: run.MinSummaryLength,
			MaxLength: run.MaxSummaryLength,
		},
		Source: a.cfg.SourceID(),
		Logger: a.logger.With("component", "extractor"),
	})

	batch, err := usecase.NewBatchRunner(usecase.BatchDeps{
		Extractor: extractor,
		Submitter: usecase.NewPersister(a.store, titles, a.logger.With("component", "persister")),
		Titles:    titles,
		Size:      run.BatchSize,
		Delay:     run.InterBatchDelay.Duration,
		Logger:    a.logger.With("component", "batch"),
	})
	if err != nil {
		return nil, err
	}

	crawler, err := usecase.NewCrawler(usecase.CrawlOptions{
		StartURL:       run.StartURL,
		MaxPages:       run.MaxPages,
		InterPageDelay: run.InterPageDelay.Duration,
	}, usecase.CrawlerDeps{
		Fetcher: fetch,
		Parser:  a.parser,
		Store:   a.store,
		Titles:  titles,
		Batch:   batch,
		Logger:  a.logger.With("component", "crawler"),
	})
	if err != nil {
		return nil, err
	}

	report, runErr := crawler.Run(ctx)
	a.publish(report, started)
	return report, runErr
}

func (a *Application) publish(report *domain.Report, started time.Time) {
	if a.metrics != nil {
		a.metrics.Observe(report, started, time.Now())
		if err := a.metrics.WriteTextfile(a.cfg.Metrics.Textfile); err != nil {
			a.logger.Warn("metrics not written", "error", err)
		}
	}

	if !a.notifier.Enabled() {
		return
	}
	digest := usecase.BuildDigest(report)
	if digest == "" {
		return
	}
	// The run context may already be cancelled; the digest still goes out.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.notifier.PublishDigest(ctx, digest); err != nil {
		a.logger.Warn("digest not delivered", "error", err)
	}
}

// Schedule runs the crawl on the configured cron expression until ctx is cancelled.
func (a *Application) Schedule(ctx context.Context) error {
	driver, err := scheduler.NewCronScheduler(
		a.cfg.Scheduler.CronExpression,
		a.cfg.Scheduler.Location(),
		a.logger.With("component", "cron"),
	)
	if err != nil {
		return err
	}

	sched := usecase.NewScheduler(driver, func(runCtx context.Context) error {
		_, err := a.Run(runCtx)
		return err
	}, a.logger.With("component", "scheduler"))

	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := sched.Stop(stopCtx); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			a.logger.Warn("running crawl did not finish before shutdown")
			return nil
		}
		return fmt.Errorf("stop scheduler: %w", err)
	}
	a.logger.Info("scheduler stopped")
	return nil
}
