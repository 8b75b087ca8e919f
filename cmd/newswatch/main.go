package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/go-pkgz/lgr"
	"github.com/jessevdk/go-flags"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"golang.org/x/sync/errgroup"

	"github.com/umputun/newswatch/pkg/broker"
	"github.com/umputun/newswatch/pkg/config"
	"github.com/umputun/newswatch/pkg/content"
	"github.com/umputun/newswatch/pkg/domain"
	"github.com/umputun/newswatch/pkg/llm"
	"github.com/umputun/newswatch/pkg/notify"
	"github.com/umputun/newswatch/pkg/repository"
	"github.com/umputun/newswatch/pkg/scheduler"
	"github.com/umputun/newswatch/pkg/source"
	"github.com/umputun/newswatch/server"
)

// Opts with all CLI options
type Opts struct {
	Config string   `short:"c" long:"config" env:"CONFIG" default:"config.yml" description:"configuration file"`
	Roles  []string `short:"r" long:"role" env:"ROLE" env-delim:"," default:"all" choice:"all" choice:"scheduler" choice:"filter" choice:"refiner" choice:"dispatcher" choice:"server" description:"worker role, repeat for several"`

	// Common options
	Debug   bool `long:"dbg" env:"DEBUG" description:"debug mode"`
	Version bool `short:"V" long:"version" description:"show version info"`
	NoColor bool `long:"no-color" env:"NO_COLOR" description:"disable color output"`
}

// pipeline roles, "all" runs every one of them in a single process
const (
	roleScheduler  = "scheduler"
	roleFilter     = "filter"
	roleRefiner    = "refiner"
	roleDispatcher = "dispatcher"
	roleServer     = "server"
	roleAll        = "all"
)

var allRoles = []string{roleScheduler, roleFilter, roleRefiner, roleDispatcher, roleServer}

// consecutive failed pings before the store is considered lost
const storeFailures = 3

var revision = "unknown"

func main() {
	var opts Opts
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if opts.Version {
		fmt.Printf("Version: %s\nGolang: %s\n", revision, runtime.Version())
		os.Exit(0)
	}

	setupLog(opts.Debug, opts.NoColor)
	lgr.Printf("[INFO] starting newswatch version %s", revision)

	ctx, cancel := context.WithCancel(context.Background())

	// handle termination signals
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		lgr.Print("[INFO] termination signal received")
		cancel()
	}()

	err := run(ctx, opts)
	cancel()
	if err != nil {
		lgr.Printf("[ERROR] %v", err)
		os.Exit(1)
	}
	lgr.Print("[INFO] shutdown complete")
}

// run wires the requested roles and blocks until ctx is canceled or a role fails for good
func run(ctx context.Context, opts Opts) error {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.LLM.APIKey != "" {
		setupLog(opts.Debug, opts.NoColor, cfg.LLM.APIKey)
	}

	roles, err := parseRoles(opts.Roles)
	if err != nil {
		return err
	}
	lgr.Printf("[INFO] roles: %s", strings.Join(roles, ","))

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	repos, err := repository.NewRepositories(ctx, repository.Config{
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Database.ConnMaxLifetime) * time.Second,
	})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer repos.Close()

	bc, err := broker.Connect(broker.Config{
		URL:             cfg.Broker.URL,
		Name:            "newswatch-" + strings.Join(roles, "-"),
		Prefix:          cfg.Broker.Prefix,
		AckWait:         cfg.Broker.AckWait,
		MaxDeliver:      cfg.Broker.MaxDeliver,
		NakDelay:        cfg.Broker.NakDelay,
		DuplicateWindow: cfg.Broker.DuplicateWindow,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to broker: %w", err)
	}
	defer bc.Close()

	if err := bc.EnsureQueues(ctx); err != nil {
		return fmt.Errorf("failed to create queues: %w", err)
	}

	sources := newSourceRegistry(cfg)
	var llmClient *llm.Client
	if slices.Contains(roles, roleFilter) || slices.Contains(roles, roleRefiner) {
		llmClient = llm.NewClient(cfg.LLM)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return watchStore(gctx, repos, 10*time.Second) })

	for _, role := range roles {
		switch role {
		case roleScheduler:
			s := scheduler.NewScrapeScheduler(scheduler.ScrapeParams{
				Tasks:        repos.Task,
				Ledger:       repos.Dedup,
				Fetcher:      sources,
				Enricher:     sources,
				Publisher:    bc,
				Interval:     cfg.Scheduler.Interval,
				FetchTimeout: cfg.Scheduler.FetchTimeout,
				FetchLimit:   cfg.Scheduler.FetchLimit,
				MaxWorkers:   cfg.Scheduler.MaxWorkers,
			})
			g.Go(func() error { return s.Run(gctx) })

		case roleFilter:
			f := scheduler.NewRelevanceFilter(scheduler.FilterParams{
				Tasks:      repos.Task,
				Judge:      llmClient,
				Publisher:  bc,
				Retry:      retryConfig(cfg.Filter.Retry),
				SubjectLen: cfg.Filter.SubjectLength,
			})
			g.Go(func() error {
				return broker.Consume[domain.ContentItem](gctx, bc, domain.QueueRawContent, cfg.Filter.Workers, f.Handle)
			})

		case roleRefiner:
			r := scheduler.NewFeedbackRefiner(scheduler.RefinerParams{
				Tasks:            repos.Task,
				Refiner:          llmClient,
				Publisher:        bc,
				Retry:            retryConfig(cfg.Refiner.Retry),
				MaxLen:           cfg.Refiner.MaxCriterionLength,
				SkipConfirmation: cfg.Refiner.SkipConfirmation,
			})
			g.Go(func() error {
				return broker.Consume[domain.FeedbackEvent](gctx, bc, domain.QueueFeedback, cfg.Refiner.Workers, r.Handle)
			})

		case roleDispatcher:
			d := scheduler.NewDispatcher(newDeliverer(cfg, opts.Debug))
			g.Go(func() error {
				return broker.Consume[domain.Notification](gctx, bc, domain.QueueFilteredContent, cfg.Dispatcher.Workers, d.Handle)
			})

		case roleServer:
			srv := server.New(cfg, server.NewRepositoryAdapter(repos), bc, sources, revision, opts.Debug)
			g.Go(func() error { return srv.Run(gctx) })
		}
	}

	return g.Wait()
}

// parseRoles expands "all" and removes duplicates, keeping the canonical order
func parseRoles(in []string) ([]string, error) {
	if len(in) == 0 {
		return allRoles, nil
	}
	want := map[string]bool{}
	for _, r := range in {
		for _, v := range strings.Split(r, ",") {
			v = strings.TrimSpace(strings.ToLower(v))
			switch {
			case v == roleAll:
				return allRoles, nil
			case slices.Contains(allRoles, v):
				want[v] = true
			default:
				return nil, fmt.Errorf("unknown role %q", v)
			}
		}
	}
	res := make([]string, 0, len(want))
	for _, r := range allRoles {
		if want[r] {
			res = append(res, r)
		}
	}
	return res, nil
}

func newSourceRegistry(cfg *config.Config) *source.Registry {
	reg := source.NewRegistry(cfg.Sources.MaxExcerpt)
	reg.Register(domain.SourceRSS, source.NewRSSFetcher(cfg.Scheduler.FetchTimeout, cfg.Sources.UserAgent, cfg.Sources.MaxExcerpt))
	reg.Register(domain.SourceReddit, source.NewRedditFetcher(source.RedditConfig{
		BaseURL:         cfg.Sources.Reddit.BaseURL,
		UserAgent:       cfg.Sources.UserAgent,
		Timeout:         cfg.Scheduler.FetchTimeout,
		RateLimit:       cfg.Sources.Reddit.RateLimit,
		MaxExcerptRunes: cfg.Sources.MaxExcerpt,
	}))
	if cfg.Sources.Extraction.Enabled {
		extractor := content.NewHTTPExtractor(cfg.Sources.Extraction.Timeout, cfg.Sources.UserAgent, cfg.Sources.MaxExcerpt)
		reg.WithEnricher(extractor, cfg.Sources.Extraction.Timeout)
	}
	return reg
}

func newDeliverer(cfg *config.Config, dbg bool) scheduler.Deliverer {
	if cfg.Dispatcher.Channel == "webhook" {
		lgr.Printf("[INFO] delivering notifications to webhook %s", cfg.Dispatcher.Webhook.URL)
		return notify.NewWebhookDeliverer(cfg.Dispatcher.Webhook.URL, cfg.Dispatcher.Webhook.Timeout, cfg.Dispatcher.Webhook.Headers)
	}
	return &notify.LogDeliverer{ShowBody: dbg}
}

func retryConfig(r config.RetryConfig) scheduler.RetryConfig {
	return scheduler.RetryConfig{Attempts: r.Attempts, Delay: r.Delay, MaxDelay: r.MaxDelay}
}

// watchStore pings the database and fails once it stays unreachable for several checks in a row
func watchStore(ctx context.Context, db interface{ Ping(context.Context) error }, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	failures := 0
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
		if err := db.Ping(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			failures++
			lgr.Printf("[WARN] database ping failed (%d/%d): %v", failures, storeFailures, err)
			if failures >= storeFailures {
				return fmt.Errorf("database lost: %w: %w", domain.ErrStoreUnavailable, err)
			}
			continue
		}
		failures = 0
	}
}

func setupLog(dbg, noColor bool, secs ...string) {
	logOpts := []lgr.Option{lgr.Msec, lgr.LevelBraces}
	if dbg {
		logOpts = []lgr.Option{lgr.Debug, lgr.CallerFile, lgr.CallerFunc, lgr.Msec, lgr.LevelBraces, lgr.StackTraceOnError}
	}

	if !noColor {
		colorizer := lgr.Mapper{
			ErrorFunc:  func(s string) string { return color.New(color.FgHiRed).Sprint(s) },
			WarnFunc:   func(s string) string { return color.New(color.FgRed).Sprint(s) },
			InfoFunc:   func(s string) string { return color.New(color.FgYellow).Sprint(s) },
			DebugFunc:  func(s string) string { return color.New(color.FgWhite).Sprint(s) },
			CallerFunc: func(s string) string { return color.New(color.FgBlue).Sprint(s) },
			TimeFunc:   func(s string) string { return color.New(color.FgCyan).Sprint(s) },
		}
		logOpts = append(logOpts, lgr.Map(colorizer))
	}
	if len(secs) > 0 {
		logOpts = append(logOpts, lgr.Secret(secs...))
	}
	lgr.SetupStdLogger(logOpts...)
	lgr.Setup(logOpts...)
}
