package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/DeafMist/ai-news-dashboard/internal/backend"
	"github.com/DeafMist/ai-news-dashboard/internal/config"
	"github.com/DeafMist/ai-news-dashboard/internal/localcache"
	"github.com/DeafMist/ai-news-dashboard/internal/logger"
	"github.com/DeafMist/ai-news-dashboard/internal/models"
	"github.com/DeafMist/ai-news-dashboard/internal/personalize"
	"github.com/DeafMist/ai-news-dashboard/internal/tui"
)

// newsClient is everything the dashboard asks of the backend.
type newsClient interface {
	tui.Backend
	SavePreferences(ctx context.Context, prefs models.Preferences) error
	Notes(ctx context.Context) ([]models.Note, error)
	Note(ctx context.Context, id int64) (models.Note, error)
	CreateNote(ctx context.Context, in models.NoteInput) (models.Note, error)
	UpdateNote(ctx context.Context, id int64, in models.NoteInput) (models.Note, error)
	DeleteNote(ctx context.Context, id int64) error
	RSSSources(ctx context.Context) ([]models.RSSSource, error)
	RSSRuns(ctx context.Context) ([]models.RSSRun, error)
	TriggerScrape(ctx context.Context) (string, error)
	Summarize(ctx context.Context, req models.SummaryRequest) (string, error)
	Health(ctx context.Context) error
}

// app holds what the commands share. Tests fill client and scorer directly.
type app struct {
	cfg     *config.Dashboard
	client  newsClient
	scorer  *personalize.Scorer
	log     *slog.Logger
	closers []func() error
}

func main() {
	a := &app{}
	err := newRootCmd(a).Execute()
	a.close()
	if err != nil {
		os.Exit(1)
	}
}

// setup wires config, logging, the local cache and the backend client.
func (a *app) setup() error {
	if a.client != nil {
		return nil
	}

	cfg, err := config.LoadDashboard()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	a.cfg = cfg

	log, closeLog, err := logger.NewFile("dashboard", cfg.LogFile)
	if err != nil {
		return err
	}
	a.log = log
	a.closers = append(a.closers, closeLog)

	opts := []backend.Option{
		backend.WithLogger(log),
		backend.WithSampleFallback(cfg.SampleFallback),
	}
	if cfg.CachePath != "" {
		store, err := localcache.Open(cfg.CachePath)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, store.Close)
		opts = append(opts, backend.WithCache(store))
	}
	a.client = backend.New(cfg.URL, cfg.Timeout, opts...)

	scorer, err := personalize.New(cfg.Scoring, log)
	if err != nil {
		return err
	}
	a.scorer = scorer

	log.Info("dashboard started", slog.String("backend", cfg.URL))
	return nil
}

func (a *app) logger() *slog.Logger {
	if a.log == nil {
		a.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return a.log
}

func (a *app) pageSize() int {
	if a.cfg == nil {
		return 20
	}
	return a.cfg.PageSize
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		_ = a.closers[i]()
	}
	a.closers = nil
}
