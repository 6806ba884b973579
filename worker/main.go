package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/DeafMist/ai-news-dashboard/internal/backend"
	"github.com/DeafMist/ai-news-dashboard/internal/config"
	"github.com/DeafMist/ai-news-dashboard/internal/dedupe"
	"github.com/DeafMist/ai-news-dashboard/internal/elasticsearch"
	"github.com/DeafMist/ai-news-dashboard/internal/logger"
	"github.com/DeafMist/ai-news-dashboard/internal/models"
)

const eventPostMirrored = "post.mirrored"

type postSource interface {
	Posts(ctx context.Context) ([]models.Post, error)
}

type postIndexer interface {
	IndexPost(ctx context.Context, doc elasticsearch.PostDocument) error
}

type eventWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// mirroredEvent announces that a post is searchable in the mirror.
type mirroredEvent struct {
	EventID   string    `json:"event_id"`
	Type      string    `json:"type"`
	Key       string    `json:"key"`
	Source    string    `json:"source"`
	Platform  string    `json:"platform"`
	Title     string    `json:"title"`
	URL       string    `json:"url,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type syncer struct {
	log      *slog.Logger
	source   postSource
	index    postIndexer
	events   eventWriter
	cache    *dedupe.Cache
	rule     elasticsearch.KeywordRule
	attempts int
	backoff  time.Duration
	now      func() time.Time
	newID    func() string
}

func main() {
	log := logger.New("worker")
	cfg, err := config.LoadWorker()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	esClient, err := elasticsearch.Connect(ctx, cfg.ElasticsearchAddr, cfg.ElasticsearchIndex, log, elasticsearch.DefaultBackoff)
	if err != nil {
		if ctx.Err() != nil {
			log.Info("shutdown signal received during startup")
			return
		}
		log.Error("connect elasticsearch", slog.Any("err", err))
		os.Exit(1)
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		MaxAttempts:  3,
	}
	defer writer.Close()

	s := &syncer{
		log:      log,
		source:   backend.New(cfg.URL, cfg.Timeout, backend.WithLogger(log)),
		index:    esClient,
		events:   writer,
		cache:    dedupe.NewCache(cfg.DedupeCapacity, cfg.DedupeTTL),
		rule:     elasticsearch.KeywordRule{Limit: cfg.KeywordLimit, MinLength: cfg.KeywordMinLength},
		attempts: 5,
		backoff:  time.Second,
		now:      time.Now,
		newID:    uuid.NewString,
	}

	log.Info("worker started",
		slog.String("backend", cfg.URL),
		slog.String("topic", cfg.KafkaTopic),
		slog.Duration("interval", cfg.SyncInterval),
	)

	s.run(ctx, cfg.SyncInterval)
}

func (s *syncer) run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := s.syncOnce(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				s.log.Info("context canceled, stopping")
				return
			}
			s.log.Warn("sync failed (will retry on next interval)", slog.Any("err", err))
		}

		select {
		case <-ctx.Done():
			s.log.Info("shutdown signal received")
			return
		case <-ticker.C:
		}
	}
}

// syncOnce mirrors every post not seen within the dedupe TTL and returns how
// many were mirrored.
func (s *syncer) syncOnce(ctx context.Context) (int, error) {
	posts, err := s.source.Posts(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetch posts: %w", err)
	}

	mirrored := 0
	for _, p := range posts {
		ok, err := s.processPost(ctx, p)
		if err != nil {
			if ctx.Err() != nil {
				return mirrored, ctx.Err()
			}
			s.log.Warn("mirror post failed", slog.String("url", p.URL), slog.Any("err", err))
			continue
		}
		if ok {
			mirrored++
		}
	}

	if mirrored > 0 {
		s.log.Info("sync completed",
			slog.Int("mirrored", mirrored),
			slog.Int("fetched", len(posts)),
			slog.Int("tracked", s.cache.Len()),
		)
	} else {
		s.log.Debug("sync completed, nothing new", slog.Int("fetched", len(posts)), slog.Int("tracked", s.cache.Len()))
	}
	return mirrored, nil
}

// processPost reports whether p was newly mirrored. The key is marked seen
// only after the event is published, so a failed publish is retried on the
// next sync.
func (s *syncer) processPost(ctx context.Context, p models.Post) (bool, error) {
	key, err := p.Key()
	if err != nil {
		s.log.Warn("skipping post without identity", slog.String("title", p.Title))
		return false, nil
	}
	if s.cache.IsSeen(key) {
		s.log.Debug("duplicate post", slog.String("key", key))
		return false, nil
	}

	doc, err := elasticsearch.NewPostDocument(p, s.rule, s.now().UTC())
	if err != nil {
		return false, err
	}
	if err := s.index.IndexPost(ctx, doc); err != nil {
		return false, err
	}

	ev := mirroredEvent{
		EventID:   s.newID(),
		Type:      eventPostMirrored,
		Key:       doc.ID,
		Source:    doc.Source,
		Platform:  doc.Platform,
		Title:     doc.Title,
		URL:       doc.URL,
		Timestamp: doc.Timestamp,
	}
	if err := s.publish(ctx, ev); err != nil {
		return false, err
	}

	s.cache.MarkSeen(key)
	s.log.Info("mirrored post", slog.String("key", key), slog.String("title", doc.Title))
	return true, nil
}

func (s *syncer) publish(ctx context.Context, ev mirroredEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(ev.Key),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(ev.Type)},
			{Key: "event_id", Value: []byte(ev.EventID)},
		},
	}

	var lastErr error
	for attempt := range s.attempts {
		if lastErr = s.events.WriteMessages(ctx, msg); lastErr == nil {
			return nil
		}
		if attempt == s.attempts-1 {
			break
		}
		backoff := s.backoff * time.Duration(1<<uint(attempt))
		s.log.Warn("event write failed, retrying",
			slog.Any("err", lastErr),
			slog.Int("attempt", attempt+1),
			slog.Duration("backoff", backoff),
		)
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return fmt.Errorf("publish %s after %d attempts: %w", ev.Key, s.attempts, lastErr)
}
