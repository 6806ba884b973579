package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/DeafMist/ai-news-dashboard/internal/backend"
	"github.com/DeafMist/ai-news-dashboard/internal/config"
	"github.com/DeafMist/ai-news-dashboard/internal/elasticsearch"
	"github.com/DeafMist/ai-news-dashboard/internal/feed"
	"github.com/DeafMist/ai-news-dashboard/internal/localcache"
	"github.com/DeafMist/ai-news-dashboard/internal/logger"
	"github.com/DeafMist/ai-news-dashboard/internal/models"
	"github.com/DeafMist/ai-news-dashboard/internal/personalize"
)

type newsBackend interface {
	Posts(ctx context.Context) ([]models.Post, error)
	Preferences(ctx context.Context) (models.Preferences, error)
	Health(ctx context.Context) error
}

type postSearcher interface {
	SearchPosts(ctx context.Context, params elasticsearch.SearchParams) (*elasticsearch.SearchResult, error)
}

func main() {
	log := logger.New("api")
	cfg, err := config.LoadAPI()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	opts := []backend.Option{
		backend.WithLogger(log),
		backend.WithSampleFallback(cfg.SampleFallback),
	}
	if cfg.CachePath != "" {
		store, err := localcache.Open(cfg.CachePath)
		if err != nil {
			log.Error("open local cache", slog.Any("err", err))
			os.Exit(1)
		}
		defer store.Close()
		opts = append(opts, backend.WithCache(store))
	}

	esClient, err := elasticsearch.New(cfg.ElasticsearchAddr, cfg.ElasticsearchIndex, log)
	if err != nil {
		log.Error("init elasticsearch", slog.Any("err", err))
		os.Exit(1)
	}

	scorer, err := personalize.New(cfg.Scoring, log)
	if err != nil {
		log.Error("init scorer", slog.Any("err", err))
		os.Exit(1)
	}

	srv := &server{
		log:     log,
		cfg:     cfg,
		backend: backend.New(cfg.URL, cfg.Timeout, opts...),
		search:  esClient,
		scorer:  scorer,
		now:     time.Now,
	}

	httpServer := &http.Server{
		Addr:              cfg.BindAddr,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	go func() {
		log.Info("api server starting", slog.String("addr", cfg.BindAddr), slog.String("backend", cfg.URL))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", slog.Any("err", err))
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", slog.Any("err", err))
	}
}

type server struct {
	log     *slog.Logger
	cfg     *config.API
	backend newsBackend
	search  postSearcher
	scorer  *personalize.Scorer
	now     func() time.Time
}

type errorResponse struct {
	Error string `json:"error"`
}

type feedResponse struct {
	feed.Page
	Sources []feed.SourceOption `json:"sources"`
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Get("/feed", s.handleFeed)
	r.Get("/feed/sources", s.handleSources)
	r.Get("/personalized", s.handlePersonalized)
	r.Get("/recent", s.handleRecent)
	r.Get("/search", s.handleSearch)
	return r
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.backend.Health(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handleFeed(w http.ResponseWriter, r *http.Request) {
	posts, ok := s.fetchPosts(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	platform := strings.TrimSpace(q.Get("platform"))
	page, err := feed.Paginate(posts, feed.Query{
		Platform: platform,
		Sources:  parseCSV(q.Get("sources")),
		Page:     parsePage(q.Get("page")),
		PageSize: clampInt(q.Get("size"), s.cfg.DefaultPage, s.cfg.MaxPage),
	})
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, feedResponse{
		Page:    page,
		Sources: feed.AvailableSources(posts, platform),
	})
}

func (s *server) handleSources(w http.ResponseWriter, r *http.Request) {
	posts, ok := s.fetchPosts(w, r)
	if !ok {
		return
	}
	platform := strings.TrimSpace(r.URL.Query().Get("platform"))
	writeJSON(w, http.StatusOK, feed.AvailableSources(posts, platform))
}

func (s *server) handlePersonalized(w http.ResponseWriter, r *http.Request) {
	posts, ok := s.fetchPosts(w, r)
	if !ok {
		return
	}

	prefs, err := s.backend.Preferences(r.Context())
	if err != nil {
		s.log.Warn("preferences unavailable, scoring without them", slog.Any("err", err))
	}

	scored := s.scorer.Score(posts, prefs.PreferredCategories, prefs.PreferredSources)
	limit := clampInt(r.URL.Query().Get("limit"), s.cfg.DefaultPage, s.cfg.MaxPage)
	if len(scored) > limit {
		scored = scored[:limit]
	}
	writeJSON(w, http.StatusOK, scored)
}

func (s *server) handleRecent(w http.ResponseWriter, r *http.Request) {
	posts, ok := s.fetchPosts(w, r)
	if !ok {
		return
	}
	limit := clampInt(r.URL.Query().Get("limit"), s.cfg.DefaultPage, s.cfg.MaxPage)
	writeJSON(w, http.StatusOK, feed.Recent(posts, s.now(), limit))
}

func (s *server) handleSearch(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	q := r.URL.Query()
	params := elasticsearch.SearchParams{
		Query:    strings.TrimSpace(q.Get("q")),
		Tags:     parseCSV(q.Get("tags")),
		Source:   strings.TrimSpace(q.Get("source")),
		Platform: strings.TrimSpace(q.Get("platform")),
		From:     clampInt(q.Get("from"), 0, 10_000),
		Size:     clampInt(q.Get("size"), s.cfg.DefaultPage, s.cfg.MaxPage),
		Sort:     strings.TrimSpace(q.Get("sort")),
		Start:    parseTime(q.Get("start")),
		End:      parseTime(q.Get("end")),
	}

	result, err := s.search.SearchPosts(ctx, params)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *server) fetchPosts(w http.ResponseWriter, r *http.Request) ([]models.Post, bool) {
	posts, err := s.backend.Posts(r.Context())
	if err != nil {
		s.log.Error("fetch posts", slog.Any("err", err))
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error()})
		return nil, false
	}
	return posts, true
}

func parseTime(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return &ts
	}
	return nil
}

func parseCSV(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// parsePage defaults to the first page; other out-of-range pages are passed
// through and yield an empty page.
func parsePage(raw string) int {
	page, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 1
	}
	return page
}

func clampInt(raw string, fallback, max int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	if value > max {
		return max
	}
	return value
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
