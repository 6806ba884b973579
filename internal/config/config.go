package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/DeafMist/ai-news-dashboard/internal/personalize"
)

// Common contains Elasticsearch parameters shared by the mirror services.
type Common struct {
	ElasticsearchAddr  string
	ElasticsearchIndex string
}

// Backend describes how to reach the external news backend.
type Backend struct {
	URL            string
	Timeout        time.Duration
	CachePath      string
	SampleFallback bool
}

// API describes HTTP-layer configuration.
type API struct {
	Common
	Backend
	Scoring     personalize.Weights
	BindAddr    string
	DefaultPage int
	MaxPage     int
}

// Worker holds configuration for the backend -> Elasticsearch/Kafka sync.
type Worker struct {
	Common
	Backend
	KafkaBrokers     []string
	KafkaTopic       string
	SyncInterval     time.Duration
	KeywordLimit     int
	KeywordMinLength int
	DedupeCapacity   int
	DedupeTTL        time.Duration
}

// Retention configures the cleanup loop.
type Retention struct {
	Common
	Interval  time.Duration
	MaxAge    time.Duration
	BatchSize int
}

// Dashboard configures the terminal client.
type Dashboard struct {
	Backend
	Scoring          personalize.Weights
	PageSize         int
	PersonalizedStep int
	LogFile          string
}

// LoadAPI builds an API config from environment variables.
func LoadAPI() (*API, error) {
	backend, err := loadBackend()
	if err != nil {
		return nil, err
	}
	scoring, err := loadScoring()
	if err != nil {
		return nil, err
	}

	c := &API{
		Common:      loadCommon(),
		Backend:     backend,
		Scoring:     scoring,
		BindAddr:    getEnv("API_BIND_ADDR", "0.0.0.0:8080"),
		DefaultPage: getInt("API_PAGE_SIZE", 20),
		MaxPage:     getInt("API_MAX_PAGE_SIZE", 100),
	}

	if c.DefaultPage <= 0 {
		return nil, fmt.Errorf("API_PAGE_SIZE must be positive")
	}
	if c.MaxPage <= 0 {
		return nil, fmt.Errorf("API_MAX_PAGE_SIZE must be positive")
	}
	if c.DefaultPage > c.MaxPage {
		return nil, fmt.Errorf("API_PAGE_SIZE cannot exceed API_MAX_PAGE_SIZE")
	}

	return c, nil
}

// LoadWorker builds a Worker config from environment variables.
func LoadWorker() (*Worker, error) {
	backend, err := loadBackend()
	if err != nil {
		return nil, err
	}

	c := &Worker{
		Common:           loadCommon(),
		Backend:          backend,
		KafkaBrokers:     splitAndTrim(getEnv("KAFKA_BROKERS", "kafka:9092")),
		KafkaTopic:       getEnv("KAFKA_TOPIC", "posts_mirrored"),
		SyncInterval:     getDuration("WORKER_SYNC_INTERVAL", "5m"),
		KeywordLimit:     getInt("WORKER_KEYWORD_LIMIT", 8),
		KeywordMinLength: getInt("WORKER_KEYWORD_MIN_LEN", 4),
		DedupeCapacity:   getInt("WORKER_DEDUPE_CAPACITY", 20000),
		DedupeTTL:        getDuration("WORKER_DEDUPE_TTL", "24h"),
	}

	if len(c.KafkaBrokers) == 0 {
		return nil, fmt.Errorf("KAFKA_BROKERS must contain at least one broker")
	}
	if c.SyncInterval <= 0 {
		return nil, fmt.Errorf("WORKER_SYNC_INTERVAL must be positive")
	}
	if c.DedupeCapacity <= 0 {
		return nil, fmt.Errorf("WORKER_DEDUPE_CAPACITY must be positive")
	}
	if c.KeywordLimit <= 0 {
		return nil, fmt.Errorf("WORKER_KEYWORD_LIMIT must be positive")
	}
	if c.KeywordMinLength < 0 {
		return nil, fmt.Errorf("WORKER_KEYWORD_MIN_LEN cannot be negative")
	}

	return c, nil
}

// LoadRetention builds a Retention config from environment variables.
func LoadRetention() (*Retention, error) {
	c := &Retention{
		Common:    loadCommon(),
		Interval:  getDuration("RETENTION_CRON", "24h"),
		MaxAge:    getDuration("RETENTION_MAX_AGE", "720h"),
		BatchSize: getInt("RETENTION_BATCH_SIZE", 500),
	}

	if c.MaxAge <= 0 {
		return nil, fmt.Errorf("RETENTION_MAX_AGE must be positive")
	}
	if c.Interval <= 0 {
		return nil, fmt.Errorf("RETENTION_CRON must be positive")
	}
	if c.BatchSize <= 0 {
		return nil, fmt.Errorf("RETENTION_BATCH_SIZE must be positive")
	}

	return c, nil
}

// LoadDashboard builds a Dashboard config from environment variables.
func LoadDashboard() (*Dashboard, error) {
	backend, err := loadBackend()
	if err != nil {
		return nil, err
	}
	scoring, err := loadScoring()
	if err != nil {
		return nil, err
	}

	c := &Dashboard{
		Backend:          backend,
		Scoring:          scoring,
		PageSize:         getInt("DASHBOARD_PAGE_SIZE", 20),
		PersonalizedStep: getInt("DASHBOARD_PERSONALIZED_STEP", 10),
		LogFile:          getEnv("DASHBOARD_LOG_FILE", ""),
	}

	if c.PageSize <= 0 {
		return nil, fmt.Errorf("DASHBOARD_PAGE_SIZE must be positive")
	}
	if c.PersonalizedStep <= 0 {
		return nil, fmt.Errorf("DASHBOARD_PERSONALIZED_STEP must be positive")
	}

	return c, nil
}

func loadCommon() Common {
	return Common{
		ElasticsearchAddr:  getEnv("ELASTICSEARCH_ADDR", "http://elasticsearch:9200"),
		ElasticsearchIndex: getEnv("ELASTICSEARCH_INDEX", "posts"),
	}
}

func loadBackend() (Backend, error) {
	b := Backend{
		URL:            strings.TrimRight(getEnv("BACKEND_URL", "http://localhost:8081/api"), "/"),
		Timeout:        getDuration("BACKEND_TIMEOUT", "10s"),
		CachePath:      getEnv("BACKEND_CACHE_PATH", ""),
		SampleFallback: getBool("BACKEND_SAMPLE_FALLBACK", false),
	}
	if !strings.HasPrefix(b.URL, "http://") && !strings.HasPrefix(b.URL, "https://") {
		return Backend{}, fmt.Errorf("BACKEND_URL must be an http(s) URL")
	}
	if b.Timeout <= 0 {
		return Backend{}, fmt.Errorf("BACKEND_TIMEOUT must be positive")
	}
	return b, nil
}

func loadScoring() (personalize.Weights, error) {
	d := personalize.DefaultWeights
	w := personalize.Weights{
		Base:        getInt("SCORE_BASE", d.Base),
		TopicBonus:  getInt("SCORE_TOPIC_BONUS", d.TopicBonus),
		SourceBonus: getInt("SCORE_SOURCE_BONUS", d.SourceBonus),
		Max:         getInt("SCORE_MAX", d.Max),
	}
	if err := w.Validate(); err != nil {
		return personalize.Weights{}, fmt.Errorf("SCORE_* settings: %w", err)
	}
	return w, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key, fallback string) time.Duration {
	raw := getEnv(key, fallback)
	d, err := time.ParseDuration(raw)
	if err != nil {
		fd, ferr := time.ParseDuration(fallback)
		if ferr != nil {
			panic(fmt.Sprintf("invalid fallback duration %q: %v", fallback, ferr))
		}
		return fd
	}
	return d
}

func splitAndTrim(raw string) []string {
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
