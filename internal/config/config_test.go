package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/DeafMist/ai-news-dashboard/internal/config"
	"github.com/DeafMist/ai-news-dashboard/internal/personalize"
)

func TestLoadWorkerDefaults(t *testing.T) {
	t.Setenv("ELASTICSEARCH_ADDR", "")
	t.Setenv("ELASTICSEARCH_INDEX", "")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("KAFKA_TOPIC", "")
	t.Setenv("BACKEND_URL", "")

	cfg, err := config.LoadWorker()
	require.NoError(t, err)

	require.Equal(t, "http://elasticsearch:9200", cfg.ElasticsearchAddr)
	require.Equal(t, "posts", cfg.ElasticsearchIndex)
	require.Equal(t, []string{"kafka:9092"}, cfg.KafkaBrokers)
	require.Equal(t, "posts_mirrored", cfg.KafkaTopic)
	require.Equal(t, "http://localhost:8081/api", cfg.URL)
	require.Equal(t, 10*time.Second, cfg.Timeout)
	require.Equal(t, 5*time.Minute, cfg.SyncInterval)
}

func TestLoadWorkerOverrides(t *testing.T) {
	t.Setenv("ELASTICSEARCH_ADDR", "http://localhost:9999")
	t.Setenv("ELASTICSEARCH_INDEX", "custom")
	t.Setenv("KAFKA_BROKERS", "broker-a:29092, broker-b:29093")
	t.Setenv("KAFKA_TOPIC", "custom_topic")
	t.Setenv("BACKEND_URL", "https://news.internal/api/")
	t.Setenv("BACKEND_TIMEOUT", "3s")
	t.Setenv("WORKER_SYNC_INTERVAL", "30s")
	t.Setenv("WORKER_KEYWORD_LIMIT", "12")
	t.Setenv("WORKER_KEYWORD_MIN_LEN", "5")
	t.Setenv("WORKER_DEDUPE_CAPACITY", "5")
	t.Setenv("WORKER_DEDUPE_TTL", "48h")

	cfg, err := config.LoadWorker()
	require.NoError(t, err)

	require.Equal(t, "http://localhost:9999", cfg.ElasticsearchAddr)
	require.Equal(t, "custom", cfg.ElasticsearchIndex)
	require.Equal(t, []string{"broker-a:29092", "broker-b:29093"}, cfg.KafkaBrokers)
	require.Equal(t, "custom_topic", cfg.KafkaTopic)
	require.Equal(t, "https://news.internal/api", cfg.URL)
	require.Equal(t, 3*time.Second, cfg.Timeout)
	require.Equal(t, 30*time.Second, cfg.SyncInterval)
	require.Equal(t, 12, cfg.KeywordLimit)
	require.Equal(t, 5, cfg.KeywordMinLength)
	require.Equal(t, 5, cfg.DedupeCapacity)
	require.Equal(t, 48*time.Hour, cfg.DedupeTTL)
}

func TestLoadWorkerRejectsBadBackendURL(t *testing.T) {
	t.Setenv("BACKEND_URL", "localhost:8081")
	_, err := config.LoadWorker()
	require.ErrorContains(t, err, "BACKEND_URL")
}

func TestLoadAPI(t *testing.T) {
	t.Setenv("API_BIND_ADDR", ":9090")
	t.Setenv("API_PAGE_SIZE", "15")
	t.Setenv("API_MAX_PAGE_SIZE", "200")
	t.Setenv("ELASTICSEARCH_ADDR", "http://api-es:9200")
	t.Setenv("ELASTICSEARCH_INDEX", "api-index")
	t.Setenv("BACKEND_SAMPLE_FALLBACK", "true")

	cfg, err := config.LoadAPI()
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.BindAddr)
	require.Equal(t, 15, cfg.DefaultPage)
	require.Equal(t, 200, cfg.MaxPage)
	require.Equal(t, "http://api-es:9200", cfg.ElasticsearchAddr)
	require.Equal(t, "api-index", cfg.ElasticsearchIndex)
	require.True(t, cfg.SampleFallback)
	require.Equal(t, personalize.DefaultWeights, cfg.Scoring)
}

func TestLoadAPIRejectsPageAboveMax(t *testing.T) {
	t.Setenv("API_PAGE_SIZE", "50")
	t.Setenv("API_MAX_PAGE_SIZE", "10")
	_, err := config.LoadAPI()
	require.Error(t, err)
}

func TestLoadScoringOverrides(t *testing.T) {
	t.Setenv("SCORE_BASE", "0")
	t.Setenv("SCORE_TOPIC_BONUS", "4")
	t.Setenv("SCORE_SOURCE_BONUS", "6")
	t.Setenv("SCORE_MAX", "10")

	cfg, err := config.LoadDashboard()
	require.NoError(t, err)
	require.Equal(t, personalize.Weights{Base: 0, TopicBonus: 4, SourceBonus: 6, Max: 10}, cfg.Scoring)

	t.Setenv("SCORE_MAX", "-1")
	_, err = config.LoadDashboard()
	require.ErrorContains(t, err, "SCORE_")
}

func TestLoadDashboard(t *testing.T) {
	t.Setenv("DASHBOARD_PAGE_SIZE", "7")
	t.Setenv("DASHBOARD_LOG_FILE", "/tmp/dash.log")
	t.Setenv("BACKEND_CACHE_PATH", "/tmp/dash.db")

	cfg, err := config.LoadDashboard()
	require.NoError(t, err)
	require.Equal(t, 7, cfg.PageSize)
	require.Equal(t, 10, cfg.PersonalizedStep)
	require.Equal(t, "/tmp/dash.log", cfg.LogFile)
	require.Equal(t, "/tmp/dash.db", cfg.CachePath)

	t.Setenv("DASHBOARD_PAGE_SIZE", "0")
	_, err = config.LoadDashboard()
	require.Error(t, err)
}

func TestLoadRetention(t *testing.T) {
	t.Setenv("ELASTICSEARCH_ADDR", "http://ret-es:9200")
	t.Setenv("ELASTICSEARCH_INDEX", "ret-index")
	t.Setenv("RETENTION_CRON", "12h")
	t.Setenv("RETENTION_MAX_AGE", "36h")
	t.Setenv("RETENTION_BATCH_SIZE", "123")

	cfg, err := config.LoadRetention()
	require.NoError(t, err)

	require.Equal(t, 12*time.Hour, cfg.Interval)
	require.Equal(t, 36*time.Hour, cfg.MaxAge)
	require.Equal(t, 123, cfg.BatchSize)
	require.Equal(t, "http://ret-es:9200", cfg.ElasticsearchAddr)
	require.Equal(t, "ret-index", cfg.ElasticsearchIndex)
}
