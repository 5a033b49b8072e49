package config

import (
	"fmt"
	"time"

	"github.com/RishiKendai/eduscore/internal/configs/env"
	"github.com/RishiKendai/eduscore/internal/plagiarism"
)

// Config holds all configuration for the application
type Config struct {
	// MongoDB
	MongoURI    string
	MongoDBName string

	// Redis
	RedisHost               string
	RedisPassword           string
	RedisDB                 int
	RedisStreamKey          string
	RedisConsumerGroup      string
	RedisDeadLetterKey      string
	StreamRetentionDuration time.Duration
	StreamMaxRetries        int

	// Plagiarism
	PlagiarismThreshold     float64
	PlagiarismNumPerm       int
	PlagiarismShingleLength int
	PlagiarismSeed          int64

	// LanguageTool
	LanguageToolURL      string
	LanguageToolTimeout  time.Duration
	LanguageToolLanguage string

	// JWT
	JWTSecret string
	JWTIssuer string

	// Rate Limiting
	RateLimitRPS float64

	// Concurrency
	MaxConcurrentEvaluations int
	WarmupConcurrency        int

	// Evaluation
	EvaluationTimeout time.Duration
	ReportCacheSize   int

	// Logging
	LogLevel  string
	LogFormat string

	// Server
	ServerPort  string
	MetricsPort string
}

func Load() (*Config, error) {
	cfg := &Config{}

	// MongoDB
	cfg.MongoURI = env.GetEnv("MONGO_URI", "")
	cfg.MongoDBName = env.GetEnv("MONGO_DB_NAME", "")

	// Redis
	cfg.RedisHost = env.GetEnv("REDIS_HOST", "localhost:6379")
	cfg.RedisPassword = env.GetEnv("REDIS_PASSWORD", "")
	cfg.RedisDB = env.GetEnvInt("REDIS_DB", 0)
	cfg.RedisStreamKey = env.GetEnv("REDIS_STREAM_KEY", "documents:stream")
	cfg.RedisConsumerGroup = env.GetEnv("REDIS_CONSUMER_GROUP", "documents:group")
	cfg.RedisDeadLetterKey = env.GetEnv("REDIS_DEAD_LETTER_KEY", "documents:dlq")
	retentionHours := env.GetEnvInt("STREAM_RETENTION_DURATION", 24)
	cfg.StreamRetentionDuration = time.Duration(retentionHours) * time.Hour
	cfg.StreamMaxRetries = env.GetEnvInt("STREAM_MAX_RETRIES", 3)

	// Plagiarism
	cfg.PlagiarismThreshold = env.GetEnvFloat("PLAGIARISM_THRESHOLD", plagiarism.DefaultThreshold)
	cfg.PlagiarismNumPerm = env.GetEnvInt("PLAGIARISM_NUM_PERM", plagiarism.DefaultNumPerm)
	cfg.PlagiarismShingleLength = env.GetEnvInt("PLAGIARISM_SHINGLE_LENGTH", plagiarism.DefaultShingleLength)
	cfg.PlagiarismSeed = env.GetEnvInt64("PLAGIARISM_SEED", 1)

	// LanguageTool
	cfg.LanguageToolURL = env.GetEnv("LANGUAGETOOL_URL", "http://localhost:8081")
	ltTimeout := env.GetEnvInt("LANGUAGETOOL_TIMEOUT_SECONDS", 30)
	cfg.LanguageToolTimeout = time.Duration(ltTimeout) * time.Second
	cfg.LanguageToolLanguage = env.GetEnv("LANGUAGETOOL_LANGUAGE", "en-US")

	// JWT
	cfg.JWTSecret = env.GetEnv("JWT_SECRET", "")
	cfg.JWTIssuer = env.GetEnv("JWT_ISSUER", "eduscore")

	// Rate Limiting
	cfg.RateLimitRPS = env.GetEnvFloat("RATE_LIMIT_RPS", 10.0)

	// Concurrency
	cfg.MaxConcurrentEvaluations = env.GetEnvInt("MAX_CONCURRENT_EVALUATIONS", 5)
	cfg.WarmupConcurrency = env.GetEnvInt("WARMUP_CONCURRENCY", 8)

	// Evaluation
	timeoutMinutes := env.GetEnvInt("EVALUATION_TIMEOUT_MINUTES", 5)
	cfg.EvaluationTimeout = time.Duration(timeoutMinutes) * time.Minute
	cfg.ReportCacheSize = env.GetEnvInt("REPORT_CACHE_SIZE", 1024)

	// Logging
	cfg.LogLevel = env.GetEnv("LOG_LEVEL", "info")
	cfg.LogFormat = env.GetEnv("LOG_FORMAT", "json")

	// Server
	cfg.ServerPort = env.GetEnv("SERVER_PORT", "8080")
	cfg.MetricsPort = env.GetEnv("METRICS_PORT", "2112")

	return cfg, nil
}

// Plagiarism returns the detector configuration derived from the environment.
func (c *Config) Plagiarism() plagiarism.Config {
	return plagiarism.Config{
		Threshold:     c.PlagiarismThreshold,
		NumPerm:       c.PlagiarismNumPerm,
		ShingleLength: c.PlagiarismShingleLength,
		Seed:          c.PlagiarismSeed,
	}
}

func (c *Config) Validate() error {
	if c.MongoURI == "" {
		return fmt.Errorf("MONGO_URI is required")
	}
	if c.MongoDBName == "" {
		return fmt.Errorf("MONGO_DB_NAME is required")
	}
	if c.RedisHost == "" {
		return fmt.Errorf("REDIS_HOST is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.LanguageToolURL == "" {
		return fmt.Errorf("LANGUAGETOOL_URL is required")
	}
	if err := c.Plagiarism().Validate(); err != nil {
		return fmt.Errorf("invalid plagiarism settings: %w", err)
	}
	if c.MaxConcurrentEvaluations <= 0 {
		return fmt.Errorf("MAX_CONCURRENT_EVALUATIONS must be greater than 0")
	}
	if c.WarmupConcurrency <= 0 {
		return fmt.Errorf("WARMUP_CONCURRENCY must be greater than 0")
	}
	if c.ReportCacheSize <= 0 {
		return fmt.Errorf("REPORT_CACHE_SIZE must be greater than 0")
	}
	if c.StreamRetentionDuration <= 0 {
		return fmt.Errorf("STREAM_RETENTION_DURATION must be greater than 0")
	}
	if c.StreamMaxRetries < 0 {
		return fmt.Errorf("STREAM_MAX_RETRIES must not be negative")
	}
	return nil
}
