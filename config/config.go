package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Sentiment backends
const (
	BackendVader = "vader"
	BackendHugot = "hugot"
	BackendHTTP  = "http"
)

// Store backends
const (
	StoreFile   = "file"
	StoreValkey = "valkey"
	StoreMemory = "memory"
)

// Config holds all application configuration
type Config struct {
	Environment string
	LogLevel    string
	DataDir     string
	HTTPTimeout time.Duration
	StoreKind   string
	JobStore    string

	Server    ServerConfig
	Reddit    RedditConfig
	Apify     ApifyConfig
	News      NewsConfig
	Sentiment SentimentConfig
	Valkey    ValkeyConfig
	DynamoDB  DynamoDBConfig
	Kafka     KafkaConfig
	Limits    LimitsConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	CorsOrigins     []string
}

// RedditConfig holds Reddit connector configuration
type RedditConfig struct {
	ClientID          string
	ClientSecret      string
	UserAgent         string
	TimeFilter        string
	MinScore          int
	IncludeComments   bool
	UseCommunities    bool
	Subreddits        []string
	RequestsPerMinute int
	ExcludeKeywords   []string
}

// ApifyConfig holds the social-mentions actor configuration
type ApifyConfig struct {
	Token   string
	ActorID string
	Timeout time.Duration
}

// NewsConfig holds NewsAPI configuration
type NewsConfig struct {
	APIKey       string
	LookbackDays int
	Language     string
}

// SentimentConfig selects the primary classification backend
type SentimentConfig struct {
	Backend   string
	ModelPath string
	Endpoint  string
	Token     string
}

// ValkeyConfig holds Valkey connection settings
type ValkeyConfig struct {
	Address  string
	Password string
	TLS      bool
}

// DynamoDBConfig holds the optional result table settings
type DynamoDBConfig struct {
	Table    string
	Region   string
	Endpoint string
}

// KafkaConfig holds the optional insight event settings
type KafkaConfig struct {
	Broker string
	Topic  string
}

// LimitsConfig holds the default per-source fetch limits
type LimitsConfig struct {
	SocialMax   int
	NewsMax     int
	RedditLimit int
}

// Load builds the configuration from environment variables
func Load() (Config, error) {
	cfg := Config{
		Environment: getEnv("APP_ENV", "dev"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		DataDir:     getEnv("DATA_DIR", "data"),
		HTTPTimeout: getEnvAsDuration("HTTP_TIMEOUT", 30*time.Second),
		StoreKind:   getEnv("STORE_BACKEND", StoreFile),
		JobStore:    getEnv("JOB_STORE_BACKEND", StoreMemory),
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvAsInt("SERVER_PORT", 8000),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			CorsOrigins:     getEnvAsSlice("SERVER_CORS_ORIGINS", []string{"*"}),
		},
		Reddit: RedditConfig{
			ClientID:          getEnv("REDDIT_CLIENT_ID", ""),
			ClientSecret:      getEnv("REDDIT_CLIENT_SECRET", ""),
			UserAgent:         getEnv("REDDIT_USER_AGENT", "brandpulse/0.1"),
			TimeFilter:        getEnv("REDDIT_TIME_FILTER", "year"),
			MinScore:          getEnvAsInt("REDDIT_MIN_SCORE", 0),
			IncludeComments:   getEnvAsBool("REDDIT_INCLUDE_COMMENTS", true),
			UseCommunities:    getEnvAsBool("REDDIT_USE_COMMUNITIES", false),
			Subreddits:        getEnvAsSlice("REDDIT_SUBREDDITS", nil),
			RequestsPerMinute: getEnvAsInt("REDDIT_REQUESTS_PER_MINUTE", 60),
			ExcludeKeywords:   getEnvAsSlice("RELEVANCE_EXCLUDE_KEYWORDS", nil),
		},
		Apify: ApifyConfig{
			Token:   getEnv("APIFY_TOKEN", ""),
			ActorID: getEnv("APIFY_ACTOR_ID", "CJdippxWmn9uRfooo"),
			Timeout: getEnvAsDuration("APIFY_TIMEOUT", 310*time.Second),
		},
		News: NewsConfig{
			APIKey:       getEnv("NEWS_API_KEY", ""),
			LookbackDays: getEnvAsInt("NEWS_LOOKBACK_DAYS", 7),
			Language:     getEnv("NEWS_LANGUAGE", "en"),
		},
		Sentiment: SentimentConfig{
			Backend:   getEnv("SENTIMENT_BACKEND", defaultBackend()),
			ModelPath: getEnv("SENTIMENT_MODEL_PATH", ""),
			Endpoint:  getEnv("SENTIMENT_ENDPOINT", ""),
			Token:     getEnv("SENTIMENT_API_TOKEN", ""),
		},
		Valkey: ValkeyConfig{
			Address:  getEnv("VALKEY_INIT_ADDRESS", ""),
			Password: getEnv("VALKEY_PASSWORD", ""),
			TLS:      getEnvAsBool("VALKEY_TLS", false),
		},
		DynamoDB: DynamoDBConfig{
			Table:    getEnv("DYNAMODB_TABLE", ""),
			Region:   getEnv("AWS_REGION", "us-west-2"),
			Endpoint: getEnv("AWS_ENDPOINT", ""),
		},
		Kafka: KafkaConfig{
			Broker: getEnv("KAFKA_BROKER", ""),
			Topic:  getEnv("KAFKA_INSIGHTS_TOPIC", "brand-insights"),
		},
		Limits: LimitsConfig{
			SocialMax:   getEnvAsInt("DEFAULT_SOCIAL_MAX", 50),
			NewsMax:     getEnvAsInt("DEFAULT_NEWS_MAX", 50),
			RedditLimit: getEnvAsInt("DEFAULT_REDDIT_LIMIT", 25),
		},
	}

	return cfg, validate(cfg)
}

// validate checks the combinations Load cannot default its way out of
func validate(cfg Config) error {
	var errs []error

	if cfg.HTTPTimeout <= 0 {
		errs = append(errs, errors.New("HTTP_TIMEOUT must be positive"))
	}
	if cfg.Apify.Timeout < 300*time.Second {
		errs = append(errs, errors.New("APIFY_TIMEOUT must cover the 300s synchronous actor run"))
	}
	if cfg.Limits.SocialMax <= 0 || cfg.Limits.NewsMax <= 0 || cfg.Limits.RedditLimit <= 0 {
		errs = append(errs, errors.New("default source limits must be positive"))
	}
	if cfg.Reddit.RequestsPerMinute <= 0 {
		errs = append(errs, errors.New("REDDIT_REQUESTS_PER_MINUTE must be positive"))
	}

	switch cfg.Sentiment.Backend {
	case BackendVader:
	case BackendHugot:
		if cfg.Sentiment.ModelPath == "" {
			errs = append(errs, errors.New("SENTIMENT_MODEL_PATH is required for the hugot backend"))
		}
	case BackendHTTP:
		if cfg.Sentiment.Endpoint == "" {
			errs = append(errs, errors.New("SENTIMENT_ENDPOINT is required for the http backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown SENTIMENT_BACKEND %q", cfg.Sentiment.Backend))
	}

	for name, kind := range map[string]string{"STORE_BACKEND": cfg.StoreKind, "JOB_STORE_BACKEND": cfg.JobStore} {
		switch kind {
		case StoreFile, StoreMemory:
		case StoreValkey:
			if cfg.Valkey.Address == "" {
				errs = append(errs, fmt.Errorf("%s=valkey requires VALKEY_INIT_ADDRESS", name))
			}
		default:
			errs = append(errs, fmt.Errorf("unknown %s %q", name, kind))
		}
	}

	return errors.Join(errs...)
}

// defaultBackend prefers the hosted model when an endpoint is configured, so
// the model label does not silently fall back to the lexicon scorer.
func defaultBackend() string {
	if getEnv("SENTIMENT_ENDPOINT", "") != "" {
		return BackendHTTP
	}
	return BackendVader
}

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
