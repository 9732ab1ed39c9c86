package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Route label fields accepted by BUS_API_ROUTE_FIELD.
const (
	RouteFieldName   = "busRouteNm"
	RouteFieldAbbrev = "busRouteAbrv"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Source and output files.
	EventsPath     string
	DiversionsPath string
	RoutesPath     string
	FeedbackPath   string
	ContextDir     string
	VocabularyPath string

	// Route lookup service.
	BusAPIKey        string
	BusAPIURL        string
	BusAPITimeout    time.Duration
	BusAPIDelay      time.Duration
	BusAPIRouteField string
	RouteCacheSize   int

	// Feedback events.
	KafkaEnabled       bool
	KafkaBrokers       []string
	KafkaFeedbackTopic string

	// Shared route cache.
	RedisEnabled  bool
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisTTL      time.Duration
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	busTimeout, err := parsePositiveDuration("BUS_API_TIMEOUT", "8s")
	if err != nil {
		return nil, err
	}
	busDelay, err := parseDuration("BUS_API_DELAY", "100ms")
	if err != nil {
		return nil, err
	}
	redisTTL, err := parseDuration("REDIS_TTL", "24h")
	if err != nil {
		return nil, err
	}
	redisDB, err := parseNonNegativeInt("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	redisEnabled := redisAddr != ""
	if v := os.Getenv("REDIS_ENABLED"); v != "" {
		redisEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		EventsPath:     sharedcfg.EnvOrDefault("EVENTS_PATH", "data/protest_data.xlsx"),
		DiversionsPath: sharedcfg.EnvOrDefault("DIVERSIONS_PATH", "data/bus_data.xlsx"),
		RoutesPath:     sharedcfg.EnvOrDefault("ROUTES_PATH", "routes_final.csv"),
		FeedbackPath:   sharedcfg.EnvOrDefault("FEEDBACK_PATH", "data/feedback.csv"),
		ContextDir:     sharedcfg.EnvOrDefault("CONTEXT_DIR", "data/chatbot"),
		VocabularyPath: os.Getenv("VOCABULARY_PATH"),

		BusAPIKey:        os.Getenv("BUS_API_KEY"),
		BusAPIURL:        sharedcfg.EnvOrDefault("BUS_API_URL", "http://ws.bus.go.kr/api/rest/stationinfo/getRouteByStation"),
		BusAPITimeout:    busTimeout,
		BusAPIDelay:      busDelay,
		BusAPIRouteField: sharedcfg.EnvOrDefault("BUS_API_ROUTE_FIELD", RouteFieldName),
		RouteCacheSize:   parseRouteCacheSize(),

		KafkaEnabled:       os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaFeedbackTopic: sharedcfg.EnvOrDefault("KAFKA_FEEDBACK_TOPIC", "assembly-feedback"),

		RedisEnabled:  redisEnabled,
		RedisAddr:     redisAddr,
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       redisDB,
		RedisTTL:      redisTTL,
	}

	if cfg.EventsPath == "" {
		return nil, errors.New("EVENTS_PATH is required")
	}
	if cfg.BusAPIRouteField != RouteFieldName && cfg.BusAPIRouteField != RouteFieldAbbrev {
		return nil, fmt.Errorf("invalid BUS_API_ROUTE_FIELD %q: want %s or %s", cfg.BusAPIRouteField, RouteFieldName, RouteFieldAbbrev)
	}
	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
		}
		if cfg.KafkaFeedbackTopic == "" {
			return nil, errors.New("KAFKA_FEEDBACK_TOPIC is required when KAFKA_ENABLED is true")
		}
	}
	if cfg.RedisEnabled && cfg.RedisAddr == "" {
		return nil, errors.New("REDIS_ENABLED is true but REDIS_ADDR is not set")
	}

	return cfg, nil
}

func parseDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := parseDuration(key, def)
	if err != nil || d == 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseNonNegativeInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}

func parseRouteCacheSize() int {
	if s := os.Getenv("ROUTE_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 1000
}
