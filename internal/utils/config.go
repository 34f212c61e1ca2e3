package utils

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	ServerPort string
	Mongo      MongoConfig
	Redis      RedisConfig
	OpenAI     OpenAIConfig
	Logging    LoggingConfig
}

type MongoConfig struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
}

// RedisConfig is optional; an empty URL disables the task-list cache.
type RedisConfig struct {
	URL string
}

type OpenAIConfig struct {
	APIKey      string
	Endpoint    string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

type LoggingConfig struct {
	Level        string
	Encoding     string
	Development  bool
	EnableCaller bool
	ServiceName  string
}

// Enabled reports whether an external chat-completion credential is configured.
// Without one the server runs in full fallback mode, which is a supported
// configuration rather than an error.
func (o OpenAIConfig) Enabled() bool {
	return strings.TrimSpace(o.APIKey) != ""
}

func LoadConfig() (*Config, error) {
	mongoURI := strings.TrimSpace(os.Getenv("MONGO_URL"))
	if mongoURI == "" {
		mongoURI = strings.TrimSpace(os.Getenv("MONGO_URI"))
	}
	if mongoURI == "" {
		mongoURI = "mongodb://localhost:27017"
	}

	logging := LoggingConfig{
		Level:        strings.ToLower(envOrDefault("LOG_LEVEL", "info")),
		Encoding:     strings.ToLower(envOrDefault("LOG_ENCODING", "console")),
		Development:  parseBool(envOrDefault("LOG_DEVELOPMENT", "false"), false),
		EnableCaller: parseBool(envOrDefault("LOG_CALLER", "false"), false),
		ServiceName:  envOrDefault("SERVICE_NAME", "focusaid-server"),
	}

	cfg := &Config{
		ServerPort: envOrDefault("PORT", "8080"),
		Mongo: MongoConfig{
			URI:            mongoURI,
			Database:       envOrDefault("DB_NAME", "focusaid"),
			ConnectTimeout: parseDuration(envOrDefault("MONGO_CONNECT_TIMEOUT", "5s"), 5*time.Second),
		},
		Redis: RedisConfig{
			URL: strings.TrimSpace(os.Getenv("REDIS_URL")),
		},
		OpenAI: OpenAIConfig{
			APIKey:      strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
			Endpoint:    strings.TrimRight(envOrDefault("OPENAI_API_ENDPOINT", "https://api.openai.com/v1"), "/"),
			Model:       envOrDefault("OPENAI_MODEL", "gpt-3.5-turbo"),
			Temperature: parseFloat(envOrDefault("OPENAI_TEMPERATURE", "0.7"), 0.7),
			MaxTokens:   parseInt(envOrDefault("OPENAI_MAX_TOKENS", "1000"), 1000),
			Timeout:     parseDuration(envOrDefault("OPENAI_TIMEOUT", "30s"), 30*time.Second),
		},
		Logging: logging,
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

func parseInt(value string, fallback int) int {
	i, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return i
}

func parseFloat(value string, fallback float64) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fallback
	}
	return f
}

func parseBool(value string, fallback bool) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return v
}
