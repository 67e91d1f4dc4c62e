package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// Config aggregates every runtime setting of the service.
type Config struct {
	Server  ServerConfig
	AI      AIConfig
	Catalog CatalogConfig
	DB      DBConfig
	Models  ModelConfig
	Session SessionConfig
}

// Load reads the configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}
	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}
	catalog, err := loadCatalogConfig()
	if err != nil {
		return nil, err
	}
	db, err := loadDBConfig()
	if err != nil {
		return nil, err
	}
	models := loadModelConfig()
	session, err := loadSessionConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, AI: ai, Catalog: catalog, DB: db, Models: models, Session: session}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "5000"
	}

	if strings.Contains(port, ":") {
		// Allow passing ":5000" or "127.0.0.1:5000" directly.
		return ServerConfig{Addr: port}, nil
	}
	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}
	return ServerConfig{Addr: ":" + port}, nil
}

// AIConfig describes the language-generation capability. The service
// refuses to start without a usable credential.
type AIConfig struct {
	APIKey      string
	AccessKey   string
	SecretKey   string
	Model       string
	BaseURL     string
	Region      string
	Temperature *float64
	MaxTokens   *int
	Timeout     time.Duration
}

// Enabled reports whether the required credentials are present.
func (c AIConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel instantiates the configured chat model.
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("generation credential missing: set ARK_API_KEY (or AK/SK) and ARK_MODEL")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   c.MaxTokens,
		Temperature: temperature,
	}
	return ark.NewChatModel(ctx, cfg)
}

func loadAIConfig() (AIConfig, error) {
	temperature, err := parseOptionalFloatEnv("ARK_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}
	maxTokens, err := parseOptionalIntEnv("ARK_MAX_TOKENS")
	if err != nil {
		return AIConfig{}, err
	}
	timeout, err := parseDurationEnv("AI_TIMEOUT", 30*time.Second)
	if err != nil {
		return AIConfig{}, err
	}

	return AIConfig{
		APIKey:      strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		AccessKey:   strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		SecretKey:   strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		Model:       strings.TrimSpace(os.Getenv("ARK_MODEL")),
		BaseURL:     getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		Region:      getEnvOrDefault("ARK_REGION", "cn-beijing"),
		Temperature: temperature,
		MaxTokens:   maxTokens,
		Timeout:     timeout,
	}, nil
}

// CatalogConfig describes the external movie-catalog provider.
type CatalogConfig struct {
	APIKey   string
	BaseURL  string
	Language string
	Timeout  time.Duration
}

func loadCatalogConfig() (CatalogConfig, error) {
	timeout, err := parseDurationEnv("TMDB_TIMEOUT", 10*time.Second)
	if err != nil {
		return CatalogConfig{}, err
	}
	return CatalogConfig{
		APIKey:   strings.TrimSpace(os.Getenv("TMDB_API_KEY")),
		BaseURL:  getEnvOrDefault("TMDB_BASE_URL", "https://api.themoviedb.org/3"),
		Language: getEnvOrDefault("TMDB_LANGUAGE", "ko-KR"),
		Timeout:  timeout,
	}, nil
}

// DBConfig describes the relational store for recommendation statistics.
// The service runs without it; stats endpoints then degrade to empty
// results.
type DBConfig struct {
	Host     string
	User     string
	Password string
	Database string
	Port     int
	Timeout  time.Duration
}

// Enabled reports whether enough settings exist to open a connection.
func (c DBConfig) Enabled() bool {
	return c.Host != "" && c.User != "" && c.Database != ""
}

func loadDBConfig() (DBConfig, error) {
	port := 3306
	if override, err := parseOptionalIntEnv("MYSQLPORT"); err != nil {
		return DBConfig{}, err
	} else if override != nil {
		port = *override
	}
	timeout, err := parseDurationEnv("MYSQL_TIMEOUT", 5*time.Second)
	if err != nil {
		return DBConfig{}, err
	}

	return DBConfig{
		Host:     strings.TrimSpace(os.Getenv("MYSQLHOST")),
		User:     strings.TrimSpace(os.Getenv("MYSQLUSER")),
		Password: os.Getenv("MYSQLPASSWORD"),
		Database: strings.TrimSpace(os.Getenv("MYSQLDATABASE")),
		Port:     port,
		Timeout:  timeout,
	}, nil
}

// ModelConfig locates the classifier artifacts.
type ModelConfig struct {
	Dir     string
	BaseURL string
}

func loadModelConfig() ModelConfig {
	return ModelConfig{
		Dir:     getEnvOrDefault("MODEL_DIR", "models"),
		BaseURL: strings.TrimRight(strings.TrimSpace(os.Getenv("MODEL_BASE_URL")), "/"),
	}
}

// SessionConfig controls conversation-state retention.
type SessionConfig struct {
	TTL time.Duration
}

func loadSessionConfig() (SessionConfig, error) {
	ttl, err := parseDurationEnv("SESSION_TTL", 30*time.Minute)
	if err != nil {
		return SessionConfig{}, err
	}
	return SessionConfig{TTL: ttl}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}
	val, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}
	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}
	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
