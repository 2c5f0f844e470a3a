package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	DBSchema    string `mapstructure:"DB_SCHEMA"`

	ServerPort  string `mapstructure:"SERVER_PORT"`
	Environment string `mapstructure:"ENVIRONMENT"`
	LogFile     string `mapstructure:"LOG_FILE"`

	OpenAIAPIKey  string        `mapstructure:"OPENAI_API_KEY"`
	OpenAIBaseURL string        `mapstructure:"OPENAI_BASE_URL"`
	OpenAIModel   string        `mapstructure:"OPENAI_MODEL"`
	AITimeout     time.Duration `mapstructure:"AI_TIMEOUT"`

	RedisAddr       string        `mapstructure:"REDIS_ADDR"`
	RedisPassword   string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB         int           `mapstructure:"REDIS_DB"`
	MessageCacheTTL time.Duration `mapstructure:"MESSAGE_CACHE_TTL"`

	UploadDir       string `mapstructure:"UPLOAD_DIR"`
	UploadPublicURL string `mapstructure:"UPLOAD_PUBLIC_URL"`

	S3Endpoint        string `mapstructure:"S3_ENDPOINT"`
	S3Region          string `mapstructure:"S3_REGION"`
	S3AccessKeyID     string `mapstructure:"S3_ACCESS_KEY_ID"`
	S3SecretAccessKey string `mapstructure:"S3_SECRET_ACCESS_KEY"`
	S3BucketName      string `mapstructure:"S3_BUCKET_NAME"`
}

var defaults = map[string]interface{}{
	"DATABASE_URL": "",
	"DB_SCHEMA":    "",

	"SERVER_PORT": "8080",
	"ENVIRONMENT": "development",
	"LOG_FILE":    "",

	"OPENAI_API_KEY":  "",
	"OPENAI_BASE_URL": "https://api.openai.com/v1",
	"OPENAI_MODEL":    "gpt-3.5-turbo",
	"AI_TIMEOUT":      "30s",

	"REDIS_ADDR":        "",
	"REDIS_PASSWORD":    "",
	"REDIS_DB":          0,
	"MESSAGE_CACHE_TTL": "24h",

	"UPLOAD_DIR":        "/tmp/uploads",
	"UPLOAD_PUBLIC_URL": "https://storage.example.com/chattik",

	"S3_ENDPOINT":          "",
	"S3_REGION":            "us-east-1",
	"S3_ACCESS_KEY_ID":     "",
	"S3_SECRET_ACCESS_KEY": "",
	"S3_BUCKET_NAME":       "",
}

// Load читает конфигурацию из .env (если файл есть) и переменных окружения.
// Переменные окружения имеют приоритет.
func Load(path string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.ServerPort == "" {
		return nil, fmt.Errorf("SERVER_PORT is required")
	}

	return &cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
