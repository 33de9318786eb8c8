package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	CacheDriverRedis  = "redis"
	CacheDriverMemory = "memory"
)

type Config struct {
	Server     ServerConfig
	Logger     LoggerConfig
	Cache      CacheConfig
	Redis      RedisConfig
	Draft      DraftConfig
	Auth       AuthConfig
	Submission SubmissionConfig
	Validation ValidationConfig
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	BodyLimit    int
}

type LoggerConfig struct {
	Level string
	Env   string
}

type CacheConfig struct {
	Driver string
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type DraftConfig struct {
	TTL time.Duration
}

// AuthConfig holds the HMAC secret shared with the login service that
// issues author tokens. An empty secret disables authentication.
type AuthConfig struct {
	JWTSecret string
}

// SubmissionConfig points at the endpoint that stores accepted quizzes.
// An empty endpoint logs submissions instead of forwarding them.
type SubmissionConfig struct {
	Endpoint string
	Timeout  time.Duration
}

type ValidationConfig struct {
	AnswerChecks bool
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8090)
	v.SetDefault("server.read_timeout", "20s")
	v.SetDefault("server.write_timeout", "20s")
	v.SetDefault("server.body_limit", 10*1024*1024)
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.env", "development")
	v.SetDefault("cache.driver", CacheDriverRedis)
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("draft.ttl", "24h")
	v.SetDefault("submission.timeout", "10s")
	v.SetDefault("validation.answer_checks", false)
}

// LoadConfig reads config.yaml (optional), a .env file (optional) and the
// environment. Environment keys use underscores, e.g. REDIS_ADDRESS.
func LoadConfig() (*Config, error) {
	// A missing .env is the normal case outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// Add config paths based on environment
	if os.Getenv("ENV") == "test" {
		v.AddConfigPath("../../config")
		v.AddConfigPath("../../")
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if configFile := v.ConfigFileUsed(); configFile != "" {
		absPath, _ := filepath.Abs(configFile)
		fmt.Printf("Using config file: %s\n", absPath)
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:         v.GetInt("server.port"),
			ReadTimeout:  v.GetDuration("server.read_timeout"),
			WriteTimeout: v.GetDuration("server.write_timeout"),
			BodyLimit:    v.GetInt("server.body_limit"),
		},
		Logger: LoggerConfig{
			Level: v.GetString("logger.level"),
			Env:   v.GetString("logger.env"),
		},
		Cache: CacheConfig{
			Driver: strings.ToLower(v.GetString("cache.driver")),
		},
		Redis: RedisConfig{
			Address:  v.GetString("redis.address"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Draft: DraftConfig{
			TTL: v.GetDuration("draft.ttl"),
		},
		Auth: AuthConfig{
			JWTSecret: v.GetString("auth.jwt_secret"),
		},
		Submission: SubmissionConfig{
			Endpoint: v.GetString("submission.endpoint"),
			Timeout:  v.GetDuration("submission.timeout"),
		},
		Validation: ValidationConfig{
			AnswerChecks: v.GetBool("validation.answer_checks"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port: %d", c.Server.Port)
	}
	switch c.Cache.Driver {
	case CacheDriverRedis:
		if c.Redis.Address == "" {
			return fmt.Errorf("redis.address is required when cache.driver is %q", CacheDriverRedis)
		}
	case CacheDriverMemory:
	default:
		return fmt.Errorf("unsupported cache.driver: %q", c.Cache.Driver)
	}
	if c.Draft.TTL <= 0 {
		return fmt.Errorf("draft.ttl must be positive, got %s", c.Draft.TTL)
	}
	return nil
}

// AuthEnabled reports whether author tokens are required.
func (c *Config) AuthEnabled() bool {
	return c.Auth.JWTSecret != ""
}
