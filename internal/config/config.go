// Package config 负责加载和管理应用程序的配置。
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 是整个应用程序的配置结构体，与 config.yaml 文件结构对应。
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Store    StoreConfig    `mapstructure:"store"`
	Database DatabaseConfig `mapstructure:"database"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Chat     ChatConfig     `mapstructure:"chat"`
	Profile  ProfileConfig  `mapstructure:"profile"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	MinIO    MinIOConfig    `mapstructure:"minio"`
}

// ServerConfig 存储服务器相关的配置。
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Mode           string   `mapstructure:"mode"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// LogConfig 存储日志相关的配置。
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// StoreConfig selects the backend of the session store.
// Driver is one of memory, redis, mysql, postgres, sqlite.
type StoreConfig struct {
	Driver   string        `mapstructure:"driver"`
	RedisTTL time.Duration `mapstructure:"redis_ttl"`
}

// DatabaseConfig 存储所有数据库连接的配置。
type DatabaseConfig struct {
	DSN   string      `mapstructure:"dsn"`
	Redis RedisConfig `mapstructure:"redis"`
}

// RedisConfig 存储 Redis 的配置。
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LLMConfig 存储大语言模型相关的配置。
type LLMConfig struct {
	APIKey     string              `mapstructure:"api_key"`
	BaseURL    string              `mapstructure:"base_url"`
	Model      string              `mapstructure:"model"`
	Timeout    time.Duration       `mapstructure:"timeout"`
	Generation LLMGenerationConfig `mapstructure:"generation"`
}

// LLMGenerationConfig 配置生成相关参数。
type LLMGenerationConfig struct {
	Temperature float64 `mapstructure:"temperature"`
	TopP        float64 `mapstructure:"top_p"`
	MaxTokens   int     `mapstructure:"max_tokens"`
}

// ChatConfig controls the turn pipeline.
type ChatConfig struct {
	HistoryWindow int    `mapstructure:"history_window"`
	FallbackReply string `mapstructure:"fallback_reply"`
	ApologyReply  string `mapstructure:"apology_reply"`
}

// ProfileConfig overrides the built-in owner profile. Empty fields keep the defaults.
type ProfileConfig struct {
	Name         string `mapstructure:"name"`
	Bio          string `mapstructure:"bio"`
	ImageURL     string `mapstructure:"image_url"`
	SystemPrompt string `mapstructure:"system_prompt"`
	// Triggers replaces the personal-query phrase list when non-empty.
	Triggers []string `mapstructure:"triggers"`
	// QuickQuestions replaces the canned answer table when non-empty.
	QuickQuestions []QuickQuestionConfig `mapstructure:"quick_questions"`
}

// QuickQuestionConfig is one canned question and its answer.
type QuickQuestionConfig struct {
	Question string `mapstructure:"question"`
	Answer   string `mapstructure:"answer"`
}

// KafkaConfig 存储 Kafka 相关的配置。
type KafkaConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Brokers string `mapstructure:"brokers"`
	Topic   string `mapstructure:"topic"`
}

// MinIOConfig 存储 MinIO 对象存储的配置，用于生成头像的预签名地址。
type MinIOConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Endpoint        string        `mapstructure:"endpoint"`
	AccessKeyID     string        `mapstructure:"access_key_id"`
	SecretAccessKey string        `mapstructure:"secret_access_key"`
	UseSSL          bool          `mapstructure:"use_ssl"`
	Region          string        `mapstructure:"region"`
	BucketName      string        `mapstructure:"bucket_name"`
	ProfileObject   string        `mapstructure:"profile_object"`
	URLExpiry       time.Duration `mapstructure:"url_expiry"`
}

// SetDefaults registers the default value of every key so that environment
// overrides (e.g. LLM_API_KEY) are honoured even when the file omits the key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.allowed_origins", []string{"*"})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output_path", "")

	v.SetDefault("store.driver", "memory")
	v.SetDefault("store.redis_ttl", 7*24*time.Hour)

	v.SetDefault("database.dsn", "")
	v.SetDefault("database.redis.addr", "localhost:6379")
	v.SetDefault("database.redis.password", "")
	v.SetDefault("database.redis.db", 0)

	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", "https://api.groq.com/openai/v1")
	v.SetDefault("llm.model", "llama-3.1-8b-instant")
	v.SetDefault("llm.timeout", 30*time.Second)
	v.SetDefault("llm.generation.temperature", 0.7)
	v.SetDefault("llm.generation.top_p", 1.0)
	v.SetDefault("llm.generation.max_tokens", 1024)

	v.SetDefault("chat.history_window", 10)
	v.SetDefault("chat.fallback_reply", "")
	v.SetDefault("chat.apology_reply", "")

	v.SetDefault("profile.name", "")
	v.SetDefault("profile.bio", "")
	v.SetDefault("profile.image_url", "")
	v.SetDefault("profile.system_prompt", "")

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", "localhost:9092")
	v.SetDefault("kafka.topic", "portfolio.chat.turns")

	v.SetDefault("minio.enabled", false)
	v.SetDefault("minio.endpoint", "localhost:9000")
	v.SetDefault("minio.access_key_id", "")
	v.SetDefault("minio.secret_access_key", "")
	v.SetDefault("minio.use_ssl", false)
	v.SetDefault("minio.region", "us-east-1")
	v.SetDefault("minio.bucket_name", "portfolio")
	v.SetDefault("minio.profile_object", "profile.jpg")
	v.SetDefault("minio.url_expiry", time.Hour)
}

// Load 从指定路径读取 YAML 配置文件，并叠加环境变量。
// 配置文件不存在时仅使用默认值与环境变量。
func Load(configPath string) (Config, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return Config{}, fmt.Errorf("读取配置文件失败: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("无法将配置解析到结构体中: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects combinations the server cannot start with.
func (c Config) Validate() error {
	switch c.Store.Driver {
	case "memory", "redis":
	case "mysql", "postgres", "sqlite":
		if c.Database.DSN == "" {
			return fmt.Errorf("store driver %q requires database.dsn", c.Store.Driver)
		}
	default:
		return fmt.Errorf("unsupported store driver: %q", c.Store.Driver)
	}
	if c.Chat.HistoryWindow < 0 {
		return fmt.Errorf("chat.history_window must not be negative, got %d", c.Chat.HistoryWindow)
	}
	return nil
}
