package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig
	Milvus     MilvusConfig
	SQLite     SQLiteConfig
	Redis      RedisConfig
	LLM        LLMConfig
	Search     SearchConfig
	Guardrails GuardrailsConfig
	Logging    LoggingConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  int
	WriteTimeout int
	BodyLimit    int
}

type MilvusConfig struct {
	Endpoint       string
	CollectionName string
	VectorDim      int
}

type SQLiteConfig struct {
	Path string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	TTLSec   int
}

type LLMConfig struct {
	APIKey         string
	Model          string
	EmbeddingModel string
	Temperature    float32
	MaxTokens      int
	TimeoutSec     int
}

type SearchConfig struct {
	Enabled        bool
	GoogleAPIKey   string
	GoogleEngineID string
	MaxResults     int
	TimeoutSec     int
}

type GuardrailsConfig struct {
	MaxQueryLength  int
	MinQueryLength  int
	MaxAnswerLength int
}

type LoggingConfig struct {
	Level      string
	Format     string
	OutputPath string
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/math-agent")

	viper.SetEnvPrefix("MATH_AGENT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.readTimeout", 30)
	viper.SetDefault("server.writeTimeout", 30)
	viper.SetDefault("server.bodyLimit", 1048576)

	viper.SetDefault("milvus.endpoint", "localhost:19530")
	viper.SetDefault("milvus.collectionName", "math_knowledge")
	viper.SetDefault("milvus.vectorDim", 1536)

	viper.SetDefault("sqlite.path", "./data/mathagent.db")

	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.ttlSec", 3600)

	viper.SetDefault("llm.model", "gpt-4")
	viper.SetDefault("llm.embeddingModel", "text-embedding-3-small")
	viper.SetDefault("llm.temperature", 0.1)
	viper.SetDefault("llm.maxTokens", 2048)
	viper.SetDefault("llm.timeoutSec", 30)

	viper.SetDefault("search.enabled", true)
	viper.SetDefault("search.maxResults", 5)
	viper.SetDefault("search.timeoutSec", 10)

	viper.SetDefault("guardrails.maxQueryLength", 1000)
	viper.SetDefault("guardrails.minQueryLength", 3)
	viper.SetDefault("guardrails.maxAnswerLength", 2000)

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.outputPath", "stdout")
}
