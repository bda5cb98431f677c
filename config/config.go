package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"github.com/vivekcarvalho/profile-chatbot-be/types"
)

type Config struct {
	Port                string              `mapstructure:"port"`
	LLMProvider         string              `mapstructure:"llm_provider"` // "openai" | "google"
	AIEndpoint          string              `mapstructure:"ai_endpoint"`
	Model               string              `mapstructure:"model"`
	Temperature         float32             `mapstructure:"temperature"`
	MaxTokens           int                 `mapstructure:"max_tokens"`
	OpenAIAPIKey        string              `mapstructure:"OPENAI_API_KEY"`
	GoogleAPIKeys       []string            `mapstructure:"google_api_keys"`
	EmbeddingModel      string              `mapstructure:"embedding_model"`
	MongoDBURI          string              `mapstructure:"MONGODB_URI"`
	WeaviateStoreConfig WeaviateStoreConfig `mapstructure:"weaviate_store_config"`
	Chunker             types.ChunkerConfig `mapstructure:"chunker"`
	Retrieval           RetrievalConfig     `mapstructure:"retrieval"`
	MaxHistory          int                 `mapstructure:"max_conversation_history"`
}

type WeaviateStoreConfig struct {
	Host   string `mapstructure:"host"`
	APIKey string `mapstructure:"WEAVIATE_APIKEY"` // bound to env var
}

// RetrievalConfig controls the fetch-then-filter retriever: FetchK
// candidates are pulled by similarity, the topic filter is applied, and at
// most TopK survive.
type RetrievalConfig struct {
	TopK   int `mapstructure:"top_k"`
	FetchK int `mapstructure:"fetch_k"`
}

func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	v.AutomaticEnv()

	// Secrets come from the environment, never the config file.
	v.BindEnv("OPENAI_API_KEY")
	v.BindEnv("GOOGLE_API_KEY")
	v.BindEnv("WEAVIATE_APIKEY")
	v.BindEnv("MONGODB_URI")

	v.SetDefault("port", "8080")
	v.SetDefault("llm_provider", "openai")
	v.SetDefault("temperature", 0.7)
	v.SetDefault("max_tokens", 1000)
	v.SetDefault("embedding_model", "text-embedding-3-small")
	v.SetDefault("chunker.chunk_size", 500)
	v.SetDefault("chunker.chunk_overlap", 50)
	v.SetDefault("retrieval.top_k", 4)
	v.SetDefault("retrieval.fetch_k", 20)
	v.SetDefault("max_conversation_history", 20)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// A single key from the environment works too; comma-separate for
	// rotation.
	if len(config.GoogleAPIKeys) == 0 {
		if keys := v.GetString("GOOGLE_API_KEY"); keys != "" {
			config.GoogleAPIKeys = strings.Split(keys, ",")
		}
	}

	return &config, nil
}
