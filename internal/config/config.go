package config

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	MongoURI               string `envconfig:"MONGO_URI" default:"mongodb://localhost:27017"`
	MongoDatabase          string `envconfig:"MONGO_DATABASE" default:"examref"`
	MongoChunkCollection   string `envconfig:"MONGO_CHUNK_COLLECTION" default:"chunks"`
	MongoMindmapCollection string `envconfig:"MONGO_MINDMAP_COLLECTION" default:"mindmaps"`

	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"examref-files"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`

	OpenAIAPIKey        string `envconfig:"OPENAI_API_KEY"`
	EmbeddingModel      string `envconfig:"EMBEDDING_MODEL" default:"text-embedding-3-small"`
	EmbeddingDimensions int    `envconfig:"EMBEDDING_DIMENSIONS" default:"1536"`
	ChatModel           string `envconfig:"CHAT_MODEL" default:"gpt-4o-mini"`
	MindmapModel        string `envconfig:"MINDMAP_MODEL" default:"gpt-4o-mini"`

	YouTubeAPIKey string `envconfig:"YOUTUBE_API_KEY"`

	RetrievalK           int     `envconfig:"RETRIEVAL_K" default:"5"`
	RetrievalMaxDistance float64 `envconfig:"RETRIEVAL_MAX_DISTANCE" default:"0.6"`

	MaxUploadBytes int64 `envconfig:"MAX_UPLOAD_BYTES" default:"52428800"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("EXAMREF", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func (c *Config) HasS3() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}

func (c *Config) HasYouTube() bool {
	return c.YouTubeAPIKey != ""
}
