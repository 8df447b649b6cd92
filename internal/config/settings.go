package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	VectorBackendQdrant   = "qdrant"
	VectorBackendPgvector = "pgvector"

	ProviderGoogle = "google"
	ProviderOpenAI = "openai"
)

// Settings is resolved once at startup and handed to the constructors in main.
// Precedence: defaults < yaml file (DOCQA_CONFIG) < environment (.env is loaded into the environment first).
type Settings struct {
	IsProd       bool   `yaml:"is_prod"`
	LogLevel     string `yaml:"log_level"`
	ListenAddr   string `yaml:"listen_addr"`
	AuthToken    string `yaml:"auth_token"`
	NoAuthBypass bool   `yaml:"no_auth_bypass"`

	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	// FallbackToMemory keeps the service running on in-memory stores when redis is unreachable
	FallbackToMemory bool `yaml:"fallback_to_memory"`

	VectorBackend string `yaml:"vector_backend"`
	QdrantHost    string `yaml:"qdrant_host"`
	QdrantPort    int    `yaml:"qdrant_port"`
	QdrantAPIKey  string `yaml:"qdrant_api_key"`
	PostgresDSN   string `yaml:"postgres_dsn"`

	BlobRoot  string `yaml:"blob_root"`
	GCSBucket string `yaml:"gcs_bucket"`

	EmbeddingProvider string `yaml:"embedding_provider"`
	EmbeddingModel    string `yaml:"embedding_model"`
	LLMProvider       string `yaml:"llm_provider"`
	LLMModel          string `yaml:"llm_model"`
	GoogleAPIKey      string `yaml:"google_api_key"`
	OpenAIAPIKey      string `yaml:"openai_api_key"`
	OpenAIBaseURL     string `yaml:"openai_base_url"`

	MaxChunkSize int `yaml:"max_chunk_size"`
}

func Defaults() Settings {
	return Settings{
		LogLevel:          "debug",
		ListenAddr:        ServerListenAddr,
		RedisAddr:         RedisAddr,
		FallbackToMemory:  true,
		VectorBackend:     VectorBackendQdrant,
		QdrantHost:        QdrantHost,
		QdrantPort:        QdrantGrpcPort,
		BlobRoot:          BlobRoot,
		EmbeddingProvider: ProviderGoogle,
		EmbeddingModel:    GoogleEmbeddingModel,
		LLMProvider:       ProviderGoogle,
		LLMModel:          GeminiModelName,
		MaxChunkSize:      DefaultMaxChunkSize,
	}
}

// Load resolves the settings. A missing .env or yaml file is not an error.
func Load() (Settings, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Settings{}, fmt.Errorf("loading .env: %w", err)
	}

	s := Defaults()
	if path := os.Getenv("DOCQA_CONFIG"); path != "" {
		if err := loadFile(path, &s); err != nil {
			return Settings{}, err
		}
	}
	applyEnv(&s)
	applyProviderDefaults(&s)
	return s, s.Validate()
}

func loadFile(path string, s *Settings) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, s); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}

func applyEnv(s *Settings) {
	setString(&s.LogLevel, "LOG_LEVEL")
	setString(&s.ListenAddr, "LISTEN_ADDR")
	setString(&s.AuthToken, "AUTH_TOKEN")
	setString(&s.RedisAddr, "REDIS_ADDR")
	setString(&s.RedisPassword, "REDIS_PASSWORD")
	setString(&s.VectorBackend, "VECTOR_BACKEND")
	setString(&s.QdrantHost, "QDRANT_HOST")
	setString(&s.QdrantAPIKey, "QDRANT_API_KEY")
	setString(&s.PostgresDSN, "POSTGRES_DSN")
	setString(&s.BlobRoot, "BLOB_ROOT")
	setString(&s.GCSBucket, "GCS_BUCKET")
	setString(&s.EmbeddingProvider, "EMBEDDING_PROVIDER")
	setString(&s.EmbeddingModel, "EMBEDDING_MODEL")
	setString(&s.LLMProvider, "LLM_PROVIDER")
	setString(&s.LLMModel, "LLM_MODEL")
	setString(&s.GoogleAPIKey, "GOOGLE_API_KEY")
	setString(&s.OpenAIAPIKey, "OPENAI_API_KEY")
	setString(&s.OpenAIBaseURL, "OPENAI_BASE_URL")

	setBool(&s.IsProd, "IS_PROD")
	setBool(&s.NoAuthBypass, "NO_AUTH_BYPASS")
	setBool(&s.FallbackToMemory, "FALLBACK_TO_MEMORY")

	setInt(&s.QdrantPort, "QDRANT_PORT")
	setInt(&s.MaxChunkSize, "MAX_CHUNK_SIZE")
}

// the model defaults follow the provider when only the provider was switched
func applyProviderDefaults(s *Settings) {
	if s.EmbeddingProvider == ProviderOpenAI && s.EmbeddingModel == GoogleEmbeddingModel {
		s.EmbeddingModel = OpenAIEmbeddingModel
	}
	if s.LLMProvider == ProviderOpenAI && s.LLMModel == GeminiModelName {
		s.LLMModel = OpenAIChatModel
	}
	if s.MaxChunkSize <= 0 {
		s.MaxChunkSize = DefaultMaxChunkSize
	}
}

func (s Settings) Validate() error {
	switch s.VectorBackend {
	case VectorBackendQdrant, VectorBackendPgvector:
	default:
		return fmt.Errorf("unknown vector backend %q", s.VectorBackend)
	}
	if s.VectorBackend == VectorBackendPgvector && s.PostgresDSN == "" {
		return errors.New("POSTGRES_DSN is required for the pgvector backend")
	}
	for _, p := range []string{s.EmbeddingProvider, s.LLMProvider} {
		if p != ProviderGoogle && p != ProviderOpenAI {
			return fmt.Errorf("unknown model provider %q", p)
		}
	}
	return nil
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func setBool(dst *bool, key string) {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		*dst = v
	}
}
