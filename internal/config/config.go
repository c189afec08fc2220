package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration
type Config struct {
	Document  DocumentConfig  `yaml:"document"`
	Chunking  ChunkingConfig  `yaml:"chunking"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Index     IndexConfig     `yaml:"index"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Generator GeneratorConfig `yaml:"generator"`
	Session   SessionConfig   `yaml:"session"`
}

// DocumentConfig holds the input document location
type DocumentConfig struct {
	Path string `yaml:"path"`
}

// ChunkingConfig holds the word window parameters
type ChunkingConfig struct {
	Size    int `yaml:"size"`    // Words per chunk
	Overlap int `yaml:"overlap"` // Words shared by consecutive chunks, must be < size
}

// EmbeddingConfig holds embedding service configuration
type EmbeddingConfig struct {
	Provider string `yaml:"provider"` // "ollama" | "openai" | "hash"

	Endpoint string `yaml:"endpoint"`
	Model    string `yaml:"model"`

	// Name of the environment variable holding the API key ("openai" provider only)
	APIKeyEnv string `yaml:"api_key_env,omitempty"`

	Dimensions int `yaml:"dimensions,omitempty"` // Requested output size; 0 keeps the model default
	BatchSize  int `yaml:"batch_size"`           // Texts per embedding request
}

// IndexConfig selects the similarity index backend
type IndexConfig struct {
	Backend string `yaml:"backend"` // "memory" | "sqlite"
}

// RetrievalConfig holds retrieval-specific configuration
type RetrievalConfig struct {
	TopK          int `yaml:"top_k"`          // Chunks retrieved per query
	PreviewLength int `yaml:"preview_length"` // Characters shown per retrieved chunk
}

// GeneratorConfig holds answer generation configuration
type GeneratorConfig struct {
	Provider    string        `yaml:"provider"` // "gemini" | "openai" | "ollama"
	Endpoint    string        `yaml:"endpoint"`
	Model       string        `yaml:"model"`
	APIKeyEnv   string        `yaml:"api_key_env"`
	Temperature float64       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
}

// SessionConfig holds interactive session configuration
type SessionConfig struct {
	ExitKeyword string `yaml:"exit_keyword"`
	Language    string `yaml:"language"` // "ar" | "en"
}

// Defaults mirror the original script.
const (
	DefaultDocumentPath = "document.txt"

	DefaultChunkSize    = 150
	DefaultChunkOverlap = 30

	DefaultEmbeddingProvider = "ollama"
	DefaultOllamaEndpoint    = "http://localhost:11434"
	DefaultOllamaEmbedModel  = "bge-m3"
	DefaultOpenAIEndpoint    = "https://api.openai.com/v1/"
	DefaultOpenAIEmbedModel  = "text-embedding-3-small"
	DefaultOpenAIKeyEnv      = "OPENAI_API_KEY"
	DefaultEmbeddingBatch    = 16

	DefaultIndexBackend = "memory"

	DefaultTopK          = 3
	DefaultPreviewLength = 120

	DefaultGeneratorProvider = "gemini"
	DefaultGeminiEndpoint    = "https://generativelanguage.googleapis.com/v1beta/openai/"
	DefaultGeminiModel       = "gemini-2.5-flash"
	DefaultGeminiKeyEnv      = "GOOGLE_API_KEY"
	DefaultOpenAIChatModel   = "gpt-4o-mini"
	DefaultOllamaChatModel   = "llama3.2"
	DefaultTemperature       = 0.2
	DefaultGeneratorTimeout  = 60 * time.Second

	DefaultExitKeyword = "exit"
	DefaultLanguage    = "ar"
)

// DefaultPath returns the default config file location: ~/.docqa/config/docqa.yaml
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".docqa", "config", "docqa.yaml"), nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.Generator.Temperature = DefaultTemperature
	cfg.applyDefaults()
	return cfg
}

// Load loads configuration from the default config file.
// A missing default file is not an error: the defaults are used instead.
func Load() (*Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := Default()
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid configuration: %w", err)
		}
		return cfg, nil
	}
	return LoadFromFile(path)
}

// LoadFromFile loads configuration from a specific file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			defaultPath, _ := DefaultPath()
			return nil, &ConfigNotFoundError{
				RequestedPath: path,
				DefaultPath:   defaultPath,
			}
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes YAML configuration, applies defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	// 0 is a valid temperature, so the default only survives an absent key
	cfg.Generator.Temperature = DefaultTemperature
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// ConfigNotFoundError is returned when config file is not found
type ConfigNotFoundError struct {
	RequestedPath string
	DefaultPath   string
}

func (e *ConfigNotFoundError) Error() string {
	return fmt.Sprintf("config file not found at: %s\n\nDefault location: %s\n\nYou can:\n"+
		"  1. Create the config file at the default location\n"+
		"  2. Specify a custom path with -config flag\n"+
		"  3. Run 'docqa -init-config' to write a config template",
		e.RequestedPath, e.DefaultPath)
}

// IsConfigNotFound checks if error is config not found
func IsConfigNotFound(err error) bool {
	var target *ConfigNotFoundError
	return errors.As(err, &target)
}

// MissingCredentialError is returned when the environment variable holding
// a provider API key is unset or empty.
type MissingCredentialError struct {
	EnvVar  string
	Purpose string
}

func (e *MissingCredentialError) Error() string {
	return fmt.Sprintf("missing credential: environment variable %s is not set (required by %s)", e.EnvVar, e.Purpose)
}

// ResolveCredential reads the secret held in envVar.
func ResolveCredential(envVar, purpose string) (string, error) {
	value := strings.TrimSpace(os.Getenv(envVar))
	if value == "" {
		return "", &MissingCredentialError{EnvVar: envVar, Purpose: purpose}
	}
	return value, nil
}

// NeedsCredential reports whether the generator provider authenticates with an API key.
func (g GeneratorConfig) NeedsCredential() bool {
	return g.Provider != "ollama"
}

// NeedsCredential reports whether the embedding provider authenticates with an API key.
func (e EmbeddingConfig) NeedsCredential() bool {
	return e.Provider == "openai"
}

// expandPath expands ~ and $HOME to the user's home directory
func expandPath(path string) string {
	if strings.HasPrefix(path, "$HOME/") || path == "$HOME" {
		homeDir := os.Getenv("HOME")
		if homeDir == "" {
			var err error
			homeDir, err = os.UserHomeDir()
			if err != nil {
				return path
			}
		}
		if path == "$HOME" {
			return homeDir
		}
		return filepath.Join(homeDir, path[6:])
	}

	if strings.HasPrefix(path, "~/") || path == "~" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		if path == "~" {
			return homeDir
		}
		return filepath.Join(homeDir, path[2:])
	}

	return path
}

// applyDefaults sets default values for missing configuration
func (c *Config) applyDefaults() {
	if c.Document.Path == "" {
		c.Document.Path = DefaultDocumentPath
	}
	c.Document.Path = expandPath(c.Document.Path)

	// Overlap 0 is a legitimate setting, so only fill it in together with size
	if c.Chunking.Size == 0 {
		c.Chunking.Size = DefaultChunkSize
		if c.Chunking.Overlap == 0 {
			c.Chunking.Overlap = DefaultChunkOverlap
		}
	}

	if c.Embedding.Provider == "" {
		c.Embedding.Provider = DefaultEmbeddingProvider
	}
	switch c.Embedding.Provider {
	case "ollama":
		if c.Embedding.Endpoint == "" {
			c.Embedding.Endpoint = DefaultOllamaEndpoint
		}
		if c.Embedding.Model == "" {
			c.Embedding.Model = DefaultOllamaEmbedModel
		}
	case "openai":
		if c.Embedding.Endpoint == "" {
			c.Embedding.Endpoint = DefaultOpenAIEndpoint
		}
		if c.Embedding.Model == "" {
			c.Embedding.Model = DefaultOpenAIEmbedModel
		}
		if c.Embedding.APIKeyEnv == "" {
			c.Embedding.APIKeyEnv = DefaultOpenAIKeyEnv
		}
	}
	if c.Embedding.BatchSize == 0 {
		c.Embedding.BatchSize = DefaultEmbeddingBatch
	}

	if c.Index.Backend == "" {
		c.Index.Backend = DefaultIndexBackend
	}

	if c.Retrieval.TopK == 0 {
		c.Retrieval.TopK = DefaultTopK
	}
	if c.Retrieval.PreviewLength == 0 {
		c.Retrieval.PreviewLength = DefaultPreviewLength
	}

	if c.Generator.Provider == "" {
		c.Generator.Provider = DefaultGeneratorProvider
	}
	switch c.Generator.Provider {
	case "gemini":
		if c.Generator.Endpoint == "" {
			c.Generator.Endpoint = DefaultGeminiEndpoint
		}
		if c.Generator.Model == "" {
			c.Generator.Model = DefaultGeminiModel
		}
		if c.Generator.APIKeyEnv == "" {
			c.Generator.APIKeyEnv = DefaultGeminiKeyEnv
		}
	case "openai":
		if c.Generator.Endpoint == "" {
			c.Generator.Endpoint = DefaultOpenAIEndpoint
		}
		if c.Generator.Model == "" {
			c.Generator.Model = DefaultOpenAIChatModel
		}
		if c.Generator.APIKeyEnv == "" {
			c.Generator.APIKeyEnv = DefaultOpenAIKeyEnv
		}
	case "ollama":
		if c.Generator.Endpoint == "" {
			c.Generator.Endpoint = DefaultOllamaEndpoint
		}
		if c.Generator.Model == "" {
			c.Generator.Model = DefaultOllamaChatModel
		}
	}
	if c.Generator.Timeout == 0 {
		c.Generator.Timeout = DefaultGeneratorTimeout
	}

	if c.Session.ExitKeyword == "" {
		c.Session.ExitKeyword = DefaultExitKeyword
	}
	if c.Session.Language == "" {
		c.Session.Language = DefaultLanguage
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Chunking.Size <= 0 {
		return fmt.Errorf("chunking.size must be positive, got: %d", c.Chunking.Size)
	}
	if c.Chunking.Overlap < 0 || c.Chunking.Overlap >= c.Chunking.Size {
		return fmt.Errorf("chunking.overlap must be in [0, %d), got: %d", c.Chunking.Size, c.Chunking.Overlap)
	}

	switch c.Embedding.Provider {
	case "ollama", "openai", "hash":
	default:
		return fmt.Errorf("unsupported embedding provider: %s", c.Embedding.Provider)
	}
	if c.Embedding.Dimensions < 0 {
		return fmt.Errorf("embedding.dimensions must not be negative, got: %d", c.Embedding.Dimensions)
	}
	if c.Embedding.BatchSize <= 0 || c.Embedding.BatchSize > 256 {
		return fmt.Errorf("embedding.batch_size must be between 1 and 256, got: %d", c.Embedding.BatchSize)
	}

	switch c.Index.Backend {
	case "memory", "sqlite":
	default:
		return fmt.Errorf("unsupported index backend: %s", c.Index.Backend)
	}

	if c.Retrieval.TopK < 0 {
		return fmt.Errorf("retrieval.top_k must not be negative, got: %d", c.Retrieval.TopK)
	}
	if c.Retrieval.PreviewLength < 0 {
		return fmt.Errorf("retrieval.preview_length must not be negative, got: %d", c.Retrieval.PreviewLength)
	}

	switch c.Generator.Provider {
	case "gemini", "openai", "ollama":
	default:
		return fmt.Errorf("unsupported generator provider: %s", c.Generator.Provider)
	}
	if c.Generator.NeedsCredential() && c.Generator.APIKeyEnv == "" {
		return fmt.Errorf("generator.api_key_env is required for provider %s", c.Generator.Provider)
	}
	if c.Generator.Temperature < 0 {
		return fmt.Errorf("generator.temperature must not be negative, got: %v", c.Generator.Temperature)
	}
	if c.Generator.Timeout < 0 {
		return fmt.Errorf("generator.timeout must not be negative, got: %s", c.Generator.Timeout)
	}

	if strings.TrimSpace(c.Session.ExitKeyword) == "" {
		return fmt.Errorf("session.exit_keyword must not be blank")
	}
	switch c.Session.Language {
	case "ar", "en":
	default:
		return fmt.Errorf("unsupported session language: %s", c.Session.Language)
	}

	return nil
}

// SaveToFile saves the configuration to a specific file
func (c *Config) SaveToFile(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

const defaultConfigTemplate = `# docqa configuration
#
# Default location: $HOME/.docqa/config/docqa.yaml
# Every key is optional; the values below are the defaults.

document:
  path: document.txt            # .txt/.md (UTF-8) or .pdf

chunking:
  size: 150                     # words per chunk
  overlap: 30                   # words shared by consecutive chunks (< size)

embedding:
  # Provider: "ollama" | "openai" | "hash"
  provider: ollama
  endpoint: http://localhost:11434
  model: bge-m3
  batch_size: 16

  # OpenAI-compatible endpoint (alternative)
  # provider: openai
  # endpoint: https://api.openai.com/v1/
  # model: text-embedding-3-small
  # api_key_env: OPENAI_API_KEY

index:
  backend: memory               # "memory" | "sqlite" (in-memory SQLite)

retrieval:
  top_k: 3
  preview_length: 120

generator:
  # Provider: "gemini" | "openai" | "ollama"
  provider: gemini
  endpoint: https://generativelanguage.googleapis.com/v1beta/openai/
  model: gemini-2.5-flash
  api_key_env: GOOGLE_API_KEY   # read from the environment or ./.env
  temperature: 0.2
  timeout: 60s

session:
  exit_keyword: exit
  language: ar                  # "ar" | "en"
`

// WriteDefaultTemplate creates a default configuration file if it does not exist.
// It returns true if a file was created, false if it already existed.
func WriteDefaultTemplate(path string) (bool, error) {
	if path == "" {
		return false, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("failed to stat config file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return false, fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, []byte(defaultConfigTemplate), 0644); err != nil {
		return false, fmt.Errorf("failed to write config template: %w", err)
	}

	return true, nil
}
