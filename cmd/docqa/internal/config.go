package internal

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/DreamCats/docqa/internal/config"
)

// LoadConfig 从指定路径读取配置；未指定时读取默认位置，默认文件不存在则使用默认值。
func LoadConfig(configPath string) (*config.Config, error) {
	if configPath != "" {
		return config.LoadFromFile(configPath)
	}
	return config.Load()
}

// LoadDotEnv 将 .env 中的变量加载到进程环境，已存在的环境变量不会被覆盖。
// 文件不存在时返回 false 且不报错。
func LoadDotEnv(path string) (bool, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return false, nil
	}
	if err := godotenv.Load(path); err != nil {
		return false, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return true, nil
}

// Credentials 保存生成器与嵌入服务所需的 API key。
type Credentials struct {
	Generator string
	Embedding string
}

// ResolveCredentials 按配置读取所需的密钥，缺失时返回 *config.MissingCredentialError。
func ResolveCredentials(cfg *config.Config) (Credentials, error) {
	var creds Credentials
	var err error

	if cfg.Generator.NeedsCredential() {
		creds.Generator, err = config.ResolveCredential(cfg.Generator.APIKeyEnv, "generator "+cfg.Generator.Provider)
		if err != nil {
			return Credentials{}, err
		}
	}
	if cfg.Embedding.NeedsCredential() {
		creds.Embedding, err = config.ResolveCredential(cfg.Embedding.APIKeyEnv, "embedding "+cfg.Embedding.Provider)
		if err != nil {
			return Credentials{}, err
		}
	}
	return creds, nil
}

// PrintConfigExample 向 stderr 打印配置文件位置与最小示例。
func PrintConfigExample() {
	configPath, err := config.DefaultPath()
	if err != nil {
		configPath = "~/.docqa/config/docqa.yaml"
	}

	fmt.Fprintf(os.Stderr, `Create a configuration file at %s (or run: docqa -init-config):

document:
  path: document.txt

embedding:
  provider: ollama              # "ollama" | "openai" | "hash"
  model: bge-m3

generator:
  provider: gemini              # "gemini" | "openai" | "ollama"
  model: gemini-2.5-flash
  api_key_env: GOOGLE_API_KEY

session:
  language: ar                  # "ar" | "en"
`, configPath)
}
