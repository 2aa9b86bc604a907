package config

import (
	"errors"
	"os"

	"gopkg.in/yaml.v3"
)

// AirtableConfig configures the origin dataset client.
type AirtableConfig struct {
	BaseURL  string `yaml:"base_url"`
	View     string `yaml:"view"`
	TokenEnv string `yaml:"token_env"`
}

// EmbeddingsConfig configures the embeddings client.
type EmbeddingsConfig struct {
	BaseURL   string `yaml:"base_url"`
	APIKeyEnv string `yaml:"api_key_env"`
}

// SyncConfig configures the sweep engine and its end-of-sweep side effect.
type SyncConfig struct {
	IntervalSecs int    `yaml:"interval_secs"`
	NotifyRepo   string `yaml:"notify_repo"` // "owner/name"; empty disables
	TokenEnv     string `yaml:"token_env"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
}

// Config is the root application configuration.
type Config struct {
	DataDir    string           `yaml:"data_dir"`
	Server     ServerConfig     `yaml:"server"`
	Airtable   AirtableConfig   `yaml:"airtable"`
	Embeddings EmbeddingsConfig `yaml:"embeddings"`
	Sync       SyncConfig       `yaml:"sync"`
}

// Load reads a config from path. A missing file yields defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := &Config{}
			applyDefaults(cfg)
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

// AirtableToken returns the origin API token from the environment.
func (c *Config) AirtableToken() string {
	return os.Getenv(c.Airtable.TokenEnv)
}

// EmbeddingsKey returns the embeddings API key from the environment.
func (c *Config) EmbeddingsKey() string {
	return os.Getenv(c.Embeddings.APIKeyEnv)
}

// NotifyToken returns the repository update token from the environment.
func (c *Config) NotifyToken() string {
	return os.Getenv(c.Sync.TokenEnv)
}

func applyDefaults(cfg *Config) {
	if cfg.DataDir == "" {
		cfg.DataDir = "./data"
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "127.0.0.1"
	}
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	if cfg.Airtable.TokenEnv == "" {
		cfg.Airtable.TokenEnv = "AIRTABLE_PAT"
	}
	if cfg.Embeddings.APIKeyEnv == "" {
		cfg.Embeddings.APIKeyEnv = "OPENAI_KEY"
	}
	if cfg.Sync.IntervalSecs == 0 {
		cfg.Sync.IntervalSecs = 1
	}
	if cfg.Sync.TokenEnv == "" {
		cfg.Sync.TokenEnv = "GITHUB_TOKEN"
	}
}
