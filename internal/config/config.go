// Package config provides configuration management for the stock advisor.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Data   DataConfig   `mapstructure:"data"`
	LLM    LLMConfig    `mapstructure:"llm"`
	Server ServerConfig `mapstructure:"server"`
	Log    LogConfig    `mapstructure:"log"`
}

// DataConfig holds data location configuration.
type DataConfig struct {
	DBPath        string `mapstructure:"db_path"`
	KnowledgePath string `mapstructure:"knowledge_path"`
}

// LLMConfig holds language-model configuration.
type LLMConfig struct {
	Provider string `mapstructure:"provider"` // "mock" or "openai"
	Model    string `mapstructure:"model"`
	APIKey   string `mapstructure:"api_key"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `mapstructure:"level"`
	File  bool   `mapstructure:"file"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/stock-advisor"
	}
	return filepath.Join(home, ".config", "stock-advisor")
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	v.SetDefault("data.db_path", filepath.Join(configDir, "advisor.db"))
	v.SetDefault("data.knowledge_path", filepath.Join(configDir, "knowledge_index.json"))
	v.SetDefault("llm.provider", "mock")
	v.SetDefault("llm.model", "gpt-4o-mini")
	v.SetDefault("server.addr", ":8000")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", true)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			if err := createTemplateConfig(configDir); err != nil {
				return nil, fmt.Errorf("creating config template: %w", err)
			}
		} else {
			return nil, fmt.Errorf("loading config.toml: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config.toml: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("ADVISOR_DB_PATH"); v != "" {
		cfg.Data.DBPath = v
	}
	if v := os.Getenv("ADVISOR_KNOWLEDGE_PATH"); v != "" {
		cfg.Data.KnowledgePath = v
	}
	if v := os.Getenv("ADVISOR_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("ADVISOR_MOCK_LLM"); v == "1" || v == "true" {
		cfg.LLM.Provider = "mock"
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case "mock":
	case "openai":
		if c.LLM.APIKey == "" {
			return fmt.Errorf("llm provider 'openai' requires an api_key (or OPENAI_API_KEY)")
		}
		if c.LLM.Model == "" {
			return fmt.Errorf("llm provider 'openai' requires a model")
		}
	default:
		return fmt.Errorf("invalid llm provider: %s (must be 'mock' or 'openai')", c.LLM.Provider)
	}

	if c.Server.Addr == "" {
		return fmt.Errorf("server addr must not be empty")
	}
	if c.Data.DBPath == "" {
		return fmt.Errorf("data db_path must not be empty")
	}

	return nil
}

// IsMockLLM returns true when the deterministic stand-in model is selected.
func (c *Config) IsMockLLM() bool {
	return c.LLM.Provider == "mock"
}
