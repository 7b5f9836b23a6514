package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const defaultConfigRelPath = ".specgen/config.yaml"

type LLMConfig struct {
	APIKey      string  `yaml:"api_key"`
	BaseURL     string  `yaml:"base_url"`
	Model       string  `yaml:"model"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
}

type ScanConfig struct {
	MaxFileBytes     int64    `yaml:"max_file_bytes"`
	RespectGitignore bool     `yaml:"respect_gitignore"`
	Exclude          []string `yaml:"exclude"`
}

type SanitizeConfig struct {
	Enabled     bool     `yaml:"enabled"`
	Keys        []string `yaml:"keys"`
	Replacement string   `yaml:"replacement"`
}

type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	DBPath  string `yaml:"db_path"`
}

type PreviewConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type Config struct {
	LLM      LLMConfig      `yaml:"llm"`
	Scan     ScanConfig     `yaml:"scan"`
	Sanitize SanitizeConfig `yaml:"sanitize"`
	History  HistoryConfig  `yaml:"history"`
	Preview  PreviewConfig  `yaml:"preview"`
	Log      LogConfig      `yaml:"log"`
}

// Load loads YAML config, then applies env overrides. Defaults are applied
// before the file is parsed, so explicit false values in the file win over
// default-true booleans.
func Load(configPath string) (*Config, error) {
	cfg := &Config{}
	cfg.SetDefaults()

	if configPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		configPath = filepath.Join(home, defaultConfigRelPath)
	}

	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read config: %w", err)
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

func (c *Config) SetDefaults() {
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = "https://api.openai.com/v1"
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "gpt-4o-mini"
	}
	if c.LLM.MaxTokens == 0 {
		c.LLM.MaxTokens = 4096
	}
	if c.LLM.Temperature == 0 {
		c.LLM.Temperature = 0.2
	}
	if c.Scan.MaxFileBytes == 0 {
		c.Scan.MaxFileBytes = 100000
	}
	c.Scan.RespectGitignore = true
	if len(c.Sanitize.Keys) == 0 {
		c.Sanitize.Keys = []string{"api_key", "apikey", "access_token", "refresh_token", "secret", "password", "token", "authorization", "credential"}
	}
	if c.Sanitize.Replacement == "" {
		c.Sanitize.Replacement = "***REDACTED***"
	}
	c.History.Enabled = true
	if c.Preview.Host == "" {
		c.Preview.Host = "127.0.0.1"
	}
	if c.Preview.Port == 0 {
		c.Preview.Port = 8686
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// ValidateGenerate enforces what a generation run needs.
func (c *Config) ValidateGenerate() error {
	if strings.TrimSpace(c.LLM.APIKey) == "" {
		return errors.New("no API key configured: pass --api-key, set OPENAI_API_KEY, or add llm.api_key to the config file")
	}
	if strings.TrimSpace(c.LLM.BaseURL) == "" {
		return errors.New("llm.base_url cannot be empty")
	}
	return nil
}

// DefaultDir returns the per-user specgen directory.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".specgen"), nil
}

// DBPath resolves the history database location; empty config means the
// default under the per-user directory.
func (c *Config) DBPath() (string, error) {
	if c.History.DBPath != "" {
		return c.History.DBPath, nil
	}
	dir, err := DefaultDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "specgen.db"), nil
}

func applyEnvOverrides(c *Config) {
	setString(&c.LLM.APIKey, "SPECGEN_LLM_API_KEY")
	setString(&c.LLM.BaseURL, "SPECGEN_LLM_BASE_URL")
	setString(&c.LLM.Model, "SPECGEN_LLM_MODEL")
	setInt(&c.LLM.MaxTokens, "SPECGEN_LLM_MAX_TOKENS")
	setFloat(&c.LLM.Temperature, "SPECGEN_LLM_TEMPERATURE")
	setInt64(&c.Scan.MaxFileBytes, "SPECGEN_SCAN_MAX_FILE_BYTES")
	setBool(&c.Scan.RespectGitignore, "SPECGEN_SCAN_RESPECT_GITIGNORE")
	setBool(&c.Sanitize.Enabled, "SPECGEN_SANITIZE_ENABLED")
	setBool(&c.History.Enabled, "SPECGEN_HISTORY_ENABLED")
	setString(&c.History.DBPath, "SPECGEN_HISTORY_DB_PATH")
	setString(&c.Preview.Host, "SPECGEN_PREVIEW_HOST")
	setInt(&c.Preview.Port, "SPECGEN_PREVIEW_PORT")
	setString(&c.Log.Level, "SPECGEN_LOG_LEVEL")
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt64(dst *int64, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setFloat(dst *float64, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}
