// Package config loads Flytz configuration from .flytz/config.yaml, the process
// environment (optionally seeded from a .env file) and locally stored settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"flytz/internal/logging"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DirName is the per-workspace state directory.
const DirName = ".flytz"

// Setting keys shared with the web client's local storage.
const (
	SettingAmadeusClientID     = "VITE_AMADEUS_CLIENT_ID"
	SettingAmadeusClientSecret = "VITE_AMADEUS_CLIENT_SECRET"
	SettingGeminiAPIKey        = "API_KEY"
)

// SettingKeys lists every setting the CLI accepts.
var SettingKeys = []string{SettingAmadeusClientID, SettingAmadeusClientSecret, SettingGeminiAPIKey}

// Config holds all Flytz configuration.
type Config struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	Amadeus AmadeusConfig `yaml:"amadeus"`
	LLM     LLMConfig     `yaml:"llm"`
	Storage StorageConfig `yaml:"storage"`
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
}

// AmadeusConfig configures the flight data provider.
type AmadeusConfig struct {
	ClientID     string  `yaml:"client_id"`
	ClientSecret string  `yaml:"client_secret"`
	Env          string  `yaml:"env"`      // test, production
	BaseURL      string  `yaml:"base_url"` // overrides Env when set
	Timeout      string  `yaml:"timeout"`
	RateLimit    float64 `yaml:"rate_limit"` // requests per second
	Burst        int     `yaml:"burst"`
	MaxHubs      int     `yaml:"max_hubs"`
}

// LLMConfig configures the narrative advisor.
type LLMConfig struct {
	Provider string `yaml:"provider"` // gemini
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
	Timeout  string `yaml:"timeout"`
}

// StorageConfig configures local persistence.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"` // relative paths resolve against the workspace
}

// ServerConfig configures `flytz serve`.
type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	ReadTimeout    string   `yaml:"read_timeout"`
	WriteTimeout   string   `yaml:"write_timeout"`
}

// LoggingConfig configures categorized file logging.
type LoggingConfig struct {
	Level      string          `yaml:"level"`  // debug, info, warn, error
	Format     string          `yaml:"format"` // json, text
	DebugMode  bool            `yaml:"debug_mode"`
	Categories map[string]bool `yaml:"categories"`
}

const (
	amadeusTestURL       = "https://test.api.amadeus.com"
	amadeusProductionURL = "https://api.amadeus.com"
)

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "Flytz",
		Version: "1.0.0",
		Amadeus: AmadeusConfig{
			Env:       "test",
			Timeout:   "30s",
			RateLimit: 10,
			Burst:     2,
			MaxHubs:   2,
		},
		LLM: LLMConfig{
			Provider: "gemini",
			Model:    "gemini-2.5-flash",
			Timeout:  "90s",
		},
		Storage: StorageConfig{
			DatabasePath: filepath.Join(DirName, "flytz.db"),
		},
		Server: ServerConfig{
			Addr:           ":8080",
			AllowedOrigins: []string{"http://localhost:5173", "http://localhost:3000"},
			ReadTimeout:    "15s",
			WriteTimeout:   "120s",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Dir returns the state directory for a workspace.
func Dir(workspace string) string {
	return filepath.Join(workspace, DirName)
}

// DefaultPath returns the config file path for a workspace.
func DefaultPath(workspace string) string {
	return filepath.Join(Dir(workspace), "config.yaml")
}

// LoadDotEnv loads workspace/.env into the process environment. Existing
// variables win. A missing file is not an error.
func LoadDotEnv(workspace string) error {
	path := filepath.Join(workspace, ".env")
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	logging.Boot("Loaded environment from %s", path)
	return nil
}

// Load loads configuration from a YAML file. A missing file yields defaults.
// Environment overrides apply in both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides. The VITE_ names
// used by the browser build are honoured after the plain names.
func (c *Config) applyEnvOverrides() {
	if v := firstEnv("AMADEUS_CLIENT_ID", "VITE_AMADEUS_CLIENT_ID"); v != "" {
		c.Amadeus.ClientID = v
	}
	if v := firstEnv("AMADEUS_CLIENT_SECRET", "VITE_AMADEUS_CLIENT_SECRET"); v != "" {
		c.Amadeus.ClientSecret = v
	}
	if v := os.Getenv("AMADEUS_ENV"); v != "" {
		c.Amadeus.Env = v
	}
	if v := firstEnv("GEMINI_API_KEY", "API_KEY"); v != "" {
		c.LLM.APIKey = v
		c.LLM.Provider = "gemini"
	}
	if v := os.Getenv("FLYTZ_DB"); v != "" {
		c.Storage.DatabasePath = v
	}
	if v := os.Getenv("FLYTZ_ADDR"); v != "" {
		c.Server.Addr = v
	}
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

// ApplySettings fills credentials that neither the file nor the environment
// provided from locally stored settings.
func (c *Config) ApplySettings(settings map[string]string) {
	if c.Amadeus.ClientID == "" {
		c.Amadeus.ClientID = settings[SettingAmadeusClientID]
	}
	if c.Amadeus.ClientSecret == "" {
		c.Amadeus.ClientSecret = settings[SettingAmadeusClientSecret]
	}
	if c.LLM.APIKey == "" {
		c.LLM.APIKey = settings[SettingGeminiAPIKey]
	}
}

// URL resolves the provider base URL.
func (a AmadeusConfig) URL() string {
	if a.BaseURL != "" {
		return strings.TrimRight(a.BaseURL, "/")
	}
	if a.Env == "production" {
		return amadeusProductionURL
	}
	return amadeusTestURL
}

// HasCredentials reports whether live flight data can be fetched.
func (a AmadeusConfig) HasCredentials() bool {
	return a.ClientID != "" && a.ClientSecret != ""
}

// GetTimeout returns the provider timeout as a duration.
func (a AmadeusConfig) GetTimeout() time.Duration {
	return parseDuration(a.Timeout, 30*time.Second)
}

// AmadeusBaseURL resolves the provider base URL.
func (c *Config) AmadeusBaseURL() string {
	return c.Amadeus.URL()
}

// HasAmadeusCredentials reports whether live flight data can be fetched.
func (c *Config) HasAmadeusCredentials() bool {
	return c.Amadeus.HasCredentials()
}

// HasLLMKey reports whether the advisor can call the model.
func (c *Config) HasLLMKey() bool {
	return c.LLM.APIKey != ""
}

// DatabasePath resolves the SQLite path against the workspace.
func (c *Config) DatabasePath(workspace string) string {
	p := c.Storage.DatabasePath
	if p == "" {
		p = filepath.Join(DirName, "flytz.db")
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(workspace, p)
}

// GetAmadeusTimeout returns the provider timeout as a duration.
func (c *Config) GetAmadeusTimeout() time.Duration {
	return c.Amadeus.GetTimeout()
}

// GetLLMTimeout returns the advisor timeout as a duration.
func (c *Config) GetLLMTimeout() time.Duration {
	return parseDuration(c.LLM.Timeout, 90*time.Second)
}

// GetReadTimeout returns the server read timeout.
func (c *Config) GetReadTimeout() time.Duration {
	return parseDuration(c.Server.ReadTimeout, 15*time.Second)
}

// GetWriteTimeout returns the server write timeout.
func (c *Config) GetWriteTimeout() time.Duration {
	return parseDuration(c.Server.WriteTimeout, 120*time.Second)
}

func parseDuration(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

// LoggingOptions converts the logging section for logging.Initialize.
func (c *Config) LoggingOptions() logging.Options {
	return logging.Options{
		DebugMode:  c.Logging.DebugMode,
		Level:      c.Logging.Level,
		JSONFormat: c.Logging.Format == "json",
		Categories: c.Logging.Categories,
	}
}

// ValidEnvs lists the supported Amadeus environments.
var ValidEnvs = []string{"test", "production"}

// Validate validates the configuration. Missing credentials are not an error:
// the clients fall back to demo data.
func (c *Config) Validate() error {
	validEnv := false
	for _, e := range ValidEnvs {
		if c.Amadeus.Env == e {
			validEnv = true
			break
		}
	}
	if !validEnv {
		return fmt.Errorf("invalid amadeus env: %q (valid: %v)", c.Amadeus.Env, ValidEnvs)
	}
	if c.Amadeus.RateLimit <= 0 {
		return fmt.Errorf("amadeus rate_limit must be positive, got %v", c.Amadeus.RateLimit)
	}
	if c.Amadeus.MaxHubs < 1 {
		return fmt.Errorf("amadeus max_hubs must be at least 1, got %d", c.Amadeus.MaxHubs)
	}
	if c.LLM.Provider != "gemini" {
		return fmt.Errorf("invalid LLM provider: %q (only gemini is supported)", c.LLM.Provider)
	}
	return nil
}
