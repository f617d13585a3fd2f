package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"AMADEUS_CLIENT_ID", "VITE_AMADEUS_CLIENT_ID",
		"AMADEUS_CLIENT_SECRET", "VITE_AMADEUS_CLIENT_SECRET",
		"AMADEUS_ENV", "GEMINI_API_KEY", "API_KEY", "FLYTZ_DB", "FLYTZ_ADDR",
	} {
		t.Setenv(k, "")
	}
}

// =============================================================================
// DEFAULTS AND ROUND TRIP
// =============================================================================

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Name != "Flytz" {
		t.Errorf("expected Name=Flytz, got %s", cfg.Name)
	}
	if cfg.Amadeus.Env != "test" {
		t.Errorf("expected Env=test, got %s", cfg.Amadeus.Env)
	}
	if cfg.Amadeus.MaxHubs != 2 {
		t.Errorf("expected MaxHubs=2, got %d", cfg.Amadeus.MaxHubs)
	}
	if cfg.LLM.Model != "gemini-2.5-flash" {
		t.Errorf("expected gemini-2.5-flash, got %s", cfg.LLM.Model)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
	if cfg.HasAmadeusCredentials() || cfg.HasLLMKey() {
		t.Error("defaults must not carry credentials")
	}
}

func TestConfig_SaveLoad(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.Amadeus.Env = "production"
	cfg.Amadeus.MaxHubs = 3
	cfg.Server.Addr = "127.0.0.1:9999"

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("expected 0600, got %v", info.Mode().Perm())
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Amadeus.Env != "production" || loaded.Amadeus.MaxHubs != 3 {
		t.Errorf("amadeus section not round-tripped: %+v", loaded.Amadeus)
	}
	if loaded.Server.Addr != "127.0.0.1:9999" {
		t.Errorf("expected addr 127.0.0.1:9999, got %s", loaded.Server.Addr)
	}
	if loaded.AmadeusBaseURL() != "https://api.amadeus.com" {
		t.Errorf("unexpected base url %s", loaded.AmadeusBaseURL())
	}
}

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Amadeus.RateLimit != 10 {
		t.Errorf("expected default rate limit, got %v", cfg.Amadeus.RateLimit)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("amadeus:\n  max_hubs: 4\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Amadeus.MaxHubs != 4 {
		t.Errorf("expected MaxHubs=4, got %d", cfg.Amadeus.MaxHubs)
	}
	if cfg.Amadeus.Env != "test" || cfg.LLM.Provider != "gemini" {
		t.Errorf("unset fields should keep defaults: %+v %+v", cfg.Amadeus, cfg.LLM)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("amadeus: [oops"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

// =============================================================================
// ENVIRONMENT AND SETTINGS
// =============================================================================

func TestConfig_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("VITE_AMADEUS_CLIENT_ID", "vite-id")
	t.Setenv("AMADEUS_CLIENT_SECRET", "plain-secret")
	t.Setenv("VITE_AMADEUS_CLIENT_SECRET", "vite-secret")
	t.Setenv("API_KEY", "gem-key")
	t.Setenv("FLYTZ_DB", "/tmp/elsewhere.db")
	t.Setenv("FLYTZ_ADDR", ":7000")

	cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Amadeus.ClientID != "vite-id" {
		t.Errorf("expected vite-id, got %s", cfg.Amadeus.ClientID)
	}
	if cfg.Amadeus.ClientSecret != "plain-secret" {
		t.Errorf("plain name should win, got %s", cfg.Amadeus.ClientSecret)
	}
	if cfg.LLM.APIKey != "gem-key" {
		t.Errorf("expected gem-key, got %s", cfg.LLM.APIKey)
	}
	if cfg.DatabasePath("/ws") != "/tmp/elsewhere.db" {
		t.Errorf("absolute db path should be kept, got %s", cfg.DatabasePath("/ws"))
	}
	if cfg.Server.Addr != ":7000" {
		t.Errorf("expected :7000, got %s", cfg.Server.Addr)
	}
}

func TestApplySettings_FillsBlanksOnly(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Amadeus.ClientID = "from-file"

	cfg.ApplySettings(map[string]string{
		SettingAmadeusClientID:     "stored-id",
		SettingAmadeusClientSecret: "stored-secret",
		SettingGeminiAPIKey:        "stored-key",
	})

	if cfg.Amadeus.ClientID != "from-file" {
		t.Errorf("file value must win, got %s", cfg.Amadeus.ClientID)
	}
	if cfg.Amadeus.ClientSecret != "stored-secret" {
		t.Errorf("expected stored-secret, got %s", cfg.Amadeus.ClientSecret)
	}
	if !cfg.HasLLMKey() {
		t.Error("expected LLM key from settings")
	}
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	ws := t.TempDir()

	if err := LoadDotEnv(ws); err != nil {
		t.Fatalf("missing .env should be fine: %v", err)
	}

	if err := os.WriteFile(filepath.Join(ws, ".env"), []byte("FLYTZ_ADDR=:6060\n"), 0644); err != nil {
		t.Fatal(err)
	}
	// godotenv.Load sets the variable directly; restore through t.Setenv.
	t.Setenv("FLYTZ_ADDR", "")
	os.Unsetenv("FLYTZ_ADDR")
	if err := LoadDotEnv(ws); err != nil {
		t.Fatalf("LoadDotEnv failed: %v", err)
	}
	if got := os.Getenv("FLYTZ_ADDR"); got != ":6060" {
		t.Errorf("expected :6060, got %q", got)
	}
}

// =============================================================================
// DERIVED VALUES AND VALIDATION
// =============================================================================

func TestDatabasePath(t *testing.T) {
	cfg := DefaultConfig()
	want := filepath.Join("/ws", ".flytz", "flytz.db")
	if got := cfg.DatabasePath("/ws"); got != want {
		t.Errorf("expected %s, got %s", want, got)
	}

	cfg.Storage.DatabasePath = ""
	if got := cfg.DatabasePath("/ws"); got != want {
		t.Errorf("empty path should fall back, got %s", got)
	}
}

func TestAmadeusURL(t *testing.T) {
	a := AmadeusConfig{Env: "test"}
	if a.URL() != "https://test.api.amadeus.com" {
		t.Errorf("unexpected %s", a.URL())
	}
	a.BaseURL = "http://127.0.0.1:1234/"
	if a.URL() != "http://127.0.0.1:1234" {
		t.Errorf("base url should override and be trimmed, got %s", a.URL())
	}
}

func TestTimeouts(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.GetAmadeusTimeout() != 30*time.Second {
		t.Errorf("got %v", cfg.GetAmadeusTimeout())
	}
	cfg.LLM.Timeout = "garbage"
	if cfg.GetLLMTimeout() != 90*time.Second {
		t.Errorf("bad duration should fall back, got %v", cfg.GetLLMTimeout())
	}
	cfg.Server.WriteTimeout = "5s"
	if cfg.GetWriteTimeout() != 5*time.Second {
		t.Errorf("got %v", cfg.GetWriteTimeout())
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad env", func(c *Config) { c.Amadeus.Env = "staging" }},
		{"zero rate", func(c *Config) { c.Amadeus.RateLimit = 0 }},
		{"zero hubs", func(c *Config) { c.Amadeus.MaxHubs = 0 }},
		{"bad provider", func(c *Config) { c.LLM.Provider = "openai" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoggingOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Logging.Format = "json"
	cfg.Logging.DebugMode = true
	opts := cfg.LoggingOptions()
	if !opts.JSONFormat || !opts.DebugMode || opts.Level != "info" {
		t.Errorf("unexpected options %+v", opts)
	}
}
