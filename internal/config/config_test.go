package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !reflect.DeepEqual(cfg, Defaults()) {
		t.Errorf("Load() = %+v, want defaults", cfg)
	}
	if cfg.DefaultK != 3 || cfg.TopN != 10 || cfg.Overfetch != 3 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.Embedding.Provider != ProviderHash {
		t.Errorf("Provider = %q, want hash", cfg.Embedding.Provider)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	content := `default_k: 5
embedding:
  provider: ollama
  model: nomic-embed-text
`
	os.WriteFile(ConfigPath(dir), []byte(content), 0644)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.DefaultK != 5 {
		t.Errorf("DefaultK = %d, want 5", cfg.DefaultK)
	}
	if cfg.TopN != 10 {
		t.Errorf("TopN = %d, want default 10", cfg.TopN)
	}
	if cfg.Embedding.Provider != ProviderOllama || cfg.Embedding.Model != "nomic-embed-text" {
		t.Errorf("Embedding = %+v", cfg.Embedding)
	}
	if cfg.Embedding.APIKeyEnv != "OPENAI_API_KEY" {
		t.Errorf("APIKeyEnv = %q, want default", cfg.Embedding.APIKeyEnv)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Server.Addr = %q, want default", cfg.Server.Addr)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(ConfigPath(dir), []byte("default_k: [unclosed"), 0644)

	if _, err := Load(dir); err == nil {
		t.Error("Load() expected error for invalid YAML")
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "new")

	cfg := Defaults()
	cfg.TopN = 20
	cfg.Embedding.Provider = ProviderOpenAI
	cfg.Embedding.Dimensions = 1536
	cfg.Embedding.RateLimit = 2.5
	cfg.Server.AllowedOrigins = []string{"http://localhost:3000"}

	if err := cfg.Save(dir); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !reflect.DeepEqual(loaded, cfg) {
		t.Errorf("Load() = %+v, want %+v", loaded, cfg)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"zero k", func(c *Config) { c.DefaultK = 0 }, "default_k"},
		{"zero top_n", func(c *Config) { c.TopN = 0 }, "top_n"},
		{"zero overfetch", func(c *Config) { c.Overfetch = 0 }, "overfetch"},
		{"bad provider", func(c *Config) { c.Embedding.Provider = "bert" }, "embedding.provider"},
		{"negative dims", func(c *Config) { c.Embedding.Dimensions = -1 }, "dimensions"},
		{"negative rate", func(c *Config) { c.Embedding.RateLimit = -1 }, "rate_limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := Defaults()
	cfg.ApplyEnv(envMap(map[string]string{
		"PIDX_PROVIDER": "Ollama",
		"PIDX_MODEL":    "all-minilm",
		"OLLAMA_HOST":   "gpu-box:11434",
	}))

	if cfg.Embedding.Provider != ProviderOllama {
		t.Errorf("Provider = %q", cfg.Embedding.Provider)
	}
	if cfg.Embedding.Model != "all-minilm" {
		t.Errorf("Model = %q", cfg.Embedding.Model)
	}
	if cfg.Embedding.BaseURL != "http://gpu-box:11434" {
		t.Errorf("BaseURL = %q", cfg.Embedding.BaseURL)
	}

	// OLLAMA_HOST only applies to the ollama provider
	other := Defaults()
	other.ApplyEnv(envMap(map[string]string{"OLLAMA_HOST": "http://x:1"}))
	if other.Embedding.BaseURL != "" {
		t.Errorf("BaseURL = %q, want empty for hash provider", other.Embedding.BaseURL)
	}
}

func TestAPIKey(t *testing.T) {
	ResetGlobalConfigCache()
	defer ResetGlobalConfigCache()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := Defaults()
	if got := cfg.APIKey(envMap(map[string]string{"OPENAI_API_KEY": "sk-env"})); got != "sk-env" {
		t.Errorf("APIKey() = %q, want sk-env", got)
	}
	if got := cfg.APIKey(envMap(nil)); got != "" {
		t.Errorf("APIKey() = %q, want empty", got)
	}
}

func TestGetSet(t *testing.T) {
	cfg := Defaults()

	tests := []struct {
		key, value, want string
	}{
		{"default_k", "7", "7"},
		{"default-k", "8", "8"},
		{"embedding.provider", "OpenAI", "openai"},
		{"embedding-model", "text-embedding-3-small", "text-embedding-3-small"},
		{"embedding.rate_limit", "0.5", "0.5"},
		{"embedding.cache", "true", "true"},
		{"server.allowed_origins", "http://a, http://b", "http://a,http://b"},
	}
	for _, tt := range tests {
		if err := cfg.Set(tt.key, tt.value); err != nil {
			t.Fatalf("Set(%q, %q) error = %v", tt.key, tt.value, err)
		}
		got, err := cfg.Get(tt.key)
		if err != nil {
			t.Fatalf("Get(%q) error = %v", tt.key, err)
		}
		if got != tt.want {
			t.Errorf("Get(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestSet_Invalid(t *testing.T) {
	cfg := Defaults()

	if err := cfg.Set("nope", "1"); !errors.Is(err, ErrUnknownKey) {
		t.Errorf("Set(nope) error = %v, want ErrUnknownKey", err)
	}
	if _, err := cfg.Get("nope"); !errors.Is(err, ErrUnknownKey) {
		t.Errorf("Get(nope) error = %v, want ErrUnknownKey", err)
	}
	if err := cfg.Set("top_n", "many"); err == nil {
		t.Error("Set(top_n, many) expected error")
	}
	if err := cfg.Set("top_n", "0"); err == nil {
		t.Error("Set(top_n, 0) expected validation error")
	}
	if cfg.TopN != 10 {
		t.Errorf("failed Set changed TopN to %d", cfg.TopN)
	}
}

func TestKeys(t *testing.T) {
	keys := Keys()
	if len(keys) != len(accessors) {
		t.Errorf("Keys() returned %d keys, want %d", len(keys), len(accessors))
	}
	for i := 1; i < len(keys); i++ {
		if keys[i-1] > keys[i] {
			t.Error("Keys() not sorted")
		}
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}

	tests := []struct {
		in, want string
	}{
		{"~/papers", filepath.Join(home, "papers")},
		{"/abs/path", "/abs/path"},
		{"relative", "relative"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := ExpandPath(tt.in); got != tt.want {
			t.Errorf("ExpandPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPaths(t *testing.T) {
	if got := CatalogPath("d"); got != filepath.Join("d", "catalog.db") {
		t.Errorf("CatalogPath() = %q", got)
	}
	if got := EmbeddingCachePath("d"); got != filepath.Join("d", "embeddings.db") {
		t.Errorf("EmbeddingCachePath() = %q", got)
	}
}
