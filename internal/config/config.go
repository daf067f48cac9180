// Package config handles data-directory and global configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Embedding providers.
const (
	ProviderHash   = "hash"
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
)

// ValidProviders lists the supported embedding.provider values.
var ValidProviders = []string{ProviderHash, ProviderOllama, ProviderOpenAI}

const (
	// DefaultDataDir is used when no data directory is configured.
	DefaultDataDir = "data"
	// ConfigFile is the config file name inside the data directory.
	ConfigFile = "config.yml"
	// CatalogFile is the SQLite catalog name inside the data directory.
	CatalogFile = "catalog.db"
	// EmbeddingCacheFile is the on-disk embedding cache inside the data directory.
	EmbeddingCacheFile = "embeddings.db"
)

// ErrUnknownKey is returned by Get and Set for keys that do not exist.
var ErrUnknownKey = errors.New("unknown configuration key")

// EmbeddingConfig selects and tunes the embedding provider.
type EmbeddingConfig struct {
	Provider   string  `yaml:"provider"`
	Model      string  `yaml:"model,omitempty"`      // Provider default when empty
	Dimensions int     `yaml:"dimensions,omitempty"` // Provider default when zero
	BaseURL    string  `yaml:"base_url,omitempty"`
	APIKeyEnv  string  `yaml:"api_key_env,omitempty"` // Environment variable holding the API key
	RateLimit  float64 `yaml:"rate_limit,omitempty"`  // Requests per second, 0 = unlimited
	Cache      bool    `yaml:"cache"`                 // Persist embeddings in EmbeddingCacheFile
	CacheSize  int     `yaml:"cache_size,omitempty"`  // In-memory entries
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins,omitempty"`
}

// Config is the configuration stored in <data_dir>/config.yml.
type Config struct {
	DefaultK  int             `yaml:"default_k"`
	TopN      int             `yaml:"top_n"`
	Overfetch int             `yaml:"overfetch"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Server    ServerConfig    `yaml:"server"`
}

// Defaults returns the configuration used when no file exists.
func Defaults() *Config {
	return &Config{
		DefaultK:  3,
		TopN:      10,
		Overfetch: 3,
		Embedding: EmbeddingConfig{
			Provider:  ProviderHash,
			APIKeyEnv: "OPENAI_API_KEY",
			CacheSize: 1024,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}

// ConfigPath returns the path to config.yml in dataDir.
func ConfigPath(dataDir string) string {
	return filepath.Join(dataDir, ConfigFile)
}

// CatalogPath returns the path to the SQLite catalog in dataDir.
func CatalogPath(dataDir string) string {
	return filepath.Join(dataDir, CatalogFile)
}

// EmbeddingCachePath returns the path to the embedding cache in dataDir.
func EmbeddingCachePath(dataDir string) string {
	return filepath.Join(dataDir, EmbeddingCacheFile)
}

// Load reads the configuration in dataDir. Fields missing from the file
// keep their defaults; a missing file yields Defaults.
func Load(dataDir string) (*Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(ConfigPath(dataDir))
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration to dataDir, creating it if needed.
func (c *Config) Save(dataDir string) error {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(ConfigPath(dataDir), data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.DefaultK <= 0 {
		return fmt.Errorf("default_k must be positive, got %d", c.DefaultK)
	}
	if c.TopN <= 0 {
		return fmt.Errorf("top_n must be positive, got %d", c.TopN)
	}
	if c.Overfetch < 1 {
		return fmt.Errorf("overfetch must be at least 1, got %d", c.Overfetch)
	}
	if err := ValidateProvider(c.Embedding.Provider); err != nil {
		return err
	}
	if c.Embedding.Dimensions < 0 {
		return fmt.Errorf("embedding.dimensions must not be negative, got %d", c.Embedding.Dimensions)
	}
	if c.Embedding.RateLimit < 0 {
		return fmt.Errorf("embedding.rate_limit must not be negative, got %g", c.Embedding.RateLimit)
	}
	return nil
}

// ValidateProvider checks that the provider value is valid.
func ValidateProvider(provider string) error {
	for _, valid := range ValidProviders {
		if provider == valid {
			return nil
		}
	}
	return fmt.Errorf("invalid embedding.provider: %s (valid: %v)", provider, ValidProviders)
}

// ApplyEnv overrides settings from the environment:
// PIDX_PROVIDER, PIDX_MODEL and OLLAMA_HOST (Ollama base URL).
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv("PIDX_PROVIDER"); v != "" {
		c.Embedding.Provider = strings.ToLower(v)
	}
	if v := getenv("PIDX_MODEL"); v != "" {
		c.Embedding.Model = v
	}
	if v := getenv("OLLAMA_HOST"); v != "" && c.Embedding.Provider == ProviderOllama && c.Embedding.BaseURL == "" {
		if !strings.Contains(v, "://") {
			v = "http://" + v
		}
		c.Embedding.BaseURL = v
	}
}

// APIKey returns the embedding API key from the configured environment
// variable, falling back to the global config.
func (c *Config) APIKey(getenv func(string) string) string {
	if c.Embedding.APIKeyEnv != "" {
		if key := getenv(c.Embedding.APIKeyEnv); key != "" {
			return key
		}
	}
	return GetOpenAIAPIKey()
}

// Keys lists the keys accepted by Get and Set.
func Keys() []string {
	keys := make([]string, 0, len(accessors))
	for k := range accessors {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns a setting by dotted key, e.g. "embedding.provider".
func (c *Config) Get(key string) (string, error) {
	a, ok := accessors[normalizeKey(key)]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return a.get(c), nil
}

// Set changes a setting by dotted key and validates the result.
// On error the configuration is unchanged.
func (c *Config) Set(key, value string) error {
	a, ok := accessors[normalizeKey(key)]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}

	next := *c
	next.Server.AllowedOrigins = append([]string(nil), c.Server.AllowedOrigins...)
	if err := a.set(&next, strings.TrimSpace(value)); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*c = next
	return nil
}

// normalizeKey accepts "embedding-provider" as well as "embedding.provider".
func normalizeKey(key string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	if _, ok := accessors[key]; ok {
		return key
	}
	if i := strings.Index(key, "-"); i > 0 {
		if dotted := key[:i] + "." + strings.ReplaceAll(key[i+1:], "-", "_"); accessors[dotted].get != nil {
			return dotted
		}
	}
	return strings.ReplaceAll(key, "-", "_")
}

type accessor struct {
	get func(*Config) string
	set func(*Config, string) error
}

var accessors = map[string]accessor{
	"default_k": {
		get: func(c *Config) string { return strconv.Itoa(c.DefaultK) },
		set: func(c *Config, v string) error { return setInt(&c.DefaultK, v) },
	},
	"top_n": {
		get: func(c *Config) string { return strconv.Itoa(c.TopN) },
		set: func(c *Config, v string) error { return setInt(&c.TopN, v) },
	},
	"overfetch": {
		get: func(c *Config) string { return strconv.Itoa(c.Overfetch) },
		set: func(c *Config, v string) error { return setInt(&c.Overfetch, v) },
	},
	"embedding.provider": {
		get: func(c *Config) string { return c.Embedding.Provider },
		set: func(c *Config, v string) error { c.Embedding.Provider = strings.ToLower(v); return nil },
	},
	"embedding.model": {
		get: func(c *Config) string { return c.Embedding.Model },
		set: func(c *Config, v string) error { c.Embedding.Model = v; return nil },
	},
	"embedding.dimensions": {
		get: func(c *Config) string { return strconv.Itoa(c.Embedding.Dimensions) },
		set: func(c *Config, v string) error { return setInt(&c.Embedding.Dimensions, v) },
	},
	"embedding.base_url": {
		get: func(c *Config) string { return c.Embedding.BaseURL },
		set: func(c *Config, v string) error { c.Embedding.BaseURL = v; return nil },
	},
	"embedding.api_key_env": {
		get: func(c *Config) string { return c.Embedding.APIKeyEnv },
		set: func(c *Config, v string) error { c.Embedding.APIKeyEnv = v; return nil },
	},
	"embedding.rate_limit": {
		get: func(c *Config) string { return strconv.FormatFloat(c.Embedding.RateLimit, 'g', -1, 64) },
		set: func(c *Config, v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("not a number: %q", v)
			}
			c.Embedding.RateLimit = f
			return nil
		},
	},
	"embedding.cache": {
		get: func(c *Config) string { return strconv.FormatBool(c.Embedding.Cache) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("not a boolean: %q", v)
			}
			c.Embedding.Cache = b
			return nil
		},
	},
	"embedding.cache_size": {
		get: func(c *Config) string { return strconv.Itoa(c.Embedding.CacheSize) },
		set: func(c *Config, v string) error { return setInt(&c.Embedding.CacheSize, v) },
	},
	"server.addr": {
		get: func(c *Config) string { return c.Server.Addr },
		set: func(c *Config, v string) error { c.Server.Addr = v; return nil },
	},
	"server.allowed_origins": {
		get: func(c *Config) string { return strings.Join(c.Server.AllowedOrigins, ",") },
		set: func(c *Config, v string) error {
			c.Server.AllowedOrigins = nil
			for _, o := range strings.Split(v, ",") {
				if o = strings.TrimSpace(o); o != "" {
					c.Server.AllowedOrigins = append(c.Server.AllowedOrigins, o)
				}
			}
			return nil
		},
	},
}

func setInt(dst *int, v string) error {
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("not an integer: %q", v)
	}
	*dst = n
	return nil
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	return filepath.Join(home, path[1:])
}
