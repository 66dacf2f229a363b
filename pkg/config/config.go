// Package config loads genchat configuration from built-in defaults, an
// optional TOML file, and environment variables.
//
// Precedence, lowest to highest:
//   - built-in defaults
//   - ~/.genchat/config.toml (or the path passed to Load)
//   - environment variables (API keys, loaded after an optional .env file)
//
// The resulting Config is read-only after load; Watch re-loads on file
// change so a key or model added to the config takes effect without a
// restart.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Provider identifiers. These key the [providers.*] TOML sections and the
// provider registry.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderGroq   = "groq"
	ProviderOllama = "ollama"
)

// ProviderOrder is the canonical display order of providers.
var ProviderOrder = []string{ProviderOpenAI, ProviderGemini, ProviderGroq, ProviderOllama}

// Config is the complete genchat configuration.
type Config struct {
	Server    ServerConfig              `toml:"server"`
	Defaults  DefaultsConfig            `toml:"defaults"`
	Providers map[string]ProviderConfig `toml:"providers"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	// Listen is the address the server listens on (e.g., ":8080")
	Listen string `toml:"listen"`

	// DBPath is the path to the SQLite session database.
	// Empty means sessions live in memory only.
	DBPath string `toml:"db_path"`
}

// DefaultsConfig holds the initial chat settings.
type DefaultsConfig struct {
	Provider    string  `toml:"provider"`    // Initially selected provider id
	Temperature float64 `toml:"temperature"` // Initial sampling temperature
	MaxTokens   int     `toml:"max_tokens"`  // Initial response length cap
}

// ProviderConfig describes one provider: its endpoint, its model list, and
// the environment variable that carries its API key. APIKey is resolved
// from the environment at load time and never read from the file.
type ProviderConfig struct {
	DisplayName string   `toml:"display_name"`
	BaseURL     string   `toml:"base_url"`
	Models      []string `toml:"models"`
	KeyEnv      string   `toml:"key_env"`

	APIKey string `toml:"-"`
}

// RequiresKey reports whether the provider needs an API key at all.
// Ollama runs against a local endpoint and needs none.
func (p ProviderConfig) RequiresKey() bool {
	return p.KeyEnv != ""
}

// Default returns the built-in configuration: the four supported providers
// with their model lists, and the original UI defaults (Groq, temperature
// 0.7, 1024 max tokens).
func Default() Config {
	return Config{
		Server: ServerConfig{
			Listen: ":8080",
		},
		Defaults: DefaultsConfig{
			Provider:    ProviderGroq,
			Temperature: 0.7,
			MaxTokens:   1024,
		},
		Providers: map[string]ProviderConfig{
			ProviderOpenAI: {
				DisplayName: "OpenAI",
				BaseURL:     "https://api.openai.com/v1",
				Models:      []string{"gpt-4o", "gpt-4o-mini", "gpt-3.5-turbo", "gpt-4-turbo"},
				KeyEnv:      "OPENAI_API_KEY",
			},
			ProviderGemini: {
				DisplayName: "Google Gemini",
				BaseURL:     "https://generativelanguage.googleapis.com/v1beta",
				Models:      []string{"gemini-2.5-flash-lite", "gemini-2.5-flash", "gemini-2.5-pro"},
				KeyEnv:      "GOOGLE_API_KEY",
			},
			ProviderGroq: {
				DisplayName: "Groq",
				BaseURL:     "https://api.groq.com/openai/v1",
				Models:      []string{"llama-3.1-8b-instant", "llama-3.3-70b-versatile", "mixtral-8x7b-32768"},
				KeyEnv:      "GROQ_API_KEY",
			},
			ProviderOllama: {
				DisplayName: "Ollama",
				BaseURL:     "http://127.0.0.1:11434",
				Models:      []string{"llama3.3", "gemma3", "mistral-small3.2", "phi4"},
			},
		},
	}
}

// DefaultPath returns the default config file location (~/.genchat/config.toml).
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".genchat", "config.toml")
}

// Load builds the effective configuration. A missing file is not an error
// unless the path was given explicitly; the built-in defaults apply.
func Load(path string) (Config, error) {
	// A .env file is optional; real environment variables win either way.
	_ = godotenv.Load()

	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	if path != "" {
		var fileCfg Config
		if _, err := toml.DecodeFile(path, &fileCfg); err != nil {
			if explicit || !errors.Is(err, os.ErrNotExist) {
				return Config{}, fmt.Errorf("could not read config %s: %w", path, err)
			}
		} else {
			cfg.merge(fileCfg)
		}
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	cfg.resolveKeys()
	return cfg, nil
}

// merge overlays file-provided values onto the defaults. Provider entries
// merge per field so overriding one field keeps the built-in rest.
func (c *Config) merge(file Config) {
	if file.Server.Listen != "" {
		c.Server.Listen = file.Server.Listen
	}
	if file.Server.DBPath != "" {
		c.Server.DBPath = file.Server.DBPath
	}
	if file.Defaults.Provider != "" {
		c.Defaults.Provider = file.Defaults.Provider
	}
	if file.Defaults.Temperature != 0 {
		c.Defaults.Temperature = file.Defaults.Temperature
	}
	if file.Defaults.MaxTokens != 0 {
		c.Defaults.MaxTokens = file.Defaults.MaxTokens
	}
	for id, fp := range file.Providers {
		p := c.Providers[id]
		if fp.DisplayName != "" {
			p.DisplayName = fp.DisplayName
		}
		if fp.BaseURL != "" {
			p.BaseURL = fp.BaseURL
		}
		if len(fp.Models) > 0 {
			p.Models = fp.Models
		}
		if fp.KeyEnv != "" {
			p.KeyEnv = fp.KeyEnv
		}
		c.Providers[id] = p
	}
}

// resolveKeys pulls API keys out of the environment.
func (c *Config) resolveKeys() {
	for id, p := range c.Providers {
		if p.KeyEnv != "" {
			p.APIKey = os.Getenv(p.KeyEnv)
		}
		c.Providers[id] = p
	}
}

func (c *Config) validate() error {
	if c.Server.Listen == "" {
		return fmt.Errorf("server.listen must not be empty")
	}
	if _, ok := c.Providers[c.Defaults.Provider]; !ok {
		return fmt.Errorf("defaults.provider %q is not a configured provider", c.Defaults.Provider)
	}
	for id, p := range c.Providers {
		if p.BaseURL == "" {
			return fmt.Errorf("providers.%s.base_url must not be empty", id)
		}
		if len(p.Models) == 0 {
			return fmt.Errorf("providers.%s.models must not be empty", id)
		}
	}
	return nil
}
