// Package config resolves runtime settings from flags, the config file,
// WIKITRANS_* environment variables and an optional .env file.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type StoreConfig struct {
	BaseURL            string
	SentencesPath      string
	SentencePath       string
	Timeout            time.Duration
	MaxParallel        int
	BreakerMaxFailures uint32
	BreakerOpenTimeout time.Duration
}

type SessionConfig struct {
	Token     string
	LoginPath string
}

type EditorConfig struct {
	ErrorWindow time.Duration
	Locale      string
}

type TransliterationConfig struct {
	Enabled     bool
	BaseURL     string
	Suggestions int
}

type Config struct {
	Store           StoreConfig
	Session         SessionConfig
	Editor          EditorConfig
	Transliteration TransliterationConfig
	DataDir         string
}

// SetDefaults registers every key with its default on v.
func SetDefaults(v *viper.Viper) {
	home, _ := os.UserHomeDir()
	v.SetDefault("store.base_url", "http://localhost:8000/wiki")
	v.SetDefault("store.sentences_path", "/{project}/sentence")
	v.SetDefault("store.sentence_path", "/sentence/{id}")
	v.SetDefault("store.timeout", 20*time.Second)
	v.SetDefault("store.max_parallel", 8)
	v.SetDefault("store.breaker.max_failures", 5)
	v.SetDefault("store.breaker.open_timeout", 30*time.Second)
	v.SetDefault("session.token", "")
	v.SetDefault("session.login_path", "/login/")
	v.SetDefault("editor.error_window", 5*time.Second)
	v.SetDefault("editor.locale", "en")
	v.SetDefault("transliteration.enabled", true)
	v.SetDefault("transliteration.base_url", "https://inputtools.google.com")
	v.SetDefault("transliteration.suggestions", 5)
	v.SetDefault("data.dir", filepath.Join(home, ".local", "state", "wikitrans"))
}

// Load reads the configuration from v and validates it. A .env file in the
// working directory is loaded first when present.
func Load(v *viper.Viper) (*Config, error) {
	// .env is optional; real environment variables win
	_ = godotenv.Load()
	SetDefaults(v)
	v.SetEnvPrefix("WIKITRANS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		Store: StoreConfig{
			BaseURL:            v.GetString("store.base_url"),
			SentencesPath:      v.GetString("store.sentences_path"),
			SentencePath:       v.GetString("store.sentence_path"),
			Timeout:            v.GetDuration("store.timeout"),
			MaxParallel:        v.GetInt("store.max_parallel"),
			BreakerMaxFailures: v.GetUint32("store.breaker.max_failures"),
			BreakerOpenTimeout: v.GetDuration("store.breaker.open_timeout"),
		},
		Session: SessionConfig{
			Token:     v.GetString("session.token"),
			LoginPath: v.GetString("session.login_path"),
		},
		Editor: EditorConfig{
			ErrorWindow: v.GetDuration("editor.error_window"),
			Locale:      v.GetString("editor.locale"),
		},
		Transliteration: TransliterationConfig{
			Enabled:     v.GetBool("transliteration.enabled"),
			BaseURL:     v.GetString("transliteration.base_url"),
			Suggestions: v.GetInt("transliteration.suggestions"),
		},
		DataDir: v.GetString("data.dir"),
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DBPath is the SQLite file holding the commit journal, the
// transliteration cache and saved settings.
func (c *Config) DBPath() string { return filepath.Join(c.DataDir, "wikitrans.db") }

func (c *Config) validate() error {
	if err := checkURL("store.base_url", c.Store.BaseURL); err != nil {
		return err
	}
	if !strings.Contains(c.Store.SentencesPath, "{project}") {
		return fmt.Errorf("config: store.sentences_path must contain {project}")
	}
	if !strings.Contains(c.Store.SentencePath, "{id}") {
		return fmt.Errorf("config: store.sentence_path must contain {id}")
	}
	if c.Store.Timeout <= 0 {
		return fmt.Errorf("config: store.timeout must be positive")
	}
	if c.Store.MaxParallel < 1 {
		return fmt.Errorf("config: store.max_parallel must be at least 1, got %d", c.Store.MaxParallel)
	}
	if c.Store.BreakerMaxFailures == 0 {
		return fmt.Errorf("config: store.breaker.max_failures must be at least 1")
	}
	if c.Editor.ErrorWindow <= 0 {
		return fmt.Errorf("config: editor.error_window must be positive")
	}
	if c.Transliteration.Enabled {
		if err := checkURL("transliteration.base_url", c.Transliteration.BaseURL); err != nil {
			return err
		}
	}
	if strings.TrimSpace(c.DataDir) == "" {
		return fmt.Errorf("config: data.dir is required")
	}
	return nil
}

func checkURL(key, raw string) error {
	if strings.TrimSpace(raw) == "" {
		return fmt.Errorf("config: %s is required", key)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("config: %s invalid (%q): %w", key, raw, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("config: %s invalid (%q): missing scheme or host", key, raw)
	}
	return nil
}
