package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const EnvPrefix = "COPILOT"

// Config is the full runtime configuration of the server.
type Config struct {
	Debug bool `mapstructure:"debug"`
	JSON  bool `mapstructure:"json"`

	HTTP     HTTPConfig     `mapstructure:"http"`
	Store    StoreConfig    `mapstructure:"store"`
	Workflow WorkflowConfig `mapstructure:"workflow"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Renderer RendererConfig `mapstructure:"renderer"`
}

type HTTPConfig struct {
	Addr      string `mapstructure:"addr"`
	BodyLimit int    `mapstructure:"body-limit"`
}

type StoreConfig struct {
	// Backend is one of memory, file, sqlite, postgres.
	Backend     string        `mapstructure:"backend"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Dir         string        `mapstructure:"dir"`
	SQLitePath  string        `mapstructure:"sqlite-path"`
	PostgresDSN string        `mapstructure:"postgres-dsn"`
}

type WorkflowConfig struct {
	Workers       int           `mapstructure:"workers"`
	QueueSize     int           `mapstructure:"queue-size"`
	RunTimeout    time.Duration `mapstructure:"run-timeout"`
	TTL           time.Duration `mapstructure:"ttl"`
	SweepInterval time.Duration `mapstructure:"sweep-interval"`
	EagerPreview  bool          `mapstructure:"eager-preview"`
}

type CatalogConfig struct {
	// File replaces the built-in listings when set.
	File string `mapstructure:"file"`
}

type RendererConfig struct {
	ChromePath string        `mapstructure:"chrome-path"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

var backends = map[string]bool{"memory": true, "file": true, "sqlite": true, "postgres": true}

// SetDefaults registers every key with its default so environment variables
// bind even when no config file mentions them.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("debug", false)
	v.SetDefault("json", false)
	v.SetDefault("http.addr", ":3000")
	v.SetDefault("http.body-limit", 4*1024*1024)
	v.SetDefault("store.backend", "memory")
	v.SetDefault("store.timeout", 5*time.Second)
	v.SetDefault("store.dir", "data/profiles")
	v.SetDefault("store.sqlite-path", "data/copilot.db")
	v.SetDefault("store.postgres-dsn", "")
	v.SetDefault("workflow.workers", 4)
	v.SetDefault("workflow.queue-size", 64)
	v.SetDefault("workflow.run-timeout", 30*time.Second)
	v.SetDefault("workflow.ttl", time.Hour)
	v.SetDefault("workflow.sweep-interval", time.Minute)
	v.SetDefault("workflow.eager-preview", true)
	v.SetDefault("catalog.file", "")
	v.SetDefault("renderer.chrome-path", "")
	v.SetDefault("renderer.timeout", 60*time.Second)
}

// New returns a viper instance reading COPILOT_* variables, with dots and
// dashes in keys mapped to underscores (store.postgres-dsn is
// COPILOT_STORE_POSTGRES_DSN).
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// LoadDotEnv loads a .env file into the process environment. A missing file
// is not an error.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// Load reads the optional config file and decodes the result.
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	c.Store.Backend = strings.ToLower(strings.TrimSpace(c.Store.Backend))
	if !backends[c.Store.Backend] {
		return fmt.Errorf("store.backend: unsupported backend %q", c.Store.Backend)
	}
	if c.Store.Backend == "postgres" && c.Store.PostgresDSN == "" {
		return errors.New("store.postgres-dsn is required for the postgres backend")
	}
	if c.Workflow.Workers < 1 {
		return fmt.Errorf("workflow.workers must be positive, got %d", c.Workflow.Workers)
	}
	if c.Workflow.QueueSize < 1 {
		return fmt.Errorf("workflow.queue-size must be positive, got %d", c.Workflow.QueueSize)
	}
	return nil
}
