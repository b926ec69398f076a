package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/reelkeep/internal/domain"
	"github.com/spf13/viper"
)

const (
	appName        = "reelkeep"
	configFileName = "config.yaml"
	envPrefix      = "REELKEEP"
)

// ErrInvalidConfig is returned by Validate
var ErrInvalidConfig = errors.New("invalid configuration")

// StorageBackend selects where saved lists are kept
type StorageBackend string

const (
	BackendBolt   StorageBackend = "bolt"
	BackendMemory StorageBackend = "memory"
	BackendRedis  StorageBackend = "redis"
)

// Config holds all application configuration
type Config struct {
	Catalog CatalogConfig `mapstructure:"catalog"`
	Storage StorageConfig `mapstructure:"storage"`
	Sync    SyncConfig    `mapstructure:"sync"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// CatalogConfig holds the remote catalog endpoint and account credentials
type CatalogConfig struct {
	BaseURL      string        `mapstructure:"base_url"`
	ImageBaseURL string        `mapstructure:"image_base_url"`
	APIKey       string        `mapstructure:"api_key"`      // v3 key, sent as a query parameter
	AccessToken  string        `mapstructure:"access_token"` // v4 read token, sent as Bearer
	AccountID    int64         `mapstructure:"account_id"`
	SessionID    string        `mapstructure:"session_id"`
	Username     string        `mapstructure:"username"` // display only
	Language     string        `mapstructure:"language"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

// StorageConfig holds local storage configuration
type StorageConfig struct {
	Backend StorageBackend `mapstructure:"backend"` // "bolt", "memory" or "redis"
	Path    string         `mapstructure:"path"`    // bolt data directory
	Redis   RedisConfig    `mapstructure:"redis"`
}

// RedisConfig holds the redis backend connection settings
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// SyncConfig controls reconciliation with the remote account
type SyncConfig struct {
	OnStart       bool          `mapstructure:"on_start"`
	MirrorTimeout time.Duration `mapstructure:"mirror_timeout"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Catalog: CatalogConfig{
			BaseURL:      "https://api.themoviedb.org/3",
			ImageBaseURL: "https://image.tmdb.org/t/p",
			Language:     "en-US",
			Timeout:      15 * time.Second,
		},
		Storage: StorageConfig{
			Backend: BackendBolt,
			Path:    defaultDataPath(),
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "reelkeep:",
			},
		},
		Sync: SyncConfig{
			OnStart:       true,
			MirrorTimeout: 15 * time.Second,
		},
		Logging: LoggingConfig{
			File:  defaultLogPath(),
			Level: "INFO",
		},
	}
}

// defaultLogPath returns the default log file path for the current OS
func defaultLogPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), appName, appName+".log")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", appName, appName+".log")
	}
}

// defaultDataPath returns the default bolt data directory for the current OS
func defaultDataPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), appName, "data")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", appName, "data")
	}
}

// DefaultConfigPath returns the default config directory for the current OS
func DefaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), appName)
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", appName)
	}
}

// LoadConfig loads configuration from the default config directory, the
// working directory and the environment
func LoadConfig() (*Config, error) {
	return Load(DefaultConfigPath(), ".")
}

// Load reads config.yaml from the first of dirs that has one, then applies
// REELKEEP_* environment overrides (e.g. REELKEEP_STORAGE_BACKEND).
// A missing file is not an error.
func Load(dirs ...string) (*Config, error) {
	v := newViper()
	for _, dir := range dirs {
		v.AddConfigPath(dir)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}
	cfg.Storage.Path = expandHome(cfg.Storage.Path)
	cfg.Logging.File = expandHome(cfg.Logging.File)

	return cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// Environment variable overrides; nested keys use "_" (catalog.api_key -> REELKEEP_CATALOG_API_KEY)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults register every key so env overrides reach Unmarshal
	setAll(v.SetDefault, DefaultConfig())
	return v
}

// setAll sets every config key individually to ensure correct key names (snake_case)
func setAll(set func(key string, value any), cfg *Config) {
	set("catalog.base_url", cfg.Catalog.BaseURL)
	set("catalog.image_base_url", cfg.Catalog.ImageBaseURL)
	set("catalog.api_key", cfg.Catalog.APIKey)
	set("catalog.access_token", cfg.Catalog.AccessToken)
	set("catalog.account_id", cfg.Catalog.AccountID)
	set("catalog.session_id", cfg.Catalog.SessionID)
	set("catalog.username", cfg.Catalog.Username)
	set("catalog.language", cfg.Catalog.Language)
	set("catalog.timeout", cfg.Catalog.Timeout.String())

	set("storage.backend", string(cfg.Storage.Backend))
	set("storage.path", cfg.Storage.Path)
	set("storage.redis.addr", cfg.Storage.Redis.Addr)
	set("storage.redis.password", cfg.Storage.Redis.Password)
	set("storage.redis.db", cfg.Storage.Redis.DB)
	set("storage.redis.prefix", cfg.Storage.Redis.Prefix)

	set("sync.on_start", cfg.Sync.OnStart)
	set("sync.mirror_timeout", cfg.Sync.MirrorTimeout.String())

	set("logging.file", cfg.Logging.File)
	set("logging.level", cfg.Logging.Level)
}

// SaveConfig saves cfg to the default config directory
func SaveConfig(cfg *Config) error {
	return Save(DefaultConfigPath(), cfg)
}

// Save writes cfg as config.yaml under dir, creating dir if needed
func Save(dir string, cfg *Config) error {
	// Ensure config directory exists
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()
	setAll(v.Set, cfg)

	configFile := filepath.Join(dir, configFileName)
	if err := v.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	// Session credentials live in this file
	if err := os.Chmod(configFile, 0600); err != nil {
		return fmt.Errorf("failed to restrict config file: %w", err)
	}
	return nil
}

// SetSession stores account credentials on cfg
func (c *Config) SetSession(s domain.Session) {
	c.Catalog.SessionID = s.SessionID
	c.Catalog.AccountID = s.AccountID
	c.Catalog.Username = s.Username
}

// ClearSession removes account credentials from cfg, keeping everything else
func (c *Config) ClearSession() {
	c.SetSession(domain.Session{})
}

// Session returns the stored account session, if any
func (c *Config) Session() (domain.Session, bool) {
	if c.Catalog.SessionID == "" || c.Catalog.AccountID == 0 {
		return domain.Session{}, false
	}
	return domain.Session{
		SessionID: c.Catalog.SessionID,
		AccountID: c.Catalog.AccountID,
		Username:  c.Catalog.Username,
	}, true
}

// IsConfigured returns true if catalog credentials are set
func (c *Config) IsConfigured() bool {
	return c.Catalog.APIKey != "" || c.Catalog.AccessToken != ""
}

// Profile identifies the account whose lists are stored. Bolt data is kept
// per profile so switching accounts never mixes saved lists.
func (c *Config) Profile() string {
	if c.Catalog.AccountID == 0 {
		return c.Catalog.BaseURL
	}
	return c.Catalog.BaseURL + "#" + strconv.FormatInt(c.Catalog.AccountID, 10)
}

// Validate checks values that cannot be defaulted
func (c *Config) Validate() error {
	var errs []error
	if c.Catalog.BaseURL == "" {
		errs = append(errs, errors.New("catalog.base_url is required"))
	}
	if c.Catalog.Timeout < 0 {
		errs = append(errs, errors.New("catalog.timeout must not be negative"))
	}
	if c.Sync.MirrorTimeout < 0 {
		errs = append(errs, errors.New("sync.mirror_timeout must not be negative"))
	}

	switch c.Storage.Backend {
	case BackendBolt:
		if c.Storage.Path == "" {
			errs = append(errs, errors.New("storage.path is required for the bolt backend"))
		}
	case BackendMemory:
	case BackendRedis:
		if c.Storage.Redis.Addr == "" {
			errs = append(errs, errors.New("storage.redis.addr is required for the redis backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage.backend %q (want bolt, memory or redis)", c.Storage.Backend))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
