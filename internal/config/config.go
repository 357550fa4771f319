package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alexanderramin/csrdash/internal/domain"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces every environment override, e.g. CSRDASH_DB.
const EnvPrefix = "CSRDASH"

// Config holds the resolved settings for one csrdash invocation.
type Config struct {
	DBPath        string `mapstructure:"db"`
	StatePath     string `mapstructure:"state"`
	UserID        string `mapstructure:"user"`
	Role          string `mapstructure:"role"`
	DeleteDelayMs int    `mapstructure:"delete_delay_ms"`
	LogUseCases   bool   `mapstructure:"log_use_cases"`
}

// DefaultConfig places the database and state file under home/.csrdash.
// The default identity is a local admin.
func DefaultConfig(home string) Config {
	dir := filepath.Join(home, ".csrdash")
	return Config{
		DBPath:        filepath.Join(dir, "csrdash.db"),
		StatePath:     filepath.Join(dir, "state.yaml"),
		UserID:        "local",
		Role:          string(domain.RoleAdmin),
		DeleteDelayMs: 10000,
	}
}

// DeleteDelay is the undo window for scheduled deletions.
func (c Config) DeleteDelay() time.Duration {
	return time.Duration(c.DeleteDelayMs) * time.Millisecond
}

// UserRole parses Role.
func (c Config) UserRole() (domain.UserRole, error) {
	return domain.ParseUserRole(c.Role)
}

// Validate rejects settings the application cannot start with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.DBPath) == "" {
		return errors.New("config: db path is empty")
	}
	if strings.TrimSpace(c.UserID) == "" {
		return errors.New("config: user is empty")
	}
	if _, err := c.UserRole(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.DeleteDelayMs < 0 {
		return fmt.Errorf("config: delete_delay_ms must not be negative, got %d", c.DeleteDelayMs)
	}
	return nil
}

// Load resolves configuration from defaults, the YAML config file, a .env
// file in the working directory and CSRDASH_* environment variables, in
// increasing precedence.
func Load() (Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, fmt.Errorf("finding home directory: %w", err)
	}
	return load(home, ".env")
}

func load(home, dotEnvPath string) (Config, error) {
	if err := loadDotEnv(dotEnvPath); err != nil {
		return Config{}, err
	}

	defaults := DefaultConfig(home)
	v := viper.New()
	v.SetDefault("db", defaults.DBPath)
	v.SetDefault("state", defaults.StatePath)
	v.SetDefault("user", defaults.UserID)
	v.SetDefault("role", defaults.Role)
	v.SetDefault("delete_delay_ms", defaults.DeleteDelayMs)
	v.SetDefault("log_use_cases", defaults.LogUseCases)

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	path := os.Getenv(EnvPrefix + "_CONFIG")
	if path == "" {
		path = filepath.Join(home, ".csrdash", "config.yaml")
	}
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("checking config %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	return cfg, nil
}

// loadDotEnv applies a .env file when present. Variables already set in the
// environment win.
func loadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("checking %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}
