package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Catalog Catalog `mapstructure:"catalog"`
	Player  Player  `mapstructure:"player"`
	Logging Logging `mapstructure:"logging"`
}

// Catalog holds manifest endpoint and cache configuration
type Catalog struct {
	ManifestURL string `mapstructure:"manifest_url"` // Base URL serving playlists.json
	CacheDir    string `mapstructure:"cache_dir"`    // Directory for the catalog database
	PageSize    int    `mapstructure:"page_size"`    // Entries per page for listings
}

// Player holds playback preferences
type Player struct {
	DRMRobustness string `mapstructure:"drm_robustness"` // Widevine robustness hint passed to the embed handler
}

// Logging holds logging configuration
type Logging struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Catalog: Catalog{
			ManifestURL: "",
			CacheDir:    defaultCachePath(),
			PageSize:    20,
		},
		Player: Player{
			DRMRobustness: "",
		},
		Logging: Logging{
			File:  defaultLogPath(),
			Level: "INFO",
		},
	}
}

// defaultLogPath returns the default log file path for the current OS
func defaultLogPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "cinecraze", "cinecraze.log")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "cinecraze", "cinecraze.log")
	}
}

// defaultCachePath returns the default cache directory for the current OS
func defaultCachePath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "cinecraze", "cache")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "cinecraze", "cache")
	}
}

// defaultConfigPath returns the default config directory for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "cinecraze")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "cinecraze")
	}
}

// Load loads configuration from file and environment
func Load() (*Config, error) {
	cfg := Default()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(defaultConfigPath())
	viper.AddConfigPath(".")

	// Environment variable overrides
	viper.SetEnvPrefix("CINECRAZE")
	viper.AutomaticEnv()

	// Read config file if it exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	if cfg.Catalog.PageSize <= 0 {
		cfg.Catalog.PageSize = 20
	}

	return cfg, nil
}

// Save writes the current configuration to file
func Save(cfg *Config) error {
	configPath := defaultConfigPath()

	if err := os.MkdirAll(configPath, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Set fields individually to ensure correct key names (snake_case)
	viper.Set("catalog.manifest_url", cfg.Catalog.ManifestURL)
	viper.Set("catalog.cache_dir", cfg.Catalog.CacheDir)
	viper.Set("catalog.page_size", cfg.Catalog.PageSize)
	viper.Set("player.drm_robustness", cfg.Player.DRMRobustness)
	viper.Set("logging.file", cfg.Logging.File)
	viper.Set("logging.level", cfg.Logging.Level)

	configFile := filepath.Join(configPath, "config.yaml")
	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// IsConfigured returns true if the manifest URL is set
func (c *Config) IsConfigured() bool {
	return c.Catalog.ManifestURL != ""
}

// ClearCache removes all cached catalog data
func ClearCache(cfg *Config) error {
	if err := os.RemoveAll(cfg.Catalog.CacheDir); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}
