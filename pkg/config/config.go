/*
Package config manages TOML config for EffServe services.
*/
package config

import (
	"os"
	"path/filepath"

	"github.com/bastiangx/effserve/internal/utils"
	"github.com/bastiangx/effserve/pkg/fuzzy"
	"github.com/charmbracelet/log"
)

// FileName is the config file created in the config directory
const FileName = "effserve.toml"

// Config holds the entire config structure
type Config struct {
	Server       ServerConfig       `toml:"server"`
	Search       SearchConfig       `toml:"search"`
	Autocomplete AutocompleteConfig `toml:"autocomplete"`
	History      HistoryConfig      `toml:"history"`
	Data         DataConfig         `toml:"data"`
	Metrics      MetricsConfig      `toml:"metrics"`
	Terms        map[string]string  `toml:"terms"`
}

// ServerConfig has IPC server options.
type ServerConfig struct {
	MaxQueryLen int `toml:"max_query_len"`
}

// SearchConfig tunes the resolver.
type SearchConfig struct {
	FuzzyThreshold int    `toml:"fuzzy_threshold"`
	Scorer         string `toml:"scorer"`
	CacheSize      int    `toml:"cache_size"`
}

// AutocompleteConfig tunes autocomplete.
type AutocompleteConfig struct {
	Limit  int `toml:"limit"`
	MinLen int `toml:"min_len"`
}

// HistoryConfig tunes history extraction.
type HistoryConfig struct {
	NoiseFloor float64 `toml:"noise_floor"`
	UnknownLab string  `toml:"unknown_lab"`
}

// DataConfig locates the dataset.
type DataConfig struct {
	Path  string `toml:"path"`
	Watch bool   `toml:"watch"`
}

// MetricsConfig enables the Prometheus endpoint when Addr is set.
type MetricsConfig struct {
	Addr string `toml:"addr"`
}

// GetConfigDir returns the config directory with fallback priority:
// 1. ~/.config/
// 2. ~/Library/Application Support/ (macOS)
// 3. Current executable dir
// 4. builtin defaults
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Errorf("Failed to get home directory: %v", err)
		execDir, execErr := utils.GetExecutableDir()
		if execErr != nil {
			return "", execErr
		}
		return execDir, nil
	}
	primaryPath := filepath.Join(homeDir, ".config", "effserve")
	if result := utils.CheckDirStatus(primaryPath); result.Writable {
		return primaryPath, nil
	}
	macOSPath := filepath.Join(homeDir, "Library", "Application Support", "effserve")
	if result := utils.CheckDirStatus(macOSPath); result.Writable {
		return macOSPath, nil
	}
	execDir, err := utils.GetExecutableDir()
	if err != nil {
		log.Errorf("Failed to get executable directory: %v", err)
		return "", err
	}
	return execDir, nil
}

// GetDefaultConfigPath returns the default path for effserve.toml
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, FileName), nil
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from -config flag
// 2. Default path: [UserConfigDir]/effserve/effserve.toml
// 3. Builtin defaults
func LoadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	if customConfigPath != "" {
		if _, statErr := os.Stat(customConfigPath); statErr == nil {
			config, err := LoadConfig(customConfigPath)
			if err != nil {
				log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
			} else {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config, customConfigPath, nil
			}
		} else {
			log.Warnf("Custom config file not found at %s: %v. Trying default path...", customConfigPath, statErr)
		}
	}
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		return DefaultConfig(), "", nil
	}

	config, err := InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		return DefaultConfig(), "", nil
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath, nil
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			MaxQueryLen: 120,
		},
		Search: SearchConfig{
			FuzzyThreshold: 75,
			Scorer:         "wratio",
			CacheSize:      1024,
		},
		Autocomplete: AutocompleteConfig{
			Limit:  8,
			MinLen: 2,
		},
		History: HistoryConfig{
			NoiseFloor: 0.1,
			UnknownLab: "Unknown lab",
		},
		Data: DataConfig{
			Path:  "nrel_data.csv",
			Watch: false,
		},
		Metrics: MetricsConfig{},
		Terms:   map[string]string{},
	}
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)

	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig(), nil
	}

	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}

	config, err := LoadConfig(configPath)
	if err != nil {
		log.Warnf("Failed to load config from %s: %v. Using built-in defaults...", configPath, err)
		return DefaultConfig(), nil
	}
	return config, nil
}

// LoadConfig loads from a TOML file. A file that does not fully parse is
// read section by section, keeping defaults for whatever cannot be recovered.
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		return tryPartialParse(configPath)
	}
	config.sanitize()
	return config, nil
}

// tryPartialParse attempts to parse a TOML file
func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	tempConfig, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	if section, ok := utils.ExtractSection(tempConfig, "server"); ok {
		if val, ok := utils.ExtractInt64(section, "max_query_len"); ok {
			config.Server.MaxQueryLen = val
		}
	}
	if section, ok := utils.ExtractSection(tempConfig, "search"); ok {
		extractSearchConfig(section, &config.Search)
	}
	if section, ok := utils.ExtractSection(tempConfig, "autocomplete"); ok {
		if val, ok := utils.ExtractInt64(section, "limit"); ok {
			config.Autocomplete.Limit = val
		}
		if val, ok := utils.ExtractInt64(section, "min_len"); ok {
			config.Autocomplete.MinLen = val
		}
	}
	if section, ok := utils.ExtractSection(tempConfig, "history"); ok {
		if val, ok := utils.ExtractFloat(section, "noise_floor"); ok {
			config.History.NoiseFloor = val
		}
		if val, ok := utils.ExtractString(section, "unknown_lab"); ok {
			config.History.UnknownLab = val
		}
	}
	if section, ok := utils.ExtractSection(tempConfig, "data"); ok {
		if val, ok := utils.ExtractString(section, "path"); ok {
			config.Data.Path = val
		}
		if val, ok := utils.ExtractBool(section, "watch"); ok {
			config.Data.Watch = val
		}
	}
	if section, ok := utils.ExtractSection(tempConfig, "metrics"); ok {
		if val, ok := utils.ExtractString(section, "addr"); ok {
			config.Metrics.Addr = val
		}
	}
	if section, ok := utils.ExtractSection(tempConfig, "terms"); ok {
		config.Terms = utils.ExtractStringMap(section)
	}
	config.sanitize()
	return config, nil
}

// extractSearchConfig extracts search configuration from a map
func extractSearchConfig(data map[string]any, search *SearchConfig) {
	if val, ok := utils.ExtractInt64(data, "fuzzy_threshold"); ok {
		search.FuzzyThreshold = val
	}
	if val, ok := utils.ExtractString(data, "scorer"); ok {
		search.Scorer = val
	}
	if val, ok := utils.ExtractInt64(data, "cache_size"); ok {
		search.CacheSize = val
	}
}

// sanitize puts out-of-range values back to their defaults.
func (c *Config) sanitize() {
	def := DefaultConfig()
	if c.Server.MaxQueryLen <= 0 {
		log.Warnf("Invalid server.max_query_len %d, using %d", c.Server.MaxQueryLen, def.Server.MaxQueryLen)
		c.Server.MaxQueryLen = def.Server.MaxQueryLen
	}
	if c.Search.FuzzyThreshold <= 0 || c.Search.FuzzyThreshold > 100 {
		log.Warnf("Invalid search.fuzzy_threshold %d, using %d", c.Search.FuzzyThreshold, def.Search.FuzzyThreshold)
		c.Search.FuzzyThreshold = def.Search.FuzzyThreshold
	}
	if _, ok := fuzzy.ByName(c.Search.Scorer); !ok {
		log.Warnf("Unknown search.scorer %q, using %q", c.Search.Scorer, def.Search.Scorer)
		c.Search.Scorer = def.Search.Scorer
	}
	if c.Autocomplete.Limit <= 0 {
		c.Autocomplete.Limit = def.Autocomplete.Limit
	}
	if c.Autocomplete.MinLen <= 0 {
		c.Autocomplete.MinLen = def.Autocomplete.MinLen
	}
	// zero would read as "use the default" in the resolver
	if c.History.NoiseFloor <= 0 {
		log.Warnf("Invalid history.noise_floor %g, using %g", c.History.NoiseFloor, def.History.NoiseFloor)
		c.History.NoiseFloor = def.History.NoiseFloor
	}
	if c.History.UnknownLab == "" {
		c.History.UnknownLab = def.History.UnknownLab
	}
	if c.Terms == nil {
		c.Terms = map[string]string{}
	}
}

// RebuildConfigFile force creates a new effserve.toml at default
func RebuildConfigFile() error {
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		return err
	}
	if err := utils.EnsureDir(filepath.Dir(defaultPath)); err != nil {
		return err
	}
	return SaveConfig(DefaultConfig(), defaultPath)
}

// GetActiveConfigPath returns the absolute path of loaded config file
func GetActiveConfigPath(configPath string) string {
	if configPath == "" {
		if defaultPath, err := GetDefaultConfigPath(); err == nil {
			return defaultPath
		}
		return "unknown"
	}
	return utils.GetAbsolutePath(configPath)
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}
