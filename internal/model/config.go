package model

import "time"

// Config holds all runtime settings. Field tags serve both viper
// (mapstructure) and the YAML written by `config init`.
type Config struct {
	HTTP   HTTPConfig   `yaml:"http" mapstructure:"http"`
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Cache  CacheConfig  `yaml:"cache" mapstructure:"cache"`
	Output OutputConfig `yaml:"output" mapstructure:"output"`
}

// HTTPConfig controls how the report is fetched
type HTTPConfig struct {
	UserAgent     string        `yaml:"user_agent" mapstructure:"user_agent"`
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`               // 0 disables the timeout
	MaxBodyBytes  int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"` // 0 means unlimited
	HTTPProxy     string        `yaml:"http_proxy" mapstructure:"http_proxy"`
	HTTPSProxy    string        `yaml:"https_proxy" mapstructure:"https_proxy"`
	RespectRobots bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
	TempDir       string        `yaml:"temp_dir" mapstructure:"temp_dir"` // empty uses os.TempDir()
}

// StoreConfig controls where the arrests database lives
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// CacheConfig controls the optional fetch cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// OutputConfig controls console output
type OutputConfig struct {
	Verbose bool `yaml:"verbose" mapstructure:"verbose"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			UserAgent: "arrests/0.1 (+https://github.com/ppiankov/arrests)",
		},
		Store: StoreConfig{
			Path: "arrests.db",
		},
		Cache: CacheConfig{
			Enabled:   false,
			Dir:       ".arrests-cache",
			MemoryTTL: 10 * time.Minute,
			DiskTTL:   24 * time.Hour,
		},
	}
}
