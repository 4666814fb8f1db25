// Package config resolves runtime settings from defaults, an optional
// YAML file and HEYQ_-prefixed environment variables, in increasing
// precedence.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the resolved runtime configuration.
type Config struct {
	Browser     string        `mapstructure:"browser"`
	Headed      bool          `mapstructure:"headed"`
	SlowMo      time.Duration `mapstructure:"slow_mo"`
	DefaultSite string        `mapstructure:"default_site"`
	LogLevel    string        `mapstructure:"log_level"`
	SelectorTTL time.Duration `mapstructure:"selector_ttl"`
	SecretsFile string        `mapstructure:"secrets_file"`
	TracePath   string        `mapstructure:"trace_path"`
	LLM         LLMConfig     `mapstructure:"llm"`
}

// LLMConfig controls the optional provider-backed parser.
type LLMConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Provider string `mapstructure:"provider"`
}

// Load resolves the configuration. path may be empty; a missing file
// is only an error when one was explicitly named.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetDefault("browser", "chromium")
	v.SetDefault("headed", false)
	v.SetDefault("slow_mo", 0)
	v.SetDefault("default_site", "saucedemo")
	v.SetDefault("log_level", "info")
	v.SetDefault("selector_ttl", 5*time.Minute)
	v.SetDefault("secrets_file", "")
	v.SetDefault("trace_path", "")
	v.SetDefault("llm.enabled", false)
	v.SetDefault("llm.provider", "anthropic")

	v.SetEnvPrefix("HEYQ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}
