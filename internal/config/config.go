// Package config resolves settings from flags, environment, an optional
// config file and defaults, in that order of priority.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/valpere/promptg/internal/detector"
	"github.com/valpere/promptg/internal/enhancer"
)

// EnvPrefix prefixes every environment variable, e.g. PROMPTG_API_MODEL.
const EnvPrefix = "PROMPTG"

type APIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
	// Key is a credential supplied by the environment (GROQ_API_KEY). It is
	// used for the current process only and never persisted.
	Key string `mapstructure:"key"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type PromptConfig struct {
	InlineAdvisory bool `mapstructure:"inline_advisory"`
	Raw            bool `mapstructure:"raw"`
}

type HeuristicConfig struct {
	Threshold float64  `mapstructure:"threshold"`
	Words     []string `mapstructure:"words"`
	Marker    string   `mapstructure:"marker"`
}

type ServerConfig struct {
	Addr        string   `mapstructure:"addr"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

type Config struct {
	API       APIConfig       `mapstructure:"api"`
	DB        string          `mapstructure:"db"`
	History   bool            `mapstructure:"history"`
	Log       LogConfig       `mapstructure:"log"`
	Prompt    PromptConfig    `mapstructure:"prompt"`
	Heuristic HeuristicConfig `mapstructure:"heuristic"`
	Server    ServerConfig    `mapstructure:"server"`
}

// New returns a viper instance with defaults and environment bindings.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("api.key", "GROQ_API_KEY", EnvPrefix+"_API_KEY")

	return v
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", enhancer.DefaultBaseURL)
	v.SetDefault("api.model", enhancer.DefaultModel)
	v.SetDefault("api.timeout", 60*time.Second)
	v.SetDefault("api.key", "")
	v.SetDefault("db", "./data/promptg.db")
	v.SetDefault("history", true)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("prompt.inline_advisory", true)
	v.SetDefault("prompt.raw", false)
	v.SetDefault("heuristic.threshold", detector.DefaultThreshold)
	v.SetDefault("heuristic.words", detector.DefaultWords)
	v.SetDefault("heuristic.marker", detector.DefaultMarker)
	v.SetDefault("server.addr", "127.0.0.1:8080")
	v.SetDefault("server.cors_origins", []string{"http://localhost:3000"})
}

// Load decodes v into a Config and checks it.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api.base_url must be an absolute URL, got %q", c.API.BaseURL)
	}
	if strings.TrimSpace(c.API.Model) == "" {
		return fmt.Errorf("api.model is required")
	}
	if c.API.Timeout < 0 {
		return fmt.Errorf("api.timeout must not be negative")
	}
	if c.Heuristic.Threshold < 0 || c.Heuristic.Threshold > 1 {
		return fmt.Errorf("heuristic.threshold must be between 0 and 1, got %v", c.Heuristic.Threshold)
	}
	if len(c.Heuristic.Words) == 0 {
		return fmt.Errorf("heuristic.words must not be empty")
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error, got %q", c.Log.Level)
	}
	return nil
}

// LanguageHeuristic builds the language heuristic described by the config.
func (c Config) LanguageHeuristic() *detector.Heuristic {
	return detector.New(c.Heuristic.Words, c.Heuristic.Threshold, c.Heuristic.Marker)
}
