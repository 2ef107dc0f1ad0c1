// Package config handles configuration loading and management for paperbar.
// It supports XDG config paths, project-level overrides, environment
// variables and an explicit config file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"github.com/ShayCichocki/paperbar/internal/store"
)

// Provider names accepted by llm.provider.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
)

const projectConfigName = ".paperbar.yaml"

// Config holds all configuration for paperbar.
type Config struct {
	LLM       LLMConfig       `mapstructure:"llm"`
	Anthropic AnthropicConfig `mapstructure:"anthropic"`
	OpenAI    OpenAIConfig    `mapstructure:"openai"`
	Defaults  DefaultsConfig  `mapstructure:"defaults"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Log       LogConfig       `mapstructure:"log"`
}

// LLMConfig selects the text generation backend.
type LLMConfig struct {
	Provider string `mapstructure:"provider"`
	// RequestsPerMinute paces generator calls; 0 means unlimited.
	RequestsPerMinute int `mapstructure:"requests_per_minute"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	APIKey     string `mapstructure:"api_key"`
	Model      string `mapstructure:"model"`
	UseBedrock bool   `mapstructure:"use_bedrock"`
	AWSRegion  string `mapstructure:"aws_region"`
	AWSProfile string `mapstructure:"aws_profile"`
}

// OpenAIConfig holds settings for OpenAI-compatible endpoints.
type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

// DefaultsConfig holds defaults applied to generated records.
type DefaultsConfig struct {
	// TaskHours is used when the generator omits estimated_hours.
	TaskHours float64 `mapstructure:"task_hours"`
}

// StorageConfig selects where records live.
type StorageConfig struct {
	Backend string `mapstructure:"backend"`
	DataDir string `mapstructure:"data_dir"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load loads configuration. Precedence (highest to lowest):
//  1. The explicit config file, when explicitPath is non-empty
//  2. Environment variables (ANTHROPIC_API_KEY, OPENAI_API_KEY, PAPERBAR_*)
//  3. Project config (.paperbar.yaml in current directory or parent)
//  4. User config ($XDG_CONFIG_HOME/paperbar/config.yaml)
//  5. Built-in defaults
func Load(explicitPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	// Load user config from XDG path
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(getUserConfigDir())
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	// Merge project config if present
	if projectConfig := findProjectConfig(); projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading project config %s: %w", projectConfig, err)
		}
		if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
			return nil, fmt.Errorf("merging project config: %w", err)
		}
	}

	bindEnv(v)

	// The explicit file beats the environment, so its keys are Set.
	if explicitPath != "" {
		explicit := viper.New()
		explicit.SetConfigFile(explicitPath)
		if err := explicit.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config from %s: %w", explicitPath, err)
		}
		for _, key := range explicit.AllKeys() {
			v.Set(key, explicit.Get(key))
		}
	}

	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// Expand ${VAR} references
	for _, f := range []struct {
		key string
		val *string
	}{
		{"anthropic.api_key", &cfg.Anthropic.APIKey},
		{"openai.api_key", &cfg.OpenAI.APIKey},
		{"storage.data_dir", &cfg.Storage.DataDir},
	} {
		expanded, err := expandEnv(*f.val)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", f.key, err)
		}
		*f.val = expanded
	}

	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = inferProvider(cfg)
	}
	cfg.LLM.Provider = strings.ToLower(cfg.LLM.Provider)
	cfg.Storage.Backend = strings.ToLower(cfg.Storage.Backend)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// inferProvider picks openai only when it is the sole provider with a key.
func inferProvider(cfg *Config) string {
	if cfg.Anthropic.APIKey == "" && cfg.OpenAI.APIKey != "" {
		return ProviderOpenAI
	}
	return ProviderAnthropic
}

// Validate checks enumerated and numeric settings.
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case ProviderAnthropic, ProviderOpenAI:
	default:
		return fmt.Errorf("invalid llm.provider %q: must be %s or %s", c.LLM.Provider, ProviderAnthropic, ProviderOpenAI)
	}
	switch c.Storage.Backend {
	case store.BackendJSON, store.BackendSQLite:
	default:
		return fmt.Errorf("invalid storage.backend %q: must be %s or %s", c.Storage.Backend, store.BackendJSON, store.BackendSQLite)
	}
	if c.LLM.RequestsPerMinute < 0 {
		return fmt.Errorf("invalid llm.requests_per_minute %d: must not be negative", c.LLM.RequestsPerMinute)
	}
	if c.Defaults.TaskHours <= 0 {
		return fmt.Errorf("invalid defaults.task_hours %v: must be positive", c.Defaults.TaskHours)
	}
	return nil
}

// bindEnv maps environment variables onto keys.
func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix("paperbar")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.BindEnv("anthropic.api_key", "ANTHROPIC_API_KEY")
	v.BindEnv("openai.api_key", "OPENAI_API_KEY")
	v.BindEnv("storage.data_dir", "PAPERBAR_DATA_DIR")
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	d := Default()

	// Resolved after loading, see inferProvider.
	v.SetDefault("llm.provider", "")
	v.SetDefault("llm.requests_per_minute", d.LLM.RequestsPerMinute)

	v.SetDefault("anthropic.api_key", "")
	v.SetDefault("anthropic.model", d.Anthropic.Model)
	v.SetDefault("anthropic.use_bedrock", false)
	v.SetDefault("anthropic.aws_region", "")
	v.SetDefault("anthropic.aws_profile", "")

	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.model", d.OpenAI.Model)
	v.SetDefault("openai.base_url", "")

	v.SetDefault("defaults.task_hours", d.Defaults.TaskHours)

	v.SetDefault("storage.backend", d.Storage.Backend)
	v.SetDefault("storage.data_dir", d.Storage.DataDir)

	v.SetDefault("log.level", d.Log.Level)
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider: ProviderAnthropic,
		},
		Anthropic: AnthropicConfig{
			Model: "claude-sonnet-4-20250514",
		},
		OpenAI: OpenAIConfig{
			Model: "gpt-4o",
		},
		Defaults: DefaultsConfig{
			TaskHours: 2.0,
		},
		Storage: StorageConfig{
			Backend: store.BackendJSON,
			DataDir: getDataDir(),
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// Keys lists every settable key in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(keyKinds))
	for k := range keyKinds {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type kind int

const (
	kindString kind = iota
	kindBool
	kindInt
	kindFloat
	kindSecret
)

var keyKinds = map[string]kind{
	"llm.provider":            kindString,
	"llm.requests_per_minute": kindInt,
	"anthropic.api_key":       kindSecret,
	"anthropic.model":         kindString,
	"anthropic.use_bedrock":   kindBool,
	"anthropic.aws_region":    kindString,
	"anthropic.aws_profile":   kindString,
	"openai.api_key":          kindSecret,
	"openai.model":            kindString,
	"openai.base_url":         kindString,
	"defaults.task_hours":     kindFloat,
	"storage.backend":         kindString,
	"storage.data_dir":        kindString,
	"log.level":               kindString,
}

// IsSecret reports whether key holds a credential that must be masked.
func IsSecret(key string) bool {
	return keyKinds[key] == kindSecret
}

// Get returns the display value of key.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "llm.provider":
		return c.LLM.Provider, nil
	case "llm.requests_per_minute":
		return strconv.Itoa(c.LLM.RequestsPerMinute), nil
	case "anthropic.api_key":
		return c.Anthropic.APIKey, nil
	case "anthropic.model":
		return c.Anthropic.Model, nil
	case "anthropic.use_bedrock":
		return strconv.FormatBool(c.Anthropic.UseBedrock), nil
	case "anthropic.aws_region":
		return c.Anthropic.AWSRegion, nil
	case "anthropic.aws_profile":
		return c.Anthropic.AWSProfile, nil
	case "openai.api_key":
		return c.OpenAI.APIKey, nil
	case "openai.model":
		return c.OpenAI.Model, nil
	case "openai.base_url":
		return c.OpenAI.BaseURL, nil
	case "defaults.task_hours":
		return strconv.FormatFloat(c.Defaults.TaskHours, 'g', -1, 64), nil
	case "storage.backend":
		return c.Storage.Backend, nil
	case "storage.data_dir":
		return c.Storage.DataDir, nil
	case "log.level":
		return c.Log.Level, nil
	default:
		return "", fmt.Errorf("unknown config key: %s", key)
	}
}

// parseValue converts raw into the type stored under key and rejects values
// Validate would refuse.
func parseValue(key, raw string) (any, error) {
	k, ok := keyKinds[key]
	if !ok {
		return nil, fmt.Errorf("unknown config key: %s", key)
	}

	switch k {
	case kindBool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: %q is not a boolean", key, raw)
		}
		return b, nil
	case kindInt:
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid value for %s: %q is not a non-negative integer", key, raw)
		}
		return n, nil
	case kindFloat:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil || f <= 0 {
			return nil, fmt.Errorf("invalid value for %s: %q is not a positive number", key, raw)
		}
		return f, nil
	}

	switch key {
	case "llm.provider":
		raw = strings.ToLower(raw)
		if raw != ProviderAnthropic && raw != ProviderOpenAI {
			return nil, fmt.Errorf("invalid value for %s: must be %s or %s", key, ProviderAnthropic, ProviderOpenAI)
		}
	case "storage.backend":
		raw = strings.ToLower(raw)
		if raw != store.BackendJSON && raw != store.BackendSQLite {
			return nil, fmt.Errorf("invalid value for %s: must be %s or %s", key, store.BackendJSON, store.BackendSQLite)
		}
	}
	return raw, nil
}

// SetUserValue writes one key into the user config file, leaving every
// other key in that file untouched. Values from the environment or other
// config layers are never copied into the file.
func SetUserValue(key, raw string) error {
	value, err := parseValue(key, raw)
	if err != nil {
		return err
	}

	userConfigDir := getUserConfigDir()
	if err := os.MkdirAll(userConfigDir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	configPath := filepath.Join(userConfigDir, "config.yaml")

	v := viper.New()
	v.SetConfigFile(configPath)
	if _, err := os.Stat(configPath); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading user config: %w", err)
		}
	}
	v.Set(key, value)

	if err := v.WriteConfigAs(configPath); err != nil {
		return fmt.Errorf("writing user config: %w", err)
	}
	return nil
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// GetProjectConfigPath returns the path to the project config file if it exists.
func GetProjectConfigPath() string {
	return findProjectConfig()
}

// getUserConfigDir returns the XDG config directory for paperbar.
func getUserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "paperbar")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "paperbar")
	}
	return filepath.Join(home, ".config", "paperbar")
}

// getDataDir returns the XDG data directory for paperbar.
func getDataDir() string {
	if xdgData := os.Getenv("XDG_DATA_HOME"); xdgData != "" {
		return filepath.Join(xdgData, "paperbar")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".local", "share", "paperbar")
	}
	return filepath.Join(home, ".local", "share", "paperbar")
}

// findProjectConfig searches for .paperbar.yaml in the current directory and parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, projectConfigName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}

	return ""
}

// expandEnv expands ${VAR} references in a string.
func expandEnv(s string) (string, error) {
	if unterminatedRef(s) {
		return "", errUnterminatedRef
	}
	return os.ExpandEnv(s), nil
}

var errUnterminatedRef = errors.New("unterminated ${ reference")

// unterminatedRef reports whether s opens a ${ reference it never closes.
// os.ExpandEnv would otherwise pass the variable name through as text.
func unterminatedRef(s string) bool {
	for {
		i := strings.Index(s, "${")
		if i < 0 {
			return false
		}
		j := strings.Index(s[i:], "}")
		if j < 0 {
			return true
		}
		s = s[i+j+1:]
	}
}
