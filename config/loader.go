// =============================================================================
// OpenSift configuration loader
// =============================================================================
// Unified config loading: YAML file + environment variable overrides.
//
// Usage:
//
//	cfg, err := config.NewLoader().
//	    WithConfigPath("config.yaml").
//	    WithEnvPrefix("OPENSIFT").
//	    Load()
//
// Precedence: defaults -> YAML file -> environment variables.
// =============================================================================
package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// Core configuration structure
// =============================================================================

// Config is OpenSift's full configuration tree.
type Config struct {
	// Server HTTP server configuration.
	Server ServerConfig `yaml:"server" env:"SERVER"`

	// AI LLM gateway configuration.
	AI AIConfig `yaml:"ai" env:"AI"`

	// Search adapter fan-out configuration.
	Search SearchConfig `yaml:"search" env:"SEARCH"`

	// Observability logging/tracing configuration.
	Observability ObservabilityConfig `yaml:"observability" env:"OBSERVABILITY"`

	// Auth optional API gating.
	Auth AuthConfig `yaml:"auth" env:"AUTH"`
}

// ServerConfig controls the HTTP listener and request envelope.
type ServerConfig struct {
	Host            string        `yaml:"host" env:"HOST"`
	Port            int           `yaml:"port" env:"PORT"`
	MetricsPort     int           `yaml:"metrics_port" env:"METRICS_PORT"`
	Workers         int           `yaml:"workers" env:"WORKERS"`
	RequestTimeout  time.Duration `yaml:"request_timeout" env:"REQUEST_TIMEOUT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
	CORSOrigins     []string      `yaml:"cors_origins" env:"CORS_ORIGINS"`
	RateLimitRPS    int           `yaml:"rate_limit_rps" env:"RATE_LIMIT_RPS"`
	RateLimitBurst  int           `yaml:"rate_limit_burst" env:"RATE_LIMIT_BURST"`
}

// AIConfig points the LLM gateway at an OpenAI-compatible endpoint.
type AIConfig struct {
	APIKey        string        `yaml:"api_key" env:"API_KEY"`
	ModelPlanner  string        `yaml:"model_planner" env:"MODEL_PLANNER"`
	ModelVerifier string        `yaml:"model_verifier" env:"MODEL_VERIFIER"`
	BaseURL       string        `yaml:"base_url" env:"BASE_URL"`
	MaxTokens     int           `yaml:"max_tokens" env:"MAX_TOKENS"`
	Temperature   float64       `yaml:"temperature" env:"TEMPERATURE"`
	Timeout       time.Duration `yaml:"timeout" env:"TIMEOUT"`
	MaxRetries    int           `yaml:"max_retries" env:"MAX_RETRIES"`
}

// SearchConfig configures the adapter fan-out and registry.
type SearchConfig struct {
	DefaultAdapter       string                  `yaml:"default_adapter" env:"DEFAULT_ADAPTER"`
	MaxConcurrentQueries int                     `yaml:"max_concurrent_queries" env:"MAX_CONCURRENT_QUERIES"`
	Adapters             map[string]AdapterEntry `yaml:"adapters" env:"-"`
}

// AdapterEntry is one configured backend under search.adapters.
type AdapterEntry struct {
	Enabled      bool              `yaml:"enabled"`
	Hosts        []string          `yaml:"hosts"`
	IndexPattern string            `yaml:"index_pattern"`
	Username     string            `yaml:"username"`
	Password     string            `yaml:"password"`
	APIKey       string            `yaml:"api_key"`
	Extra        map[string]string `yaml:"extra"`
}

// ObservabilityConfig controls logging and optional OTLP export.
type ObservabilityConfig struct {
	LogLevel         string  `yaml:"log_level" env:"LOG_LEVEL"`
	LogFormat        string  `yaml:"log_format" env:"LOG_FORMAT"`
	Enabled          bool    `yaml:"enabled" env:"ENABLED"`
	OTLPEndpoint     string  `yaml:"otlp_endpoint" env:"OTLP_ENDPOINT"`
	ServiceName      string  `yaml:"service_name" env:"SERVICE_NAME"`
	TraceSampleRatio float64 `yaml:"trace_sample_ratio" env:"TRACE_SAMPLE_RATIO"`
	MetricsNamespace string  `yaml:"metrics_namespace" env:"METRICS_NAMESPACE"`
}

// AuthConfig optionally gates /v1/* behind a shared secret or JWT.
type AuthConfig struct {
	Enabled   bool     `yaml:"enabled" env:"ENABLED"`
	APIKeys   []string `yaml:"api_keys" env:"API_KEYS"`
	JWTSecret string   `yaml:"jwt_secret" env:"JWT_SECRET"`
}

// =============================================================================
// Loader
// =============================================================================

// Loader loads configuration via a builder.
type Loader struct {
	configPath string
	envPrefix  string
	validators []func(*Config) error
}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	return &Loader{
		envPrefix:  "OPENSIFT",
		validators: make([]func(*Config) error, 0),
	}
}

// WithConfigPath sets the YAML config file path.
func (l *Loader) WithConfigPath(path string) *Loader {
	l.configPath = path
	return l
}

// WithEnvPrefix sets the environment variable prefix.
func (l *Loader) WithEnvPrefix(prefix string) *Loader {
	l.envPrefix = prefix
	return l
}

// WithValidator adds a config validator run after loading.
func (l *Loader) WithValidator(v func(*Config) error) *Loader {
	l.validators = append(l.validators, v)
	return l
}

// Load loads configuration: defaults -> YAML file -> environment variables.
func (l *Loader) Load() (*Config, error) {
	cfg := DefaultConfig()

	if l.configPath != "" {
		if err := l.loadFromFile(cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := l.loadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	for _, v := range l.validators {
		if err := v(cfg); err != nil {
			return nil, fmt.Errorf("config validation failed: %w", err)
		}
	}

	return cfg, nil
}

// loadFromFile loads configuration from a YAML file.
func (l *Loader) loadFromFile(cfg *Config) error {
	data, err := os.ReadFile(l.configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// loadFromEnv overlays configuration from environment variables.
func (l *Loader) loadFromEnv(cfg *Config) error {
	return l.setFieldsFromEnv(reflect.ValueOf(cfg).Elem(), l.envPrefix)
}

// setFieldsFromEnv recursively sets struct fields from env tags.
func (l *Loader) setFieldsFromEnv(v reflect.Value, prefix string) error {
	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		envTag := fieldType.Tag.Get("env")
		if envTag == "" || envTag == "-" {
			continue
		}

		envKey := prefix + "_" + envTag

		if field.Kind() == reflect.Struct {
			if err := l.setFieldsFromEnv(field, envKey); err != nil {
				return err
			}
			continue
		}

		envValue := os.Getenv(envKey)
		if envValue == "" {
			continue
		}

		if err := setFieldValue(field, envValue); err != nil {
			return fmt.Errorf("failed to set %s: %w", envKey, err)
		}
	}

	return nil
}

// setFieldValue assigns a single scalar/slice field from its string form.
func setFieldValue(field reflect.Value, value string) error {
	if !field.CanSet() {
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(value)
			if err != nil {
				return err
			}
			field.SetInt(int64(d))
		} else {
			i, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return err
			}
			field.SetInt(i)
		}

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return err
		}
		field.SetUint(u)

	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		field.SetFloat(f)

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(b)

	case reflect.Slice:
		if field.Type().Elem().Kind() == reflect.String {
			parts := strings.Split(value, ",")
			for i := range parts {
				parts[i] = strings.TrimSpace(parts[i])
			}
			field.Set(reflect.ValueOf(parts))
		}
	}

	return nil
}

// =============================================================================
// Helpers
// =============================================================================

// MustLoad loads configuration, panicking on failure.
func MustLoad(path string) *Config {
	cfg, err := NewLoader().WithConfigPath(path).Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg
}

// LoadFromEnv loads configuration from environment variables only.
func LoadFromEnv() (*Config, error) {
	return NewLoader().Load()
}

// Validate checks the configuration for internally-inconsistent values.
// A ValidationError here at startup is fatal.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, "invalid server port")
	}
	if c.Search.MaxConcurrentQueries <= 0 {
		errs = append(errs, "search.max_concurrent_queries must be positive")
	}
	if c.AI.Temperature < 0 || c.AI.Temperature > 2 {
		errs = append(errs, "ai.temperature must be between 0 and 2")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors: %s", strings.Join(errs, "; "))
	}

	return nil
}
