// =============================================================================
// OpenSift default configuration
// =============================================================================
// Provides sane defaults for every configuration knob, so the service runs
// with zero external dependencies (no AI key, no adapters, telemetry off)
// out of the box.
// =============================================================================
package config

import "time"

// DefaultConfig returns the default configuration tree.
func DefaultConfig() *Config {
	return &Config{
		Server:        DefaultServerConfig(),
		AI:            DefaultAIConfig(),
		Search:        DefaultSearchConfig(),
		Observability: DefaultObservabilityConfig(),
		Auth:          DefaultAuthConfig(),
	}
}

// DefaultServerConfig returns the default HTTP server configuration.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:            "0.0.0.0",
		Port:            8080,
		MetricsPort:     9091,
		Workers:         4,
		RequestTimeout:  60 * time.Second,
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    60 * time.Second,
		ShutdownTimeout: 15 * time.Second,
		CORSOrigins:     []string{},
		RateLimitRPS:    100,
		RateLimitBurst:  200,
	}
}

// DefaultAIConfig returns the default LLM gateway configuration.
func DefaultAIConfig() AIConfig {
	return AIConfig{
		APIKey:        "",
		ModelPlanner:  "gpt-4o-mini",
		ModelVerifier: "gpt-4o-mini",
		BaseURL:       "https://api.openai.com/v1",
		MaxTokens:     2048,
		Temperature:   0.6,
		Timeout:       60 * time.Second,
		MaxRetries:    3,
	}
}

// DefaultSearchConfig returns the default search fan-out configuration.
func DefaultSearchConfig() SearchConfig {
	return SearchConfig{
		DefaultAdapter:       "wikipedia",
		MaxConcurrentQueries: 10,
		Adapters:             map[string]AdapterEntry{},
	}
}

// DefaultObservabilityConfig returns the default logging/telemetry configuration.
func DefaultObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		LogLevel:         "info",
		LogFormat:        "json",
		Enabled:          false,
		OTLPEndpoint:     "localhost:4317",
		ServiceName:      "opensift",
		TraceSampleRatio: 0.1,
		MetricsNamespace: "opensift",
	}
}

// DefaultAuthConfig returns the default (disabled) auth configuration.
func DefaultAuthConfig() AuthConfig {
	return AuthConfig{
		Enabled:   false,
		APIKeys:   []string{},
		JWTSecret: "",
	}
}
