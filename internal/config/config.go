// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/seriesml/forecast-service/internal/tensor"
)

// Config holds all configuration for the service
type Config struct {
	// Server configuration
	Port        int `mapstructure:"port"`
	MetricsPort int `mapstructure:"metrics_port"`

	// Model contract. The model path, tensor names and the three shape
	// dimensions describe one trained artifact and must be changed
	// together when the model changes.
	Model            string `mapstructure:"model"`
	InputName        string `mapstructure:"input_name"`
	OutputName       string `mapstructure:"output_name"`
	BatchCount       int    `mapstructure:"batch_count"`
	HistoryLength    int    `mapstructure:"history_length"`
	PredictionLength int    `mapstructure:"prediction_length"`

	// Encoding policy
	TruncatePolicy string `mapstructure:"truncate_policy"`
	PadPolicy      string `mapstructure:"pad_policy"`

	// Result cache (disabled when redis is empty)
	Redis    string        `mapstructure:"redis"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`

	// OpenTelemetry configuration
	OTELEnabled  bool   `mapstructure:"otel_enabled"`
	OTELEndpoint string `mapstructure:"otel_endpoint"`

	// Feature flags
	UseMockInference bool `mapstructure:"use_mock_inference"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", 8080)
	v.SetDefault("metrics_port", 9100)
	v.SetDefault("model", "models/model.onnx")
	v.SetDefault("input_name", "l_past_values_")
	v.SetDefault("output_name", "add_8")
	v.SetDefault("batch_count", 16)
	v.SetDefault("history_length", 128)
	v.SetDefault("prediction_length", 24)
	v.SetDefault("truncate_policy", string(tensor.TruncateNewest))
	v.SetDefault("pad_policy", string(tensor.PadZero))
	v.SetDefault("redis", "")
	v.SetDefault("cache_ttl", "5m")
	v.SetDefault("otel_enabled", false)
	v.SetDefault("otel_endpoint", "")
	v.SetDefault("use_mock_inference", false)
}

// Load loads configuration from environment variables and an optional
// config file. Priority (highest to lowest): env vars > config file >
// defaults.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	// Environment variable configuration
	v.SetEnvPrefix("FORECAST_SERVICE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Also read OTEL standard env vars
	if otelEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); otelEndpoint != "" {
		v.Set("otel_endpoint", otelEndpoint)
		v.Set("otel_enabled", true)
	}

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/forecast-service/")
	v.AddConfigPath("$HOME/.forecast-service")

	// Read config file if present (ignore error if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Config file was found but another error occurred
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; ignore
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// LoadWithConfigFile loads configuration from a specific config file
func LoadWithConfigFile(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	// Environment variable configuration
	v.SetEnvPrefix("FORECAST_SERVICE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read specific config file
	v.SetConfigFile(configPath)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", configPath, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// EncodePolicy returns the configured tensor encoding policy.
func (c *Config) EncodePolicy() tensor.EncodePolicy {
	return tensor.EncodePolicy{
		Truncate: tensor.TruncatePolicy(c.TruncatePolicy),
		Pad:      tensor.PadPolicy(c.PadPolicy),
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.MetricsPort <= 0 || c.MetricsPort > 65535 {
		return fmt.Errorf("invalid metrics port: %d", c.MetricsPort)
	}
	if c.Port == c.MetricsPort {
		return fmt.Errorf("port and metrics_port must be different")
	}
	if c.Model == "" && !c.UseMockInference {
		return fmt.Errorf("model path is required when not using mock inference")
	}
	if c.InputName == "" || c.OutputName == "" {
		return fmt.Errorf("input_name and output_name are required")
	}
	if c.BatchCount <= 0 || c.HistoryLength <= 0 || c.PredictionLength <= 0 {
		return fmt.Errorf("invalid model shape: batch_count=%d, history_length=%d, prediction_length=%d",
			c.BatchCount, c.HistoryLength, c.PredictionLength)
	}
	if err := c.EncodePolicy().Validate(); err != nil {
		return err
	}
	if c.Redis != "" && c.CacheTTL <= 0 {
		return fmt.Errorf("invalid cache_ttl: %s", c.CacheTTL)
	}
	return nil
}
