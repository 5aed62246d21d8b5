// Package config loads runtime settings from the environment and an optional
// config file.
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/mrsinham/echoreport/internal/export"
	"github.com/mrsinham/echoreport/internal/report"
)

// EnvPrefix prefixes every environment variable, e.g. ECHOREPORT_OUTPUT_DIR.
const EnvPrefix = "ECHOREPORT"

// Sink kinds.
const (
	SinkDir   = "dir"
	SinkMinio = "minio"
)

type Config struct {
	OutputDir string `mapstructure:"OUTPUT_DIR" validate:"required"`
	Policy    string `mapstructure:"POLICY" validate:"oneof=lenient strict"`

	LogLevel  string `mapstructure:"LOG_LEVEL" validate:"oneof=debug info warn error"`
	LogFormat string `mapstructure:"LOG_FORMAT" validate:"oneof=json console"`
	LogFile   string `mapstructure:"LOG_FILE"`

	Sink           string `mapstructure:"SINK" validate:"oneof=dir minio"`
	MinioEndpoint  string `mapstructure:"MINIO_ENDPOINT" validate:"required_if=Sink minio"`
	MinioAccessKey string `mapstructure:"MINIO_ACCESS_KEY" validate:"required_if=Sink minio"`
	MinioSecretKey string `mapstructure:"MINIO_SECRET_KEY" validate:"required_if=Sink minio"`
	MinioBucket    string `mapstructure:"MINIO_BUCKET" validate:"required_if=Sink minio"`
	MinioPrefix    string `mapstructure:"MINIO_PREFIX"`
	MinioRegion    string `mapstructure:"MINIO_REGION"`
	MinioUseSSL    bool   `mapstructure:"MINIO_USE_SSL"`

	// Institution prefills the study form.
	Institution string `mapstructure:"INSTITUTION"`
}

var keys = []string{
	"OUTPUT_DIR", "POLICY",
	"LOG_LEVEL", "LOG_FORMAT", "LOG_FILE",
	"SINK", "MINIO_ENDPOINT", "MINIO_ACCESS_KEY", "MINIO_SECRET_KEY",
	"MINIO_BUCKET", "MINIO_PREFIX", "MINIO_REGION", "MINIO_USE_SSL",
	"INSTITUTION",
}

// Load reads settings from ECHOREPORT_* environment variables and, when path
// is not empty, from that file (.env, YAML, JSON or TOML by extension).
// Environment variables win over the file.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("OUTPUT_DIR", "informes")
	v.SetDefault("POLICY", report.PolicyLenient.String())
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("SINK", SinkDir)
	v.SetDefault("MINIO_REGION", "us-east-1")

	// Bind env vars explicitly so Unmarshal picks them up
	for _, k := range keys {
		if err := v.BindEnv(k); err != nil {
			return nil, fmt.Errorf("bind %s: %w", k, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Policy = strings.ToLower(cfg.Policy)
	cfg.Sink = strings.ToLower(cfg.Sink)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validate = validator.New()

// Validate checks the settings.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// GenerationPolicy returns the parsed policy.
func (c *Config) GenerationPolicy() report.Policy {
	p, _ := report.ParsePolicy(c.Policy)
	return p
}

// MinioConfig returns the object store settings.
func (c *Config) MinioConfig() export.MinioConfig {
	return export.MinioConfig{
		Endpoint:  c.MinioEndpoint,
		AccessKey: c.MinioAccessKey,
		SecretKey: c.MinioSecretKey,
		Bucket:    c.MinioBucket,
		Prefix:    c.MinioPrefix,
		Region:    c.MinioRegion,
		UseSSL:    c.MinioUseSSL,
	}
}

// NewSink builds the artifact sink selected by Sink.
func (c *Config) NewSink() (export.Sink, error) {
	switch c.Sink {
	case SinkMinio:
		client, err := export.NewMinioClient(c.MinioConfig())
		if err != nil {
			return nil, err
		}
		return export.NewMinioSink(client, c.MinioBucket, c.MinioPrefix), nil
	default:
		return export.NewDirSink(c.OutputDir), nil
	}
}
