package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/smartpark/core/factory"
	"github.com/kilianp07/smartpark/core/metrics"
	"github.com/kilianp07/smartpark/core/scheduler"
	"github.com/kilianp07/smartpark/infra/mqtt"
)

// EnvPrefix prefixes environment overrides. Nested keys are separated by a
// double underscore: PARK_PRICING__BASE_PRICE=2.5.
const EnvPrefix = "PARK_"

type Config struct {
	HTTP       HTTPConfig           `json:"http"`
	Pricing    PricingConfig        `json:"pricing"`
	Prediction factory.ModuleConfig `json:"prediction"`
	Store      StoreConfig          `json:"store"`
	Metrics    metrics.Config       `json:"metrics"`
	MQTT       mqtt.Config          `json:"mqtt"`
	Watcher    scheduler.Config     `json:"watcher"`
	Sentry     SentryConfig         `json:"sentry"`
	Log        LogConfig            `json:"log"`
	Training   TrainingConfig       `json:"training"`
}

// HTTPConfig configures the REST API.
type HTTPConfig struct {
	Addr string `json:"addr"`
	// Mode is the gin mode: debug, release or test.
	Mode string `json:"mode"`
}

// StoreConfig locates the model database.
type StoreConfig struct {
	Path string `json:"path"`
}

// Load reads the configuration file at path, applies PARK_ environment
// overrides, then defaults and validation. An empty path uses the
// environment only.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		var parser koanf.Parser
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, err
		}
	}
	// Optional environment overrides
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults fills every section. The seasonal provider reads its models
// from the configured store unless a path is given explicitly.
func (c *Config) SetDefaults() {
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}
	if c.HTTP.Mode == "" {
		c.HTTP.Mode = "release"
	}
	if c.Store.Path == "" {
		c.Store.Path = "smartpark.db"
	}
	if c.Prediction.Type == "" {
		c.Prediction.Type = "seasonal"
	}
	if c.Prediction.Type == "seasonal" {
		if c.Prediction.Conf == nil {
			c.Prediction.Conf = map[string]any{}
		}
		if _, ok := c.Prediction.Conf["path"]; !ok {
			c.Prediction.Conf["path"] = c.Store.Path
		}
	}
	c.Pricing.SetDefaults()
	c.MQTT.SetDefaults()
	c.Training.SetDefaults()
}

// Validate checks every section.
func (c Config) Validate() error {
	switch c.HTTP.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("unknown http mode %q", c.HTTP.Mode)
	}
	if err := c.Pricing.Validate(); err != nil {
		return fmt.Errorf("pricing: %w", err)
	}
	if err := c.MQTT.Validate(); err != nil {
		return fmt.Errorf("mqtt: %w", err)
	}
	if err := c.Watcher.Validate(); err != nil {
		return fmt.Errorf("watcher: %w", err)
	}
	if err := c.Log.Validate(); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	if err := c.Training.Validate(); err != nil {
		return fmt.Errorf("training: %w", err)
	}
	return nil
}
