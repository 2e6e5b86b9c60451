package pricing

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/smartpark/core/model"
)

// LoadConfig loads a pricing table from a JSON or YAML file.
func LoadConfig(path string) (model.PricingConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.PricingConfig{}, err
	}
	defer func() { _ = f.Close() }()
	return DecodeConfig(f, strings.TrimPrefix(filepath.Ext(path), "."))
}

// DecodeConfig reads a pricing table from r. Tier keys are matched by name,
// case insensitive:
//
//	base_price: 2.0
//	rounding: half_up
//	tier_multipliers: {low: 1.0, medium: 1.25, high: 1.5, premium: 2.0}
func DecodeConfig(r io.Reader, format string) (model.PricingConfig, error) {
	var cfg model.PricingConfig
	switch strings.ToLower(format) {
	case "yaml", "yml":
		if err := yaml.NewDecoder(r).Decode(&cfg); err != nil {
			return cfg, err
		}
	case "json":
		if err := json.NewDecoder(r).Decode(&cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported format: %s", format)
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
