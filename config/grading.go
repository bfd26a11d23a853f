package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// GradingConfig is the reference data used when grading pallets.
type GradingConfig struct {
	// UnitWeights maps a pack size label (e.g. "4kg") to kilograms per box.
	UnitWeights map[string]float64 `yaml:"unit_weights"`
	Varieties   []string           `yaml:"varieties"`
	SizeCodes   []int              `yaml:"size_codes"`
	Classes     []int              `yaml:"classes"`
}

func DefaultGradingConfig() GradingConfig {
	sizes := make([]int, 0, 11)
	for s := 12; s <= 32; s += 2 {
		sizes = append(sizes, s)
	}
	return GradingConfig{
		UnitWeights: map[string]float64{"4kg": 4, "10kg": 10},
		Varieties:   []string{"Fuerte", "Hass"},
		SizeCodes:   sizes,
		Classes:     []int{1, 2},
	}
}

// LoadGradingConfig reads the YAML file at path. A missing file yields the defaults.
func LoadGradingConfig(path string) (GradingConfig, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		GetLogger().WithField("path", path).Info("grading config not found, using defaults")
		return DefaultGradingConfig(), nil
	}
	if err != nil {
		return GradingConfig{}, err
	}
	return ParseGradingConfig(raw)
}

func ParseGradingConfig(raw []byte) (GradingConfig, error) {
	cfg := DefaultGradingConfig()
	var file GradingConfig
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return GradingConfig{}, fmt.Errorf("parse grading config: %w", err)
	}
	if len(file.UnitWeights) > 0 {
		cfg.UnitWeights = file.UnitWeights
	}
	if len(file.Varieties) > 0 {
		cfg.Varieties = file.Varieties
	}
	if len(file.SizeCodes) > 0 {
		cfg.SizeCodes = file.SizeCodes
	}
	if len(file.Classes) > 0 {
		cfg.Classes = file.Classes
	}
	for pack, kg := range cfg.UnitWeights {
		if kg <= 0 {
			return GradingConfig{}, fmt.Errorf("unit weight for %s must be positive, got %v", pack, kg)
		}
	}
	return cfg, nil
}
