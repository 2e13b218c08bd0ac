package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Rehodra/AI-Youtube-Analyser/core/models"
)

// ModuleSettings holds the per-module knobs for a capability call
type ModuleSettings struct {
	Model       string        `yaml:"model"`
	Temperature float64       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"-"`
}

// ModulesConfig carries analysis tuning loaded from the modules YAML file
type ModulesConfig struct {
	DefaultModel       string        `yaml:"-"`
	DefaultTemperature float64       `yaml:"-"`
	DefaultTimeout     time.Duration `yaml:"-"`
	MetadataTimeout    time.Duration `yaml:"-"`
	Modules            map[models.ModuleKind]ModuleSettings
}

type modulesYAML struct {
	Analysis struct {
		DefaultModel       string  `yaml:"default_model"`
		DefaultTemperature float64 `yaml:"default_temperature"`
		DefaultTimeout     string  `yaml:"default_timeout"`
		MetadataTimeout    string  `yaml:"metadata_timeout"`
		Modules            map[string]struct {
			Model       string  `yaml:"model"`
			Temperature float64 `yaml:"temperature"`
			Timeout     string  `yaml:"timeout"`
		} `yaml:"modules"`
	} `yaml:"analysis"`
}

// DefaultModulesConfig returns the built-in analysis tuning
func DefaultModulesConfig() *ModulesConfig {
	return &ModulesConfig{
		DefaultModel:       "gpt-4o-mini",
		DefaultTemperature: 0.7,
		DefaultTimeout:     90 * time.Second,
		MetadataTimeout:    30 * time.Second,
		Modules:            map[models.ModuleKind]ModuleSettings{},
	}
}

// LoadModulesConfig parses the modules YAML file. A missing file is not an
// error; defaults apply.
func LoadModulesConfig(path string) (*ModulesConfig, error) {
	cfg := DefaultModulesConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	var raw modulesYAML
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if raw.Analysis.DefaultModel != "" {
		cfg.DefaultModel = raw.Analysis.DefaultModel
	}
	if raw.Analysis.DefaultTemperature > 0 {
		cfg.DefaultTemperature = raw.Analysis.DefaultTemperature
	}
	if d, err := parseTimeout(raw.Analysis.DefaultTimeout); err != nil {
		return nil, err
	} else if d > 0 {
		cfg.DefaultTimeout = d
	}
	if d, err := parseTimeout(raw.Analysis.MetadataTimeout); err != nil {
		return nil, err
	} else if d > 0 {
		cfg.MetadataTimeout = d
	}

	for name, m := range raw.Analysis.Modules {
		kind := models.ModuleKind(name)
		if !kind.IsRequestable() {
			return nil, fmt.Errorf("unknown module %q in %s", name, path)
		}
		settings := ModuleSettings{
			Model:       m.Model,
			Temperature: m.Temperature,
		}
		if d, err := parseTimeout(m.Timeout); err != nil {
			return nil, err
		} else {
			settings.Timeout = d
		}
		cfg.Modules[kind] = settings
	}

	return cfg, nil
}

// Settings returns the effective settings for a module, filling in defaults
func (c *ModulesConfig) Settings(kind models.ModuleKind) ModuleSettings {
	s := c.Modules[kind]
	if s.Model == "" {
		s.Model = c.DefaultModel
	}
	if s.Temperature <= 0 {
		s.Temperature = c.DefaultTemperature
	}
	if s.Timeout <= 0 {
		s.Timeout = c.DefaultTimeout
	}
	return s
}

func parseTimeout(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q: %w", s, err)
	}
	return d, nil
}
