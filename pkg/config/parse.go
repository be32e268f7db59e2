package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// DecodeConfigYAML decodes YAML bytes on top of Default() without
// validating. Keys absent from the document keep their default value.
func DecodeConfigYAML(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config yaml: %w", err)
	}
	return cfg, nil
}

// ParseConfigYAML decodes a Config from YAML bytes and validates it.
func ParseConfigYAML(data []byte) (*Config, error) {
	cfg, err := DecodeConfigYAML(data)
	if err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
