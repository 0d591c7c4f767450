package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// readYAMLFile reads a YAML config overlay. Keys mirror the yaml tags on
// Config, e.g.
//
//	server:
//	  port: "3001"
//	chat:
//	  provider: gemini
func readYAMLFile(path string) (map[string]interface{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}

	overlay := make(map[string]interface{})
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return overlay, nil
}
