package main

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"cityblast/internal/config"
)

const (
	envConfigJSON    = "CITYSIM_CONFIG_JSON"
	envConfigYAMLB64 = "CITYSIM_CONFIG_YAML_B64"
)

// configFromEnv decodes a configuration handed over through the environment,
// layered on top of the defaults. It reports false when neither variable is set.
func configFromEnv() (*config.Config, bool, error) {
	jsonPayload := os.Getenv(envConfigJSON)
	yamlPayload := os.Getenv(envConfigYAMLB64)
	if jsonPayload == "" && yamlPayload == "" {
		return nil, false, nil
	}

	cfg := config.Default()
	if jsonPayload != "" {
		if err := json.Unmarshal([]byte(jsonPayload), cfg); err != nil {
			return nil, false, fmt.Errorf("decode env config json: %w", err)
		}
	} else {
		data, err := base64.StdEncoding.DecodeString(yamlPayload)
		if err != nil {
			return nil, false, fmt.Errorf("decode env config yaml: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, false, fmt.Errorf("parse env config yaml: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, false, fmt.Errorf("validate env config: %w", err)
	}
	return cfg, true, nil
}
