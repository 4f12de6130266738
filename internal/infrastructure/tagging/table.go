package tagging

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type tableFile struct {
	Platforms []struct {
		Label   string `yaml:"label"`
		Pattern string `yaml:"pattern"`
	} `yaml:"platforms"`
}

// LoadRules reads an operator-supplied pattern table. A missing path falls
// back to the built-in table; a present but malformed file is an error.
func LoadRules(path string) ([]Rule, error) {
	if path == "" {
		return DefaultRules(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultRules(), nil
		}
		return nil, fmt.Errorf("read pattern table: %w", err)
	}

	var file tableFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse pattern table: %w", err)
	}
	if len(file.Platforms) == 0 {
		return nil, fmt.Errorf("pattern table %s defines no platforms", path)
	}

	rules := make([]Rule, 0, len(file.Platforms))
	for _, p := range file.Platforms {
		rule, err := CompileRule(p.Label, p.Pattern)
		if err != nil {
			return nil, fmt.Errorf("pattern table %s: %w", path, err)
		}
		rules = append(rules, rule)
	}
	return rules, nil
}
