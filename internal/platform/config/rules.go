package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Rules tunes screening without a redeploy. Empty lists keep the built-in
// defaults.
//
//	trusted_domains:
//	  - reuters.com
//	  - treasury.gov
//	risk_keywords:
//	  - sanction
//	  - money laundering
type Rules struct {
	TrustedDomains []string `yaml:"trusted_domains"`
	RiskKeywords   []string `yaml:"risk_keywords"`
}

// LoadRules reads a YAML rules file.
func LoadRules(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load rules %q: %w", path, err)
	}
	var rules Rules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("parse rules %q: %w", path, err)
	}
	return &rules, nil
}
