package config

import (
	"anamnese/internal/engine"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// rulesFile is the on-disk layout of a rules override. Tables left out of
// the file keep their stock values
type rulesFile struct {
	Version         int                          `yaml:"version"`
	Risks           *[]engine.RiskBinding        `yaml:"risks"`
	Summary         *[]engine.SummaryRule        `yaml:"summary"`
	Recommendations *[]engine.RecommendationRule `yaml:"recommendations"`
	Deepening       *[]engine.DeepeningRule      `yaml:"deepening"`
}

// LoadRules returns the stock rule tables when path is empty, otherwise the
// tables from the YAML file at path layered over them
func LoadRules(path string) (engine.Rules, error) {
	rules := engine.DefaultRules()
	if path == "" {
		return rules, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return engine.Rules{}, err
	}
	return parseRules(b, rules)
}

func parseRules(b []byte, rules engine.Rules) (engine.Rules, error) {
	var f rulesFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return engine.Rules{}, err
	}
	if f.Version != 1 {
		return engine.Rules{}, fmt.Errorf("unsupported rules version: %d", f.Version)
	}

	if f.Risks != nil {
		rules.Risks = *f.Risks
	}
	if f.Summary != nil {
		rules.Summary = *f.Summary
	}
	if f.Recommendations != nil {
		rules.Recommendations = *f.Recommendations
	}
	if f.Deepening != nil {
		rules.Deepening = *f.Deepening
	}

	if err := rules.Validate(); err != nil {
		return engine.Rules{}, fmt.Errorf("invalid rules: %w", err)
	}
	return rules, nil
}
