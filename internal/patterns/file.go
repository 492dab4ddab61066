package patterns

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/medhold/dispute-cli/internal/model"
)

// FileConfig is the on-disk catalog layout. See configs/patterns.example.yaml.
type FileConfig struct {
	Defaults   FileDefaults    `yaml:"defaults"`
	Rules      []model.Pattern `yaml:"rules"`
	ClaimPairs []ClaimPair     `yaml:"claim_pairs"`
}

// FileDefaults fill in rule fields left unset in the file.
type FileDefaults struct {
	Strength float64 `yaml:"strength"`
	BaseRate float64 `yaml:"base_rate"`
}

// LoadFile reads a pattern catalog from a YAML file and validates it into a
// Library.
func LoadFile(path string) (*Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "patterns: read catalog %s", path)
	}

	// The YAML has a top-level "patterns" key
	var wrapper struct {
		Patterns FileConfig `yaml:"patterns"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, eris.Wrap(err, "patterns: parse catalog")
	}

	cfg := wrapper.Patterns
	for i, rule := range cfg.Rules {
		if rule.Strength == 0 && rule.Category != model.CategoryContradiction {
			rule.Strength = cfg.Defaults.Strength
		}
		cfg.Rules[i] = rule
	}
	for i, pair := range cfg.ClaimPairs {
		if pair.BaseRate == 0 {
			pair.BaseRate = cfg.Defaults.BaseRate
		}
		if pair.Polarities == "" {
			pair.Polarities = PairBothAssert
		}
		cfg.ClaimPairs[i] = pair
	}

	table, err := NewClaimTable(cfg.ClaimPairs)
	if err != nil {
		return nil, err
	}
	return NewLibrary(cfg.Rules, table)
}
