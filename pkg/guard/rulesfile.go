package guard

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/freebsdly/ops-console/pkg/access"
)

// rulesFile is the on-disk YAML shape of the static route annotations.
type rulesFile struct {
	Rules []ruleEntry `yaml:"rules"`
}

type ruleEntry struct {
	Prefix  string              `yaml:"prefix"`
	Roles   []string            `yaml:"roles"`
	Require *access.Requirement `yaml:"require"`
}

// LoadRulesFile reads a YAML rules file and builds the rule table from it.
func LoadRulesFile(path string) (*RuleTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}
	table, err := ParseRules(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return table, nil
}

// ParseRules builds a rule table from YAML bytes. Every entry needs a prefix
// and at least one of a requirement or a role list.
func ParseRules(data []byte) (*RuleTable, error) {
	var file rulesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse rules: %w", err)
	}

	rules := make([]Rule, 0, len(file.Rules))
	for i, e := range file.Rules {
		if e.Prefix == "" {
			return nil, fmt.Errorf("rule at index %d has no prefix", i)
		}
		if e.Require == nil && len(e.Roles) == 0 {
			return nil, fmt.Errorf("rule for %q needs a requirement or roles", e.Prefix)
		}
		if e.Require != nil && (e.Require.Resource == "" || e.Require.Action == "") {
			return nil, fmt.Errorf("rule for %q has an incomplete requirement", e.Prefix)
		}
		rules = append(rules, Rule{Prefix: e.Prefix, Require: e.Require, Roles: e.Roles})
	}
	return NewRuleTable(rules), nil
}
