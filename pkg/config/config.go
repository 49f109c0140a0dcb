// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"context"
	"sort"

	"github.com/walteh/patchrc/pkg/target"
	"github.com/walteh/patchrc/pkg/text"
	"gitlab.com/tozd/go/errors"
)

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the config from bytes
	Parse(ctx context.Context, filename string, data []byte) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 📚 Config is a collection of named rule sets
type Config struct {
	RuleSets []*RuleSet `json:"rulesets" yaml:"rulesets" hcl:"ruleset,block"`

	location string
}

// 📦 RuleSet is an ordered rule list plus the targets it applies to by default
type RuleSet struct {
	Name        string       `json:"name" yaml:"name" hcl:"name,label"`
	Description string       `json:"description,omitempty" yaml:"description,omitempty" hcl:"description,optional"`
	Targets     *target.Spec `json:"targets,omitempty" yaml:"targets,omitempty" hcl:"targets,block"`
	Rules       []*RuleDef   `json:"rules" yaml:"rules" hcl:"rule,block"`
}

// 🔄 RuleDef is the file representation of a text.Rule
type RuleDef struct {
	Name           string       `json:"name" yaml:"name" hcl:"name,label"`
	Pattern        string       `json:"pattern" yaml:"pattern" hcl:"pattern,attr"`
	Replace        string       `json:"replace" yaml:"replace" hcl:"replace,optional"`
	Literal        bool         `json:"literal,omitempty" yaml:"literal,omitempty" hcl:"literal,optional"`
	Limit          int          `json:"limit,omitempty" yaml:"limit,omitempty" hcl:"limit,optional"`
	SkipIfContains []string     `json:"skip_if_contains,omitempty" yaml:"skip_if_contains,omitempty" hcl:"skip_if_contains,optional"`
	Fallback       *FallbackDef `json:"fallback,omitempty" yaml:"fallback,omitempty" hcl:"fallback,block"`
}

// FallbackDef is applied when the owning rule's pattern has no match
type FallbackDef struct {
	Pattern string `json:"pattern" yaml:"pattern" hcl:"pattern,attr"`
	Replace string `json:"replace" yaml:"replace" hcl:"replace,optional"`
	Literal bool   `json:"literal,omitempty" yaml:"literal,omitempty" hcl:"literal,optional"`
	Limit   int    `json:"limit,omitempty" yaml:"limit,omitempty" hcl:"limit,optional"`
}

// Location is the file the config was loaded from, empty for built-ins
func (cfg *Config) Location() string {
	return cfg.location
}

// 🔍 RuleSet looks up a rule set by name
func (cfg *Config) RuleSet(name string) (*RuleSet, bool) {
	for _, rs := range cfg.RuleSets {
		if rs.Name == name {
			return rs, true
		}
	}
	return nil, false
}

// Names returns the sorted rule set names
func (cfg *Config) Names() []string {
	names := make([]string, 0, len(cfg.RuleSets))
	for _, rs := range cfg.RuleSets {
		names = append(names, rs.Name)
	}
	sort.Strings(names)
	return names
}

// 🔀 Merge returns a config holding the rule sets of cfg, with rule sets of
// other replacing those of the same name and new ones appended
func (cfg *Config) Merge(other *Config) *Config {
	merged := &Config{location: cfg.location}
	if other != nil && other.location != "" {
		merged.location = other.location
	}

	index := make(map[string]int)
	for _, rs := range cfg.RuleSets {
		index[rs.Name] = len(merged.RuleSets)
		merged.RuleSets = append(merged.RuleSets, rs)
	}
	if other == nil {
		return merged
	}
	for _, rs := range other.RuleSets {
		if i, ok := index[rs.Name]; ok {
			merged.RuleSets[i] = rs
			continue
		}
		index[rs.Name] = len(merged.RuleSets)
		merged.RuleSets = append(merged.RuleSets, rs)
	}
	return merged
}

// 🔍 Validate checks names, targets and compiles every rule
func (cfg *Config) Validate() error {
	seen := make(map[string]struct{})
	for i, rs := range cfg.RuleSets {
		if rs == nil {
			return errors.Errorf("ruleset %d: is empty", i)
		}
		if rs.Name == "" {
			return errors.Errorf("ruleset %d: name is required", i)
		}
		if _, ok := seen[rs.Name]; ok {
			return errors.Errorf("ruleset %s: duplicate name", rs.Name)
		}
		seen[rs.Name] = struct{}{}

		if rs.Targets != nil {
			if err := rs.Targets.Validate(); err != nil {
				return errors.Errorf("ruleset %s: targets: %w", rs.Name, err)
			}
		}

		if _, err := rs.Compile(); err != nil {
			return errors.Errorf("ruleset %s: %w", rs.Name, err)
		}
	}
	return nil
}

// TextRules converts the rule definitions to text rules
func (rs *RuleSet) TextRules() []text.Rule {
	rules := make([]text.Rule, 0, len(rs.Rules))
	for _, def := range rs.Rules {
		if def == nil {
			continue
		}
		rule := text.Rule{
			Name:           def.Name,
			Pattern:        def.Pattern,
			Replace:        def.Replace,
			Literal:        def.Literal,
			Limit:          def.Limit,
			SkipIfContains: def.SkipIfContains,
		}
		if def.Fallback != nil {
			rule.Fallback = &text.Rule{
				Pattern: def.Fallback.Pattern,
				Replace: def.Fallback.Replace,
				Literal: def.Fallback.Literal,
				Limit:   def.Fallback.Limit,
			}
		}
		rules = append(rules, rule)
	}
	return rules
}

// Compile validates and compiles the rules of the rule set
func (rs *RuleSet) Compile() (*text.Replacer, error) {
	return text.Compile(rs.TextRules())
}

// TargetSpec returns the default targets, never nil
func (rs *RuleSet) TargetSpec() target.Spec {
	if rs.Targets == nil {
		return target.Spec{}
	}
	return *rs.Targets
}
