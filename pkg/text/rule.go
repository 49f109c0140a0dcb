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

package text

import (
	"regexp"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// ErrInvalidRule is wrapped by every error returned from Compile.
var ErrInvalidRule = errors.New("invalid rule")

// 🔄 Rule defines a single pattern based rewrite
type Rule struct {
	// Name identifies the rule in reports and errors
	Name string

	// Pattern is an RE2 regular expression, or a plain string when Literal is set
	Pattern string

	// Replace is the replacement template. $1, ${1} and ${name} expand to
	// capture groups unless Literal is set.
	Replace string

	// Literal disables regexp syntax in Pattern and template expansion in Replace
	Literal bool

	// Limit caps the number of replacements per application, 0 means all
	Limit int

	// SkipIfContains turns the rule into a no-op when the text already
	// contains any of these substrings
	SkipIfContains []string

	// Fallback is applied instead when Pattern has no match
	Fallback *Rule
}

// 🎯 Rewriter is a single rewrite strategy. Rewrite returns the new text and
// the number of replacements it made.
type Rewriter interface {
	Name() string
	Rewrite(text string) (string, int)
}

// RewriteFunc adapts a plain function to the Rewriter interface
type RewriteFunc struct {
	ID string
	Fn func(text string) (string, int)
}

func (f RewriteFunc) Name() string { return f.ID }

func (f RewriteFunc) Rewrite(text string) (string, int) { return f.Fn(text) }

// compiledRule is the Rewriter built from a Rule
type compiledRule struct {
	name     string
	re       *regexp.Regexp
	replace  string
	literal  bool
	limit    int
	skipIf   []string
	fallback *compiledRule
}

// 🏭 CompileRule validates a rule and turns it into a Rewriter
func CompileRule(rule Rule) (Rewriter, error) {
	return compileRule(rule)
}

func compileRule(rule Rule) (*compiledRule, error) {
	if rule.Pattern == "" {
		return nil, errors.Errorf("%w: pattern is required", ErrInvalidRule)
	}
	if rule.Limit < 0 {
		return nil, errors.Errorf("%w: limit must not be negative, got %d", ErrInvalidRule, rule.Limit)
	}

	expr := rule.Pattern
	if rule.Literal {
		expr = regexp.QuoteMeta(expr)
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, errors.Errorf("%w: compiling pattern: %s", ErrInvalidRule, err.Error())
	}

	cr := &compiledRule{
		name:    rule.Name,
		re:      re,
		replace: rule.Replace,
		literal: rule.Literal,
		limit:   rule.Limit,
		skipIf:  rule.SkipIfContains,
	}

	if rule.Fallback != nil {
		fb, err := compileRule(*rule.Fallback)
		if err != nil {
			return nil, errors.Errorf("fallback: %w", err)
		}
		if fb.name == "" {
			fb.name = rule.Name + "/fallback"
		}
		cr.fallback = fb
	}

	return cr, nil
}

func (r *compiledRule) Name() string { return r.name }

func (r *compiledRule) Rewrite(text string) (string, int) {
	for _, needle := range r.skipIf {
		if needle != "" && strings.Contains(text, needle) {
			return text, 0
		}
	}

	out, n := r.replaceAll(text)
	if n == 0 && r.fallback != nil {
		return r.fallback.Rewrite(text)
	}
	return out, n
}

// replaceAll behaves like regexp.ReplaceAllString but honors the limit and
// reports how many matches were replaced
func (r *compiledRule) replaceAll(text string) (string, int) {
	n := -1
	if r.limit > 0 {
		n = r.limit
	}

	matches := r.re.FindAllStringSubmatchIndex(text, n)
	if len(matches) == 0 {
		return text, 0
	}

	buf := make([]byte, 0, len(text))
	last := 0
	for _, m := range matches {
		buf = append(buf, text[last:m[0]]...)
		if r.literal {
			buf = append(buf, r.replace...)
		} else {
			buf = r.re.ExpandString(buf, r.replace, text, m)
		}
		last = m[1]
	}
	buf = append(buf, text[last:]...)

	return string(buf), len(matches)
}
