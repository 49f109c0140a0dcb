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
	"fmt"

	"gitlab.com/tozd/go/errors"
)

// RuleHit records how many replacements a single rewriter made
type RuleHit struct {
	Rule  string
	Count int
}

// ReplacementResult contains the results of a text replacement operation
type ReplacementResult struct {
	// WasModified indicates if the final text differs from the original
	WasModified bool

	// ReplacementCount is the number of replacements made across all rules
	ReplacementCount int

	// Hits lists the rewriters that matched, in application order
	Hits []RuleHit

	// OriginalContent is the content before replacements
	OriginalContent string

	// ModifiedContent is the content after replacements
	ModifiedContent string
}

// 🔧 Replacer applies an ordered list of rewriters to text. It holds no
// mutable state and is safe for concurrent use.
type Replacer struct {
	rewriters []Rewriter
}

// 🏭 NewReplacer creates a Replacer from already built rewriters
func NewReplacer(rewriters ...Rewriter) *Replacer {
	return &Replacer{rewriters: rewriters}
}

// 🏭 Compile validates every rule up front and returns a Replacer for them.
// A single invalid rule fails the whole list.
func Compile(rules []Rule) (*Replacer, error) {
	rewriters := make([]Rewriter, 0, len(rules))
	for i, rule := range rules {
		rw, err := compileRule(rule)
		if err != nil {
			return nil, errors.Errorf("rule %s: %w", ruleLabel(i, rule.Name), err)
		}
		if rw.name == "" {
			rw.name = fmt.Sprintf("rule-%d", i)
		}
		rewriters = append(rewriters, rw)
	}
	return NewReplacer(rewriters...), nil
}

func ruleLabel(i int, name string) string {
	if name == "" {
		return fmt.Sprintf("%d", i)
	}
	return fmt.Sprintf("%d (%s)", i, name)
}

// Len returns the number of rewriters
func (r *Replacer) Len() int {
	return len(r.rewriters)
}

// Names returns the rewriter names in application order
func (r *Replacer) Names() []string {
	names := make([]string, len(r.rewriters))
	for i, rw := range r.rewriters {
		names[i] = rw.Name()
	}
	return names
}

// Apply runs every rewriter in order; each one sees the output of the last
func (r *Replacer) Apply(text string) string {
	return r.Replace(text).ModifiedContent
}

// Replace is Apply with bookkeeping
func (r *Replacer) Replace(text string) *ReplacementResult {
	result := &ReplacementResult{
		OriginalContent: text,
	}

	current := text
	for _, rw := range r.rewriters {
		next, n := rw.Rewrite(current)
		if n > 0 {
			result.ReplacementCount += n
			result.Hits = append(result.Hits, RuleHit{Rule: rw.Name(), Count: n})
		}
		current = next
	}

	result.ModifiedContent = current
	result.WasModified = current != text
	return result
}
