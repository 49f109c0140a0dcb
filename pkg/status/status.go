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

// Package status holds the per-target outcome of a patch run.
package status

import (
	"fmt"

	"github.com/walteh/patchrc/pkg/text"
)

// 📊 Status is the outcome of processing one target
type Status int

const (
	StatusUnknown   Status = iota
	StatusModified         // Rules changed the text and it was written back
	StatusUnchanged        // Rules left the text as it was
	StatusSkipped          // Target was not processed, see Result.Reason
	StatusFailed           // Reading, decoding or writing failed, see Result.Err
)

// ReasonNotFound is the skip reason for targets that do not exist
const ReasonNotFound = "not found"

// String returns a string representation of Status
func (s Status) String() string {
	switch s {
	case StatusModified:
		return "modified"
	case StatusUnchanged:
		return "unchanged"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// 📄 Result describes what happened to a single target
type Result struct {
	Path         string         // Target path as discovered
	Status       Status         // Outcome
	Reason       string         // Why the target was skipped
	Err          error          // Why the target failed
	Replacements int            // Total replacements made
	Hits         []text.RuleHit // Per rule replacement counts
	DryRun       bool           // Modified in memory only
	Diff         string         // Line diff, when requested
}

// Modified builds a result for a rewritten target
func Modified(path string, replaced *text.ReplacementResult) Result {
	return Result{
		Path:         path,
		Status:       StatusModified,
		Replacements: replaced.ReplacementCount,
		Hits:         replaced.Hits,
	}
}

// Unchanged builds a result for a target the rules did not change
func Unchanged(path string) Result {
	return Result{Path: path, Status: StatusUnchanged}
}

// Skipped builds a result for a target that was not processed
func Skipped(path, reason string) Result {
	return Result{Path: path, Status: StatusSkipped, Reason: reason}
}

// Failed builds a result for a target that could not be processed
func Failed(path string, err error) Result {
	return Result{Path: path, Status: StatusFailed, Err: err}
}

// Detail is the short human description printed next to the status
func (r Result) Detail() string {
	switch r.Status {
	case StatusModified:
		detail := fmt.Sprintf("%d replacements", r.Replacements)
		if r.Replacements == 1 {
			detail = "1 replacement"
		}
		if r.DryRun {
			detail += " (dry run)"
		}
		return detail
	case StatusSkipped:
		return r.Reason
	case StatusFailed:
		if r.Err != nil {
			return r.Err.Error()
		}
	}
	return ""
}

// 📋 Summary counts results by status
type Summary struct {
	Modified     int
	Unchanged    int
	Skipped      int
	Failed       int
	Replacements int
}

// Total is the number of targets seen
func (s Summary) Total() int {
	return s.Modified + s.Unchanged + s.Skipped + s.Failed
}

// String returns the one line run summary
func (s Summary) String() string {
	return fmt.Sprintf("%d modified, %d unchanged, %d skipped, %d failed", s.Modified, s.Unchanged, s.Skipped, s.Failed)
}

// 📦 Report is the ordered list of results of one run
type Report struct {
	Results []Result
}

// Add appends a result
func (r *Report) Add(res Result) {
	r.Results = append(r.Results, res)
}

// Summary counts the results
func (r *Report) Summary() Summary {
	var s Summary
	for _, res := range r.Results {
		switch res.Status {
		case StatusModified:
			s.Modified++
			s.Replacements += res.Replacements
		case StatusUnchanged:
			s.Unchanged++
		case StatusSkipped:
			s.Skipped++
		case StatusFailed:
			s.Failed++
		}
	}
	return s
}

// HasFailures reports whether any target failed. Skipped and unchanged
// targets are not failures.
func (r *Report) HasFailures() bool {
	for _, res := range r.Results {
		if res.Status == StatusFailed {
			return true
		}
	}
	return false
}

// ExitCode is 1 when any target failed, 0 otherwise
func (r *Report) ExitCode() int {
	if r.HasFailures() {
		return 1
	}
	return 0
}
