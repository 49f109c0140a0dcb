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

// Package target discovers the files a rule set is applied to.
package target

import (
	"context"
	"io/fs"
	"iter"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 🎯 Target is a file path to read, rewrite and possibly write back
type Target struct {
	Path    string // Path as given or as found under the root
	Missing bool   // Path does not exist
	Err     error  // Discovery failed for this path
}

// 🔍 Spec selects targets either by explicit enumeration or by walking a
// root directory. Both may be set; explicit paths come first.
type Spec struct {
	// Paths are explicit target files, processed in the given order
	Paths []string `json:"paths,omitempty" yaml:"paths,omitempty" hcl:"paths,optional"`

	// Root is a directory to walk
	Root string `json:"root,omitempty" yaml:"root,omitempty" hcl:"root,optional"`

	// Include holds doublestar globs, relative to Root, a file must match.
	// An empty list includes every file.
	Include []string `json:"include,omitempty" yaml:"include,omitempty" hcl:"include,optional"`

	// Exclude holds doublestar globs, relative to Root, for files and
	// directories to leave out
	Exclude []string `json:"exclude,omitempty" yaml:"exclude,omitempty" hcl:"exclude,optional"`
}

// IsEmpty reports whether the spec selects nothing
func (s Spec) IsEmpty() bool {
	return len(s.Paths) == 0 && s.Root == ""
}

// Validate checks that every glob is well formed
func (s Spec) Validate() error {
	for _, p := range append(append([]string{}, s.Include...), s.Exclude...) {
		if !doublestar.ValidatePattern(p) {
			return errors.Errorf("invalid glob pattern %q", p)
		}
	}
	if (len(s.Include) > 0 || len(s.Exclude) > 0) && s.Root == "" {
		return errors.Errorf("include and exclude patterns require a root")
	}
	return nil
}

// 📂 Targets returns the lazy sequence of distinct targets. Explicit paths
// come in the given order, walked files in lexicographic order. Stopping
// the iteration or cancelling ctx ends the walk.
func (s Spec) Targets(ctx context.Context) iter.Seq[Target] {
	return func(yield func(Target) bool) {
		logger := zerolog.Ctx(ctx)
		seen := make(map[string]struct{})

		emit := func(t Target) bool {
			key := filepath.Clean(t.Path)
			if _, ok := seen[key]; ok {
				logger.Debug().Str("path", t.Path).Msg("skipping duplicate target")
				return true
			}
			seen[key] = struct{}{}
			return yield(t)
		}

		for _, p := range s.Paths {
			if ctx.Err() != nil {
				return
			}
			if !emit(stat(p)) {
				return
			}
		}

		if s.Root == "" {
			return
		}

		if _, err := os.Stat(s.Root); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				emit(Target{Path: s.Root, Missing: true})
				return
			}
			emit(Target{Path: s.Root, Err: errors.Errorf("reading root: %w", err)})
			return
		}

		stop := errors.New("stop")
		err := filepath.WalkDir(s.Root, func(path string, d fs.DirEntry, err error) error {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return stop
			}
			if err != nil {
				if !emit(Target{Path: path, Err: errors.Errorf("walking: %w", err)}) {
					return stop
				}
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}

			rel, err := filepath.Rel(s.Root, path)
			if err != nil {
				return errors.Errorf("relative path for %s: %w", path, err)
			}
			rel = filepath.ToSlash(rel)

			if d.IsDir() {
				if rel != "." && s.excluded(logger, rel) {
					return fs.SkipDir
				}
				return nil
			}

			// a file root is matched by its name
			if rel == "." {
				rel = d.Name()
			}

			if !s.included(logger, rel) || s.excluded(logger, rel) {
				return nil
			}

			if !emit(Target{Path: path}) {
				return stop
			}
			return nil
		})
		if err != nil && !errors.Is(err, stop) {
			emit(Target{Path: s.Root, Err: err})
		}
	}
}

// Collect drains the sequence into a slice
func Collect(seq iter.Seq[Target]) []Target {
	var out []Target
	for t := range seq {
		out = append(out, t)
	}
	return out
}

func stat(path string) Target {
	_, err := os.Stat(path)
	switch {
	case err == nil:
		return Target{Path: path}
	case errors.Is(err, fs.ErrNotExist):
		return Target{Path: path, Missing: true}
	default:
		return Target{Path: path, Err: errors.Errorf("checking target: %w", err)}
	}
}

func (s Spec) included(logger *zerolog.Logger, rel string) bool {
	if len(s.Include) == 0 {
		return true
	}
	return matchAny(logger, s.Include, rel)
}

func (s Spec) excluded(logger *zerolog.Logger, rel string) bool {
	return matchAny(logger, s.Exclude, rel)
}

func matchAny(logger *zerolog.Logger, patterns []string, rel string) bool {
	for _, pattern := range patterns {
		matched, err := doublestar.Match(pattern, rel)
		if err != nil {
			logger.Debug().Str("pattern", pattern).Str("path", rel).Err(err).Msg("error matching pattern")
			continue
		}
		if matched {
			return true
		}
	}
	return false
}
