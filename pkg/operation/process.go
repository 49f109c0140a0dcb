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

package operation

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/walteh/patchrc/pkg/status"
	"github.com/walteh/patchrc/pkg/target"
	"github.com/walteh/patchrc/pkg/text"
	"gitlab.com/tozd/go/errors"
)

// ErrNotText is wrapped when a target's content is not valid UTF-8
var ErrNotText = errors.New("content is not valid UTF-8 text")

// 📄 Processor rewrites a single target
type Processor struct {
	replacer *text.Replacer
	dryRun   bool
	diff     bool
}

// 🏭 NewProcessor creates a processor for the given compiled rules
func NewProcessor(replacer *text.Replacer, dryRun, diff bool) *Processor {
	return &Processor{
		replacer: replacer,
		dryRun:   dryRun,
		diff:     diff,
	}
}

// 🏃 Process reads the target, applies the rules and writes the result back
// when it changed. Problems are reported in the result, never returned.
func (p *Processor) Process(ctx context.Context, t target.Target) status.Result {
	logger := zerolog.Ctx(ctx).With().Str("path", t.Path).Logger()

	if t.Missing {
		return status.Skipped(t.Path, status.ReasonNotFound)
	}
	if t.Err != nil {
		return status.Failed(t.Path, t.Err)
	}

	content, err := readText(t.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return status.Skipped(t.Path, status.ReasonNotFound)
		}
		logger.Debug().Err(err).Msg("reading target")
		return status.Failed(t.Path, err)
	}

	replaced := p.replacer.Replace(content)
	if !replaced.WasModified {
		logger.Debug().Int("matches", replaced.ReplacementCount).Msg("text unchanged")
		return status.Unchanged(t.Path)
	}

	result := status.Modified(t.Path, replaced)
	if p.diff {
		result.Diff = text.Diff(content, replaced.ModifiedContent)
	}

	if p.dryRun {
		result.DryRun = true
		return result
	}

	if err := overwrite(t.Path, replaced.ModifiedContent); err != nil {
		logger.Debug().Err(err).Msg("writing target")
		return status.Failed(t.Path, err)
	}

	logger.Debug().Int("replacements", replaced.ReplacementCount).Msg("target rewritten")
	return result
}

// readText reads the whole file and checks that it decodes as UTF-8
func readText(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.Errorf("opening file: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", errors.Errorf("reading file: %w", err)
	}

	if !utf8.Valid(data) {
		return "", errors.Errorf("decoding file: %w", ErrNotText)
	}

	return string(data), nil
}

// overwrite swaps in the new content through a temp file in the same
// directory, so a failed write leaves the target as it was. Mode is kept
// and symlinks are written through.
func overwrite(path, content string) (err error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return errors.Errorf("resolving path: %w", err)
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return errors.Errorf("checking file: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(resolved), "."+filepath.Base(resolved)+".patchrc-*")
	if err != nil {
		return errors.Errorf("creating temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if err := tmp.Chmod(info.Mode().Perm()); err != nil {
		return errors.Errorf("setting mode: %w", err)
	}
	if _, err := io.WriteString(tmp, content); err != nil {
		return errors.Errorf("writing file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return errors.Errorf("syncing file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return errors.Errorf("closing file: %w", err)
	}
	if err := os.Rename(tmp.Name(), resolved); err != nil {
		return errors.Errorf("replacing file: %w", err)
	}
	return nil
}
