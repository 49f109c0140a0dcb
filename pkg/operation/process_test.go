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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/patchrc/pkg/status"
	"github.com/walteh/patchrc/pkg/target"
	"github.com/walteh/patchrc/pkg/text"
	"gitlab.com/tozd/go/errors"
)

// 🧪 createTestEnv creates a context with a test logger and a replacer
func createTestEnv(t *testing.T, rules ...text.Rule) (context.Context, *text.Replacer) {
	t.Helper()
	logger := zerolog.New(zerolog.NewTestWriter(t))
	ctx := logger.WithContext(context.Background())

	replacer, err := text.Compile(rules)
	require.NoError(t, err)
	return ctx, replacer
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

var anyToSuccess = text.Rule{
	Name:    "success",
	Pattern: `(\(await res\.json\(\)\)) as any;(\s+expect\(res\.status\)\.toBe\((200|201)\))`,
	Replace: "${1} as SuccessResponse;${2}",
}

func TestProcess_Modified(t *testing.T) {
	ctx, replacer := createTestEnv(t, anyToSuccess)
	dir := t.TempDir()

	before := "const r = (await res.json()) as any;\nexpect(res.status).toBe(200);\n"
	path := writeFile(t, dir, "a.test.ts", before)

	result := NewProcessor(replacer, false, false).Process(ctx, target.Target{Path: path})
	require.NoError(t, result.Err)
	assert.Equal(t, status.StatusModified, result.Status)
	assert.Equal(t, 1, result.Replacements)
	assert.Equal(t, []text.RuleHit{{Rule: "success", Count: 1}}, result.Hits)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, replacer.Apply(before), string(got), "file on disk should equal the applied text")
	assert.Equal(t, "const r = (await res.json()) as SuccessResponse;\nexpect(res.status).toBe(200);\n", string(got))
}

func TestProcess_Unchanged(t *testing.T) {
	ctx, replacer := createTestEnv(t, anyToSuccess)
	dir := t.TempDir()

	content := "const r = await res.text();\n"
	path := writeFile(t, dir, "plain.ts", content)

	old := time.Now().Add(-time.Hour).Truncate(time.Second)
	require.NoError(t, os.Chtimes(path, old, old))

	result := NewProcessor(replacer, false, false).Process(ctx, target.Target{Path: path})
	assert.Equal(t, status.StatusUnchanged, result.Status)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(old), "unchanged target must not be written")

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, string(got))
}

func TestProcess_Skipped(t *testing.T) {
	ctx, replacer := createTestEnv(t, anyToSuccess)
	dir := t.TempDir()
	path := filepath.Join(dir, "missing.ts")

	tests := []struct {
		name string
		tgt  target.Target
	}{
		{name: "flagged_missing", tgt: target.Target{Path: path, Missing: true}},
		{name: "vanished_before_read", tgt: target.Target{Path: path}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NewProcessor(replacer, false, false).Process(ctx, tt.tgt)
			assert.Equal(t, status.StatusSkipped, result.Status)
			assert.Equal(t, status.ReasonNotFound, result.Reason)
			assert.NoError(t, result.Err)
		})
	}
}

func TestProcess_Failed(t *testing.T) {
	ctx, replacer := createTestEnv(t, text.Rule{Pattern: "a", Replace: "b"})
	dir := t.TempDir()

	binary := filepath.Join(dir, "image.bin")
	require.NoError(t, os.WriteFile(binary, []byte{0xff, 0xfe, 'a', 0x00, 0xc3}, 0644))

	subdir := filepath.Join(dir, "sub.ts")
	require.NoError(t, os.Mkdir(subdir, 0755))

	tests := []struct {
		name    string
		tgt     target.Target
		wantErr string
		check   func(t *testing.T, err error)
	}{
		{
			name:    "not_utf8",
			tgt:     target.Target{Path: binary},
			wantErr: "decoding file",
			check: func(t *testing.T, err error) {
				assert.True(t, errors.Is(err, ErrNotText))
			},
		},
		{
			name:    "directory",
			tgt:     target.Target{Path: subdir},
			wantErr: "reading file",
		},
		{
			name:    "discovery_error",
			tgt:     target.Target{Path: "x", Err: errors.New("walking: permission denied")},
			wantErr: "permission denied",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NewProcessor(replacer, false, false).Process(ctx, tt.tgt)
			assert.Equal(t, status.StatusFailed, result.Status)
			require.Error(t, result.Err)
			assert.Contains(t, result.Err.Error(), tt.wantErr)
			if tt.check != nil {
				tt.check(t, result.Err)
			}
		})
	}

	got, err := os.ReadFile(binary)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xff, 0xfe, 'a', 0x00, 0xc3}, got, "failed target must be left alone")
}

func TestProcess_DryRunWithDiff(t *testing.T) {
	ctx, replacer := createTestEnv(t, anyToSuccess)
	dir := t.TempDir()

	before := "const r = (await res.json()) as any;\nexpect(res.status).toBe(201);\n"
	path := writeFile(t, dir, "dry.test.ts", before)

	result := NewProcessor(replacer, true, true).Process(ctx, target.Target{Path: path})
	assert.Equal(t, status.StatusModified, result.Status)
	assert.True(t, result.DryRun)
	assert.Equal(t,
		"- const r = (await res.json()) as any;\n+ const r = (await res.json()) as SuccessResponse;\n",
		result.Diff)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, string(got), "dry run must not write")
}

func TestProcess_KeepsFileMode(t *testing.T) {
	ctx, replacer := createTestEnv(t, text.Rule{Pattern: "old", Replace: "new"})
	dir := t.TempDir()
	path := writeFile(t, dir, "script.sh", "echo old\n")
	require.NoError(t, os.Chmod(path, 0755))

	result := NewProcessor(replacer, false, false).Process(ctx, target.Target{Path: path})
	require.Equal(t, status.StatusModified, result.Status)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0755), info.Mode().Perm())
}

func TestProcess_WritesThroughSymlink(t *testing.T) {
	ctx, replacer := createTestEnv(t, text.Rule{Pattern: "old", Replace: "new"})
	dir := t.TempDir()
	file := writeFile(t, dir, "real.ts", "old\n")
	link := filepath.Join(dir, "link.ts")
	require.NoError(t, os.Symlink(file, link))

	result := NewProcessor(replacer, false, false).Process(ctx, target.Target{Path: link})
	require.Equal(t, status.StatusModified, result.Status)

	info, err := os.Lstat(link)
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&os.ModeSymlink, "link should stay a symlink")

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, "new\n", string(data))
}

func TestOverwrite_FailureLeavesNoTrace(t *testing.T) {
	dir := t.TempDir()
	busy := filepath.Join(dir, "busy")
	require.NoError(t, os.Mkdir(busy, 0755))
	writeFile(t, busy, "keep.txt", "keep\n")

	// renaming a file over a non-empty directory always fails
	err := overwrite(busy, "new content\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "replacing file")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp file should be removed")
	assert.Equal(t, "busy", entries[0].Name())

	data, err := os.ReadFile(filepath.Join(busy, "keep.txt"))
	require.NoError(t, err)
	assert.Equal(t, "keep\n", string(data))
}

func TestProcess_LeavesNoTempFiles(t *testing.T) {
	ctx, replacer := createTestEnv(t, text.Rule{Pattern: "old", Replace: "new"})
	dir := t.TempDir()
	path := writeFile(t, dir, "a.ts", "old\n")

	result := NewProcessor(replacer, false, false).Process(ctx, target.Target{Path: path})
	require.Equal(t, status.StatusModified, result.Status)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a.ts", entries[0].Name())
}
