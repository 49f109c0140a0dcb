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
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/patchrc/pkg/status"
	"github.com/walteh/patchrc/pkg/target"
	"gitlab.com/tozd/go/errors"
)

// 🧪 batchTree creates five matching files, one unchanged file and one
// file that cannot be decoded
func batchTree(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for i := 1; i <= 5; i++ {
		writeFile(t, dir, fmt.Sprintf("f%d.test.ts", i),
			"const r = (await res.json()) as any;\n  expect(res.status).toBe(200);\n")
	}
	writeFile(t, dir, "plain.test.ts", "it('works', () => {});\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.test.ts"), []byte{0xc3, 0x28}, 0644))
	return dir
}

func statuses(report *status.Report) map[string]status.Status {
	out := make(map[string]status.Status, len(report.Results))
	for _, r := range report.Results {
		out[filepath.Base(r.Path)] = r.Status
	}
	return out
}

func TestRunner_BatchContinuesAfterFailure(t *testing.T) {
	ctx, replacer := createTestEnv(t, anyToSuccess)
	dir := batchTree(t)

	spec := target.Spec{
		Paths:   []string{filepath.Join(dir, "missing.test.ts")},
		Root:    dir,
		Include: []string{"*.test.ts"},
	}

	report, err := NewRunner(Options{Replacer: replacer}).Run(ctx, spec.Targets(ctx))
	require.NoError(t, err)

	summary := report.Summary()
	assert.Equal(t, 5, summary.Modified)
	assert.Equal(t, 1, summary.Unchanged)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 1, summary.Failed)
	assert.True(t, report.HasFailures())
	assert.Equal(t, 1, report.ExitCode())

	got := statuses(report)
	assert.Equal(t, status.StatusSkipped, got["missing.test.ts"])
	assert.Equal(t, status.StatusFailed, got["broken.test.ts"])
	assert.Equal(t, status.StatusUnchanged, got["plain.test.ts"])

	// missing comes first, then the walk in lexicographic order
	assert.Equal(t, "missing.test.ts", filepath.Base(report.Results[0].Path))
	assert.Equal(t, "broken.test.ts", filepath.Base(report.Results[1].Path))
	assert.Equal(t, "plain.test.ts", filepath.Base(report.Results[len(report.Results)-1].Path))
}

func TestRunner_ParallelMatchesSequential(t *testing.T) {
	ctx, replacer := createTestEnv(t, anyToSuccess)

	run := func(parallel int) []status.Result {
		dir := batchTree(t)
		spec := target.Spec{Root: dir, Include: []string{"**/*.ts"}}
		report, err := NewRunner(Options{Replacer: replacer, Parallel: parallel}).Run(ctx, spec.Targets(ctx))
		require.NoError(t, err)

		// strip the temp dir so both runs compare
		for i := range report.Results {
			report.Results[i].Path = filepath.Base(report.Results[i].Path)
			report.Results[i].Err = nil
		}
		return report.Results
	}

	sequential := run(1)
	parallel := run(4)
	require.Len(t, sequential, 7)
	assert.Equal(t, sequential, parallel)
}

func TestRunner_SecondRunIsIdempotent(t *testing.T) {
	ctx, replacer := createTestEnv(t, anyToSuccess)
	dir := batchTree(t)
	spec := target.Spec{Root: dir}

	runner := NewRunner(Options{Replacer: replacer})
	_, err := runner.Run(ctx, spec.Targets(ctx))
	require.NoError(t, err)

	report, err := runner.Run(ctx, spec.Targets(ctx))
	require.NoError(t, err)
	assert.Equal(t, 0, report.Summary().Modified, "second run should find nothing to change")
	assert.Equal(t, 6, report.Summary().Unchanged)
}

func TestRunner_DryRun(t *testing.T) {
	ctx, replacer := createTestEnv(t, anyToSuccess)
	dir := batchTree(t)
	spec := target.Spec{Root: dir}

	report, err := NewRunner(Options{Replacer: replacer, DryRun: true}).Run(ctx, spec.Targets(ctx))
	require.NoError(t, err)
	assert.Equal(t, 5, report.Summary().Modified)

	again, err := NewRunner(Options{Replacer: replacer, DryRun: true}).Run(ctx, spec.Targets(ctx))
	require.NoError(t, err)
	assert.Equal(t, 5, again.Summary().Modified, "dry run leaves files untouched")
}

func TestRunner_Cancelled(t *testing.T) {
	ctx, replacer := createTestEnv(t, anyToSuccess)
	dir := batchTree(t)
	spec := target.Spec{Root: dir}

	for _, parallel := range []int{0, 3} {
		t.Run(fmt.Sprintf("parallel_%d", parallel), func(t *testing.T) {
			cctx, cancel := context.WithCancel(ctx)
			cancel()

			report, err := NewRunner(Options{Replacer: replacer, Parallel: parallel}).Run(cctx, spec.Targets(ctx))
			require.Error(t, err)
			assert.True(t, errors.Is(err, context.Canceled))
			assert.Empty(t, report.Results)
		})
	}
}

func TestRunner_EmptyRulesLeaveEverythingUnchanged(t *testing.T) {
	ctx, _ := createTestEnv(t)
	dir := batchTree(t)

	report, err := NewRunner(Options{}).Run(ctx, target.Spec{Root: dir, Include: []string{"f*.ts"}}.Targets(ctx))
	require.NoError(t, err)
	assert.Equal(t, 5, report.Summary().Unchanged)
}
