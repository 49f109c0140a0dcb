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
	"iter"

	"github.com/rs/zerolog"
	"github.com/walteh/patchrc/pkg/status"
	"github.com/walteh/patchrc/pkg/target"
	"github.com/walteh/patchrc/pkg/text"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// 🔧 Options configures a Runner
type Options struct {
	// Replacer holds the compiled rules
	Replacer *text.Replacer
	// Parallel is the number of targets processed at once, <= 1 runs sequentially
	Parallel int
	// DryRun computes results without writing files
	DryRun bool
	// Diff attaches a line diff to modified results
	Diff bool
}

// 🏃 Runner processes a batch of targets
type Runner struct {
	processor *Processor
	parallel  int
}

// 🏗️ NewRunner creates a new runner
func NewRunner(opts Options) *Runner {
	replacer := opts.Replacer
	if replacer == nil {
		replacer = text.NewReplacer()
	}
	return &Runner{
		processor: NewProcessor(replacer, opts.DryRun, opts.Diff),
		parallel:  opts.Parallel,
	}
}

// 🏃 Run processes every target and returns the results in discovery order.
// Per-target problems end up in the report. The returned error is only set
// when ctx was cancelled, in which case the report holds what finished.
func (r *Runner) Run(ctx context.Context, targets iter.Seq[target.Target]) (*status.Report, error) {
	if r.parallel > 1 {
		return r.runParallel(ctx, targets)
	}
	return r.runSync(ctx, targets)
}

// 🔄 runSync handles one target at a time
func (r *Runner) runSync(ctx context.Context, targets iter.Seq[target.Target]) (*status.Report, error) {
	report := &status.Report{}
	for t := range targets {
		if err := ctx.Err(); err != nil {
			return report, errors.Errorf("run cancelled: %w", err)
		}
		report.Add(r.processor.Process(ctx, t))
	}
	if err := ctx.Err(); err != nil {
		return report, errors.Errorf("run cancelled: %w", err)
	}
	return report, nil
}

// ⚡ runParallel fans targets out to a bounded errgroup. Each worker writes
// only its own slot, so no locking is needed.
func (r *Runner) runParallel(ctx context.Context, targets iter.Seq[target.Target]) (*status.Report, error) {
	logger := zerolog.Ctx(ctx)

	all := target.Collect(targets)
	results := make([]status.Result, len(all))
	done := make([]bool, len(all))

	logger.Debug().Int("targets", len(all)).Int("parallel", r.parallel).Msg("processing targets in parallel")

	g := new(errgroup.Group)
	g.SetLimit(r.parallel)

	for i, t := range all {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			results[i] = r.processor.Process(ctx, t)
			done[i] = true
			return nil
		})
	}
	_ = g.Wait()

	report := &status.Report{}
	for i, res := range results {
		if done[i] {
			report.Add(res)
		}
	}

	if err := ctx.Err(); err != nil {
		return report, errors.Errorf("run cancelled: %w", err)
	}
	return report, nil
}
