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

package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/patchrc/cmd/patchrc/commands"
	"github.com/walteh/patchrc/cmd/patchrc/opts"
	"github.com/walteh/patchrc/pkg/config"
	"github.com/walteh/patchrc/pkg/log"
	"github.com/walteh/patchrc/pkg/operation"
	"github.com/walteh/patchrc/pkg/target"
	"gitlab.com/tozd/go/errors"
)

var errTargetsFailed = errors.New("one or more targets failed")

type rootFlags struct {
	configFile string
	debug      bool
	ruleset    string
	root       string
	include    []string
	exclude    []string
	parallel   int
	dryRun     bool
	diff       bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	ro := &opts.RootOpts{}

	cmd := &cobra.Command{
		Use:   "patchrc [paths...]",
		Short: "Apply ordered rewrite rules to files in place",
		Long: `patchrc runs a named rule set over a list of files or a directory tree.
Each rule is a regular expression and a replacement template, applied in order,
so later rules see the output of earlier ones. Files are only written when their
content changed.

Without paths the rule set's own targets are used.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			ctx := setupLogging(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), flags.debug)
			cmd.SetContext(ctx)

			cfg, err := config.Resolve(ctx, flags.configFile, cmd.Flags().Changed("config"))
			if err != nil {
				return errors.Errorf("loading config: %w", err)
			}
			ro.Config = cfg
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPatch(cmd.Context(), ro, flags, args)
		},
	}

	addRootFlags(cmd, flags)

	cmd.AddCommand(
		commands.NewRulesCmd(ro),
		newVersionCmd(),
	)

	return cmd
}

func addRootFlags(cmd *cobra.Command, flags *rootFlags) {
	cmd.PersistentFlags().StringVarP(&flags.configFile, "config", "c", ".patchrc.yaml", "config file path")
	cmd.PersistentFlags().BoolVarP(&flags.debug, "debug", "d", false, "enable debug logging")

	cmd.Flags().StringVarP(&flags.ruleset, "ruleset", "r", config.DefaultRuleSet, "rule set to apply")
	cmd.Flags().StringVar(&flags.root, "root", "", "directory to walk for targets")
	cmd.Flags().StringSliceVar(&flags.include, "include", nil, "glob of files to keep under --root (repeatable)")
	cmd.Flags().StringSliceVar(&flags.exclude, "exclude", nil, "glob of files or directories to skip under --root (repeatable)")
	cmd.Flags().IntVarP(&flags.parallel, "parallel", "p", 1, "number of files processed at once")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "report changes without writing files")
	cmd.Flags().BoolVar(&flags.diff, "diff", false, "print a line diff for modified files")
}

func setupLogging(ctx context.Context, console, stderr io.Writer, debug bool) context.Context {
	level := zerolog.WarnLevel
	if debug {
		level = zerolog.DebugLevel
	}
	zlog := zerolog.New(zerolog.ConsoleWriter{Out: stderr, NoColor: color.NoColor}).
		Level(level).
		With().
		Timestamp().
		Logger()

	ctx = zlog.WithContext(ctx)
	return log.NewContext(ctx, log.New(console, zlog))
}

// selectTargets applies the command line over the rule set's default targets.
// Paths or --root replace the defaults entirely.
func selectTargets(defaults target.Spec, flags *rootFlags, args []string) target.Spec {
	spec := defaults
	if len(args) > 0 || flags.root != "" {
		spec = target.Spec{Paths: args, Root: flags.root}
	}
	if len(flags.include) > 0 {
		spec.Include = flags.include
	}
	if len(flags.exclude) > 0 {
		spec.Exclude = flags.exclude
	}
	return spec
}

func runPatch(ctx context.Context, ro *opts.RootOpts, flags *rootFlags, args []string) error {
	logger := log.FromContext(ctx)

	rs, ok := ro.Config.RuleSet(flags.ruleset)
	if !ok {
		return errors.Errorf("unknown rule set %q, available: %s", flags.ruleset, strings.Join(ro.Config.Names(), ", "))
	}

	replacer, err := rs.Compile()
	if err != nil {
		return errors.Errorf("compiling rule set %s: %w", rs.Name, err)
	}

	spec := selectTargets(rs.TargetSpec(), flags, args)
	if err := spec.Validate(); err != nil {
		return errors.Errorf("selecting targets: %w", err)
	}
	if spec.IsEmpty() {
		return errors.Errorf("rule set %s has no default targets, pass paths or --root", rs.Name)
	}

	logger.Header(fmt.Sprintf("%s (%d rules)", rs.Name, replacer.Len()))
	if loc := ro.Config.Location(); loc != "" {
		logger.Infof("using rule sets from %s", loc)
	}
	if flags.dryRun {
		logger.Warning("dry run, no files will be written")
	}

	runner := operation.NewRunner(operation.Options{
		Replacer: replacer,
		Parallel: flags.parallel,
		DryRun:   flags.dryRun,
		Diff:     flags.diff,
	})

	report, err := runner.Run(ctx, spec.Targets(ctx))
	if report != nil {
		logger.LogReport(ctx, report)
	}
	if err != nil {
		return errors.Errorf("running rule set %s: %w", rs.Name, err)
	}
	if report.HasFailures() {
		return errTargetsFailed
	}
	return nil
}
