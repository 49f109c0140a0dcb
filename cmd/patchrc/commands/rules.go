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

package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/walteh/patchrc/cmd/patchrc/opts"
	"github.com/walteh/patchrc/pkg/config"
	"github.com/walteh/patchrc/pkg/target"
	"gitlab.com/tozd/go/errors"
)

func NewRulesCmd(opts *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List the available rule sets",
		Long: `Rules lists every rule set patchrc knows about: the built-in presets
and the ones defined in the config file. A config rule set with the same
name as a preset replaces it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := RulesTable(opts.Config)
			if err != nil {
				return errors.Errorf("rendering rule sets: %w", err)
			}

			out := cmd.OutOrStdout()
			if loc := opts.Config.Location(); loc != "" {
				fmt.Fprintf(out, "config: %s\n\n", loc)
			}
			_, err = fmt.Fprint(out, table)
			return err
		},
	}

	return cmd
}

// RulesTable renders one row per rule set, sorted by name
func RulesTable(cfg *config.Config) (string, error) {
	data := pterm.TableData{{"NAME", "RULES", "TARGETS", "DESCRIPTION"}}
	for _, name := range cfg.Names() {
		rs, _ := cfg.RuleSet(name)
		data = append(data, []string{
			name,
			strconv.Itoa(len(rs.Rules)),
			describeTargets(rs.TargetSpec()),
			rs.Description,
		})
	}

	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return "", err
	}
	return table + "\n", nil
}

func describeTargets(spec target.Spec) string {
	var parts []string
	if n := len(spec.Paths); n == 1 {
		parts = append(parts, spec.Paths[0])
	} else if n > 1 {
		parts = append(parts, fmt.Sprintf("%d files", n))
	}
	if spec.Root != "" {
		root := spec.Root
		switch len(spec.Include) {
		case 0:
		case 1:
			root += "/" + spec.Include[0]
		default:
			root += "/{" + strings.Join(spec.Include, ",") + "}"
		}
		parts = append(parts, root)
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, " + ")
}
