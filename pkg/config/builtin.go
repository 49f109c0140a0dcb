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

package config

import (
	"github.com/walteh/patchrc/pkg/target"
)

// DefaultRuleSet runs when no rule set is named
const DefaultRuleSet = "fix-all-lint"

const responseTypesImport = "import type { SuccessResponse, ErrorResponse, PingResponse } from '../../src/types/index.js';"

// lintTargets are the test files that imported the response types
var lintTargets = []string{
	"test/e2e/endpoints.test.ts",
	"test/e2e/projects-api.test.ts",
	"test/e2e/analytics-api.test.ts",
	"test/unit/middleware/project-id.test.ts",
	"test/unit/middleware/logger.test.ts",
	"test/unit/adapters/base.test.ts",
	"test/unit/adapters/claude-code.test.ts",
	"test/unit/adapters/google-analytics.test.ts",
	"test/unit/services/analytics-query.test.ts",
	"test/unit/services/project.test.ts",
	"test/unit/services/analytics-engine.test.ts",
	"test/unit/utils/validation.test.ts",
}

// unusedImportTargets are the unit tests that never used the response types
var unusedImportTargets = []string{
	"test/unit/middleware/logger.test.ts",
	"test/unit/adapters/base.test.ts",
	"test/unit/adapters/google-analytics.test.ts",
	"test/unit/services/analytics-query.test.ts",
	"test/unit/services/project.test.ts",
	"test/unit/utils/validation.test.ts",
}

// 📦 Builtin returns the rule sets that ship with patchrc
func Builtin() *Config {
	anyTypes := anyTypeRules()
	// the catch-all runs last and sees only what the status rules left, pings included
	compat := append(anyTypeRules(), &RuleDef{
		Name:    "any-to-union",
		Pattern: `\) as any;`,
		Replace: ") as SuccessResponse | ErrorResponse;",
	})

	return &Config{
		RuleSets: []*RuleSet{
			{
				Name:        "fix-all-lint",
				Description: "strip unused response types from import type lists and tidy the commas left behind",
				Targets:     &target.Spec{Paths: lintTargets},
				Rules: []*RuleDef{
					{
						Name:    "strip-response-imports",
						Pattern: `import type \{ ([^}]+?), (SuccessResponse|ErrorResponse|PingResponse)(, (SuccessResponse|ErrorResponse|PingResponse))* \}`,
						Replace: "import type { ${1} }",
					},
					{
						Name:    "collapse-commas",
						Pattern: `,(\s*,)+`,
						Replace: ",",
					},
					{
						Name:    "trim-comma-before-brace",
						Pattern: `,\s*\}`,
						Replace: " }",
					},
				},
			},
			{
				Name:        "fix-unused-imports",
				Description: "remove the full response type triple from import lists",
				Targets:     &target.Spec{Paths: unusedImportTargets},
				Rules: []*RuleDef{
					{
						Name:    "drop-response-triple",
						Pattern: ", SuccessResponse, ErrorResponse, PingResponse",
						Literal: true,
					},
				},
			},
			{
				Name:        "fix-any-types",
				Description: "retype (await res.json()) as any by the asserted status code",
				Targets:     &target.Spec{Root: "test", Include: []string{"**/*.test.ts"}},
				Rules:       anyTypes,
			},
			{
				Name:        "fix-any-types-compat",
				Description: "fix-any-types, then every remaining ) as any; becomes SuccessResponse | ErrorResponse",
				Targets:     &target.Spec{Root: "test", Include: []string{"**/*.test.ts"}},
				Rules:       compat,
			},
		},
	}
}

func anyTypeRules() []*RuleDef {
	return []*RuleDef{
		{
			Name:           "import-response-types",
			Pattern:        `(import type \{[^}]+)\} from (['"]\.\./\.\./src/types/index\.js['"];)`,
			Replace:        "${1}, SuccessResponse, ErrorResponse, PingResponse } from ${2}",
			SkipIfContains: []string{"SuccessResponse", "ErrorResponse"},
			Fallback: &FallbackDef{
				Pattern: `(import .+ from ['"].+['"];)\n`,
				Replace: "${1}\n" + responseTypesImport + "\n",
				Limit:   1,
			},
		},
		{
			// runs before the 200 rule, which would otherwise claim every ping
			Name:    "ping-response",
			Pattern: `(\(await res\.json\(\)\)) as any;(\s+expect\(res\.status\)\.toBe\(200\);[\s\S]{0,50}status: 'ok')`,
			Replace: "${1} as PingResponse;${2}",
		},
		{
			Name:    "error-response",
			Pattern: `(\(await res\.json\(\)\)) as any;(\s+expect\(res\.status\)\.toBe\((400|404|500)\))`,
			Replace: "${1} as ErrorResponse;${2}",
		},
		{
			Name:    "success-response",
			Pattern: `(\(await res\.json\(\)\)) as any;(\s+expect\(res\.status\)\.toBe\((200|201)\))`,
			Replace: "${1} as SuccessResponse;${2}",
		},
	}
}
