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

/*
Package config loads named rule sets and ships the built-in ones.

	            +-------------+
	            |   Config    |
	            | (RuleSets)  |
	            +------+------+
	                   |
	      +------------+------------+
	      |            |            |
	+-----+----+ +-----+----+ +-----+----+
	|   YAML   | |   JSON   | |   HCL    |
	|  Parser  | |  Parser  | |  Parser  |
	+----------+ +----------+ +----------+

🎯 Purpose:
- Decodes rule set files into RuleSet values
- Validates names, target globs and every rule pattern
- Merges user rule sets over the built-in presets

🔄 Flow:
1. Resolve starts from Builtin
2. LoadConfig picks a parser by extension
3. Validate compiles each rule set, a bad rule is fatal
4. Merge replaces built-ins that share a name

📝 Notes:
HCL files can read the environment through the env object and must
write capture groups as $1 or $${1}, since ${...} is interpolation.

🔍 Example:

	cfg, err := config.Resolve(ctx, ".patchrc.yaml", false)
	if err != nil {
		return err
	}

	rs, ok := cfg.RuleSet("fix-all-lint")
	if !ok {
		return errors.New("unknown rule set")
	}

	replacer, err := rs.Compile()
*/
package config
