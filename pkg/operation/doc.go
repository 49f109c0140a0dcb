/*
Package operation applies a rule set to a batch of targets.

	+-------------+      +-------------+      +-------------+
	|   target    | ---> |  Processor  | ---> |   status    |
	| (discovery) |      | read/apply/ |      |  (Result)   |
	+-------------+      |    write    |      +-------------+
	                     +------+------+
	                            |
	                     +------+------+
	                     |   Runner    |
	                     | (seq / par) |
	                     +-------------+

🎯 Purpose:
- Read each target fully, apply the compiled rules, write back only when the text changed
- Turn every per-target problem into a status.Result instead of an error
- Keep report order equal to discovery order, also in parallel mode

🔄 Flow:
1. Runner pulls targets from a lazy sequence
2. Processor reads, applies text.Replacer, compares, writes
3. Results are collected by index into a status.Report

⚡ Failure handling:
- Missing target: skipped ("not found")
- Read, decode or write error: failed, the batch continues
- Cancelled context: no further targets are started

🔍 Example:

	replacer, err := text.Compile(rules)
	runner := operation.NewRunner(operation.Options{Replacer: replacer, Parallel: 4})
	report, err := runner.Run(ctx, spec.Targets(ctx))
*/
package operation
