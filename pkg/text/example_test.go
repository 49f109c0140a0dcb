package text_test

import (
	"fmt"

	"github.com/walteh/patchrc/pkg/text"
)

func ExampleCompile() {
	replacer, err := text.Compile([]text.Rule{
		{
			Name:    "type-json",
			Pattern: `(\(await res\.json\(\)\)) as any;`,
			Replace: "${1} as SuccessResponse;",
		},
	})
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	result := replacer.Replace("const body = (await res.json()) as any;")

	fmt.Printf("Modified: %s\n", result.ModifiedContent)
	fmt.Printf("Changes: %d\n", result.ReplacementCount)
	fmt.Printf("Was Modified: %v\n", result.WasModified)

	// Output:
	// Modified: const body = (await res.json()) as SuccessResponse;
	// Changes: 1
	// Was Modified: true
}

func ExampleCompile_invalid() {
	_, err := text.Compile([]text.Rule{
		{Name: "ok", Pattern: "foo", Replace: "bar"},
		{Name: "broken", Pattern: "(foo", Replace: "bar"},
	})
	fmt.Printf("Validation error: %v\n", err)

	// Output:
	// Validation error: rule 1 (broken): invalid rule: compiling pattern: error parsing regexp: missing closing ): `(foo`
}

func ExampleCompileRule() {
	addImport, err := text.CompileRule(text.Rule{
		Name:           "import-response",
		Pattern:        `(import type \{[^}]+)\}`,
		Replace:        "${1}, SuccessResponse }",
		SkipIfContains: []string{"SuccessResponse"},
		Fallback: &text.Rule{
			Pattern: `(import .+;)\n`,
			Replace: "${1}\nimport type { SuccessResponse } from './types';\n",
			Limit:   1,
		},
	})
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	out, n := addImport.Rewrite("import a from 'a';\nimport b from 'b';\n")
	fmt.Printf("%s: %d\n%s", addImport.Name(), n, out)

	_, n = addImport.Rewrite(out)
	fmt.Printf("again: %d\n", n)

	// Output:
	// import-response: 1
	// import a from 'a';
	// import type { SuccessResponse } from './types';
	// import b from 'b';
	// again: 0
}
