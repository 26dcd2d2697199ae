package llmgen

import (
	"encoding/json"
	"fmt"
	"strings"

	"robogen/internal/model"
	"robogen/internal/synth"
)

const systemPrompt = `You are an expert test automation engineer specializing in Robot Framework.
Your job is to generate comprehensive Robot Framework test suites for ` + synth.ToolName + ` operations.

For each operation, you must generate:
1. **Positive tests**: Valid invocations that should succeed
2. **Negative tests**: Invalid inputs, missing required args, boundary conditions, timeouts
3. **Edge case tests**: Empty values, special characters, concurrent operations

Follow these Robot Framework conventions:
- Use the *** Settings ***, *** Variables ***, *** Test Cases ***, *** Keywords *** sections
- Use descriptive test case names
- Include [Documentation] for each test
- Include [Tags] for categorization (positive, negative, edge_case, smoke, regression)
- Use proper setup/teardown
- Use the Process library to invoke ` + synth.ToolName + ` commands
- Check return codes, stdout, and stderr

Output ONLY valid Robot Framework (.robot) file content. No markdown, no explanations.`

// buildPrompt renders the per-operation user prompt from the model's
// structured data.
func buildPrompt(op *model.OperationModel) (string, error) {
	args, err := json.MarshalIndent(op.Arguments, "", "  ")
	if err != nil {
		return "", err
	}
	functions, err := json.MarshalIndent(op.InnerFunctions, "", "  ")
	if err != nil {
		return "", err
	}
	envVars, err := json.MarshalIndent(op.EnvVars, "", "  ")
	if err != nil {
		return "", err
	}
	signals, err := json.MarshalIndent(op.ErrorSignals, "", "  ")
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Generate a comprehensive Robot Framework test suite for the following %s operation:\n\n", synth.ToolName)
	fmt.Fprintf(&b, "## Operation: %s\n**Description**: %s\n\n", op.Name, op.Description)
	fmt.Fprintf(&b, "## CLI Usage\n```\n%s run %s\n```\n\n", synth.ToolName, op.Name)
	fmt.Fprintf(&b, "## Arguments\n%s\n\n", args)
	fmt.Fprintf(&b, "## Internal Functions\n%s\n\n", functions)
	fmt.Fprintf(&b, "## Environment Variables Used\n%s\n\n", envVars)
	fmt.Fprintf(&b, "## Error Conditions Found in Source\n%s\n\n", signals)
	fmt.Fprintf(&b, "## Source Code\n```python\n%s\n```\n\n", op.SourceText)
	b.WriteString(`## Requirements
Generate tests covering:
1. **Positive/Smoke tests**: Basic successful invocation with valid arguments
2. **Positive tests with variations**: Different valid argument combinations
3. **Negative tests - Missing required args**: Omit each required argument
4. **Negative tests - Invalid values**: Wrong types, out-of-range values
5. **Negative tests - Unknown operation**: Test with non-existent operation name
6. **Edge cases**: Empty strings, very large values, special characters
7. **Dry run tests**: Verify --dry-run flag works correctly
8. **Timeout tests**: Verify --timeout parameter behavior

Use ` + "`" + synth.ToolName + " run`" + ` as the command to invoke operations.
Include proper [Setup] and [Teardown] keywords.
Use [Tags] to categorize each test (positive, negative, edge_case, smoke).
`)
	return b.String(), nil
}
