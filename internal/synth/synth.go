// Package synth deterministically renders Robot Framework test suites from
// operation models. Generate is a pure function of its input: identical
// models always produce byte-identical output, so re-runs without model
// changes are no-op diffs.
package synth

import (
	"context"
	"strings"

	"robogen/internal/model"
)

// ToolName is the external command-line tool every generated test shells
// out to, always through the `run <operation>` grammar.
const ToolName = "service-console"

const (
	toolVar     = "${SERVICE_CONSOLE}"
	placeholder = "test-value"
	sep         = "    "
)

// outcome is the minimal assertion contract of one test case.
type outcome int

const (
	exitSuccess outcome = iota
	exitFailure
	noCrash
)

// testCase is one rendered test block.
type testCase struct {
	Title      string
	Doc        string
	Tags       []string
	Invocation []string // arguments passed to the external tool
	Outcome    outcome

	StdoutContains string
	StderrContains string
}

// Synthesizer implements the deterministic generation strategy. It performs
// no I/O and never blocks.
type Synthesizer struct{}

// Name identifies the strategy in metadata and summaries.
func (Synthesizer) Name() string { return "template" }

// Generate renders the complete test matrix for one operation. It performs
// no I/O and never fails; the context and error satisfy the Generator
// contract shared with fallible strategies.
func (Synthesizer) Generate(_ context.Context, op *model.OperationModel) (string, error) {
	var b strings.Builder

	writeSettings(&b, op)
	writeVariables(&b, op)

	b.WriteString("*** Test Cases ***\n")
	writeSection(&b, "POSITIVE TESTS", positiveCases(op))
	writeSection(&b, "NEGATIVE TESTS", negativeCases(op))
	writeSection(&b, "EDGE CASE TESTS", edgeCases(op))

	writeKeywords(&b)
	return b.String(), nil
}

// positiveCases: smoke, dry-run, timeout, one per optional argument.
func positiveCases(op *model.OperationModel) []testCase {
	required := op.RequiredArgs()
	lower := strings.ToLower(op.Name)

	cases := []testCase{
		{
			Title:          op.Name + " Smoke Test",
			Doc:            "Verify " + op.Name + " operation runs successfully with valid arguments",
			Tags:           []string{"smoke", "positive", lower},
			Invocation:     append(runWith(op.Name, required), "--dry-run"),
			Outcome:        exitSuccess,
			StdoutContains: op.Name,
		},
		{
			Title:          op.Name + " With Dry Run Flag",
			Doc:            "Verify " + op.Name + " operation works with --dry-run flag",
			Tags:           []string{"positive", "dry_run", lower},
			Invocation:     append(runWith(op.Name, required), "--dry-run"),
			Outcome:        exitSuccess,
			StdoutContains: "DRY RUN",
		},
		{
			Title:      op.Name + " With Custom Timeout",
			Doc:        "Verify " + op.Name + " operation accepts custom timeout",
			Tags:       []string{"positive", lower},
			Invocation: append(runWith(op.Name, required), "--timeout", "60", "--dry-run"),
			Outcome:    exitSuccess,
		},
	}

	for _, arg := range op.OptionalArgs() {
		inv := append(runWith(op.Name, required), flagOf(arg), defaultValue(arg), "--dry-run")
		cases = append(cases, testCase{
			Title:      op.Name + " With Optional Arg " + arg.Name,
			Doc:        "Verify " + op.Name + " works with optional argument " + flagOf(arg),
			Tags:       []string{"positive", lower},
			Invocation: inv,
			Outcome:    exitSuccess,
		})
	}
	return cases
}

// negativeCases: missing-required per required arg, unknown operation, empty
// operation, empty-value per required arg, and the numeric pair per
// integer-typed argument.
func negativeCases(op *model.OperationModel) []testCase {
	required := op.RequiredArgs()
	lower := strings.ToLower(op.Name)

	var cases []testCase
	for _, arg := range required {
		var others []model.OperationArgument
		for _, other := range required {
			if other.Name != arg.Name {
				others = append(others, other)
			}
		}
		cases = append(cases, testCase{
			Title:          op.Name + " Fails Without Required Arg " + arg.Name,
			Doc:            "Verify " + op.Name + " fails when required argument " + flagOf(arg) + " is missing",
			Tags:           []string{"negative", lower},
			Invocation:     runWith(op.Name, others),
			Outcome:        exitFailure,
			StderrContains: "Error",
		})
	}

	cases = append(cases,
		testCase{
			Title:          op.Name + " Fails With Unknown Operation Name",
			Doc:            "Verify " + ToolName + " rejects unknown operation names",
			Tags:           []string{"negative", lower},
			Invocation:     []string{"run", "Invalid_Operation_XYZ"},
			Outcome:        exitFailure,
			StderrContains: "Unknown operation",
		},
		testCase{
			Title:      op.Name + " Fails With Empty Operation Name",
			Doc:        "Verify " + ToolName + " handles empty operation name",
			Tags:       []string{"negative", "edge_case", lower},
			Invocation: []string{"run"},
			Outcome:    exitFailure,
		},
	)

	for _, arg := range required {
		cases = append(cases, testCase{
			Title:      op.Name + " Fails With Empty Value For " + arg.Name,
			Doc:        "Verify " + op.Name + " rejects empty value for " + flagOf(arg),
			Tags:       []string{"negative", "edge_case", lower},
			Invocation: []string{"run", op.Name, flagOf(arg), "${EMPTY}"},
			Outcome:    exitFailure,
		})
	}

	for _, arg := range op.Arguments {
		if !arg.IsNumeric() {
			continue
		}
		cases = append(cases,
			testCase{
				Title:      op.Name + " Fails With Non Numeric " + arg.Name,
				Doc:        "Verify " + op.Name + " rejects non-numeric value for " + flagOf(arg),
				Tags:       []string{"negative", lower},
				Invocation: append(runWith(op.Name, required), flagOf(arg), "not_a_number"),
				Outcome:    exitFailure,
			},
			testCase{
				Title:      op.Name + " Fails With Negative " + arg.Name,
				Doc:        "Verify " + op.Name + " rejects negative value for " + flagOf(arg),
				Tags:       []string{"negative", "edge_case", lower},
				Invocation: append(runWith(op.Name, required), flagOf(arg), "-1"),
				Outcome:    exitFailure,
			},
		)
	}
	return cases
}

// edgeCases: special characters per required argument, then the help flag.
// The special-characters outcome is liveness only: the acceptable exit code
// range is deliberately not asserted.
func edgeCases(op *model.OperationModel) []testCase {
	lower := strings.ToLower(op.Name)

	var cases []testCase
	for _, arg := range op.RequiredArgs() {
		cases = append(cases, testCase{
			Title:      op.Name + " With Special Characters In " + arg.Name,
			Doc:        "Verify " + op.Name + " handles special characters in " + flagOf(arg),
			Tags:       []string{"edge_case", lower},
			Invocation: []string{"run", op.Name, flagOf(arg), "t€st!@#$%"},
			Outcome:    noCrash,
		})
	}

	cases = append(cases, testCase{
		Title:          op.Name + " Help Flag",
		Doc:            "Verify --help flag works for the run command",
		Tags:           []string{"positive", lower},
		Invocation:     []string{"run", "--help"},
		Outcome:        exitSuccess,
		StdoutContains: op.Name,
	})
	return cases
}

// runWith builds `run <op> --flag ${DEFAULT_FLAG}...` for the given args.
func runWith(opName string, args []model.OperationArgument) []string {
	inv := []string{"run", opName}
	for _, a := range args {
		inv = append(inv, flagOf(a), varOf(a))
	}
	return inv
}

func writeSettings(b *strings.Builder, op *model.OperationModel) {
	b.WriteString("*** Settings ***\n")
	b.WriteString("Documentation     Test suite for " + op.Name + " operation\n")
	b.WriteString("Library           Process\n")
	b.WriteString("Library           OperatingSystem\n")
	b.WriteString("Library           String\n")
	b.WriteString("Suite Setup       Verify Service Console Is Available\n")
	b.WriteString("Suite Teardown    Cleanup Test Artifacts\n")
	b.WriteString("\n")
}

func writeVariables(b *strings.Builder, op *model.OperationModel) {
	b.WriteString("*** Variables ***\n")
	b.WriteString(toolVar + sep + ToolName + "\n")
	b.WriteString("${TIMEOUT}            120\n")
	for _, arg := range op.Arguments {
		b.WriteString(varOf(arg) + sep + defaultValue(arg) + "\n")
	}
	b.WriteString("\n")
}

func writeSection(b *strings.Builder, banner string, cases []testCase) {
	b.WriteString("# ============================================================\n")
	b.WriteString("# " + banner + "\n")
	b.WriteString("# ============================================================\n")
	for _, tc := range cases {
		b.WriteString("\n")
		writeCase(b, tc)
	}
	b.WriteString("\n")
}

func writeCase(b *strings.Builder, tc testCase) {
	b.WriteString(tc.Title + "\n")
	b.WriteString(sep + "[Documentation]" + sep + tc.Doc + "\n")
	b.WriteString(sep + "[Tags]" + sep + strings.Join(tc.Tags, sep) + "\n")
	b.WriteString(sep + "${result}=" + sep + "Run Process" + sep + toolVar)
	for _, part := range tc.Invocation {
		b.WriteString(sep + part)
	}
	b.WriteString("\n")

	switch tc.Outcome {
	case exitSuccess:
		b.WriteString(sep + "Should Be Equal As Integers" + sep + "${result.rc}" + sep + "0\n")
		if tc.StdoutContains != "" {
			b.WriteString(sep + "Should Contain" + sep + "${result.stdout}" + sep + tc.StdoutContains + "\n")
		}
	case exitFailure:
		b.WriteString(sep + "Should Not Be Equal As Integers" + sep + "${result.rc}" + sep + "0\n")
		if tc.StderrContains != "" {
			b.WriteString(sep + "Should Contain" + sep + "${result.stderr}" + sep + tc.StderrContains + "\n")
		}
	case noCrash:
		b.WriteString(sep + "Should Be True" + sep + "${result.rc} >= 0\n")
	}
}

func writeKeywords(b *strings.Builder) {
	b.WriteString("*** Keywords ***\n")
	b.WriteString("Verify Service Console Is Available\n")
	b.WriteString(sep + "[Documentation]" + sep + "Verify the " + ToolName + " CLI is installed and accessible\n")
	b.WriteString(sep + "${result}=" + sep + "Run Process" + sep + toolVar + sep + "--version\n")
	b.WriteString(sep + "Should Be Equal As Integers" + sep + "${result.rc}" + sep + "0\n")
	b.WriteString(sep + "Log" + sep + "Service console version: ${result.stdout}\n")
	b.WriteString("\n")
	b.WriteString("Cleanup Test Artifacts\n")
	b.WriteString(sep + "[Documentation]" + sep + "Clean up any test artifacts created during the test run\n")
	b.WriteString(sep + "Log" + sep + "Cleanup complete\n")
}

func flagOf(arg model.OperationArgument) string {
	return "--" + strings.ReplaceAll(arg.Name, "_", "-")
}

func varOf(arg model.OperationArgument) string {
	return "${DEFAULT_" + strings.ToUpper(arg.Name) + "}"
}

func defaultValue(arg model.OperationArgument) string {
	if arg.Default != "" {
		return arg.Default
	}
	return placeholder
}
