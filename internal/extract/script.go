package extract

import (
	"os"
	"path/filepath"
	"regexp"

	"go.uber.org/zap"

	"robogen/internal/model"
	"robogen/internal/pysrc"
)

// Error-signal kinds. These are heuristic textual matches over the script
// source, not semantic analysis.
const (
	SignalErrorPrint    = "error_print"
	SignalExitCode      = "exit_code"
	SignalStderrOutput  = "stderr_output"
	SignalErrorStatus   = "error_status"
	SignalFailureReturn = "failure_return"
)

// SignalPattern maps one textual idiom to its symbolic kind.
type SignalPattern struct {
	Kind    string
	Pattern *regexp.Regexp
}

// SignalPatterns is the fixed pattern table the script scan applies, in
// output order. Kept as data so the mapping stays inspectable and extensible.
var SignalPatterns = []SignalPattern{
	{SignalErrorPrint, regexp.MustCompile(`print\(.*"Error:.*"`)},
	{SignalExitCode, regexp.MustCompile(`sys\.exit\((\d+)\)`)},
	{SignalStderrOutput, regexp.MustCompile(`file=sys\.stderr`)},
	{SignalErrorStatus, regexp.MustCompile(`status.*error`)},
	{SignalFailureReturn, regexp.MustCompile(`return 1`)},
}

// envReadPattern matches the known environment accessor with a literal key.
var envReadPattern = regexp.MustCompile(`os\.environ\.get\(["'](\w+)["']`)

// scanScript resolves and reads the operation's backing script, then fills
// the model's source-derived fields. Every failure here is non-fatal: the
// affected fields simply stay empty.
func (e *Engine) scanScript(op *model.OperationModel) {
	if op.ScriptPath == "" {
		return
	}

	path := filepath.Join(e.root, filepath.FromSlash(op.ScriptPath))
	if !fileExists(path) {
		alt := filepath.Join(e.root, consoleDir, filepath.FromSlash(op.ScriptPath))
		if fileExists(alt) {
			path = alt
		}
	}
	if !fileExists(path) {
		e.log.Warn("operation script not found",
			zap.String("operation", op.Name),
			zap.String("script", op.ScriptPath))
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		e.log.Warn("operation script unreadable",
			zap.String("operation", op.Name), zap.Error(err))
		return
	}
	source := string(data)
	op.SourceText = source

	// The textual scans work on raw source and survive parse failures.
	op.EnvVars = scanEnvVars(source)
	op.ErrorSignals = scanErrorSignals(source)

	mod, err := pysrc.Parse(source)
	if err != nil {
		e.log.Warn("operation script unparsable, structural fields skipped",
			zap.String("operation", op.Name), zap.Error(err))
		return
	}

	for _, fn := range mod.Functions() {
		op.InnerFunctions = append(op.InnerFunctions, model.InnerFunction{
			Name:      fn.Ident,
			Docstring: fn.Docstring,
			Params:    withoutSelf(fn.Params),
		})
	}

	if op.Description == "" && mod.Docstring != "" {
		op.Description = mod.Docstring
	}
}

// scanEnvVars collects literal environment keys in order of first appearance.
// Duplicates are kept; collapsing them is allowed but not required.
func scanEnvVars(source string) []string {
	var vars []string
	for _, m := range envReadPattern.FindAllStringSubmatch(source, -1) {
		vars = append(vars, m[1])
	}
	return vars
}

// scanErrorSignals applies the pattern table. Patterns with zero matches are
// omitted, never recorded as zero.
func scanErrorSignals(source string) []model.ErrorSignal {
	var signals []model.ErrorSignal
	for _, p := range SignalPatterns {
		if n := len(p.Pattern.FindAllStringIndex(source, -1)); n > 0 {
			signals = append(signals, model.ErrorSignal{Kind: p.Kind, Count: n})
		}
	}
	return signals
}

func withoutSelf(params []string) []string {
	var out []string
	for _, p := range params {
		if p != "self" {
			out = append(out, p)
		}
	}
	return out
}
