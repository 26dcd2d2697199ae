package agent

import (
	"fmt"
	"sort"
	"strings"

	"robogen/internal/model"
)

// Summary renders a human-readable digest of a scan, one block per
// operation, sorted by name.
func Summary(ops map[string]*model.OperationModel) string {
	if len(ops) == 0 {
		return "No operations found."
	}

	names := make([]string, 0, len(ops))
	for name := range ops {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(strings.Repeat("=", 60) + "\n")
	b.WriteString("Service Console Scan Summary\n")
	b.WriteString(strings.Repeat("=", 60) + "\n")

	for _, name := range names {
		op := ops[name]
		b.WriteString("\nOperation: " + name + "\n")
		b.WriteString("  Description: " + firstLine(op.Description) + "\n")
		b.WriteString("  Script: " + op.ScriptPath + "\n")
		b.WriteString("  Args: " + joinArgs(op.Arguments) + "\n")
		b.WriteString("  Env Vars: " + strings.Join(op.EnvVars, ", ") + "\n")
		b.WriteString(fmt.Sprintf("  Functions: %d\n", len(op.InnerFunctions)))
		b.WriteString(fmt.Sprintf("  Error Signals: %d\n", len(op.ErrorSignals)))
	}
	b.WriteString(strings.Repeat("=", 60) + "\n")
	return b.String()
}

func joinArgs(args []model.OperationArgument) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.Name
		if a.Required {
			parts[i] += " (required)"
		}
	}
	return strings.Join(parts, ", ")
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}
