// Package model defines the normalized operation model recovered from a
// service-console source tree. Models are built fresh on every scan and are
// compared by value (principally SourceText) for change detection.
package model

// Argument type tags. The set is open: unrecognized decorator types are kept
// verbatim (lowercased), but these are the tags the synthesizer understands.
const (
	TypeString  = "string"
	TypeInteger = "integer"
	TypeFlag    = "flag"
	TypePath    = "path"
	TypeUnknown = "unknown"
)

// OperationArgument describes one CLI argument of an operation.
// Identity is name-based; Name is unique within an operation.
type OperationArgument struct {
	Name        string `json:"name"`
	Required    bool   `json:"required"`
	Type        string `json:"type"`
	Default     string `json:"default,omitempty"`
	Description string `json:"description,omitempty"`
}

// IsNumeric reports whether the argument's type tag marks it numeric.
func (a OperationArgument) IsNumeric() bool {
	return a.Type == TypeInteger
}

// InnerFunction records one top-level function found in an operation script.
// Informational only; the synthesizer never consumes it.
type InnerFunction struct {
	Name      string   `json:"name"`
	Docstring string   `json:"docstring,omitempty"`
	Params    []string `json:"params,omitempty"`
}

// ErrorSignal records one matched error-signaling idiom and how often it
// occurred. Kind is drawn from the pattern table in package extract.
type ErrorSignal struct {
	Kind  string `json:"kind"`
	Count int    `json:"count"`
}

// OperationModel is the normalized description of one console operation.
// Immutable once constructed.
type OperationModel struct {
	Name        string              `json:"name"`
	Description string              `json:"description,omitempty"`
	ScriptPath  string              `json:"script_path,omitempty"`
	Arguments   []OperationArgument `json:"arguments,omitempty"`

	InnerFunctions []InnerFunction `json:"inner_functions,omitempty"`
	EnvVars        []string        `json:"env_vars,omitempty"`
	ErrorSignals   []ErrorSignal   `json:"error_signals,omitempty"`

	// SourceText is the verbatim script contents, used only for change
	// detection. The synthesizer never re-parses it.
	SourceText string `json:"source_text,omitempty"`
}

// RequiredArgs returns the required arguments in declaration order.
func (m *OperationModel) RequiredArgs() []OperationArgument {
	var out []OperationArgument
	for _, a := range m.Arguments {
		if a.Required {
			out = append(out, a)
		}
	}
	return out
}

// OptionalArgs returns the optional arguments in declaration order.
func (m *OperationModel) OptionalArgs() []OperationArgument {
	var out []OperationArgument
	for _, a := range m.Arguments {
		if !a.Required {
			out = append(out, a)
		}
	}
	return out
}
