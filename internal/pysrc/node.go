// Package pysrc reads the small slice of Python that a service-console source
// tree uses for operation registration: module docstrings, top-level literal
// assignments, and decorated function definitions. It deliberately exposes a
// generic tagged-variant node type instead of a full Python grammar; the
// extraction engine walks node shapes, never language internals.
package pysrc

// Kind tags the variant held by a Node.
type Kind int

const (
	// KindLiteral is a string, number, True/False, or None constant.
	KindLiteral Kind = iota
	// KindName is a bare identifier reference.
	KindName
	// KindAttribute is a dotted attribute reference (receiver in Value).
	KindAttribute
	// KindCall is a call expression (callee in Func).
	KindCall
	// KindList is a list display.
	KindList
	// KindDict is a dict display (parallel Keys/Values).
	KindDict
	// KindAssign is a top-level single-target assignment.
	KindAssign
	// KindFunctionDef is a top-level function definition.
	KindFunctionDef
)

// Keyword is a name=value argument inside a call.
type Keyword struct {
	Name  string
	Value *Node
}

// Node is the tagged variant for every syntax shape pysrc recognizes.
// Only the fields relevant to a Node's Kind are populated.
type Node struct {
	Kind Kind

	// KindLiteral: Text holds the unquoted string value or the raw token
	// text for numbers, True, False and None.
	Text     string
	IsString bool

	// KindName, KindAttribute, KindFunctionDef: identifier or attribute name.
	Ident string
	// KindAttribute: receiver expression. KindAssign: assigned expression
	// (nil when the right-hand side is not a recognized literal shape).
	Value *Node

	// KindCall
	Func     *Node
	Args     []*Node
	Keywords []Keyword

	// KindList
	Elts []*Node

	// KindDict
	Keys   []*Node
	Values []*Node

	// KindAssign
	Target string

	// KindFunctionDef
	Params     []string
	Docstring  string
	Decorators []*Node
}

// Module is a parsed source file: its docstring plus the top-level
// assignments and function definitions, in source order.
type Module struct {
	Docstring string
	Body      []*Node
}

// StringLit returns the node's string value and true when the node is a
// string literal.
func (n *Node) StringLit() (string, bool) {
	if n == nil || n.Kind != KindLiteral || !n.IsString {
		return "", false
	}
	return n.Text, true
}

// LiteralText returns the literal's text regardless of its type, and whether
// the node is a literal at all.
func (n *Node) LiteralText() (string, bool) {
	if n == nil || n.Kind != KindLiteral {
		return "", false
	}
	return n.Text, true
}

// AttrName returns the trailing attribute (or bare name) of a reference
// expression, e.g. "option" for click.option or "INT" for click.INT.
func (n *Node) AttrName() (string, bool) {
	if n == nil {
		return "", false
	}
	switch n.Kind {
	case KindName, KindAttribute:
		return n.Ident, true
	}
	return "", false
}

// Functions returns the module's top-level function definitions.
func (m *Module) Functions() []*Node {
	var out []*Node
	for _, n := range m.Body {
		if n.Kind == KindFunctionDef {
			out = append(out, n)
		}
	}
	return out
}

// Assignment returns the top-level assignment to the given target name, or
// nil if the module has none. The last assignment wins, matching runtime
// semantics of re-assignment.
func (m *Module) Assignment(target string) *Node {
	var found *Node
	for _, n := range m.Body {
		if n.Kind == KindAssign && n.Target == target {
			found = n
		}
	}
	return found
}
