package pysrc

import "fmt"

// Parse reads source and returns the module-level shapes the extraction
// engine cares about. Constructs outside the recognized subset are skipped;
// only lexical damage (unterminated strings, unbalanced brackets) is an error.
func Parse(source string) (*Module, error) {
	toks, err := lex(source)
	if err != nil {
		return nil, fmt.Errorf("parsing source: %w", err)
	}
	p := &parser{toks: toks}
	return p.parseModule(), nil
}

type parser struct {
	toks []token
	pos  int
}

func (p *parser) cur() token { return p.toks[p.pos] }

func (p *parser) peek() token {
	if p.pos+1 < len(p.toks) {
		return p.toks[p.pos+1]
	}
	return p.toks[len(p.toks)-1]
}

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

// skipStatement advances past the current logical line.
func (p *parser) skipStatement() {
	for {
		t := p.next()
		if t.kind == tokNewline || t.kind == tokEOF {
			return
		}
	}
}

func (p *parser) parseModule() *Module {
	mod := &Module{}
	var decorators []*Node
	sawStatement := false

	for {
		t := p.cur()
		switch {
		case t.kind == tokEOF:
			return mod

		case t.kind == tokNewline:
			p.next()

		case t.kind == tokString && !sawStatement && t.col == 0:
			// Module docstring: a string as the first statement.
			mod.Docstring = t.text
			sawStatement = true
			p.skipStatement()

		case t.kind == tokOp && t.text == "@" && t.col == 0:
			sawStatement = true
			p.next()
			if dec := p.parseReference(); dec != nil {
				decorators = append(decorators, dec)
			}
			p.skipStatement()

		case t.kind == tokName && t.text == "def" && t.col == 0:
			sawStatement = true
			fn := p.parseFunctionDef()
			if fn != nil {
				fn.Decorators = decorators
				mod.Body = append(mod.Body, fn)
			}
			decorators = nil

		case t.kind == tokName && t.col == 0 && p.peek().kind == tokOp && p.peek().text == "=":
			sawStatement = true
			decorators = nil
			target := p.next().text
			p.next() // "="
			value := p.parseExpr()
			mod.Body = append(mod.Body, &Node{Kind: KindAssign, Target: target, Value: value})
			p.skipStatement()

		default:
			if t.col == 0 {
				decorators = nil
			}
			sawStatement = true
			p.skipStatement()
		}
	}
}

// parseFunctionDef consumes "def name(params):" and the body's docstring if
// present. The body itself is not modeled.
func (p *parser) parseFunctionDef() *Node {
	defTok := p.next() // "def"
	if p.cur().kind != tokName {
		p.skipStatement()
		return nil
	}
	fn := &Node{Kind: KindFunctionDef, Ident: p.next().text}

	if p.cur().kind == tokOp && p.cur().text == "(" {
		p.next()
		fn.Params = p.parseParams()
	}
	p.skipStatement() // through the trailing ":" and newline

	// Docstring: first body statement that is a bare string, indented
	// relative to the def line.
	for p.cur().kind == tokNewline {
		p.next()
	}
	if t := p.cur(); t.kind == tokString && t.col > defTok.col {
		fn.Docstring = t.text
	}
	return fn
}

// parseParams reads a parameter list, keeping names and dropping
// annotations, defaults, and */** markers.
func (p *parser) parseParams() []string {
	var params []string
	depth := 1
	expectName := true
	for {
		t := p.cur()
		if t.kind == tokEOF {
			return params
		}
		if t.kind == tokOp {
			switch t.text {
			case "(", "[", "{":
				depth++
			case ")", "]", "}":
				depth--
				if depth == 0 {
					p.next()
					return params
				}
			case ",":
				if depth == 1 {
					expectName = true
				}
			}
			p.next()
			continue
		}
		if t.kind == tokName && depth == 1 && expectName {
			params = append(params, t.text)
			expectName = false
		}
		p.next()
	}
}

// parseExpr parses one expression of the recognized subset. It returns nil
// for shapes it does not model, after consuming their tokens up to a
// delimiter the caller can resume from.
func (p *parser) parseExpr() *Node {
	t := p.cur()
	switch t.kind {
	case tokString:
		p.next()
		// Adjacent string literals concatenate.
		text := t.text
		for p.cur().kind == tokString {
			text += p.next().text
		}
		return &Node{Kind: KindLiteral, Text: text, IsString: true}

	case tokNumber:
		p.next()
		return &Node{Kind: KindLiteral, Text: t.text}

	case tokName:
		switch t.text {
		case "True", "False", "None":
			p.next()
			return &Node{Kind: KindLiteral, Text: t.text}
		}
		return p.parseReference()

	case tokOp:
		switch t.text {
		case "-":
			p.next()
			if n := p.cur(); n.kind == tokNumber {
				p.next()
				return &Node{Kind: KindLiteral, Text: "-" + n.text}
			}
			return nil
		case "[":
			return p.parseList()
		case "{":
			return p.parseDict()
		case "(":
			// Parenthesized expression; unwrap a single inner expression.
			p.next()
			inner := p.parseExpr()
			p.skipToClose(")")
			return inner
		}
	}
	return nil
}

// parseReference parses name, dotted attribute, and call expressions.
func (p *parser) parseReference() *Node {
	if p.cur().kind != tokName {
		return nil
	}
	node := &Node{Kind: KindName, Ident: p.next().text}
	for {
		t := p.cur()
		if t.kind != tokOp {
			return node
		}
		switch t.text {
		case ".":
			p.next()
			if p.cur().kind != tokName {
				return node
			}
			node = &Node{Kind: KindAttribute, Ident: p.next().text, Value: node}
		case "(":
			p.next()
			node = p.parseCallArgs(node)
		default:
			return node
		}
	}
}

// parseCallArgs reads call arguments up to the closing paren.
func (p *parser) parseCallArgs(fn *Node) *Node {
	call := &Node{Kind: KindCall, Func: fn}
	for {
		t := p.cur()
		if t.kind == tokEOF {
			return call
		}
		if t.kind == tokOp {
			switch t.text {
			case ")":
				p.next()
				return call
			case ",":
				p.next()
				continue
			case "*":
				// *args / **kwargs: skip the argument wholesale.
				p.skipArg()
				continue
			}
		}
		if t.kind == tokName && p.peek().kind == tokOp && p.peek().text == "=" {
			name := p.next().text
			p.next() // "="
			value := p.parseExpr()
			if value == nil {
				p.skipArg()
			}
			call.Keywords = append(call.Keywords, Keyword{Name: name, Value: value})
			continue
		}
		arg := p.parseExpr()
		if arg == nil {
			p.skipArg()
			continue
		}
		call.Args = append(call.Args, arg)
		// Anything left before the delimiter (operators, comprehensions)
		// makes the argument non-literal; drop it.
		if t := p.cur(); !(t.kind == tokOp && (t.text == "," || t.text == ")")) {
			call.Args = call.Args[:len(call.Args)-1]
			p.skipArg()
		}
	}
}

// skipArg consumes tokens until the next "," or ")" at the current depth.
func (p *parser) skipArg() {
	depth := 0
	for {
		t := p.cur()
		if t.kind == tokEOF {
			return
		}
		if t.kind == tokOp {
			switch t.text {
			case "(", "[", "{":
				depth++
			case ")", "]", "}":
				if depth == 0 {
					return
				}
				depth--
			case ",":
				if depth == 0 {
					return
				}
			}
		}
		p.next()
	}
}

func (p *parser) parseList() *Node {
	p.next() // "["
	list := &Node{Kind: KindList}
	for {
		t := p.cur()
		if t.kind == tokEOF {
			return list
		}
		if t.kind == tokOp {
			switch t.text {
			case "]":
				p.next()
				return list
			case ",":
				p.next()
				continue
			}
		}
		elt := p.parseExpr()
		if elt == nil {
			p.skipArg()
			continue
		}
		list.Elts = append(list.Elts, elt)
		if t := p.cur(); !(t.kind == tokOp && (t.text == "," || t.text == "]")) {
			list.Elts = list.Elts[:len(list.Elts)-1]
			p.skipArg()
		}
	}
}

func (p *parser) parseDict() *Node {
	p.next() // "{"
	dict := &Node{Kind: KindDict}
	for {
		t := p.cur()
		if t.kind == tokEOF {
			return dict
		}
		if t.kind == tokOp {
			switch t.text {
			case "}":
				p.next()
				return dict
			case ",":
				p.next()
				continue
			}
		}
		key := p.parseExpr()
		if key == nil || !(p.cur().kind == tokOp && p.cur().text == ":") {
			p.skipDictEntry()
			continue
		}
		p.next() // ":"
		value := p.parseExpr()
		if value == nil {
			p.skipDictEntry()
			// Keep the key with an unmodeled value so callers can decide;
			// a nil value marks "present but not literal".
			dict.Keys = append(dict.Keys, key)
			dict.Values = append(dict.Values, nil)
			continue
		}
		dict.Keys = append(dict.Keys, key)
		dict.Values = append(dict.Values, value)
		if t := p.cur(); !(t.kind == tokOp && (t.text == "," || t.text == "}")) {
			dict.Keys = dict.Keys[:len(dict.Keys)-1]
			dict.Values = dict.Values[:len(dict.Values)-1]
			p.skipDictEntry()
		}
	}
}

// skipDictEntry consumes tokens until the next "," or "}" at current depth.
func (p *parser) skipDictEntry() {
	depth := 0
	for {
		t := p.cur()
		if t.kind == tokEOF {
			return
		}
		if t.kind == tokOp {
			switch t.text {
			case "(", "[", "{":
				depth++
			case ")", "]", "}":
				if depth == 0 {
					return
				}
				depth--
			case ",":
				if depth == 0 {
					return
				}
			}
		}
		p.next()
	}
}

// skipToClose consumes tokens through the given closing bracket.
func (p *parser) skipToClose(close string) {
	depth := 0
	for {
		t := p.cur()
		if t.kind == tokEOF {
			return
		}
		p.next()
		if t.kind == tokOp {
			switch t.text {
			case "(", "[", "{":
				depth++
			case ")", "]", "}":
				if depth == 0 && t.text == close {
					return
				}
				depth--
			}
		}
	}
}
