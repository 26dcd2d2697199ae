package pysrc

import (
	"fmt"
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokName tokenKind = iota
	tokString
	tokNumber
	tokOp
	tokNewline // logical line end (only emitted outside brackets)
	tokEOF
)

type token struct {
	kind tokenKind
	text string // unquoted value for strings, raw text otherwise
	line int    // 1-based
	col  int    // 0-based column of the first rune
}

// lex tokenizes source into a flat token stream. Comments are dropped,
// physical newlines inside brackets are dropped (implicit continuation), and
// a tokNewline is emitted at each logical line end. An unterminated string or
// unbalanced brackets produce an error: those are the only conditions treated
// as a syntax error by the parser.
func lex(source string) ([]token, error) {
	var toks []token
	runes := []rune(source)
	i := 0
	line := 1
	col := 0
	depth := 0

	advance := func() {
		if runes[i] == '\n' {
			line++
			col = 0
		} else {
			col++
		}
		i++
	}

	emitNewline := func() {
		// Collapse runs of blank lines into single logical breaks.
		if len(toks) > 0 && toks[len(toks)-1].kind != tokNewline {
			toks = append(toks, token{kind: tokNewline, line: line, col: col})
		}
	}

	for i < len(runes) {
		r := runes[i]

		switch {
		case r == '\n':
			if depth == 0 {
				emitNewline()
			}
			advance()

		case r == '\\' && i+1 < len(runes) && runes[i+1] == '\n':
			// Explicit line continuation.
			advance()
			advance()

		case r == ' ' || r == '\t' || r == '\r':
			advance()

		case r == '#':
			for i < len(runes) && runes[i] != '\n' {
				advance()
			}

		case r == '\'' || r == '"':
			tok, err := lexString(runes, &i, &line, &col)
			if err != nil {
				return nil, err
			}
			toks = append(toks, tok)

		case isIdentStart(r):
			startLine, startCol := line, col
			start := i
			for i < len(runes) && isIdentPart(runes[i]) {
				advance()
			}
			word := string(runes[start:i])
			// String prefix (r"...", f'...', rb"..."): treat as a plain string.
			if i < len(runes) && (runes[i] == '\'' || runes[i] == '"') && isStringPrefix(word) {
				tok, err := lexString(runes, &i, &line, &col)
				if err != nil {
					return nil, err
				}
				tok.line, tok.col = startLine, startCol
				toks = append(toks, tok)
				continue
			}
			toks = append(toks, token{kind: tokName, text: word, line: startLine, col: startCol})

		case unicode.IsDigit(r):
			startLine, startCol := line, col
			start := i
			for i < len(runes) && (unicode.IsDigit(runes[i]) || runes[i] == '.' || runes[i] == '_' ||
				runes[i] == 'x' || runes[i] == 'X' || runes[i] == 'e' || runes[i] == 'E' ||
				(runes[i] >= 'a' && runes[i] <= 'f') || (runes[i] >= 'A' && runes[i] <= 'F')) {
				advance()
			}
			toks = append(toks, token{kind: tokNumber, text: string(runes[start:i]), line: startLine, col: startCol})

		default:
			switch r {
			case '(', '[', '{':
				depth++
			case ')', ']', '}':
				depth--
				if depth < 0 {
					return nil, fmt.Errorf("line %d: unbalanced %q", line, r)
				}
			}
			toks = append(toks, token{kind: tokOp, text: string(r), line: line, col: col})
			advance()
		}
	}

	if depth != 0 {
		return nil, fmt.Errorf("unexpected end of source: %d unclosed bracket(s)", depth)
	}

	emitNewline()
	toks = append(toks, token{kind: tokEOF, line: line, col: col})
	return toks, nil
}

func lexString(runes []rune, i *int, line *int, col *int) (token, error) {
	startLine, startCol := *line, *col
	quote := runes[*i]

	advance := func() {
		if runes[*i] == '\n' {
			*line++
			*col = 0
		} else {
			*col++
		}
		*i++
	}

	advance() // opening quote
	triple := false
	if *i+1 < len(runes) && runes[*i] == quote && runes[*i+1] == quote {
		triple = true
		advance()
		advance()
	}

	var b strings.Builder
	for *i < len(runes) {
		r := runes[*i]
		if r == '\\' && *i+1 < len(runes) {
			next := runes[*i+1]
			switch next {
			case 'n':
				b.WriteRune('\n')
			case 't':
				b.WriteRune('\t')
			case '\\', '\'', '"':
				b.WriteRune(next)
			case '\n':
				// escaped newline: drop it
			default:
				b.WriteRune('\\')
				b.WriteRune(next)
			}
			advance()
			advance()
			continue
		}
		if triple {
			if r == quote && *i+2 < len(runes) && runes[*i+1] == quote && runes[*i+2] == quote {
				advance()
				advance()
				advance()
				return token{kind: tokString, text: b.String(), line: startLine, col: startCol}, nil
			}
			b.WriteRune(r)
			advance()
			continue
		}
		if r == quote {
			advance()
			return token{kind: tokString, text: b.String(), line: startLine, col: startCol}, nil
		}
		if r == '\n' {
			return token{}, fmt.Errorf("line %d: unterminated string", startLine)
		}
		b.WriteRune(r)
		advance()
	}
	return token{}, fmt.Errorf("line %d: unterminated string", startLine)
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isStringPrefix(word string) bool {
	if len(word) > 2 {
		return false
	}
	for _, r := range strings.ToLower(word) {
		switch r {
		case 'r', 'b', 'f', 'u':
		default:
			return false
		}
	}
	return true
}
