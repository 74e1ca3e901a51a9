package cfg

// tokenKind enumerates the tokens produced by the character-level
// stage. tokenNone doubles as the end-of-input marker; the parser
// tells a clean end from a lexing failure by the Parser's err field.
type tokenKind int

const (
	tokenNone tokenKind = iota
	tokenLBrace
	tokenRBrace
	tokenEqual
	tokenSemicolon
	tokenLiteral
)

func (k tokenKind) String() string {
	switch k {
	case tokenNone:
		return "end of input"
	case tokenLBrace:
		return "'{'"
	case tokenRBrace:
		return "'}'"
	case tokenEqual:
		return "'='"
	case tokenSemicolon:
		return "';'"
	case tokenLiteral:
		return "literal"
	}
	return "unknown token"
}

// lexState enumerates the tokenizer states. One readNextToken call
// runs the machine until exactly one token is produced or the input
// ends.
type lexState int

const (
	lexStart lexState = iota
	lexComment
	lexLiteral
	lexQuoted
)

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

// isSpecial reports whether c terminates a bare literal.
func isSpecial(c byte) bool {
	switch c {
	case '"', '#', '{', '}', ';', '=':
		return true
	}
	return isSpace(c)
}

// cur returns the byte under the cursor, or 0 at end of input. NUL is
// not meaningful in configuration text, so 0 is a safe sentinel.
func (p *Parser) cur() byte {
	if p.pos >= len(p.in) {
		return 0
	}
	return p.in[p.pos]
}

// prevByte returns the byte just before the cursor, or 0 at the start
// of input. The cursor only ever moves forward one byte at a time, so
// this is exactly the previously scanned character, which is what the
// escape rules are defined against.
func (p *Parser) prevByte() byte {
	if p.pos == 0 {
		return 0
	}
	return p.in[p.pos-1]
}

// readNextToken scans one token starting at the cursor, shifting the
// current token into the lookback slot first. At end of input it
// leaves tokenNone; an unterminated quoted literal also sets p.err.
//
// Escaping works on boundaries only. A backslash prevents the next
// character from terminating a bare literal or a quoted one, but the
// backslash itself stays in the value; no unescaping pass runs. The
// single exception is a backslash in leading position, which is
// dropped while the character after it starts the literal.
func (p *Parser) readNextToken() {
	p.prevTok = p.tok
	p.prevLit = p.lit
	p.tok = tokenNone
	p.lit = ""

	state := lexStart
	start := 0
	for {
		c := p.cur()
		switch state {
		case lexStart:
			switch {
			case c == 0:
				return
			case isSpace(c):
				p.pos++
			case c == '\\':
				// Whatever follows starts a literal, even a special
				// character. A lone trailing backslash is end of input.
				p.pos++
				start = p.pos
				state = lexLiteral
			case c == '"':
				p.pos++
				start = p.pos
				state = lexQuoted
			case c == '#':
				p.pos++
				state = lexComment
			case c == '{':
				p.pos++
				p.tok = tokenLBrace
				return
			case c == '}':
				p.pos++
				p.tok = tokenRBrace
				return
			case c == '=':
				p.pos++
				p.tok = tokenEqual
				return
			case c == ';':
				p.pos++
				p.tok = tokenSemicolon
				return
			default:
				start = p.pos
				state = lexLiteral
			}

		case lexComment:
			// A comment always runs to the line break; the break
			// cannot be escaped inside a comment.
			if c == 0 {
				return
			}
			p.pos++
			if c == '\n' {
				state = lexStart
			}

		case lexLiteral:
			if c == 0 {
				if p.pos > start {
					p.tok = tokenLiteral
					p.lit = p.in[start:p.pos]
				}
				return
			}
			if isSpecial(c) && p.prevByte() != '\\' {
				p.tok = tokenLiteral
				p.lit = p.in[start:p.pos]
				return
			}
			p.pos++

		case lexQuoted:
			if c == 0 {
				p.err = p.syntaxErrf("unterminated quoted literal")
				return
			}
			if c == '"' && p.prevByte() != '\\' {
				p.tok = tokenLiteral
				p.lit = p.in[start:p.pos]
				p.pos++
				return
			}
			p.pos++
		}
	}
}
