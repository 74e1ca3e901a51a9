package cfg

import (
	"fmt"
	"io"
)

// parseState enumerates the entry-builder states. The machine needs
// one token of lookback: a literal after the entry name is either a
// positional value or an attribute key, and only the token after it
// tells which.
type parseState int

const (
	psStartNewEntry parseState = iota
	psValOrAttr
	psMaybeEqSign
	psStoreValPrev
	psStoreAttrPrev
	psLBrace
	psSemicolon
)

// Parser reads a configuration document entry by entry.
//
// A Parser owns one input buffer, one cursor, one token of lookback
// and a single Entry that is reset and reused across NextEntry calls.
// It must not be shared between goroutines. After any error other than
// io.EOF the Parser is poisoned and keeps returning that error.
type Parser struct {
	in  string
	pos int

	tok     tokenKind
	lit     string
	prevTok tokenKind
	prevLit string

	// primed is set once the first token has been read; NextEntry
	// reads it lazily so a freshly constructed Parser does no work.
	primed bool

	err error

	e Entry
}

// NewParser returns a Parser positioned at the start of text.
func NewParser(text string) *Parser {
	p := &Parser{in: text}
	p.e.ps = p
	return p
}

// NextEntry parses and returns the next entry. It returns io.EOF when
// the input is cleanly exhausted.
//
// When the returned entry has HasChildren set, the Parser is stopped
// at the opening brace of the nested block and the caller must consume
// the block, normally through ParseChildren, before calling NextEntry
// again. The returned Entry is owned by the Parser and is only valid
// until the next call; the strings inside it stay valid.
func (p *Parser) NextEntry() (*Entry, error) {
	if p.err != nil {
		return nil, p.err
	}
	if !p.primed {
		p.primed = true
		p.readNextToken()
		if p.err != nil {
			return nil, p.err
		}
	}
	if p.tok == tokenNone {
		return nil, io.EOF
	}

	state := psStartNewEntry
	for {
		switch state {
		case psStartNewEntry:
			p.e.reset()
			if p.tok != tokenLiteral {
				return nil, p.fail(p.syntaxErrf("expected an entry name, got %s", p.tok))
			}
			if err := p.e.setName(p.lit); err != nil {
				return nil, p.fail(err)
			}
			if err := p.move(); err != nil {
				return nil, err
			}
			state = psValOrAttr

		case psValOrAttr:
			switch p.tok {
			case tokenLiteral:
				if err := p.move(); err != nil {
					return nil, err
				}
				state = psMaybeEqSign
			case tokenSemicolon:
				state = psSemicolon
			case tokenLBrace:
				state = psLBrace
			default:
				return nil, p.fail(p.syntaxErrf("unexpected %s in entry '%s'", p.tok, p.e.Name))
			}

		case psMaybeEqSign:
			if p.tok == tokenEqual {
				state = psStoreAttrPrev
			} else {
				state = psStoreValPrev
			}

		case psStoreValPrev:
			// The lookback literal was a positional value. The current
			// token is already the next one to examine, so no read.
			if err := p.e.addVal(p.prevLit); err != nil {
				return nil, p.fail(err)
			}
			state = psValOrAttr

		case psStoreAttrPrev:
			key := p.prevLit
			p.readNextToken() // eat '='
			if p.err != nil {
				return nil, p.err
			}
			if p.tok != tokenLiteral {
				return nil, p.fail(p.syntaxErrf("expected a value after '%s=', got %s", key, p.tok))
			}
			if err := p.e.addAttr(key, p.lit); err != nil {
				return nil, p.fail(err)
			}
			if err := p.move(); err != nil {
				return nil, err
			}
			state = psValOrAttr

		case psLBrace:
			// Stop at the brace without consuming it. The nested block
			// belongs to whoever handles this entry.
			p.e.HasChildren = true
			return &p.e, nil

		case psSemicolon:
			// Eat ';' and prime the next call. End of input here is
			// fine; the next NextEntry reports it.
			p.readNextToken()
			if p.err != nil {
				return nil, p.err
			}
			return &p.e, nil
		}
	}
}

// move advances to the next token. Mid-entry the grammar always
// expects another token, so end of input here is a syntax error.
func (p *Parser) move() error {
	p.readNextToken()
	if p.err != nil {
		return p.err
	}
	if p.tok == tokenNone {
		p.err = p.syntaxErrf("unexpected end of input in entry '%s'", p.e.Name)
		return p.err
	}
	return nil
}

// fail poisons the parser with err, stamping the current position onto
// it first when it has none.
func (p *Parser) fail(err error) error {
	if ce, ok := err.(*Error); ok && ce.Offset < 0 {
		ce.Offset = p.pos
		ce.Excerpt = p.excerpt()
	}
	p.err = err
	return err
}

// syntaxErrf builds a KindSyntax error at the current position.
func (p *Parser) syntaxErrf(format string, args ...any) *Error {
	return &Error{
		Kind:    KindSyntax,
		Message: fmt.Sprintf(format, args...),
		Offset:  p.pos,
		Excerpt: p.excerpt(),
	}
}

// excerpt returns up to excerptLen bytes of input preceding the
// cursor, for "syntax error near" rendering.
func (p *Parser) excerpt() string {
	start := p.pos - excerptLen
	if start < 0 {
		start = 0
	}
	return p.in[start:p.pos]
}
