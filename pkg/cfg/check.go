package cfg

import "io"

// CheckDocument structurally parses an entire document without
// dispatching anything: grammar, identifier rules, capacity bounds and
// block balance are verified, but no spec handlers run. It reports the
// first error found, or nil for a well-formed document.
func CheckDocument(text string) error {
	p := NewParser(text)
	return checkEntries(p, 0)
}

func checkEntries(p *Parser, depth int) error {
	for {
		if depth > 0 && p.tok == tokenRBrace {
			p.readNextToken() // eat '}'
			return p.err
		}
		e, err := p.NextEntry()
		if err == io.EOF {
			if depth > 0 {
				return p.fail(p.syntaxErrf("unexpected end of input: '}' expected"))
			}
			return nil
		}
		if err != nil {
			return err
		}
		if e.HasChildren {
			p.readNextToken() // eat '{'
			if p.err != nil {
				return p.err
			}
			if err := checkEntries(p, depth+1); err != nil {
				return err
			}
		}
	}
}
