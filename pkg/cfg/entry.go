package cfg

// Capacity bounds for a single entry. Hitting a bound is an error, not
// a truncation, so a runaway document cannot silently lose data.
const (
	// MaxValues is the maximum number of positional values per entry.
	MaxValues = 32
	// MaxAttrs is the maximum number of attributes per entry.
	MaxAttrs = 16
)

// Attr is one key/value attribute of an Entry.
type Attr struct {
	Key string
	Val string
}

// Entry is one parsed configuration statement: a name, positional
// values in document order, key/value attributes in document order,
// and a flag telling whether the entry opens a nested block instead of
// ending with a semicolon.
//
// The Entry returned by Parser.NextEntry is owned by the Parser and is
// reset on the next call. The strings inside it are slices of the
// original document and stay valid after the Entry is reused.
type Entry struct {
	Name        string
	Vals        []string
	Attrs       []Attr
	HasChildren bool

	// ps is the Parser that produced this entry. ParseChildren uses it
	// to consume the nested block from the same input, and error paths
	// use it to stamp the current position onto positionless errors.
	ps *Parser
}

// Attr returns the value of the first attribute named key.
func (e *Entry) Attr(key string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// AttrOr returns the value of the first attribute named key, or deflt
// when the entry has no such attribute.
func (e *Entry) AttrOr(key, deflt string) string {
	if v, ok := e.Attr(key); ok {
		return v
	}
	return deflt
}

func (e *Entry) reset() {
	e.Name = ""
	e.Vals = e.Vals[:0]
	e.Attrs = e.Attrs[:0]
	e.HasChildren = false
}

func (e *Entry) setName(name string) error {
	if !validIdent(name) {
		return Errf(KindValidation, "invalid entry name '%s'", name)
	}
	e.Name = name
	return nil
}

func (e *Entry) addVal(val string) error {
	if len(e.Vals) == MaxValues {
		return Errf(KindValidation, "entry '%s': maximum number of values reached (%d)", e.Name, MaxValues)
	}
	e.Vals = append(e.Vals, val)
	return nil
}

func (e *Entry) addAttr(key, val string) error {
	if len(e.Attrs) == MaxAttrs {
		return Errf(KindValidation, "entry '%s': maximum number of attributes reached (%d)", e.Name, MaxAttrs)
	}
	if !validIdent(key) {
		return Errf(KindValidation, "entry '%s': invalid attribute name '%s'", e.Name, key)
	}
	e.Attrs = append(e.Attrs, Attr{Key: key, Val: val})
	return nil
}

// Annotate stamps the owning parser's position onto err when the
// error is a *Error without a position of its own. Dispatch layers
// outside this package use it to keep "near:" context on errors they
// raise themselves, such as unknown-entry reports.
func (e *Entry) Annotate(err error) error {
	if e.ps == nil {
		return err
	}
	if ce, ok := err.(*Error); ok && ce.Offset < 0 {
		ce.Offset = e.ps.pos
		ce.Excerpt = e.ps.excerpt()
	}
	return err
}

// validIdent reports whether s is a valid identifier: an ASCII letter
// followed by letters, digits or underscores.
func validIdent(s string) bool {
	if s == "" || !isAlpha(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if c := s[i]; !isAlpha(c) && !isDigit(c) && c != '_' {
			return false
		}
	}
	return true
}

func isAlpha(c byte) bool { return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' }
func isDigit(c byte) bool { return c >= '0' && c <= '9' }
