package cfg

import (
	"fmt"
	"io"
)

// Handler processes one parsed Entry that matched a Spec. The Spec is
// passed alongside the Entry so generic handlers can reach Dest and
// Ext without closures.
type Handler func(spec *Spec, e *Entry) error

// Spec describes one recognized entry name: how to handle it, how many
// times it may appear, and what happens when it does not appear at
// all. Spec tables are built in source code, so malformed tables are
// defects and StartHandling panics on them.
type Spec struct {
	// Name is the entry name this spec matches, a valid identifier.
	Name string

	// Handler is invoked for every entry matched to this spec.
	Handler Handler

	// Dest points at destination state owned by the registering
	// subsystem. The typed handlers assert it to *bool, *int or
	// *string; ParseChildren expects the nested []*Spec here.
	Dest any

	// Ext carries optional handler-specific constraints: *IntSpec for
	// SetInt, *StrSpec for SetString.
	Ext any

	// Default is the value text of a fabricated entry dispatched by
	// FinishHandling when the entry never appears in the document. The
	// synthesized "Name Default;" must itself parse and pass the
	// handler; it is source code, so FinishHandling panics when it
	// does not. HasDefault tells an empty default from no default.
	Default    string
	HasDefault bool

	// AllowRepeat permits the entry to appear more than once. Each
	// occurrence is dispatched.
	AllowRepeat bool

	// AllowNone permits the entry to be absent even without a default.
	AllowNone bool

	// matched counts entries dispatched within the current pass.
	matched int
}

// StartHandling begins a dispatch pass over specs, resetting every
// match counter. It asserts the table contract on the way: a spec
// without a valid identifier name or without a handler panics, since
// the table is part of the calling subsystem, not input.
func StartHandling(specs []*Spec) {
	for _, s := range specs {
		if !validIdent(s.Name) {
			panic(fmt.Sprintf("cfg: spec has invalid name %q", s.Name))
		}
		if s.Handler == nil {
			panic(fmt.Sprintf("cfg: spec %q has no handler", s.Name))
		}
		s.matched = 0
	}
}

// Find returns the spec whose name equals name, or nil. Matching is
// exact; there are no wildcards.
func Find(specs []*Spec, name string) *Spec {
	for _, s := range specs {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// Names returns the spec names in table order.
func Names(specs []*Spec) []string {
	names := make([]string, len(specs))
	for i, s := range specs {
		names[i] = s.Name
	}
	return names
}

// HandleEntry dispatches e through spec's handler, enforcing the
// at-most-once rule for non-repeatable specs. An error returned by the
// handler fails the dispatch; handler errors that are not *Error are
// wrapped as KindHandler with the cause preserved.
func HandleEntry(spec *Spec, e *Entry) error {
	if !spec.AllowRepeat && spec.matched > 0 {
		return e.Annotate(&Error{
			Kind:    KindCardinality,
			Message: fmt.Sprintf("duplicate entry '%s': only one such entry is allowed", e.Name),
			Spec:    spec.Name,
			Offset:  -1,
		})
	}
	if err := spec.Handler(spec, e); err != nil {
		if ce, ok := err.(*Error); ok {
			if ce.Spec == "" {
				ce.Spec = spec.Name
			}
			return e.Annotate(ce)
		}
		return e.Annotate(&Error{
			Kind:    KindHandler,
			Message: fmt.Sprintf("handler for entry '%s' failed", spec.Name),
			Spec:    spec.Name,
			Offset:  -1,
			Err:     err,
		})
	}
	spec.matched++
	return nil
}

// Matched reports how many entries this spec has handled in the
// current pass.
func (s *Spec) Matched() int { return s.matched }

// FinishHandling completes a dispatch pass: every spec that never
// matched either gets its default dispatched, is skipped when
// AllowNone is set, or fails the pass as required-but-missing.
func FinishHandling(specs []*Spec) error {
	for _, s := range specs {
		switch {
		case s.matched > 0:
		case s.HasDefault:
			handleDefault(s)
		case s.AllowNone:
		default:
			return &Error{
				Kind:    KindCardinality,
				Message: fmt.Sprintf("the required entry '%s' was not found", s.Name),
				Spec:    s.Name,
				Offset:  -1,
			}
		}
	}
	return nil
}

// handleDefault synthesizes "name default;" on a scratch parser and
// pushes it through the normal dispatch path. Defaults live in source
// code, so any failure here is a defect and panics.
func handleDefault(spec *Spec) {
	text := fmt.Sprintf("%s %s;", spec.Name, spec.Default)
	p := NewParser(text)
	e, err := p.NextEntry()
	if err != nil {
		panic(fmt.Sprintf("cfg: default for spec %q does not parse: %v (from %q)", spec.Name, err, text))
	}
	if p.tok != tokenNone {
		panic(fmt.Sprintf("cfg: default for spec %q is more than one entry (from %q)", spec.Name, text))
	}
	if err := HandleEntry(spec, e); err != nil {
		panic(fmt.Sprintf("cfg: default for spec %q was rejected: %v", spec.Name, err))
	}
}

// ParseChildren is the Handler for entries that open a nested block.
// Dest must hold the child spec table ([]*Spec). The entry itself must
// be bare: no values, no attributes, and a block present.
//
// The block is consumed in place on the same Parser that produced e,
// one child entry at a time, with its own StartHandling and
// FinishHandling pass so every nesting level keeps independent
// cardinality bookkeeping. Recursion depth is bounded only by the call
// stack. On return the Parser is positioned after the closing brace.
func ParseChildren(spec *Spec, e *Entry) error {
	nested, ok := spec.Dest.([]*Spec)
	if !ok {
		panic(fmt.Sprintf("cfg: spec %q: ParseChildren needs a []*Spec destination, got %T", spec.Name, spec.Dest))
	}
	if len(e.Vals) > 0 || len(e.Attrs) > 0 {
		return Errf(KindValidation, "section '%s' must have no values or attributes", e.Name)
	}
	if !e.HasChildren {
		return Errf(KindValidation, "section '%s' must open a nested block", e.Name)
	}
	p := e.ps
	if p == nil || p.tok != tokenLBrace {
		panic(fmt.Sprintf("cfg: spec %q: parser is not positioned at a nested block", spec.Name))
	}

	// e is the Parser's reusable Entry; reading the first child
	// overwrites it. Only the section name is needed past that point.
	section := e.Name

	StartHandling(nested)

	p.readNextToken() // eat '{'
	if p.err != nil {
		return p.err
	}

	for p.tok != tokenRBrace {
		child, err := p.NextEntry()
		if err != nil {
			if err == io.EOF {
				return p.fail(p.syntaxErrf("unexpected end of input: '}' expected to close section '%s'", section))
			}
			return err
		}
		match := Find(nested, child.Name)
		if match == nil {
			return child.Annotate(&Error{
				Kind:       KindValidation,
				Message:    fmt.Sprintf("unknown entry '%s' in section '%s'", child.Name, section),
				Spec:       section,
				Offset:     -1,
				Suggestion: SuggestName(child.Name, Names(nested)),
			})
		}
		if err := HandleEntry(match, child); err != nil {
			return err
		}
	}

	p.readNextToken() // eat '}'
	if p.err != nil {
		return p.err
	}

	return FinishHandling(nested)
}
