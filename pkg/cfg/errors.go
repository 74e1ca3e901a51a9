package cfg

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"
)

// Kind classifies configuration errors so callers can branch on the
// failure class without matching message strings.
type Kind string

const (
	// KindSyntax covers lexing and grammar violations: unterminated
	// quoted literals, unexpected tokens, premature end of input.
	KindSyntax Kind = "syntax"

	// KindValidation covers structurally valid entries carrying bad
	// data: invalid identifiers, unknown names, wrong value arity,
	// out-of-range numbers, over-capacity entries.
	KindValidation Kind = "validation"

	// KindCardinality covers duplicated non-repeatable entries and
	// required entries that never appeared.
	KindCardinality Kind = "cardinality"

	// KindHandler wraps errors returned by a Spec's own handler. The
	// cause is preserved and can be unwrapped.
	KindHandler Kind = "handler"

	// KindLifecycle covers subsystem callback failures during state
	// transitions. The cfg package itself never produces it; the
	// lifecycle package does.
	KindLifecycle Kind = "lifecycle"
)

// excerptLen bounds the input excerpt attached to positional errors.
const excerptLen = 80

// Error is the error type produced by parsing, dispatch and lifecycle
// processing.
type Error struct {
	Kind    Kind
	Message string

	// Offset is the byte offset into the document at which the error
	// was detected, or -1 when no position applies (for example a
	// required entry that never appeared).
	Offset int

	// Excerpt holds up to excerptLen bytes of input preceding Offset.
	Excerpt string

	// Spec names the specification involved, when one is known.
	Spec string

	// Suggestion optionally carries a "did you mean" hint for an
	// unknown entry name.
	Suggestion string

	// Err is the wrapped cause, set for KindHandler and KindLifecycle.
	Err error
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", e.Kind, e.Message)
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	if e.Excerpt != "" {
		fmt.Fprintf(&b, "\n  near: %q (offset %d)", e.Excerpt, e.Offset)
	}
	if e.Suggestion != "" {
		fmt.Fprintf(&b, "\n  %s", e.Suggestion)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Errf builds a positionless Error of the given kind. Parsing code
// stamps a position on before the error escapes; errors raised outside
// a parse keep Offset -1.
func Errf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Offset: -1}
}

// IsKind reports whether err is (or wraps) an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var ce *Error
	return errors.As(err, &ce) && ce.Kind == kind
}

// SuggestName returns a human "did you mean" hint for an unknown name
// against the known set, or "" when nothing ranks close enough.
func SuggestName(name string, known []string) string {
	ranks := fuzzy.RankFindFold(name, known)
	if len(ranks) == 0 {
		return ""
	}
	sort.Sort(ranks)
	return fmt.Sprintf("did you mean '%s'?", ranks[0].Target)
}
