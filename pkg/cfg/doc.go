// Package cfg implements the Tempesta configuration language: a
// block-structured, nestable text format parsed into typed data that
// independently registered subsystems consume through declarative
// specifications.
//
// # Grammar
//
// A document is a flat sequence of entries. Each entry has a name,
// optional positional values, optional key/value attributes, and ends
// with either a semicolon or a nested block:
//
//	listen 192.168.1.1 port=8080;
//	cache on;
//	section {
//	    nested_option 42;
//	}
//
// Informally:
//
//	document := entry*
//	entry    := NAME (value | attr)* (';' | '{')
//	value    := LITERAL
//	attr     := LITERAL '=' LITERAL
//	NAME     := letter (letter | digit | '_')*
//
// Bare literals end at whitespace or at any of the special characters
// `"#{};=`. A backslash keeps the following character inside the
// literal; the backslash itself stays in the value, since escaping
// decides token boundaries rather than decoding the text. Quoted
// literals run between double quotes and may contain anything,
// including line breaks. A `#` starts a comment that runs to the end
// of the line.
//
// # Parsing
//
// Parsing is a two-stage state machine: a character-level tokenizer
// and a token-level entry builder. A Parser returns one Entry at a
// time and deliberately stops at an opening brace instead of
// recursing; there is no syntax tree. Nested blocks are consumed by the
// caller, normally through the ParseChildren handler, which continues
// on the same Parser:
//
//	p := cfg.NewParser(text)
//	for {
//	    e, err := p.NextEntry()
//	    if errors.Is(err, io.EOF) {
//	        break
//	    }
//	    // dispatch e
//	}
//
// # Specs
//
// A Spec describes one recognized entry name: its handler, cardinality
// rules (AllowRepeat, AllowNone), an optional default, and an opaque
// destination the handler writes through. A dispatch pass runs
// StartHandling, matches each parsed entry to a Spec via Find and
// dispatches it with HandleEntry, then runs FinishHandling, which
// synthesizes defaults for entries that never appeared and reports
// required entries that are missing.
//
//	cache := false
//	specs := []*cfg.Spec{{
//	    Name:    "cache",
//	    Handler: cfg.SetBool,
//	    Dest:    &cache,
//	    Default: "off",
//	    HasDefault: true,
//	}}
//
// Typed handlers (SetBool, SetInt, SetString) and the MapEnum helper
// cover the common single-value cases, including integer base
// detection where "0x" means hexadecimal, "0b" means binary, and a
// leading zero stays decimal.
//
// # Errors
//
// Data errors are returned as *Error with a Kind (syntax, validation,
// cardinality, handler) and, when positional, a byte offset plus a
// short excerpt of the preceding input for "syntax error near"
// rendering. Contract violations in the calling code (an invalid
// spec table, a default value that does not parse) panic instead, in
// the manner of prometheus.MustRegister.
//
// # Concurrency
//
// A Parser is purely sequential: it owns one cursor, one token of
// lookback and one Entry that is reset and reused. It must not be
// shared between goroutines, and only one dispatch pass may be in
// flight against a given spec table at a time.
package cfg
