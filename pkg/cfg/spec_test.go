package cfg

import (
	"errors"
	"io"
	"strings"
	"testing"
)

// dispatch runs a full pass over text against specs, the way the
// lifecycle layer does for a single subsystem.
func dispatch(text string, specs []*Spec) error {
	StartHandling(specs)
	p := NewParser(text)
	for {
		e, err := p.NextEntry()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		s := Find(specs, e.Name)
		if s == nil {
			return Errf(KindValidation, "unknown entry '%s'", e.Name)
		}
		if err := HandleEntry(s, e); err != nil {
			return err
		}
	}
	return FinishHandling(specs)
}

func mustPanic(t *testing.T, name string, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Errorf("%s did not panic", name)
		}
	}()
	fn()
}

func TestStartHandling_PanicsOnBadTable(t *testing.T) {
	noop := func(*Spec, *Entry) error { return nil }

	mustPanic(t, "invalid name", func() {
		StartHandling([]*Spec{{Name: "1bad", Handler: noop}})
	})
	mustPanic(t, "empty name", func() {
		StartHandling([]*Spec{{Name: "", Handler: noop}})
	})
	mustPanic(t, "nil handler", func() {
		StartHandling([]*Spec{{Name: "ok"}})
	})
}

func TestFind(t *testing.T) {
	specs := []*Spec{
		{Name: "alpha"},
		{Name: "beta"},
	}
	if s := Find(specs, "beta"); s != specs[1] {
		t.Errorf("Find(beta) = %v, want the beta spec", s)
	}
	if s := Find(specs, "ALPHA"); s != nil {
		t.Errorf("Find(ALPHA) = %v, want nil; matching is exact", s)
	}
	if s := Find(specs, "gamma"); s != nil {
		t.Errorf("Find(gamma) = %v, want nil", s)
	}
}

func TestHandleEntry_DuplicateRejected(t *testing.T) {
	n := 0
	specs := []*Spec{{
		Name:    "once",
		Handler: func(*Spec, *Entry) error { n++; return nil },
	}}

	err := dispatch("once 1;\nonce 2;\n", specs)
	if err == nil {
		t.Fatal("expected a cardinality error for the duplicate entry")
	}
	if !IsKind(err, KindCardinality) {
		t.Errorf("error kind = %v, want %s", err, KindCardinality)
	}
	if n != 1 {
		t.Errorf("handler ran %d times, want 1", n)
	}
}

func TestHandleEntry_AllowRepeat(t *testing.T) {
	var got []string
	specs := []*Spec{{
		Name:        "srv",
		AllowRepeat: true,
		Handler: func(_ *Spec, e *Entry) error {
			got = append(got, e.Vals[0])
			return nil
		},
	}}

	if err := dispatch("srv a; srv b; srv c;", specs); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	if want := "a,b,c"; strings.Join(got, ",") != want {
		t.Errorf("handled values = %q, want %q", strings.Join(got, ","), want)
	}
	if specs[0].Matched() != 3 {
		t.Errorf("Matched() = %d, want 3", specs[0].Matched())
	}
}

func TestHandleEntry_HandlerErrorPropagates(t *testing.T) {
	cause := errors.New("refusing on principle")
	specs := []*Spec{{
		Name:    "bad",
		Handler: func(*Spec, *Entry) error { return cause },
	}}

	err := dispatch("bad;", specs)
	if err == nil {
		t.Fatal("expected the handler error to fail the dispatch")
	}
	if !IsKind(err, KindHandler) {
		t.Errorf("error kind = %v, want %s", err, KindHandler)
	}
	if !errors.Is(err, cause) {
		t.Errorf("error %v does not wrap the handler's cause", err)
	}
}

func TestHandleEntry_CountsOnlySuccesses(t *testing.T) {
	fail := true
	specs := []*Spec{{
		Name: "flaky",
		Handler: func(*Spec, *Entry) error {
			if fail {
				return errors.New("first call fails")
			}
			return nil
		},
	}}

	StartHandling(specs)
	p := NewParser("flaky; flaky;")
	e, _ := p.NextEntry()
	if err := HandleEntry(specs[0], e); err == nil {
		t.Fatal("expected the first call to fail")
	}
	fail = false
	e, _ = p.NextEntry()
	// The failed call did not count, so this is not a duplicate.
	if err := HandleEntry(specs[0], e); err != nil {
		t.Fatalf("second call failed: %v", err)
	}
	if specs[0].Matched() != 1 {
		t.Errorf("Matched() = %d, want 1", specs[0].Matched())
	}
}

func TestFinishHandling_AppliesDefault(t *testing.T) {
	jobs := 0
	cache := false
	specs := []*Spec{
		{Name: "jobs", Handler: SetInt, Dest: &jobs, Default: "8", HasDefault: true},
		{Name: "cache", Handler: SetBool, Dest: &cache, Default: "on", HasDefault: true},
	}

	if err := dispatch("jobs 2;", specs); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	if jobs != 2 {
		t.Errorf("jobs = %d, want 2 from the document", jobs)
	}
	if !cache {
		t.Error("cache = false, want true from the default")
	}
}

func TestFinishHandling_AllowNone(t *testing.T) {
	s := "untouched"
	specs := []*Spec{{Name: "opt", Handler: SetString, Dest: &s, AllowNone: true}}

	if err := dispatch("", specs); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	if s != "untouched" {
		t.Errorf("dest = %q, want it left alone", s)
	}
}

func TestFinishHandling_RequiredMissing(t *testing.T) {
	v := 0
	specs := []*Spec{{Name: "required_thing", Handler: SetInt, Dest: &v}}

	err := dispatch("", specs)
	if err == nil {
		t.Fatal("expected a cardinality error for the missing entry")
	}
	if !IsKind(err, KindCardinality) {
		t.Errorf("error kind = %v, want %s", err, KindCardinality)
	}
	if !strings.Contains(err.Error(), "required_thing") {
		t.Errorf("error = %q, want it to name the missing entry", err)
	}
}

func TestFinishHandling_BrokenDefaultPanics(t *testing.T) {
	v := 0
	mustPanic(t, "unparsable default", func() {
		specs := []*Spec{{Name: "n", Handler: SetInt, Dest: &v, Default: "not a number", HasDefault: true}}
		StartHandling(specs)
		_ = FinishHandling(specs)
	})
}

func TestParseChildren_NestedBlock(t *testing.T) {
	addr := ""
	port := 0
	after := 0
	nested := []*Spec{
		{Name: "addr", Handler: SetString, Dest: &addr},
		{Name: "port", Handler: SetInt, Dest: &port, Default: "80", HasDefault: true},
	}
	specs := []*Spec{
		{Name: "srv", Handler: ParseChildren, Dest: nested},
		{Name: "after", Handler: SetInt, Dest: &after},
	}

	text := `
srv {
    addr 10.0.0.1;
    port 8080;
}
after 1;
`
	if err := dispatch(text, specs); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	if addr != "10.0.0.1" {
		t.Errorf("addr = %q, want %q", addr, "10.0.0.1")
	}
	if port != 8080 {
		t.Errorf("port = %d, want 8080", port)
	}
	if after != 1 {
		t.Errorf("after = %d, want 1; parsing did not continue past the block", after)
	}
}

func TestParseChildren_NestedDefaults(t *testing.T) {
	addr := ""
	port := 0
	nested := []*Spec{
		{Name: "addr", Handler: SetString, Dest: &addr},
		{Name: "port", Handler: SetInt, Dest: &port, Default: "80", HasDefault: true},
	}
	specs := []*Spec{{Name: "srv", Handler: ParseChildren, Dest: nested}}

	if err := dispatch("srv { addr x; }", specs); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	if port != 80 {
		t.Errorf("port = %d, want the default 80", port)
	}
}

func TestParseChildren_DeepNesting(t *testing.T) {
	leaf := 0
	inner := []*Spec{{Name: "leaf", Handler: SetInt, Dest: &leaf}}
	middle := []*Spec{{Name: "inner", Handler: ParseChildren, Dest: inner}}
	specs := []*Spec{{Name: "outer", Handler: ParseChildren, Dest: middle}}

	if err := dispatch("outer { inner { leaf 7; } }", specs); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	if leaf != 7 {
		t.Errorf("leaf = %d, want 7", leaf)
	}
}

func TestParseChildren_RepeatedSectionsKeepSeparateBooks(t *testing.T) {
	var seen []string
	nested := []*Spec{{Name: "x", Handler: func(_ *Spec, e *Entry) error {
		seen = append(seen, e.Vals[0])
		return nil
	}}}
	specs := []*Spec{{Name: "grp", AllowRepeat: true, Handler: ParseChildren, Dest: nested}}

	// Each block runs its own nested pass, so the non-repeatable 'x'
	// may appear once per block.
	if err := dispatch("grp { x one; } grp { x two; }", specs); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	if want := "one,two"; strings.Join(seen, ",") != want {
		t.Errorf("seen = %q, want %q", strings.Join(seen, ","), want)
	}

	// Within a single block the duplicate is still rejected.
	err := dispatch("grp { x a; x b; }", specs)
	if !IsKind(err, KindCardinality) {
		t.Errorf("duplicate within one block = %v, want a cardinality error", err)
	}
}

func TestParseChildren_UnknownChildSuggests(t *testing.T) {
	v := 0
	nested := []*Spec{{Name: "timeout", Handler: SetInt, Dest: &v, AllowNone: true}}
	specs := []*Spec{{Name: "srv", Handler: ParseChildren, Dest: nested}}

	err := dispatch("srv { timeut 5; }", specs)
	if err == nil {
		t.Fatal("expected an unknown entry error")
	}
	if !IsKind(err, KindValidation) {
		t.Errorf("error kind = %v, want %s", err, KindValidation)
	}
	if !strings.Contains(err.Error(), "did you mean 'timeout'") {
		t.Errorf("error = %q, want a suggestion for 'timeout'", err)
	}
	if !strings.Contains(err.Error(), "in section 'srv'") {
		t.Errorf("error = %q, want the section name, not the child name", err)
	}
}

func TestParseChildren_UnterminatedBlock(t *testing.T) {
	v := 0
	nested := []*Spec{{Name: "x", Handler: SetInt, Dest: &v, AllowNone: true}}
	specs := []*Spec{{Name: "srv", Handler: ParseChildren, Dest: nested}}

	err := dispatch("srv { x 1;", specs)
	if err == nil {
		t.Fatal("expected a syntax error for the unterminated block")
	}
	if !IsKind(err, KindSyntax) {
		t.Errorf("error kind = %v, want %s", err, KindSyntax)
	}
	if !strings.Contains(err.Error(), "'}' expected") {
		t.Errorf("error = %q, want a missing brace message", err)
	}
}

func TestParseChildren_RejectsDecoratedSection(t *testing.T) {
	nested := []*Spec{}
	specs := []*Spec{{Name: "srv", Handler: ParseChildren, Dest: nested, AllowRepeat: true}}

	err := dispatch("srv extra { }", specs)
	if err == nil {
		t.Fatal("expected a validation error for section values")
	}
	if !strings.Contains(err.Error(), "no values or attributes") {
		t.Errorf("error = %q, want a bare section message", err)
	}
}

func TestParseChildren_RejectsFlatEntry(t *testing.T) {
	nested := []*Spec{}
	specs := []*Spec{{Name: "srv", Handler: ParseChildren, Dest: nested}}

	err := dispatch("srv;", specs)
	if err == nil {
		t.Fatal("expected a validation error for the missing block")
	}
	if !strings.Contains(err.Error(), "nested block") {
		t.Errorf("error = %q, want a missing block message", err)
	}
}

func TestParseChildren_WrongDestPanics(t *testing.T) {
	specs := []*Spec{{Name: "srv", Handler: ParseChildren, Dest: "not a spec table"}}
	mustPanic(t, "wrong Dest type", func() {
		_ = dispatch("srv { }", specs)
	})
}
