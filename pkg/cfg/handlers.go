package cfg

import (
	"fmt"
	"strconv"
	"strings"
)

// Range is an inclusive numeric bound. It is enforced only when Min
// and Max differ, so the zero value means unconstrained.
type Range struct {
	Min int
	Max int
}

// IntSpec is the Ext payload for SetInt.
type IntSpec struct {
	// MultipleOf, when non-zero, requires the value to be divisible by
	// it.
	MultipleOf int
	// Range, when Min != Max, bounds the value inclusively.
	Range Range
}

// StrSpec is the Ext payload for SetString.
type StrSpec struct {
	// Cap, when non-zero, is the maximum accepted length in bytes.
	// Longer values are rejected, never truncated.
	Cap int
	// LenRange, when Min != Max, bounds the length inclusively.
	LenRange Range
}

// CheckSingleValue verifies the shape shared by the typed handlers:
// exactly one value, no attributes, no nested block.
func CheckSingleValue(e *Entry) error {
	switch {
	case len(e.Vals) == 0:
		return Errf(KindValidation, "entry '%s': no value specified", e.Name)
	case len(e.Vals) > 1:
		return Errf(KindValidation, "entry '%s': more than one value specified", e.Name)
	case len(e.Attrs) > 0:
		return Errf(KindValidation, "entry '%s': attributes are not expected", e.Name)
	case e.HasChildren:
		return Errf(KindValidation, "entry '%s': a nested block is not expected", e.Name)
	}
	return nil
}

// ParseBool recognizes the boolean word set, case-insensitively:
// 1/y/on/yes/true/enable and 0/n/off/no/false/disable.
func ParseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "1", "y", "on", "yes", "true", "enable":
		return true, nil
	case "0", "n", "off", "no", "false", "disable":
		return false, nil
	}
	return false, Errf(KindValidation, "invalid boolean value '%s'", s)
}

// detectBase splits an optional base prefix off an integer literal:
// "0x" is hexadecimal and "0b" is binary, both in either case. A bare
// leading zero stays decimal, so "010" is ten, not eight. Any other
// letter after a leading zero is an unknown prefix, reported as base
// zero.
func detectBase(s string) (digits string, base int) {
	if len(s) > 2 && s[0] == '0' && isAlpha(s[1]) {
		switch s[1] {
		case 'x', 'X':
			return s[2:], 16
		case 'b', 'B':
			return s[2:], 2
		}
		return s[2:], 0
	}
	return s, 10
}

// ParseInt converts a configuration integer with base detection.
func ParseInt(s string) (int, error) {
	digits, base := detectBase(s)
	if base == 0 {
		return 0, Errf(KindValidation, "invalid integer value '%s'", s)
	}
	n, err := strconv.ParseInt(digits, base, strconv.IntSize)
	if err != nil {
		return 0, Errf(KindValidation, "invalid integer value '%s'", s)
	}
	return int(n), nil
}

// SetBool is a Handler that stores a single boolean value through Dest
// (*bool).
func SetBool(spec *Spec, e *Entry) error {
	dest, ok := spec.Dest.(*bool)
	if !ok {
		panic(fmt.Sprintf("cfg: spec %q: SetBool needs a *bool destination, got %T", spec.Name, spec.Dest))
	}
	if err := CheckSingleValue(e); err != nil {
		return err
	}
	v, err := ParseBool(e.Vals[0])
	if err != nil {
		return err
	}
	*dest = v
	return nil
}

// SetInt is a Handler that stores a single integer value through Dest
// (*int), applying the *IntSpec constraints from Ext when present.
func SetInt(spec *Spec, e *Entry) error {
	dest, ok := spec.Dest.(*int)
	if !ok {
		panic(fmt.Sprintf("cfg: spec %q: SetInt needs an *int destination, got %T", spec.Name, spec.Dest))
	}
	if err := CheckSingleValue(e); err != nil {
		return err
	}
	v, err := ParseInt(e.Vals[0])
	if err != nil {
		return err
	}
	if spec.Ext != nil {
		ext, ok := spec.Ext.(*IntSpec)
		if !ok {
			panic(fmt.Sprintf("cfg: spec %q: SetInt needs *IntSpec constraints, got %T", spec.Name, spec.Ext))
		}
		if ext.MultipleOf != 0 && v%ext.MultipleOf != 0 {
			return Errf(KindValidation, "entry '%s': %d is not a multiple of %d", e.Name, v, ext.MultipleOf)
		}
		if r := ext.Range; r.Min != r.Max && (v < r.Min || v > r.Max) {
			return Errf(KindValidation, "entry '%s': %d is out of range [%d, %d]", e.Name, v, r.Min, r.Max)
		}
	}
	*dest = v
	return nil
}

// SetString is a Handler that stores a single string value through
// Dest (*string), applying the *StrSpec constraints from Ext when
// present.
func SetString(spec *Spec, e *Entry) error {
	dest, ok := spec.Dest.(*string)
	if !ok {
		panic(fmt.Sprintf("cfg: spec %q: SetString needs a *string destination, got %T", spec.Name, spec.Dest))
	}
	if err := CheckSingleValue(e); err != nil {
		return err
	}
	s := e.Vals[0]
	if spec.Ext != nil {
		ext, ok := spec.Ext.(*StrSpec)
		if !ok {
			panic(fmt.Sprintf("cfg: spec %q: SetString needs *StrSpec constraints, got %T", spec.Name, spec.Ext))
		}
		if ext.Cap > 0 && len(s) > ext.Cap {
			return Errf(KindValidation, "entry '%s': the value is too long (%d bytes, capacity %d)", e.Name, len(s), ext.Cap)
		}
		if r := ext.LenRange; r.Min != r.Max && (len(s) < r.Min || len(s) > r.Max) {
			return Errf(KindValidation, "entry '%s': the length %d is out of range [%d, %d]", e.Name, len(s), r.Min, r.Max)
		}
	}
	*dest = s
	return nil
}

// EnumMapping associates one name with an integer value inside a
// MapEnum table.
type EnumMapping struct {
	Name  string
	Value int
}

// MapEnum resolves name against a static mapping table,
// case-insensitively. The input must be a valid identifier. Table
// names are part of the calling code, so an invalid one panics.
func MapEnum(mappings []EnumMapping, name string, out *int) error {
	if out == nil {
		panic("cfg: MapEnum needs a non-nil output")
	}
	if !validIdent(name) {
		return Errf(KindValidation, "invalid enum value '%s'", name)
	}
	for _, m := range mappings {
		if !validIdent(m.Name) {
			panic(fmt.Sprintf("cfg: enum table name %q is not a valid identifier", m.Name))
		}
		if strings.EqualFold(m.Name, name) {
			*out = m.Value
			return nil
		}
	}
	return Errf(KindValidation, "unknown enum value '%s'", name)
}
