// Package remap converts categorical survey answers into small integer
// codes. A Rule is either a closed lookup table or a derived function;
// both paths are dispatched explicitly so a caller can tell from the
// constructor which kind it built.
//
// Missingness is decided at the table-loading boundary: a Value is
// either a present string or explicitly absent, never a magic string.
package remap

import (
	"fmt"
	"strings"
)

// Value is an optional cell value. The zero Value is missing.
type Value struct {
	s       string
	present bool
}

// String wraps a present value.
func String(s string) Value { return Value{s: s, present: true} }

// Missing returns an explicitly absent value.
func Missing() Value { return Value{} }

// IsMissing reports whether the value is absent.
func (v Value) IsMissing() bool { return !v.present }

// Raw returns the underlying string; empty when missing.
func (v Value) Raw() string { return v.s }

// DefaultSentinel is the integer written for missing values unless a
// column overrides it.
const DefaultSentinel = -1

// UnknownCategoryError reports a value outside a rule's closed vocabulary.
type UnknownCategoryError struct {
	Value string
}

func (e *UnknownCategoryError) Error() string {
	return fmt.Sprintf("unknown category %q", e.Value)
}

// Rule maps one raw string to an integer code. Exactly one of the two
// variants is set; construct via Table or Func.
type Rule struct {
	table map[string]int
	fn    func(string) (int, error)
}

// Table builds a lookup rule over a closed vocabulary.
func Table(m map[string]int) Rule { return Rule{table: m} }

// Func builds a derived rule. The function must return
// *UnknownCategoryError for values it cannot resolve.
func Func(fn func(string) (int, error)) Rule { return Rule{fn: fn} }

// Apply resolves a single present token. A table rule fails with
// *UnknownCategoryError when the token is not a key; a func rule
// delegates entirely to the function.
func (r Rule) Apply(token string) (int, error) {
	if r.fn != nil {
		return r.fn(token)
	}
	code, ok := r.table[token]
	if !ok {
		return 0, &UnknownCategoryError{Value: token}
	}
	return code, nil
}

// ToInt remaps a value to its integer code. Missing values short-circuit
// to sentinel without consulting the rule.
func ToInt(v Value, r Rule, sentinel int) (int, error) {
	if v.IsMissing() {
		return sentinel, nil
	}
	return r.Apply(v.Raw())
}

// YesNo remaps "Yes"/"No" to 1/0, with the default missing sentinel.
func YesNo(v Value) (int, error) {
	return ToInt(v, yesNoRule, DefaultSentinel)
}

// YesNoRule returns the shared Yes/No lookup rule.
func YesNoRule() Rule { return yesNoRule }

var yesNoRule = Table(map[string]int{
	"Yes": 1,
	"No":  0,
})

// List remaps a comma-separated multi-select answer to a bit field.
// Each token resolves to a bit index via indexRule and the results are
// OR-ed together, so duplicates are idempotent and order is irrelevant.
// Tokens are used exactly as split: no trimming, no quote handling, and
// an individual token is never treated as missing. Callers must route a
// truly absent answer through ToInt's sentinel path instead; an empty
// string splits into one empty token and fails here.
func List(values string, indexRule Rule) (int, error) {
	result := 0
	for _, token := range strings.Split(values, ",") {
		idx, err := indexRule.Apply(token)
		if err != nil {
			return 0, err
		}
		result |= 1 << idx
	}
	return result, nil
}
