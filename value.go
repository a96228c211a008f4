// value.go: the tagged runtime value model and its operator primitives.
//
// Value is a closed sum over the six runtime kinds. Operator primitives are
// free functions that know nothing about source locations; on a type mismatch
// they return an *internalError naming the offending values, and the evaluator
// rewraps that into a located *RuntimeError (see interpreter.go). Equality is
// total and never errors: values of different kinds are simply unequal,
// numbers follow IEEE-754, callables compare by identity.
package rlox

import (
	"fmt"
	"strconv"
)

// ValueTag enumerates all runtime kinds a Value may hold.
type ValueTag int

const (
	VTNil      ValueTag = iota // no payload
	VTBool                     // bool
	VTNumber                   // float64
	VTString                   // string
	VTFunction                 // *Function (user-defined closure)
	VTNative                   // *Native (host-provided)
)

func (t ValueTag) String() string {
	switch t {
	case VTNil:
		return "nil"
	case VTBool:
		return "bool"
	case VTNumber:
		return "number"
	case VTString:
		return "string"
	case VTFunction:
		return "function"
	case VTNative:
		return "native function"
	default:
		return "unknown"
	}
}

// Value is the universal runtime carrier. Tag determines which Go type Data
// holds (see ValueTag).
type Value struct {
	Tag  ValueTag
	Data interface{}
}

// Nil is the singleton nil Value.
var Nil = Value{Tag: VTNil}

func BoolVal(b bool) Value      { return Value{Tag: VTBool, Data: b} }
func NumberVal(f float64) Value { return Value{Tag: VTNumber, Data: f} }
func StringVal(s string) Value  { return Value{Tag: VTString, Data: s} }
func FunctionVal(f *Function) Value {
	return Value{Tag: VTFunction, Data: f}
}
func NativeVal(n *Native) Value { return Value{Tag: VTNative, Data: n} }

// String renders a debug representation (strings quoted). User-facing output
// goes through FormatValue in printer.go.
func (v Value) String() string {
	switch v.Tag {
	case VTNil:
		return "nil"
	case VTBool:
		return strconv.FormatBool(v.Data.(bool))
	case VTNumber:
		return strconv.FormatFloat(v.Data.(float64), 'g', -1, 64)
	case VTString:
		return fmt.Sprintf("%q", v.Data.(string))
	case VTFunction:
		return fmt.Sprintf("<fn %s>", v.Data.(*Function).Name.Name)
	case VTNative:
		return fmt.Sprintf("<native %s>", v.Data.(*Native).Name)
	default:
		return "<unknown>"
	}
}

// IsTruthy implements the conditional rule: false and nil are falsy,
// everything else (including 0 and "") is truthy.
func IsTruthy(v Value) bool {
	switch v.Tag {
	case VTNil:
		return false
	case VTBool:
		return v.Data.(bool)
	default:
		return true
	}
}

// Equal is the total cross-type equality used by == and !=. It follows
// IEEE-754 for numbers (NaN != NaN) and identity for callables.
func Equal(a, b Value) bool {
	if a.Tag != b.Tag {
		return false
	}
	switch a.Tag {
	case VTNil:
		return true
	case VTBool:
		return a.Data.(bool) == b.Data.(bool)
	case VTNumber:
		return a.Data.(float64) == b.Data.(float64)
	case VTString:
		return a.Data.(string) == b.Data.(string)
	case VTFunction:
		return a.Data.(*Function) == b.Data.(*Function)
	case VTNative:
		return a.Data.(*Native) == b.Data.(*Native)
	default:
		return false
	}
}

// --- operator primitives ---
//
// Location-free; the evaluator attaches its tracked position.

func valueAdd(l, r Value) (Value, error) {
	switch {
	case l.Tag == VTNumber && r.Tag == VTNumber:
		return NumberVal(l.Data.(float64) + r.Data.(float64)), nil
	case l.Tag == VTString && r.Tag == VTString:
		return StringVal(l.Data.(string) + r.Data.(string)), nil
	default:
		return Nil, internalErrorf("cannot add: %s and %s", l, r)
	}
}

func valueSubtract(l, r Value) (Value, error) {
	if l.Tag == VTNumber && r.Tag == VTNumber {
		return NumberVal(l.Data.(float64) - r.Data.(float64)), nil
	}
	return Nil, internalErrorf("cannot subtract: %s and %s", l, r)
}

func valueMultiply(l, r Value) (Value, error) {
	if l.Tag == VTNumber && r.Tag == VTNumber {
		return NumberVal(l.Data.(float64) * r.Data.(float64)), nil
	}
	return Nil, internalErrorf("cannot multiply: %s and %s", l, r)
}

// Division by zero follows IEEE-754 (±Inf, NaN), matching float64 semantics.
func valueDivide(l, r Value) (Value, error) {
	if l.Tag == VTNumber && r.Tag == VTNumber {
		return NumberVal(l.Data.(float64) / r.Data.(float64)), nil
	}
	return Nil, internalErrorf("cannot divide: %s and %s", l, r)
}

func valueNegate(v Value) (Value, error) {
	if v.Tag == VTNumber {
		return NumberVal(-v.Data.(float64)), nil
	}
	return Nil, internalErrorf("cannot negate: %s", v)
}

func numberPair(l, r Value, op string) (float64, float64, error) {
	if l.Tag == VTNumber && r.Tag == VTNumber {
		return l.Data.(float64), r.Data.(float64), nil
	}
	return 0, 0, internalErrorf("cannot compare (%s): %s and %s", op, l, r)
}

func valueLess(l, r Value) (Value, error) {
	a, b, err := numberPair(l, r, "<")
	if err != nil {
		return Nil, err
	}
	return BoolVal(a < b), nil
}

func valueLessEqual(l, r Value) (Value, error) {
	a, b, err := numberPair(l, r, "<=")
	if err != nil {
		return Nil, err
	}
	return BoolVal(a <= b), nil
}

func valueGreater(l, r Value) (Value, error) {
	a, b, err := numberPair(l, r, ">")
	if err != nil {
		return Nil, err
	}
	return BoolVal(a > b), nil
}

func valueGreaterEqual(l, r Value) (Value, error) {
	a, b, err := numberPair(l, r, ">=")
	if err != nil {
		return Nil, err
	}
	return BoolVal(a >= b), nil
}
