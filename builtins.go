// builtins.go: native function registration and the standard natives.
package rlox

import "time"

// DefineNative exposes a host function to programs under the given name,
// defined in the current frame (the global frame at construction time).
func (ip *Interpreter) DefineNative(name string, arity int, fn NativeFn) error {
	ident := Identifier{
		Name:  name,
		ID:    -1, // natives are not resolved occurrences
		Debug: DebugInfo{Lexeme: "<native " + name + ">"},
	}
	return ip.Environment.Define(ident, NativeVal(&Native{Name: name, Arity: arity, Fn: fn}))
}

// registerStandardNatives installs the built-ins every interpreter starts
// with. The language core has no I/O surface beyond print; embedders add
// their own capabilities via DefineNative.
func registerStandardNatives(ip *Interpreter) {
	// clock() → seconds since the Unix epoch, fractional.
	mustDefine(ip, "clock", 0, func(_ *Interpreter, _ []Value) (Value, error) {
		return NumberVal(float64(time.Now().UnixNano()) / 1e9), nil
	})

	// str(v) → the user-facing rendering of any value.
	mustDefine(ip, "str", 1, func(_ *Interpreter, args []Value) (Value, error) {
		return StringVal(FormatValue(args[0])), nil
	})
}

func mustDefine(ip *Interpreter, name string, arity int, fn NativeFn) {
	if err := ip.DefineNative(name, arity, fn); err != nil {
		panic("builtins: " + err.Error())
	}
}
