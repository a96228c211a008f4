// function.go: the two callable kinds and the call protocol.
//
// The callable space is a closed sum: Function (interpreted) and Native
// (host-provided). Dispatch over the two is a single switch in visitCall;
// equality between callables is pointer identity, never structural.
package rlox

// Function is a user-defined closure. Captured is the frame that was current
// when the declaring statement executed, fixed at declaration rather than
// call time, which is what lets the body resolve free variables in its
// defining lexical context from any later call site.
type Function struct {
	Name     Identifier
	Params   []Identifier
	Body     *BlockStmt
	Captured *Frame
}

// NativeFn is the host function signature. It receives the interpreter so
// built-ins can reach back into the runtime (e.g. stringification).
type NativeFn func(ip *Interpreter, args []Value) (Value, error)

// Native is a host-provided function exposed into the language's call
// protocol without a language-level body.
type Native struct {
	Name  string
	Arity int
	Fn    NativeFn
}

// callFunction runs an interpreted callable: swap in the captured lexical
// ancestry, bind parameters, execute the body, and restore the caller's
// frame on every exit path, runtime errors included.
func (ip *Interpreter) callFunction(fn *Function, args []Value) (Value, error) {
	if len(args) != len(fn.Params) {
		return Nil, ip.runtimeErrorf("expected %d arguments, got %d", len(fn.Params), len(args))
	}

	ip.Environment.PushClosure(fn.Captured)
	defer ip.Environment.PopClosure()

	for i, param := range fn.Params {
		if err := ip.Environment.Define(param, args[i]); err != nil {
			return Nil, err
		}
	}

	ctrl, err := ip.execBlock(fn.Body)
	if err != nil {
		return Nil, err
	}
	if ctrl.returned {
		return ctrl.value, nil
	}
	// The body ran to completion without a return.
	return Nil, nil
}

// callNative arity-checks and invokes a host function directly, without
// pushing any scope.
func (ip *Interpreter) callNative(n *Native, args []Value) (Value, error) {
	if len(args) != n.Arity {
		return Nil, ip.runtimeErrorf("expected %d arguments, got %d", n.Arity, len(args))
	}
	return n.Fn(ip, args)
}
