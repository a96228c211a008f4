// interpreter.go: the public surface and the evaluator.
//
// OVERVIEW
// ========
// Interpreter executes a resolved program against its Environment. It is an
// explicit instance, never process-wide state: independent interpreters can
// coexist (the tests rely on this), and a REPL is just one instance fed one
// chunk at a time.
//
// Entry points:
//   - NewInterpreter(): fresh global environment with the standard natives
//     (clock, str) pre-registered.
//   - Execute(program, table): run a parsed+resolved statement sequence.
//   - Run(src): the whole pipeline, scan to parse to resolve to execute,
//     with identifier ids threaded across calls so a persistent interpreter
//     can keep extending its access table chunk by chunk.
//   - DefineNative(name, arity, fn): the embedder capability hook.
//
// EXECUTION MODEL
// ---------------
// Statement execution returns a control record with two success variants,
// Normal and Returned(value); both are ordinary data, never errors. Every
// statement sequence checks and propagates Returned immediately, so a
// `return` deep in nested blocks/loops unwinds to the call boundary without being
// swallowed; the call protocol (function.go) converts it into the call's
// result. A top-level program behaves like an implicit function body, so
// Execute's CallResult distinguishes a top-level return from normal
// completion.
//
// ERRORS
// ------
// All failures are error returns. The evaluator tracks the last-touched
// source position (updated at each operator/statement dispatch) and rewraps
// the location-free internalError of the value primitives into a located
// *RuntimeError at the evaluate() boundary, so a deeply nested evaluation
// still reports a precise position. A runtime error aborts the current
// Execute but leaves already-mutated global state intact; the host process
// (REPL) keeps running.
//
// The only side-effect boundary is Stdout, which the `print` statement
// writes through.
package rlox

import (
	"io"
	"os"
)

// CallResult is the outcome of a completed statement sequence: either normal
// completion or a top-level return carrying a value.
type CallResult struct {
	Returned bool
	Value    Value
}

// control is the internal statement signal; returned is the Return variant.
type control struct {
	returned bool
	value    Value
}

var normal = control{}

// Interpreter executes statements and evaluates expressions against an
// Environment.
type Interpreter struct {
	Environment *Environment

	// Stdout receives `print` output. Defaults to os.Stdout.
	Stdout io.Writer

	// Last-touched source position, for locating runtime errors.
	line     int
	position int

	// Next identifier id for Run's parser, kept unique across chunks.
	nextID IdentifierID
}

// NewInterpreter seeds a fresh global environment and registers the standard
// natives.
func NewInterpreter() *Interpreter {
	ip := &Interpreter{
		Environment: NewEnvironment(),
		Stdout:      os.Stdout,
	}
	registerStandardNatives(ip)
	return ip
}

// Execute runs a statement sequence after merging its access table. The
// program must have been resolved with ids that are fresh for this
// interpreter (Run takes care of that automatically).
func (ip *Interpreter) Execute(program []Stmt, table *AccessTable) (CallResult, error) {
	if err := ip.Environment.ExtendAccessTable(table); err != nil {
		return CallResult{}, err
	}
	ctrl, err := ip.run(program)
	if err != nil {
		return CallResult{}, err
	}
	return CallResult{Returned: ctrl.returned, Value: ctrl.value}, nil
}

// Run feeds source through the whole pipeline. Scan, parse and resolve
// errors abort before any statement executes.
func (ip *Interpreter) Run(src string) (CallResult, error) {
	tokens, err := ScanTokens(src)
	if err != nil {
		return CallResult{}, err
	}

	parser := NewParser(tokens)
	parser.SetIDBase(ip.nextID)
	program, err := parser.Parse()
	if err != nil {
		return CallResult{}, err
	}
	ip.nextID = parser.NextID()

	table, err := Resolve(program)
	if err != nil {
		return CallResult{}, err
	}
	return ip.Execute(program, table)
}

func (ip *Interpreter) setDebug(d DebugInfo) {
	ip.line = d.Line
	ip.position = d.Position
}

func (ip *Interpreter) runtimeErrorf(format string, args ...interface{}) *RuntimeError {
	e := internalErrorf(format, args...)
	return &RuntimeError{Line: ip.line, Col: ip.position, Msg: e.msg}
}

// run executes a statement sequence in the current frame, propagating the
// Returned signal as soon as a child produces it.
func (ip *Interpreter) run(statements []Stmt) (control, error) {
	for _, stmt := range statements {
		ctrl, err := ip.execStmt(stmt)
		if err != nil {
			return normal, err
		}
		if ctrl.returned {
			return ctrl, nil
		}
	}
	return normal, nil
}

// execBlock runs statements in a fresh frame. The deferred Pop keeps the
// push/pop discipline intact on every exit path, error or not.
func (ip *Interpreter) execBlock(block *BlockStmt) (control, error) {
	ip.Environment.Push()
	defer ip.Environment.Pop()
	return ip.run(block.Statements)
}

func (ip *Interpreter) execStmt(stmt Stmt) (control, error) {
	switch s := stmt.(type) {
	case *ExpressionStmt:
		_, err := ip.evaluate(s.Expression)
		return normal, err

	case *PrintStmt:
		value, err := ip.evaluate(s.Expression)
		if err != nil {
			return normal, err
		}
		ip.setDebug(s.Debug)
		if _, err := io.WriteString(ip.Stdout, FormatValue(value)+"\n"); err != nil {
			return normal, ip.runtimeErrorf("print failed: %v", err)
		}
		return normal, nil

	case *VarStmt:
		value := Nil
		if s.Initializer != nil {
			var err error
			value, err = ip.evaluate(s.Initializer)
			if err != nil {
				return normal, err
			}
		}
		return normal, ip.Environment.Define(s.Name, value)

	case *BlockStmt:
		return ip.execBlock(s)

	case *IfStmt:
		cond, err := ip.evaluate(s.Condition)
		if err != nil {
			return normal, err
		}
		if IsTruthy(cond) {
			return ip.execBlock(s.Then)
		}
		if s.Else != nil {
			return ip.execBlock(s.Else)
		}
		return normal, nil

	case *WhileStmt:
		for {
			cond, err := ip.evaluate(s.Condition)
			if err != nil {
				return normal, err
			}
			if !IsTruthy(cond) {
				return normal, nil
			}
			ctrl, err := ip.execBlock(s.Body)
			if err != nil {
				return normal, err
			}
			if ctrl.returned {
				return ctrl, nil
			}
		}

	case *FunctionStmt:
		// Capturing the frame now, at declaration rather than call time,
		// is what makes the value a closure.
		fn := &Function{
			Name:     s.Name,
			Params:   s.Params,
			Body:     s.Body,
			Captured: ip.Environment.CurrentFrame(),
		}
		return normal, ip.Environment.Define(s.Name, FunctionVal(fn))

	case *ReturnStmt:
		value := Nil
		if s.Value != nil {
			var err error
			value, err = ip.evaluate(s.Value)
			if err != nil {
				return normal, err
			}
		}
		ip.setDebug(s.Debug)
		return control{returned: true, value: value}, nil

	default:
		panic("interpreter: unknown statement")
	}
}

// evaluate is the expression dispatcher and the rewrap boundary for
// internalError: whatever depth the mismatch happened at, the reported
// location is the operator most recently dispatched.
func (ip *Interpreter) evaluate(expr Expr) (Value, error) {
	value, err := ip.eval(expr)
	if ierr, ok := err.(*internalError); ok {
		return Nil, &RuntimeError{Line: ip.line, Col: ip.position, Msg: ierr.msg}
	}
	return value, err
}

func (ip *Interpreter) eval(expr Expr) (Value, error) {
	switch e := expr.(type) {
	case *LiteralExpr:
		return e.Value, nil

	case *GroupingExpr:
		return ip.evaluate(e.Expression)

	case *BinaryExpr:
		return ip.visitBinary(e)

	case *UnaryExpr:
		return ip.visitUnary(e)

	case *IdentifierExpr:
		return ip.visitIdentifier(e.Identifier)

	case *AssignExpr:
		return ip.visitAssign(e)

	case *LogicalExpr:
		return ip.visitLogical(e)

	case *CallExpr:
		return ip.visitCall(e)

	default:
		panic("interpreter: unknown expression")
	}
}

func (ip *Interpreter) visitBinary(e *BinaryExpr) (Value, error) {
	left, err := ip.evaluate(e.Left)
	if err != nil {
		return Nil, err
	}
	right, err := ip.evaluate(e.Right)
	if err != nil {
		return Nil, err
	}
	ip.setDebug(e.Debug)

	switch e.Op {
	case OpAdd:
		return valueAdd(left, right)
	case OpSubtract:
		return valueSubtract(left, right)
	case OpMultiply:
		return valueMultiply(left, right)
	case OpDivide:
		return valueDivide(left, right)
	case OpEqual:
		return BoolVal(Equal(left, right)), nil
	case OpNotEqual:
		return BoolVal(!Equal(left, right)), nil
	case OpLess:
		return valueLess(left, right)
	case OpLessEqual:
		return valueLessEqual(left, right)
	case OpGreater:
		return valueGreater(left, right)
	case OpGreaterEqual:
		return valueGreaterEqual(left, right)
	default:
		panic("interpreter: unknown binary operator")
	}
}

func (ip *Interpreter) visitUnary(e *UnaryExpr) (Value, error) {
	right, err := ip.evaluate(e.Right)
	if err != nil {
		return Nil, err
	}
	ip.setDebug(e.Debug)

	switch e.Op {
	case OpNegate:
		return valueNegate(right)
	case OpNot:
		return BoolVal(!IsTruthy(right)), nil
	default:
		panic("interpreter: unknown unary operator")
	}
}

func (ip *Interpreter) visitIdentifier(ident Identifier) (Value, error) {
	ip.setDebug(ident.Debug)
	value, ok := ip.Environment.Get(ident.Name, ident.ID)
	if !ok {
		return Nil, ip.runtimeErrorf("undefined variable: %s", ident.Name)
	}
	return value, nil
}

func (ip *Interpreter) visitAssign(e *AssignExpr) (Value, error) {
	value, err := ip.evaluate(e.Value)
	if err != nil {
		return Nil, err
	}
	ip.setDebug(e.Target.Debug)
	if !ip.Environment.Assign(e.Target.Name, e.Target.ID, value) {
		return Nil, ip.runtimeErrorf("cannot assign to undefined variable: %s", e.Target.Name)
	}
	return value, nil
}

// visitLogical short-circuits and yields one of the operand values as-is,
// never a coerced boolean.
func (ip *Interpreter) visitLogical(e *LogicalExpr) (Value, error) {
	left, err := ip.evaluate(e.Left)
	if err != nil {
		return Nil, err
	}
	ip.setDebug(e.Debug)

	switch e.Op {
	case OpOr:
		if IsTruthy(left) {
			return left, nil
		}
	case OpAnd:
		if !IsTruthy(left) {
			return left, nil
		}
	}
	return ip.evaluate(e.Right)
}

func (ip *Interpreter) visitCall(e *CallExpr) (Value, error) {
	callee, err := ip.evaluate(e.Callee)
	if err != nil {
		return Nil, err
	}

	args := make([]Value, 0, len(e.Args))
	for _, argExpr := range e.Args {
		arg, err := ip.evaluate(argExpr)
		if err != nil {
			return Nil, err
		}
		args = append(args, arg)
	}
	ip.setDebug(e.Debug)

	switch callee.Tag {
	case VTFunction:
		return ip.callFunction(callee.Data.(*Function), args)
	case VTNative:
		return ip.callNative(callee.Data.(*Native), args)
	default:
		return Nil, ip.runtimeErrorf("expected a function, got %s", callee)
	}
}
