// environment.go: the dynamic scope chain.
//
// A Frame is one lexical scope's runtime storage, linked to its parent. The
// global frame is the unique root. Frames are shared by pointer: the active
// chain holds the current head, and every closure keeps its captured frame
// alive through the same pointer, so a frame outlives the block that pushed
// it whenever a function literal defined inside it escapes. Variable slots
// are mutated in place (never copied), so all holders observe the same
// writes.
//
// Addressing is static: Get and Assign consult the access table for the
// identifier's use-id; a recorded depth means "walk that many parent links
// from head", absence means "the global frame". A closure call swaps the
// lexical ancestry via PushClosure, parenting the new frame on the captured
// frame rather than the caller's head. Depth addressing keeps working because
// depths were computed from the function body's own static nesting, not from
// any call site.
package rlox

import "fmt"

// Variable is one storage slot. Its identity never changes after Define, so
// closures observe later mutations made by the enclosing scope.
type Variable struct {
	Value     Value
	DefinedAt DebugInfo
}

// Frame maps names to slots and links to the frame of the enclosing scope.
// The global frame has a nil parent.
type Frame struct {
	values map[string]*Variable
	parent *Frame
}

func newFrame(parent *Frame) *Frame {
	return &Frame{values: make(map[string]*Variable), parent: parent}
}

// Environment tracks the active frame chain during execution.
type Environment struct {
	head         *Frame
	global       *Frame
	closureStack []*Frame
	table        *AccessTable
}

// NewEnvironment creates an environment holding only the global frame and an
// empty access table.
func NewEnvironment() *Environment {
	global := newFrame(nil)
	return &Environment{
		head:   global,
		global: global,
		table:  NewAccessTable(),
	}
}

// ExtendAccessTable merges freshly resolved depths into the environment's
// table. A duplicate use-id means identifier ids were reused across chunks,
// which is a host bug, surfaced as an error rather than silent misaddressing.
func (e *Environment) ExtendAccessTable(t *AccessTable) error {
	return e.table.AddAll(t)
}

// CurrentFrame exposes the head frame; the evaluator captures it when a
// function declaration executes.
func (e *Environment) CurrentFrame() *Frame { return e.head }

// Push enters a block: a new empty frame whose parent is the current head.
func (e *Environment) Push() {
	e.head = newFrame(e.head)
}

// Pop leaves a block. Popping the global frame is an evaluator bug, never a
// user-facing condition.
func (e *Environment) Pop() {
	if e.head.parent == nil {
		panic("environment: tried to pop the global frame")
	}
	e.head = e.head.parent
}

// PushClosure enters a function call: the caller's head is parked on the
// closure stack and the new frame's parent is the function's captured frame.
func (e *Environment) PushClosure(captured *Frame) {
	e.closureStack = append(e.closureStack, e.head)
	e.head = newFrame(captured)
}

// PopClosure restores the caller's frame after a call.
func (e *Environment) PopClosure() {
	if len(e.closureStack) == 0 {
		panic("environment: tried to pop a closure frame with none pushed")
	}
	e.head = e.closureStack[len(e.closureStack)-1]
	e.closureStack = e.closureStack[:len(e.closureStack)-1]
}

// nthFrame walks n parent links up from head. Walking past the global frame
// means the resolver and evaluator disagree about scope shape; unrecoverable.
func (e *Environment) nthFrame(n int) *Frame {
	frame := e.head
	for i := 0; i < n; i++ {
		if frame.parent == nil {
			panic("environment: access depth walks past the global frame")
		}
		frame = frame.parent
	}
	return frame
}

// Define inserts a new slot into the head frame. Shadowing an outer binding
// is allowed; redeclaring within the same frame is a user-facing error.
func (e *Environment) Define(ident Identifier, value Value) error {
	if existing, ok := e.head.values[ident.Name]; ok {
		return &RuntimeError{
			Line: ident.Debug.Line,
			Col:  ident.Debug.Position,
			Msg: fmt.Sprintf("variable %s already defined at %d:%d",
				ident.Name, existing.DefinedAt.Line, existing.DefinedAt.Position),
		}
	}
	e.head.values[ident.Name] = &Variable{Value: value, DefinedAt: ident.Debug}
	return nil
}

// Get reads the slot addressed by the use-id's recorded depth, or the global
// frame when no depth was recorded.
func (e *Environment) Get(name string, id IdentifierID) (Value, bool) {
	if v, ok := e.frameFor(id).values[name]; ok {
		return v.Value, true
	}
	return Nil, false
}

// Assign mutates an existing slot in place using the same addressing as Get.
// It reports false when the addressed frame has no such slot.
func (e *Environment) Assign(name string, id IdentifierID, value Value) bool {
	if v, ok := e.frameFor(id).values[name]; ok {
		v.Value = value
		return true
	}
	return false
}

// GetGlobal reads a name directly from the global frame. Used by embedders
// and tests to observe program results.
func (e *Environment) GetGlobal(name string) (Value, bool) {
	if v, ok := e.global.values[name]; ok {
		return v.Value, true
	}
	return Nil, false
}

func (e *Environment) frameFor(id IdentifierID) *Frame {
	if depth, ok := e.table.Get(id); ok {
		return e.nthFrame(depth)
	}
	return e.global
}
