package rlox

import (
	"strings"
	"testing"
)

func testIdent(name string, id IdentifierID) Identifier {
	return Identifier{Name: name, ID: id, Debug: DebugInfo{Line: 1, Position: 1, Lexeme: name}}
}

func mustDefineVar(t *testing.T, env *Environment, ident Identifier, v Value) {
	t.Helper()
	if err := env.Define(ident, v); err != nil {
		t.Fatalf("Define(%s): %v", ident.Name, err)
	}
}

func TestEnvironmentGlobalDefineAndGet(t *testing.T) {
	env := NewEnvironment()
	mustDefineVar(t, env, testIdent("a", 1), NumberVal(42))

	// No depth recorded for id 2: the lookup falls through to globals.
	v, ok := env.Get("a", 2)
	if !ok {
		t.Fatalf("Get did not find a")
	}
	wantNum(t, v, 42)
}

func TestEnvironmentRedefineSameFrame(t *testing.T) {
	env := NewEnvironment()
	first := Identifier{Name: "a", ID: 1, Debug: DebugInfo{Line: 3, Position: 7}}
	mustDefineVar(t, env, first, NumberVal(1))

	err := env.Define(testIdent("a", 2), NumberVal(2))
	if err == nil {
		t.Fatalf("want redefinition error")
	}
	re, ok := err.(*RuntimeError)
	if !ok {
		t.Fatalf("want *RuntimeError, got %T", err)
	}
	if !strings.Contains(re.Msg, "already defined at 3:7") {
		t.Fatalf("want original location in message, got %q", re.Msg)
	}
}

func TestEnvironmentShadowingAcrossFrames(t *testing.T) {
	env := NewEnvironment()
	mustDefineVar(t, env, testIdent("a", 1), StringVal("outer"))

	env.Push()
	mustDefineVar(t, env, testIdent("a", 2), StringVal("inner"))

	table := NewAccessTable()
	if err := table.add(10, 0); err != nil {
		t.Fatal(err)
	}
	if err := env.ExtendAccessTable(table); err != nil {
		t.Fatal(err)
	}

	// Depth 0 hits the inner frame; an unrecorded id hits globals.
	v, _ := env.Get("a", 10)
	wantStr(t, v, "inner")
	v, _ = env.Get("a", 99)
	wantStr(t, v, "outer")

	env.Pop()
	v, _ = env.Get("a", 99)
	wantStr(t, v, "outer")
}

func TestEnvironmentDepthAddressing(t *testing.T) {
	env := NewEnvironment()
	env.Push()
	mustDefineVar(t, env, testIdent("x", 1), NumberVal(1))
	env.Push()

	table := NewAccessTable()
	if err := table.add(20, 1); err != nil {
		t.Fatal(err)
	}
	if err := env.ExtendAccessTable(table); err != nil {
		t.Fatal(err)
	}

	v, ok := env.Get("x", 20)
	if !ok {
		t.Fatalf("depth-1 lookup missed x")
	}
	wantNum(t, v, 1)

	if !env.Assign("x", 20, NumberVal(5)) {
		t.Fatalf("depth-1 assign missed x")
	}
	v, _ = env.Get("x", 20)
	wantNum(t, v, 5)
}

func TestEnvironmentAssignMissing(t *testing.T) {
	env := NewEnvironment()
	if env.Assign("ghost", 1, NumberVal(1)) {
		t.Fatalf("Assign invented a slot")
	}
}

func TestEnvironmentClosureStack(t *testing.T) {
	env := NewEnvironment()
	mustDefineVar(t, env, testIdent("g", 1), StringVal("global"))

	// Simulate declaring a function inside a block, capturing that block's
	// frame, then calling it from a deeper unrelated frame.
	env.Push()
	mustDefineVar(t, env, testIdent("captured", 2), NumberVal(7))
	capturedFrame := env.CurrentFrame()
	env.Pop()

	env.Push() // some other caller scope
	callerFrame := env.CurrentFrame()

	env.PushClosure(capturedFrame)
	table := NewAccessTable()
	if err := table.add(30, 1); err != nil {
		t.Fatal(err)
	}
	if err := env.ExtendAccessTable(table); err != nil {
		t.Fatal(err)
	}

	// Depth 1 from the call frame reaches the captured frame, not the
	// caller's.
	v, ok := env.Get("captured", 30)
	if !ok {
		t.Fatalf("closure lookup missed the captured frame")
	}
	wantNum(t, v, 7)

	env.PopClosure()
	if env.CurrentFrame() != callerFrame {
		t.Fatalf("PopClosure did not restore the caller's frame")
	}
}

func TestEnvironmentCapturedFrameOutlivesItsBlock(t *testing.T) {
	env := NewEnvironment()
	env.Push()
	mustDefineVar(t, env, testIdent("kept", 1), NumberVal(1))
	captured := env.CurrentFrame()
	env.Pop()

	// The frame is gone from the active chain but still reachable through
	// the captured pointer, and its slots still mutate in place.
	env.PushClosure(captured)
	table := NewAccessTable()
	if err := table.add(40, 1); err != nil {
		t.Fatal(err)
	}
	if err := env.ExtendAccessTable(table); err != nil {
		t.Fatal(err)
	}
	if !env.Assign("kept", 40, NumberVal(99)) {
		t.Fatalf("assign through the captured chain failed")
	}
	v, _ := env.Get("kept", 40)
	wantNum(t, v, 99)
	env.PopClosure()
}

func TestEnvironmentPopGlobalPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic when popping the global frame")
		}
	}()
	NewEnvironment().Pop()
}

func TestEnvironmentPopClosureWithoutPushPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic when popping an empty closure stack")
		}
	}()
	NewEnvironment().PopClosure()
}

func TestExtendAccessTableRejectsReusedIDs(t *testing.T) {
	env := NewEnvironment()
	a := NewAccessTable()
	if err := a.add(1, 0); err != nil {
		t.Fatal(err)
	}
	if err := env.ExtendAccessTable(a); err != nil {
		t.Fatal(err)
	}
	b := NewAccessTable()
	if err := b.add(1, 1); err != nil {
		t.Fatal(err)
	}
	if err := env.ExtendAccessTable(b); err == nil {
		t.Fatalf("expected duplicate id rejection")
	}
}
