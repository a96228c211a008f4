package rlox

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

// --- helpers ---------------------------------------------------------------

func runSrc(t *testing.T, src string) *Interpreter {
	t.Helper()
	ip := NewInterpreter()
	ip.Stdout = &bytes.Buffer{}
	if _, err := ip.Run(src); err != nil {
		t.Fatalf("Run error: %v\nsource:\n%s", err, src)
	}
	return ip
}

func runResult(t *testing.T, src string) CallResult {
	t.Helper()
	ip := NewInterpreter()
	ip.Stdout = &bytes.Buffer{}
	res, err := ip.Run(src)
	if err != nil {
		t.Fatalf("Run error: %v\nsource:\n%s", err, src)
	}
	return res
}

func runFail(t *testing.T, src string) error {
	t.Helper()
	ip := NewInterpreter()
	ip.Stdout = &bytes.Buffer{}
	if _, err := ip.Run(src); err != nil {
		return err
	}
	t.Fatalf("expected error, got none\nsource:\n%s", src)
	return nil
}

func globalVal(t *testing.T, ip *Interpreter, name string) Value {
	t.Helper()
	v, ok := ip.Environment.GetGlobal(name)
	if !ok {
		t.Fatalf("global %q not defined", name)
	}
	return v
}

func wantNum(t *testing.T, v Value, f float64) {
	t.Helper()
	if v.Tag != VTNumber {
		t.Fatalf("want number %g, got %#v", f, v)
	}
	if got := v.Data.(float64); got != f {
		t.Fatalf("want number %g, got %g", f, got)
	}
}

func wantStr(t *testing.T, v Value, s string) {
	t.Helper()
	if v.Tag != VTString || v.Data.(string) != s {
		t.Fatalf("want string %q, got %#v", s, v)
	}
}

func wantBool(t *testing.T, v Value, b bool) {
	t.Helper()
	if v.Tag != VTBool || v.Data.(bool) != b {
		t.Fatalf("want bool %v, got %#v", b, v)
	}
}

func wantNil(t *testing.T, v Value) {
	t.Helper()
	if v.Tag != VTNil {
		t.Fatalf("want nil, got %#v", v)
	}
}

func wantRuntimeErr(t *testing.T, err error, substr string) *RuntimeError {
	t.Helper()
	var re *RuntimeError
	if !errors.As(err, &re) {
		t.Fatalf("want *RuntimeError containing %q, got %T: %v", substr, err, err)
	}
	if !strings.Contains(re.Msg, substr) {
		t.Fatalf("want message containing %q, got %q", substr, re.Msg)
	}
	return re
}

// --- expressions -----------------------------------------------------------

func TestArithmetic(t *testing.T) {
	ip := runSrc(t, `
		var a = 2 + 2 * 2 / (3 - 2) * 2;
		var b = 10 - 4 - 3;
		var c = -2 * -3;
		var d = "foo" + "bar";
	`)
	wantNum(t, globalVal(t, ip, "a"), 10)
	wantNum(t, globalVal(t, ip, "b"), 3)
	wantNum(t, globalVal(t, ip, "c"), 6)
	wantStr(t, globalVal(t, ip, "d"), "foobar")
}

func TestComparisonAndEquality(t *testing.T) {
	ip := runSrc(t, `
		var a = 1 < 2;
		var b = 2 <= 2;
		var c = 3 > 4;
		var d = 3 >= 4;
		var e = 1 == 1;
		var f = 1 != 1;
		var g = "x" == "x";
		var h = "x" == 1;
		var i = nil == nil;
		var j = true == 1;
	`)
	wantBool(t, globalVal(t, ip, "a"), true)
	wantBool(t, globalVal(t, ip, "b"), true)
	wantBool(t, globalVal(t, ip, "c"), false)
	wantBool(t, globalVal(t, ip, "d"), false)
	wantBool(t, globalVal(t, ip, "e"), true)
	wantBool(t, globalVal(t, ip, "f"), false)
	wantBool(t, globalVal(t, ip, "g"), true)
	wantBool(t, globalVal(t, ip, "h"), false)
	wantBool(t, globalVal(t, ip, "i"), true)
	wantBool(t, globalVal(t, ip, "j"), false)
}

func TestNaNIsNotEqualToItself(t *testing.T) {
	ip := runSrc(t, `
		var nan = 0 / 0;
		var a = nan == nan;
		var b = nan != nan;
	`)
	wantBool(t, globalVal(t, ip, "a"), false)
	wantBool(t, globalVal(t, ip, "b"), true)
}

func TestDivisionByZero(t *testing.T) {
	ip := runSrc(t, `
		var inf = 1 / 0;
		var neg = -1 / 0;
		var a = inf > 1000000;
		var b = neg < -1000000;
	`)
	wantBool(t, globalVal(t, ip, "a"), true)
	wantBool(t, globalVal(t, ip, "b"), true)
}

func TestFunctionEqualityIsIdentity(t *testing.T) {
	ip := runSrc(t, `
		fun f() {}
		fun g() {}
		var same = f == f;
		var diff = f == g;
	`)
	wantBool(t, globalVal(t, ip, "same"), true)
	wantBool(t, globalVal(t, ip, "diff"), false)
}

func TestUnary(t *testing.T) {
	ip := runSrc(t, `
		var a = -5;
		var b = !true;
		var c = !nil;
		var d = !0;
		var e = !"";
	`)
	wantNum(t, globalVal(t, ip, "a"), -5)
	wantBool(t, globalVal(t, ip, "b"), false)
	wantBool(t, globalVal(t, ip, "c"), true)
	wantBool(t, globalVal(t, ip, "d"), false)
	wantBool(t, globalVal(t, ip, "e"), false)
}

func TestLogicalReturnsOperand(t *testing.T) {
	ip := runSrc(t, `
		var a = nil or "fallback";
		var b = "first" or "second";
		var c = 1 and 2;
		var d = false and 2;
		var e = nil and 2;
	`)
	wantStr(t, globalVal(t, ip, "a"), "fallback")
	wantStr(t, globalVal(t, ip, "b"), "first")
	wantNum(t, globalVal(t, ip, "c"), 2)
	wantBool(t, globalVal(t, ip, "d"), false)
	wantNil(t, globalVal(t, ip, "e"))
}

func TestShortCircuitSkipsRightOperand(t *testing.T) {
	// The right side calls an undefined function, so evaluating it would
	// be a runtime error.
	ip := runSrc(t, `
		var a = true or boom();
		var b = false and boom();
	`)
	wantBool(t, globalVal(t, ip, "a"), true)
	wantBool(t, globalVal(t, ip, "b"), false)
}

func TestAssignmentIsAnExpression(t *testing.T) {
	ip := runSrc(t, `
		var a = 1;
		var b = a = 5;
	`)
	wantNum(t, globalVal(t, ip, "a"), 5)
	wantNum(t, globalVal(t, ip, "b"), 5)
}

// --- truthiness ------------------------------------------------------------

func TestOnlyFalseAndNilAreFalsy(t *testing.T) {
	ip := runSrc(t, `
		var a; var b; var c; var d; var e;
		if (0) { a = "t"; } else { a = "f"; }
		if ("") { b = "t"; } else { b = "f"; }
		if (nil) { c = "t"; } else { c = "f"; }
		if (false) { d = "t"; } else { d = "f"; }
		if ("false") { e = "t"; } else { e = "f"; }
	`)
	wantStr(t, globalVal(t, ip, "a"), "t")
	wantStr(t, globalVal(t, ip, "b"), "t")
	wantStr(t, globalVal(t, ip, "c"), "f")
	wantStr(t, globalVal(t, ip, "d"), "f")
	wantStr(t, globalVal(t, ip, "e"), "t")
}

// --- statements ------------------------------------------------------------

func TestVarWithoutInitializerIsNil(t *testing.T) {
	ip := runSrc(t, `var a;`)
	wantNil(t, globalVal(t, ip, "a"))
}

func TestBlockScoping(t *testing.T) {
	ip := runSrc(t, `
		var a = "outer";
		var seen;
		{
			var a = "inner";
			seen = a;
		}
		var after = a;
	`)
	wantStr(t, globalVal(t, ip, "seen"), "inner")
	wantStr(t, globalVal(t, ip, "after"), "outer")
}

func TestWhileLoop(t *testing.T) {
	ip := runSrc(t, `
		var i = 0;
		var total = 0;
		while (i < 5) {
			total = total + i;
			i = i + 1;
		}
	`)
	wantNum(t, globalVal(t, ip, "total"), 10)
}

func TestForLoop(t *testing.T) {
	ip := runSrc(t, `
		var total = 0;
		for (var i = 0; i < 5; i = i + 1) {
			total = total + i;
		}
	`)
	wantNum(t, globalVal(t, ip, "total"), 10)
}

func TestForLoopVariableDoesNotLeak(t *testing.T) {
	ip := runSrc(t, `
		for (var i = 0; i < 3; i = i + 1) {}
		var leaked = true;
		{
			var i = "fresh";
			leaked = false;
		}
	`)
	wantBool(t, globalVal(t, ip, "leaked"), false)
	if _, ok := ip.Environment.GetGlobal("i"); ok {
		t.Fatalf("loop variable leaked into the global frame")
	}
}

func TestTwoForLoopsInOneBlock(t *testing.T) {
	ip := runSrc(t, `
		var total = 0;
		{
			for (var i = 0; i < 3; i = i + 1) { total = total + i; }
			for (var i = 0; i < 3; i = i + 1) { total = total + i; }
		}
	`)
	wantNum(t, globalVal(t, ip, "total"), 6)
}

func TestForWithoutClauses(t *testing.T) {
	ip := runSrc(t, `
		var i = 0;
		for (;;) {
			i = i + 1;
			if (i >= 3) { return i; }
		}
	`)
	wantNum(t, globalVal(t, ip, "i"), 3)
}

func TestPrintOutput(t *testing.T) {
	ip := NewInterpreter()
	var out bytes.Buffer
	ip.Stdout = &out
	if _, err := ip.Run(`
		print 1 + 1;
		print "hello";
		print nil;
		print true;
	`); err != nil {
		t.Fatalf("Run error: %v", err)
	}
	want := "2\nhello\nnil\ntrue\n"
	if out.String() != want {
		t.Fatalf("print output:\nwant %q\ngot  %q", want, out.String())
	}
}

// --- functions and closures ------------------------------------------------

func TestFunctionCallAndReturn(t *testing.T) {
	ip := runSrc(t, `
		fun add(a, b) { return a + b; }
		var r = add(2, 3);
	`)
	wantNum(t, globalVal(t, ip, "r"), 5)
}

func TestFunctionWithoutReturnYieldsNil(t *testing.T) {
	ip := runSrc(t, `
		fun noop() { 1 + 1; }
		var r = noop();
	`)
	wantNil(t, globalVal(t, ip, "r"))
}

func TestReturnUnwindsLoops(t *testing.T) {
	ip := runSrc(t, `
		fun firstAtLeast(n) {
			for (var i = 0; i < 100; i = i + 1) {
				if (i >= n) { return i; }
			}
			return -1;
		}
		var r = firstAtLeast(7);
	`)
	wantNum(t, globalVal(t, ip, "r"), 7)
}

func TestRecursion(t *testing.T) {
	ip := runSrc(t, `
		fun fib(n) {
			if (n < 2) { return n; }
			return fib(n - 1) + fib(n - 2);
		}
		var r = fib(10);
	`)
	wantNum(t, globalVal(t, ip, "r"), 55)
}

func TestClosureCountersAreIndependent(t *testing.T) {
	ip := runSrc(t, `
		fun makeCounter() {
			var count = 0;
			fun increment() {
				count = count + 1;
				return count;
			}
			return increment;
		}
		var c1 = makeCounter();
		var c2 = makeCounter();
		c1(); c1();
		var a = c1();
		var b = c2();
	`)
	wantNum(t, globalVal(t, ip, "a"), 3)
	wantNum(t, globalVal(t, ip, "b"), 1)
}

func TestClosuresShareTheirDefiningFrame(t *testing.T) {
	ip := runSrc(t, `
		var set; var get;
		fun make() {
			var v = 0;
			fun s(n) { v = n; }
			fun g() { return v; }
			set = s;
			get = g;
		}
		make();
		set(42);
		var r = get();
	`)
	wantNum(t, globalVal(t, ip, "r"), 42)
}

func TestClosureCapturesScopeNotValue(t *testing.T) {
	// The classic resolver test: f is declared before the local a, so its
	// body resolves a to the global, even though the enclosing frame later
	// gains a local a.
	ip := runSrc(t, `
		var a = "global";
		var r;
		{
			fun f() { return a; }
			var a = "local";
			r = f();
		}
	`)
	wantStr(t, globalVal(t, ip, "r"), "global")
}

func TestCalleeFrameIsCapturedNotCaller(t *testing.T) {
	// g reads x from its captured chain, not from f's locals.
	ip := runSrc(t, `
		var x = "global";
		fun g() { return x; }
		fun f() {
			var x = "local";
			return g();
		}
		var r = f();
	`)
	wantStr(t, globalVal(t, ip, "r"), "global")
}

func TestHigherOrderFunctions(t *testing.T) {
	ip := runSrc(t, `
		fun twice(f, v) { return f(f(v)); }
		fun addOne(n) { return n + 1; }
		var r = twice(addOne, 5);
	`)
	wantNum(t, globalVal(t, ip, "r"), 7)
}

func TestArityMismatch(t *testing.T) {
	err := runFail(t, `
		fun f(a, b) { return a; }
		f(1);
	`)
	wantRuntimeErr(t, err, "expected 2 arguments, got 1")
}

func TestCallingANonFunction(t *testing.T) {
	err := runFail(t, `
		var a = 1;
		a();
	`)
	wantRuntimeErr(t, err, "expected a function")
}

// --- top-level return ------------------------------------------------------

func TestTopLevelReturn(t *testing.T) {
	res := runResult(t, `return 40 + 2;`)
	if !res.Returned {
		t.Fatalf("want Returned=true, got %#v", res)
	}
	wantNum(t, res.Value, 42)
}

func TestTopLevelReturnSkipsRest(t *testing.T) {
	ip := NewInterpreter()
	ip.Stdout = &bytes.Buffer{}
	res, err := ip.Run(`
		var a = 1;
		return a;
		a = 2;
	`)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if !res.Returned {
		t.Fatalf("want Returned=true, got %#v", res)
	}
	wantNum(t, res.Value, 1)
	wantNum(t, globalVal(t, ip, "a"), 1)
}

func TestTopLevelReturnFromNestedBlock(t *testing.T) {
	res := runResult(t, `
		var a = "global";
		{
			fun f() { return a; }
			var a = "local";
			return f();
		}
	`)
	if !res.Returned {
		t.Fatalf("want Returned=true, got %#v", res)
	}
	wantStr(t, res.Value, "global")
}

func TestNormalCompletionIsNotReturned(t *testing.T) {
	res := runResult(t, `var a = 1;`)
	if res.Returned {
		t.Fatalf("want Returned=false, got %#v", res)
	}
	wantNil(t, res.Value)
}

// --- runtime errors --------------------------------------------------------

func TestUndefinedVariable(t *testing.T) {
	err := runFail(t, `print missing;`)
	wantRuntimeErr(t, err, "undefined variable: missing")
}

func TestAssignToUndefinedVariable(t *testing.T) {
	err := runFail(t, `missing = 1;`)
	wantRuntimeErr(t, err, "cannot assign to undefined variable: missing")
}

func TestRedeclarationInSameFrame(t *testing.T) {
	err := runFail(t, `var a = 1; var a = 2;`)
	wantRuntimeErr(t, err, "already defined")
}

func TestTypeErrorCarriesLocation(t *testing.T) {
	err := runFail(t, "var a = 1;\n-\"oops\";")
	re := wantRuntimeErr(t, err, "cannot negate")
	if re.Line != 2 || re.Col != 1 {
		t.Fatalf("want error at 2:1, got %d:%d", re.Line, re.Col)
	}
}

func TestMixedAdditionFails(t *testing.T) {
	err := runFail(t, `1 + "one";`)
	wantRuntimeErr(t, err, "cannot add")
}

func TestComparisonNeedsNumbers(t *testing.T) {
	err := runFail(t, `"a" < "b";`)
	wantRuntimeErr(t, err, "cannot compare")
}

func TestErrorLeavesEarlierEffectsInPlace(t *testing.T) {
	ip := NewInterpreter()
	ip.Stdout = &bytes.Buffer{}
	if _, err := ip.Run(`var a = 1;`); err != nil {
		t.Fatalf("Run error: %v", err)
	}
	_, err := ip.Run(`a = 2; boom();`)
	wantRuntimeErr(t, err, "undefined variable: boom")
	wantNum(t, globalVal(t, ip, "a"), 2)
}

// --- chunked execution (the REPL path) -------------------------------------

func TestStatePersistsAcrossChunks(t *testing.T) {
	ip := NewInterpreter()
	ip.Stdout = &bytes.Buffer{}
	chunks := []string{
		`var a = 1;`,
		`a = a + 2;`,
		`fun bump() { a = a + 10; }`,
		`bump();`,
	}
	for _, src := range chunks {
		if _, err := ip.Run(src); err != nil {
			t.Fatalf("Run(%q) error: %v", src, err)
		}
	}
	wantNum(t, globalVal(t, ip, "a"), 13)
}

func TestClosuresSurviveAcrossChunks(t *testing.T) {
	ip := NewInterpreter()
	ip.Stdout = &bytes.Buffer{}
	mustRun := func(src string) CallResult {
		t.Helper()
		res, err := ip.Run(src)
		if err != nil {
			t.Fatalf("Run(%q) error: %v", src, err)
		}
		return res
	}
	mustRun(`
		fun makeCounter() {
			var count = 0;
			fun increment() {
				count = count + 1;
				return count;
			}
			return increment;
		}
		var c = makeCounter();
	`)
	mustRun(`c();`)
	mustRun(`c();`)
	res := mustRun(`return c();`)
	wantNum(t, res.Value, 3)
}

func TestChunkErrorDoesNotPoisonLaterChunks(t *testing.T) {
	ip := NewInterpreter()
	ip.Stdout = &bytes.Buffer{}
	if _, err := ip.Run(`var a = ;`); err == nil {
		t.Fatalf("expected parse error")
	}
	if _, err := ip.Run(`var a = 5;`); err != nil {
		t.Fatalf("Run error after failed chunk: %v", err)
	}
	wantNum(t, globalVal(t, ip, "a"), 5)
}

// --- natives ---------------------------------------------------------------

func TestDefineNative(t *testing.T) {
	ip := NewInterpreter()
	ip.Stdout = &bytes.Buffer{}
	err := ip.DefineNative("wrap", 1, func(_ *Interpreter, args []Value) (Value, error) {
		return StringVal("(" + FormatValue(args[0]) + ")"), nil
	})
	if err != nil {
		t.Fatalf("DefineNative: %v", err)
	}
	if _, err := ip.Run(`var r = wrap(123);`); err != nil {
		t.Fatalf("Run error: %v", err)
	}
	wantStr(t, globalVal(t, ip, "r"), "(123)")
}

func TestNativeArityMismatch(t *testing.T) {
	err := runFail(t, `str(1, 2);`)
	wantRuntimeErr(t, err, "expected 1 arguments, got 2")
}

func TestStrNative(t *testing.T) {
	ip := runSrc(t, `
		var a = str(42);
		var b = str("raw");
		var c = str(nil);
	`)
	wantStr(t, globalVal(t, ip, "a"), "42")
	wantStr(t, globalVal(t, ip, "b"), "raw")
	wantStr(t, globalVal(t, ip, "c"), "nil")
}

func TestClockNative(t *testing.T) {
	ip := runSrc(t, `var t = clock();`)
	v := globalVal(t, ip, "t")
	if v.Tag != VTNumber {
		t.Fatalf("want number, got %#v", v)
	}
	if v.Data.(float64) <= 0 {
		t.Fatalf("clock() returned %v", v)
	}
}

func TestNativesCanBeShadowedInBlocks(t *testing.T) {
	ip := runSrc(t, `
		var r;
		{
			var clock = "not a function";
			r = clock;
		}
	`)
	wantStr(t, globalVal(t, ip, "r"), "not a function")
}
