// errors.go: the error taxonomy and caret-snippet rendering.
//
// Four user-facing diagnostic kinds exist, one per pipeline stage:
//
//	*SyntaxError  (scanner.go)  - malformed lexeme
//	*ParseError   (parser.go)   - malformed grammar
//	*ResolveError (resolver.go) - static binding error; execution never starts
//	*RuntimeError (here)        - execution failure with the evaluator's
//	                              last-touched source location
//
// All carry 1-based Line/Col. A fifth, private kind, internalError, is
// produced by the location-free value primitives in value.go and is always
// rewrapped into a *RuntimeError by the evaluator before it can reach a
// caller; collaborators never observe it.
//
// WrapErrorWithSource turns any of the four public kinds into a readable,
// caret-annotated snippet:
//
//	RUNTIME ERROR at 3:9: cannot negate: "asdf"
//
//	   2 | var a = 1;
//	   3 | var b = -"asdf";
//	       |        ^
//	   4 | print b;
//
// The snippet shows up to one line of context before and after, numbers the
// lines, and places a caret under the offending column. Other error kinds are
// returned unchanged.
package rlox

import (
	"fmt"
	"strings"
)

// RuntimeError is an execution-time failure. Always recoverable at the top
// level: the current program (or REPL line) aborts, already-mutated global
// state stays intact, and the host keeps running.
type RuntimeError struct {
	Line int
	Col  int
	Msg  string
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("RUNTIME ERROR at %d:%d: %s", e.Line, e.Col, e.Msg)
}

// internalError is raised by value-operation primitives that have no access
// to source locations. The evaluator rewraps it at the evaluate() boundary.
type internalError struct {
	msg string
}

func (e *internalError) Error() string { return e.msg }

func internalErrorf(format string, args ...interface{}) *internalError {
	return &internalError{msg: fmt.Sprintf(format, args...)}
}

// WrapErrorWithSource returns an error augmented with a caret-annotated
// snippet of the provided source. It recognizes the four diagnostic kinds and
// leaves other errors untouched.
func WrapErrorWithSource(err error, src string) error {
	return WrapErrorWithName(err, "", src)
}

// WrapErrorWithName is WrapErrorWithSource with a source name in the header
// (e.g. a file path); an empty name omits the "in <name>" part.
func WrapErrorWithName(err error, srcName string, src string) error {
	switch e := err.(type) {
	case *SyntaxError:
		return fmt.Errorf("%s", prettyErrorStringLabeled(src, "SYNTAX ERROR", srcName, e.Line, e.Col, e.Msg))
	case *ParseError:
		return fmt.Errorf("%s", prettyErrorStringLabeled(src, "PARSE ERROR", srcName, e.Line, e.Col, e.Msg))
	case *ResolveError:
		return fmt.Errorf("%s", prettyErrorStringLabeled(src, "RESOLVE ERROR", srcName, e.Line, e.Col, e.Msg))
	case *RuntimeError:
		return fmt.Errorf("%s", prettyErrorStringLabeled(src, "RUNTIME ERROR", srcName, e.Line, e.Col, e.Msg))
	default:
		return err
	}
}

// prettyErrorStringLabeled builds a Python-like snippet with a header and a
// caret. Coordinates are 1-based and clamped to the source bounds.
func prettyErrorStringLabeled(src, header, name string, line, col int, msg string) string {
	lines := strings.Split(src, "\n")
	if line < 1 {
		line = 1
	}
	if col < 1 {
		col = 1
	}
	if len(lines) == 0 {
		lines = []string{""}
	}
	if line > len(lines) {
		line = len(lines)
	}
	lineTxt := lines[line-1]

	var b strings.Builder
	if name != "" {
		fmt.Fprintf(&b, "%s in %s at %d:%d: %s\n\n", header, name, line, col, msg)
	} else {
		fmt.Fprintf(&b, "%s at %d:%d: %s\n\n", header, line, col, msg)
	}
	if line > 1 {
		fmt.Fprintf(&b, "%4d | %s\n", line-1, lines[line-2])
	}
	fmt.Fprintf(&b, "%4d | %s\n", line, lineTxt)
	fmt.Fprintf(&b, "     | %s^\n", strings.Repeat(" ", col-1))
	if line < len(lines) {
		fmt.Fprintf(&b, "%4d | %s\n", line+1, lines[line])
	}
	return b.String()
}
