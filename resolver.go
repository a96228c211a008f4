// resolver.go: the pre-execution binding pass.
//
// Resolve walks the tree once, maintaining a stack of scope maps that mirrors
// the static block structure of the source. For every identifier use it
// records, keyed on the occurrence's unique id, how many frames up from the
// point of use the declaration lives; names not found in any scope map are
// left out of the table, which the environment reads as "look in the global
// frame at runtime". Depths depend only on the shape of the tree, never on
// how often a code path runs, so a closure resolves its free variables
// against the frame chain that existed where the function was written,
// regardless of the call site.
//
// Each scope map tracks declared-but-not-yet-initialized names so that
//
//	{ var a = a; }
//
// is a static error (the initializer reads the variable it is initializing),
// while `var a = a;` referencing an outer `a` stays legal. The global frame
// has no scope map and therefore no initialization tracking: a top-level
// `var a = a;` resolves `a` globally and succeeds (reading nil).
//
// A program that fails resolution never begins executing.
package rlox

import "fmt"

// ResolveError is a static binding diagnostic, reported before execution.
type ResolveError struct {
	Line int
	Col  int
	Msg  string
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("RESOLVE ERROR at %d:%d: %s", e.Line, e.Col, e.Msg)
}

// AccessTable maps identifier-use-ids to scope depths. Absence of an id means
// the identifier resolves in the global frame.
type AccessTable struct {
	depths map[IdentifierID]int
}

func NewAccessTable() *AccessTable {
	return &AccessTable{depths: make(map[IdentifierID]int)}
}

// Get returns the recorded depth for a use-id.
func (t *AccessTable) Get(id IdentifierID) (int, bool) {
	d, ok := t.depths[id]
	return d, ok
}

// Len reports how many uses resolved to a local depth.
func (t *AccessTable) Len() int { return len(t.depths) }

// Depths exposes a copy of the table's contents, for inspection in tests.
func (t *AccessTable) Depths() map[IdentifierID]int {
	out := make(map[IdentifierID]int, len(t.depths))
	for id, d := range t.depths {
		out[id] = d
	}
	return out
}

func (t *AccessTable) add(id IdentifierID, depth int) error {
	if _, ok := t.depths[id]; ok {
		return fmt.Errorf("identifier use #%d resolved twice", id)
	}
	t.depths[id] = depth
	return nil
}

// AddAll merges another table into t. Ids are unique per occurrence, so a
// collision indicates reused ids across parses.
func (t *AccessTable) AddAll(other *AccessTable) error {
	for id, depth := range other.depths {
		if err := t.add(id, depth); err != nil {
			return err
		}
	}
	return nil
}

// resolver holds the scope-map stack during the walk. Global scope has no
// map; an empty stack means every name resolves globally.
type resolver struct {
	table  *AccessTable
	scopes []map[string]bool // name → initialized?
}

// Resolve computes the access table for a statement sequence, or fails with a
// *ResolveError before any execution can occur. Resolution is a pure function
// of tree shape: resolving the same tree twice yields identical depths.
func Resolve(program []Stmt) (*AccessTable, error) {
	r := &resolver{table: NewAccessTable()}
	for _, stmt := range program {
		if err := r.resolveStmt(stmt); err != nil {
			return nil, err
		}
	}
	return r.table, nil
}

func (r *resolver) beginScope() {
	r.scopes = append(r.scopes, make(map[string]bool))
}

func (r *resolver) endScope() {
	r.scopes = r.scopes[:len(r.scopes)-1]
}

// declare marks a name as existing but not yet readable in the innermost
// scope. No-op at global scope.
func (r *resolver) declare(name string) {
	if len(r.scopes) == 0 {
		return
	}
	r.scopes[len(r.scopes)-1][name] = false
}

// define marks a declared name as initialized.
func (r *resolver) define(name string) {
	if len(r.scopes) == 0 {
		return
	}
	r.scopes[len(r.scopes)-1][name] = true
}

// resolveUse records the depth for one identifier occurrence. Reads of a name
// that is declared but not yet initialized in the scope where it is found are
// the self-reference error; assignment targets skip that check.
func (r *resolver) resolveUse(ident Identifier, isRead bool) error {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		initialized, ok := r.scopes[i][ident.Name]
		if !ok {
			continue
		}
		if isRead && !initialized {
			return &ResolveError{
				Line: ident.Debug.Line,
				Col:  ident.Debug.Position,
				Msg:  fmt.Sprintf("can't read local variable %s in its own initializer", ident.Name),
			}
		}
		depth := len(r.scopes) - 1 - i
		if err := r.table.add(ident.ID, depth); err != nil {
			// Unreachable while the parser allocates unique ids; kept as an
			// invariant check.
			return &ResolveError{
				Line: ident.Debug.Line,
				Col:  ident.Debug.Position,
				Msg:  fmt.Sprintf("internal: %v", err),
			}
		}
		return nil
	}
	// Not in any scope map: resolved in the global frame at runtime.
	return nil
}

func (r *resolver) resolveStmt(stmt Stmt) error {
	switch s := stmt.(type) {
	case *ExpressionStmt:
		return r.resolveExpr(s.Expression)

	case *PrintStmt:
		return r.resolveExpr(s.Expression)

	case *VarStmt:
		// The initializer resolves between declare and define, so a strictly
		// local self-reference is caught while the name is still marked
		// uninitialized.
		r.declare(s.Name.Name)
		if s.Initializer != nil {
			if err := r.resolveExpr(s.Initializer); err != nil {
				return err
			}
		}
		r.define(s.Name.Name)
		return nil

	case *BlockStmt:
		r.beginScope()
		defer r.endScope()
		for _, inner := range s.Statements {
			if err := r.resolveStmt(inner); err != nil {
				return err
			}
		}
		return nil

	case *IfStmt:
		if err := r.resolveExpr(s.Condition); err != nil {
			return err
		}
		if err := r.resolveStmt(s.Then); err != nil {
			return err
		}
		if s.Else != nil {
			return r.resolveStmt(s.Else)
		}
		return nil

	case *WhileStmt:
		if err := r.resolveExpr(s.Condition); err != nil {
			return err
		}
		return r.resolveStmt(s.Body)

	case *FunctionStmt:
		// The name is defined before the body resolves, so the function can
		// call itself. Parameters get their own scope; the body block opens
		// a nested one, matching the two frames the evaluator creates.
		r.declare(s.Name.Name)
		r.define(s.Name.Name)
		r.beginScope()
		defer r.endScope()
		for _, param := range s.Params {
			r.declare(param.Name)
			r.define(param.Name)
		}
		return r.resolveStmt(s.Body)

	case *ReturnStmt:
		if s.Value != nil {
			return r.resolveExpr(s.Value)
		}
		return nil

	default:
		panic(fmt.Sprintf("resolver: unknown statement %T", stmt))
	}
}

func (r *resolver) resolveExpr(expr Expr) error {
	switch e := expr.(type) {
	case *LiteralExpr:
		return nil

	case *GroupingExpr:
		return r.resolveExpr(e.Expression)

	case *UnaryExpr:
		return r.resolveExpr(e.Right)

	case *BinaryExpr:
		if err := r.resolveExpr(e.Left); err != nil {
			return err
		}
		return r.resolveExpr(e.Right)

	case *LogicalExpr:
		if err := r.resolveExpr(e.Left); err != nil {
			return err
		}
		return r.resolveExpr(e.Right)

	case *IdentifierExpr:
		return r.resolveUse(e.Identifier, true)

	case *AssignExpr:
		if err := r.resolveExpr(e.Value); err != nil {
			return err
		}
		return r.resolveUse(e.Target, false)

	case *CallExpr:
		// The callee resolves like any expression: a function stored in a
		// variable and later reassigned calls whatever the reassigned name
		// holds.
		if err := r.resolveExpr(e.Callee); err != nil {
			return err
		}
		for _, arg := range e.Args {
			if err := r.resolveExpr(arg); err != nil {
				return err
			}
		}
		return nil

	default:
		panic(fmt.Sprintf("resolver: unknown expression %T", expr))
	}
}
