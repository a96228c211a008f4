// ast.go: the immutable syntax tree produced by the parser.
//
// Every node that can be blamed for a runtime error carries a DebugInfo with
// the 1-based line/column of the token it came from. Identifier occurrences
// additionally carry a unique ID assigned at parse time; the resolver keys its
// access table on that ID, so two occurrences of the same name are always
// distinguishable. The evaluator and resolver never mutate the tree.
package rlox

import "fmt"

// DebugInfo pins an AST node to its source position.
type DebugInfo struct {
	Line     int
	Position int // 1-based column
	Lexeme   string
}

func debugFrom(tok Token) DebugInfo {
	return DebugInfo{Line: tok.Line, Position: tok.Col, Lexeme: tok.Lexeme}
}

// IdentifierID is a per-occurrence identity, unique for the life of the tree.
type IdentifierID int

// Identifier is one syntactic occurrence of a name. Distinct occurrences of
// the same name get distinct IDs.
type Identifier struct {
	Name  string
	ID    IdentifierID
	Debug DebugInfo
}

func (i Identifier) String() string {
	return fmt.Sprintf("%s#%d", i.Name, i.ID)
}

// --- Expressions ---

type Expr interface {
	exprNode()
}

type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSubtract
	OpMultiply
	OpDivide
	OpEqual
	OpNotEqual
	OpLess
	OpLessEqual
	OpGreater
	OpGreaterEqual
)

type LogicalOp int

const (
	OpAnd LogicalOp = iota
	OpOr
)

type UnaryOp int

const (
	OpNegate UnaryOp = iota
	OpNot
)

type BinaryExpr struct {
	Left  Expr
	Op    BinaryOp
	Debug DebugInfo // position of the operator token
	Right Expr
}

type GroupingExpr struct {
	Expression Expr
}

// LiteralExpr holds a literal as a ready-made runtime value (number, string,
// bool or nil), the way the parser decoded it from the token.
type LiteralExpr struct {
	Value Value
	Debug DebugInfo
}

type UnaryExpr struct {
	Op    UnaryOp
	Debug DebugInfo
	Right Expr
}

type IdentifierExpr struct {
	Identifier
}

type AssignExpr struct {
	Target Identifier
	Value  Expr
}

type LogicalExpr struct {
	Left  Expr
	Op    LogicalOp
	Debug DebugInfo
	Right Expr
}

type CallExpr struct {
	Callee Expr
	Debug  DebugInfo // position of the opening paren
	Args   []Expr
}

func (*BinaryExpr) exprNode()     {}
func (*GroupingExpr) exprNode()   {}
func (*LiteralExpr) exprNode()    {}
func (*UnaryExpr) exprNode()      {}
func (*IdentifierExpr) exprNode() {}
func (*AssignExpr) exprNode()     {}
func (*LogicalExpr) exprNode()    {}
func (*CallExpr) exprNode()       {}

// --- Statements ---

type Stmt interface {
	stmtNode()
}

type ExpressionStmt struct {
	Expression Expr
}

type PrintStmt struct {
	Expression Expr
	Debug      DebugInfo
}

// VarStmt declares a variable; Initializer is nil for a bare `var x;`.
type VarStmt struct {
	Name        Identifier
	Initializer Expr
}

type BlockStmt struct {
	Statements []Stmt
}

// IfStmt branches are always blocks (the grammar requires braces).
type IfStmt struct {
	Condition Expr
	Then      *BlockStmt
	Else      *BlockStmt // nil when absent
}

type WhileStmt struct {
	Condition Expr
	Body      *BlockStmt
}

type FunctionStmt struct {
	Name   Identifier
	Params []Identifier
	Body   *BlockStmt
}

// ReturnStmt with nil Value returns nil from the enclosing function.
type ReturnStmt struct {
	Value Expr
	Debug DebugInfo
}

func (*ExpressionStmt) stmtNode() {}
func (*PrintStmt) stmtNode()      {}
func (*VarStmt) stmtNode()        {}
func (*BlockStmt) stmtNode()      {}
func (*IfStmt) stmtNode()         {}
func (*WhileStmt) stmtNode()      {}
func (*FunctionStmt) stmtNode()   {}
func (*ReturnStmt) stmtNode()     {}
