// parser.go: token stream → AST.
//
// A plain recursive-descent parser over the Lox grammar:
//
//	program     → declaration* EOF
//	declaration → funDecl | varDecl | statement
//	funDecl     → "fun" IDENTIFIER "(" parameters? ")" block
//	varDecl     → "var" IDENTIFIER ( "=" expression )? ";"
//	statement   → exprStmt | printStmt | block | ifStmt | whileStmt
//	            | forStmt | returnStmt
//	ifStmt      → "if" "(" expression ")" block ( "else" block )?
//	whileStmt   → "while" "(" expression ")" block
//	forStmt     → "for" "(" ( varDecl | exprStmt | ";" ) expression? ";"
//	              expression? ")" block
//	expression  → assignment
//	assignment  → IDENTIFIER "=" assignment | logic_or
//	logic_or    → logic_and ( "or" logic_and )*
//	logic_and   → equality ( "and" equality )*
//	equality    → comparison ( ( "==" | "!=" ) comparison )*
//	comparison  → term ( ( "<" | "<=" | ">" | ">=" ) term )*
//	term        → factor ( ( "+" | "-" ) factor )*
//	factor      → unary ( ( "*" | "/" ) unary )*
//	unary       → ( "!" | "-" ) unary | call
//	call        → primary ( "(" arguments? ")" )*
//	primary     → NUMBER | STRING | "true" | "false" | "nil"
//	            | "(" expression ")" | IDENTIFIER
//
// `for` is pure sugar: it parses into
// Block{ init; While{ cond; Block{ body…; incr } } }, so the loop variable
// lives in a synthesized frame of its own and never collides with a
// same-named variable in the enclosing scope.
//
// The parser is also the allocator of identifier IDs: every IDENTIFIER
// occurrence gets the next id from a counter, so ids are unique per
// occurrence for the life of the tree. A host that parses several chunks into
// one interpreter (the REPL) must thread the counter through SetIDBase/NextID
// so ids stay unique across chunks; the access table is keyed on them.
package rlox

import "fmt"

// ParseError is a grammar-level diagnostic. Incomplete is set when the parser
// ran out of input (the error token is EOF); a REPL uses it to decide whether
// to prompt for a continuation line instead of reporting the error.
type ParseError struct {
	Line       int
	Col        int
	Msg        string
	Incomplete bool
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("PARSE ERROR at %d:%d: %s", e.Line, e.Col, e.Msg)
}

// Parser consumes a scanned token stream and produces statements.
type Parser struct {
	tokens []Token
	cur    int
	nextID IdentifierID
}

func NewParser(tokens []Token) *Parser {
	return &Parser{tokens: tokens}
}

// SetIDBase makes identifier id allocation start at base. Needed when parsing
// several chunks for one interpreter instance.
func (p *Parser) SetIDBase(base IdentifierID) { p.nextID = base }

// NextID reports the next unallocated identifier id.
func (p *Parser) NextID() IdentifierID { return p.nextID }

// Parse is the convenience entry point for a standalone chunk.
func Parse(tokens []Token) ([]Stmt, error) {
	return NewParser(tokens).Parse()
}

// Parse parses the whole stream, stopping at the first error.
func (p *Parser) Parse() ([]Stmt, error) {
	var program []Stmt
	for !p.isAtEnd() {
		stmt, err := p.declaration()
		if err != nil {
			return nil, err
		}
		program = append(program, stmt)
	}
	return program, nil
}

// --- helpers ---

func (p *Parser) peek() Token     { return p.tokens[p.cur] }
func (p *Parser) previous() Token { return p.tokens[p.cur-1] }
func (p *Parser) isAtEnd() bool   { return p.peek().Type == EOF }

func (p *Parser) advance() Token {
	if !p.isAtEnd() {
		p.cur++
	}
	return p.previous()
}

func (p *Parser) check(tt TokenType) bool { return p.peek().Type == tt }

func (p *Parser) match(types ...TokenType) bool {
	for _, tt := range types {
		if p.check(tt) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *Parser) errAt(tok Token, msg string) *ParseError {
	return &ParseError{
		Line:       tok.Line,
		Col:        tok.Col,
		Msg:        msg,
		Incomplete: tok.Type == EOF,
	}
}

func (p *Parser) consume(tt TokenType, msg string) (Token, error) {
	if p.check(tt) {
		return p.advance(), nil
	}
	return Token{}, p.errAt(p.peek(), msg)
}

// newIdentifier mints the Identifier for one occurrence, assigning its id.
func (p *Parser) newIdentifier(tok Token) Identifier {
	id := p.nextID
	p.nextID++
	return Identifier{Name: tok.Lexeme, ID: id, Debug: debugFrom(tok)}
}

// --- declarations & statements ---

func (p *Parser) declaration() (Stmt, error) {
	switch {
	case p.match(FUN):
		return p.functionDeclaration()
	case p.match(VAR):
		return p.variableDeclaration()
	default:
		return p.statement()
	}
}

func (p *Parser) functionDeclaration() (Stmt, error) {
	nameTok, err := p.consume(IDENTIFIER, "expected function name after 'fun'")
	if err != nil {
		return nil, err
	}
	name := p.newIdentifier(nameTok)

	if _, err := p.consume(LEFT_PAREN, "expected '(' after function name"); err != nil {
		return nil, err
	}
	var params []Identifier
	if !p.check(RIGHT_PAREN) {
		for {
			paramTok, err := p.consume(IDENTIFIER, "expected parameter name")
			if err != nil {
				return nil, err
			}
			params = append(params, p.newIdentifier(paramTok))
			if !p.match(COMMA) {
				break
			}
		}
	}
	if _, err := p.consume(RIGHT_PAREN, "expected ')' after parameters"); err != nil {
		return nil, err
	}

	if _, err := p.consume(LEFT_BRACE, "expected '{' before function body"); err != nil {
		return nil, err
	}
	body, err := p.blockStatement()
	if err != nil {
		return nil, err
	}
	return &FunctionStmt{Name: name, Params: params, Body: body}, nil
}

func (p *Parser) variableDeclaration() (Stmt, error) {
	nameTok, err := p.consume(IDENTIFIER, "expected variable name after 'var'")
	if err != nil {
		return nil, err
	}
	name := p.newIdentifier(nameTok)

	var init Expr
	if p.match(EQUAL) {
		init, err = p.expression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.consume(SEMICOLON, "expected ';' after variable declaration"); err != nil {
		return nil, err
	}
	return &VarStmt{Name: name, Initializer: init}, nil
}

func (p *Parser) statement() (Stmt, error) {
	switch {
	case p.match(PRINT):
		return p.printStatement()
	case p.match(LEFT_BRACE):
		return p.blockStatement()
	case p.match(IF):
		return p.ifStatement()
	case p.match(WHILE):
		return p.whileStatement()
	case p.match(FOR):
		return p.forStatement()
	case p.match(RETURN):
		return p.returnStatement()
	default:
		return p.expressionStatement()
	}
}

func (p *Parser) printStatement() (Stmt, error) {
	debug := debugFrom(p.previous())
	expr, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(SEMICOLON, "expected ';' after value"); err != nil {
		return nil, err
	}
	return &PrintStmt{Expression: expr, Debug: debug}, nil
}

// blockStatement assumes the opening brace is already consumed.
func (p *Parser) blockStatement() (*BlockStmt, error) {
	var statements []Stmt
	for !p.check(RIGHT_BRACE) && !p.isAtEnd() {
		stmt, err := p.declaration()
		if err != nil {
			return nil, err
		}
		statements = append(statements, stmt)
	}
	if _, err := p.consume(RIGHT_BRACE, "expected '}' after block"); err != nil {
		return nil, err
	}
	return &BlockStmt{Statements: statements}, nil
}

func (p *Parser) ifStatement() (Stmt, error) {
	if _, err := p.consume(LEFT_PAREN, "expected '(' after 'if'"); err != nil {
		return nil, err
	}
	condition, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(RIGHT_PAREN, "expected ')' after if condition"); err != nil {
		return nil, err
	}
	if _, err := p.consume(LEFT_BRACE, "expected '{' after if condition"); err != nil {
		return nil, err
	}
	then, err := p.blockStatement()
	if err != nil {
		return nil, err
	}

	var elseBranch *BlockStmt
	if p.match(ELSE) {
		if _, err := p.consume(LEFT_BRACE, "expected '{' after 'else'"); err != nil {
			return nil, err
		}
		elseBranch, err = p.blockStatement()
		if err != nil {
			return nil, err
		}
	}
	return &IfStmt{Condition: condition, Then: then, Else: elseBranch}, nil
}

func (p *Parser) whileStatement() (Stmt, error) {
	if _, err := p.consume(LEFT_PAREN, "expected '(' after 'while'"); err != nil {
		return nil, err
	}
	condition, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(RIGHT_PAREN, "expected ')' after while condition"); err != nil {
		return nil, err
	}
	if _, err := p.consume(LEFT_BRACE, "expected '{' after while condition"); err != nil {
		return nil, err
	}
	body, err := p.blockStatement()
	if err != nil {
		return nil, err
	}
	return &WhileStmt{Condition: condition, Body: body}, nil
}

// forStatement desugars into block + while; see the file header.
func (p *Parser) forStatement() (Stmt, error) {
	forTok := p.previous()
	if _, err := p.consume(LEFT_PAREN, "expected '(' after 'for'"); err != nil {
		return nil, err
	}

	var init Stmt
	switch {
	case p.match(SEMICOLON):
		init = nil
	case p.match(VAR):
		var err error
		init, err = p.variableDeclaration()
		if err != nil {
			return nil, err
		}
	default:
		var err error
		init, err = p.expressionStatement()
		if err != nil {
			return nil, err
		}
	}

	var condition Expr
	if !p.check(SEMICOLON) {
		var err error
		condition, err = p.expression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.consume(SEMICOLON, "expected ';' after loop condition"); err != nil {
		return nil, err
	}

	var increment Expr
	if !p.check(RIGHT_PAREN) {
		var err error
		increment, err = p.expression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.consume(RIGHT_PAREN, "expected ')' after for clauses"); err != nil {
		return nil, err
	}
	if _, err := p.consume(LEFT_BRACE, "expected '{' after for clauses"); err != nil {
		return nil, err
	}
	body, err := p.blockStatement()
	if err != nil {
		return nil, err
	}

	if increment != nil {
		body = &BlockStmt{Statements: append(body.Statements, &ExpressionStmt{Expression: increment})}
	}
	if condition == nil {
		condition = &LiteralExpr{Value: BoolVal(true), Debug: debugFrom(forTok)}
	}
	loop := &WhileStmt{Condition: condition, Body: body}

	if init == nil {
		return &BlockStmt{Statements: []Stmt{loop}}, nil
	}
	return &BlockStmt{Statements: []Stmt{init, loop}}, nil
}

func (p *Parser) returnStatement() (Stmt, error) {
	debug := debugFrom(p.previous())
	var value Expr
	if !p.check(SEMICOLON) {
		var err error
		value, err = p.expression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.consume(SEMICOLON, "expected ';' after return value"); err != nil {
		return nil, err
	}
	return &ReturnStmt{Value: value, Debug: debug}, nil
}

func (p *Parser) expressionStatement() (Stmt, error) {
	expr, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(SEMICOLON, "expected ';' after expression"); err != nil {
		return nil, err
	}
	return &ExpressionStmt{Expression: expr}, nil
}

// --- expressions ---

func (p *Parser) expression() (Expr, error) {
	return p.assignment()
}

func (p *Parser) assignment() (Expr, error) {
	expr, err := p.or()
	if err != nil {
		return nil, err
	}
	if p.match(EQUAL) {
		equals := p.previous()
		value, err := p.assignment()
		if err != nil {
			return nil, err
		}
		target, ok := expr.(*IdentifierExpr)
		if !ok {
			return nil, p.errAt(equals, "invalid assignment target")
		}
		return &AssignExpr{Target: target.Identifier, Value: value}, nil
	}
	return expr, nil
}

func (p *Parser) or() (Expr, error) {
	expr, err := p.and()
	if err != nil {
		return nil, err
	}
	for p.match(OR) {
		debug := debugFrom(p.previous())
		right, err := p.and()
		if err != nil {
			return nil, err
		}
		expr = &LogicalExpr{Left: expr, Op: OpOr, Debug: debug, Right: right}
	}
	return expr, nil
}

func (p *Parser) and() (Expr, error) {
	expr, err := p.equality()
	if err != nil {
		return nil, err
	}
	for p.match(AND) {
		debug := debugFrom(p.previous())
		right, err := p.equality()
		if err != nil {
			return nil, err
		}
		expr = &LogicalExpr{Left: expr, Op: OpAnd, Debug: debug, Right: right}
	}
	return expr, nil
}

func (p *Parser) equality() (Expr, error) {
	expr, err := p.comparison()
	if err != nil {
		return nil, err
	}
	for p.match(EQUAL_EQUAL, BANG_EQUAL) {
		tok := p.previous()
		op := OpEqual
		if tok.Type == BANG_EQUAL {
			op = OpNotEqual
		}
		right, err := p.comparison()
		if err != nil {
			return nil, err
		}
		expr = &BinaryExpr{Left: expr, Op: op, Debug: debugFrom(tok), Right: right}
	}
	return expr, nil
}

func (p *Parser) comparison() (Expr, error) {
	expr, err := p.term()
	if err != nil {
		return nil, err
	}
	for p.match(LESS, LESS_EQUAL, GREATER, GREATER_EQUAL) {
		tok := p.previous()
		var op BinaryOp
		switch tok.Type {
		case LESS:
			op = OpLess
		case LESS_EQUAL:
			op = OpLessEqual
		case GREATER:
			op = OpGreater
		case GREATER_EQUAL:
			op = OpGreaterEqual
		}
		right, err := p.term()
		if err != nil {
			return nil, err
		}
		expr = &BinaryExpr{Left: expr, Op: op, Debug: debugFrom(tok), Right: right}
	}
	return expr, nil
}

func (p *Parser) term() (Expr, error) {
	expr, err := p.factor()
	if err != nil {
		return nil, err
	}
	for p.match(PLUS, MINUS) {
		tok := p.previous()
		op := OpAdd
		if tok.Type == MINUS {
			op = OpSubtract
		}
		right, err := p.factor()
		if err != nil {
			return nil, err
		}
		expr = &BinaryExpr{Left: expr, Op: op, Debug: debugFrom(tok), Right: right}
	}
	return expr, nil
}

func (p *Parser) factor() (Expr, error) {
	expr, err := p.unary()
	if err != nil {
		return nil, err
	}
	for p.match(STAR, SLASH) {
		tok := p.previous()
		op := OpMultiply
		if tok.Type == SLASH {
			op = OpDivide
		}
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		expr = &BinaryExpr{Left: expr, Op: op, Debug: debugFrom(tok), Right: right}
	}
	return expr, nil
}

func (p *Parser) unary() (Expr, error) {
	if p.match(BANG, MINUS) {
		tok := p.previous()
		op := OpNot
		if tok.Type == MINUS {
			op = OpNegate
		}
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Op: op, Debug: debugFrom(tok), Right: right}, nil
	}
	return p.call()
}

func (p *Parser) call() (Expr, error) {
	expr, err := p.primary()
	if err != nil {
		return nil, err
	}
	for p.match(LEFT_PAREN) {
		paren := p.previous()
		var args []Expr
		if !p.check(RIGHT_PAREN) {
			for {
				arg, err := p.expression()
				if err != nil {
					return nil, err
				}
				args = append(args, arg)
				if !p.match(COMMA) {
					break
				}
			}
		}
		if _, err := p.consume(RIGHT_PAREN, "expected ')' after arguments"); err != nil {
			return nil, err
		}
		expr = &CallExpr{Callee: expr, Debug: debugFrom(paren), Args: args}
	}
	return expr, nil
}

func (p *Parser) primary() (Expr, error) {
	tok := p.peek()
	switch tok.Type {
	case NUMBER:
		p.advance()
		return &LiteralExpr{Value: NumberVal(tok.Literal.(float64)), Debug: debugFrom(tok)}, nil
	case STRING:
		p.advance()
		return &LiteralExpr{Value: StringVal(tok.Literal.(string)), Debug: debugFrom(tok)}, nil
	case TRUE:
		p.advance()
		return &LiteralExpr{Value: BoolVal(true), Debug: debugFrom(tok)}, nil
	case FALSE:
		p.advance()
		return &LiteralExpr{Value: BoolVal(false), Debug: debugFrom(tok)}, nil
	case NIL:
		p.advance()
		return &LiteralExpr{Value: Nil, Debug: debugFrom(tok)}, nil
	case LEFT_PAREN:
		p.advance()
		expr, err := p.expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(RIGHT_PAREN, "expected ')' after expression"); err != nil {
			return nil, err
		}
		return &GroupingExpr{Expression: expr}, nil
	case IDENTIFIER:
		p.advance()
		return &IdentifierExpr{Identifier: p.newIdentifier(tok)}, nil
	default:
		if tok.Type == EOF {
			return nil, p.errAt(tok, "unexpected end of input")
		}
		return nil, p.errAt(tok, fmt.Sprintf("unexpected token %q", tok.Lexeme))
	}
}
