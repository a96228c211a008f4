package rlox

// TokenType represents the kind of token.
type TokenType int

const (
	// Special
	EOF TokenType = iota

	// Single-character punctuation
	LEFT_PAREN  // "("
	RIGHT_PAREN // ")"
	LEFT_BRACE  // "{"
	RIGHT_BRACE // "}"
	COMMA       // ","
	DOT         // "."
	MINUS       // "-"
	PLUS        // "+"
	SEMICOLON   // ";"
	SLASH       // "/"
	STAR        // "*"

	// One or two character operators
	BANG          // "!"
	BANG_EQUAL    // "!="
	EQUAL         // "="
	EQUAL_EQUAL   // "=="
	GREATER       // ">"
	GREATER_EQUAL // ">="
	LESS          // "<"
	LESS_EQUAL    // "<="

	// Literals & identifiers
	IDENTIFIER
	STRING
	NUMBER

	// Keywords
	AND
	ELSE
	FALSE
	FUN
	FOR
	IF
	NIL
	OR
	PRINT
	RETURN
	TRUE
	VAR
	WHILE
)

var tokenNames = map[TokenType]string{
	EOF:           "EOF",
	LEFT_PAREN:    "(",
	RIGHT_PAREN:   ")",
	LEFT_BRACE:    "{",
	RIGHT_BRACE:   "}",
	COMMA:         ",",
	DOT:           ".",
	MINUS:         "-",
	PLUS:          "+",
	SEMICOLON:     ";",
	SLASH:         "/",
	STAR:          "*",
	BANG:          "!",
	BANG_EQUAL:    "!=",
	EQUAL:         "=",
	EQUAL_EQUAL:   "==",
	GREATER:       ">",
	GREATER_EQUAL: ">=",
	LESS:          "<",
	LESS_EQUAL:    "<=",
	IDENTIFIER:    "identifier",
	STRING:        "string",
	NUMBER:        "number",
	AND:           "and",
	ELSE:          "else",
	FALSE:         "false",
	FUN:           "fun",
	FOR:           "for",
	IF:            "if",
	NIL:           "nil",
	OR:            "or",
	PRINT:         "print",
	RETURN:        "return",
	TRUE:          "true",
	VAR:           "var",
	WHILE:         "while",
}

func (tt TokenType) String() string {
	if s, ok := tokenNames[tt]; ok {
		return s
	}
	return "unknown"
}

// Token is a lexical token with optional literal value.
type Token struct {
	Type    TokenType
	Lexeme  string      // raw text slice
	Literal interface{} // parsed value for STRING/NUMBER
	Line    int         // 1-based
	Col     int         // 1-based
}

// keywords map
var keywords = map[string]TokenType{
	"and":    AND,
	"else":   ELSE,
	"false":  FALSE,
	"fun":    FUN,
	"for":    FOR,
	"if":     IF,
	"nil":    NIL,
	"or":     OR,
	"print":  PRINT,
	"return": RETURN,
	"true":   TRUE,
	"var":    VAR,
	"while":  WHILE,
}
