package parser

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var programLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `%[^\n]*`},
	{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
	{Name: "Directive", Pattern: `#[a-z]+`},
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Var", Pattern: `[\p{Lu}_][\p{L}\p{Nd}_]*`},
	{Name: "Ident", Pattern: `\p{Ll}[\p{L}\p{Nd}_]*`},
	{Name: "Quoted", Pattern: `'(\\.|[^'\\])*'`},
	{Name: "Op", Pattern: `:-|\?-|\\=|=<|>=|[-+*/=<>(),.|\[\]{}]`},
})

var (
	fileParser = participle.MustBuild[file](
		participle.Lexer(programLexer),
		participle.Elide("Comment", "Whitespace"),
		participle.UseLookahead(2))
	queryParser = participle.MustBuild[queryText](
		participle.Lexer(programLexer),
		participle.Elide("Comment", "Whitespace"),
		participle.UseLookahead(2))
)

type file struct {
	Statements []*statement `@@*`
}

type statement struct {
	Pos        lexer.Position
	Compute    *computeDirective   `  @@`
	Abducible  *abducibleDirective `| @@`
	Query      *queryStmt          `| @@`
	Constraint *constraintStmt     `| @@`
	Rule       *ruleStmt           `| @@`
}

type computeDirective struct {
	Count string     `"#compute" @Int`
	Body  []*bodyLit `"{" ( @@ ( "," @@ )* )? "}" "."`
}

type abducibleDirective struct {
	Lit *expr `"#abducible" @@ "."`
}

type queryStmt struct {
	Body []*bodyLit `"?-" @@ ( "," @@ )* "."`
}

type constraintStmt struct {
	Body []*bodyLit `":-" @@ ( "," @@ )* "."`
}

type ruleStmt struct {
	Head *expr      `@@`
	Body []*bodyLit `( ":-" @@ ( "," @@ )* )? "."`
}

// queryText is a query without the leading '?-', as typed in a prompt.
type queryText struct {
	Body []*bodyLit `@@ ( "," @@ )* "."?`
}

type bodyLit struct {
	Pos   lexer.Position
	Not   bool   `@"not"?`
	Left  *expr  `@@`
	Op    string `( @( "=" | "\\=" | "=<" | ">=" | "<" | ">" | "is" )`
	Right *expr  `  @@ )?`
}

// Arithmetic precedence: sums of products of factors.

type expr struct {
	Pos   lexer.Position
	Left  *product `@@`
	Right []*sum   `@@*`
}

type sum struct {
	Op    string   `@( "+" | "-" )`
	Value *product `@@`
}

type product struct {
	Left  *factor `@@`
	Right []*prod `@@*`
}

type prod struct {
	Op    string  `@( "*" | "/" | "mod" )`
	Value *factor `@@`
}

type factor struct {
	Minus bool     `@"-"?`
	Value *primary `@@`
}

type primary struct {
	Pos   lexer.Position
	Int   *string   `  @Int`
	Var   *string   `| @Var`
	List  *listExpr `| @@`
	Group *expr     `| "(" @@ ")"`
	Comp  *compExpr `| @@`
}

type compExpr struct {
	Functor string  `( @Ident | @Quoted )`
	Open    bool    `( @"("`
	Args    []*expr `  ( @@ ( "," @@ )* )? ")" )?`
}

type listExpr struct {
	Open  bool    `@"["`
	Items []*expr `( @@ ( "," @@ )* )?`
	Tail  *expr   `( "|" @@ )? "]"`
}
