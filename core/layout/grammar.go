package layout

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// layoutGrammar is the participle grammar for record layouts.
// Example: `le; magic:bytes[4] count:u16 be name:pstr(u16) pad(4)`
//
//nolint:govet // participle grammar tags are not standard struct tags
type layoutGrammar struct {
	Items []*itemNode `( @@ ";"* )*`
}

//nolint:govet // participle grammar tags are not standard struct tags
type itemNode struct {
	Pos lexer.Position

	Order    *string    `  @("le" | "be")`
	Encoding *string    `| "enc" "(" @String ")"`
	Gap      *gapNode   `| @@`
	Field    *fieldNode `| @@`
}

//nolint:govet // participle grammar tags are not standard struct tags
type gapNode struct {
	Op    string `@("pad" | "apad" | "skip")`
	Count int    `"(" @Int ")"`
}

//nolint:govet // participle grammar tags are not standard struct tags
type fieldNode struct {
	Name string    `@Ident ":"`
	Type *typeNode `@@`
}

//nolint:govet // participle grammar tags are not standard struct tags
type typeNode struct {
	Name  string  `@Ident`
	Count *int    `( "[" @Int "]"`
	Param *string `| "(" @Ident ")" )?`
}

var layoutLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `#[^\n]*`},
	{Name: "String", Pattern: `"[^"]*"`},
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
	{Name: "Punct", Pattern: `[:;\[\]()]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var layoutParser = participle.MustBuild[layoutGrammar](
	participle.Lexer(layoutLexer),
	participle.Elide("Whitespace", "Comment"),
	participle.Unquote("String"),
)
