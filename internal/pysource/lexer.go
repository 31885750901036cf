package pysource

import (
	"bytes"
	"fmt"

	"github.com/alecthomas/participle/v2/lexer"
)

// Kind is the lexical class of a Token.
type Kind int

const (
	KindComment Kind = iota + 1
	KindString
	KindName
	KindNumber
	KindNewline
	KindPunct
)

// Token is a significant lexical token of Python source. Whitespace and
// backslash line continuations are dropped.
type Token struct {
	Kind   Kind
	Value  string
	Line   int
	Column int
}

// Rules are tried in order, so string literals (with their r/b/u/f
// prefixes) win over names and a '#' inside a string never starts a comment.
var pythonLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `#[^\r\n]*`},
	{Name: "String", Pattern: `(?i:[rbuf]{0,2})(?:(?s:"""(?:\\.|[^\\])*?""")|(?s:'''(?:\\.|[^\\])*?''')|"(?:(?s:\\.)|[^"\\\r\n])*"|'(?:(?s:\\.)|[^'\\\r\n])*')`},
	{Name: "Name", Pattern: `[\p{L}_][\p{L}\p{N}_]*`},
	{Name: "Number", Pattern: `[0-9][0-9A-Za-z_.]*`},
	{Name: "Continuation", Pattern: `\\\r?\n`},
	{Name: "Newline", Pattern: `\r?\n`},
	{Name: "Whitespace", Pattern: `[ \t\f]+`},
	{Name: "Punct", Pattern: `[^\s\p{L}\p{N}_#'"\\]`},
})

var kinds = func() map[lexer.TokenType]Kind {
	symbols := pythonLexer.Symbols()
	return map[lexer.TokenType]Kind{
		symbols["Comment"]: KindComment,
		symbols["String"]:  KindString,
		symbols["Name"]:    KindName,
		symbols["Number"]:  KindNumber,
		symbols["Newline"]: KindNewline,
		symbols["Punct"]:   KindPunct,
	}
}()

// Tokenize splits Python source into tokens. filename is only used in
// error positions.
func Tokenize(filename string, src []byte) ([]Token, error) {
	lex, err := pythonLexer.Lex(filename, bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("tokenize %s: %w", filename, err)
	}
	raw, err := lexer.ConsumeAll(lex)
	if err != nil {
		return nil, fmt.Errorf("tokenize %s: %w", filename, err)
	}

	tokens := make([]Token, 0, len(raw))
	for _, t := range raw {
		kind, ok := kinds[t.Type]
		if !ok {
			continue
		}
		tokens = append(tokens, Token{
			Kind:   kind,
			Value:  t.Value,
			Line:   t.Pos.Line,
			Column: t.Pos.Column,
		})
	}
	return tokens, nil
}
