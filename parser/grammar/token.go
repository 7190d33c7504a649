// Package grammar implements the Nadra language front end.
// token.go defines the token kinds produced by the lexer.
package grammar

import (
	"fmt"

	"github.com/daveroberts0321/nadra/diag"
)

// Position is a 1-based source location with the byte offset it starts at
type Position struct {
	Line   int    `json:"line"`
	Column int    `json:"column"`
	Offset int    `json:"offset"`
	File   string `json:"file,omitempty"`
}

func (p Position) String() string {
	if p.File != "" {
		return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
	}
	return fmt.Sprintf("line %d, column %d", p.Line, p.Column)
}

// Diag converts the position for use in a diagnostic
func (p Position) Diag() diag.Pos {
	return diag.Pos{Line: p.Line, Column: p.Column}
}

// Kind is the lexical class of a token
type Kind uint8

const (
	EOF     Kind = iota
	Newline      // end of statement
	Ident
	Int
	Float
	String

	keywordStart
	Def
	EndDef
	If
	Then
	Else
	EndIf
	For
	In
	Do
	Done
	While
	EndWhile
	Struct
	EndStruct
	Enum
	EndEnum
	Return
	True
	False
	None
	And
	Or
	Not
	Break
	Continue
	Use
	keywordEnd

	Plus
	Minus
	Star
	Slash
	Percent
	StarStar
	EqEq
	NotEq
	Less
	LessEq
	Greater
	GreaterEq
	Assign
	PlusAssign
	MinusAssign
	StarAssign
	SlashAssign
	PercentAssign
	Arrow
	DotDot
	LParen
	RParen
	LBracket
	RBracket
	Comma
	Colon
	Dot
)

var kindText = [...]string{
	EOF:           "end of input",
	Newline:       "end of line",
	Ident:         "identifier",
	Int:           "integer literal",
	Float:         "float literal",
	String:        "string literal",
	Def:           "def",
	EndDef:        "enddef",
	If:            "if",
	Then:          "then",
	Else:          "else",
	EndIf:         "endif",
	For:           "for",
	In:            "in",
	Do:            "do",
	Done:          "done",
	While:         "while",
	EndWhile:      "endwhile",
	Struct:        "struct",
	EndStruct:     "endstruct",
	Enum:          "enum",
	EndEnum:       "endenum",
	Return:        "return",
	True:          "true",
	False:         "false",
	None:          "none",
	And:           "and",
	Or:            "or",
	Not:           "not",
	Break:         "break",
	Continue:      "continue",
	Use:           "use",
	Plus:          "+",
	Minus:         "-",
	Star:          "*",
	Slash:         "/",
	Percent:       "%",
	StarStar:      "**",
	EqEq:          "==",
	NotEq:         "!=",
	Less:          "<",
	LessEq:        "<=",
	Greater:       ">",
	GreaterEq:     ">=",
	Assign:        "=",
	PlusAssign:    "+=",
	MinusAssign:   "-=",
	StarAssign:    "*=",
	SlashAssign:   "/=",
	PercentAssign: "%=",
	Arrow:         "->",
	DotDot:        "..",
	LParen:        "(",
	RParen:        ")",
	LBracket:      "[",
	RBracket:      "]",
	Comma:         ",",
	Colon:         ":",
	Dot:           ".",
}

func (k Kind) String() string {
	if int(k) < len(kindText) && kindText[k] != "" {
		return kindText[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Quoted renders the kind the way diagnostics name it: punctuation and
// keywords in quotes, token classes bare.
func (k Kind) Quoted() string {
	if k <= String {
		return k.String()
	}
	return "'" + k.String() + "'"
}

// IsKeyword reports whether k is a reserved word
func (k Kind) IsKeyword() bool {
	return k > keywordStart && k < keywordEnd
}

// IsCloser reports whether k can only appear where it ends a block
func (k Kind) IsCloser() bool {
	switch k {
	case EndDef, EndIf, Else, Done, EndWhile, EndStruct, EndEnum:
		return true
	}
	return false
}

// IsAssignOp reports whether k is '=' or a compound assignment operator
func (k Kind) IsAssignOp() bool {
	return k >= Assign && k <= PercentAssign
}

var keywords = map[string]Kind{}

func init() {
	for k := keywordStart + 1; k < keywordEnd; k++ {
		keywords[kindText[k]] = k
	}
}

// LookupKeyword returns the keyword kind for word, if it is reserved
func LookupKeyword(word string) (Kind, bool) {
	k, ok := keywords[word]
	return k, ok
}

// Token is one lexical unit. Value holds the escape-resolved text of string
// literals; for every other kind it equals Lexeme.
type Token struct {
	Kind   Kind
	Lexeme string
	Value  string
	Pos    Position
}

// Describe renders the token for "found ..." parts of diagnostics
func (t Token) Describe() string {
	switch t.Kind {
	case EOF, Newline:
		return t.Kind.String()
	case Ident:
		return fmt.Sprintf("identifier %q", t.Lexeme)
	case Int, Float, String:
		return fmt.Sprintf("%s %s", t.Kind, t.Lexeme)
	}
	return t.Kind.Quoted()
}

func (t Token) String() string {
	return fmt.Sprintf("%s %q at %s", t.Kind, t.Lexeme, t.Pos)
}
