// Package grammar implements the Nadra language front end.
// lexer.go converts source text into tokens.
package grammar

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/daveroberts0321/nadra/diag"
)

// Lexer scans one translation unit. It is not incremental: Tokenize always
// scans the whole input from the start.
type Lexer struct {
	src      string
	filename string

	offset int
	line   int
	column int
	depth  int // open '(' and '['

	tokens []Token
}

// NewLexer creates a lexer over src. filename is only used in positions.
func NewLexer(src, filename string) *Lexer {
	return &Lexer{src: src, filename: filename}
}

// Tokenize scans src and returns its tokens, ending with EOF
func Tokenize(src string) ([]Token, error) {
	return NewLexer(src, "").Tokenize()
}

// Tokenize scans the whole input. On failure no tokens are returned.
func (l *Lexer) Tokenize() ([]Token, error) {
	l.offset, l.line, l.column, l.depth = 0, 1, 1, 0
	l.tokens = nil

	for l.offset < len(l.src) {
		if err := l.scan(); err != nil {
			l.tokens = nil
			return nil, err
		}
	}
	l.tokens = append(l.tokens, Token{Kind: EOF, Pos: l.pos()})
	return l.tokens, nil
}

func (l *Lexer) pos() Position {
	return Position{Line: l.line, Column: l.column, Offset: l.offset, File: l.filename}
}

func (l *Lexer) peek() rune {
	if l.offset >= len(l.src) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.src[l.offset:])
	return r
}

func (l *Lexer) peekAt(n int) rune {
	off := l.offset
	for i := 0; i < n && off < len(l.src); i++ {
		_, size := utf8.DecodeRuneInString(l.src[off:])
		off += size
	}
	if off >= len(l.src) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.src[off:])
	return r
}

func (l *Lexer) advance() rune {
	r, size := utf8.DecodeRuneInString(l.src[l.offset:])
	l.offset += size
	if r == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	return r
}

func (l *Lexer) emit(kind Kind, start Position) {
	lexeme := l.src[start.Offset:l.offset]
	l.tokens = append(l.tokens, Token{Kind: kind, Lexeme: lexeme, Value: lexeme, Pos: start})
}

func (l *Lexer) scan() error {
	start := l.pos()
	r := l.peek()

	switch {
	case r == '\n':
		l.advance()
		// newlines inside brackets, at the start of input, or right after
		// another newline carry no statement boundary
		if l.depth == 0 && len(l.tokens) > 0 && l.tokens[len(l.tokens)-1].Kind != Newline {
			l.tokens = append(l.tokens, Token{Kind: Newline, Lexeme: "\n", Value: "\n", Pos: start})
		}
		return nil
	case r == ' ' || r == '\t' || r == '\r':
		l.advance()
		return nil
	case r == '#':
		for l.offset < len(l.src) && l.peek() != '\n' {
			l.advance()
		}
		return nil
	case r == '"':
		return l.scanString()
	case isDigit(r):
		l.scanNumber()
		return nil
	case isIdentStart(r):
		l.scanIdentifier()
		return nil
	}

	return l.scanOperator(start)
}

func (l *Lexer) scanOperator(start Position) error {
	r := l.advance()
	next := l.peek()

	two := func(kind Kind) error {
		l.advance()
		l.emit(kind, start)
		return nil
	}
	one := func(kind Kind) error {
		l.emit(kind, start)
		return nil
	}

	switch r {
	case '+':
		if next == '=' {
			return two(PlusAssign)
		}
		return one(Plus)
	case '-':
		switch next {
		case '=':
			return two(MinusAssign)
		case '>':
			return two(Arrow)
		}
		return one(Minus)
	case '*':
		switch next {
		case '*':
			return two(StarStar)
		case '=':
			return two(StarAssign)
		}
		return one(Star)
	case '/':
		if next == '=' {
			return two(SlashAssign)
		}
		return one(Slash)
	case '%':
		if next == '=' {
			return two(PercentAssign)
		}
		return one(Percent)
	case '=':
		if next == '=' {
			return two(EqEq)
		}
		return one(Assign)
	case '!':
		if next == '=' {
			return two(NotEq)
		}
	case '<':
		if next == '=' {
			return two(LessEq)
		}
		return one(Less)
	case '>':
		if next == '=' {
			return two(GreaterEq)
		}
		return one(Greater)
	case '.':
		if next == '.' {
			return two(DotDot)
		}
		return one(Dot)
	case '(':
		l.depth++
		return one(LParen)
	case '[':
		l.depth++
		return one(LBracket)
	case ')':
		if l.depth > 0 {
			l.depth--
		}
		return one(RParen)
	case ']':
		if l.depth > 0 {
			l.depth--
		}
		return one(RBracket)
	case ',':
		return one(Comma)
	case ':':
		return one(Colon)
	}

	return diag.Newf(diag.InvalidCharacter, start.Diag(), "invalid character %q", r).WithFile(l.filename)
}

func (l *Lexer) scanString() error {
	start := l.pos()
	l.advance() // opening quote

	var value strings.Builder
	for {
		if l.offset >= len(l.src) || l.peek() == '\n' {
			return diag.Newf(diag.UnterminatedString, start.Diag(), "unterminated string literal").WithFile(l.filename)
		}
		r := l.peek()
		if r == '"' {
			l.advance()
			break
		}
		if r != '\\' {
			value.WriteRune(l.advance())
			continue
		}

		escPos := l.pos()
		l.advance()
		if l.offset >= len(l.src) {
			return diag.Newf(diag.UnterminatedString, start.Diag(), "unterminated string literal").WithFile(l.filename)
		}
		switch esc := l.advance(); esc {
		case 'n':
			value.WriteByte('\n')
		case 't':
			value.WriteByte('\t')
		case 'r':
			value.WriteByte('\r')
		case '0':
			value.WriteByte(0)
		case '\\', '"':
			value.WriteRune(esc)
		default:
			return diag.Newf(diag.InvalidCharacter, escPos.Diag(), "invalid escape sequence \\%c in string literal", esc).WithFile(l.filename)
		}
	}

	l.tokens = append(l.tokens, Token{
		Kind:   String,
		Lexeme: l.src[start.Offset:l.offset],
		Value:  value.String(),
		Pos:    start,
	})
	return nil
}

func (l *Lexer) scanNumber() {
	start := l.pos()
	for isDigit(l.peek()) {
		l.advance()
	}
	// "1..5" is a range, so a float needs a digit right after the dot
	if l.peek() == '.' && isDigit(l.peekAt(1)) {
		l.advance()
		for isDigit(l.peek()) {
			l.advance()
		}
		l.emit(Float, start)
		return
	}
	l.emit(Int, start)
}

func (l *Lexer) scanIdentifier() {
	start := l.pos()
	for isIdentPart(l.peek()) {
		l.advance()
	}
	word := l.src[start.Offset:l.offset]
	if kind, ok := LookupKeyword(word); ok {
		l.emit(kind, start)
		return
	}
	l.emit(Ident, start)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r)
}
