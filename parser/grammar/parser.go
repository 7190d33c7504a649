// Package grammar implements the Nadra language front end.
// parser.go contains the parsing logic and helper routines.
package grammar

import (
	"fmt"
	"io"
	"strings"

	"github.com/daveroberts0321/nadra/diag"
)

// Nadra Grammar:
//   Program     := { Item }
//   Item        := FunctionDef | StructDef | EnumDef | Statement
//   FunctionDef := 'def' IDENT '(' [ Param { ',' Param } ] ')' [ '->' Type ] { Statement } 'enddef'
//   Param       := IDENT [ ':' Type ]
//   StructDef   := 'struct' IDENT { IDENT ':' Type } { FunctionDef } 'endstruct'
//   EnumDef     := 'enum' IDENT [ IDENT { ',' IDENT } [ ',' ] ] 'endenum'
//   Statement   := IfStmt | ForStmt | WhileStmt | Return | 'break' | 'continue' | Use | Assign | Expr
//   IfStmt      := 'if' Expr 'then' { Statement } [ 'else' { Statement } ] 'endif'
//   ForStmt     := 'for' IDENT 'in' Expr 'do' { Statement } 'done'
//   WhileStmt   := 'while' Expr [ 'do' ] { Statement } ( 'done' | 'endwhile' )
//   Return      := 'return' [ Expr ]
//   Use         := 'use' IDENT { '.' IDENT }
//   Assign      := Target ( '=' | '+=' | '-=' | '*=' | '/=' | '%=' ) Expr
//
//   Expr        := Or
//   Or          := And { 'or' And }
//   And         := Compare { 'and' Compare }
//   Compare     := Range { ( '==' | '!=' | '<' | '<=' | '>' | '>=' ) Range }
//   Range       := Sum [ '..' Sum ]
//   Sum         := Product { ( '+' | '-' ) Product }
//   Product     := Power { ( '*' | '/' | '%' ) Power }
//   Power       := Unary [ '**' Power ]
//   Unary       := ( '-' | 'not' ) Unary | Postfix
//   Postfix     := Primary { '(' Args ')' | '.' IDENT | '[' Expr ']' }
//   Primary     := literal | IDENT | Lambda | '(' Expr ')' | '[' Args ']'
//   Lambda      := '(' [ IDENT { ',' IDENT } ] ')' '->' Expr

type parser struct {
	tokens   []Token
	current  int
	filename string
}

// Parse reads Nadra source from r and returns the parsed AST
func Parse(r io.Reader) (*Program, error) {
	return ParseWithFilename(r, "")
}

// ParseWithFilename allows tracking source file for better error messages
func ParseWithFilename(r io.Reader, filename string) (*Program, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	tokens, err := NewLexer(string(src), filename).Tokenize()
	if err != nil {
		return nil, err
	}
	return ParseTokens(tokens, filename)
}

// ParseString parses a string containing Nadra source into an AST
func ParseString(s string) (*Program, error) {
	return Parse(strings.NewReader(s))
}

// ParseTokens parses a complete token sequence ending in EOF
func ParseTokens(tokens []Token, filename string) (*Program, error) {
	if len(tokens) == 0 || tokens[len(tokens)-1].Kind != EOF {
		tokens = append(tokens, Token{Kind: EOF})
	}
	p := &parser{tokens: tokens, filename: filename}
	return p.parseProgram()
}

func (p *parser) peek() Token {
	return p.tokens[p.current]
}

func (p *parser) peekAt(n int) Token {
	if p.current+n >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.current+n]
}

func (p *parser) check(kinds ...Kind) bool {
	tok := p.peek()
	for _, k := range kinds {
		if tok.Kind == k {
			return true
		}
	}
	return false
}

func (p *parser) next() Token {
	tok := p.tokens[p.current]
	if tok.Kind != EOF {
		p.current++
	}
	return tok
}

func (p *parser) match(kinds ...Kind) bool {
	if p.check(kinds...) {
		p.next()
		return true
	}
	return false
}

func (p *parser) skipNewlines() {
	for p.peek().Kind == Newline {
		p.next()
	}
}

func (p *parser) position(tok Token) *Position {
	pos := tok.Pos
	return &pos
}

func (p *parser) errorf(kind diag.Kind, tok Token, format string, args ...interface{}) *diag.Error {
	err := diag.Newf(kind, tok.Pos.Diag(), format, args...)
	err.File = p.filename
	err.Found = tok.Describe()
	err.AtEOF = tok.Kind == EOF
	return err
}

func (p *parser) expect(kind Kind, context string) (Token, error) {
	tok := p.peek()
	if tok.Kind != kind {
		msg := fmt.Sprintf("expected %s", kind.Quoted())
		if context != "" {
			msg += " " + context
		}
		err := p.errorf(diag.UnexpectedToken, tok, "%s, found %s", msg, tok.Describe())
		err.Expected = kind.String()
		return tok, err
	}
	return p.next(), nil
}

// unmatched reports a block that was not closed by terminator
func (p *parser) unmatched(opener Token, terminator Kind) *diag.Error {
	tok := p.peek()
	err := p.errorf(diag.UnmatchedTerminator, tok, "expected %s to close %s at %s, found %s",
		terminator.Quoted(), opener.Kind.Quoted(), opener.Pos.Diag(), tok.Describe())
	err.Expected = terminator.String()
	err.Opener = &diag.Opener{Keyword: opener.Kind.String(), Pos: opener.Pos.Diag()}
	return err
}

func (p *parser) parseProgram() (*Program, error) {
	program := &Program{
		Items:    []Item{},
		Position: p.position(p.peek()),
	}

	for {
		p.skipNewlines()
		tok := p.peek()
		if tok.Kind == EOF {
			break
		}

		var (
			item Item
			err  error
		)
		switch {
		case tok.Kind == Def:
			item, err = p.parseFunction()
		case tok.Kind == Struct:
			item, err = p.parseStruct()
		case tok.Kind == Enum:
			item, err = p.parseEnum()
		case tok.Kind.IsCloser():
			err = p.errorf(diag.UnexpectedToken, tok, "unexpected %s with no open block", tok.Describe())
		default:
			item, err = p.parseStatement()
		}
		if err != nil {
			return nil, err
		}
		program.Items = append(program.Items, item)
	}

	return program, nil
}

// parseBody parses statements until terminator or one of also is next.
// The closing token is left for the caller.
func (p *parser) parseBody(opener Token, terminator Kind, also ...Kind) ([]Statement, error) {
	body := []Statement{}
	for {
		p.skipNewlines()
		tok := p.peek()
		if tok.Kind == terminator {
			return body, nil
		}
		for _, k := range also {
			if tok.Kind == k {
				return body, nil
			}
		}
		if tok.Kind == EOF || tok.Kind.IsCloser() {
			return nil, p.unmatched(opener, terminator)
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		body = append(body, stmt)
	}
}

func (p *parser) parseFunction() (*FunctionDef, error) {
	defTok, err := p.expect(Def, "")
	if err != nil {
		return nil, err
	}

	nameTok, err := p.expect(Ident, "after 'def'")
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(LParen, "after function name"); err != nil {
		return nil, err
	}
	params, err := p.parseParameterList(true)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(RParen, "to close the parameter list"); err != nil {
		return nil, err
	}

	function := &FunctionDef{
		Name:     nameTok.Lexeme,
		Params:   params,
		Position: p.position(defTok),
	}

	// Optional return type
	if p.match(Arrow) {
		returnType, err := p.parseType()
		if err != nil {
			return nil, err
		}
		function.ReturnType = returnType
	}

	body, err := p.parseBody(defTok, EndDef)
	if err != nil {
		return nil, err
	}
	p.next() // enddef
	function.Body = body

	return function, nil
}

func (p *parser) parseParameterList(typed bool) ([]*Param, error) {
	parameters := []*Param{}

	for !p.check(RParen) {
		nameTok, err := p.expect(Ident, "as parameter name")
		if err != nil {
			return nil, err
		}
		param := &Param{Name: nameTok.Lexeme, Position: p.position(nameTok)}

		if typed && p.match(Colon) {
			paramType, err := p.parseType()
			if err != nil {
				return nil, err
			}
			param.Type = paramType
		}
		parameters = append(parameters, param)

		if !p.match(Comma) {
			break
		}
	}

	return parameters, nil
}

func (p *parser) parseType() (*TypeRef, error) {
	tok := p.peek()
	if tok.Kind != Ident && tok.Kind != None {
		err := p.errorf(diag.UnexpectedToken, tok, "expected type name, found %s", tok.Describe())
		err.Expected = "type name"
		return nil, err
	}
	p.next()

	return &TypeRef{
		Name:     tok.Lexeme,
		Position: p.position(tok),
	}, nil
}

func (p *parser) parseStruct() (*StructDef, error) {
	structTok, err := p.expect(Struct, "")
	if err != nil {
		return nil, err
	}

	nameTok, err := p.expect(Ident, "after 'struct'")
	if err != nil {
		return nil, err
	}

	def := &StructDef{
		Name:     nameTok.Lexeme,
		Fields:   []*Field{},
		Methods:  []*FunctionDef{},
		Position: p.position(structTok),
	}

	// Fields come first, each "name: Type"
	for {
		p.skipNewlines()
		if !(p.check(Ident) && p.peekAt(1).Kind == Colon) {
			break
		}
		fieldTok := p.next()
		p.next() // ':'
		fieldType, err := p.parseType()
		if err != nil {
			return nil, err
		}
		def.Fields = append(def.Fields, &Field{
			Name:     fieldTok.Lexeme,
			Type:     fieldType,
			Position: p.position(fieldTok),
		})
	}

	for {
		p.skipNewlines()
		tok := p.peek()
		switch {
		case tok.Kind == EndStruct:
			p.next()
			return def, nil
		case tok.Kind == Def:
			method, err := p.parseFunction()
			if err != nil {
				return nil, err
			}
			def.Methods = append(def.Methods, method)
		case tok.Kind == EOF || tok.Kind.IsCloser():
			return nil, p.unmatched(structTok, EndStruct)
		default:
			err := p.errorf(diag.UnexpectedToken, tok, "expected field, 'def' or 'endstruct' in struct %s, found %s", def.Name, tok.Describe())
			err.Expected = EndStruct.String()
			return nil, err
		}
	}
}

func (p *parser) parseEnum() (*EnumDef, error) {
	enumTok, err := p.expect(Enum, "")
	if err != nil {
		return nil, err
	}

	nameTok, err := p.expect(Ident, "after 'enum'")
	if err != nil {
		return nil, err
	}

	def := &EnumDef{
		Name:     nameTok.Lexeme,
		Variants: []*Variant{},
		Position: p.position(enumTok),
	}

	for {
		p.skipNewlines()
		tok := p.peek()
		if tok.Kind == EndEnum {
			p.next()
			return def, nil
		}
		if tok.Kind == EOF || tok.Kind.IsCloser() {
			return nil, p.unmatched(enumTok, EndEnum)
		}

		variantTok, err := p.expect(Ident, "as enum variant")
		if err != nil {
			return nil, err
		}
		def.Variants = append(def.Variants, &Variant{
			Name:     variantTok.Lexeme,
			Position: p.position(variantTok),
		})

		p.skipNewlines()
		if p.match(Comma) {
			continue
		}
		tok = p.peek()
		switch {
		case tok.Kind == EndEnum:
			continue
		case tok.Kind == EOF || tok.Kind.IsCloser():
			return nil, p.unmatched(enumTok, EndEnum)
		default:
			err := p.errorf(diag.UnexpectedToken, tok, "expected ',' or 'endenum' after enum variant, found %s", tok.Describe())
			err.Expected = EndEnum.String()
			return nil, err
		}
	}
}

func (p *parser) parseStatement() (Statement, error) {
	tok := p.peek()
	switch tok.Kind {
	case If:
		return p.parseIfStatement()
	case For:
		return p.parseForStatement()
	case While:
		return p.parseWhileStatement()
	case Return:
		return p.parseReturnStatement()
	case Break:
		p.next()
		return &BreakStmt{Position: p.position(tok)}, nil
	case Continue:
		p.next()
		return &ContinueStmt{Position: p.position(tok)}, nil
	case Use:
		return p.parseUseStatement()
	case Def, Struct, Enum:
		return nil, p.errorf(diag.UnexpectedToken, tok, "%s is only allowed at the top level", tok.Describe())
	}

	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	if !p.peek().Kind.IsAssignOp() {
		return &ExprStmt{Expr: expr, Position: expr.GetPosition()}, nil
	}

	opTok := p.next()
	switch expr.(type) {
	case *IdentifierExpression, *MemberExpression, *IndexExpression:
	default:
		return nil, p.errorf(diag.MalformedExpression, opTok, "cannot assign to %s expression", expr.ExpressionType())
	}

	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	return &Assignment{
		Target:   expr,
		Op:       opTok.Kind.String(),
		Value:    value,
		Position: expr.GetPosition(),
	}, nil
}

func (p *parser) parseIfStatement() (*IfStmt, error) {
	ifTok := p.next()

	condition, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(Then, "after if condition"); err != nil {
		return nil, err
	}

	thenBody, err := p.parseBody(ifTok, EndIf, Else)
	if err != nil {
		return nil, err
	}

	stmt := &IfStmt{
		Cond:     condition,
		Then:     thenBody,
		Position: p.position(ifTok),
	}

	// Optional else clause
	if p.match(Else) {
		elseBody, err := p.parseBody(ifTok, EndIf)
		if err != nil {
			return nil, err
		}
		stmt.Else = elseBody
	}
	p.next() // endif

	return stmt, nil
}

func (p *parser) parseForStatement() (*ForInStmt, error) {
	forTok := p.next()

	varTok, err := p.expect(Ident, "as loop variable")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(In, "after loop variable"); err != nil {
		return nil, err
	}

	iterable, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(Do, "after for-in header"); err != nil {
		return nil, err
	}

	body, err := p.parseBody(forTok, Done)
	if err != nil {
		return nil, err
	}
	p.next() // done

	return &ForInStmt{
		Var:      varTok.Lexeme,
		Iterable: iterable,
		Body:     body,
		Position: p.position(forTok),
	}, nil
}

func (p *parser) parseWhileStatement() (*WhileStmt, error) {
	whileTok := p.next()

	condition, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	p.match(Do)

	body, err := p.parseBody(whileTok, Done, EndWhile)
	if err != nil {
		return nil, err
	}
	p.next() // done or endwhile

	return &WhileStmt{
		Cond:     condition,
		Body:     body,
		Position: p.position(whileTok),
	}, nil
}

func (p *parser) parseReturnStatement() (*ReturnStmt, error) {
	returnTok := p.next()
	stmt := &ReturnStmt{Position: p.position(returnTok)}

	// Optional return value
	next := p.peek().Kind
	if next == Newline || next == EOF || next.IsCloser() {
		return stmt, nil
	}

	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	stmt.Value = value
	return stmt, nil
}

func (p *parser) parseUseStatement() (*UseStmt, error) {
	useTok := p.next()

	first, err := p.expect(Ident, "after 'use'")
	if err != nil {
		return nil, err
	}
	path := []string{first.Lexeme}
	for p.match(Dot) {
		part, err := p.expect(Ident, "in module path")
		if err != nil {
			return nil, err
		}
		path = append(path, part.Lexeme)
	}

	return &UseStmt{Path: path, Position: p.position(useTok)}, nil
}

func (p *parser) parseExpression() (Expression, error) {
	return p.parseOr()
}

func (p *parser) parseBinary(next func() (Expression, error), operators ...Kind) (Expression, error) {
	left, err := next()
	if err != nil {
		return nil, err
	}

	for p.check(operators...) {
		opTok := p.next()
		right, err := next()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpression{
			Left:     left,
			Operator: opTok.Kind,
			Right:    right,
			Position: p.position(opTok),
		}
	}

	return left, nil
}

func (p *parser) parseOr() (Expression, error) {
	return p.parseBinary(p.parseAnd, Or)
}

func (p *parser) parseAnd() (Expression, error) {
	return p.parseBinary(p.parseComparison, And)
}

func (p *parser) parseComparison() (Expression, error) {
	return p.parseBinary(p.parseRange, EqEq, NotEq, Less, LessEq, Greater, GreaterEq)
}

func (p *parser) parseRange() (Expression, error) {
	lo, err := p.parseSum()
	if err != nil {
		return nil, err
	}
	if !p.check(DotDot) {
		return lo, nil
	}

	opTok := p.next()
	hi, err := p.parseSum()
	if err != nil {
		return nil, err
	}
	if p.check(DotDot) {
		return nil, p.errorf(diag.MalformedExpression, p.peek(), "range bounds cannot be chained")
	}

	return &RangeExpression{Lo: lo, Hi: hi, Position: p.position(opTok)}, nil
}

func (p *parser) parseSum() (Expression, error) {
	return p.parseBinary(p.parseProduct, Plus, Minus)
}

func (p *parser) parseProduct() (Expression, error) {
	return p.parseBinary(p.parsePower, Star, Slash, Percent)
}

func (p *parser) parsePower() (Expression, error) {
	base, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	if !p.check(StarStar) {
		return base, nil
	}

	opTok := p.next()
	// right-associative: 2 ** 3 ** 2 == 2 ** (3 ** 2)
	exponent, err := p.parsePower()
	if err != nil {
		return nil, err
	}

	return &BinaryExpression{
		Left:     base,
		Operator: StarStar,
		Right:    exponent,
		Position: p.position(opTok),
	}, nil
}

func (p *parser) parseUnary() (Expression, error) {
	if !p.check(Minus, Not) {
		return p.parsePostfix()
	}

	opTok := p.next()
	operand, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	return &UnaryExpression{
		Operator: opTok.Kind,
		Operand:  operand,
		Position: p.position(opTok),
	}, nil
}

func (p *parser) parsePostfix() (Expression, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	for {
		switch tok := p.peek(); tok.Kind {
		case LParen:
			p.next()
			args, err := p.parseExpressionList(RParen)
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(RParen, "to close the argument list"); err != nil {
				return nil, err
			}
			expr = &CallExpression{Callee: expr, Arguments: args, Position: expr.GetPosition()}

		case Dot:
			p.next()
			nameTok, err := p.expect(Ident, "after '.'")
			if err != nil {
				return nil, err
			}
			expr = &MemberExpression{Object: expr, Property: nameTok.Lexeme, Position: expr.GetPosition()}

		case LBracket:
			p.next()
			index, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(RBracket, "to close the index"); err != nil {
				return nil, err
			}
			expr = &IndexExpression{Object: expr, Index: index, Position: expr.GetPosition()}

		default:
			return expr, nil
		}
	}
}

func (p *parser) parsePrimary() (Expression, error) {
	tok := p.peek()

	switch tok.Kind {
	case Int:
		p.next()
		return &LiteralExpression{Kind: IntLiteral, Value: tok.Lexeme, Position: p.position(tok)}, nil
	case Float:
		p.next()
		return &LiteralExpression{Kind: FloatLiteral, Value: tok.Lexeme, Position: p.position(tok)}, nil
	case String:
		p.next()
		return &LiteralExpression{Kind: StringLiteral, Value: tok.Value, Position: p.position(tok)}, nil
	case True, False:
		p.next()
		return &LiteralExpression{Kind: BoolLiteral, Value: tok.Lexeme, Position: p.position(tok)}, nil
	case None:
		p.next()
		return &LiteralExpression{Kind: NoneLiteral, Value: tok.Lexeme, Position: p.position(tok)}, nil
	case Ident:
		p.next()
		return &IdentifierExpression{Name: tok.Lexeme, Position: p.position(tok)}, nil

	case LParen:
		if p.isLambda() {
			return p.parseLambda()
		}
		p.next()
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(RParen, "to close the parenthesized expression"); err != nil {
			return nil, err
		}
		return expr, nil

	case LBracket:
		p.next()
		elements, err := p.parseExpressionList(RBracket)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(RBracket, "to close the list"); err != nil {
			return nil, err
		}
		return &ListExpression{Elements: elements, Position: p.position(tok)}, nil
	}

	err := p.errorf(diag.MalformedExpression, tok, "expected expression, found %s", tok.Describe())
	err.Expected = "expression"
	return nil, err
}

// parseExpressionList parses comma separated expressions up to closer,
// allowing a trailing comma. The closer itself is not consumed.
func (p *parser) parseExpressionList(closer Kind) ([]Expression, error) {
	list := []Expression{}
	for !p.check(closer) {
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		list = append(list, expr)
		if !p.match(Comma) {
			break
		}
	}
	return list, nil
}

// isLambda looks ahead from '(' for "( [IDENT {, IDENT}] ) ->"
func (p *parser) isLambda() bool {
	i := 1
	if p.peekAt(i).Kind != RParen {
		for {
			if p.peekAt(i).Kind != Ident {
				return false
			}
			i++
			if p.peekAt(i).Kind == Comma {
				i++
				continue
			}
			break
		}
		if p.peekAt(i).Kind != RParen {
			return false
		}
	}
	return p.peekAt(i+1).Kind == Arrow
}

func (p *parser) parseLambda() (*LambdaExpression, error) {
	openTok := p.next()

	params, err := p.parseParameterList(false)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(RParen, "to close the lambda parameters"); err != nil {
		return nil, err
	}
	if _, err := p.expect(Arrow, "after lambda parameters"); err != nil {
		return nil, err
	}

	body, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	return &LambdaExpression{Params: params, Body: body, Position: p.position(openTok)}, nil
}
