// Package pygen lowers a parsed Nadra program to Python 3 source text.
//
// Nadra blocks are closed by terminator keywords, Python blocks by
// indentation. The generator walks the tree depth first and carries the
// current depth in a block value; every emitted line is indented by the
// number of blocks still open around it.
package pygen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/daveroberts0321/nadra/diag"
	"github.com/daveroberts0321/nadra/parser/grammar"
)

// DefaultIndent is the number of spaces per indentation level
const DefaultIndent = 4

// FirstOrdinal is the value given to the first variant of every enum
const FirstOrdinal = 0

// Options control code generation
type Options struct {
	Indent int    // spaces per level; DefaultIndent when zero
	Header string // emitted as leading comment lines when set
	Verify bool   // parse the result before returning it
}

// block is the walk state threaded through statement generation
type block struct {
	depth  int
	inFunc bool
	inLoop bool
}

func (b block) nested() block {
	b.depth++
	return b
}

type generator struct {
	code   strings.Builder
	indent string
}

// Generate converts a complete program to Python source. It returns either
// the whole text or a single *diag.Error; there is no partial output.
func Generate(program *grammar.Program, opts Options) (string, error) {
	if program == nil {
		return "", diag.Newf(diag.Unsupported, diag.Pos{}, "nothing to generate")
	}

	width := opts.Indent
	if width <= 0 {
		width = DefaultIndent
	}
	g := &generator{indent: strings.Repeat(" ", width)}

	if err := g.generateProgram(program, opts.Header); err != nil {
		return "", err
	}

	code := g.code.String()
	if opts.Verify {
		if err := Verify(code); err != nil {
			return "", err
		}
	}
	return code, nil
}

func (g *generator) line(depth int, text string) {
	for i := 0; i < depth; i++ {
		g.code.WriteString(g.indent)
	}
	g.code.WriteString(text)
	g.code.WriteByte('\n')
}

func (g *generator) blank() {
	g.code.WriteByte('\n')
}

func (g *generator) generateProgram(program *grammar.Program, header string) error {
	// separate marks that the next item starts a new section
	separate := false

	if header != "" {
		for _, text := range strings.Split(strings.TrimRight(header, "\n"), "\n") {
			g.line(0, strings.TrimRight("# "+text, " "))
		}
		separate = true
	}

	if usesEnum(program) {
		if separate {
			g.blank()
		}
		g.line(0, "from enum import IntEnum")
		separate = true
	}

	for _, item := range program.Items {
		definition := isDefinition(item)
		if g.code.Len() > 0 && (definition || separate) {
			g.blank()
		}
		separate = definition

		var err error
		switch it := item.(type) {
		case *grammar.FunctionDef:
			err = g.generateFunction(it, block{})
		case *grammar.StructDef:
			err = g.generateStruct(it, 0)
		case *grammar.EnumDef:
			err = g.generateEnum(it, 0)
		case grammar.Statement:
			err = g.generateStatement(it, block{})
		default:
			err = unsupported(item, "cannot generate top-level %s", item.ItemType())
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func usesEnum(program *grammar.Program) bool {
	for _, item := range program.Items {
		if _, ok := item.(*grammar.EnumDef); ok {
			return true
		}
	}
	return false
}

func isDefinition(item grammar.Item) bool {
	switch item.(type) {
	case *grammar.FunctionDef, *grammar.StructDef, *grammar.EnumDef:
		return true
	}
	return false
}

// generateFunction emits a def with its annotations and body
func (g *generator) generateFunction(function *grammar.FunctionDef, b block) error {
	check := checkBinding
	if b.depth > 0 {
		// methods live in the class namespace
		check = checkName
	}
	if err := check(function, function.Name); err != nil {
		return err
	}

	params, err := g.parameterList(function.Params, true)
	if err != nil {
		return err
	}

	signature := fmt.Sprintf("def %s(%s)", function.Name, params)
	if function.ReturnType != nil {
		signature += " -> " + annotation(function.ReturnType)
	}
	g.line(b.depth, signature+":")

	return g.generateBody(function.Body, block{depth: b.depth + 1, inFunc: true})
}

func (g *generator) parameterList(params []*grammar.Param, annotate bool) (string, error) {
	seen := make(map[string]bool, len(params))
	parts := make([]string, 0, len(params))

	for _, param := range params {
		if err := checkBinding(param, param.Name); err != nil {
			return "", err
		}
		if seen[param.Name] {
			return "", unsupported(param, "duplicate parameter %q", param.Name)
		}
		seen[param.Name] = true

		if annotate && param.Type != nil {
			parts = append(parts, fmt.Sprintf("%s: %s", param.Name, annotation(param.Type)))
			continue
		}
		parts = append(parts, param.Name)
	}
	return strings.Join(parts, ", "), nil
}

// generateStruct emits a class. Fields are assigned by a generated
// constructor unless the struct brings its own __init__, in which case they
// become class attributes.
func (g *generator) generateStruct(def *grammar.StructDef, depth int) error {
	if err := checkBinding(def, def.Name); err != nil {
		return err
	}

	seen := make(map[string]bool, len(def.Fields))
	for _, field := range def.Fields {
		if err := checkName(field, field.Name); err != nil {
			return err
		}
		if seen[field.Name] {
			return unsupported(field, "duplicate field %q in struct %s", field.Name, def.Name)
		}
		seen[field.Name] = true
	}

	hasInit := false
	for _, method := range def.Methods {
		if method.Name == "__init__" {
			hasInit = true
		}
	}
	if !hasInit && seen["self"] {
		for _, field := range def.Fields {
			if field.Name == "self" {
				return unsupported(field, "field %q of struct %s collides with the constructor receiver", field.Name, def.Name)
			}
		}
	}

	g.line(depth, fmt.Sprintf("class %s:", def.Name))
	inner := depth + 1
	members := 0

	switch {
	case len(def.Fields) == 0:
	case hasInit:
		for _, field := range def.Fields {
			g.line(inner, field.Name+" = None")
		}
		members++
	default:
		params := make([]string, 0, len(def.Fields)+1)
		params = append(params, "self")
		for _, field := range def.Fields {
			params = append(params, field.Name+"=None")
		}
		g.line(inner, fmt.Sprintf("def __init__(%s):", strings.Join(params, ", ")))
		for _, field := range def.Fields {
			g.line(inner+1, fmt.Sprintf("self.%s = %s", field.Name, field.Name))
		}
		members++
	}

	for _, method := range def.Methods {
		if members > 0 {
			g.blank()
		}
		if err := g.generateFunction(method, block{depth: inner}); err != nil {
			return err
		}
		members++
	}

	if members == 0 {
		g.line(inner, "pass")
	}
	return nil
}

// generateEnum emits an IntEnum with ordinals in declaration order
func (g *generator) generateEnum(def *grammar.EnumDef, depth int) error {
	if err := checkBinding(def, def.Name); err != nil {
		return err
	}

	g.line(depth, fmt.Sprintf("class %s(IntEnum):", def.Name))
	if len(def.Variants) == 0 {
		g.line(depth+1, "pass")
		return nil
	}

	seen := make(map[string]bool, len(def.Variants))
	for i, variant := range def.Variants {
		if err := checkName(variant, variant.Name); err != nil {
			return err
		}
		if seen[variant.Name] {
			return unsupported(variant, "duplicate variant %q in enum %s", variant.Name, def.Name)
		}
		seen[variant.Name] = true
		g.line(depth+1, fmt.Sprintf("%s = %d", variant.Name, FirstOrdinal+i))
	}
	return nil
}

func (g *generator) generateBody(body []grammar.Statement, b block) error {
	if len(body) == 0 {
		g.line(b.depth, "pass")
		return nil
	}
	for _, stmt := range body {
		if err := g.generateStatement(stmt, b); err != nil {
			return err
		}
	}
	return nil
}

func (g *generator) generateStatement(stmt grammar.Statement, b block) error {
	switch s := stmt.(type) {
	case *grammar.ExprStmt:
		expr, err := g.expression(s.Expr, precLambda)
		if err != nil {
			return err
		}
		g.line(b.depth, expr)

	case *grammar.Assignment:
		return g.generateAssignment(s, b)

	case *grammar.IfStmt:
		return g.generateIf(s, b, "if")

	case *grammar.ForInStmt:
		if err := checkBinding(s, s.Var); err != nil {
			return err
		}
		iterable, err := g.expression(s.Iterable, precLambda+1)
		if err != nil {
			return err
		}
		g.line(b.depth, fmt.Sprintf("for %s in %s:", s.Var, iterable))
		body := b.nested()
		body.inLoop = true
		return g.generateBody(s.Body, body)

	case *grammar.WhileStmt:
		cond, err := g.expression(s.Cond, precLambda+1)
		if err != nil {
			return err
		}
		g.line(b.depth, fmt.Sprintf("while %s:", cond))
		body := b.nested()
		body.inLoop = true
		return g.generateBody(s.Body, body)

	case *grammar.ReturnStmt:
		if !b.inFunc {
			return unsupported(s, "'return' outside of a function")
		}
		if s.Value == nil {
			g.line(b.depth, "return")
			return nil
		}
		value, err := g.expression(s.Value, precLambda)
		if err != nil {
			return err
		}
		g.line(b.depth, "return "+value)

	case *grammar.BreakStmt:
		if !b.inLoop {
			return unsupported(s, "'break' outside of a loop")
		}
		g.line(b.depth, "break")

	case *grammar.ContinueStmt:
		if !b.inLoop {
			return unsupported(s, "'continue' outside of a loop")
		}
		g.line(b.depth, "continue")

	case *grammar.UseStmt:
		if len(s.Path) == 0 {
			return unsupported(s, "empty module path")
		}
		for _, part := range s.Path {
			if err := checkName(s, part); err != nil {
				return err
			}
		}
		// import a.b binds a
		if err := checkBinding(s, s.Path[0]); err != nil {
			return err
		}
		g.line(b.depth, "import "+strings.Join(s.Path, "."))

	default:
		return unsupported(stmt, "cannot generate %s statement", stmt.StatementType())
	}
	return nil
}

func (g *generator) generateAssignment(s *grammar.Assignment, b block) error {
	switch t := s.Target.(type) {
	case *grammar.IdentifierExpression:
		if err := checkBinding(s, t.Name); err != nil {
			return err
		}
	case *grammar.MemberExpression, *grammar.IndexExpression:
	default:
		return unsupported(s, "cannot assign to %s expression", s.Target.ExpressionType())
	}

	switch s.Op {
	case "=", "+=", "-=", "*=", "/=", "%=":
	default:
		return unsupported(s, "unknown assignment operator %q", s.Op)
	}

	target, err := g.expression(s.Target, precPostfix)
	if err != nil {
		return err
	}
	value, err := g.expression(s.Value, precLambda)
	if err != nil {
		return err
	}
	g.line(b.depth, fmt.Sprintf("%s %s %s", target, s.Op, value))
	return nil
}

// generateIf folds an else branch holding a single if into elif
func (g *generator) generateIf(s *grammar.IfStmt, b block, keyword string) error {
	cond, err := g.expression(s.Cond, precLambda+1)
	if err != nil {
		return err
	}
	g.line(b.depth, fmt.Sprintf("%s %s:", keyword, cond))
	if err := g.generateBody(s.Then, b.nested()); err != nil {
		return err
	}

	if len(s.Else) == 0 {
		return nil
	}
	if len(s.Else) == 1 {
		if elif, ok := s.Else[0].(*grammar.IfStmt); ok {
			return g.generateIf(elif, b, "elif")
		}
	}
	g.line(b.depth, "else:")
	return g.generateBody(s.Else, b.nested())
}

// Python binding strength, loosest first
const (
	precLambda = iota
	precOr
	precAnd
	precNot
	precCompare
	precSum
	precProduct
	precUnary
	precPower
	precPostfix
	precAtom
)

func binaryPrecedence(op grammar.Kind) (int, string, bool) {
	switch op {
	case grammar.Or:
		return precOr, "or", true
	case grammar.And:
		return precAnd, "and", true
	case grammar.EqEq, grammar.NotEq, grammar.Less, grammar.LessEq, grammar.Greater, grammar.GreaterEq:
		return precCompare, op.String(), true
	case grammar.Plus, grammar.Minus:
		return precSum, op.String(), true
	case grammar.Star, grammar.Slash, grammar.Percent:
		return precProduct, op.String(), true
	case grammar.StarStar:
		return precPower, "**", true
	}
	return 0, "", false
}

// expression renders expr, parenthesized if it binds looser than min
func (g *generator) expression(expr grammar.Expression, min int) (string, error) {
	code, prec, err := g.generateExpression(expr)
	if err != nil {
		return "", err
	}
	if prec < min {
		return "(" + code + ")", nil
	}
	return code, nil
}

func (g *generator) generateExpression(expr grammar.Expression) (string, int, error) {
	switch e := expr.(type) {
	case *grammar.LiteralExpression:
		return generateLiteral(e), precAtom, nil

	case *grammar.IdentifierExpression:
		if err := checkName(e, e.Name); err != nil {
			return "", 0, err
		}
		return e.Name, precAtom, nil

	case *grammar.BinaryExpression:
		return g.generateBinary(e)

	case *grammar.UnaryExpression:
		switch e.Operator {
		case grammar.Minus:
			operand, err := g.expression(e.Operand, precUnary)
			if err != nil {
				return "", 0, err
			}
			return "-" + operand, precUnary, nil
		case grammar.Not:
			operand, err := g.expression(e.Operand, precNot)
			if err != nil {
				return "", 0, err
			}
			return "not " + operand, precNot, nil
		}
		return "", 0, unsupported(e, "unknown unary operator %s", e.Operator.Quoted())

	case *grammar.CallExpression:
		callee, err := g.expression(e.Callee, precPostfix)
		if err != nil {
			return "", 0, err
		}
		args, err := g.expressionList(e.Arguments)
		if err != nil {
			return "", 0, err
		}
		return fmt.Sprintf("%s(%s)", callee, args), precPostfix, nil

	case *grammar.MemberExpression:
		if err := checkName(e, e.Property); err != nil {
			return "", 0, err
		}
		object, err := g.expression(e.Object, precPostfix)
		if err != nil {
			return "", 0, err
		}
		// "1.real" would lex as a float
		if lit, ok := e.Object.(*grammar.LiteralExpression); ok && (lit.Kind == grammar.IntLiteral || lit.Kind == grammar.FloatLiteral) {
			object = "(" + object + ")"
		}
		return object + "." + e.Property, precPostfix, nil

	case *grammar.IndexExpression:
		object, err := g.expression(e.Object, precPostfix)
		if err != nil {
			return "", 0, err
		}
		index, err := g.expression(e.Index, precLambda)
		if err != nil {
			return "", 0, err
		}
		return fmt.Sprintf("%s[%s]", object, index), precPostfix, nil

	case *grammar.RangeExpression:
		args, err := g.expressionList([]grammar.Expression{e.Lo, e.Hi})
		if err != nil {
			return "", 0, err
		}
		return fmt.Sprintf("range(%s)", args), precPostfix, nil

	case *grammar.LambdaExpression:
		params, err := g.parameterList(e.Params, false)
		if err != nil {
			return "", 0, err
		}
		body, err := g.expression(e.Body, precLambda)
		if err != nil {
			return "", 0, err
		}
		if params == "" {
			return "lambda: " + body, precLambda, nil
		}
		return fmt.Sprintf("lambda %s: %s", params, body), precLambda, nil

	case *grammar.ListExpression:
		elements, err := g.expressionList(e.Elements)
		if err != nil {
			return "", 0, err
		}
		return "[" + elements + "]", precAtom, nil
	}

	return "", 0, unsupported(expr, "cannot generate %s expression", expr.ExpressionType())
}

func (g *generator) generateBinary(e *grammar.BinaryExpression) (string, int, error) {
	prec, op, ok := binaryPrecedence(e.Operator)
	if !ok {
		return "", 0, unsupported(e, "unknown binary operator %s", e.Operator.Quoted())
	}

	leftMin, rightMin := prec, prec+1
	switch prec {
	case precCompare:
		// a < b < c means something else in Python
		leftMin = prec + 1
	case precPower:
		leftMin, rightMin = prec+1, prec
	}

	wrapLeft, wrapRight := coerceConcat(e)

	left, err := g.operand(e.Left, leftMin, wrapLeft)
	if err != nil {
		return "", 0, err
	}
	right, err := g.operand(e.Right, rightMin, wrapRight)
	if err != nil {
		return "", 0, err
	}
	return fmt.Sprintf("%s %s %s", left, op, right), prec, nil
}

func (g *generator) operand(expr grammar.Expression, min int, stringify bool) (string, error) {
	if !stringify {
		return g.expression(expr, min)
	}
	inner, err := g.expression(expr, precLambda)
	if err != nil {
		return "", err
	}
	return "str(" + inner + ")", nil
}

func (g *generator) expressionList(exprs []grammar.Expression) (string, error) {
	parts := make([]string, 0, len(exprs))
	for _, expr := range exprs {
		code, err := g.expression(expr, precLambda)
		if err != nil {
			return "", err
		}
		parts = append(parts, code)
	}
	return strings.Join(parts, ", "), nil
}

func generateLiteral(lit *grammar.LiteralExpression) string {
	switch lit.Kind {
	case grammar.IntLiteral:
		// Python rejects leading zeros on decimal integers
		digits := strings.TrimLeft(lit.Value, "0")
		if digits == "" {
			return "0"
		}
		return digits
	case grammar.StringLiteral:
		return strconv.Quote(lit.Value)
	case grammar.BoolLiteral:
		if lit.Value == "true" {
			return "True"
		}
		return "False"
	case grammar.NoneLiteral:
		return "None"
	}
	return lit.Value
}

func checkName(node grammar.Node, name string) error {
	if !IsPythonKeyword(name) {
		return nil
	}
	return diag.Newf(diag.ReservedIdentifier, positionOf(node), "identifier %q is a reserved word in Python", name)
}

// loweringNames are the builtins the generated code refers to. User code may
// read them but must not rebind them.
var loweringNames = map[string]bool{
	"range":   true,
	"str":     true,
	"IntEnum": true,
}

// checkBinding is checkName for identifiers that bind a name in module or
// function scope.
func checkBinding(node grammar.Node, name string) error {
	if err := checkName(node, name); err != nil {
		return err
	}
	if loweringNames[name] {
		return diag.Newf(diag.ReservedIdentifier, positionOf(node), "identifier %q would shadow the builtin used by generated code", name)
	}
	return nil
}

func unsupported(node grammar.Node, format string, args ...interface{}) error {
	return diag.Newf(diag.Unsupported, positionOf(node), format, args...)
}

func positionOf(node grammar.Node) diag.Pos {
	if node == nil {
		return diag.Pos{}
	}
	if pos := node.GetPosition(); pos != nil {
		return pos.Diag()
	}
	return diag.Pos{}
}
