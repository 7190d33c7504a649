package pygen

import "github.com/daveroberts0321/nadra/parser/grammar"

// Python's + does not turn numbers into text, Nadra's does when the other
// side is a string. There is no type information at this point, so the rule
// is syntactic: an operand is "provably a string" if it is a string literal,
// a + chain that already contains one, or an explicit str(...) call.

func isStringExpr(expr grammar.Expression) bool {
	switch e := expr.(type) {
	case *grammar.LiteralExpression:
		return e.Kind == grammar.StringLiteral
	case *grammar.BinaryExpression:
		return e.Operator == grammar.Plus && (isStringExpr(e.Left) || isStringExpr(e.Right))
	case *grammar.CallExpression:
		callee, ok := e.Callee.(*grammar.IdentifierExpression)
		return ok && callee.Name == "str" && len(e.Arguments) == 1
	}
	return false
}

// coerceConcat reports which operands of a + need a str() wrapper.
// Exactly one side is wrapped when the other side is provably a string.
func coerceConcat(e *grammar.BinaryExpression) (wrapLeft, wrapRight bool) {
	if e.Operator != grammar.Plus {
		return false, false
	}
	left, right := isStringExpr(e.Left), isStringExpr(e.Right)
	return right && !left, left && !right
}
