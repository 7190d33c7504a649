// Package grammar implements the Nadra language front end.
// expr.go defines expression-related AST nodes used by the parser.
package grammar

// Expression interface
type Expression interface {
	Node
	ExpressionType() string
}

// LiteralKind distinguishes literal values
type LiteralKind uint8

const (
	IntLiteral LiteralKind = iota
	FloatLiteral
	StringLiteral
	BoolLiteral
	NoneLiteral
)

// LiteralExpression holds a literal. Value is the digits of a number, the
// escape-resolved text of a string, "true"/"false" or "none".
type LiteralExpression struct {
	Kind     LiteralKind `json:"kind"`
	Value    string      `json:"value"`
	Position *Position   `json:"position,omitempty"`
}

func (e *LiteralExpression) ExpressionType() string { return "literal" }
func (e *LiteralExpression) GetPosition() *Position { return e.Position }

// IdentifierExpression
type IdentifierExpression struct {
	Name     string    `json:"name"`
	Position *Position `json:"position,omitempty"`
}

func (e *IdentifierExpression) ExpressionType() string { return "identifier" }
func (e *IdentifierExpression) GetPosition() *Position { return e.Position }

// BinaryExpression for operations like "a * b" or "x and y"
type BinaryExpression struct {
	Left     Expression `json:"left"`
	Operator Kind       `json:"operator"`
	Right    Expression `json:"right"`
	Position *Position  `json:"position,omitempty"`
}

func (e *BinaryExpression) ExpressionType() string { return "binary" }
func (e *BinaryExpression) GetPosition() *Position { return e.Position }

// UnaryExpression is "-x" or "not x"
type UnaryExpression struct {
	Operator Kind       `json:"operator"`
	Operand  Expression `json:"operand"`
	Position *Position  `json:"position,omitempty"`
}

func (e *UnaryExpression) ExpressionType() string { return "unary" }
func (e *UnaryExpression) GetPosition() *Position { return e.Position }

// CallExpression for function calls
type CallExpression struct {
	Callee    Expression   `json:"callee"`
	Arguments []Expression `json:"arguments"`
	Position  *Position    `json:"position,omitempty"`
}

func (e *CallExpression) ExpressionType() string { return "call" }
func (e *CallExpression) GetPosition() *Position { return e.Position }

// MemberExpression for "self.x"
type MemberExpression struct {
	Object   Expression `json:"object"`
	Property string     `json:"property"`
	Position *Position  `json:"position,omitempty"`
}

func (e *MemberExpression) ExpressionType() string { return "member" }
func (e *MemberExpression) GetPosition() *Position { return e.Position }

// IndexExpression for "items[i]"
type IndexExpression struct {
	Object   Expression `json:"object"`
	Index    Expression `json:"index"`
	Position *Position  `json:"position,omitempty"`
}

func (e *IndexExpression) ExpressionType() string { return "index" }
func (e *IndexExpression) GetPosition() *Position { return e.Position }

// RangeExpression is the half-open interval "lo..hi"
type RangeExpression struct {
	Lo       Expression `json:"lo"`
	Hi       Expression `json:"hi"`
	Position *Position  `json:"position,omitempty"`
}

func (e *RangeExpression) ExpressionType() string { return "range" }
func (e *RangeExpression) GetPosition() *Position { return e.Position }

// LambdaExpression is "(a, b) -> expr"
type LambdaExpression struct {
	Params   []*Param   `json:"params"`
	Body     Expression `json:"body"`
	Position *Position  `json:"position,omitempty"`
}

func (e *LambdaExpression) ExpressionType() string { return "lambda" }
func (e *LambdaExpression) GetPosition() *Position { return e.Position }

// ListExpression is "[a, b, c]"
type ListExpression struct {
	Elements []Expression `json:"elements"`
	Position *Position    `json:"position,omitempty"`
}

func (e *ListExpression) ExpressionType() string { return "list" }
func (e *ListExpression) GetPosition() *Position { return e.Position }
