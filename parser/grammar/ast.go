// Package grammar implements the Nadra language front end.
// ast.go defines the program, declaration and statement nodes.
package grammar

// Node is implemented by every AST node
type Node interface {
	GetPosition() *Position
}

// Item is anything that can appear at the top level of a program
type Item interface {
	Node
	ItemType() string
}

// Statement is an item that can also appear inside a block body
type Statement interface {
	Item
	StatementType() string
}

// Program is the root of one translation unit
type Program struct {
	Items    []Item    `json:"items"`
	Position *Position `json:"position,omitempty"`
}

// TypeRef is a declared type name on a parameter, field or return
type TypeRef struct {
	Name     string    `json:"name"`
	Position *Position `json:"position,omitempty"`
}

func (t *TypeRef) GetPosition() *Position { return t.Position }

// Param is one function or lambda parameter; Type may be nil
type Param struct {
	Name     string    `json:"name"`
	Type     *TypeRef  `json:"type,omitempty"`
	Position *Position `json:"position,omitempty"`
}

func (p *Param) GetPosition() *Position { return p.Position }

// FunctionDef is a def ... enddef block, free or inside a struct
type FunctionDef struct {
	Name       string      `json:"name"`
	Params     []*Param    `json:"params"`
	ReturnType *TypeRef    `json:"return_type,omitempty"`
	Body       []Statement `json:"body"`
	Position   *Position   `json:"position,omitempty"`
}

func (d *FunctionDef) ItemType() string        { return "function" }
func (d *FunctionDef) GetPosition() *Position { return d.Position }

// Field is a struct field declaration "name: Type"
type Field struct {
	Name     string    `json:"name"`
	Type     *TypeRef  `json:"type"`
	Position *Position `json:"position,omitempty"`
}

func (f *Field) GetPosition() *Position { return f.Position }

// StructDef declares fields followed by methods
type StructDef struct {
	Name     string         `json:"name"`
	Fields   []*Field       `json:"fields"`
	Methods  []*FunctionDef `json:"methods"`
	Position *Position      `json:"position,omitempty"`
}

func (d *StructDef) ItemType() string        { return "struct" }
func (d *StructDef) GetPosition() *Position { return d.Position }

// Variant is one enum member
type Variant struct {
	Name     string    `json:"name"`
	Position *Position `json:"position,omitempty"`
}

func (v *Variant) GetPosition() *Position { return v.Position }

// EnumDef lists variants in declaration order
type EnumDef struct {
	Name     string     `json:"name"`
	Variants []*Variant `json:"variants"`
	Position *Position  `json:"position,omitempty"`
}

func (d *EnumDef) ItemType() string        { return "enum" }
func (d *EnumDef) GetPosition() *Position { return d.Position }

// ExprStmt evaluates an expression for its effect
type ExprStmt struct {
	Expr     Expression `json:"expr"`
	Position *Position  `json:"position,omitempty"`
}

func (s *ExprStmt) ItemType() string       { return "statement" }
func (s *ExprStmt) StatementType() string  { return "expr" }
func (s *ExprStmt) GetPosition() *Position { return s.Position }

// Assignment stores Value into Target. Op is "=" or a compound operator
// such as "*=".
type Assignment struct {
	Target   Expression `json:"target"`
	Op       string     `json:"op"`
	Value    Expression `json:"value"`
	Position *Position  `json:"position,omitempty"`
}

func (s *Assignment) ItemType() string       { return "statement" }
func (s *Assignment) StatementType() string  { return "assign" }
func (s *Assignment) GetPosition() *Position { return s.Position }

// IfStmt is if ... then ... [else ...] endif. Else is nil when there is no
// else branch and non-nil (possibly empty) when there is one.
type IfStmt struct {
	Cond     Expression  `json:"cond"`
	Then     []Statement `json:"then"`
	Else     []Statement `json:"else,omitempty"`
	Position *Position   `json:"position,omitempty"`
}

func (s *IfStmt) ItemType() string       { return "statement" }
func (s *IfStmt) StatementType() string  { return "if" }
func (s *IfStmt) GetPosition() *Position { return s.Position }

// ForInStmt is for var in iterable do ... done
type ForInStmt struct {
	Var      string      `json:"var"`
	Iterable Expression  `json:"iterable"`
	Body     []Statement `json:"body"`
	Position *Position   `json:"position,omitempty"`
}

func (s *ForInStmt) ItemType() string       { return "statement" }
func (s *ForInStmt) StatementType() string  { return "for" }
func (s *ForInStmt) GetPosition() *Position { return s.Position }

// WhileStmt is while cond do ... done
type WhileStmt struct {
	Cond     Expression  `json:"cond"`
	Body     []Statement `json:"body"`
	Position *Position   `json:"position,omitempty"`
}

func (s *WhileStmt) ItemType() string       { return "statement" }
func (s *WhileStmt) StatementType() string  { return "while" }
func (s *WhileStmt) GetPosition() *Position { return s.Position }

// ReturnStmt returns from a function; Value may be nil
type ReturnStmt struct {
	Value    Expression `json:"value,omitempty"`
	Position *Position  `json:"position,omitempty"`
}

func (s *ReturnStmt) ItemType() string       { return "statement" }
func (s *ReturnStmt) StatementType() string  { return "return" }
func (s *ReturnStmt) GetPosition() *Position { return s.Position }

type BreakStmt struct {
	Position *Position `json:"position,omitempty"`
}

func (s *BreakStmt) ItemType() string       { return "statement" }
func (s *BreakStmt) StatementType() string  { return "break" }
func (s *BreakStmt) GetPosition() *Position { return s.Position }

type ContinueStmt struct {
	Position *Position `json:"position,omitempty"`
}

func (s *ContinueStmt) ItemType() string       { return "statement" }
func (s *ContinueStmt) StatementType() string  { return "continue" }
func (s *ContinueStmt) GetPosition() *Position { return s.Position }

// UseStmt imports a module, e.g. "use os.path"
type UseStmt struct {
	Path     []string  `json:"path"`
	Position *Position `json:"position,omitempty"`
}

func (s *UseStmt) ItemType() string       { return "statement" }
func (s *UseStmt) StatementType() string  { return "use" }
func (s *UseStmt) GetPosition() *Position { return s.Position }
