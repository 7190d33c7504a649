package grammar

import (
	"strings"
	"testing"

	"github.com/daveroberts0321/nadra/diag"
)

// Test parsing of a function with typed parameters and a return type.
func TestParseFunctionDefinition(t *testing.T) {
	src := `
def add(a: int, b) -> int
    return a + b
enddef
`
	program, err := ParseString(src)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if len(program.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(program.Items))
	}
	fn, ok := program.Items[0].(*FunctionDef)
	if !ok {
		t.Fatalf("expected *FunctionDef, got %T", program.Items[0])
	}
	if fn.Name != "add" || len(fn.Params) != 2 {
		t.Fatalf("unexpected function %#v", fn)
	}
	if fn.Params[0].Type == nil || fn.Params[0].Type.Name != "int" {
		t.Fatalf("expected first param typed int, got %#v", fn.Params[0])
	}
	if fn.Params[1].Type != nil {
		t.Fatalf("expected second param untyped, got %#v", fn.Params[1].Type)
	}
	if fn.ReturnType == nil || fn.ReturnType.Name != "int" {
		t.Fatalf("expected return type int, got %#v", fn.ReturnType)
	}
	ret, ok := fn.Body[0].(*ReturnStmt)
	if !ok {
		t.Fatalf("expected return statement, got %T", fn.Body[0])
	}
	bin, ok := ret.Value.(*BinaryExpression)
	if !ok || bin.Operator != Plus {
		t.Fatalf("expected a + b, got %#v", ret.Value)
	}
}

// Test the factorial example written on one line.
func TestParseForRangeOnOneLine(t *testing.T) {
	src := `result = 1 n = 5 for i in 1..(n+1) do result *= i done`
	program, err := ParseString(src)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if len(program.Items) != 3 {
		t.Fatalf("expected 3 statements, got %d", len(program.Items))
	}
	loop, ok := program.Items[2].(*ForInStmt)
	if !ok {
		t.Fatalf("expected for statement, got %T", program.Items[2])
	}
	if loop.Var != "i" {
		t.Fatalf("expected loop variable i, got %q", loop.Var)
	}
	rng, ok := loop.Iterable.(*RangeExpression)
	if !ok {
		t.Fatalf("expected range iterable, got %T", loop.Iterable)
	}
	if hi, ok := rng.Hi.(*BinaryExpression); !ok || hi.Operator != Plus {
		t.Fatalf("expected n+1 upper bound, got %#v", rng.Hi)
	}
	assign, ok := loop.Body[0].(*Assignment)
	if !ok || assign.Op != "*=" {
		t.Fatalf("expected result *= i, got %#v", loop.Body[0])
	}
}

// A mismatched closer names the terminator the opener needed.
func TestParseMismatchedTerminator(t *testing.T) {
	_, err := ParseString("if x then print(x) enddef")
	if err == nil {
		t.Fatalf("expected syntax error")
	}
	d, ok := diag.As(err)
	if !ok {
		t.Fatalf("expected *diag.Error, got %T", err)
	}
	if d.Stage() != diag.StageSyntax || d.Kind != diag.UnmatchedTerminator {
		t.Fatalf("expected UnmatchedTerminator syntax error, got %s", d.Kind)
	}
	if d.Expected != "endif" {
		t.Fatalf("expected terminator endif, got %q", d.Expected)
	}
	if d.Found != "'enddef'" {
		t.Fatalf("expected found 'enddef', got %q", d.Found)
	}
	if d.Opener == nil || d.Opener.Keyword != "if" || d.Opener.Pos.Line != 1 || d.Opener.Pos.Column != 1 {
		t.Fatalf("unexpected opener %#v", d.Opener)
	}
	if d.Pos.Column != 20 {
		t.Fatalf("expected error at the enddef column 20, got %s", d.Pos)
	}
	want := "1:20: expected 'endif' to close 'if' at 1:1, found 'enddef'"
	if err.Error() != want {
		t.Fatalf("expected message %q, got %q", want, err.Error())
	}
}

func TestParseMissingTerminatorAtEOF(t *testing.T) {
	tests := []struct {
		src      string
		expected string
		opener   string
	}{
		{"def f()\n  return 1\n", "enddef", "def"},
		{"while x do\n x -= 1\n", "done", "while"},
		{"for i in xs do print(i)", "done", "for"},
		{"struct P\n x: int\n", "endstruct", "struct"},
		{"enum Color Red, Green", "endenum", "enum"},
		{"if a then b = 1 else b = 2", "endif", "if"},
	}

	for _, tt := range tests {
		t.Run(tt.opener, func(t *testing.T) {
			_, err := ParseString(tt.src)
			d, ok := diag.As(err)
			if !ok {
				t.Fatalf("expected *diag.Error, got %v", err)
			}
			if d.Expected != tt.expected {
				t.Fatalf("expected terminator %q, got %q (%v)", tt.expected, d.Expected, err)
			}
			if d.Opener == nil || d.Opener.Keyword != tt.opener {
				t.Fatalf("expected opener %q, got %#v", tt.opener, d.Opener)
			}
			if !d.AtEOF || !diag.IsIncomplete(err) {
				t.Fatalf("expected error at end of input")
			}
		})
	}
}

// Test the struct from the language overview.
func TestParseStruct(t *testing.T) {
	src := `struct Vector x: int y: int def dot(self, other) -> String return self.x * other.x + self.y * other.y enddef endstruct`
	program, err := ParseString(src)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	def, ok := program.Items[0].(*StructDef)
	if !ok {
		t.Fatalf("expected *StructDef, got %T", program.Items[0])
	}
	if def.Name != "Vector" || len(def.Fields) != 2 || len(def.Methods) != 1 {
		t.Fatalf("unexpected struct %#v", def)
	}
	if def.Fields[1].Name != "y" || def.Fields[1].Type.Name != "int" {
		t.Fatalf("unexpected field %#v", def.Fields[1])
	}
	dot := def.Methods[0]
	if dot.Name != "dot" || dot.ReturnType.Name != "String" {
		t.Fatalf("unexpected method %#v", dot)
	}
	ret := dot.Body[0].(*ReturnStmt)
	sum, ok := ret.Value.(*BinaryExpression)
	if !ok || sum.Operator != Plus {
		t.Fatalf("expected a sum at the root, got %#v", ret.Value)
	}
	left, ok := sum.Left.(*BinaryExpression)
	if !ok || left.Operator != Star {
		t.Fatalf("expected a product on the left, got %#v", sum.Left)
	}
	if m, ok := left.Left.(*MemberExpression); !ok || m.Property != "x" {
		t.Fatalf("expected self.x, got %#v", left.Left)
	}
}

func TestParseStructDunderMethodVerbatim(t *testing.T) {
	src := `struct P
    x: int
    def __init__(self, x)
        self.x = x
    enddef
endstruct`
	program, err := ParseString(src)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	def := program.Items[0].(*StructDef)
	if def.Methods[0].Name != "__init__" {
		t.Fatalf("expected __init__, got %q", def.Methods[0].Name)
	}
	assign := def.Methods[0].Body[0].(*Assignment)
	if _, ok := assign.Target.(*MemberExpression); !ok {
		t.Fatalf("expected member target, got %T", assign.Target)
	}
}

func TestParseEnum(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"one line", "enum RenderModes Detailed, Minimal, Performance endenum"},
		{"trailing comma", "enum RenderModes Detailed, Minimal, Performance, endenum"},
		{"multi line", "enum RenderModes\n  Detailed,\n  Minimal,\n  Performance\nendenum"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			program, err := ParseString(tt.src)
			if err != nil {
				t.Fatalf("parse error: %v", err)
			}
			def := program.Items[0].(*EnumDef)
			var names []string
			for _, v := range def.Variants {
				names = append(names, v.Name)
			}
			if got := strings.Join(names, ","); got != "Detailed,Minimal,Performance" {
				t.Fatalf("unexpected variants %s", got)
			}
		})
	}
}

func TestParseEnumMissingComma(t *testing.T) {
	_, err := ParseString("enum E A B endenum")
	d, ok := diag.As(err)
	if !ok || d.Kind != diag.UnexpectedToken {
		t.Fatalf("expected UnexpectedToken, got %v", err)
	}
}

func TestParseIfElse(t *testing.T) {
	program, err := ParseString("if a > 1 then b = 1 else b = 2 endif if c then d() endif")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	first := program.Items[0].(*IfStmt)
	if len(first.Then) != 1 || len(first.Else) != 1 {
		t.Fatalf("unexpected branches %#v", first)
	}
	second := program.Items[1].(*IfStmt)
	if second.Else != nil {
		t.Fatalf("expected nil else branch, got %#v", second.Else)
	}

	program, err = ParseString("if a then else endif")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	empty := program.Items[0].(*IfStmt)
	if empty.Else == nil || len(empty.Else) != 0 {
		t.Fatalf("expected empty non-nil else branch, got %#v", empty.Else)
	}
}

func TestParseWhileForms(t *testing.T) {
	for _, src := range []string{
		"while x > 0 do x -= 1 done",
		"while x > 0 x -= 1 endwhile",
		"while x > 0\n  x -= 1\n  if x == 2 then break endif\n  continue\ndone",
	} {
		program, err := ParseString(src)
		if err != nil {
			t.Fatalf("parse error for %q: %v", src, err)
		}
		if _, ok := program.Items[0].(*WhileStmt); !ok {
			t.Fatalf("expected while statement for %q, got %T", src, program.Items[0])
		}
	}
}

func TestParsePrecedence(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"1 + 2 * 3", "(1 + (2 * 3))"},
		{"1 * 2 + 3", "((1 * 2) + 3)"},
		{"1 - 2 - 3", "((1 - 2) - 3)"},
		{"2 ** 3 ** 2", "(2 ** (3 ** 2))"},
		{"-2 ** 2", "(-(2) ** 2)"},
		{"a or b and c", "(a or (b and c))"},
		{"not a == b", "(not(a) == b)"},
		{"a < b and c >= d", "((a < b) and (c >= d))"},
		{"1..n + 1", "(1 .. (n + 1))"},
		{"f(x).y[0]", "f(x).y[0]"},
		{"a % 2 == 0", "((a % 2) == 0)"},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			program, err := ParseString(tt.src)
			if err != nil {
				t.Fatalf("parse error: %v", err)
			}
			expr := program.Items[0].(*ExprStmt).Expr
			if got := render(expr); got != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestParseLambda(t *testing.T) {
	program, err := ParseString("apply((a, b) -> a + b, (x) -> x * 2, () -> 0, (y))")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	call := program.Items[0].(*ExprStmt).Expr.(*CallExpression)
	if len(call.Arguments) != 4 {
		t.Fatalf("expected 4 arguments, got %d", len(call.Arguments))
	}
	two, ok := call.Arguments[0].(*LambdaExpression)
	if !ok || len(two.Params) != 2 {
		t.Fatalf("expected two-parameter lambda, got %#v", call.Arguments[0])
	}
	if render(two.Body) != "(a + b)" {
		t.Fatalf("unexpected lambda body %s", render(two.Body))
	}
	if none, ok := call.Arguments[2].(*LambdaExpression); !ok || len(none.Params) != 0 {
		t.Fatalf("expected zero-parameter lambda, got %#v", call.Arguments[2])
	}
	if _, ok := call.Arguments[3].(*IdentifierExpression); !ok {
		t.Fatalf("parenthesized identifier should not be a lambda, got %T", call.Arguments[3])
	}
}

func TestParseUseAndList(t *testing.T) {
	program, err := ParseString("use os.path\nxs = [1, 2, 3,]\nxs[0] = 4")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	use := program.Items[0].(*UseStmt)
	if strings.Join(use.Path, ".") != "os.path" {
		t.Fatalf("unexpected use path %v", use.Path)
	}
	list := program.Items[1].(*Assignment).Value.(*ListExpression)
	if len(list.Elements) != 3 {
		t.Fatalf("expected 3 elements, got %d", len(list.Elements))
	}
	if _, ok := program.Items[2].(*Assignment).Target.(*IndexExpression); !ok {
		t.Fatalf("expected index target")
	}
}

func TestParseSyntaxErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		kind diag.Kind
	}{
		{"stray closer", "x = 1 endif", diag.UnexpectedToken},
		{"missing then", "if x print(x) endif", diag.UnexpectedToken},
		{"missing do", "for i in xs print(i) done", diag.UnexpectedToken},
		{"assign to call", "f() = 1", diag.MalformedExpression},
		{"assign to literal", "1 += 2", diag.MalformedExpression},
		{"dangling operator", "x = 1 +", diag.MalformedExpression},
		{"chained range", "1..2..3", diag.MalformedExpression},
		{"nested def", "def f() def g() enddef enddef", diag.UnexpectedToken},
		{"keyword as name", "def if() enddef", diag.UnexpectedToken},
		{"unclosed paren", "f(1, 2", diag.UnexpectedToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseString(tt.src)
			d, ok := diag.As(err)
			if !ok {
				t.Fatalf("expected *diag.Error, got %v", err)
			}
			if d.Kind != tt.kind {
				t.Fatalf("expected %s, got %s (%v)", tt.kind, d.Kind, err)
			}
		})
	}
}

func TestParseWithFilenameAttributesErrors(t *testing.T) {
	_, err := ParseWithFilename(strings.NewReader("x = \"open"), "main.nd")
	d, ok := diag.As(err)
	if !ok {
		t.Fatalf("expected *diag.Error, got %v", err)
	}
	if d.File != "main.nd" || d.Location() != "main.nd:1:5" {
		t.Fatalf("unexpected location %q", d.Location())
	}
}

// render prints an expression fully parenthesized for precedence checks.
func render(expr Expression) string {
	switch e := expr.(type) {
	case *LiteralExpression:
		return e.Value
	case *IdentifierExpression:
		return e.Name
	case *BinaryExpression:
		return "(" + render(e.Left) + " " + e.Operator.String() + " " + render(e.Right) + ")"
	case *UnaryExpression:
		return e.Operator.String() + "(" + render(e.Operand) + ")"
	case *RangeExpression:
		return "(" + render(e.Lo) + " .. " + render(e.Hi) + ")"
	case *CallExpression:
		args := make([]string, len(e.Arguments))
		for i, a := range e.Arguments {
			args[i] = render(a)
		}
		return render(e.Callee) + "(" + strings.Join(args, ", ") + ")"
	case *MemberExpression:
		return render(e.Object) + "." + e.Property
	case *IndexExpression:
		return render(e.Object) + "[" + render(e.Index) + "]"
	}
	return "?"
}
