package pygen

import (
	"strings"
	"testing"

	"github.com/daveroberts0321/nadra/diag"
	"github.com/daveroberts0321/nadra/parser/grammar"
)

func TestVerifyAcceptsGeneratedCode(t *testing.T) {
	sources := []string{
		"enum RenderModes Detailed, Minimal, Performance endenum",
		"struct Vector x: int y: int def dot(self, other) -> String return self.x * other.x + self.y * other.y enddef endstruct",
		"def f(a: int, b: Vector) -> list return [a, b, (x) -> x] enddef",
		"if a then elif_ = 1 else b = 2 endif",
		"s = \"quote \\\" and backslash \\\\ and nul \\0\"",
	}
	for _, src := range sources {
		program, err := grammar.ParseString(src)
		if err != nil {
			t.Fatalf("parse error for %q: %v", src, err)
		}
		if _, err := Generate(program, Options{Verify: true}); err != nil {
			t.Fatalf("verify rejected output of %q: %v", src, err)
		}
	}
}

func TestVerifyRejectsInvalidPython(t *testing.T) {
	for _, code := range []string{
		"def f(:\n    pass\n",
		"if x\n    pass\n",
		"x = (1, \n",
	} {
		err := Verify(code)
		if err == nil {
			t.Fatalf("expected %q to be rejected", code)
		}
		d, ok := diag.As(err)
		if !ok || d.Kind != diag.InvalidOutput {
			t.Fatalf("expected InvalidOutput, got %v", err)
		}
		if !strings.HasPrefix(err.Error(), "generated Python does not parse") {
			t.Fatalf("unexpected message %q", err.Error())
		}
	}
}
