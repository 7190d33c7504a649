package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/daveroberts0321/nadra/diag"
	"github.com/daveroberts0321/nadra/pygen"
)

func TestTranslate(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "hello.nd")
	out := filepath.Join(dir, "hello.py")
	os.WriteFile(in, []byte(`print("Hello, " + 5)`), 0644)

	var stderr bytes.Buffer
	if code := translate(in, out, &stderr); code != 0 {
		t.Fatalf("expected exit 0, got %d: %s", code, stderr.String())
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("expected output file: %v", err)
	}
	if string(data) != "print(\"Hello, \" + str(5))\n" {
		t.Fatalf("unexpected output %q", data)
	}
}

func TestTranslateDiagnostic(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "bad.nd")
	out := filepath.Join(dir, "bad.py")
	os.WriteFile(in, []byte("if x then print(x) enddef"), 0644)

	var stderr bytes.Buffer
	if code := translate(in, out, &stderr); code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if !strings.HasPrefix(stderr.String(), "1:20: ") {
		t.Fatalf("expected line:column prefix, got %q", stderr.String())
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Fatalf("output must not be created on error")
	}
}

func TestCheck(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.py")
	bad := filepath.Join(dir, "bad.py")
	os.WriteFile(good, []byte("def f(x):\n    return x\n"), 0644)
	os.WriteFile(bad, []byte("def f(x)\n    return x\n"), 0644)

	var stdout, stderr bytes.Buffer
	if code := check(good, &stdout, &stderr); code != 0 {
		t.Fatalf("expected %s to pass: %s", good, stderr.String())
	}
	if code := check(bad, &stdout, &stderr); code != 1 {
		t.Fatalf("expected %s to fail", bad)
	}
}

func TestRepl(t *testing.T) {
	input := strings.Join([]string{
		"",
		"def f(x)",
		"return x + 1",
		"enddef",
		"print(f(1))",
		"x = )",
		".quit",
		"print(2)",
	}, "\n")

	var out bytes.Buffer
	repl(strings.NewReader(input), &out, pygen.Options{})
	got := out.String()

	for _, want := range []string{
		"def f(x):\n    return x + 1\n",
		"... ",
		"print(f(1))\n",
		"error: 1:5:",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q in session:\n%s", want, got)
		}
	}
	if strings.Contains(got, "print(2)") {
		t.Fatalf("input after .quit was translated:\n%s", got)
	}
}

func TestReplIncompleteAtEOF(t *testing.T) {
	var out bytes.Buffer
	repl(strings.NewReader("while x do\n"), &out, pygen.Options{})
	if !strings.Contains(out.String(), "error: ") {
		t.Fatalf("expected the unfinished block to be reported:\n%s", out.String())
	}
}

func TestRunExitCodes(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "ok.nd")
	os.WriteFile(in, []byte("x = 1"), 0644)

	tests := []struct {
		name string
		args []string
		code int
	}{
		{"no arguments", nil, 0},
		{"version", []string{"version"}, 0},
		{"translate", []string{in, filepath.Join(dir, "ok.py")}, 0},
		{"translate missing input", []string{filepath.Join(dir, "nope.nd"), filepath.Join(dir, "nope.py")}, 1},
		{"single unknown argument", []string{"foo.nd"}, 2},
		{"unknown command", []string{"frobnicate", "a", "b"}, 2},
		{"build without output", []string{"build", in}, 2},
		{"unknown gen command", []string{"gen", "widget", "X"}, 2},
		{"unknown start command", []string{"start", "later"}, 2},
		{"check without file", []string{"check"}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if code := run(tt.args); code != tt.code {
				t.Fatalf("run(%q) = %d, want %d", tt.args, code, tt.code)
			}
		})
	}
}

func TestPrintDiagnosticWithoutPosition(t *testing.T) {
	var stderr bytes.Buffer
	printDiagnostic(&stderr, diag.Newf(diag.InvalidOutput, diag.Pos{}, "generated Python does not parse"))
	if stderr.String() != "0:0: generated Python does not parse\n" {
		t.Fatalf("unexpected diagnostic %q", stderr.String())
	}
}
