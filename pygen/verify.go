package pygen

import (
	"strings"

	"github.com/go-python/gpython/parser"
	"github.com/go-python/gpython/py"

	"github.com/daveroberts0321/nadra/diag"
)

// Verify parses code with a Python 3 parser. Generated text that the parser
// rejects is reported as an InvalidOutput diagnostic.
func Verify(code string) error {
	return VerifyNamed(code, "<nadra>")
}

// VerifyNamed is Verify with the file name the parser reports errors against
func VerifyNamed(code, filename string) error {
	if _, err := parser.Parse(strings.NewReader(code), filename, py.ExecMode); err != nil {
		return diag.Newf(diag.InvalidOutput, diag.Pos{}, "generated Python does not parse: %v", err)
	}
	return nil
}
