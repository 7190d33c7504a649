package pygen

import (
	"strconv"

	"github.com/daveroberts0321/nadra/parser/grammar"
)

// MapNadraTypeToPy returns the Python annotation for a declared type name.
// Builtins map to Python builtins; anything else is a forward reference
// written as a string so the module still imports without the name bound.
func MapNadraTypeToPy(name string) string {
	switch name {
	// Basic types
	case "int", "Int":
		return "int"
	case "float", "Float":
		return "float"
	case "bool", "Bool":
		return "bool"
	case "String", "string", "str":
		return "str"
	case "none", "None":
		return "None"

	// Containers
	case "list", "List":
		return "list"
	case "dict", "Dict":
		return "dict"

	// User defined
	default:
		return strconv.Quote(name)
	}
}

func annotation(t *grammar.TypeRef) string {
	return MapNadraTypeToPy(t.Name)
}

// pythonKeywords is the Python 3 reserved word list. Identifiers in the
// output may not collide with any of them.
var pythonKeywords = map[string]bool{
	"False": true, "None": true, "True": true, "and": true, "as": true,
	"assert": true, "async": true, "await": true, "break": true, "class": true,
	"continue": true, "def": true, "del": true, "elif": true, "else": true,
	"except": true, "finally": true, "for": true, "from": true, "global": true,
	"if": true, "import": true, "in": true, "is": true, "lambda": true,
	"nonlocal": true, "not": true, "or": true, "pass": true, "raise": true,
	"return": true, "try": true, "while": true, "with": true, "yield": true,
}

// IsPythonKeyword reports whether name is reserved in Python 3
func IsPythonKeyword(name string) bool {
	return pythonKeywords[name]
}
