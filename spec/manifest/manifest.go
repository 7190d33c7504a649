// Package manifest summarizes the declarations of a Nadra translation unit
// as YAML: functions with their Python signatures, structs with fields and
// methods, and enums with the ordinals the generator assigns.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/daveroberts0321/nadra/parser/grammar"
	"github.com/daveroberts0321/nadra/pygen"
)

// Manifest is the document written for one source file
type Manifest struct {
	Source    string     `yaml:"source"`
	Target    string     `yaml:"target"`
	Imports   []string   `yaml:"imports,omitempty"`
	Functions []Function `yaml:"functions,omitempty"`
	Structs   []Struct   `yaml:"structs,omitempty"`
	Enums     []Enum     `yaml:"enums,omitempty"`
}

// Function is a top-level function or a struct method with its signature
type Function struct {
	Name    string  `yaml:"name"`
	Line    int     `yaml:"line"`
	Params  []Param `yaml:"params,omitempty"`
	Returns string  `yaml:"returns,omitempty"`
}

// Param is a parameter or field with its Python annotation, if declared
type Param struct {
	Name string `yaml:"name"`
	Type string `yaml:"type,omitempty"`
}

// Struct lists a struct's fields in declaration order and its methods
type Struct struct {
	Name    string     `yaml:"name"`
	Line    int        `yaml:"line"`
	Fields  []Param    `yaml:"fields,omitempty"`
	Methods []Function `yaml:"methods,omitempty"`
}

// Enum lists variants with the ordinals the generated IntEnum uses
type Enum struct {
	Name     string    `yaml:"name"`
	Line     int       `yaml:"line"`
	Variants []Variant `yaml:"variants"`
}

// Variant is one enum member
type Variant struct {
	Name    string `yaml:"name"`
	Ordinal int    `yaml:"ordinal"`
}

// Build collects the top-level declarations of program in source order
func Build(program *grammar.Program, source string) (*Manifest, error) {
	if program == nil {
		return nil, fmt.Errorf("nil program")
	}

	m := &Manifest{
		Source: filepath.ToSlash(source),
		Target: "python3",
	}

	for _, item := range program.Items {
		switch it := item.(type) {
		case *grammar.FunctionDef:
			m.Functions = append(m.Functions, function(it))
		case *grammar.StructDef:
			s := Struct{Name: it.Name, Line: line(it)}
			for _, f := range it.Fields {
				s.Fields = append(s.Fields, Param{Name: f.Name, Type: pygen.MapNadraTypeToPy(f.Type.Name)})
			}
			for _, method := range it.Methods {
				s.Methods = append(s.Methods, function(method))
			}
			m.Structs = append(m.Structs, s)
		case *grammar.EnumDef:
			e := Enum{Name: it.Name, Line: line(it), Variants: []Variant{}}
			for i, v := range it.Variants {
				e.Variants = append(e.Variants, Variant{Name: v.Name, Ordinal: pygen.FirstOrdinal + i})
			}
			m.Enums = append(m.Enums, e)
		case *grammar.UseStmt:
			m.Imports = append(m.Imports, strings.Join(it.Path, "."))
		}
	}

	return m, nil
}

func function(def *grammar.FunctionDef) Function {
	fn := Function{Name: def.Name, Line: line(def)}
	for _, p := range def.Params {
		param := Param{Name: p.Name}
		if p.Type != nil {
			param.Type = pygen.MapNadraTypeToPy(p.Type.Name)
		}
		fn.Params = append(fn.Params, param)
	}
	if def.ReturnType != nil {
		fn.Returns = pygen.MapNadraTypeToPy(def.ReturnType.Name)
	}
	return fn
}

func line(node grammar.Node) int {
	if pos := node.GetPosition(); pos != nil {
		return pos.Line
	}
	return 0
}

// Generate renders the manifest of program as YAML
func Generate(program *grammar.Program, source string) (string, error) {
	m, err := Build(program, source)
	if err != nil {
		return "", err
	}
	out, err := yaml.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("failed to encode manifest: %w", err)
	}
	return string(out), nil
}

// WriteFile renders the manifest and writes it to path, creating parent
// directories as needed.
func WriteFile(program *grammar.Program, source, path string) error {
	doc, err := Generate(program, source)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(doc), 0644)
}

// Read decodes a manifest previously written by WriteFile
func Read(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m := &Manifest{}
	if err := yaml.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}
	return m, nil
}
