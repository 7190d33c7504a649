// Package stubgen renders Python type stubs (.pyi) from the YAML manifests
// written by the manifest package.
package stubgen

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/daveroberts0321/nadra/spec/manifest"
)

// Generate reads a manifest written by the manifest package and emits a
// Python type stub for the described module into outDir. The stub is named
// after the manifest's source file with a .pyi extension. It returns the
// path written.
func Generate(manifestPath, outDir string) (string, error) {
	m, err := manifest.Read(manifestPath)
	if err != nil {
		return "", err
	}
	if m.Source == "" {
		return "", fmt.Errorf("manifest %s names no source file", manifestPath)
	}

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return "", err
	}

	base := path.Base(m.Source)
	file := filepath.Join(outDir, strings.TrimSuffix(base, path.Ext(base))+".pyi")
	if err := os.WriteFile(file, []byte(Render(m)), 0644); err != nil {
		return "", err
	}
	return file, nil
}

// Render produces the stub text for m. Declarations appear in the order
// enums, structs, functions, each in manifest order.
func Render(m *manifest.Manifest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Stub for %s\n", m.Source)

	if len(m.Enums) > 0 {
		b.WriteString("\nfrom enum import IntEnum\n")
	}
	for _, e := range m.Enums {
		fmt.Fprintf(&b, "\nclass %s(IntEnum):\n", e.Name)
		if len(e.Variants) == 0 {
			b.WriteString("    ...\n")
		}
		for _, v := range e.Variants {
			fmt.Fprintf(&b, "    %s = %d\n", v.Name, v.Ordinal)
		}
	}

	for _, s := range m.Structs {
		writeClass(&b, s)
	}

	if len(m.Functions) > 0 {
		b.WriteString("\n")
	}
	for _, fn := range m.Functions {
		writeDef(&b, "", fn, false)
	}
	return b.String()
}

func writeClass(b *strings.Builder, s manifest.Struct) {
	fmt.Fprintf(b, "\nclass %s:\n", s.Name)
	if len(s.Fields) == 0 && len(s.Methods) == 0 {
		b.WriteString("    ...\n")
		return
	}

	for _, f := range s.Fields {
		fmt.Fprintf(b, "    %s: %s\n", f.Name, f.Type)
	}

	hasInit := false
	for _, m := range s.Methods {
		if m.Name == "__init__" {
			hasInit = true
		}
	}
	if !hasInit && len(s.Fields) > 0 {
		params := make([]string, 0, len(s.Fields)+1)
		params = append(params, "self")
		for _, f := range s.Fields {
			params = append(params, fmt.Sprintf("%s: %s = ...", f.Name, f.Type))
		}
		fmt.Fprintf(b, "    def __init__(%s) -> None: ...\n", strings.Join(params, ", "))
	}

	for _, m := range s.Methods {
		writeDef(b, "    ", m, true)
	}
}

// writeDef writes one signature. In methods the first parameter is the
// receiver and stays unannotated.
func writeDef(b *strings.Builder, indent string, fn manifest.Function, method bool) {
	params := make([]string, 0, len(fn.Params))
	for i, p := range fn.Params {
		if p.Type == "" || (method && i == 0) {
			params = append(params, p.Name)
			continue
		}
		params = append(params, fmt.Sprintf("%s: %s", p.Name, p.Type))
	}

	fmt.Fprintf(b, "%sdef %s(%s)", indent, fn.Name, strings.Join(params, ", "))
	if fn.Returns != "" {
		fmt.Fprintf(b, " -> %s", fn.Returns)
	}
	b.WriteString(": ...\n")
}
