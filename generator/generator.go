package generator

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/daveroberts0321/nadra/parser/grammar"
	"github.com/daveroberts0321/nadra/project"
	"github.com/daveroberts0321/nadra/pygen"
	"github.com/daveroberts0321/nadra/spec/manifest"
)

// checkName rejects names that would not survive translation
func checkName(name string) error {
	tokens, err := grammar.Tokenize(name)
	if err != nil || len(tokens) != 2 || tokens[0].Kind != grammar.Ident {
		return fmt.Errorf("%q is not a valid Nadra identifier", name)
	}
	if pygen.IsPythonKeyword(name) {
		return fmt.Errorf("%q is a reserved word in Python", name)
	}
	return nil
}

// GenerateStruct writes a struct template to src/types/<name>.nd
func GenerateStruct(name string) error {
	if err := checkName(name); err != nil {
		return err
	}

	structTemplate := fmt.Sprintf(`# %s data type

struct %s
    id: int
    name: String

    def describe(self) -> String
        return "%s #" + self.id + ": " + self.name
    enddef

    def is_valid(self) -> bool
        if self.name == none then
            return false
        endif
        return self.id > 0
    enddef
endstruct
`, name, name, name)

	filename := filepath.Join("src", "types", strings.ToLower(name)+project.SourceExt)
	return writeTemplate(filename, structTemplate, "Struct", name)
}

// GenerateEnum writes an enum template to src/types/<name>.nd
func GenerateEnum(name string, variants ...string) error {
	if err := checkName(name); err != nil {
		return err
	}
	if len(variants) == 0 {
		variants = []string{"First", "Second", "Third"}
	}
	for _, v := range variants {
		if err := checkName(v); err != nil {
			return err
		}
	}

	enumTemplate := fmt.Sprintf(`# %s values, numbered from %d in declaration order

enum %s
    %s
endenum
`, name, pygen.FirstOrdinal, name, strings.Join(variants, ",\n    "))

	filename := filepath.Join("src", "types", strings.ToLower(name)+project.SourceExt)
	return writeTemplate(filename, enumTemplate, "Enum", name)
}

// GenerateFunction appends a function template to src/services/<name>.nd,
// creating the file if needed.
func GenerateFunction(name string) error {
	if err := checkName(name); err != nil {
		return err
	}

	functionTemplate := fmt.Sprintf(`def %s(input: String) -> bool
    # %s: add your logic here
    if input == "" then
        return false
    endif
    return true
enddef
`, name, strings.ToLower(name))

	filename := filepath.Join("src", "services", strings.ToLower(name)+project.SourceExt)

	var content string
	if existingContent, err := os.ReadFile(filename); err == nil {
		content = string(existingContent) + "\n" + functionTemplate
	} else {
		content = fmt.Sprintf("# %s service\n\n", name) + functionTemplate
	}

	return writeTemplate(filename, content, "Function", name)
}

func writeTemplate(filename, content, kind, name string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return err
	}
	if err := os.WriteFile(filename, []byte(content), 0644); err != nil {
		return fmt.Errorf("error writing %s template: %w", strings.ToLower(kind), err)
	}

	fmt.Printf("%s %s generated at %s\n", kind, name, filename)
	return nil
}

// GenerateManifest writes the YAML manifest of one source file into the
// project's output directory.
func GenerateManifest(path string) error {
	cfg, err := project.LoadConfig(".")
	if err != nil {
		return err
	}

	program, err := project.ParseNadraFile(path)
	if err != nil {
		return err
	}

	out, err := project.ManifestPath(cfg, cfg.SourceDirFor(path), path)
	if err != nil {
		return err
	}
	if err := manifest.WriteFile(program, path, out); err != nil {
		return err
	}

	fmt.Printf("Manifest written to %s\n", out)
	return nil
}
