package project

import (
	"context"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/daveroberts0321/nadra/parser/grammar"
	"github.com/daveroberts0321/nadra/spec/manifest"
	"github.com/daveroberts0321/nadra/stubgen"
	"github.com/daveroberts0321/nadra/transpile"
)

//go:embed templates/*
var templates embed.FS

// SourceExt is the extension of Nadra source files
const SourceExt = ".nd"

// Init creates a new Nadra project with scaffolding
func Init(name string) error {
	if name == "" {
		return fmt.Errorf("project name must not be empty")
	}

	// Create project directory
	if err := os.MkdirAll(name, 0755); err != nil {
		return fmt.Errorf("failed to create project directory: %w", err)
	}

	// Create directory structure
	dirs := []string{
		filepath.Join(name, "src"),
		filepath.Join(name, "build"),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	// Write template files
	templateFiles := map[string]string{
		ConfigFile:    "templates/nadra.yaml",
		"src/main.nd": "templates/main.nd",
		"README.md":   "templates/README.md",
		".gitignore":  "templates/gitignore",
	}

	for filePath, templatePath := range templateFiles {
		if err := writeTemplateFile(name, filePath, templatePath, filepath.Base(name)); err != nil {
			return fmt.Errorf("failed to write %s: %w", filePath, err)
		}
	}

	return nil
}

func writeTemplateFile(projectDir, filePath, templatePath, projectName string) error {
	content, err := templates.ReadFile(templatePath)
	if err != nil {
		return err
	}

	contentStr := string(content)
	contentStr = strings.ReplaceAll(contentStr, "{{.ProjectName}}", projectName)

	fullPath := filepath.Join(projectDir, filepath.FromSlash(filePath))
	return os.WriteFile(fullPath, []byte(contentStr), 0644)
}

// Build translates every .nd file of the project in the current directory
func Build() error {
	cfg, err := LoadConfig(".")
	if err != nil {
		return err
	}
	return BuildWith(context.Background(), cfg)
}

// BuildWith translates every .nd file under cfg.SourceDirs into cfg.OutDir,
// keeping each file's path relative to its source directory.
func BuildWith(ctx context.Context, cfg *Config) error {
	fmt.Println("Building Nadra project...")

	var jobs []transpile.Job
	var manifests []string
	for _, dir := range cfg.SourceDirs {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			fmt.Printf("   Source directory %s not found, skipping\n", dir)
			continue
		}

		files, err := FindNadraFiles(dir, cfg.OutDir)
		if err != nil {
			return err
		}
		for _, file := range files {
			out, err := OutputPath(cfg, dir, file)
			if err != nil {
				return err
			}
			fmt.Printf("   Processing %s...\n", file)
			jobs = append(jobs, transpile.Job{
				Input:  file,
				Output: out,
				Header: cfg.HeaderFor(file),
			})
			if cfg.Manifest {
				m, err := ManifestPath(cfg, dir, file)
				if err != nil {
					return err
				}
				manifests = append(manifests, m)
			}
		}
	}

	if len(jobs) == 0 {
		fmt.Println("   No .nd files found")
		return nil
	}

	if _, err := transpile.Batch(ctx, jobs, cfg.Options(), cfg.Jobs); err != nil {
		return fmt.Errorf("build failed: %w", err)
	}

	if cfg.Manifest {
		for i, job := range jobs {
			if err := writeManifest(job.Input, manifests[i]); err != nil {
				return fmt.Errorf("failed to generate manifest for %s: %w", job.Input, err)
			}
			if _, err := stubgen.Generate(manifests[i], filepath.Dir(job.Output)); err != nil {
				return fmt.Errorf("failed to generate stub for %s: %w", job.Input, err)
			}
		}
	}

	fmt.Printf("Built %d Nadra files\n", len(jobs))
	return nil
}

// OutputPath maps a source file under srcDir to its .py path in cfg.OutDir
func OutputPath(cfg *Config, srcDir, file string) (string, error) {
	rel, err := filepath.Rel(srcDir, file)
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg.OutDir, strings.TrimSuffix(rel, SourceExt)+".py"), nil
}

// ManifestPath maps a source file under srcDir to its manifest path in
// cfg.OutDir/manifest, keeping the relative directory like OutputPath.
func ManifestPath(cfg *Config, srcDir, file string) (string, error) {
	rel, err := filepath.Rel(srcDir, file)
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg.OutDir, "manifest", strings.TrimSuffix(rel, SourceExt)+".yaml"), nil
}

func writeManifest(file, path string) error {
	program, err := ParseNadraFile(file)
	if err != nil {
		return err
	}
	return manifest.WriteFile(program, file, path)
}

// ParseNadraFile reads and parses one source file
func ParseNadraFile(filename string) (*grammar.Program, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return grammar.ParseWithFilename(f, filename)
}

// FindNadraFiles lists .nd files under root in lexical order. Hidden
// directories and the skip directories are not descended into.
func FindNadraFiles(root string, skip ...string) ([]string, error) {
	var files []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if path != root && strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			for _, s := range skip {
				if filepath.Clean(path) == filepath.Clean(s) {
					return filepath.SkipDir
				}
			}
			return nil
		}
		if strings.HasSuffix(path, SourceExt) {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}
