package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/daveroberts0321/nadra/pygen"
)

// ConfigFile is the project file read from the project root
const ConfigFile = "nadra.yaml"

// Config is the decoded nadra.yaml. Keys missing from the file keep their
// DefaultConfig values.
type Config struct {
	Name       string   `yaml:"name"`
	SourceDirs []string `yaml:"source_dirs"`
	OutDir     string   `yaml:"out_dir"`
	Indent     int      `yaml:"indent"`
	Verify     bool     `yaml:"verify"`
	Jobs       int      `yaml:"jobs"`
	Header     bool     `yaml:"header"`
	Manifest   bool     `yaml:"manifest"`
	Addr       string   `yaml:"addr"`
}

// DefaultConfig returns the settings used when nadra.yaml is absent
func DefaultConfig() *Config {
	return &Config{
		SourceDirs: []string{"src"},
		OutDir:     "build",
		Indent:     pygen.DefaultIndent,
		Verify:     true,
		Jobs:       runtime.NumCPU(),
		Header:     true,
		Manifest:   false,
		Addr:       ":8080",
	}
}

// LoadConfig reads nadra.yaml from dir. A missing file is not an error.
func LoadConfig(dir string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filepath.Join(dir, ConfigFile))
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", ConfigFile, err)
	}

	if err := yaml.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", ConfigFile, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", ConfigFile, err)
	}
	return cfg, nil
}

// Validate reports settings no build could use
func (c *Config) Validate() error {
	if len(c.SourceDirs) == 0 {
		return errors.New("source_dirs must list at least one directory")
	}
	if c.OutDir == "" {
		return errors.New("out_dir must not be empty")
	}
	for _, dir := range c.SourceDirs {
		if filepath.Clean(dir) == filepath.Clean(c.OutDir) {
			return fmt.Errorf("out_dir %q is also a source directory", c.OutDir)
		}
	}
	if c.Indent < 1 || c.Indent > 8 {
		return fmt.Errorf("indent must be between 1 and 8, got %d", c.Indent)
	}
	if c.Jobs < 0 {
		return fmt.Errorf("jobs must not be negative, got %d", c.Jobs)
	}
	return nil
}

// Options returns the generator options shared by every file
func (c *Config) Options() pygen.Options {
	return pygen.Options{Indent: c.Indent, Verify: c.Verify}
}

// HeaderFor returns the header comment for a file built from source, or ""
// when headers are turned off.
func (c *Config) HeaderFor(source string) string {
	if !c.Header {
		return ""
	}
	return GeneratedHeader(source)
}

// GeneratedHeader is the comment placed at the top of built files
func GeneratedHeader(source string) string {
	return fmt.Sprintf("Code generated by nadra from %s. DO NOT EDIT.", filepath.ToSlash(source))
}

// SourceDirFor returns the configured source directory holding file, or the
// file's own directory when none does.
func (c *Config) SourceDirFor(file string) string {
	for _, dir := range c.SourceDirs {
		rel, err := filepath.Rel(dir, file)
		if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return dir
		}
	}
	return filepath.Dir(file)
}
