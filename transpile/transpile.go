// Package transpile runs the Nadra to Python pipeline over source text and
// files: lex, parse, generate, and write the result only on success.
package transpile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/daveroberts0321/nadra/diag"
	"github.com/daveroberts0321/nadra/parser/grammar"
	"github.com/daveroberts0321/nadra/pygen"
)

// Source translates one translation unit. filename is only used to
// attribute diagnostics and may be empty.
func Source(src, filename string, opts pygen.Options) (string, error) {
	program, err := grammar.ParseWithFilename(strings.NewReader(src), filename)
	if err != nil {
		return "", err
	}

	code, err := pygen.Generate(program, opts)
	if err != nil {
		if d, ok := diag.As(err); ok && filename != "" {
			return "", d.WithFile(filename)
		}
		return "", err
	}
	return code, nil
}

// File translates inPath into outPath. When translation fails the output
// file is neither created nor modified.
func File(inPath, outPath string, opts pygen.Options) error {
	src, err := os.ReadFile(inPath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", inPath, err)
	}

	code, err := Source(string(src), inPath, opts)
	if err != nil {
		return err
	}

	return WriteFile(outPath, []byte(code))
}

// WriteFile replaces path with data through a temporary file in the same
// directory, so readers never observe a partial write.
func WriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

// Job is one input file and the path its Python goes to. A non-empty Header
// replaces the batch-wide header for this file.
type Job struct {
	Input  string
	Output string
	Header string
}

// Batch translates jobs concurrently, at most limit at a time (no limit when
// limit <= 0). The first failure cancels the jobs not yet started. The
// returned outputs are in job order.
func Batch(ctx context.Context, jobs []Job, opts pygen.Options, limit int) ([]string, error) {
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	written := make([]string, len(jobs))
	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			jobOpts := opts
			if job.Header != "" {
				jobOpts.Header = job.Header
			}
			if err := File(job.Input, job.Output, jobOpts); err != nil {
				return err
			}
			written[i] = job.Output
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return written, nil
}
