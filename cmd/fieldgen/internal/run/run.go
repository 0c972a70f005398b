// Package run holds the generate/verify logic behind the fieldgen CLI, kept
// out of package main so it stays unit-testable without exec'ing a binary.
package run

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hexinfra/fielddict/config"
	"github.com/hexinfra/fielddict/internal/fieldgen"
	"github.com/hexinfra/fielddict/internal/fieldreg"
)

var directions = map[string]fieldreg.Direction{
	"request":  fieldreg.DirRequest,
	"response": fieldreg.DirResponse,
	"trailer":  fieldreg.DirTrailer,
}

func resolve(direction string) ([]fieldreg.Direction, error) {
	if direction == "all" || direction == "" {
		return []fieldreg.Direction{fieldreg.DirRequest, fieldreg.DirResponse, fieldreg.DirTrailer}, nil
	}
	dir, ok := directions[direction]
	if !ok {
		return nil, fmt.Errorf("fieldgen: unknown direction %q", direction)
	}
	return []fieldreg.Direction{dir}, nil
}

// packageDir and fileName give each direction its own generated package
// directory (out/<direction>/<direction>_dictionary.go): the printed
// artifact declares `package request`/`response`/`trailer`, so it cannot
// share a directory with a sibling direction or with the hand-written
// headers package without a build-breaking package-name collision.
func packageDir(out string, dir fieldreg.Direction) string { return filepath.Join(out, dir.String()) }
func fileName(dir fieldreg.Direction) string               { return dir.String() + "_dictionary.go" }

// Generate writes out/<direction>/<direction>_dictionary.go for each
// selected direction.
func Generate(direction, out, configPath string) error {
	dirs, err := resolve(direction)
	if err != nil {
		return err
	}
	overrides, err := config.Load(configPath)
	if err != nil {
		return err
	}
	for _, dir := range dirs {
		src, err := fieldgen.Generate(dir, overrides)
		if err != nil {
			return fmt.Errorf("fieldgen: generate %s: %w", dir, err)
		}
		dirPath := packageDir(out, dir)
		if err := os.MkdirAll(dirPath, 0o755); err != nil {
			return fmt.Errorf("fieldgen: mkdir %s: %w", dirPath, err)
		}
		path := filepath.Join(dirPath, fileName(dir))
		if err := os.WriteFile(path, src, 0o644); err != nil {
			return fmt.Errorf("fieldgen: write %s: %w", path, err)
		}
	}
	return nil
}

// Verify re-generates every direction into memory and diffs it against the
// file already on disk, enforcing spec.md §5's determinism guarantee as a
// CI-friendly check instead of trusting that `generate` was re-run.
func Verify(out, configPath string) error {
	dirs, err := resolve("all")
	if err != nil {
		return err
	}
	overrides, err := config.Load(configPath)
	if err != nil {
		return err
	}
	for _, dir := range dirs {
		want, err := fieldgen.Generate(dir, overrides)
		if err != nil {
			return fmt.Errorf("fieldgen: generate %s: %w", dir, err)
		}
		path := filepath.Join(packageDir(out, dir), fileName(dir))
		got, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("fieldgen: read %s: %w", path, err)
		}
		if !bytes.Equal(want, got) {
			return fmt.Errorf("fieldgen: %s is stale, run `fieldgen generate`", path)
		}
	}
	return nil
}
