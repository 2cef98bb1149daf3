package main

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"
)

// CompileSource runs the full tokenize -> parse -> emit pipeline over
// already-read source text. Every returned error is one of
// TokenizeError / ParseError / UnsupportedOperatorError / the EmitError
// sentinels in errors.go.
func CompileSource(src string, cfg Config) (string, error) {
	tokens, err := Tokenize(src)
	if err != nil {
		return "", err
	}
	prog, err := Parse(tokens)
	if err != nil {
		return "", err
	}
	return Emit(prog, cfg.EmitConfig())
}

// CheckSource runs tokenize and parse only, discarding the AST — the
// "check" subcommand's syntax-only mode.
func CheckSource(src string) error {
	tokens, err := Tokenize(src)
	if err != nil {
		return err
	}
	_, err = Parse(tokens)
	return err
}

// CompileFile reads path and compiles it via CompileSource.
func CompileFile(path string, cfg Config) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return CompileSource(string(data), cfg)
}

// BatchResult is one file's outcome from CompileBatch.
type BatchResult struct {
	Path string
	IR   string
	Err  error
}

// CompileBatch compiles every path concurrently with an errgroup, one
// goroutine per file, and returns results in the same order as paths
// regardless of completion order — batch mode never reorders output by
// how fast each file happened to compile.
func CompileBatch(ctx context.Context, paths []string, cfg Config) []BatchResult {
	results := make([]BatchResult, len(paths))

	eg, _ := errgroup.WithContext(ctx)
	for i, path := range paths {
		i, path := i, path
		eg.Go(func() error {
			ir, err := CompileFile(path, cfg)
			results[i] = BatchResult{Path: path, IR: ir, Err: err}
			return nil
		})
	}
	// eg.Wait's error is always nil here: each goroutine reports its
	// failure through results[i].Err instead of the group error, since one
	// file failing must not cancel the others mid-batch.
	_ = eg.Wait()

	return results
}
