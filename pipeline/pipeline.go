// Package pipeline orchestrates one document's full conversion (spec.md
// §5's synchronous "read -> block parse -> inline parse -> AST build ->
// postprocess -> write"): it drives astbuild.Build, postprocess.Run, and a
// selected writer in sequence, wrapping each phase with the span/histogram
// instrumentation internal/telemetry provides.
package pipeline

import (
	"context"
	"fmt"

	"github.com/quarto-dev/q2-sub015/ast"
	"github.com/quarto-dev/q2-sub015/astbuild"
	"github.com/quarto-dev/q2-sub015/diag"
	"github.com/quarto-dev/q2-sub015/internal/telemetry"
	"github.com/quarto-dev/q2-sub015/postprocess"
	"github.com/quarto-dev/q2-sub015/sourcemap"
	"github.com/quarto-dev/q2-sub015/writer/jsonw"
	"github.com/quarto-dev/q2-sub015/writer/native"
	"github.com/quarto-dev/q2-sub015/writer/qmd"
)

// Target names an output writer (spec.md §6.1: "native | json | qmd").
type Target string

const (
	TargetNative Target = "native"
	TargetJSON   Target = "json"
	TargetQMD    Target = "qmd"
)

// Result is one file's conversion outcome.
type Result struct {
	Output      []byte
	Diagnostics []diag.Diagnostic
	// ExitCode follows spec.md §6.1: 0 clean, 1 any Error diagnostic, 2
	// internal failure (an error returned alongside Result signals the
	// latter; the caller maps it to 2).
	ExitCode int
}

// Convert runs the full pipeline over src and serializes the result with
// target. filename is used only for diagnostics and sourcemap file
// identity. A non-nil error means an internal failure (exit code 2 per
// spec.md §6.1); a clean run with Error-severity diagnostics still returns
// a nil error and Result.ExitCode == 1. Convert stops after the first phase
// that reports an Error-severity diagnostic; Result.Output is then nil.
func Convert(ctx context.Context, src []byte, filename string, target Target) (Result, error) {
	smap := sourcemap.NewMap()
	diags := &diag.Bag{}
	var doc *ast.Document

	err := telemetry.Phase(ctx, "build", func(context.Context) error {
		doc = astbuild.Build(src, filename, smap, diags)
		return nil
	})
	if err != nil {
		return Result{}, fmt.Errorf("pipeline: build phase: %w", err)
	}
	if diags.HasErrors() {
		return Result{Diagnostics: diags.All(), ExitCode: 1}, nil
	}

	err = telemetry.Phase(ctx, "postprocess", func(context.Context) error {
		postprocess.Run(doc, src, diags)
		return nil
	})
	if err != nil {
		return Result{}, fmt.Errorf("pipeline: postprocess phase: %w", err)
	}
	if diags.HasErrors() {
		return Result{Diagnostics: diags.All(), ExitCode: 1}, nil
	}

	var out []byte
	err = telemetry.Phase(ctx, "write", func(context.Context) error {
		var werr error
		out, werr = write(doc, src, target)
		return werr
	})
	if err != nil {
		return Result{}, fmt.Errorf("pipeline: write phase: %w", err)
	}

	result := Result{Output: out, Diagnostics: diags.All()}
	if diags.HasErrors() {
		result.ExitCode = 1
	}
	return result, nil
}

func write(doc *ast.Document, src []byte, target Target) ([]byte, error) {
	switch target {
	case TargetNative:
		s, err := native.Write(doc)
		return []byte(s), err
	case TargetJSON:
		return jsonw.Write(doc)
	case TargetQMD:
		return qmd.Write(doc, src)
	default:
		return nil, fmt.Errorf("pipeline: unknown target %q", target)
	}
}
