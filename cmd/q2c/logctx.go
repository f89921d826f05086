package main

import (
	"context"
	"log/slog"
)

type ctxKey struct{}

// withLogger attaches logger to ctx so subcommands can retrieve it without
// threading it through every function signature.
func withLogger(ctx context.Context, logger *slog.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxKey{}, logger)
}

// loggerFrom retrieves the logger attached by withLogger, falling back to
// slog.Default() if none was attached (should not happen in practice, but a
// panic here would be worse than a slightly unlabeled log line).
func loggerFrom(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}

// slogWithRunID builds a logger over handler with every line tagged
// run_id=runID (SPEC_FULL.md §6.1). Diagnostic output is written without
// the run id.
func slogWithRunID(handler slog.Handler, runID string) *slog.Logger {
	return slog.New(handler).With("run_id", runID)
}
