package main

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/quarto-dev/q2-sub015/blockscan"
	"github.com/quarto-dev/q2-sub015/diag"
	"github.com/quarto-dev/q2-sub015/internal/logging"
)

func newBuildDiagnosticsCmd(logCfg *logging.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build-diagnostics <corpus-dir> <out-file>",
		Short: "Build the runtime diagnostic message table from a corpus directory (spec.md §4.7/§6.6)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			runID := resolveRunID(cmd)
			ctx, err := newLogger(cmd, logCfg, runID)
			if err != nil {
				return &cliError{err: err, code: 2}
			}
			return runBuildDiagnostics(ctx, args[0], args[1])
		},
	}
	return cmd
}

func runBuildDiagnostics(ctx context.Context, corpusDir, outFile string) error {
	logger := loggerFrom(ctx)

	table, err := diag.BuildTable(corpusDir, scanCorpusExample)
	if err != nil {
		logger.Error("building diagnostic table failed", "error", err)
		return &cliError{err: err, code: 2}
	}

	f, err := os.Create(outFile)
	if err != nil {
		return &cliError{err: fmt.Errorf("creating %s: %w", outFile, err), code: 2}
	}
	defer f.Close()

	if err := diag.WriteTable(bufio.NewWriter(f), table); err != nil {
		return &cliError{err: fmt.Errorf("writing %s: %w", outFile, err), code: 2}
	}

	logger.Info("diagnostic table built", "entries", table.Len(), "out", outFile)
	return nil
}

// scanCorpusExample drives the block scanner over one corpus example and
// reports its final container-stack signature as the "state" half of the
// (state, token) lookup key.
//
// This captures the scanner's state at end-of-scan, not at the point where
// a parse error arose: blockscan keeps no per-diagnostic state snapshot and
// reports no diagnostics of its own. diag.BuildTable keys each table entry
// by the state and token this callback returns, in place of the corpus
// JSON's authored "state"/"token" fields.
func scanCorpusExample(qmdPath string) (diag.StateSignature, diag.TokenKind, error) {
	src, err := os.ReadFile(qmdPath)
	if err != nil {
		return "", "", err
	}
	scanner := blockscan.New(src)
	scanner.Scan()
	return scanner.State().Signature(), diag.TokenKind(blockscan.TokError), nil
}
