package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/quarto-dev/q2-sub015/diag"
	"github.com/quarto-dev/q2-sub015/internal/logging"
	"github.com/quarto-dev/q2-sub015/pipeline"
)

func newConvertCmd(logCfg *logging.Config) *cobra.Command {
	var to string
	var diagnosticsJSON bool
	var verbose bool

	cmd := &cobra.Command{
		Use:   "convert <path>",
		Short: "Convert a Quarto Markdown file to native, JSON, or QMD",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runID := resolveRunID(cmd)
			ctx, err := newLogger(cmd, logCfg, runID)
			if err != nil {
				return &cliError{err: err, code: 2}
			}
			return runConvert(ctx, cmd, args[0], pipeline.Target(to), diagnosticsJSON, verbose)
		},
	}

	cmd.Flags().StringVar(&to, "to", "native", "output format: native, json, qmd")
	cmd.Flags().BoolVar(&diagnosticsJSON, "diagnostics-json", false, "emit diagnostics as JSON instead of annotated console output")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "log a debug-level summary line when the conversion completes")
	return cmd
}

func runConvert(ctx context.Context, cmd *cobra.Command, path string, to pipeline.Target, diagnosticsJSON, verbose bool) error {
	logger := loggerFrom(ctx)

	src, err := os.ReadFile(path)
	if err != nil {
		return &cliError{err: fmt.Errorf("reading %s: %w", path, err), code: 2}
	}

	result, err := pipeline.Convert(ctx, src, path, to)
	if err != nil {
		logger.Error("pipeline failed", "error", err, "file", path)
		return &cliError{err: err, code: 2}
	}

	if len(result.Diagnostics) > 0 {
		if diagnosticsJSON {
			if err := writeDiagnosticsJSON(cmd.ErrOrStderr(), result.Diagnostics); err != nil {
				return &cliError{err: err, code: 2}
			}
		} else {
			writeDiagnosticsConsole(cmd.ErrOrStderr(), path, result.Diagnostics)
		}
	}

	if verbose {
		logger.Debug("conversion complete", "file", path, "to", to, "diagnostics", len(result.Diagnostics))
	}

	if _, err := cmd.OutOrStdout().Write(result.Output); err != nil {
		return &cliError{err: err, code: 2}
	}

	if result.ExitCode != 0 {
		return &cliError{err: fmt.Errorf("%d diagnostic(s) reported for %s", len(result.Diagnostics), path), code: result.ExitCode}
	}
	return nil
}

// diagnosticJSON is the wire shape spec.md §6.5 names for JSON diagnostic
// output.
type diagnosticJSON struct {
	Code         string   `json:"code"`
	Message      string   `json:"message"`
	Severity     string   `json:"severity"`
	InstancePath []string `json:"instance_path"`
	Hints        []string `json:"hints,omitempty"`
}

func writeDiagnosticsJSON(w io.Writer, diags []diag.Diagnostic) error {
	out := make([]diagnosticJSON, len(diags))
	for i, d := range diags {
		hints := make([]string, len(d.Hints))
		for j, h := range d.Hints {
			hints[j] = h.Message
		}
		out[i] = diagnosticJSON{
			Code:         d.Code,
			Message:      d.Title,
			Severity:     d.Severity.String(),
			InstancePath: []string{},
			Hints:        hints,
		}
	}
	enc := json.NewEncoder(w)
	return enc.Encode(out)
}

// writeDiagnosticsConsole renders each diagnostic as an ariadne-style
// annotated line (spec.md §6.5): code, title, then hint lines.
func writeDiagnosticsConsole(w io.Writer, file string, diags []diag.Diagnostic) {
	for _, d := range diags {
		loc := ""
		if d.Source != nil {
			loc = fmt.Sprintf(":%d", d.Source.Range.Start.Offset)
		}
		fmt.Fprintf(w, "%s: %s[%s]%s: %s\n", file, d.Severity, d.Code, loc, d.Title)
		if d.Problem != "" {
			fmt.Fprintf(w, "  |  %s\n", d.Problem)
		}
		for _, h := range d.Hints {
			fmt.Fprintf(w, "  = hint: %s\n", h.Message)
		}
	}
}
