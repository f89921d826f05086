// Command q2c converts Quarto-flavored Pandoc Markdown to an AST,
// serialized as Pandoc native text, Pandoc JSON, or QMD (spec.md §6.1).
//
// Structured as a cobra.Command tree rather than flag, grounded on
// MacroPower-x/cmd/magicschema, playbymail-ottomap, and
// jinterlante1206-AleutianLocal, all of which build their CLI surface on
// github.com/spf13/cobra + github.com/spf13/pflag.
//go:generate go run . build-diagnostics ../../testdata/diagnostics ../../diag/table.json
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/quarto-dev/q2-sub015/internal/logging"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	logCfg := logging.NewConfig()

	root := &cobra.Command{
		Use:           "q2c",
		Short:         "Convert Quarto Markdown to Pandoc native, JSON, or QMD",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.PersistentFlags().String("run-id", "", "correlation id stamped on every log line (default: a generated uuid)")
	logCfg.RegisterFlags(root.PersistentFlags())

	root.AddCommand(newConvertCmd(logCfg))
	root.AddCommand(newBuildDiagnosticsCmd(logCfg))
	root.SetArgs(args)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "q2c: %v\n", err)
		if ec, ok := err.(exitCoder); ok {
			return ec.ExitCode()
		}
		return 2
	}
	return 0
}

// exitCoder lets a RunE error carry spec.md §6.1's distinction between
// "clean run with Error diagnostics" (1) and "internal failure" (2)
// through cobra's plain error return.
type exitCoder interface {
	error
	ExitCode() int
}

type cliError struct {
	err  error
	code int
}

func (e *cliError) Error() string { return e.err.Error() }
func (e *cliError) ExitCode() int { return e.code }

func newLogger(cmd *cobra.Command, logCfg *logging.Config, runID string) (context.Context, error) {
	handler, err := logCfg.NewHandler(cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	logger := slogWithRunID(handler, runID)
	return withLogger(cmd.Context(), logger), nil
}

func resolveRunID(cmd *cobra.Command) string {
	id, _ := cmd.Flags().GetString("run-id")
	if id != "" {
		return id
	}
	return uuid.NewString()
}
