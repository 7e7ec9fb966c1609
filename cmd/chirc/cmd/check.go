package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/chir-lang/chir/internal/chir/checker"
	"github.com/chir-lang/chir/internal/chirfixture"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check <fixture-file>",
	Short: "Run only the RAW-phase well-formedness checker over a fixture",
	Long: `check loads the YAML/JSON fixture at the given path and runs
checker.Check against it at its starting RAW phase, without running any
plugin, analysis, or optimization pass. Useful for validating that a
fixture describes a well-formed package before driving it through run.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("check: %w", err)
	}

	pkg, opts, err := chirfixture.Load(data)
	if err != nil {
		return fmt.Errorf("check: %w", err)
	}

	ok, sink := checker.Check(context.Background(), pkg, opts.JobCount)
	if sink != nil {
		for _, d := range sink.Diagnostics() {
			fmt.Fprintln(os.Stderr, d.Format())
		}
	}
	if !ok {
		return fmt.Errorf("check: package %q is not well-formed", pkg.Name)
	}

	fmt.Printf("package %q: well-formed\n", pkg.Name)
	return nil
}
