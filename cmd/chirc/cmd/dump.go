package cmd

import (
	"fmt"
	"os"

	"github.com/chir-lang/chir/internal/chir/serialize"
	"github.com/chir-lang/chir/internal/chirfixture"
	"github.com/spf13/cobra"
)

var dumpJSON bool

var dumpCmd = &cobra.Command{
	Use:   "dump <fixture-file>",
	Short: "Dump a fixture package's structure",
	Long: `dump loads the YAML/JSON fixture at the given path and prints a
structural view of its package and every function's block/expression
graph. Currently only --json output is supported.`,
	Args: cobra.ExactArgs(1),
	RunE: runDump,
}

func init() {
	dumpCmd.Flags().BoolVar(&dumpJSON, "json", true, "dump as JSON")
	rootCmd.AddCommand(dumpCmd)
}

func runDump(cmd *cobra.Command, args []string) error {
	if !dumpJSON {
		return fmt.Errorf("dump: only --json output is supported")
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("dump: %w", err)
	}

	pkg, _, err := chirfixture.Load(data)
	if err != nil {
		return fmt.Errorf("dump: %w", err)
	}

	pkgDump, err := serialize.DumpPackage(pkg)
	if err != nil {
		return fmt.Errorf("dump: %w", err)
	}
	fmt.Println(pkgDump)

	for _, fn := range pkg.Functions {
		fnDump, err := serialize.DumpFunc(fn)
		if err != nil {
			return fmt.Errorf("dump: %w", err)
		}
		fmt.Println(fnDump)
	}
	return nil
}
