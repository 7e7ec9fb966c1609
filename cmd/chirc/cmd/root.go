package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags).
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "chirc",
	Short: "CHIR middle-end driver",
	Long: `chirc drives the CHIR middle-end pipeline over a small YAML/JSON
fixture package, for local testing of the checker, analyses, and
transform passes without a real front end attached.

A fixture names a package and a flat list of functions, each with a
primitive return type and a tiny stack-machine body
(const/alloc/store/load/dup/exit) — see internal/chirfixture for the
schema.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
}
