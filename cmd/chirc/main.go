package main

import (
	"fmt"
	"os"

	"github.com/chir-lang/chir/cmd/chirc/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
