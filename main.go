package main

import (
	"fmt"
	"os"

	"github.com/oakwood-commons/tdx/cmd"
	"github.com/oakwood-commons/tdx/pkg/logger"
)

func main() {
	exitCode := 0
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		exitCode = cmd.ExitCode(err)
		if exitCode == 2 {
			fmt.Fprintln(os.Stderr, "Run 'tdx --help' for usage.")
		}
	}

	logger.Sync()
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}
