/*
 * rjvm-learn - A study-scale Java virtual machine
 * Adapted from Jacobin VM. Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cnxfgit/rjvm-learn/trace"
)

var traceLevel string

// rootCmd is the thin, explicitly out-of-core-scope CLI entry point
// SPEC_FULL.md §2 calls for, grounded on mabhi256-jdiag/cmd/root.go's
// rootCmd+Execute()+init() wiring idiom.
var rootCmd = &cobra.Command{
	Use:   "rjvm",
	Short: "A study-scale Java virtual machine",
	Long:  `rjvm loads and interprets compiled .class files against a classpath of directories and jar/zip archives.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&traceLevel, "trace", "warning", "trace level: error, warning, info, debug")
	rootCmd.AddCommand(runCmd)
}

func parseTraceLevel(s string) trace.Level {
	switch s {
	case "debug", "fine":
		return trace.FINE
	case "info":
		return trace.INFO
	case "error", "severe":
		return trace.SEVERE
	default:
		return trace.WARNING
	}
}

func main() {
	Execute()
}
