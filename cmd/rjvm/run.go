/*
 * rjvm-learn - A study-scale Java virtual machine
 * Adapted from Jacobin VM. Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cnxfgit/rjvm-learn/classpath"
	"github.com/cnxfgit/rjvm-learn/heap"
	"github.com/cnxfgit/rjvm-learn/vm"
)

var classPathFlag string

// runCmd resolves mainClass off the given classpath and invokes its
// public static void main(String[]) (spec.md §1/§6), grounded on
// mabhi256-jdiag/cmd/gc.go's Args/PreRunE/Run shape.
var runCmd = &cobra.Command{
	Use:   "run <main-class> [args...]",
	Short: "Run a class's main(String[]) method",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mainClass := strings.ReplaceAll(args[0], ".", "/")
		programArgs := args[1:]

		cfg := vm.DefaultConfig()
		cfg.TraceLevel = parseTraceLevel(traceLevel)
		machine := vm.New(cfg)

		for _, p := range splitClassPath(classPathFlag) {
			entry, err := newClassPathEntry(p)
			if err != nil {
				return err
			}
			machine.AppendClassPath(entry)
		}

		stack := machine.AllocateCallStack()
		cm, err := machine.ResolveClassMethod(stack, mainClass, "main", "([Ljava/lang/String;)V")
		if err != nil {
			return fmt.Errorf("resolving %s.main: %w", mainClass, err)
		}

		argsRef, err := buildStringArray(machine, programArgs)
		if err != nil {
			return fmt.Errorf("building program arguments: %w", err)
		}

		_, _, err = machine.Invoke(cm.Class, cm.Method.Name, cm.Method.TypeDescriptor, nil, []heap.Value{heap.Object(argsRef)})
		if err != nil {
			return fmt.Errorf("running %s.main: %w", mainClass, err)
		}
		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&classPathFlag, "classpath", ".", "classpath entries (directories or .jar/.zip files), separated by "+string(os.PathListSeparator))
}

func splitClassPath(s string) []string {
	var entries []string
	for _, p := range strings.Split(s, string(os.PathListSeparator)) {
		if p != "" {
			entries = append(entries, p)
		}
	}
	return entries
}

func newClassPathEntry(path string) (classpath.Entry, error) {
	if strings.HasSuffix(path, ".jar") || strings.HasSuffix(path, ".zip") {
		return classpath.NewArchiveEntry(path)
	}
	return classpath.NewDirEntry(path)
}

func buildStringArray(machine *vm.VM, args []string) (heap.Reference, error) {
	ref, err := machine.NewArray(heap.ArrayOfObject, len(args))
	if err != nil {
		return 0, err
	}
	for i, a := range args {
		strRef, err := machine.NewJavaString(a)
		if err != nil {
			return 0, err
		}
		if err := machine.SetElement(ref, i, heap.Object(strRef)); err != nil {
			return 0, err
		}
	}
	return ref, nil
}
