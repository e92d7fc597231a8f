// Command tzctl inspects, diffs, and compiles TZif data. It replaces the
// teacher repository's separate tzinfo/tzdiff/tzinspect mains with one
// cobra command tree.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "tzctl",
		Short:         "Inspect, diff, and compile TZif timezone data",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.AddCommand(newInspectCmd())
	root.AddCommand(newDiffCmd())
	root.AddCommand(newCompileCmd())

	return root
}
