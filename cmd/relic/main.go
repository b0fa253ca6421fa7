// Command relic runs, compiles, or debugs programs written in the
// dialect the relic runtime implements.
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
		Use:   "relic",
		Short: "relic runs programs against the relic runtime",
	}
	root.AddCommand(newRunCmd())
	root.AddCommand(newReplCmd())
	root.AddCommand(newCompileCmd())
	root.AddCommand(newDebugCmd())
	return root
}
