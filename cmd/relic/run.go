package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/heanyang1/relic"
)

func newRunCmd() *cobra.Command {
	var inputPath string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a file and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			if inputPath == "" {
				return fmt.Errorf("no file to run; pass -i FILE")
			}
			src, err := os.ReadFile(inputPath)
			if err != nil {
				return err
			}

			rt := relic.NewRuntime(1024)
			rt.Start()
			ev := relic.NewEvaluator(rt, os.Stdout)
			idx, err := ev.Run(string(src))
			if err != nil {
				return err
			}
			fmt.Printf("result: %s\n", rt.DisplayNodeIdx(idx))
			return nil
		},
	}
	cmd.Flags().StringVarP(&inputPath, "input-path", "i", "", "input file path")
	return cmd
}
