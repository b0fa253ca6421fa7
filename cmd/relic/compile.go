package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/heanyang1/relic"
)

func newCompileCmd() *cobra.Command {
	var inputPath, outputPath, packageName string
	var debugInfo bool
	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Compile a file to C source",
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = debugInfo // -g is accepted; the C code generator's output does not depend on it
			if inputPath == "" {
				return fmt.Errorf("no file to compile; pass -i FILE")
			}
			src, err := os.ReadFile(inputPath)
			if err != nil {
				return err
			}

			n, err := relic.ParseProgram(string(src))
			if err != nil {
				return err
			}
			pre := relic.NewPreprocessor()
			n, err = pre.Preprocess(n)
			if err != nil {
				return err
			}

			cg := relic.NewCodeGen()
			if err := relic.Compile(n, cg); err != nil {
				return err
			}

			entry := "main"
			if packageName != "" {
				entry = packageName
			}
			c := cg.EmitLibrary(entry)

			if outputPath != "" {
				return os.WriteFile(outputPath, []byte(c), 0o644)
			}
			fmt.Print(c)
			return nil
		},
	}
	cmd.Flags().StringVarP(&inputPath, "input-path", "i", "", "input file path")
	cmd.Flags().StringVarP(&outputPath, "output-path", "o", "", "output file path (stdout if omitted)")
	cmd.Flags().StringVarP(&packageName, "package-name", "p", "", "entry function/package name")
	cmd.Flags().BoolVarP(&debugInfo, "debug-info", "g", false, "accepted but ignored: the generated C is the same with or without it")
	return cmd
}
