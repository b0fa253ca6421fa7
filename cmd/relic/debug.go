package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/heanyang1/relic"
)

func newDebugCmd() *cobra.Command {
	var inputPath string
	cmd := &cobra.Command{
		Use:   "debug",
		Short: "Run a file under the interactive debugger",
		RunE: func(cmd *cobra.Command, args []string) error {
			if inputPath == "" {
				return fmt.Errorf("no file to debug; pass -i FILE")
			}
			src, err := os.ReadFile(inputPath)
			if err != nil {
				return err
			}

			rt := relic.NewRuntime(1024)
			rt.Start()
			rt.SetDebug(relic.DbgNormal, dbgLoop)

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

// dbgLoop is the debugger's interactive command loop, invoked at every
// triggered hook point (§4.8). It blocks until the user picks the next
// debug level; "print" queries the current environment by name.
func dbgLoop(rt *relic.Runtime, info string) relic.DbgLevel {
	line := liner.NewLiner()
	defer line.Close()

	if f, err := os.Open(historyFile); err == nil {
		line.ReadHistory(f)
		f.Close()
	}

	fmt.Printf("%s\n", info)

	for {
		input, err := line.Prompt("dbg> ")
		if err != nil {
			os.Exit(0)
		}
		input = strings.TrimSpace(input)
		if input != "" {
			line.AppendHistory(input)
		}
		if f, err := os.Create(historyFile); err == nil {
			line.WriteHistory(f)
			f.Close()
		}

		switch {
		case input == "s" || input == "step":
			return relic.DbgStep
		case input == "n" || input == "next":
			return relic.DbgNext
		case input == "c" || input == "continue":
			return relic.DbgNormal
		case input == "r" || input == "runtime":
			fmt.Printf("free=%d size=%d\n", rt.Free(), rt.Size())
		default:
			if varName, ok := stripPrintPrefix(input); ok {
				printVar(rt, varName)
			} else {
				fmt.Println("Available commands: (s)tep, (n)ext, (c)ontinue, (p)rint, (r)untime. Press C-c to quit.")
			}
		}
	}
}

func stripPrintPrefix(input string) (string, bool) {
	if rest, ok := strings.CutPrefix(input, "p "); ok {
		return rest, true
	}
	if rest, ok := strings.CutPrefix(input, "print "); ok {
		return rest, true
	}
	return "", false
}

func printVar(rt *relic.Runtime, name string) {
	idx, err := rt.Get(name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "variable %s not found\n", name)
		return
	}
	fmt.Printf("%s = %s\n", name, rt.DisplayNodeIdx(idx))
}
