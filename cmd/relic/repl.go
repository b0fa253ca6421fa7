package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/heanyang1/relic"
)

const historyFile = ".relic_history"

func newReplCmd() *cobra.Command {
	var inputPath string
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive read-eval-print loop",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt := relic.NewRuntime(1024)
			rt.Start()
			ev := relic.NewEvaluator(rt, os.Stdout)

			if inputPath != "" {
				src, err := os.ReadFile(inputPath)
				if err != nil {
					return err
				}
				idx, err := ev.Run(string(src))
				if err != nil {
					fmt.Fprintln(os.Stderr, err)
				} else {
					fmt.Printf("result: %s\n", rt.DisplayNodeIdx(idx))
				}
			}

			return runREPL(rt, ev)
		},
	}
	cmd.Flags().StringVarP(&inputPath, "input-path", "i", "", "input file path to preload")
	return cmd
}

func completionCandidates() []string {
	names := append(relic.BuiltinNames(), relic.SpecialFormNames()...)
	sort.Strings(names)
	return names
}

func wordCompleter(candidates []string) liner.WordCompleter {
	return func(line string, pos int) (string, []string, string) {
		start := pos
		for start > 0 {
			r := line[start-1]
			if r == ' ' || r == '\t' || r == '\n' || r == '(' {
				break
			}
			start--
		}
		word := line[start:pos]
		if word == "" {
			return line[:pos], nil, line[pos:]
		}
		var matches []string
		for _, c := range candidates {
			if strings.HasPrefix(c, word) {
				matches = append(matches, c)
			}
		}
		return line[:start], matches, line[pos:]
	}
}

// runREPL implements a standard multi-line read loop: it keeps reading
// lines into a buffer until the accumulated text parses as one complete
// expression (ErrEOF means "need more input"), evaluates it, prints the
// result, and clears the buffer; a syntax error discards the buffer
// instead of looping forever on bad input.
func runREPL(rt *relic.Runtime, ev *relic.Evaluator) error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)
	line.SetWordCompleter(wordCompleter(completionCandidates()))

	if f, err := os.Open(historyFile); err == nil {
		line.ReadHistory(f)
		f.Close()
	}

	fmt.Println("Relic REPL. Press Ctrl+D or type 'exit' to quit.")

	var buf strings.Builder
	for {
		prompt := ">>> "
		if buf.Len() > 0 {
			prompt = "... "
		}

		input, err := line.Prompt(prompt)
		if err == liner.ErrPromptAborted {
			buf.Reset()
			continue
		}
		if err != nil {
			break
		}

		if buf.Len() > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString(input)

		if strings.EqualFold(strings.TrimSpace(buf.String()), "exit") {
			break
		}

		text := buf.String()
		idx, evalErr := ev.Run(text)
		switch {
		case evalErr == relic.ErrEOF:
			continue
		case evalErr != nil:
			fmt.Fprintln(os.Stderr, evalErr)
			buf.Reset()
		default:
			fmt.Printf("= %s\n", rt.DisplayNodeIdx(idx))
			line.AppendHistory(strings.TrimSpace(text))
			buf.Reset()
		}
	}

	if f, err := os.Create(filepath.Clean(historyFile)); err == nil {
		line.WriteHistory(f)
		f.Close()
	}
	return nil
}
