package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	rlox "github.com/kukininj/rlox"
)

const (
	appName     = "rlox"
	historyFile = ".rlox_history"
	promptMain  = ">> "
	promptCont  = ".. "
)

var banner = fmt.Sprintf("rlox %s REPL\nCtrl+C cancels input, Ctrl+D exits.", rlox.Version)

func red(s string) string  { return "\x1b[31m" + s + "\x1b[0m" }
func blue(s string) string { return "\x1b[94m" + s + "\x1b[0m" }

func main() {
	if len(os.Args) < 2 {
		os.Exit(cmdRepl())
	}

	cmd := os.Args[1]
	switch cmd {
	case "run":
		os.Exit(cmdRun(os.Args[2:]))
	case "repl":
		os.Exit(cmdRepl())
	case "version":
		fmt.Println(rlox.Version)
	case "-h", "--help", "help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "%s: unknown command %q\n", appName, cmd)
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Printf(`rlox %s

Usage:
  %s                     Start the REPL.
  %s run <file.lox>      Run a script.
  %s repl                Start the REPL.
  %s version             Print the version.

`, rlox.Version, appName, appName, appName, appName)
}

// -----------------------------------------------------------------------------
// run
// -----------------------------------------------------------------------------

func cmdRun(args []string) int {
	if len(args) != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s run <file.lox>\n", appName)
		return 2
	}
	file := args[0]

	src, err := os.ReadFile(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: cannot read %s: %v\n", appName, file, err)
		return 1
	}

	ip := rlox.NewInterpreter()
	if _, err := ip.Run(string(src)); err != nil {
		fmt.Fprintln(os.Stderr, red(rlox.WrapErrorWithName(err, file, string(src)).Error()))
		return 1
	}
	return 0
}

// -----------------------------------------------------------------------------
// repl
// -----------------------------------------------------------------------------

func cmdRepl() int {
	fmt.Println(banner)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	ip := rlox.NewInterpreter()

	for {
		src, ok := readChunk(ln)
		if !ok {
			fmt.Println()
			return 0
		}
		if strings.TrimSpace(src) == "" {
			continue
		}
		ln.AppendHistory(src)

		res, err := ip.Run(src)
		if err != nil {
			fmt.Println(red(rlox.WrapErrorWithName(err, "<repl>", src).Error()))
			continue
		}
		if res.Returned {
			fmt.Println(blue(rlox.FormatValue(res.Value)))
		}
	}
}

// readChunk reads one logical input: a first line, plus continuation lines
// for as long as the parser reports it ran out of tokens mid-statement.
// Returns ok=false on EOF (Ctrl+D).
func readChunk(ln *liner.State) (string, bool) {
	line, err := ln.Prompt(promptMain)
	if err == liner.ErrPromptAborted {
		return "", true
	}
	if err != nil {
		return "", false
	}

	buf := line
	for incomplete(buf) {
		next, err := ln.Prompt(promptCont)
		if err != nil {
			// Abort the continuation, keep the REPL alive.
			return "", true
		}
		buf += "\n" + next
	}
	return buf, true
}

// incomplete reports whether src parses up to an unexpected end of input,
// the cue to prompt for another line instead of reporting an error.
func incomplete(src string) bool {
	tokens, err := rlox.ScanTokens(src)
	if err != nil {
		return false
	}
	_, err = rlox.Parse(tokens)
	if perr, ok := err.(*rlox.ParseError); ok {
		return perr.Incomplete
	}
	return false
}
