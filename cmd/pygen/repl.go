package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/kballard/go-shellquote"
	"golang.org/x/term"

	"nickandperla.net/pygen/internal/config"
	"nickandperla.net/pygen/internal/diag"
	"nickandperla.net/pygen/internal/scanner"
	"nickandperla.net/pygen/internal/stdlib"
	"nickandperla.net/pygen/internal/token"
	"nickandperla.net/pygen/pkg/pygen"
)

const (
	promptMain = ">>> "
	promptMore = "... "
)

func printBanner(w io.Writer) {
	fmt.Fprintln(w, "pygen REPL")
	fmt.Fprintln(w, "Type :help for the language primer, :quit to exit.")
	fmt.Fprintln(w)
}

// runREPL starts an interactive session, with line editing when stdin is a
// terminal that can be put in raw mode.
func runREPL(rt *pygen.Runtime, cfg *config.Config, color bool) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		runBasicREPL(rt, cfg)
		return
	}
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		runBasicREPL(rt, cfg)
		return
	}
	defer term.Restore(fd, oldState)

	screen := struct {
		io.Reader
		io.Writer
	}{os.Stdin, os.Stdout}
	t := term.NewTerminal(screen, promptMain)
	if w, h, err := term.GetSize(fd); err == nil {
		t.SetSize(w, h)
	}

	// The terminal translates "\n" to "\r\n" while in raw mode.
	rt.SetOutput(t)
	rt.SetReporter(diag.NewWriter(t, color))
	rt.SetInputReader(func(label string) (string, error) {
		t.SetPrompt(label + " = ")
		line, err := t.ReadLine()
		if err == io.EOF {
			return "", pygen.ErrInputCancelled
		}
		return line, err
	})

	r := newREPL(rt, t, cfg.HistoryLimit)
	printBanner(t)
	for {
		t.SetPrompt(r.prompt())
		line, err := t.ReadLine()
		if err != nil {
			fmt.Fprintln(t)
			return
		}
		if !r.handle(line) {
			return
		}
	}
}

// runBasicREPL reads lines without editing.
func runBasicREPL(rt *pygen.Runtime, cfg *config.Config) {
	in := bufio.NewScanner(os.Stdin)
	rt.SetInputReader(func(label string) (string, error) {
		fmt.Printf("%s = ", label)
		if !in.Scan() {
			fmt.Println()
			return "", pygen.ErrInputCancelled
		}
		return in.Text(), nil
	})

	r := newREPL(rt, os.Stdout, cfg.HistoryLimit)
	printBanner(os.Stdout)
	for {
		fmt.Print(r.prompt())
		if !in.Scan() {
			fmt.Println()
			return
		}
		if !r.handle(in.Text()) {
			return
		}
	}
}

// repl holds the state of an interactive session apart from the terminal:
// the construct being typed and the meta-commands.
type repl struct {
	rt      *pygen.Runtime
	out     io.Writer
	limit   int
	pending []string
	depth   int
}

func newREPL(rt *pygen.Runtime, out io.Writer, historyLimit int) *repl {
	return &repl{rt: rt, out: out, limit: historyLimit}
}

func (r *repl) prompt() string {
	if len(r.pending) > 0 {
		return promptMore
	}
	return promptMain
}

// handle processes one input line. It returns false when the session ends.
func (r *repl) handle(line string) bool {
	trimmed := strings.TrimSpace(line)
	if strings.HasPrefix(trimmed, ":") {
		return r.meta(trimmed[1:])
	}
	if len(r.pending) == 0 && trimmed == "" {
		return true
	}

	r.pending = append(r.pending, line)
	r.depth += depthChange(trimmed)
	if r.depth > 0 {
		return true
	}

	src := strings.Join(r.pending, "\n")
	r.pending = nil
	r.depth = 0
	if err := r.rt.Eval(src); err != nil {
		fmt.Fprintf(r.out, "error: %v\n", err)
	}
	return true
}

// depthChange returns +1 for a line opening a construct, -1 for a line
// closing one and 0 otherwise.
func depthChange(line string) int {
	if line == "" || strings.HasPrefix(line, token.CommentPrefix) {
		return 0
	}
	parts := scanner.Tokenize(line)
	if len(parts) == 0 {
		return 0
	}
	switch {
	case token.Opens(parts[0]):
		return 1
	case token.Opener(parts[0]) != "":
		return -1
	}
	return 0
}

func (r *repl) meta(cmdline string) bool {
	args, err := shellquote.Split(cmdline)
	if err != nil {
		fmt.Fprintf(r.out, "error: %v\n", err)
		return true
	}
	if len(args) == 0 {
		fmt.Fprintln(r.out, "missing command after ':' (try :help)")
		return true
	}

	switch strings.ToLower(args[0]) {
	case "help", "h":
		if len(args) > 1 && args[1] == "full" {
			fmt.Fprint(r.out, stdlib.Primer)
		} else {
			fmt.Fprint(r.out, stdlib.PrimerCompact)
		}
	case "vars":
		r.printVars()
	case "save":
		r.persist("saved", r.rt.Save)
	case "load":
		r.persist("loaded", r.rt.Load)
	case "sessions":
		r.printSessions()
	case "reset":
		r.rt.Reset()
		fmt.Fprintln(r.out, "variables cleared")
	case "cancel":
		r.pending = nil
		r.depth = 0
	case "run":
		if len(args) != 2 {
			fmt.Fprintln(r.out, "usage: :run FILE")
			return true
		}
		reportRun(r.out, args[1], r.rt.RunFile(args[1]))
	case "history":
		limit := r.limit
		if len(args) > 1 {
			n, err := strconv.Atoi(args[1])
			if err != nil || n < 0 {
				fmt.Fprintf(r.out, "invalid count %q\n", args[1])
				return true
			}
			limit = n
		}
		runs, err := r.rt.History(limit)
		if err != nil {
			fmt.Fprintf(r.out, "error: %v\n", err)
			return true
		}
		printHistory(r.out, runs, time.Now())
	case "quit", "exit", "q":
		return false
	default:
		fmt.Fprintf(r.out, "unknown command :%s (try :help)\n", args[0])
	}
	return true
}

func (r *repl) printVars() {
	names := r.rt.Names()
	if len(names) == 0 {
		fmt.Fprintln(r.out, "no variables")
		return
	}
	vars := r.rt.Variables()
	for _, name := range names {
		v := vars[name]
		fmt.Fprintf(r.out, "%s = %s (%s)\n", name, v, v.Kind())
	}
}

func (r *repl) printSessions() {
	names, err := r.rt.Sessions()
	if err != nil {
		fmt.Fprintf(r.out, "error: %v\n", err)
		return
	}
	if len(names) == 0 {
		fmt.Fprintln(r.out, "no saved sessions")
		return
	}
	for _, name := range names {
		mark := " "
		if name == r.rt.Session() {
			mark = "*"
		}
		fmt.Fprintf(r.out, "%s %s\n", mark, name)
	}
}

func (r *repl) persist(done string, op func() error) {
	if r.rt.PersistMode() == pygen.PersistNever {
		fmt.Fprintln(r.out, "persistence is off (persist mode never)")
		return
	}
	err := op()
	switch {
	case errors.Is(err, pygen.ErrNoStore):
		fmt.Fprintln(r.out, "no database configured (use -db)")
	case err != nil:
		fmt.Fprintf(r.out, "error: %v\n", err)
	default:
		fmt.Fprintf(r.out, "%s session %s\n", done, r.rt.Session())
	}
}
