package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
	"golang.org/x/term"

	"nickandperla.net/pygen/internal/config"
	"nickandperla.net/pygen/internal/diag"
	"nickandperla.net/pygen/pkg/pygen"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fl := flag.NewFlagSet("pygen", flag.ContinueOnError)
	var (
		file        = fl.String("f", "", "program file to run")
		evalLine    = fl.String("e", "", "line to run")
		dbPath      = fl.String("db", "", "SQLite database for sessions and run history")
		session     = fl.String("session", "", "session name")
		persistMode = fl.String("persist-mode", "", "persistence mode: on_demand, always, never")
		nested      = fl.Bool("nested", false, "track nested constructs of the same kind")
		colorMode   = fl.String("color", "", "diagnostic color: auto, always, never")
		logLevel    = fl.String("log-level", "", "trace log level (trace, debug, info, disabled)")
		configPath  = fl.String("config", "", "config file (default ~/.pygen/config.yaml)")
		history     = fl.Bool("history", false, "list recent runs and exit")
	)
	fl.Usage = func() {
		fmt.Fprintf(fl.Output(), "usage: pygen [flags] [file]\n")
		fl.PrintDefaults()
	}
	if err := fl.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 1
	}
	if *file == "" && fl.NArg() > 0 {
		*file = fl.Arg(0)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	// Flags given on the command line win over the config file.
	set := make(map[string]bool)
	fl.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["db"] {
		cfg.Database = *dbPath
	}
	if set["session"] {
		cfg.Session = *session
	}
	if set["persist-mode"] {
		cfg.PersistMode = *persistMode
	}
	if set["nested"] {
		cfg.NestedBlocks = *nested
	}
	if set["color"] {
		cfg.Color = *colorMode
	}
	if set["log-level"] {
		cfg.LogLevel = *logLevel
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	level, err := cfg.Level()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	color := useColor(cfg.Color, os.Stderr)
	logger := zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		NoColor:    !color,
		TimeFormat: time.TimeOnly,
	}).Level(level).With().Timestamp().Logger()

	stdinReader := bufio.NewReader(os.Stdin)

	opts := []pygen.Option{
		pygen.WithSession(cfg.Session),
		pygen.WithNestedBlocks(cfg.NestedBlocks),
		pygen.WithLogger(logger),
		pygen.WithReporter(diag.NewWriter(os.Stderr, color)),
		pygen.WithOutput(os.Stdout),
		pygen.WithInputReader(promptReader(stdinReader, os.Stdout)),
		pygen.WithPrelude(cfg.Prelude),
	}
	if cfg.Database != "" {
		opts = append(opts, pygen.WithSQLiteStore(cfg.Database))
	}
	if cfg.PersistMode != "" {
		mode, ok := pygen.ParsePersistMode(cfg.PersistMode)
		if !ok {
			fmt.Fprintf(os.Stderr, "Error: invalid persist mode %q\n", cfg.PersistMode)
			return 1
		}
		opts = append(opts, pygen.WithPersistMode(mode))
	}

	rt, err := pygen.New(opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer rt.Close()

	if *history {
		runs, err := rt.History(cfg.HistoryLimit)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		printHistory(os.Stdout, runs, time.Now())
		return 0
	}

	if *file != "" {
		if !reportRun(os.Stderr, *file, rt.RunFile(*file)) {
			return 0
		}
	}

	if *evalLine != "" {
		if err := rt.RunReader("<eval>", strings.NewReader(*evalLine)); err != nil {
			fmt.Fprintf(os.Stderr, "Unexpected error: %v\n", err)
		}
	}

	if *file != "" || *evalLine != "" {
		return 0
	}

	if !isTerminal(os.Stdin) {
		// The program itself comes from stdin, so INPUT sees end of file.
		rt.SetInputReader(func(string) (string, error) { return "", pygen.ErrInputCancelled })
		if err := rt.RunReader("<stdin>", stdinReader); err != nil {
			fmt.Fprintf(os.Stderr, "Unexpected error: %v\n", err)
		}
		return 0
	}

	runREPL(rt, cfg, color)
	return 0
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			// No home directory: run on defaults.
			return config.Default(), nil
		}
		path = p
	}
	return config.Load(path)
}

// reportRun prints the outcome of running path to w. It returns false when
// the file could not be run.
func reportRun(w io.Writer, path string, err error) bool {
	switch {
	case err == nil:
		return true
	case errors.Is(err, fs.ErrNotExist):
		fmt.Fprintf(w, "%s Not Found\n", path)
	default:
		fmt.Fprintf(w, "Unexpected error: %v\n", err)
	}
	return false
}

// promptReader reads INPUT values line by line, prompting with "name = ".
// End of input cancels.
func promptReader(in *bufio.Reader, out io.Writer) func(string) (string, error) {
	return func(label string) (string, error) {
		fmt.Fprintf(out, "%s = ", label)
		line, err := in.ReadString('\n')
		if err == io.EOF && line == "" {
			fmt.Fprintln(out)
			return "", pygen.ErrInputCancelled
		}
		if err != nil && err != io.EOF {
			return "", err
		}
		return strings.TrimRight(line, "\r\n"), nil
	}
}

// useColor resolves the color setting for f.
func useColor(mode string, f *os.File) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	if os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// isTerminal returns true if f is a terminal (not piped).
func isTerminal(f *os.File) bool {
	stat, err := f.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}

func printHistory(w io.Writer, runs []pygen.RunEntry, now time.Time) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "no runs recorded")
		return
	}
	for _, r := range runs {
		fmt.Fprintf(w, "%s  %-14s  %-20s  %s lines  %d diagnostics  %v\n",
			shortID(r.ID),
			humanize.RelTime(r.Started, now, "ago", "from now"),
			r.Program,
			humanize.Comma(int64(r.Lines)),
			r.Diagnostics,
			r.Duration().Round(time.Microsecond),
		)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
