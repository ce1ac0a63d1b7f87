// Command pygen-check reports structural problems in pygen programs
// without running them.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"

	"nickandperla.net/pygen/internal/check"
	"nickandperla.net/pygen/internal/config"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run returns 0 when every program is clean, 1 when problems were found
// and 2 when a program or the config could not be read.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fl := flag.NewFlagSet("pygen-check", flag.ContinueOnError)
	fl.SetOutput(stderr)
	nested := fl.Bool("nested", false, "check against nested block scanning")
	configPath := fl.String("config", "", "config file (default ~/.pygen/config.yaml)")
	fl.Usage = func() {
		fmt.Fprintf(fl.Output(), "usage: pygen-check [flags] [file...]\n")
		fl.PrintDefaults()
	}
	if err := fl.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	path := *configPath
	if path == "" {
		if p, err := config.DefaultPath(); err == nil {
			path = p
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	opts := []check.Option{check.WithNestedBlocks(cfg.NestedBlocks)}
	fl.Visit(func(f *flag.Flag) {
		if f.Name == "nested" {
			opts = append(opts, check.WithNestedBlocks(*nested))
		}
	})

	files := fl.Args()
	if len(files) == 0 {
		files = []string{"-"}
	}

	status := 0
	for _, name := range files {
		problems, err := checkFile(name, stdin, opts)
		if err != nil {
			fmt.Fprintf(stderr, "%s: %v\n", name, err)
			status = 2
			continue
		}
		for _, p := range problems {
			fmt.Fprintln(stdout, format(name, p))
		}
		if len(problems) > 0 && status == 0 {
			status = 1
		}
	}
	return status
}

func checkFile(name string, stdin io.Reader, opts []check.Option) ([]check.Problem, error) {
	var r io.Reader = stdin
	if name != "-" {
		f, err := os.Open(name)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	problems, err := check.Reader(r, opts...)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(problems, func(i, j int) bool { return problems[i].Line < problems[j].Line })
	return problems, nil
}

func format(name string, p check.Problem) string {
	if name == "-" {
		name = "<stdin>"
	}
	if p.Code == "" {
		return fmt.Sprintf("%s:%d: %s", name, p.Line, p.Message)
	}
	return fmt.Sprintf("%s:%d: %s %s", name, p.Line, p.Code, p.Message)
}
