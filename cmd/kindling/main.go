// Kindling CLI - compiles code-block programs into templates and delivers them
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/tliron/commonlog"

	"github.com/chazu/kindling/compiler"
	"github.com/chazu/kindling/history"
	"github.com/chazu/kindling/manifest"

	_ "github.com/tliron/commonlog/simple"
)

var log = commonlog.GetLogger("kindling")

// env carries what every subcommand needs.
type env struct {
	manifest   *manifest.Manifest // nil without a kindling.toml
	permissive bool
	stdout     io.Writer
}

func main() {
	verbose := flag.Int("v", 0, "Log verbosity (0 = errors only)")
	dir := flag.String("C", ".", "Look for kindling.toml starting in this directory")
	permissive := flag.Bool("permissive", false, "Skip bracket validation before compiling")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: kindling [options] <command> [args...]\n\n")
		fmt.Fprintf(os.Stderr, "Compiles program descriptions (*.toml) into code templates.\n\n")
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  compile [files...]   Print one /give command per code line\n")
		fmt.Fprintf(os.Stderr, "  json [files...]      Print the block-list JSON of each code line\n")
		fmt.Fprintf(os.Stderr, "  check [files...]     Validate bracket structure\n")
		fmt.Fprintf(os.Stderr, "  send [files...]      Deliver to the companion process\n")
		fmt.Fprintf(os.Stderr, "  bundle [files...]    Write a compiled bundle\n")
		fmt.Fprintf(os.Stderr, "  history              Show recently emitted artifacts\n")
		fmt.Fprintf(os.Stderr, "\nWithout files, programs are loaded from the manifest's source dirs.\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	commonlog.Configure(*verbose, nil)

	m, err := manifest.FindAndLoad(*dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	e := &env{manifest: m, permissive: *permissive, stdout: os.Stdout}
	if m != nil {
		e.permissive = e.permissive || m.Compile.Permissive
		log.Debugf("using manifest %s", m.Dir)
	}

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch args[0] {
	case "compile":
		err = runCompile(ctx, e, args[1:])
	case "json":
		err = runJSON(e, args[1:])
	case "check":
		err = runCheck(e, args[1:])
	case "send":
		err = runSend(ctx, e, args[1:])
	case "bundle":
		err = runBundle(ctx, e, args[1:])
	case "history":
		err = runHistory(ctx, e, args[1:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", args[0])
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadPrograms loads the named files, or the manifest's programs when no
// files are given. Programs are validated unless the env is permissive.
func loadPrograms(e *env, files []string) ([]manifest.NamedProgram, error) {
	var progs []manifest.NamedProgram
	if len(files) > 0 {
		for _, f := range files {
			p, err := manifest.LoadProgram(f)
			if err != nil {
				return nil, err
			}
			if p.Owner == "" && e.manifest != nil {
				p.Owner = e.manifest.Project.Owner
			}
			progs = append(progs, manifest.NamedProgram{Path: f, Program: p})
		}
	} else {
		if e.manifest == nil {
			return nil, fmt.Errorf("no program files given and no %s found", manifest.FileName)
		}
		var err error
		if progs, err = e.manifest.LoadPrograms(); err != nil {
			return nil, err
		}
	}

	if !e.permissive {
		for _, np := range progs {
			if err := np.Program.Validate(); err != nil {
				return nil, fmt.Errorf("%s: %w", np.Path, err)
			}
		}
	}
	log.Debugf("loaded %d program(s)", len(progs))
	return progs, nil
}

// openHistory opens the manifest's history database, or returns nil when
// history is not configured.
func openHistory(e *env) (*history.Store, error) {
	if e.manifest == nil || e.manifest.HistoryPath() == "" {
		return nil, nil
	}
	return history.Open(e.manifest.HistoryPath())
}

func runCompile(ctx context.Context, e *env, files []string) error {
	progs, err := loadPrograms(e, files)
	if err != nil {
		return err
	}
	store, err := openHistory(e)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	for _, np := range progs {
		arts, err := np.Program.Artifacts()
		if err != nil {
			return fmt.Errorf("%s: %w", np.Path, err)
		}
		for _, a := range arts {
			fmt.Fprintln(e.stdout, a.GiveCommand())
		}
		if store != nil {
			if _, err := store.Record(ctx, history.ViaCommand, "", arts); err != nil {
				return err
			}
		}
	}
	return nil
}

func runJSON(e *env, files []string) error {
	progs, err := loadPrograms(e, files)
	if err != nil {
		return err
	}
	for _, np := range progs {
		for i, l := range np.Program.Lines {
			data, err := compiler.SerializeLine(l)
			if err != nil {
				return fmt.Errorf("%s: line %d: %w", np.Path, i, err)
			}
			fmt.Fprintf(e.stdout, "%s\n", data)
		}
	}
	return nil
}

func runCheck(e *env, files []string) error {
	// Always validate, whatever the permissive setting.
	strict := *e
	strict.permissive = false
	progs, err := loadPrograms(&strict, files)
	if err != nil {
		return err
	}
	lines := 0
	for _, np := range progs {
		lines += len(np.Program.Lines)
	}
	fmt.Fprintf(e.stdout, "%d program(s), %d line(s) OK\n", len(progs), lines)
	return nil
}
