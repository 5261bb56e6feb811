package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/chazu/kindling/companion"
	"github.com/chazu/kindling/compiler"
	"github.com/chazu/kindling/dist"
	"github.com/chazu/kindling/history"
)

// runSend handles `kindling send`.
// Usage:
//
//	kindling send [-addr url] [-protocol nbt|template] [-pace 100ms] [files...]
//	kindling send -bundle out.kbundle
func runSend(ctx context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("send", flag.ContinueOnError)
	addr := fs.String("addr", "", "Companion websocket address (default "+companion.DefaultAddr+")")
	proto := fs.String("protocol", "", "Envelope protocol: nbt or template")
	pace := fs.Duration("pace", -1, "Delay between lines")
	bundlePath := fs.String("bundle", "", "Deliver a previously written bundle instead of compiling")
	if err := fs.Parse(args); err != nil {
		return err
	}

	opts, target, err := companionOptions(e, *addr, *proto, *pace)
	if err != nil {
		return err
	}

	var batches [][]compiler.Artifact
	if *bundlePath != "" {
		b, err := dist.ReadFile(*bundlePath)
		if err != nil {
			return err
		}
		batches = append(batches, b.Artifacts())
	} else {
		progs, err := loadPrograms(e, fs.Args())
		if err != nil {
			return err
		}
		for _, np := range progs {
			arts, err := np.Program.Artifacts()
			if err != nil {
				return fmt.Errorf("%s: %w", np.Path, err)
			}
			batches = append(batches, arts)
		}
	}

	store, err := openHistory(e)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	// One connection per program.
	for _, arts := range batches {
		receipts, err := companion.DeliverArtifacts(ctx, target, arts, opts...)
		if store != nil && len(receipts) > 0 {
			delivered := make([]compiler.Artifact, len(receipts))
			for i, r := range receipts {
				delivered[i] = r.Artifact
			}
			if _, rerr := store.Record(ctx, history.ViaCompanion, receipts[0].DeliveryID, delivered); rerr != nil {
				log.Errorf("recording history: %s", rerr)
			}
		}
		for _, r := range receipts {
			fmt.Fprintf(e.stdout, "sent %s\n", r.Artifact.Name)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// companionOptions merges command-line flags over manifest settings.
func companionOptions(e *env, addr, proto string, pace time.Duration) ([]companion.Option, string, error) {
	if e.manifest != nil {
		if addr == "" {
			addr = e.manifest.Companion.Addr
		}
		if proto == "" {
			proto = e.manifest.Companion.Protocol
		}
		if pace < 0 {
			d, err := e.manifest.PaceDuration()
			if err != nil {
				return nil, "", err
			}
			pace = d
		}
	}
	if addr == "" {
		addr = companion.DefaultAddr
	}
	p, err := companion.ParseProtocol(proto)
	if err != nil {
		return nil, "", err
	}
	opts := []companion.Option{companion.WithProtocol(p)}
	if pace > 0 {
		opts = append(opts, companion.WithPace(pace))
	}
	return opts, addr, nil
}

// runBundle handles `kindling bundle [-o path] [files...]`. Each program
// is written to its own bundle; with several programs the output path gets
// an index suffix.
func runBundle(ctx context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("bundle", flag.ContinueOnError)
	out := fs.String("o", "", "Output path (default from [output].bundle)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	path := *out
	if path == "" && e.manifest != nil {
		path = e.manifest.BundlePath()
	}
	if path == "" {
		return fmt.Errorf("bundle: no output path (use -o or [output].bundle)")
	}

	progs, err := loadPrograms(e, fs.Args())
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

	for i, np := range progs {
		b, err := dist.NewBundle(np.Program)
		if err != nil {
			return fmt.Errorf("%s: %w", np.Path, err)
		}
		target := path
		if len(progs) > 1 {
			target = fmt.Sprintf("%s.%d", path, i)
		}
		if err := dist.WriteFile(target, b); err != nil {
			return err
		}
		fmt.Fprintf(e.stdout, "%s: %d line(s) root %x\n", target, len(b.Chunks), b.Root[:8])
		if store != nil {
			if _, err := store.Record(ctx, history.ViaBundle, "", b.Artifacts()); err != nil {
				return err
			}
		}
	}
	return nil
}

// runHistory handles `kindling history [-n 20]`.
func runHistory(ctx context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	n := fs.Int("n", 20, "Number of records to show")
	if err := fs.Parse(args); err != nil {
		return err
	}
	store, err := openHistory(e)
	if err != nil {
		return err
	}
	if store == nil {
		return fmt.Errorf("history: not configured (set [output].history)")
	}
	defer store.Close()

	recs, err := store.Recent(ctx, *n)
	if err != nil {
		return err
	}
	for _, r := range recs {
		fmt.Fprintf(e.stdout, "%s  %-9s %s  %s (%s)\n",
			r.CreatedAt.Local().Format(time.DateTime), r.Via, r.Hash[:12], r.Name, r.Author)
	}
	return nil
}
