// Command dne compiles and runs one or more IR source files (§6 "CLI").
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Verdex/dne"
	"github.com/Verdex/dne/internal/logio"
)

const entryProc = "main"

func main() {
	var (
		heapLimit uint
		timeout   time.Duration
		trace     bool
		dump      bool
	)
	flag.UintVar(&heapLimit, "heap-limit", 0, "cap the number of live heap cells")
	flag.DurationVar(&timeout, "timeout", 0, "specify a time limit")
	flag.BoolVar(&trace, "trace", false, "enable trace logging")
	flag.BoolVar(&dump, "dump", false, "print a VM dump after execution")
	flag.Parse()

	log := logio.Logger{}
	log.SetOutput(os.Stderr)
	defer os.Exit(log.ExitCode())

	args := flag.Args()
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: dne file+")
		log.Errorf("no input files given")
		return
	}

	sources, err := readSources(args)
	if err != nil {
		log.ErrorIf(err)
		return
	}

	cp, err := dne.Compile(sources...)
	if err != nil {
		log.ErrorIf(err)
		return
	}

	var opts []dne.VMOption
	if trace {
		opts = append(opts, dne.WithLogf(log.Leveledf("TRACE")))
	}
	if heapLimit != 0 {
		opts = append(opts, dne.WithHeapLimit(heapLimit))
	}
	vm := dne.New(cp, opts...)

	if dump {
		lw := &logio.Writer{Logf: log.Leveledf("DUMP")}
		defer lw.Close()
		defer dne.Dump(vm, lw)
	}

	ctx := context.Background()
	if timeout != 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	result, err := dne.Run(ctx, vm, entryProc)
	if err != nil {
		log.ErrorIf(err)
		return
	}
	fmt.Println(cp.FormatValue(result))
}

// readSources reads each named file concurrently (order of completion
// doesn't matter; each result is stored at its argument's index, so the
// returned slice is in argument order), fanning per-file work out through
// golang.org/x/sync/errgroup.
func readSources(names []string) ([]dne.Source, error) {
	sources := make([]dne.Source, len(names))
	var g errgroup.Group
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			b, err := os.ReadFile(name)
			if err != nil {
				return err
			}
			sources[i] = dne.Source{Name: name, Text: string(b)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sources, nil
}
