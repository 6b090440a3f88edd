package dne

import (
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/Verdex/dne/internal/ast"
	"github.com/Verdex/dne/internal/parser"
)

// Source is one named unit of program text. Each source is parsed on its
// own; the parsed programs are then concatenated in argument order (§6 "each
// file is parsed ... concatenated in argument order").
type Source struct {
	Name string
	Text string
}

// Compile parses each source in order, concatenates their programs, and
// lowers the result into a CompiledProgram ready for New/Run.
func Compile(sources ...Source) (*CompiledProgram, error) {
	prog, err := ParseAll(sources...)
	if err != nil {
		return nil, err
	}
	return Lower(prog)
}

// ParseAll lexes and parses each source concurrently (a file has no
// cross-file dependency prior to concatenation, per §6's "each file is
// parsed ... concatenated in argument order" contract) and concatenates the
// resulting programs' Globals and Procs back into argument order.
func ParseAll(sources ...Source) (*ast.Program, error) {
	parsed := make([]*ast.Program, len(sources))

	var g errgroup.Group
	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			p, err := parser.Parse(src.Name, src.Text)
			if err != nil {
				return fmt.Errorf("%s: %w", src.Name, err)
			}
			parsed[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &ast.Program{}
	for _, p := range parsed {
		out.Globals = append(out.Globals, p.Globals...)
		out.Procs = append(out.Procs, p.Procs...)
	}
	return out, nil
}
