// Command gen_opdoc reads op.go's OpCode const block and emits a generated
// Go source file mapping each OpCode to its one-line doc comment (the
// comment above it, or else its trailing line comment), for use by dump.go and any future -trace formatting that
// wants a human-readable opcode description instead of just its name.
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"io"
	"log"
	"os"
	"os/exec"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

var (
	in  = flag.String("in", "op.go", "source file to read the OpCode const block from")
	out = flag.String("out", "opdoc_generated.go", "output file for the generated map")
)

func main() {
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	eg, ctx := errgroup.WithContext(ctx)

	outFile, err := os.Create(*out)
	if err != nil {
		log.Fatalf("failed to create %v: %v", *out, err)
	}

	var body string
	ready := make(chan struct{})

	eg.Go(func() error {
		entries, err := parseOpCodeDocs(*in)
		if err != nil {
			return fmt.Errorf("parse %v: %w", *in, err)
		}
		body = renderBody(entries)
		close(ready)
		return nil
	})

	eg.Go(func() (rerr error) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ready:
		}

		defer func() {
			if cerr := outFile.Close(); rerr == nil {
				rerr = cerr
			}
		}()

		gofmt := exec.CommandContext(ctx, "gofmt")
		gofmt.Stdin = strings.NewReader(body)
		var buf bytes.Buffer
		gofmt.Stdout = &buf
		gofmt.Stderr = os.Stderr
		if err := gofmt.Run(); err != nil {
			return fmt.Errorf("gofmt run failed: %w", err)
		}
		_, err := io.Copy(outFile, &buf)
		return err
	})

	if err := eg.Wait(); err != nil {
		log.Fatal(err)
	}
}

type opDocEntry struct {
	name string
	doc  string
}

// parseOpCodeDocs walks the OpCode const block in src and pairs each
// identifier with the doc comment (if any) immediately above its line, or,
// failing that, its trailing line comment. A const group's own doc comment
// is not used.
func parseOpCodeDocs(src string) ([]opDocEntry, error) {
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, src, nil, parser.ParseComments)
	if err != nil {
		return nil, err
	}

	var entries []opDocEntry
	for _, decl := range f.Decls {
		gd, ok := decl.(*ast.GenDecl)
		if !ok || gd.Tok != token.CONST {
			continue
		}
		for _, spec := range gd.Specs {
			vs, ok := spec.(*ast.ValueSpec)
			if !ok {
				continue
			}
			for _, name := range vs.Names {
				if !strings.HasPrefix(name.Name, "Op") {
					continue
				}
				doc := strings.TrimSpace(vs.Doc.Text())
				if doc == "" {
					doc = strings.TrimSpace(vs.Comment.Text())
				}
				entries = append(entries, opDocEntry{name: name.Name, doc: doc})
			}
		}
	}
	return entries, nil
}

func renderBody(entries []opDocEntry) string {
	var b strings.Builder
	b.WriteString("// Code generated by scripts/gen_opdoc.go. DO NOT EDIT.\n\n")
	b.WriteString("package dne\n\n")
	b.WriteString("var opDocs = map[OpCode]string{\n")
	for _, e := range entries {
		doc := e.doc
		if doc == "" {
			doc = e.name
		}
		fmt.Fprintf(&b, "\t%s: %q,\n", e.name, doc)
	}
	b.WriteString("}\n")
	return b.String()
}
