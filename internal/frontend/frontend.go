// Package frontend runs one translation unit through the lexer, the parser
// and the declaration table. Every outer surface of znc goes through it.
package frontend

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/znc-lang/znc/internal/allocator"
	"github.com/znc-lang/znc/internal/ast"
	"github.com/znc-lang/znc/internal/config"
	"github.com/znc-lang/znc/internal/diagnostic"
	"github.com/znc-lang/znc/internal/lexer"
	"github.com/znc-lang/znc/internal/parser"
	"github.com/znc-lang/znc/internal/types"
)

// Options configures a translation unit. Zero values select package
// defaults; a nil Reporter discards diagnostics.
type Options struct {
	Reporter  diagnostic.Reporter
	BlockSize int
	Limit     int
	MaxDepth  int
}

// FromConfig builds options from the project configuration.
func FromConfig(cfg *config.Config, r diagnostic.Reporter) Options {
	return Options{
		Reporter:  r,
		BlockSize: cfg.Arena.BlockSize,
		Limit:     cfg.Arena.Limit,
		MaxDepth:  cfg.Parser.MaxDepth,
	}
}

func (o Options) reporter() diagnostic.Reporter {
	if o.Reporter == nil {
		return diagnostic.Discard
	}
	return o.Reporter
}

func (o Options) lexer(name, src string) (*lexer.Lexer, error) {
	opts := []lexer.Option{lexer.WithReporter(o.reporter())}
	if o.BlockSize > 0 {
		opts = append(opts, lexer.WithBlockSize(o.BlockSize))
	}
	if o.Limit > 0 {
		opts = append(opts, lexer.WithLimit(o.Limit))
	}
	return lexer.New(name, src, opts...)
}

func (o Options) arena() *ast.Arena {
	var opts []ast.Option
	if o.BlockSize > 0 {
		opts = append(opts, ast.WithBlockSize(o.BlockSize))
	}
	if o.Limit > 0 {
		opts = append(opts, ast.WithLimit(o.Limit))
	}
	return ast.NewArena(opts...)
}

// Unit is one parsed source file. Table is set only by Check.
type Unit struct {
	Name  string
	Lexer *lexer.Lexer
	Arena *ast.Arena
	Root  *ast.Root
	Table *types.Table
}

// Stats describes the work done for a unit.
type Stats struct {
	Tokens int
	Nodes  int
	Decls  int
	Cache  allocator.Stats
	Arena  allocator.Stats
}

// Stats returns token, node and memory counts of the unit.
func (u *Unit) Stats() Stats {
	s := Stats{
		Tokens: len(u.Lexer.Tokens()),
		Cache:  u.Lexer.Stats(),
		Arena:  u.Arena.Stats(),
	}
	if u.Root != nil {
		s.Nodes = ast.Count(u.Root)
		s.Decls = len(u.Root.Decls)
	}
	return s
}

// Release drops the unit's token cache, arena and table. It is nil-safe.
func (u *Unit) Release() {
	if u == nil {
		return
	}
	u.Table.Release()
	u.Arena.Release()
	u.Lexer.Release()
	u.Root, u.Table = nil, nil
}

// Tokenize lexes src to the end. On a lexical error the tokens up to and
// including the error token are returned together with the error.
func Tokenize(name, src string, opts Options) ([]*lexer.Token, error) {
	lex, err := opts.lexer(name, src)
	if err != nil {
		return nil, err
	}
	defer lex.Release()

	toks := lex.All()
	return toks, lex.Err()
}

// Parse lexes and parses src. On failure nothing is returned but the error,
// which has already been reported.
func Parse(name, src string, opts Options) (*Unit, error) {
	lex, err := opts.lexer(name, src)
	if err != nil {
		return nil, err
	}

	u := &Unit{Name: name, Lexer: lex, Arena: opts.arena()}

	var popts []parser.Option
	if opts.MaxDepth > 0 {
		popts = append(popts, parser.WithMaxDepth(opts.MaxDepth))
	}

	if u.Root, err = parser.New(lex, u.Arena, popts...).Parse(); err != nil {
		u.Release()
		return nil, err
	}

	return u, nil
}

// Check parses src and builds its declaration table, then verifies every
// named type. Semantic errors are reported like syntax errors.
func Check(name, src string, opts Options) (*Unit, error) {
	u, err := Parse(name, src, opts)
	if err != nil {
		return nil, err
	}

	if u.Table, err = types.Build(u.Root); err == nil {
		err = u.Table.Verify()
	}
	if err != nil {
		var de *diagnostic.Error
		if errors.As(err, &de) {
			opts.reporter().Report(de)
		}
		u.Release()
		return nil, err
	}

	return u, nil
}

// CheckFile reads path and checks it.
func CheckFile(path string, opts Options) (*Unit, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return Check(path, string(src), opts)
}

// Result is the outcome of checking one file.
type Result struct {
	Path string
	Unit *Unit
	Err  error
}

// CheckFiles checks every path with at most workers files in flight
// (workers <= 0 means one per CPU). Each file gets its own lexer and arena;
// a failing file does not stop the others. Results keep the order of paths.
// The returned error is only set when ctx is cancelled.
func CheckFiles(ctx context.Context, paths []string, opts Options, workers int) ([]Result, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make([]Result, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, path := range paths {
		i, path := i, path

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			u, err := CheckFile(path, opts)
			results[i] = Result{Path: path, Unit: u, Err: err}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		for _, r := range results {
			r.Unit.Release()
		}
		return nil, err
	}

	return results, nil
}

// Failed returns the number of results with an error.
func Failed(results []Result) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}
