package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/peterh/liner"

	"github.com/znc-lang/znc/internal/ast"
	"github.com/znc-lang/znc/internal/cli"
	"github.com/znc-lang/znc/internal/diagnostic"
	"github.com/znc-lang/znc/internal/frontend"
	"github.com/znc-lang/znc/internal/lexer"
	"github.com/znc-lang/znc/internal/parser"
	"github.com/znc-lang/znc/internal/token"
)

const (
	historyFile = ".znc_history"
	promptMain  = "znc> "
	promptCont  = "...  "
	replName    = "<repl>"
)

// session holds the declarations accepted so far. Declarations are checked
// together with the earlier ones so that they can refer to them.
type session struct {
	opts  frontend.Options
	decls []string
	count int
}

func newSession(opts frontend.Options) *session {
	opts.Reporter = diagnostic.Discard
	return &session{opts: opts}
}

// eval parses src as declarations, a statement or an expression and returns
// its printed form.
func (s *session) eval(src string) (string, error) {
	switch firstWord(src) {
	case "function", "enum", "type":
		return s.declare(src)
	case "let", "if", "while", "return", "else":
		return s.statement(src)
	}
	if strings.HasPrefix(strings.TrimSpace(src), "{") || strings.HasSuffix(strings.TrimSpace(src), ";") {
		return s.statement(src)
	}
	return s.expression(src)
}

func firstWord(src string) string {
	src = strings.TrimSpace(src)
	end := strings.IndexFunc(src, func(r rune) bool {
		return !(r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9')
	})
	if end < 0 {
		return src
	}
	return src[:end]
}

func (s *session) declare(src string) (string, error) {
	full := strings.Join(append(s.decls[:len(s.decls):len(s.decls)], src), "\n")

	u, err := frontend.Check(replName, full, s.opts)
	if err != nil {
		return "", err
	}
	defer u.Release()

	var b strings.Builder
	for _, d := range u.Root.Decls[s.count:] {
		b.WriteString(d.String())
		b.WriteByte('\n')
		if e, ok := u.Table.Lookup(d.DeclName()); ok {
			fmt.Fprintf(&b, ":: %s\n", e)
		}
	}

	s.decls = append(s.decls, src)
	s.count = len(u.Root.Decls)
	return strings.TrimSuffix(b.String(), "\n"), nil
}

// fragment parses src with fn and requires it to use up the input.
func (s *session) fragment(src string, fn func(*parser.Parser) (ast.Node, error)) (string, error) {
	var lopts []lexer.Option
	lopts = append(lopts, lexer.WithReporter(s.opts.Reporter))
	if s.opts.Limit > 0 {
		lopts = append(lopts, lexer.WithLimit(s.opts.Limit))
	}
	lex, err := lexer.New(replName, src, lopts...)
	if err != nil {
		return "", err
	}
	defer lex.Release()

	var aopts []ast.Option
	if s.opts.Limit > 0 {
		aopts = append(aopts, ast.WithLimit(s.opts.Limit))
	}
	arena := ast.NewArena(aopts...)
	defer arena.Release()

	var popts []parser.Option
	if s.opts.MaxDepth > 0 {
		popts = append(popts, parser.WithMaxDepth(s.opts.MaxDepth))
	}

	node, err := fn(parser.New(lex, arena, popts...))
	if err != nil {
		return "", err
	}

	if tok := lex.Peek(1); tok.Kind != token.EOF {
		if err := lex.Err(); err != nil {
			return "", err
		}
		return "", tok.Errorf(diagnostic.Syntax, "expected end of input, got %s '%s'", tok.Kind, tok.Text)
	}

	return node.String(), nil
}

func (s *session) statement(src string) (string, error) {
	return s.fragment(src, func(p *parser.Parser) (ast.Node, error) {
		return p.ParseStatement()
	})
}

func (s *session) expression(src string) (string, error) {
	return s.fragment(src, func(p *parser.Parser) (ast.Node, error) {
		return p.ParseExpr()
	})
}

// table prints the signatures declared so far.
func (s *session) table() (string, error) {
	if len(s.decls) == 0 {
		return "", nil
	}
	u, err := frontend.Check(replName, strings.Join(s.decls, "\n"), s.opts)
	if err != nil {
		return "", err
	}
	defer u.Release()
	return u.Table.String(), nil
}

func (s *session) reset() {
	s.decls, s.count = nil, 0
}

const replHelp = `Enter a declaration, a statement or an expression to see its syntax tree.
Declarations are kept for the rest of the session.

  :decls   Show the declared signatures
  :reset   Forget all declarations
  :help    Show this help
  :quit    Exit
`

func cmdRepl(e *env, args []string) int {
	fs := flags(e, "repl")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}

	info := cli.GetVersionInfo()
	fmt.Fprintf(e.out, "znc %s. Type :help for help, :quit to exit.\n", info.Version)

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

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGTERM)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		ln.Close()
		os.Exit(130)
	}()

	s := newSession(e.options(nil))
	printer := e.printer()

	for {
		in, ok := read(ln, s)
		if !ok {
			fmt.Fprintln(e.out)
			return 0
		}
		src, out, err := in.src, in.out, in.err

		trimmed := strings.TrimSpace(src)
		if trimmed == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))

		if strings.HasPrefix(trimmed, ":") {
			switch trimmed {
			case ":quit", ":q":
				return 0
			case ":help", ":h":
				fmt.Fprint(e.out, replHelp)
			case ":reset":
				s.reset()
			case ":decls":
				out, err = s.table()
			default:
				fmt.Fprintln(e.out, "unknown command. Type :help for help.")
				continue
			}
		}

		var de *diagnostic.Error
		switch {
		case err == nil && out != "":
			fmt.Fprintln(e.out, out)
		case errors.As(err, &de):
			printer.Report(de)
		case err != nil:
			fmt.Fprintf(e.errw, "error: %v\n", err)
		}
	}
}

// input is one complete entry and the result of evaluating it.
type input struct {
	src string
	out string
	err error
}

// read prompts until the input is complete, evaluating it after every line.
// An empty continuation line gives up and keeps the last error. ok is false
// at end of input.
func read(ln *liner.State, s *session) (in input, ok bool) {
	var b strings.Builder

	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}

		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return input{}, false
		}
		if err != nil {
			// Ctrl-C drops the pending input.
			return input{}, true
		}

		if b.Len() > 0 {
			if strings.TrimSpace(line) == "" {
				return in, true
			}
			b.WriteByte('\n')
		}
		b.WriteString(line)

		in = input{src: b.String()}
		if trimmed := strings.TrimSpace(in.src); trimmed == "" || strings.HasPrefix(trimmed, ":") {
			return in, true
		}

		in.out, in.err = s.eval(in.src)
		if !parser.IsIncomplete(in.err) {
			return in, true
		}
	}
}
