// Command znc runs the znc compiler front end: it tokenizes, parses and
// checks the declarations of .zn source files.
package main

import (
	"context"
	"crypto/tls"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/znc-lang/znc/internal/cli"
	"github.com/znc-lang/znc/internal/config"
	"github.com/znc-lang/znc/internal/diagnostic"
	"github.com/znc-lang/znc/internal/frontend"
	"github.com/znc-lang/znc/internal/server"
	"github.com/znc-lang/znc/internal/term"
	"github.com/znc-lang/znc/internal/watch"
)

const tool = "znc"

var commands = []cli.CommandInfo{
	{
		Name:        "check",
		Usage:       "znc check [--jobs N] [FILE...]",
		Description: "Parse files and verify their declarations",
		Examples:    []string{"znc check", "znc check --jobs 4 main.zn lib.zn"},
		Flags: []cli.FlagInfo{
			{Name: "jobs", Short: "j", Usage: "Files checked in parallel", Default: "number of CPUs"},
			{Name: "stats", Usage: "Log token, node and memory counts per file"},
		},
	},
	{
		Name:        "parse",
		Usage:       "znc parse FILE",
		Description: "Print the syntax tree of a file",
		Examples:    []string{"znc parse main.zn"},
	},
	{
		Name:        "tokens",
		Usage:       "znc tokens FILE",
		Description: "Print the tokens of a file",
		Examples:    []string{"znc tokens main.zn"},
	},
	{
		Name:        "types",
		Usage:       "znc types FILE",
		Description: "Print the declaration signatures of a file",
		Examples:    []string{"znc types main.zn"},
	},
	{
		Name:        "watch",
		Usage:       "znc watch [--debounce D] [DIR]",
		Description: "Re-check source files when they change",
		Flags: []cli.FlagInfo{
			{Name: "debounce", Usage: "Quiet period before re-checking", Default: "100ms"},
		},
	},
	{
		Name:        "repl",
		Usage:       "znc repl",
		Description: "Parse declarations, statements and expressions interactively",
	},
	{
		Name:        "serve",
		Usage:       "znc serve [--addr ADDR]",
		Description: "Serve the front end over HTTP/3",
		Flags: []cli.FlagInfo{
			{Name: "addr", Usage: "UDP address to listen on", Default: ":4433"},
		},
	},
	{
		Name:        "version",
		Usage:       "znc version [--json]",
		Description: "Print version information",
		Flags: []cli.FlagInfo{
			{Name: "json", Usage: "Output as JSON"},
		},
	},
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// env is the state shared by all commands.
type env struct {
	cfg   *config.Config
	log   *cli.Logger
	out   io.Writer
	errw  io.Writer
	color bool
}

// options returns front-end options reporting to r.
func (e *env) options(r diagnostic.Reporter) frontend.Options {
	return frontend.FromConfig(e.cfg, r)
}

// printer renders diagnostics to the error output.
func (e *env) printer() *diagnostic.Printer {
	return diagnostic.NewPrinter(e.errw, e.color)
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet(tool, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { cli.PrintUsage(stderr, tool, commands) }

	configPath := fs.String("config", config.DefaultFile, "project file")
	verbose := fs.Bool("verbose", false, "log progress")
	debug := fs.Bool("debug", false, "log debug details")
	maxDepth := fs.Int("max-depth", 0, "maximum nesting depth")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if fs.NArg() == 0 {
		cli.PrintUsage(stderr, tool, commands)
		return 2
	}
	sub, rest := fs.Arg(0), fs.Args()[1:]

	switch sub {
	case "help", "-h", "--help":
		if len(rest) > 0 {
			if cmd, ok := cli.FindCommand(commands, rest[0]); ok {
				cli.PrintCommandUsage(stdout, tool, cmd)
				return 0
			}
		}
		cli.PrintUsage(stdout, tool, commands)
		return 0
	case "version":
		return cmdVersion(rest, stdout, stderr)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "znc: %v\n", err)
		return 1
	}
	if err := cfg.CheckLanguage(cli.Version); err != nil {
		fmt.Fprintf(stderr, "znc: %v\n", err)
		return 1
	}
	if *maxDepth > 0 {
		cfg.Parser.MaxDepth = *maxDepth
	}

	terminal := false
	if f, ok := stderr.(*os.File); ok {
		terminal = term.IsColorTerminal(f)
	}

	e := &env{
		cfg:   cfg,
		log:   cli.NewLoggerTo(stderr, *verbose || cfg.Log.Verbose, *debug || cfg.Log.Debug),
		out:   stdout,
		errw:  stderr,
		color: cfg.UseColor(terminal),
	}
	e.log.Debug("config dir %s, arena %+v, parser %+v", cfg.Dir, cfg.Arena, cfg.Parser)

	var cmdFn func(*env, []string) int
	switch sub {
	case "check":
		cmdFn = cmdCheck
	case "parse":
		cmdFn = cmdParse
	case "tokens":
		cmdFn = cmdTokens
	case "types":
		cmdFn = cmdTypes
	case "watch":
		cmdFn = cmdWatch
	case "repl":
		cmdFn = cmdRepl
	case "serve":
		cmdFn = cmdServe
	default:
		fmt.Fprintf(stderr, "unknown command: %s\n", sub)
		cli.PrintUsage(stderr, tool, commands)
		return 2
	}

	return cmdFn(e, rest)
}

// flags creates the flag set of a command, printing its usage on --help.
func flags(e *env, name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(e.errw)
	fs.Usage = func() {
		if cmd, ok := cli.FindCommand(commands, name); ok {
			cli.PrintCommandUsage(e.errw, tool, cmd)
		}
	}
	return fs
}

// parseFlags returns ok=false when the command should stop with code.
func parseFlags(fs *flag.FlagSet, args []string) (code int, ok bool) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0, false
		}
		return 2, false
	}
	return 0, true
}

func cmdVersion(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("version", flag.ContinueOnError)
	fs.SetOutput(stderr)
	asJSON := fs.Bool("json", false, "output as JSON")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}

	if err := cli.PrintVersion(stdout, "znc", *asJSON); err != nil {
		fmt.Fprintf(stderr, "znc: %v\n", err)
		return 1
	}
	return 0
}

// oneFile reads the single FILE argument of a command.
func oneFile(e *env, fs *flag.FlagSet) (string, string, bool) {
	if err := cli.ValidateArgs(fs.Args(), 1, fs.Name()+" FILE"); err != nil {
		fmt.Fprintf(e.errw, "znc: %v\n", err)
		return "", "", false
	}

	path := fs.Arg(0)
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(e.errw, "znc: %v\n", err)
		return "", "", false
	}
	return path, string(src), true
}

func cmdTokens(e *env, args []string) int {
	fs := flags(e, "tokens")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	path, src, ok := oneFile(e, fs)
	if !ok {
		return 2
	}

	toks, err := frontend.Tokenize(path, src, e.options(e.printer()))
	for _, t := range toks {
		fmt.Fprintf(e.out, "%d:%d\t%s\t%q\n", t.Line, t.Col, t.Kind, t.Text)
	}
	if err != nil {
		return 1
	}
	return 0
}

func cmdParse(e *env, args []string) int {
	fs := flags(e, "parse")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	path, src, ok := oneFile(e, fs)
	if !ok {
		return 2
	}

	u, err := frontend.Parse(path, src, e.options(e.printer()))
	if err != nil {
		return 1
	}
	defer u.Release()

	if s := u.Root.String(); s != "" {
		fmt.Fprintln(e.out, s)
	}
	e.log.Debug("%s: %+v", path, u.Stats())
	return 0
}

func cmdTypes(e *env, args []string) int {
	fs := flags(e, "types")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	path, src, ok := oneFile(e, fs)
	if !ok {
		return 2
	}

	u, err := frontend.Check(path, src, e.options(e.printer()))
	if err != nil {
		return 1
	}
	defer u.Release()

	if s := u.Table.String(); s != "" {
		fmt.Fprintln(e.out, s)
	}
	return 0
}

func cmdCheck(e *env, args []string) int {
	fs := flags(e, "check")
	jobs := fs.Int("jobs", 0, "files checked in parallel")
	fs.IntVar(jobs, "j", 0, "files checked in parallel")
	stats := fs.Bool("stats", false, "log token, node and memory counts per file")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}

	paths := fs.Args()
	if len(paths) == 0 {
		var err error
		if paths, err = e.cfg.SourceFiles(); err != nil {
			fmt.Fprintf(e.errw, "znc: %v\n", err)
			return 2
		}
		if len(paths) == 0 {
			e.log.Warn("no source files match %v in %s", e.cfg.Sources, e.cfg.Dir)
			return 0
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !check(ctx, e, paths, *jobs, *stats) {
		return 1
	}
	return 0
}

// check checks paths and reports the outcome. It returns true when every
// file passed.
func check(ctx context.Context, e *env, paths []string, jobs int, stats bool) bool {
	start := time.Now()
	engine := diagnostic.NewEngine(e.printer())

	results, err := frontend.CheckFiles(ctx, paths, e.options(engine), jobs)
	if err != nil {
		e.log.Error("check interrupted: %v", err)
		return false
	}

	for _, r := range results {
		var de *diagnostic.Error
		switch {
		case r.Err == nil:
			if stats {
				e.log.Info("%s: %+v", r.Path, r.Unit.Stats())
			}
			r.Unit.Release()
		case !errors.As(r.Err, &de):
			e.log.Error("%s: %v", r.Path, r.Err)
		}
	}

	failed := frontend.Failed(results)
	e.log.Info("checked %d files in %s", len(results), time.Since(start).Round(time.Millisecond))
	if failed > 0 {
		fmt.Fprintf(e.errw, "%d of %d files failed: %s\n", failed, len(results), engine.Summary())
		return false
	}
	return true
}

func cmdWatch(e *env, args []string) int {
	fs := flags(e, "watch")
	debounce := fs.Duration("debounce", 100*time.Millisecond, "quiet period before re-checking")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}

	dir := e.cfg.Dir
	if fs.NArg() > 0 {
		dir = fs.Arg(0)
	}

	w, err := watch.New()
	if err != nil {
		fmt.Fprintf(e.errw, "znc: %v\n", err)
		return 1
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		fmt.Fprintf(e.errw, "znc: watch %s: %v\n", dir, err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if paths, err := e.cfg.SourceFiles(); err == nil && len(paths) > 0 {
		check(ctx, e, paths, 0, false)
	}
	fmt.Fprintf(e.errw, "watching %s for changes to %s files\n", dir, watch.SourceExt)

	err = watch.Run(ctx, w, *debounce, func(paths []string) {
		e.log.Debug("changed: %v", paths)
		if check(ctx, e, paths, 0, false) {
			fmt.Fprintf(e.errw, "%d files ok\n", len(paths))
		}
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(e.errw, "znc: %v\n", err)
		return 1
	}
	return 0
}

func cmdServe(e *env, args []string) int {
	fs := flags(e, "serve")
	addr := fs.String("addr", e.cfg.Serve.Addr, "UDP address to listen on")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}

	tlsCfg, err := loadTLS(e)
	if err != nil {
		fmt.Fprintf(e.errw, "znc: %v\n", err)
		return 1
	}

	h := server.NewHandler(e.options(nil), e.log)
	s := server.NewHTTP3Server(*addr, tlsCfg, h)

	bound, err := s.Start()
	if err != nil {
		fmt.Fprintf(e.errw, "znc: %v\n", err)
		return 1
	}
	defer s.Stop()

	fmt.Fprintf(e.errw, "serving on https://%s (HTTP/3)\n", bound)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	e.log.Info("shutting down")
	return 0
}

// loadTLS uses the configured certificate, with paths relative to the
// project file.
func loadTLS(e *env) (*tls.Config, error) {
	if e.cfg.Serve.Cert != "" {
		rel := func(p string) string {
			if filepath.IsAbs(p) {
				return p
			}
			return filepath.Join(e.cfg.Dir, p)
		}
		return server.LoadTLS(rel(e.cfg.Serve.Cert), rel(e.cfg.Serve.Key))
	}
	e.log.Warn("no certificate configured, using a self-signed one for localhost")
	return server.SelfSignedTLS()
}
