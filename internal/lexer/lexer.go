// Package lexer implements the znc lexical analyzer.
// Tokens are produced on demand and cached, so the parser can look ahead or
// step back any number of tokens without rescanning the source.
package lexer

import (
	"github.com/znc-lang/znc/internal/allocator"
	"github.com/znc-lang/znc/internal/diagnostic"
	"github.com/znc-lang/znc/internal/position"
	"github.com/znc-lang/znc/internal/token"
)

// DefaultBlockSize is the initial token capacity of a lexer's cache.
const DefaultBlockSize = 256

// Lexer represents the lexical analyzer.
type Lexer struct {
	src      *position.SourceFile
	input    string
	reporter diagnostic.Reporter
	arena    *allocator.Arena[Token]
	err      *diagnostic.Error
	toks     []*Token // emitted tokens, append only
	cur      int      // scan offset
	line     int
	col      int
	pind     int // index of the next token to consume
	ended    bool
}

type options struct {
	reporter  diagnostic.Reporter
	blockSize int
	limit     int
}

// Option configures a Lexer.
type Option func(*options)

// WithReporter sets where lexical diagnostics are sent as they occur.
func WithReporter(r diagnostic.Reporter) Option {
	return func(o *options) { o.reporter = r }
}

// WithBlockSize sets the initial token capacity of the cache.
func WithBlockSize(n int) Option {
	return func(o *options) { o.blockSize = n }
}

// WithLimit caps the number of tokens the lexer may cache.
func WithLimit(n int) Option {
	return func(o *options) { o.limit = n }
}

// New creates a lexer over src. name is used in diagnostics.
func New(name, src string, opts ...Option) (*Lexer, error) {
	o := options{reporter: diagnostic.Discard, blockSize: DefaultBlockSize}
	for _, opt := range opts {
		opt(&o)
	}
	if o.reporter == nil {
		o.reporter = diagnostic.Discard
	}

	var aopts []allocator.Option
	if o.limit > 0 {
		aopts = append(aopts, allocator.WithLimit(o.limit))
		if o.blockSize > o.limit {
			o.blockSize = o.limit
		}
	}

	arena, err := allocator.New[Token](o.blockSize, aopts...)
	if err != nil {
		return nil, err
	}

	return &Lexer{
		src:      position.NewSourceFile(name, src),
		input:    src,
		reporter: o.reporter,
		arena:    arena,
		line:     1,
		col:      1,
	}, nil
}

// Source returns the file being tokenized.
func (l *Lexer) Source() *position.SourceFile { return l.src }

// Name returns the name used in diagnostics.
func (l *Lexer) Name() string { return l.src.Filename }

// Consume returns the next token and advances past it. Once the stream has
// ended, the terminal EOF or error token is returned forever.
func (l *Lexer) Consume() *Token {
	for len(l.toks) <= l.pind && !l.ended {
		l.tokenize()
	}

	if len(l.toks) <= l.pind {
		return l.last()
	}

	t := l.toks[l.pind]
	l.pind++
	return t
}

// Peek returns a token relative to the position index without consuming it.
// Peek(1) is the next token, Peek(0) the most recently consumed one and
// negative offsets look further back. Positions before the first token
// return nil; positions past the end return the terminal token.
func (l *Lexer) Peek(offset int) *Token {
	abs := l.pind + offset - 1
	if abs < 0 {
		return nil
	}

	for len(l.toks) <= abs && !l.ended {
		l.tokenize()
	}

	if len(l.toks) <= abs {
		return l.last()
	}

	return l.toks[abs]
}

// Seek moves the position index by delta tokens without rescanning.
func (l *Lexer) Seek(delta int) {
	l.pind += delta
	if l.pind < 0 {
		l.pind = 0
	}
}

// Index returns the position index: the number of tokens consumed so far.
func (l *Lexer) Index() int { return l.pind }

// Ended reports whether tokenization has finished, normally or not.
func (l *Lexer) Ended() bool { return l.ended }

// Err returns the lexical or allocation error that stopped the stream, if any.
func (l *Lexer) Err() error {
	if l.err == nil {
		return nil
	}
	return l.err
}

// Tokens returns the tokens cached so far.
func (l *Lexer) Tokens() []*Token {
	out := make([]*Token, len(l.toks))
	copy(out, l.toks)
	return out
}

// All tokenizes the remaining input and returns every token, including the
// terminal one.
func (l *Lexer) All() []*Token {
	for !l.ended {
		l.tokenize()
	}
	return l.Tokens()
}

// Report forwards a diagnostic to the lexer's reporter. The parser reports
// syntax errors through the lexer that fed it.
func (l *Lexer) Report(e *diagnostic.Error) {
	l.reporter.Report(e)
}

// Stats returns usage statistics of the token cache.
func (l *Lexer) Stats() allocator.Stats { return l.arena.Stats() }

// Release drops the token cache. Tokens already handed out stay valid.
func (l *Lexer) Release() {
	if l == nil {
		return
	}
	l.arena.Release()
	l.toks = nil
	l.pind = 0
	l.ended = true
}

func (l *Lexer) last() *Token {
	if len(l.toks) == 0 {
		return nil
	}
	return l.toks[len(l.toks)-1]
}

// emit appends a token spanning input[start:l.cur] to the cache.
func (l *Lexer) emit(kind token.Kind, start, line, col int) *Token {
	if l.ended {
		return nil
	}

	t, err := l.arena.New()
	if err != nil {
		l.failAlloc(err, start, line, col)
		return nil
	}

	*t = Token{
		lexer: l,
		Kind:  kind,
		Text:  l.input[start:l.cur],
		Line:  line,
		Col:   col,
		Pos:   start,
	}
	l.toks = append(l.toks, t)

	return t
}

// failAlloc ends the stream with an error token living outside the arena.
func (l *Lexer) failAlloc(err error, start, line, col int) {
	t := &Token{lexer: l, Kind: token.Error, Line: line, Col: col, Pos: start}
	l.toks = append(l.toks, t)
	l.ended = true
	l.err = diagnostic.Wrap(diagnostic.Allocation, l.src, t.Position(), "", err)
	l.reporter.Report(l.err)
}

// fail emits a terminal error token and reports msg.
func (l *Lexer) fail(start, line, col int, msg string) {
	t := l.emit(token.Error, start, line, col)
	if t == nil {
		return
	}
	l.ended = true
	l.err = t.Errorf(diagnostic.Lexical, "%s", msg)
	l.reporter.Report(l.err)
}
