// Package server exposes the znc front end over HTTP. Clients post a source
// file and get back its tokens, syntax tree or declaration signatures as
// JSON.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/znc-lang/znc/internal/cli"
	"github.com/znc-lang/znc/internal/diagnostic"
	"github.com/znc-lang/znc/internal/frontend"
)

// DefaultMaxBody limits the size of a request body.
const DefaultMaxBody = 1 << 20

// Request is the body of every /v1 endpoint.
type Request struct {
	Name   string `json:"name"`
	Source string `json:"source"`
}

// Diagnostic is the JSON form of a front-end error.
type Diagnostic struct {
	Class    string `json:"class"`
	Message  string `json:"message"`
	File     string `json:"file,omitempty"`
	Line     int    `json:"line,omitempty"`
	Column   int    `json:"column,omitempty"`
	Text     string `json:"text,omitempty"`
	Rendered string `json:"rendered"`
}

// Token is the JSON form of a lexer token.
type Token struct {
	Line int    `json:"line"`
	Col  int    `json:"col"`
	Kind string `json:"kind"`
	Text string `json:"text"`
}

// Decl is one entry of the declaration table.
type Decl struct {
	Kind string `json:"kind"`
	Name string `json:"name"`
	Sig  string `json:"sig"`
}

// Response is returned by every /v1 endpoint. OK is false when the source
// has an error; Diagnostic then describes it.
type Response struct {
	OK         bool        `json:"ok"`
	Error      string      `json:"error,omitempty"`
	Diagnostic *Diagnostic `json:"diagnostic,omitempty"`
	AST        string      `json:"ast,omitempty"`
	Tokens     []Token     `json:"tokens,omitempty"`
	Types      []Decl      `json:"types,omitempty"`
}

// Handler serves the front end. It is safe for concurrent use; each request
// gets its own lexer and arena.
type Handler struct {
	opts    frontend.Options
	log     *cli.Logger
	mux     *http.ServeMux
	MaxBody int64
}

// NewHandler creates a handler running translation units with opts. The
// Reporter in opts is replaced per request.
func NewHandler(opts frontend.Options, log *cli.Logger) *Handler {
	if log == nil {
		log = cli.NewLoggerTo(io.Discard, false, false)
	}

	h := &Handler{opts: opts, log: log, mux: http.NewServeMux(), MaxBody: DefaultMaxBody}

	h.mux.HandleFunc("POST /v1/tokens", h.wrap("tokens", h.serveTokens))
	h.mux.HandleFunc("POST /v1/parse", h.wrap("parse", h.serveParse))
	h.mux.HandleFunc("POST /v1/types", h.wrap("types", h.serveTypes))
	h.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok\n"))
	})

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

type statusWriter struct {
	rw   http.ResponseWriter
	code int
	n    int
}

func (s *statusWriter) Header() http.Header  { return s.rw.Header() }
func (s *statusWriter) WriteHeader(code int) { s.code = code; s.rw.WriteHeader(code) }
func (s *statusWriter) Write(b []byte) (int, error) {
	if s.code == 0 {
		s.code = http.StatusOK
	}
	n, err := s.rw.Write(b)
	s.n += n
	return n, err
}

// wrap adds panic recovery and access logging.
func (h *Handler) wrap(name string, fn http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{rw: w}

		func() {
			defer func() {
				if rec := recover(); rec != nil {
					h.log.Error("%s: panic: %v", name, rec)
					if sw.code == 0 {
						sw.WriteHeader(http.StatusInternalServerError)
					}
				}
			}()
			fn(sw, r)
		}()

		h.log.Info("%s %s -> %d %dB in %s", r.Method, r.URL.Path, sw.code, sw.n, time.Since(start))
	}
}

// firstError keeps the first diagnostic of a request.
type firstError struct {
	err *diagnostic.Error
}

func (f *firstError) Report(e *diagnostic.Error) {
	if f.err == nil {
		f.err = e
	}
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (*Request, frontend.Options, *firstError, bool) {
	var req Request

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, h.MaxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		code := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			code = http.StatusRequestEntityTooLarge
		}
		writeJSON(w, code, &Response{Error: fmt.Sprintf("invalid request: %v", err)})
		return nil, frontend.Options{}, nil, false
	}
	if req.Name == "" {
		req.Name = "input.zn"
	}

	first := &firstError{}
	opts := h.opts
	opts.Reporter = first

	return &req, opts, first, true
}

func (h *Handler) serveTokens(w http.ResponseWriter, r *http.Request) {
	req, opts, first, ok := h.decode(w, r)
	if !ok {
		return
	}

	toks, err := frontend.Tokenize(req.Name, req.Source, opts)

	resp := &Response{OK: err == nil, Tokens: make([]Token, 0, len(toks))}
	for _, t := range toks {
		resp.Tokens = append(resp.Tokens, Token{Line: t.Line, Col: t.Col, Kind: t.Kind.String(), Text: t.Text})
	}
	if err != nil {
		resp.Diagnostic = diagnosticJSON(err, first)
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) serveParse(w http.ResponseWriter, r *http.Request) {
	req, opts, first, ok := h.decode(w, r)
	if !ok {
		return
	}

	u, err := frontend.Parse(req.Name, req.Source, opts)
	if err != nil {
		writeJSON(w, http.StatusOK, &Response{Diagnostic: diagnosticJSON(err, first)})
		return
	}
	defer u.Release()

	writeJSON(w, http.StatusOK, &Response{OK: true, AST: u.Root.String()})
}

func (h *Handler) serveTypes(w http.ResponseWriter, r *http.Request) {
	req, opts, first, ok := h.decode(w, r)
	if !ok {
		return
	}

	u, err := frontend.Check(req.Name, req.Source, opts)
	if err != nil {
		writeJSON(w, http.StatusOK, &Response{Diagnostic: diagnosticJSON(err, first)})
		return
	}
	defer u.Release()

	resp := &Response{OK: true, Types: []Decl{}}
	for _, e := range u.Table.Entries() {
		resp.Types = append(resp.Types, Decl{Kind: e.Kind.String(), Name: e.Name, Sig: e.Sig.String()})
	}

	writeJSON(w, http.StatusOK, resp)
}

func diagnosticJSON(err error, first *firstError) *Diagnostic {
	de := first.err
	if de == nil && !errors.As(err, &de) {
		return &Diagnostic{Class: "internal", Message: err.Error(), Rendered: err.Error()}
	}

	return &Diagnostic{
		Class:    de.Class.String(),
		Message:  de.Msg,
		File:     de.Pos.Filename,
		Line:     de.Pos.Line,
		Column:   de.Pos.Column,
		Text:     de.Text,
		Rendered: diagnostic.Format(de),
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(code)
	_, _ = w.Write(b)
}
