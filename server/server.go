package server

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"sync/atomic"
	"time"
	"unicode/utf8"

	leven "github.com/canisaugustinus/latin-leven"
	"github.com/canisaugustinus/latin-leven/alphabet"
	"github.com/canisaugustinus/latin-leven/codec"
	"github.com/canisaugustinus/latin-leven/model"
)

// Config sets request defaults and limits.
type Config struct {
	// DefaultK is used when a request omits k.
	DefaultK int
	// MaxK caps k.
	MaxK int
	// SuggestK is used when a "suggest" request omits k.
	SuggestK int
	// MaxQueryLen is the longest accepted query, in characters or symbols.
	MaxQueryLen int
	// Parallel selects parallel mode for requests that do not set "par".
	Parallel bool
}

// DefaultConfig returns the limits used when none are configured.
func DefaultConfig() Config {
	return Config{DefaultK: 10, MaxK: 100, SuggestK: 10, MaxQueryLen: 64}
}

// Option configures a Server.
type Option func(*Server)

// WithIO sets the request and response streams.
func WithIO(r io.Reader, w io.Writer) Option {
	return func(s *Server) {
		s.in = r
		s.out = w
	}
}

// WithCodec sets the wire codec. The default is codec.Default.
func WithCodec(c codec.Codec) Option {
	return func(s *Server) {
		if c != nil {
			s.codec = c
		}
	}
}

// WithConfig sets request limits. Non-positive fields keep their defaults.
func WithConfig(cfg Config) Option {
	return func(s *Server) {
		if cfg.DefaultK > 0 {
			s.cfg.DefaultK = cfg.DefaultK
		}
		if cfg.MaxK > 0 {
			s.cfg.MaxK = cfg.MaxK
		}
		if cfg.SuggestK > 0 {
			s.cfg.SuggestK = cfg.SuggestK
		}
		if cfg.MaxQueryLen > 0 {
			s.cfg.MaxQueryLen = cfg.MaxQueryLen
		}
		s.cfg.Parallel = cfg.Parallel
	}
}

// WithSuggestIndex sets the index answering "suggest" requests. It must hold
// the same entries as the main index, usually under cheaper append costs.
// Without it, suggestions use the main index.
func WithSuggestIndex(idx *leven.Index) Option {
	return func(s *Server) {
		s.suggest = idx
	}
}

// WithLogger sets the server's logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// Server handles IPC for an index.
type Server struct {
	index   *leven.Index
	suggest *leven.Index
	alpha   *alphabet.Alphabet
	cfg   Config
	codec codec.Codec

	in     io.Reader
	out    io.Writer
	enc    codec.Encoder
	logger *slog.Logger

	requests atomic.Int64
}

// New creates a server for index using stdin/stdout for IPC.
// alpha must be the alphabet the index entries were encoded with.
func New(index *leven.Index, alpha *alphabet.Alphabet, opts ...Option) *Server {
	s := &Server{
		index:  index,
		alpha:  alpha,
		cfg:    DefaultConfig(),
		codec:  codec.Default,
		in:     os.Stdin,
		out:    os.Stdout,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.suggest == nil {
		s.suggest = s.index
	}
	s.cfg.DefaultK = min(s.cfg.DefaultK, s.cfg.MaxK)
	s.cfg.SuggestK = min(s.cfg.SuggestK, s.cfg.MaxK)
	return s
}

// Requests returns the number of requests handled so far.
func (s *Server) Requests() int64 { return s.requests.Load() }

// malformedError is a request that could not be decoded but left the
// stream readable.
type malformedError struct{ err error }

func (e *malformedError) Error() string { return "malformed request: " + e.err.Error() }
func (e *malformedError) Unwrap() error { return e.err }

type incoming struct {
	req Request
	err error
}

// Serve writes the ready signal and answers requests until the input ends
// (returning nil) or ctx is cancelled (returning ctx.Err()).
func (s *Server) Serve(ctx context.Context) error {
	s.logger.DebugContext(ctx, "starting server", "codec", s.codec.Name(), "entries", s.index.Len())

	s.enc = s.codec.NewEncoder(s.out)
	if err := s.send(StatusResponse{Status: "ready"}); err != nil {
		return err
	}

	// released on every return, so the reader never blocks on reqs
	readCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	reqs := make(chan incoming)
	go s.read(readCtx, s.reader(), reqs)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case in, ok := <-reqs:
			if !ok {
				return ctx.Err()
			}
			var malformed *malformedError
			switch {
			case in.err == nil:
				if err := s.send(s.handle(ctx, in.req)); err != nil {
					return err
				}
			case errors.Is(in.err, io.EOF):
				s.logger.DebugContext(ctx, "input closed", "requests", s.requests.Load())
				return nil
			case errors.As(in.err, &malformed):
				s.logger.WarnContext(ctx, "unmarshaling request", "error", in.err)
				if err := s.send(errorResponse("", "invalid request", CodeBadRequest)); err != nil {
					return err
				}
			default:
				s.logger.ErrorContext(ctx, "reading request", "error", in.err)
				return in.err
			}
		}
	}
}

func (s *Server) read(ctx context.Context, next func() (Request, error), out chan<- incoming) {
	defer close(out)
	for {
		req, err := next()
		select {
		case out <- incoming{req: req, err: err}:
		case <-ctx.Done():
			return
		}
		var malformed *malformedError
		if err != nil && !errors.As(err, &malformed) {
			return
		}
	}
}

// reader returns the request source. JSON is read line by line so a bad
// line does not poison the stream; msgpack is decoded as a stream.
func (s *Server) reader() func() (Request, error) {
	if _, ok := s.codec.(codec.JSON); ok {
		br := bufio.NewReader(s.in)
		return func() (Request, error) {
			for {
				line, err := br.ReadBytes('\n')
				line = bytes.TrimSpace(line)
				if len(line) > 0 {
					var req Request
					if uerr := s.codec.Unmarshal(line, &req); uerr != nil {
						return Request{}, &malformedError{err: uerr}
					}
					return req, nil
				}
				if err != nil {
					return Request{}, err
				}
			}
		}
	}

	dec := s.codec.NewDecoder(s.in)
	return func() (Request, error) {
		var req Request
		err := dec.Decode(&req)
		return req, err
	}
}

func (s *Server) send(v any) error {
	if err := s.enc.Encode(v); err != nil {
		return fmt.Errorf("server: writing response: %w", err)
	}
	return nil
}

func (s *Server) handle(ctx context.Context, req Request) any {
	s.requests.Add(1)

	switch req.Op {
	case OpSearch:
		return s.handleSearch(ctx, s.index, req, s.cfg.DefaultK, false)
	case OpBest:
		return s.handleSearch(ctx, s.index, req, 1, true)
	case OpSuggest:
		if req.Query == "" && len(req.Symbols) == 0 {
			return errorResponse(req.ID, "missing 'q' or 'sym' parameter", CodeBadRequest)
		}
		return s.handleSearch(ctx, s.suggest, req, s.cfg.SuggestK, false)
	case OpDistance:
		return s.handleDistance(req)
	case OpInfo:
		return InfoResponse{
			ID:       req.ID,
			Entries:  s.index.Len(),
			Alphabet: s.alpha.Len(),
			Workers:  s.index.Workers(),
			KeyCost:  s.index.CostModel().KeyCost(),
			Suggest:  s.suggest != s.index,
			Codec:    s.codec.Name(),
		}
	case OpHealth:
		return StatusResponse{ID: req.ID, Status: "ok"}
	case "":
		return errorResponse(req.ID, "missing 'op' parameter", CodeBadRequest)
	default:
		return errorResponse(req.ID, fmt.Sprintf("unknown op: %s", req.Op), CodeBadRequest)
	}
}

func (s *Server) handleSearch(ctx context.Context, idx *leven.Index, req Request, defaultK int, best bool) any {
	var random string
	if len(req.Symbols) == 0 && alphabet.Normalize(req.Query) == "" {
		// an empty query asks for a random dictionary word
		if idx.Len() == 0 {
			return errorResponse(req.ID, "no match", CodeNotFound)
		}
		random = s.alpha.Decode(idx.Entry(rand.IntN(idx.Len())))
		req.Query = random
	}

	query, errResp := s.query(req)
	if errResp != nil {
		return errResp
	}

	k := req.K
	if k < 1 {
		k = defaultK
	}
	k = min(k, s.cfg.MaxK)

	parallel := s.cfg.Parallel
	if req.Parallel != nil {
		parallel = *req.Parallel
	}

	start := time.Now()
	var (
		results []leven.Result
		err     error
	)
	switch {
	case best && parallel:
		var r leven.Result
		if r, err = idx.SearchBestParallel(ctx, query); err == nil {
			results = []leven.Result{r}
		}
	case best:
		var r leven.Result
		if r, err = idx.SearchBest(ctx, query); err == nil {
			results = []leven.Result{r}
		}
	case parallel:
		results, err = idx.SearchParallel(ctx, query, k)
	default:
		results, err = idx.Search(ctx, query, k)
	}
	elapsed := time.Since(start)

	if err != nil {
		return s.searchError(ctx, req.ID, err)
	}

	matches := make([]Match, len(results))
	for i, r := range results {
		matches[i] = Match{Word: s.alpha.Decode(r.Sequence), Score: r.Score, Index: r.Index}
	}
	return SearchResponse{
		ID:        req.ID,
		Query:     random,
		Matches:   matches,
		Count:     len(matches),
		TimeTaken: elapsed.Microseconds(),
	}
}

func (s *Server) handleDistance(req Request) any {
	q := alphabet.Normalize(req.Query)
	c := alphabet.Normalize(req.Candidate)
	if q == "" && c == "" {
		return errorResponse(req.ID, "missing 'q' and 'c' parameters", CodeBadRequest)
	}
	if utf8.RuneCountInString(q) > s.cfg.MaxQueryLen || utf8.RuneCountInString(c) > s.cfg.MaxQueryLen {
		return errorResponse(req.ID, fmt.Sprintf("query exceeds %d characters", s.cfg.MaxQueryLen), CodeBadRequest)
	}

	start := time.Now()
	d := s.index.Distance(s.alpha.Encode(q), s.alpha.Encode(c))
	return DistanceResponse{ID: req.ID, Distance: d, TimeTaken: time.Since(start).Microseconds()}
}

// query extracts the request's query, preferring raw symbols.
func (s *Server) query(req Request) (model.Sequence, *ErrorResponse) {
	if len(req.Symbols) > 0 {
		if len(req.Symbols) > s.cfg.MaxQueryLen {
			return nil, errorResponse(req.ID, fmt.Sprintf("query exceeds %d symbols", s.cfg.MaxQueryLen), CodeBadRequest)
		}
		seq := make(model.Sequence, len(req.Symbols))
		for i, v := range req.Symbols {
			seq[i] = model.Symbol(v)
		}
		return seq, nil
	}

	q := alphabet.Normalize(req.Query)
	if q == "" {
		return nil, errorResponse(req.ID, "missing 'q' or 'sym' parameter", CodeBadRequest)
	}
	if utf8.RuneCountInString(q) > s.cfg.MaxQueryLen {
		return nil, errorResponse(req.ID, fmt.Sprintf("query exceeds %d characters", s.cfg.MaxQueryLen), CodeBadRequest)
	}
	return s.alpha.Encode(q), nil
}

func (s *Server) searchError(ctx context.Context, id string, err error) *ErrorResponse {
	switch {
	case errors.Is(err, leven.ErrEmptyResult):
		return errorResponse(id, "no match", CodeNotFound)
	case errors.Is(err, leven.ErrResourceExhausted):
		s.logger.WarnContext(ctx, "search rejected", "id", id, "error", err)
		return errorResponse(id, "too many searches", CodeExhausted)
	default:
		s.logger.ErrorContext(ctx, "search failed", "id", id, "error", err)
		return errorResponse(id, "internal server error", CodeInternal)
	}
}

func errorResponse(id, message string, code int) *ErrorResponse {
	return &ErrorResponse{ID: id, Error: message, Code: code}
}
