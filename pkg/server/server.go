package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/bastiangx/effserve/internal/logger"
	"github.com/bastiangx/effserve/internal/utils"
	"github.com/bastiangx/effserve/pkg/dataset"
	"github.com/bastiangx/effserve/pkg/service"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// DefaultMaxQueryLen caps keywords and queries when Options leave it unset.
const DefaultMaxQueryLen = 120

// Options configures a Server.
type Options struct {
	// MaxQueryLen is the longest accepted keyword or query, in characters.
	MaxQueryLen int
	// DataPath is reloaded when a reload request has no path.
	DataPath string
}

// Server handles the IPC for efficiency lookups
type Server struct {
	backend      Backend
	decoder      *msgpack.Decoder
	encoder      *msgpack.Encoder
	writer       *bufio.Writer
	opts         Options
	requestCount int
	log          *log.Logger
}

// NewServer creates a server using stdin/stdout for IPC
func NewServer(backend Backend, opts Options) *Server {
	return NewServerWithIO(backend, os.Stdin, os.Stdout, opts)
}

// NewServerWithIO creates a server on arbitrary streams
func NewServerWithIO(backend Backend, r io.Reader, w io.Writer, opts Options) *Server {
	if opts.MaxQueryLen <= 0 {
		opts.MaxQueryLen = DefaultMaxQueryLen
	}
	bw := bufio.NewWriter(w)
	return &Server{
		backend: backend,
		decoder: msgpack.NewDecoder(bufio.NewReader(r)),
		encoder: msgpack.NewEncoder(bw),
		writer:  bw,
		opts:    opts,
		log:     logger.New("server"),
	}
}

// Start begins listening for IPC requests. It returns nil when the input
// stream ends or ctx is cancelled between two requests.
func (s *Server) Start(ctx context.Context) error {
	s.log.Debug("Starting Server.")
	s.send(StatusMessage{Status: "ready"})

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		var raw msgpack.RawMessage
		if err := s.decoder.Decode(&raw); err != nil {
			if errors.Is(err, io.EOF) {
				s.log.Debugf("Input closed after %d requests", s.requestCount)
				return nil
			}
			s.log.Errorf("Reading request: %v", err)
			return err
		}
		s.requestCount++

		var req Request
		if err := msgpack.Unmarshal(raw, &req); err != nil {
			s.log.Errorf("Unmarshaling request: %v", err)
			s.sendError("", "Invalid msgpack request", 400)
			continue
		}
		s.handleRequest(req)
	}
}

// RequestCount returns the number of requests read so far
func (s *Server) RequestCount() int {
	return s.requestCount
}

func (s *Server) handleRequest(req Request) {
	switch req.Action {
	case ActionSearch:
		s.handleSearch(req)
	case ActionHistory:
		s.handleHistory(req)
	case ActionAutocomplete:
		s.handleAutocomplete(req)
	case ActionSuggestions:
		start := time.Now()
		items := s.backend.Suggestions()
		s.send(ListResponse{ID: req.ID, Items: items, Count: len(items), TimeTaken: time.Since(start).Microseconds()})
	case ActionReload:
		s.handleReload(req)
	case ActionHealth:
		s.handleHealth(req)
	case "":
		s.sendError(req.ID, "Missing 'action' parameter", 400)
	default:
		s.sendError(req.ID, fmt.Sprintf("Unknown action: %s", req.Action), 400)
	}
}

// checkText validates a keyword or query, sending a 400 and returning false when invalid.
func (s *Server) checkText(req Request, field, value string, required bool) bool {
	switch {
	case required && utils.IsBlank(value):
		s.sendError(req.ID, fmt.Sprintf("Missing '%s' parameter", field), 400)
	case utils.RuneLen(value) > s.opts.MaxQueryLen:
		s.sendError(req.ID, fmt.Sprintf("'%s' exceeds maximum length of %d characters", field, s.opts.MaxQueryLen), 400)
	case utils.HasControlChars(value):
		s.sendError(req.ID, fmt.Sprintf("'%s' contains control characters", field), 400)
	default:
		return true
	}
	s.log.Debugf("Rejected %s request %q: bad %s %q", req.Action, req.ID, field, utils.Truncate(value, 32))
	return false
}

func (s *Server) handleSearch(req Request) {
	if !s.checkText(req, "k", req.Keyword, true) {
		return
	}

	start := time.Now()
	resp, err := s.backend.Search(req.Keyword)
	elapsed := time.Since(start)

	switch {
	case errors.Is(err, service.ErrDataUnavailable):
		s.sendError(req.ID, err.Error(), 503)
		return
	case err != nil:
		s.sendError(req.ID, err.Error(), 500)
		return
	}

	s.send(SearchResponse{
		ID:        req.ID,
		Found:     resp.Found,
		Keyword:   resp.Keyword,
		Data:      resp.Data,
		Message:   resp.Message,
		TimeTaken: elapsed.Microseconds(),
	})
}

func (s *Server) handleHistory(req Request) {
	if !s.checkText(req, "k", req.Keyword, true) {
		return
	}

	start := time.Now()
	points := s.backend.History(req.Keyword)
	s.send(HistoryResponse{
		ID:        req.ID,
		Points:    points,
		Count:     len(points),
		TimeTaken: time.Since(start).Microseconds(),
	})
}

func (s *Server) handleAutocomplete(req Request) {
	if !s.checkText(req, "q", req.Query, false) {
		return
	}

	start := time.Now()
	items := s.backend.Autocomplete(req.Query)
	s.send(ListResponse{
		ID:        req.ID,
		Items:     items,
		Count:     len(items),
		TimeTaken: time.Since(start).Microseconds(),
	})
}

func (s *Server) handleReload(req Request) {
	path := req.Path
	if path == "" {
		path = s.opts.DataPath
	}
	if path == "" {
		s.sendError(req.ID, "Missing 'path' parameter", 400)
		return
	}

	res, err := s.backend.ReloadFile(path)
	if err != nil {
		code := 500
		if errors.Is(err, dataset.ErrUnsupportedFormat) || errors.Is(err, dataset.ErrNoHeader) || errors.Is(err, fs.ErrNotExist) {
			code = 400
		}
		s.log.Errorf("Reload of %s failed: %v", path, err)
		s.sendError(req.ID, err.Error(), code)
		return
	}
	s.send(ReloadResponse{ID: req.ID, Status: "ok", TotalRecords: res.TotalRecords})
}

func (s *Server) handleHealth(req Request) {
	h := s.backend.Health()
	resp := HealthResponse{
		ID:      req.ID,
		Status:  "ok",
		Records: h.Records,
		Version: h.Version,
	}
	if !h.Loaded {
		resp.Status = "empty"
	} else {
		resp.LoadedAt = h.LoadedAt.UTC().Format(time.RFC3339)
	}
	s.send(resp)
}

// send encodes one response and flushes it so the client sees it immediately.
func (s *Server) send(v any) {
	if err := s.encoder.Encode(v); err != nil {
		s.log.Errorf("Encoding response: %v", err)
		return
	}
	if err := s.writer.Flush(); err != nil {
		s.log.Errorf("Writing response: %v", err)
	}
}

func (s *Server) sendError(id, message string, code int) {
	s.send(ErrorResponse{ID: id, Error: message, Code: code})
}
