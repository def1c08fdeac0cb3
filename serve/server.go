package main

import (
	"bufio"
	"context"
	"errors"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	sujhav "github.com/Paranoid-AF/sujhav"
	"github.com/Paranoid-AF/sujhav/generate"
	"github.com/Paranoid-AF/sujhav/session"
	json "github.com/goccy/go-json"
)

// Predictor turns a buffer snapshot into next-word suggestions.
type Predictor interface {
	Predict(ctx context.Context, text string) *generate.Result
	Resample(ctx context.Context, text string) *generate.Result
	Status() sujhav.ModelStatus
	Close()
}

// sessionEntry tracks a cancellable in-flight prediction for a session.
type sessionEntry struct {
	requestID int
	cancel    context.CancelFunc
}

// Server listens on a Unix domain socket for prediction and session requests.
// The same state backs the HTTP API.
type Server struct {
	listener net.Listener
	sockPath string
	sessions *session.Store

	// newPredictor builds the engine on reload.
	newPredictor func(cfg *sujhav.Config) Predictor

	mu       sync.Mutex
	engine   Predictor
	inflight map[string]sessionEntry
}

// NewServer creates a new IPC server bound to the given socket path, with an
// engine and session store built from cfg.
func NewServer(sockPath string, cfg *sujhav.Config) (*Server, error) {
	newPredictor := func(cfg *sujhav.Config) Predictor { return generate.NewEngine(cfg) }
	ttl := time.Duration(cfg.Server.SessionTTLMinutes) * time.Minute
	srv, err := NewServerWithPredictor(sockPath, newPredictor(cfg), session.NewStore(ttl))
	if err != nil {
		return nil, err
	}
	srv.newPredictor = newPredictor
	return srv, nil
}

// NewServerWithPredictor creates a new IPC server with a custom Predictor.
func NewServerWithPredictor(sockPath string, p Predictor, store *session.Store) (*Server, error) {
	// Remove stale socket file if it exists
	if err := os.Remove(sockPath); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	listener, err := net.Listen("unix", sockPath)
	if err != nil {
		return nil, err
	}

	return &Server{
		listener: listener,
		sockPath: sockPath,
		sessions: store,
		engine:   p,
		inflight: make(map[string]sessionEntry),
	}, nil
}

// Serve accepts connections and handles requests.
func (s *Server) Serve() error {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return err
		}
		go s.handleConn(conn)
	}
}

// Close shuts down the server, inference engine, and removes the socket file.
func (s *Server) Close() {
	s.predictor().Close()
	s.sessions.Close()
	s.listener.Close()
	os.Remove(s.sockPath)
}

func (s *Server) predictor() Predictor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine
}

// requestKind holds the fields that discriminate the request types.
type requestKind struct {
	Type   string `json:"type"`
	Action string `json:"action"`
}

func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()

	scanner := bufio.NewScanner(conn)
	if !scanner.Scan() {
		return
	}

	raw := scanner.Bytes()
	slog.Debug("request", "data", string(raw))

	var kind requestKind
	if err := json.Unmarshal(raw, &kind); err != nil {
		slog.Warn("invalid request", "error", err)
		return
	}

	switch {
	case kind.Type == "predict":
		var req sujhav.PredictRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			slog.Warn("invalid predict request", "error", err)
			return
		}
		s.handlePredictRequest(conn, &req)

	case kind.Type == "session":
		var req sujhav.SessionRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			slog.Warn("invalid session request", "error", err)
			return
		}
		writeLine(conn, s.handleSessionRequest(&req))

	case kind.Action != "":
		writeLine(conn, s.handleConfigRequest(&sujhav.ConfigRequest{Action: kind.Action}))

	default:
		writeLine(conn, &sujhav.SessionResponse{
			Error: &sujhav.Error{Code: "invalid_request", Message: "request has no type or action"},
		})
	}
}

func writeLine(conn net.Conn, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("failed to marshal response", "error", err)
		return
	}

	slog.Debug("response", "data", string(data))

	conn.Write(append(data, '\n'))
}

func (s *Server) handlePredictRequest(conn net.Conn, req *sujhav.PredictRequest) {
	ctx, done := s.track(req.SessionID, req.RequestID)
	defer done()

	resp := s.predict(ctx, req, s.sessions.GetOrCreate)

	// If cancelled, skip writing; the client has already moved on.
	if ctx.Err() != nil {
		return
	}

	writeLine(conn, resp)
}

// track cancels any in-flight prediction for sid and returns a context for
// the new one. done must be called when the prediction finishes.
func (s *Server) track(sid string, reqID int) (context.Context, func()) {
	ctx, cancel := context.WithCancel(context.Background())
	if sid != "" {
		s.mu.Lock()
		if prev, ok := s.inflight[sid]; ok {
			prev.cancel()
		}
		s.inflight[sid] = sessionEntry{requestID: reqID, cancel: cancel}
		s.mu.Unlock()
	}
	return ctx, func() {
		cancel()
		if sid != "" {
			s.mu.Lock()
			if cur, ok := s.inflight[sid]; ok && cur.requestID == reqID {
				delete(s.inflight, sid)
			}
			s.mu.Unlock()
		}
	}
}

// predict runs one prediction. With a session ID the request's text, if any,
// replaces the session buffer first and the session buffer is predicted on;
// without one the request text is used directly and nothing is remembered.
func (s *Server) predict(ctx context.Context, req *sujhav.PredictRequest, lookup func(id string) *session.Session) *sujhav.PredictResponse {
	resp := &sujhav.PredictResponse{RequestID: req.RequestID, Suggestions: []string{}}

	var sess *session.Session
	var text string
	if req.SessionID != "" {
		sess = lookup(req.SessionID)
		if sess == nil {
			resp.Error = &sujhav.Error{Code: "unknown_session", Message: "unknown session: " + req.SessionID}
			return resp
		}
		if req.Text != nil {
			sess.SetText(*req.Text)
		}
		text = sess.Text()
	} else if req.Text != nil {
		text = *req.Text
	}

	engine := s.predictor()
	var res *generate.Result
	if req.Refresh {
		res = engine.Resample(ctx, text)
	} else {
		res = engine.Predict(ctx, text)
	}

	resp.Suggestions = res.Suggestions
	if resp.Suggestions == nil {
		resp.Suggestions = []string{}
	}
	if res.Err != nil {
		resp.Error = errorFor(res.Err)
	}
	if sess != nil {
		resp.Session = sess.Snapshot()
	}
	return resp
}

func (s *Server) handleSessionRequest(req *sujhav.SessionRequest) *sujhav.SessionResponse {
	if req.SessionID == "" && req.Action != "get" {
		return &sujhav.SessionResponse{
			Error: &sujhav.Error{Code: "invalid_request", Message: "session_id is required"},
		}
	}
	return applySession(s.sessions.GetOrCreate(req.SessionID), req.Action, req)
}

// applySession performs a session action and returns the resulting state.
func applySession(sess *session.Session, action string, req *sujhav.SessionRequest) *sujhav.SessionResponse {
	switch action {
	case "get":
	case "set":
		sess.SetText(req.Text)
	case "accept":
		if req.Suggestion == "" {
			return &sujhav.SessionResponse{
				Error: &sujhav.Error{Code: "invalid_request", Message: "suggestion is required"},
			}
		}
		sess.Accept(req.Suggestion)
	case "undo":
		sess.UndoLastWord()
	case "terminate":
		sess.AppendTerminator()
	case "clear":
		sess.Clear()
	default:
		return &sujhav.SessionResponse{
			Error: &sujhav.Error{Code: "unknown_action", Message: "unknown session action: " + action},
		}
	}
	return &sujhav.SessionResponse{Session: sess.Snapshot()}
}

// errorFor maps pipeline errors to wire errors.
func errorFor(err error) *sujhav.Error {
	switch {
	case errors.Is(err, generate.ErrNotConfigured):
		return &sujhav.Error{Code: "not_configured", Message: err.Error()}
	case errors.Is(err, generate.ErrModelLoad):
		return &sujhav.Error{Code: "model_unavailable", Message: err.Error()}
	default:
		return &sujhav.Error{Code: "generation_failed", Message: err.Error()}
	}
}

func (s *Server) handleConfigRequest(req *sujhav.ConfigRequest) *sujhav.ConfigResponse {
	var resp sujhav.ConfigResponse

	switch req.Action {
	case "get":
		cfg, err := sujhav.LoadConfig()
		if err != nil {
			resp.Error = &sujhav.Error{
				Code:    "config_error",
				Message: err.Error(),
			}
		} else {
			resp.Config = cfg
		}

	case "reload":
		// Respond immediately; the new model loads lazily on the next
		// prediction.
		cfg, err := sujhav.LoadConfig()
		if err != nil {
			resp.Error = &sujhav.Error{
				Code:    "config_error",
				Message: err.Error(),
			}
			break
		}
		s.reloadEngine(cfg)
		resp.Config = cfg

	case "defaults":
		resp.Config = sujhav.DefaultConfig()

	case "validate":
		cfg, err := sujhav.LoadConfig()
		if err != nil {
			resp.Error = &sujhav.Error{
				Code:    "config_error",
				Message: err.Error(),
			}
		} else {
			resp.Warnings = sujhav.ValidateConfig(cfg)
		}

	default:
		resp.Error = &sujhav.Error{
			Code:    "unknown_action",
			Message: "unknown config action: " + req.Action,
		}
	}

	return &resp
}

// reloadEngine swaps in an engine built from cfg. Sessions survive.
func (s *Server) reloadEngine(cfg *sujhav.Config) {
	if s.newPredictor == nil {
		slog.Warn("engine reload not supported")
		return
	}
	next := s.newPredictor(cfg)

	s.mu.Lock()
	prev := s.engine
	s.engine = next
	s.mu.Unlock()

	// Close old engine
	if prev != nil {
		prev.Close()
	}
	slog.Info("engine reloaded", "model", next.Status().Name, "backend", next.Status().Backend)
}
