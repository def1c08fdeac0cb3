package main

import (
	"context"
	"errors"
	"io"
	"net/http"

	sujhav "github.com/Paranoid-AF/sujhav"
	"github.com/Paranoid-AF/sujhav/session"
	json "github.com/goccy/go-json"
	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
)

// textBody is the payload of PUT /v1/sessions/:id/text.
type textBody struct {
	Text string `json:"text"`
}

// acceptBody is the payload of the accept endpoints. Text is only read by
// the stateless POST /v1/accept.
type acceptBody struct {
	Text       string `json:"text"`
	Suggestion string `json:"suggestion"`
}

// predictBody is the payload of the predict endpoints. An empty body is
// allowed on the session route.
type predictBody struct {
	RequestID int     `json:"request_id"`
	Text      *string `json:"text,omitempty"`
	Refresh   bool    `json:"refresh,omitempty"`
}

// newEcho builds the HTTP API around s.
func newEcho(s *Server) *echo.Echo {
	e := echo.New()
	e.Use(middleware.RequestLogger())
	e.Use(middleware.Recover())
	s.Register(e)
	return e
}

// Register mounts the HTTP API routes on e.
func (s *Server) Register(e *echo.Echo) {
	e.GET("/healthz", s.handleHealth)
	e.GET("/v1/model", s.handleModel)
	e.POST("/v1/predict", s.handlePredict)
	e.POST("/v1/accept", s.handleAccept)

	e.POST("/v1/sessions", s.handleCreateSession)
	e.GET("/v1/sessions/:id", s.sessionAction("get"))
	e.DELETE("/v1/sessions/:id", s.handleDeleteSession)
	e.PUT("/v1/sessions/:id/text", s.sessionAction("set"))
	e.POST("/v1/sessions/:id/accept", s.sessionAction("accept"))
	e.POST("/v1/sessions/:id/undo", s.sessionAction("undo"))
	e.POST("/v1/sessions/:id/terminate", s.sessionAction("terminate"))
	e.POST("/v1/sessions/:id/clear", s.sessionAction("clear"))
	e.POST("/v1/sessions/:id/predict", s.handleSessionPredict)
}

func (s *Server) handleHealth(c *echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleModel(c *echo.Context) error {
	return c.JSON(http.StatusOK, s.predictor().Status())
}

func (s *Server) handlePredict(c *echo.Context) error {
	body, err := decodeJSON[predictBody](c.Request().Body)
	if err != nil {
		return writeError(c, http.StatusBadRequest, "invalid_request", err.Error())
	}
	req := &sujhav.PredictRequest{Type: "predict", RequestID: body.RequestID, Text: body.Text, Refresh: body.Refresh}
	return c.JSON(http.StatusOK, s.predict(c.Request().Context(), req, nil))
}

func (s *Server) handleAccept(c *echo.Context) error {
	body, err := decodeJSON[acceptBody](c.Request().Body)
	if err != nil {
		return writeError(c, http.StatusBadRequest, "invalid_request", err.Error())
	}
	if body.Suggestion == "" {
		return writeError(c, http.StatusBadRequest, "invalid_request", "suggestion is required")
	}
	return c.JSON(http.StatusOK, textBody{Text: session.Accept(body.Text, body.Suggestion)})
}

func (s *Server) handleCreateSession(c *echo.Context) error {
	sess := s.sessions.Create()
	return c.JSON(http.StatusCreated, sess.Snapshot())
}

func (s *Server) handleDeleteSession(c *echo.Context) error {
	if !s.sessions.Delete(c.Param("id")) {
		return writeUnknownSession(c)
	}
	return c.NoContent(http.StatusNoContent)
}

// sessionAction returns a handler applying action to the session named in
// the path.
func (s *Server) sessionAction(action string) echo.HandlerFunc {
	return func(c *echo.Context) error {
		sess, err := s.sessions.Get(c.Param("id"))
		if err != nil {
			return writeUnknownSession(c)
		}

		req := &sujhav.SessionRequest{Type: "session", Action: action, SessionID: sess.ID()}
		switch action {
		case "set":
			body, err := decodeJSON[textBody](c.Request().Body)
			if err != nil {
				return writeError(c, http.StatusBadRequest, "invalid_request", err.Error())
			}
			req.Text = body.Text
		case "accept":
			body, err := decodeJSON[acceptBody](c.Request().Body)
			if err != nil {
				return writeError(c, http.StatusBadRequest, "invalid_request", err.Error())
			}
			req.Suggestion = body.Suggestion
		}

		resp := applySession(sess, action, req)
		if resp.Error != nil {
			return c.JSON(http.StatusBadRequest, resp)
		}
		return c.JSON(http.StatusOK, resp.Session)
	}
}

func (s *Server) handleSessionPredict(c *echo.Context) error {
	sess, err := s.sessions.Get(c.Param("id"))
	if err != nil {
		return writeUnknownSession(c)
	}
	body, err := decodeJSON[predictBody](c.Request().Body)
	if err != nil {
		return writeError(c, http.StatusBadRequest, "invalid_request", err.Error())
	}

	ctx, done := s.track(sess.ID(), body.RequestID)
	defer done()
	stop := context.AfterFunc(c.Request().Context(), done)
	defer stop()

	req := &sujhav.PredictRequest{
		Type:      "predict",
		RequestID: body.RequestID,
		SessionID: sess.ID(),
		Text:      body.Text,
		Refresh:   body.Refresh,
	}
	resp := s.predict(ctx, req, func(string) *session.Session { return sess })
	if ctx.Err() != nil {
		return c.NoContent(http.StatusConflict)
	}
	return c.JSON(http.StatusOK, resp)
}

// decodeJSON decodes a request body; an empty body yields the zero value.
func decodeJSON[T any](r io.Reader) (T, error) {
	var v T
	if err := json.NewDecoder(r).Decode(&v); err != nil && !errors.Is(err, io.EOF) {
		return v, err
	}
	return v, nil
}

func writeUnknownSession(c *echo.Context) error {
	return writeError(c, http.StatusNotFound, "unknown_session", session.ErrUnknownSession.Error()+": "+c.Param("id"))
}

func writeError(c *echo.Context, status int, code, msg string) error {
	return c.JSON(status, map[string]*sujhav.Error{
		"error": {Code: code, Message: msg},
	})
}
