package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/paddock/pkg/domain"
	"github.com/aretw0/paddock/pkg/navigator"
	"github.com/coder/websocket"
)

const wsWriteTimeout = 5 * time.Second

type buttonsResponse struct {
	Back         bool `json:"back"`
	Next         bool `json:"next"`
	NextDisabled bool `json:"nextDisabled"`
	Clear        bool `json:"clear"`
}

type stateResponse struct {
	SessionID string           `json:"sessionId"`
	Path      string           `json:"path"`
	Buttons   buttonsResponse  `json:"buttons"`
	State     domain.FormState `json:"state"`
}

func (s *Server) getState(w http.ResponseWriter, r *http.Request) {
	id := sessionID(r)
	sess, err := s.sessions.LoadOrStart(r.Context(), id)
	if err != nil {
		s.fail(w, r, "failed to load session", err)
		return
	}
	b := navigator.ButtonsFor(sess.Form)
	writeJSON(w, http.StatusOK, stateResponse{
		SessionID: id,
		Path:      navigator.PathForStep(sess.Form.Step),
		Buttons:   buttonsResponse{Back: b.Back, Next: b.Next, NextDisabled: b.NextDisabled, Clear: b.Clear},
		State:     sess.Form,
	})
}

// snapshot returns the full state of the session as a diff from nothing.
func (s *Server) snapshot(ctx context.Context, id string) ([]byte, error) {
	sess, err := s.sessions.LoadOrStart(ctx, id)
	if err != nil {
		return nil, err
	}
	return json.Marshal(domain.Diff(id, nil, &sess.Form))
}

// subscribeEvents streams the session's state diffs as server-sent events.
// The optional watch parameter keeps only diffs touching the listed fields.
func (s *Server) subscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("streaming not supported")
		return
	}

	id := sessionID(r)
	ch, cancel := s.Streams.Subscribe(id)
	defer cancel()

	first, err := s.snapshot(r.Context(), id)
	if err != nil {
		s.fail(w, r, "failed to load session", err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	s.logger.Info("sse subscribed", "session_id", id)
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	fmt.Fprintf(w, "data: %s\n\n", first)
	flusher.Flush()

	var watch []string
	if v := r.URL.Query().Get("watch"); v != "" {
		watch = strings.Split(v, ",")
	}

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("sse client disconnected", "session_id", id)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if len(watch) > 0 && !touches(msg, watch) {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

// touches reports whether the encoded diff changes any of fields.
func touches(msg []byte, fields []string) bool {
	var diff map[string]json.RawMessage
	if err := json.Unmarshal(msg, &diff); err != nil {
		return true
	}
	for _, f := range fields {
		if _, ok := diff[strings.TrimSpace(f)]; ok {
			return true
		}
	}
	return false
}

// subscribeWebSocket streams the same diffs as subscribeEvents, one text message each.
func (s *Server) subscribeWebSocket(w http.ResponseWriter, r *http.Request) {
	id := sessionID(r)
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket accept failed", "session_id", id, "err", err)
		return
	}
	defer conn.CloseNow()

	ch, cancel := s.Streams.Subscribe(id)
	defer cancel()

	// Incoming messages are not part of the protocol.
	ctx := conn.CloseRead(r.Context())

	first, err := s.snapshot(ctx, id)
	if err != nil {
		s.logger.Error("failed to load session", "session_id", id, "err", err)
		conn.Close(websocket.StatusInternalError, "session unavailable")
		return
	}
	if err := s.writeWS(ctx, conn, first); err != nil {
		return
	}

	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if err := s.writeWS(ctx, conn, msg); err != nil {
				s.logger.Debug("websocket write failed", "session_id", id, "err", err)
				return
			}
		}
	}
}

func (s *Server) writeWS(ctx context.Context, conn *websocket.Conn, msg []byte) error {
	ctx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
	defer cancel()
	return conn.Write(ctx, websocket.MessageText, msg)
}
