package server

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ziadkadry99/dirpage/internal/search"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// liveRequest is the incoming WebSocket message format.
type liveRequest struct {
	Type string `json:"type"` // "input"
	Term string `json:"term"`
}

// liveResponse is the outgoing WebSocket message format.
type liveResponse struct {
	Type      string `json:"type"` // "ready", "results" or "error"
	SessionID string `json:"session_id"`
	Term      string `json:"term,omitempty"`
	Visible   []int  `json:"visible"`
	Showing   int    `json:"showing"`
	Total     int    `json:"total"`
	NoResults bool   `json:"no_results"`
	CountText string `json:"count_text,omitempty"`
	Message   string `json:"message,omitempty"`
}

// liveSession is one live search connection. Debounced filters run on timer
// goroutines, so writes are serialized through mu.
type liveSession struct {
	id        string
	conn      *websocket.Conn
	index     *search.Index
	debouncer *search.Debouncer
	logger    *zap.Logger

	mu sync.Mutex
}

func (s *Server) handleLiveSearch(w http.ResponseWriter, r *http.Request) {
	renderID := r.URL.Query().Get("render")
	if renderID == "" {
		http.Error(w, `{"error":"render is required"}`, http.StatusBadRequest)
		return
	}

	// Search runs over exactly the listings the page rendered, not a fresh
	// load that may have come back from another source.
	snapshot, ok, err := s.deps.Renders.Get(r.Context(), renderID)
	if err != nil {
		s.logger.Warn("Loading rendered listings failed", zap.String("render", renderID), zap.Error(err))
		http.Error(w, `{"error":"rendered listings unavailable"}`, http.StatusServiceUnavailable)
		return
	}
	if !ok {
		http.Error(w, `{"error":"render not found or expired"}`, http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("Live search upgrade failed", zap.Error(err))
		return
	}

	sess := &liveSession{
		id:        uuid.New().String(),
		conn:      conn,
		index:     search.NewIndex(snapshot.Listings),
		debouncer: search.NewDebouncer(s.deps.Debounce),
		logger:    s.logger.With(zap.String("key", snapshot.Slug), zap.String("render", renderID)),
	}
	sess.logger = sess.logger.With(zap.String("session", sess.id))
	sess.run()
}

func (ls *liveSession) run() {
	defer ls.conn.Close()
	defer ls.debouncer.Stop()

	ls.logger.Debug("Live search session opened")
	ls.send(liveResponse{Type: "ready", Total: ls.index.Len(), Visible: []int{}})

	for {
		_, msg, err := ls.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				ls.logger.Warn("Live search read failed", zap.Error(err))
			}
			ls.logger.Debug("Live search session closed")
			return
		}

		var req liveRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			ls.sendError("invalid message format")
			continue
		}

		switch req.Type {
		case "input":
			term := req.Term
			ls.debouncer.Trigger(func() { ls.sendResults(term) })
		default:
			ls.sendError("unknown message type: " + req.Type)
		}
	}
}

func (ls *liveSession) sendResults(term string) {
	result := ls.index.Filter(term)
	ls.send(liveResponse{
		Type:      "results",
		Term:      result.Term,
		Visible:   result.Indices(),
		Showing:   result.Showing,
		Total:     result.Total,
		NoResults: result.NoResults,
		CountText: result.CountText(),
	})
}

func (ls *liveSession) sendError(message string) {
	ls.send(liveResponse{Type: "error", Visible: []int{}, Message: message})
}

func (ls *liveSession) send(resp liveResponse) {
	resp.SessionID = ls.id
	ls.mu.Lock()
	defer ls.mu.Unlock()
	if err := ls.conn.WriteJSON(resp); err != nil {
		ls.logger.Debug("Live search write failed", zap.Error(err))
	}
}

