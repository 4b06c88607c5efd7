package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/zakariaelb/canrag/internal/llm"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// sessionStore keeps per-session chat history in memory. Nothing is written
// to disk; a restart starts every conversation over.
type sessionStore struct {
	mu       sync.Mutex
	sessions map[string][]llm.Message
}

func newSessionStore() *sessionStore {
	return &sessionStore{sessions: make(map[string][]llm.Message)}
}

// history returns a copy so the caller can read it without holding the lock.
func (s *sessionStore) history(id string) []llm.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	h := s.sessions[id]
	out := make([]llm.Message, len(h))
	copy(out, h)
	return out
}

func (s *sessionStore) append(id string, msgs ...llm.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = append(s.sessions[id], msgs...)
}

func (s *sessionStore) reset(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// wsRequest is the incoming WebSocket message format.
type wsRequest struct {
	Type      string `json:"type"`       // "ask" or "reset"
	SessionID string `json:"session_id"` // empty for new sessions
	Content   string `json:"content"`
}

// wsResponse is the outgoing WebSocket message format.
type wsResponse struct {
	Type      string `json:"type"` // "response" or "error"
	SessionID string `json:"session_id"`
	Content   string `json:"content"`
	Mode      string `json:"mode,omitempty"`
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("server: websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("server: websocket read: %v", err)
			}
			return
		}

		var req wsRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			sendError(conn, "", "invalid message format")
			continue
		}

		switch req.Type {
		case "ask":
			s.handleWSAsk(conn, r, req)
		case "reset":
			s.sessions.reset(req.SessionID)
			sendResponse(conn, wsResponse{Type: "response", SessionID: req.SessionID})
		default:
			sendError(conn, req.SessionID, "unknown message type: "+req.Type)
		}
	}
}

func (s *Server) handleWSAsk(conn *websocket.Conn, r *http.Request, req wsRequest) {
	if req.Content == "" {
		sendError(conn, req.SessionID, "content is required")
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	history := s.sessions.history(sessionID)
	answer, mode, err := s.engine.Ask(r.Context(), history, req.Content)
	if err != nil {
		log.Printf("server: websocket ask: %v", err)
		sendError(conn, sessionID, "answer generation failed: "+err.Error())
		return
	}

	s.sessions.append(sessionID,
		llm.Message{Role: llm.RoleUser, Content: req.Content},
		llm.Message{Role: llm.RoleAssistant, Content: answer},
	)

	sendResponse(conn, wsResponse{
		Type:      "response",
		SessionID: sessionID,
		Content:   answer,
		Mode:      string(mode),
	})
}

func sendResponse(conn *websocket.Conn, resp wsResponse) {
	if err := conn.WriteJSON(resp); err != nil {
		log.Printf("server: websocket write: %v", err)
	}
}

func sendError(conn *websocket.Conn, sessionID, message string) {
	resp := wsResponse{
		Type:      "error",
		SessionID: sessionID,
		Content:   message,
	}
	if err := conn.WriteJSON(resp); err != nil {
		log.Printf("server: websocket write error: %v", err)
	}
}
