package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/zakariaelb/canrag/internal/llm"
	"github.com/zakariaelb/canrag/internal/rag"
	"github.com/zakariaelb/canrag/internal/vectorstore"
)

// Config holds server configuration.
type Config struct {
	Port     int
	AllowAll bool // allow all CORS origins (dev mode)
}

// Server exposes the question-answering engine over REST and WebSocket.
// Session history lives in memory only and dies with the process.
type Server struct {
	cfg        Config
	engine     *rag.Engine
	store      vectorstore.Store
	sessions   *sessionStore
	router     chi.Router
	httpServer *http.Server
}

// New creates a server wired to the given engine and index.
func New(cfg Config, engine *rag.Engine, store vectorstore.Store) *Server {
	s := &Server{
		cfg:      cfg,
		engine:   engine,
		store:    store,
		sessions: newSessionStore(),
	}
	s.router = s.buildRouter()
	return s
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Post("/api/ask", s.handleAsk)
	r.Get("/api/stats", s.handleStats)
	r.Get("/ws", s.handleWebSocket)

	return r
}

// Router returns the chi router, mainly for tests.
func (s *Server) Router() chi.Router { return s.router }

// askRequest is the REST ask payload. History is optional; the caller owns
// the conversation state.
type askRequest struct {
	Question   string        `json:"question"`
	History    []chatMessage `json:"history,omitempty"`
	RenderHTML bool          `json:"render_html,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type askResponse struct {
	Answer string `json:"answer"`
	Mode   string `json:"mode"`
	HTML   string `json:"html,omitempty"`
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Question == "" {
		writeError(w, http.StatusBadRequest, "question is required")
		return
	}

	history, err := toLLMMessages(req.History)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	answer, mode, err := s.engine.Ask(r.Context(), history, req.Question)
	if err != nil {
		log.Printf("server: ask: %v", err)
		writeError(w, http.StatusBadGateway, "answer generation failed")
		return
	}

	resp := askResponse{Answer: answer, Mode: string(mode)}
	if req.RenderHTML {
		html, err := RenderMarkdown(answer)
		if err != nil {
			log.Printf("server: render: %v", err)
		} else {
			resp.HTML = html
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

type statsResponse struct {
	Chunks     int `json:"chunks"`
	Dimensions int `json:"dimensions"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statsResponse{
		Chunks:     s.store.Count(),
		Dimensions: s.store.Dimensions(),
	})
}

func toLLMMessages(msgs []chatMessage) ([]llm.Message, error) {
	out := make([]llm.Message, 0, len(msgs))
	for _, m := range msgs {
		switch llm.Role(m.Role) {
		case llm.RoleUser, llm.RoleAssistant:
			out = append(out, llm.Message{Role: llm.Role(m.Role), Content: m.Content})
		default:
			return nil, fmt.Errorf("invalid history role %q", m.Role)
		}
	}
	return out, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("server: encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// Start begins listening on the configured port.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("canrag server listening on %s", addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
