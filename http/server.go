package http

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"priorities/game"
	"priorities/store"
	"priorities/ws"
)

type Server struct {
	router   *mux.Router
	handlers *Handlers
}

func NewServer(rooms *game.Rooms, rounds *game.Rounds, wsManager *ws.Manager, st store.Store, heartbeatInterval time.Duration) *Server {
	router := mux.NewRouter()
	handlers := NewHandlers(rooms, rounds, st, wsManager, heartbeatInterval)

	server := &Server{
		router:   router,
		handlers: handlers,
	}

	server.setupRoutes()
	return server
}

func (s *Server) setupRoutes() {
	// Apply global middleware
	s.router.Use(LoggingMiddleware)
	s.router.Use(SecurityHeadersMiddleware)
	s.router.Use(CORSMiddleware)

	// Rate limiters for the endpoints an anonymous visitor can hammer.
	// Creation is scarcer than joining, so its entries are kept longer.
	createLimiter := NewRateLimiter(10.0/60.0, 5, 10*time.Minute)
	joinLimiter := NewRateLimiter(20.0/60.0, 10, 5*time.Minute)

	// Client bootstrap
	s.router.HandleFunc("/api/config", s.handlers.GetClientConfig).Methods("GET")

	// Room lifecycle
	s.router.Handle("/api/rooms", createLimiter.Middleware(http.HandlerFunc(s.handlers.CreateRoom))).Methods("POST")
	s.router.Handle("/api/rooms/{code}/join", joinLimiter.Middleware(http.HandlerFunc(s.handlers.JoinRoom))).Methods("POST")
	s.router.HandleFunc("/api/rooms/{code}", s.handlers.GetRoom).Methods("GET")
	s.router.HandleFunc("/api/leave-room", s.handlers.LeaveRoom).Methods("POST")
	s.router.HandleFunc("/api/heartbeat", s.handlers.Heartbeat).Methods("POST")

	// Round flow
	s.router.HandleFunc("/api/rooms/{roomId}/start", s.handlers.StartGame).Methods("POST")
	s.router.HandleFunc("/api/rooms/{roomId}/next", s.handlers.NextRound).Methods("POST")
	s.router.HandleFunc("/api/rounds/{roundId}/ranking", s.handlers.SubmitRanking).Methods("POST")
	s.router.HandleFunc("/api/rounds/{roundId}/guess", s.handlers.UpdateGuess).Methods("POST")
	s.router.HandleFunc("/api/rounds/{roundId}/final", s.handlers.SubmitFinalGuess).Methods("POST")

	// WebSocket route for live room state
	s.router.HandleFunc("/ws/rooms/{roomId}", s.handlers.HandleWebSocket)

	// Catch-all for unmatched API routes
	s.router.PathPrefix("/api/").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	})
}

func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) GetHTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
