package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"albumbot/logger"
	"albumbot/store"
)

// StatusServer exposes a small read-only HTTP surface next to the bot:
// liveness and ledger statistics. It is meant to be bound to localhost.
type StatusServer struct {
	store  store.RecordStore
	server *http.Server
}

// New creates a status server listening on addr.
func New(addr string, st store.RecordStore) *StatusServer {
	s := &StatusServer{store: st}

	router := mux.NewRouter()
	router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	router.HandleFunc("/api/stats", s.handleStats).Methods(http.MethodGet)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	return s
}

// Start runs the listener in the calling goroutine.
func (s *StatusServer) Start() error {
	logger.Info("status server listening", logger.String("addr", s.server.Addr))
	err := s.server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *StatusServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

// statsResponse is the /api/stats payload.
type statsResponse struct {
	Users   int            `json:"users"`
	Records int            `json:"records"`
	PerUser map[string]int `json:"perUser"`
}

func (s *StatusServer) handleStats(w http.ResponseWriter, _ *http.Request) {
	ledger := s.store.Snapshot()

	resp := statsResponse{
		Users:   len(ledger),
		PerUser: make(map[string]int, len(ledger)),
	}
	for userID, records := range ledger {
		resp.PerUser[userID] = len(records)
		resp.Records += len(records)
	}
	writeJSON(w, resp)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to write response", logger.ErrorField(err))
	}
}
