package bridge

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"syscall"

	"github.com/gorilla/mux"

	"github.com/kr0mka/totalmix-osc-bridge/devices/totalmix"
	"github.com/kr0mka/totalmix-osc-bridge/logging"
)

// Console is the bridge's view of the mixing console. *totalmix.TotalMix
// satisfies it.
type Console interface {
	EnumerateChannels() ([]totalmix.ChannelName, error)
	ReadEQ(channel int) ([]totalmix.Band, error)
	WriteEQ(channel int, filters []totalmix.Band) (totalmix.WriteResult, error)
}

// Server exposes the console's EQ over a synchronous JSON API. Each
// request runs its console transaction inline and blocks for the
// transaction's cumulative settle waits.
type Server struct {
	console Console
	port    int
	handler http.Handler
}

func NewServer(console Console, port int) *Server {
	s := &Server{console: console, port: port}

	r := mux.NewRouter()
	r.HandleFunc("/api/status", s.handleStatus).Methods(http.MethodGet)
	r.HandleFunc("/api/channels", s.handleChannels).Methods(http.MethodGet)
	r.HandleFunc("/api/channel/{channel}/eq", s.handleReadEQ).Methods(http.MethodGet)
	r.HandleFunc("/api/channel/{channel}/eq", s.handleWriteEQ).Methods(http.MethodPost)
	r.NotFoundHandler = http.HandlerFunc(s.handleNotFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(s.handleNotFound)

	// CORS wraps the router rather than using r.Use: mux middleware does
	// not run for NotFoundHandler, and OPTIONS must short-circuit before
	// method matching.
	s.handler = corsMiddleware(r)
	return s
}

// Handler returns the configured routes, for mounting under a test server.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ListenAndServe blocks serving the API. A failure to bind is returned
// with its cause spelled out; the caller should treat it as fatal rather
// than run without a transport.
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.port))
	if err != nil {
		return describeBindError(err, s.port)
	}
	logging.Get(logging.HTTP).Info("serving", "port", s.port)
	return http.Serve(ln, s.handler)
}

func describeBindError(err error, port int) error {
	switch {
	case errors.Is(err, syscall.EADDRINUSE):
		return fmt.Errorf("port %d is already in use (is another instance of the bridge running?): %w", port, err)
	case errors.Is(err, syscall.EACCES) || os.IsPermission(err):
		return fmt.Errorf("no permission to bind port %d (try a port above 1024 or run with elevated privileges): %w", port, err)
	default:
		return fmt.Errorf("cannot bind port %d: %w", port, err)
	}
}

// corsMiddleware permits any origin and answers preflight requests, so
// browser-hosted EQ tools can call the bridge directly.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logging.Get(logging.HTTP).Error("failed to encode response", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// channelVar extracts and validates the 1-based channel index from the
// request path. Validation failures never reach the console.
func channelVar(r *http.Request) (int, bool) {
	channel, err := strconv.Atoi(mux.Vars(r)["channel"])
	if err != nil || channel < 1 {
		return 0, false
	}
	return channel, true
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "port": s.port})
}

func (s *Server) handleChannels(w http.ResponseWriter, r *http.Request) {
	channels, err := s.console.EnumerateChannels()
	if err != nil {
		logging.Get(logging.HTTP).Error("channel enumeration failed", "err", err)
		writeError(w, http.StatusInternalServerError, "Console transaction failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"channels": channels})
}

func (s *Server) handleReadEQ(w http.ResponseWriter, r *http.Request) {
	channel, ok := channelVar(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid channel")
		return
	}

	filters, err := s.console.ReadEQ(channel)
	if err != nil {
		logging.Get(logging.HTTP).Error("eq read failed", "channel", channel, "err", err)
		writeError(w, http.StatusInternalServerError, "Console transaction failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"filters": filters})
}

func (s *Server) handleWriteEQ(w http.ResponseWriter, r *http.Request) {
	channel, ok := channelVar(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid channel")
		return
	}

	var body struct {
		Filters []totalmix.Band `json:"filters"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := s.console.WriteEQ(channel, body.Filters)
	if err != nil {
		logging.Get(logging.HTTP).Error("eq write failed", "channel", channel, "err", err)
		writeError(w, http.StatusInternalServerError, "Console transaction failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"roomEQ":  result.RoomEQ,
		"peq":     result.ParametricEQ,
	})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "Not found")
}
