// Package control serves a small local HTTP API for watching a running farm.
package control

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/small-frappuccino/cafefarm/pkg/farm"
	"github.com/small-frappuccino/cafefarm/pkg/log"
)

const (
	defaultMaxBodyBytes = 64 * 1024
)

// StatusSource publishes the farm state.
type StatusSource interface {
	Snapshot() farm.Snapshot
}

// Server exposes the session counters and a runtime log-level switch.
type Server struct {
	addr       string
	source     StatusSource
	httpServer *http.Server
	listener   net.Listener
}

// NewServer returns nil if addr is empty.
func NewServer(addr string, source StatusSource) *Server {
	addr = strings.TrimSpace(addr)
	if addr == "" || source == nil {
		return nil
	}

	s := &Server{
		addr:   addr,
		source: source,
	}
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler returns the API routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/status", s.handleStatus)
	mux.HandleFunc("/v1/runtime-config", s.handleRuntimeConfig)
	return mux
}

// Addr returns the bound address once started.
func (s *Server) Addr() string {
	if s == nil {
		return ""
	}
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// Start opens the control server listening socket.
func (s *Server) Start() error {
	if s == nil {
		return nil
	}

	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("bind control server: %w", err)
	}
	s.listener = ln

	log.ApplicationLogger().Info("Control server listening", "addr", ln.Addr().String())

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.ApplicationLogger().Error("Control server stopped unexpectedly", "err", err)
		}
	}()

	return nil
}

// Stop shuts down the control server.
func (s *Server) Stop(ctx context.Context) error {
	if s == nil || s.httpServer == nil {
		return nil
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("shutdown control server: %w", err)
	}

	log.ApplicationLogger().Info("Control server stopped", "addr", s.addr)
	return nil
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, s.source.Snapshot())
}

func (s *Server) handleRuntimeConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, defaultMaxBodyBytes)
	defer r.Body.Close()

	var patch map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, fmt.Sprintf("invalid payload: %v", err), http.StatusBadRequest)
		return
	}
	if len(patch) == 0 {
		http.Error(w, "payload must contain at least one field", http.StatusBadRequest)
		return
	}

	applied := make(map[string]string, len(patch))
	for field, raw := range patch {
		setter, ok := runtimeFieldSetters[field]
		if !ok {
			http.Error(w, fmt.Sprintf("unknown field %q", field), http.StatusBadRequest)
			return
		}
		v, err := setter(raw)
		if err != nil {
			http.Error(w, fmt.Sprintf("field %s: %v", field, err), http.StatusBadRequest)
			return
		}
		applied[field] = v
	}

	writeJSON(w, map[string]any{
		"status":  "ok",
		"applied": applied,
	})
}

type setterFunc func(json.RawMessage) (string, error)

var runtimeFieldSetters = map[string]setterFunc{
	"log_level": func(raw json.RawMessage) (string, error) {
		v, err := decodeString(raw)
		if err != nil {
			return "", err
		}
		level := log.ParseLevel(v)
		log.GlobalLogger.SetLevel(level)
		return level.String(), nil
	},
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.ApplicationLogger().Error("Failed to encode control response", "err", err)
	}
}

func decodeString(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", fmt.Errorf("empty string value")
	}

	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", err
	}
	return v, nil
}
