// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package bridge exposes a session over local HTTP so a UI can drive it.
package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	luxlog "github.com/luxfi/log"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/luxfi/lc1c/pkg/constants"
	"github.com/luxfi/lc1c/pkg/genesis"
	"github.com/luxfi/lc1c/pkg/orchestrator"
	"github.com/luxfi/lc1c/pkg/session"
	"github.com/luxfi/lc1c/pkg/statemachine"
)

// Server serves one session.
type Server struct {
	sess     *session.Session
	log      luxlog.Logger
	config   *ServerConfig
	server   *http.Server
	upgrader websocket.Upgrader
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	MaxHeaderBytes  int
	CORSOrigins     []string
	ShutdownTimeout time.Duration
}

// DefaultServerConfig returns default server configuration. Launch and
// install run for minutes, so the write timeout follows RequestTimeout.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Addr:            constants.DefaultBridgeAddr,
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    constants.RequestTimeout,
		MaxHeaderBytes:  1 << 20,
		CORSOrigins:     []string{"*"},
		ShutdownTimeout: 5 * time.Second,
	}
}

func NewServer(sess *session.Session, cfg *ServerConfig, log luxlog.Logger) *Server {
	if cfg == nil {
		cfg = DefaultServerConfig()
	}
	if log == nil {
		log = luxlog.NewNoOpLogger()
	}
	s := &Server{
		sess:   sess,
		log:    log,
		config: cfg,
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.allowedOrigin,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/health", s.handleHealth)
	mux.HandleFunc("/v1/state", s.handleState)
	mux.HandleFunc("/v1/install", s.handleInstall)
	mux.HandleFunc("/v1/verify", s.handleVerify)
	mux.HandleFunc("/v1/genesis-creator", s.handleGenesisCreator)
	mux.HandleFunc("/v1/config", s.handleConfig)
	mux.HandleFunc("/v1/launch", s.handleLaunch)
	mux.HandleFunc("/v1/kill", s.handleKill)
	mux.HandleFunc("/v1/chain-folders", s.handleChainFolders)
	mux.HandleFunc("/v1/snapshot", s.handleSnapshot)
	mux.HandleFunc("/v1/events", s.handleEvents)

	s.server = &http.Server{
		Addr:           cfg.Addr,
		Handler:        s.middleware(mux),
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		MaxHeaderBytes: cfg.MaxHeaderBytes,
	}
	return s
}

// Handler is the routed handler with middleware, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Run serves until ctx ends, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Info("bridge listening", zap.String("addr", s.config.Addr))
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (s *Server) allowedOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range s.config.CORSOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}

// middleware adds common middleware to all requests.
func (s *Server) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); origin != "" && s.allowedOrigin(r) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		// the websocket upgrade writes its own headers
		if r.URL.Path != "/v1/events" {
			w.Header().Set("Content-Type", "application/json")
		}
		next.ServeHTTP(w, r)
	})
}

type violation struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

type errorResponse struct {
	Error      string      `json:"error"`
	StatusCode int         `json:"statusCode"`
	Field      string      `json:"field,omitempty"`
	Violations []violation `json:"violations,omitempty"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Debug("failed writing response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, errorResponse{Error: message, StatusCode: status})
}

// writeFailure maps session errors to status codes. Rejected and concurrent
// calls are conflicts, bad configs are the caller's fault, the rest failed
// in the external programs.
func (s *Server) writeFailure(w http.ResponseWriter, err error) {
	var (
		rejected *statemachine.RejectedError
		invalid  *genesis.InvalidSpecError
	)
	switch {
	case errors.As(err, &invalid):
		resp := errorResponse{Error: err.Error(), StatusCode: http.StatusBadRequest, Field: invalid.Field}
		for _, v := range invalid.Violations() {
			resp.Violations = append(resp.Violations, violation{Field: v.Field, Reason: v.Reason})
		}
		s.writeJSON(w, http.StatusBadRequest, resp)
	case errors.Is(err, errBadRequest), errors.Is(err, genesis.ErrAssembly), errors.Is(err, orchestrator.ErrNilPayload):
		s.writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &rejected), errors.Is(err, orchestrator.ErrInFlight), errors.Is(err, orchestrator.ErrSessionEnded):
		s.writeError(w, http.StatusConflict, err.Error())
	default:
		s.writeError(w, http.StatusBadGateway, err.Error())
	}
}

func requireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method {
		return true
	}
	w.Header().Set("Allow", method)
	w.WriteHeader(http.StatusMethodNotAllowed)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: "method not allowed", StatusCode: http.StatusMethodNotAllowed})
	return false
}
