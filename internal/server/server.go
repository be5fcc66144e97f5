package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/MakikoOhashi/lexidrill/internal/config"
	"github.com/MakikoOhashi/lexidrill/internal/difficulty"
	"github.com/MakikoOhashi/lexidrill/internal/embeddings"
	"github.com/MakikoOhashi/lexidrill/internal/llm"
	"github.com/MakikoOhashi/lexidrill/internal/pipeline"
	"github.com/MakikoOhashi/lexidrill/internal/target"
)

// Server is the HTTP surface over the generation engine. All state is
// per-request; the server itself only holds read-only configuration and the
// shared capabilities.
type Server struct {
	httpServer *http.Server
	cfg        config.Config
	engine     *pipeline.Engine
	estimator  *target.Estimator
	logger     *zap.Logger
}

// New wires the server. client may be nil, in which case generation runs
// purely from deterministic candidates.
func New(cfg config.Config, client llm.Client, embedder embeddings.Embedder, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if embedder == nil {
		embedder = embeddings.NewHashEmbedder()
	}

	s := &Server{
		cfg:       cfg,
		engine:    pipeline.NewEngine(cfg, client, embedder, logger),
		estimator: target.NewEstimator(cfg.EstimateOptions()),
		logger:    logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /weights", s.handleWeights)
	mux.HandleFunc("POST /score", s.handleScore)
	mux.HandleFunc("POST /target", s.handleTarget)
	mux.HandleFunc("POST /generate/cloze", s.handleGenerateCloze)
	mux.HandleFunc("POST /generate/choice", s.handleGenerateChoice)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      s.withLogging(s.withCORS(mux)),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // generation calls out to the provider
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler exposes the configured handler chain for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start listens until interrupted, then shuts down gracefully.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errc <- err
		}
	}()

	select {
	case err := <-errc:
		return err
	case <-stop:
	}

	s.logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("duration", time.Since(start)))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleWeights returns the process-wide default difficulty weighting.
func (s *Server) handleWeights(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, s.cfg.DefaultWeights())
}

func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (s *Server) errorResponse(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Error(err))
	}
	s.jsonResponse(w, status, map[string]string{"error": err.Error()})
}

// decodeInto decodes a JSON body, mapping malformed input onto the
// client-error type so it surfaces as 400.
func decodeInto(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return &difficulty.InvalidInputError{Message: "malformed JSON body: " + err.Error()}
	}
	return nil
}
