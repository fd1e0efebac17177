// Package server exposes the intake conversation as a stateless JSON API. The
// client keeps the conversation state and sends it back with every turn.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spigell/talent-screener/internal/intake"
	"github.com/spigell/talent-screener/internal/logger"
	"github.com/spigell/talent-screener/internal/record"
	"go.uber.org/zap"
)

const (
	maxBodyBytes    = 1 << 20
	shutdownTimeout = 5 * time.Second
)

// TurnRequest carries the state returned by the previous call and the user's
// message.
type TurnRequest struct {
	ConversationID string       `json:"conversation_id,omitempty"`
	State          intake.State `json:"state"`
	Input          string       `json:"input"`
}

// TurnResponse is returned by the start and turn endpoints.
type TurnResponse struct {
	ConversationID string       `json:"conversation_id"`
	State          intake.State `json:"state"`
	Message        string       `json:"message"`
	Progress       float64      `json:"progress"`
	Completed      bool         `json:"completed"`
}

// SummaryRequest asks for the summary of a state.
type SummaryRequest struct {
	State intake.State `json:"state"`
}

// SummaryResponse holds the rendered summary and the candidate record.
type SummaryResponse struct {
	Summary   string            `json:"summary"`
	Info      string            `json:"info"`
	Candidate *record.Candidate `json:"candidate"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Server handles the HTTP API.
type Server struct {
	machine  *intake.Machine
	registry *prometheus.Registry
	metrics  *Metrics
	logger   *zap.Logger
	now      func() time.Time
	newID    func() string
}

// New creates a Server. Metrics are registered with reg.
func New(machine *intake.Machine, reg *prometheus.Registry, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		machine:  machine,
		registry: reg,
		metrics:  NewMetrics(reg),
		logger:   log,
		now:      time.Now,
		newID:    func() string { return uuid.NewString() },
	}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.health)
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{Registry: s.registry}))

	r.Route("/v1", func(r chi.Router) {
		r.Post("/conversations", s.start)
		r.Post("/turn", s.turn)
		r.Post("/summary", s.summary)
	})

	return r
}

// ListenAndServe serves handler on addr until ctx is cancelled.
func ListenAndServe(ctx context.Context, addr string, handler http.Handler, log *zap.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("starting http server", zap.String("addr", addr))
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	case <-ctx.Done():
		log.Info("shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn("graceful shutdown did not complete", zap.Error(err))
			return srv.Close()
		}
		return nil
	}
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) start(w http.ResponseWriter, r *http.Request) {
	id := s.newID()
	state, message := s.machine.Start(r.Context())
	s.metrics.started.Inc()

	s.logger.Info("conversation started", logger.ConversationFields(id, state.Stage.String())...)
	s.writeJSON(w, http.StatusCreated, s.turnResponse(id, state, message))
}

func (s *Server) turn(w http.ResponseWriter, r *http.Request) {
	var req TurnRequest
	if !s.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.State.Stage.String()) == "" {
		s.writeError(w, http.StatusBadRequest, "state.stage is required")
		return
	}
	if err := req.State.Validate(); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	id := req.ConversationID
	if id == "" {
		id = s.newID()
	}

	started := s.now()
	next, message := s.machine.ProcessTurn(r.Context(), req.State, req.Input)
	s.metrics.observeTurn(req.State.Stage, next.Stage, s.now().Sub(started).Seconds())

	s.logger.Debug("turn processed",
		append(logger.ConversationFields(id, req.State.Stage.String()),
			zap.String("next_stage", next.Stage.String()))...,
	)
	s.writeJSON(w, http.StatusOK, s.turnResponse(id, next, message))
}

func (s *Server) summary(w http.ResponseWriter, r *http.Request) {
	var req SummaryRequest
	if !s.decode(w, r, &req) {
		return
	}

	candidate, err := record.FromState(req.State, s.now())
	if err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, SummaryResponse{
		Summary:   intake.Summary(req.State),
		Info:      intake.CandidateInfo(req.State),
		Candidate: candidate,
	})
}

func (s *Server) turnResponse(id string, state intake.State, message string) TurnResponse {
	return TurnResponse{
		ConversationID: id,
		State:          state,
		Message:        message,
		Progress:       intake.Progress(state),
		Completed:      state.Stage == intake.StageCompleted,
	}
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := sonic.ConfigStd.NewDecoder(r.Body).Decode(v); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, errorResponse{Error: message})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := sonic.ConfigStd.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("encode response", zap.Error(err))
	}
}
