package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/couchcryptid/wx-clean-service/internal/adapter/csvio"
	"github.com/couchcryptid/wx-clean-service/internal/analysis"
	"github.com/couchcryptid/wx-clean-service/internal/domain"
	"github.com/couchcryptid/wx-clean-service/internal/pipeline"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server exposes the cleaning endpoints plus health, readiness, and metrics.
type Server struct {
	httpServer *http.Server
	cleaner    *pipeline.Cleaner
	maxUpload  int64
	logger     *slog.Logger
}

// NewServer creates an HTTP server. Request bodies larger than maxUpload
// bytes are rejected.
func NewServer(addr string, cleaner *pipeline.Cleaner, maxUpload int64, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  60 * time.Second,
			WriteTimeout: 120 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		cleaner:   cleaner,
		maxUpload: maxUpload,
		logger:    logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(cleaner))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("POST /v1/clean", s.handleClean)
	mux.HandleFunc("POST /v1/aggregate", s.handleAggregate)
	mux.HandleFunc("POST /v1/compare", s.handleCompare)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

type cleanResponse struct {
	Report  pipeline.CleanReport `json:"report"`
	Records []domain.CleanRecord `json:"records"`
}

func (s *Server) handleClean(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.readDataset(w, r)
	if !ok {
		return
	}
	res, err := s.cleaner.Clean(r.Context(), ds)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.cleaner.Publish(r.Context(), res); err != nil {
		s.logger.Error("publish failed", "run_id", res.Report.RunID, "error", err)
		writeError(w, http.StatusBadGateway, err)
		return
	}

	w.Header().Set("X-Run-Id", res.Report.RunID)
	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, cleanResponse{
			Report:  res.Report,
			Records: domain.Records(res.Dataset, res.Report.RunID),
		})
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	if err := csvio.Write(w, res.Dataset); err != nil {
		s.logger.Error("write cleaned csv", "run_id", res.Report.RunID, "error", err)
	}
}

func (s *Server) handleAggregate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	column := q.Get("column")
	if column == "" {
		writeError(w, http.StatusBadRequest, errors.New("column is required"))
		return
	}
	period, err := domain.ParsePeriod(q.Get("period"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	reducer := domain.ReducerMean
	if v := q.Get("reducer"); v != "" {
		if reducer, err = domain.ParseReducer(v); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
	}

	ds, ok := s.readDataset(w, r)
	if !ok {
		return
	}
	if ds, ok = s.maybeClean(w, r, ds); !ok {
		return
	}
	agg, err := s.cleaner.Aggregate(ds, column, period, reducer)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, agg)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	if err := csvio.WriteAggregate(w, agg); err != nil {
		s.logger.Error("write aggregate csv", "column", column, "error", err)
	}
}

type compareResponse struct {
	analysis.Comparison
	Equation     string `json:"equation"`
	SlopePLabel  string `json:"slope_p_label"`
	KendallLabel string `json:"kendall_p_label"`
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	x, y := q.Get("x"), q.Get("y")
	if x == "" || y == "" {
		writeError(w, http.StatusBadRequest, errors.New("x and y are required"))
		return
	}

	ds, ok := s.readDataset(w, r)
	if !ok {
		return
	}
	if ds, ok = s.maybeClean(w, r, ds); !ok {
		return
	}
	c, err := analysis.CompareColumns(ds, x, y)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, compareResponse{
		Comparison:   c,
		Equation:     c.Equation(),
		SlopePLabel:  analysis.FormatPValue(c.SlopeP),
		KendallLabel: analysis.FormatPValue(c.KendallP),
	})
}

// readDataset parses the CSV request body. It writes the error response and
// returns false on failure.
func (s *Server) readDataset(w http.ResponseWriter, r *http.Request) (*domain.Dataset, bool) {
	body := http.MaxBytesReader(w, r.Body, s.maxUpload)
	defer body.Close()

	ds, err := csvio.Read(body, r.URL.Query().Get("station"))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, err)
			return nil, false
		}
		writeError(w, http.StatusBadRequest, err)
		return nil, false
	}
	return ds, true
}

// maybeClean runs the cleaning chain first when the request asks for it.
func (s *Server) maybeClean(w http.ResponseWriter, r *http.Request, ds *domain.Dataset) (*domain.Dataset, bool) {
	v := r.URL.Query().Get("clean")
	if v == "" {
		return ds, true
	}
	clean, err := strconv.ParseBool(v)
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("clean must be a boolean"))
		return nil, false
	}
	if !clean {
		return ds, true
	}
	res, err := s.cleaner.Clean(r.Context(), ds)
	if err != nil {
		s.fail(w, r, err)
		return nil, false
	}
	return res.Dataset, true
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrUnknownColumn),
		errors.Is(err, domain.ErrUnsupportedPeriod),
		errors.Is(err, domain.ErrUnsupportedReducer),
		errors.Is(err, domain.ErrPhaseNotClassified):
		writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, domain.ErrInsufficientData):
		writeError(w, http.StatusUnprocessableEntity, err)
	default:
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, err)
	}
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
