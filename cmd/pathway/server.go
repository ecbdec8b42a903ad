package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/pathway"
	"github.com/poiesic/pathway/ai"
	"github.com/poiesic/pathway/core"
	"github.com/poiesic/pathway/metrics"
	"github.com/poiesic/pathway/recommend"
	"github.com/poiesic/pathway/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"
)

const shutdownTimeout = 10 * time.Second

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "Serve recommendations over HTTP",
		Action: serveAction,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address; overrides server.address",
			},
		},
	}
}

func serveAction(c *cli.Context) error {
	cfg := configFrom(c)
	if addr := c.String("addr"); addr != "" {
		cfg.Server.Address = addr
	}
	logger := slog.Default().With("component", "server")

	pool, err := ants.NewPool(cfg.Index.PoolSize, ants.WithNonblocking(true))
	if err != nil {
		return err
	}
	defer pool.Release()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	monitor := metrics.NewPrometheusMonitor(reg)

	engine, err := openEngine(cfg, pathway.WithRecommenderOptions(
		recommend.WithDefaultParams(cfg.Params()),
		recommend.WithMonitor(monitor),
		recommend.WithPool(pool),
	))
	if err != nil {
		return fmt.Errorf("failed to open engine: %w", err)
	}
	defer engine.Close()

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Serve health and metrics even when the embedder is down at startup;
	// recommendations return 503 until POST /v1/reindex succeeds.
	if _, err := engine.Reindex(ctx); err != nil {
		logger.Error("initial reindex failed", "err", err)
	}

	s := &server{
		engine:   engine,
		defaults: cfg.Params(),
		maxBody:  cfg.Server.MaxBodyBytes,
		logger:   logger,
	}
	httpServer := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           s.routes(reg, cfg.Server.RequestTimeout),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Server.Address)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

type server struct {
	engine   *pathway.Engine
	defaults recommend.Params
	maxBody  int64
	logger   *slog.Logger
}

func (s *server) routes(reg prometheus.Gatherer, timeout time.Duration) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.health)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.Timeout(timeout))
		r.Post("/recommendations", s.recommendations)
		r.Post("/reindex", s.reindex)
		r.Get("/manifest", s.manifest)
	})
	return r
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error apiError `json:"error"`
}

type recommendationsResponse struct {
	Recommendations []core.Recommendation `json:"recommendations"`
}

type explainResponse struct {
	Candidates []explanation `json:"candidates"`
}

type healthResponse struct {
	Status  string `json:"status"`
	Indexed bool   `json:"indexed"`
	Items   int    `json:"items"`
}

type manifestResponse struct {
	Model       string    `json:"model"`
	Fingerprint string    `json:"fingerprint"`
	Items       int       `json:"items"`
	Dimensions  int       `json:"dimensions"`
	BuiltAt     time.Time `json:"built_at"`
}

func newManifestResponse(m *core.IndexManifest) manifestResponse {
	return manifestResponse{
		Model:       m.Model,
		Fingerprint: fmt.Sprintf("%016x", uint64(m.Fingerprint)),
		Items:       m.Items,
		Dimensions:  m.Dimensions,
		BuiltAt:     m.BuiltAt,
	}
}

func (s *server) writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("failed to marshal response", "err", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		s.logger.Debug("failed to write response", "err", err)
	}
}

func (s *server) writeError(w http.ResponseWriter, status int, code string, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "code", code, "err", err)
	}
	s.writeJSON(w, status, errorResponse{Error: apiError{Code: code, Message: err.Error()}})
}

// statusFor maps engine errors to HTTP status and error code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, recommend.ErrInvalidParams):
		return http.StatusBadRequest, "invalid_params"
	case errors.Is(err, core.ErrInvalidProfile):
		return http.StatusBadRequest, "invalid_profile"
	case errors.Is(err, pathway.ErrNotIndexed):
		return http.StatusServiceUnavailable, "not_indexed"
	case errors.Is(err, ai.ErrEmbedderUnavailable):
		return http.StatusServiceUnavailable, "embedder_unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

// queryParams reads optional top_n, alpha, beta and gamma query values.
func queryParams(q url.Values, defaults recommend.Params) ([]recommend.RequestOption, error) {
	opts := []recommend.RequestOption{recommend.WithParams(defaults)}
	if v := q.Get("top_n"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("%w: top_n %q", recommend.ErrInvalidParams, v)
		}
		opts = append(opts, recommend.WithTopN(n))
	}
	floats := []struct {
		name  string
		apply func(float64) recommend.RequestOption
	}{
		{"alpha", recommend.WithAlpha},
		{"beta", recommend.WithBeta},
		{"gamma", recommend.WithGamma},
	}
	for _, f := range floats {
		v := q.Get(f.name)
		if v == "" {
			continue
		}
		x, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s %q", recommend.ErrInvalidParams, f.name, v)
		}
		opts = append(opts, f.apply(x))
	}
	return opts, nil
}

func (s *server) recommendations(w http.ResponseWriter, r *http.Request) {
	opts, err := queryParams(r.URL.Query(), s.defaults)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid_params", err)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, http.StatusRequestEntityTooLarge, "body_too_large", err)
			return
		}
		s.writeError(w, http.StatusBadRequest, "invalid_body", err)
		return
	}
	var profile core.UserProfile
	if err := json.Unmarshal(body, &profile); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid_json", err)
		return
	}

	if explainFlag, _ := strconv.ParseBool(r.URL.Query().Get("explain")); explainFlag {
		candidates, err := s.engine.Score(r.Context(), &profile, opts...)
		if err != nil {
			status, code := statusFor(err)
			s.writeError(w, status, code, err)
			return
		}
		s.writeJSON(w, http.StatusOK, explainResponse{Candidates: explain(candidates)})
		return
	}

	recs, err := s.engine.Recommend(r.Context(), &profile, opts...)
	if err != nil {
		status, code := statusFor(err)
		s.writeError(w, status, code, err)
		return
	}
	s.writeJSON(w, http.StatusOK, recommendationsResponse{Recommendations: recs})
}

func (s *server) reindex(w http.ResponseWriter, r *http.Request) {
	manifest, err := s.engine.Reindex(r.Context())
	if err != nil {
		status, code := statusFor(err)
		s.writeError(w, status, code, err)
		return
	}
	s.writeJSON(w, http.StatusOK, newManifestResponse(manifest))
}

func (s *server) manifest(w http.ResponseWriter, r *http.Request) {
	manifest, err := s.engine.Manifest(r.Context())
	if errors.Is(err, storage.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "not_indexed", err)
		return
	}
	if err != nil {
		status, code := statusFor(err)
		s.writeError(w, status, code, err)
		return
	}
	s.writeJSON(w, http.StatusOK, newManifestResponse(manifest))
}

func (s *server) health(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok"}
	if rec, err := s.engine.Recommender(); err == nil {
		resp.Indexed = true
		resp.Items = rec.Index().Len()
	}
	s.writeJSON(w, http.StatusOK, resp)
}
