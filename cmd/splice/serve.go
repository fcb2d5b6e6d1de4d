package main

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/vango-dev/splice/internal/artifact"
	"github.com/vango-dev/splice/internal/errors"
	"github.com/vango-dev/splice/pkg/engine"
	"github.com/vango-dev/splice/pkg/identity"
	"github.com/vango-dev/splice/pkg/node"
	"github.com/vango-dev/splice/pkg/render"
)

// maxInstanceBytes bounds POST /resolve bodies.
const maxInstanceBytes = 4 << 20

func serveCmd(flags *globalFlags) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the preview server",
		Long: `Serve the loaded template table over HTTP for previews and debugging.

Routes:
  GET  /healthz               liveness
  GET  /metrics               Prometheus metrics
  GET  /templates             invocation sites in the table
  GET  /templates/{location}  one template, with its identity keys and HTML
  POST /resolve               resolve a JSON instance (?page=1 for a document)

Examples:
  splice serve
  splice serve --addr :8080`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Serve.Addr = addr
			}
			logger, err := newLogger(cmd.ErrOrStderr(), cfg)
			if err != nil {
				return err
			}
			registry, info, err := loadRegistry(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}

			promReg := prometheus.NewRegistry()
			s := &previewServer{
				engine:  newEngine(cfg, registry, logger, promReg),
				info:    info,
				logger:  logger,
				metrics: promReg,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return s.listen(ctx, cfg.Serve.Addr)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Address to listen on (default from config)")

	return cmd
}

// previewServer exposes an engine over HTTP.
type previewServer struct {
	engine  *engine.Engine
	info    artifact.Info
	logger  *slog.Logger
	metrics prometheus.Gatherer
}

func (s *previewServer) listen(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("preview server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return errors.New("E151").WithDetail("listening on " + addr).Wrap(err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.New("E151").WithDetail("shutdown").Wrap(err)
	}
	s.logger.Info("preview server stopped")
	return nil
}

func (s *previewServer) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(s.metrics, promhttp.HandlerOpts{}))
	r.Get("/templates", s.listTemplates)
	r.Get("/templates/*", s.getTemplate)
	r.Post("/resolve", s.resolve)
	return r
}

func (s *previewServer) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"request_id", middleware.GetReqID(r.Context()),
			"duration", time.Since(start))
	})
}

func (s *previewServer) listTemplates(w http.ResponseWriter, r *http.Request) {
	reg := s.engine.Registry()
	keys := reg.Keys()
	locations := make([]string, len(keys))
	for i, k := range keys {
		locations[i] = k.String()
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"root":      reg.Root(),
		"digest":    s.info.Digest,
		"templates": locations,
	})
}

func (s *previewServer) getTemplate(w http.ResponseWriter, r *http.Request) {
	loc, err := node.ParseLocation(chi.URLParam(r, "*"))
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("E150").WithDetail(err.Error()))
		return
	}
	tmpl, ok := s.engine.Registry().Lookup(loc)
	if !ok {
		writeError(w, http.StatusNotFound, errors.New("E100").WithLocationString(loc.String()))
		return
	}

	html, err := render.RenderToString(tmpl)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"location":    loc.String(),
		"fingerprint": fmt.Sprintf("%016x", identity.Fingerprint(tmpl)),
		"keys":        identity.Stream(tmpl),
		"html":        html,
	})
}

func (s *previewServer) resolve(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxInstanceBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, errors.New("E150").Wrap(err))
		return
	}
	inst, err := decodeInstance(data)
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("E150").WithDetail(err.Error()))
		return
	}
	if _, err := s.engine.Resolve(r.Context(), inst); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	cfg := render.RendererConfig{Pretty: r.URL.Query().Get("pretty") != "", Strict: true}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if r.URL.Query().Get("page") != "" {
		sr := render.NewStreamingRenderer(w, cfg)
		if err := sr.RenderPage(render.PageData{Title: r.URL.Query().Get("title"), Body: inst}); err != nil {
			s.logger.Warn("page render failed", "error", err)
		}
		return
	}

	html, err := render.NewRenderer(cfg).RenderToString(inst)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	io.WriteString(w, html)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	body := map[string]any{
		"code":  errors.CodeOf(err),
		"error": err.Error(),
	}
	var ve *errors.Error
	if stderrors.As(err, &ve) {
		if ve.Detail != "" {
			body["detail"] = ve.Detail
		}
		if ve.Location != nil {
			body["location"] = ve.Location.String()
		}
	}
	writeJSON(w, status, body)
}
