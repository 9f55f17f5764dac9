package server

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"ai_content_optimizer/export"
	"ai_content_optimizer/form"
	"ai_content_optimizer/generator"
	"ai_content_optimizer/metrics"
	"ai_content_optimizer/options"
	"ai_content_optimizer/render"
	"ai_content_optimizer/shell"
)

//go:embed web/dist web/dist/* web/dist/icons/*
var embeddedStatic embed.FS

const shutdownTimeout = 10 * time.Second

// Options tunes request handling. MetricsHandler, when set, is mounted at /metrics.
type Options struct {
	RequestTimeout time.Duration
	SessionTTL     time.Duration
	Metrics        metrics.Recorder
	MetricsHandler http.Handler
}

type Server struct {
	gen      shell.Generator
	log      *slog.Logger
	opts     Options
	store    *sessionStore
	staticFS http.Handler
	swJS     []byte
}

func New(gen shell.Generator, log *slog.Logger, opts Options) (*Server, error) {
	if gen == nil {
		return nil, errors.New("generator required")
	}
	if log == nil {
		log = slog.Default()
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 60 * time.Second
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 24 * time.Hour
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NoopRecorder{}
	}

	sub, err := fs.Sub(embeddedStatic, "web/dist")
	if err != nil {
		return nil, err
	}
	sw, err := serviceWorker()
	if err != nil {
		return nil, err
	}

	s := &Server{
		gen:      gen,
		log:      log,
		opts:     opts,
		staticFS: http.FileServer(http.FS(sub)),
		swJS:     sw,
	}
	s.store = newStore(opts.SessionTTL, func() *shell.Shell { return shell.New(gen, log) })
	return s, nil
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /generate", s.handleGenerateForm)
	mux.HandleFunc("POST /api/generate", s.handleGenerateAPI)
	mux.HandleFunc("GET /api/state", s.handleState)
	mux.HandleFunc("POST /api/form/toggle", s.handleToggle)
	mux.HandleFunc("POST /api/reset", s.handleReset)
	mux.HandleFunc("GET /export.md", s.handleExportMarkdown)
	mux.HandleFunc("GET /export.html", s.handleExportHTML)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /sw.js", s.handleServiceWorker)
	if s.opts.MetricsHandler != nil {
		mux.Handle("GET /metrics", s.opts.MetricsHandler)
	}
	mux.Handle("GET /", s.staticFS)
	return s.logMiddleware(mux)
}

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go s.store.run(sweepCtx, s.log)

	errCh := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	s.log.InfoContext(ctx, "Web server is started",
		"addr", addr,
		"requestTimeout", s.opts.RequestTimeout.String(),
		"sessionTTL", s.opts.SessionTTL.String())

	select {
	case err := <-errCh:
		return fmt.Errorf("listen on %s: %w", addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.log.InfoContext(ctx, "Web server is stopped",
		"addr", addr)
	return nil
}

// --- Handlers ---

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	page := render.NewPage(sess.Form(), sess.State())

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := render.Render(w, page); err != nil {
		s.log.ErrorContext(r.Context(), "Failed to render page",
			"error", err)
	}
}

// handleGenerateForm serves the no-script form post and redirects back to the page.
func (s *Server) handleGenerateForm(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	f, err := form.FromValues(r.PostForm)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if _, err := s.submit(r.Context(), sess, f); err != nil && !errors.Is(err, shell.ErrBusy) {
		s.log.ErrorContext(r.Context(), "Failed to submit form",
			"error", err)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

type generateReq struct {
	URL      string   `json:"url"`
	Language string   `json:"language"`
	Tone     string   `json:"tone"`
	Lengths  []string `json:"lengths"`
}

type formResp struct {
	URL      string   `json:"url"`
	Language string   `json:"language"`
	Tone     string   `json:"tone"`
	Lengths  []string `json:"lengths"`
}

type submitResp struct {
	Disabled bool   `json:"disabled"`
	Label    string `json:"label"`
}

type stateResp struct {
	Status string            `json:"status"`
	Form   formResp          `json:"form"`
	Submit submitResp        `json:"submit"`
	Result *generator.Result `json:"result,omitempty"`
	Error  string            `json:"error,omitempty"`
}

func (s *Server) handleGenerateAPI(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)

	var req generateReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	f, err := form.FromValues(url.Values{
		form.FieldURL:      {req.URL},
		form.FieldLanguage: {req.Language},
		form.FieldTone:     {req.Tone},
		form.FieldLength:   req.Lengths,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	st, err := s.submit(r.Context(), sess, f)
	if errors.Is(err, shell.ErrBusy) {
		writeJSONStatus(w, http.StatusConflict, stateResponse(sess.Form(), st))
		return
	}

	status := http.StatusOK
	if failed, ok := st.(shell.Failed); ok {
		switch failed.Kind {
		case shell.FailureValidation:
			status = http.StatusBadRequest
		case shell.FailureProvider:
			status = http.StatusBadGateway
		default:
			status = http.StatusInternalServerError
		}
	}
	writeJSONStatus(w, status, stateResponse(sess.Form(), st))
}

func (s *Server) submit(ctx context.Context, sess *shell.Shell, f form.Form) (shell.State, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.RequestTimeout)
	defer cancel()

	start := time.Now()
	st, err := sess.SubmitForm(ctx, f)
	s.opts.Metrics.ObserveGeneration(outcome(st, err), time.Since(start))
	return st, err
}

func outcome(st shell.State, err error) string {
	if errors.Is(err, shell.ErrBusy) {
		return metrics.OutcomeBusy
	}
	switch st := st.(type) {
	case shell.Success:
		return metrics.OutcomeSuccess
	case shell.Failed:
		switch st.Kind {
		case shell.FailureValidation:
			return metrics.OutcomeValidation
		case shell.FailureProvider:
			return metrics.OutcomeProvider
		}
	}
	return metrics.OutcomeUnknown
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	writeJSON(w, stateResponse(sess.Form(), sess.State()))
}

type toggleReq struct {
	Length string `json:"length"`
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)

	var req toggleReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	l, err := options.ParseLength(req.Length)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	f := sess.ToggleLength(l)
	writeJSON(w, stateResponse(f, sess.State()))
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	sess.Reset()
	writeJSON(w, stateResponse(sess.Form(), sess.State()))
}

func (s *Server) handleExportMarkdown(w http.ResponseWriter, r *http.Request) {
	done, ok := s.session(w, r).State().(shell.Success)
	if !ok {
		http.Error(w, "no result to export", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="content.md"`)
	_, _ = w.Write([]byte(export.Markdown(done.Request.URL, done.Result)))
}

func (s *Server) handleExportHTML(w http.ResponseWriter, r *http.Request) {
	done, ok := s.session(w, r).State().(shell.Success)
	if !ok {
		http.Error(w, "no result to export", http.StatusNotFound)
		return
	}

	doc, err := export.HTML(done.Request.URL, done.Result)
	if err != nil {
		s.log.ErrorContext(r.Context(), "Failed to export html",
			"error", err)
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="content.html"`)
	_, _ = w.Write([]byte(doc))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]any{"status": "ok", "sessions": s.store.len()})
}

// --- Helpers ---

func stateResponse(f form.Form, st shell.State) stateResp {
	resp := stateResp{
		Form: formResp{
			URL:      f.URL,
			Language: string(f.Language),
			Tone:     string(f.Tone),
			Lengths:  []string{},
		},
	}
	for _, l := range f.Lengths.Sorted() {
		resp.Form.Lengths = append(resp.Form.Lengths, l.Key())
	}

	loading := false
	switch st := st.(type) {
	case shell.Idle:
		resp.Status = "idle"
	case shell.Loading:
		resp.Status = "loading"
		loading = true
	case shell.Success:
		resp.Status = "success"
		res := st.Result
		resp.Result = &res
	case shell.Failed:
		resp.Status = "error"
		resp.Error = st.Message
	}

	sub := f.Submit(loading)
	resp.Submit = submitResp{Disabled: sub.Disabled, Label: sub.Label}
	return resp
}

func writeJSON(w http.ResponseWriter, v any) {
	writeJSONStatus(w, http.StatusOK, v)
}

func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		elapsed := time.Since(start)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		s.opts.Metrics.ObserveRequest(r.Method, route, rec.status, elapsed)

		s.log.InfoContext(r.Context(), "Handled request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"durationMs", elapsed.Milliseconds())
	})
}
