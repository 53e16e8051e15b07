// Package bridge serves the SiYuan widget: a small JSON API over the
// history files plus a cron scheduler for unattended refreshes.
package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/nkhyl/folio"
	"github.com/nkhyl/folio/date"
	"github.com/nkhyl/folio/renderer"
)

// Server is the HTTP bridge between the SiYuan widget and the portfolio
// pipeline.
type Server struct {
	router   *chi.Mux
	server   *http.Server
	log      zerolog.Logger
	cfg      Config
	pipeline Pipeline
	now      func() time.Time // asset names are timestamped, tests pin this
}

// NewServer wires routes and middleware. The pipeline is what POST
// /run-task executes.
func NewServer(cfg Config, pipeline Pipeline, log zerolog.Logger) *Server {
	s := &Server{
		router:   chi.NewRouter(),
		log:      log.With().Str("component", "bridge").Logger(),
		cfg:      cfg,
		pipeline: pipeline,
		now:      time.Now,
	}
	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.logRequests)
	s.router.Use(middleware.Timeout(60 * time.Second))

	// The widget runs inside SiYuan, which is another origin.
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))
}

func (s *Server) setupRoutes() {
	s.router.Post("/run-task", s.handleRunTask)
	s.router.Get("/get-latest-news", s.handleLatestNews)
	s.router.Post("/generate-chart", s.handleGenerateChart)
	s.router.Post("/copy-chart-to-siyuan", s.handleCopyChart)
	s.router.Get("/health", s.handleHealth)
}

// Handler exposes the routed handler; tests serve it with httptest.
func (s *Server) Handler() http.Handler { return s.router }

// Start serves HTTP until Shutdown or failure.
func (s *Server) Start() error {
	s.log.Info().Int("port", s.cfg.Port).Msg("starting bridge server")
	return s.server.ListenAndServe()
}

// Shutdown stops the server, letting in-flight requests finish.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("shutting down bridge server")
	return s.server.Shutdown(ctx)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("request")
	})
}

type runTaskResponse struct {
	Status  string   `json:"status"`
	Summary *Summary `json:"summary"`
}

// handleRunTask runs the refresh pipeline and reports the headline numbers
// of the snapshot it wrote. An empty portfolio refreshes fine but has no
// summary.
func (s *Server) handleRunTask(w http.ResponseWriter, r *http.Request) {
	result, err := s.pipeline.Refresh()
	if err != nil {
		s.log.Error().Err(err).Msg("refresh failed")
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := runTaskResponse{Status: "success"}
	if len(result.Rows) > 0 {
		sum := Summarize(result.Rows, s.cfg.BaseCurrency)
		resp.Summary = &sum
	}
	s.respondJSON(w, http.StatusOK, resp)
}

type latestNewsResponse struct {
	Status string           `json:"status"`
	Date   string           `json:"date"`
	News   []map[string]any `json:"news"`
}

// symbolInfo is the snapshot metadata the widget shows next to a ticker's
// headlines.
type symbolInfo struct {
	Sector       string `json:"sector"`
	EarningsDate string `json:"earnings_date"`
}

// handleLatestNews returns the most recent day of stored headlines, joined
// with sector and earnings metadata from the same day's snapshot rows.
func (s *Server) handleLatestNews(w http.ResponseWriter, r *http.Request) {
	if !fileExists(s.cfg.NewsPath()) {
		s.respondError(w, http.StatusNotFound, "news history not found")
		return
	}
	newsRows, err := folio.LoadNewsHistory(s.cfg.NewsPath())
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	latest := folio.LatestNewsRows(newsRows)

	historyRows, err := folio.LoadHistory(s.cfg.HistoryPath())
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := latestNewsResponse{Status: "success", News: make([]map[string]any, 0, len(latest))}
	if len(latest) > 0 {
		day := latest[0].Date
		resp.Date = day.String()
		info := symbolInfoOn(historyRows, day)
		for _, n := range latest {
			resp.News = append(resp.News, newsEntry(n, info[n.Ticker]))
		}
	}
	s.respondJSON(w, http.StatusOK, resp)
}

// symbolInfoOn indexes the given day's snapshot rows by symbol. The first
// row wins; for exploded funds that is the alphabetically first slice.
func symbolInfoOn(rows []folio.Row, day date.Date) map[string]symbolInfo {
	info := make(map[string]symbolInfo)
	for _, r := range rows {
		if r.Date != day {
			continue
		}
		if _, ok := info[r.Symbol]; ok {
			continue
		}
		si := symbolInfo{Sector: r.Sector}
		if r.EarningsDate != nil {
			si.EarningsDate = r.EarningsDate.String()
		}
		info[r.Symbol] = si
	}
	return info
}

// newsEntry flattens one news row to the widget's wire shape: five fixed
// headline slots keyed news_1_title through news_5_link.
func newsEntry(n folio.NewsRow, info symbolInfo) map[string]any {
	entry := map[string]any{
		"ticker":      n.Ticker,
		"symbol_info": info,
		"thesis":      n.Thesis,
	}
	for i := 0; i < 5; i++ {
		var title, link, day string
		if i < len(n.Items) {
			item := n.Items[i]
			title, link = item.Title, item.Link
			if !item.Date.IsZero() {
				day = item.Date.String()
			}
		}
		slot := strconv.Itoa(i + 1)
		entry["news_"+slot+"_title"] = title
		entry["news_"+slot+"_date"] = day
		entry["news_"+slot+"_link"] = link
	}
	return entry
}

// handleGenerateChart renders the HTML report from the history files and
// writes it next to them.
func (s *Server) handleGenerateChart(w http.ResponseWriter, r *http.Request) {
	if !fileExists(s.cfg.HistoryPath()) {
		s.respondError(w, http.StatusNotFound, fmt.Sprintf("history not found: %s", s.cfg.HistoryPath()))
		return
	}
	rows, err := folio.LoadHistory(s.cfg.HistoryPath())
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	news, err := folio.LoadNewsHistory(s.cfg.NewsPath())
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	page, err := renderer.Chart(rows, news, s.cfg.BaseCurrency)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := os.WriteFile(s.cfg.ChartPath(), page, 0o644); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.log.Info().Str("path", s.cfg.ChartPath()).Int("bytes", len(page)).Msg("chart rendered")
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status":     "success",
		"chart_path": s.cfg.ChartPath(),
	})
}

// handleCopyChart copies a rendered chart into the SiYuan assets directory
// under a timestamped name and returns the asset reference.
func (s *Server) handleCopyChart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ChartPath string `json:"chart_path"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	page, err := os.ReadFile(req.ChartPath)
	if errors.Is(err, fs.ErrNotExist) {
		s.respondError(w, http.StatusNotFound, "chart file not found")
		return
	}
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if err := os.MkdirAll(s.cfg.AssetsDir, 0o755); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	name := "portfolio_chart_" + s.now().Format("20060102_150405") + ".html"
	full := filepath.Join(s.cfg.AssetsDir, name)
	if err := os.WriteFile(full, page, 0o644); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.log.Info().Str("asset", full).Msg("chart copied to assets")
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "chart copied to SiYuan assets",
		// SiYuan references assets with forward slashes whatever the OS.
		"asset_path": "assets/" + name,
		"full_path":  full,
	})
}

// handleHealth reports which files of the pipeline's contract exist yet.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"message": "bridge server is running",
		"files": map[string]bool{
			"unified_history": fileExists(s.cfg.HistoryPath()),
			"news_history":    fileExists(s.cfg.NewsPath()),
			"chart_html":      fileExists(s.cfg.ChartPath()),
		},
	})
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("could not encode response")
	}
}

// respondError sends the widget's error shape.
func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"status": "error", "message": message})
}
