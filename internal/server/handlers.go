package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/akshaybhat/equiscan/internal/domain"
	"github.com/akshaybhat/equiscan/internal/modules/analysis"
	"github.com/akshaybhat/equiscan/internal/modules/portfolio"
	"github.com/akshaybhat/equiscan/internal/modules/rebalancing"
	"github.com/akshaybhat/equiscan/internal/modules/reports"
	"github.com/akshaybhat/equiscan/internal/modules/screening"
)

// ScreenRunner runs a screening pass over the universe.
type ScreenRunner interface {
	Screen(ctx context.Context, universe []string, budget float64, iterations int) (*screening.Result, error)
}

// RebalanceRunner executes a portfolio rebalance.
type RebalanceRunner interface {
	Rebalance(ctx context.Context) (*rebalancing.Report, error)
}

// PerformanceAnalyzer produces the portfolio performance report.
type PerformanceAnalyzer interface {
	AnalyzePerformance(ctx context.Context) (*portfolio.PerformanceReport, error)
}

// SymbolAnalyzer produces a single-symbol analysis.
type SymbolAnalyzer interface {
	AnalyzeSymbol(ctx context.Context, symbol string) (*domain.StockAnalysis, error)
}

// SnapshotProvider supplies the market-sentiment snapshot.
type SnapshotProvider interface {
	Snapshot(ctx context.Context) domain.MarketSentimentSnapshot
}

// Enricher attaches overall score and market context to an analysis.
type Enricher interface {
	Score(a *domain.StockAnalysis, snap domain.MarketSentimentSnapshot)
}

// ReportStore persists and serves run reports.
type ReportStore interface {
	Save(id, kind, summary string, payload any) error
	List(kind string, limit int) ([]reports.Meta, error)
	Get(id string) (*reports.Report, error)
}

// Handlers exposes the core operations over HTTP.
type Handlers struct {
	screener   ScreenRunner
	rebalancer RebalanceRunner
	portfolio  PerformanceAnalyzer
	analyzer   SymbolAnalyzer
	sentiment  SnapshotProvider
	enricher   Enricher
	store      ReportStore

	universe   []string
	budget     float64
	iterations int
	log        zerolog.Logger
}

// HandlersConfig wires the handler dependencies.
type HandlersConfig struct {
	Screener   ScreenRunner
	Rebalancer RebalanceRunner
	Portfolio  PerformanceAnalyzer
	Analyzer   SymbolAnalyzer
	Sentiment  SnapshotProvider
	Enricher   Enricher
	Store      ReportStore
	Universe   []string
	Budget     float64
	Iterations int
	Log        zerolog.Logger
}

// NewHandlers creates the API handler group.
func NewHandlers(cfg HandlersConfig) *Handlers {
	return &Handlers{
		screener:   cfg.Screener,
		rebalancer: cfg.Rebalancer,
		portfolio:  cfg.Portfolio,
		analyzer:   cfg.Analyzer,
		sentiment:  cfg.Sentiment,
		enricher:   cfg.Enricher,
		store:      cfg.Store,
		universe:   cfg.Universe,
		budget:     cfg.Budget,
		iterations: cfg.Iterations,
		log:        cfg.Log.With().Str("component", "api_handlers").Logger(),
	}
}

// RegisterRoutes mounts the API routes.
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Route("/screening", func(r chi.Router) {
		r.Post("/run", h.handleScreeningRun)
	})
	r.Route("/rebalance", func(r chi.Router) {
		r.Post("/run", h.handleRebalanceRun)
	})
	r.Route("/stocks", func(r chi.Router) {
		r.Get("/{symbol}/analysis", h.handleStockAnalysis)
	})
	r.Route("/portfolio", func(r chi.Router) {
		r.Get("/performance", h.handlePortfolioPerformance)
	})
	r.Get("/sentiment", h.handleSentiment)
	r.Route("/reports", func(r chi.Router) {
		r.Get("/", h.handleListReports)
		r.Get("/{id}", h.handleGetReport)
	})
}

type screeningRunRequest struct {
	Budget     float64 `json:"budget"`
	Iterations int     `json:"iterations"`
}

func (h *Handlers) handleScreeningRun(w http.ResponseWriter, r *http.Request) {
	req := screeningRunRequest{Budget: h.budget, Iterations: h.iterations}
	if r.Body != nil && r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	if req.Budget <= 0 || req.Iterations <= 0 {
		h.writeError(w, http.StatusBadRequest, "budget and iterations must be positive")
		return
	}

	result, err := h.screener.Screen(r.Context(), h.universe, req.Budget, req.Iterations)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	summary := strconv.Itoa(len(result.Plan.Allocations)) + " buy recommendations"
	if err := h.store.Save(result.RunID, reports.KindScreening, summary, result); err != nil {
		h.log.Error().Err(err).Str("run_id", result.RunID).Msg("Failed to persist screening report")
	}

	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handlers) handleRebalanceRun(w http.ResponseWriter, r *http.Request) {
	report, err := h.rebalancer.Rebalance(r.Context())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	id := report.ScreeningRunID
	if id == "" {
		id = "rebalance-" + report.StartedAt.Format("20060102-150405")
	}
	summary := strconv.Itoa(len(report.SellOrders)) + " sells, " + strconv.Itoa(len(report.BuyOrders)) + " buys"
	if err := h.store.Save(id, reports.KindRebalance, summary, report); err != nil {
		h.log.Error().Err(err).Msg("Failed to persist rebalance report")
	}

	h.writeJSON(w, http.StatusOK, report)
}

type stockInsightResponse struct {
	Analysis   *domain.StockAnalysis `json:"analysis"`
	Confidence domain.Confidence     `json:"confidence"`
	Summary    string                `json:"summary"`
}

func (h *Handlers) handleStockAnalysis(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(chi.URLParam(r, "symbol"))
	if symbol == "" {
		h.writeError(w, http.StatusBadRequest, "symbol is required")
		return
	}

	result, err := h.analyzer.AnalyzeSymbol(r.Context(), symbol)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	snap := h.sentiment.Snapshot(r.Context())
	h.enricher.Score(result, snap)

	h.writeJSON(w, http.StatusOK, stockInsightResponse{
		Analysis:   result,
		Confidence: analysis.AssessConfidence(result),
		Summary:    analysis.Summary(result),
	})
}

func (h *Handlers) handlePortfolioPerformance(w http.ResponseWriter, r *http.Request) {
	report, err := h.portfolio.AnalyzePerformance(r.Context())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, report)
}

func (h *Handlers) handleSentiment(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.sentiment.Snapshot(r.Context()))
}

func (h *Handlers) handleListReports(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	metas, err := h.store.List(r.URL.Query().Get("kind"), limit)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	if metas == nil {
		metas = []reports.Meta{}
	}
	h.writeJSON(w, http.StatusOK, metas)
}

func (h *Handlers) handleGetReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, report)
}

func (h *Handlers) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNoData), errors.Is(err, domain.ErrInvalidSymbol):
		h.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrAuth):
		h.writeError(w, http.StatusBadGateway, "brokerage authentication failed")
	case errors.Is(err, domain.ErrSourceUnavailable):
		h.writeError(w, http.StatusBadGateway, "upstream data source unavailable")
	default:
		h.log.Error().Err(err).Msg("Request failed")
		h.writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
