package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/akshaybhat/equiscan/internal/clients/groww"
	"github.com/akshaybhat/equiscan/internal/clients/news"
	"github.com/akshaybhat/equiscan/internal/config"
	"github.com/akshaybhat/equiscan/internal/modules/analysis"
	"github.com/akshaybhat/equiscan/internal/modules/portfolio"
	"github.com/akshaybhat/equiscan/internal/modules/rebalancing"
	"github.com/akshaybhat/equiscan/internal/modules/reports"
	"github.com/akshaybhat/equiscan/internal/modules/scoring"
	"github.com/akshaybhat/equiscan/internal/modules/screening"
	"github.com/akshaybhat/equiscan/internal/modules/sentiment"
	"github.com/akshaybhat/equiscan/internal/modules/universe"
	"github.com/akshaybhat/equiscan/internal/scheduler"
	"github.com/akshaybhat/equiscan/internal/server"
	"github.com/akshaybhat/equiscan/pkg/logger"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := logger.New(logger.Config{Level: "info", Pretty: true})
		fallback.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	log.Info().Str("version", version).Bool("dev_mode", cfg.DevMode).Msg("Starting equiscan")

	// Stock universe
	symbols := universe.Default()
	if cfg.UniverseFile != "" {
		symbols, err = universe.FromFile(cfg.UniverseFile)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.UniverseFile).Msg("Failed to load universe file")
		}
	}
	log.Info().Int("symbols", len(symbols)).Msg("Universe loaded")

	// Reports database
	db, err := reports.Open(filepath.Join(cfg.DataDir, "equiscan.db"))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open reports database")
	}
	defer db.Close()

	reportRepo, err := reports.NewRepository(db, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize reports repository")
	}

	// External clients
	broker := groww.NewClient(cfg.GrowwAPIKey, cfg.GrowwAPISecret, log)
	newsClient := news.NewClient(log)

	// Core services
	predictor := analysis.NewPredictor(cfg.HorizonDays)
	analyzer := analysis.NewAnalyzer(broker, predictor, cfg.TargetReturn, cfg.HorizonDays, cfg.FetchHistory, log)
	scorer := scoring.NewScorer(cfg.TargetReturn)
	sentimentSvc := sentiment.NewService(newsClient, news.GlobalEvents(), news.SectorSentiment(), log)

	batchAnalyzer := screening.NewBatchAnalyzer(analyzer, scorer, cfg.TargetReturn, log)
	screener := screening.NewScreener(batchAnalyzer, sentimentSvc, log)

	portfolioSvc := portfolio.NewService(broker, analyzer, cfg.MaxInvestmentAmount, log)
	rebalancer := rebalancing.NewService(broker, portfolioSvc, screener, symbols, cfg.MaxInvestmentAmount, cfg.ScreeningIterations, log)

	// Scheduler
	sched := scheduler.New(log)
	screeningJob := scheduler.NewScreeningJob(screener, reportRepo, symbols, cfg.MaxInvestmentAmount, cfg.ScreeningIterations, log)
	rebalanceJob := scheduler.NewRebalanceJob(rebalancer, reportRepo, log)

	if cfg.ScreeningSchedule != "" {
		if err := sched.AddJob(cfg.ScreeningSchedule, screeningJob); err != nil {
			log.Fatal().Err(err).Msg("Failed to register screening job")
		}
	}
	if cfg.RebalanceSchedule != "" && !cfg.DevMode {
		if err := sched.AddJob(cfg.RebalanceSchedule, rebalanceJob); err != nil {
			log.Fatal().Err(err).Msg("Failed to register rebalance job")
		}
	}
	sched.Start()
	defer sched.Stop()

	// HTTP server
	apiHandlers := server.NewHandlers(server.HandlersConfig{
		Screener:   screener,
		Rebalancer: rebalancer,
		Portfolio:  portfolioSvc,
		Analyzer:   analyzer,
		Sentiment:  sentimentSvc,
		Enricher:   scorer,
		Store:      reportRepo,
		Universe:   symbols,
		Budget:     cfg.MaxInvestmentAmount,
		Iterations: cfg.ScreeningIterations,
		Log:        log,
	})
	srv := server.New(server.Config{
		Port:    cfg.Port,
		DevMode: cfg.DevMode,
		Log:     log,
	}, apiHandlers, server.NewSystemHandlers(version, log))

	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()
	log.Info().Int("port", cfg.Port).Msg("Server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Stopped")
}
