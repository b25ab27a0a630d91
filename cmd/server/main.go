package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/djstrauss/dingertuesday/internal/cache"
	"github.com/djstrauss/dingertuesday/internal/clients/odds"
	"github.com/djstrauss/dingertuesday/internal/clients/statsapi"
	"github.com/djstrauss/dingertuesday/internal/clock"
	"github.com/djstrauss/dingertuesday/internal/config"
	"github.com/djstrauss/dingertuesday/internal/database"
	"github.com/djstrauss/dingertuesday/internal/modules/analysis"
	"github.com/djstrauss/dingertuesday/internal/modules/daily"
	"github.com/djstrauss/dingertuesday/internal/modules/matchup"
	"github.com/djstrauss/dingertuesday/internal/modules/report"
	"github.com/djstrauss/dingertuesday/internal/scheduler"
	"github.com/djstrauss/dingertuesday/internal/server"
	"github.com/djstrauss/dingertuesday/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fallback := logger.New(logger.Config{Level: "info", Pretty: true})
		fallback.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize logger
	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})

	log.Info().Msg("Starting Dinger Tuesday")

	// Operating-day clock
	clk, err := clock.New(cfg.Timezone, cfg.CutoverHour)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize operating clock")
	}

	// Initialize database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	// Run migrations
	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	c := cache.New(log)

	// External providers
	statsClient := statsapi.NewClient(cfg.StatsAPIBaseURL, cfg.FetchTimeout, log)
	oddsClient := odds.NewClient(cfg.OddsURL, cfg.FetchTimeout, log)

	lookups := daily.NewLookups(statsClient, c, cfg.Season, daily.LookupTTLs{
		Stats:  cfg.CacheTTL,
		Roster: cfg.RosterTTL,
		Lookup: cfg.LookupTTL,
	}, log)

	// Tiered daily-data resolution
	store := daily.NewStore(db.Conn(), log)
	fetchers := map[daily.DataClass]daily.Fetcher{
		daily.ClassPitchers: daily.NewPitcherFetcher(statsClient, lookups, log),
		daily.ClassHitters:  daily.NewHitterFetcher(statsClient, oddsClient, lookups, log),
		daily.ClassSchedule: daily.NewScheduleFetcher(statsClient, log),
	}
	resolver := daily.NewResolver(clk, c, store, fetchers, log)

	matchups := matchup.NewService(lookups, oddsClient, c, cfg.RosterTTL, log)

	opponentContext := report.NewOpponentLineup(lookups, oddsClient, log)
	generator := report.NewGenerator(report.Config{VariantCount: cfg.VariantCount}, opponentContext, log)
	content := report.NewContentRepository(db.Conn(), log)

	// Initialize scheduler and register the daily jobs
	sched := scheduler.New(clk, log)
	if err := registerJobs(sched, cfg, clk, resolver, fetchers, store, matchups, generator, content, log); err != nil {
		log.Fatal().Err(err).Msg("Failed to register jobs")
	}
	sched.Start()
	defer sched.Stop()

	// Initialize HTTP server
	srv := server.New(server.Config{
		Port:          cfg.Port,
		DevMode:       cfg.DevMode,
		Log:           log,
		Clock:         clk,
		Cache:         c,
		Resolver:      resolver,
		Store:         store,
		Matchups:      matchups,
		Content:       content,
		Scheduler:     sched,
		RetentionDays: cfg.RetentionDays,
	})

	// Start server in goroutine
	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Str("day", clk.Today()).Msg("Server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}

func registerJobs(
	sched *scheduler.Scheduler,
	cfg *config.Config,
	clk *clock.Clock,
	resolver *daily.Resolver,
	fetchers map[daily.DataClass]daily.Fetcher,
	store *daily.Store,
	matchups *matchup.Service,
	generator *report.Generator,
	content *report.ContentRepository,
	log zerolog.Logger,
) error {
	anchors := map[string]string{
		"cleanup": cfg.CleanupAt,
		"refresh": cfg.RefreshAt,
		"preload": cfg.PreloadAt,
		"report":  cfg.ReportAt,
	}

	analysisCfg := analysis.Config{
		MinSampleSize: cfg.MinSampleSize,
		MinHRRate:     cfg.MinHRRate,
		TopN:          cfg.TopPitchers,
	}

	jobs := []scheduler.Job{
		scheduler.NewCleanupJob(clk, store, cfg.RetentionDays, log),
		scheduler.NewRefreshJob(clk, resolver, fetchers, log),
		scheduler.NewPreloadJob(matchups, scheduler.PopularTeams, cfg.PreloadDelay, log),
		scheduler.NewReportJob(resolver, generator, content, analysisCfg, log),
	}

	for _, job := range jobs {
		hour, minute, err := config.ParseAnchor(anchors[job.Name()])
		if err != nil {
			return err
		}
		if err := sched.Register(job, scheduler.Schedule{Hour: hour, Minute: minute}); err != nil {
			return err
		}
	}
	return nil
}
