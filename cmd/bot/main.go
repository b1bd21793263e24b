// Package main is the entry point for the casino table bot.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"casino-table-bot/internal/bot"
	"casino-table-bot/internal/config"
	"casino-table-bot/internal/game"
	"casino-table-bot/internal/pkg/db"
	"casino-table-bot/internal/repository"
	"casino-table-bot/internal/service"
)

func main() {
	// Configure zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Load configuration
	cfg, err := config.Load("config")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	zerolog.SetGlobalLevel(cfg.LogLevel())

	rules, err := cfg.Rules()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid engine configuration")
	}

	log.Info().Msg("Configuration loaded successfully")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database connection pool, migrating first if configured
	dbPool, err := db.Open(ctx, &cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer dbPool.Close()

	// Initialize services
	store := repository.NewStore(dbPool.Pool)
	registry := service.NewRegistry()
	env := game.Env{Rules: rules, Rand: game.SystemRand{}}

	accountService := service.NewAccountService(store, rules)
	tableService := service.NewTableService(store, registry, env, cfg.Engine.LockTimeout)

	log.Info().
		Interface("types", registry.Types()).
		Str("bet_cap", rules.BetCap.String()).
		Str("starting_chips", rules.StartingChips.String()).
		Int("conversions", len(rules.Conversions)).
		Msg("Table types registered")

	telegramBot, err := bot.New(&bot.Dependencies{
		Config:         cfg,
		AccountService: accountService,
		TableService:   tableService,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create bot")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		telegramBot.Start()
		if gctx.Err() != nil {
			return nil
		}
		return errors.New("bot poller stopped unexpectedly")
	})
	g.Go(func() error {
		<-gctx.Done()
		if ctx.Err() == nil {
			return nil
		}
		log.Info().Msg("Received shutdown signal")
		telegramBot.Stop()
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Bot exited with error")
		return
	}
	log.Info().Msg("Bot stopped gracefully")
}
