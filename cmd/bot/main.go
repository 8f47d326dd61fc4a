package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"duckdice-bet-bot/internal/config"
	"duckdice-bet-bot/internal/console"
	"duckdice-bet-bot/internal/database"
	"duckdice-bet-bot/internal/duckdice"
	"duckdice-bet-bot/internal/engine"
	"duckdice-bet-bot/internal/logger"
	"duckdice-bet-bot/internal/store"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "./configs", "path to the config directory")
	strategyName := flag.String("strategy", "", "strategy name, overrides config")
	currency := flag.String("currency", "", "currency symbol, overrides config")
	flag.Parse()

	// .env holds the API key locally; missing file is fine.
	_ = godotenv.Load()

	// Load application configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		panic(fmt.Sprintf("could not load config: %v", err))
	}
	if *strategyName != "" {
		cfg.Session.Strategy = *strategyName
	}
	if *currency != "" {
		cfg.Session.Currency = *currency
	}
	if key := os.Getenv("DUCKDICE_API_KEY"); key != "" {
		cfg.API.Key = key
	}

	// Initialize logger
	log, err := logger.NewLogger(cfg.Logger.Level, cfg.Logger.Format, cfg.Logger.File)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	log.Info("Configuration loaded", zap.String("strategy", cfg.Session.Strategy))

	// Initialize database
	db, err := database.NewDatabase(cfg.Database.DSN)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connection successful and schema migrated.")

	// Parse platform constraints and stop limits
	constraints, err := engine.ConstraintsFromConfig(cfg.Platform)
	if err != nil {
		log.Fatal("Invalid platform constraints", zap.Error(err))
	}
	limits, err := engine.LimitsFromConfig(cfg.Limits)
	if err != nil {
		log.Fatal("Invalid stop limits", zap.Error(err))
	}

	// Build the strategy from the registry
	registry := engine.DefaultRegistry()
	strategy, err := registry.New(cfg.Session.Strategy, cfg.Session.StrategyParams, constraints)
	if err != nil {
		log.Fatal("Failed to build strategy", zap.Error(err))
	}

	// Initialize DuckDice REST client and verify connectivity
	client := duckdice.NewRestClient(&cfg.API, log)
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 30*time.Second)
	balance, err := client.Balance(pingCtx, cfg.Session.Currency, cfg.Session.Faucet)
	cancelPing()
	if err != nil {
		log.Fatal("Failed to connect to DuckDice API", zap.Error(err))
	}
	log.Info("Successfully connected to DuckDice API.", zap.String("balance", balance.String()))

	// Setup context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sigchan := make(chan os.Signal, 1)
		signal.Notify(sigchan, syscall.SIGINT, syscall.SIGTERM)
		<-sigchan
		log.Info("Shutdown signal received, finishing current round...")
		cancel()
	}()

	// Initialize and run the betting engine
	betEngine := engine.NewEngine(log, client, strategy, engine.Options{
		Constraints: constraints,
		Limits:      limits,
		Currency:    cfg.Session.Currency,
		Faucet:      cfg.Session.Faucet,
		BetDelay:    time.Duration(cfg.Session.BetDelayMillis) * time.Millisecond,
		Sink:        store.NewStore(db),
		Emitter:     console.NewEmitter(log),
	})
	summary := betEngine.Run(ctx)

	printSummary(summary)
}

func printSummary(s *engine.Summary) {
	ctx := s.Context
	fmt.Printf("\n=== session summary ===\n")
	fmt.Printf("session:      %s\n", s.SessionID)
	fmt.Printf("strategy:     %s\n", s.Strategy)
	fmt.Printf("stop reason:  %s\n", s.Reason)
	fmt.Printf("bets placed:  %d (%d wins / %d losses)\n", ctx.BetsPlaced, ctx.Wins, ctx.Losses)
	fmt.Printf("wagered:      %s %s\n", ctx.TotalWagered, ctx.Currency)
	fmt.Printf("net profit:   %s %s\n", ctx.Profit(), ctx.Currency)
	fmt.Printf("balance:      %s -> %s\n", ctx.StartingBalance, ctx.CurrentBalance)
	if s.StrategyNote != "" {
		fmt.Printf("strategy:     %s\n", s.StrategyNote)
	}
	if s.Err != nil {
		fmt.Printf("error:        %v\n", s.Err)
	}
}
