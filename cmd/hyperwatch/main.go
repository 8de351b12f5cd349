package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"hyperwatch/internal/analytics"
	"hyperwatch/internal/bot"
	"hyperwatch/internal/config"
	"hyperwatch/internal/hyperliquid"
	"hyperwatch/internal/server"
	"hyperwatch/internal/telegram"

	"github.com/joho/godotenv"
)

const telegramAPIURL = "https://api.telegram.org"

func main() {
	_ = godotenv.Load() // best-effort: .env is optional

	cfg, err := config.Load("config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config.yaml: %v\n", err)
		os.Exit(1)
	}

	logger := config.NewLogger(cfg.LogLevel)

	token := os.Getenv("TELEGRAM_TOKEN")
	if token == "" {
		fmt.Fprintln(os.Stderr, "TELEGRAM_TOKEN not set")
		os.Exit(1)
	}
	// Hosting platforms inject the listen port.
	if p := os.Getenv("PORT"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			cfg.Port = v
		}
	}

	logger.Info("hyperwatch starting",
		slog.Int("port", cfg.Port),
		slog.String("hyperliquid_url", cfg.HyperliquidURL),
		slog.Int("leaderboard_cap", cfg.LeaderboardCap),
		slog.Int("top_n", cfg.TopN),
	)

	client := hyperliquid.NewClient(
		cfg.HyperliquidURL,
		os.Getenv("HYPERLIQUID_API_KEY"),
		time.Duration(cfg.RequestTimeoutSeconds)*time.Second,
		time.Duration(cfg.PaceMillis)*time.Millisecond,
		logger,
	)

	aggregator := analytics.NewAggregator(client, cfg.LeaderboardCap, cfg.TopN, logger)
	router := bot.NewRouter(aggregator, logger)
	pool := bot.NewPool(cfg.MaxWorkers, time.Duration(cfg.CommandTimeoutSeconds)*time.Second)
	tg := telegram.NewBot(token, telegramAPIURL, logger)
	srv := server.NewHTTPServer(router, pool, tg, logger)

	// Register the webhook when the public hostname is known (e.g. the
	// hosting platform exports it).
	if host := os.Getenv("EXTERNAL_HOSTNAME"); host != "" {
		url := fmt.Sprintf("https://%s/webhook", host)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := tg.SetWebhook(ctx, url); err != nil {
			logger.Error("webhook registration failed", slog.String("err", err.Error()))
		} else {
			logger.Info("webhook registered", slog.String("url", url))
		}
		cancel()
	}

	httpSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: srv.Router(),
	}

	done := make(chan struct{})
	go func() {
		logger.Info("HTTP server listening", slog.Int("port", cfg.Port))
		if err := httpSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", slog.String("err", err.Error()))
		}
		close(done)
	}()

	// Graceful shutdown
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigc:
		logger.Info("shutting down...")
		shCtx, shCancel := context.WithTimeout(context.Background(), 8*time.Second)
		defer shCancel()
		_ = httpSrv.Shutdown(shCtx)
		<-done
	case <-done:
		// listen failed; already logged
	}

	// Let in-flight commands send their replies.
	pool.Wait()
	logger.Info("bye")
}
