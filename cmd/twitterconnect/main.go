package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"twitterconnect/internal/config"
	"twitterconnect/internal/logger"
	"twitterconnect/internal/metrics"
	"twitterconnect/internal/routing"
	"twitterconnect/pkg/account"
	"twitterconnect/pkg/handlers"
	"twitterconnect/pkg/session"
	"twitterconnect/pkg/twitter"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logger.Load(cfg.LogLevel)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	rec := metrics.NewCollector(reg)

	client := twitter.NewClient(twitter.Config{
		ConsumerKey:    cfg.ConsumerKey,
		ConsumerSecret: cfg.ConsumerSecret,
		CallbackURL:    cfg.CallbackURL,
		OAuthBaseURL:   cfg.OAuthBaseURL,
		RESTBaseURL:    cfg.RESTBaseURL,
		App:            twitter.Credentials{Token: cfg.AppToken, Secret: cfg.AppTokenSecret},
		Timeout:        cfg.UpstreamTimeout,
		Rate:           cfg.UpstreamRate,
		Burst:          cfg.UpstreamBurst,
	}, rec, logger)

	sessions := session.NewManager(cfg.JWTSecret, cfg.TokenTTL)
	twitterHandler := handlers.NewTwitterHandler(account.NewService(client), sessions, rec, logger)

	r := routing.NewRouter(twitterHandler, sessions, reg, rec, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := routing.StartServer(ctx, cfg.Addr, r, logger); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}
