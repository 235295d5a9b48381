// Command recalld runs the recall HTTP service: per-user memory storage,
// relevance-ranked retrieval, and a memory-enriched chat endpoint.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mindhaven/recall-go/pkg/api"
	"github.com/mindhaven/recall-go/pkg/core"
	"github.com/mindhaven/recall-go/pkg/genai"
	"github.com/mindhaven/recall-go/pkg/genai/openai"
)

func main() {
	configPath := flag.String("config", "", "path to a JSON config file (default: environment)")
	port := flag.String("port", "", "HTTP port to listen on (default: PORT env or 8080)")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	var config *core.Config
	var err error
	if *configPath != "" {
		config, err = core.LoadConfigFromJSON(*configPath)
	} else {
		config, err = core.LoadConfigFromEnv()
	}
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	client, err := core.NewAsyncClient(config)
	if err != nil {
		logger.Error("failed to initialize memory client", "error", err)
		os.Exit(1)
	}
	defer func() { _ = client.Close() }()

	var provider genai.Provider
	if config.GenAI.APIKey != "" {
		provider, err = openai.NewClient(&openai.Config{
			APIKey:  config.GenAI.APIKey,
			Model:   config.GenAI.Model,
			BaseURL: config.GenAI.BaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize generative AI provider", "error", err)
			os.Exit(1)
		}
		defer func() { _ = provider.Close() }()
	} else {
		logger.Warn("no GenAI API key configured; chat endpoint disabled")
	}

	listenPort := *port
	if listenPort == "" {
		listenPort = os.Getenv("PORT")
	}
	if listenPort == "" {
		listenPort = "8080"
	}

	server := api.NewServer(client, provider, listenPort, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown error", "error", err)
			os.Exit(1)
		}
	}
}
