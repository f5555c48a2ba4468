// Command rfscope runs the AM scope simulation and serves it over HTTP.
//
// Usage:
//
//	rfscope [-config rfscope.yaml] [-addr host:port]
//
// The explanation endpoints use the Gemini API when the environment variable
// named by explain.api_key_env (API_KEY by default) is set. Without it they
// answer with a fixed fallback text.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	dspsignal "github.com/cwbudde/algo-rfscope/dsp/signal"
	"github.com/cwbudde/algo-rfscope/dsp/spectrum"
	"github.com/cwbudde/algo-rfscope/internal/config"
	"github.com/cwbudde/algo-rfscope/internal/explain"
	"github.com/cwbudde/algo-rfscope/internal/scope"
	"github.com/cwbudde/algo-rfscope/internal/server"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML configuration file")
	addr := flag.String("addr", "", "listen address (overrides server.addr)")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: rfscope [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Serves a simulated AM signal chain (noise, EMA low-pass, envelope detector).\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if err := run(*configPath, *addr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, addr string) error {
	cfg := config.Default()
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return err
		}
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}

	level, err := cfg.LogLevel()
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var genOpts []dspsignal.Option
	if cfg.Scope.Seed != nil {
		genOpts = append(genOpts, dspsignal.WithSeed(*cfg.Scope.Seed))
	}

	engine, err := scope.NewEngine(
		scope.WithParams(cfg.Scope.Params),
		scope.WithFrameSize(cfg.Scope.FrameSize),
		scope.WithInterval(cfg.Scope.Interval),
		scope.WithGenerator(dspsignal.NewGenerator(genOpts...)),
		scope.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	var gen explain.TextGenerator = explain.Unavailable{}
	if key := cfg.APIKey(); key != "" {
		g, err := explain.NewGeminiGenerator(ctx, key, cfg.Explain.ExplainModel, cfg.Explain.AnalyzeModel)
		if err != nil {
			return err
		}
		gen = g
	} else {
		logger.Warn("no API key set, explanations disabled", "env", cfg.Explain.APIKeyEnv)
	}

	svc := explain.NewService(gen,
		explain.WithTimeout(cfg.Explain.Timeout),
		explain.WithLogger(logger))

	srv := server.New(engine, svc,
		server.WithAnalyzer(spectrum.NewAnalyzer(spectrum.WithWindow(cfg.WindowType()))),
		server.WithLogger(logger),
		server.WithMaxCount(config.MaxFrameSize))

	return srv.Run(ctx, cfg.Server.Addr, cfg.Server.ShutdownTimeout)
}
