package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/seithar/autoprompt/app/annotate"
	"github.com/seithar/autoprompt/app/api"
	"github.com/seithar/autoprompt/app/cfg"
	"github.com/seithar/autoprompt/app/config"
	"github.com/seithar/autoprompt/app/docs"
	"github.com/seithar/autoprompt/app/feed"
	"github.com/seithar/autoprompt/app/ingest"
	"github.com/seithar/autoprompt/app/pipeline"
	"github.com/seithar/autoprompt/app/report"
	"github.com/seithar/autoprompt/app/scheduler"
	"github.com/seithar/autoprompt/app/scoring"
	"github.com/seithar/autoprompt/app/state"
	"github.com/seithar/autoprompt/app/suggest"
	"github.com/seithar/autoprompt/app/task"
	"github.com/seithar/autoprompt/app/taxonomy"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting Autoprompt", "version", appCfg.Version)

	pipelineConfig, err := config.NewLoader(appCfg.ConfigPath).Load()
	if err != nil {
		slog.Error("Failed to load pipeline configuration", "path", appCfg.ConfigPath, "error", err)
		os.Exit(1)
	}
	slog.Info("Pipeline configuration loaded",
		"feeds", len(pipelineConfig.Feeds),
		"rules", len(pipelineConfig.Rules),
		"llm_enabled", pipelineConfig.LLM.Enabled,
		"taxonomy_enabled", pipelineConfig.Taxonomy.Enabled)

	store, err := state.Open(appCfg.StatePath)
	if err != nil {
		slog.Error("Failed to open state database", "path", appCfg.StatePath, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	httpClient := &http.Client{Timeout: 30 * time.Second}
	table := pipelineConfig.RuleTable()

	p := pipeline.New(pipelineConfig, pipeline.Deps{
		Store:       store,
		Filter:      ingest.NewFilter(feed.NewFetcher(httpClient, appCfg.UserAgent), scoring.NewEngine(pipelineConfig.Profile), pipelineConfig.Profile.MinScore),
		Extractor:   feed.NewContentExtractor(httpClient, appCfg.UserAgent),
		Annotator:   annotate.NewAnnotator(pipelineConfig.LLM),
		Corpus:      docs.NewCorpus(pipelineConfig.Documents),
		Suggestions: suggest.NewGenerator(table),
		Tasks:       task.NewGenerator(table, pipelineConfig.Tasks),
		Writer:      report.NewWriter(appCfg.OutputDir, appCfg.TasksDir),
		Taxonomy:    taxonomy.NewHook(taxonomy.NewClient(pipelineConfig.Taxonomy), pipelineConfig.Taxonomy),
	})

	interval := time.Duration(appCfg.SchedulerInterval) * time.Second
	slog.Info("Starting scheduler", "interval", interval)
	sched := scheduler.New(p, interval)
	sched.Start()
	defer sched.Stop()

	handler := api.NewHandler(p, sched, len(pipelineConfig.Feeds), appCfg.Version)
	server := api.NewServer(handler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}

	// Scheduler and state store are stopped via defer
	slog.Info("Shutdown complete")
}
