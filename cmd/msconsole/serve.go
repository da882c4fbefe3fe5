package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/queryms/msconsole/internal/agent"
	"github.com/queryms/msconsole/internal/config"
	"github.com/queryms/msconsole/internal/db"
	"github.com/queryms/msconsole/internal/model/providers/openai"
	"github.com/queryms/msconsole/internal/server"
	"github.com/queryms/msconsole/internal/tool"
	"github.com/queryms/msconsole/internal/tool/builtin"
	"github.com/queryms/msconsole/internal/worker"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MS Console HTTP server",
	Long:  `Starts the HTTP server that the desktop client talks to: streaming chat, tool catalog, and connection diagnostics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			return fmt.Errorf("config not loaded")
		}

		store := db.NewStore(cfg.MySQL)
		defer store.Close()

		registry := tool.NewRegistry()
		registry.Register(&builtin.ListTablesTool{Store: store})
		registry.Register(&builtin.ExecuteQueryTool{Store: store})
		runner := tool.NewRunner(registry)

		provider := openai.New(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL)
		pool := worker.NewPool(cfg.Agent.WorkerPoolSize)

		chatAgent := agent.New(provider, runner, pool,
			agent.WithModel(cfg.OpenAI.Model),
			agent.WithMaxIterations(cfg.Agent.MaxIterations),
			agent.WithSystemPrompt(cfg.Agent.SystemPrompt),
		)

		srv, err := server.New(cfg.Server, chatAgent, provider, store, runner)
		if err != nil {
			return fmt.Errorf("failed to create server: %w", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv.Start()
		slog.Info("MS Console started", "port", cfg.Server.Port, "model", cfg.OpenAI.Model)

		<-ctx.Done()
		slog.Info("Shutting down...")

		shutdownTimeout, err := config.DurationOrDefault(cfg.Server.ShutdownTimeout, config.DefaultServerShutdownTimeout)
		if err != nil {
			return err
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Stop(shutdownCtx); err != nil {
			slog.Error("Server shutdown failed", "error", err)
			return err
		}

		slog.Info("MS Console stopped gracefully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
