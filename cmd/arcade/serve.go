package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vovakirdan/brick-arcade/internal/platform/tui"
	"github.com/vovakirdan/brick-arcade/internal/session"
	"github.com/vovakirdan/brick-arcade/internal/transport/httpapi"
)

var (
	flagHTTPAddr    string
	flagSSHAddr     string
	flagHostKey     string
	flagIdleTimeout time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the games over HTTP, websocket, MCP and SSH",
	Long: `Start the arcade server.

HTTP (default :5109):
  POST /api/game/start      body: 1 snake, 2 tetris, 3 race (or the name)
  POST /api/game/actions    body: action ordinal or name
  GET  /api/game/state      snapshot; every poll advances the game at most one step
  /api/sessions...          the same per session
  GET  /ws?session=<id>     snapshot stream
  POST /mcp                 MCP tools for agents

SSH (with --ssh): every connection gets its own session and the arcade menu.

A Terminate action on the shared HTTP game shuts the server down.

Settings come from --config YAML, ARCADE_* environment variables and .env.

Examples:
  arcade serve
  arcade serve --http :8080 --ssh :23234
  arcade serve --scores redis`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagHTTPAddr, "http", "", "HTTP listen address (default :5109)")
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", "", "SSH listen address; SSH is off when empty")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to SSH host key file (generated when missing)")
	serveCmd.Flags().DurationVar(&flagIdleTimeout, "idle-timeout", 30*time.Minute, "Idle timeout before SSH clients are disconnected")
}

func runServe(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	if flagHTTPAddr != "" {
		settings.HTTPAddr = flagHTTPAddr
	}
	if flagSSHAddr != "" {
		settings.SSHAddr = flagSSHAddr
	}
	if flagHostKey != "" {
		settings.HostKey = flagHostKey
	}

	logger := newLogger(os.Stderr, settings.LogLevel)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	keeper, closer, err := openScores(ctx, settings, logger)
	if err != nil {
		return fmt.Errorf("cannot open scores: %w", err)
	}
	defer closer.Close()
	logger.Info("scores ready", "backend", settings.Scores.Backend)

	env, err := newEnv(settings, keeper)
	if err != nil {
		return err
	}

	sessions := session.NewManager(session.Config{
		Env:      env,
		Recorder: keeper,
		Logger:   logger,
		OnTerminate: func() {
			logger.Info("terminate requested, shutting down")
			cancel()
		},
	})

	api := httpapi.NewServer(httpapi.Config{
		Sessions:  sessions,
		Scores:    keeper,
		Logger:    logger,
		PollEvery: settings.PollEvery,
	})
	httpServer := &http.Server{
		Addr:              settings.HTTPAddr,
		Handler:           api.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		api.Run(gctx)
		return nil
	})

	g.Go(func() error {
		logger.Info("starting HTTP server", "address", settings.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info("shutting down HTTP server")
		return httpServer.Shutdown(shutdownCtx)
	})

	if settings.SSHAddr != "" {
		sshServer, err := tui.NewSSHServer(tui.SSHServerConfig{
			Address:     settings.SSHAddr,
			HostKeyPath: settings.HostKey,
			IdleTimeout: flagIdleTimeout,
			Env:         env,
			Recorder:    keeper,
			Scores:      keeper,
			PollEvery:   tui.DefaultPollEvery,
			Logger:      logger,
		})
		if err != nil {
			cancel()
			_ = g.Wait()
			return err
		}
		g.Go(func() error {
			return sshServer.ListenAndServe(gctx)
		})
	}

	err = g.Wait()
	logger.Info("arcade server stopped")
	return err
}
