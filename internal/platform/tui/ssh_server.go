package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"

	"github.com/vovakirdan/brick-arcade/internal/registry"
	"github.com/vovakirdan/brick-arcade/internal/session"
)

// SSHServerConfig holds configuration for the SSH server.
type SSHServerConfig struct {
	// Address is the host:port to listen on (e.g., ":23234").
	Address string

	// HostKeyPath is the path to the host key file; wish generates it when missing.
	HostKeyPath string

	// IdleTimeout is how long to wait before closing idle connections.
	IdleTimeout time.Duration

	Env       registry.Env
	Recorder  session.RunRecorder
	Scores    ScoreSource
	PollEvery time.Duration
	Logger    *log.Logger
}

// SSHServer serves the arcade over SSH. Every connection plays in its own
// session; Terminate only ends that connection.
type SSHServer struct {
	config   SSHServerConfig
	server   *ssh.Server
	sessions *session.Manager
	logger   *log.Logger
}

// NewSSHServer creates a new SSH server with the given configuration.
func NewSSHServer(cfg SSHServerConfig) (*SSHServer, error) {
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard)
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = 30 * time.Minute
	}

	srv := &SSHServer{
		config: cfg,
		logger: cfg.Logger,
		sessions: session.NewManager(session.Config{
			Env:      cfg.Env,
			Recorder: cfg.Recorder,
			Logger:   cfg.Logger,
		}),
	}

	if dir := filepath.Dir(cfg.HostKeyPath); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("tui: cannot create host key directory: %w", err)
		}
	}

	server, err := wish.NewServer(
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(cfg.HostKeyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			bubbletea.Middleware(srv.teaHandler),
			srv.loggingMiddleware,
		),
	)
	if err != nil {
		return nil, fmt.Errorf("tui: cannot create SSH server: %w", err)
	}

	srv.server = server
	return srv, nil
}

// teaHandler creates an arcade program for each SSH session.
func (s *SSHServer) teaHandler(sshSession ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, ok := sshSession.Pty()
	if !ok {
		s.logger.Warn("no PTY requested", "user", sshSession.User())
		return nil, nil
	}

	user := sshSession.User()
	app := NewApp(AppConfig{
		Open:      s.opener(sshSession.Context(), user),
		Scores:    s.config.Scores,
		PollEvery: s.config.PollEvery,
	}, pty.Window.Width, pty.Window.Height)

	return app, []tea.ProgramOption{tea.WithAltScreen()}
}

// opener gives each game its own session, dropped when the player leaves
// it or when ctx ends with the connection.
func (s *SSHServer) opener(ctx context.Context, user string) Opener {
	var (
		mu   sync.Mutex
		open = make(map[string]struct{})
	)
	// release deletes id once, whichever of Close or disconnect comes first.
	release := func(id string) {
		mu.Lock()
		_, ok := open[id]
		delete(open, id)
		mu.Unlock()
		if !ok {
			return
		}
		if err := s.sessions.Delete(id); err != nil {
			s.logger.Warn("cannot drop ssh session", "session", id, "err", err)
		}
	}

	go func() {
		<-ctx.Done()
		mu.Lock()
		ids := make([]string, 0, len(open))
		for id := range open {
			ids = append(ids, id)
		}
		mu.Unlock()
		for _, id := range ids {
			release(id)
		}
		if len(ids) > 0 {
			s.logger.Debug("ssh games dropped on disconnect", "user", user, "count", len(ids))
		}
	}()

	return func(gameID string) (Driver, error) {
		sess, err := s.sessions.Create(gameID)
		if err != nil {
			return nil, err
		}
		id := sess.ID()
		mu.Lock()
		open[id] = struct{}{}
		mu.Unlock()
		s.logger.Debug("ssh game opened", "user", user, "session", id, "game", sess.GameID())

		return NewLocalDriver(sess, func() { release(id) }), nil
	}
}

// loggingMiddleware logs SSH session events.
func (s *SSHServer) loggingMiddleware(next ssh.Handler) ssh.Handler {
	return func(sshSession ssh.Session) {
		s.logger.Info("ssh session started",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
		next(sshSession)
		s.logger.Info("ssh session ended",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
	}
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *SSHServer) ListenAndServe(ctx context.Context) error {
	s.logger.Info("starting SSH server", "address", s.config.Address)

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down SSH server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}

// Sessions returns the live per-connection sessions.
func (s *SSHServer) Sessions() *session.Manager {
	return s.sessions
}
