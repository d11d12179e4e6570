package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	"github.com/charmbracelet/wish/logging"
	"github.com/tomz197/particles/internal/config"
	"github.com/tomz197/particles/internal/draw"
	"github.com/tomz197/particles/internal/loop"
	"github.com/tomz197/particles/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	logger := cfg.NewLogger(os.Stderr)

	workingDir, workErr := os.Getwd()
	if workErr != nil {
		logger.Warn("failed to get working directory", "err", workErr)
	}
	logger.Info("ssh config", "host", cfg.SSHHost, "port", cfg.SSHPort, "hostKeyPath", cfg.HostKeyPath, "workingDir", workingDir)

	registry := session.NewRegistry()

	opts := []ssh.Option{
		wish.WithAddress(net.JoinHostPort(cfg.SSHHost, cfg.SSHPort)),
		wish.WithMiddleware(
			fieldMiddleware(registry, logger),
			activeterm.Middleware(),
			logging.StructuredMiddlewareWithLogger(logger, log.InfoLevel),
		),
		// Set TCP_NODELAY so pointer movement feels immediate
		ssh.WrapConn(func(ctx ssh.Context, conn net.Conn) net.Conn {
			if tcpConn, ok := conn.(*net.TCPConn); ok {
				_ = tcpConn.SetNoDelay(true)
			}
			return conn
		}),
	}

	if cfg.HostKeyPath != "" {
		opts = append(opts, wish.WithHostKeyPath(cfg.HostKeyPath))
	}

	s, err := wish.NewServer(opts...)
	if err != nil {
		logger.Fatal("failed to create server", "err", err)
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("starting ssh server", "addr", s.Addr)
	go func() {
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			logger.Fatal("server error", "err", err)
		}
	}()

	<-done
	logger.Info("shutting down server", "sessions", registry.Count())

	// Show every session a goodbye notice and wait for them to disconnect
	if !registry.Shutdown(config.ShutdownDrainTimeout) {
		logger.Warn("sessions still connected after drain timeout", "sessions", registry.Count())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.Shutdown(ctx); err != nil {
		logger.Fatal("shutdown error", "err", err)
	}
}

// fieldMiddleware runs a particle field for each SSH session.
func fieldMiddleware(registry *session.Registry, logger *log.Logger) wish.Middleware {
	return func(next ssh.Handler) ssh.Handler {
		return func(sess ssh.Session) {
			pty, winCh, ok := sess.Pty()
			if !ok {
				fmt.Fprintln(sess, "Error: PTY required. Please connect with: ssh -t user@host")
				return
			}

			// Clients may forward DARK_MODE and friends with SendEnv.
			cfg, err := config.LoadSession(sess.Environ())
			if err != nil {
				fmt.Fprintf(sess, "Error: %v\n", err)
				return
			}

			handle := registry.Register(sess.User())
			defer registry.Unregister(handle.ID)

			sessLogger := logger.With("session", handle.ID.String(), "user", sess.User())
			sessLogger.Info("new session", "terminal", pty.Term, "size", fmt.Sprintf("%dx%d", pty.Window.Width, pty.Window.Height))

			// Create a terminal size tracker that updates on window changes
			sizeTracker := newSizeTracker(pty.Window.Width, pty.Window.Height)

			// Listen for window size changes in a goroutine
			go func() {
				for win := range winCh {
					sizeTracker.update(win.Width, win.Height)
				}
			}()

			host := loop.NewHost(bufio.NewReader(sess), sess, loop.Options{
				TermSizeFunc:     sizeTracker.getSize,
				DarkMode:         cfg.DarkMode,
				ReducedMotion:    cfg.ReducedMotion,
				DevicePixelRatio: cfg.DevicePixelRatio,
				Logger:           sessLogger,
				Shutdown:         handle.Shutdown(),
			})
			if err := host.Run(sess.Context()); err != nil {
				sessLogger.Error("field error", "err", err)
			}

			sessLogger.Info("session ended", "duration", time.Since(handle.Started).Round(time.Second))
			next(sess)
		}
	}
}

// sizeTracker tracks terminal size from SSH window change events.
type sizeTracker struct {
	mu     sync.RWMutex
	width  int
	height int
}

func newSizeTracker(width, height int) *sizeTracker {
	return &sizeTracker{width: width, height: height}
}

func (s *sizeTracker) update(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width = width
	s.height = height
}

func (s *sizeTracker) getSize() (int, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.width, s.height, nil
}

// Ensure sizeTracker.getSize satisfies draw.TermSizeFunc
var _ draw.TermSizeFunc = (*sizeTracker)(nil).getSize
