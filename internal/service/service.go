package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rozhnof/waiter/internal/config"
	"github.com/rozhnof/waiter/internal/server"
)

// Service is the root lifecycle owner for the waiter
type Service struct {
	cfg config.Config
	out io.Writer

	// Lifecycle state
	started         chan struct{}
	stopped         chan struct{}
	shutdown        chan struct{}
	shutdownStarted atomic.Bool

	listener   net.Listener
	httpServer *http.Server

	logger *zap.Logger
}

// New creates a new Service with the given configuration. Request summaries
// are written to out.
func New(cfg config.Config, out io.Writer, baseLogger *zap.Logger) *Service {
	return &Service{
		cfg:      cfg,
		out:      out,
		started:  make(chan struct{}),
		stopped:  make(chan struct{}),
		shutdown: make(chan struct{}),
		logger:   baseLogger.Named("service"),
	}
}

// Initialize sets up the HTTP server (idempotent)
func (s *Service) Initialize(ctx context.Context) error {
	if s.httpServer != nil {
		return nil
	}

	log := s.logger.Sugar()
	log.Info("initializing HTTP server")

	format, err := server.ParseHeaderFormat(s.cfg.HeaderFormat)
	if err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}

	s.httpServer = server.New(server.Config{
		Out:          s.out,
		HeaderFormat: format,
		ReadTimeout:  s.cfg.ReadTimeout,
	}, s.logger)
	s.httpServer.BaseContext = func(l net.Listener) context.Context { return ctx }

	return nil
}

// Listen binds the listening socket (idempotent). A bind failure is returned
// as *server.BindError.
func (s *Service) Listen() error {
	if s.listener != nil {
		return nil
	}

	l, err := server.Listen(s.cfg.Addr())
	if err != nil {
		return err
	}
	s.listener = l

	port := s.cfg.Port
	if addr, ok := l.Addr().(*net.TCPAddr); ok {
		port = addr.Port
	}
	s.logger.Sugar().Infow("listening", "addr", l.Addr().String())
	if _, err := fmt.Fprintf(s.out, "Starting server on port %d...\n", port); err != nil {
		s.logger.Sugar().Errorw("failed to write startup message", "error", err)
	}
	return nil
}

// Addr returns the bound address, or nil before Listen
func (s *Service) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Run serves requests and blocks until shutdown
func (s *Service) Run(ctx context.Context) error {
	log := s.logger.Sugar()

	select {
	case <-s.started:
		log.Errorw("service already started")
		return nil
	default:
	}

	if s.httpServer == nil {
		return fmt.Errorf("service not initialized - call Initialize() first")
	}
	if err := s.Listen(); err != nil {
		return err
	}

	log.Infow("starting service",
		"addr", s.listener.Addr().String(),
		"header_format", s.cfg.HeaderFormat,
		"read_timeout", s.cfg.ReadTimeout,
	)

	eg, egCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		log.Info("starting HTTP server")
		if err := s.httpServer.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-s.shutdown
		log.Info("closing HTTP server")
		return s.httpServer.Close()
	})

	// Monitor for context cancellation (handles external cancellation)
	eg.Go(func() error {
		select {
		case <-s.shutdown:
			return nil
		case <-egCtx.Done():
			log.Info("context canceled, shutting down")
			if s.shutdownStarted.CompareAndSwap(false, true) {
				close(s.shutdown)
			}
			return egCtx.Err()
		}
	})

	close(s.started)

	err := eg.Wait()

	s.stop()

	return err
}

// Shutdown closes the listener and any in-flight connection (non-blocking)
func (s *Service) Shutdown() {
	log := s.logger.Sugar()
	log.Info("shutdown requested")

	if !s.shutdownStarted.CompareAndSwap(false, true) {
		log.Debug("already shutting down")
		return
	}

	close(s.shutdown)
}

func (s *Service) stop() {
	log := s.logger.Sugar()
	log.Info("stopping service")

	select {
	case <-s.stopped:
		log.Debug("service already stopped")
	default:
		close(s.stopped)
	}
}

// IsStarted returns true if the service has been started
func (s *Service) IsStarted() bool {
	select {
	case <-s.started:
		return true
	default:
		return false
	}
}

// IsStopped returns true if the service has been stopped
func (s *Service) IsStopped() bool {
	select {
	case <-s.stopped:
		return true
	default:
		return false
	}
}

// IsRunning returns true if the service is running (started but not stopped)
func (s *Service) IsRunning() bool {
	return s.IsStarted() && !s.IsStopped()
}
