// Package server provides application lifecycle management including
// graceful startup and shutdown with signal handling.
package server

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// ErrShutdownTimeout is returned by Run when services did not stop within the
// shutdown timeout.
var ErrShutdownTimeout = errors.New("server: shutdown timed out")

// Service represents a long-running component that can be started and stopped.
type Service interface {
	// Start begins the service. It should block until the service is stopped
	// or an error occurs.
	Start() error
	// Stop gracefully stops the service.
	Stop()
}

// Forcer is implemented by services that can abandon a graceful stop. The
// Lifecycle calls ForceStop when Stop has not returned by the shutdown deadline.
type Forcer interface {
	ForceStop()
}

// FuncService adapts a start/stop function pair into the Service interface.
// ForceFn is optional.
type FuncService struct {
	StartFn func() error
	StopFn  func()
	ForceFn func()
}

// Start calls the underlying start function.
func (f *FuncService) Start() error { return f.StartFn() }

// Stop calls the underlying stop function.
func (f *FuncService) Stop() { f.StopFn() }

// ForceStop calls ForceFn when set.
func (f *FuncService) ForceStop() {
	if f.ForceFn != nil {
		f.ForceFn()
	}
}

// Lifecycle manages the startup and shutdown of multiple services.
// Services are started in order and stopped in reverse order.
type Lifecycle struct {
	logger          *zap.Logger
	shutdownTimeout time.Duration
	services        []namedService
	mu              sync.Mutex
}

type namedService struct {
	name    string
	service Service
}

// NewLifecycle creates a new Lifecycle manager. shutdownTimeout bounds the whole
// reverse-order stop sequence; 0 waits indefinitely.
//
// Precondition: logger must be non-nil; shutdownTimeout >= 0.
func NewLifecycle(logger *zap.Logger, shutdownTimeout time.Duration) *Lifecycle {
	return &Lifecycle{
		logger:          logger,
		shutdownTimeout: shutdownTimeout,
	}
}

// Add registers a named service for lifecycle management.
// Services are started in the order they are added.
//
// Precondition: name must be non-empty; svc must be non-nil.
func (l *Lifecycle) Add(name string, svc Service) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.services = append(l.services, namedService{name: name, service: svc})
}

// Run starts all services and blocks until a termination signal is received
// (SIGINT or SIGTERM), a service fails, or ctx is cancelled. Services are then
// stopped in reverse order.
//
// Postcondition: All services have been asked to stop when this method returns.
// Returns the first service failure, ErrShutdownTimeout, or nil.
func (l *Lifecycle) Run(ctx context.Context) error {
	start := time.Now()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	l.mu.Lock()
	services := append([]namedService(nil), l.services...)
	l.mu.Unlock()

	errCh := make(chan error, len(services))
	for _, ns := range services {
		go func() {
			l.logger.Info("starting service",
				zap.String("service", ns.name),
			)
			svcStart := time.Now()
			if err := ns.service.Start(); err != nil {
				l.logger.Error("service failed",
					zap.String("service", ns.name),
					zap.Error(err),
					zap.Duration("uptime", time.Since(svcStart)),
				)
				errCh <- fmt.Errorf("service %s: %w", ns.name, err)
				cancel()
			}
		}()
	}

	l.logger.Info("all services started",
		zap.Int("count", len(services)),
		zap.Duration("startup", time.Since(start)),
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	var runErr error
	select {
	case sig := <-sigCh:
		l.logger.Info("received signal, shutting down",
			zap.String("signal", sig.String()),
		)
	case runErr = <-errCh:
		l.logger.Error("service error, shutting down",
			zap.Error(runErr),
		)
	case <-ctx.Done():
		// A failing service cancels ctx after queueing its error.
		select {
		case runErr = <-errCh:
			l.logger.Error("service error, shutting down",
				zap.Error(runErr),
			)
		default:
			l.logger.Info("context cancelled, shutting down")
		}
	}

	if err := l.shutdown(services); err != nil && runErr == nil {
		runErr = err
	}

	l.logger.Info("shutdown complete",
		zap.Duration("total_uptime", time.Since(start)),
	)
	return runErr
}

func (l *Lifecycle) shutdown(services []namedService) error {
	shutdownStart := time.Now()
	var deadline <-chan time.Time
	if l.shutdownTimeout > 0 {
		timer := time.NewTimer(l.shutdownTimeout)
		defer timer.Stop()
		deadline = timer.C
	}

	for i := len(services) - 1; i >= 0; i-- {
		ns := services[i]
		svcStart := time.Now()
		l.logger.Info("stopping service",
			zap.String("service", ns.name),
		)

		done := make(chan struct{})
		go func() {
			ns.service.Stop()
			close(done)
		}()

		select {
		case <-done:
			l.logger.Info("service stopped",
				zap.String("service", ns.name),
				zap.Duration("elapsed", time.Since(svcStart)),
			)
		case <-deadline:
			l.logger.Error("shutdown timeout exceeded, forcing remaining services",
				zap.String("service", ns.name),
				zap.Duration("timeout", l.shutdownTimeout),
			)
			for j := i; j >= 0; j-- {
				if f, ok := services[j].service.(Forcer); ok {
					f.ForceStop()
				}
			}
			return ErrShutdownTimeout
		}
	}
	l.logger.Info("all services stopped",
		zap.Duration("shutdown_elapsed", time.Since(shutdownStart)),
	)
	return nil
}
