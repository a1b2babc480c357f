// Package server runs the daemon's long-lived services with graceful
// shutdown on signal.
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

// DefaultStopTimeout bounds how long one service may take to return after
// its context is cancelled.
const DefaultStopTimeout = 30 * time.Second

// ErrStopTimeout is reported for a service that outlived its stop timeout.
var ErrStopTimeout = errors.New("service did not stop in time")

// Service is a long-running component. Run blocks until ctx is cancelled or
// the service fails; returning ctx.Err() after cancellation is a clean stop.
type Service interface {
	Run(ctx context.Context) error
}

// ServiceFunc adapts a function to the Service interface.
type ServiceFunc func(ctx context.Context) error

// Run calls f.
func (f ServiceFunc) Run(ctx context.Context) error { return f(ctx) }

// Lifecycle starts services in registration order and stops them in reverse
// order: each service's context is cancelled only after every later service
// has returned.
type Lifecycle struct {
	logger      *zap.Logger
	stopTimeout time.Duration
	signals     []os.Signal
	services    []namedService
	mu          sync.Mutex
}

type namedService struct {
	name    string
	service Service
	cancel  context.CancelFunc
	done    chan error
}

// NewLifecycle creates a new Lifecycle manager listening for SIGINT and
// SIGTERM.
//
// Precondition: logger must be non-nil.
func NewLifecycle(logger *zap.Logger) *Lifecycle {
	return &Lifecycle{
		logger:      logger,
		stopTimeout: DefaultStopTimeout,
		signals:     []os.Signal{syscall.SIGINT, syscall.SIGTERM},
	}
}

// SetStopTimeout changes the per-service stop timeout.
//
// Precondition: d must be > 0.
func (l *Lifecycle) SetStopTimeout(d time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stopTimeout = d
}

// Add registers a named service.
//
// Precondition: name must be non-empty; svc must be non-nil; Run has not
// been called.
func (l *Lifecycle) Add(name string, svc Service) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.services = append(l.services, namedService{name: name, service: svc})
}

// Run starts every service and blocks until a termination signal, the
// cancellation of ctx, or the first service failure. Services are then
// stopped in reverse order.
//
// Postcondition: every service has returned or timed out. The result joins
// every service failure; clean stops contribute nothing.
func (l *Lifecycle) Run(ctx context.Context) error {
	l.mu.Lock()
	services := append([]namedService(nil), l.services...)
	stopTimeout := l.stopTimeout
	l.mu.Unlock()

	start := time.Now()
	sigCtx, stopSignals := signal.NotifyContext(ctx, l.signals...)
	defer stopSignals()

	failed := make(chan string, len(services))
	for i := range services {
		ns := &services[i]
		svcCtx, cancel := context.WithCancel(context.Background())
		ns.cancel = cancel
		ns.done = make(chan error, 1)
		l.logger.Info("starting service", zap.String("service", ns.name))
		go func() {
			svcStart := time.Now()
			err := ns.service.Run(svcCtx)
			if err != nil && !errors.Is(err, context.Canceled) {
				l.logger.Error("service failed",
					zap.String("service", ns.name),
					zap.Error(err),
					zap.Duration("uptime", time.Since(svcStart)),
				)
				failed <- ns.name
			}
			ns.done <- err
		}()
	}

	l.logger.Info("all services started",
		zap.Int("count", len(services)),
		zap.Duration("startup", time.Since(start)),
	)

	select {
	case <-sigCtx.Done():
		if ctx.Err() != nil {
			l.logger.Info("context cancelled, shutting down")
		} else {
			l.logger.Info("received signal, shutting down")
		}
	case name := <-failed:
		l.logger.Error("service error, shutting down", zap.String("service", name))
	}

	err := l.shutdown(services, stopTimeout)
	l.logger.Info("shutdown complete",
		zap.Duration("total_uptime", time.Since(start)),
	)
	return err
}

func (l *Lifecycle) shutdown(services []namedService, timeout time.Duration) error {
	shutdownStart := time.Now()
	var errs []error
	for i := len(services) - 1; i >= 0; i-- {
		ns := services[i]
		svcStart := time.Now()
		l.logger.Info("stopping service", zap.String("service", ns.name))
		ns.cancel()

		select {
		case err := <-ns.done:
			if err != nil && !errors.Is(err, context.Canceled) {
				errs = append(errs, fmt.Errorf("service %s: %w", ns.name, err))
			}
			l.logger.Info("service stopped",
				zap.String("service", ns.name),
				zap.Duration("elapsed", time.Since(svcStart)),
			)
		case <-time.After(timeout):
			errs = append(errs, fmt.Errorf("service %s: %w", ns.name, ErrStopTimeout))
			l.logger.Warn("service stop timed out",
				zap.String("service", ns.name),
				zap.Duration("timeout", timeout),
			)
		}
	}
	l.logger.Info("all services stopped",
		zap.Duration("shutdown_elapsed", time.Since(shutdownStart)),
	)
	return errors.Join(errs...)
}
