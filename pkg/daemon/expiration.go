// Package daemon implements expiration policies for long-lived worker
// processes whose tunables are resolved through a dynamic view, so an
// idle-timeout override written as an ad hoc extension takes effect without
// a restart.
package daemon

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// ExpirationStatus grades how urgently a daemon should shut down.
type ExpirationStatus int

const (
	// DoNotExpire keeps the daemon alive.
	DoNotExpire ExpirationStatus = iota
	// QuietExpire stops the daemon once it has no connected clients.
	QuietExpire
	// GracefulExpire stops the daemon after the current build finishes.
	GracefulExpire
	// ImmediateExpire stops the daemon now.
	ImmediateExpire
)

func (s ExpirationStatus) String() string {
	switch s {
	case DoNotExpire:
		return "do-not-expire"
	case QuietExpire:
		return "quiet-expire"
	case GracefulExpire:
		return "graceful-expire"
	case ImmediateExpire:
		return "immediate-expire"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// ExpirationResult pairs a status with a human-readable reason.
type ExpirationResult struct {
	Status ExpirationStatus
	Reason string
}

// NotTriggered is returned by strategies that found no reason to expire.
var NotTriggered = ExpirationResult{Status: DoNotExpire}

// ExpirationStrategy decides whether a daemon should shut down.
type ExpirationStrategy interface {
	CheckExpiration() ExpirationResult
}

// IdleMonitor reports how long the daemon has been idle at a given instant.
type IdleMonitor interface {
	IdleDuration(now time.Time) time.Duration
}

// TimeoutSupplier yields the currently-effective idle timeout. Suppliers
// are re-consulted on every check so dynamically resolved values stay live.
type TimeoutSupplier func() time.Duration

// FixedTimeout returns a supplier with a constant threshold.
func FixedTimeout(timeout time.Duration) TimeoutSupplier {
	return func() time.Duration { return timeout }
}

// IdleTimeoutStrategy expires a daemon that has been idle longer than the
// supplied timeout.
type IdleTimeoutStrategy struct {
	monitor IdleMonitor
	timeout TimeoutSupplier
	now     func() time.Time
	log     zerolog.Logger
}

// IdleTimeoutOption configures an IdleTimeoutStrategy.
type IdleTimeoutOption func(*IdleTimeoutStrategy)

// WithLogger routes the expiry log line through logger.
func WithLogger(log zerolog.Logger) IdleTimeoutOption {
	return func(s *IdleTimeoutStrategy) {
		s.log = log
	}
}

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) IdleTimeoutOption {
	return func(s *IdleTimeoutStrategy) {
		if now != nil {
			s.now = now
		}
	}
}

// NewIdleTimeoutStrategy constructs a strategy over monitor and timeout.
func NewIdleTimeoutStrategy(monitor IdleMonitor, timeout TimeoutSupplier, opts ...IdleTimeoutOption) (*IdleTimeoutStrategy, error) {
	if monitor == nil {
		return nil, fmt.Errorf("daemon: idle monitor must not be nil")
	}
	if timeout == nil {
		return nil, fmt.Errorf("daemon: timeout supplier must not be nil")
	}
	strategy := &IdleTimeoutStrategy{
		monitor: monitor,
		timeout: timeout,
		now:     time.Now,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(strategy)
		}
	}
	return strategy, nil
}

// CheckExpiration compares the monitor's idle duration against the current
// timeout and requests a quiet expiry once exceeded.
func (s *IdleTimeoutStrategy) CheckExpiration() ExpirationResult {
	idle := s.monitor.IdleDuration(s.now())
	if idle <= s.timeout() {
		return NotTriggered
	}
	s.log.Info().
		Dur("idle", idle).
		Msg("idle timeout exceeded, expiring daemon")
	return ExpirationResult{
		Status: QuietExpire,
		Reason: fmt.Sprintf("daemon has been idle for %d milliseconds", idle.Milliseconds()),
	}
}
