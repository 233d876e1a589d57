package circuitbreaker

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

var ErrOpen = errors.New("circuit breaker is open")

type State int

const (
	StateClosed State = iota
	StateHalfOpen
	StateOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateHalfOpen:
		return "half-open"
	case StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// Config tunes the breaker. FailureThreshold consecutive failures open the
// circuit; after CooldownPeriod a half-open probe is allowed, and
// SuccessThreshold consecutive successes close it again.
type Config struct {
	FailureThreshold int
	SuccessThreshold int
	CooldownPeriod   time.Duration
	Logger           *zap.Logger
}

type Breaker struct {
	name             string
	failureThreshold int
	successThreshold int
	cooldown         time.Duration
	logger           *zap.Logger

	mu           sync.Mutex
	state        State
	failures     int
	successes    int
	openedAt     time.Time
}

func New(name string, cfg Config) *Breaker {
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.SuccessThreshold == 0 {
		cfg.SuccessThreshold = 2
	}
	if cfg.CooldownPeriod == 0 {
		cfg.CooldownPeriod = 30 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Breaker{
		name:             name,
		failureThreshold: cfg.FailureThreshold,
		successThreshold: cfg.SuccessThreshold,
		cooldown:         cfg.CooldownPeriod,
		logger:           cfg.Logger,
	}
}

// Execute runs fn if the circuit admits the call and records the outcome.
func (b *Breaker) Execute(ctx context.Context, fn func() error) error {
	if err := b.allow(); err != nil {
		return err
	}

	err := fn()
	b.record(err == nil)
	return err
}

func (b *Breaker) allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateOpen {
		if time.Since(b.openedAt) < b.cooldown {
			return ErrOpen
		}
		b.transition(StateHalfOpen)
	}
	return nil
}

func (b *Breaker) record(success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if success {
		b.failures = 0
		if b.state == StateHalfOpen {
			b.successes++
			if b.successes >= b.successThreshold {
				b.transition(StateClosed)
			}
		}
		return
	}

	b.successes = 0
	b.failures++
	if b.state == StateHalfOpen || b.failures >= b.failureThreshold {
		b.transition(StateOpen)
		b.openedAt = time.Now()
	}
}

func (b *Breaker) transition(next State) {
	if b.state == next {
		return
	}
	prev := b.state
	b.state = next
	b.failures = 0
	b.successes = 0
	b.logger.Info("Circuit breaker state changed",
		zap.String("name", b.name),
		zap.String("from", prev.String()),
		zap.String("to", next.String()),
	)
}

// State reports the current state, promoting open to half-open when the
// cooldown has elapsed.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == StateOpen && time.Since(b.openedAt) >= b.cooldown {
		return StateHalfOpen
	}
	return b.state
}
