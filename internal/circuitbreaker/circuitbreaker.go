package circuitbreaker

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	// ErrOpenState is returned when the circuit breaker is open
	ErrOpenState = errors.New("circuit breaker is open")

	// ErrTooManyRequests is returned when too many requests are made in half-open state
	ErrTooManyRequests = errors.New("too many requests in half-open state")
)

// State represents the circuit breaker state
type State int

const (
	// StateClosed allows all requests through
	StateClosed State = iota

	// StateOpen rejects all requests
	StateOpen

	// StateHalfOpen allows limited requests to test recovery
	StateHalfOpen
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Config holds circuit breaker configuration
type Config struct {
	// Name identifies the protected dependency in state change callbacks
	Name string

	// MaxFailures is the number of consecutive failures before opening the circuit
	MaxFailures uint

	// Timeout is how long to wait in open state before moving to half-open
	Timeout time.Duration

	// MaxHalfOpenRequests is the maximum requests allowed in half-open state
	MaxHalfOpenRequests uint

	// IsSuccessful determines if the result is a success. Client-side
	// rejections (bad input, not found) should count as success so they
	// never open the circuit.
	IsSuccessful func(error) bool

	// OnStateChange is called after every transition, outside the lock
	OnStateChange func(name string, from, to State)
}

// DefaultConfig returns sensible defaults for circuit breaker
func DefaultConfig() Config {
	return Config{
		MaxFailures:         5,
		Timeout:             30 * time.Second,
		MaxHalfOpenRequests: 1,
		IsSuccessful: func(err error) bool {
			return err == nil
		},
	}
}

// CircuitBreaker implements the circuit breaker pattern
type CircuitBreaker struct {
	mu               sync.RWMutex
	state            State
	failures         uint
	successes        uint
	lastStateChange  time.Time
	halfOpenRequests uint
	cfg              Config
	now              func() time.Time
}

type transition struct {
	from, to State
}

// New creates a new circuit breaker
func New(cfg Config) *CircuitBreaker {
	if cfg.IsSuccessful == nil {
		cfg.IsSuccessful = func(err error) bool {
			return err == nil
		}
	}
	if cfg.MaxHalfOpenRequests == 0 {
		cfg.MaxHalfOpenRequests = 1
	}

	return &CircuitBreaker{
		state:           StateClosed,
		lastStateChange: time.Now(),
		cfg:             cfg,
		now:             time.Now,
	}
}

// ExecuteContext runs fn through the circuit breaker. A context that is
// already done is reported without touching the breaker, and context errors
// returned by fn are not counted as failures.
func (cb *CircuitBreaker) ExecuteContext(ctx context.Context, fn func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t, err := cb.beforeRequest()
	cb.notify(t)
	if err != nil {
		return err
	}

	err = fn(ctx)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		cb.release()
		return err
	}

	cb.notify(cb.afterRequest(err))
	return err
}

// beforeRequest checks if the request should be allowed
func (cb *CircuitBreaker) beforeRequest() (*transition, error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		return nil, nil

	case StateOpen:
		if cb.now().Sub(cb.lastStateChange) > cb.cfg.Timeout {
			t := cb.setState(StateHalfOpen)
			cb.halfOpenRequests++
			return t, nil
		}
		return nil, ErrOpenState

	case StateHalfOpen:
		if cb.halfOpenRequests >= cb.cfg.MaxHalfOpenRequests {
			return nil, ErrTooManyRequests
		}
		cb.halfOpenRequests++
		return nil, nil

	default:
		return nil, ErrOpenState
	}
}

// release gives back a half-open slot for a request that ended without a verdict
func (cb *CircuitBreaker) release() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if cb.state == StateHalfOpen && cb.halfOpenRequests > 0 {
		cb.halfOpenRequests--
	}
}

// afterRequest updates the circuit breaker state based on the result
func (cb *CircuitBreaker) afterRequest(err error) *transition {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.cfg.IsSuccessful(err) {
		return cb.onSuccess()
	}
	return cb.onFailure()
}

// onSuccess handles successful requests
func (cb *CircuitBreaker) onSuccess() *transition {
	switch cb.state {
	case StateClosed:
		cb.failures = 0

	case StateHalfOpen:
		cb.successes++
		if cb.successes >= cb.cfg.MaxHalfOpenRequests {
			return cb.setState(StateClosed)
		}
	}
	return nil
}

// onFailure handles failed requests
func (cb *CircuitBreaker) onFailure() *transition {
	cb.failures++

	switch cb.state {
	case StateClosed:
		if cb.failures >= cb.cfg.MaxFailures {
			return cb.setState(StateOpen)
		}

	case StateHalfOpen:
		return cb.setState(StateOpen)
	}
	return nil
}

// setState transitions to a new state; callers hold the lock
func (cb *CircuitBreaker) setState(state State) *transition {
	from := cb.state
	cb.state = state
	cb.lastStateChange = cb.now()
	cb.successes = 0
	cb.halfOpenRequests = 0

	if state == StateClosed {
		cb.failures = 0
	}

	if from == state {
		return nil
	}
	return &transition{from: from, to: state}
}

func (cb *CircuitBreaker) notify(t *transition) {
	if t == nil || cb.cfg.OnStateChange == nil {
		return
	}
	cb.cfg.OnStateChange(cb.cfg.Name, t.from, t.to)
}

// State returns the current state
func (cb *CircuitBreaker) State() State {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	return cb.state
}

// Failures returns the current failure count
func (cb *CircuitBreaker) Failures() uint {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	return cb.failures
}
