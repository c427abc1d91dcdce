package qexp

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

/*
CircuitState represents the state of the circuit breaker guarding a backend.
*/
type CircuitState int

const (
	CircuitClosed   CircuitState = iota // Normal operation state
	CircuitOpen                         // Failure state, rejecting submissions
	CircuitHalfOpen                     // Probationary state, allowing limited submissions
)

func (s CircuitState) String() string {
	switch s {
	case CircuitClosed:
		return "closed"
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

/*
CircuitBreaker stops submitting to a backend once it has failed maxFailures
times in a row. After resetTimeout it lets up to halfOpenMax submissions
through, and closes again when they succeed.

  - Closed: every submission is allowed
  - Open: every submission is rejected
  - Half-Open: a limited number of submissions probe the backend
*/
type CircuitBreaker struct {
	mu               sync.Mutex
	name             string
	maxFailures      int           // Maximum failures before opening circuit
	resetTimeout     time.Duration // Time to wait before attempting recovery
	halfOpenMax      int           // Maximum requests allowed in half-open state
	failureCount     int           // Current count of consecutive failures
	state            CircuitState  // Current state of the circuit breaker
	openTime         time.Time     // Time when circuit was opened
	halfOpenAttempts int           // Number of attempts made in half-open state
}

/*
NewCircuitBreaker creates a new circuit breaker instance with specified parameters.

Parameters:
  - name: backend the breaker guards, used in log lines
  - maxFailures: Number of failures allowed before opening the circuit
  - resetTimeout: Duration to wait before attempting to close an open circuit
  - halfOpenMax: Maximum number of requests allowed in half-open state
*/
func NewCircuitBreaker(name string, maxFailures int, resetTimeout time.Duration, halfOpenMax int) *CircuitBreaker {
	return &CircuitBreaker{
		name:         name,
		maxFailures:  maxFailures,
		resetTimeout: resetTimeout,
		halfOpenMax:  halfOpenMax,
		state:        CircuitClosed,
	}
}

func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

/*
RecordFailure records a failure and updates the circuit state.
A failure while half-open reopens the circuit immediately.
*/
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failureCount++

	switch {
	case cb.state == CircuitHalfOpen:
		cb.state = CircuitOpen
		cb.openTime = time.Now()
		log.Warn("circuit breaker reopened from half-open state", "backend", cb.name)
	case cb.state == CircuitClosed && cb.failureCount >= cb.maxFailures:
		cb.state = CircuitOpen
		cb.openTime = time.Now()
		log.Warn("circuit breaker opened", "backend", cb.name, "failures", cb.failureCount)
	}
}

/*
RecordSuccess records a successful attempt and updates the circuit state.
*/
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case CircuitHalfOpen:
		cb.halfOpenAttempts++
		if cb.halfOpenAttempts >= cb.halfOpenMax {
			cb.state = CircuitClosed
			cb.failureCount = 0
			cb.halfOpenAttempts = 0
			log.Info("circuit breaker closed from half-open", "backend", cb.name)
		}
	case CircuitClosed:
		cb.failureCount = 0
	}
}

/*
Allow determines if a submission is allowed based on the circuit state,
moving an open circuit to half-open once resetTimeout has passed.
*/
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case CircuitClosed:
		return true
	case CircuitOpen:
		if time.Since(cb.openTime) > cb.resetTimeout {
			cb.state = CircuitHalfOpen
			cb.halfOpenAttempts = 0
			return true
		}
		return false
	case CircuitHalfOpen:
		return cb.halfOpenAttempts < cb.halfOpenMax
	default:
		return false
	}
}
