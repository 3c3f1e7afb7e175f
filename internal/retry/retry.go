// Package retry executes HTTP attempts under an exponential backoff policy
// and classifies which failures are worth another attempt.
package retry

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy bounds the retry behavior of a single logical request.
type Policy struct {
	// MaxAttempts is the total number of attempts, the first try included
	MaxAttempts int

	// InitialInterval seeds the exponential backoff
	InitialInterval time.Duration

	// MaxInterval caps a single pause between attempts
	MaxInterval time.Duration

	// MaxElapsed caps the total time spent across attempts
	MaxElapsed time.Duration
}

// DefaultPolicy returns the standard policy of five attempts with jittered
// exponential spacing and a two minute overall cap.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:     5,
		InitialInterval: 200 * time.Millisecond,
		MaxInterval:     10 * time.Second,
		MaxElapsed:      2 * time.Minute,
	}
}

func (p Policy) normalized() Policy {
	d := DefaultPolicy()
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = d.MaxAttempts
	}
	if p.InitialInterval <= 0 {
		p.InitialInterval = d.InitialInterval
	}
	if p.MaxInterval <= 0 {
		p.MaxInterval = d.MaxInterval
	}
	if p.MaxElapsed <= 0 {
		p.MaxElapsed = d.MaxElapsed
	}
	return p
}

// Do runs op until it succeeds, fails permanently, the policy is exhausted,
// or ctx is cancelled. Each invocation of op must rebuild its request from
// scratch; nothing from a failed attempt may carry into the next one.
func Do(ctx context.Context, p Policy, op func() (*http.Response, error)) (*http.Response, error) {
	p = p.normalized()

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = p.InitialInterval
	bo.MaxInterval = p.MaxInterval
	bo.MaxElapsedTime = p.MaxElapsed

	return backoff.RetryWithData(op, backoff.WithContext(
		backoff.WithMaxRetries(bo, uint64(p.MaxAttempts-1)), ctx))
}

// Permanent marks err so Do stops immediately instead of retrying.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// IsTransient classifies transport-level failures that are safe to retry:
// timeouts, temporary DNS failures, and dropped or refused connections.
// Context cancellation is never transient.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if isConnectionError(err) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return dnsErr.IsTemporary || dnsErr.IsTimeout
	}
	return false
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, net.ErrClosed) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return true
	}
	for _, errno := range []syscall.Errno{
		syscall.ECONNRESET,
		syscall.ECONNABORTED,
		syscall.EPIPE,
		syscall.ECONNREFUSED,
		syscall.EHOSTUNREACH,
		syscall.ENETUNREACH,
	} {
		if errors.Is(err, errno) {
			return true
		}
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Err != nil {
		return isConnectionError(opErr.Err)
	}
	return false
}

// RetryableStatus reports whether an HTTP status code signals a transient
// service-side condition.
func RetryableStatus(code int) bool {
	switch code {
	case http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout,
		http.StatusTooManyRequests,
		http.StatusRequestTimeout:
		return true
	}
	return false
}
