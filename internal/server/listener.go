package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"strconv"
	"time"
)

// ErrCandidatesExhausted is wrapped in a BindError when no resolved
// address could be bound.
var ErrCandidatesExhausted = errors.New("no candidate address could be bound")

// BindError is fatal: the server cannot run without a listening socket.
type BindError struct {
	Stage string
	Addr  string
	Cause error
}

// Error implements the [builtin.error] interface.
func (e BindError) Error() string {
	return fmt.Sprintf("failed to %s %s: %s", e.Stage, e.Addr, e.Cause)
}

// Unwrap implements the implicit interface used by [errors.Is] and [errors.As].
func (e BindError) Unwrap() error {
	return e.Cause
}

// Candidate is one local address the listener may bind to.
type Candidate struct {
	IP   netip.Addr
	Port int
}

// Network returns "tcp4" or "tcp6".
func (c Candidate) Network() string {
	if c.IP.Is4() {
		return "tcp4"
	}
	return "tcp6"
}

func (c Candidate) String() string {
	return net.JoinHostPort(c.IP.String(), strconv.Itoa(c.Port))
}

// Endpoint is a bound, listening socket.
type Endpoint struct {
	Listener       net.Listener
	Network        string
	Backlog        int
	ReceiveTimeout time.Duration
}

// Addr returns the address actually bound, which differs from the
// configured one when port 0 was requested.
func (e *Endpoint) Addr() net.Addr {
	return e.Listener.Addr()
}

// Close closes the listening socket.
func (e *Endpoint) Close() error {
	return e.Listener.Close()
}

// Candidates resolves host into local addresses. An empty host yields
// the IPv6 and IPv4 wildcard addresses, in that order.
func Candidates(ctx context.Context, host string, port int) ([]Candidate, error) {
	if host == "" {
		return []Candidate{
			{IP: netip.IPv6Unspecified(), Port: port},
			{IP: netip.IPv4Unspecified(), Port: port},
		}, nil
	}

	if ip, err := netip.ParseAddr(host); err == nil {
		return []Candidate{{IP: ip.Unmap(), Port: port}}, nil
	}

	ips, err := net.DefaultResolver.LookupNetIP(ctx, "ip", host)
	if err != nil {
		return nil, err
	}
	out := make([]Candidate, 0, len(ips))
	for _, ip := range ips {
		out = append(out, Candidate{IP: ip.Unmap(), Port: port})
	}
	return out, nil
}

// resolveCandidates is swapped out in tests.
var resolveCandidates = Candidates

// bindState is a step in Bind's candidate walk
type bindState int

const (
	stateResolving bindState = iota
	stateTryingCandidate
	stateBound
	stateExhausted
)

// Bind resolves the configured address and binds the first candidate
// that accepts a socket, address reuse, bind and listen. Candidates are
// tried one after another, never in parallel.
func Bind(ctx context.Context, cfg Config, logger Logger) (*Endpoint, error) {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = &NullLogger{}
	}

	var (
		state      = stateResolving
		candidates []Candidate
		next       int
		ln         net.Listener
		bound      Candidate
		lastErr    error
	)

	for {
		switch state {
		case stateResolving:
			cs, err := resolveCandidates(ctx, cfg.Host, cfg.Port)
			if err != nil {
				return nil, BindError{Stage: "resolve", Addr: cfg.Addr(), Cause: err}
			}
			candidates = cs
			state = stateTryingCandidate

		case stateTryingCandidate:
			if next >= len(candidates) {
				state = stateExhausted
				continue
			}
			c := candidates[next]
			next++

			l, err := listenOn(ctx, c, cfg.Backlog, logger)
			if err != nil {
				logger.Warn("failed to bind candidate",
					Field{"addr", c.String()},
					Field{"error", err},
				)
				lastErr = err
				continue
			}
			ln, bound = l, c
			state = stateBound

		case stateBound:
			logger.Info("waiting for connection",
				Field{"addr", ln.Addr().String()},
				Field{"backlog", cfg.Backlog},
			)
			return &Endpoint{
				Listener:       ln,
				Network:        bound.Network(),
				Backlog:        cfg.Backlog,
				ReceiveTimeout: cfg.ReceiveTimeout,
			}, nil

		case stateExhausted:
			cause := ErrCandidatesExhausted
			if lastErr != nil {
				cause = fmt.Errorf("%w: %w", ErrCandidatesExhausted, lastErr)
			}
			return nil, BindError{Stage: "bind", Addr: cfg.Addr(), Cause: cause}
		}
	}
}
