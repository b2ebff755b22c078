package dispatch

import "log/slog"

type settings struct {
	logger       *slog.Logger
	trampoline   Trampoline
	singleFlight bool
}

// Option configures a Registry or a Resolver.
type Option func(*settings)

// WithLogger sets the structured logger. If not set, slog.Default() is used.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) { s.logger = logger }
}

// WithTrampoline replaces the invocation trampoline of a Resolver.
func WithTrampoline(t Trampoline) Option {
	return func(s *settings) { s.trampoline = t }
}

// WithSingleFlight coalesces concurrent cache misses for the same key so the
// resolution is computed once. Correctness does not depend on it.
func WithSingleFlight(enabled bool) Option {
	return func(s *settings) { s.singleFlight = enabled }
}

func applyOptions(opts []Option) settings {
	s := settings{singleFlight: true}
	for _, opt := range opts {
		opt(&s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.trampoline == nil {
		s.trampoline = DefaultTrampoline
	}
	return s
}
