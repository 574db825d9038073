package ingest

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net"
	"syscall"
	"time"

	"github.com/sejaldua/nba-scorigami/internal/metrics"
	"github.com/sejaldua/nba-scorigami/internal/models"

	"github.com/rs/zerolog/log"
)

// FailureKind classifies a fetch failure for backoff purposes. Every kind is
// retryable under this policy; the kind only controls whether the delay is
// jittered. Treating unknown errors as retryable is a deliberate simplicity
// tradeoff: a malformed-data error burns the retry budget instead of failing
// fast, but the bound keeps that cheap.
type FailureKind int

const (
	FailureTimeout FailureKind = iota
	FailureTransientNetwork
	FailureUnknown
)

func (k FailureKind) String() string {
	switch k {
	case FailureTimeout:
		return "timeout"
	case FailureTransientNetwork:
		return "transient_network"
	default:
		return "unknown"
	}
}

// ClassifyFailure buckets a fetch error into a FailureKind.
func ClassifyFailure(err error) FailureKind {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return FailureTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		return FailureTimeout
	case errors.As(err, &netErr):
		return FailureTransientNetwork
	case errors.Is(err, syscall.ECONNRESET), errors.Is(err, syscall.ECONNREFUSED):
		return FailureTransientNetwork
	default:
		return FailureUnknown
	}
}

// FetchFunc fetches one season's game log rows from the upstream provider.
// season is the starting year of the season, e.g. 2023 for 2023-24.
type FetchFunc func(ctx context.Context, season int) ([]models.GameResult, error)

// Options tunes the retry policy.
type Options struct {
	MaxRetries int           // attempts before giving up; default 5
	BaseDelay  time.Duration // delay before the first retry; default 1s

	// Sleep waits between attempts. Defaults to a context-aware sleep;
	// tests inject a recorder.
	Sleep func(ctx context.Context, d time.Duration) error
	// Jitter returns a value in [0, 1). Defaults to math/rand.
	Jitter func() float64
}

func (o Options) withDefaults() Options {
	if o.MaxRetries <= 0 {
		o.MaxRetries = 5
	}
	if o.BaseDelay <= 0 {
		o.BaseDelay = time.Second
	}
	if o.Sleep == nil {
		o.Sleep = sleepCtx
	}
	if o.Jitter == nil {
		o.Jitter = rand.Float64
	}
	return o
}

// IngestionExhaustedError reports a season whose fetch failed on every
// attempt. The caller decides whether to skip the season or abort the run.
type IngestionExhaustedError struct {
	Season   int
	Attempts int
	LastErr  error
}

func (e *IngestionExhaustedError) Error() string {
	return fmt.Sprintf("season %d: ingestion exhausted after %d attempts: %v", e.Season, e.Attempts, e.LastErr)
}

func (e *IngestionExhaustedError) Unwrap() error {
	return e.LastErr
}

// FetchSeason calls fetch with bounded retries and exponential backoff. The
// delay before retry k is BaseDelay * 2^(k-1), stretched by a factor of
// 1 + U(0, 0.3) for timeout and transient network failures and left
// un-jittered for unknown failures. There is no delay after the final failed
// attempt. A successful response is returned immediately, even when empty:
// a season in progress can legitimately have no completed games yet.
func FetchSeason(ctx context.Context, season int, fetch FetchFunc, opts Options) ([]models.GameResult, error) {
	opts = opts.withDefaults()

	var lastErr error
	for attempt := 1; attempt <= opts.MaxRetries; attempt++ {
		rows, err := fetch(ctx, season)
		if err == nil {
			return rows, nil
		}

		lastErr = err
		kind := ClassifyFailure(err)
		log.Warn().
			Err(err).
			Int("season", season).
			Int("attempt", attempt).
			Str("kind", kind.String()).
			Msg("Season fetch failed")

		if attempt == opts.MaxRetries {
			break
		}

		metrics.FetchRetriesTotal.WithLabelValues(kind.String()).Inc()
		delay := backoffDelay(opts, attempt, kind)
		log.Info().
			Int("season", season).
			Dur("backoff", delay).
			Msg("Retrying season fetch after backoff")
		if err := opts.Sleep(ctx, delay); err != nil {
			return nil, err
		}
	}

	return nil, &IngestionExhaustedError{Season: season, Attempts: opts.MaxRetries, LastErr: lastErr}
}

// backoffDelay computes the delay after the attempt-th consecutive failure.
func backoffDelay(opts Options, attempt int, kind FailureKind) time.Duration {
	delay := opts.BaseDelay * time.Duration(1<<uint(attempt-1))
	if kind != FailureUnknown {
		delay = time.Duration(float64(delay) * (1 + opts.Jitter()*0.3))
	}
	return delay
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
