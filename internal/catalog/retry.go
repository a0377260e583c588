package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/arcanaland/deckpress/internal/card"
)

// Retrying wraps a Client with a bounded-attempt retry policy.
//
// Rate-limit responses sleep for the catalog's retry-after hint, or the
// base backoff when none is given. Transient failures back off
// exponentially from BaseBackoff. Ambiguous and not-found failures are
// surfaced immediately. Retries block only the requesting goroutine.
type Retrying struct {
	Inner       Client
	MaxAttempts int
	BaseBackoff time.Duration

	// sleep is swappable in tests; nil means a context-aware time.Sleep
	sleep func(ctx context.Context, d time.Duration) error
}

// NewRetrying wraps inner with the given attempt bound and base backoff
func NewRetrying(inner Client, maxAttempts int, baseBackoff time.Duration) *Retrying {
	return &Retrying{Inner: inner, MaxAttempts: maxAttempts, BaseBackoff: baseBackoff}
}

func (r *Retrying) Lookup(ctx context.Context, id card.Identifier) (*card.Record, error) {
	var rec *card.Record
	err := r.do(ctx, id.String(), func() error {
		var err error
		rec, err = r.Inner.Lookup(ctx, id)
		return err
	})
	return rec, err
}

func (r *Retrying) ListPrintings(ctx context.Context, name string) ([]*card.Record, error) {
	var recs []*card.Record
	err := r.do(ctx, name, func() error {
		var err error
		recs, err = r.Inner.ListPrintings(ctx, name)
		return err
	})
	return recs, err
}

func (r *Retrying) FetchImage(ctx context.Context, imageURL string) ([]byte, error) {
	var data []byte
	err := r.do(ctx, imageURL, func() error {
		var err error
		data, err = r.Inner.FetchImage(ctx, imageURL)
		return err
	})
	return data, err
}

func (r *Retrying) do(ctx context.Context, subject string, fn func() error) error {
	attempts := r.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			if serr := r.wait(ctx, r.backoff(err, attempt)); serr != nil {
				return serr
			}
		}
		if err = fn(); err == nil || !Retriable(err) {
			return err
		}
	}
	return fmt.Errorf("giving up on %s after %d attempts: %w", subject, attempts, err)
}

// backoff picks the delay before the given retry attempt (1-based)
func (r *Retrying) backoff(err error, attempt int) time.Duration {
	var rl *RateLimitedError
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		return rl.RetryAfter
	}
	return r.BaseBackoff << (attempt - 1)
}

func (r *Retrying) wait(ctx context.Context, d time.Duration) error {
	if r.sleep != nil {
		return r.sleep(ctx, d)
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
