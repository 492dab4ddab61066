package legalref

import (
	"context"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/medhold/dispute-cli/internal/model"
)

// RateLimited wraps a Lookup with a token bucket so concurrent analyses stay
// inside a remote provider's request quota.
type RateLimited struct {
	next    Lookup
	limiter *rate.Limiter
}

// NewRateLimited allows perSecond lookups per second with the given burst.
func NewRateLimited(next Lookup, perSecond float64, burst int) *RateLimited {
	return &RateLimited{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
	}
}

// Lookup blocks until the limiter grants a slot or ctx is done.
func (r *RateLimited) Lookup(ctx context.Context, findingTypes []string) ([]model.LegalReference, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "legalref: rate limiter wait")
	}
	return r.next.Lookup(ctx, findingTypes)
}
