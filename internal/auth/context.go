package auth

import (
	"context"

	"github.com/Clark-Hu/notflix/internal/domain"
)

type claimContextKey struct{}

// WithClaim stores the caller's identity in ctx.
func WithClaim(ctx context.Context, claim domain.AuthClaim) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, claimContextKey{}, claim)
}

// ClaimFromContext returns the identity attached by the gate.
func ClaimFromContext(ctx context.Context) (domain.AuthClaim, bool) {
	if ctx == nil {
		return domain.AuthClaim{}, false
	}
	claim, ok := ctx.Value(claimContextKey{}).(domain.AuthClaim)
	return claim, ok
}
