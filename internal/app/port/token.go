package port

import (
	"context"

	"dusthunter/internal/domain/entity"
)

// TokenPriceService runs reconciliation passes against the price oracle.
type TokenPriceService interface {
	// RefreshPrices queries the oracle once per token, concurrently, and
	// returns the live entries keyed by uppercased symbol. Symbols whose
	// lookup failed are absent from the result; the call never fails as a whole.
	RefreshPrices(ctx context.Context, tokens []entity.TokenRef) map[string]entity.LivePriceEntry
}
