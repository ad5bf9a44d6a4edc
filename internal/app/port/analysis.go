package port

import (
	"context"

	"dusthunter/internal/domain/entity"
)

// AnalysisService runs the single user-triggered analysis uplink.
type AnalysisService interface {
	Analyze(ctx context.Context, address string, chain entity.Chain) (*entity.WalletAnalysis, error)
}
