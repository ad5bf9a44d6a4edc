package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"dusthunter/internal/app/port"
	"dusthunter/internal/client"
	"dusthunter/internal/domain/entity"
	"dusthunter/internal/pkg/metrics"

	"go.uber.org/zap"
)

// ErrUplinkFailed is the only error an analysis caller sees when the
// external uplink fails, whatever the cause.
var ErrUplinkFailed = errors.New("Surveillance uplink failed.")

type analysisServiceImpl struct {
	analyzer client.WalletAnalyzer
	timeout  time.Duration
	logger   *zap.Logger
}

// NewAnalysisService creates the analysis service. timeout <= 0 leaves the
// deadline to the caller's context.
func NewAnalysisService(analyzer client.WalletAnalyzer, timeout time.Duration, logger *zap.Logger) port.AnalysisService {
	return &analysisServiceImpl{
		analyzer: analyzer,
		timeout:  timeout,
		logger:   logger.Named("AnalysisService"),
	}
}

// Analyze validates the target and runs one uplink. Input errors are
// returned as is; any uplink failure is reported as ErrUplinkFailed.
func (s *analysisServiceImpl) Analyze(ctx context.Context, address string, chain entity.Chain) (*entity.WalletAnalysis, error) {
	address = strings.TrimSpace(address)
	if !chain.IsValid() {
		return nil, fmt.Errorf("%w: %q", entity.ErrInvalidChain, string(chain))
	}
	if err := chain.ValidateAddress(address); err != nil {
		return nil, err
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	analysis, err := s.analyzer.AnalyzeWallet(ctx, address, chain)
	if err != nil {
		metrics.AnalysisUplinks.WithLabelValues("failed").Inc()
		s.logger.Error("Analysis uplink failed",
			zap.String("address", address),
			zap.String("chain", string(chain)),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return nil, ErrUplinkFailed
	}
	metrics.AnalysisUplinks.WithLabelValues("ok").Inc()
	s.logger.Info("Analysis completed",
		zap.String("address", address),
		zap.String("threatLevel", string(analysis.ThreatLevel)),
		zap.Duration("elapsed", time.Since(start)))
	return analysis, nil
}
