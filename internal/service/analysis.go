package service

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"chartsight/internal/analyzer"
	"chartsight/internal/models"
	"chartsight/internal/repository"
)

// AnalysisService runs one chart analysis end to end: provider call via the
// analyzer, then persistence of the normalized result. The quota check happens
// before any file handling and is owned by the handler via Quota.
type AnalysisService struct {
	Repo     repository.Repository
	Analyzer *analyzer.Analyzer
	Quota    *QuotaPolicy
	Logger   *zap.Logger
}

// Analyze submits the image to the provider and persists the normalized
// record for the user. Nothing is persisted when the provider call or the
// reply decoding fails. Returns the stored record's id alongside the result.
func (s *AnalysisService) Analyze(ctx context.Context, user *models.User, req analyzer.Request) (*analyzer.Result, uint64, error) {
	res, err := s.Analyzer.Analyze(ctx, req)
	if err != nil {
		return nil, 0, err
	}

	record := &models.TradeAnalysis{
		UserID:             user.ID,
		MarketType:         res.MarketType,
		TradingStyle:       req.TradingStyle,
		RiskProfile:        req.RiskProfile,
		AssetType:          req.AssetType,
		Patterns:           mustJSON(res.Patterns),
		Indicators:         mustJSON(res.Indicators),
		TradeDirection:     res.TradeSetup.Direction,
		EntryPrice:         res.TradeSetup.Entry,
		StopLoss:           res.TradeSetup.StopLoss,
		TakeProfit:         mustJSON(res.TradeSetup.TakeProfit),
		PatternExplanation: res.PatternExplanation,
		Reasoning:          res.Reasoning,
		ConfidenceScore:    res.ConfidenceScore,
		RiskFactors:        mustJSON(res.RiskFactors),
		Outcome:            models.OutcomePending,
	}
	if err := s.Repo.InsertAnalysis(ctx, record); err != nil {
		return nil, 0, err
	}
	return res, record.ID, nil
}

// mustJSON serializes a string list for storage. Lists are normalized to
// non-nil before this point, so encoding cannot fail on provider data.
func mustJSON(items []string) datatypes.JSON {
	if items == nil {
		items = []string{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return datatypes.JSON([]byte("[]"))
	}
	return datatypes.JSON(b)
}
