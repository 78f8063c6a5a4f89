package service

import (
	"context"

	"github.com/shopspring/decimal"

	"chartsight/internal/repository"
)

type StatsSummary struct {
	TotalAnalyses int64   `json:"total_analyses"`
	Wins          int64   `json:"wins"`
	Losses        int64   `json:"losses"`
	Pending       int64   `json:"pending"`
	WinRate       float64 `json:"win_rate"`
	AvgConfidence float64 `json:"avg_confidence"`
}

type StatsService struct {
	Repo repository.Repository
}

// Summary computes outcome bookkeeping for one user. Win rate is
// wins/(wins+losses) as a percentage rounded to 2 decimals, 0 when no trade
// has been decided. Average confidence is rounded the same way, 0 when no
// analysis carries a score.
func (s *StatsService) Summary(ctx context.Context, userID uint64) (StatsSummary, error) {
	row, err := s.Repo.UserStats(ctx, userID)
	if err != nil {
		return StatsSummary{}, err
	}

	out := StatsSummary{
		TotalAnalyses: row.Total,
		Wins:          row.Wins,
		Losses:        row.Losses,
		Pending:       row.Pending,
	}

	decided := row.Wins + row.Losses
	if decided > 0 {
		out.WinRate = decimal.NewFromInt(row.Wins).
			Div(decimal.NewFromInt(decided)).
			Mul(decimal.NewFromInt(100)).
			Round(2).
			InexactFloat64()
	}
	if row.AvgConfidence != nil {
		out.AvgConfidence = decimal.NewFromFloat(*row.AvgConfidence).
			Round(2).
			InexactFloat64()
	}
	return out, nil
}
