package repository

import (
	"context"
	"time"

	"chartsight/internal/models"
)

type ListAnalysesParams struct {
	UserID uint64
	Limit  int
	Offset int
}

// UserStatsRow aggregates outcome bookkeeping for one user.
// AvgConfidence is nil when no analysis carries a confidence score.
type UserStatsRow struct {
	Total         int64
	Wins          int64
	Losses        int64
	Pending       int64
	AvgConfidence *float64
}

type Repository interface {
	CreateUser(ctx context.Context, item *models.User) error
	GetUserByID(ctx context.Context, id uint64) (*models.User, error)
	GetUserByUsernameOrEmail(ctx context.Context, identity string) (*models.User, error)
	UsernameTaken(ctx context.Context, username string) (bool, error)
	EmailTaken(ctx context.Context, email string) (bool, error)

	InsertAnalysis(ctx context.Context, item *models.TradeAnalysis) error
	GetAnalysisByIDAndUser(ctx context.Context, id uint64, userID uint64) (*models.TradeAnalysis, error)
	ListAnalysesByUser(ctx context.Context, params ListAnalysesParams) ([]models.TradeAnalysis, error)
	CountAnalysesByUser(ctx context.Context, userID uint64) (int64, error)
	CountAnalysesByUserBetween(ctx context.Context, userID uint64, from time.Time, to time.Time) (int64, error)
	UpdateAnalysisOutcome(ctx context.Context, id uint64, userID uint64, outcome string, notes string) (bool, error)
	UserStats(ctx context.Context, userID uint64) (UserStatsRow, error)
}
