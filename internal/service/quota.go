package service

import (
	"context"
	"time"

	"chartsight/internal/models"
	"chartsight/internal/repository"
)

// QuotaPolicy gates non-premium users to a fixed number of analyses per UTC
// calendar day. The reset point is midnight, not a rolling 24h window.
type QuotaPolicy struct {
	Repo       repository.Repository
	DailyLimit int
}

// TodayCount is the number of analyses the user created on now's calendar day.
func (q *QuotaPolicy) TodayCount(ctx context.Context, userID uint64, now time.Time) (int64, error) {
	now = now.UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return q.Repo.CountAnalysesByUserBetween(ctx, userID, dayStart, dayStart.Add(24*time.Hour))
}

// CanAnalyze reports whether the user may submit another analysis today.
// Premium users are never limited. Pure read; the count check and the later
// insert are not atomic, so concurrent submissions can briefly exceed the
// limit. That race is accepted.
func (q *QuotaPolicy) CanAnalyze(ctx context.Context, user *models.User, now time.Time) (bool, error) {
	if user == nil {
		return false, nil
	}
	if user.IsPremium {
		return true, nil
	}
	count, err := q.TodayCount(ctx, user.ID, now)
	if err != nil {
		return false, err
	}
	return count < int64(q.DailyLimit), nil
}
