package service

import (
	"context"
	"strings"
	"time"

	"chartsight/internal/models"
	"chartsight/internal/repository"
)

// stubRepo is a test-only in-memory implementation of repository.Repository.
// It implements the full interface but only a small subset is used per test.
type stubRepo struct {
	users    []*models.User
	analyses []models.TradeAnalysis
	stats    repository.UserStatsRow
	nextID   uint64
}

func (s *stubRepo) CreateUser(ctx context.Context, item *models.User) error {
	s.nextID++
	item.ID = s.nextID
	item.CreatedAt = time.Now().UTC()
	s.users = append(s.users, item)
	return nil
}

func (s *stubRepo) GetUserByID(ctx context.Context, id uint64) (*models.User, error) {
	for _, u := range s.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func (s *stubRepo) GetUserByUsernameOrEmail(ctx context.Context, identity string) (*models.User, error) {
	for _, u := range s.users {
		if strings.EqualFold(u.Username, identity) || strings.EqualFold(u.Email, identity) {
			return u, nil
		}
	}
	return nil, nil
}

func (s *stubRepo) UsernameTaken(ctx context.Context, username string) (bool, error) {
	for _, u := range s.users {
		if strings.EqualFold(u.Username, username) {
			return true, nil
		}
	}
	return false, nil
}

func (s *stubRepo) EmailTaken(ctx context.Context, email string) (bool, error) {
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (s *stubRepo) InsertAnalysis(ctx context.Context, item *models.TradeAnalysis) error {
	s.nextID++
	item.ID = s.nextID
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}
	s.analyses = append(s.analyses, *item)
	return nil
}

func (s *stubRepo) GetAnalysisByIDAndUser(ctx context.Context, id uint64, userID uint64) (*models.TradeAnalysis, error) {
	for i := range s.analyses {
		if s.analyses[i].ID == id && s.analyses[i].UserID == userID {
			item := s.analyses[i]
			return &item, nil
		}
	}
	return nil, nil
}

func (s *stubRepo) ListAnalysesByUser(ctx context.Context, params repository.ListAnalysesParams) ([]models.TradeAnalysis, error) {
	var out []models.TradeAnalysis
	for i := len(s.analyses) - 1; i >= 0; i-- {
		if s.analyses[i].UserID == params.UserID {
			out = append(out, s.analyses[i])
		}
	}
	if params.Offset > 0 {
		if params.Offset >= len(out) {
			return nil, nil
		}
		out = out[params.Offset:]
	}
	if params.Limit > 0 && params.Limit < len(out) {
		out = out[:params.Limit]
	}
	return out, nil
}

func (s *stubRepo) CountAnalysesByUser(ctx context.Context, userID uint64) (int64, error) {
	var n int64
	for i := range s.analyses {
		if s.analyses[i].UserID == userID {
			n++
		}
	}
	return n, nil
}

func (s *stubRepo) CountAnalysesByUserBetween(ctx context.Context, userID uint64, from time.Time, to time.Time) (int64, error) {
	var n int64
	for i := range s.analyses {
		a := &s.analyses[i]
		if a.UserID != userID {
			continue
		}
		if a.CreatedAt.Before(from) || !a.CreatedAt.Before(to) {
			continue
		}
		n++
	}
	return n, nil
}

func (s *stubRepo) UpdateAnalysisOutcome(ctx context.Context, id uint64, userID uint64, outcome string, notes string) (bool, error) {
	for i := range s.analyses {
		if s.analyses[i].ID == id && s.analyses[i].UserID == userID {
			s.analyses[i].Outcome = outcome
			s.analyses[i].Notes = notes
			return true, nil
		}
	}
	return false, nil
}

func (s *stubRepo) UserStats(ctx context.Context, userID uint64) (repository.UserStatsRow, error) {
	return s.stats, nil
}
