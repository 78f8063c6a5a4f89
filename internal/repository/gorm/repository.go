package gormrepository

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"chartsight/internal/models"
	"chartsight/internal/repository"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// --- users ------------------------------------------------------------------

func (s *Store) CreateUser(ctx context.Context, item *models.User) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) GetUserByID(ctx context.Context, id uint64) (*models.User, error) {
	if s == nil || s.db == nil || id == 0 {
		return nil, nil
	}
	var item models.User
	err := s.db.WithContext(ctx).First(&item, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) GetUserByUsernameOrEmail(ctx context.Context, identity string) (*models.User, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return nil, nil
	}
	var item models.User
	err := s.db.WithContext(ctx).
		Where("username = ? OR email = ?", identity, identity).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) UsernameTaken(ctx context.Context, username string) (bool, error) {
	if s == nil || s.db == nil {
		return false, nil
	}
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("username = ?", strings.TrimSpace(username)).
		Count(&count).Error
	return count > 0, err
}

func (s *Store) EmailTaken(ctx context.Context, email string) (bool, error) {
	if s == nil || s.db == nil {
		return false, nil
	}
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("email = ?", strings.TrimSpace(email)).
		Count(&count).Error
	return count > 0, err
}

// --- analyses ---------------------------------------------------------------

func (s *Store) InsertAnalysis(ctx context.Context, item *models.TradeAnalysis) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) GetAnalysisByIDAndUser(ctx context.Context, id uint64, userID uint64) (*models.TradeAnalysis, error) {
	if s == nil || s.db == nil || id == 0 || userID == 0 {
		return nil, nil
	}
	var item models.TradeAnalysis
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListAnalysesByUser(ctx context.Context, params repository.ListAnalysesParams) ([]models.TradeAnalysis, error) {
	if s == nil || s.db == nil || params.UserID == 0 {
		return nil, nil
	}
	limit := normalizeLimit(params.Limit, 10)
	offset := normalizeOffset(params.Offset)
	var items []models.TradeAnalysis
	err := s.db.WithContext(ctx).
		Where("user_id = ?", params.UserID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CountAnalysesByUser(ctx context.Context, userID uint64) (int64, error) {
	if s == nil || s.db == nil || userID == 0 {
		return 0, nil
	}
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.TradeAnalysis{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

func (s *Store) CountAnalysesByUserBetween(ctx context.Context, userID uint64, from time.Time, to time.Time) (int64, error) {
	if s == nil || s.db == nil || userID == 0 {
		return 0, nil
	}
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.TradeAnalysis{}).
		Where("user_id = ?", userID).
		Where("created_at >= ? AND created_at < ?", from, to).
		Count(&count).Error
	return count, err
}

func (s *Store) UpdateAnalysisOutcome(ctx context.Context, id uint64, userID uint64, outcome string, notes string) (bool, error) {
	if s == nil || s.db == nil || id == 0 || userID == 0 {
		return false, nil
	}
	res := s.db.WithContext(ctx).
		Model(&models.TradeAnalysis{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]any{
			"outcome": outcome,
			"notes":   notes,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (s *Store) UserStats(ctx context.Context, userID uint64) (repository.UserStatsRow, error) {
	var row repository.UserStatsRow
	if s == nil || s.db == nil || userID == 0 {
		return row, nil
	}
	base := func() *gorm.DB {
		return s.db.WithContext(ctx).
			Model(&models.TradeAnalysis{}).
			Where("user_id = ?", userID)
	}
	if err := base().Count(&row.Total).Error; err != nil {
		return row, err
	}
	if err := base().Where("outcome = ?", models.OutcomeWin).Count(&row.Wins).Error; err != nil {
		return row, err
	}
	if err := base().Where("outcome = ?", models.OutcomeLoss).Count(&row.Losses).Error; err != nil {
		return row, err
	}
	if err := base().Where("outcome = ?", models.OutcomePending).Count(&row.Pending).Error; err != nil {
		return row, err
	}
	var avg *float64
	if err := base().Select("AVG(confidence_score)").Scan(&avg).Error; err != nil {
		return row, err
	}
	row.AvgConfidence = avg
	return row, nil
}

func normalizeLimit(limit, def int) int {
	if limit <= 0 {
		return def
	}
	if limit > 100 {
		return 100
	}
	return limit
}

func normalizeOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}
