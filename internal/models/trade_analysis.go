package models

import (
	"time"

	"gorm.io/datatypes"
)

// Trade outcome tags. Every analysis starts out pending.
const (
	OutcomeWin     = "win"
	OutcomeLoss    = "loss"
	OutcomePending = "pending"
)

// TradeAnalysis is one chart-analysis request/response pair owned by a user.
// List-valued result fields are stored as JSON so they round-trip in order.
type TradeAnalysis struct {
	ID     uint64 `gorm:"primaryKey;autoIncrement"`
	UserID uint64 `gorm:"not null;index"`

	// Request parameters. Free-form strings with UI-suggested defaults.
	MarketType   string `gorm:"type:varchar(50)"`
	TradingStyle string `gorm:"type:varchar(50)"`
	RiskProfile  string `gorm:"type:varchar(50)"`
	AssetType    string `gorm:"type:varchar(50)"`

	// Normalized provider output.
	Patterns           datatypes.JSON `gorm:"type:jsonb"`
	Indicators         datatypes.JSON `gorm:"type:jsonb"`
	TradeDirection     string         `gorm:"type:varchar(20)"`
	EntryPrice         string         `gorm:"type:varchar(100)"`
	StopLoss           string         `gorm:"type:varchar(100)"`
	TakeProfit         datatypes.JSON `gorm:"type:jsonb"`
	PatternExplanation string         `gorm:"type:text"`
	Reasoning          string         `gorm:"type:text"`
	ConfidenceScore    *int           `gorm:""`
	RiskFactors        datatypes.JSON `gorm:"type:jsonb"`

	// User feedback.
	Outcome string `gorm:"type:varchar(20);not null;default:pending;index"`
	Notes   string `gorm:"type:text"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime;index"`
}

func (TradeAnalysis) TableName() string {
	return "trade_analyses"
}

func ValidOutcome(outcome string) bool {
	switch outcome {
	case OutcomeWin, OutcomeLoss, OutcomePending:
		return true
	default:
		return false
	}
}
