package analyzer

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Result is the fixed shape every provider reply is normalized into before
// anything is persisted. Lists are never nil and sub-fields of a missing or
// null trade_setup default independently.
type Result struct {
	MarketType         string     `json:"market_type"`
	Patterns           []string   `json:"patterns"`
	Indicators         []string   `json:"indicators"`
	ChartQuality       string     `json:"chart_quality"`
	ChartIssues        []string   `json:"chart_issues"`
	TradeSetup         TradeSetup `json:"trade_setup"`
	PatternExplanation string     `json:"pattern_explanation"`
	Reasoning          string     `json:"reasoning"`
	ConfidenceScore    *int       `json:"confidence_score"`
	RiskFactors        []string   `json:"risk_factors"`
}

type TradeSetup struct {
	Direction  string   `json:"direction"`
	Entry      string   `json:"entry"`
	StopLoss   string   `json:"stop_loss"`
	TakeProfit []string `json:"take_profit"`
}

// Normalize decodes a provider reply and defaults every missing or null field.
// The provider is observed to occasionally drop trade_setup entirely or return
// it as null, or omit individual sub-fields; all of these must produce a usable
// result instead of an error. Only non-JSON replies fail.
func Normalize(content string) (*Result, error) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, fmt.Errorf("reply is not valid JSON: %w", err)
	}

	// Indexing a nil map is safe, so an absent or null trade_setup degrades
	// to every sub-field taking its default.
	setup, _ := raw["trade_setup"].(map[string]any)

	res := &Result{
		MarketType:   asString(raw["market_type"]),
		Patterns:     asStringList(raw["patterns"]),
		Indicators:   asStringList(raw["indicators"]),
		ChartQuality: asString(raw["chart_quality"]),
		ChartIssues:  asStringList(raw["chart_issues"]),
		TradeSetup: TradeSetup{
			Direction:  asString(setup["direction"]),
			Entry:      asString(setup["entry"]),
			StopLoss:   asString(setup["stop_loss"]),
			TakeProfit: asStringList(setup["take_profit"]),
		},
		PatternExplanation: asString(raw["pattern_explanation"]),
		Reasoning:          asString(raw["reasoning"]),
		ConfidenceScore:    asIntPtr(raw["confidence_score"]),
		RiskFactors:        asStringList(raw["risk_factors"]),
	}
	return res, nil
}

func asString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

func asStringList(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s := asString(item)
		if strings.TrimSpace(s) == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}

func asIntPtr(v any) *int {
	switch t := v.(type) {
	case float64:
		n := int(t)
		return &n
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(t)); err == nil {
			return &n
		}
		return nil
	default:
		return nil
	}
}
