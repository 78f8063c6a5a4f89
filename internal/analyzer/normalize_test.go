package analyzer

import (
	"testing"
)

func TestNormalize_FullReply(t *testing.T) {
	content := `{
		"market_type": "crypto",
		"patterns": ["bull flag", "ascending triangle"],
		"indicators": ["RSI", "MACD"],
		"chart_quality": "clear",
		"chart_issues": [],
		"trade_setup": {
			"direction": "Long",
			"entry": "42000",
			"stop_loss": "41000",
			"take_profit": ["43000", "44000", "45500"]
		},
		"pattern_explanation": "Flag after impulse.",
		"reasoning": "Momentum continuation.",
		"confidence_score": 78,
		"risk_factors": ["news risk"]
	}`
	res, err := Normalize(content)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if res.MarketType != "crypto" {
		t.Fatalf("market_type=%q want=crypto", res.MarketType)
	}
	if len(res.Patterns) != 2 || res.Patterns[0] != "bull flag" {
		t.Fatalf("patterns=%v", res.Patterns)
	}
	if res.TradeSetup.Direction != "Long" || res.TradeSetup.StopLoss != "41000" {
		t.Fatalf("trade_setup=%+v", res.TradeSetup)
	}
	if len(res.TradeSetup.TakeProfit) != 3 {
		t.Fatalf("take_profit=%v want 3 levels", res.TradeSetup.TakeProfit)
	}
	if res.ConfidenceScore == nil || *res.ConfidenceScore != 78 {
		t.Fatalf("confidence_score=%v want=78", res.ConfidenceScore)
	}
}

func TestNormalize_MissingTradeSetup(t *testing.T) {
	res, err := Normalize(`{"market_type": "forex"}`)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if res.TradeSetup.Direction != "" || res.TradeSetup.Entry != "" {
		t.Fatalf("trade_setup=%+v want zero values", res.TradeSetup)
	}
	if res.TradeSetup.TakeProfit == nil || len(res.TradeSetup.TakeProfit) != 0 {
		t.Fatalf("take_profit=%v want empty non-nil", res.TradeSetup.TakeProfit)
	}
}

func TestNormalize_NullTradeSetup(t *testing.T) {
	res, err := Normalize(`{"trade_setup": null, "confidence_score": null}`)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if res.TradeSetup.Direction != "" {
		t.Fatalf("direction=%q want empty", res.TradeSetup.Direction)
	}
	if res.ConfidenceScore != nil {
		t.Fatalf("confidence_score=%v want=nil", res.ConfidenceScore)
	}
}

func TestNormalize_PartialTradeSetup(t *testing.T) {
	res, err := Normalize(`{"trade_setup": {"direction": "Short"}}`)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if res.TradeSetup.Direction != "Short" {
		t.Fatalf("direction=%q want=Short", res.TradeSetup.Direction)
	}
	if res.TradeSetup.Entry != "" || res.TradeSetup.StopLoss != "" {
		t.Fatalf("trade_setup=%+v want empty entry and stop", res.TradeSetup)
	}
}

func TestNormalize_NumericLevelsCoerced(t *testing.T) {
	res, err := Normalize(`{"trade_setup": {"entry": 42000.5, "stop_loss": 41000, "take_profit": [43000, "44000"]}}`)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if res.TradeSetup.Entry != "42000.5" {
		t.Fatalf("entry=%q want=42000.5", res.TradeSetup.Entry)
	}
	if res.TradeSetup.StopLoss != "41000" {
		t.Fatalf("stop_loss=%q want=41000", res.TradeSetup.StopLoss)
	}
	if len(res.TradeSetup.TakeProfit) != 2 || res.TradeSetup.TakeProfit[0] != "43000" {
		t.Fatalf("take_profit=%v", res.TradeSetup.TakeProfit)
	}
}

func TestNormalize_ConfidenceVariants(t *testing.T) {
	cases := []struct {
		content string
		want    *int
	}{
		{`{"confidence_score": 55}`, intp(55)},
		{`{"confidence_score": 55.9}`, intp(55)},
		{`{"confidence_score": "60"}`, intp(60)},
		{`{"confidence_score": "high"}`, nil},
		{`{}`, nil},
	}
	for _, tc := range cases {
		res, err := Normalize(tc.content)
		if err != nil {
			t.Fatalf("Normalize(%s): %v", tc.content, err)
		}
		switch {
		case tc.want == nil && res.ConfidenceScore != nil:
			t.Fatalf("content=%s score=%d want=nil", tc.content, *res.ConfidenceScore)
		case tc.want != nil && (res.ConfidenceScore == nil || *res.ConfidenceScore != *tc.want):
			t.Fatalf("content=%s score=%v want=%d", tc.content, res.ConfidenceScore, *tc.want)
		}
	}
}

func TestNormalize_ListsNeverNil(t *testing.T) {
	res, err := Normalize(`{"patterns": null, "indicators": "RSI"}`)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	for name, list := range map[string][]string{
		"patterns":     res.Patterns,
		"indicators":   res.Indicators,
		"chart_issues": res.ChartIssues,
		"risk_factors": res.RiskFactors,
	} {
		if list == nil {
			t.Fatalf("%s is nil, want empty slice", name)
		}
		if len(list) != 0 {
			t.Fatalf("%s=%v want empty", name, list)
		}
	}
}

func TestNormalize_BlankListEntriesDropped(t *testing.T) {
	res, err := Normalize(`{"patterns": ["flag", "", "  ", "wedge"]}`)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if len(res.Patterns) != 2 || res.Patterns[1] != "wedge" {
		t.Fatalf("patterns=%v want [flag wedge]", res.Patterns)
	}
}

func TestNormalize_InvalidJSON(t *testing.T) {
	if _, err := Normalize("I cannot analyze this image."); err == nil {
		t.Fatalf("err=nil want parse failure for non-JSON reply")
	}
}

func intp(n int) *int { return &n }
