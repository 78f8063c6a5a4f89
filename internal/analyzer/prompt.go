package analyzer

import (
	"fmt"
)

// Guidance strings keyed by trading style and risk profile. Unknown keys
// degrade to an empty guidance string rather than failing the request.
var styleGuidance = map[string]string{
	"Scalping":  "Focus on very short-term price movements (minutes to hours). Tighter stop losses and quicker profit targets.",
	"Day Trade": "Focus on intraday movements. Positions closed within the same trading day.",
	"Swing":     "Focus on multi-day to multi-week price movements. Wider stop losses and larger profit targets.",
}

var riskGuidance = map[string]string{
	"Conservative": "Recommend tighter stop losses and smaller position sizing. Risk-reward ratio of at least 1:2.",
	"Balanced":     "Moderate risk approach with standard risk-reward ratio of 1:1.5 to 1:2.",
	"Aggressive":   "Accept higher risk for potentially higher rewards. Risk-reward ratio of 1:1 to 1:1.5 is acceptable.",
}

const promptTemplate = `You are an expert technical analyst. Analyze this trading chart image and provide a structured trade setup.

Trading Context:
- Asset Type: %s
- Trading Style: %s - %s
- Risk Profile: %s - %s

Your analysis should include:
1. Market type identification (crypto/forex/stocks)
2. Identified chart patterns (e.g., head and shoulders, double top, triangles, flags, etc.)
3. Key technical indicators visible (e.g., moving averages, RSI, MACD, support/resistance levels)
4. Chart quality assessment - if the chart is unclear, blurry, missing timeframe, or lacks key information, note this
5. Suggested trade setup:
   - Trade direction (Long/Short)
   - Entry price level
   - Stop loss level
   - Multiple take profit levels (TP1, TP2, TP3) for partial exits
6. Pattern explanation (brief, 2-3 sentences)
7. Trading reasoning (why this setup, key factors)
8. Confidence score (0-100%%) - lower confidence if chart is unclear
9. Specific reasons if chart quality is poor

Important guidelines:
- Only analyze what is clearly visible in the chart
- If chart is unclear, blurry, or missing critical information (like timeframe), set confidence below 30%% and explain issues
- Be specific with price levels when visible
- Use neutral, educational tone
- Include risk factors
- Emphasize this is educational analysis, not financial advice
- Adjust recommendations based on the trading style and risk profile provided

Format your response as JSON with this structure:
{
  "market_type": "string",
  "patterns": ["array", "of", "patterns"],
  "indicators": ["array", "of", "indicators"],
  "chart_quality": "clear/moderate/poor",
  "chart_issues": ["array of issues if quality is poor"],
  "trade_setup": {
    "direction": "Long or Short",
    "entry": "price level or description",
    "stop_loss": "price level or description",
    "take_profit": ["TP1", "TP2", "TP3"]
  },
  "pattern_explanation": "string",
  "reasoning": "string",
  "confidence_score": number,
  "risk_factors": ["array", "of", "risks"]
}`

func buildPrompt(tradingStyle, riskProfile, assetType string) string {
	return fmt.Sprintf(promptTemplate,
		assetType,
		tradingStyle, styleGuidance[tradingStyle],
		riskProfile, riskGuidance[riskProfile],
	)
}
