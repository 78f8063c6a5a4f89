package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"chartsight/internal/analyzer"
	"chartsight/internal/auth"
	"chartsight/internal/models"
	"chartsight/internal/repository"
	"chartsight/internal/service"
)

type AnalysisHandler struct {
	Service *service.AnalysisService
	Stats   *service.StatsService
	Uploads *service.UploadStore
	Repo    repository.Repository
	Logger  *zap.Logger
}

func (h *AnalysisHandler) Register(r *gin.Engine, requireSession gin.HandlerFunc) {
	r.POST("/api/analyze", requireSession, h.analyze)
	r.GET("/api/history", requireSession, h.history)
	r.GET("/api/analysis/:id", requireSession, h.detail)
	r.PUT("/api/analysis/:id/outcome", requireSession, h.updateOutcome)
	r.GET("/api/stats", requireSession, h.stats)
}

// analysisPayload flattens the normalized result and adds the stored id.
type analysisPayload struct {
	analyzer.Result
	AnalysisID uint64 `json:"analysis_id"`
}

// @Summary Analyze an uploaded chart image
// @Tags analysis
// @Accept multipart/form-data
// @Param chart formData file true "chart image (png/jpg/jpeg/gif/webp, max 10 MiB)"
// @Param trading_style formData string false "Scalping | Day Trade | Swing"
// @Param risk_profile formData string false "Conservative | Balanced | Aggressive"
// @Param asset_type formData string false "Crypto | Forex | Stocks"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Failure 429 {object} map[string]any
// @Router /api/analyze [post]
func (h *AnalysisHandler) analyze(c *gin.Context) {
	user := auth.CurrentUser(c)
	if user == nil {
		Fail(c, http.StatusUnauthorized, "authentication required")
		return
	}

	// Quota comes first: an exhausted user gets 429 even when the upload
	// itself would also be rejected.
	ok, err := h.Service.Quota.CanAnalyze(c.Request.Context(), user, time.Now())
	if err != nil {
		h.Logger.Error("quota check failed", zap.Error(err))
		Fail(c, http.StatusInternalServerError, "failed to check usage")
		return
	}
	if !ok {
		Fail(c, http.StatusTooManyRequests, fmt.Sprintf(
			"Daily analysis limit reached (%d analyses per day for free users). Upgrade to premium for unlimited access.",
			h.Service.Quota.DailyLimit))
		return
	}

	fh, err := c.FormFile("chart")
	if err != nil {
		if strings.Contains(err.Error(), "request body too large") {
			Fail(c, http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		Fail(c, http.StatusBadRequest, "No file uploaded")
		return
	}
	if fh.Filename == "" {
		Fail(c, http.StatusBadRequest, "No file selected")
		return
	}
	if !service.AllowedFile(fh.Filename) {
		Fail(c, http.StatusBadRequest, "Invalid file type. Allowed types: png, jpg, jpeg, gif, webp")
		return
	}

	tradingStyle := c.DefaultPostForm("trading_style", "Day Trade")
	riskProfile := c.DefaultPostForm("risk_profile", "Balanced")
	assetType := c.DefaultPostForm("asset_type", "Crypto")

	path := h.Uploads.TempPath(fh.Filename)
	if err := c.SaveUploadedFile(fh, path); err != nil {
		h.Logger.Error("upload save failed", zap.Error(err))
		Fail(c, http.StatusInternalServerError, "failed to store upload")
		return
	}
	defer h.Uploads.Remove(path)

	image, err := os.ReadFile(path)
	if err != nil {
		h.Logger.Error("upload read failed", zap.Error(err))
		Fail(c, http.StatusInternalServerError, "failed to read upload")
		return
	}

	res, id, err := h.Service.Analyze(c.Request.Context(), user, analyzer.Request{
		Image:        image,
		TradingStyle: tradingStyle,
		RiskProfile:  riskProfile,
		AssetType:    assetType,
	})
	if err != nil {
		var pe *analyzer.ProviderError
		if errors.As(err, &pe) {
			h.Logger.Warn("provider call failed", zap.Error(err))
			Fail(c, http.StatusInternalServerError, pe.Err.Error())
			return
		}
		h.Logger.Error("analysis persist failed", zap.Error(err))
		Fail(c, http.StatusInternalServerError, "failed to save analysis")
		return
	}

	OK(c, http.StatusOK, gin.H{
		"analysis": analysisPayload{Result: *res, AnalysisID: id},
	})
}

type historyItem struct {
	ID              uint64   `json:"id"`
	MarketType      string   `json:"market_type"`
	TradingStyle    string   `json:"trading_style"`
	RiskProfile     string   `json:"risk_profile"`
	AssetType       string   `json:"asset_type"`
	TradeDirection  string   `json:"trade_direction"`
	EntryPrice      string   `json:"entry_price"`
	StopLoss        string   `json:"stop_loss"`
	TakeProfit      []string `json:"take_profit"`
	ConfidenceScore *int     `json:"confidence_score"`
	Outcome         string   `json:"outcome"`
	CreatedAt       string   `json:"created_at"`
}

// @Summary Paginated analysis history, newest first
// @Tags analysis
// @Param page query int false "page (1-based)"
// @Param per_page query int false "page size"
// @Success 200 {object} map[string]any
// @Router /api/history [get]
func (h *AnalysisHandler) history(c *gin.Context) {
	user := auth.CurrentUser(c)
	if user == nil {
		Fail(c, http.StatusUnauthorized, "authentication required")
		return
	}
	page := intQuery(c, "page", 1)
	if page < 1 {
		page = 1
	}
	perPage := intQuery(c, "per_page", 10)
	if perPage < 1 {
		perPage = 10
	}
	if perPage > 100 {
		perPage = 100
	}

	items, err := h.Repo.ListAnalysesByUser(c.Request.Context(), repository.ListAnalysesParams{
		UserID: user.ID,
		Limit:  perPage,
		Offset: (page - 1) * perPage,
	})
	if err != nil {
		h.Logger.Error("history list failed", zap.Error(err))
		Fail(c, http.StatusInternalServerError, "failed to load history")
		return
	}
	total, err := h.Repo.CountAnalysesByUser(c.Request.Context(), user.ID)
	if err != nil {
		h.Logger.Error("history count failed", zap.Error(err))
		Fail(c, http.StatusInternalServerError, "failed to load history")
		return
	}

	analyses := make([]historyItem, 0, len(items))
	for _, item := range items {
		analyses = append(analyses, historyItem{
			ID:              item.ID,
			MarketType:      item.MarketType,
			TradingStyle:    item.TradingStyle,
			RiskProfile:     item.RiskProfile,
			AssetType:       item.AssetType,
			TradeDirection:  item.TradeDirection,
			EntryPrice:      item.EntryPrice,
			StopLoss:        item.StopLoss,
			TakeProfit:      decodeList(item.TakeProfit),
			ConfidenceScore: item.ConfidenceScore,
			Outcome:         item.Outcome,
			CreatedAt:       item.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	pages := total / int64(perPage)
	if total%int64(perPage) != 0 {
		pages++
	}
	OK(c, http.StatusOK, gin.H{
		"analyses": analyses,
		"total":    total,
		"page":     page,
		"per_page": perPage,
		"pages":    pages,
	})
}

// @Summary Full record of one analysis
// @Tags analysis
// @Param id path int true "analysis id"
// @Success 200 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Router /api/analysis/{id} [get]
func (h *AnalysisHandler) detail(c *gin.Context) {
	user := auth.CurrentUser(c)
	if user == nil {
		Fail(c, http.StatusUnauthorized, "authentication required")
		return
	}
	id := uint64Param(c, "id")
	if id == 0 {
		Fail(c, http.StatusNotFound, "Analysis not found")
		return
	}
	item, err := h.Repo.GetAnalysisByIDAndUser(c.Request.Context(), id, user.ID)
	if err != nil {
		h.Logger.Error("analysis load failed", zap.Error(err))
		Fail(c, http.StatusInternalServerError, "failed to load analysis")
		return
	}
	if item == nil {
		Fail(c, http.StatusNotFound, "Analysis not found")
		return
	}

	OK(c, http.StatusOK, gin.H{
		"analysis": gin.H{
			"id":                  item.ID,
			"market_type":         item.MarketType,
			"trading_style":       item.TradingStyle,
			"risk_profile":        item.RiskProfile,
			"asset_type":          item.AssetType,
			"patterns":            decodeList(item.Patterns),
			"indicators":          decodeList(item.Indicators),
			"trade_direction":     item.TradeDirection,
			"entry_price":         item.EntryPrice,
			"stop_loss":           item.StopLoss,
			"take_profit":         decodeList(item.TakeProfit),
			"pattern_explanation": item.PatternExplanation,
			"reasoning":           item.Reasoning,
			"confidence_score":    item.ConfidenceScore,
			"risk_factors":        decodeList(item.RiskFactors),
			"outcome":             item.Outcome,
			"notes":               item.Notes,
			"created_at":          item.CreatedAt.UTC().Format(time.RFC3339),
		},
	})
}

type outcomeRequest struct {
	Outcome string `json:"outcome"`
	Notes   string `json:"notes"`
}

// @Summary Record the real-world outcome of an analysis
// @Tags analysis
// @Accept json
// @Param id path int true "analysis id"
// @Param body body outcomeRequest true "outcome (win/loss/pending) and optional notes"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Router /api/analysis/{id}/outcome [put]
func (h *AnalysisHandler) updateOutcome(c *gin.Context) {
	user := auth.CurrentUser(c)
	if user == nil {
		Fail(c, http.StatusUnauthorized, "authentication required")
		return
	}
	id := uint64Param(c, "id")
	if id == 0 {
		Fail(c, http.StatusNotFound, "Analysis not found")
		return
	}
	item, err := h.Repo.GetAnalysisByIDAndUser(c.Request.Context(), id, user.ID)
	if err != nil {
		h.Logger.Error("analysis load failed", zap.Error(err))
		Fail(c, http.StatusInternalServerError, "failed to load analysis")
		return
	}
	if item == nil {
		Fail(c, http.StatusNotFound, "Analysis not found")
		return
	}

	var req outcomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, "invalid body")
		return
	}
	if !models.ValidOutcome(req.Outcome) {
		Fail(c, http.StatusBadRequest, "Invalid outcome. Must be win, loss, or pending")
		return
	}

	if _, err := h.Repo.UpdateAnalysisOutcome(c.Request.Context(), id, user.ID, req.Outcome, req.Notes); err != nil {
		h.Logger.Error("outcome update failed", zap.Error(err))
		Fail(c, http.StatusInternalServerError, "failed to update outcome")
		return
	}
	OK(c, http.StatusOK, gin.H{"message": "Outcome updated successfully"})
}

// @Summary Outcome statistics for the current account
// @Tags analysis
// @Success 200 {object} map[string]any
// @Router /api/stats [get]
func (h *AnalysisHandler) stats(c *gin.Context) {
	user := auth.CurrentUser(c)
	if user == nil {
		Fail(c, http.StatusUnauthorized, "authentication required")
		return
	}
	summary, err := h.Stats.Summary(c.Request.Context(), user.ID)
	if err != nil {
		h.Logger.Error("stats failed", zap.Error(err))
		Fail(c, http.StatusInternalServerError, "failed to load stats")
		return
	}
	OK(c, http.StatusOK, gin.H{"stats": summary})
}

// decodeList reads a stored JSON string list, defaulting to empty on any
// missing or malformed value so responses never carry null lists.
func decodeList(raw datatypes.JSON) []string {
	if len(raw) == 0 {
		return []string{}
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil || out == nil {
		return []string{}
	}
	return out
}
