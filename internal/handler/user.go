package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"chartsight/internal/auth"
	"chartsight/internal/service"
)

type UserHandler struct {
	Quota  *service.QuotaPolicy
	Logger *zap.Logger
}

func (h *UserHandler) Register(r *gin.Engine, requireSession gin.HandlerFunc) {
	r.GET("/api/user", requireSession, h.currentUser)
}

// @Summary Current account summary with today's usage
// @Tags user
// @Success 200 {object} map[string]any
// @Router /api/user [get]
func (h *UserHandler) currentUser(c *gin.Context) {
	user := auth.CurrentUser(c)
	if user == nil {
		Fail(c, http.StatusUnauthorized, "authentication required")
		return
	}

	now := time.Now().UTC()
	todayCount, err := h.Quota.TodayCount(c.Request.Context(), user.ID, now)
	if err != nil {
		h.Logger.Error("quota count failed", zap.Error(err))
		Fail(c, http.StatusInternalServerError, "failed to load usage")
		return
	}
	canAnalyze, err := h.Quota.CanAnalyze(c.Request.Context(), user, now)
	if err != nil {
		h.Logger.Error("quota check failed", zap.Error(err))
		Fail(c, http.StatusInternalServerError, "failed to load usage")
		return
	}

	// Premium accounts report "Unlimited" instead of a numeric limit.
	var dailyLimit any = h.Quota.DailyLimit
	if user.IsPremium {
		dailyLimit = "Unlimited"
	}

	OK(c, http.StatusOK, gin.H{
		"user": gin.H{
			"id":             user.ID,
			"username":       user.Username,
			"email":          user.Email,
			"full_name":      user.FullName,
			"is_premium":     user.IsPremium,
			"analyses_today": todayCount,
			"daily_limit":    dailyLimit,
			"can_analyze":    canAnalyze,
		},
	})
}
