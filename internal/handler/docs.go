package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func RegisterDocs(r *gin.Engine) {
	r.GET("/docs", func(c *gin.Context) {
		c.Header("Content-Type", "text/markdown; charset=utf-8")
		c.String(http.StatusOK, `# ChartSight Service

Upload a trading chart image and get a structured trade setup back from a
vision model. Results are stored per user with daily quota and win/loss
bookkeeping.

## Auth

All /api/* routes except /api/register, /api/login and /api/health require a
session cookie. Obtain one via POST /api/login.

## Notable Routes

- GET /api/health
- GET /readyz
- GET /swagger/index.html
- POST /api/register
- POST /api/login
- POST /api/logout
- GET /api/user
- POST /api/analyze (multipart, field "chart")
- GET /api/history
- GET /api/analysis/:id
- PUT /api/analysis/:id/outcome
- GET /api/stats

## Quota

Free accounts get a fixed number of analyses per UTC calendar day
(quota.daily_limit, default 5). Premium accounts are unlimited.
`)
	})
}
