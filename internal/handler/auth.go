package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"chartsight/internal/auth"
	"chartsight/internal/models"
	"chartsight/internal/service"
)

type AuthHandler struct {
	Accounts *service.AccountService
	Sessions *auth.SessionManager
	Logger   *zap.Logger
}

func (h *AuthHandler) Register(r *gin.Engine, requireSession gin.HandlerFunc) {
	r.POST("/api/register", h.register)
	r.POST("/api/login", h.login)
	r.POST("/api/logout", requireSession, h.logout)
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

// @Summary Register a new account
// @Tags auth
// @Accept json
// @Param body body registerRequest true "registration fields"
// @Success 201 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Router /api/register [post]
func (h *AuthHandler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, "invalid body")
		return
	}
	for _, field := range []struct{ name, value string }{
		{"username", req.Username},
		{"email", req.Email},
		{"password", req.Password},
		{"full_name", req.FullName},
	} {
		if strings.TrimSpace(field.value) == "" {
			Fail(c, http.StatusBadRequest, field.name+" is required")
			return
		}
	}

	user, err := h.Accounts.Register(c.Request.Context(), service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
	})
	if err != nil {
		if errors.Is(err, service.ErrDuplicateUsername) || errors.Is(err, service.ErrDuplicateEmail) {
			Fail(c, http.StatusBadRequest, err.Error())
			return
		}
		h.Logger.Error("register failed", zap.Error(err))
		Fail(c, http.StatusInternalServerError, "registration failed")
		return
	}

	if err := h.openSession(c, user, false); err != nil {
		h.Logger.Warn("auto-login after register failed", zap.Error(err))
	}

	OK(c, http.StatusCreated, gin.H{
		"message": "Registration successful",
		"user": gin.H{
			"username":  user.Username,
			"email":     user.Email,
			"full_name": user.FullName,
		},
	})
}

type loginRequest struct {
	// Username carries either the username or the email address.
	Username string `json:"username"`
	Password string `json:"password"`
	Remember bool   `json:"remember"`
}

// @Summary Log in with username or email
// @Tags auth
// @Accept json
// @Param body body loginRequest true "credentials"
// @Success 200 {object} map[string]any
// @Failure 401 {object} map[string]any
// @Router /api/login [post]
func (h *AuthHandler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, "invalid body")
		return
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		Fail(c, http.StatusBadRequest, "Username and password are required")
		return
	}

	user, err := h.Accounts.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			Fail(c, http.StatusUnauthorized, "Invalid username or password")
			return
		}
		h.Logger.Error("login failed", zap.Error(err))
		Fail(c, http.StatusInternalServerError, "login failed")
		return
	}

	if err := h.openSession(c, user, req.Remember); err != nil {
		h.Logger.Error("session create failed", zap.Error(err))
		Fail(c, http.StatusInternalServerError, "login failed")
		return
	}

	OK(c, http.StatusOK, gin.H{
		"message": "Login successful",
		"user": gin.H{
			"username":   user.Username,
			"email":      user.Email,
			"full_name":  user.FullName,
			"is_premium": user.IsPremium,
		},
	})
}

// @Summary Log out
// @Tags auth
// @Success 200 {object} map[string]any
// @Router /api/logout [post]
func (h *AuthHandler) logout(c *gin.Context) {
	if cookie, err := c.Cookie(h.Sessions.CookieName); err == nil && cookie != "" {
		if err := h.Sessions.Destroy(c.Request.Context(), cookie); err != nil {
			h.Logger.Warn("session destroy failed", zap.Error(err))
		}
	}
	c.SetCookie(h.Sessions.CookieName, "", -1, "/", "", h.Sessions.Secure, true)
	OK(c, http.StatusOK, gin.H{"message": "Logout successful"})
}

func (h *AuthHandler) openSession(c *gin.Context, user *models.User, remember bool) error {
	value, ttl, err := h.Sessions.Create(c.Request.Context(), user.ID, remember)
	if err != nil {
		return err
	}
	c.SetCookie(h.Sessions.CookieName, value, int(ttl.Seconds()), "/", "", h.Sessions.Secure, true)
	return nil
}
