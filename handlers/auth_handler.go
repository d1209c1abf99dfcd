package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/schooldesk/schooldesk/database"
	"github.com/schooldesk/schooldesk/metrics"
	"github.com/schooldesk/schooldesk/middlewares"
	"github.com/schooldesk/schooldesk/models"
	"github.com/schooldesk/schooldesk/session"
	"github.com/schooldesk/schooldesk/tokens"
)

type AuthHandler struct {
	Sessions *session.Manager
	Secret   string
}

func NewAuthHandler(mgr *session.Manager, secret string) *AuthHandler {
	return &AuthHandler{Sessions: mgr, Secret: secret}
}

type loginReq struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type setPasswordReq struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

// POST /auth/login
// On success sets the session cookie and returns the CSRF token the client
// must echo on every mutating request. An optional ?next= is passed through
// for post-login redirect.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return bindError(c)
	}
	if err := validate.Struct(&req); err != nil {
		return validationError(c, err)
	}

	username := strings.TrimSpace(req.Username)
	var u models.User
	if err := database.DB.Where("username = ?", username).First(&u).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			metrics.LoginsTotal.WithLabelValues("failure").Inc()
			return c.JSON(http.StatusUnauthorized, map[string]any{"error": "INVALID_CREDENTIALS"})
		}
		return storageError(c, err)
	}
	if !u.Active || u.PasswordHash == "" ||
		bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return c.JSON(http.StatusUnauthorized, map[string]any{"error": "INVALID_CREDENTIALS"})
	}

	id, data, err := h.Sessions.Create(c.Request().Context(), u.ID, u.Username, u.Role)
	if err != nil {
		return storageError(c, err)
	}
	c.SetCookie(h.Sessions.Cookie(id))
	metrics.LoginsTotal.WithLabelValues("success").Inc()

	return c.JSON(http.StatusOK, map[string]any{
		"user":       map[string]any{"id": u.ID, "username": u.Username, "role": u.Role, "name": u.Name},
		"csrf_token": data.CSRFToken,
		"next":       strings.TrimSpace(c.QueryParam("next")),
	})
}

// POST /auth/logout — destroys the session and expires the cookie.
func (h *AuthHandler) Logout(c echo.Context) error {
	ident, ok := middlewares.GetIdentity(c)
	if !ok {
		return forbidden(c)
	}
	if err := h.Sessions.Destroy(c.Request().Context(), ident.SessionID); err != nil {
		return storageError(c, err)
	}
	c.SetCookie(h.Sessions.ExpiredCookie())
	return c.JSON(http.StatusOK, map[string]any{"ok": true})
}

// GET /auth/me
func (h *AuthHandler) Me(c echo.Context) error {
	ident, ok := middlewares.GetIdentity(c)
	if !ok {
		return forbidden(c)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"id":         ident.UserID,
		"username":   ident.Username,
		"role":       ident.Role,
		"csrf_token": ident.CSRFToken,
	})
}

// POST /auth/set-password
// Redeems an activation or password-reset token issued at provisioning time.
func (h *AuthHandler) SetPassword(c echo.Context) error {
	var req setPasswordReq
	if err := c.Bind(&req); err != nil {
		return bindError(c)
	}
	if err := validate.Struct(&req); err != nil {
		return validationError(c, err)
	}

	userID, err := tokens.ParseSetPasswordToken(h.Secret, req.Token)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]any{"error": "INVALID_TOKEN"})
	}

	var u models.User
	if err := database.DB.First(&u, userID).Error; err != nil {
		return storageError(c, err)
	}
	if !u.Active {
		return c.JSON(http.StatusUnauthorized, map[string]any{"error": "INVALID_TOKEN"})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return storageError(c, err)
	}
	if err := database.DB.Model(&u).Update("password_hash", string(hash)).Error; err != nil {
		return storageError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"ok": true})
}
