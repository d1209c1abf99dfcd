package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/schooldesk/schooldesk/database"
	"github.com/schooldesk/schooldesk/models"
	"github.com/schooldesk/schooldesk/tokens"
)

const setPasswordTokenTTL = 72 * time.Hour

// UserHandler is the admin-only provisioning surface for portal accounts.
type UserHandler struct {
	Secret string
}

func NewUserHandler(secret string) *UserHandler {
	return &UserHandler{Secret: secret}
}

type createUserReq struct {
	Username string `json:"username" validate:"required,min=3,max=60"`
	Role     string `json:"role" validate:"required"`
	Name     string `json:"name" validate:"max=120"`
}

// GET /admin/users?role=&q=&page=&size=
func (h *UserHandler) List(c echo.Context) error {
	role := strings.TrimSpace(c.QueryParam("role"))
	q := strings.TrimSpace(c.QueryParam("q"))
	page := atoiOr(c.QueryParam("page"), 1)
	size := atoiOr(c.QueryParam("size"), 20)
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}

	tx := database.DB.Model(&models.User{})
	if role != "" {
		tx = tx.Where("role = ?", role)
	}
	if q != "" {
		like := "%" + strings.ToLower(q) + "%"
		tx = tx.Where("LOWER(username) LIKE ? OR LOWER(name) LIKE ?", like, like)
	}

	var rows []models.User
	if err := tx.Order("username ASC").Offset((page - 1) * size).Limit(size).Find(&rows).Error; err != nil {
		return storageError(c, err)
	}
	return c.JSON(http.StatusOK, rows)
}

// POST /admin/users
// Creates an account without a password and returns a one-time token the new
// user redeems at /auth/set-password.
func (h *UserHandler) Create(c echo.Context) error {
	var req createUserReq
	if err := c.Bind(&req); err != nil {
		return bindError(c)
	}
	if err := validate.Struct(&req); err != nil {
		return validationError(c, err)
	}
	if !models.ValidRole(req.Role) {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "INVALID_ROLE"})
	}

	u := models.User{
		Username: strings.TrimSpace(req.Username),
		Role:     req.Role,
		Name:     strings.TrimSpace(req.Name),
		Active:   true,
	}
	if err := database.DB.Create(&u).Error; err != nil {
		if err == gorm.ErrDuplicatedKey {
			return c.JSON(http.StatusConflict, map[string]any{"error": "USERNAME_EXISTS"})
		}
		return storageError(c, err)
	}

	tok, err := tokens.NewSetPasswordToken(h.Secret, u.ID, setPasswordTokenTTL)
	if err != nil {
		return storageError(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]any{"id": u.ID, "activation_token": tok})
}

// POST /admin/users/:id/reset-token — issues a fresh set-password token.
func (h *UserHandler) ResetToken(c echo.Context) error {
	id, ok := uintParam(c, "id")
	if !ok {
		return notFound(c)
	}
	var u models.User
	if err := database.DB.First(&u, id).Error; err != nil {
		return storageError(c, err)
	}
	if !u.Active {
		return c.JSON(http.StatusConflict, map[string]any{"error": "USER_DEACTIVATED"})
	}
	tok, err := tokens.NewSetPasswordToken(h.Secret, u.ID, setPasswordTokenTTL)
	if err != nil {
		return storageError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"reset_token": tok})
}

// PUT /admin/users/:id — name only; role and username are fixed at creation.
func (h *UserHandler) Update(c echo.Context) error {
	id, ok := uintParam(c, "id")
	if !ok {
		return notFound(c)
	}
	var req struct {
		Name string `json:"name" validate:"max=120"`
	}
	if err := c.Bind(&req); err != nil {
		return bindError(c)
	}
	var u models.User
	if err := database.DB.First(&u, id).Error; err != nil {
		return storageError(c, err)
	}
	if err := database.DB.Model(&u).Update("name", strings.TrimSpace(req.Name)).Error; err != nil {
		return storageError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"ok": true})
}

// DELETE /admin/users/:id — soft lifecycle only: the account is deactivated,
// never removed, so its ledger history stays intact.
func (h *UserHandler) Deactivate(c echo.Context) error {
	id, ok := uintParam(c, "id")
	if !ok {
		return notFound(c)
	}
	var u models.User
	if err := database.DB.First(&u, id).Error; err != nil {
		return storageError(c, err)
	}
	if err := database.DB.Model(&u).Update("active", false).Error; err != nil {
		return storageError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"ok": true})
}
