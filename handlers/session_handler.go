package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/schooldesk/schooldesk/database"
	"github.com/schooldesk/schooldesk/middlewares"
	"github.com/schooldesk/schooldesk/models"
)

// SessionHandler manages class sessions ("periods"). Teachers create sessions
// for their own assignments; admins for any.
type SessionHandler struct{}

func NewSessionHandler() *SessionHandler { return &SessionHandler{} }

type sessionReq struct {
	AssignmentID uint   `json:"assignment_id" validate:"required"`
	Date         string `json:"date" validate:"required"`
	Label        string `json:"label" validate:"required,max=40"` // e.g. "Period 3"
}

// GET /teacher/sessions?assignment_id=&from=&to=
func (h *SessionHandler) List(c echo.Context) error {
	ident, ok := middlewares.GetIdentity(c)
	if !ok {
		return forbidden(c)
	}

	tx := database.DB.Model(&models.ClassSession{})

	// non-admin teachers only ever see their own assignments' sessions
	if ident.Role != models.RoleAdmin {
		t, err := teacherForUser(ident.UserID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return c.JSON(http.StatusOK, []models.ClassSession{})
			}
			return storageError(c, err)
		}
		tx = tx.Where("assignment_id IN (?)",
			database.DB.Model(&models.ClassSubjectAssignment{}).
				Select("id").Where("teacher_id = ?", t.ID))
	}

	if v := strings.TrimSpace(c.QueryParam("assignment_id")); v != "" {
		tx = tx.Where("assignment_id = ?", v)
	}
	from := strings.TrimSpace(c.QueryParam("from"))
	to := strings.TrimSpace(c.QueryParam("to"))
	if from != "" && to != "" {
		tx = tx.Where("date >= ? AND date <= ?", from, to)
	}

	var rows []models.ClassSession
	if err := tx.Order("date ASC, label ASC, id ASC").Find(&rows).Error; err != nil {
		return storageError(c, err)
	}
	return c.JSON(http.StatusOK, rows)
}

// POST /teacher/sessions
func (h *SessionHandler) Create(c echo.Context) error {
	ident, ok := middlewares.GetIdentity(c)
	if !ok {
		return forbidden(c)
	}

	var req sessionReq
	if err := c.Bind(&req); err != nil {
		return bindError(c)
	}
	if err := validate.Struct(&req); err != nil {
		return validationError(c, err)
	}
	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "INVALID_DATE"})
	}

	ok, err := teachesAssignment(ident, req.AssignmentID)
	if err != nil {
		return storageError(c, err)
	}
	if !ok {
		return forbidden(c)
	}

	rec := models.ClassSession{
		AssignmentID: req.AssignmentID,
		Date:         req.Date,
		Label:        strings.TrimSpace(req.Label),
	}
	if err := database.DB.Create(&rec).Error; err != nil {
		if err == gorm.ErrDuplicatedKey {
			return c.JSON(http.StatusConflict, map[string]any{"error": "SESSION_EXISTS"})
		}
		return storageError(c, err)
	}
	return c.JSON(http.StatusCreated, rec)
}
