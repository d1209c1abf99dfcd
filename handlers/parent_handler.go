package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/schooldesk/schooldesk/database"
	"github.com/schooldesk/schooldesk/models"
)

type ParentHandler struct{}

func NewParentHandler() *ParentHandler { return &ParentHandler{} }

type parentReq struct {
	UserID    uint   `json:"user_id" validate:"required"`
	FirstName string `json:"first_name" validate:"required,max=50"`
	LastName  string `json:"last_name" validate:"required,max=50"`
	Phone     string `json:"phone" validate:"max=20"`
	Email     string `json:"email" validate:"omitempty,email,max=120"`
}

// GET /admin/parents?q=&limit=
func (h *ParentHandler) List(c echo.Context) error {
	q := strings.TrimSpace(c.QueryParam("q"))
	limit := atoiOr(c.QueryParam("limit"), 200)
	if limit <= 0 || limit > 1000 {
		limit = 200
	}

	tx := database.DB.Model(&models.Parent{}).Preload("Students")
	if q != "" {
		like := "%" + strings.ToLower(q) + "%"
		tx = tx.Where("LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(email) LIKE ?",
			like, like, like)
	}

	var rows []models.Parent
	if err := tx.Order("last_name, first_name").Limit(limit).Find(&rows).Error; err != nil {
		return storageError(c, err)
	}
	return c.JSON(http.StatusOK, rows)
}

// POST /admin/parents
func (h *ParentHandler) Create(c echo.Context) error {
	var req parentReq
	if err := c.Bind(&req); err != nil {
		return bindError(c)
	}
	if err := validate.Struct(&req); err != nil {
		return validationError(c, err)
	}

	rec := models.Parent{
		UserID:    req.UserID,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Phone:     strings.TrimSpace(req.Phone),
		Email:     strings.TrimSpace(strings.ToLower(req.Email)),
	}
	if err := database.DB.Create(&rec).Error; err != nil {
		return storageError(c, err)
	}
	return c.JSON(http.StatusCreated, rec)
}

// POST /admin/parents/:id/students — links a student to the guardian.
func (h *ParentHandler) LinkStudent(c echo.Context) error {
	id, ok := uintParam(c, "id")
	if !ok {
		return notFound(c)
	}
	var req struct {
		StudentID uint `json:"student_id" validate:"required"`
	}
	if err := c.Bind(&req); err != nil {
		return bindError(c)
	}
	if err := validate.Struct(&req); err != nil {
		return validationError(c, err)
	}

	var parent models.Parent
	if err := database.DB.First(&parent, id).Error; err != nil {
		return storageError(c, err)
	}
	var student models.Student
	if err := database.DB.First(&student, req.StudentID).Error; err != nil {
		return storageError(c, err)
	}

	if err := database.DB.Model(&parent).Association("Students").Append(&student); err != nil {
		return storageError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"ok": true})
}

// DELETE /admin/parents/:id/students/:student_id
func (h *ParentHandler) UnlinkStudent(c echo.Context) error {
	id, ok := uintParam(c, "id")
	if !ok {
		return notFound(c)
	}
	sid, ok := uintParam(c, "student_id")
	if !ok {
		return notFound(c)
	}

	var parent models.Parent
	if err := database.DB.First(&parent, id).Error; err != nil {
		return storageError(c, err)
	}
	var student models.Student
	if err := database.DB.First(&student, sid).Error; err != nil {
		return storageError(c, err)
	}

	if err := database.DB.Model(&parent).Association("Students").Delete(&student); err != nil {
		return storageError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"ok": true})
}
