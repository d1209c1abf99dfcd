package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/schooldesk/schooldesk/database"
	"github.com/schooldesk/schooldesk/models"
)

type EnrollmentHandler struct{}

func NewEnrollmentHandler() *EnrollmentHandler { return &EnrollmentHandler{} }

// GET /admin/enrollments?class_id=&student_id=
func (h *EnrollmentHandler) List(c echo.Context) error {
	tx := database.DB.Model(&models.Enrollment{})
	if v := c.QueryParam("class_id"); v != "" {
		tx = tx.Where("class_id = ?", v)
	}
	if v := c.QueryParam("student_id"); v != "" {
		tx = tx.Where("student_id = ?", v)
	}
	var rows []models.Enrollment
	if err := tx.Order("class_id, student_id").Find(&rows).Error; err != nil {
		return storageError(c, err)
	}
	return c.JSON(http.StatusOK, rows)
}

// POST /admin/enrollments
func (h *EnrollmentHandler) Create(c echo.Context) error {
	var req struct {
		StudentID uint `json:"student_id" validate:"required"`
		ClassID   uint `json:"class_id" validate:"required"`
	}
	if err := c.Bind(&req); err != nil {
		return bindError(c)
	}
	if err := validate.Struct(&req); err != nil {
		return validationError(c, err)
	}

	var student models.Student
	if err := database.DB.First(&student, req.StudentID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.JSON(http.StatusBadRequest, map[string]any{"error": "STUDENT_NOT_FOUND"})
		}
		return storageError(c, err)
	}
	var class models.HomeroomClass
	if err := database.DB.First(&class, req.ClassID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.JSON(http.StatusBadRequest, map[string]any{"error": "CLASS_NOT_FOUND"})
		}
		return storageError(c, err)
	}

	rec := models.Enrollment{StudentID: student.ID, ClassID: class.ID}
	if err := database.DB.Create(&rec).Error; err != nil {
		if err == gorm.ErrDuplicatedKey {
			return c.JSON(http.StatusConflict, map[string]any{"error": "ALREADY_ENROLLED"})
		}
		return storageError(c, err)
	}
	return c.JSON(http.StatusCreated, rec)
}

// DELETE /admin/enrollments/:id
func (h *EnrollmentHandler) Delete(c echo.Context) error {
	id, ok := uintParam(c, "id")
	if !ok {
		return notFound(c)
	}
	res := database.DB.Delete(&models.Enrollment{}, id)
	if res.Error != nil {
		return storageError(c, res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound(c)
	}
	return c.JSON(http.StatusOK, map[string]any{"ok": true})
}
