package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/schooldesk/schooldesk/database"
	"github.com/schooldesk/schooldesk/models"
)

type HomeroomHandler struct{}

func NewHomeroomHandler() *HomeroomHandler { return &HomeroomHandler{} }

type homeroomReq struct {
	Name         string `json:"name" validate:"required,max=40"`
	Code         string `json:"code" validate:"required,max=20"`
	AcademicYear string `json:"academic_year" validate:"max=10"`
	TeacherID    uint   `json:"teacher_id" validate:"required"` // homeroom teacher
}

// GET /admin/homerooms
func (h *HomeroomHandler) List(c echo.Context) error {
	var rows []models.HomeroomClass
	if err := database.DB.Order("name").Find(&rows).Error; err != nil {
		return storageError(c, err)
	}
	return c.JSON(http.StatusOK, rows)
}

// POST /admin/homerooms
func (h *HomeroomHandler) Create(c echo.Context) error {
	var req homeroomReq
	if err := c.Bind(&req); err != nil {
		return bindError(c)
	}
	if err := validate.Struct(&req); err != nil {
		return validationError(c, err)
	}

	// the homeroom teacher must exist: it is the approval authority
	var t models.Teacher
	if err := database.DB.First(&t, req.TeacherID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.JSON(http.StatusBadRequest, map[string]any{"error": "TEACHER_NOT_FOUND"})
		}
		return storageError(c, err)
	}

	rec := models.HomeroomClass{
		Name:         strings.TrimSpace(req.Name),
		Code:         strings.TrimSpace(req.Code),
		AcademicYear: strings.TrimSpace(req.AcademicYear),
		TeacherID:    t.ID,
	}
	if err := database.DB.Create(&rec).Error; err != nil {
		if err == gorm.ErrDuplicatedKey {
			return c.JSON(http.StatusConflict, map[string]any{"error": "CLASS_EXISTS"})
		}
		return storageError(c, err)
	}
	return c.JSON(http.StatusCreated, rec)
}

// PUT /admin/homerooms/:id
func (h *HomeroomHandler) Update(c echo.Context) error {
	id, ok := uintParam(c, "id")
	if !ok {
		return notFound(c)
	}
	var rec models.HomeroomClass
	if err := database.DB.First(&rec, id).Error; err != nil {
		return storageError(c, err)
	}

	var req homeroomReq
	if err := c.Bind(&req); err != nil {
		return bindError(c)
	}
	if err := validate.Struct(&req); err != nil {
		return validationError(c, err)
	}

	var t models.Teacher
	if err := database.DB.First(&t, req.TeacherID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.JSON(http.StatusBadRequest, map[string]any{"error": "TEACHER_NOT_FOUND"})
		}
		return storageError(c, err)
	}

	rec.Name = strings.TrimSpace(req.Name)
	rec.Code = strings.TrimSpace(req.Code)
	rec.AcademicYear = strings.TrimSpace(req.AcademicYear)
	rec.TeacherID = t.ID
	if err := database.DB.Save(&rec).Error; err != nil {
		return storageError(c, err)
	}
	return c.JSON(http.StatusOK, rec)
}
