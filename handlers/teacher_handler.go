package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/schooldesk/schooldesk/database"
	"github.com/schooldesk/schooldesk/models"
)

type TeacherHandler struct{}

func NewTeacherHandler() *TeacherHandler { return &TeacherHandler{} }

type teacherReq struct {
	UserID      uint   `json:"user_id" validate:"required"`
	TeacherCode string `json:"teacher_code" validate:"required,max=20"`
	FirstName   string `json:"first_name" validate:"required,max=50"`
	LastName    string `json:"last_name" validate:"required,max=50"`
	Phone       string `json:"phone" validate:"max=15"`
	Email       string `json:"email" validate:"omitempty,email,max=120"`
}

// GET /admin/teachers?q=&limit=
func (h *TeacherHandler) List(c echo.Context) error {
	q := strings.TrimSpace(c.QueryParam("q"))
	limit := atoiOr(c.QueryParam("limit"), 200)
	if limit <= 0 || limit > 1000 {
		limit = 200
	}

	tx := database.DB.Model(&models.Teacher{})
	if q != "" {
		like := "%" + strings.ToLower(q) + "%"
		tx = tx.Where("LOWER(teacher_code) LIKE ? OR LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ?",
			like, like, like)
	}

	var rows []models.Teacher
	if err := tx.Order("teacher_code").Limit(limit).Find(&rows).Error; err != nil {
		return storageError(c, err)
	}
	return c.JSON(http.StatusOK, rows)
}

// POST /admin/teachers
func (h *TeacherHandler) Create(c echo.Context) error {
	var req teacherReq
	if err := c.Bind(&req); err != nil {
		return bindError(c)
	}
	if err := validate.Struct(&req); err != nil {
		return validationError(c, err)
	}

	rec := models.Teacher{
		UserID:      req.UserID,
		TeacherCode: strings.TrimSpace(req.TeacherCode),
		FirstName:   strings.TrimSpace(req.FirstName),
		LastName:    strings.TrimSpace(req.LastName),
		Phone:       strings.TrimSpace(req.Phone),
		Email:       strings.TrimSpace(strings.ToLower(req.Email)),
	}
	if err := database.DB.Create(&rec).Error; err != nil {
		if err == gorm.ErrDuplicatedKey {
			return c.JSON(http.StatusConflict, map[string]any{"error": "TEACHER_CODE_EXISTS"})
		}
		return storageError(c, err)
	}
	return c.JSON(http.StatusCreated, rec)
}

// PUT /admin/teachers/:id
func (h *TeacherHandler) Update(c echo.Context) error {
	id, ok := uintParam(c, "id")
	if !ok {
		return notFound(c)
	}
	var rec models.Teacher
	if err := database.DB.First(&rec, id).Error; err != nil {
		return storageError(c, err)
	}

	var req teacherReq
	if err := c.Bind(&req); err != nil {
		return bindError(c)
	}
	if err := validate.Struct(&req); err != nil {
		return validationError(c, err)
	}

	rec.TeacherCode = strings.TrimSpace(req.TeacherCode)
	rec.FirstName = strings.TrimSpace(req.FirstName)
	rec.LastName = strings.TrimSpace(req.LastName)
	rec.Phone = strings.TrimSpace(req.Phone)
	rec.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if err := database.DB.Save(&rec).Error; err != nil {
		return storageError(c, err)
	}
	return c.JSON(http.StatusOK, rec)
}
