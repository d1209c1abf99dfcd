package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/schooldesk/schooldesk/database"
	"github.com/schooldesk/schooldesk/models"
)

type StudentHandler struct{}

func NewStudentHandler() *StudentHandler { return &StudentHandler{} }

type studentReq struct {
	UserID      uint   `json:"user_id" validate:"required"`
	StudentCode string `json:"student_code" validate:"required,max=20"`
	FirstName   string `json:"first_name" validate:"required,max=50"`
	LastName    string `json:"last_name" validate:"required,max=50"`
	BirthDate   string `json:"birth_date"` // YYYY-MM-DD, optional
	ClassGroup  string `json:"class_group" validate:"max=20"`
	Address     string `json:"address"`
	Phone       string `json:"phone" validate:"max=15"`
}

// GET /admin/students?q=&class_group=&limit=
func (h *StudentHandler) List(c echo.Context) error {
	q := strings.TrimSpace(c.QueryParam("q"))
	classGroup := strings.TrimSpace(c.QueryParam("class_group"))
	limit := atoiOr(c.QueryParam("limit"), 200)
	if limit <= 0 || limit > 1000 {
		limit = 200
	}

	tx := database.DB.Model(&models.Student{})
	if classGroup != "" {
		tx = tx.Where("class_group = ?", classGroup)
	}
	if q != "" {
		like := "%" + strings.ToLower(q) + "%"
		tx = tx.Where("LOWER(student_code) LIKE ? OR LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ?",
			like, like, like)
	}

	var rows []models.Student
	if err := tx.Order("class_group, student_code").Limit(limit).Find(&rows).Error; err != nil {
		return storageError(c, err)
	}
	return c.JSON(http.StatusOK, rows)
}

// POST /admin/students
func (h *StudentHandler) Create(c echo.Context) error {
	var req studentReq
	if err := c.Bind(&req); err != nil {
		return bindError(c)
	}
	if err := validate.Struct(&req); err != nil {
		return validationError(c, err)
	}

	rec := models.Student{
		UserID:      req.UserID,
		StudentCode: strings.TrimSpace(req.StudentCode),
		FirstName:   strings.TrimSpace(req.FirstName),
		LastName:    strings.TrimSpace(req.LastName),
		ClassGroup:  strings.TrimSpace(req.ClassGroup),
		Address:     strings.TrimSpace(req.Address),
		Phone:       strings.TrimSpace(req.Phone),
	}
	if req.BirthDate != "" {
		bd, err := time.Parse("2006-01-02", req.BirthDate)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]any{"error": "INVALID_DATE"})
		}
		rec.BirthDate = &bd
	}
	if err := database.DB.Create(&rec).Error; err != nil {
		if err == gorm.ErrDuplicatedKey {
			return c.JSON(http.StatusConflict, map[string]any{"error": "STUDENT_CODE_EXISTS"})
		}
		return storageError(c, err)
	}
	return c.JSON(http.StatusCreated, rec)
}

// PUT /admin/students/:id
func (h *StudentHandler) Update(c echo.Context) error {
	id, ok := uintParam(c, "id")
	if !ok {
		return notFound(c)
	}
	var rec models.Student
	if err := database.DB.First(&rec, id).Error; err != nil {
		return storageError(c, err)
	}

	var req studentReq
	if err := c.Bind(&req); err != nil {
		return bindError(c)
	}
	if err := validate.Struct(&req); err != nil {
		return validationError(c, err)
	}

	rec.StudentCode = strings.TrimSpace(req.StudentCode)
	rec.FirstName = strings.TrimSpace(req.FirstName)
	rec.LastName = strings.TrimSpace(req.LastName)
	rec.ClassGroup = strings.TrimSpace(req.ClassGroup)
	rec.Address = strings.TrimSpace(req.Address)
	rec.Phone = strings.TrimSpace(req.Phone)
	if req.BirthDate != "" {
		bd, err := time.Parse("2006-01-02", req.BirthDate)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]any{"error": "INVALID_DATE"})
		}
		rec.BirthDate = &bd
	}
	if err := database.DB.Save(&rec).Error; err != nil {
		return storageError(c, err)
	}
	return c.JSON(http.StatusOK, rec)
}
