package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/schooldesk/schooldesk/database"
	"github.com/schooldesk/schooldesk/models"
)

type SubjectHandler struct{}

func NewSubjectHandler() *SubjectHandler { return &SubjectHandler{} }

func (h *SubjectHandler) List(c echo.Context) error {
	var rows []models.Subject
	if err := database.DB.Order("name").Find(&rows).Error; err != nil {
		return storageError(c, err)
	}
	return c.JSON(http.StatusOK, rows)
}

func (h *SubjectHandler) Create(c echo.Context) error {
	var req struct {
		Name string `json:"name" validate:"required,max=80"`
	}
	if err := c.Bind(&req); err != nil {
		return bindError(c)
	}
	if err := validate.Struct(&req); err != nil {
		return validationError(c, err)
	}

	rec := models.Subject{Name: strings.TrimSpace(req.Name)}
	if err := database.DB.Create(&rec).Error; err != nil {
		if err == gorm.ErrDuplicatedKey {
			return c.JSON(http.StatusConflict, map[string]any{"error": "SUBJECT_EXISTS"})
		}
		return storageError(c, err)
	}
	return c.JSON(http.StatusCreated, rec)
}

func (h *SubjectHandler) Delete(c echo.Context) error {
	id, ok := uintParam(c, "id")
	if !ok {
		return notFound(c)
	}
	res := database.DB.Delete(&models.Subject{}, id)
	if res.Error != nil {
		return storageError(c, res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound(c)
	}
	return c.JSON(http.StatusOK, map[string]any{"ok": true})
}
