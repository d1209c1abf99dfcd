package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/schooldesk/schooldesk/database"
	"github.com/schooldesk/schooldesk/models"
)

type DashboardHandler struct{}

func NewDashboardHandler() *DashboardHandler { return &DashboardHandler{} }

// GET /admin/dashboard/summary
// Rough headcounts for the admin landing page.
func (h *DashboardHandler) Summary(c echo.Context) error {
	var (
		cntStudents int64
		cntTeachers int64
		cntClasses  int64
		cntPending  int64
	)

	if err := database.DB.Model(&models.Student{}).Count(&cntStudents).Error; err != nil {
		return storageError(c, err)
	}
	if err := database.DB.Model(&models.Teacher{}).Count(&cntTeachers).Error; err != nil {
		return storageError(c, err)
	}
	if err := database.DB.Model(&models.HomeroomClass{}).Count(&cntClasses).Error; err != nil {
		return storageError(c, err)
	}
	if err := database.DB.Model(&models.AttendanceRecord{}).
		Where("status = ? AND approved IS NULL AND justification <> ''", models.AttendanceAbsent).
		Count(&cntPending).Error; err != nil {
		return storageError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"students":               cntStudents,
		"teachers":               cntTeachers,
		"classes":                cntClasses,
		"pending_justifications": cntPending,
	})
}
