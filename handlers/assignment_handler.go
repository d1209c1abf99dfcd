package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/schooldesk/schooldesk/database"
	"github.com/schooldesk/schooldesk/middlewares"
	"github.com/schooldesk/schooldesk/models"
)

// AssignmentHandler manages the (class, subject, teacher) triples that
// sessions, grade items and therefore the whole ledger hang off.
type AssignmentHandler struct{}

func NewAssignmentHandler() *AssignmentHandler { return &AssignmentHandler{} }

type assignmentReq struct {
	ClassID   uint `json:"class_id" validate:"required"`
	SubjectID uint `json:"subject_id" validate:"required"`
	TeacherID uint `json:"teacher_id" validate:"required"`
}

// GET /admin/assignments?class_id=&teacher_id=
func (h *AssignmentHandler) List(c echo.Context) error {
	tx := database.DB.Model(&models.ClassSubjectAssignment{})
	if v := c.QueryParam("class_id"); v != "" {
		tx = tx.Where("class_id = ?", v)
	}
	if v := c.QueryParam("teacher_id"); v != "" {
		tx = tx.Where("teacher_id = ?", v)
	}
	var rows []models.ClassSubjectAssignment
	if err := tx.Order("class_id, subject_id").Find(&rows).Error; err != nil {
		return storageError(c, err)
	}
	return c.JSON(http.StatusOK, rows)
}

// GET /teacher/assignments — the caller's own teaching assignments.
func (h *AssignmentHandler) Mine(c echo.Context) error {
	ident, ok := middlewares.GetIdentity(c)
	if !ok {
		return forbidden(c)
	}
	t, err := teacherForUser(ident.UserID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.JSON(http.StatusOK, []models.ClassSubjectAssignment{})
		}
		return storageError(c, err)
	}
	var rows []models.ClassSubjectAssignment
	if err := database.DB.Where("teacher_id = ?", t.ID).
		Order("class_id, subject_id").Find(&rows).Error; err != nil {
		return storageError(c, err)
	}
	return c.JSON(http.StatusOK, rows)
}

// POST /admin/assignments
func (h *AssignmentHandler) Create(c echo.Context) error {
	var req assignmentReq
	if err := c.Bind(&req); err != nil {
		return bindError(c)
	}
	if err := validate.Struct(&req); err != nil {
		return validationError(c, err)
	}

	// referenced rows must exist; the unique (class, subject) index guards dupes
	var class models.HomeroomClass
	if err := database.DB.First(&class, req.ClassID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.JSON(http.StatusBadRequest, map[string]any{"error": "CLASS_NOT_FOUND"})
		}
		return storageError(c, err)
	}
	var subject models.Subject
	if err := database.DB.First(&subject, req.SubjectID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.JSON(http.StatusBadRequest, map[string]any{"error": "SUBJECT_NOT_FOUND"})
		}
		return storageError(c, err)
	}
	var t models.Teacher
	if err := database.DB.First(&t, req.TeacherID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.JSON(http.StatusBadRequest, map[string]any{"error": "TEACHER_NOT_FOUND"})
		}
		return storageError(c, err)
	}

	rec := models.ClassSubjectAssignment{ClassID: class.ID, SubjectID: subject.ID, TeacherID: t.ID}
	if err := database.DB.Create(&rec).Error; err != nil {
		if err == gorm.ErrDuplicatedKey {
			return c.JSON(http.StatusConflict, map[string]any{"error": "ASSIGNMENT_EXISTS"})
		}
		return storageError(c, err)
	}
	return c.JSON(http.StatusCreated, rec)
}

// DELETE /admin/assignments/:id
func (h *AssignmentHandler) Delete(c echo.Context) error {
	id, ok := uintParam(c, "id")
	if !ok {
		return notFound(c)
	}
	res := database.DB.Delete(&models.ClassSubjectAssignment{}, id)
	if res.Error != nil {
		return storageError(c, res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound(c)
	}
	return c.JSON(http.StatusOK, map[string]any{"ok": true})
}
