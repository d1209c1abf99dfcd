package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm/clause"

	"github.com/schooldesk/schooldesk/database"
	"github.com/schooldesk/schooldesk/grading"
	"github.com/schooldesk/schooldesk/middlewares"
	"github.com/schooldesk/schooldesk/models"
)

type GradeHandler struct{}

func NewGradeHandler() *GradeHandler { return &GradeHandler{} }

type gradeItemReq struct {
	AssignmentID uint     `json:"assignment_id" validate:"required"`
	Title        string   `json:"title" validate:"required,max=120"`
	MaxPoints    float64  `json:"max_points" validate:"required,gt=0"`
	Weight       *float64 `json:"weight" validate:"omitempty,gt=0"`
}

type recordGradeReq struct {
	EnrollmentID uint    `json:"enrollment_id" validate:"required"`
	GradeItemID  uint    `json:"grade_item_id" validate:"required"`
	Points       float64 `json:"points"`
	Comment      string  `json:"comment"`
}

// POST /teacher/grade-items
func (h *GradeHandler) CreateItem(c echo.Context) error {
	ident, ok := middlewares.GetIdentity(c)
	if !ok {
		return forbidden(c)
	}
	var req gradeItemReq
	if err := c.Bind(&req); err != nil {
		return bindError(c)
	}
	if err := validate.Struct(&req); err != nil {
		return validationError(c, err)
	}

	allowed, err := teachesAssignment(ident, req.AssignmentID)
	if err != nil {
		return storageError(c, err)
	}
	if !allowed {
		return forbidden(c)
	}

	rec := models.GradeItem{
		AssignmentID: req.AssignmentID,
		Title:        strings.TrimSpace(req.Title),
		MaxPoints:    req.MaxPoints,
		Weight:       req.Weight,
	}
	if err := database.DB.Create(&rec).Error; err != nil {
		return storageError(c, err)
	}
	return c.JSON(http.StatusCreated, rec)
}

// GET /teacher/grade-items?assignment_id=
func (h *GradeHandler) ListItems(c echo.Context) error {
	ident, ok := middlewares.GetIdentity(c)
	if !ok {
		return forbidden(c)
	}
	assignmentID := uint(atoiOr(c.QueryParam("assignment_id"), 0))
	if assignmentID == 0 {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "MISSING_FIELDS"})
	}
	allowed, err := teachesAssignment(ident, assignmentID)
	if err != nil {
		return storageError(c, err)
	}
	if !allowed {
		return c.JSON(http.StatusOK, []models.GradeItem{})
	}
	var rows []models.GradeItem
	if err := database.DB.Where("assignment_id = ?", assignmentID).
		Order("id").Find(&rows).Error; err != nil {
		return storageError(c, err)
	}
	return c.JSON(http.StatusOK, rows)
}

// PUT /teacher/grades
// Upsert: a second call for the same (enrollment, item) pair overwrites
// points and comment rather than duplicating; the unique index backs this.
func (h *GradeHandler) RecordGrade(c echo.Context) error {
	ident, ok := middlewares.GetIdentity(c)
	if !ok {
		return forbidden(c)
	}
	var req recordGradeReq
	if err := c.Bind(&req); err != nil {
		return bindError(c)
	}
	if err := validate.Struct(&req); err != nil {
		return validationError(c, err)
	}

	var item models.GradeItem
	if err := database.DB.First(&item, req.GradeItemID).Error; err != nil {
		return storageError(c, err)
	}
	if !grading.InRange(req.Points, item.MaxPoints) {
		return c.JSON(http.StatusBadRequest, map[string]any{
			"error": "OUT_OF_RANGE",
			"field": "points",
			"max":   item.MaxPoints,
		})
	}

	allowed, err := teachesAssignment(ident, item.AssignmentID)
	if err != nil {
		return storageError(c, err)
	}
	if !allowed {
		return forbidden(c)
	}

	var enr models.Enrollment
	if err := database.DB.First(&enr, req.EnrollmentID).Error; err != nil {
		return storageError(c, err)
	}
	var asg models.ClassSubjectAssignment
	if err := database.DB.First(&asg, item.AssignmentID).Error; err != nil {
		return storageError(c, err)
	}
	// no cross-class grading: the item's class and the enrollment's class match
	if enr.ClassID != asg.ClassID {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "ENROLLMENT_MISMATCH"})
	}

	rec := models.Grade{
		EnrollmentID: req.EnrollmentID,
		GradeItemID:  req.GradeItemID,
		Points:       req.Points,
		Comment:      strings.TrimSpace(req.Comment),
	}
	err = database.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "enrollment_id"}, {Name: "grade_item_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"points", "comment", "updated_at"}),
	}).Create(&rec).Error
	if err != nil {
		return storageError(c, err)
	}
	return c.JSON(http.StatusOK, rec)
}

// classScores loads every (enrollment, points, max, weight) row of an
// assignment for the aggregation math. One parameterized query, no string
// assembly.
func classScores(assignmentID uint) ([]grading.ItemScore, error) {
	var rows []grading.ItemScore
	err := database.DB.Model(&models.Grade{}).
		Select("grades.enrollment_id AS enrollment_id, grades.points AS points, gi.max_points AS max_points, gi.weight AS weight").
		Joins("JOIN grade_items gi ON gi.id = grades.grade_item_id").
		Where("gi.assignment_id = ?", assignmentID).
		Scan(&rows).Error
	return rows, err
}

// GET /teacher/assignments/:id/average
func (h *GradeHandler) ClassAverage(c echo.Context) error {
	ident, ok := middlewares.GetIdentity(c)
	if !ok {
		return forbidden(c)
	}
	id, ok := uintParam(c, "id")
	if !ok {
		return notFound(c)
	}
	allowed, err := teachesAssignment(ident, id)
	if err != nil {
		return storageError(c, err)
	}
	if !allowed {
		return notFound(c)
	}

	scores, err := classScores(id)
	if err != nil {
		return storageError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"assignment_id": id,
		"average":       grading.ClassAverage(scores),
	})
}
