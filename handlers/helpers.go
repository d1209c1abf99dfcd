package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/schooldesk/schooldesk/database"
	"github.com/schooldesk/schooldesk/middlewares"
	"github.com/schooldesk/schooldesk/models"
)

var validate = validator.New()

// atoiOr converts s to int, falling back to def.
func atoiOr(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

// uintParam parses a numeric path parameter.
func uintParam(c echo.Context, name string) (uint, bool) {
	n, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}

// storageError maps storage failures to the response taxonomy: not-found stays
// not-found, everything else is logged and surfaced as a generic failure.
func storageError(c echo.Context, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.JSON(http.StatusNotFound, map[string]any{"error": "NOT_FOUND"})
	}
	log.Printf("storage error: %v", err)
	return c.JSON(http.StatusInternalServerError, map[string]any{"error": "STORAGE_UNAVAILABLE"})
}

func bindError(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, map[string]any{"error": "INVALID_PAYLOAD"})
}

func validationError(c echo.Context, err error) error {
	return c.JSON(http.StatusBadRequest, map[string]any{"error": "MISSING_FIELDS", "detail": err.Error()})
}

func forbidden(c echo.Context) error {
	return c.JSON(http.StatusForbidden, map[string]any{"error": "FORBIDDEN"})
}

// notFound deliberately does not distinguish "does not exist" from "exists but
// out of the caller's scope".
func notFound(c echo.Context) error {
	return c.JSON(http.StatusNotFound, map[string]any{"error": "NOT_FOUND"})
}

/* ---------- profile lookups shared across handlers ---------- */

func teacherForUser(userID uint) (*models.Teacher, error) {
	var t models.Teacher
	if err := database.DB.Where("user_id = ?", userID).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func studentForUser(userID uint) (*models.Student, error) {
	var s models.Student
	if err := database.DB.Where("user_id = ?", userID).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func parentForUser(userID uint) (*models.Parent, error) {
	var p models.Parent
	if err := database.DB.Where("user_id = ?", userID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// parentStudentIDs lists the ids of the students linked to a parent.
func parentStudentIDs(parentID uint) ([]uint, error) {
	var ids []uint
	err := database.DB.Table("parent_students").
		Where("parent_id = ?", parentID).
		Pluck("student_id", &ids).Error
	return ids, err
}

// canModerate reports whether the caller may decide justifications (and fetch
// documents) for the given class: its homeroom teacher, or an admin.
func canModerate(ident middlewares.Identity, classID uint) (bool, error) {
	if ident.Role == models.RoleAdmin {
		return true, nil
	}
	if ident.Role != models.RoleTeacher {
		return false, nil
	}
	t, err := teacherForUser(ident.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	var class models.HomeroomClass
	if err := database.DB.First(&class, classID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return class.TeacherID == t.ID, nil
}

// teachesAssignment reports whether the caller is the teaching teacher of the
// assignment (admins always pass).
func teachesAssignment(ident middlewares.Identity, assignmentID uint) (bool, error) {
	if ident.Role == models.RoleAdmin {
		return true, nil
	}
	if ident.Role != models.RoleTeacher {
		return false, nil
	}
	t, err := teacherForUser(ident.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	var n int64
	err = database.DB.Model(&models.ClassSubjectAssignment{}).
		Where("id = ? AND teacher_id = ?", assignmentID, t.ID).
		Count(&n).Error
	return n > 0, err
}
