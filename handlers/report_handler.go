package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/schooldesk/schooldesk/database"
	"github.com/schooldesk/schooldesk/grading"
	"github.com/schooldesk/schooldesk/middlewares"
	"github.com/schooldesk/schooldesk/models"
)

// ReportHandler is the read-only aggregation surface. Every query is scoped
// by the caller's session identity; caller-supplied ids never widen the scope.
type ReportHandler struct{}

func NewReportHandler() *ReportHandler { return &ReportHandler{} }

// attendanceRate returns (present+late)/total over the scoped record set.
// scope must build a fresh query each call. A caller with no records gets 0,
// not a division fault.
func attendanceRate(scope func() *gorm.DB) (rate float64, total, presentOrLate int64, err error) {
	if err = scope().Count(&total).Error; err != nil {
		return 0, 0, 0, err
	}
	if total == 0 {
		return 0, 0, 0, nil
	}
	err = scope().
		Where("status IN ?", []string{models.AttendancePresent, models.AttendanceLate}).
		Count(&presentOrLate).Error
	if err != nil {
		return 0, 0, 0, err
	}
	return float64(presentOrLate) / float64(total), total, presentOrLate, nil
}

// enrollmentScope narrows attendance records to the enrollments of the given
// students.
func enrollmentScope(studentIDs []uint) *gorm.DB {
	return database.DB.Model(&models.AttendanceRecord{}).
		Where("enrollment_id IN (?)",
			database.DB.Model(&models.Enrollment{}).Select("id").Where("student_id IN ?", studentIDs))
}

// studentIDsFor resolves the students the caller is allowed to see:
// the student themselves, or a parent's linked children. Empty means no scope.
func studentIDsFor(ident middlewares.Identity) ([]uint, error) {
	switch ident.Role {
	case models.RoleStudent:
		s, err := studentForUser(ident.UserID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, nil
			}
			return nil, err
		}
		return []uint{s.ID}, nil
	case models.RoleParent:
		p, err := parentForUser(ident.UserID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, nil
			}
			return nil, err
		}
		return parentStudentIDs(p.ID)
	}
	return nil, nil
}

type sessionCoverage struct {
	SessionID      uint   `json:"session_id"`
	Date           string `json:"date"`
	Label          string `json:"label"`
	Recorded       int64  `json:"recorded"`
	Enrolled       int64  `json:"enrolled"`
	NeedsAttention bool   `json:"needs_attention"`
}

// GET /reports/attendance
func (h *ReportHandler) Attendance(c echo.Context) error {
	ident, ok := middlewares.GetIdentity(c)
	if !ok {
		return forbidden(c)
	}

	switch ident.Role {
	case models.RoleAdmin:
		rate, total, pl, err := attendanceRate(func() *gorm.DB {
			return database.DB.Model(&models.AttendanceRecord{})
		})
		if err != nil {
			return storageError(c, err)
		}
		return c.JSON(http.StatusOK, map[string]any{
			"scope": "school", "rate": rate, "total": total, "present_or_late": pl,
		})

	case models.RoleTeacher:
		return h.teacherAttendance(c, ident)

	case models.RoleStudent, models.RoleParent:
		ids, err := studentIDsFor(ident)
		if err != nil {
			return storageError(c, err)
		}
		if len(ids) == 0 {
			return c.JSON(http.StatusOK, map[string]any{"scope": "own", "rate": 0.0, "total": 0})
		}
		rate, total, pl, err := attendanceRate(func() *gorm.DB { return enrollmentScope(ids) })
		if err != nil {
			return storageError(c, err)
		}
		return c.JSON(http.StatusOK, map[string]any{
			"scope": "own", "rate": rate, "total": total, "present_or_late": pl,
		})
	}
	return forbidden(c)
}

func (h *ReportHandler) teacherAttendance(c echo.Context, ident middlewares.Identity) error {
	t, err := teacherForUser(ident.UserID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.JSON(http.StatusOK, map[string]any{"scope": "taught", "rate": 0.0, "total": 0, "sessions": []sessionCoverage{}})
		}
		return storageError(c, err)
	}

	taughtSessions := func() *gorm.DB {
		return database.DB.Model(&models.ClassSession{}).Select("class_sessions.id").
			Joins("JOIN class_subject_assignments a ON a.id = class_sessions.assignment_id").
			Where("a.teacher_id = ?", t.ID)
	}

	rate, total, pl, err := attendanceRate(func() *gorm.DB {
		return database.DB.Model(&models.AttendanceRecord{}).Where("session_id IN (?)", taughtSessions())
	})
	if err != nil {
		return storageError(c, err)
	}

	// a session needs attention while fewer records exist than enrolled students
	var sessions []models.ClassSession
	if err := database.DB.Model(&models.ClassSession{}).
		Joins("JOIN class_subject_assignments a ON a.id = class_sessions.assignment_id").
		Where("a.teacher_id = ?", t.ID).
		Order("date ASC, label ASC").
		Find(&sessions).Error; err != nil {
		return storageError(c, err)
	}

	coverage := make([]sessionCoverage, 0, len(sessions))
	for _, s := range sessions {
		var asg models.ClassSubjectAssignment
		if err := database.DB.First(&asg, s.AssignmentID).Error; err != nil {
			return storageError(c, err)
		}
		var enrolled, recorded int64
		if err := database.DB.Model(&models.Enrollment{}).
			Where("class_id = ?", asg.ClassID).Count(&enrolled).Error; err != nil {
			return storageError(c, err)
		}
		if err := database.DB.Model(&models.AttendanceRecord{}).
			Where("session_id = ?", s.ID).Count(&recorded).Error; err != nil {
			return storageError(c, err)
		}
		coverage = append(coverage, sessionCoverage{
			SessionID:      s.ID,
			Date:           s.Date,
			Label:          s.Label,
			Recorded:       recorded,
			Enrolled:       enrolled,
			NeedsAttention: recorded < enrolled,
		})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"scope": "taught", "rate": rate, "total": total, "present_or_late": pl,
		"sessions": coverage,
	})
}

type assignmentAverage struct {
	AssignmentID uint    `json:"assignment_id"`
	Average      float64 `json:"average"`
}

type studentScoreRow struct {
	EnrollmentID uint
	AssignmentID uint
	Points       float64
	MaxPoints    float64
	Weight       *float64
}

// GET /reports/averages
func (h *ReportHandler) Averages(c echo.Context) error {
	ident, ok := middlewares.GetIdentity(c)
	if !ok {
		return forbidden(c)
	}

	switch ident.Role {
	case models.RoleAdmin:
		var ids []uint
		if err := database.DB.Model(&models.ClassSubjectAssignment{}).Pluck("id", &ids).Error; err != nil {
			return storageError(c, err)
		}
		return h.assignmentAverages(c, ids)

	case models.RoleTeacher:
		t, err := teacherForUser(ident.UserID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return c.JSON(http.StatusOK, []assignmentAverage{})
			}
			return storageError(c, err)
		}
		var ids []uint
		if err := database.DB.Model(&models.ClassSubjectAssignment{}).
			Where("teacher_id = ?", t.ID).Pluck("id", &ids).Error; err != nil {
			return storageError(c, err)
		}
		return h.assignmentAverages(c, ids)

	case models.RoleStudent, models.RoleParent:
		ids, err := studentIDsFor(ident)
		if err != nil {
			return storageError(c, err)
		}
		return h.studentAverages(c, ids)
	}
	return forbidden(c)
}

func (h *ReportHandler) assignmentAverages(c echo.Context, assignmentIDs []uint) error {
	out := make([]assignmentAverage, 0, len(assignmentIDs))
	for _, id := range assignmentIDs {
		scores, err := classScores(id)
		if err != nil {
			return storageError(c, err)
		}
		out = append(out, assignmentAverage{AssignmentID: id, Average: grading.ClassAverage(scores)})
	}
	return c.JSON(http.StatusOK, out)
}

// studentAverages reports each of the caller's enrollments' per-assignment
// weighted means. Items the student has no grade for stay out of the
// denominator.
func (h *ReportHandler) studentAverages(c echo.Context, studentIDs []uint) error {
	type entry struct {
		EnrollmentID uint    `json:"enrollment_id"`
		AssignmentID uint    `json:"assignment_id"`
		Average      float64 `json:"average"`
	}
	if len(studentIDs) == 0 {
		return c.JSON(http.StatusOK, []entry{})
	}

	var rows []studentScoreRow
	err := database.DB.Model(&models.Grade{}).
		Select("grades.enrollment_id AS enrollment_id, gi.assignment_id AS assignment_id, grades.points AS points, gi.max_points AS max_points, gi.weight AS weight").
		Joins("JOIN grade_items gi ON gi.id = grades.grade_item_id").
		Joins("JOIN enrollments e ON e.id = grades.enrollment_id").
		Where("e.student_id IN ?", studentIDs).
		Scan(&rows).Error
	if err != nil {
		return storageError(c, err)
	}

	type key struct{ enrollment, assignment uint }
	grouped := make(map[key][]grading.ItemScore)
	for _, r := range rows {
		k := key{r.EnrollmentID, r.AssignmentID}
		grouped[k] = append(grouped[k], grading.ItemScore{
			EnrollmentID: r.EnrollmentID,
			Points:       r.Points,
			MaxPoints:    r.MaxPoints,
			Weight:       r.Weight,
		})
	}

	out := make([]entry, 0, len(grouped))
	for k, scores := range grouped {
		if avg, ok := grading.StudentAverage(scores); ok {
			out = append(out, entry{EnrollmentID: k.enrollment, AssignmentID: k.assignment, Average: avg})
		}
	}
	return c.JSON(http.StatusOK, out)
}
