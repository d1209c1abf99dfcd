package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/schooldesk/schooldesk/attendance"
	"github.com/schooldesk/schooldesk/database"
	"github.com/schooldesk/schooldesk/metrics"
	"github.com/schooldesk/schooldesk/middlewares"
	"github.com/schooldesk/schooldesk/models"
)

type AttendanceHandler struct{}

func NewAttendanceHandler() *AttendanceHandler { return &AttendanceHandler{} }

type markReq struct {
	EnrollmentID uint   `json:"enrollment_id" validate:"required"`
	SessionID    uint   `json:"session_id" validate:"required"`
	Status       string `json:"status" validate:"required"` // P | A | L
}

type attendanceView struct {
	models.AttendanceRecord
	ApprovalState string `json:"approval_state"`
}

func viewOf(rec models.AttendanceRecord) attendanceView {
	return attendanceView{AttendanceRecord: rec, ApprovalState: attendance.State(&rec)}
}

// POST /teacher/attendance
// Upserts the single status entry for an (enrollment, session) pair. A second
// submission for the same pair updates in place; the unique index serializes
// concurrent creates, and a create that loses that race is retried as an
// update.
func (h *AttendanceHandler) Mark(c echo.Context) error {
	ident, ok := middlewares.GetIdentity(c)
	if !ok {
		return forbidden(c)
	}

	var req markReq
	if err := c.Bind(&req); err != nil {
		return bindError(c)
	}
	if err := validate.Struct(&req); err != nil {
		return validationError(c, err)
	}
	if !attendance.ValidStatus(req.Status) {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "INVALID_STATUS"})
	}

	var sess models.ClassSession
	if err := database.DB.First(&sess, req.SessionID).Error; err != nil {
		return storageError(c, err)
	}
	var asg models.ClassSubjectAssignment
	if err := database.DB.First(&asg, sess.AssignmentID).Error; err != nil {
		return storageError(c, err)
	}
	var enr models.Enrollment
	if err := database.DB.First(&enr, req.EnrollmentID).Error; err != nil {
		return storageError(c, err)
	}
	// attendance is keyed on the enrollment of the class the session belongs to
	if enr.ClassID != asg.ClassID {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "ENROLLMENT_MISMATCH"})
	}

	// the session's teacher, the class's homeroom teacher, or an admin
	allowed, err := teachesAssignment(ident, asg.ID)
	if err != nil {
		return storageError(c, err)
	}
	if !allowed {
		allowed, err = canModerate(ident, asg.ClassID)
		if err != nil {
			return storageError(c, err)
		}
	}
	if !allowed {
		return forbidden(c)
	}

	rec, err := h.upsert(req.EnrollmentID, req.SessionID, req.Status)
	if err != nil {
		return storageError(c, err)
	}
	metrics.AttendanceMarked.WithLabelValues(req.Status).Inc()
	return c.JSON(http.StatusOK, viewOf(*rec))
}

func (h *AttendanceHandler) upsert(enrollmentID, sessionID uint, status string) (*models.AttendanceRecord, error) {
	var rec models.AttendanceRecord
	err := database.DB.
		Where("enrollment_id = ? AND session_id = ?", enrollmentID, sessionID).
		First(&rec).Error

	if err == gorm.ErrRecordNotFound {
		rec = models.AttendanceRecord{EnrollmentID: enrollmentID, SessionID: sessionID}
		if aerr := attendance.ApplyStatus(&rec, status); aerr != nil {
			return nil, aerr
		}
		cerr := database.DB.Create(&rec).Error
		if cerr == nil {
			return &rec, nil
		}
		if cerr != gorm.ErrDuplicatedKey {
			return nil, cerr
		}
		// lost the create race: fall through to the update path
		if err := database.DB.
			Where("enrollment_id = ? AND session_id = ?", enrollmentID, sessionID).
			First(&rec).Error; err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	// re-marking with the same status leaves any pending justification alone
	if rec.Status != status {
		if aerr := attendance.ApplyStatus(&rec, status); aerr != nil {
			return nil, aerr
		}
		if err := database.DB.Save(&rec).Error; err != nil {
			return nil, err
		}
	}
	return &rec, nil
}

// GET /teacher/attendance?session_id=  or  ?enrollment_id=&from=&to=
// Scoped to sessions the caller teaches or homerooms they own; admins see all.
func (h *AttendanceHandler) List(c echo.Context) error {
	ident, ok := middlewares.GetIdentity(c)
	if !ok {
		return forbidden(c)
	}

	tx := database.DB.Model(&models.AttendanceRecord{})

	if ident.Role != models.RoleAdmin {
		t, err := teacherForUser(ident.UserID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return c.JSON(http.StatusOK, []attendanceView{})
			}
			return storageError(c, err)
		}
		// sessions of assignments they teach, plus enrollments of homerooms they own
		taught := database.DB.Model(&models.ClassSession{}).Select("class_sessions.id").
			Joins("JOIN class_subject_assignments a ON a.id = class_sessions.assignment_id").
			Where("a.teacher_id = ?", t.ID)
		homeroom := database.DB.Model(&models.Enrollment{}).Select("enrollments.id").
			Joins("JOIN homeroom_classes hc ON hc.id = enrollments.class_id").
			Where("hc.teacher_id = ?", t.ID)
		tx = tx.Where("session_id IN (?) OR enrollment_id IN (?)", taught, homeroom)
	}

	if v := strings.TrimSpace(c.QueryParam("session_id")); v != "" {
		tx = tx.Where("session_id = ?", v)
	}
	if v := strings.TrimSpace(c.QueryParam("enrollment_id")); v != "" {
		tx = tx.Where("enrollment_id = ?", v)
	}

	var rows []models.AttendanceRecord
	if err := tx.Order("session_id ASC, enrollment_id ASC").Find(&rows).Error; err != nil {
		return storageError(c, err)
	}
	out := make([]attendanceView, 0, len(rows))
	for _, r := range rows {
		out = append(out, viewOf(r))
	}
	return c.JSON(http.StatusOK, out)
}
