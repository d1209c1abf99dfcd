package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/schooldesk/schooldesk/attendance"
	"github.com/schooldesk/schooldesk/blob"
	"github.com/schooldesk/schooldesk/database"
	"github.com/schooldesk/schooldesk/metrics"
	"github.com/schooldesk/schooldesk/middlewares"
	"github.com/schooldesk/schooldesk/models"
)

// JustificationHandler runs the absence-justification workflow: students and
// guardians submit explanations, the homeroom teacher (or an admin) decides.
type JustificationHandler struct {
	Blobs          blob.Store
	MaxUploadBytes int64
}

func NewJustificationHandler(blobs blob.Store, maxUploadBytes int64) *JustificationHandler {
	return &JustificationHandler{Blobs: blobs, MaxUploadBytes: maxUploadBytes}
}

// ownsRecord reports whether the caller may submit a justification for the
// record: the student it belongs to, or a linked guardian.
func (h *JustificationHandler) ownsRecord(ident middlewares.Identity, enr *models.Enrollment) (bool, error) {
	switch ident.Role {
	case models.RoleStudent:
		s, err := studentForUser(ident.UserID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return false, nil
			}
			return false, err
		}
		return s.ID == enr.StudentID, nil
	case models.RoleParent:
		p, err := parentForUser(ident.UserID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return false, nil
			}
			return false, err
		}
		ids, err := parentStudentIDs(p.ID)
		if err != nil {
			return false, err
		}
		for _, id := range ids {
			if id == enr.StudentID {
				return true, nil
			}
		}
		return false, nil
	case models.RoleAdmin:
		return true, nil
	}
	return false, nil
}

// POST /portal/attendance/:id/justification  (multipart form: text, document?)
// Allowed while the absence is pending or was rejected; resubmission
// overwrites the prior text and document and moves the record back to pending.
func (h *JustificationHandler) Submit(c echo.Context) error {
	ident, ok := middlewares.GetIdentity(c)
	if !ok {
		return forbidden(c)
	}
	id, ok := uintParam(c, "id")
	if !ok {
		return notFound(c)
	}

	var rec models.AttendanceRecord
	if err := database.DB.First(&rec, id).Error; err != nil {
		return storageError(c, err)
	}
	var enr models.Enrollment
	if err := database.DB.First(&enr, rec.EnrollmentID).Error; err != nil {
		return storageError(c, err)
	}

	owns, err := h.ownsRecord(ident, &enr)
	if err != nil {
		return storageError(c, err)
	}
	if !owns {
		// out-of-scope records look identical to missing ones
		return notFound(c)
	}

	text := strings.TrimSpace(c.FormValue("text"))
	if text == "" {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "JUSTIFICATION_REQUIRED"})
	}

	// optional document; the upload handle is closed on every exit path
	docRef, docName := "", ""
	if fh, err := c.FormFile("document"); err == nil && fh != nil {
		if fh.Size > h.MaxUploadBytes {
			return c.JSON(http.StatusRequestEntityTooLarge, map[string]any{"error": "FILE_TOO_LARGE"})
		}
		src, err := fh.Open()
		if err != nil {
			return storageError(c, err)
		}
		docRef, err = h.Blobs.Store(src)
		src.Close()
		if err != nil {
			return storageError(c, err)
		}
		docName = SanitizeFilename(fh.Filename)
	}

	oldRef, oldName := rec.DocumentRef, rec.DocumentName
	if err := attendance.SubmitJustification(&rec, text, docRef, docName); err != nil {
		// the freshly stored blob is unreachable if the transition is refused
		if docRef != "" {
			_ = h.Blobs.Remove(docRef)
		}
		switch err {
		case attendance.ErrNotAbsent:
			return c.JSON(http.StatusConflict, map[string]any{"error": "NOT_ABSENT"})
		case attendance.ErrAlreadyApproved:
			return c.JSON(http.StatusConflict, map[string]any{"error": "ALREADY_APPROVED"})
		}
		return storageError(c, err)
	}
	if docRef == "" {
		// text-only resubmission keeps the previously uploaded document
		rec.DocumentRef = oldRef
		rec.DocumentName = oldName
	} else if oldRef != "" && oldRef != docRef {
		_ = h.Blobs.Remove(oldRef)
	}

	if err := database.DB.Save(&rec).Error; err != nil {
		return storageError(c, err)
	}
	return c.JSON(http.StatusOK, viewOf(rec))
}

type decisionReq struct {
	Approve bool   `json:"approve"`
	Reason  string `json:"reason"`
}

// POST /teacher/attendance/:id/decision
// Only the homeroom teacher of the record's class (or an admin). Deciding an
// already-decided record overwrites the prior decision.
func (h *JustificationHandler) Decide(c echo.Context) error {
	ident, ok := middlewares.GetIdentity(c)
	if !ok {
		return forbidden(c)
	}
	id, ok := uintParam(c, "id")
	if !ok {
		return notFound(c)
	}

	var rec models.AttendanceRecord
	if err := database.DB.First(&rec, id).Error; err != nil {
		return storageError(c, err)
	}
	var enr models.Enrollment
	if err := database.DB.First(&enr, rec.EnrollmentID).Error; err != nil {
		return storageError(c, err)
	}

	allowed, err := canModerate(ident, enr.ClassID)
	if err != nil {
		return storageError(c, err)
	}
	if !allowed {
		return notFound(c)
	}

	var req decisionReq
	if err := c.Bind(&req); err != nil {
		return bindError(c)
	}

	if err := attendance.Decide(&rec, req.Approve, req.Reason); err != nil {
		switch err {
		case attendance.ErrNotAbsent:
			return c.JSON(http.StatusConflict, map[string]any{"error": "NOT_ABSENT"})
		case attendance.ErrReasonRequired:
			return c.JSON(http.StatusBadRequest, map[string]any{"error": "REJECT_REASON_REQUIRED"})
		}
		return storageError(c, err)
	}

	if err := database.DB.Save(&rec).Error; err != nil {
		return storageError(c, err)
	}
	if req.Approve {
		metrics.JustificationDecisions.WithLabelValues("approved").Inc()
	} else {
		metrics.JustificationDecisions.WithLabelValues("rejected").Inc()
	}
	return c.JSON(http.StatusOK, viewOf(rec))
}

// GET /teacher/justifications/pending-count
// Submitted justifications awaiting a decision in the caller's homerooms.
func (h *JustificationHandler) PendingCount(c echo.Context) error {
	ident, ok := middlewares.GetIdentity(c)
	if !ok {
		return forbidden(c)
	}

	tx := database.DB.Model(&models.AttendanceRecord{}).
		Where("status = ? AND approved IS NULL AND justification <> ''", models.AttendanceAbsent)

	if ident.Role != models.RoleAdmin {
		t, err := teacherForUser(ident.UserID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return c.JSON(http.StatusOK, map[string]any{"count": 0})
			}
			return storageError(c, err)
		}
		tx = tx.Where("enrollment_id IN (?)",
			database.DB.Model(&models.Enrollment{}).Select("enrollments.id").
				Joins("JOIN homeroom_classes hc ON hc.id = enrollments.class_id").
				Where("hc.teacher_id = ?", t.ID))
	}

	var n int64
	if err := tx.Count(&n).Error; err != nil {
		return storageError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"count": n})
}
