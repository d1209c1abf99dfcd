package handlers

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schooldesk/schooldesk/database"
	"github.com/schooldesk/schooldesk/middlewares"
	"github.com/schooldesk/schooldesk/models"
)

func markBody(enrollmentID, sessionID uint, status string) string {
	return fmt.Sprintf(`{"enrollment_id":%d,"session_id":%d,"status":%q}`, enrollmentID, sessionID, status)
}

func TestMarkUpsertsSingleRecordPerPair(t *testing.T) {
	f := seed(t)
	h := NewAttendanceHandler()

	c, rec := jsonRequest(t, f.identHomeroom, http.MethodPost, "/teacher/attendance",
		markBody(f.Enrollment1.ID, f.Session.ID, models.AttendancePresent))
	require.NoError(t, h.Mark(c))
	require.Equal(t, http.StatusOK, rec.Code)

	c, rec = jsonRequest(t, f.identHomeroom, http.MethodPost, "/teacher/attendance",
		markBody(f.Enrollment1.ID, f.Session.ID, models.AttendanceAbsent))
	require.NoError(t, h.Mark(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var rows []models.AttendanceRecord
	require.NoError(t, database.DB.
		Where("enrollment_id = ? AND session_id = ?", f.Enrollment1.ID, f.Session.ID).
		Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, models.AttendanceAbsent, rows[0].Status)
	assert.Nil(t, rows[0].Approved)
}

func TestMarkRejectsUnknownStatus(t *testing.T) {
	f := seed(t)
	h := NewAttendanceHandler()

	c, rec := jsonRequest(t, f.identHomeroom, http.MethodPost, "/teacher/attendance",
		markBody(f.Enrollment1.ID, f.Session.ID, "X"))
	require.NoError(t, h.Mark(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp map[string]any
	decode(t, rec, &resp)
	assert.Equal(t, "INVALID_STATUS", resp["error"])
}

func TestMarkRequiresTeachingOrHomeroom(t *testing.T) {
	f := seed(t)
	h := NewAttendanceHandler()

	c, rec := jsonRequest(t, f.identOther, http.MethodPost, "/teacher/attendance",
		markBody(f.Enrollment1.ID, f.Session.ID, models.AttendancePresent))
	require.NoError(t, h.Mark(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestMarkRejectsCrossClassEnrollment(t *testing.T) {
	f := seed(t)
	h := NewAttendanceHandler()

	other := models.HomeroomClass{Name: "2/1", Code: "2A", TeacherID: f.OtherTeacher.ID}
	require.NoError(t, database.DB.Create(&other).Error)
	enr := models.Enrollment{StudentID: f.Student1.ID, ClassID: other.ID}
	require.NoError(t, database.DB.Create(&enr).Error)

	c, rec := jsonRequest(t, f.identHomeroom, http.MethodPost, "/teacher/attendance",
		markBody(enr.ID, f.Session.ID, models.AttendancePresent))
	require.NoError(t, h.Mark(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp map[string]any
	decode(t, rec, &resp)
	assert.Equal(t, "ENROLLMENT_MISMATCH", resp["error"])
}

func TestMarkAwayFromAbsentClearsJustification(t *testing.T) {
	f := seed(t)
	h := NewAttendanceHandler()

	seedRec := models.AttendanceRecord{
		EnrollmentID:  f.Enrollment1.ID,
		SessionID:     f.Session.ID,
		Status:        models.AttendanceAbsent,
		Justification: "flu",
	}
	require.NoError(t, database.DB.Create(&seedRec).Error)

	c, rec := jsonRequest(t, f.identHomeroom, http.MethodPost, "/teacher/attendance",
		markBody(f.Enrollment1.ID, f.Session.ID, models.AttendancePresent))
	require.NoError(t, h.Mark(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var got models.AttendanceRecord
	require.NoError(t, database.DB.First(&got, seedRec.ID).Error)
	assert.Equal(t, models.AttendancePresent, got.Status)
	assert.Empty(t, got.Justification)
	assert.Nil(t, got.Approved)
}

// submitForm posts the multipart justification form; filename may be empty
// for a text-only submission.
func submitForm(t *testing.T, h *JustificationHandler, ident middlewares.Identity, recordID uint, text, filename, content string) (*bytes.Buffer, int) {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	require.NoError(t, w.WriteField("text", text))
	if filename != "" {
		fw, err := w.CreateFormFile("document", filename)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	c, rec := request(t, ident, http.MethodPost,
		fmt.Sprintf("/portal/attendance/%d/justification", recordID), &body, w.FormDataContentType())
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(recordID))
	require.NoError(t, h.Submit(c))
	return rec.Body, rec.Code
}

func TestJustificationWorkflow(t *testing.T) {
	f := seed(t)
	blobs := newBlobs(t)
	ah := NewAttendanceHandler()
	jh := NewJustificationHandler(blobs, 1<<20)

	// the homeroom teacher records the absence
	c, rec := jsonRequest(t, f.identHomeroom, http.MethodPost, "/teacher/attendance",
		markBody(f.Enrollment1.ID, f.Session.ID, models.AttendanceAbsent))
	require.NoError(t, ah.Mark(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var ar models.AttendanceRecord
	require.NoError(t, database.DB.
		Where("enrollment_id = ? AND session_id = ?", f.Enrollment1.ID, f.Session.ID).
		First(&ar).Error)

	// the student submits with a document
	_, code := submitForm(t, jh, f.identStudent1, ar.ID, "doctor visit", "note.pdf", "%PDF-1.4")
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, database.DB.First(&ar, ar.ID).Error)
	assert.Equal(t, "doctor visit", ar.Justification)
	assert.Equal(t, "note.pdf", ar.DocumentName)
	assert.NotEmpty(t, ar.DocumentRef)
	firstRef := ar.DocumentRef

	// the homeroom teacher rejects with a reason
	c, rec = jsonRequest(t, f.identHomeroom, http.MethodPost,
		fmt.Sprintf("/teacher/attendance/%d/decision", ar.ID),
		`{"approve":false,"reason":"note is not signed"}`)
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(ar.ID))
	require.NoError(t, jh.Decide(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, database.DB.First(&ar, ar.ID).Error)
	require.NotNil(t, ar.Approved)
	assert.False(t, *ar.Approved)
	assert.Equal(t, "note is not signed", ar.RejectReason)

	// text-only resubmission: back to pending, document kept, reason cleared
	_, code = submitForm(t, jh, f.identStudent1, ar.ID, "signed note attached at school office", "", "")
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, database.DB.First(&ar, ar.ID).Error)
	assert.Nil(t, ar.Approved)
	assert.Empty(t, ar.RejectReason)
	assert.Equal(t, firstRef, ar.DocumentRef)

	// approval is terminal
	c, rec = jsonRequest(t, f.identHomeroom, http.MethodPost,
		fmt.Sprintf("/teacher/attendance/%d/decision", ar.ID), `{"approve":true}`)
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(ar.ID))
	require.NoError(t, jh.Decide(c))
	require.Equal(t, http.StatusOK, rec.Code)

	body, code := submitForm(t, jh, f.identStudent1, ar.ID, "one more try", "", "")
	require.Equal(t, http.StatusConflict, code)
	assert.Contains(t, body.String(), "ALREADY_APPROVED")
}

func TestJustificationScopeHidesForeignRecords(t *testing.T) {
	f := seed(t)
	jh := NewJustificationHandler(newBlobs(t), 1<<20)

	ar := models.AttendanceRecord{
		EnrollmentID: f.Enrollment2.ID,
		SessionID:    f.Session.ID,
		Status:       models.AttendanceAbsent,
	}
	require.NoError(t, database.DB.Create(&ar).Error)

	// student1 probing student2's record gets the same answer as for a
	// record that does not exist
	body, code := submitForm(t, jh, f.identStudent1, ar.ID, "was sick", "", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Contains(t, body.String(), "NOT_FOUND")

	// the parent linked to student1 cannot reach it either
	_, code = submitForm(t, jh, f.identParent, ar.ID, "was sick", "", "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestDecideRequiresHomeroomAuthority(t *testing.T) {
	f := seed(t)
	jh := NewJustificationHandler(newBlobs(t), 1<<20)

	ar := models.AttendanceRecord{
		EnrollmentID:  f.Enrollment1.ID,
		SessionID:     f.Session.ID,
		Status:        models.AttendanceAbsent,
		Justification: "flu",
	}
	require.NoError(t, database.DB.Create(&ar).Error)

	c, rec := jsonRequest(t, f.identOther, http.MethodPost,
		fmt.Sprintf("/teacher/attendance/%d/decision", ar.ID), `{"approve":true}`)
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(ar.ID))
	require.NoError(t, jh.Decide(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// rejecting without a reason is refused
	c, rec = jsonRequest(t, f.identHomeroom, http.MethodPost,
		fmt.Sprintf("/teacher/attendance/%d/decision", ar.ID), `{"approve":false}`)
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(ar.ID))
	require.NoError(t, jh.Decide(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp map[string]any
	decode(t, rec, &resp)
	assert.Equal(t, "REJECT_REASON_REQUIRED", resp["error"])
}

func TestPendingCountScopedToHomeroom(t *testing.T) {
	f := seed(t)
	jh := NewJustificationHandler(newBlobs(t), 1<<20)

	require.NoError(t, database.DB.Create(&models.AttendanceRecord{
		EnrollmentID: f.Enrollment1.ID, SessionID: f.Session.ID,
		Status: models.AttendanceAbsent, Justification: "flu",
	}).Error)
	// absent but nothing submitted yet: not pending
	sess2 := models.ClassSession{AssignmentID: f.Assignment.ID, Date: "2026-02-03", Label: "Period 1"}
	require.NoError(t, database.DB.Create(&sess2).Error)
	require.NoError(t, database.DB.Create(&models.AttendanceRecord{
		EnrollmentID: f.Enrollment2.ID, SessionID: sess2.ID,
		Status: models.AttendanceAbsent,
	}).Error)

	count := func(ident middlewares.Identity) float64 {
		c, rec := jsonRequest(t, ident, http.MethodGet, "/teacher/justifications/pending-count", "")
		require.NoError(t, jh.PendingCount(c))
		require.Equal(t, http.StatusOK, rec.Code)
		var resp map[string]any
		decode(t, rec, &resp)
		return resp["count"].(float64)
	}

	assert.Equal(t, 1.0, count(f.identHomeroom))
	assert.Equal(t, 0.0, count(f.identOther))
	assert.Equal(t, 1.0, count(f.identAdmin))
}
