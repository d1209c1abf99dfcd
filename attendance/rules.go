// Package attendance holds the approval state machine for absence
// justifications, independent of storage and transport.
package attendance

import (
	"errors"
	"strings"

	"github.com/schooldesk/schooldesk/models"
)

var (
	ErrBadStatus       = errors.New("attendance: unknown status code")
	ErrNotAbsent       = errors.New("attendance: record is not an absence")
	ErrAlreadyApproved = errors.New("attendance: justification already approved")
	ErrReasonRequired  = errors.New("attendance: rejection requires a reason")
)

// Approval states as reported to clients.
const (
	StateNone     = "none"     // status != A, no approval applies
	StatePending  = "pending"  // absent, awaiting decision
	StateApproved = "approved"
	StateRejected = "rejected"
)

// ValidStatus reports whether s is one of the P/A/L codes.
func ValidStatus(s string) bool {
	switch s {
	case models.AttendancePresent, models.AttendanceAbsent, models.AttendanceLate:
		return true
	}
	return false
}

// State derives the approval state of a record.
func State(rec *models.AttendanceRecord) string {
	if rec.Status != models.AttendanceAbsent {
		return StateNone
	}
	switch {
	case rec.Approved == nil:
		return StatePending
	case *rec.Approved:
		return StateApproved
	default:
		return StateRejected
	}
}

// ApplyStatus sets the status on a record. Moving away from Absent is
// destructive: justification text, document reference, approval and reject
// reason only carry data while the record is an absence.
func ApplyStatus(rec *models.AttendanceRecord, status string) error {
	if !ValidStatus(status) {
		return ErrBadStatus
	}
	rec.Status = status
	if status != models.AttendanceAbsent {
		rec.Justification = ""
		rec.DocumentRef = ""
		rec.DocumentName = ""
		rec.Approved = nil
		rec.RejectReason = ""
	}
	return nil
}

// SubmitJustification records (or re-records) the student's explanation for an
// absence. Allowed while the record is pending or was rejected; an approved
// submission is terminal. Resubmission overwrites the prior text and document
// and moves the record back to pending.
func SubmitJustification(rec *models.AttendanceRecord, text, documentRef, documentName string) error {
	if rec.Status != models.AttendanceAbsent {
		return ErrNotAbsent
	}
	if rec.Approved != nil && *rec.Approved {
		return ErrAlreadyApproved
	}
	rec.Justification = strings.TrimSpace(text)
	rec.DocumentRef = documentRef
	rec.DocumentName = documentName
	rec.Approved = nil
	rec.RejectReason = ""
	return nil
}

// Decide records the homeroom teacher's (or an admin's) decision. Deciding an
// already-decided record overwrites the prior decision; rejections carry a
// mandatory reason, approvals clear any prior one.
func Decide(rec *models.AttendanceRecord, approve bool, reason string) error {
	if rec.Status != models.AttendanceAbsent {
		return ErrNotAbsent
	}
	reason = strings.TrimSpace(reason)
	if !approve && reason == "" {
		return ErrReasonRequired
	}
	v := approve
	rec.Approved = &v
	if approve {
		rec.RejectReason = ""
	} else {
		rec.RejectReason = reason
	}
	return nil
}
