package models

import "time"

// Attendance status codes as stored and transmitted.
const (
	AttendancePresent = "P"
	AttendanceAbsent  = "A"
	AttendanceLate    = "L"
)

// AttendanceRecord is the single status entry for an (enrollment, session)
// pair. Justification, document and approval fields only carry data while
// Status is "A"; any status change away from "A" clears them.
//
// Approved is tri-state: nil = pending (or no approval applicable),
// true = approved, false = rejected (RejectReason required).
type AttendanceRecord struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	EnrollmentID  uint      `json:"enrollment_id" gorm:"uniqueIndex:idx_enrollment_session;not null"`
	SessionID     uint      `json:"session_id" gorm:"uniqueIndex:idx_enrollment_session;not null"`
	Status        string    `json:"status" gorm:"size:1;not null"`
	Justification string    `json:"justification" gorm:"type:text"`
	DocumentRef   string    `json:"document_ref" gorm:"size:64"`    // blob store reference
	DocumentName  string    `json:"document_name" gorm:"size:255"`  // sanitized original filename (keeps the extension)
	Approved      *bool     `json:"approved"`
	RejectReason  string    `json:"reject_reason" gorm:"type:text"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
