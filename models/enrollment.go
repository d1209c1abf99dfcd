package models

import "time"

// Enrollment binds a student to a homeroom class. All grading and attendance
// records key off the enrollment id, so a student's records are scoped per
// class membership.
type Enrollment struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	StudentID uint      `json:"student_id" gorm:"uniqueIndex:idx_student_class;not null"`
	ClassID   uint      `json:"class_id" gorm:"uniqueIndex:idx_student_class;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
