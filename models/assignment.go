package models

import "time"

// ClassSubjectAssignment ties a homeroom class and a subject to the teacher who
// teaches it. Sessions and grade items hang off the assignment, not the class.
type ClassSubjectAssignment struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	ClassID   uint      `json:"class_id" gorm:"uniqueIndex:idx_class_subject;not null"`
	SubjectID uint      `json:"subject_id" gorm:"uniqueIndex:idx_class_subject;not null"`
	TeacherID uint      `json:"teacher_id" gorm:"index;not null"` // teaching teacher (teachers.id)
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
