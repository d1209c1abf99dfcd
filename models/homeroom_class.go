package models

import "time"

// HomeroomClass is a named group of students. Its homeroom teacher is the
// approval authority for absence justifications of every student enrolled in it.
type HomeroomClass struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name" gorm:"size:40;uniqueIndex;not null"` // e.g. "1/1"
	Code         string    `json:"code" gorm:"size:20;not null"`             // short code used in document filenames
	AcademicYear string    `json:"academic_year" gorm:"size:10"`
	TeacherID    uint      `json:"teacher_id" gorm:"index;not null"` // homeroom teacher (teachers.id)
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
