package models

import "time"

// GradeItem is a gradable event (exam, homework, ...) of an assignment.
// Weight is optional and defaults to 1 in the aggregation math.
type GradeItem struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	AssignmentID uint      `json:"assignment_id" gorm:"index;not null"`
	Title        string    `json:"title" gorm:"size:120;not null"`
	MaxPoints    float64   `json:"max_points" gorm:"not null"`
	Weight       *float64  `json:"weight,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Grade is the single scored value for an (enrollment, grade item) pair.
type Grade struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	EnrollmentID uint      `json:"enrollment_id" gorm:"uniqueIndex:idx_enrollment_item;not null"`
	GradeItemID  uint      `json:"grade_item_id" gorm:"uniqueIndex:idx_enrollment_item;not null"`
	Points       float64   `json:"points" gorm:"not null"`
	Comment      string    `json:"comment" gorm:"type:text"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
