package models

import "time"

// ClassSession is one dated occurrence ("period") of a class-subject assignment.
type ClassSession struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	AssignmentID uint      `json:"assignment_id" gorm:"uniqueIndex:idx_assignment_period;not null"`
	Date         string    `json:"date" gorm:"size:10;uniqueIndex:idx_assignment_period;not null"` // YYYY-MM-DD
	Label        string    `json:"label" gorm:"size:40;uniqueIndex:idx_assignment_period;not null"` // e.g. "Period 3"
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
