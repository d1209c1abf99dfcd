package models

import "time"

type Student struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	UserID      uint       `json:"user_id" gorm:"uniqueIndex;not null"` // portal account (users.id)
	StudentCode string     `json:"student_code" gorm:"size:20;uniqueIndex;not null"`
	FirstName   string     `json:"first_name" gorm:"size:50;not null"`
	LastName    string     `json:"last_name" gorm:"size:50;not null"`
	BirthDate   *time.Time `json:"birth_date,omitempty"`
	ClassGroup  string     `json:"class_group" gorm:"size:20"` // class-group code, e.g. "1A"
	Address     string     `json:"address" gorm:"type:text"`
	Phone       string     `json:"phone" gorm:"size:15"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
