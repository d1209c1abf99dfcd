package models

import "time"

type Teacher struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	UserID      uint      `json:"user_id" gorm:"uniqueIndex;not null"` // portal account (users.id)
	TeacherCode string    `json:"teacher_code" gorm:"size:20;uniqueIndex;not null"`
	FirstName   string    `json:"first_name" gorm:"size:50;not null"`
	LastName    string    `json:"last_name" gorm:"size:50;not null"`
	Phone       string    `json:"phone" gorm:"size:15"`
	Email       string    `json:"email" gorm:"size:120"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
