package database

import (
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/schooldesk/schooldesk/config"
	"github.com/schooldesk/schooldesk/models"
)

var DB *gorm.DB

func Connect(cfg *config.Config) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		TranslateError: true, // map driver duplicate-key errors to gorm.ErrDuplicatedKey
	})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	DB = db

	if err := Migrate(DB); err != nil {
		log.Fatalf("auto migrate failed: %v", err)
	}
}

// Migrate creates or updates the schema. The unique indexes on
// (enrollment_id, session_id) and (enrollment_id, grade_item_id) are what
// serialize concurrent submissions into one create plus updates.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Teacher{},
		&models.Student{},
		&models.Parent{},
		&models.Subject{},
		&models.HomeroomClass{},
		&models.ClassSubjectAssignment{},
		&models.Enrollment{},
		&models.ClassSession{},
		&models.GradeItem{},
		&models.Grade{},
		&models.AttendanceRecord{},
	)
}
