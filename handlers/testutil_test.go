package handlers

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/schooldesk/schooldesk/blob"
	"github.com/schooldesk/schooldesk/database"
	"github.com/schooldesk/schooldesk/middlewares"
	"github.com/schooldesk/schooldesk/models"
)

// fixture is a minimal school: one homeroom class taught by homeroomTeacher,
// one subject assignment, two enrolled students, a parent linked to student1.
type fixture struct {
	Admin           models.User
	HomeroomTeacher models.Teacher
	OtherTeacher    models.Teacher
	Student1        models.Student
	Student2        models.Student
	Parent          models.Parent
	Class           models.HomeroomClass
	Subject         models.Subject
	Assignment      models.ClassSubjectAssignment
	Enrollment1     models.Enrollment
	Enrollment2     models.Enrollment
	Session         models.ClassSession

	identAdmin    middlewares.Identity
	identHomeroom middlewares.Identity
	identOther    middlewares.Identity
	identStudent1 middlewares.Identity
	identStudent2 middlewares.Identity
	identParent   middlewares.Identity
}

func setupDB(t *testing.T) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// a single connection keeps every query on the same in-memory database
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))
	database.DB = db
}

func seed(t *testing.T) *fixture {
	t.Helper()
	setupDB(t)
	db := database.DB

	f := &fixture{}

	mkUser := func(username, role string) models.User {
		u := models.User{Username: username, Role: role, Name: username, Active: true, PasswordHash: "x"}
		require.NoError(t, db.Create(&u).Error)
		return u
	}

	f.Admin = mkUser("admin", models.RoleAdmin)
	uHomeroom := mkUser("t.homeroom", models.RoleTeacher)
	uOther := mkUser("t.other", models.RoleTeacher)
	uStudent1 := mkUser("s.one", models.RoleStudent)
	uStudent2 := mkUser("s.two", models.RoleStudent)
	uParent := mkUser("p.one", models.RoleParent)

	f.HomeroomTeacher = models.Teacher{UserID: uHomeroom.ID, TeacherCode: "T001", FirstName: "Helen", LastName: "Roome"}
	require.NoError(t, db.Create(&f.HomeroomTeacher).Error)
	f.OtherTeacher = models.Teacher{UserID: uOther.ID, TeacherCode: "T002", FirstName: "Oscar", LastName: "Ther"}
	require.NoError(t, db.Create(&f.OtherTeacher).Error)

	f.Student1 = models.Student{UserID: uStudent1.ID, StudentCode: "S001", FirstName: "Ana", LastName: "Bell", ClassGroup: "1A"}
	require.NoError(t, db.Create(&f.Student1).Error)
	f.Student2 = models.Student{UserID: uStudent2.ID, StudentCode: "S002", FirstName: "Ben", LastName: "Cole", ClassGroup: "1A"}
	require.NoError(t, db.Create(&f.Student2).Error)

	f.Parent = models.Parent{UserID: uParent.ID, FirstName: "Pia", LastName: "Bell"}
	require.NoError(t, db.Create(&f.Parent).Error)
	require.NoError(t, db.Model(&f.Parent).Association("Students").Append(&f.Student1))

	f.Subject = models.Subject{Name: "Mathematics"}
	require.NoError(t, db.Create(&f.Subject).Error)

	f.Class = models.HomeroomClass{Name: "1/1", Code: "1A", AcademicYear: "2026", TeacherID: f.HomeroomTeacher.ID}
	require.NoError(t, db.Create(&f.Class).Error)

	f.Assignment = models.ClassSubjectAssignment{ClassID: f.Class.ID, SubjectID: f.Subject.ID, TeacherID: f.HomeroomTeacher.ID}
	require.NoError(t, db.Create(&f.Assignment).Error)

	f.Enrollment1 = models.Enrollment{StudentID: f.Student1.ID, ClassID: f.Class.ID}
	require.NoError(t, db.Create(&f.Enrollment1).Error)
	f.Enrollment2 = models.Enrollment{StudentID: f.Student2.ID, ClassID: f.Class.ID}
	require.NoError(t, db.Create(&f.Enrollment2).Error)

	f.Session = models.ClassSession{AssignmentID: f.Assignment.ID, Date: "2026-02-02", Label: "Period 3"}
	require.NoError(t, db.Create(&f.Session).Error)

	ident := func(u models.User) middlewares.Identity {
		return middlewares.Identity{UserID: u.ID, Username: u.Username, Role: u.Role, CSRFToken: "csrf", SessionID: "sid"}
	}
	f.identAdmin = ident(f.Admin)
	f.identHomeroom = ident(uHomeroom)
	f.identOther = ident(uOther)
	f.identStudent1 = ident(uStudent1)
	f.identStudent2 = ident(uStudent2)
	f.identParent = ident(uParent)

	return f
}

func newBlobs(t *testing.T) *blob.FSStore {
	t.Helper()
	s, err := blob.NewFSStore(t.TempDir())
	require.NoError(t, err)
	return s
}

// request builds an echo context carrying the given identity.
func request(t *testing.T, ident middlewares.Identity, method, target string, body io.Reader, contentType string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	middlewares.SetIdentity(c, ident)
	return c, rec
}

func jsonRequest(t *testing.T, ident middlewares.Identity, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	return request(t, ident, method, target, strings.NewReader(body), echo.MIMEApplicationJSON)
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
}
