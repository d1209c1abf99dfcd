package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/schooldesk/schooldesk/config"
	"github.com/schooldesk/schooldesk/database"
	"github.com/schooldesk/schooldesk/models"
	"github.com/schooldesk/schooldesk/session"
	"github.com/schooldesk/schooldesk/tokens"
)

const testSecret = "test-secret"

func newSessionManager() *session.Manager {
	cfg := &config.Config{
		SessionIdle:       30 * time.Minute,
		SessionRotate:     10 * time.Minute,
		SessionCookieName: "schooldesk_session",
	}
	return session.NewManager(session.NewMemoryStore(), cfg)
}

func TestLogin(t *testing.T) {
	f := seed(t)
	h := NewAuthHandler(newSessionManager(), testSecret)

	hash, err := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, database.DB.Model(&models.User{}).
		Where("id = ?", f.Admin.ID).Update("password_hash", string(hash)).Error)

	c, rec := jsonRequest(t, f.identAdmin, http.MethodPost, "/auth/login?next=/dashboard",
		`{"username":"admin","password":"hunter22"}`)
	require.NoError(t, h.Login(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	decode(t, rec, &resp)
	assert.NotEmpty(t, resp["csrf_token"])
	assert.Equal(t, "/dashboard", resp["next"])
	assert.Equal(t, "admin", resp["user"].(map[string]any)["username"])

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "schooldesk_session", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	// wrong password looks the same as an unknown account
	c, rec = jsonRequest(t, f.identAdmin, http.MethodPost, "/auth/login",
		`{"username":"admin","password":"wrong"}`)
	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	c, rec = jsonRequest(t, f.identAdmin, http.MethodPost, "/auth/login",
		`{"username":"nobody","password":"hunter22"}`)
	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginRejectsUnactivatedAndDeactivated(t *testing.T) {
	f := seed(t)
	h := NewAuthHandler(newSessionManager(), testSecret)

	// provisioned but never activated: empty hash never matches
	fresh := models.User{Username: "fresh", Role: models.RoleStudent, Active: true}
	require.NoError(t, database.DB.Create(&fresh).Error)
	c, rec := jsonRequest(t, f.identAdmin, http.MethodPost, "/auth/login",
		`{"username":"fresh","password":"anything"}`)
	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	hash, err := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)
	require.NoError(t, err)
	off := models.User{Username: "gone", Role: models.RoleTeacher, Active: false, PasswordHash: string(hash)}
	require.NoError(t, database.DB.Create(&off).Error)
	c, rec = jsonRequest(t, f.identAdmin, http.MethodPost, "/auth/login",
		`{"username":"gone","password":"hunter22"}`)
	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSetPasswordWithToken(t *testing.T) {
	f := seed(t)
	h := NewAuthHandler(newSessionManager(), testSecret)

	fresh := models.User{Username: "fresh", Role: models.RoleStudent, Active: true}
	require.NoError(t, database.DB.Create(&fresh).Error)
	token, err := tokens.NewSetPasswordToken(testSecret, fresh.ID, time.Hour)
	require.NoError(t, err)

	c, rec := jsonRequest(t, f.identAdmin, http.MethodPost, "/auth/set-password",
		`{"token":"`+token+`","password":"brand-new-pass"}`)
	require.NoError(t, h.SetPassword(c))
	require.Equal(t, http.StatusOK, rec.Code)

	// the new password now logs in
	c, rec = jsonRequest(t, f.identAdmin, http.MethodPost, "/auth/login",
		`{"username":"fresh","password":"brand-new-pass"}`)
	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	// garbage and foreign-secret tokens are refused
	c, rec = jsonRequest(t, f.identAdmin, http.MethodPost, "/auth/set-password",
		`{"token":"not-a-token","password":"brand-new-pass"}`)
	require.NoError(t, h.SetPassword(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
