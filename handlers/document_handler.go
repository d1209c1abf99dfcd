package handlers

import (
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/schooldesk/schooldesk/blob"
	"github.com/schooldesk/schooldesk/database"
	"github.com/schooldesk/schooldesk/middlewares"
	"github.com/schooldesk/schooldesk/models"
)

// DocumentHandler serves uploaded justification documents to the approval
// authority.
type DocumentHandler struct {
	Blobs blob.Store
}

func NewDocumentHandler(blobs blob.Store) *DocumentHandler {
	return &DocumentHandler{Blobs: blobs}
}

// mimeByExt is the download allow-list; anything else is served as an opaque
// byte stream.
var mimeByExt = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".txt":  "text/plain",
}

// MIMEForFilename maps a filename extension to its allow-listed content type.
func MIMEForFilename(name string) string {
	if m, ok := mimeByExt[strings.ToLower(path.Ext(name))]; ok {
		return m
	}
	return "application/octet-stream"
}

// SanitizeFilename reduces a client-supplied filename to [A-Za-z0-9._-] and
// strips leading dots, closing the path-traversal door.
func SanitizeFilename(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '_', r == '-':
			b.WriteRune(r)
		}
	}
	return strings.TrimLeft(b.String(), ".")
}

// GET /teacher/attendance/:id/document?csrf_token=...
// Requires the record's class's homeroom teacher (or an admin) and a valid
// CSRF token. Missing and forbidden records are indistinguishable.
func (h *DocumentHandler) Download(c echo.Context) error {
	ident, ok := middlewares.GetIdentity(c)
	if !ok {
		return forbidden(c)
	}
	if !middlewares.CSRFOK(c.QueryParam("csrf_token"), ident.CSRFToken) {
		return c.JSON(http.StatusForbidden, map[string]any{"error": "CSRF_TOKEN_MISMATCH"})
	}
	id, ok := uintParam(c, "id")
	if !ok {
		return notFound(c)
	}

	var rec models.AttendanceRecord
	if err := database.DB.First(&rec, id).Error; err != nil {
		return storageError(c, err)
	}
	var enr models.Enrollment
	if err := database.DB.First(&enr, rec.EnrollmentID).Error; err != nil {
		return storageError(c, err)
	}

	allowed, err := canModerate(ident, enr.ClassID)
	if err != nil {
		return storageError(c, err)
	}
	if !allowed || rec.DocumentRef == "" {
		return notFound(c)
	}

	var student models.Student
	if err := database.DB.First(&student, enr.StudentID).Error; err != nil {
		return storageError(c, err)
	}
	var class models.HomeroomClass
	if err := database.DB.First(&class, enr.ClassID).Error; err != nil {
		return storageError(c, err)
	}

	body, err := h.Blobs.Retrieve(rec.DocumentRef)
	if err == blob.ErrNotFound {
		return notFound(c)
	}
	if err != nil {
		return storageError(c, err)
	}
	defer body.Close()

	// download name derives from student + class, not from client input
	name := SanitizeFilename(fmt.Sprintf("%s_%s_%s%s",
		student.FirstName, student.LastName, class.Code, path.Ext(rec.DocumentName)))
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename=%q`, name))
	c.Response().Header().Set(echo.HeaderContentType, MIMEForFilename(rec.DocumentName))
	c.Response().WriteHeader(http.StatusOK)
	_, err = io.Copy(c.Response(), body)
	return err
}
