package web

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/scan-registration/internal/models"
	"github.com/noah-isme/scan-registration/pkg/flash"
)

func TestTemplatesRenderEveryPage(t *testing.T) {
	tmpl := Templates()
	page := Page{
		Title:    "Students",
		Username: "admin",
		Notice:   &flash.Notice{Kind: flash.KindSuccess, Message: "ok"},
		Students: []models.Student{{StudentID: "124BTEX2008", Name: "John Doe", RegistrationStatus: true}},
		Logs:     []models.ScanLog{{StudentID: "999NOPE", StudentName: "unknown", Status: models.ScanStatusNotFound}},
	}
	for _, name := range []string{PageLogin, PageIndex, PageManualEntry, PageStudents, PageScanLogs} {
		var buf bytes.Buffer
		require.NoError(t, tmpl.ExecuteTemplate(&buf, name, page), name)
		assert.Contains(t, buf.String(), "</html>", name)
	}
}

func TestStudentsPageEscapesNames(t *testing.T) {
	var buf bytes.Buffer
	err := Templates().ExecuteTemplate(&buf, PageStudents, Page{
		Username: "admin",
		Students: []models.Student{{StudentID: "x", Name: "<script>alert(1)</script>"}},
	})
	require.NoError(t, err)
	assert.NotContains(t, buf.String(), "<script>alert(1)</script>")
	assert.Contains(t, buf.String(), "&lt;script&gt;")
}
