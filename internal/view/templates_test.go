package view

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erpdesk/erpdesk/internal/records"
	"github.com/erpdesk/erpdesk/internal/shared"
)

func TestNewEngine(t *testing.T) {
	engine, err := NewEngine()
	assert.NoError(t, err, "Templates should parse without error")
	assert.NotNil(t, engine)
}

func TestEveryPageRendersWithEmptyData(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	for _, name := range []string{"pages/login.html", "pages/register.html"} {
		rec := httptest.NewRecorder()
		err := engine.Render(rec, name, TemplateData{
			Title: "Sign in",
			Flash: &shared.FlashMessage{Kind: "error", Message: "Bad things"},
			Data:  struct {
				Form   struct{ Email, Username string }
				Errors map[string]string
			}{Errors: map[string]string{"email": "Please enter a valid email address"}},
		})
		require.NoError(t, err, name)
		assert.Contains(t, rec.Body.String(), "Bad things", name)
	}
}

func TestNavigationListsPinnedSheets(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	err = engine.Render(rec, "pages/confirm_delete.html", TemplateData{
		Title:         "Delete sale",
		Authenticated: true,
		UserName:      "owner",
		CurrentPath:   "/sales/1/delete",
		LastUpdated:   time.Date(2024, 6, 1, 8, 30, 0, 0, time.UTC),
		PinnedSheets:  []records.SheetLink{{Name: "Ledger", URL: "https://docs.google.com/spreadsheets/d/a"}},
		Data:          ConfirmDelete{Kind: "sale", Name: "Widget", Action: "/sales/1/delete", Back: "/sales"},
	})
	require.NoError(t, err)
	body := rec.Body.String()
	assert.Contains(t, body, "Ledger")
	assert.Contains(t, body, "01 Jun 2024 08:30")
	assert.Contains(t, body, `<a href="/sales" class="active">Sales</a>`)
	assert.Contains(t, body, `name="confirm" value="yes"`)
}

func TestFormatDate(t *testing.T) {
	ts := records.NewTimestamp(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "05 Mar 2024", formatDate(ts))
	assert.Equal(t, "05 Mar 2024", formatDate(&ts))
	assert.Equal(t, "-", formatDate(records.Timestamp{}))
	assert.Equal(t, "-", formatDate((*records.Timestamp)(nil)))
	assert.Equal(t, "", formatDate(42))
}
