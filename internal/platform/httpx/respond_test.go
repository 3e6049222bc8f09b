package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProblemWritesRFC7807Body(t *testing.T) {
	rr := httptest.NewRecorder()
	Problem(rr, http.StatusUnauthorized, "Unauthorized", "sign in required")

	require.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"title":"Unauthorized","status":401,"detail":"sign in required"}`, rr.Body.String())
}

func TestJSONEncodesPayload(t *testing.T) {
	rr := httptest.NewRecorder()
	JSON(rr, http.StatusOK, map[string]int{"sheets": 3})

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"sheets":3}`, rr.Body.String())
}
