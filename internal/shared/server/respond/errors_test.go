package respond

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"checkcontrat-backend/internal/shared/telemetry"
)

func serveError(t *testing.T, status int) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var logs bytes.Buffer
	telemetry.SetOutput(&logs)
	t.Cleanup(func() { telemetry.SetOutput(nil) })

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x", func(c *gin.Context) {
		c.Set("userId", "user-1")
		c.Set("checkId", "chk-9")
		Error(c, status, "some_code", "something failed", map[string]string{"field": "file"})
	})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(logs.String())), &entry))
	return rec, entry
}

func TestErrorBodyShape(t *testing.T) {
	rec, _ := serveError(t, http.StatusBadRequest)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "some_code", body.Error.Code)
	assert.Equal(t, "something failed", body.Error.Message)
	assert.Equal(t, map[string]any{"field": "file"}, body.Error.Details)
}

func TestErrorLogLevelFollowsStatus(t *testing.T) {
	_, entry := serveError(t, http.StatusNotFound)
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "user-1", entry["user_id"])
	assert.Equal(t, "chk-9", entry["check_id"])

	_, entry = serveError(t, http.StatusBadGateway)
	assert.Equal(t, "error", entry["level"])
}
