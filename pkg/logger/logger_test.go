package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var record map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	return record
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
}

func TestLogSeatHeld(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, slog.LevelInfo, true).WithComponent("tickets")

	expires := time.Date(2026, 6, 1, 12, 5, 0, 0, time.UTC)
	l.LogSeatHeld(context.Background(), "t-1", "c-1", expires)

	record := decode(t, &buf)
	assert.Equal(t, "Seat Held", record["msg"])
	assert.Equal(t, "tickets", record["component"])
	assert.Equal(t, "t-1", record["ticket_id"])
	assert.Equal(t, "c-1", record["client_id"])
}

func TestErrorWithContext(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, slog.LevelInfo, true)

	l.ErrorWithContext(context.Background(), "archive failed", errors.New("boom"), map[string]interface{}{"event_id": "e-1"})

	record := decode(t, &buf)
	assert.Equal(t, "ERROR", record["level"])
	assert.Equal(t, "boom", record["error"])
	assert.Equal(t, "e-1", record["event_id"])
}

func TestLogHTTPRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	l := NewWithWriter(&buf, slog.LevelInfo, true)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/events?page_num=2", nil)
	c.Status(http.StatusOK)

	l.LogHTTPRequest(c, 15*time.Millisecond)

	record := decode(t, &buf)
	assert.Equal(t, "GET", record["method"])
	assert.Equal(t, "/api/v1/events", record["path"])
	assert.Equal(t, "page_num=2", record["query"])
}

func TestDebugSuppressedAtInfo(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, slog.LevelInfo, false)

	l.Debug("hidden")

	assert.Empty(t, buf.String())
}

func TestWithClientIDAndError(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, slog.LevelInfo, true).WithClientID("c-9").WithError(errors.New("redis down"))

	l.Warn("Failed to release hold after purchase")

	record := decode(t, &buf)
	assert.Equal(t, "c-9", record["client_id"])
	assert.Equal(t, "redis down", record["error"])
}

func TestSetDefault(t *testing.T) {
	previous := GetDefault()
	defer SetDefault(previous)

	replacement := NewWithWriter(&bytes.Buffer{}, slog.LevelError, true)
	SetDefault(replacement)

	assert.Same(t, replacement, GetDefault())
}
