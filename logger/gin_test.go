package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func httpEntry(t *testing.T, logs *observer.ObservedLogs) observer.LoggedEntry {
	t.Helper()
	entries := logs.FilterMessage("HTTP Request").All()
	require.Len(t, entries, 1)
	return entries[0]
}

func TestGinMiddleware_LevelByStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		status int
		level  zapcore.Level
	}{
		{http.StatusOK, zapcore.InfoLevel},
		{http.StatusBadRequest, zapcore.WarnLevel},
		{http.StatusInternalServerError, zapcore.ErrorLevel},
	}

	for _, tt := range tests {
		core, logs := observer.New(zapcore.DebugLevel)
		router := gin.New()
		router.Use(GinMiddleware(zap.New(core)))
		router.GET("/x", func(c *gin.Context) { c.Status(tt.status) })

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

		assert.Equal(t, tt.level, httpEntry(t, logs).Level, "status %d", tt.status)
	}
}

func TestGinMiddleware_RequestIDAndScopedLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.InfoLevel)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(RequestIDKey, "req-42")
		c.Next()
	})
	router.Use(GinMiddleware(zap.New(core)))
	router.GET("/x", func(c *gin.Context) {
		FromGin(c).Info("inside handler")
		c.Status(http.StatusNoContent)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x?page=2", nil))

	inside := logs.FilterMessage("inside handler").All()
	require.Len(t, inside, 1)
	assert.Equal(t, "req-42", inside[0].ContextMap()["request_id"])

	entry := httpEntry(t, logs)
	assert.Equal(t, "page=2", entry.ContextMap()["query"])
	assert.EqualValues(t, http.StatusNoContent, entry.ContextMap()["status"])
}

func TestFromGin_WithoutMiddleware(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.NotNil(t, FromGin(c))
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("bare 500", func(t *testing.T) {
		core, logs := observer.New(zapcore.ErrorLevel)
		router := gin.New()
		router.Use(Recovery(zap.New(core), nil))
		router.GET("/panic", func(c *gin.Context) { panic("boom") })

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, 1, logs.FilterMessage("Panic recovered").Len())
	})

	t.Run("custom renderer", func(t *testing.T) {
		core, _ := observer.New(zapcore.ErrorLevel)
		router := gin.New()
		router.Use(Recovery(zap.New(core), func(c *gin.Context) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "oops"})
		}))
		router.GET("/panic", func(c *gin.Context) { panic("boom") })

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"error":"oops"}`, w.Body.String())
	})
}
