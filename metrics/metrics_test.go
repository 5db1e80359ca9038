package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()

	m.ExpenseCreated("EQUAL")
	m.ExpenseCreated("EQUAL")
	m.ExpenseCreated("PERCENTAGE")
	m.SplitRejected("SPLIT_SUM_MISMATCH")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.expensesCreated.WithLabelValues("EQUAL")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.expensesCreated.WithLabelValues("PERCENTAGE")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.splitRejections.WithLabelValues("SPLIT_SUM_MISMATCH")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ExpenseCreated("EQUAL")
		m.SplitRejected("SPLIT_SUM_MISMATCH")
	})
}

func TestMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New()

	router := gin.New()
	router.Use(m.Middleware())
	router.GET("/api/expenses/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/metrics", gin.WrapH(m.Handler()))

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/expenses/12", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, 2, testutil.CollectAndCount(m.requestDuration))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.True(t, strings.Contains(body, `route="/api/expenses/:id"`), body)
	assert.Contains(t, body, `route="unknown"`)
	assert.Contains(t, body, "go_goroutines")
}
