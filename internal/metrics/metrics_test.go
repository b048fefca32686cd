package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestGinMiddlewareObservesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(GinMiddleware())
	r.GET("/v1/students/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	before := testutil.CollectAndCount(httpDuration)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/students/abc", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, before+1, testutil.CollectAndCount(httpDuration))
}

func TestCountersIncrement(t *testing.T) {
	before := testutil.ToFloat64(RecordsWritten.WithLabelValues("manual"))
	RecordsWritten.WithLabelValues("manual").Add(2)
	assert.Equal(t, before+2, testutil.ToFloat64(RecordsWritten.WithLabelValues("manual")))
}
