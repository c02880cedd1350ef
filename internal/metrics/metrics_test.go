package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddlewareLabelsByRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())
	r.GET("/api/studios/:username", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	before := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/api/studios/:username", "204"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/studios/booth-one", nil))

	after := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/api/studios/:username", "204"))
	assert.Equal(t, before+1, after)
}

func TestRecordEnforcementSkipsChangesOnError(t *testing.T) {
	before := testutil.ToFloat64(enforcementChanges.WithLabelValues("expired_membership"))

	RecordEnforcement(errors.New("db down"), 5, 0, 0)
	assert.Equal(t, before, testutil.ToFloat64(enforcementChanges.WithLabelValues("expired_membership")))

	RecordEnforcement(nil, 2, 1, 0)
	assert.Equal(t, before+2, testutil.ToFloat64(enforcementChanges.WithLabelValues("expired_membership")))
}
