package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"story-time-api/internal/interfaces/http/dto"
	apperrors "story-time-api/pkg/errors"
	"story-time-api/pkg/metrics"
)

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	e := gin.New()
	e.Use(mw...)
	return e
}

func TestRecoveryReturnsInternalError(t *testing.T) {
	e := newEngine(Recovery())
	e.GET("/boom", func(*gin.Context) { panic("secret state") })

	w := httptest.NewRecorder()
	e.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "secret state") {
		t.Error("panic value must not be exposed")
	}
	var resp dto.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Error == nil || resp.Error.ErrorCode != string(apperrors.CodeInternalError) {
		t.Errorf("expected internal error code, got %+v", resp.Error)
	}
}

func TestRequestID(t *testing.T) {
	e := newEngine(RequestID())
	e.GET("/id", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("request_id")) })

	cases := []struct {
		name   string
		header string
		keep   bool
	}{
		{"propagated", "abc-123", true},
		{"generated", "", false},
		{"too long", strings.Repeat("x", maxRequestIDLen+1), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/id", nil)
			if tc.header != "" {
				req.Header.Set(RequestIDHeader, tc.header)
			}
			w := httptest.NewRecorder()
			e.ServeHTTP(w, req)

			got := w.Header().Get(RequestIDHeader)
			if got == "" || got != w.Body.String() {
				t.Fatalf("header %q and context %q must match", got, w.Body.String())
			}
			if tc.keep != (got == tc.header) {
				t.Errorf("header %q: unexpected request id %q", tc.header, got)
			}
		})
	}
}

func TestMetricsRecordsRouteTemplate(t *testing.T) {
	e := newEngine(Metrics())
	e.POST("/metrics-test/:id", func(c *gin.Context) { c.String(http.StatusCreated, "ok") })

	before := testutil.ToFloat64(metrics.HTTPRequestsTotal.WithLabelValues(http.MethodPost, "/metrics-test/:id", "201"))
	for _, id := range []string{"a", "b"} {
		w := httptest.NewRecorder()
		e.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/metrics-test/"+id, strings.NewReader("topic=owls")))
	}
	after := testutil.ToFloat64(metrics.HTTPRequestsTotal.WithLabelValues(http.MethodPost, "/metrics-test/:id", "201"))
	if after-before != 2 {
		t.Errorf("expected 2 requests under the route template, got %v", after-before)
	}
}

func TestCORSWildcardDisablesCredentials(t *testing.T) {
	e := newEngine(CORS(CORSConfig{}))
	e.POST("/v1/stories", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/v1/stories", nil)
	req.Header.Set("Origin", "https://parents.test")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("expected wildcard origin, got %q", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Credentials"); got == "true" {
		t.Error("credentials must not be allowed with a wildcard origin")
	}
}
