package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"story-time-api/internal/config"
	"story-time-api/internal/interfaces/http/handler"
	apperrors "story-time-api/pkg/errors"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type stubService struct {
	configured bool
	text       string
	err        error
	calls      int
}

func (s *stubService) Generate(context.Context, string) (string, error) {
	s.calls++
	return s.text, s.err
}

func (s *stubService) Configured() bool { return s.configured }

func (s *stubService) Provider() (string, string) { return "gemini", "gemini-test" }

func newTestRouter(t *testing.T, svc *stubService) *gin.Engine {
	t.Helper()
	cfg := &config.Config{
		App: config.AppConfig{Name: "story-time-api", Version: "test", Env: "test"},
		Observability: config.ObservabilityConfig{
			Metrics: config.MetricsConfig{Enabled: true, Path: "/metrics"},
		},
	}
	r, err := New(cfg, Handlers{
		Health: handler.NewHealthHandler(svc, "test"),
		Page:   handler.NewPageHandler(svc, cfg.Form),
		Story:  handler.NewStoryHandler(svc),
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return r.Engine()
}

func postForm(engine *gin.Engine, topic string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	body := url.Values{"topic": {topic}}.Encode()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func getPage(engine *gin.Engine, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func postJSON(engine *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/v1/stories", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestPageRendersFriendlyDragon(t *testing.T) {
	svc := &stubService{
		configured: true,
		text:       "Once upon a time...\n\nThe dragon learned kindness.\n\nThe end.",
	}
	engine := newTestRouter(t, svc)

	w := postForm(engine, "friendly dragon")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	if n := strings.Count(body, "<p>"); n != 3 {
		t.Errorf("expected 3 paragraph blocks, got %d\n%s", n, body)
	}
	first := strings.Index(body, "<p>Once upon a time...</p>")
	second := strings.Index(body, "<p>The dragon learned kindness.</p>")
	third := strings.Index(body, "<p>The end.</p>")
	if first < 0 || second < first || third < second {
		t.Errorf("paragraphs missing or out of order:\n%s", body)
	}
	if strings.Contains(body, `id="error"`) {
		t.Error("error alert must not be shown")
	}
	if strings.Contains(body, ">Creating...</button>") {
		t.Error("loading indicator must be off after resolution")
	}
	if !strings.Contains(body, `id="submit">`) {
		t.Error("submit control must be enabled after resolution")
	}
}

func TestPageRejectsShortTopic(t *testing.T) {
	svc := &stubService{configured: true}
	engine := newTestRouter(t, svc)

	w := postForm(engine, "a")
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Topic must be at least 2 characters.") {
		t.Error("inline validation message missing")
	}
	if svc.calls != 0 {
		t.Error("generator must not be invoked")
	}
}

func TestPageFailureKeepsStory(t *testing.T) {
	svc := &stubService{configured: true, text: "An old story."}
	engine := newTestRouter(t, svc)

	w := postForm(engine, "cats")
	cookies := w.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("expected visitor cookie")
	}

	svc.text = ""
	svc.err = apperrors.ErrGenerationFailed.WithError(errors.New("network down"))
	w = postForm(engine, "dogs", cookies...)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "Failed to generate story") {
		t.Error("generic error message missing")
	}
	if strings.Contains(body, "network down") {
		t.Error("underlying error detail must not leak")
	}
	if !strings.Contains(body, "<p>An old story.</p>") {
		t.Error("previous story must remain visible")
	}

	// 同一访客刷新页面仍能看到状态
	w = getPage(engine, cookies...)
	if !strings.Contains(w.Body.String(), "<p>An old story.</p>") || !strings.Contains(w.Body.String(), "Failed to generate story") {
		t.Error("visitor state should persist across requests")
	}

	// 新访客是干净的
	w = getPage(engine)
	if strings.Contains(w.Body.String(), "An old story.") {
		t.Error("state must not leak between visitors")
	}
}

func TestPageWithoutCredential(t *testing.T) {
	svc := &stubService{configured: false}
	engine := newTestRouter(t, svc)

	w := getPage(engine)
	body := w.Body.String()
	if !strings.Contains(body, `id="config-warning"`) {
		t.Error("configuration banner must be shown on initial render")
	}
	if !strings.Contains(body, `id="submit" disabled`) {
		t.Error("submit control must be disabled")
	}

	w = postForm(engine, "space adventure")
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", w.Code)
	}
	if svc.calls != 0 {
		t.Error("no network call may happen without a credential")
	}
	if !strings.Contains(w.Body.String(), `id="submit" disabled`) {
		t.Error("submit control must stay disabled")
	}
}

func TestCreateStoryJSON(t *testing.T) {
	svc := &stubService{configured: true, text: "One.\nTwo."}
	engine := newTestRouter(t, svc)

	w := postJSON(engine, `{"topic":"space adventure"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Code int `json:"code"`
		Data struct {
			Topic      string   `json:"topic"`
			Story      string   `json:"story"`
			Paragraphs []string `json:"paragraphs"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Data.Story != "One.\nTwo." || len(resp.Data.Paragraphs) != 2 || resp.Data.Topic != "space adventure" {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestCreateStoryJSONErrors(t *testing.T) {
	cases := []struct {
		name    string
		svc     *stubService
		body    string
		status  int
		message string
	}{
		{"malformed body", &stubService{configured: true}, `{`, http.StatusBadRequest, "invalid parameter"},
		{"short topic", &stubService{configured: true}, `{"topic":"a"}`, http.StatusUnprocessableEntity, "Topic must be at least 2 characters."},
		{"unconfigured", &stubService{}, `{"topic":"owls"}`, http.StatusServiceUnavailable, "Gemini API key is not configured"},
		{"generation failure", &stubService{configured: true, err: apperrors.ErrGenerationFailed.WithError(errors.New("quota"))}, `{"topic":"owls"}`, http.StatusBadGateway, "Failed to generate story"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := postJSON(newTestRouter(t, tc.svc), tc.body)
			if w.Code != tc.status {
				t.Fatalf("expected %d, got %d: %s", tc.status, w.Code, w.Body.String())
			}
			if tc.message == "" {
				return
			}
			var resp struct {
				Message string `json:"message"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if resp.Message != tc.message {
				t.Errorf("expected message %q, got %q", tc.message, resp.Message)
			}
		})
	}
}

func TestSystemEndpoints(t *testing.T) {
	unconfigured := newTestRouter(t, &stubService{})
	configured := newTestRouter(t, &stubService{configured: true})

	cases := []struct {
		name   string
		engine *gin.Engine
		path   string
		status int
	}{
		{"health", unconfigured, "/health", http.StatusOK},
		{"live", unconfigured, "/live", http.StatusOK},
		{"ready without key", unconfigured, "/ready", http.StatusServiceUnavailable},
		{"ready with key", configured, "/ready", http.StatusOK},
		{"status", unconfigured, "/v1/status", http.StatusOK},
		{"metrics", configured, "/metrics", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tc.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tc.path, nil))
			if w.Code != tc.status {
				t.Errorf("GET %s: expected %d, got %d", tc.path, tc.status, w.Code)
			}
		})
	}
}

func TestRequestIDHeader(t *testing.T) {
	engine := newTestRouter(t, &stubService{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "req-123")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	if got := w.Header().Get("X-Request-ID"); got != "req-123" {
		t.Errorf("expected request id to be echoed, got %q", got)
	}

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("expected generated request id")
	}
}

func TestUnknownRouteReturnsNotFound(t *testing.T) {
	engine := newTestRouter(t, &stubService{})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/unknown", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	var resp struct {
		Error struct {
			ErrorCode string `json:"error_code"`
			Details   string `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Error.ErrorCode != string(apperrors.CodeNotFound) || resp.Error.Details != "/v1/unknown" {
		t.Errorf("unexpected error body %+v", resp.Error)
	}
}

func TestPageDisablesSubmitWhileSending(t *testing.T) {
	engine := newTestRouter(t, &stubService{configured: true})

	body := getPage(engine).Body.String()
	if !strings.Contains(body, "onsubmit=") || !strings.Contains(body, "b.disabled = true") {
		t.Error("form must disable the submit control when a valid topic is sent")
	}
	if !strings.Contains(body, "this.topic.value.length >= 2") {
		t.Error("client-side loading state must follow the topic length rule")
	}
}
