package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/edumaster/edumaster-web/internal/config"
	"github.com/edumaster/edumaster-web/internal/edumaster"
	"github.com/edumaster/edumaster-web/internal/examflow"
	"github.com/edumaster/edumaster-web/internal/handler"
	"github.com/edumaster/edumaster-web/internal/session"
	"github.com/edumaster/edumaster-web/internal/validator"
)

// fakeUpstream answers the remote API calls the full page flow makes.
func fakeUpstream() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/auth/login":
			w.Write([]byte(`{"token":"tok","data":{"_id":"u1","fullName":"أحمد","email":"a@b.c","role":"user"}}`))
		case r.URL.Path == "/lesson/":
			w.Write([]byte(`{"lessons":[{"_id":"l1","title":"درس الجبر","price":50}]}`))
		case r.URL.Path == "/studentExam/start/e1":
			w.Write([]byte(`{"data":{"exam":{"_id":"e1","title":"امتحان الجبر","duration":10,"questions":[
				{"_id":"q1","text":"كم يساوي ١+١؟","type":"multipleChoice","options":["٢","٣"]},
				{"_id":"q2","text":"اشرح نظرية فيثاغورس","type":"essay"}
			]}}}`))
		case r.URL.Path == "/studentExam/exams/remaining-time/e1":
			w.Write([]byte(`{"remainingTime":600}`))
		case r.URL.Path == "/studentExam/submit/e1":
			w.Write([]byte(`{"message":"تم الإرسال"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"message":"غير موجود"}`))
		}
	}
}

func testApp(t *testing.T) (*gin.Engine, *examflow.Manager) {
	t.Helper()
	validator.Setup()

	upstream := httptest.NewServer(fakeUpstream())
	t.Cleanup(upstream.Close)

	cfg := &config.Config{
		GinMode:            gin.TestMode,
		SessionTTL:         time.Hour,
		DefaultExamMinutes: 30,
		APIBaseURL:         upstream.URL,
		APITimeout:         5 * time.Second,
	}

	log := zerolog.Nop()
	api := edumaster.New(cfg.APIBaseURL, cfg.APITimeout, log)
	sessions := session.NewManager(session.NewMemoryStore(cfg.SessionTTL), api, log)
	flow := examflow.NewManager(func(token string) examflow.ExamAPI {
		return api.WithToken(token)
	}, cfg.DefaultExamMinutes, log)
	t.Cleanup(flow.CloseAll)

	handlers := &Handlers{
		Auth:     handler.NewAuthHandler(sessions, api, cfg, log),
		Lesson:   handler.NewLessonHandler(sessions, api, cfg, log),
		Exam:     handler.NewExamHandler(sessions, api, cfg, log),
		TakeExam: handler.NewTakeExamHandler(flow, sessions, cfg, log),
		Admin:    handler.NewAdminHandler(sessions, api, cfg, log),
		WS:       handler.NewWSHandler(flow, log, nil),
	}
	return SetupRouter(sessions, handlers, cfg), flow
}

func doRequest(r *gin.Engine, method, target, body, contentType, cookie string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if cookie != "" {
		req.Header.Set("Cookie", cookie)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func login(t *testing.T, r *gin.Engine) string {
	t.Helper()
	w := doRequest(r, http.MethodPost, "/login", "email=a%40b.c&password=secret",
		"application/x-www-form-urlencoded", "")
	if w.Code != http.StatusFound {
		t.Fatalf("login status = %d, want 302; body: %s", w.Code, w.Body.String())
	}
	for _, c := range w.Result().Cookies() {
		if c.Name == "edumaster_session" {
			return c.Name + "=" + c.Value
		}
	}
	t.Fatal("no session cookie set on login")
	return ""
}

func TestAnonymousPageRedirectsToLogin(t *testing.T) {
	r, _ := testApp(t)

	w := doRequest(r, http.MethodGet, "/dashboard", "", "", "")
	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", w.Code)
	}
	if loc := w.Header().Get("Location"); !strings.HasPrefix(loc, "/login?next=") {
		t.Errorf("Location = %q, want login redirect with next", loc)
	}
}

func TestAnonymousAPIGets401(t *testing.T) {
	r, _ := testApp(t)

	w := doRequest(r, http.MethodPost, "/api/exams/e1/submit", `{"confirmed":true}`,
		"application/json", "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestLoginRendersLessonsPage(t *testing.T) {
	r, _ := testApp(t)
	cookie := login(t, r)

	w := doRequest(r, http.MethodGet, "/lessons", "", "", cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "درس الجبر") {
		t.Error("lessons page missing the lesson title from the API")
	}
}

func TestExamAttemptFullFlow(t *testing.T) {
	r, flow := testApp(t)
	cookie := login(t, r)

	// The take page redirects back to the detail page before an attempt
	// exists.
	w := doRequest(r, http.MethodGet, "/exams/e1/take", "", "", cookie)
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/exams/e1" {
		t.Fatalf("take before start: code=%d loc=%q", w.Code, w.Header().Get("Location"))
	}

	w = doRequest(r, http.MethodPost, "/exams/e1/start", "", "", cookie)
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/exams/e1/take" {
		t.Fatalf("start: code=%d loc=%q body=%s", w.Code, w.Header().Get("Location"), w.Body.String())
	}

	w = doRequest(r, http.MethodGet, "/exams/e1/take", "", "", cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("take page status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "كم يساوي ١+١؟") {
		t.Error("take page missing the first question")
	}

	w = doRequest(r, http.MethodPost, "/api/exams/e1/answer",
		`{"questionId":"q1","value":"٢"}`, "application/json", cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("answer status = %d, body: %s", w.Code, w.Body.String())
	}

	// One question still unanswered: the unconfirmed submit must come back
	// with the count instead of hitting the network.
	w = doRequest(r, http.MethodPost, "/api/exams/e1/submit",
		`{"confirmed":false}`, "application/json", cookie)
	if w.Code != http.StatusConflict {
		t.Fatalf("unconfirmed submit status = %d, want 409; body: %s", w.Code, w.Body.String())
	}
	var body struct {
		Data struct {
			Unanswered int `json:"unanswered"`
		} `json:"data"`
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Error.Code != "SUBMISSION_CANCELLED" || body.Data.Unanswered != 1 {
		t.Errorf("got code=%q unanswered=%d, want SUBMISSION_CANCELLED with 1", body.Error.Code, body.Data.Unanswered)
	}

	w = doRequest(r, http.MethodPost, "/api/exams/e1/submit",
		`{"confirmed":true}`, "application/json", cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("confirmed submit status = %d, body: %s", w.Code, w.Body.String())
	}

	// The attempt is finished; the take page now forwards to the result.
	sessionID := strings.TrimPrefix(cookie, "edumaster_session=")
	sess, ok := flow.Get(sessionID, "e1")
	if !ok || sess.State() != examflow.StateSubmitted {
		t.Errorf("attempt state after submit: ok=%v", ok)
	}
	w = doRequest(r, http.MethodGet, "/exams/e1/take", "", "", cookie)
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/exams/e1/result" {
		t.Errorf("take after submit: code=%d loc=%q", w.Code, w.Header().Get("Location"))
	}
}

func TestAdminPageForbiddenForStudent(t *testing.T) {
	r, _ := testApp(t)
	cookie := login(t, r)

	w := doRequest(r, http.MethodGet, "/admin", "", "", cookie)
	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403 for a non-admin user", w.Code)
	}
}
