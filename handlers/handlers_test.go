package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"fixxer/checkout"
	"fixxer/content"
	"fixxer/events"
	"fixxer/models"
	"fixxer/scan"
	"fixxer/session"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type fakeCreator struct {
	mu      sync.Mutex
	session checkout.Session
	err     error
	calls   int
	priceID string
	paid    map[string]bool
}

func (f *fakeCreator) CreateSession(_ context.Context, priceID, _ string) (checkout.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.priceID = priceID
	return f.session, f.err
}

func (f *fakeCreator) Paid(_ context.Context, sessionID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.paid[sessionID], nil
}

type fakeLedger struct {
	mu        sync.Mutex
	recorded  []string
	completed []string
}

func (f *fakeLedger) Record(_ context.Context, s *models.CheckoutSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recorded = append(f.recorded, s.SessionID)
	return nil
}

func (f *fakeLedger) MarkCompleted(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.completed = append(f.completed, id)
	return nil
}

type testEnv struct {
	t       *testing.T
	router  *gin.Engine
	deps    Deps
	creator *fakeCreator
	ledger  *fakeLedger
	events  *events.Recorder
	cookie  *http.Cookie
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	site, err := content.Default()
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	sim := scan.NewSimulator(logger)
	sim.MinDelay = 0
	sim.Jitter = 0
	sim.SettleDelay = 0
	sim.Sleep = func(context.Context, time.Duration) error { return nil }

	creator := &fakeCreator{
		session: checkout.Session{
			ID:  "cs_test_123",
			URL: "https://checkout.stripe.test/c/cs_test_123",
		},
		paid: map[string]bool{"cs_test_123": true},
	}
	ledger := &fakeLedger{}
	recorder := &events.Recorder{}
	prices := checkout.PriceTable{
		"pro_monthly": "price_pro_m",
		"pro_yearly":  "price_pro_y",
	}

	deps := Deps{
		Site:           site,
		Sessions:       session.NewMemoryStore(time.Hour),
		SessionTTL:     time.Hour,
		Simulator:      sim,
		Jobs:           scan.NewRegistry(time.Hour),
		Checkout:       checkout.NewService(prices, creator, logger, checkout.WithRecorder(ledger), checkout.WithNotifier(recorder)),
		Events:         recorder,
		PublishableKey: "pk_test_abc",
		Logger:         logger,
	}

	router, err := NewRouter(deps)
	require.NoError(t, err)

	return &testEnv{t: t, router: router, deps: deps, creator: creator, ledger: ledger, events: recorder}
}

// do sends a request carrying the env's session cookie and keeps any
// cookie the response sets.
func (e *testEnv) do(method, target string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	e.t.Helper()

	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if e.cookie != nil {
		req.AddCookie(e.cookie)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	for _, c := range w.Result().Cookies() {
		if c.Name == session.CookieName {
			e.cookie = c
		}
	}
	return w
}

func (e *testEnv) get(target string) *httptest.ResponseRecorder {
	return e.do(http.MethodGet, target, nil, "")
}

func (e *testEnv) postJSON(target string, v any) *httptest.ResponseRecorder {
	body, err := json.Marshal(v)
	require.NoError(e.t, err)
	return e.do(http.MethodPost, target, bytes.NewReader(body), "application/json")
}

func (e *testEnv) postForm(target string, form url.Values) *httptest.ResponseRecorder {
	return e.do(http.MethodPost, target, strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
}

func (e *testEnv) upload(names ...string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, name := range names {
		fw, err := mw.CreateFormFile("files", name)
		require.NoError(e.t, err)
		_, err = fw.Write([]byte("console.log('hello')"))
		require.NoError(e.t, err)
	}
	require.NoError(e.t, mw.Close())
	return e.do(http.MethodPost, "/upload", &buf, mw.FormDataContentType())
}

func (e *testEnv) waitForJob(id string) {
	e.t.Helper()
	job, err := e.deps.Jobs.Get(id)
	require.NoError(e.t, err)
	select {
	case <-job.Done():
	case <-time.After(5 * time.Second):
		e.t.Fatal("scan did not finish")
	}
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	w := env.get("/healthz")
	require.Equal(t, http.StatusOK, w.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "fixxer", resp.Service)
	assert.Empty(t, resp.Checks)
}

type linkedPublisher struct {
	events.Nop
	up bool
}

func (p linkedPublisher) IsConnected() bool { return p.up }

func TestHealth_BackendChecks(t *testing.T) {
	tests := []struct {
		name   string
		up     bool
		code   int
		status string
		nats   string
	}{
		{name: "connected", up: true, code: http.StatusOK, status: "healthy", nats: "up"},
		{name: "disconnected", up: false, code: http.StatusServiceUnavailable, status: "degraded", nats: "down"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps := newTestEnv(t).deps
			deps.Events = linkedPublisher{up: tt.up}
			router, err := NewRouter(deps)
			require.NoError(t, err)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
			require.Equal(t, tt.code, w.Code)

			var resp HealthResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.status, resp.Status)
			assert.Equal(t, map[string]string{"nats": tt.nats}, resp.Checks)
		})
	}
}

// corruptStore fails to decode one session id.
type corruptStore struct {
	session.Store
	broken  string
	deleted []string
}

func (s *corruptStore) Get(ctx context.Context, id string) (*session.Session, error) {
	if id == s.broken {
		return nil, session.ErrCorrupt
	}
	return s.Store.Get(ctx, id)
}

func (s *corruptStore) Delete(ctx context.Context, id string) error {
	s.deleted = append(s.deleted, id)
	return s.Store.Delete(ctx, id)
}

func TestCorruptSessionIsReplaced(t *testing.T) {
	env := newTestEnv(t)
	store := &corruptStore{Store: env.deps.Sessions, broken: "stale-id"}
	deps := env.deps
	deps.Sessions = store
	router, err := NewRouter(deps)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: "stale-id"})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"stale-id"}, store.deleted)

	var fresh string
	for _, c := range w.Result().Cookies() {
		if c.Name == session.CookieName {
			fresh = c.Value
		}
	}
	assert.NotEmpty(t, fresh)
	assert.NotEqual(t, "stale-id", fresh)
}

func TestHome(t *testing.T) {
	env := newTestEnv(t)

	w := env.get("/")
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.Contains(t, body, "A.I. Fixxer")
	assert.Contains(t, body, "Scan Your Code Now")
	assert.Contains(t, body, "Most Popular")
	assert.Contains(t, body, "$29")
	assert.Contains(t, body, "$99")
	assert.Contains(t, body, "pk_test_abc")
	assert.NotEmpty(t, env.cookie)
}

func TestHome_YearlyBillingSticks(t *testing.T) {
	env := newTestEnv(t)

	w := env.get("/?billing=yearly")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "$278")
	assert.Contains(t, w.Body.String(), "Save $69.6/year")
	assert.Contains(t, w.Body.String(), `class="switch on"`)
	assert.Contains(t, w.Body.String(), `href="/?billing=monthly#pricing" class="switch on"`)

	w = env.get("/")
	assert.Contains(t, w.Body.String(), "$950")

	w = env.get("/?billing=monthly")
	assert.NotContains(t, w.Body.String(), "$278")
}

func TestHome_FAQ(t *testing.T) {
	env := newTestEnv(t)

	w := env.get("/")
	assert.NotContains(t, w.Body.String(), "billing is prorated")
	assert.NotContains(t, w.Body.String(), "faq=-1")

	w = env.get("/?faq=1")
	assert.Contains(t, w.Body.String(), "billing is prorated")
	assert.Contains(t, w.Body.String(), "faq=-1")

	w = env.get("/?faq=-1")
	assert.NotContains(t, w.Body.String(), "billing is prorated")
}

func TestNotice(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		topic  string
		status int
		want   string
	}{
		{"demo", http.StatusOK, "Demo: This would show"},
		{"team", http.StatusOK, "sales@aifixxer.com"},
		{"enterprise", http.StatusOK, "enterprise@aifixxer.com"},
		{"schedule", http.StatusOK, "Schedule Demo"},
		{"pro", http.StatusNotFound, "Page not found"},
		{"nope", http.StatusNotFound, "Page not found"},
	}
	for _, tt := range tests {
		t.Run(tt.topic, func(t *testing.T) {
			w := env.get("/notice/" + tt.topic)
			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Body.String(), tt.want)
		})
	}
}

func TestUploadScanDashboardFlow(t *testing.T) {
	env := newTestEnv(t)

	w := env.upload("app.js", "logo.png")
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/#upload", w.Header().Get("Location"))

	w = env.get("/")
	body := w.Body.String()
	assert.Contains(t, body, "Uploaded Files (1)")
	assert.Contains(t, body, "app.js")
	assert.Contains(t, body, "logo.png")
	assert.Contains(t, body, "unsupported file type")
	assert.Contains(t, body, "Start Security Scan")

	w = env.do(http.MethodPost, "/scan", nil, "")
	require.Equal(t, http.StatusSeeOther, w.Code)
	location := w.Header().Get("Location")
	require.True(t, strings.HasPrefix(location, "/scan/"))
	jobID := strings.TrimPrefix(location, "/scan/")

	env.waitForJob(jobID)

	w = env.get(location)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/dashboard", w.Header().Get("Location"))
	assert.Zero(t, env.deps.Jobs.Len())

	// the home page now sends the visitor to the dashboard
	w = env.get("/")
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/dashboard", w.Header().Get("Location"))

	w = env.get("/dashboard")
	require.Equal(t, http.StatusOK, w.Code)
	body = w.Body.String()
	assert.Contains(t, body, "my-ai-app")
	assert.Contains(t, body, "89/100")
	assert.Contains(t, body, "Critical Issues")
	assert.Contains(t, body, "Exposed API Key")
	assert.Contains(t, body, "Back to Home")
	assert.Contains(t, body, "conic-gradient")

	assert.Eventually(t, func() bool { return len(env.events.Scans()) == 1 }, time.Second, 10*time.Millisecond)

	w = env.post("/back")
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	w = env.get("/dashboard")
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	w = env.get("/")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "Uploaded Files")
}

// countingReader records how much of a request body the server pulled.
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

func TestUpload_NamesAndSizesOnly(t *testing.T) {
	env := newTestEnv(t)

	w := env.postForm("/upload", url.Values{
		"name": {"app.js", "bundle.js"},
		"size": {"2048", "20971520"},
	})
	require.Equal(t, http.StatusSeeOther, w.Code)

	sess := env.session()
	require.Len(t, sess.Files, 1)
	assert.Equal(t, "app.js", sess.Files[0].Name)
	assert.Equal(t, int64(2048), sess.Files[0].Size)
	require.Len(t, sess.Rejected, 1)
	assert.Equal(t, "bundle.js", sess.Rejected[0].Name)

	w = env.postForm("/upload", url.Values{"name": {"a.js", "b.js"}, "size": {"1"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.postForm("/upload", url.Values{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpload_OversizedBodyIsCutOff(t *testing.T) {
	env := newTestEnv(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("files", "big.js")
	require.NoError(t, err)
	_, err = fw.Write(bytes.Repeat([]byte("a"), 40<<20))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	sent := int64(buf.Len())

	body := &countingReader{r: &buf}
	w := env.do(http.MethodPost, "/upload", body, mw.FormDataContentType())

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Contains(t, w.Body.String(), "10MB upload limit")
	assert.LessOrEqual(t, body.n, int64(maxMultipartBody)+1)
	assert.Less(t, body.n, sent)

	w = env.get("/")
	assert.NotContains(t, w.Body.String(), "Uploaded Files")
}

func TestUpload_DeclaredLengthOverLimit(t *testing.T) {
	env := newTestEnv(t)

	body := &countingReader{r: strings.NewReader("")}
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
	req.ContentLength = 64 << 20

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Zero(t, body.n)
}

func (e *testEnv) post(target string) *httptest.ResponseRecorder {
	return e.do(http.MethodPost, target, nil, "")
}

// onDashboard runs a scan through the JSON API and claims its result.
func (e *testEnv) onDashboard() {
	e.t.Helper()

	w := e.postJSON("/api/scan", gin.H{"files": []gin.H{{"name": "main.go", "size": 2048}}})
	require.Equal(e.t, http.StatusAccepted, w.Code)
	jobID := decode(e.t, w)["jobId"].(string)
	e.waitForJob(jobID)

	w = e.get("/api/scan/" + jobID)
	require.Equal(e.t, http.StatusOK, w.Code)
}

func TestDashboard_Tabs(t *testing.T) {
	env := newTestEnv(t)
	env.onDashboard()

	w := env.get("/dashboard?tab=security")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Security Issues")
	assert.Contains(t, w.Body.String(), "Score: 94/100")
	assert.Contains(t, w.Body.String(), "SQL Injection Risk")

	// the tab is remembered
	w = env.get("/dashboard")
	assert.Contains(t, w.Body.String(), "Security Issues")

	for tab, title := range map[string]string{
		"performance": "Performance Analysis",
		"quality":     "Quality Analysis",
		"launch":      "Launch Analysis",
	} {
		w = env.get("/dashboard?tab=" + tab)
		assert.Contains(t, w.Body.String(), title)
	}

	w = env.get("/dashboard?tab=bogus")
	assert.Contains(t, w.Body.String(), "Critical Issues")
}

func TestDashboard_ToggleIssue(t *testing.T) {
	env := newTestEnv(t)
	env.onDashboard()
	env.get("/dashboard?tab=security")

	w := env.post("/dashboard/toggle/1")
	require.Equal(t, http.StatusSeeOther, w.Code)

	w = env.get("/dashboard")
	assert.Contains(t, w.Body.String(), "Suggested Fix")
	assert.Contains(t, w.Body.String(), "API key found in config.js line 23")

	env.post("/dashboard/toggle/1")
	w = env.get("/dashboard")
	assert.NotContains(t, w.Body.String(), "Suggested Fix")

	w = env.post("/dashboard/toggle/42")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDashboard_FixIssue(t *testing.T) {
	env := newTestEnv(t)
	env.onDashboard()

	w := env.post("/dashboard/fix/1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Applying fix for")
	assert.Contains(t, w.Body.String(), "Update config.js at line 23")

	w = env.post("/dashboard/fix/3")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = env.post("/dashboard/fix/42")
	assert.Equal(t, http.StatusNotFound, w.Code)

	// fixing never changes the result
	w = env.get("/api/view")
	result := decode(t, w)["result"].(map[string]any)
	assert.Len(t, result["issues"], 3)
}

func TestDashboard_Report(t *testing.T) {
	env := newTestEnv(t)

	w := env.get("/dashboard/report.md")
	assert.Equal(t, http.StatusNotFound, w.Code)

	env.onDashboard()
	w = env.get("/dashboard/report.md")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/markdown")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "my-ai-app-report.md")
	assert.Contains(t, w.Body.String(), "my-ai-app")
	assert.Contains(t, w.Body.String(), "Exposed API Key")
}

func TestScanProgressPage(t *testing.T) {
	env := newTestEnv(t)

	release := make(chan struct{})
	env.deps.Simulator.Sleep = func(ctx context.Context, _ time.Duration) error {
		select {
		case <-release:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	env.upload("app.js", "util.py")
	w := env.post("/scan")
	require.Equal(t, http.StatusSeeOther, w.Code)
	location := w.Header().Get("Location")

	w = env.get(location)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Scanning your code...")
	assert.Contains(t, body, `http-equiv="refresh"`)
	assert.Contains(t, body, "util.py")

	// the home page follows the running scan
	w = env.get("/")
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, location, w.Header().Get("Location"))

	w = env.post("/upload/anything/remove")
	assert.Equal(t, http.StatusConflict, w.Code)

	close(release)
	env.waitForJob(strings.TrimPrefix(location, "/scan/"))

	w = env.get(location)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/dashboard", w.Header().Get("Location"))
}

func TestScan_RemoveAndEmpty(t *testing.T) {
	env := newTestEnv(t)

	w := env.post("/scan")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Please add at least one file")

	env.upload("app.js")
	sess := env.session()
	require.Len(t, sess.Files, 1)

	w = env.post("/upload/" + sess.Files[0].ID + "/remove")
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Empty(t, env.session().Files)

	w = env.get("/scan/unknown")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func (e *testEnv) session() *session.Session {
	e.t.Helper()
	require.NotNil(e.t, e.cookie)
	sess, err := e.deps.Sessions.Get(context.Background(), e.cookie.Value)
	require.NoError(e.t, err)
	return sess
}

func TestScanAPI(t *testing.T) {
	env := newTestEnv(t)

	w := env.get("/api/view")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "home", decode(t, w)["view"])

	w = env.postJSON("/api/scan", gin.H{"files": []gin.H{
		{"name": "app.js", "size": 1024},
		{"name": "huge.json", "size": 11 * 1024 * 1024},
	}})
	require.Equal(t, http.StatusAccepted, w.Code)
	started := decode(t, w)
	jobID := started["jobId"].(string)
	assert.Len(t, started["files"], 1)
	assert.Len(t, started["rejected"], 1)

	w = env.postJSON("/api/scan", gin.H{"files": []gin.H{{"name": "b.js", "size": 1}}})
	assert.Equal(t, http.StatusConflict, w.Code)

	env.waitForJob(jobID)

	w = env.get("/api/scan/" + jobID)
	require.Equal(t, http.StatusOK, w.Code)
	status := decode(t, w)
	assert.Equal(t, jobID, status["jobId"])
	assert.Equal(t, true, status["done"])
	assert.Equal(t, float64(100), status["progress"])
	assert.Equal(t, "dashboard", status["view"])
	result := status["result"].(map[string]any)
	assert.Equal(t, float64(89), result["overallScore"])
	assert.Len(t, result["issues"], 3)

	w = env.get("/api/view")
	view := decode(t, w)
	assert.Equal(t, "dashboard", view["view"])
	assert.NotNil(t, view["result"])

	w = env.post("/api/view/back")
	require.Equal(t, http.StatusOK, w.Code)
	view = decode(t, w)
	assert.Equal(t, "home", view["view"])
	assert.Nil(t, view["result"])

	// the claimed job is gone
	w = env.get("/api/scan/" + jobID)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestScanAPI_BadRequests(t *testing.T) {
	env := newTestEnv(t)

	w := env.postJSON("/api/scan", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.postJSON("/api/scan", gin.H{"files": []gin.H{{"name": "photo.png", "size": 10}}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.Equal(t, scan.ErrNoFiles.Error(), body["error"])
	assert.Len(t, body["rejected"], 1)
}

func TestCheckoutAPI(t *testing.T) {
	tests := []struct {
		name      string
		body      gin.H
		createErr error
		noURL     bool
		status    int
		wantError string
		wantCalls int
	}{
		{
			name:      "pro monthly",
			body:      gin.H{"planName": "Pro", "billingPeriod": "monthly"},
			status:    http.StatusOK,
			wantCalls: 1,
		},
		{
			name:      "price id identifies the period",
			body:      gin.H{"planName": "Pro", "priceId": "price_pro_y"},
			status:    http.StatusOK,
			wantCalls: 1,
		},
		{
			name:      "unconfigured plan never reaches the provider",
			body:      gin.H{"planName": "Team", "billingPeriod": "monthly"},
			status:    http.StatusBadRequest,
			wantError: checkout.AlertPriceNotConfigured,
		},
		{
			name:      "provider failure",
			body:      gin.H{"planName": "Pro", "billingPeriod": "monthly"},
			createErr: errors.New("stripe down"),
			status:    http.StatusInternalServerError,
			wantError: checkout.AlertSessionFailed,
			wantCalls: 1,
		},
		{
			name:      "session without url",
			body:      gin.H{"planName": "Pro", "billingPeriod": "yearly"},
			noURL:     true,
			status:    http.StatusInternalServerError,
			wantError: checkout.AlertRedirectFailed,
			wantCalls: 1,
		},
		{
			name:   "missing plan",
			body:   gin.H{"billingPeriod": "monthly"},
			status: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.creator.err = tt.createErr
			if tt.noURL {
				env.creator.session.URL = ""
			}

			w := env.postJSON("/api/checkout", tt.body)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.wantCalls, env.creator.calls)

			body := decode(t, w)
			if tt.status == http.StatusOK {
				assert.Equal(t, "cs_test_123", body["sessionId"])
				assert.Equal(t, "https://checkout.stripe.test/c/cs_test_123", body["url"])
				assert.Len(t, env.events.Checkouts(), 1)
				return
			}
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, body["error"])
			}
			assert.Empty(t, env.events.Checkouts())
		})
	}
}

func TestCheckoutForm(t *testing.T) {
	env := newTestEnv(t)

	w := env.postForm("/checkout", url.Values{"plan": {"Pro"}, "billing": {"yearly"}})
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "https://checkout.stripe.test/c/cs_test_123", w.Header().Get("Location"))
	assert.Equal(t, "price_pro_y", env.creator.priceID)
	assert.Equal(t, []string{"cs_test_123"}, env.ledger.recorded)

	w = env.postForm("/checkout", url.Values{"plan": {"Team"}, "billing": {"monthly"}})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "sales@aifixxer.com")

	w = env.postForm("/checkout", url.Values{"plan": {"Free"}, "billing": {"monthly"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), checkout.AlertPriceNotConfigured)

	w = env.postForm("/checkout", url.Values{"billing": {"monthly"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	assert.Equal(t, 1, env.creator.calls)
}

func TestPrices(t *testing.T) {
	env := newTestEnv(t)

	w := env.get("/api/prices?billing=yearly")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Billing string      `json:"billing"`
		Plans   []PlanPrice `json:"plans"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "yearly", resp.Billing)
	require.Len(t, resp.Plans, 3)

	free, pro, team := resp.Plans[0], resp.Plans[1], resp.Plans[2]
	assert.Equal(t, 0, free.Amount)
	assert.False(t, free.Configured)
	assert.Equal(t, 278, pro.Amount)
	assert.Equal(t, "$278", pro.Price)
	assert.Equal(t, "$69.6", pro.Savings)
	assert.True(t, pro.Popular)
	assert.True(t, pro.Configured)
	assert.Equal(t, 950, team.Amount)
	assert.False(t, team.Configured)

	w = env.get("/api/prices?billing=weekly")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSuccess(t *testing.T) {
	env := newTestEnv(t)

	w := env.get("/success?session_id=cs_test_123")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Payment Successful!")
	assert.Contains(t, w.Body.String(), "Session ID: cs_test_123")
	assert.Equal(t, []string{"cs_test_123"}, env.ledger.completed)
}

func TestSuccess_UnpaidSessionLeavesLedger(t *testing.T) {
	env := newTestEnv(t)

	w := env.get("/success?session_id=cs_live_never_paid")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Session ID: cs_live_never_paid")
	assert.Empty(t, env.ledger.completed)
}

func TestNoRoute(t *testing.T) {
	env := newTestEnv(t)

	w := env.get("/does-not-exist")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.get("/assets/site.css")
	assert.Equal(t, http.StatusOK, w.Code)
}
