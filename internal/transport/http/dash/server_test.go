package dashhttp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ruleforty/internal/chart"
	"ruleforty/internal/company"
	"ruleforty/internal/dashboard"
	"ruleforty/internal/metrics"
	"ruleforty/internal/reader"
	"ruleforty/internal/session"
)

type testEnv struct {
	handler http.Handler
	prom    *metrics.Prom
	mgr     *session.Manager
}

func newTestEnv(t *testing.T, exporter *chart.Exporter) *testEnv {
	t.Helper()
	mgr := session.NewManager(session.Options{
		MaxSessions:   10,
		IdleTTL:       time.Minute,
		Seed:          company.DefaultSeed(),
		DefaultHeight: 600,
	})
	prom := metrics.NewProm(mgr.Len)
	srv, err := NewServer(ServerConfig{
		Dashboard: dashboard.New(reader.Default("zh"), prom),
		Sessions:  mgr,
		Exporter:  exporter,
		Recorder:  prom,
		Metrics:   prom.Handler(),
		Cookie:    CookieConfig{Name: "ruleforty_session", MaxAge: time.Hour},
	})
	require.NoError(t, err)
	return &testEnv{handler: srv.Handler(), prom: prom, mgr: mgr}
}

func (e *testEnv) do(t *testing.T, method, path, body string, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == "ruleforty_session" {
			assert.True(t, c.HttpOnly)
			return c
		}
	}
	t.Fatalf("no session cookie in response")
	return nil
}

func TestNewServerRequiresDeps(t *testing.T) {
	_, err := NewServer(ServerConfig{})
	assert.Error(t, err)
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := env.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestIndexFirstPaint(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := env.do(t, http.MethodGet, "/", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "目前高度：600px")
	assert.Contains(t, body, "max-height: 600px")
	assert.Contains(t, body, "第一章")
	assert.Contains(t, body, `src="/chart"`)
	assert.Contains(t, body, "Add Company")
	assert.NotContains(t, body, "/chart.png")
	sessionCookie(t, rec)
	assert.Equal(t, 1, env.mgr.Len())
}

func TestStateSeed(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := env.do(t, http.MethodGet, "/api/state", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var view dashboard.PageView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Len(t, view.Records, 16)
	assert.Len(t, view.Figure.Scatter.Markers, 16)
	assert.Len(t, view.Figure.Frontier.Points, 76)
	assert.Equal(t, 1, view.Chapter.Chapter.Number)
	assert.Equal(t, "目前高度：600px", view.Panel.Label)
}

func TestSubmitFlowAndIsolation(t *testing.T) {
	env := newTestEnv(t, nil)
	first := env.do(t, http.MethodGet, "/api/state", "", nil)
	cookieA := sessionCookie(t, first)

	rec := env.do(t, http.MethodPost, "/api/companies",
		`{"label":"TEST","margin":50,"growth":10,"market_cap":100,"n_clicks":1}`, cookieA)
	require.Equal(t, http.StatusOK, rec.Code)
	var res dashboard.SubmitResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.True(t, res.Accepted)
	require.Len(t, res.Records, 17)
	last := res.Figure.Scatter.Markers[16]
	assert.InDelta(t, 10+50*41.0/39, last.Intercept, 1e-9)

	// same session sees the new record
	rec = env.do(t, http.MethodGet, "/api/state", "", cookieA)
	var view dashboard.PageView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Len(t, view.Records, 17)

	// a fresh browser does not
	rec = env.do(t, http.MethodGet, "/api/state", "", nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Len(t, view.Records, 16)
}

func TestSubmitRejections(t *testing.T) {
	cases := []struct {
		body   string
		reason string
	}{
		{`{"label":"","margin":1,"growth":1,"n_clicks":1}`, dashboard.ReasonEmptyLabel},
		{`{"label":"X","margin":null,"growth":1,"n_clicks":1}`, dashboard.ReasonMissingMargin},
		{`{"label":"X","margin":1,"n_clicks":1}`, dashboard.ReasonMissingGrowth},
		{`{"label":"X","margin":1,"growth":1,"market_cap":-3}`, dashboard.ReasonInvalidMarketCap},
		{`{"label":"X","margin":1,"growth":1,"n_clicks":0}`, dashboard.ReasonNoClick},
		{`{"label":"X","margin":1e16,"growth":1}`, dashboard.ReasonInvalidMargin},
		{`{"label":"X","margin":1,"growth":-2e5}`, dashboard.ReasonInvalidGrowth},
		{`{"label":"X","margin":"1","growth":1,"n_clicks":1}`, dashboard.ReasonMalformed},
		{`{"label":"X","margin":1,"growth":1,"n_clicks":1,"extra":true}`, dashboard.ReasonMalformed},
	}
	env := newTestEnv(t, nil)
	cookie := sessionCookie(t, env.do(t, http.MethodGet, "/api/state", "", nil))
	for _, tc := range cases {
		rec := env.do(t, http.MethodPost, "/api/companies", tc.body, cookie)
		require.Equal(t, http.StatusOK, rec.Code, tc.body)
		var res dashboard.SubmitResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		assert.False(t, res.Accepted, tc.body)
		assert.Equal(t, tc.reason, res.Reason, tc.body)
		assert.Len(t, res.Records, 16, tc.body)
	}
}

func TestSubmitMissingClicksCountsAsOne(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := env.do(t, http.MethodPost, "/api/companies", `{"label":"ACME","margin":-3.5,"growth":22}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var res dashboard.SubmitResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.True(t, res.Accepted)
	assert.Nil(t, res.Records[16].MarketCap)
}

func TestSubmitBadJSON(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := env.do(t, http.MethodPost, "/api/companies", `{"label":`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNextChapterCycle(t *testing.T) {
	env := newTestEnv(t, nil)
	cookie := sessionCookie(t, env.do(t, http.MethodGet, "/", "", nil))

	var numbers []int
	for i := 1; i <= 3; i++ {
		rec := env.do(t, http.MethodPost, "/api/chapter/next", `{"n_clicks":`+strconv.Itoa(i)+`}`, cookie)
		require.Equal(t, http.StatusOK, rec.Code)
		var view dashboard.ChapterView
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
		numbers = append(numbers, view.Chapter.Number)
	}
	assert.Equal(t, []int{2, 3, 1}, numbers)

	rec := env.do(t, http.MethodPost, "/api/chapter/next", `{"n_clicks":0}`, cookie)
	var view dashboard.ChapterView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.False(t, view.Moved)
	assert.Equal(t, 1, view.Chapter.Number)

	rec = env.do(t, http.MethodPost, "/api/chapter/next", `{"n_clicks":"x"}`, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestResizePanel(t *testing.T) {
	env := newTestEnv(t, nil)
	cookie := sessionCookie(t, env.do(t, http.MethodGet, "/", "", nil))

	rec := env.do(t, http.MethodPost, "/api/panel/height", `{"height":300}`, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	var panel dashboard.PanelView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &panel))
	assert.Equal(t, dashboard.PanelView{Height: 300, Style: "max-height: 300px", Label: "目前高度：300px"}, panel)

	page := env.do(t, http.MethodGet, "/", "", cookie)
	assert.Contains(t, page.Body.String(), "max-height: 300px")

	rec = env.do(t, http.MethodPost, "/api/panel/height", `{}`, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChartPage(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := env.do(t, http.MethodGet, "/chart", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "Rule of 40 Frontier")
}

func TestChartPNGDisabled(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := env.do(t, http.MethodGet, "/chart.png", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestChartPNGEnabled(t *testing.T) {
	exp := chart.NewExporter(true, time.Second).WithRenderer(func(context.Context, []byte, int, int) ([]byte, error) {
		return []byte("\x89PNG"), nil
	})
	env := newTestEnv(t, exp)
	page := env.do(t, http.MethodGet, "/", "", nil)
	assert.Contains(t, page.Body.String(), "/chart.png")

	rec := env.do(t, http.MethodGet, "/chart.png", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, "\x89PNG", rec.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, nil)
	env.do(t, http.MethodPost, "/api/companies", `{"label":"A","margin":1,"growth":1}`, nil)
	rec := env.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `ruleforty_submissions_total{result="accepted"} 1`)
	assert.Contains(t, body, "ruleforty_sessions_created_total 1")
	assert.Contains(t, body, `ruleforty_http_requests_total{route="/api/companies",status="200"} 1`)
}

func TestStaticAssets(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := env.do(t, http.MethodGet, "/static/app.js", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/api/companies")
}
