package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"

	"ai_content_optimizer/generator"
	"ai_content_optimizer/options"
)

type stubGenerator struct {
	mu    sync.Mutex
	calls int
	res   generator.Result
	err   error
}

func (g *stubGenerator) Generate(_ context.Context, req generator.Request) (generator.Result, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if g.err != nil {
		return generator.Result{}, g.err
	}
	res := g.res.Clone()
	// only what was asked for
	for l := range res.Summaries {
		found := false
		for _, want := range req.Lengths {
			if want == l {
				found = true
			}
		}
		if !found {
			delete(res.Summaries, l)
		}
	}
	return res, nil
}

func (g *stubGenerator) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

func sampleResult() generator.Result {
	return generator.Result{
		Summaries: map[options.Length]string{
			options.Words80:  "Eighty words.",
			options.Words170: "One seventy.",
			options.Words300: "Three hundred words.",
			options.Words600: "Six hundred.",
		},
		Titles: []string{"T1", "T2", "T3", "T4", "T5"},
		Tags:   []string{"a", "#b", "c", "d", "e", "f", "g", "h", "i", "j"},
	}
}

func newTestServer(t *testing.T, gen *stubGenerator) (*httptest.Server, *http.Client) {
	t.Helper()
	srv, err := New(gen, slog.New(slog.NewTextHandler(io.Discard, nil)), Options{})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	return ts, &http.Client{Jar: jar}
}

func postJSON(t *testing.T, c *http.Client, u string, body any) (*http.Response, stateResp) {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	resp, err := c.Post(u, "application/json", strings.NewReader(string(b)))
	if err != nil {
		t.Fatalf("post %s: %v", u, err)
	}
	defer resp.Body.Close()

	var st stateResp
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
			t.Fatalf("decode: %v", err)
		}
	}
	return resp, st
}

func TestIndexSetsSessionCookieAndRendersDefaults(t *testing.T) {
	ts, c := newTestServer(t, &stubGenerator{res: sampleResult()})

	resp, err := c.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
	found := false
	for _, ck := range resp.Cookies() {
		if ck.Name == sessionCookie && ck.Value != "" {
			found = true
		}
	}
	if !found {
		t.Fatalf("session cookie not set")
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if n := doc.Find("input[name=length][checked]").Length(); n != 4 {
		t.Fatalf("expected all lengths checked, got %d", n)
	}
	if got := doc.Find("#submit").Text(); got != "Generate Content" {
		t.Fatalf("unexpected submit label: %q", got)
	}
	if v, _ := doc.Find("#language option[selected]").Attr("value"); v != "English" {
		t.Fatalf("unexpected language: %q", v)
	}
}

func TestAPIGenerateScenario(t *testing.T) {
	gen := &stubGenerator{res: sampleResult()}
	ts, c := newTestServer(t, gen)

	resp, st := postJSON(t, c, ts.URL+"/api/generate", generateReq{
		URL:      "https://example.com/a",
		Language: "English",
		Tone:     "Objective",
		Lengths:  []string{"s300", "s80"},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: %d (%s)", resp.StatusCode, st.Error)
	}
	if st.Status != "success" || st.Result == nil {
		t.Fatalf("unexpected state: %+v", st)
	}
	if len(st.Result.Summaries) != 2 || len(st.Result.Titles) != 5 || len(st.Result.Tags) != 10 {
		t.Fatalf("unexpected result: %+v", st.Result)
	}

	page, err := c.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer page.Body.Close()
	doc, err := goquery.NewDocumentFromReader(page.Body)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	var labels []string
	doc.Find(".summary h4").Each(func(_ int, s *goquery.Selection) {
		labels = append(labels, s.Text())
	})
	if strings.Join(labels, ",") != "80 Words,300 Words" {
		t.Fatalf("unexpected cards: %v", labels)
	}
	doc.Find(".tags .tag").Each(func(_ int, s *goquery.Selection) {
		if !strings.HasPrefix(s.Text(), "#") || strings.HasPrefix(s.Text(), "##") {
			t.Fatalf("bad tag %q", s.Text())
		}
	})
}

func TestAPIGenerateWithoutLengths(t *testing.T) {
	gen := &stubGenerator{res: sampleResult()}
	ts, c := newTestServer(t, gen)

	resp, st := postJSON(t, c, ts.URL+"/api/generate", generateReq{URL: "https://example.com/a"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
	if st.Error != "Please select at least one summary length." {
		t.Fatalf("unexpected error: %q", st.Error)
	}
	if st.Submit.Label != "Select at least one length" || !st.Submit.Disabled {
		t.Fatalf("unexpected submit state: %+v", st.Submit)
	}
	if gen.callCount() != 0 {
		t.Fatalf("provider must not be called")
	}
}

func TestAPIGenerateProviderFailure(t *testing.T) {
	gen := &stubGenerator{err: &generator.ProviderError{Cause: errors.New("upstream 500")}}
	ts, c := newTestServer(t, gen)

	resp, st := postJSON(t, c, ts.URL+"/api/generate", generateReq{
		URL:     "https://example.com/a",
		Lengths: []string{"80"},
	})
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
	if st.Status != "error" || st.Error != "Failed to generate content: upstream 500" {
		t.Fatalf("unexpected state: %+v", st)
	}
}

func TestAPIGenerateRejectsUnknownTone(t *testing.T) {
	ts, c := newTestServer(t, &stubGenerator{})
	resp, _ := postJSON(t, c, ts.URL+"/api/generate", generateReq{URL: "https://example.com", Tone: "Angry"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
}

func TestFormPostRedirectsAndKeepsSession(t *testing.T) {
	gen := &stubGenerator{res: sampleResult()}
	ts, c := newTestServer(t, gen)

	resp, err := c.PostForm(ts.URL+"/generate", url.Values{
		"url":      {"https://example.com/a"},
		"language": {"Vietnamese"},
		"tone":     {"Humorous"},
		"length":   {"s170"},
	})
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	// the client follows the 303 back to the page
	if resp.Request.URL.Path != "/" || resp.StatusCode != http.StatusOK {
		t.Fatalf("expected redirect to page, got %s %d", resp.Request.URL.Path, resp.StatusCode)
	}
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if n := doc.Find(".summary").Length(); n != 1 {
		t.Fatalf("expected one summary, got %d", n)
	}
	if v, _ := doc.Find("#language option[selected]").Attr("value"); v != "Vietnamese" {
		t.Fatalf("form state lost: %q", v)
	}
	if gen.callCount() != 1 {
		t.Fatalf("expected one provider call, got %d", gen.callCount())
	}
}

func TestToggleAndReset(t *testing.T) {
	ts, c := newTestServer(t, &stubGenerator{res: sampleResult()})

	_, st := postJSON(t, c, ts.URL+"/api/form/toggle", toggleReq{Length: "s80"})
	if strings.Join(st.Form.Lengths, ",") != "s170,s300,s600" {
		t.Fatalf("unexpected lengths after toggle: %v", st.Form.Lengths)
	}
	_, st = postJSON(t, c, ts.URL+"/api/form/toggle", toggleReq{Length: "s80"})
	if len(st.Form.Lengths) != 4 {
		t.Fatalf("double toggle did not restore: %v", st.Form.Lengths)
	}

	resp, _ := postJSON(t, c, ts.URL+"/api/form/toggle", toggleReq{Length: "s90"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("unexpected status for bad length: %d", resp.StatusCode)
	}

	postJSON(t, c, ts.URL+"/api/generate", generateReq{URL: "https://example.com", Lengths: []string{"s80"}})
	_, st = postJSON(t, c, ts.URL+"/api/reset", struct{}{})
	if st.Status != "idle" || st.Result != nil {
		t.Fatalf("unexpected state after reset: %+v", st)
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	gen := &stubGenerator{res: sampleResult()}
	ts, c1 := newTestServer(t, gen)
	jar, _ := cookiejar.New(nil)
	c2 := &http.Client{Jar: jar}

	postJSON(t, c1, ts.URL+"/api/generate", generateReq{URL: "https://example.com", Lengths: []string{"s80"}})

	resp, err := c2.Get(ts.URL + "/api/state")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	var st stateResp
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if st.Status != "idle" {
		t.Fatalf("second session saw first session's state: %+v", st)
	}
}

func TestExport(t *testing.T) {
	ts, c := newTestServer(t, &stubGenerator{res: sampleResult()})

	resp, err := c.Get(ts.URL + "/export.md")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 without result, got %d", resp.StatusCode)
	}

	postJSON(t, c, ts.URL+"/api/generate", generateReq{URL: "https://example.com/a", Lengths: []string{"s80"}})

	resp, err = c.Get(ts.URL + "/export.md")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if !strings.Contains(string(body), "### 80 Words") || !strings.Contains(string(body), "https://example.com/a") {
		t.Fatalf("unexpected markdown:\n%s", body)
	}

	resp, err = c.Get(ts.URL + "/export.html")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if !strings.HasPrefix(resp.Header.Get("Content-Type"), "text/html") {
		t.Fatalf("unexpected content type: %s", resp.Header.Get("Content-Type"))
	}
}

func TestServiceWorkerListsOfflineAssets(t *testing.T) {
	ts, c := newTestServer(t, &stubGenerator{})

	resp, err := c.Get(ts.URL + "/sw.js")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	js := string(body)

	if !strings.Contains(js, `"app-shell-v1"`) {
		t.Fatalf("cache name missing:\n%s", js)
	}
	for _, asset := range OfflineAssets {
		if !strings.Contains(js, `"`+asset+`"`) {
			t.Fatalf("asset %s missing from service worker", asset)
		}
		if asset == "/" {
			continue
		}
		r, err := c.Get(ts.URL + asset)
		if err != nil {
			t.Fatalf("get %s: %v", asset, err)
		}
		r.Body.Close()
		if r.StatusCode != http.StatusOK {
			t.Fatalf("offline asset %s not served: %d", asset, r.StatusCode)
		}
	}
}

func TestHealth(t *testing.T) {
	ts, c := newTestServer(t, &stubGenerator{})
	resp, err := c.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
}

func TestSweepDropsIdleSessions(t *testing.T) {
	gen := &stubGenerator{}
	srv, err := New(gen, slog.New(slog.NewTextHandler(io.Discard, nil)), Options{SessionTTL: time.Hour})
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	srv.store.create()
	srv.store.create()
	if srv.store.len() != 2 {
		t.Fatalf("expected two sessions")
	}

	if n := srv.store.sweep(time.Now()); n != 0 {
		t.Fatalf("fresh sessions swept: %d", n)
	}
	if n := srv.store.sweep(time.Now().Add(2 * time.Hour)); n != 2 {
		t.Fatalf("expected both sessions swept, got %d", n)
	}
}

func TestNewRequiresGenerator(t *testing.T) {
	if _, err := New(nil, nil, Options{}); err == nil {
		t.Fatalf("expected error")
	}
}

type fakeRecorder struct {
	mu          sync.Mutex
	generations []string
	routes      []string
}

func (f *fakeRecorder) ObserveGeneration(outcome string, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.generations = append(f.generations, outcome)
}

func (f *fakeRecorder) ObserveRequest(method, route string, status int, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes = append(f.routes, route)
}

func TestMetricsObserveGenerationsAndRoutes(t *testing.T) {
	rec := &fakeRecorder{}
	metricsBody := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("metrics ok"))
	})
	srv, err := New(&stubGenerator{res: sampleResult()}, slog.New(slog.NewTextHandler(io.Discard, nil)), Options{
		Metrics:        rec,
		MetricsHandler: metricsBody,
	})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	ts := httptest.NewServer(srv.Routes())
	defer ts.Close()

	postJSON(t, ts.Client(), ts.URL+"/api/generate", generateReq{
		URL: "https://example.com/a", Language: "English", Tone: "Professional", Lengths: []string{"80"},
	})
	postJSON(t, ts.Client(), ts.URL+"/api/generate", generateReq{
		URL: "https://example.com/a", Language: "English", Tone: "Professional",
	})

	resp, err := ts.Client().Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("get metrics: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(body) != "metrics ok" {
		t.Fatalf("metrics handler not mounted: %q", body)
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if strings.Join(rec.generations, ",") != "success,validation" {
		t.Fatalf("unexpected generation outcomes: %v", rec.generations)
	}
	if len(rec.routes) != 3 || rec.routes[0] != "POST /api/generate" || rec.routes[2] != "GET /metrics" {
		t.Fatalf("unexpected routes: %v", rec.routes)
	}
}

func TestMetricsRouteAbsentWithoutHandler(t *testing.T) {
	ts, c := newTestServer(t, &stubGenerator{})

	resp, err := c.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 from static files, got %d", resp.StatusCode)
	}
}
