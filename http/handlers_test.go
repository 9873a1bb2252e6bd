package http

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"rockmass/ml"
	"rockmass/stress"
)

const testArtifact = "../models/tunneling_xgboost_model.json"

func newTestDashboard(t *testing.T, allowedOrigins ...string) *Dashboard {
	t.Helper()
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	model, err := ml.LoadArtifact(testArtifact)
	if err != nil {
		t.Fatalf("load artifact: %v", err)
	}
	classifier, err := ml.NewClassifier(model)
	if err != nil {
		t.Fatalf("new classifier: %v", err)
	}
	dashboard, err := NewDashboard(classifier, nil, allowedOrigins)
	if err != nil {
		t.Fatalf("new dashboard: %v", err)
	}
	return dashboard
}

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	return NewServer(DefaultServerConfig(), newTestDashboard(t), nil).Handler()
}

func serve(h http.Handler, method, target string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestHealthHandler(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/health", nil)
	if err != nil {
		t.Fatal(err)
	}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(handleHealth)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusOK {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusOK)
	}

	expected := `{"status":"ok"}`
	if rr.Body.String() != expected+"\n" && rr.Body.String() != expected {
		t.Errorf("handler returned unexpected body: got %v want %v", rr.Body.String(), expected)
	}
}

func TestNewDashboardWithoutClassifier(t *testing.T) {
	if _, err := NewDashboard(nil, nil, nil); err != ml.ErrModelUnavailable {
		t.Fatalf("expected ErrModelUnavailable, got %v", err)
	}
}

func TestRecommendationDefaults(t *testing.T) {
	h := newTestHandler(t)

	rr := serve(h, "GET", "/api/recommendation", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}

	var resp struct {
		Recommendation string           `json:"recommendation"`
		Features       ml.FeatureVector `json:"features"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Recommendation != "TBM" {
		t.Errorf("recommendation = %q, want TBM", resp.Recommendation)
	}
	if resp.Features != ml.DefaultFeatures() {
		t.Errorf("features = %+v, want defaults", resp.Features)
	}
}

func TestRecommendationQuery(t *testing.T) {
	h := newTestHandler(t)

	tests := []struct {
		query string
		want  string
	}{
		{"rmr=0&rqd=0&gsi=0&ucs=0&bts=0", "NATM"},
		{"rmr=80&rqd=90&gsi=85&ucs=180&bts=40", "Drill & Blast"},
		{"rmr=50&rqd=75&gsi=65&ucs=100&bts=25", "TBM"},
	}

	for _, tt := range tests {
		rr := serve(h, "GET", "/api/recommendation?"+tt.query, nil)
		if rr.Code != http.StatusOK {
			t.Fatalf("%s: status = %d", tt.query, rr.Code)
		}
		var resp map[string]interface{}
		if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
			t.Fatalf("%s: decode: %v", tt.query, err)
		}
		if resp["recommendation"] != tt.want {
			t.Errorf("%s: recommendation = %v, want %s", tt.query, resp["recommendation"], tt.want)
		}
	}
}

func TestRecommendationRejectsInput(t *testing.T) {
	h := newTestHandler(t)

	tests := []struct {
		query   string
		message string
	}{
		{"rmr=abc", "rmr must be an integer"},
		{"rmr=101", "rmr must be at most 100"},
		{"ucs=201", "ucs must be at most 200"},
		{"bts=-1", "bts must be at least 0"},
	}

	for _, tt := range tests {
		rr := serve(h, "GET", "/api/recommendation?"+tt.query, nil)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", tt.query, rr.Code)
			continue
		}
		if !strings.Contains(rr.Body.String(), tt.message) {
			t.Errorf("%s: body = %s, want %q", tt.query, rr.Body.String(), tt.message)
		}
	}
}

func TestCurveHandler(t *testing.T) {
	h := newTestHandler(t)

	rr := serve(h, "GET", "/api/stress/curve?gsi=10", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}

	var curve stress.Curve
	if err := json.Unmarshal(rr.Body.Bytes(), &curve); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(curve.X) != stress.Samples || len(curve.Y) != stress.Samples {
		t.Fatalf("curve has %d/%d points, want %d", len(curve.X), len(curve.Y), stress.Samples)
	}
	if curve.Y[0] != 10 {
		t.Errorf("y(0) = %v, want gsi", curve.Y[0])
	}
}

func TestChartHandler(t *testing.T) {
	h := newTestHandler(t)

	rr := serve(h, "GET", "/api/stress/chart/svg", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("svg status = %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("svg content type = %q", ct)
	}
	if !strings.Contains(rr.Body.String(), stress.Title) {
		t.Error("svg chart is missing its title")
	}

	rr = serve(h, "GET", "/api/stress/chart/png?rmr=10", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("png status = %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("png content type = %q", ct)
	}
	if !bytes.HasPrefix(rr.Body.Bytes(), []byte("\x89PNG")) {
		t.Error("png chart has no PNG signature")
	}

	rr = serve(h, "GET", "/api/stress/chart/gif", nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("gif status = %d, want 404", rr.Code)
	}

	rr = serve(h, "GET", "/api/stress/chart/svg?gsi=500", nil)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("out of range status = %d, want 400", rr.Code)
	}
}

func TestAnalysisHandler(t *testing.T) {
	h := newTestHandler(t)

	rr := serve(h, "POST", "/api/analysis", []byte(`{"rmr":0,"rqd":0,"gsi":0,"ucs":0,"bts":0}`))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}

	var analysis Analysis
	if err := json.Unmarshal(rr.Body.Bytes(), &analysis); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if analysis.Recommendation != "NATM" {
		t.Errorf("recommendation = %q, want NATM", analysis.Recommendation)
	}
	if analysis.Curve.Len() != stress.Samples {
		t.Errorf("curve has %d points", analysis.Curve.Len())
	}

	// 缺失字段使用默认值
	rr = serve(h, "POST", "/api/analysis", []byte(`{"rmr":50}`))
	if rr.Code != http.StatusOK {
		t.Fatalf("partial status = %d", rr.Code)
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &analysis); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if analysis.Features != ml.DefaultFeatures() || analysis.Recommendation != "TBM" {
		t.Errorf("partial analysis = %+v / %s", analysis.Features, analysis.Recommendation)
	}

	rr = serve(h, "POST", "/api/analysis", []byte(`{"rmr":`))
	if rr.Code != http.StatusBadRequest {
		t.Errorf("malformed status = %d, want 400", rr.Code)
	}

	rr = serve(h, "POST", "/api/analysis", []byte(`{"rqd":150}`))
	if rr.Code != http.StatusBadRequest {
		t.Errorf("out of range status = %d, want 400", rr.Code)
	}

	rr = serve(h, "GET", "/api/analysis", nil)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET status = %d, want 405", rr.Code)
	}
}

func TestLabelsAndParameters(t *testing.T) {
	h := newTestHandler(t)

	rr := serve(h, "GET", "/api/labels", nil)
	var labels struct {
		Labels []string `json:"labels"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &labels); err != nil {
		t.Fatalf("decode labels: %v", err)
	}
	want := []string{"Drill & Blast", "NATM", "TBM"}
	if strings.Join(labels.Labels, ",") != strings.Join(want, ",") {
		t.Errorf("labels = %v, want %v", labels.Labels, want)
	}

	rr = serve(h, "GET", "/api/parameters", nil)
	var params struct {
		Parameters []ml.ParameterSpec `json:"parameters"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &params); err != nil {
		t.Fatalf("decode parameters: %v", err)
	}
	if len(params.Parameters) != len(ml.FeatureNames()) {
		t.Fatalf("got %d parameters", len(params.Parameters))
	}
	if params.Parameters[3].Max != 200 {
		t.Errorf("ucs max = %d, want 200", params.Parameters[3].Max)
	}
}

func TestMetricsRoute(t *testing.T) {
	h := newTestHandler(t)

	serve(h, "GET", "/api/recommendation", nil)
	rr := serve(h, "GET", "/metrics", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("metrics status = %d", rr.Code)
	}
	body := rr.Body.String()
	for _, name := range []string{"rockmass_recommendations_total", "rockmass_http_requests_total"} {
		if !strings.Contains(body, name) {
			t.Errorf("metrics output is missing %s", name)
		}
	}
}
