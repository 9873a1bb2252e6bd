package http

import (
	"bytes"
	"context"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"rockmass/metrics"
	"rockmass/ml"
	"rockmass/stress"
)

// Dashboard serves the analysis pages and API on top of one loaded classifier.
type Dashboard struct {
	classifier *ml.Classifier
	logger     *zap.Logger
	templates  map[Page]*template.Template
	pages      map[Page]http.HandlerFunc
	upgrader   websocket.Upgrader
}

// Analysis is the result of one compute-and-render cycle.
type Analysis struct {
	Features       ml.FeatureVector  `json:"features"`
	Recommendation ml.Recommendation `json:"recommendation"`
	Curve          stress.Curve      `json:"curve"`
}

// NewDashboard fails with ml.ErrModelUnavailable when classifier is nil so
// that a process without a model never starts serving.
func NewDashboard(classifier *ml.Classifier, logger *zap.Logger, allowedOrigins []string) (*Dashboard, error) {
	if classifier == nil {
		return nil, ml.ErrModelUnavailable
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	templates, err := parsePageTemplates()
	if err != nil {
		return nil, err
	}
	d := &Dashboard{
		classifier: classifier,
		logger:     logger,
		templates:  templates,
		upgrader:   newUpgrader(allowedOrigins),
	}
	d.pages = map[Page]http.HandlerFunc{
		PageInformation: d.renderInformation,
		PageAnalysis:    d.renderAnalysis,
	}
	return d, nil
}

func (d *Dashboard) RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/health", handleHealth)
	mux.HandleFunc("GET /api/parameters", handleParameters)
	mux.HandleFunc("GET /api/labels", d.handleLabels)
	mux.HandleFunc("GET /api/recommendation", d.handleRecommendation)
	mux.HandleFunc("GET /api/stress/curve", handleCurve)
	mux.HandleFunc("GET /api/stress/chart/{format}", d.handleChart)
	mux.HandleFunc("POST /api/analysis", d.handleAnalysis)
	mux.HandleFunc("GET /api/ws/analysis", d.handleWebSocket)
}

// Analyze classifies features and computes the matching stress curve.
func (d *Dashboard) Analyze(ctx context.Context, features ml.FeatureVector) (*Analysis, error) {
	recommendation, err := d.recommend(ctx, features)
	if err != nil {
		return nil, err
	}
	return &Analysis{
		Features:       features,
		Recommendation: recommendation,
		Curve:          stress.Compute(features),
	}, nil
}

func (d *Dashboard) recommend(ctx context.Context, features ml.FeatureVector) (ml.Recommendation, error) {
	recommendation, err := d.classifier.Classify(features)
	if err != nil {
		reason := "predict"
		if errors.Is(err, ml.ErrInvalidInput) {
			reason = "invalid_input"
		} else if errors.Is(err, ml.ErrModelUnavailable) {
			reason = "model_unavailable"
		}
		metrics.InferenceFailuresTotal.WithLabelValues(reason).Inc()
		d.logger.Error("recommendation failed",
			zap.String("request_id", GetRequestID(ctx)),
			zap.Any("features", features),
			zap.Error(err),
		)
		return "", err
	}
	metrics.RecommendationsTotal.WithLabelValues(string(recommendation)).Inc()
	d.logger.Debug("recommendation",
		zap.String("request_id", GetRequestID(ctx)),
		zap.Any("features", features),
		zap.String("method", string(recommendation)),
		zap.Duration("elapsed", sinceStart(ctx)),
	)
	return recommendation, nil
}

func sinceStart(ctx context.Context) time.Duration {
	start := GetStartTime(ctx)
	if start.IsZero() {
		return 0
	}
	return time.Since(start)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func handleParameters(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"parameters": ml.Parameters(),
	})
}

func (d *Dashboard) handleLabels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"labels": d.classifier.Labels(),
	})
}

func (d *Dashboard) handleRecommendation(w http.ResponseWriter, r *http.Request) {
	features, err := parseFeatures(r.URL.Query())
	if err != nil {
		rejectInput(w, err)
		return
	}
	recommendation, err := d.recommend(r.Context(), features)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "recommendation failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"recommendation": recommendation,
		"features":       features,
	})
}

func handleCurve(w http.ResponseWriter, r *http.Request) {
	features, err := parseFeatures(r.URL.Query())
	if err != nil {
		rejectInput(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stress.Compute(features))
}

func (d *Dashboard) handleChart(w http.ResponseWriter, r *http.Request) {
	format, err := stress.ParseFormat(r.PathValue("format"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	features, err := parseFeatures(r.URL.Query())
	if err != nil {
		rejectInput(w, err)
		return
	}

	start := time.Now()
	var buf bytes.Buffer
	if err := stress.Render(&buf, stress.Compute(features), format); err != nil {
		d.logger.Error("chart render failed",
			zap.String("request_id", GetRequestID(r.Context())),
			zap.String("format", string(format)),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "chart render failed")
		return
	}
	metrics.ChartRenderDuration.WithLabelValues(string(format)).Observe(time.Since(start).Seconds())

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (d *Dashboard) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	features := ml.DefaultFeatures()
	if err := json.NewDecoder(r.Body).Decode(&features); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validateFeatures(features); err != nil {
		rejectInput(w, err)
		return
	}
	analysis, err := d.Analyze(r.Context(), features)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "recommendation failed")
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

func rejectInput(w http.ResponseWriter, err error) {
	metrics.InferenceFailuresTotal.WithLabelValues("rejected_input").Inc()
	writeError(w, http.StatusBadRequest, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
