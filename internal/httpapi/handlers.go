package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/easeaico/neuromirror/internal/coach"
	"github.com/easeaico/neuromirror/internal/emotion"
	"github.com/easeaico/neuromirror/internal/tips"
	"github.com/easeaico/neuromirror/internal/vitals"
)

const (
	maxBodyBytes   = 1 << 16
	maxSeriesPoint = 3600
)

var errServiceUnavailable = errors.New("service not configured")

// estimateRequest keeps the baselines raw: forms send "" for empty fields and
// an unusable baseline falls back instead of failing the request.
type estimateRequest struct {
	UserID              string          `json:"user_id,omitempty"`
	HeartRate           *float64        `json:"heart_rate"`
	SkinTemperature     *float64        `json:"skin_temperature"`
	HeartRateBaseline   json.RawMessage `json:"heart_rate_baseline,omitempty"`
	TemperatureBaseline json.RawMessage `json:"temperature_baseline,omitempty"`
}

type expressionRequest struct {
	Expression  string             `json:"expression"`
	Confidence  float64            `json:"confidence"`
	Expressions map[string]float64 `json:"expressions,omitempty"`
}

type baselineResponse struct {
	UserID string `json:"user_id"`
	emotion.Baseline
}

type coachResponse struct {
	Estimate emotion.EmotionEstimate `json:"estimate"`
	Advice   coach.Advice            `json:"advice"`
}

type chatRequest struct {
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id,omitempty"`
	Message   string `json:"message"`
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) estimateHandler(w http.ResponseWriter, r *http.Request) {
	var req estimateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	estimate, err := s.estimate(r, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, estimate)
}

// estimate resolves the baseline for a request: usable explicit fields win,
// then the user's stored profile, then the configured defaults.
func (s *Server) estimate(r *http.Request, req estimateRequest) (emotion.EmotionEstimate, error) {
	if req.HeartRate == nil {
		return emotion.EmotionEstimate{}, &emotion.InvalidInputError{Field: "heart_rate", Value: "missing"}
	}
	if req.SkinTemperature == nil {
		return emotion.EmotionEstimate{}, &emotion.InvalidInputError{Field: "skin_temperature", Value: "missing"}
	}
	reading := emotion.Reading{HeartRate: *req.HeartRate, SkinTemperature: *req.SkinTemperature}

	baseline := emotion.Baseline{
		HeartRate:   baselineField(req.HeartRateBaseline),
		Temperature: baselineField(req.TemperatureBaseline),
	}
	if s.Emotions != nil {
		stored, err := s.Emotions.Baseline(r.Context(), req.UserID)
		if err != nil {
			return emotion.EmotionEstimate{}, err
		}
		baseline = baseline.Or(stored)
	}
	return emotion.Estimate(reading, baseline)
}

// baselineField reads a number or a numeric string. Anything else is missing.
func baselineField(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return 0
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n
	}
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return emotion.ParseOptional(str)
	}
	return 0
}

func (s *Server) getBaselineHandler(w http.ResponseWriter, r *http.Request) {
	if s.Emotions == nil {
		writeError(w, r, errServiceUnavailable)
		return
	}
	user := mux.Vars(r)["user"]
	baseline, err := s.Emotions.Baseline(r.Context(), user)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, baselineResponse{UserID: user, Baseline: baseline})
}

func (s *Server) putBaselineHandler(w http.ResponseWriter, r *http.Request) {
	if s.Emotions == nil {
		writeError(w, r, errServiceUnavailable)
		return
	}
	user := mux.Vars(r)["user"]
	var baseline emotion.Baseline
	if err := decodeBody(r, &baseline); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.Emotions.SetBaseline(r.Context(), user, baseline); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, baselineResponse{UserID: user, Baseline: baseline})
}

func (s *Server) expressionHandler(w http.ResponseWriter, r *http.Request) {
	var req expressionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if len(req.Expressions) > 0 {
		writeJSON(w, http.StatusOK, emotion.ReadExpressions(req.Expressions))
		return
	}
	if strings.TrimSpace(req.Expression) == "" {
		writeJSON(w, http.StatusOK, emotion.NoFace())
		return
	}
	writeJSON(w, http.StatusOK, emotion.ReadExpression(emotion.Expression(req.Expression), req.Confidence))
}

func (s *Server) vitalsSampleHandler(w http.ResponseWriter, r *http.Request) {
	if s.Vitals == nil {
		writeError(w, r, errServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, s.Vitals.Next())
}

func (s *Server) sessionSeriesHandler(w http.ResponseWriter, r *http.Request) {
	if s.Vitals == nil {
		writeError(w, r, errServiceUnavailable)
		return
	}
	q := r.URL.Query()

	points := vitals.DefaultSessionPoints
	if raw := q.Get("points"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > maxSeriesPoint {
			writeError(w, r, &emotion.InvalidInputError{Field: "points", Value: raw})
			return
		}
		points = n
	}

	improved := false
	if raw := q.Get("improved"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, r, &emotion.InvalidInputError{Field: "improved", Value: raw})
			return
		}
		improved = b
	}

	if improved {
		writeJSON(w, http.StatusOK, s.Vitals.ImprovedSeries(points))
		return
	}
	writeJSON(w, http.StatusOK, s.Vitals.InitialSeries(points))
}

func (s *Server) randomTipHandler(w http.ResponseWriter, r *http.Request) {
	if s.Tips == nil {
		writeError(w, r, errServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, s.Tips.Random())
}

func (s *Server) searchTipsHandler(w http.ResponseWriter, r *http.Request) {
	if s.Tips == nil {
		writeError(w, r, errServiceUnavailable)
		return
	}
	q := r.URL.Query()
	k := 0
	if raw := q.Get("k"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, r, &emotion.InvalidInputError{Field: "k", Value: raw})
			return
		}
		k = n
	}
	matches, err := s.Tips.Search(r.Context(), q.Get("q"), k)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if matches == nil {
		matches = []tips.Match{}
	}
	writeJSON(w, http.StatusOK, matches)
}

func (s *Server) coachHandler(w http.ResponseWriter, r *http.Request) {
	var req estimateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	estimate, err := s.estimate(r, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, coachResponse{
		Estimate: estimate,
		Advice:   s.Coach.Advise(r.Context(), estimate),
	})
}

func (s *Server) chatHandler(w http.ResponseWriter, r *http.Request) {
	if s.Chat == nil {
		writeError(w, r, errServiceUnavailable)
		return
	}
	var req chatRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, r, &emotion.InvalidInputError{Field: "message", Value: "empty"})
		return
	}
	reply, err := s.Chat.Ask(r.Context(), req.UserID, req.SessionID, req.Message)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"reply": reply})
}

// decodeBody decodes a JSON request body. Malformed bodies are invalid input.
func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: malformed body: %v", emotion.ErrInvalidInput, err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	payload, err := json.Marshal(body)
	if err != nil {
		slog.Error("failed to encode response", "error", err.Error())
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"failed to encode response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(payload)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, emotion.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, errServiceUnavailable):
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "request_id", RequestID(r.Context()), "path", r.URL.Path, "error", err.Error())
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
