package emotion

import (
	"fmt"
	"math"
	"strings"
)

// Expression is a face-expression label reported by an external detector.
type Expression string

const (
	ExpressionAngry     Expression = "angry"
	ExpressionFearful   Expression = "fearful"
	ExpressionSurprised Expression = "surprised"
	ExpressionSad       Expression = "sad"
	ExpressionDisgusted Expression = "disgusted"
	ExpressionHappy     Expression = "happy"
	ExpressionNeutral   Expression = "neutral"
)

// Level is a traffic-light severity.
type Level string

const (
	LevelGreen  Level = "green"
	LevelYellow Level = "yellow"
	LevelRed    Level = "red"
)

const (
	noFaceBadge = "no face"
	noFaceTip   = "Ensure your face is centered and well lit."
)

// ExpressionReading is a detector result prepared for display.
type ExpressionReading struct {
	Expression     Expression `json:"expression,omitempty"`
	Confidence     float64    `json:"confidence"`
	Level          Level      `json:"level"`
	Badge          string     `json:"badge"`
	Recommendation string     `json:"recommendation"`
	FaceDetected   bool       `json:"face_detected"`
}

// LevelForExpression returns the rough arousal level of an expression.
func LevelForExpression(expr Expression) Level {
	switch expr {
	case ExpressionAngry, ExpressionFearful, ExpressionSurprised:
		return LevelRed
	case ExpressionSad, ExpressionDisgusted:
		return LevelYellow
	default:
		return LevelGreen
	}
}

// ExpressionRecommendation returns a short exercise for an expression.
func ExpressionRecommendation(expr Expression) string {
	switch expr {
	case ExpressionAngry:
		return "Try box breathing: in 4s, hold 4s, out 4s, hold 4s for 1-2 min."
	case ExpressionFearful:
		return "Grounding 5-4-3-2-1 can reduce anxiety signals."
	case ExpressionSurprised:
		return "Slow breathing can stabilize arousal."
	case ExpressionSad:
		return "Take a brief walk and do 3 cycles of 4-6 breathing."
	case ExpressionDisgusted:
		return "Progressive muscle relaxation for 1-2 minutes."
	case ExpressionHappy:
		return "Maintain slow nasal breathing and posture awareness."
	case ExpressionNeutral:
		return "Scan body tension and release shoulders and jaw."
	default:
		return ""
	}
}

// ReadExpression builds the display reading for a single classified expression.
// An empty label means no face was detected.
func ReadExpression(expr Expression, confidence float64) ExpressionReading {
	expr = Expression(strings.ToLower(strings.TrimSpace(string(expr))))
	if expr == "" {
		return NoFace()
	}
	confidence = clamp01(confidence)
	return ExpressionReading{
		Expression:     expr,
		Confidence:     confidence,
		Level:          LevelForExpression(expr),
		Badge:          fmt.Sprintf("%s %d%%", expr, int(math.Round(confidence*100))),
		Recommendation: ExpressionRecommendation(expr),
		FaceDetected:   true,
	}
}

// ReadExpressions picks the highest-scoring expression from a detector score map.
func ReadExpressions(scores map[string]float64) ExpressionReading {
	expr, confidence, ok := TopExpression(scores)
	if !ok {
		return NoFace()
	}
	return ReadExpression(expr, confidence)
}

// NoFace is the reading shown when the detector finds no face.
func NoFace() ExpressionReading {
	return ExpressionReading{
		Level:          LevelYellow,
		Badge:          noFaceBadge,
		Recommendation: noFaceTip,
	}
}

// TopExpression returns the label with the highest score. Labels are
// compared lowercased and trimmed, so "Happy" and "happy" are one label
// holding the larger score. Ties go to the lexically smaller label.
func TopExpression(scores map[string]float64) (Expression, float64, bool) {
	merged := make(map[string]float64, len(scores))
	for label, score := range scores {
		label = strings.ToLower(strings.TrimSpace(label))
		if label == "" || math.IsNaN(score) {
			continue
		}
		if prev, ok := merged[label]; !ok || score > prev {
			merged[label] = score
		}
	}

	var (
		best      string
		bestScore float64
		found     bool
	)
	for label, score := range merged {
		if !found || score > bestScore || (score == bestScore && label < best) {
			best, bestScore, found = label, score, true
		}
	}
	return Expression(best), bestScore, found
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
