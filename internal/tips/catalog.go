// Package tips holds the calming-exercise library and its search.
package tips

import (
	"strings"

	"github.com/easeaico/neuromirror/internal/emotion"
)

// Tip is one calming exercise.
type Tip struct {
	Slug  string   `json:"slug"`
	Title string   `json:"title"`
	Body  string   `json:"body"`
	Tags  []string `json:"tags"`
}

// Text is the title and body, used by keyword search.
func (t Tip) Text() string {
	return t.Title + ". " + t.Body
}

var baseCatalog = []Tip{
	{
		Slug:  "breathing-4-4-6",
		Title: "4-4-6 breathing",
		Body:  "Inhale 4s, hold 4s, exhale 6s for 6 rounds.",
		Tags:  []string{"breathing", "calm", "stress"},
	},
	{
		Slug:  "progressive-relax",
		Title: "Progressive relaxation",
		Body:  "Tense a muscle group 5s, release 10s, move from head to toe.",
		Tags:  []string{"relaxation", "tension", "body"},
	},
	{
		Slug:  "grounding-5-4-3-2-1",
		Title: "Grounding 5-4-3-2-1",
		Body:  "Name 5 things you see, 4 you feel, 3 you hear, 2 you smell, 1 you taste.",
		Tags:  []string{"grounding", "anxiety", "fear"},
	},
	{
		Slug:  "box-breathing",
		Title: "Box breathing",
		Body:  "In 4s, hold 4s, out 4s, hold 4s; repeat for 1-2 minutes.",
		Tags:  []string{"breathing", "anger", "focus"},
	},
	{
		Slug:  "long-exhales",
		Title: "Long exhales",
		Body:  "Soften the gaze and lengthen exhales; aim for 6 breaths per minute.",
		Tags:  []string{"breathing", "calm", "arousal"},
	},
}

// Catalog returns the seed tips: the base library plus the guidance attached
// to each emotion label and face expression.
func Catalog() []Tip {
	catalog := make([]Tip, 0, len(baseCatalog)+11)
	catalog = append(catalog, baseCatalog...)

	for _, label := range []emotion.EmotionLabel{emotion.EmotionCalm, emotion.EmotionEnthusiasm, emotion.EmotionStress, emotion.EmotionFatigue} {
		catalog = append(catalog, Tip{
			Slug:  "emotion-" + strings.ToLower(string(label)),
			Title: string(label),
			Body:  emotion.Recommendation(label),
			Tags:  []string{"emotion", strings.ToLower(string(label))},
		})
	}
	for _, expr := range []emotion.Expression{
		emotion.ExpressionAngry, emotion.ExpressionFearful, emotion.ExpressionSurprised,
		emotion.ExpressionSad, emotion.ExpressionDisgusted, emotion.ExpressionHappy, emotion.ExpressionNeutral,
	} {
		catalog = append(catalog, Tip{
			Slug:  "expression-" + string(expr),
			Title: "Feeling " + string(expr),
			Body:  emotion.ExpressionRecommendation(expr),
			Tags:  []string{"expression", string(expr), string(emotion.LevelForExpression(expr))},
		})
	}
	return catalog
}

// BaseTips returns the general-purpose tips shown by the "calm tip" button.
func BaseTips() []Tip {
	out := make([]Tip, len(baseCatalog))
	copy(out, baseCatalog)
	return out
}
