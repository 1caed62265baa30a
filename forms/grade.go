package forms

import (
	"strings"

	"github.com/mbolis/quick-form/model"
)

// Grade returns the points awarded to answers. A question is graded when it
// has an answer key and a non-null answer: free-text answers match the key
// ignoring case and surrounding spaces, other answers must equal it
// exactly. Each correct question awards its points.
//
// List answers (checkboxes) are never graded and award nothing.
func Grade(questions []model.Question, answers map[string]model.Answer) int {
	total := 0
	for _, q := range questions {
		key := string(q.Metadata.CorrectAnswer)
		answer, ok := answers[q.ID]
		if key == "" || !ok || answer.Kind() == model.NullAnswer {
			continue
		}
		if isCorrect(q.Type, key, answer) {
			total += q.Points
		}
	}
	return total
}

func isCorrect(typ model.QuestionType, key string, answer model.Answer) bool {
	switch {
	case answer.IsList():
		// TODO grade checkbox answers against the options marked isCorrect
		return false
	case typ.IsFreeText():
		return normalize(answer.String()) == normalize(key)
	default:
		return answer.String() == key
	}
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
