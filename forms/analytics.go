package forms

import (
	"github.com/mbolis/quick-form/model"
)

const maxTextSamples = 5

type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

type QuestionSummary struct {
	QuestionID   string             `json:"questionId"`
	Label        string             `json:"label"`
	Type         model.QuestionType `json:"type"`
	TotalAnswers int                `json:"totalAnswers"`
	Counts       []ValueCount       `json:"counts"`
	Samples      []string           `json:"samples"`
}

// Aggregate summarizes responses, given newest first, for each question.
// Choice questions get a count per distinct value in first-seen order,
// free-text questions get their most recent answers. A multi-select answer
// counts once per selected value.
func Aggregate(questions []model.Question, responses []model.Response) []QuestionSummary {
	summaries := make([]QuestionSummary, len(questions))
	for i, q := range questions {
		sum := QuestionSummary{
			QuestionID: q.ID,
			Label:      q.Label,
			Type:       q.Type,
			Counts:     []ValueCount{},
			Samples:    []string{},
		}

		index := map[string]int{}
		tally := func(value string) {
			sum.TotalAnswers++
			if !q.Type.IsChoice() {
				return
			}
			if j, ok := index[value]; ok {
				sum.Counts[j].Count++
				return
			}
			index[value] = len(sum.Counts)
			sum.Counts = append(sum.Counts, ValueCount{Value: value, Count: 1})
		}

		for _, r := range responses {
			answer := r.Answers[q.ID]
			if answer.IsEmpty() {
				continue
			}
			if answer.IsList() {
				for _, v := range answer.Values() {
					tally(v)
				}
				continue
			}

			tally(answer.String())
			if q.Type.IsFreeText() && len(sum.Samples) < maxTextSamples {
				sum.Samples = append(sum.Samples, answer.String())
			}
		}

		summaries[i] = sum
	}
	return summaries
}
