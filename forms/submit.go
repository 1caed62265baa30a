package forms

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/pkg/errors"

	"github.com/mbolis/quick-form/log"
	"github.com/mbolis/quick-form/metrics"
	"github.com/mbolis/quick-form/model"
)

// Submission is the outcome of a recorded response.
type Submission struct {
	ResponseID string `json:"responseId"`
	IsQuiz     bool   `json:"isQuiz"`
	Score      *int   `json:"score,omitempty"`
}

// Submit validates answers against the form and stores them as a new
// response. identity is the respondent email supplied by an anonymous
// caller; it is used only when the form collects emails.
func (s *Service) Submit(ctx context.Context, actor *Actor, formID string, answers map[string]model.Answer, identity string) (Submission, error) {
	ctx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	form, err := loadForm(ctx, s.db, formID)
	if err != nil {
		return Submission{}, storeError("submit.get_form", err)
	}
	isOwner := actor != nil && actor.UserID == form.OwnerID
	if !form.Published && !isOwner {
		return Submission{}, ErrNotFound
	}
	if form.Settings.RequiresLogin && actor == nil {
		return Submission{}, ErrUnauthorized
	}

	if err = loadSections(ctx, s.db, &form); err != nil {
		return Submission{}, storeError("submit.get_questions", err)
	}
	questions := form.Questions()

	var errs validationErrors
	kept := make(map[string]model.Answer, len(questions))
	for _, q := range questions {
		answer, ok := answers[q.ID]
		if q.Required && answer.IsEmpty() {
			errs.add(q.ID, "missing required field: %s", q.Label)
		}
		if ok {
			kept[q.ID] = answer
		}
	}
	if dropped := len(answers) - len(kept); dropped > 0 {
		log.Debugf("form %s: ignored %d answers to unknown questions", formID, dropped)
	}

	var email string
	if form.Settings.CollectEmail {
		email = identity
		if actor != nil && actor.Email != "" {
			email = actor.Email
		}
		if err := s.validate.Var(email, "required,email"); err != nil {
			errs.add("email", "a valid email address is required")
		}
	}
	if err = errs.err(); err != nil {
		return Submission{}, err
	}

	sub := Submission{IsQuiz: form.IsQuiz}
	if form.IsQuiz {
		score := Grade(questions, kept)
		sub.Score = &score
	}

	sub.ResponseID, err = newID()
	if err != nil {
		return Submission{}, err
	}
	data, err := json.Marshal(kept)
	if err != nil {
		return Submission{}, errors.Wrap(err, "submit.format_answers")
	}

	var userID, respondentEmail, score any
	if actor != nil {
		userID = actor.UserID
	}
	if email != "" {
		respondentEmail = email
	}
	if sub.Score != nil {
		score = *sub.Score
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO response (id, form_id, user_id, respondent_email, answers, score, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sub.ResponseID,
		form.ID,
		userID,
		respondentEmail,
		string(data),
		score,
		s.now(),
	)
	if err != nil {
		return Submission{}, storeError("db.insert_response", err)
	}

	metrics.Responses.WithLabelValues(strconv.FormatBool(form.IsQuiz)).Inc()
	return sub, nil
}
