package forms

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/mbolis/quick-form/model"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

const formColumns = `f.id, f.owner_id, f.title, f.description, f.published, f.is_quiz, f.settings, f.created_at, f.updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanForm(row rowScanner, extra ...any) (f model.Form, err error) {
	var settings string
	dest := append([]any{
		&f.ID, &f.OwnerID, &f.Title, &f.Description, &f.Published, &f.IsQuiz,
		&settings, &f.CreatedAt, &f.UpdatedAt,
	}, extra...)
	if err = row.Scan(dest...); err != nil {
		return
	}
	if settings != "" {
		err = json.Unmarshal([]byte(settings), &f.Settings)
	}
	return
}

// loadForm reads the form row only.
func loadForm(ctx context.Context, q querier, formID string) (model.Form, error) {
	row := q.QueryRowContext(ctx, `SELECT `+formColumns+` FROM form f WHERE f.id = ?`, formID)
	f, err := scanForm(row)
	if errors.Is(err, sql.ErrNoRows) {
		return f, ErrNotFound
	}
	return f, errors.Wrap(err, "db.get_form")
}

// ownedForm reads the form row and checks that actor owns it.
func ownedForm(ctx context.Context, q querier, actor *Actor, formID string) (model.Form, error) {
	if actor == nil {
		return model.Form{}, ErrUnauthorized
	}
	f, err := loadForm(ctx, q, formID)
	if err != nil {
		return f, err
	}
	if f.OwnerID != actor.UserID {
		return model.Form{}, ErrForbidden
	}
	return f, nil
}

// loadSections fills f.Sections with the form content, sections and
// questions both in display order.
func loadSections(ctx context.Context, q querier, f *model.Form) error {
	rows, err := q.QueryContext(ctx, `
		SELECT id, ord, title, description
		FROM section
		WHERE form_id = ?
		ORDER BY ord`,
		f.ID,
	)
	if err != nil {
		return errors.Wrap(err, "db.get_sections")
	}
	defer rows.Close()

	f.Sections = []model.Section{}
	index := map[string]int{}
	for rows.Next() {
		s := model.Section{Questions: []model.Question{}}
		if err = rows.Scan(&s.ID, &s.Order, &s.Title, &s.Description); err != nil {
			return errors.Wrap(err, "db.get_sections.scan")
		}
		index[s.ID] = len(f.Sections)
		f.Sections = append(f.Sections, s)
	}
	if err = rows.Err(); err != nil {
		return errors.Wrap(err, "db.get_sections")
	}
	rows.Close()

	qrows, err := q.QueryContext(ctx, `
		SELECT q.id, q.section_id, q.type, q.label, q.help_text, q.required,
			q.ord, q.options, q.points, q.metadata
		FROM question q
		INNER JOIN section s ON (s.id = q.section_id)
		WHERE s.form_id = ?
		ORDER BY s.ord, q.ord`,
		f.ID,
	)
	if err != nil {
		return errors.Wrap(err, "db.get_questions")
	}
	defer qrows.Close()

	for qrows.Next() {
		question, err := scanQuestion(qrows)
		if err != nil {
			return err
		}
		i := index[question.SectionID]
		f.Sections[i].Questions = append(f.Sections[i].Questions, question)
	}
	return errors.Wrap(qrows.Err(), "db.get_questions")
}

func scanQuestion(row rowScanner) (q model.Question, err error) {
	var options, metadata string
	err = row.Scan(
		&q.ID, &q.SectionID, &q.Type, &q.Label, &q.HelpText, &q.Required,
		&q.Order, &options, &q.Points, &metadata,
	)
	if err != nil {
		return q, errors.Wrap(err, "db.get_questions.scan")
	}
	if options != "" {
		if err = json.Unmarshal([]byte(options), &q.Options); err != nil {
			return q, errors.Wrap(err, "db.get_questions.parse_options")
		}
	}
	if metadata != "" {
		if err = json.Unmarshal([]byte(metadata), &q.Metadata); err != nil {
			return q, errors.Wrap(err, "db.get_questions.parse_metadata")
		}
	}
	return q, nil
}

// loadResponses returns the responses of a form, newest first.
func loadResponses(ctx context.Context, q querier, formID string) ([]model.Response, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, form_id, user_id, respondent_email, answers, score, created_at
		FROM response
		WHERE form_id = ?
		ORDER BY created_at DESC, rowid DESC`,
		formID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "db.get_responses")
	}
	defer rows.Close()

	responses := []model.Response{}
	for rows.Next() {
		var (
			r       model.Response
			userID  sql.NullString
			email   sql.NullString
			answers string
			score   sql.NullInt64
		)
		err = rows.Scan(&r.ID, &r.FormID, &userID, &email, &answers, &score, &r.CreatedAt)
		if err != nil {
			return nil, errors.Wrap(err, "db.get_responses.scan")
		}
		r.UserID = userID.String
		r.RespondentEmail = email.String
		if score.Valid {
			n := int(score.Int64)
			r.Score = &n
		}
		if err = json.Unmarshal([]byte(answers), &r.Answers); err != nil {
			return nil, errors.Wrap(err, "db.get_responses.parse_answers")
		}
		responses = append(responses, r)
	}
	return responses, errors.Wrap(rows.Err(), "db.get_responses")
}
