package forms

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/mbolis/quick-form/database"
	"github.com/mbolis/quick-form/model"
)

type NewForm struct {
	Title       string              `json:"title" validate:"required,max=200"`
	Description string              `json:"description" validate:"max=5000"`
	IsQuiz      bool                `json:"isQuiz"`
	Settings    *model.FormSettings `json:"settings"`
}

// FormFlags changes the publication state or the kind of a form. Nil fields
// are left unchanged.
type FormFlags struct {
	Published *bool `json:"published"`
	IsQuiz    *bool `json:"isQuiz"`
}

// CreateForm stores a new unpublished form owned by actor, with one empty
// section.
func (s *Service) CreateForm(ctx context.Context, actor *Actor, in NewForm) (model.Form, error) {
	if actor == nil {
		return model.Form{}, ErrUnauthorized
	}
	var errs validationErrors
	s.check(&errs, "form", in)
	if err := errs.err(); err != nil {
		return model.Form{}, err
	}

	now := s.now()
	form := model.Form{
		OwnerID:     actor.UserID,
		Title:       in.Title,
		Description: in.Description,
		IsQuiz:      in.IsQuiz,
		CreatedAt:   now,
		UpdatedAt:   now,
		Sections: []model.Section{{
			Title:     defaultSectionTitle,
			Questions: []model.Question{},
		}},
	}
	if in.Settings != nil {
		form.Settings = *in.Settings
	}
	settings, err := json.Marshal(form.Settings)
	if err != nil {
		return model.Form{}, err
	}
	if form.ID, err = newID(); err != nil {
		return model.Form{}, err
	}
	if form.Sections[0].ID, err = newID(); err != nil {
		return model.Form{}, err
	}

	err = database.WithTx(ctx, s.db, s.txTimeout, func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO form (id, owner_id, title, description, published, is_quiz, settings, created_at, updated_at)
			VALUES (?, ?, ?, ?, 0, ?, ?, ?, ?)`,
			form.ID, form.OwnerID, form.Title, form.Description, form.IsQuiz,
			string(settings), form.CreatedAt, form.UpdatedAt,
		)
		if err != nil {
			return errors.Wrap(err, "db.insert_form")
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO section (id, form_id, ord, title)
			VALUES (?, ?, 0, ?)`,
			form.Sections[0].ID, form.ID, defaultSectionTitle,
		)
		return errors.Wrap(err, "db.insert_form.section")
	})
	if err != nil {
		return model.Form{}, storeError("create_form", err)
	}
	return form, nil
}

// ListForms returns the forms owned by actor, newest first, with their
// response counts.
func (s *Service) ListForms(ctx context.Context, actor *Actor) ([]model.Form, error) {
	if actor == nil {
		return nil, ErrUnauthorized
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+formColumns+`,
			(SELECT COUNT(*) FROM response r WHERE r.form_id = f.id)
		FROM form f
		WHERE f.owner_id = ?
		ORDER BY f.created_at DESC, f.rowid DESC`,
		actor.UserID,
	)
	if err != nil {
		return nil, storeError("db.get_forms", err)
	}
	defer rows.Close()

	forms := []model.Form{}
	for rows.Next() {
		var count int
		f, err := scanForm(rows, &count)
		if err != nil {
			return nil, storeError("db.get_forms.scan", err)
		}
		f.ResponseCount = count
		forms = append(forms, f)
	}
	if err = rows.Err(); err != nil {
		return nil, storeError("db.get_forms", err)
	}
	return forms, nil
}

// GetForm returns the full form, answer keys included, to its owner.
func (s *Service) GetForm(ctx context.Context, actor *Actor, formID string) (model.Form, error) {
	form, err := ownedForm(ctx, s.db, actor, formID)
	if err != nil {
		return model.Form{}, storeError("get_form", err)
	}
	if err = loadSections(ctx, s.db, &form); err != nil {
		return model.Form{}, storeError("get_form", err)
	}
	return form, nil
}

// PublicForm returns a published form as respondents see it: without owner
// or answer keys.
func (s *Service) PublicForm(ctx context.Context, formID string) (model.Form, error) {
	form, err := loadForm(ctx, s.db, formID)
	if err != nil {
		return model.Form{}, storeError("public_form", err)
	}
	if !form.Published {
		return model.Form{}, ErrNotFound
	}
	if err = loadSections(ctx, s.db, &form); err != nil {
		return model.Form{}, storeError("public_form", err)
	}

	form.OwnerID = ""
	for i := range form.Sections {
		for j := range form.Sections[i].Questions {
			q := &form.Sections[i].Questions[j]
			q.Metadata.CorrectAnswer = ""
			for k := range q.Options {
				q.Options[k].IsCorrect = false
			}
		}
	}
	return form, nil
}

func (s *Service) SetFlags(ctx context.Context, actor *Actor, formID string, flags FormFlags) error {
	err := database.WithTx(ctx, s.db, s.txTimeout, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := ownedForm(ctx, tx, actor, formID); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `
			UPDATE form
			SET
				published = COALESCE(?, published),
				is_quiz = COALESCE(?, is_quiz),
				updated_at = ?
			WHERE id = ?`,
			nullBool(flags.Published),
			nullBool(flags.IsQuiz),
			s.now(),
			formID,
		)
		return errors.Wrap(err, "db.update_form_flags")
	})
	return storeError("set_flags", err)
}

// DeleteForm removes the form with its content and responses.
func (s *Service) DeleteForm(ctx context.Context, actor *Actor, formID string) error {
	err := database.WithTx(ctx, s.db, s.txTimeout, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := ownedForm(ctx, tx, actor, formID); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `DELETE FROM form WHERE id = ?`, formID)
		return errors.Wrap(err, "db.delete_form")
	})
	return storeError("delete_form", err)
}

func nullBool(b *bool) sql.NullBool {
	if b == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *b, Valid: true}
}
