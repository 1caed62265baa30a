package forms

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/mbolis/quick-form/database"
	"github.com/mbolis/quick-form/log"
	"github.com/mbolis/quick-form/metrics"
	"github.com/mbolis/quick-form/model"
)

const defaultSectionTitle = "Section 1"

// QuestionInput is one entry of the desired question list sent by the
// builder. The ID is assigned by the client; entries without one get a new
// ID.
type QuestionInput struct {
	ID       string                 `json:"id" validate:"max=64"`
	Type     model.QuestionType     `json:"type" validate:"required,oneof=SHORT_TEXT PARAGRAPH MULTIPLE_CHOICE CHECKBOXES DROPDOWN LINEAR_SCALE DATE TIME FILE GRID RATING"`
	Label    string                 `json:"label" validate:"max=500"`
	HelpText string                 `json:"helpText" validate:"max=2000"`
	Required bool                   `json:"required"`
	Options  []model.Option         `json:"options" validate:"max=200"`
	Points   int                    `json:"points" validate:"gte=0"`
	Metadata model.QuestionMetadata `json:"metadata"`
}

// FormMeta carries the form fields saved together with the content. Nil
// fields are left unchanged.
type FormMeta struct {
	Title       *string             `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string             `json:"description" validate:"omitempty,max=5000"`
	Settings    *model.FormSettings `json:"settings"`
}

// Reconcile makes the stored questions of the form's first section match
// desired: questions missing from the list are deleted, the others are
// inserted or overwritten by ID, and each one's order becomes its index in
// the list. Everything happens in one transaction.
//
// Two overlapping calls on the same form are serialized by the store's
// write lock and the last one to commit wins; lost updates are not
// detected.
func (s *Service) Reconcile(ctx context.Context, actor *Actor, formID string, desired []QuestionInput, meta *FormMeta) ([]model.Question, error) {
	if actor == nil {
		return nil, ErrUnauthorized
	}

	questions, err := s.prepareQuestions(desired, meta)
	if err != nil {
		metrics.Reconciliations.WithLabelValues("invalid").Inc()
		return nil, err
	}

	err = database.WithTx(ctx, s.db, s.txTimeout, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := ownedForm(ctx, tx, actor, formID); err != nil {
			return err
		}

		sectionID, err := s.activeSection(ctx, tx, formID)
		if err != nil {
			return err
		}

		if err = deleteAbsent(ctx, tx, sectionID, questions); err != nil {
			return err
		}

		var conflicts validationErrors
		for i := range questions {
			questions[i].SectionID = sectionID
			ok, err := upsertQuestion(ctx, tx, questions[i])
			if err != nil {
				return err
			}
			if !ok {
				conflicts.add(fmt.Sprintf("questions[%d].id", i), "question %s belongs to another section", questions[i].ID)
			}
		}
		if err = conflicts.err(); err != nil {
			return err
		}

		return s.updateFormMeta(ctx, tx, formID, meta)
	})
	if err != nil {
		metrics.Reconciliations.WithLabelValues("failed").Inc()
		return nil, storeError("reconcile", err)
	}

	metrics.Reconciliations.WithLabelValues("ok").Inc()
	log.WithFields(log.Fields{
		"form":      formID,
		"questions": len(questions),
	}).Debug("form content saved")
	return questions, nil
}

// prepareQuestions validates the payload and turns it into the rows to
// store, before any database access.
func (s *Service) prepareQuestions(desired []QuestionInput, meta *FormMeta) ([]model.Question, error) {
	var errs validationErrors
	if meta != nil {
		s.check(&errs, "form", meta)
	}

	seen := make(map[string]int, len(desired))
	questions := make([]model.Question, len(desired))
	for i, in := range desired {
		prefix := fmt.Sprintf("questions[%d]", i)
		s.check(&errs, prefix, in)

		id := strings.TrimSpace(in.ID)
		if id == "" {
			var err error
			if id, err = newID(); err != nil {
				return nil, err
			}
		} else if j, dup := seen[id]; dup {
			errs.add(prefix+".id", "question %s appears at positions %d and %d", id, j, i)
		}
		seen[id] = i

		options := in.Options
		if !in.Type.IsChoice() {
			options = nil
		}

		questions[i] = model.Question{
			ID:       id,
			Type:     in.Type,
			Label:    in.Label,
			HelpText: in.HelpText,
			Required: in.Required,
			Order:    i,
			Options:  options,
			Points:   in.Points,
			Metadata: in.Metadata,
		}
	}

	if err := errs.err(); err != nil {
		return nil, err
	}
	return questions, nil
}

// activeSection returns the first section of the form, creating it when the
// form has none.
func (s *Service) activeSection(ctx context.Context, tx *sql.Tx, formID string) (string, error) {
	var sectionID string
	err := tx.QueryRowContext(ctx, `
		SELECT id FROM section
		WHERE form_id = ?
		ORDER BY ord
		LIMIT 1`,
		formID,
	).Scan(&sectionID)
	if err == nil {
		return sectionID, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", errors.Wrap(err, "db.reconcile.get_section")
	}

	sectionID, err = newID()
	if err != nil {
		return "", err
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO section (id, form_id, ord, title)
		VALUES (?, ?, 0, ?)`,
		sectionID,
		formID,
		defaultSectionTitle,
	)
	if err != nil {
		return "", errors.Wrap(err, "db.reconcile.insert_section")
	}
	log.Debugf("form %s: created missing default section", formID)
	return sectionID, nil
}

func deleteAbsent(ctx context.Context, tx *sql.Tx, sectionID string, keep []model.Question) error {
	query := `DELETE FROM question WHERE section_id = ?`
	args := make([]any, 0, len(keep)+1)
	args = append(args, sectionID)
	if len(keep) > 0 {
		query += ` AND id NOT IN (?` + strings.Repeat(`, ?`, len(keep)-1) + `)`
		for _, q := range keep {
			args = append(args, q.ID)
		}
	}

	_, err := tx.ExecContext(ctx, query, args...)
	return errors.Wrap(err, "db.reconcile.delete_questions")
}

// upsertQuestion inserts or overwrites q. It returns false when the ID is
// already used by a question of another section, which is left untouched.
func upsertQuestion(ctx context.Context, tx *sql.Tx, q model.Question) (bool, error) {
	var options []byte
	if q.Options != nil {
		var err error
		if options, err = json.Marshal(q.Options); err != nil {
			return false, errors.Wrap(err, "db.reconcile.format_options")
		}
	}
	metadata, err := json.Marshal(q.Metadata)
	if err != nil {
		return false, errors.Wrap(err, "db.reconcile.format_metadata")
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO question (id, section_id, type, label, help_text, required, ord, options, points, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			type = excluded.type,
			label = excluded.label,
			help_text = excluded.help_text,
			required = excluded.required,
			ord = excluded.ord,
			options = excluded.options,
			points = excluded.points,
			metadata = excluded.metadata
		WHERE question.section_id = excluded.section_id`,
		q.ID, q.SectionID, string(q.Type), q.Label, q.HelpText, q.Required,
		q.Order, string(options), q.Points, string(metadata),
	)
	if err != nil {
		return false, errors.Wrap(err, "db.reconcile.upsert_question")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "db.reconcile.upsert_question.verify")
	}
	return n > 0, nil
}

func (s *Service) updateFormMeta(ctx context.Context, tx *sql.Tx, formID string, meta *FormMeta) error {
	var (
		title, description, settings sql.NullString
	)
	if meta != nil {
		if meta.Title != nil {
			title = sql.NullString{String: *meta.Title, Valid: true}
		}
		if meta.Description != nil {
			description = sql.NullString{String: *meta.Description, Valid: true}
		}
		if meta.Settings != nil {
			data, err := json.Marshal(meta.Settings)
			if err != nil {
				return errors.Wrap(err, "db.reconcile.format_settings")
			}
			settings = sql.NullString{String: string(data), Valid: true}
		}
	}

	_, err := tx.ExecContext(ctx, `
		UPDATE form
		SET
			title = COALESCE(?, title),
			description = COALESCE(?, description),
			settings = COALESCE(?, settings),
			updated_at = ?
		WHERE id = ?`,
		title,
		description,
		settings,
		s.now(),
		formID,
	)
	return errors.Wrap(err, "db.reconcile.update_form")
}
