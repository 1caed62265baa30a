package forms

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mbolis/quick-form/model"
)

func TestReconcileDerivesOrderFromPosition(t *testing.T) {
	f := newFixture(t)
	form := f.form(t, NewForm{})

	f.reconcile(t, form.ID, text("a", "A"), text("b", "B"), text("c", "C"))
	stored := f.stored(t, form.ID)
	require.Equal(t, []string{"a", "b", "c"}, ids(stored))
	require.Equal(t, []int{0, 1, 2}, orders(stored))

	f.reconcile(t, form.ID, text("c", "C"), text("a", "A"), text("b", "B"))
	stored = f.stored(t, form.ID)
	require.Equal(t, []string{"c", "a", "b"}, ids(stored))
	require.Equal(t, []int{0, 1, 2}, orders(stored))
}

func TestReconcileIsIdempotent(t *testing.T) {
	f := newFixture(t)
	form := f.form(t, NewForm{})
	desired := []QuestionInput{
		text("a", "A"),
		{
			ID:       "b",
			Type:     model.MultipleChoice,
			Label:    "B",
			Required: true,
			Options:  []model.Option{{Label: "Yes", Value: "yes"}, {Label: "No", Value: "no"}},
			Points:   2,
			Metadata: model.QuestionMetadata{CorrectAnswer: "yes"},
		},
	}

	f.reconcile(t, form.ID, desired...)
	once := f.stored(t, form.ID)
	f.reconcile(t, form.ID, desired...)
	twice := f.stored(t, form.ID)

	require.Equal(t, once, twice)
	require.Equal(t, model.AnswerKey("yes"), twice[1].Metadata.CorrectAnswer)
	require.Len(t, twice[1].Options, 2)
	require.True(t, twice[1].Required)
}

func TestReconcileDeletesAbsentQuestions(t *testing.T) {
	f := newFixture(t)
	form := f.form(t, NewForm{})

	f.reconcile(t, form.ID, text("a", "A"), text("b", "B"), text("c", "C"))
	f.reconcile(t, form.ID, text("a", "A"), text("c", "C"))
	require.Equal(t, []string{"a", "c"}, ids(f.stored(t, form.ID)))

	f.reconcile(t, form.ID)
	require.Empty(t, f.stored(t, form.ID))
}

func TestReconcileOverwritesFields(t *testing.T) {
	f := newFixture(t)
	form := f.form(t, NewForm{})

	f.reconcile(t, form.ID, text("a", "Before"))
	f.reconcile(t, form.ID, QuestionInput{ID: "a", Type: model.Paragraph, Label: "After", Required: true, Points: 3})

	stored := f.stored(t, form.ID)
	require.Len(t, stored, 1)
	require.Equal(t, "After", stored[0].Label)
	require.Equal(t, model.Paragraph, stored[0].Type)
	require.True(t, stored[0].Required)
	require.Equal(t, 3, stored[0].Points)
}

func TestReconcileAssignsMissingIDs(t *testing.T) {
	f := newFixture(t)
	form := f.form(t, NewForm{})

	saved := f.reconcile(t, form.ID, text("", "New"), text("a", "A"))
	require.NotEmpty(t, saved[0].ID)
	require.Equal(t, []string{saved[0].ID, "a"}, ids(f.stored(t, form.ID)))
}

func TestReconcileDropsOptionsOfNonChoiceQuestions(t *testing.T) {
	f := newFixture(t)
	form := f.form(t, NewForm{})

	f.reconcile(t, form.ID, QuestionInput{
		ID: "a", Type: model.ShortText, Label: "A",
		Options: []model.Option{{Label: "x", Value: "x"}},
	})
	require.Nil(t, f.stored(t, form.ID)[0].Options)
}

func TestReconcileCreatesMissingSection(t *testing.T) {
	f := newFixture(t)
	form := f.form(t, NewForm{})
	_, err := f.db.Exec(`DELETE FROM section WHERE form_id = ?`, form.ID)
	require.NoError(t, err)

	f.reconcile(t, form.ID, text("a", "A"))

	got, err := f.svc.GetForm(context.Background(), f.owner, form.ID)
	require.NoError(t, err)
	require.Len(t, got.Sections, 1)
	require.Equal(t, 0, got.Sections[0].Order)
	require.Equal(t, "Section 1", got.Sections[0].Title)
	require.Equal(t, []string{"a"}, ids(got.Sections[0].Questions))
}

func TestReconcileUpdatesFormMeta(t *testing.T) {
	f := newFixture(t)
	form := f.form(t, NewForm{Title: "Old", Description: "kept"})

	title := "New"
	settings := &model.FormSettings{CollectEmail: true, Theme: &model.Theme{Primary: "#ff0000"}}
	_, err := f.svc.Reconcile(context.Background(), f.owner, form.ID, nil, &FormMeta{Title: &title, Settings: settings})
	require.NoError(t, err)

	got, err := f.svc.GetForm(context.Background(), f.owner, form.ID)
	require.NoError(t, err)
	require.Equal(t, "New", got.Title)
	require.Equal(t, "kept", got.Description)
	require.True(t, got.Settings.CollectEmail)
	require.Equal(t, "#ff0000", got.Settings.Theme.Primary)
	require.True(t, got.UpdatedAt.After(form.UpdatedAt))
}

func TestReconcileRejectsNonOwner(t *testing.T) {
	f := newFixture(t)
	form := f.form(t, NewForm{})
	f.reconcile(t, form.ID, text("a", "A"))

	_, err := f.svc.Reconcile(context.Background(), f.other, form.ID, []QuestionInput{text("b", "B")}, nil)
	require.ErrorIs(t, err, ErrForbidden)
	require.ErrorIs(t, err, ErrUnauthorized)

	_, err = f.svc.Reconcile(context.Background(), nil, form.ID, []QuestionInput{text("b", "B")}, nil)
	require.ErrorIs(t, err, ErrUnauthorized)

	require.Equal(t, []string{"a"}, ids(f.stored(t, form.ID)))
}

func TestReconcileUnknownForm(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Reconcile(context.Background(), f.owner, "missing", []QuestionInput{text("a", "A")}, nil)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestReconcileValidatesEveryEntry(t *testing.T) {
	f := newFixture(t)
	form := f.form(t, NewForm{})

	_, err := f.svc.Reconcile(context.Background(), f.owner, form.ID, []QuestionInput{
		{ID: "a", Type: "SLIDER"},
		text("b", "B"),
		text("b", "B again"),
		{ID: "c", Type: model.ShortText, Points: -1},
	}, nil)
	require.ErrorIs(t, err, ErrValidation)

	var fields []string
	for _, fe := range FieldErrors(err) {
		fields = append(fields, fe.Field)
	}
	require.ElementsMatch(t, []string{"questions[0].type", "questions[2].id", "questions[3].points"}, fields)
	require.Empty(t, f.stored(t, form.ID))
}

func TestReconcileCannotTakeOverAnotherFormsQuestion(t *testing.T) {
	f := newFixture(t)
	first := f.form(t, NewForm{})
	second := f.form(t, NewForm{})
	f.reconcile(t, first.ID, text("shared", "Mine"))

	_, err := f.svc.Reconcile(context.Background(), f.owner, second.ID, []QuestionInput{text("shared", "Stolen")}, nil)
	require.ErrorIs(t, err, ErrValidation)

	stored := f.stored(t, first.ID)
	require.Equal(t, "Mine", stored[0].Label)
	require.Empty(t, f.stored(t, second.ID))
}

func TestReconcileIsAtomic(t *testing.T) {
	f := newFixture(t)
	form := f.form(t, NewForm{})
	f.reconcile(t, form.ID, text("a", "A"), text("b", "B"))
	before := f.stored(t, form.ID)

	// fail halfway: after the delete and the first upsert
	_, err := f.db.Exec(`
		CREATE TRIGGER fail_question BEFORE INSERT ON question
		WHEN NEW.label = 'boom'
		BEGIN
			SELECT RAISE(ABORT, 'boom');
		END`)
	require.NoError(t, err)

	_, err = f.svc.Reconcile(context.Background(), f.owner, form.ID, []QuestionInput{
		text("a", "A changed"),
		text("c", "boom"),
	}, nil)
	require.Error(t, err)

	require.Equal(t, before, f.stored(t, form.ID))
}

func TestReconcileTimeout(t *testing.T) {
	f := newFixture(t)
	form := f.form(t, NewForm{})
	f.reconcile(t, form.ID, text("a", "A"))

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	_, err := f.svc.Reconcile(ctx, f.owner, form.ID, []QuestionInput{text("b", "B")}, nil)
	require.ErrorIs(t, err, ErrStoreUnavailable)
	require.Equal(t, []string{"a"}, ids(f.stored(t, form.ID)))
}

func TestReconcileLockWait(t *testing.T) {
	f := newFixture(t)
	form := f.form(t, NewForm{})
	f.reconcile(t, form.ID, text("a", "A"))

	// hold the write lock from another connection
	holder, err := f.db.BeginTx(context.Background(), nil)
	require.NoError(t, err)
	defer holder.Rollback()

	start := time.Now()
	_, err = f.svc.Reconcile(context.Background(), f.owner, form.ID, []QuestionInput{text("b", "B")}, nil)
	require.ErrorIs(t, err, ErrStoreUnavailable)
	require.Less(t, time.Since(start), 2*time.Second)

	require.NoError(t, holder.Rollback())
	require.Equal(t, []string{"a"}, ids(f.stored(t, form.ID)))
}
