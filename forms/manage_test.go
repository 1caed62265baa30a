package forms

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mbolis/quick-form/model"
)

func TestCreateForm(t *testing.T) {
	f := newFixture(t)

	form, err := f.svc.CreateForm(context.Background(), f.owner, NewForm{Title: "Survey", IsQuiz: true})
	require.NoError(t, err)
	require.NotEmpty(t, form.ID)
	require.False(t, form.Published)

	got, err := f.svc.GetForm(context.Background(), f.owner, form.ID)
	require.NoError(t, err)
	require.Equal(t, "Survey", got.Title)
	require.True(t, got.IsQuiz)
	require.Equal(t, f.owner.UserID, got.OwnerID)
	require.Len(t, got.Sections, 1)
	require.Equal(t, "Section 1", got.Sections[0].Title)
	require.Equal(t, 0, got.Sections[0].Order)
	require.Empty(t, got.Sections[0].Questions)
}

func TestCreateFormValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateForm(context.Background(), f.owner, NewForm{})
	require.ErrorIs(t, err, ErrValidation)
	require.Equal(t, "form.title", FieldErrors(err)[0].Field)

	_, err = f.svc.CreateForm(context.Background(), nil, NewForm{Title: "x"})
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestListForms(t *testing.T) {
	f := newFixture(t)
	first := f.form(t, NewForm{Title: "first"})
	second := f.form(t, NewForm{Title: "second"})
	f.reconcile(t, first.ID, text("a", "A"))
	f.publish(t, first.ID)
	for i := 0; i < 2; i++ {
		_, err := f.svc.Submit(context.Background(), nil, first.ID, map[string]model.Answer{"a": model.Text("x")}, "")
		require.NoError(t, err)
	}

	forms, err := f.svc.ListForms(context.Background(), f.owner)
	require.NoError(t, err)
	require.Len(t, forms, 2)
	require.Equal(t, second.ID, forms[0].ID)
	require.Equal(t, 0, forms[0].ResponseCount)
	require.Equal(t, first.ID, forms[1].ID)
	require.Equal(t, 2, forms[1].ResponseCount)

	forms, err = f.svc.ListForms(context.Background(), f.other)
	require.NoError(t, err)
	require.Empty(t, forms)
}

func TestGetFormChecksOwner(t *testing.T) {
	f := newFixture(t)
	form := f.form(t, NewForm{})

	_, err := f.svc.GetForm(context.Background(), f.other, form.ID)
	require.ErrorIs(t, err, ErrForbidden)
	_, err = f.svc.GetForm(context.Background(), nil, form.ID)
	require.ErrorIs(t, err, ErrUnauthorized)
	_, err = f.svc.GetForm(context.Background(), f.owner, "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestPublicFormHidesAnswerKeys(t *testing.T) {
	f := newFixture(t)
	form := f.form(t, NewForm{IsQuiz: true})
	f.reconcile(t, form.ID, QuestionInput{
		ID: "q", Type: model.Dropdown, Label: "Q", Points: 1,
		Options:  []model.Option{{Label: "A", Value: "a", IsCorrect: true}, {Label: "B", Value: "b"}},
		Metadata: model.QuestionMetadata{CorrectAnswer: "a"},
	})

	_, err := f.svc.PublicForm(context.Background(), form.ID)
	require.ErrorIs(t, err, ErrNotFound)

	f.publish(t, form.ID)
	public, err := f.svc.PublicForm(context.Background(), form.ID)
	require.NoError(t, err)
	require.Empty(t, public.OwnerID)
	q := public.Questions()[0]
	require.Empty(t, q.Metadata.CorrectAnswer)
	require.False(t, q.Options[0].IsCorrect)

	// the owner view still has them
	require.Equal(t, model.AnswerKey("a"), f.stored(t, form.ID)[0].Metadata.CorrectAnswer)
}

func TestSetFlags(t *testing.T) {
	f := newFixture(t)
	form := f.form(t, NewForm{})

	yes := true
	require.NoError(t, f.svc.SetFlags(context.Background(), f.owner, form.ID, FormFlags{IsQuiz: &yes}))
	got, err := f.svc.GetForm(context.Background(), f.owner, form.ID)
	require.NoError(t, err)
	require.True(t, got.IsQuiz)
	require.False(t, got.Published)

	err = f.svc.SetFlags(context.Background(), f.other, form.ID, FormFlags{Published: &yes})
	require.ErrorIs(t, err, ErrForbidden)
}

func TestDeleteFormCascades(t *testing.T) {
	f := newFixture(t)
	form := f.form(t, NewForm{})
	f.reconcile(t, form.ID, text("a", "A"))
	f.publish(t, form.ID)
	_, err := f.svc.Submit(context.Background(), nil, form.ID, map[string]model.Answer{"a": model.Text("x")}, "")
	require.NoError(t, err)

	require.ErrorIs(t, f.svc.DeleteForm(context.Background(), f.other, form.ID), ErrForbidden)
	require.NoError(t, f.svc.DeleteForm(context.Background(), f.owner, form.ID))

	_, err = f.svc.GetForm(context.Background(), f.owner, form.ID)
	require.ErrorIs(t, err, ErrNotFound)
	require.Zero(t, f.responseCount(t, form.ID))

	var questions int
	require.NoError(t, f.db.QueryRow(`SELECT COUNT(*) FROM question WHERE id = 'a'`).Scan(&questions))
	require.Zero(t, questions)
}
