package forms

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mbolis/quick-form/config"
	"github.com/mbolis/quick-form/database"
	"github.com/mbolis/quick-form/model"
)

type fixture struct {
	db    *sql.DB
	svc   *Service
	owner *Actor
	other *Actor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := database.Open(config.Config{
		DBUrl:    filepath.Join(t.TempDir(), "test.sqlite"),
		LockWait: 200 * time.Millisecond,
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	svc := NewService(db, 2*time.Second)
	// strictly increasing timestamps keep "newest first" deterministic
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}

	f := &fixture{
		db:    db,
		svc:   svc,
		owner: &Actor{UserID: "u-owner", Email: "owner@example.com"},
		other: &Actor{UserID: "u-other", Email: "other@example.com"},
	}
	for _, a := range []*Actor{f.owner, f.other} {
		_, err = db.Exec(`
			INSERT INTO user (id, email, password_hash, created_at)
			VALUES (?, ?, ?, ?)`,
			a.UserID, a.Email, []byte("x"), time.Now(),
		)
		require.NoError(t, err)
	}
	return f
}

func (f *fixture) form(t *testing.T, in NewForm) model.Form {
	t.Helper()
	if in.Title == "" {
		in.Title = "Test form"
	}
	form, err := f.svc.CreateForm(context.Background(), f.owner, in)
	require.NoError(t, err)
	return form
}

func (f *fixture) publish(t *testing.T, formID string) {
	t.Helper()
	published := true
	require.NoError(t, f.svc.SetFlags(context.Background(), f.owner, formID, FormFlags{Published: &published}))
}

func (f *fixture) reconcile(t *testing.T, formID string, questions ...QuestionInput) []model.Question {
	t.Helper()
	saved, err := f.svc.Reconcile(context.Background(), f.owner, formID, questions, nil)
	require.NoError(t, err)
	return saved
}

func (f *fixture) stored(t *testing.T, formID string) []model.Question {
	t.Helper()
	form, err := f.svc.GetForm(context.Background(), f.owner, formID)
	require.NoError(t, err)
	return form.Questions()
}

func (f *fixture) responseCount(t *testing.T, formID string) int {
	t.Helper()
	var n int
	require.NoError(t, f.db.QueryRow(`SELECT COUNT(*) FROM response WHERE form_id = ?`, formID).Scan(&n))
	return n
}

func ids(questions []model.Question) []string {
	out := make([]string, len(questions))
	for i, q := range questions {
		out[i] = q.ID
	}
	return out
}

func orders(questions []model.Question) []int {
	out := make([]int, len(questions))
	for i, q := range questions {
		out[i] = q.Order
	}
	return out
}

func text(id, label string) QuestionInput {
	return QuestionInput{ID: id, Type: model.ShortText, Label: label}
}
