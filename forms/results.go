package forms

import (
	"context"

	"github.com/mbolis/quick-form/model"
)

// Responses returns the raw responses of the form, newest first.
func (s *Service) Responses(ctx context.Context, actor *Actor, formID string) ([]model.Response, error) {
	if _, err := ownedForm(ctx, s.db, actor, formID); err != nil {
		return nil, storeError("responses", err)
	}
	responses, err := loadResponses(ctx, s.db, formID)
	if err != nil {
		return nil, storeError("responses", err)
	}
	return responses, nil
}

// Analytics summarizes the stored responses of the form per question.
func (s *Service) Analytics(ctx context.Context, actor *Actor, formID string) ([]QuestionSummary, error) {
	form, err := ownedForm(ctx, s.db, actor, formID)
	if err != nil {
		return nil, storeError("analytics", err)
	}
	if err = loadSections(ctx, s.db, &form); err != nil {
		return nil, storeError("analytics", err)
	}
	responses, err := loadResponses(ctx, s.db, formID)
	if err != nil {
		return nil, storeError("analytics", err)
	}
	return Aggregate(form.Questions(), responses), nil
}
