package forms

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/mbolis/quick-form/database"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden is returned to an authenticated actor who does not own
	// the form. It matches ErrUnauthorized.
	ErrForbidden        = fmt.Errorf("%w: not the form owner", ErrUnauthorized)
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrValidation       = errors.New("validation failed")
)

// ValidationError identifies one offending field of a request.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// FieldErrors returns every ValidationError carried by err.
func FieldErrors(err error) []*ValidationError {
	errs := []error{err}
	var merr *multierror.Error
	if errors.As(err, &merr) {
		errs = merr.Errors
	}

	var fields []*ValidationError
	for _, e := range errs {
		var verr *ValidationError
		if errors.As(e, &verr) {
			fields = append(fields, verr)
		}
	}
	return fields
}

type validationErrors struct {
	merr *multierror.Error
}

func (v *validationErrors) add(field, msg string, args ...any) {
	v.merr = multierror.Append(v.merr, &ValidationError{
		Field:   field,
		Message: fmt.Sprintf(msg, args...),
	})
}

func (v *validationErrors) err() error {
	if v.merr == nil {
		return nil
	}
	v.merr.ErrorFormat = joinMessages
	return v.merr
}

func joinMessages(errs []error) string {
	msgs := make([]string, len(errs))
	for i, err := range errs {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// storeError passes domain errors through, and tags everything else with
// the failing operation.
func storeError(code string, err error) error {
	switch {
	case errors.Is(err, ErrValidation),
		errors.Is(err, ErrNotFound),
		errors.Is(err, ErrUnauthorized):
		return err
	case database.IsUnavailable(err):
		return fmt.Errorf("%s: %w (%v)", code, ErrStoreUnavailable, err)
	}
	return errors.Wrap(err, code)
}
