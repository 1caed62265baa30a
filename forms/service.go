package forms

import (
	"database/sql"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
)

// Actor is the authenticated caller of an operation. A nil *Actor is an
// anonymous caller.
type Actor struct {
	UserID string
	Email  string
}

// Service implements form building, response collection and results on top
// of the SQL store.
type Service struct {
	db        *sql.DB
	txTimeout time.Duration
	validate  *validator.Validate
	now       func() time.Time
}

// NewService returns a Service whose write transactions are bounded by
// txTimeout.
func NewService(db *sql.DB, txTimeout time.Duration) *Service {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	return &Service{
		db:        db,
		txTimeout: txTimeout,
		validate:  validate,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func newID() (string, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// check runs the struct validation rules of v and records each failure
// under prefix.
func (s *Service) check(errs *validationErrors, prefix string, v any) {
	err := s.validate.Struct(v)
	if err == nil {
		return
	}
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		errs.add(prefix, err.Error())
		return
	}
	for _, fe := range fieldErrs {
		field := prefix + "." + fe.Field()
		if fe.Param() != "" {
			errs.add(field, "%s: failed %s=%s", field, fe.Tag(), fe.Param())
		} else {
			errs.add(field, "%s: failed %s", field, fe.Tag())
		}
	}
}
