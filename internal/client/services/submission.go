package services

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync/atomic"

	"cloud.google.com/go/civil"
	"github.com/go-playground/validator/v10"

	"github.com/dmitrijs2005/worklogger/internal/client/models"
	"github.com/dmitrijs2005/worklogger/internal/common"
	"github.com/dmitrijs2005/worklogger/internal/logging"
	"github.com/dmitrijs2005/worklogger/internal/timex"
)

const submitSucceeded = "Work logged successfully!"

// ErrSubmitInFlight is returned when a submission is already running. The
// second call has no effect.
var ErrSubmitInFlight = errors.New("submission already in progress")

type Inserter interface {
	Insert(ctx context.Context, date civil.Date, description, category string) (*models.Entry, error)
}

// Form is the entry form. Submit clears Description and Category after a
// successful insert and leaves Date as it was.
type Form struct {
	Date        civil.Date `validate:"required,notfuture"`
	Description string     `validate:"required,max=1000"`
	Category    string     `validate:"omitempty,oneof=photo video smd edit hr"`
}

// Status is what the form shows after a submit.
type Status struct {
	Succeeded bool
	Message   string
}

// SubmissionService inserts one entry at a time. It never touches the
// projections: the new row arrives through the change feed.
type SubmissionService struct {
	store    Inserter
	logger   logging.Logger
	validate *validator.Validate
	busy     atomic.Bool
}

func NewSubmissionService(store Inserter, logger logging.Logger) *SubmissionService {
	v := validator.New()
	v.RegisterCustomTypeFunc(civilDateValue, civil.Date{})
	mustRegister(v, "notfuture", notFuture)

	return &SubmissionService{store: store, logger: logger.With("module", "submission"), validate: v}
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %q validation: %v", tag, err))
	}
}

// civilDateValue exposes a date to the validator as its ISO string, or nil
// when unset.
func civilDateValue(v reflect.Value) any {
	d, ok := v.Interface().(civil.Date)
	if !ok || !d.IsValid() {
		return nil
	}
	return d.String()
}

func notFuture(fl validator.FieldLevel) bool {
	d, err := civil.ParseDate(fl.Field().String())
	if err != nil {
		return false
	}
	return timex.NotFuture(d)
}

// InFlight reports whether a submission is running.
func (s *SubmissionService) InFlight() bool { return s.busy.Load() }

// Submit validates f and inserts it. Validation failures never reach the
// store. On a store failure the server message is shown verbatim.
func (s *SubmissionService) Submit(ctx context.Context, f *Form) (Status, error) {
	if !s.busy.CompareAndSwap(false, true) {
		return Status{}, ErrSubmitInFlight
	}
	defer s.busy.Store(false)

	f.Description = strings.TrimSpace(f.Description)
	f.Category = strings.TrimSpace(f.Category)

	if err := s.check(f); err != nil {
		return Status{Message: "Error: " + err.Error()}, fmt.Errorf("%w: %s", common.ErrorValidation, err.Error())
	}

	e, err := s.store.Insert(ctx, f.Date, f.Description, f.Category)
	if err != nil {
		s.logger.Warn(ctx, "insert failed", "error", err)
		return Status{Message: "Error: " + err.Error()}, err
	}

	s.logger.Info(ctx, "entry logged", "id", e.ID, "date", e.Date.String())
	f.Description = ""
	f.Category = ""
	return Status{Succeeded: true, Message: submitSucceeded}, nil
}

func (s *SubmissionService) check(f *Form) error {
	err := s.validate.Struct(f)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}

	switch fe := verrs[0]; fe.Field() {
	case "Date":
		if fe.Tag() == "notfuture" {
			return errors.New("date cannot be in the future")
		}
		return errors.New("date is required")
	case "Description":
		if fe.Tag() == "max" {
			return fmt.Errorf("description is longer than %d characters", common.MaxDescriptionLen)
		}
		return errors.New("description is required")
	case "Category":
		return fmt.Errorf("unknown category %q", f.Category)
	}
	return err
}
