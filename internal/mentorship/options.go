package mentorship

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/garnizeh/mentorship/pkg/models"
)

// DefaultMaxWorkload is the number of concurrent mentees a mentor may carry.
const DefaultMaxWorkload = 5

// DefaultRetries bounds how often a write that lost a race is re-attempted
// against fresh state before the caller gets a Conflict.
const DefaultRetries = 3

// Recorder observes successful lifecycle transitions.
type Recorder interface {
	// RequestStatus is called each time a request enters status.
	RequestStatus(status models.RequestStatus)
	LearningStarted(lp *models.LearningProcess)
	LearningCompleted(lp *models.LearningProcess)
}

type nopRecorder struct{}

func (nopRecorder) RequestStatus(models.RequestStatus)        {}
func (nopRecorder) LearningStarted(*models.LearningProcess)   {}
func (nopRecorder) LearningCompleted(*models.LearningProcess) {}

// Options tunes the services. Zero values select defaults.
type Options struct {
	MaxWorkload int
	Retries     int
	Logger      *slog.Logger
	Recorder    Recorder
	Now         func() time.Time
	NewID       func() string
}

func (o Options) withDefaults() Options {
	if o.MaxWorkload <= 0 || o.MaxWorkload > DefaultMaxWorkload {
		o.MaxWorkload = DefaultMaxWorkload
	}
	if o.Retries <= 0 {
		o.Retries = DefaultRetries
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Recorder == nil {
		o.Recorder = nopRecorder{}
	}
	if o.Now == nil {
		o.Now = func() time.Time { return time.Now().UTC() }
	}
	if o.NewID == nil {
		o.NewID = func() string { return uuid.Must(uuid.NewV7()).String() }
	}
	return o
}

// validate is shared by all services; validator.Validate caches struct
// metadata and is safe for concurrent use.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// validateStruct runs tag validation and reports the first failing field.
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		if fe.Param() != "" {
			return &Error{Kind: KindValidation, Detail: fmt.Sprintf("%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param()), Err: err}
		}
		return &Error{Kind: KindValidation, Detail: fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()), Err: err}
	}
	return &Error{Kind: KindValidation, Detail: err.Error(), Err: err}
}
