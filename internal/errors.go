package internal

import (
	"errors"

	"atrium/admin-backend/internal/schema"

	"github.com/NYCU-SDC/summer/pkg/problem"
)

var (
	ErrInternalServerError = errors.New("internal server error")
	ErrNotFound            = errors.New("not found")
	ErrInvalidRequestBody  = errors.New("invalid request body")
	ErrValidationFailed    = errors.New("validation failed")

	// Member Errors
	ErrMemberNotFound = errors.New("member not found")

	// Event Errors
	ErrEventNotFound      = errors.New("event not found")
	ErrEventSlugExists    = errors.New("event slug already exists")
	ErrEventAlreadyLinked = errors.New("event already has a linked form")

	// News Errors
	ErrNewsNotFound        = errors.New("news post not found")
	ErrScheduledAtRequired = errors.New("scheduled_at is required for scheduled news")

	// Form Errors
	ErrFormNotFound   = errors.New("form not found")
	ErrFormSlugExists = errors.New("form slug already exists")
	ErrFormInactive   = errors.New("form is not accepting responses")
	ErrInvalidSchema  = errors.New("form schema is invalid")
	ErrFieldNotRanked = errors.New("field is not a ranked multi-select")
	ErrFieldNotFound  = errors.New("field not found in form schema")

	// Response Errors
	ErrResponseNotFound = errors.New("response not found")
)

func NewProblemWriter() *problem.HttpWriter {
	return problem.NewWithMapping(ErrorHandler)
}

func ErrorHandler(err error) problem.Problem {
	// Schema violations surface their editor message verbatim.
	var validationErr *schema.ValidationError
	if errors.As(err, &validationErr) {
		return problem.NewValidateProblem(validationErr.Message)
	}

	switch {
	case errors.Is(err, ErrInternalServerError):
		return problem.NewInternalServerProblem("internal server error")
	case errors.Is(err, ErrNotFound):
		return problem.NewNotFoundProblem("not found")
	case errors.Is(err, ErrInvalidRequestBody):
		return problem.NewBadRequestProblem("invalid request body")
	case errors.Is(err, ErrValidationFailed):
		return problem.NewValidateProblem("validation failed")

	// Member Errors
	case errors.Is(err, ErrMemberNotFound):
		return problem.NewNotFoundProblem("member not found")

	// Event Errors
	case errors.Is(err, ErrEventNotFound):
		return problem.NewNotFoundProblem("event not found")
	case errors.Is(err, ErrEventSlugExists):
		return problem.NewValidateProblem("event slug already exists")
	case errors.Is(err, ErrEventAlreadyLinked):
		return problem.NewValidateProblem("event already has a linked form")

	// News Errors
	case errors.Is(err, ErrNewsNotFound):
		return problem.NewNotFoundProblem("news post not found")
	case errors.Is(err, ErrScheduledAtRequired):
		return problem.NewValidateProblem("scheduled_at is required for scheduled news")

	// Form Errors
	case errors.Is(err, ErrFormNotFound):
		return problem.NewNotFoundProblem("form not found")
	case errors.Is(err, ErrFormSlugExists):
		return problem.NewValidateProblem("form slug already exists")
	case errors.Is(err, ErrFormInactive):
		return problem.NewValidateProblem("form is not accepting responses")
	case errors.Is(err, ErrInvalidSchema):
		return problem.NewValidateProblem("form schema is invalid")
	case errors.Is(err, ErrFieldNotRanked):
		return problem.NewBadRequestProblem("field is not a ranked multi-select")
	case errors.Is(err, ErrFieldNotFound):
		return problem.NewNotFoundProblem("field not found in form schema")

	// Response Errors
	case errors.Is(err, ErrResponseNotFound):
		return problem.NewNotFoundProblem("response not found")
	}
	return problem.Problem{}
}
