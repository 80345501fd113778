package workflow

import (
	"errors"
	"fmt"

	"github.com/aschmelyun/tidea/internal/api"
)

// Stage names one of the three backend-backed operations. Each stage owns a
// loading flag and an error slot.
type Stage int

const (
	StageUpload Stage = iota
	StageIdeas
	StageContent
)

var stages = []Stage{StageUpload, StageIdeas, StageContent}

func (s Stage) String() string {
	switch s {
	case StageUpload:
		return "upload"
	case StageIdeas:
		return "ideas"
	case StageContent:
		return "content"
	}
	return fmt.Sprintf("stage(%d)", int(s))
}

func (s Stage) fallbackMessage() string {
	switch s {
	case StageUpload:
		return "Failed to upload audio file. Please try again."
	case StageIdeas:
		return "Failed to generate ideas. Please try again."
	case StageContent:
		return "Failed to generate content. Please try again."
	}
	return "Operation failed. Please try again."
}

// FailureKind tags where a failure came from.
type FailureKind int

const (
	// KindValidation is a precondition checked before any network call.
	KindValidation FailureKind = iota + 1
	// KindTransport is an HTTP error status or a network failure.
	KindTransport
	// KindUnexpected is anything else, including recovered panics.
	KindUnexpected
)

func (k FailureKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindTransport:
		return "transport"
	case KindUnexpected:
		return "unexpected"
	}
	return "unknown"
}

// ValidationError reports a local precondition failure.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationf(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// Failure is what an error slot holds.
type Failure struct {
	Stage   Stage
	Kind    FailureKind
	Message string
	// Status is the HTTP status for transport failures that got a response.
	Status int
	Err    error
}

func (f *Failure) Error() string {
	return f.Message
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// classify turns any error from a stage into a Failure.
func classify(stage Stage, err error) *Failure {
	var (
		failure    *Failure
		validation *ValidationError
	)
	if errors.As(err, &failure) {
		return failure
	}
	if errors.As(err, &validation) {
		return &Failure{Stage: stage, Kind: KindValidation, Message: validation.Message, Err: err}
	}
	if apiErr, ok := api.AsError(err); ok {
		return &Failure{Stage: stage, Kind: KindTransport, Message: apiErr.Message, Status: apiErr.Status, Err: err}
	}

	msg := stage.fallbackMessage()
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	return &Failure{Stage: stage, Kind: KindUnexpected, Message: msg, Err: err}
}
