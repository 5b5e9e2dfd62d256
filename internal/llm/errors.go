package llm

import (
	"errors"
	"fmt"
)

var (
	// ErrModelNotFound is returned when the server does not know the model.
	ErrModelNotFound = errors.New("model not found")
	// ErrMalformedResponse is returned when a response carries no generated text.
	ErrMalformedResponse = errors.New("response contains no generated text")
)

// LoadError reports a failure to acquire the model handle.
type LoadError struct {
	Backend string
	Model   string
	Err     error
}

func (e *LoadError) Error() string {
	if e.Model == "" {
		return fmt.Sprintf("loading %s model: %v", e.Backend, e.Err)
	}
	return fmt.Sprintf("loading %s model %q: %v", e.Backend, e.Model, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// IsLoadError checks if an error is a model load failure.
func IsLoadError(err error) bool {
	var le *LoadError
	return errors.As(err, &le)
}

// GenerationError reports a non-success HTTP status from the model server.
type GenerationError struct {
	StatusCode int
	Body       string
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("model server error (status %d): %s", e.StatusCode, e.Body)
}
