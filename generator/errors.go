package generator

import (
	"errors"
	"fmt"
)

// ErrNoLengths and ErrInvalidStructure surface verbatim in the UI banner.
var (
	ErrNoLengths        = errors.New("Please select at least one summary length.")
	ErrInvalidStructure = errors.New("Invalid response structure")
	ErrMissingAPIKey    = errors.New("missing api key")
	ErrEmptyOutput      = errors.New("model returned empty output")
)

// ValidationError is a local precondition failure. It never reaches the network.
type ValidationError struct {
	Cause error
}

func (e *ValidationError) Error() string {
	if e.Cause == nil {
		return "validation failed"
	}
	return e.Cause.Error()
}

func (e *ValidationError) Unwrap() error { return e.Cause }

// ProviderError wraps any network, parse or shape failure of the provider call.
type ProviderError struct {
	Provider string
	Cause    error
}

func (e *ProviderError) Error() string {
	if e.Cause == nil {
		return "Failed to generate content"
	}
	return fmt.Sprintf("Failed to generate content: %v", e.Cause)
}

func (e *ProviderError) Unwrap() error { return e.Cause }

// UnknownError carries anything that is neither a validation nor a provider failure.
type UnknownError struct {
	Cause error
}

func (e *UnknownError) Error() string {
	if e.Cause == nil {
		return "An unknown error occurred while generating content."
	}
	return fmt.Sprintf("An unknown error occurred while generating content: %v", e.Cause)
}

func (e *UnknownError) Unwrap() error { return e.Cause }

// Classify maps err onto the error taxonomy. A nil error stays nil.
func Classify(err error) error {
	if err == nil {
		return nil
	}

	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve
	}

	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe
	}

	var ue *UnknownError
	if errors.As(err, &ue) {
		return ue
	}

	return &UnknownError{Cause: err}
}
