package pipeline

import (
	"errors"
	"fmt"
)

var (
	// ErrNoDocuments is returned when no qualifying document is left to send.
	ErrNoDocuments = errors.New("no qualifying documents to analyze")

	// ErrNoUsableResponse is returned when the model answer is empty or does
	// not match the declared schema.
	ErrNoUsableResponse = errors.New("no usable response")
)

// ConfigurationError reports a missing or invalid setting detected before
// any request is built.
type ConfigurationError struct {
	Setting string
	Reason  string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Setting, e.Reason)
}

// EncodingError reports a document that could not be read to completion.
// The affected document is excluded from the request.
type EncodingError struct {
	Name string
	Err  error
}

// NewEncodingError wraps err for the document called name.
func NewEncodingError(name string, err error) *EncodingError {
	return &EncodingError{Name: name, Err: err}
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("encoding %q: %v", e.Name, e.Err)
}

func (e *EncodingError) Unwrap() error {
	return e.Err
}

// TransportError reports a failed round trip to the model service: network,
// authentication, quota or a rejected request. The message is the
// underlying error's message, unchanged.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ResponseShapeError reports a model answer that was empty or did not
// conform to the declared schema. It always matches ErrNoUsableResponse.
type ResponseShapeError struct {
	Reason string
	Err    error
}

func newResponseShapeError(reason string, err error) *ResponseShapeError {
	return &ResponseShapeError{Reason: reason, Err: err}
}

func (e *ResponseShapeError) Error() string {
	msg := ErrNoUsableResponse.Error()
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ResponseShapeError) Unwrap() error {
	return e.Err
}

func (e *ResponseShapeError) Is(target error) bool {
	return target == ErrNoUsableResponse
}
