package muxschema

import (
	"fmt"
)

// SchemaInvalidError reports a model declaration the layer cannot honor,
// such as a querystring model with required fields or a form request model
// with nested objects. It is raised at registration and surfaced from Build
// and the middleware, never per request.
type SchemaInvalidError struct {
	Reason string
}

func (e *SchemaInvalidError) Error() string {
	return "muxschema: invalid schema declaration: " + e.Reason
}

// RequestValidationError reports client input that failed to load into a
// declared model. In names the namespace: "body", "querystring" or
// "headers". The middleware answers these with 400.
type RequestValidationError struct {
	In    string
	Cause error
}

func (e *RequestValidationError) Error() string {
	return fmt.Sprintf("muxschema: request %s validation failed: %v", e.In, e.Cause)
}

func (e *RequestValidationError) Unwrap() error {
	return e.Cause
}

// ResponseValidationError reports a handler return value that violates the
// declared response contract. In is "body" or "headers". Respond answers
// these with 500; the client never sees the offending value.
type ResponseValidationError struct {
	In    string
	Cause error
}

func (e *ResponseValidationError) Error() string {
	return fmt.Sprintf("muxschema: response %s validation failed: %v", e.In, e.Cause)
}

func (e *ResponseValidationError) Unwrap() error {
	return e.Cause
}
