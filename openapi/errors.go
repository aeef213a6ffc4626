package openapi

import (
	"fmt"
	"reflect"
)

// SchemaBuildError reports a type that cannot be rendered as a schema.
type SchemaBuildError struct {
	Type  reflect.Type
	Cause error
}

func (e *SchemaBuildError) Error() string {
	return fmt.Sprintf("openapi: cannot build schema for %v: %v", e.Type, e.Cause)
}

func (e *SchemaBuildError) Unwrap() error {
	return e.Cause
}
