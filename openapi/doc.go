// Package openapi holds the OpenAPI 3.1 document object model and the
// JSON Schema generator that renders model types into component schemas.
//
// The Generator works in two modes: validation schemas describe request
// payloads (computed fields omitted), serialization schemas describe
// response payloads (computed fields readOnly). Named struct types are
// pooled and referenced by $ref so a type appearing in many operations is
// generated once.
//
// See: https://spec.openapis.org/oas/v3.1.0
package openapi
