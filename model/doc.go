// Package model implements the conversion engine behind muxschema: it
// classifies Go types into a closed set of model backends, loads untrusted
// decoded wire data (JSON, form, query, header values) into validated
// instances, dumps instances back to JSON-safe primitives, and converts
// between the snake_case, camelCase and kebab-case key conventions used by
// the different wire namespaces.
//
// # Model Backends
//
// A model is a structured record type usable as a request body, querystring,
// header or response schema. Five representations are recognised, probed in
// a fixed priority order:
//
//   - KindSchemaRecord: a struct whose pointer implements Validatable. The
//     type self-validates after decoding.
//   - KindWireStruct: a struct implementing both json.Marshaler and
//     json.Unmarshaler. Its own codec owns the wire format.
//   - KindAttrStruct: a struct carrying at least one `schema` field tag
//     (defaults, computed fields).
//   - KindTypedMap: a named map type with string keys.
//   - KindPlainStruct: any other struct.
//
// A bare slice or string-keyed map of one of the above classifies by
// recursing into the element type (KindList, KindMap). Anything else fails
// closed with an UnsupportedModelError.
//
// Classification and field introspection run once per type and are cached;
// Load, Dump and ConvertHeaders allocate all working state locally and are
// safe for concurrent use.
//
// # Errors
//
// All backend-specific failures (decode errors, missing required fields,
// Validate rejections) surface as a single *ConversionError carrying the
// original cause. Callers never branch on the backend.
package model
