package model

import (
	"fmt"

	"github.com/joeshaw/envdecode"
)

// Preference selects the JSON engine running the marshal/unmarshal
// round-trip when a target could be served by either. The default engine is
// goccy/go-json; PreferStdCodec switches to encoding/json for types whose
// custom marshalers depend on stdlib behavior.
type Preference string

const (
	PreferJSONCodec Preference = "go-json"
	PreferStdCodec  Preference = "std-json"
)

// Options carries the conversion settings shared by every wire namespace.
// Values are read on every call; nothing is cached per instance.
type Options struct {
	// ConvertCasing enables snake_case struct fields over camelCase wire
	// keys: request keys are decamelized before loading, response keys
	// camelized after dumping, and generated schemas rewritten to match.
	ConvertCasing bool `env:"MUXSCHEMA_CONVERT_CASING,default=false"`

	// Preference picks the JSON engine, see Preference.
	Preference Preference `env:"MUXSCHEMA_PREFERENCE,default=go-json"`
}

// OptionsFromEnv decodes Options from MUXSCHEMA_* environment variables.
func OptionsFromEnv() (Options, error) {
	var opts Options
	if err := envdecode.Decode(&opts); err != nil {
		return Options{}, fmt.Errorf("model: decode options from environment: %w", err)
	}
	return opts, nil
}

// LoadOptions controls a single Load call.
type LoadOptions struct {
	// Decamelize rewrites every mapping key camel to snake before any
	// other step, so backends never see mixed casing.
	Decamelize bool
	// Coerce enables the weak mode used for querystring, form and header
	// sources: strings coerce to numeric and bool targets, and a lone
	// scalar wraps into a single-element slice when the target is a slice.
	Coerce bool
	// Preference picks the JSON engine.
	Preference Preference
}

// DumpOptions controls a single Dump call.
type DumpOptions struct {
	// Camelize rewrites every produced key snake to camel.
	Camelize bool
	// Kebabize rewrites every produced key to kebab-case (header models).
	// Setting both Camelize and Kebabize is a programming error.
	Kebabize bool
	// OmitComputed drops `schema:"computed"` fields from the output.
	OmitComputed bool
	// Preference picks the JSON engine.
	Preference Preference
}
