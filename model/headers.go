package model

import (
	"net/http"
	"reflect"
	"strings"
)

// ConvertHeaders loads the subset of h declared by typ, a struct backend.
// Wire names are matched case-insensitively with "-" treated as "_";
// undeclared headers are dropped silently and repeated headers joined with
// ",". Values load through the weak path, so numeric and bool fields
// coerce from their string form.
func ConvertHeaders(h http.Header, typ reflect.Type, opts LoadOptions) (any, error) {
	fields, err := Fields(typ)
	if err != nil {
		return nil, err
	}
	declared := make(map[string]bool, len(fields))
	for _, f := range fields {
		declared[f.Name] = true
	}

	raw := make(map[string]any, len(fields))
	for name := range h {
		key := Dekebabize(strings.ToLower(name))
		if declared[key] {
			raw[key] = strings.Join(h.Values(name), ",")
		}
	}

	opts.Coerce = true
	opts.Decamelize = false
	return Load(raw, typ, opts)
}
