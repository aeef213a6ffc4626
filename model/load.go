package model

import (
	"encoding/json"
	"reflect"
	"strconv"

	gojson "github.com/goccy/go-json"
)

type jsonCodec struct {
	marshal   func(any) ([]byte, error)
	unmarshal func([]byte, any) error
}

func codecFor(p Preference) jsonCodec {
	if p == PreferStdCodec {
		return jsonCodec{marshal: json.Marshal, unmarshal: json.Unmarshal}
	}
	return jsonCodec{marshal: gojson.Marshal, unmarshal: gojson.Unmarshal}
}

// Load converts decoded wire data into an instance of typ. The steps, in
// order: key decasing, defaults, required-field enforcement, weak coercion,
// codec round-trip, Validate for schema records. The result is a value of
// typ (never a pointer). Every failure is a *ConversionError except
// unclassifiable targets, which return an UnsupportedModelError.
func Load(raw any, typ reflect.Type, opts LoadOptions) (any, error) {
	kind, err := KindOf(typ)
	if err != nil {
		return nil, err
	}
	if typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}

	// Already-converted instances pass through untouched.
	if raw != nil {
		rt := reflect.TypeOf(raw)
		if rt == typ {
			return raw, nil
		}
		if rt.Kind() == reflect.Pointer && rt.Elem() == typ {
			return reflect.ValueOf(raw).Elem().Interface(), nil
		}
	}

	if opts.Decamelize {
		raw = DecamelizeKeys(raw)
	}

	prepared, err := prepare(raw, typ, opts)
	if err != nil {
		return nil, err
	}

	codec := codecFor(opts.Preference)
	encoded, err := codec.marshal(prepared)
	if err != nil {
		return nil, &ConversionError{Kind: kind, Cause: err}
	}
	ptr := reflect.New(typ)
	if err := codec.unmarshal(encoded, ptr.Interface()); err != nil {
		return nil, &ConversionError{Kind: kind, Cause: err}
	}

	if err := validateTree(ptr.Elem()); err != nil {
		return nil, &ConversionError{Kind: kind, Cause: err}
	}
	return ptr.Elem().Interface(), nil
}

// validateTree runs Validate on every schema record reachable from v:
// records nested in slices, maps and other struct fields validate too,
// innermost first.
func validateTree(v reflect.Value) error {
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			return nil
		}
		return validateTree(v.Elem())

	case reflect.Slice:
		for i := 0; i < v.Len(); i++ {
			if err := validateTree(v.Index(i)); err != nil {
				return err
			}
		}

	case reflect.Map:
		iter := v.MapRange()
		for iter.Next() {
			elem := reflect.New(v.Type().Elem()).Elem()
			elem.Set(iter.Value())
			if err := validateTree(elem); err != nil {
				return err
			}
		}

	case reflect.Struct:
		t := v.Type()
		if t == timeType {
			return nil
		}
		for i := 0; i < t.NumField(); i++ {
			if t.Field(i).PkgPath != "" {
				continue
			}
			if err := validateTree(v.Field(i)); err != nil {
				return err
			}
		}
		if reflect.PointerTo(t).Implements(validatableType) {
			rcv := v
			if rcv.CanAddr() {
				rcv = rcv.Addr()
			} else {
				rcv = reflect.New(t)
				rcv.Elem().Set(v)
			}
			return rcv.Interface().(Validatable).Validate()
		}
	}
	return nil
}

// prepare walks the raw tree against the target type: fills defaults,
// rejects missing required fields and applies weak coercion. Values the
// codec can judge better are left alone.
func prepare(data any, t reflect.Type, opts LoadOptions) (any, error) {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	kind, err := KindOf(t)
	if err != nil {
		// Scalar leaf; the codec handles it.
		if opts.Coerce {
			return coerce(data, t), nil
		}
		return data, nil
	}

	switch kind {
	case KindWireStruct, KindTypedMap:
		// The type's own codec owns the format.
		return data, nil

	case KindList:
		items, ok := data.([]any)
		if !ok {
			if opts.Coerce {
				data = coerce(data, t)
				items, ok = data.([]any)
			}
			if !ok {
				return data, nil
			}
		}
		out := make([]any, len(items))
		for i, item := range items {
			prepared, err := prepare(item, t.Elem(), opts)
			if err != nil {
				return nil, err
			}
			out[i] = prepared
		}
		return out, nil

	case KindMap:
		values, ok := data.(map[string]any)
		if !ok {
			return data, nil
		}
		out := make(map[string]any, len(values))
		for key, value := range values {
			prepared, err := prepare(value, t.Elem(), opts)
			if err != nil {
				return nil, err
			}
			out[key] = prepared
		}
		return out, nil
	}

	values, ok := data.(map[string]any)
	if !ok {
		return nil, convErr(kind, "expected an object for %v, got %T", t, data)
	}
	fields, err := Fields(t)
	if err != nil {
		return nil, err
	}

	out := make(map[string]any, len(values))
	for key, value := range values {
		out[key] = value
	}
	for _, f := range fields {
		value, present := values[f.Name]
		if !present {
			if f.HasDefault {
				out[f.codecKey()] = coerce(f.Default, f.Type)
				continue
			}
			if f.Required {
				return nil, convErr(kind, "missing required field %q", f.Name)
			}
			continue
		}
		if opts.Coerce {
			value = coerce(value, f.Type)
		}
		prepared, err := prepare(value, f.Type, opts)
		if err != nil {
			return nil, err
		}
		// Untagged fields are read by the codec under their Go name.
		if key := f.codecKey(); key != f.Name {
			delete(out, f.Name)
			out[key] = prepared
		} else {
			out[f.Name] = prepared
		}
	}
	return out, nil
}

// coerce applies the weak conversions used for querystring, form and header
// values. Values it cannot improve are returned unchanged so the codec
// reports the mismatch.
func coerce(v any, t reflect.Type) any {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if t.Kind() == reflect.Slice && t.Elem().Kind() != reflect.Uint8 {
		switch items := v.(type) {
		case []any:
			out := make([]any, len(items))
			for i, item := range items {
				out[i] = coerce(item, t.Elem())
			}
			return out
		case []string:
			out := make([]any, len(items))
			for i, item := range items {
				out[i] = coerce(item, t.Elem())
			}
			return out
		default:
			return []any{coerce(v, t.Elem())}
		}
	}

	s, isString := v.(string)
	if !isString {
		if items, ok := v.([]string); ok && len(items) == 1 {
			s, isString = items[0], true
		}
	}
	if !isString {
		return v
	}

	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if n, err := strconv.ParseUint(s, 10, 64); err == nil {
			return n
		}
	case reflect.Float32, reflect.Float64:
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	case reflect.Bool:
		if b, err := strconv.ParseBool(s); err == nil {
			return b
		}
	}
	return s
}
