package model

import (
	"encoding/json"
	"reflect"
	"sync"
	"time"
)

// Validatable marks a schema record. Validate runs after every successful
// decode; returning a non-nil error rejects the instance.
type Validatable interface {
	Validate() error
}

// Kind identifies the backend handling a model type.
type Kind int

const (
	KindInvalid Kind = iota
	// KindSchemaRecord is a struct whose pointer implements Validatable.
	KindSchemaRecord
	// KindWireStruct is a struct implementing json.Marshaler and
	// json.Unmarshaler. Its own codec owns the wire format.
	KindWireStruct
	// KindAttrStruct is a struct with at least one `schema` field tag.
	KindAttrStruct
	// KindTypedMap is a named map type with string keys.
	KindTypedMap
	// KindPlainStruct is any other struct.
	KindPlainStruct
	// KindList is a slice of a model type.
	KindList
	// KindMap is an unnamed string-keyed map of a model type.
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindSchemaRecord:
		return "schema record"
	case KindWireStruct:
		return "wire struct"
	case KindAttrStruct:
		return "attr struct"
	case KindTypedMap:
		return "typed map"
	case KindPlainStruct:
		return "plain struct"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return "invalid"
	}
}

// isStruct reports whether the kind is one of the four struct backends.
func (k Kind) isStruct() bool {
	switch k {
	case KindSchemaRecord, KindWireStruct, KindAttrStruct, KindPlainStruct:
		return true
	}
	return false
}

var (
	validatableType     = reflect.TypeOf((*Validatable)(nil)).Elem()
	jsonMarshalerType   = reflect.TypeOf((*json.Marshaler)(nil)).Elem()
	jsonUnmarshalerType = reflect.TypeOf((*json.Unmarshaler)(nil)).Elem()
	timeType            = reflect.TypeOf(time.Time{})
)

type kindResult struct {
	kind Kind
	err  error
}

var kindCache sync.Map // reflect.Type -> kindResult

// KindOf classifies t into one of the model backends. Pointers are
// unwrapped one level. The first matching backend in priority order wins;
// unclassifiable types return an UnsupportedModelError.
func KindOf(t reflect.Type) (Kind, error) {
	if t == nil {
		return KindInvalid, &UnsupportedModelError{Type: t}
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if cached, ok := kindCache.Load(t); ok {
		res := cached.(kindResult)
		return res.kind, res.err
	}

	kind, err := classify(t)
	kindCache.Store(t, kindResult{kind: kind, err: err})
	return kind, err
}

func classify(t reflect.Type) (Kind, error) {
	switch t.Kind() {
	case reflect.Struct:
		// time.Time is a scalar on the wire, never a record.
		if t == timeType {
			return KindInvalid, &UnsupportedModelError{Type: t}
		}
		if reflect.PointerTo(t).Implements(validatableType) {
			return KindSchemaRecord, nil
		}
		if t.Implements(jsonMarshalerType) && reflect.PointerTo(t).Implements(jsonUnmarshalerType) {
			return KindWireStruct, nil
		}
		if hasSchemaTag(t) {
			return KindAttrStruct, nil
		}
		return KindPlainStruct, nil

	case reflect.Map:
		if t.Key().Kind() != reflect.String {
			return KindInvalid, &UnsupportedModelError{Type: t}
		}
		if t.Name() != "" {
			return KindTypedMap, nil
		}
		if _, err := KindOf(t.Elem()); err != nil {
			return KindInvalid, &UnsupportedModelError{Type: t}
		}
		return KindMap, nil

	case reflect.Slice:
		if _, err := KindOf(t.Elem()); err != nil {
			return KindInvalid, &UnsupportedModelError{Type: t}
		}
		return KindList, nil

	default:
		return KindInvalid, &UnsupportedModelError{Type: t}
	}
}

func hasSchemaTag(t reflect.Type) bool {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if _, ok := field.Tag.Lookup("schema"); ok {
			return true
		}
		if field.Anonymous {
			ft := field.Type
			if ft.Kind() == reflect.Pointer {
				ft = ft.Elem()
			}
			if ft.Kind() == reflect.Struct && ft != timeType && hasSchemaTag(ft) {
				return true
			}
		}
	}
	return false
}
