package model

import (
	"errors"
	"fmt"
	"reflect"
)

// ErrUnsupportedModel is the sentinel matched by errors.Is for every type
// that falls outside the closed set of model backends.
var ErrUnsupportedModel = errors.New("unsupported model type")

// UnsupportedModelError reports a type that cannot serve as a model.
type UnsupportedModelError struct {
	Type reflect.Type
}

func (e *UnsupportedModelError) Error() string {
	return fmt.Sprintf("model: %v is not a supported model type", e.Type)
}

func (e *UnsupportedModelError) Unwrap() error {
	return ErrUnsupportedModel
}

// ConversionError is the uniform failure for Load, Dump and ConvertHeaders.
// Callers inspect Cause when they need the underlying decode or validation
// failure; they never branch on the backend.
type ConversionError struct {
	Kind  Kind
	Cause error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("model: conversion failed (%s): %v", e.Kind, e.Cause)
}

func (e *ConversionError) Unwrap() error {
	return e.Cause
}

func convErr(kind Kind, format string, args ...any) *ConversionError {
	return &ConversionError{Kind: kind, Cause: fmt.Errorf(format, args...)}
}
