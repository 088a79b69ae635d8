package models

import (
	"bytes"
	"encoding/json"
)

// Nullable is a JSON field that tells "absent" apart from "null". Set is true
// whenever the key was present; Value is nil when it was null.
type Nullable[T any] struct {
	Set   bool
	Value *T
}

// UnmarshalJSON records presence and decodes the value.
func (n *Nullable[T]) UnmarshalJSON(data []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		n.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}

// MarshalJSON writes the value or null.
func (n Nullable[T]) MarshalJSON() ([]byte, error) {
	if n.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*n.Value)
}

// Some returns a present, non-null field.
func Some[T any](v T) Nullable[T] {
	return Nullable[T]{Set: true, Value: &v}
}

// Null returns a present field holding null.
func Null[T any]() Nullable[T] {
	return Nullable[T]{Set: true}
}
