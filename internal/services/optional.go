package services

import (
	"bytes"
	"encoding/json"
)

// Optional distinguishes a JSON key that was left out from one sent as null
// and from one sent with a value:
//
//	{}              -> Set=false
//	{"x": null}     -> Set=true, Null=true
//	{"x": "value"}  -> Set=true, Value="value"
type Optional[T any] struct {
	Set   bool
	Null  bool
	Value T
}

// Some builds a present, non-null Optional.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: v}
}

// Null builds a present Optional that clears the field.
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true, Null: true}
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Null = true
		var zero T
		o.Value = zero
		return nil
	}
	o.Null = false
	return json.Unmarshal(data, &o.Value)
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Set || o.Null {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// Ptr returns nil for null and a pointer to the value otherwise. Only
// meaningful when Set is true.
func (o Optional[T]) Ptr() *T {
	if o.Null {
		return nil
	}
	v := o.Value
	return &v
}
