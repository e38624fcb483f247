package models

import "encoding/json"

// Field is an optional patch field that distinguishes the three states a
// partial update can put a field in: absent from the payload (Set == false,
// leave untouched), present as null (Set == true, Value == nil, clear the
// field), or present with a value.
type Field[T any] struct {
	Set   bool
	Value *T
}

// UnmarshalJSON is only invoked for keys present in the payload, which is
// what makes the absent/null distinction observable.
func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.Set = true
	if string(data) == "null" {
		f.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	f.Value = &v
	return nil
}

// Some reports whether the field carries a non-null value.
func (f Field[T]) Some() bool {
	return f.Set && f.Value != nil
}
