package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONList stores an ordered list in a single text column as a JSON array.
// A nil list is written as "[]" so reads never observe NULL.
type JSONList[T any] []T

func (l JSONList[T]) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]T(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *JSONList[T]) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*l = JSONList[T]{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("models: cannot scan %T into JSONList", src)
	}

	out := []T{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("models: decode JSONList: %w", err)
	}
	*l = out
	return nil
}

func (JSONList[T]) GormDataType() string {
	return "text"
}
