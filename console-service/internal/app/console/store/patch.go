package store

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// IDKey - ключ идентификатора в JSON-представлении всех сущностей.
const IDKey = "id"

// Patch - частичное обновление: JSON-ключи сущности и новые значения.
type Patch map[string]any

// Merge выполняет поверхностное слияние {...record, ...patch}.
// Ключ id в патче игнорируется: слияние не меняет идентичность записи.
func Merge[T any](record T, patch Patch) (T, error) {
	var out T

	fields, err := toMap(record)
	if err != nil {
		return out, err
	}
	for k, v := range patch {
		if k == IDKey {
			continue
		}
		fields[k] = v
	}

	return fromMap[T](fields)
}

// FromPatch собирает запись только из полей патча и заданного id.
func FromPatch[T any](id int64, patch Patch) (T, error) {
	fields := make(map[string]any, len(patch)+1)
	for k, v := range patch {
		fields[k] = v
	}
	fields[IDKey] = id
	return fromMap[T](fields)
}

func toMap(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode record: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber() // int64 без потери точности
	fields := map[string]any{}
	if err := dec.Decode(&fields); err != nil {
		return nil, fmt.Errorf("failed to decode record: %w", err)
	}
	return fields, nil
}

func fromMap[T any](fields map[string]any) (T, error) {
	var out T
	raw, err := json.Marshal(fields)
	if err != nil {
		return out, fmt.Errorf("failed to encode patch: %w", err)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("invalid patch: %w", err)
	}
	return out, nil
}
