// Package metadata gates what metadata may be attached to registry entries.
// Schemas declare required/optional fields, per-field type constraints, and
// per-field predicates; metadata records are stored independently from the
// entry payloads they describe.
package metadata

import "reflect"

// FieldType constrains the value type of a metadata field.
type FieldType string

const (
	FieldString FieldType = "string"
	FieldNumber FieldType = "number"
	FieldBool   FieldType = "bool"
	FieldList   FieldType = "list"
	FieldMap    FieldType = "map"
)

// FieldValidator is an additional predicate applied to a present field value.
type FieldValidator func(value any) bool

// Schema describes the shape metadata must have to pass validation.
type Schema struct {
	RequiredFields []string
	OptionalFields []string
	FieldTypes     map[string]FieldType
	Validators     map[string][]FieldValidator
}

// check reports whether the metadata bag satisfies the schema: all required
// fields present, typed fields type-correct, and every predicate accepting
// its field's value. Fields outside required/optional are allowed through;
// the schema constrains what it names.
func (s *Schema) check(md map[string]any) bool {
	for _, field := range s.RequiredFields {
		if _, ok := md[field]; !ok {
			return false
		}
	}
	for field, ft := range s.FieldTypes {
		value, ok := md[field]
		if !ok {
			continue
		}
		if !typeMatches(value, ft) {
			return false
		}
	}
	for field, validators := range s.Validators {
		value, ok := md[field]
		if !ok {
			continue
		}
		for _, validate := range validators {
			if !validate(value) {
				return false
			}
		}
	}
	return true
}

func typeMatches(value any, ft FieldType) bool {
	switch ft {
	case FieldString:
		_, ok := value.(string)
		return ok
	case FieldBool:
		_, ok := value.(bool)
		return ok
	case FieldNumber:
		switch value.(type) {
		case int, int32, int64, float32, float64:
			return true
		}
		return false
	case FieldList:
		return value != nil && reflect.TypeOf(value).Kind() == reflect.Slice
	case FieldMap:
		return value != nil && reflect.TypeOf(value).Kind() == reflect.Map
	default:
		return false
	}
}
