package dataset

import (
	"encoding/json"
	"strings"
)

// FieldType is the inferred type tag of a dataset field
type FieldType string

const (
	TypeText        FieldType = "text"
	TypeImage       FieldType = "image"
	TypeAudio       FieldType = "audio"
	TypeNumeric     FieldType = "numeric"
	TypeCategorical FieldType = "categorical"
	TypeOther       FieldType = "other"
)

// Field describes one column of a dataset split
type Field struct {
	Name  string    `json:"name"`
	Type  FieldType `json:"type"`
	DType string    `json:"dtype"` // Raw feature type reported by the server
}

// featureType mirrors the typed part of a datasets-server feature entry.
// The payload is open-ended so everything beyond _type/dtype is ignored.
type featureType struct {
	Type  string `json:"_type"`
	DType string `json:"dtype"`
}

// inferFieldType maps a Hugging Face feature type to a type tag
func inferFieldType(raw json.RawMessage) FieldType {
	var ft featureType
	if err := json.Unmarshal(raw, &ft); err != nil {
		return TypeOther
	}

	switch ft.Type {
	case "Image":
		return TypeImage
	case "Audio":
		return TypeAudio
	case "ClassLabel":
		return TypeCategorical
	case "Value":
		return inferValueType(ft.DType)
	default:
		return TypeOther
	}
}

// inferValueType maps a scalar dtype to a type tag
func inferValueType(dtype string) FieldType {
	switch {
	case dtype == "string" || dtype == "large_string":
		return TypeText
	case dtype == "bool":
		return TypeCategorical
	case strings.HasPrefix(dtype, "int"),
		strings.HasPrefix(dtype, "uint"),
		strings.HasPrefix(dtype, "float"),
		strings.HasPrefix(dtype, "decimal"):
		return TypeNumeric
	default:
		return TypeOther
	}
}

// rawDType extracts a short human-readable dtype label from a feature type
func rawDType(raw json.RawMessage) string {
	var ft featureType
	if err := json.Unmarshal(raw, &ft); err != nil {
		return "unknown"
	}
	if ft.Type == "Value" && ft.DType != "" {
		return ft.DType
	}
	if ft.Type != "" {
		return ft.Type
	}
	return "unknown"
}
