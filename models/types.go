package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// StringList is a string slice stored as a JSON text column. Keeping tags
// as JSON (instead of a native array type) keeps queries portable between
// postgres and the sqlite driver used in tests.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	return json.Marshal(l)
}

func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = StringList{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return errors.New("unsupported type for StringList")
	}
}

// Contains reports whether the list holds item.
func (l StringList) Contains(item string) bool {
	for _, s := range l {
		if s == item {
			return true
		}
	}
	return false
}

// ImageVariant is one rendition of an uploaded image as returned by the
// media service.
type ImageVariant struct {
	URL      string `json:"url"`
	PublicID string `json:"public_id"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

// VariantSet maps a variant name (desktop, mobile, thumbnail, original)
// to its stored rendition. Persisted as a JSON text column.
type VariantSet map[string]ImageVariant

func (s VariantSet) Value() (driver.Value, error) {
	if s == nil {
		s = VariantSet{}
	}
	return json.Marshal(s)
}

func (s *VariantSet) Scan(value interface{}) error {
	if value == nil {
		*s = VariantSet{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return errors.New("unsupported type for VariantSet")
	}
}

// JSONMap holds provider-specific metadata as an opaque JSON object.
type JSONMap map[string]interface{}

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		m = JSONMap{}
	}
	return json.Marshal(m)
}

func (m *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*m = JSONMap{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return errors.New("unsupported type for JSONMap")
	}
}
