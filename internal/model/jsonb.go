package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// AnswerMap maps a question ID to the student's submitted answer. It is
// stored as a single jsonb column so the whole map is written atomically,
// which keeps last-write-wins semantics per session update.
type AnswerMap map[uint]string

func (m AnswerMap) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

func (m *AnswerMap) Scan(value interface{}) error {
	if value == nil {
		*m = AnswerMap{}
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		if s, ok := value.(string); ok {
			b = []byte(s)
		} else {
			return fmt.Errorf("unsupported type %T for AnswerMap", value)
		}
	}
	return json.Unmarshal(b, m)
}

// UintSlice is a jsonb-backed list of question IDs (flagged questions).
type UintSlice []uint

func (s UintSlice) Value() (driver.Value, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s)
}

func (s *UintSlice) Scan(value interface{}) error {
	if value == nil {
		*s = UintSlice{}
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		if str, ok := value.(string); ok {
			b = []byte(str)
		} else {
			return fmt.Errorf("unsupported type %T for UintSlice", value)
		}
	}
	return json.Unmarshal(b, s)
}

// StringSlice is a jsonb-backed list of option strings.
type StringSlice []string

func (s StringSlice) Value() (driver.Value, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s)
}

func (s *StringSlice) Scan(value interface{}) error {
	if value == nil {
		*s = StringSlice{}
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		if str, ok := value.(string); ok {
			b = []byte(str)
		} else {
			return fmt.Errorf("unsupported type %T for StringSlice", value)
		}
	}
	return json.Unmarshal(b, s)
}
