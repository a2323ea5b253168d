package contacts

import (
	"encoding/json"
	"maps"
)

// Sentinel values used when a source file has no usable name/state column.
const (
	UnknownName  = "Unknown"
	UnknownState = "N/A"
)

// Contact is one canonical lead record produced by the normalizer.
//
// Contacts are immutable once built. OriginalData keeps the source row verbatim
// (column name -> raw value) for audit/debug display only.
type Contact struct {
	ID           int               `json:"id"`
	Phone        string            `json:"phone"`
	Name         string            `json:"name"`
	State        string            `json:"state"`
	OriginalData map[string]string `json:"original_data"`
}

// Clone returns c with its own copy of OriginalData.
func (c Contact) Clone() Contact {
	c.OriginalData = maps.Clone(c.OriginalData)
	return c
}

// Field names a canonical contact field.
type Field string

const (
	FieldPhone Field = "phone"
	FieldName  Field = "name"
	FieldState Field = "state"
)

// FieldMapping records which source column each canonical field was derived from.
// An empty string means the field stayed unmapped.
type FieldMapping struct {
	Phone string
	Name  string
	State string
}

// Column returns the source column mapped to f.
func (m FieldMapping) Column(f Field) (string, bool) {
	var col string
	switch f {
	case FieldPhone:
		col = m.Phone
	case FieldName:
		col = m.Name
	case FieldState:
		col = m.State
	}
	return col, col != ""
}

func (m *FieldMapping) set(f Field, col string) {
	switch f {
	case FieldPhone:
		m.Phone = col
	case FieldName:
		m.Name = col
	case FieldState:
		m.State = col
	}
}

// MarshalJSON renders unmapped fields as null so the display always shows all three keys.
func (m FieldMapping) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]*string{
		"phone": nullable(m.Phone),
		"name":  nullable(m.Name),
		"state": nullable(m.State),
	})
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Table is a decoded upload: an ordered header plus rows of raw cell values.
type Table struct {
	Columns []string
	Rows    [][]string
}

// Value returns the cell at (row, col) or "" when the row is short.
func (t Table) Value(row, col int) string {
	if row < 0 || row >= len(t.Rows) {
		return ""
	}
	r := t.Rows[row]
	if col < 0 || col >= len(r) {
		return ""
	}
	return r[col]
}

// Result is the outcome of a successful parse.
type Result struct {
	Contacts []Contact    `json:"contacts"`
	Mapping  FieldMapping `json:"mapping"`

	// SourceRows is the number of data rows in the upload before filtering.
	SourceRows int `json:"source_rows"`
}

// Dropped is the number of source rows excluded for lacking a usable phone number.
func (r Result) Dropped() int {
	return r.SourceRows - len(r.Contacts)
}
