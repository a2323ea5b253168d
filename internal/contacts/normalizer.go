package contacts

import (
	"strings"
	"unicode"
)

// Header synonyms per canonical field. Matching is a case-insensitive substring
// test after separators are folded to underscores, so "Phone Number",
// "phone-number" and "PHONE_NUMBER" all hit "phone".
var (
	phoneVariants = []string{
		"phone", "phone_number", "phonenumber", "phone_no", "telephone",
		"tel", "cell", "mobile", "contact",
	}
	nameVariants = []string{
		"name", "full_name", "fullname", "contact_name", "first_name",
	}
	stateVariants = []string{
		"state", "st", "state_code", "location", "region",
	}
)

var fieldVariants = []struct {
	field    Field
	variants []string
}{
	{FieldPhone, phoneVariants},
	{FieldName, nameVariants},
	{FieldState, stateVariants},
}

// minFallbackPhoneLen is the shortest sample accepted by the phone fallback heuristic.
const minFallbackPhoneLen = 10

func normalizeHeader(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "_")
	return strings.ReplaceAll(s, "-", "_")
}

// DetectColumnMapping maps canonical fields to source columns by header name.
//
// Columns are scanned left to right and each column is tested against every
// field, so one header such as "Contact Name" can map both phone and name.
// The first column matching a field keeps it. Any field may stay unmapped.
func DetectColumnMapping(columns []string) FieldMapping {
	var m FieldMapping
	for _, col := range columns {
		h := normalizeHeader(col)
		if h == "" {
			continue
		}
		for _, d := range fieldVariants {
			if _, ok := m.Column(d.field); ok {
				continue
			}
			if matchesAny(h, d.variants) {
				m.set(d.field, col)
			}
		}
	}
	return m
}

func matchesAny(header string, variants []string) bool {
	for _, v := range variants {
		if strings.Contains(header, normalizeHeader(v)) {
			return true
		}
	}
	return false
}

// CleanPhoneNumber normalizes a raw phone value.
//
//   - 10 digits: US national number, prefixed with +1
//   - 11 digits starting with 1: prefixed with +
//   - any other non-empty digit string: prefixed with + (already carries a country code)
//
// The second return value is false when the input has no digits at all.
func CleanPhoneNumber(raw string) (string, bool) {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	switch {
	case digits == "":
		return "", false
	case len(digits) == 10:
		return "+1" + digits, true
	case len(digits) == 11 && digits[0] == '1':
		return "+" + digits, true
	default:
		return "+" + digits, true
	}
}

// fallbackPhoneColumn picks the first column whose first non-empty sample
// contains a digit and is at least 10 characters long.
func fallbackPhoneColumn(t Table) (int, bool) {
	for ci := range t.Columns {
		sample := firstNonEmpty(t, ci)
		if len(sample) >= minFallbackPhoneLen && strings.IndexFunc(sample, unicode.IsDigit) >= 0 {
			return ci, true
		}
	}
	return -1, false
}

func firstNonEmpty(t Table, col int) string {
	for ri := range t.Rows {
		if v := strings.TrimSpace(t.Value(ri, col)); v != "" {
			return v
		}
	}
	return ""
}

func columnIndex(columns []string, name string) int {
	if name == "" {
		return -1
	}
	for i, c := range columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Parse builds the canonical contact list from a decoded table.
//
// Rows are numbered 1..N in source order before filtering, so ids stay stable
// and strictly increasing even when rows without a phone are dropped.
func Parse(t Table) (Result, error) {
	if len(t.Columns) == 0 {
		return Result{}, newParseError("file has no header row", ErrNoHeader)
	}

	mapping := DetectColumnMapping(t.Columns)
	phoneCol := columnIndex(t.Columns, mapping.Phone)
	if phoneCol < 0 {
		if ci, ok := fallbackPhoneColumn(t); ok {
			phoneCol = ci
			mapping.Phone = t.Columns[ci]
		}
	}
	nameCol := columnIndex(t.Columns, mapping.Name)
	stateCol := columnIndex(t.Columns, mapping.State)

	out := Result{Mapping: mapping, SourceRows: len(t.Rows), Contacts: make([]Contact, 0, len(t.Rows))}
	for ri := range t.Rows {
		id := ri + 1
		if phoneCol < 0 {
			continue
		}
		phone, ok := CleanPhoneNumber(t.Value(ri, phoneCol))
		if !ok {
			continue
		}

		original := make(map[string]string, len(t.Columns))
		for ci, col := range t.Columns {
			original[col] = t.Value(ri, ci)
		}

		out.Contacts = append(out.Contacts, Contact{
			ID:           id,
			Phone:        phone,
			Name:         valueOr(t, ri, nameCol, UnknownName),
			State:        valueOr(t, ri, stateCol, UnknownState),
			OriginalData: original,
		})
	}
	return out, nil
}

func valueOr(t Table, row, col int, def string) string {
	if col < 0 {
		return def
	}
	if v := strings.TrimSpace(t.Value(row, col)); v != "" {
		return v
	}
	return def
}
