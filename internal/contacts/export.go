package contacts

import (
	"encoding/csv"
	"io"
	"strings"
)

var exportHeader = []string{"name", "phone", "state"}

// Search returns the contacts whose name or phone contains term, ignoring case.
func Search(list []Contact, term string) []Contact {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return list
	}
	out := make([]Contact, 0, len(list))
	for _, c := range list {
		if strings.Contains(strings.ToLower(c.Name), term) || strings.Contains(strings.ToLower(c.Phone), term) {
			out = append(out, c)
		}
	}
	return out
}

// WriteCSV exports contacts as name,phone,state with a header row.
func WriteCSV(w io.Writer, list []Contact) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}
	for _, c := range list {
		if err := cw.Write([]string{c.Name, c.Phone, c.State}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
