package contacts

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParseFile decodes an upload by file extension and normalizes it.
func ParseFile(filename string, r io.Reader) (Result, error) {
	t, err := Decode(filename, r)
	if err != nil {
		return Result{}, err
	}
	return Parse(t)
}

// Decode reads a CSV or XLSX upload into a Table. The format is chosen by extension.
func Decode(filename string, r io.Reader) (Table, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return DecodeCSV(r)
	case ".xlsx", ".xlsm":
		return DecodeXLSX(r)
	default:
		return Table{}, newParseError(fmt.Sprintf("unsupported file format %q", filepath.Ext(filename)), ErrUnsupportedFormat)
	}
}

// DecodeCSV reads a comma separated upload. The first record is the header.
// Short rows are padded with empty cells; rows longer than the header are rejected.
// Cell values are kept verbatim; only header names are trimmed.
func DecodeCSV(r io.Reader) (Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Table{}, newParseError("read failed", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return Table{}, newParseError("malformed csv", err)
	}
	return tableFromRecords(records)
}

// DecodeXLSX reads the first worksheet of a workbook. The first row is the header.
func DecodeXLSX(r io.Reader) (Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Table{}, newParseError("unreadable workbook", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return Table{}, newParseError("workbook has no sheets", ErrNoHeader)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return Table{}, newParseError("unreadable sheet "+sheets[0], err)
	}
	return tableFromRecords(rows)
}

func tableFromRecords(records [][]string) (Table, error) {
	records = dropBlankRecords(records)
	if len(records) == 0 {
		return Table{}, newParseError("file is empty", ErrNoHeader)
	}

	header := dedupeColumns(records[0])
	t := Table{Columns: header, Rows: make([][]string, 0, len(records)-1)}
	for i, rec := range records[1:] {
		if len(rec) > len(header) {
			return Table{}, newParseError(
				fmt.Sprintf("line %d: expected %d fields, saw %d", i+2, len(header), len(rec)),
				ErrTooManyFields,
			)
		}
		row := make([]string, len(header))
		copy(row, rec)
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func dropBlankRecords(records [][]string) [][]string {
	out := records[:0:0]
	for _, rec := range records {
		blank := true
		for _, v := range rec {
			if strings.TrimSpace(v) != "" {
				blank = false
				break
			}
		}
		if !blank {
			out = append(out, rec)
		}
	}
	return out
}

// dedupeColumns gives repeated headers a numeric suffix: Name, Name.1, Name.2.
// A suffixed name that is already taken is suffixed again until it is unique.
// Empty headers become "Unnamed: <index>".
func dedupeColumns(header []string) []string {
	out := make([]string, len(header))
	used := make(map[string]bool, len(header))
	next := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("Unnamed: %d", i)
		}
		name := h
		for used[name] {
			next[h]++
			name = fmt.Sprintf("%s.%d", h, next[h])
		}
		used[name] = true
		out[i] = name
	}
	return out
}

// IsParseError reports whether err came from decoding or normalizing an upload.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}
