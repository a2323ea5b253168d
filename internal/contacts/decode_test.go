package contacts

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestDecodeCSV_StripsBOMAndPadsShortRows(t *testing.T) {
	in := "\xEF\xBB\xBFName,Phone,State\nAlice,555-123-4567\n\n"
	tbl, err := DecodeCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Equal(t, []string{"Name", "Phone", "State"}, tbl.Columns)
	require.Equal(t, [][]string{{"Alice", "555-123-4567", ""}}, tbl.Rows)
}

func TestDecodeCSV_KeepsCellsVerbatim(t *testing.T) {
	tbl, err := DecodeCSV(strings.NewReader(" Name ,Notes\nAnn,  padded  \n"))
	require.NoError(t, err)
	require.Equal(t, []string{"Name", "Notes"}, tbl.Columns)
	require.Equal(t, [][]string{{"Ann", "  padded  "}}, tbl.Rows)
}

func TestDecodeCSV_RejectsLongRows(t *testing.T) {
	_, err := DecodeCSV(strings.NewReader("a,b\n1,2,3\n"))
	require.Error(t, err)
	require.ErrorIs(t, err, ErrTooManyFields)
}

func TestDecodeCSV_EmptyFile(t *testing.T) {
	_, err := DecodeCSV(strings.NewReader(""))
	require.ErrorIs(t, err, ErrNoHeader)
}

func TestDecodeCSV_DuplicateHeaders(t *testing.T) {
	tbl, err := DecodeCSV(strings.NewReader("Name,Name,,Phone\nA,B,C,5551234567\n"))
	require.NoError(t, err)
	require.Equal(t, []string{"Name", "Name.1", "Unnamed: 2", "Phone"}, tbl.Columns)

	tbl, err = DecodeCSV(strings.NewReader("Name,Name,Name.1\na,b,c\n"))
	require.NoError(t, err)
	require.Equal(t, []string{"Name", "Name.1", "Name.1.1"}, tbl.Columns)
}

func TestDecode_UnsupportedExtension(t *testing.T) {
	_, err := Decode("leads.txt", strings.NewReader("phone\n5551234567\n"))
	require.ErrorIs(t, err, ErrUnsupportedFormat)
	require.True(t, IsParseError(err))
}

func TestParseFile_CSV(t *testing.T) {
	in := "Full Name,Cell,Region\nAlice,555-123-4567,CA\nBob,not-a-number,TX\nCarol,1-555-987-6543,NY\n"
	res, err := ParseFile("Leads.CSV", strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, res.Contacts, 2)
	require.Equal(t, "Cell", res.Mapping.Phone)
}

func TestParseFile_XLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]any{
		{"Name", "Mobile", "State Code"},
		{"Alice", "555-123-4567", "CA"},
		{"Bob", "", "TX"},
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &r))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, f.Close())

	res, err := ParseFile("leads.xlsx", bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Equal(t, FieldMapping{Phone: "Mobile", Name: "Name", State: "State Code"}, res.Mapping)
	require.Len(t, res.Contacts, 1)
	require.Equal(t, "+15551234567", res.Contacts[0].Phone)
	require.Equal(t, 1, res.Dropped())
}

func TestDecodeXLSX_Garbage(t *testing.T) {
	_, err := DecodeXLSX(strings.NewReader("definitely not a zip"))
	require.Error(t, err)
	require.True(t, IsParseError(err))
}
