package contacts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCleanPhoneNumber(t *testing.T) {
	cases := []struct {
		raw  string
		want string
		ok   bool
	}{
		{"555-123-4567", "+15551234567", true},
		{"(555) 123 4567", "+15551234567", true},
		{"1-555-987-6543", "+15559876543", true},
		{"+1 (555) 987-6543", "+15559876543", true},
		{"+44 20 7946 0958", "+442079460958", true},
		{"25-98-7654-3210", "+259876543210", true},
		{"12345", "+12345", true},
		{"not-a-number", "", false},
		{"", "", false},
		{"   ", "", false},
	}
	for _, tc := range cases {
		got, ok := CleanPhoneNumber(tc.raw)
		require.Equal(t, tc.ok, ok, "raw %q", tc.raw)
		require.Equal(t, tc.want, got, "raw %q", tc.raw)
	}
}

func TestCleanPhoneNumber_TenDigitsAlwaysUS(t *testing.T) {
	for _, digits := range []string{"0000000000", "9999999999", "2125550100", "5551234567"} {
		got, ok := CleanPhoneNumber(digits)
		require.True(t, ok)
		require.Equal(t, "+1"+digits, got)
	}
}

func TestCleanPhoneNumber_ElevenDigitsLeadingOne(t *testing.T) {
	for _, digits := range []string{"10000000000", "12125550100", "19999999999"} {
		got, ok := CleanPhoneNumber(digits)
		require.True(t, ok)
		require.Equal(t, "+"+digits, got)
	}
}

func TestDetectColumnMapping_SeparatorAndCaseInsensitive(t *testing.T) {
	for _, header := range []string{"Phone Number", "phone_number", "PHONE-NUMBER", "PHONENUMBER"} {
		m := DetectColumnMapping([]string{header})
		require.Equal(t, header, m.Phone, "header %q", header)
	}
}

func TestDetectColumnMapping_FirstMatchWins(t *testing.T) {
	m := DetectColumnMapping([]string{"Mobile", "Phone", "Name", "Full Name", "State", "Region"})
	require.Equal(t, "Mobile", m.Phone)
	require.Equal(t, "Name", m.Name)
	require.Equal(t, "State", m.State)
}

func TestDetectColumnMapping_ColumnMayMapSeveralFields(t *testing.T) {
	// "contact_name" holds both "contact" and "name".
	m := DetectColumnMapping([]string{"Contact Name"})
	require.Equal(t, FieldMapping{Phone: "Contact Name", Name: "Contact Name"}, m)

	m = DetectColumnMapping([]string{"State Phone", "Name"})
	require.Equal(t, FieldMapping{Phone: "State Phone", Name: "Name", State: "State Phone"}, m)

	// "first_name" contains "st", so it claims state before "ST" is seen.
	m = DetectColumnMapping([]string{"First Name", "Tel", "ST"})
	require.Equal(t, FieldMapping{Phone: "Tel", Name: "First Name", State: "First Name"}, m)
}

func TestDetectColumnMapping_NoMatches(t *testing.T) {
	m := DetectColumnMapping([]string{"foo", "bar"})
	require.Equal(t, FieldMapping{}, m)

	b, err := m.MarshalJSON()
	require.NoError(t, err)
	require.JSONEq(t, `{"phone":null,"name":null,"state":null}`, string(b))
}

func TestParse_EndToEnd(t *testing.T) {
	tbl := Table{
		Columns: []string{"Full Name", "Cell", "Region"},
		Rows: [][]string{
			{"Alice", "555-123-4567", "CA"},
			{"Bob", "not-a-number", "TX"},
			{"Carol", "1-555-987-6543", "NY"},
		},
	}

	res, err := Parse(tbl)
	require.NoError(t, err)
	require.Len(t, res.Contacts, 2)
	require.Equal(t, 3, res.SourceRows)
	require.Equal(t, 1, res.Dropped())

	require.Equal(t, "Alice", res.Contacts[0].Name)
	require.Equal(t, "+15551234567", res.Contacts[0].Phone)
	require.Equal(t, "CA", res.Contacts[0].State)
	require.Equal(t, "Carol", res.Contacts[1].Name)
	require.Equal(t, "+15559876543", res.Contacts[1].Phone)

	require.Equal(t, FieldMapping{Phone: "Cell", Name: "Full Name", State: "Region"}, res.Mapping)
	require.Equal(t, map[string]string{"Full Name": "Alice", "Cell": "555-123-4567", "Region": "CA"}, res.Contacts[0].OriginalData)
}

func TestParse_IDsFollowSourceOrder(t *testing.T) {
	tbl := Table{
		Columns: []string{"phone"},
		Rows:    [][]string{{"5551110001"}, {""}, {"5551110003"}, {"x"}, {"5551110005"}},
	}
	res, err := Parse(tbl)
	require.NoError(t, err)

	ids := make([]int, 0, len(res.Contacts))
	for _, c := range res.Contacts {
		require.NotEmpty(t, c.Phone)
		ids = append(ids, c.ID)
	}
	require.Equal(t, []int{1, 3, 5}, ids)
}

func TestParse_DefaultsForUnmappedFields(t *testing.T) {
	tbl := Table{
		Columns: []string{"phone", "name"},
		Rows:    [][]string{{"5551234567", ""}},
	}
	res, err := Parse(tbl)
	require.NoError(t, err)
	require.Len(t, res.Contacts, 1)
	require.Equal(t, UnknownName, res.Contacts[0].Name)
	require.Equal(t, UnknownState, res.Contacts[0].State)
	require.Empty(t, res.Mapping.State)
}

func TestParse_FallbackPhoneColumn(t *testing.T) {
	tbl := Table{
		Columns: []string{"who", "code", "digits"},
		Rows: [][]string{
			{"Dana", "42", ""},
			{"Eve", "7", "(212) 555-0100"},
		},
	}
	res, err := Parse(tbl)
	require.NoError(t, err)
	require.Equal(t, "digits", res.Mapping.Phone)
	require.Len(t, res.Contacts, 1)
	require.Equal(t, 2, res.Contacts[0].ID)
	require.Equal(t, "+12125550100", res.Contacts[0].Phone)
}

func TestParse_FallbackScansMappedColumns(t *testing.T) {
	tbl := Table{
		Columns: []string{"region", "x"},
		Rows:    [][]string{{"(212) 555-0100", "7"}},
	}
	res, err := Parse(tbl)
	require.NoError(t, err)
	require.Equal(t, FieldMapping{Phone: "region", State: "region"}, res.Mapping)
	require.Len(t, res.Contacts, 1)
	require.Equal(t, "+12125550100", res.Contacts[0].Phone)
	require.Equal(t, "(212) 555-0100", res.Contacts[0].State)
}

func TestParse_OriginalDataKeepsRawCells(t *testing.T) {
	tbl := Table{
		Columns: []string{"Name", "Phone", "Notes"},
		Rows:    [][]string{{"  Ann  ", " 555-123-4567 ", "  padded  "}},
	}
	res, err := Parse(tbl)
	require.NoError(t, err)
	require.Len(t, res.Contacts, 1)
	require.Equal(t, "Ann", res.Contacts[0].Name)
	require.Equal(t, "+15551234567", res.Contacts[0].Phone)
	require.Equal(t, map[string]string{"Name": "  Ann  ", "Phone": " 555-123-4567 ", "Notes": "  padded  "}, res.Contacts[0].OriginalData)
}

func TestParse_NoPhoneColumnDropsEverything(t *testing.T) {
	tbl := Table{
		Columns: []string{"name", "state"},
		Rows:    [][]string{{"Ann", "CA"}, {"Ben", "TX"}},
	}
	res, err := Parse(tbl)
	require.NoError(t, err)
	require.Empty(t, res.Contacts)
	require.Equal(t, 2, res.Dropped())
	require.Empty(t, res.Mapping.Phone)
}

func TestParse_RequiresHeader(t *testing.T) {
	_, err := Parse(Table{})
	require.Error(t, err)
	require.True(t, IsParseError(err))
	require.ErrorIs(t, err, ErrNoHeader)
}

func TestSearch(t *testing.T) {
	list := []Contact{
		{ID: 1, Name: "Alice Smith", Phone: "+15551234567"},
		{ID: 2, Name: "Bob", Phone: "+15559876543"},
	}
	require.Len(t, Search(list, ""), 2)
	require.Equal(t, 1, Search(list, "alice")[0].ID)
	require.Equal(t, 2, Search(list, "9876")[0].ID)
	require.Empty(t, Search(list, "zed"))
}

func TestWriteCSV(t *testing.T) {
	var b strings.Builder
	err := WriteCSV(&b, []Contact{
		{Name: "Alice", Phone: "+15551234567", State: "CA"},
		{Name: "Smith, Bob", Phone: "+15559876543", State: "N/A"},
	})
	require.NoError(t, err)
	require.Equal(t, "name,phone,state\nAlice,+15551234567,CA\n\"Smith, Bob\",+15559876543,N/A\n", b.String())
}
