package fixedwidth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	ierr "github.com/studentaid/disbursement/internal/errors"
)

func testLayout(t *testing.T) *Layout {
	t.Helper()
	l, err := NewLayout("test detail", "02", 40, ' ',
		TextField(RecordTypeField, 0, 2),
		TextField("name", 2, 10),
		NumberField("amount", 12, 7),
		DateField("date", 19, 8),
		NumberField("padded", 27, 5).WithFiller(' '),
	)
	require.NoError(t, err)
	return l
}

func TestLayout_EncodeDecodeRoundTrip(t *testing.T) {
	l := testLayout(t)
	rec := Record{
		"name":   "SMITH",
		"amount": int64(500000),
		"date":   time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC),
		"padded": int64(42),
	}

	line, err := l.Encode(rec)
	require.NoError(t, err)
	assert.Len(t, line, 40)
	assert.Equal(t, "02SMITH     050000020240901   42        ", line)

	decoded, err := l.Decode(line)
	require.NoError(t, err)
	assert.Equal(t, "02", decoded.Text(RecordTypeField))
	assert.Equal(t, "SMITH", decoded.Text("name"))
	assert.Equal(t, int64(500000), decoded.Number("amount"))
	assert.True(t, decoded.Date("date").Equal(rec["date"].(time.Time)))
	assert.Equal(t, int64(42), decoded.Number("padded"))
}

func TestLayout_EncodeText(t *testing.T) {
	l := testLayout(t)

	tests := []struct {
		name     string
		value    string
		expected string
	}{
		{name: "truncates long text", value: "MACDONALD-WILLIAMS", expected: "MACDONALD-"},
		{name: "pads short text", value: "LI", expected: "LI        "},
		{name: "folds diacritics", value: "ZOË", expected: "ZOE       "},
		{name: "empty text is filler", value: "", expected: "          "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line, err := l.Encode(Record{"name": tt.value})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, line[2:12])
		})
	}
}

func TestLayout_EncodeErrors(t *testing.T) {
	l := testLayout(t)

	tests := []struct {
		name string
		rec  Record
	}{
		{name: "negative number", rec: Record{"amount": int64(-1)}},
		{name: "number overflows width", rec: Record{"amount": int64(12345678)}},
		{name: "wrong value type", rec: Record{"amount": "100"}},
		{name: "non ascii text", rec: Record{"name": "李"}},
		{name: "line break in text", rec: Record{"name": "A\nB"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := l.Encode(tt.rec)
			require.Error(t, err)
			assert.True(t, ierr.IsEncoding(err))
		})
	}
}

func TestLayout_ZeroDateRendersAsFiller(t *testing.T) {
	l := testLayout(t)
	line, err := l.Encode(Record{})
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat(" ", 8), line[19:27])

	decoded, err := l.Decode(line)
	require.NoError(t, err)
	assert.True(t, decoded.Date("date").IsZero())
	assert.Equal(t, int64(0), decoded.Number("padded"))
}

func TestLayout_DecodeErrors(t *testing.T) {
	l := testLayout(t)
	valid, err := l.Encode(Record{"name": "SMITH", "amount": int64(100)})
	require.NoError(t, err)

	t.Run("short line", func(t *testing.T) {
		_, err := l.Decode(valid[:39])
		require.Error(t, err)
		assert.True(t, ierr.IsDecoding(err))
	})

	t.Run("non numeric amount", func(t *testing.T) {
		bad := valid[:12] + "00A0100" + valid[19:]
		_, err := l.Decode(bad)
		require.Error(t, err)
		assert.True(t, ierr.IsDecoding(err))
	})

	t.Run("signed amount", func(t *testing.T) {
		bad := valid[:12] + "-000100" + valid[19:]
		_, err := l.Decode(bad)
		require.Error(t, err)
	})

	t.Run("invalid date", func(t *testing.T) {
		bad := valid[:19] + "20241332" + valid[27:]
		_, err := l.Decode(bad)
		require.Error(t, err)
		assert.True(t, ierr.IsDecoding(err))
	})

	t.Run("longer line is accepted", func(t *testing.T) {
		rec, err := l.Decode(valid + "EXTRA")
		require.NoError(t, err)
		assert.Equal(t, int64(100), rec.Number("amount"))
	})
}

func TestNewLayout_Validation(t *testing.T) {
	_, err := NewLayout("overlap", "", 20, ' ',
		TextField("a", 0, 5),
		TextField("b", 4, 5),
	)
	assert.Error(t, err)

	_, err = NewLayout("too wide", "", 10, ' ',
		TextField("a", 0, 11),
	)
	assert.Error(t, err)

	_, err = NewLayout("duplicate", "", 10, ' ',
		TextField("a", 0, 2),
		TextField("a", 2, 2),
	)
	assert.Error(t, err)

	_, err = NewLayout("missing record type", "01", 10, ' ',
		TextField("a", 0, 2),
	)
	assert.Error(t, err)

	assert.Panics(t, func() {
		MustNewLayout("bad", "", 0, ' ')
	})
}

func TestFormat_Decode(t *testing.T) {
	header := MustNewLayout("header", "01", 20, ' ',
		TextField(RecordTypeField, 0, 2),
		TextField("originator", 2, 10),
	)
	detail := MustNewLayout("detail", "02", 20, ' ',
		TextField(RecordTypeField, 0, 2),
		NumberField("amount", 2, 8),
	)
	format := NewFormat("test", 2, header, detail)

	line, err := detail.Encode(Record{"amount": int64(77)})
	require.NoError(t, err)

	l, rec, err := format.Decode(line)
	require.NoError(t, err)
	assert.Equal(t, "detail", l.Name)
	assert.Equal(t, int64(77), rec.Number("amount"))

	_, _, err = format.Decode("55" + strings.Repeat(" ", 18))
	require.Error(t, err)
	assert.True(t, ierr.IsDecoding(err))

	_, _, err = format.Decode("0")
	require.Error(t, err)
	assert.True(t, ierr.IsDecoding(err))

	assert.Panics(t, func() { NewFormat("dup", 2, header, header) })
}

func TestSplitLines(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected []string
	}{
		{name: "lf", content: "a\nb\nc\n", expected: []string{"a", "b", "c"}},
		{name: "crlf", content: "a\r\nb\r\nc\r\n", expected: []string{"a", "b", "c"}},
		{name: "lfcr", content: "a\n\rb\n\rc", expected: []string{"a", "b", "c"}},
		{name: "trailing blank lines", content: "a\nb\n\n  \n", expected: []string{"a", "b"}},
		{name: "blank line in the middle is kept", content: "a\n\nb", expected: []string{"a", "", "b"}},
		{name: "empty", content: "", expected: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SplitLines(tt.content))
		})
	}
}

func TestJoin(t *testing.T) {
	assert.Equal(t, "a\nb\n", Join([]string{"a", "b"}))
	assert.Equal(t, "", Join(nil))
}

func TestFormat_DecodeAllReportsLineNumbers(t *testing.T) {
	detail := MustNewLayout("detail", "02", 12, ' ',
		TextField(RecordTypeField, 0, 2),
		NumberField("amount", 2, 10),
	)
	format := NewFormat("test", 2, detail)

	content := "020000000001\r\n0200000\r\n02000000000X\r\n020000000004\r\n\r\n"
	decoded, failed := format.DecodeAll(content)

	require.Len(t, decoded, 2)
	assert.Equal(t, 1, decoded[0].Number)
	assert.Equal(t, 4, decoded[1].Number)
	assert.Equal(t, int64(4), decoded[1].Record.Number("amount"))

	require.Len(t, failed, 2)
	assert.Equal(t, 2, failed[0].Number)
	assert.Equal(t, 3, failed[1].Number)
	assert.True(t, ierr.IsDecoding(failed[0]))
	assert.Contains(t, failed[0].Error(), "line 2")
}
