package fixedwidth

import (
	"bytes"
	"fmt"
	"sort"

	ierr "github.com/studentaid/disbursement/internal/errors"
)

// RecordTypeField is the conventional name of the leading record type field.
const RecordTypeField = "record_type"

// Layout is the ordered field list of one record type.
type Layout struct {
	Name string
	// RecordType is the literal value of the leading record type field
	RecordType string
	// Length is the fixed line width
	Length int
	// Filler fills gaps between fields and the tail of the line
	Filler byte
	Fields []Field

	index map[string]Field
}

// NewLayout checks that fields are ordered, do not overlap and fit the line width.
func NewLayout(name, recordType string, length int, filler byte, fields ...Field) (*Layout, error) {
	if length <= 0 {
		return nil, fmt.Errorf("layout %s: length must be positive", name)
	}
	if filler == 0 {
		filler = ' '
	}

	sorted := make([]Field, len(fields))
	copy(sorted, fields)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	index := make(map[string]Field, len(sorted))
	prevEnd := 0
	for _, f := range sorted {
		if f.Name == "" || f.Length <= 0 || f.Start < 0 {
			return nil, fmt.Errorf("layout %s: invalid field %+v", name, f)
		}
		if _, ok := index[f.Name]; ok {
			return nil, fmt.Errorf("layout %s: duplicate field %s", name, f.Name)
		}
		if f.Start < prevEnd {
			return nil, fmt.Errorf("layout %s: field %s overlaps the previous field", name, f.Name)
		}
		if f.end() > length {
			return nil, fmt.Errorf("layout %s: field %s ends at %d past width %d", name, f.Name, f.end(), length)
		}
		index[f.Name] = f
		prevEnd = f.end()
	}

	if recordType != "" {
		rt, ok := index[RecordTypeField]
		if !ok || rt.Start != 0 || rt.Length != len(recordType) {
			return nil, fmt.Errorf("layout %s: record type %q needs a leading %s field of width %d",
				name, recordType, RecordTypeField, len(recordType))
		}
	}

	return &Layout{
		Name:       name,
		RecordType: recordType,
		Length:     length,
		Filler:     filler,
		Fields:     sorted,
		index:      index,
	}, nil
}

// MustNewLayout is NewLayout for static layout tables.
func MustNewLayout(name, recordType string, length int, filler byte, fields ...Field) *Layout {
	l, err := NewLayout(name, recordType, length, filler, fields...)
	if err != nil {
		panic(err)
	}
	return l
}

// Field returns the named field definition.
func (l *Layout) Field(name string) (Field, bool) {
	f, ok := l.index[name]
	return f, ok
}

// Encode renders rec as exactly Length characters. The record type field is
// filled from the layout when the record leaves it empty.
func (l *Layout) Encode(rec Record) (string, error) {
	line := bytes.Repeat([]byte{l.Filler}, l.Length)

	for _, f := range l.Fields {
		value := rec[f.Name]
		if f.Name == RecordTypeField && l.RecordType != "" && (value == nil || value == "") {
			value = l.RecordType
		}

		rendered, err := f.render(value)
		if err != nil {
			return "", ierr.WithError(err).
				WithHintf("Could not encode %s record", l.Name).
				WithReportableDetails(map[string]any{
					"layout": l.Name,
					"field":  f.Name,
				}).
				Mark(ierr.ErrEncoding)
		}
		copy(line[f.Start:], rendered)
	}

	return string(line), nil
}

// Decode parses a line of at least Length characters. Extra trailing
// characters are ignored.
func (l *Layout) Decode(line string) (Record, error) {
	if len(line) < l.Length {
		return nil, ierr.NewErrorf("%s record is %d characters, expected %d", l.Name, len(line), l.Length).
			WithHintf("Line is shorter than the %s record width", l.Name).
			Mark(ierr.ErrDecoding)
	}

	rec := make(Record, len(l.Fields))
	for _, f := range l.Fields {
		value, err := f.parse(line[f.Start:f.end()])
		if err != nil {
			return nil, ierr.WithError(err).
				WithHintf("Could not decode %s record", l.Name).
				WithReportableDetails(map[string]any{
					"layout": l.Name,
					"field":  f.Name,
				}).
				Mark(ierr.ErrDecoding)
		}
		rec[f.Name] = value
	}
	return rec, nil
}
