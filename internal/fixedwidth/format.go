package fixedwidth

import (
	"fmt"
	"strings"

	ierr "github.com/studentaid/disbursement/internal/errors"
)

// Format groups the layouts of one file type, dispatched on the record type prefix.
type Format struct {
	Name         string
	PrefixLength int
	layouts      map[string]*Layout
}

// NewFormat panics when two layouts share a record type; formats are static tables.
func NewFormat(name string, prefixLength int, layouts ...*Layout) *Format {
	f := &Format{
		Name:         name,
		PrefixLength: prefixLength,
		layouts:      make(map[string]*Layout, len(layouts)),
	}
	for _, l := range layouts {
		if len(l.RecordType) != prefixLength {
			panic("fixedwidth: layout " + l.Name + " record type does not match the format prefix length")
		}
		if _, ok := f.layouts[l.RecordType]; ok {
			panic("fixedwidth: duplicate record type " + l.RecordType + " in format " + name)
		}
		f.layouts[l.RecordType] = l
	}
	return f
}

func (f *Format) Layout(recordType string) (*Layout, bool) {
	l, ok := f.layouts[recordType]
	return l, ok
}

// RecordType returns the record type prefix of line.
func (f *Format) RecordType(line string) (string, error) {
	if len(line) < f.PrefixLength {
		return "", ierr.NewErrorf("line of %d characters has no record type", len(line)).
			WithHintf("Line is too short to be a %s record", f.Name).
			Mark(ierr.ErrDecoding)
	}
	return line[:f.PrefixLength], nil
}

// Decode finds the layout for line and decodes it.
func (f *Format) Decode(line string) (*Layout, Record, error) {
	recordType, err := f.RecordType(line)
	if err != nil {
		return nil, nil, err
	}
	l, ok := f.layouts[recordType]
	if !ok {
		return nil, nil, ierr.NewErrorf("unknown record type %q", recordType).
			WithHintf("Line is not a known %s record", f.Name).
			Mark(ierr.ErrDecoding)
	}
	rec, err := l.Decode(line)
	if err != nil {
		return l, nil, err
	}
	return l, rec, nil
}

// Join renders encoded lines as file content, each line newline terminated.
func Join(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, line := range lines {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// DecodedLine is a successfully decoded line with its 1-based line number
type DecodedLine struct {
	Number int
	Layout *Layout
	Record Record
}

// LineError is a line that could not be decoded
type LineError struct {
	Number int
	Line   string
	Err    error
}

func (e LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Number, e.Err)
}

func (e LineError) Unwrap() error {
	return e.Err
}

// DecodeAll decodes every line of content. A bad line is reported with its
// line number and never stops the following lines.
func (f *Format) DecodeAll(content string) ([]DecodedLine, []LineError) {
	var decoded []DecodedLine
	var failed []LineError
	for i, line := range SplitLines(content) {
		l, rec, err := f.Decode(line)
		if err != nil {
			failed = append(failed, LineError{Number: i + 1, Line: line, Err: err})
			continue
		}
		decoded = append(decoded, DecodedLine{Number: i + 1, Layout: l, Record: rec})
	}
	return decoded, failed
}
