package fixedwidth

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Kind is the rendering rule applied to a field.
type Kind int

const (
	// Text is left aligned, right padded and truncated to the field width.
	Text Kind = iota
	// Number is a non-negative integer right aligned and left filled.
	Number
	// Date renders as YYYYMMDD, a zero time renders as filler.
	Date
)

// DateLayout is the 8 character date form shared by every integration file.
const DateLayout = "20060102"

func (k Kind) String() string {
	switch k {
	case Text:
		return "text"
	case Number:
		return "number"
	case Date:
		return "date"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Field describes one positional field. Start is zero based.
type Field struct {
	Name   string
	Start  int
	Length int
	Kind   Kind
	// Filler defaults to '0' for numbers and ' ' otherwise.
	Filler byte
}

func TextField(name string, start, length int) Field {
	return Field{Name: name, Start: start, Length: length, Kind: Text}
}

func NumberField(name string, start, length int) Field {
	return Field{Name: name, Start: start, Length: length, Kind: Number}
}

func DateField(name string, start, length int) Field {
	return Field{Name: name, Start: start, Length: length, Kind: Date}
}

// WithFiller returns a copy of the field using the given filler.
func (f Field) WithFiller(filler byte) Field {
	f.Filler = filler
	return f
}

func (f Field) end() int {
	return f.Start + f.Length
}

func (f Field) filler() byte {
	if f.Filler != 0 {
		return f.Filler
	}
	if f.Kind == Number {
		return '0'
	}
	return ' '
}

// asciiFolding removes diacritics so names like "Zoë" render as "Zoe".
var asciiFolding = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func (f Field) render(value any) (string, error) {
	switch f.Kind {
	case Text:
		return f.renderText(value)
	case Number:
		return f.renderNumber(value)
	case Date:
		return f.renderDate(value)
	}
	return "", fmt.Errorf("field %s: unsupported kind %s", f.Name, f.Kind)
}

func (f Field) renderText(value any) (string, error) {
	var s string
	switch v := value.(type) {
	case nil:
	case string:
		s = v
	case fmt.Stringer:
		s = v.String()
	default:
		return "", fmt.Errorf("field %s: expected text, got %T", f.Name, value)
	}

	folded, _, err := transform.String(asciiFolding, s)
	if err != nil {
		return "", fmt.Errorf("field %s: %w", f.Name, err)
	}
	for _, r := range folded {
		if r > unicode.MaxASCII || r == '\n' || r == '\r' {
			return "", fmt.Errorf("field %s: character %q cannot be written to a fixed-width file", f.Name, r)
		}
	}

	if len(folded) > f.Length {
		folded = folded[:f.Length]
	}
	return folded + strings.Repeat(string(f.filler()), f.Length-len(folded)), nil
}

func (f Field) renderNumber(value any) (string, error) {
	var n int64
	switch v := value.(type) {
	case nil:
	case int:
		n = int64(v)
	case int32:
		n = int64(v)
	case int64:
		n = v
	case uint32:
		n = int64(v)
	default:
		return "", fmt.Errorf("field %s: expected number, got %T", f.Name, value)
	}
	if n < 0 {
		return "", fmt.Errorf("field %s: negative value %d", f.Name, n)
	}

	s := strconv.FormatInt(n, 10)
	if len(s) > f.Length {
		return "", fmt.Errorf("field %s: value %d exceeds %d digits", f.Name, n, f.Length)
	}
	return strings.Repeat(string(f.filler()), f.Length-len(s)) + s, nil
}

func (f Field) renderDate(value any) (string, error) {
	var t time.Time
	switch v := value.(type) {
	case nil:
	case time.Time:
		t = v
	case *time.Time:
		if v != nil {
			t = *v
		}
	default:
		return "", fmt.Errorf("field %s: expected date, got %T", f.Name, value)
	}
	if t.IsZero() {
		return strings.Repeat(string(f.filler()), f.Length), nil
	}

	s := t.Format(DateLayout)
	if len(s) != f.Length {
		return "", fmt.Errorf("field %s: date needs %d characters, field has %d", f.Name, len(s), f.Length)
	}
	return s, nil
}

func (f Field) parse(raw string) (any, error) {
	switch f.Kind {
	case Text:
		return strings.TrimRight(raw, string(f.filler())), nil
	case Number:
		digits := strings.TrimLeft(raw, string(f.filler()))
		if digits == "" {
			return int64(0), nil
		}
		for _, r := range digits {
			if r < '0' || r > '9' {
				return nil, fmt.Errorf("field %s: %q is not numeric", f.Name, raw)
			}
		}
		n, err := strconv.ParseInt(digits, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Name, err)
		}
		return n, nil
	case Date:
		if strings.Trim(raw, string(f.filler())) == "" {
			return time.Time{}, nil
		}
		t, err := time.ParseInLocation(DateLayout, raw, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("field %s: %q is not a YYYYMMDD date", f.Name, raw)
		}
		return t, nil
	}
	return nil, fmt.Errorf("field %s: unsupported kind %s", f.Name, f.Kind)
}
