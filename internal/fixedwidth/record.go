package fixedwidth

import (
	"time"
)

// Record holds the typed values of one line keyed by field name.
// Text values are strings, numbers are int64 and dates are time.Time.
type Record map[string]any

func (r Record) Text(name string) string {
	s, _ := r[name].(string)
	return s
}

func (r Record) Number(name string) int64 {
	switch v := r[name].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	}
	return 0
}

func (r Record) Date(name string) time.Time {
	t, _ := r[name].(time.Time)
	return t
}
