package feedback

import (
	"sort"
	"strings"
)

// ErrorCode is one row of the federal e-Cert feedback error reference table
type ErrorCode struct {
	Code          string
	Description   string
	BlocksFunding bool
}

// ErrorTable is an immutable lookup of feedback error codes
type ErrorTable struct {
	codes map[string]ErrorCode
}

// NewErrorTable builds a table, later duplicates replace earlier ones
func NewErrorTable(codes ...ErrorCode) *ErrorTable {
	t := &ErrorTable{codes: make(map[string]ErrorCode, len(codes))}
	for _, c := range codes {
		c.Code = normalize(c.Code)
		t.codes[c.Code] = c
	}
	return t
}

// Lookup finds an error code ignoring case and padding
func (t *ErrorTable) Lookup(code string) (ErrorCode, bool) {
	c, ok := t.codes[normalize(code)]
	return c, ok
}

// Codes returns every entry sorted by code
func (t *ErrorTable) Codes() []ErrorCode {
	out := make([]ErrorCode, 0, len(t.codes))
	for _, c := range t.codes {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

func normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// DefaultErrorTable is the reference table shipped with the service
func DefaultErrorTable() *ErrorTable {
	return NewErrorTable(
		ErrorCode{Code: "EDU-00010", Description: "SIN does not match a valid borrower", BlocksFunding: true},
		ErrorCode{Code: "EDU-00011", Description: "Borrower record not found", BlocksFunding: true},
		ErrorCode{Code: "EDU-00020", Description: "Birth date does not match the borrower record", BlocksFunding: true},
		ErrorCode{Code: "EDU-00036", Description: "Duplicate document number", BlocksFunding: true},
		ErrorCode{Code: "EDU-00050", Description: "Award code not recognized", BlocksFunding: true},
		ErrorCode{Code: "EDU-00061", Description: "Negative or zero certificate amount", BlocksFunding: true},
		ErrorCode{Code: "EDU-00075", Description: "Postal code is not valid", BlocksFunding: false},
		ErrorCode{Code: "EDU-00080", Description: "Address line is incomplete", BlocksFunding: false},
		ErrorCode{Code: "EDU-00101", Description: "Email address is not valid", BlocksFunding: false},
		ErrorCode{Code: "EDU-00110", Description: "Negotiated date is before the certificate date", BlocksFunding: false},
	)
}
