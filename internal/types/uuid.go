package types

import (
	"fmt"

	"github.com/oklog/ulid/v2"
)

// GenerateUUID returns a k-sortable unique identifier
func GenerateUUID() string {
	return ulid.Make().String()
}

// GenerateUUIDWithPrefix returns a k-sortable unique identifier
// with a prefix ex disb_01HZX3Q8W3K9V4B9W3M2X7Y6ZP
func GenerateUUIDWithPrefix(prefix string) string {
	if prefix == "" {
		return GenerateUUID()
	}
	return fmt.Sprintf("%s_%s", prefix, GenerateUUID())
}

const (
	UUID_PREFIX_DISBURSEMENT       = "disb"
	UUID_PREFIX_DISBURSEMENT_VALUE = "disb_val"
	UUID_PREFIX_STUDENT            = "stud"
	UUID_PREFIX_RESTRICTION        = "restr"
	UUID_PREFIX_OVERAWARD          = "ovr"
	UUID_PREFIX_FEEDBACK_ENTRY     = "fdbk"
	UUID_PREFIX_BATCH_RUN          = "run"
)
