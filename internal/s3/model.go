package s3

import "time"

// Document is an exchanged file kept for audit
type Document struct {
	Name string       `json:"name"`
	Data []byte       `json:"data"`
	Type DocumentType `json:"type"`
	// Date partitions the archive, the file date for outbound files and the
	// processing date for inbound ones
	Date time.Time `json:"date"`
}

type DocumentType string

const (
	DocumentTypeECert         DocumentType = "ecert"
	DocumentTypeECertFeedback DocumentType = "ecert_feedback"
)

func NewECertDocument(name string, data []byte, date time.Time) *Document {
	return &Document{Name: name, Data: data, Type: DocumentTypeECert, Date: date}
}

func NewFeedbackDocument(name string, data []byte, date time.Time) *Document {
	return &Document{Name: name, Data: data, Type: DocumentTypeECertFeedback, Date: date}
}
