package types

import "fmt"

const (
	SequenceECertDocumentNumberPrefix = "ECERT_%s_DOCUMENT_NUMBER"
	SequenceECertFilePrefix           = "ECERT_%s_FILE"
)

// DocumentNumberSequence is the counter used for document numbers of a stream.
func DocumentNumberSequence(intensity OfferingIntensity) string {
	return fmt.Sprintf(SequenceECertDocumentNumberPrefix, intensity.Short())
}

// FileSequence is the counter used for the header sequence number of a stream.
func FileSequence(intensity OfferingIntensity) string {
	return fmt.Sprintf(SequenceECertFilePrefix, intensity.Short())
}
