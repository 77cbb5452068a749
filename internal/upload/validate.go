package upload

import "strings"

// Reason identifies which validation rule a blob violated.
type Reason string

const (
	ReasonType Reason = "type"
	ReasonSize Reason = "size"
)

// Policy is the client-side acceptance policy for candidate photos.
// Values come from configuration, never from package globals.
type Policy struct {
	MaxBytes      int64
	AllowedTypes  []string
	PreviewMaxDim int
}

// Validation is the outcome of checking a blob against a Policy.
type Validation struct {
	OK     bool
	Reason Reason
}

// Validate checks the blob's declared MIME type and byte size against
// the policy. It is pure: no I/O, no session mutation.
func (p Policy) Validate(blob Blob) Validation {
	if !p.typeAllowed(blob.MimeType) {
		return Validation{Reason: ReasonType}
	}
	if p.MaxBytes > 0 && blob.Size > p.MaxBytes {
		return Validation{Reason: ReasonSize}
	}
	return Validation{OK: true}
}

func (p Policy) typeAllowed(mimeType string) bool {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	for _, allowed := range p.AllowedTypes {
		if mimeType == allowed {
			return true
		}
	}
	return false
}
