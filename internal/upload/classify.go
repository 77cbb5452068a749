package upload

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/aws/smithy-go"
)

// Category buckets a raw error into one of the user-facing groups the
// UI knows how to render. Raw errors are logged, never shown.
type Category string

const (
	CategoryValidation  Category = "validation"
	CategoryNetwork     Category = "network"
	CategoryQuota       Category = "quota"
	CategoryPermission  Category = "permission"
	CategoryPersistence Category = "persistence"
	CategoryInternal    Category = "internal"
	CategoryUnknown     Category = "unknown"
)

// User-facing messages. Short, generic, and safe to render verbatim.
const (
	msgTypeRejected   = "That file type isn't supported. Please choose a JPEG or PNG image."
	msgNetworkFailure = "Upload failed because of a network problem. Please try again."
	msgQuotaRejected  = "The storage service rejected this file because of its size."
	msgPermission     = "You don't have permission to upload this photo."
	msgPersistence    = "Your photo was uploaded but couldn't be saved. Please try again."
	msgInternal       = "Something went wrong preparing your photo. Please try a different image."
	msgUnknown        = "Upload failed. Please try again."
)

// ClassifiedError pairs a user-facing message with its category and
// wraps the raw cause for diagnostics.
type ClassifiedError struct {
	Category Category
	Message  string
	cause    error
}

func (e *ClassifiedError) Error() string { return e.Message }
func (e *ClassifiedError) Unwrap() error { return e.cause }

// Classify maps a raw transport/storage error onto a user-facing
// category. Pure: same error, same classification.
func Classify(err error) *ClassifiedError {
	if err == nil {
		return nil
	}

	// Already classified errors pass through unchanged.
	var classified *ClassifiedError
	if errors.As(err, &classified) {
		return classified
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &ClassifiedError{Category: CategoryNetwork, Message: msgNetworkFailure, cause: err}
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "AccessDenied", "Forbidden", "InvalidAccessKeyId", "SignatureDoesNotMatch":
			return &ClassifiedError{Category: CategoryPermission, Message: msgPermission, cause: err}
		case "EntityTooLarge", "QuotaExceeded", "MaxMessageLengthExceeded":
			return &ClassifiedError{Category: CategoryQuota, Message: msgQuotaRejected, cause: err}
		case "RequestTimeout", "SlowDown", "ServiceUnavailable":
			return &ClassifiedError{Category: CategoryNetwork, Message: msgNetworkFailure, cause: err}
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return &ClassifiedError{Category: CategoryNetwork, Message: msgNetworkFailure, cause: err}
	}

	return &ClassifiedError{Category: CategoryUnknown, Message: msgUnknown, cause: err}
}

// newValidationError builds the classified error for a failed
// pre-upload check, naming which rule was violated.
func newValidationError(reason Reason, policy Policy) *ClassifiedError {
	msg := msgTypeRejected
	if reason == ReasonSize {
		msg = fmt.Sprintf("That image is too large. Photos can be up to %d MB in size.", policy.MaxBytes/(1024*1024))
	}
	return &ClassifiedError{Category: CategoryValidation, Message: msg}
}

func newInternalError(cause error) *ClassifiedError {
	return &ClassifiedError{Category: CategoryInternal, Message: msgInternal, cause: cause}
}

// NewPersistenceError classifies a failure to save an already-uploaded
// photo reference. The remote object is left in place.
func NewPersistenceError(cause error) *ClassifiedError {
	return &ClassifiedError{Category: CategoryPersistence, Message: msgPersistence, cause: cause}
}
