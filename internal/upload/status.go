package upload

// Status is the lifecycle state of a Session. A session starts Idle,
// moves through Validating to Ready on selection, through Uploading to
// a terminal Succeeded or Failed on confirmation, and returns to Idle
// on reset or cancel.
type Status int

const (
	StatusIdle Status = iota
	StatusValidating
	StatusReady
	StatusUploading
	StatusSucceeded
	StatusFailed
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusValidating:
		return "validating"
	case StatusReady:
		return "ready"
	case StatusUploading:
		return "uploading"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	case StatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}
