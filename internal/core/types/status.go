package types

// Status represents the status of a download.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusCanceled  Status = "canceled"
)

// IsComplete returns true if the status indicates a finished download
func (s Status) IsComplete() bool {
	return s == StatusSucceeded || s == StatusFailed || s == StatusCanceled
}
