package testafy

import "strings"

// Status is the server-reported state of a run.
type Status string

const (
	StatusUnscheduled Status = "unscheduled"
	StatusQueued      Status = "queued"
	StatusRunning     Status = "running"
	StatusStopped     Status = "stopped"
	StatusCompleted   Status = "completed"
	// StatusUnknown covers missing, malformed and unrecognized values.
	StatusUnknown Status = "unknown"
)

// ParseStatus maps a raw status string to a Status. Anything it does not
// recognize becomes StatusUnknown.
func ParseStatus(raw string) Status {
	switch s := Status(strings.ToLower(strings.TrimSpace(raw))); s {
	case StatusUnscheduled, StatusQueued, StatusRunning, StatusStopped, StatusCompleted:
		return s
	default:
		return StatusUnknown
	}
}

// IsDone reports whether a status is terminal. Unscheduled, stopped and
// completed runs are done; queued, running and unknown ones are not.
func IsDone(s Status) bool {
	switch s {
	case StatusUnscheduled, StatusStopped, StatusCompleted:
		return true
	default:
		return false
	}
}

// IsDone reports whether the status is terminal.
func (s Status) IsDone() bool {
	return IsDone(s)
}

func (s Status) String() string {
	return string(s)
}
