package attendance

import (
	"fmt"
	"math"
	"time"
)

// Reason tells why a check-in was rejected.
type Reason int

const (
	ReasonNotFound Reason = iota + 1
	ReasonOutsideWindow
	ReasonUnknownLocation
	ReasonTooFar
	ReasonCooldown
)

func (r Reason) String() string {
	switch r {
	case ReasonNotFound:
		return "not_found"
	case ReasonOutsideWindow:
		return "outside_window"
	case ReasonUnknownLocation:
		return "unknown_location"
	case ReasonTooFar:
		return "too_far"
	case ReasonCooldown:
		return "cooldown"
	}
	return "unknown"
}

// RejectionError is a check-in refused for a business reason. It is a client error, not a failure.
type RejectionError struct {
	Reason Reason

	WindowMinutes int           // ReasonOutsideWindow
	Location      string        // ReasonUnknownLocation
	Distance      float64       // ReasonTooFar, in meters
	RetryAt       time.Time     // ReasonCooldown
	Cooldown      time.Duration // ReasonCooldown
}

func (err *RejectionError) Error() string {
	switch err.Reason {
	case ReasonNotFound:
		return "class not found"
	case ReasonOutsideWindow:
		return fmt.Sprintf("class check-in window closed (must be within %d minutes of start time)", err.WindowMinutes)
	case ReasonUnknownLocation:
		return fmt.Sprintf("no coordinates for building %q", err.Location)
	case ReasonTooFar:
		return fmt.Sprintf("too far from class location (%dm)", err.RoundedDistance())
	case ReasonCooldown:
		return fmt.Sprintf(
			"already checked in within the last %d hours, try again after %s",
			int(err.Cooldown.Hours()), err.RetryAt.UTC().Format(time.RFC3339),
		)
	}
	return "check-in rejected"
}

// RoundedDistance is Distance rounded to the nearest meter.
func (err *RejectionError) RoundedDistance() int {
	return int(math.Round(err.Distance))
}

func reject(reason Reason) *RejectionError {
	return &RejectionError{Reason: reason}
}
