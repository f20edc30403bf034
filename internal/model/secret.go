package model

import "time"

// SessionId is a credential captured from the x-session-id header of an
// upstream console response.
type SessionId struct {
	Value     string
	CapturedAt time.Time
}
