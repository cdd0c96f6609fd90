package constants

// NATS Subjects
const (
	// SubjectTrackingPosition carries every accepted position, suffixed with the trip id
	SubjectTrackingPosition = "tracking.position"
	// SubjectTrackingEnded carries end-of-trip signals, suffixed with the trip id
	SubjectTrackingEnded = "tracking.ended"
)
