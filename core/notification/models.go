package notification

import "time"

type Outcome string

const (
	OutcomeSent    Outcome = "sent"
	OutcomeFailed  Outcome = "failed"
	OutcomePending Outcome = "pending"
	// OutcomeSkipped means no guardian contact was found; it is only persisted when configured to.
	OutcomeSkipped Outcome = "skipped"
)

type Channel string

const ChannelEmail Channel = "email"

// Notification is the append-only log entry of a guardian notification attempt.
type Notification struct {
	ID            string    `json:"id"`
	Recipient     string    `json:"recipient"`
	RecipientName string    `json:"recipient_name"`
	Subject       string    `json:"subject"`
	Body          string    `json:"body"`
	Channel       Channel   `json:"channel"`
	Outcome       Outcome   `json:"outcome"`
	Error         string    `json:"error,omitempty"`
	StudentID     string    `json:"student_id"`
	ClassID       string    `json:"class_id"`
	AttendanceID  string    `json:"attendance_id"`
	CreatedAt     time.Time `json:"created_at"` // UTC
}

// Contact is where a student's guardian can be reached.
type Contact struct {
	StudentName  string
	GuardianName string
	Email        string
}

// templateData is what the attendance email templates are rendered with.
type templateData struct {
	GuardianName string
	StudentName  string
	Subject      string
	Grade        int
	Status       string
	Date         string
	MarkedAt     string
}
