package payment

import "time"

type Status string

const (
	StatusPaid    Status = "paid"
	StatusPending Status = "pending"
	StatusOverdue Status = "overdue"
	// StatusNoClass is reported (never stored) when no class offering exists.
	StatusNoClass Status = "no-class-found"
)

type Record struct {
	ID        string     `json:"id"`
	StudentID string     `json:"student_id"`
	ClassID   string     `json:"class_id"`
	Month     int        `json:"month"`
	Year      int        `json:"year"`
	Amount    float64    `json:"amount"`
	Status    Status     `json:"status"`
	PaidAt    *time.Time `json:"paid_at"`
	CreatedAt time.Time  `json:"created_at"`
}

// Period is a billing month.
type Period struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

// QueryFilter selects the payment records of a class for a billing period.
type QueryFilter struct {
	ClassID string
	Period
	StudentIDs []string // optional
}

// StudentPayment is the reconciled payment state of one student.
type StudentPayment struct {
	StudentID   string     `json:"student_id"`
	StudentName string     `json:"student_name"`
	ClassID     string     `json:"class_id"`
	Month       int        `json:"month"`
	Year        int        `json:"year"`
	Status      Status     `json:"status"`
	Amount      float64    `json:"amount"`
	MonthlyFee  float64    `json:"monthly_fee"`
	PaidAt      *time.Time `json:"paid_at"`
}
