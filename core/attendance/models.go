package attendance

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/rollcall/core"
)

type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
	StatusLate    Status = "late"
)

type Method string

const (
	MethodManual Method = "manual"
	MethodQR     Method = "qr"
)

// Key identifies the single record a student may have for a class on a calendar date.
type Key struct {
	StudentID string
	ClassID   string
	Date      time.Time
}

type Record struct {
	ID        string    `json:"id"`
	StudentID string    `json:"student_id"`
	ClassID   string    `json:"class_id"`
	Date      time.Time `json:"date"` // calendar date, UTC midnight
	Status    Status    `json:"status"`
	Method    Method    `json:"method"`
	MarkedBy  string    `json:"marked_by"`
	MarkedAt  time.Time `json:"marked_at"` // UTC
	Grade     int       `json:"grade"`
	Subject   string    `json:"subject"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

func (r Record) Key() Key {
	return Key{StudentID: r.StudentID, ClassID: r.ClassID, Date: r.Date}
}

// QueryFilter applies AND operation on its non-zero fields.
// Subject is matched case-insensitively; From and To are inclusive calendar dates.
type QueryFilter struct {
	Grade   int
	Subject string
	From    time.Time
	To      time.Time
}

// Match reports whether rec satisfies the filter.
func (f QueryFilter) Match(rec Record) bool {
	if f.Grade != 0 && rec.Grade != f.Grade {
		return false
	}
	if f.Subject != "" && core.CleanString(rec.Subject, true) != core.CleanString(f.Subject, true) {
		return false
	}
	if !f.From.IsZero() && rec.Date.Before(core.TruncateDate(f.From)) {
		return false
	}
	if !f.To.IsZero() && rec.Date.After(core.TruncateDate(f.To)) {
		return false
	}
	return true
}

// MarkRequest defines what information may be provided to record a student's attendance.
// The student is identified by StudentID, or by RegisterNumber (QR scans) when StudentID is empty.
type MarkRequest struct {
	StudentID      string     `json:"student_id"`
	RegisterNumber string     `json:"register_number"`
	ClassID        string     `json:"class_id" validate:"required,notblank"`
	Date           string     `json:"date" validate:"required,datetime=2006-01-02"`
	Status         Status     `json:"status" validate:"required,oneof=present absent late"`
	Method         Method     `json:"method" validate:"omitempty,oneof=manual qr"`
	MarkedBy       string     `json:"marked_by" validate:"required,notblank"`
	MarkedAt       *time.Time `json:"marked_at"`
}

func (mr *MarkRequest) Validate(validate *validator.Validate) error {
	mr.StudentID = core.CleanString(mr.StudentID)
	mr.RegisterNumber = core.CleanString(mr.RegisterNumber)
	mr.ClassID = core.CleanString(mr.ClassID)
	mr.Date = core.CleanString(mr.Date)
	mr.Status = Status(core.CleanString(string(mr.Status), true /* lower */))
	mr.Method = Method(core.CleanString(string(mr.Method), true /* lower */))
	mr.MarkedBy = core.CleanString(mr.MarkedBy)
	if mr.Method == "" {
		mr.Method = MethodManual
	}
	return validate.Struct(mr)
}
