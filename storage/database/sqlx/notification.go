package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/rollcall/core/notification"
)

type notificationRow struct {
	ID            string      `db:"id"`
	Recipient     string      `db:"recipient"`
	RecipientName null.String `db:"recipient_name"`
	Subject       string      `db:"subject"`
	Body          string      `db:"body"`
	Channel       string      `db:"channel"`
	Outcome       string      `db:"outcome"`
	Error         null.String `db:"error"`
	StudentID     string      `db:"student_id"`
	ClassID       string      `db:"class_id"`
	AttendanceID  null.String `db:"attendance_id"`
	CreatedAt     time.Time   `db:"created_at"`
}

type notificationRepository struct {
	exec sqlx.ExtContext
}

var _ notification.Repository = (*notificationRepository)(nil) // interface compliance check

func NewNotificationRepository(exec sqlx.ExtContext) *notificationRepository {
	return &notificationRepository{exec: exec}
}

func (repo notificationRepository) CreateNotification(ctx context.Context, n notification.Notification) (notification.Notification, error) {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	row := notificationRow{
		ID:            n.ID,
		Recipient:     n.Recipient,
		RecipientName: null.NewString(n.RecipientName, n.RecipientName != ""),
		Subject:       n.Subject,
		Body:          n.Body,
		Channel:       string(n.Channel),
		Outcome:       string(n.Outcome),
		Error:         null.NewString(n.Error, n.Error != ""),
		StudentID:     n.StudentID,
		ClassID:       n.ClassID,
		AttendanceID:  null.NewString(n.AttendanceID, n.AttendanceID != ""),
		CreatedAt:     n.CreatedAt.UTC(),
	}
	q := `INSERT INTO notification
		(id, recipient, recipient_name, subject, body, channel, outcome, error, student_id, class_id, attendance_id, created_at)
		VALUES (:id, :recipient, :recipient_name, :subject, :body, :channel, :outcome, :error, :student_id, :class_id, :attendance_id, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, repo.exec, q, row); err != nil {
		return notification.Notification{}, errors.Wrap(err, "inserting notification")
	}
	return n, nil
}
