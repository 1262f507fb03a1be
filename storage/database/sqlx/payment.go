package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/rollcall/core/payment"
)

type paymentRow struct {
	ID        string    `db:"id"`
	StudentID string    `db:"student_id"`
	ClassID   string    `db:"class_id"`
	Month     int       `db:"month"`
	Year      int       `db:"year"`
	Amount    float64   `db:"amount"`
	Status    string    `db:"status"`
	PaidAt    null.Time `db:"paid_at"`
	CreatedAt time.Time `db:"created_at"`
}

func (r paymentRow) unboil() payment.Record {
	var paidAt *time.Time
	if r.PaidAt.Valid {
		t := r.PaidAt.Time.UTC()
		paidAt = &t
	}
	return payment.Record{
		ID:        r.ID,
		StudentID: r.StudentID,
		ClassID:   r.ClassID,
		Month:     r.Month,
		Year:      r.Year,
		Amount:    r.Amount,
		Status:    payment.Status(r.Status),
		PaidAt:    paidAt,
		CreatedAt: r.CreatedAt.UTC(),
	}
}

type paymentRepository struct {
	exec sqlx.ExtContext
}

var _ payment.Repository = (*paymentRepository)(nil) // interface compliance check

func NewPaymentRepository(exec sqlx.ExtContext) *paymentRepository {
	return &paymentRepository{exec: exec}
}

func (repo paymentRepository) QueryPaymentRecords(ctx context.Context, filter payment.QueryFilter) ([]payment.Record, error) {
	q := `SELECT id, student_id, class_id, month, year, amount, status, paid_at, created_at
		FROM payment_record
		WHERE class_id = $1 AND month = $2 AND year = $3`
	args := []interface{}{filter.ClassID, filter.Month, filter.Year}
	if len(filter.StudentIDs) > 0 {
		q += ` AND student_id = ANY($4)`
		args = append(args, pq.Array(filter.StudentIDs))
	}
	q += ` ORDER BY student_id`

	var rows []paymentRow
	if err := sqlx.SelectContext(ctx, repo.exec, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "selecting payment records")
	}
	recs := make([]payment.Record, 0, len(rows))
	for _, r := range rows {
		recs = append(recs, r.unboil())
	}
	return recs, nil
}
