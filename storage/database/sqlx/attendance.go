package sqlxrepos

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/rollcall/core"
	"github.com/trezcool/rollcall/core/attendance"
)

type attendanceRow struct {
	ID        string    `db:"id"`
	StudentID string    `db:"student_id"`
	ClassID   string    `db:"class_id"`
	Date      time.Time `db:"date"`
	Status    string    `db:"status"`
	Method    string    `db:"method"`
	MarkedBy  string    `db:"marked_by"`
	MarkedAt  time.Time `db:"marked_at"`
	Grade     int       `db:"grade"`
	Subject   string    `db:"subject"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

const attendanceColumns = `id, student_id, class_id, date, status, method, marked_by, marked_at, grade, subject, created_at, updated_at`

func boilAttendance(rec attendance.Record) attendanceRow {
	return attendanceRow{
		ID:        rec.ID,
		StudentID: rec.StudentID,
		ClassID:   rec.ClassID,
		Date:      core.TruncateDate(rec.Date),
		Status:    string(rec.Status),
		Method:    string(rec.Method),
		MarkedBy:  rec.MarkedBy,
		MarkedAt:  rec.MarkedAt.UTC(),
		Grade:     rec.Grade,
		Subject:   rec.Subject,
		CreatedAt: rec.CreatedAt.UTC(),
		UpdatedAt: rec.UpdatedAt.UTC(),
	}
}

func (r attendanceRow) unboil() attendance.Record {
	return attendance.Record{
		ID:        r.ID,
		StudentID: r.StudentID,
		ClassID:   r.ClassID,
		Date:      core.TruncateDate(r.Date),
		Status:    attendance.Status(r.Status),
		Method:    attendance.Method(r.Method),
		MarkedBy:  r.MarkedBy,
		MarkedAt:  r.MarkedAt.UTC(),
		Grade:     r.Grade,
		Subject:   r.Subject,
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}
}

type attendanceRepository struct {
	exec sqlx.ExtContext
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(exec sqlx.ExtContext) *attendanceRepository {
	return &attendanceRepository{exec: exec}
}

func (repo attendanceRepository) GetRecord(ctx context.Context, key attendance.Key) (attendance.Record, error) {
	var row attendanceRow
	q := `SELECT ` + attendanceColumns + ` FROM attendance_record WHERE student_id = $1 AND class_id = $2 AND date = $3`
	err := sqlx.GetContext(ctx, repo.exec, &row, q, key.StudentID, key.ClassID, core.FormatDate(key.Date))
	if err != nil {
		return attendance.Record{}, trapNoRowsErr(err, attendance.ErrNotFound, "getting attendance record")
	}
	return row.unboil(), nil
}

func (repo attendanceRepository) CreateRecord(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	q := `INSERT INTO attendance_record (` + attendanceColumns + `)
		VALUES (:id, :student_id, :class_id, :date, :status, :method, :marked_by, :marked_at, :grade, :subject, :created_at, :updated_at)`
	row := boilAttendance(rec)
	if _, err := sqlx.NamedExecContext(ctx, repo.exec, q, row); err != nil {
		if isUniqueViolation(err) {
			return attendance.Record{}, attendance.ErrRecordExists
		}
		return attendance.Record{}, errors.Wrap(err, "inserting attendance record")
	}
	return row.unboil(), nil
}

func (repo attendanceRepository) UpdateRecord(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	q := `UPDATE attendance_record
		SET status = :status, method = :method, marked_by = :marked_by, marked_at = :marked_at, updated_at = :updated_at
		WHERE id = :id`
	row := boilAttendance(rec)
	res, err := sqlx.NamedExecContext(ctx, repo.exec, q, row)
	if err != nil {
		return attendance.Record{}, errors.Wrap(err, "updating attendance record")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return attendance.Record{}, errors.Wrap(err, "updating attendance record")
	}
	if n == 0 {
		return attendance.Record{}, attendance.ErrNotFound
	}
	return row.unboil(), nil
}

func (repo attendanceRepository) QueryRecords(ctx context.Context, filter attendance.QueryFilter) ([]attendance.Record, error) {
	var (
		conds []string
		args  []interface{}
	)
	where := func(cond string, arg interface{}) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if filter.Grade != 0 {
		where("grade = $%d", filter.Grade)
	}
	if filter.Subject != "" {
		where("lower(subject) = $%d", core.CleanString(filter.Subject, true /* lower */))
	}
	if !filter.From.IsZero() {
		where("date >= $%d", core.FormatDate(filter.From))
	}
	if !filter.To.IsZero() {
		where("date <= $%d", core.FormatDate(filter.To))
	}

	q := `SELECT ` + attendanceColumns + ` FROM attendance_record`
	if len(conds) > 0 {
		q += ` WHERE ` + strings.Join(conds, " AND ")
	}
	q += ` ORDER BY date, student_id, class_id`

	var rows []attendanceRow
	if err := sqlx.SelectContext(ctx, repo.exec, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "selecting attendance records")
	}
	recs := make([]attendance.Record, 0, len(rows))
	for _, r := range rows {
		recs = append(recs, r.unboil())
	}
	return recs, nil
}
