package attendance

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/rollcall/core"
	"github.com/trezcool/rollcall/core/school"
)

var (
	// errors
	ErrNotFound     = errors.New("attendance record not found")
	ErrRecordExists = errors.New("an attendance record already exists for this student, class and date")
)

type (
	Repository interface {
		GetRecord(ctx context.Context, key Key) (Record, error)
		// CreateRecord returns ErrRecordExists when a record with the same Key exists.
		CreateRecord(ctx context.Context, rec Record) (Record, error)
		UpdateRecord(ctx context.Context, rec Record) (Record, error)
		QueryRecords(ctx context.Context, filter QueryFilter) ([]Record, error)
	}

	// Directory resolves the student and class a mark refers to.
	Directory interface {
		GetStudent(ctx context.Context, filter school.GetFilter) (school.Student, error)
		GetClassOffering(ctx context.Context, id string) (school.ClassOffering, error)
	}

	// Notifier is told about every persisted mark.
	Notifier interface {
		NotifyMarked(ctx context.Context, rec Record) error
	}

	Service struct {
		repo     Repository
		dir      Directory
		notifier Notifier
		logger   core.Logger
		now      func() time.Time
	}
)

func NewService(repo Repository, dir Directory, notifier Notifier, logger core.Logger) *Service {
	return &Service{
		repo:     repo,
		dir:      dir,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock replaces the time source; used by tests.
func (svc *Service) WithClock(now func() time.Time) *Service {
	svc.now = now
	return svc
}

// Mark records the attendance of a student for a class on a date: the day's record is created
// on the first mark and overwritten in place afterwards. The guardian is then notified; notification
// problems are logged and never fail the mark.
func (svc *Service) Mark(ctx context.Context, req MarkRequest) (Record, error) {
	date, err := core.ParseDate(req.Date)
	if err != nil {
		return Record{}, core.NewValidationError(err, core.FieldError{Field: "date", Error: "invalid date"})
	}

	student, err := svc.dir.GetStudent(ctx, school.GetFilter{ID: req.StudentID, RegisterNumber: req.RegisterNumber})
	if err != nil {
		if errors.Cause(err) == school.ErrNotFound {
			field := "student_id"
			if req.StudentID == "" {
				field = "register_number"
			}
			return Record{}, core.NewValidationError(err, core.FieldError{Field: field, Error: err.Error()})
		}
		return Record{}, errors.Wrap(err, "getting student")
	}

	offering, err := svc.dir.GetClassOffering(ctx, req.ClassID)
	if err != nil {
		if errors.Cause(err) == school.ErrClassNotFound {
			return Record{}, core.NewValidationError(err, core.FieldError{Field: "class_id", Error: err.Error()})
		}
		return Record{}, errors.Wrap(err, "getting class offering")
	}

	markedAt := svc.now()
	if req.MarkedAt != nil && !req.MarkedAt.IsZero() {
		markedAt = *req.MarkedAt
	}
	method := req.Method
	if method == "" {
		method = MethodManual
	}

	rec, err := svc.upsert(ctx, Record{
		StudentID: student.ID,
		ClassID:   offering.ID,
		Date:      core.TruncateDate(date),
		Status:    req.Status,
		Method:    method,
		MarkedBy:  req.MarkedBy,
		MarkedAt:  markedAt.UTC(),
		Grade:     offering.Grade,
		Subject:   offering.Subject,
	})
	if err != nil {
		return Record{}, err
	}

	svc.notify(ctx, rec)
	return rec, nil
}

func (svc *Service) upsert(ctx context.Context, rec Record) (Record, error) {
	existing, err := svc.repo.GetRecord(ctx, rec.Key())
	if err == nil {
		return svc.overwrite(ctx, existing, rec)
	}
	if errors.Cause(err) != ErrNotFound {
		return Record{}, errors.Wrap(err, "getting attendance record")
	}

	now := svc.now().UTC()
	rec.CreatedAt = now
	rec.UpdatedAt = now
	created, err := svc.repo.CreateRecord(ctx, rec)
	if err == nil {
		return created, nil
	}
	if errors.Cause(err) != ErrRecordExists {
		return Record{}, errors.Wrap(err, "creating attendance record")
	}

	// a concurrent mark created the record first: last write wins
	existing, err = svc.repo.GetRecord(ctx, rec.Key())
	if err != nil {
		return Record{}, errors.Wrap(err, "getting attendance record")
	}
	return svc.overwrite(ctx, existing, rec)
}

func (svc *Service) overwrite(ctx context.Context, existing, rec Record) (Record, error) {
	existing.Status = rec.Status
	existing.Method = rec.Method
	existing.MarkedBy = rec.MarkedBy
	existing.MarkedAt = rec.MarkedAt
	existing.UpdatedAt = svc.now().UTC()

	updated, err := svc.repo.UpdateRecord(ctx, existing)
	if err != nil {
		return Record{}, errors.Wrap(err, "updating attendance record")
	}
	return updated, nil
}

// notify runs the notifier inside an error boundary.
func (svc *Service) notify(ctx context.Context, rec Record) {
	if svc.notifier == nil {
		return
	}
	extra := map[string]interface{}{"attendance_id": rec.ID, "student_id": rec.StudentID, "class_id": rec.ClassID}

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("notifier panic: %v", r)
			svc.logger.Error(err.Error(), err, extra)
		}
	}()

	if err := svc.notifier.NotifyMarked(ctx, rec); err != nil {
		err = errors.Wrap(err, "notifying guardian")
		svc.logger.Error(err.Error(), err, extra)
	}
}

// Query returns the records matching filter.
func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]Record, error) {
	recs, err := svc.repo.QueryRecords(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, "querying attendance records")
	}
	return recs, nil
}
