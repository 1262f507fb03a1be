package payment

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/rollcall/core"
	"github.com/trezcool/rollcall/core/school"
)

var ErrInvalidPeriod = errors.New("invalid billing period")

type (
	Repository interface {
		QueryPaymentRecords(ctx context.Context, filter QueryFilter) ([]Record, error)
	}

	Service struct {
		repo Repository
		now  func() time.Time
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// WithClock replaces the time source; used by tests.
func (svc *Service) WithClock(now func() time.Time) *Service {
	svc.now = now
	return svc
}

// ResolvePeriod defaults a zero month or year to the current one.
func (svc *Service) ResolvePeriod(month, year int) (Period, error) {
	now := svc.now()
	if month == 0 {
		month = int(now.Month())
	}
	if year == 0 {
		year = now.Year()
	}
	if month < 1 || month > 12 {
		return Period{}, core.NewValidationError(ErrInvalidPeriod, core.FieldError{Field: "month", Error: "month must be between 1 and 12"})
	}
	if year < 1 {
		return Period{}, core.NewValidationError(ErrInvalidPeriod, core.FieldError{Field: "year", Error: "invalid year"})
	}
	return Period{Month: month, Year: year}, nil
}

// Reconcile returns the payment state of every student for the offering and period.
// A student without a record is pending with a zero amount; without an offering every student is no-class-found.
func (svc *Service) Reconcile(
	ctx context.Context,
	students []school.Student,
	offering *school.ClassOffering,
	month, year int,
) ([]StudentPayment, error) {
	period, err := svc.ResolvePeriod(month, year)
	if err != nil {
		return nil, err
	}

	payments := make([]StudentPayment, 0, len(students))
	if offering == nil {
		for _, s := range students {
			payments = append(payments, StudentPayment{
				StudentID:   s.ID,
				StudentName: s.Name,
				Month:       period.Month,
				Year:        period.Year,
				Status:      StatusNoClass,
			})
		}
		return payments, nil
	}
	if len(students) == 0 {
		return payments, nil
	}

	ids := make([]string, 0, len(students))
	for _, s := range students {
		ids = append(ids, s.ID)
	}
	recs, err := svc.repo.QueryPaymentRecords(ctx, QueryFilter{ClassID: offering.ID, Period: period, StudentIDs: ids})
	if err != nil {
		return nil, errors.Wrap(err, "querying payment records")
	}
	byStudent := make(map[string]Record, len(recs))
	for _, r := range recs {
		byStudent[r.StudentID] = r
	}

	for _, s := range students {
		p := StudentPayment{
			StudentID:   s.ID,
			StudentName: s.Name,
			ClassID:     offering.ID,
			Month:       period.Month,
			Year:        period.Year,
			Status:      StatusPending,
			MonthlyFee:  offering.MonthlyFee,
		}
		if r, ok := byStudent[s.ID]; ok {
			p.Status = r.Status
			p.Amount = r.Amount
			p.PaidAt = r.PaidAt
		}
		payments = append(payments, p)
	}
	return payments, nil
}
