package report

import (
	"context"
	"sort"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/trezcool/rollcall/core"
	"github.com/trezcool/rollcall/core/attendance"
	"github.com/trezcool/rollcall/core/payment"
	"github.com/trezcool/rollcall/core/school"
)

type (
	CohortResolver interface {
		ResolveCohort(ctx context.Context, grade int, subject string) (school.Cohort, error)
	}

	RecordQuerier interface {
		Query(ctx context.Context, filter attendance.QueryFilter) ([]attendance.Record, error)
	}

	PaymentReconciler interface {
		ResolvePeriod(month, year int) (payment.Period, error)
		Reconcile(ctx context.Context, students []school.Student, offering *school.ClassOffering, month, year int) ([]payment.StudentPayment, error)
	}

	AnalysisRequest struct {
		Grade     int
		Subject   string
		RangeType RangeType
		Start     *time.Time
		End       *time.Time
	}

	ReportRequest struct {
		AnalysisRequest
		Month int // 0: current month
		Year  int // 0: current year
	}

	// StudentReport is the merged attendance and payment view of one student.
	StudentReport struct {
		StudentID   string                 `json:"student_id"`
		StudentName string                 `json:"student_name"`
		Attendance  StudentStats           `json:"attendance"`
		Payment     payment.StudentPayment `json:"payment"`
	}

	PaymentSummary struct {
		TotalStudents       int     `json:"total_students"`
		Paid                int     `json:"paid"`
		Pending             int     `json:"pending"`
		Overdue             int     `json:"overdue"`
		TotalMonthlyRevenue float64 `json:"total_monthly_revenue"`
		CollectedRevenue    float64 `json:"collected_revenue"`
	}

	Report struct {
		Grade          int             `json:"grade"`
		Subject        string          `json:"subject"`
		Window         Window          `json:"window"`
		Period         payment.Period  `json:"period"`
		Students       []StudentReport `json:"students"`
		ChartData      []ChartPoint    `json:"chart_data"`
		Summary        Summary         `json:"summary"`
		PaymentSummary PaymentSummary  `json:"payment_summary"`
	}

	// Builder assembles attendance analyses and comprehensive reports for a (grade, subject) cohort.
	Builder struct {
		cohorts  CohortResolver
		records  RecordQuerier
		payments PaymentReconciler
		now      func() time.Time
	}
)

func NewBuilder(cohorts CohortResolver, records RecordQuerier, payments PaymentReconciler) *Builder {
	return &Builder{cohorts: cohorts, records: records, payments: payments, now: time.Now}
}

// WithClock replaces the time source; used by tests.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

// Analyze aggregates the cohort's attendance over the requested window.
func (b *Builder) Analyze(ctx context.Context, req AnalysisRequest) (Analysis, error) {
	window, err := ResolveWindow(req.RangeType, req.Start, req.End, b.now())
	if err != nil {
		return Analysis{}, err
	}
	cohort, err := b.cohorts.ResolveCohort(ctx, req.Grade, req.Subject)
	if err != nil {
		return Analysis{}, errors.Wrap(err, "resolving cohort")
	}
	return b.analyze(ctx, cohort, window)
}

func (b *Builder) analyze(ctx context.Context, cohort school.Cohort, window Window) (Analysis, error) {
	analysis := Analysis{
		Grade:     cohort.Grade,
		Subject:   cohort.Subject,
		Window:    window,
		Students:  []StudentStats{},
		ChartData: []ChartPoint{},
	}
	if cohort.Offering == nil {
		return analysis, nil
	}

	recs, err := b.records.Query(ctx, attendance.QueryFilter{
		Grade:   cohort.Grade,
		Subject: cohort.Subject,
		From:    window.Start,
		To:      window.End,
	})
	if err != nil {
		return Analysis{}, errors.Wrap(err, "querying attendance")
	}
	analysis.Students, analysis.ChartData, analysis.Summary = Aggregate(recs, cohort.Students)
	return analysis, nil
}

// Build runs the attendance analysis and the payment reconciliation of the cohort concurrently
// and merges both by student.
func (b *Builder) Build(ctx context.Context, req ReportRequest) (Report, error) {
	window, err := ResolveWindow(req.RangeType, req.Start, req.End, b.now())
	if err != nil {
		return Report{}, err
	}
	period, err := b.payments.ResolvePeriod(req.Month, req.Year)
	if err != nil {
		return Report{}, err
	}
	cohort, err := b.cohorts.ResolveCohort(ctx, req.Grade, req.Subject)
	if err != nil {
		return Report{}, errors.Wrap(err, "resolving cohort")
	}

	var (
		analysis Analysis
		payments []payment.StudentPayment
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		analysis, err = b.analyze(gctx, cohort, window)
		return err
	})
	g.Go(func() error {
		var err error
		payments, err = b.payments.Reconcile(gctx, cohort.Students, cohort.Offering, period.Month, period.Year)
		if err != nil {
			return errors.Wrap(err, "reconciling payments")
		}
		return nil
	})
	if err = g.Wait(); err != nil {
		return Report{}, err
	}

	students := Merge(analysis.Students, payments, cohort.Offering, period)
	return Report{
		Grade:          analysis.Grade,
		Subject:        analysis.Subject,
		Window:         window,
		Period:         period,
		Students:       students,
		ChartData:      analysis.ChartData,
		Summary:        analysis.Summary,
		PaymentSummary: SummarizePayments(students),
	}, nil
}

// Merge joins attendance stats and payments on the union of their student ids; a side missing
// for a student gets its "no data" value. Order: stats order, then payment-only students by id.
func Merge(stats []StudentStats, payments []payment.StudentPayment, offering *school.ClassOffering, period payment.Period) []StudentReport {
	byPayment := make(map[string]payment.StudentPayment, len(payments))
	for _, p := range payments {
		byPayment[p.StudentID] = p
	}

	noPayment := func(studentID, name string) payment.StudentPayment {
		p := payment.StudentPayment{
			StudentID:   studentID,
			StudentName: name,
			Month:       period.Month,
			Year:        period.Year,
			Status:      payment.StatusNoClass,
		}
		if offering != nil {
			p.ClassID = offering.ID
			p.Status = payment.StatusPending
			p.MonthlyFee = offering.MonthlyFee
		}
		return p
	}

	merged := make([]StudentReport, 0, len(stats)+len(payments))
	seen := make(map[string]bool, len(stats))
	for _, st := range stats {
		if seen[st.StudentID] {
			continue
		}
		seen[st.StudentID] = true
		p, ok := byPayment[st.StudentID]
		if !ok {
			p = noPayment(st.StudentID, st.StudentName)
		}
		merged = append(merged, StudentReport{StudentID: st.StudentID, StudentName: st.StudentName, Attendance: st, Payment: p})
	}

	extra := make([]StudentReport, 0)
	for _, p := range payments {
		if seen[p.StudentID] {
			continue
		}
		seen[p.StudentID] = true
		extra = append(extra, StudentReport{
			StudentID:   p.StudentID,
			StudentName: p.StudentName,
			Attendance:  StudentStats{StudentID: p.StudentID, StudentName: p.StudentName},
			Payment:     p,
		})
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i].StudentID < extra[j].StudentID })

	return append(merged, extra...)
}

// SummarizePayments totals the payment side of merged student reports.
func SummarizePayments(students []StudentReport) PaymentSummary {
	sum := PaymentSummary{TotalStudents: len(students)}
	for _, st := range students {
		p := st.Payment
		sum.TotalMonthlyRevenue += p.MonthlyFee
		switch p.Status {
		case payment.StatusPaid:
			sum.Paid++
			sum.CollectedRevenue += p.Amount
		case payment.StatusPending:
			sum.Pending++
		case payment.StatusOverdue:
			sum.Overdue++
		}
	}
	sum.TotalMonthlyRevenue = core.RoundMoney(sum.TotalMonthlyRevenue)
	sum.CollectedRevenue = core.RoundMoney(sum.CollectedRevenue)
	return sum
}
