package payment_test

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/rollcall/core"
	"github.com/trezcool/rollcall/core/payment"
	"github.com/trezcool/rollcall/core/school"
	dummydb "github.com/trezcool/rollcall/storage/database/dummy"
	testutil "github.com/trezcool/rollcall/tests"
)

var now = time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)

func setup(t *testing.T) (*payment.Service, *dummydb.DB) {
	db, err := dummydb.Open()
	require.NoError(t, err)
	return payment.NewService(dummydb.NewPaymentRepository(db)).WithClock(testutil.Clock(now)), db
}

func TestService_ResolvePeriod(t *testing.T) {
	svc, _ := setup(t)

	tests := []struct {
		name        string
		month, year int
		want        payment.Period
		wantField   string
	}{
		{name: "defaults to now", want: payment.Period{Month: 3, Year: 2024}},
		{name: "month only", month: 11, want: payment.Period{Month: 11, Year: 2024}},
		{name: "explicit", month: 12, year: 2023, want: payment.Period{Month: 12, Year: 2023}},
		{name: "month too big", month: 13, year: 2024, wantField: "month"},
		{name: "negative month", month: -1, wantField: "month"},
		{name: "negative year", month: 1, year: -2024, wantField: "year"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.ResolvePeriod(tt.month, tt.year)
			if tt.wantField != "" {
				var vErr *core.ValidationError
				require.True(t, errors.As(err, &vErr))
				assert.Equal(t, tt.wantField, vErr.Fields[0].Field)
				assert.True(t, errors.Is(err, payment.ErrInvalidPeriod))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestService_Reconcile(t *testing.T) {
	svc, db := setup(t)
	paidAt := time.Date(2024, time.March, 2, 9, 0, 0, 0, time.UTC)
	testutil.CreatePayment(db, "p1", "s1", "c1", 3, 2024, 50, payment.StatusPaid, paidAt)
	testutil.CreatePayment(db, "p2", "s2", "c1", 3, 2024, 0, payment.StatusOverdue)
	testutil.CreatePayment(db, "p3", "s3", "c1", 2, 2024, 50, payment.StatusPaid, paidAt) // other month
	testutil.CreatePayment(db, "p4", "s3", "c2", 3, 2024, 50, payment.StatusPaid, paidAt) // other class
	testutil.CreatePayment(db, "p5", "s9", "c1", 3, 2024, 50, payment.StatusPaid, paidAt) // not in cohort

	students := []school.Student{
		{ID: "s3", Name: "Chloe"},
		{ID: "s1", Name: "Amani"},
		{ID: "s2", Name: "Baraka"},
	}
	offering := &school.ClassOffering{ID: "c1", MonthlyFee: 50}

	got, err := svc.Reconcile(context.Background(), students, offering, 0, 0)
	require.NoError(t, err)

	assert.Equal(t, []payment.StudentPayment{
		{StudentID: "s3", StudentName: "Chloe", ClassID: "c1", Month: 3, Year: 2024, Status: payment.StatusPending, MonthlyFee: 50},
		{StudentID: "s1", StudentName: "Amani", ClassID: "c1", Month: 3, Year: 2024, Status: payment.StatusPaid, Amount: 50, MonthlyFee: 50, PaidAt: &paidAt},
		{StudentID: "s2", StudentName: "Baraka", ClassID: "c1", Month: 3, Year: 2024, Status: payment.StatusOverdue, MonthlyFee: 50},
	}, got, "cohort order, pending by default")
}

func TestService_Reconcile_noOffering(t *testing.T) {
	svc, _ := setup(t)

	got, err := svc.Reconcile(context.Background(), []school.Student{{ID: "s1", Name: "Amani"}}, nil, 2, 2024)
	require.NoError(t, err)
	assert.Equal(t, []payment.StudentPayment{
		{StudentID: "s1", StudentName: "Amani", Month: 2, Year: 2024, Status: payment.StatusNoClass},
	}, got)

	got, err = svc.Reconcile(context.Background(), nil, &school.ClassOffering{ID: "c1"}, 2, 2024)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = svc.Reconcile(context.Background(), nil, nil, 14, 2024)
	assert.True(t, errors.Is(err, payment.ErrInvalidPeriod))
}
