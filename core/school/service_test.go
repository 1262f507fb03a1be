package school_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/rollcall/core/school"
	dummydb "github.com/trezcool/rollcall/storage/database/dummy"
	testutil "github.com/trezcool/rollcall/tests"
)

func setup(t *testing.T) *school.Service {
	db, err := dummydb.Open()
	require.NoError(t, err)
	testutil.SeedSchool(db)
	return school.NewService(dummydb.NewSchoolRepository(db))
}

func TestService_ResolveCohort(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	tests := []struct {
		name         string
		grade        int
		subject      string
		wantSubject  string
		wantOffering string
		wantIDs      []string
	}{
		{name: "case-insensitive subject", grade: 10, subject: "MATH", wantSubject: "Math", wantOffering: testutil.MathClassID, wantIDs: []string{testutil.AmaniID, testutil.BarakaID}},
		{name: "padded subject", grade: 10, subject: "  chemistry ", wantSubject: "Chemistry", wantOffering: testutil.ChemistryClassID, wantIDs: []string{testutil.BarakaID, testutil.ChloeID}},
		{name: "scoped to grade", grade: 11, subject: "math", wantSubject: "MATH", wantOffering: testutil.Grade11MathID, wantIDs: []string{testutil.DavidID}},
		{name: "no offering", grade: 10, subject: "Physics", wantSubject: "Physics", wantIDs: []string{}},
		{name: "unknown grade", grade: 12, subject: "Math", wantSubject: "Math", wantIDs: []string{}},
		{name: "blank subject", grade: 10, subject: "   ", wantSubject: "   ", wantIDs: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cohort, err := svc.ResolveCohort(ctx, tt.grade, tt.subject)
			require.NoError(t, err)

			assert.Equal(t, tt.grade, cohort.Grade)
			assert.Equal(t, tt.wantSubject, cohort.Subject)
			assert.Equal(t, tt.wantIDs, cohort.StudentIDs())
			if tt.wantOffering == "" {
				assert.Nil(t, cohort.Offering)
			} else if assert.NotNil(t, cohort.Offering) {
				assert.Equal(t, tt.wantOffering, cohort.Offering.ID)
			}
		})
	}
}

func TestService_GetStudent(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	s, err := svc.GetStudent(ctx, school.GetFilter{RegisterNumber: " R003 "})
	require.NoError(t, err)
	assert.Equal(t, testutil.ChloeID, s.ID)

	s, err = svc.GetStudent(ctx, school.GetFilter{ID: testutil.DavidID, RegisterNumber: "R001"})
	require.NoError(t, err)
	assert.Equal(t, testutil.DavidID, s.ID, "ID wins over register number")

	_, err = svc.GetStudent(ctx, school.GetFilter{RegisterNumber: "R999"})
	assert.Equal(t, school.ErrNotFound, err)
}

func TestService_SubjectsForGrade(t *testing.T) {
	svc := setup(t)

	subjects, err := svc.SubjectsForGrade(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"Chemistry", "Math"}, subjects)

	subjects, err = svc.SubjectsForGrade(context.Background(), 9)
	require.NoError(t, err)
	assert.Empty(t, subjects)
}
