package report

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/rollcall/core/attendance"
	"github.com/trezcool/rollcall/core/school"
)

func TestRate(t *testing.T) {
	tests := []struct {
		part, total int
		want        float64
	}{
		{0, 0, 0},
		{3, 0, 0},
		{0, 4, 0},
		{1, 3, 33.33},
		{2, 3, 66.67},
		{4, 4, 100},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Rate(tt.part, tt.total), "Rate(%d, %d)", tt.part, tt.total)
	}
}

func TestAggregate(t *testing.T) {
	students := []school.Student{
		{ID: "s1", Name: "Amani", RegisterNumber: "R1"},
		{ID: "s2", Name: "Baraka", RegisterNumber: "R2"},
		{ID: "s3", Name: "Chloe", RegisterNumber: "R3"},
	}
	rec := func(studentID string, day int, status attendance.Status) attendance.Record {
		return attendance.Record{StudentID: studentID, ClassID: "c1", Date: date(2024, 1, day), Status: status}
	}
	records := []attendance.Record{
		rec("s1", 3, attendance.StatusPresent),
		rec("s1", 1, attendance.StatusPresent),
		rec("s2", 1, attendance.StatusAbsent),
		rec("s2", 3, attendance.StatusLate),
	}

	stats, chart, summary := Aggregate(records, students)

	assert.Equal(t, []StudentStats{
		{StudentID: "s1", StudentName: "Amani", RegisterNumber: "R1", TotalClasses: 2, Present: 2, AttendanceRate: 100},
		{StudentID: "s2", StudentName: "Baraka", RegisterNumber: "R2", TotalClasses: 2, Absent: 1, Late: 1, AttendanceRate: 0},
		{StudentID: "s3", StudentName: "Chloe", RegisterNumber: "R3"},
	}, stats)
	assert.Equal(t, []ChartPoint{
		{Date: "2024-01-01", Present: 1, Absent: 1, Total: 2},
		{Date: "2024-01-03", Present: 1, Late: 1, Total: 2},
	}, chart, "only dates with records, ascending")
	assert.Equal(t, Summary{TotalStudents: 3, TotalClasses: 4, OverallAttendanceRate: 50}, summary)
}

func TestAggregate_emptyAndOutsiders(t *testing.T) {
	stats, chart, summary := Aggregate(nil, nil)
	assert.Empty(t, stats)
	assert.Empty(t, chart)
	assert.Equal(t, Summary{}, summary)

	students := []school.Student{{ID: "s1", Name: "Amani"}}
	records := []attendance.Record{
		{StudentID: "gone", Date: date(2024, 1, 5), Status: attendance.StatusPresent},
	}
	stats, chart, summary = Aggregate(records, students)
	assert.Equal(t, []StudentStats{{StudentID: "s1", StudentName: "Amani"}}, stats)
	assert.Equal(t, []ChartPoint{{Date: "2024-01-05", Present: 1, Total: 1}}, chart)
	assert.Equal(t, Summary{TotalStudents: 1, TotalClasses: 1, OverallAttendanceRate: 0}, summary)
}
