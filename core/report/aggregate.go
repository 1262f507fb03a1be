package report

import (
	"math"
	"sort"

	"github.com/trezcool/rollcall/core"
	"github.com/trezcool/rollcall/core/attendance"
	"github.com/trezcool/rollcall/core/school"
)

type (
	StudentStats struct {
		StudentID      string  `json:"student_id"`
		StudentName    string  `json:"student_name"`
		RegisterNumber string  `json:"register_number"`
		TotalClasses   int     `json:"total_classes"`
		Present        int     `json:"present"`
		Absent         int     `json:"absent"`
		Late           int     `json:"late"`
		AttendanceRate float64 `json:"attendance_rate"` // percent, 2 decimals
	}

	// ChartPoint holds the status counts of a date that has records.
	ChartPoint struct {
		Date    string `json:"date"`
		Present int    `json:"present"`
		Absent  int    `json:"absent"`
		Late    int    `json:"late"`
		Total   int    `json:"total"`
	}

	Summary struct {
		TotalStudents         int     `json:"total_students"`
		TotalClasses          int     `json:"total_classes"`
		OverallAttendanceRate float64 `json:"overall_attendance_rate"`
	}

	Analysis struct {
		Grade     int            `json:"grade"`
		Subject   string         `json:"subject"`
		Window    Window         `json:"window"`
		Students  []StudentStats `json:"students"`
		ChartData []ChartPoint   `json:"chart_data"`
		Summary   Summary        `json:"summary"`
	}
)

// Rate returns part/total as a percentage rounded to 2 decimals; 0 when total is 0.
func Rate(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(total)*100*100) / 100
}

func (st *StudentStats) add(status attendance.Status) {
	st.TotalClasses++
	switch status {
	case attendance.StatusPresent:
		st.Present++
	case attendance.StatusAbsent:
		st.Absent++
	case attendance.StatusLate:
		st.Late++
	}
}

func (p *ChartPoint) add(status attendance.Status) {
	p.Total++
	switch status {
	case attendance.StatusPresent:
		p.Present++
	case attendance.StatusAbsent:
		p.Absent++
	case attendance.StatusLate:
		p.Late++
	}
}

// Aggregate computes per-student stats for the cohort, the daily chart series over every record
// and the cohort summary. Records of students outside the cohort only count towards the chart
// and the total number of classes.
func Aggregate(records []attendance.Record, students []school.Student) ([]StudentStats, []ChartPoint, Summary) {
	byStudent := make(map[string]*StudentStats, len(students))
	stats := make([]StudentStats, len(students))
	for i, s := range students {
		stats[i] = StudentStats{StudentID: s.ID, StudentName: s.Name, RegisterNumber: s.RegisterNumber}
		if _, dup := byStudent[s.ID]; !dup {
			byStudent[s.ID] = &stats[i]
		}
	}

	byDate := make(map[string]*ChartPoint)
	for _, rec := range records {
		if st, ok := byStudent[rec.StudentID]; ok {
			st.add(rec.Status)
		}

		date := core.FormatDate(rec.Date)
		p, ok := byDate[date]
		if !ok {
			p = &ChartPoint{Date: date}
			byDate[date] = p
		}
		p.add(rec.Status)
	}

	var cohortPresent int
	for i := range stats {
		if byStudent[stats[i].StudentID] != &stats[i] {
			// duplicate cohort entry: mirror the counted one
			stats[i] = *byStudent[stats[i].StudentID]
			continue
		}
		stats[i].AttendanceRate = Rate(stats[i].Present, stats[i].TotalClasses)
		cohortPresent += stats[i].Present
	}

	chart := make([]ChartPoint, 0, len(byDate))
	for _, p := range byDate {
		chart = append(chart, *p)
	}
	sort.Slice(chart, func(i, j int) bool { return chart[i].Date < chart[j].Date })

	summary := Summary{
		TotalStudents:         len(students),
		TotalClasses:          len(records),
		OverallAttendanceRate: Rate(cohortPresent, len(records)),
	}
	return stats, chart, summary
}
