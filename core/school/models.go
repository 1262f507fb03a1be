package school

import (
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/trezcool/rollcall/core"
)

// SubjectSlots is the number of free-text subject columns a student row carries.
const SubjectSlots = 6

// NormalizeSubject returns the comparison key of a subject name.
func NormalizeSubject(subject string) string {
	return core.CleanString(subject, true /* lower */)
}

// SubjectSet maps normalized subject names to their display name.
type SubjectSet map[string]string

// NewSubjectSet builds a SubjectSet out of raw subject slots; blank slots are ignored
// and the first spelling of a subject wins.
func NewSubjectSet(slots ...string) SubjectSet {
	set := make(SubjectSet, len(slots))
	for _, slot := range slots {
		key := NormalizeSubject(slot)
		if key == "" {
			continue
		}
		if _, ok := set[key]; !ok {
			set[key] = core.CleanString(slot)
		}
	}
	return set
}

func (s SubjectSet) Has(subject string) bool {
	key := NormalizeSubject(subject)
	if key == "" {
		return false
	}
	_, ok := s[key]
	return ok
}

// Names returns the display names sorted case-insensitively.
func (s SubjectSet) Names() []string {
	names := make([]string, 0, len(s))
	for _, name := range s {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return strings.ToLower(names[i]) < strings.ToLower(names[j]) })
	return names
}

func (s SubjectSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Names())
}

func (s *SubjectSet) UnmarshalJSON(data []byte) error {
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return err
	}
	*s = NewSubjectSet(names...)
	return nil
}

type Student struct {
	ID             string     `json:"id"`
	RegisterNumber string     `json:"register_number"`
	Name           string     `json:"name"`
	Grade          int        `json:"grade"`
	Subjects       SubjectSet `json:"subjects"`
	GuardianName   string     `json:"guardian_name"`
	GuardianEmail  string     `json:"guardian_email"`
}

// EnrolledIn reports whether the student takes subject in grade.
func (s Student) EnrolledIn(grade int, subject string) bool {
	return s.Grade == grade && s.Subjects.Has(subject)
}

// User is the unified account record of a student.
type User struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	GuardianName  string `json:"guardian_name"`
	GuardianEmail string `json:"guardian_email"`
}

type Schedule struct {
	Weekday   time.Weekday `json:"weekday"`
	StartTime string       `json:"start_time"` // HH:MM
	EndTime   string       `json:"end_time"`   // HH:MM
}

// ClassOffering is the unique (grade, subject) class a fee is charged for.
type ClassOffering struct {
	ID          string    `json:"id"`
	Grade       int       `json:"grade"`
	Subject     string    `json:"subject"`
	TeacherName string    `json:"teacher_name"`
	MonthlyFee  float64   `json:"monthly_fee"`
	Schedule    *Schedule `json:"schedule"` // nil when unscheduled
}

// Cohort is the set of students enrolled in a class offering.
// Offering is nil when no class exists for the requested grade and subject.
type Cohort struct {
	Grade    int            `json:"grade"`
	Subject  string         `json:"subject"`
	Offering *ClassOffering `json:"offering"`
	Students []Student      `json:"students"`
}

func (c Cohort) StudentIDs() []string {
	ids := make([]string, 0, len(c.Students))
	for _, s := range c.Students {
		ids = append(ids, s.ID)
	}
	return ids
}

// GetFilter looks a student up by ID, or by RegisterNumber when ID is empty.
type GetFilter struct {
	ID             string
	RegisterNumber string
}
