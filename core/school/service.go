package school

import (
	"context"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

var (
	// errors
	ErrNotFound      = errors.New("student not found")
	ErrUserNotFound  = errors.New("user not found")
	ErrClassNotFound = errors.New("class offering not found")
)

type (
	Repository interface {
		// QueryStudents returns every student of grade, ordered by name.
		QueryStudents(ctx context.Context, grade int) ([]Student, error)
		GetStudent(ctx context.Context, filter GetFilter) (Student, error)
		GetUser(ctx context.Context, id string) (User, error)
		// FindClassOffering matches subject case-insensitively.
		FindClassOffering(ctx context.Context, grade int, subject string) (ClassOffering, error)
		GetClassOffering(ctx context.Context, id string) (ClassOffering, error)
		QueryClassOfferings(ctx context.Context, grade int) ([]ClassOffering, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// ResolveCohort returns the students of grade enrolled in subject.
// A missing class offering or an empty match is a normal, empty cohort.
func (svc *Service) ResolveCohort(ctx context.Context, grade int, subject string) (Cohort, error) {
	cohort := Cohort{Grade: grade, Subject: subject, Students: []Student{}}

	offering, err := svc.FindClassOffering(ctx, grade, subject)
	if err != nil {
		return Cohort{}, err
	}
	if offering == nil {
		return cohort, nil
	}
	cohort.Offering = offering
	cohort.Subject = offering.Subject

	students, err := svc.repo.QueryStudents(ctx, grade)
	if err != nil {
		return Cohort{}, errors.Wrap(err, "querying students")
	}
	for _, s := range students {
		if s.EnrolledIn(grade, subject) {
			cohort.Students = append(cohort.Students, s)
		}
	}
	return cohort, nil
}

// FindClassOffering returns nil (and no error) when no class exists for (grade, subject).
func (svc *Service) FindClassOffering(ctx context.Context, grade int, subject string) (*ClassOffering, error) {
	if NormalizeSubject(subject) == "" {
		return nil, nil
	}
	offering, err := svc.repo.FindClassOffering(ctx, grade, subject)
	if err != nil {
		if errors.Cause(err) == ErrClassNotFound {
			return nil, nil
		}
		return nil, errors.Wrap(err, "finding class offering")
	}
	return &offering, nil
}

func (svc *Service) GetClassOffering(ctx context.Context, id string) (ClassOffering, error) {
	return svc.repo.GetClassOffering(ctx, id)
}

func (svc *Service) GetStudent(ctx context.Context, filter GetFilter) (Student, error) {
	filter.RegisterNumber = strings.TrimSpace(filter.RegisterNumber)
	return svc.repo.GetStudent(ctx, filter)
}

func (svc *Service) GetUser(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUser(ctx, id)
}

// SubjectsForGrade lists the distinct subjects offered in grade.
func (svc *Service) SubjectsForGrade(ctx context.Context, grade int) ([]string, error) {
	offerings, err := svc.repo.QueryClassOfferings(ctx, grade)
	if err != nil {
		return nil, errors.Wrap(err, "querying class offerings")
	}
	slots := make([]string, 0, len(offerings))
	for _, o := range offerings {
		slots = append(slots, o.Subject)
	}
	return NewSubjectSet(slots...).Names(), nil
}

// SortStudents orders students by name then ID.
func SortStudents(students []Student) {
	sort.SliceStable(students, func(i, j int) bool {
		ni, nj := strings.ToLower(students[i].Name), strings.ToLower(students[j].Name)
		if ni != nj {
			return ni < nj
		}
		return students[i].ID < students[j].ID
	})
}
