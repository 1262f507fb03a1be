package dummydb

import (
	"context"
	"sort"

	"github.com/trezcool/rollcall/core/school"
)

type schoolRepository struct {
	db *schoolTables
}

var _ school.Repository = (*schoolRepository)(nil) // interface compliance check

func NewSchoolRepository(db *DB) school.Repository {
	return &schoolRepository{db: db.school}
}

func (repo *schoolRepository) QueryStudents(_ context.Context, grade int) ([]school.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	students := make([]school.Student, 0)
	for _, s := range repo.db.students {
		if s.Grade == grade {
			students = append(students, s)
		}
	}
	school.SortStudents(students)
	return students, nil
}

func (repo *schoolRepository) GetStudent(_ context.Context, filter school.GetFilter) (school.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if filter.ID != "" {
		if s, ok := repo.db.students[filter.ID]; ok {
			return s, nil
		}
		return school.Student{}, school.ErrNotFound
	}
	if filter.RegisterNumber != "" {
		for _, s := range repo.db.students {
			if s.RegisterNumber == filter.RegisterNumber {
				return s, nil
			}
		}
	}
	return school.Student{}, school.ErrNotFound
}

func (repo *schoolRepository) GetUser(_ context.Context, id string) (school.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if u, ok := repo.db.users[id]; ok {
		return u, nil
	}
	return school.User{}, school.ErrUserNotFound
}

func (repo *schoolRepository) FindClassOffering(_ context.Context, grade int, subject string) (school.ClassOffering, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	key := school.NormalizeSubject(subject)
	for _, c := range repo.db.classes {
		if c.Grade == grade && school.NormalizeSubject(c.Subject) == key {
			return c, nil
		}
	}
	return school.ClassOffering{}, school.ErrClassNotFound
}

func (repo *schoolRepository) GetClassOffering(_ context.Context, id string) (school.ClassOffering, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if c, ok := repo.db.classes[id]; ok {
		return c, nil
	}
	return school.ClassOffering{}, school.ErrClassNotFound
}

func (repo *schoolRepository) QueryClassOfferings(_ context.Context, grade int) ([]school.ClassOffering, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	classes := make([]school.ClassOffering, 0)
	for _, c := range repo.db.classes {
		if c.Grade == grade {
			classes = append(classes, c)
		}
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i].Subject < classes[j].Subject })
	return classes, nil
}
