package notification

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/rollcall/core"
	"github.com/trezcool/rollcall/core/school"
)

type (
	// ContactLookup finds the guardian contact of a student.
	// It returns a nil Contact (and no error) when it knows of none.
	ContactLookup interface {
		LookupContact(ctx context.Context, studentID string) (*Contact, error)
	}

	ContactLookupFunc func(ctx context.Context, studentID string) (*Contact, error)

	UserDirectory interface {
		GetUser(ctx context.Context, id string) (school.User, error)
	}

	StudentDirectory interface {
		GetStudent(ctx context.Context, filter school.GetFilter) (school.Student, error)
	}
)

func (f ContactLookupFunc) LookupContact(ctx context.Context, studentID string) (*Contact, error) {
	return f(ctx, studentID)
}

// UserContactLookup reads the guardian from the unified user record.
func UserContactLookup(dir UserDirectory) ContactLookup {
	return ContactLookupFunc(func(ctx context.Context, studentID string) (*Contact, error) {
		usr, err := dir.GetUser(ctx, studentID)
		if err != nil {
			if errors.Cause(err) == school.ErrUserNotFound {
				return nil, nil
			}
			return nil, errors.Wrap(err, "getting user")
		}
		email := core.CleanString(usr.GuardianEmail)
		if email == "" {
			return nil, nil
		}
		return &Contact{StudentName: usr.Name, GuardianName: usr.GuardianName, Email: email}, nil
	})
}

// StudentContactLookup reads the guardian from the student record.
func StudentContactLookup(dir StudentDirectory) ContactLookup {
	return ContactLookupFunc(func(ctx context.Context, studentID string) (*Contact, error) {
		student, err := dir.GetStudent(ctx, school.GetFilter{ID: studentID})
		if err != nil {
			if errors.Cause(err) == school.ErrNotFound {
				return nil, nil
			}
			return nil, errors.Wrap(err, "getting student")
		}
		email := core.CleanString(student.GuardianEmail)
		if email == "" {
			return nil, nil
		}
		return &Contact{StudentName: student.Name, GuardianName: student.GuardianName, Email: email}, nil
	})
}
