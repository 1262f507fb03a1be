package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/rollcall/core/school"
)

type (
	studentRow struct {
		ID             string      `db:"id"`
		RegisterNumber null.String `db:"register_number"`
		Name           string      `db:"name"`
		Grade          int         `db:"grade"`
		Subject1       null.String `db:"subject_1"`
		Subject2       null.String `db:"subject_2"`
		Subject3       null.String `db:"subject_3"`
		Subject4       null.String `db:"subject_4"`
		Subject5       null.String `db:"subject_5"`
		Subject6       null.String `db:"subject_6"`
		GuardianName   null.String `db:"guardian_name"`
		GuardianEmail  null.String `db:"guardian_email"`
	}

	userRow struct {
		ID            string      `db:"id"`
		Name          string      `db:"name"`
		Email         null.String `db:"email"`
		GuardianName  null.String `db:"guardian_name"`
		GuardianEmail null.String `db:"guardian_email"`
	}

	classRow struct {
		ID          string      `db:"id"`
		Grade       int         `db:"grade"`
		Subject     string      `db:"subject"`
		TeacherName null.String `db:"teacher_name"`
		MonthlyFee  float64     `db:"monthly_fee"`
		Weekday     null.Int16  `db:"weekday"`
		StartTime   null.String `db:"start_time"`
		EndTime     null.String `db:"end_time"`
	}
)

const (
	studentColumns = `id, register_number, name, grade, subject_1, subject_2, subject_3, subject_4, subject_5, subject_6, guardian_name, guardian_email`
	classColumns   = `id, grade, subject, teacher_name, monthly_fee, weekday, start_time, end_time`
)

func (r studentRow) unboil() school.Student {
	return school.Student{
		ID:             r.ID,
		RegisterNumber: r.RegisterNumber.String,
		Name:           r.Name,
		Grade:          r.Grade,
		Subjects: school.NewSubjectSet(
			r.Subject1.String, r.Subject2.String, r.Subject3.String,
			r.Subject4.String, r.Subject5.String, r.Subject6.String,
		),
		GuardianName:  r.GuardianName.String,
		GuardianEmail: r.GuardianEmail.String,
	}
}

func (r classRow) unboil() school.ClassOffering {
	c := school.ClassOffering{
		ID:          r.ID,
		Grade:       r.Grade,
		Subject:     r.Subject,
		TeacherName: r.TeacherName.String,
		MonthlyFee:  r.MonthlyFee,
	}
	if r.Weekday.Valid {
		c.Schedule = &school.Schedule{
			Weekday:   time.Weekday(r.Weekday.Int16),
			StartTime: r.StartTime.String,
			EndTime:   r.EndTime.String,
		}
	}
	return c
}

type schoolRepository struct {
	exec sqlx.ExtContext
}

var _ school.Repository = (*schoolRepository)(nil) // interface compliance check

func NewSchoolRepository(exec sqlx.ExtContext) *schoolRepository {
	return &schoolRepository{exec: exec}
}

func (repo schoolRepository) QueryStudents(ctx context.Context, grade int) ([]school.Student, error) {
	var rows []studentRow
	q := `SELECT ` + studentColumns + ` FROM student WHERE grade = $1 ORDER BY lower(name), id`
	if err := sqlx.SelectContext(ctx, repo.exec, &rows, q, grade); err != nil {
		return nil, errors.Wrap(err, "selecting students")
	}
	students := make([]school.Student, 0, len(rows))
	for _, r := range rows {
		students = append(students, r.unboil())
	}
	return students, nil
}

func (repo schoolRepository) GetStudent(ctx context.Context, filter school.GetFilter) (school.Student, error) {
	var row studentRow
	var err error
	switch {
	case filter.ID != "":
		q := `SELECT ` + studentColumns + ` FROM student WHERE id = $1`
		err = sqlx.GetContext(ctx, repo.exec, &row, q, filter.ID)
	case filter.RegisterNumber != "":
		q := `SELECT ` + studentColumns + ` FROM student WHERE register_number = $1`
		err = sqlx.GetContext(ctx, repo.exec, &row, q, filter.RegisterNumber)
	default:
		return school.Student{}, school.ErrNotFound
	}
	if err != nil {
		return school.Student{}, trapNoRowsErr(err, school.ErrNotFound, "getting student")
	}
	return row.unboil(), nil
}

func (repo schoolRepository) GetUser(ctx context.Context, id string) (school.User, error) {
	var row userRow
	q := `SELECT id, name, email, guardian_name, guardian_email FROM "user" WHERE id = $1`
	if err := sqlx.GetContext(ctx, repo.exec, &row, q, id); err != nil {
		return school.User{}, trapNoRowsErr(err, school.ErrUserNotFound, "getting user")
	}
	return school.User{
		ID:            row.ID,
		Name:          row.Name,
		Email:         row.Email.String,
		GuardianName:  row.GuardianName.String,
		GuardianEmail: row.GuardianEmail.String,
	}, nil
}

func (repo schoolRepository) FindClassOffering(ctx context.Context, grade int, subject string) (school.ClassOffering, error) {
	var row classRow
	q := `SELECT ` + classColumns + ` FROM class_offering WHERE grade = $1 AND lower(trim(subject)) = $2`
	if err := sqlx.GetContext(ctx, repo.exec, &row, q, grade, school.NormalizeSubject(subject)); err != nil {
		return school.ClassOffering{}, trapNoRowsErr(err, school.ErrClassNotFound, "finding class offering")
	}
	return row.unboil(), nil
}

func (repo schoolRepository) GetClassOffering(ctx context.Context, id string) (school.ClassOffering, error) {
	var row classRow
	q := `SELECT ` + classColumns + ` FROM class_offering WHERE id = $1`
	if err := sqlx.GetContext(ctx, repo.exec, &row, q, id); err != nil {
		return school.ClassOffering{}, trapNoRowsErr(err, school.ErrClassNotFound, "getting class offering")
	}
	return row.unboil(), nil
}

func (repo schoolRepository) QueryClassOfferings(ctx context.Context, grade int) ([]school.ClassOffering, error) {
	var rows []classRow
	q := `SELECT ` + classColumns + ` FROM class_offering WHERE grade = $1 ORDER BY subject`
	if err := sqlx.SelectContext(ctx, repo.exec, &rows, q, grade); err != nil {
		return nil, errors.Wrap(err, "selecting class offerings")
	}
	classes := make([]school.ClassOffering, 0, len(rows))
	for _, r := range rows {
		classes = append(classes, r.unboil())
	}
	return classes, nil
}
