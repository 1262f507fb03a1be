package testutil

import (
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/trezcool/rollcall/apps/container"
	"github.com/trezcool/rollcall/core"
	"github.com/trezcool/rollcall/core/payment"
	"github.com/trezcool/rollcall/core/school"
	emailsvc "github.com/trezcool/rollcall/services/email"
	dummydb "github.com/trezcool/rollcall/storage/database/dummy"
	logsvc "github.com/trezcool/rollcall/services/logger"
)

// Well-known fixture IDs seeded by SeedSchool.
const (
	MathClassID      = "class-10-math"
	ChemistryClassID = "class-10-chem"
	Grade11MathID    = "class-11-math"

	AmaniID  = "stu-1" // grade 10: Math, Physics; guardian on the user record
	BarakaID = "stu-2" // grade 10: math, Chemistry; guardian on the student record
	ChloeID  = "stu-3" // grade 10: Chemistry; no guardian contact
	DavidID  = "stu-4" // grade 11: Math
)

// Logger returns a core.Logger writing to the test's log.
func Logger(t *testing.T) *logsvc.RollbarLogger {
	return logsvc.NewRollbarLogger(zaptest.NewLogger(t), core.NewTestConfig())
}

// NewContainer wires every service over a fresh in-memory database and a mocked mailer.
func NewContainer(t *testing.T) (*container.Container, *emailsvc.ConsoleService) {
	conf := core.NewTestConfig()
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed: %v", err)
	}
	mailer := emailsvc.NewConsoleServiceMock(conf)
	c := &container.Container{
		Conf:   conf,
		Logger: Logger(t),
		MemDB:  db,
		Repos:  container.MemoryRepositories(db),
	}
	if err = c.Wire(mailer); err != nil {
		t.Fatalf("container.Wire() failed: %v", err)
	}
	return c, mailer
}

// SeedSchool fills db with the fixture students, users and class offerings.
func SeedSchool(db *dummydb.DB) {
	db.SeedStudents(
		school.Student{
			ID:             AmaniID,
			RegisterNumber: "R001",
			Name:           "Amani Kabila",
			Grade:          10,
			Subjects:       school.NewSubjectSet("Math", "Physics", "", "", "", ""),
		},
		school.Student{
			ID:             BarakaID,
			RegisterNumber: "R002",
			Name:           "Baraka Mutombo",
			Grade:          10,
			Subjects:       school.NewSubjectSet("math", "Chemistry"),
			GuardianName:   "Esther Mutombo",
			GuardianEmail:  "esther@test.cd",
		},
		school.Student{
			ID:             ChloeID,
			RegisterNumber: "R003",
			Name:           "Chloe Ilunga",
			Grade:          10,
			Subjects:       school.NewSubjectSet("Chemistry"),
		},
		school.Student{
			ID:             DavidID,
			RegisterNumber: "R004",
			Name:           "David Tshala",
			Grade:          11,
			Subjects:       school.NewSubjectSet("Math"),
			GuardianName:   "Ruth Tshala",
			GuardianEmail:  "ruth@test.cd",
		},
	)
	db.SeedUsers(school.User{
		ID:            AmaniID,
		Name:          "Amani Kabila",
		Email:         "amani@test.cd",
		GuardianName:  "Grace Kabila",
		GuardianEmail: "grace@test.cd",
	})
	db.SeedClassOfferings(
		school.ClassOffering{ID: MathClassID, Grade: 10, Subject: "Math", TeacherName: "Mr. Lumumba", MonthlyFee: 50},
		school.ClassOffering{ID: ChemistryClassID, Grade: 10, Subject: "Chemistry", TeacherName: "Mrs. Mbuyi", MonthlyFee: 65.5},
		school.ClassOffering{ID: Grade11MathID, Grade: 11, Subject: "MATH", TeacherName: "Mr. Lumumba", MonthlyFee: 60},
	)
}

func CreatePayment(
	db *dummydb.DB,
	id, studentID, classID string,
	month, year int,
	amount float64,
	status payment.Status,
	paidAt ...time.Time,
) payment.Record {
	rec := payment.Record{
		ID:        id,
		StudentID: studentID,
		ClassID:   classID,
		Month:     month,
		Year:      year,
		Amount:    amount,
		Status:    status,
		CreatedAt: time.Now().UTC(),
	}
	if len(paidAt) > 0 {
		t := paidAt[0].UTC()
		rec.PaidAt = &t
	}
	db.SeedPaymentRecords(rec)
	return rec
}

// Date returns the UTC midnight of the given calendar date.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Clock returns a time source frozen at now.
func Clock(now time.Time) func() time.Time {
	return func() time.Time { return now }
}
