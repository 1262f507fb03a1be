package dummydb

import (
	"sort"
	"sync"

	"github.com/trezcool/rollcall/core/attendance"
	"github.com/trezcool/rollcall/core/notification"
	"github.com/trezcool/rollcall/core/payment"
	"github.com/trezcool/rollcall/core/school"
)

type (
	// DB is an in-memory store implementing every repository; used by tests and the "memory" engine.
	DB struct {
		school       *schoolTables
		attendance   *attendanceTable
		notification *notificationTable
		payment      *paymentTable
	}

	schoolTables struct {
		sync.RWMutex
		users    map[string]school.User
		students map[string]school.Student
		classes  map[string]school.ClassOffering
	}

	attendanceTable struct {
		sync.RWMutex
		table map[attendanceKey]*attendance.Record
	}

	notificationTable struct {
		sync.RWMutex
		table []notification.Notification
	}

	paymentTable struct {
		sync.RWMutex
		table map[string]payment.Record
	}
)

func Open() (*DB, error) {
	db := &DB{
		school: &schoolTables{
			users:    make(map[string]school.User),
			students: make(map[string]school.Student),
			classes:  make(map[string]school.ClassOffering),
		},
		attendance:   &attendanceTable{table: make(map[attendanceKey]*attendance.Record)},
		notification: &notificationTable{},
		payment:      &paymentTable{table: make(map[string]payment.Record)},
	}
	return db, nil
}

func (db *DB) SeedUsers(users ...school.User) {
	db.school.Lock()
	defer db.school.Unlock()
	for _, u := range users {
		db.school.users[u.ID] = u
	}
}

func (db *DB) SeedStudents(students ...school.Student) {
	db.school.Lock()
	defer db.school.Unlock()
	for _, s := range students {
		db.school.students[s.ID] = s
	}
}

func (db *DB) SeedClassOfferings(classes ...school.ClassOffering) {
	db.school.Lock()
	defer db.school.Unlock()
	for _, c := range classes {
		db.school.classes[c.ID] = c
	}
}

func (db *DB) SeedPaymentRecords(recs ...payment.Record) {
	db.payment.Lock()
	defer db.payment.Unlock()
	for _, r := range recs {
		db.payment.table[r.ID] = r
	}
}

// AttendanceRecords returns a snapshot of the stored records, ordered by date then student.
func (db *DB) AttendanceRecords() []attendance.Record {
	db.attendance.RLock()
	defer db.attendance.RUnlock()
	recs := make([]attendance.Record, 0, len(db.attendance.table))
	for _, r := range db.attendance.table {
		recs = append(recs, *r)
	}
	sortRecords(recs)
	return recs
}

// Notifications returns a snapshot of the notification log, in insertion order.
func (db *DB) Notifications() []notification.Notification {
	db.notification.RLock()
	defer db.notification.RUnlock()
	out := make([]notification.Notification, len(db.notification.table))
	copy(out, db.notification.table)
	return out
}

func sortRecords(recs []attendance.Record) {
	sort.Slice(recs, func(i, j int) bool {
		if !recs[i].Date.Equal(recs[j].Date) {
			return recs[i].Date.Before(recs[j].Date)
		}
		if recs[i].StudentID != recs[j].StudentID {
			return recs[i].StudentID < recs[j].StudentID
		}
		return recs[i].ClassID < recs[j].ClassID
	})
}
