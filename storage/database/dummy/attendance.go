package dummydb

import (
	"context"

	"github.com/google/uuid"

	"github.com/trezcool/rollcall/core"
	"github.com/trezcool/rollcall/core/attendance"
)

type attendanceKey struct {
	studentID string
	classID   string
	date      string
}

func newAttendanceKey(key attendance.Key) attendanceKey {
	return attendanceKey{studentID: key.StudentID, classID: key.ClassID, date: core.FormatDate(key.Date)}
}

type attendanceRepository struct {
	db *attendanceTable
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *DB) attendance.Repository {
	return &attendanceRepository{db: db.attendance}
}

func (repo *attendanceRepository) GetRecord(_ context.Context, key attendance.Key) (attendance.Record, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if rec, ok := repo.db.table[newAttendanceKey(key)]; ok {
		return *rec, nil
	}
	return attendance.Record{}, attendance.ErrNotFound
}

func (repo *attendanceRepository) CreateRecord(_ context.Context, rec attendance.Record) (attendance.Record, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	rec.Date = core.TruncateDate(rec.Date)
	key := newAttendanceKey(rec.Key())
	if _, exists := repo.db.table[key]; exists {
		return attendance.Record{}, attendance.ErrRecordExists
	}
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	repo.db.table[key] = &rec
	return rec, nil
}

func (repo *attendanceRepository) UpdateRecord(_ context.Context, rec attendance.Record) (attendance.Record, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	stored, ok := repo.db.table[newAttendanceKey(rec.Key())]
	if !ok || stored.ID != rec.ID {
		return attendance.Record{}, attendance.ErrNotFound
	}
	stored.Status = rec.Status
	stored.Method = rec.Method
	stored.MarkedBy = rec.MarkedBy
	stored.MarkedAt = rec.MarkedAt
	stored.UpdatedAt = rec.UpdatedAt
	return *stored, nil
}

func (repo *attendanceRepository) QueryRecords(_ context.Context, filter attendance.QueryFilter) ([]attendance.Record, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	recs := make([]attendance.Record, 0)
	for _, rec := range repo.db.table {
		if filter.Match(*rec) {
			recs = append(recs, *rec)
		}
	}
	sortRecords(recs)
	return recs, nil
}
