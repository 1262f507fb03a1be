package dummydb

import (
	"context"
	"sort"

	"github.com/trezcool/rollcall/core/payment"
)

type paymentRepository struct {
	db *paymentTable
}

var _ payment.Repository = (*paymentRepository)(nil) // interface compliance check

func NewPaymentRepository(db *DB) payment.Repository {
	return &paymentRepository{db: db.payment}
}

func (repo *paymentRepository) QueryPaymentRecords(_ context.Context, filter payment.QueryFilter) ([]payment.Record, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var students map[string]bool
	if len(filter.StudentIDs) > 0 {
		students = make(map[string]bool, len(filter.StudentIDs))
		for _, id := range filter.StudentIDs {
			students[id] = true
		}
	}

	recs := make([]payment.Record, 0)
	for _, r := range repo.db.table {
		if r.ClassID != filter.ClassID || r.Month != filter.Month || r.Year != filter.Year {
			continue
		}
		if students != nil && !students[r.StudentID] {
			continue
		}
		recs = append(recs, r)
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].StudentID < recs[j].StudentID })
	return recs, nil
}
