package main

import (
	"fmt"

	"github.com/trezcool/rollcall/core/attendance"
)

// mark records (or overwrites) a student's attendance.
func (cli *commandLine) mark(req attendance.MarkRequest) error {
	if err := req.Validate(cli.validate); err != nil {
		return err
	}
	rec, err := cli.attendanceSvc.Mark(defaultTimeout(), req)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "%s marked %s for class %s on %s (record %s)\n",
		rec.StudentID, rec.Status, rec.ClassID, rec.Date.Format("2006-01-02"), rec.ID)
	return nil
}
