package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/rollcall/apps/container"
	"github.com/trezcool/rollcall/core/attendance"
	"github.com/trezcool/rollcall/core/report"
)

var (
	errHelp        = errors.New("help provided")
	errNoPostgres  = errors.New("migrations require the postgres database engine")
	defaultTimeout = context.Background
)

type commandLine struct {
	db            *sql.DB // nil with the memory engine
	validate      *validator.Validate
	attendanceSvc *attendance.Service
	reportBuilder *report.Builder
	out           io.Writer
}

func newCommandLine(c *container.Container, out io.Writer) *commandLine {
	cli := &commandLine{
		validate:      c.Validate,
		attendanceSvc: c.AttendanceSvc,
		reportBuilder: c.ReportBuilder,
		out:           out,
	}
	if c.DB != nil {
		cli.db = c.DB.DB
	}
	return cli
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS] - run a goose command (up, up-by-one, up-to, down, down-to, redo, reset, status, version, fix)")
	fmt.Fprintln(cli.out, "  report -grade GRADE -subject SUBJECT [-range week|month|year] [-start DATE -end DATE] [-month M -year Y] - print a cohort report as JSON")
	fmt.Fprintln(cli.out, "  mark -student ID|-register NUMBER -class ID -date DATE -status present|absent|late [-method manual|qr] -by ACTOR - record attendance")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	reportCmd := flag.NewFlagSet("report", flag.ContinueOnError)
	reportCmd.SetOutput(cli.out)
	reportGrade := reportCmd.Int("grade", 0, "The grade of the cohort.")
	reportSubject := reportCmd.String("subject", "", "The subject of the cohort.")
	reportRange := reportCmd.String("range", string(report.RangeMonth), "The attendance window: week, month or year.")
	reportStart := reportCmd.String("start", "", "Custom window start (YYYY-MM-DD); requires -end.")
	reportEnd := reportCmd.String("end", "", "Custom window end (YYYY-MM-DD); requires -start.")
	reportMonth := reportCmd.Int("month", 0, "The billing month (default: current).")
	reportYear := reportCmd.Int("year", 0, "The billing year (default: current).")

	markCmd := flag.NewFlagSet("mark", flag.ContinueOnError)
	markCmd.SetOutput(cli.out)
	markStudent := markCmd.String("student", "", "The student's ID.")
	markRegister := markCmd.String("register", "", "The student's register number (used when -student is empty).")
	markClass := markCmd.String("class", "", "The class offering ID.")
	markDate := markCmd.String("date", "", "The attendance date (YYYY-MM-DD).")
	markStatus := markCmd.String("status", "", "present, absent or late.")
	markMethod := markCmd.String("method", string(attendance.MethodManual), "manual or qr.")
	markBy := markCmd.String("by", "", "Who marks the attendance.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "report":
		if err := reportCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *reportGrade == 0 || *reportSubject == "" {
			reportCmd.Usage()
			return errHelp
		}
		return cli.report(reportParams{
			grade:     *reportGrade,
			subject:   *reportSubject,
			rangeType: *reportRange,
			start:     *reportStart,
			end:       *reportEnd,
			month:     *reportMonth,
			year:      *reportYear,
		})
	case "mark":
		if err := markCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *markStudent == "" && *markRegister == "" {
			markCmd.Usage()
			return errHelp
		}
		return cli.mark(attendance.MarkRequest{
			StudentID:      *markStudent,
			RegisterNumber: *markRegister,
			ClassID:        *markClass,
			Date:           *markDate,
			Status:         attendance.Status(*markStatus),
			Method:         attendance.Method(*markMethod),
			MarkedBy:       *markBy,
		})
	default:
		cli.printUsage()
		return errHelp
	}
}
