package main

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/rollcall/apps/container"
	"github.com/trezcool/rollcall/core"
	"github.com/trezcool/rollcall/core/attendance"
	"github.com/trezcool/rollcall/core/payment"
	"github.com/trezcool/rollcall/core/report"
	"github.com/trezcool/rollcall/core/school"
	emailsvc "github.com/trezcool/rollcall/services/email"
	testutil "github.com/trezcool/rollcall/tests"
)

func setup(t *testing.T) (*commandLine, *container.Container, *emailsvc.ConsoleService, *bytes.Buffer) {
	c, mailer := testutil.NewContainer(t)
	testutil.SeedSchool(c.MemDB)

	out := new(bytes.Buffer)
	return newCommandLine(c, out), c, mailer, out
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	invalid    bool // expects a validation error
	extra      interface{}
}

func (tt cliTest) check(t *testing.T, err error) {
	switch {
	case tt.wantErr != nil:
		assert.True(t, errors.Is(err, tt.wantErr), "got error %v, want %v", err, tt.wantErr)
	case tt.wantErrStr != "":
		if assert.Error(t, err) {
			assert.Contains(t, err.Error(), tt.wantErrStr)
		}
	case tt.invalid:
		var vErrs validator.ValidationErrors
		assert.True(t, errors.As(err, &vErrs) || core.IsValidationError(err), "got error %v, want a validation error", err)
	default:
		assert.NoError(t, err)
	}
}

func Test_commandLine_run(t *testing.T) {
	cli, _, _, _ := setup(t)

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "migrate: memory engine", args: []string{"migrate", "up"}, wantErr: errNoPostgres},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, cli.run(args))
		})
	}
}

func Test_commandLine_migrate(t *testing.T) {
	cli, _, _, _ := setup(t)
	cli.db = new(sql.DB) // never used by the mocked runner

	var gotCommand string
	gooseRunFunc = func(ctx context.Context, db *sql.DB, command string, args ...string) error {
		gotCommand = command
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to":
			if len(args) == 0 {
				return fmt.Errorf("up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		case "down-to":
			if len(args) == 0 {
				return fmt.Errorf("down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "down-to: non-int arg", args: []string{"migrate", "down-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "up", args: []string{"migrate", "up"}, extra: "up"},
		{name: "up-by-one", args: []string{"migrate", "up-by-one"}, extra: "up-by-one"},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}, extra: "up-to"},
		{name: "down", args: []string{"migrate", "down"}, extra: "down"},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}, extra: "down-to"},
		{name: "redo", args: []string{"migrate", "redo"}, extra: "redo"},
		{name: "reset", args: []string{"migrate", "reset"}, extra: "reset"},
		{name: "status", args: []string{"migrate", "status"}, extra: "status"},
		{name: "version", args: []string{"migrate", "version"}, extra: "version"},
		{name: "create", args: []string{"migrate", "create", "course", "sql"}, extra: "create"},
		{name: "fix", args: []string{"migrate", "fix"}, extra: "fix"},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			gotCommand = ""
			tt.check(t, cli.run(args))
			if want, ok := tt.extra.(string); ok {
				assert.Equal(t, want, gotCommand)
			}
		})
	}
}

func Test_commandLine_mark(t *testing.T) {
	cli, c, mailer, out := setup(t)

	tests := []cliTest{
		{name: "no args", args: []string{"mark"}, wantErr: errHelp},
		{name: "unknown flag", args: []string{"mark", "-lol"}, wantErr: errHelp},
		{
			name:    "unknown student",
			args:    []string{"mark", "-student", "nobody", "-class", testutil.MathClassID, "-date", "2024-01-03", "-status", "present", "-by", "t1"},
			wantErr: school.ErrNotFound,
		},
		{
			name:    "unknown class",
			args:    []string{"mark", "-student", testutil.BarakaID, "-class", "nope", "-date", "2024-01-03", "-status", "present", "-by", "t1"},
			wantErr: school.ErrClassNotFound,
		},
		{
			name:    "invalid status",
			args:    []string{"mark", "-student", testutil.BarakaID, "-class", testutil.MathClassID, "-date", "2024-01-03", "-status", "sick", "-by", "t1"},
			invalid: true,
		},
		{
			name: "mark by student id",
			args: []string{"mark", "-student", testutil.BarakaID, "-class", testutil.MathClassID, "-date", "2024-01-03", "-status", "present", "-by", "t1"},
		},
		{
			name: "overwrite by register number",
			args: []string{"mark", "-register", "R002", "-class", testutil.MathClassID, "-date", "2024-01-03", "-status", "late", "-method", "qr", "-by", "scanner"},
		},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, cli.run(args))
		})
	}

	recs := c.MemDB.AttendanceRecords()
	require.Len(t, recs, 1)
	assert.Equal(t, attendance.StatusLate, recs[0].Status)
	assert.Equal(t, attendance.MethodQR, recs[0].Method)
	assert.Equal(t, "scanner", recs[0].MarkedBy)
	assert.Len(t, mailer.SentMessages(), 2)
	assert.Contains(t, out.String(), testutil.BarakaID+" marked late for class "+testutil.MathClassID+" on 2024-01-03")
}

func Test_commandLine_report(t *testing.T) {
	cli, c, _, out := setup(t)
	testutil.CreatePayment(c.MemDB, "pay-1", testutil.AmaniID, testutil.MathClassID, 1, 2024, 50, payment.StatusPaid, testutil.Date(2024, 1, 5))

	for _, args := range [][]string{
		{"mark", "-student", testutil.AmaniID, "-class", testutil.MathClassID, "-date", "2024-01-03", "-status", "present", "-by", "t1"},
		{"mark", "-student", testutil.BarakaID, "-class", testutil.MathClassID, "-date", "2024-01-03", "-status", "absent", "-by", "t1"},
	} {
		require.NoError(t, cli.run(append([]string{"admin"}, args...)))
	}

	tests := []cliTest{
		{name: "no args", args: []string{"report"}, wantErr: errHelp},
		{name: "no subject", args: []string{"report", "-grade", "10"}, wantErr: errHelp},
		{name: "bad date", args: []string{"report", "-grade", "10", "-subject", "math", "-start", "lol", "-end", "2024-01-31"}, wantErrStr: "cannot parse \"lol\""},
		{name: "bad range", args: []string{"report", "-grade", "10", "-subject", "math", "-range", "decade"}, wantErr: report.ErrInvalidTimeRange},
		{name: "bad month", args: []string{"report", "-grade", "10", "-subject", "math", "-month", "13", "-year", "2024"}, wantErr: payment.ErrInvalidPeriod},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, cli.run(args))
		})
	}

	t.Run("report", func(t *testing.T) {
		out.Reset()
		err := cli.run([]string{"admin", "report", "-grade", "10", "-subject", "MATH", "-start", "2024-01-01", "-end", "2024-01-31", "-month", "1", "-year", "2024"})
		require.NoError(t, err)

		var rep report.Report
		require.NoError(t, json.Unmarshal(out.Bytes(), &rep))
		assert.Equal(t, "Math", rep.Subject)
		require.Len(t, rep.Students, 2)
		assert.Equal(t, testutil.AmaniID, rep.Students[0].StudentID)
		assert.Equal(t, payment.StatusPaid, rep.Students[0].Payment.Status)
		assert.Equal(t, float64(100), rep.Students[0].Attendance.AttendanceRate)
		assert.Equal(t, testutil.BarakaID, rep.Students[1].StudentID)
		assert.Equal(t, payment.StatusPending, rep.Students[1].Payment.Status)
		assert.Equal(t, float64(50), rep.Summary.OverallAttendanceRate)
		assert.Equal(t, 1, rep.PaymentSummary.Paid)
		assert.Equal(t, float64(100), rep.PaymentSummary.TotalMonthlyRevenue)
	})
}
