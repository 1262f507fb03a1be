package main

import (
	"encoding/json"
	"time"

	"github.com/trezcool/rollcall/core"
	"github.com/trezcool/rollcall/core/report"
)

type reportParams struct {
	grade        int
	subject      string
	rangeType    string
	start, end   string
	month, year  int
}

// report prints the comprehensive report of a cohort as indented JSON.
func (cli *commandLine) report(p reportParams) error {
	req := report.ReportRequest{
		AnalysisRequest: report.AnalysisRequest{
			Grade:     p.grade,
			Subject:   p.subject,
			RangeType: report.RangeType(core.CleanString(p.rangeType, true /* lower */)),
		},
		Month: p.month,
		Year:  p.year,
	}
	var err error
	if req.Start, err = parseOptionalDate(p.start); err != nil {
		return err
	}
	if req.End, err = parseOptionalDate(p.end); err != nil {
		return err
	}

	rep, err := cli.reportBuilder.Build(defaultTimeout(), req)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cli.out)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}

func parseOptionalDate(s string) (*time.Time, error) {
	if core.CleanString(s) == "" {
		return nil, nil
	}
	d, err := core.ParseDate(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
