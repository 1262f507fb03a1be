package report

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/rollcall/core"
)

type RangeType string

const (
	RangeWeek   RangeType = "week"
	RangeMonth  RangeType = "month"
	RangeYear   RangeType = "year"
	RangeCustom RangeType = "custom"
)

var ErrInvalidTimeRange = errors.New("invalid time range")

// Window is an inclusive range of calendar dates.
type Window struct {
	Start time.Time
	End   time.Time
}

func (w Window) Contains(date time.Time) bool {
	d := core.TruncateDate(date)
	return !d.Before(w.Start) && !d.After(w.End)
}

func (w Window) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Start string `json:"start"`
		End   string `json:"end"`
	}{core.FormatDate(w.Start), core.FormatDate(w.End)})
}

func (w *Window) UnmarshalJSON(data []byte) error {
	var raw struct {
		Start string `json:"start"`
		End   string `json:"end"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	start, err := core.ParseDate(raw.Start)
	if err != nil {
		return err
	}
	end, err := core.ParseDate(raw.End)
	if err != nil {
		return err
	}
	*w = Window{Start: start, End: end}
	return nil
}

// ResolveWindow turns a range type into calendar bounds relative to now.
// When both custom bounds are given they win over the range type.
// Weeks run Sunday to Saturday.
func ResolveWindow(rangeType RangeType, start, end *time.Time, now time.Time) (Window, error) {
	if start != nil && end != nil {
		w := Window{Start: core.TruncateDate(*start), End: core.TruncateDate(*end)}
		if w.Start.After(w.End) {
			return Window{}, core.NewValidationError(
				ErrInvalidTimeRange,
				core.FieldError{Field: "start", Error: "start must not be after end"},
			)
		}
		return w, nil
	}

	today := core.TruncateDate(now)
	switch rangeType {
	case RangeWeek:
		first := today.AddDate(0, 0, -int(today.Weekday()))
		return Window{Start: first, End: first.AddDate(0, 0, 6)}, nil
	case RangeMonth:
		first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
		return Window{Start: first, End: first.AddDate(0, 1, -1)}, nil
	case RangeYear:
		return Window{
			Start: time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(today.Year(), time.December, 31, 0, 0, 0, 0, time.UTC),
		}, nil
	case RangeCustom:
		return Window{}, core.NewValidationError(
			ErrInvalidTimeRange,
			core.FieldError{Field: "range", Error: "custom range requires both start and end"},
		)
	default:
		return Window{}, core.NewValidationError(
			ErrInvalidTimeRange,
			core.FieldError{Field: "range", Error: "range must be one of: week month year custom"},
		)
	}
}
