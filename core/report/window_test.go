package report

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/rollcall/core"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestResolveWindow(t *testing.T) {
	wednesday := time.Date(2024, time.January, 17, 15, 30, 0, 0, time.UTC)
	start, end := date(2024, time.February, 1), date(2024, time.February, 10)

	tests := []struct {
		name      string
		rangeType RangeType
		start     *time.Time
		end       *time.Time
		now       time.Time
		want      Window
		wantErr   bool
	}{
		{name: "week from a wednesday", rangeType: RangeWeek, now: wednesday, want: Window{date(2024, 1, 14), date(2024, 1, 20)}},
		{name: "week from a sunday", rangeType: RangeWeek, now: date(2024, 1, 14), want: Window{date(2024, 1, 14), date(2024, 1, 20)}},
		{name: "week across months", rangeType: RangeWeek, now: date(2024, 3, 1), want: Window{date(2024, 2, 25), date(2024, 3, 2)}},
		{name: "month", rangeType: RangeMonth, now: wednesday, want: Window{date(2024, 1, 1), date(2024, 1, 31)}},
		{name: "leap february", rangeType: RangeMonth, now: date(2024, 2, 10), want: Window{date(2024, 2, 1), date(2024, 2, 29)}},
		{name: "year", rangeType: RangeYear, now: wednesday, want: Window{date(2024, 1, 1), date(2024, 12, 31)}},
		{name: "custom bounds win over range", rangeType: RangeWeek, start: &start, end: &end, now: wednesday, want: Window{start, end}},
		{name: "custom bounds", rangeType: RangeCustom, start: &start, end: &end, now: wednesday, want: Window{start, end}},
		{name: "single-day custom", rangeType: RangeCustom, start: &start, end: &start, now: wednesday, want: Window{start, start}},
		{name: "custom without end", rangeType: RangeCustom, start: &start, now: wednesday, wantErr: true},
		{name: "start after end", rangeType: RangeCustom, start: &end, end: &start, now: wednesday, wantErr: true},
		{name: "unknown range", rangeType: "decade", now: wednesday, wantErr: true},
		{name: "empty range", now: wednesday, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveWindow(tt.rangeType, tt.start, tt.end, tt.now)
			if tt.wantErr {
				assert.True(t, core.IsValidationError(err))
				assert.True(t, errors.Is(err, ErrInvalidTimeRange))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, got.Contains(tt.want.Start) && got.Contains(tt.want.End))
		})
	}
}

func TestWindow_JSON(t *testing.T) {
	w := Window{Start: date(2024, 1, 14), End: date(2024, 1, 20)}

	data, err := json.Marshal(w)
	require.NoError(t, err)
	assert.JSONEq(t, `{"start": "2024-01-14", "end": "2024-01-20"}`, string(data))

	var got Window
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, w, got)
}
