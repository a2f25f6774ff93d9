package course

import (
	"time"

	"github.com/trezcool/markaz/core"
)

const (
	// MaxRangeDays bounds the calendar generated at once.
	MaxRangeDays = 366

	labelLayout = "02-Jan"
)

var ErrRangeTooLong = core.NewValidationError(nil, core.FieldError{
	Field: "end_date",
	Error: "date range cannot exceed 366 days",
})

// ClassDays returns every day in [start, end], Sundays excluded, in ascending order.
// start after end yields no days.
func ClassDays(start, end time.Time) ([]time.Time, error) {
	start, end = truncateDay(start), truncateDay(end)
	if start.After(end) {
		return nil, nil
	}
	if span := int(end.Sub(start).Hours()/24) + 1; span > MaxRangeDays {
		return nil, ErrRangeTooLong
	}

	var days []time.Time
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		if day.Weekday() != time.Sunday {
			days = append(days, day)
		}
	}
	return days, nil
}

// Label is the display string of a class day.
func Label(day time.Time) string {
	return day.Format(labelLayout)
}

// Labels parses the ISO bounds of dr and returns the labels of its class days.
func (dr DateRange) Labels() ([]string, error) {
	start, err := core.ParseDate(dr.Start)
	if err != nil {
		return nil, core.NewValidationError(nil, core.FieldError{Field: "start_date", Error: err.Error()})
	}
	end, err := core.ParseDate(dr.End)
	if err != nil {
		return nil, core.NewValidationError(nil, core.FieldError{Field: "end_date", Error: err.Error()})
	}

	days, err := ClassDays(start, end)
	if err != nil {
		return nil, err
	}
	labels := make([]string, 0, len(days))
	for _, day := range days {
		labels = append(labels, Label(day))
	}
	return labels, nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
