package features

import (
	"time"

	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/jp"
)

// A HolidayCalendar tells whether a day is a public holiday.
type HolidayCalendar interface {
	IsHoliday(day time.Time) bool
}

type japanese struct {
	calendar *cal.BusinessCalendar
}

// JapaneseHolidays returns the calendar of the Japanese national holidays, substitute holidays included.
func JapaneseHolidays() HolidayCalendar {
	c := cal.NewBusinessCalendar()
	c.AddHoliday(jp.Holidays...)

	return &japanese{calendar: c}
}

func (j *japanese) IsHoliday(day time.Time) bool {
	actual, observed, _ := j.calendar.IsHoliday(day)
	return actual || observed
}
