package dataimporter

import (
	"fmt"
	"time"
)

const calendarDateLayout = "20060102"

// ServiceCalendar resolves which services run on a date: regular weekdays
// within the calendar range, minus removed dates, plus added dates.
type ServiceCalendar struct {
	calendars  map[string]Calendar
	exceptions map[string]map[string]int
}

func NewServiceCalendar(calendars []Calendar, dates []CalendarDate) *ServiceCalendar {
	s := &ServiceCalendar{
		calendars:  map[string]Calendar{},
		exceptions: map[string]map[string]int{},
	}
	for _, c := range calendars {
		s.calendars[c.ServiceID] = c
	}
	for _, d := range dates {
		if s.exceptions[d.ServiceID] == nil {
			s.exceptions[d.ServiceID] = map[string]int{}
		}
		s.exceptions[d.ServiceID][d.Date] = d.ExceptionType
	}
	return s
}

// Runs reports whether serviceID runs on date. Rows without a service always run.
func (s *ServiceCalendar) Runs(serviceID string, date time.Time) (bool, error) {
	if serviceID == "" {
		return true, nil
	}

	day := date.Format(calendarDateLayout)
	switch s.exceptions[serviceID][day] {
	case ExceptionAdded:
		return true, nil
	case ExceptionRemoved:
		return false, nil
	}

	calendar, ok := s.calendars[serviceID]
	if !ok {
		return false, nil
	}

	start, err := time.ParseInLocation(calendarDateLayout, calendar.Start, date.Location())
	if err != nil {
		return false, fmt.Errorf("service %s start date: %w", serviceID, err)
	}
	end, err := time.ParseInLocation(calendarDateLayout, calendar.End, date.Location())
	if err != nil {
		return false, fmt.Errorf("service %s end date: %w", serviceID, err)
	}

	midnight := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	if midnight.Before(start) || midnight.After(end) {
		return false, nil
	}
	return calendar.RunsOn(date.Weekday()), nil
}
