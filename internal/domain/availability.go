package domain

// HourBucket is one of four ordinal working-hour ranges an applicant may
// select per available day.
type HourBucket string

const (
	HoursMorning   HourBucket = "8am-12pm"
	HoursAfternoon HourBucket = "12pm-4pm"
	HoursEvening   HourBucket = "4pm-8pm"
	HoursNight     HourBucket = "8pm-12am"
)

// ValidHourBucket reports whether b is one of the four selectable ranges.
func ValidHourBucket(b HourBucket) bool {
	switch b {
	case HoursMorning, HoursAfternoon, HoursEvening, HoursNight:
		return true
	}
	return false
}

// Weekdays lists the selectable availability days in display order.
var Weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// ValidWeekday reports whether day is a selectable weekday value.
func ValidWeekday(day string) bool {
	for _, d := range Weekdays {
		if d == day {
			return true
		}
	}
	return false
}
