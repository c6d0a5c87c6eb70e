package scheduler

import "time"

// NextOccurrence computes the next execution instant for a repeating job,
// or nil when the job should not be rescheduled.
//
// The computed instant is strictly after from for daily and weekly kinds.
// Weekly honors only the first repeat_days entry. Monthly keeps the
// anchor day-of-month, clamping to the last day of shorter months.
// Returns nil for one-off jobs, when end_date would be exceeded, or when
// max_executions has been reached.
func NextOccurrence(job *Job, from time.Time) *time.Time {
	if job.RepeatType == RepeatOnce {
		return nil
	}

	var next time.Time

	switch job.RepeatType {
	case RepeatDaily:
		hour, minute, err := ParseRepeatTime(job.RepeatTime)
		if err != nil {
			return nil
		}
		next = atWallClock(from, hour, minute)
		if !next.After(from) {
			next = next.AddDate(0, 0, 1)
		}

	case RepeatWeekly:
		hour, minute, err := ParseRepeatTime(job.RepeatTime)
		if err != nil {
			return nil
		}
		targetDay := 0
		if len(job.RepeatDays) > 0 {
			targetDay = job.RepeatDays[0]
		}
		offset := (targetDay - int(from.Weekday()) + 7) % 7
		next = atWallClock(from.AddDate(0, 0, offset), hour, minute)
		if !next.After(from) {
			next = next.AddDate(0, 0, 7)
		}

	case RepeatMonthly:
		hour, minute, err := ParseRepeatTime(job.RepeatTime)
		if err != nil {
			return nil
		}
		year, month := from.Year(), from.Month()+1
		// Clamp the anchor day to the target month's length (e.g. a job
		// anchored on the 31st runs on the 30th of a 30-day month)
		day := from.Day()
		if last := daysInMonth(year, month); day > last {
			day = last
		}
		next = time.Date(year, month, day, hour, minute, 0, 0, from.Location())

	case RepeatInterval:
		if job.RepeatInterval < 1 {
			return nil
		}
		next = from.Add(time.Duration(job.RepeatInterval) * time.Minute)

	default:
		return nil
	}

	if job.EndDate != nil && next.After(*job.EndDate) {
		return nil
	}
	if job.MaxExecutions > 0 && job.ExecutionCount >= job.MaxExecutions {
		return nil
	}

	return &next
}

// atWallClock returns t's calendar day at the given wall-clock time
func atWallClock(t time.Time, hour, minute int) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), hour, minute, 0, 0, t.Location())
}

// daysInMonth returns the number of days in the given month.
// time.Date normalizes day 0 of the following month to the month's last day.
func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
