package domain

import "time"

// Streak is one contiguous run of active days. Started and Ended are both
// set or both nil.
type Streak struct {
	Started *time.Time
	Ended   *time.Time
}

// NewStreak restores a streak from stored bounds. A half-set pair is treated
// as empty.
func NewStreak(started, ended *time.Time) *Streak {
	if started == nil || ended == nil {
		return &Streak{}
	}
	s, e := Normalize(*started), Normalize(*ended)
	return &Streak{Started: &s, Ended: &e}
}

// OpenStreak starts a one-day streak at day.
func OpenStreak(day time.Time) *Streak {
	s := &Streak{}
	s.Extend(day)
	return s
}

// Extend moves the end of the streak to day. An empty streak also takes day
// as its start, which is how it becomes a one-day streak.
func (s *Streak) Extend(day time.Time) {
	d := Normalize(day)
	s.Ended = &d
	if s.Started == nil {
		start := d
		s.Started = &start
	}
}

// Days is the inclusive length of the streak, 0 when empty.
func (s *Streak) Days() int {
	if s.Started == nil || s.Ended == nil {
		return 0
	}
	return DaysBetween(*s.Started, *s.Ended) + 1
}

// Current reports whether date extends the streak: any date extends an empty
// streak, otherwise only the day right after Ended does.
func (s *Streak) Current(date time.Time) bool {
	if s.Ended == nil {
		return true
	}
	return SameDay(NextDay(*s.Ended), date)
}

// Live reports whether the streak is still unbroken as of today: it ended
// today or yesterday.
func (s *Streak) Live(today time.Time) bool {
	if s.Ended == nil {
		return false
	}
	return s.Current(today) || SameDay(*s.Ended, today)
}
