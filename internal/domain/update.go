package domain

import "time"

// UpdateStats holds statistics about one pass over the active persons.
type UpdateStats struct {
	Processed int
	Updated   int
	Disabled  int
	Errors    int
	NewDays   int
	Published int
	Duration  time.Duration
}

// StreakUpdate is the summary published after a successful person update.
type StreakUpdate struct {
	Login         string     `json:"login"`
	NewDays       []string   `json:"new_days"`
	StreakStart   *time.Time `json:"streak_start,omitempty"`
	StreakEnd     *time.Time `json:"streak_end,omitempty"`
	CurrentStreak int        `json:"current_streak"`
	LongestStreak int        `json:"longest_streak"`
}

func NewStreakUpdate(p *Person, newDays []time.Time) *StreakUpdate {
	days := make([]string, len(newDays))
	for i, d := range newDays {
		days[i] = DayKey(d)
	}
	return &StreakUpdate{
		Login:         p.Login,
		NewDays:       days,
		StreakStart:   p.StreakStart,
		StreakEnd:     p.StreakEnd,
		CurrentStreak: p.CurrentStreakDays(),
		LongestStreak: p.LongestStreakDays(),
	}
}
