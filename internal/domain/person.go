package domain

import (
	"fmt"
	"strings"
	"time"
)

// Person is a tracked account and its streak summary.
type Person struct {
	ID                 int64      `db:"id"`
	Login              string     `db:"login"`
	Location           *string    `db:"location"`
	TimeZone           *string    `db:"time_zone"`
	ETag               *string    `db:"etag"`
	Disabled           bool       `db:"disabled"`
	StreakStart        *time.Time `db:"streak_start"`
	StreakEnd          *time.Time `db:"streak_end"`
	CurrentStreak      *int       `db:"current_streak"`
	LongestStreak      *int       `db:"longest_streak"`
	LongestStreakStart *time.Time `db:"longest_streak_start"`
	LongestStreakEnd   *time.Time `db:"longest_streak_end"`
	CreatedAt          time.Time  `db:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at"`
}

// NormalizeLogin lower-cases a login; blank logins normalize to "".
func NormalizeLogin(login string) string {
	return strings.ToLower(strings.TrimSpace(login))
}

// NewPerson returns an unsaved person for login.
func NewPerson(login string) (*Person, error) {
	l := NormalizeLogin(login)
	if l == "" {
		return nil, ErrInvalidLogin
	}
	return &Person{Login: l}, nil
}

func (p *Person) LocationString() string {
	if p.Location == nil {
		return ""
	}
	return *p.Location
}

func (p *Person) TimeZoneName() string {
	if p.TimeZone == nil || *p.TimeZone == "" {
		return "UTC"
	}
	return *p.TimeZone
}

func (p *Person) ETagString() string {
	if p.ETag == nil {
		return ""
	}
	return *p.ETag
}

func (p *Person) LongestStreakDays() int {
	if p.LongestStreak == nil {
		return 0
	}
	return *p.LongestStreak
}

func (p *Person) CurrentStreakDays() int {
	if p.CurrentStreak == nil {
		return 0
	}
	return *p.CurrentStreak
}

// OpenStreak returns the stored open streak.
func (p *Person) OpenStreak() *Streak {
	return NewStreak(p.StreakStart, p.StreakEnd)
}

// ApplyStreaks copies the summary of the scanned segments onto the person.
// The last segment becomes the open streak; the longest one replaces the
// stored record only when strictly longer.
func (p *Person) ApplyStreaks(streaks []*Streak, today time.Time) {
	if len(streaks) == 0 {
		return
	}

	latest := streaks[len(streaks)-1]
	p.StreakStart = latest.Started
	p.StreakEnd = latest.Ended
	current := 0
	if latest.Live(today) {
		current = latest.Days()
	}
	p.CurrentStreak = &current

	highest := streaks[0]
	for _, s := range streaks[1:] {
		if s.Days() > highest.Days() {
			highest = s
		}
	}
	if days := highest.Days(); days > p.LongestStreakDays() {
		p.LongestStreak = &days
		p.LongestStreakStart = highest.Started
		p.LongestStreakEnd = highest.Ended
	}
}

// ClearStreaks resets every summary field.
func (p *Person) ClearStreaks() {
	p.StreakStart = nil
	p.StreakEnd = nil
	p.CurrentStreak = nil
	p.LongestStreak = nil
	p.LongestStreakStart = nil
	p.LongestStreakEnd = nil
}

// LongestStreakURL links to the calendar month where the longest streak
// began, or to the person's page when there is none.
func (p *Person) LongestStreakURL() string {
	if p.LongestStreakStart == nil || p.LongestStreakEnd == nil {
		return "/~" + p.Login
	}
	return fmt.Sprintf("/~%s/%d/%d", p.Login, p.LongestStreakStart.Year(), int(p.LongestStreakStart.Month()))
}

// TimeLeft formats how long remains until midnight in loc.
func TimeLeft(now time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	y, m, d := local.Date()
	tomorrow := time.Date(y, m, d+1, 0, 0, 0, 0, loc)
	left := tomorrow.Sub(local)
	hours := int(left.Hours())
	minutes := int(left.Minutes()) - hours*60
	return fmt.Sprintf("%d h, %d min", hours, minutes)
}
