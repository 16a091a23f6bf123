package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"seinfeld/internal/domain"
)

var errInsert = errors.New("insert failed")

type ProgressServiceTestSuite struct {
	suite.Suite

	store   *memoryStore
	service *ProgressService
	today   time.Time

	user *domain.Person
	newb *domain.Person
}

func (s *ProgressServiceTestSuite) SetupTest() {
	ctx := context.Background()
	s.store = newMemoryStore()
	s.service = NewProgressService(s.store, s.store, s.store, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.today = domain.Date(2008, 1, 3)

	start, end := domain.Date(2007, 12, 30), domain.Date(2007, 12, 31)
	s.user = &domain.Person{
		Login:              "user",
		StreakStart:        &start,
		StreakEnd:          &end,
		CurrentStreak:      intPtr(2),
		LongestStreak:      intPtr(2),
		LongestStreakStart: &start,
		LongestStreakEnd:   &end,
	}
	s.Require().NoError(s.store.Save(ctx, s.user))
	s.store.record(s.user.ID, domain.Date(2006, 12, 30), start, end)

	s.newb = &domain.Person{Login: "newb"}
	s.Require().NoError(s.store.Save(ctx, s.newb))
}

func TestProgressServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ProgressServiceTestSuite))
}

func intPtr(n int) *int { return &n }

func dayList(dates ...time.Time) []time.Time { return dates }

func (s *ProgressServiceTestSuite) assertStreaks(p *domain.Person, longest int, longestStart, longestEnd time.Time, current int) {
	s.Require().NotNil(p.LongestStreak)
	s.Equal(longest, *p.LongestStreak)
	s.Equal(longestStart, *p.LongestStreakStart)
	s.Equal(longestEnd, *p.LongestStreakEnd)
	s.Require().NotNil(p.CurrentStreak)
	s.Equal(current, *p.CurrentStreak)
}

func (s *ProgressServiceTestSuite) TestUpdateProgress_NewPersonKeepsStreak() {
	ctx := context.Background()

	newDays, err := s.service.UpdateProgress(ctx, s.newb,
		dayList(domain.Date(2007, 12, 31), domain.Date(2008, 1, 1), domain.Date(2008, 1, 2)), s.today)

	s.NoError(err)
	s.Len(newDays, 3)
	s.assertStreaks(s.newb, 3, domain.Date(2007, 12, 31), domain.Date(2008, 1, 2), 3)
	s.Equal(domain.Date(2007, 12, 31), *s.newb.StreakStart)
	s.Equal(domain.Date(2008, 1, 2), *s.newb.StreakEnd)
}

func (s *ProgressServiceTestSuite) TestUpdateProgress_NewPersonBreaksStreak() {
	ctx := context.Background()

	_, err := s.service.UpdateProgress(ctx, s.newb,
		dayList(domain.Date(2007, 12, 31), domain.Date(2008, 1, 1)), s.today)

	s.NoError(err)
	s.assertStreaks(s.newb, 2, domain.Date(2007, 12, 31), domain.Date(2008, 1, 1), 0)
}

func (s *ProgressServiceTestSuite) TestUpdateProgress_ExtendsStoredStreak() {
	ctx := context.Background()

	newDays, err := s.service.UpdateProgress(ctx, s.user,
		dayList(domain.Date(2007, 12, 31), domain.Date(2008, 1, 1), domain.Date(2008, 1, 2)), s.today)

	s.NoError(err)
	s.Equal(dayList(domain.Date(2008, 1, 1), domain.Date(2008, 1, 2)), newDays)
	s.assertStreaks(s.user, 4, domain.Date(2007, 12, 30), domain.Date(2008, 1, 2), 4)
}

func (s *ProgressServiceTestSuite) TestUpdateProgress_BreaksStoredStreak() {
	ctx := context.Background()

	_, err := s.service.UpdateProgress(ctx, s.user,
		dayList(domain.Date(2007, 12, 31), domain.Date(2008, 1, 1)), s.today)

	s.NoError(err)
	s.assertStreaks(s.user, 3, domain.Date(2007, 12, 30), domain.Date(2008, 1, 1), 0)
}

func (s *ProgressServiceTestSuite) TestUpdateProgress_StartsNewStreak() {
	ctx := context.Background()

	_, err := s.service.UpdateProgress(ctx, s.user,
		dayList(domain.Date(2007, 12, 31), domain.Date(2008, 1, 2)), s.today)

	s.NoError(err)
	s.assertStreaks(s.user, 2, domain.Date(2007, 12, 30), domain.Date(2007, 12, 31), 1)
	s.Equal(domain.Date(2008, 1, 2), *s.user.StreakStart)
	s.Equal(domain.Date(2008, 1, 2), *s.user.StreakEnd)
}

func (s *ProgressServiceTestSuite) TestUpdateProgress_UnsortedInput() {
	ctx := context.Background()

	_, err := s.service.UpdateProgress(ctx, s.newb,
		dayList(domain.Date(2008, 1, 2), domain.Date(2007, 12, 31), domain.Date(2008, 1, 1)), s.today)

	s.NoError(err)
	s.assertStreaks(s.newb, 3, domain.Date(2007, 12, 31), domain.Date(2008, 1, 2), 3)
}

func (s *ProgressServiceTestSuite) TestUpdateProgress_Idempotent() {
	ctx := context.Background()
	input := dayList(domain.Date(2007, 12, 31), domain.Date(2008, 1, 1), domain.Date(2008, 1, 2))

	_, err := s.service.UpdateProgress(ctx, s.user, input, s.today)
	s.Require().NoError(err)
	first := *s.user
	recorded := len(s.store.days[s.user.ID])

	newDays, err := s.service.UpdateProgress(ctx, s.user, input, s.today)

	s.NoError(err)
	s.Empty(newDays)
	s.Equal(recorded, len(s.store.days[s.user.ID]))
	s.Equal(*first.LongestStreak, *s.user.LongestStreak)
	s.Equal(*first.CurrentStreak, *s.user.CurrentStreak)
	s.Equal(*first.StreakStart, *s.user.StreakStart)
	s.Equal(*first.StreakEnd, *s.user.StreakEnd)
}

func (s *ProgressServiceTestSuite) TestUpdateProgress_RecordsEachDayOnce() {
	ctx := context.Background()

	newDays, err := s.service.UpdateProgress(ctx, s.newb,
		dayList(domain.Date(2008, 1, 1), domain.Date(2008, 1, 1), domain.Date(2008, 1, 2)), s.today)

	s.NoError(err)
	s.Len(newDays, 2)
	s.Len(s.store.days[s.newb.ID], 2)
}

func (s *ProgressServiceTestSuite) TestUpdateProgress_RollsBackOnInsertFailure() {
	ctx := context.Background()
	s.store.failInsertOn = "2008-01-02"

	_, err := s.service.UpdateProgress(ctx, s.newb,
		dayList(domain.Date(2008, 1, 1), domain.Date(2008, 1, 2)), s.today)

	s.ErrorIs(err, errInsert)
	s.Empty(s.store.days[s.newb.ID])
}

func (s *ProgressServiceTestSuite) TestUpdateProgress_SavesPerson() {
	ctx := context.Background()

	_, err := s.service.UpdateProgress(ctx, s.newb, dayList(domain.Date(2008, 1, 2)), s.today)
	s.Require().NoError(err)

	stored, err := s.store.GetByLogin(ctx, "newb")
	s.Require().NoError(err)
	s.Equal(1, *stored.CurrentStreak)
	s.Equal(1, *stored.LongestStreak)
}

func (s *ProgressServiceTestSuite) TestClearProgress() {
	ctx := context.Background()

	s.NoError(s.service.ClearProgress(ctx, s.user))

	s.Empty(s.store.days[s.user.ID])
	s.Nil(s.user.StreakStart)
	s.Nil(s.user.StreakEnd)
	s.Nil(s.user.CurrentStreak)
	s.Nil(s.user.LongestStreak)
	s.Nil(s.user.LongestStreakStart)
	s.Nil(s.user.LongestStreakEnd)
}

func (s *ProgressServiceTestSuite) TestFixProgress_StreakEndedBeforeYesterday() {
	ctx := context.Background()
	s.user.CurrentStreak = intPtr(5)

	s.NoError(s.service.FixProgress(ctx, s.user, s.today))

	s.Equal(domain.Date(2007, 12, 30), *s.user.StreakStart)
	s.Equal(domain.Date(2007, 12, 31), *s.user.StreakEnd)
	s.Equal(0, *s.user.CurrentStreak)
}

func (s *ProgressServiceTestSuite) TestFixProgress_StreakEndsToday() {
	ctx := context.Background()
	s.user.CurrentStreak = intPtr(5)

	s.NoError(s.service.FixProgress(ctx, s.user, domain.Date(2007, 12, 31)))

	s.Equal(domain.Date(2007, 12, 30), *s.user.StreakStart)
	s.Equal(domain.Date(2007, 12, 31), *s.user.StreakEnd)
	s.Equal(2, *s.user.CurrentStreak)
}

func (s *ProgressServiceTestSuite) TestFixProgress_NoRecordsLeavesPerson() {
	ctx := context.Background()
	saves := s.store.saves

	s.NoError(s.service.FixProgress(ctx, s.newb, s.today))

	s.Equal(saves, s.store.saves)
	s.Nil(s.newb.StreakStart)
}

func (s *ProgressServiceTestSuite) TestProgressFor() {
	ctx := context.Background()
	s.store.record(s.user.ID, domain.Date(2008, 1, 1), domain.Date(2008, 1, 20), domain.Date(2008, 2, 3))

	january, err := s.service.ProgressFor(ctx, s.user, 2008, time.January, 0)
	s.NoError(err)
	s.Equal(dayList(domain.Date(2008, 1, 1), domain.Date(2008, 1, 20)), january)

	padded, err := s.service.ProgressFor(ctx, s.user, 2008, time.January, 3)
	s.NoError(err)
	s.Equal(dayList(
		domain.Date(2007, 12, 30),
		domain.Date(2007, 12, 31),
		domain.Date(2008, 1, 1),
		domain.Date(2008, 1, 20),
		domain.Date(2008, 2, 3),
	), padded)
}
