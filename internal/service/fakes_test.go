package service

import (
	"context"
	"sort"
	"time"

	"seinfeld/internal/domain"
)

// memoryStore keeps persons and their recorded days in memory. Transactions
// snapshot the days and restore them when fn fails.
type memoryStore struct {
	persons map[string]*domain.Person
	days    map[int64]map[string]time.Time
	saves   int
	nextID  int64

	failInsertOn string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		persons: make(map[string]*domain.Person),
		days:    make(map[int64]map[string]time.Time),
	}
}

func (m *memoryStore) Save(_ context.Context, person *domain.Person) error {
	if person.ID == 0 {
		m.nextID++
		person.ID = m.nextID
	}
	m.saves++
	cp := *person
	m.persons[person.Login] = &cp
	return nil
}

func (m *memoryStore) GetByLogin(_ context.Context, login string) (*domain.Person, error) {
	p, ok := m.persons[login]
	if !ok {
		return nil, domain.ErrPersonNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memoryStore) ListActive(context.Context, int64, int) ([]*domain.Person, error) {
	return nil, nil
}

func (m *memoryStore) ActivateAll(context.Context) (int64, error) { return 0, nil }

func (m *memoryStore) Activate(context.Context, string) error { return nil }

func (m *memoryStore) BestCurrentStreaks(context.Context, int) ([]*domain.Person, error) {
	return nil, nil
}

func (m *memoryStore) BestLongestStreaks(context.Context, int) ([]*domain.Person, error) {
	return nil, nil
}

func (m *memoryStore) record(personID int64, days ...time.Time) {
	for _, d := range days {
		_ = m.Insert(context.Background(), personID, d)
	}
}

func (m *memoryStore) FindExisting(_ context.Context, personID int64, days []time.Time) ([]time.Time, error) {
	var found []time.Time
	for _, d := range days {
		if day, ok := m.days[personID][domain.DayKey(d)]; ok {
			found = append(found, day)
		}
	}
	return found, nil
}

func (m *memoryStore) Insert(_ context.Context, personID int64, day time.Time) error {
	key := domain.DayKey(day)
	if key == m.failInsertOn {
		return errInsert
	}
	if m.days[personID] == nil {
		m.days[personID] = make(map[string]time.Time)
	}
	m.days[personID][key] = domain.Normalize(day)
	return nil
}

func (m *memoryStore) DeleteAll(_ context.Context, personID int64) error {
	delete(m.days, personID)
	return nil
}

func (m *memoryStore) sorted(personID int64) []time.Time {
	days := make([]time.Time, 0, len(m.days[personID]))
	for _, d := range m.days[personID] {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}

func (m *memoryStore) ListDescending(_ context.Context, personID int64) ([]time.Time, error) {
	days := m.sorted(personID)
	for i, j := 0, len(days)-1; i < j; i, j = i+1, j-1 {
		days[i], days[j] = days[j], days[i]
	}
	return days, nil
}

func (m *memoryStore) ListBetween(_ context.Context, personID int64, from, to time.Time) ([]time.Time, error) {
	days := []time.Time{}
	for _, d := range m.sorted(personID) {
		if !d.Before(from) && !d.After(to) {
			days = append(days, d)
		}
	}
	return days, nil
}

func (m *memoryStore) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	snapshot := make(map[int64]map[string]time.Time, len(m.days))
	for id, days := range m.days {
		cp := make(map[string]time.Time, len(days))
		for k, v := range days {
			cp[k] = v
		}
		snapshot[id] = cp
	}

	if err := fn(ctx); err != nil {
		m.days = snapshot
		return err
	}
	return nil
}
