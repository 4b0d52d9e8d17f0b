package timeclock

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	punches []Punch
}

func (m *memoryStore) CreatePunch(ctx context.Context, in RegisterInput, instant time.Time) (Punch, error) {
	p := Punch{
		ID:        uuid.New(),
		UserID:    in.UserID,
		Instant:   instant,
		Kind:      in.Kind,
		Method:    in.Method,
		Location:  in.Location,
		PhotoRef:  in.PhotoRef,
		Note:      in.Note,
		CreatedAt: instant,
	}
	m.punches = append(m.punches, p)
	return p, nil
}

func (m *memoryStore) GetPunch(ctx context.Context, id uuid.UUID) (Punch, error) {
	for _, p := range m.punches {
		if p.ID == id {
			return p, nil
		}
	}
	return Punch{}, ErrNotFound
}

func (m *memoryStore) ListPunches(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]Punch, error) {
	var result []Punch
	for _, p := range m.punches {
		if p.UserID == userID && !p.Instant.Before(from) && p.Instant.Before(to) {
			result = append(result, p)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Instant.Before(result[j].Instant) })
	return result, nil
}

func (m *memoryStore) UpdateInstant(ctx context.Context, id uuid.UUID, instant time.Time) (bool, error) {
	for i, p := range m.punches {
		if p.ID == id {
			m.punches[i].Instant = instant
			return true, nil
		}
	}
	return false, nil
}

var testLoc = func() *time.Location {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		panic(err)
	}
	return loc
}()

func newTestService(now time.Time) (*Service, *memoryStore) {
	store := &memoryStore{}
	svc := NewService(store, testLoc)
	svc.WithNow(func() time.Time { return now })
	return svc, store
}

func TestRegister(t *testing.T) {
	now := time.Date(2025, time.March, 3, 8, 0, 0, 0, testLoc)
	svc, store := newTestService(now)
	userID := uuid.New()

	punch, err := svc.Register(context.Background(), RegisterInput{
		UserID: userID,
		Kind:   KindIn,
		Method: MethodApp,
	})
	require.NoError(t, err)
	require.True(t, punch.Instant.Equal(now))
	require.Len(t, store.punches, 1)
}

func TestRegisterValidation(t *testing.T) {
	now := time.Date(2025, time.March, 3, 8, 0, 0, 0, testLoc)
	svc, _ := newTestService(now)

	_, err := svc.Register(context.Background(), RegisterInput{
		UserID: uuid.Nil,
		Kind:   KindIn,
	})
	require.Error(t, err)

	_, err = svc.Register(context.Background(), RegisterInput{
		UserID: uuid.New(),
		Kind:   PunchKind("sideways"),
	})
	require.Error(t, err)

	_, err = svc.Register(context.Background(), RegisterInput{
		UserID: uuid.New(),
		Kind:   KindOut,
		Method: CaptureMethod("telepathy"),
	})
	require.Error(t, err)
}

func TestNextActionAlternates(t *testing.T) {
	now := time.Date(2025, time.March, 3, 8, 0, 0, 0, testLoc)
	svc, _ := newTestService(now)
	userID := uuid.New()

	next, err := svc.NextAction(context.Background(), userID)
	require.NoError(t, err)
	require.Equal(t, KindIn, next, "empty day starts with in")

	_, err = svc.Register(context.Background(), RegisterInput{UserID: userID, Kind: KindIn})
	require.NoError(t, err)

	next, err = svc.NextAction(context.Background(), userID)
	require.NoError(t, err)
	require.Equal(t, KindOut, next)

	clockedIn, err := svc.ClockedIn(context.Background(), userID)
	require.NoError(t, err)
	require.True(t, clockedIn)

	_, err = svc.Register(context.Background(), RegisterInput{UserID: userID, Kind: KindOut})
	require.NoError(t, err)

	next, err = svc.NextAction(context.Background(), userID)
	require.NoError(t, err)
	require.Equal(t, KindIn, next)

	clockedIn, err = svc.ClockedIn(context.Background(), userID)
	require.NoError(t, err)
	require.False(t, clockedIn)
}

func TestTodayPunchesScopedToLocalDay(t *testing.T) {
	now := time.Date(2025, time.March, 3, 10, 0, 0, 0, testLoc)
	svc, store := newTestService(now)
	userID := uuid.New()

	yesterday := Punch{
		ID:      uuid.New(),
		UserID:  userID,
		Instant: time.Date(2025, time.March, 2, 23, 50, 0, 0, testLoc),
		Kind:    KindIn,
	}
	today := Punch{
		ID:      uuid.New(),
		UserID:  userID,
		Instant: time.Date(2025, time.March, 3, 0, 10, 0, 0, testLoc),
		Kind:    KindOut,
	}
	store.punches = append(store.punches, yesterday, today)

	punches, err := svc.TodayPunches(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, punches, 1)
	require.Equal(t, today.ID, punches[0].ID)
}

func TestMonthPunchesBounds(t *testing.T) {
	now := time.Date(2025, time.March, 15, 10, 0, 0, 0, testLoc)
	svc, store := newTestService(now)
	userID := uuid.New()

	february := Punch{ID: uuid.New(), UserID: userID, Kind: KindIn,
		Instant: time.Date(2025, time.February, 28, 23, 59, 0, 0, testLoc)}
	march := Punch{ID: uuid.New(), UserID: userID, Kind: KindIn,
		Instant: time.Date(2025, time.March, 1, 0, 0, 0, 0, testLoc)}
	april := Punch{ID: uuid.New(), UserID: userID, Kind: KindIn,
		Instant: time.Date(2025, time.April, 1, 0, 0, 0, 0, testLoc)}
	store.punches = append(store.punches, february, march, april)

	punches, err := svc.MonthPunches(context.Background(), userID, now)
	require.NoError(t, err)
	require.Len(t, punches, 1)
	require.Equal(t, march.ID, punches[0].ID)
}
