package company

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	settings Settings
	holidays map[uuid.UUID]Holiday
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		settings: Settings{ID: uuid.New(), RetentionYears: 5},
		holidays: make(map[uuid.UUID]Holiday),
	}
}

func (m *memoryStore) GetSettings(ctx context.Context) (Settings, error) {
	return m.settings, nil
}

func (m *memoryStore) UpdateSettings(ctx context.Context, id uuid.UUID, in UpdateSettingsInput) (Settings, error) {
	if id != m.settings.ID {
		return Settings{}, ErrNotFound
	}
	m.settings.RequireSelfie = in.RequireSelfie
	m.settings.GeofenceRadiusKM = in.GeofenceRadiusKM
	m.settings.RetentionYears = in.RetentionYears
	m.settings.NotifyManagerOnLate = in.NotifyManagerOnLate
	return m.settings, nil
}

func (m *memoryStore) ListHolidays(ctx context.Context, year int) ([]Holiday, error) {
	var result []Holiday
	for _, h := range m.holidays {
		if h.Date.Year() == year {
			result = append(result, h)
		}
	}
	return result, nil
}

func (m *memoryStore) CreateHoliday(ctx context.Context, in CreateHolidayInput) (Holiday, error) {
	for _, h := range m.holidays {
		if h.Date.Equal(in.Date) {
			return Holiday{}, ErrDuplicateHoliday
		}
	}
	h := Holiday{ID: uuid.New(), Date: in.Date, Description: in.Description, National: in.National}
	m.holidays[h.ID] = h
	return h, nil
}

func (m *memoryStore) DeleteHoliday(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.holidays[id]; !ok {
		return ErrNotFound
	}
	delete(m.holidays, id)
	return nil
}

func TestUpdateSettings(t *testing.T) {
	store := newMemoryStore()
	svc := NewService(store)
	ctx := context.Background()

	updated, err := svc.UpdateSettings(ctx, UpdateSettingsInput{
		RequireSelfie:    true,
		GeofenceRadiusKM: 1.5,
		RetentionYears:   7,
	})
	require.NoError(t, err)
	require.True(t, updated.RequireSelfie)
	require.Equal(t, 7, updated.RetentionYears)

	_, err = svc.UpdateSettings(ctx, UpdateSettingsInput{GeofenceRadiusKM: -1, RetentionYears: 5})
	require.Error(t, err)

	_, err = svc.UpdateSettings(ctx, UpdateSettingsInput{RetentionYears: 0})
	require.Error(t, err)
}

func TestHolidays(t *testing.T) {
	store := newMemoryStore()
	svc := NewService(store)
	svc.now = func() time.Time { return time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	christmas := time.Date(2025, time.December, 25, 0, 0, 0, 0, time.UTC)
	created, err := svc.AddHoliday(ctx, CreateHolidayInput{Date: christmas, Description: "Christmas", National: true})
	require.NoError(t, err)

	_, err = svc.AddHoliday(ctx, CreateHolidayInput{Date: christmas, Description: "Duplicate"})
	require.ErrorIs(t, err, ErrDuplicateHoliday)

	_, err = svc.AddHoliday(ctx, CreateHolidayInput{Description: "no date"})
	require.Error(t, err)

	_, err = svc.AddHoliday(ctx, CreateHolidayInput{Date: christmas.AddDate(0, 0, 1)})
	require.Error(t, err, "description required")

	listed, err := svc.Holidays(ctx, 0)
	require.NoError(t, err)
	require.Len(t, listed, 1, "zero year defaults to current year")

	require.NoError(t, svc.RemoveHoliday(ctx, created.ID))
	require.ErrorIs(t, svc.RemoveHoliday(ctx, created.ID), ErrNotFound)
}
