package shared

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseMonth(t *testing.T) {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)
	now := func() time.Time {
		return time.Date(2025, time.August, 14, 15, 30, 0, 0, loc)
	}

	cases := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{name: "explicit month", input: "2025-03", want: time.Date(2025, time.March, 1, 0, 0, 0, 0, loc)},
		{name: "empty means current", input: "", want: time.Date(2025, time.August, 1, 0, 0, 0, 0, loc)},
		{name: "december", input: "2024-12", want: time.Date(2024, time.December, 1, 0, 0, 0, 0, loc)},
		{name: "missing zero pad", input: "2025-3", wantErr: true},
		{name: "month thirteen", input: "2025-13", wantErr: true},
		{name: "garbage", input: "march", wantErr: true},
		{name: "full date", input: "2025-03-01", wantErr: true},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMonth(tt.input, loc, now)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidMonth)
				return
			}
			require.NoError(t, err)
			require.True(t, got.Equal(tt.want), "got %v want %v", got, tt.want)
			require.Equal(t, loc, got.Location())
		})
	}
}

func TestParseMonthNilLocation(t *testing.T) {
	got, err := ParseMonth("2025-05", nil, nil)
	require.NoError(t, err)
	require.Equal(t, time.UTC, got.Location())
}
