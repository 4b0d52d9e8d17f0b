package company

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func TestHolidayDateConflictMapping(t *testing.T) {
	duplicate := &pgconn.PgError{Code: "23505", ConstraintName: uqHolidayDate}
	require.True(t, isHolidayDateConflict(duplicate))
	require.True(t, isHolidayDateConflict(fmt.Errorf("create holiday: %w", duplicate)))

	otherConstraint := &pgconn.PgError{Code: "23505", ConstraintName: "uq_profiles_email"}
	require.False(t, isHolidayDateConflict(otherConstraint))
	require.False(t, isHolidayDateConflict(errors.New("connection reset")))
	require.False(t, isHolidayDateConflict(nil))
}
