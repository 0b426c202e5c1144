package errors

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("book: %w", Clone(ErrSlotTaken, "slot already booked"))

	assert.True(t, Is(err, ErrSlotTaken))
	assert.True(t, errors.Is(err, ErrSlotTaken))
	assert.False(t, Is(err, ErrSlotUnavailable))
	assert.False(t, Is(nil, ErrSlotTaken))
}

func TestInternalKeepsCause(t *testing.T) {
	err := Internal(sql.ErrConnDone, "failed to load barber")

	assert.Equal(t, http.StatusInternalServerError, err.Status)
	assert.Equal(t, "INTERNAL_ERROR", err.Code)
	assert.ErrorIs(t, err, sql.ErrConnDone)
	assert.Contains(t, err.Error(), "failed to load barber")
}

func TestFromErrorHidesUnknownErrors(t *testing.T) {
	appErr := FromError(errors.New("dial tcp: refused"))
	require.NotNil(t, appErr)
	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.Equal(t, ErrInternal.Message, appErr.Message)

	assert.Nil(t, FromError(nil))
}

func TestWithDoesNotMutateSentinel(t *testing.T) {
	first := ErrSlotTaken.With("barber_id", "b1")
	second := first.With("date", "2030-01-07T09:00:00Z")

	assert.Nil(t, ErrSlotTaken.Details)
	assert.Equal(t, map[string]interface{}{"barber_id": "b1"}, first.Details)
	assert.Len(t, second.Details, 2)
}

func TestCloneOverridesMessage(t *testing.T) {
	clone := Clone(ErrSlotUnavailable, "date is in the past")
	assert.Equal(t, "date is in the past", clone.Message)
	assert.Equal(t, "slot is not offered", ErrSlotUnavailable.Message)
	assert.Equal(t, http.StatusUnprocessableEntity, clone.Status)

	assert.Equal(t, "slot is not offered", Clone(ErrSlotUnavailable, "").Message)
	assert.Nil(t, Clone(nil, "x"))
}
