package repair

import (
	"errors"
	"testing"

	"github.com/fixdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDevice_Status(t *testing.T) {
	d, err := NewDevice(uuid.New(), "Apple", "iPhone 12", "F2LX")
	require.NoError(t, err)
	assert.Equal(t, DeviceStatusReceived, d.Status)

	require.NoError(t, d.ChangeStatus(DeviceStatusInRepair))
	assert.True(t, d.MarkReturned())
	assert.False(t, d.MarkReturned())

	err = d.ChangeStatus(DeviceStatusInRepair)
	assert.True(t, errors.Is(err, shared.ErrInvalidState))
}

func TestPartUsage_ChangeQuantity(t *testing.T) {
	u, err := NewPartUsage(uuid.New(), uuid.New(), 3, decimal.NewFromInt(45), "tech")
	require.NoError(t, err)

	delta, err := u.ChangeQuantity(5)
	require.NoError(t, err)
	assert.Equal(t, -2, delta)

	delta, err = u.ChangeQuantity(1)
	require.NoError(t, err)
	assert.Equal(t, 4, delta)

	_, err = u.ChangeQuantity(0)
	assert.True(t, errors.Is(err, shared.ErrValidation))
}
