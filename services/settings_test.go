package services

import (
	"testing"

	"github.com/sattawala/sattawala-backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsCreatedLazilyWithDefaults(t *testing.T) {
	db := testDB(t)

	settings, err := GetSettings(db)
	require.NoError(t, err)

	assert.True(t, settings.IsActive)
	assert.False(t, settings.MaintenanceMode)
	assert.Equal(t, int64(DefaultMinBet), settings.MinBet)
	assert.Equal(t, int64(DefaultMaxBet), settings.MaxBet)
	assert.Equal(t, DefaultPayoutMultiplier, settings.PayoutMultiplier)
	assert.Nil(t, settings.CurrentRoundID)

	// Only ever one row.
	_, err = GetSettings(db)
	require.NoError(t, err)
	var count int64
	require.NoError(t, db.Model(&models.PlatformSettings{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestUpdateSettingsPartial(t *testing.T) {
	db := testDB(t)

	multiplier := 9.5
	maintenance := true
	minBet := 20.0
	updated, err := UpdateSettings(db, SettingsUpdate{
		PayoutMultiplier: &multiplier,
		MaintenanceMode:  &maintenance,
		MinBet:           &minBet,
	})
	require.NoError(t, err)

	assert.Equal(t, 9.5, updated.PayoutMultiplier)
	assert.True(t, updated.MaintenanceMode)
	assert.Equal(t, int64(20_00), updated.MinBet)
	// Untouched fields keep their defaults.
	assert.True(t, updated.IsActive)
	assert.Equal(t, int64(DefaultMaxBet), updated.MaxBet)

	// Cache was invalidated, reads see the new values.
	settings, err := GetSettings(db)
	require.NoError(t, err)
	assert.Equal(t, 9.5, settings.PayoutMultiplier)
}

func TestUpdateSettingsRejectsBadValues(t *testing.T) {
	db := testDB(t)

	floatPtr := func(v float64) *float64 { return &v }
	for name, in := range map[string]SettingsUpdate{
		"negative multiplier": {PayoutMultiplier: floatPtr(-5)},
		"zero multiplier":     {PayoutMultiplier: floatPtr(0)},
		"negative min bet":    {MinBet: floatPtr(-10)},
		"zero min bet":        {MinBet: floatPtr(0)},
		"min above max":       {MinBet: floatPtr(500), MaxBet: floatPtr(100)},
		"sub-paisa min bet":   {MinBet: floatPtr(10.001)},
	} {
		_, err := UpdateSettings(db, in)
		assert.ErrorIs(t, err, ErrInvalidSettings, name)
	}

	// Nothing stuck: the stored row still carries the defaults.
	settings, err := GetSettings(db)
	require.NoError(t, err)
	assert.Equal(t, int64(DefaultMinBet), settings.MinBet)
	assert.Equal(t, int64(DefaultMaxBet), settings.MaxBet)
	assert.Equal(t, DefaultPayoutMultiplier, settings.PayoutMultiplier)
}
