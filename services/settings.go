package services

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sattawala/sattawala-backend/models"
	"github.com/sattawala/sattawala-backend/utils/money"

	"gorm.io/gorm"
)

var ErrInvalidSettings = errors.New("invalid settings")

// Platform defaults, applied when the singleton row is first created:
// active, ₹10 min bet, ₹10000 max bet, 10x payout, maintenance off.
const (
	DefaultMinBet           = 10_00     // paise
	DefaultMaxBet           = 10_000_00 // paise
	DefaultPayoutMultiplier = 10.0
)

const settingsCacheTTL = 5 * time.Second

var (
	settingsCache   *models.PlatformSettings
	settingsCacheAt time.Time
	settingsMu      sync.Mutex
)

// GetSettings returns the singleton settings row through a short-TTL cache.
// The read path (bounds display, round lookup) tolerates staleness up to the
// TTL; anything that mutates money reads fresh inside its transaction via
// fetchSettings instead.
func GetSettings(db *gorm.DB) (*models.PlatformSettings, error) {
	settingsMu.Lock()
	defer settingsMu.Unlock()

	if settingsCache != nil && time.Since(settingsCacheAt) < settingsCacheTTL {
		copied := *settingsCache
		return &copied, nil
	}

	settings, err := fetchSettings(db)
	if err != nil {
		return nil, err
	}
	settingsCache = settings
	settingsCacheAt = time.Now()
	copied := *settings
	return &copied, nil
}

// InvalidateSettingsCache drops the cached row after any settings mutation.
func InvalidateSettingsCache() {
	settingsMu.Lock()
	settingsCache = nil
	settingsMu.Unlock()
}

// fetchSettings loads the singleton row, creating it lazily with defaults.
func fetchSettings(tx *gorm.DB) (*models.PlatformSettings, error) {
	var settings models.PlatformSettings
	err := tx.First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		settings = models.PlatformSettings{
			IsActive:         true,
			MinBet:           DefaultMinBet,
			MaxBet:           DefaultMaxBet,
			PayoutMultiplier: DefaultPayoutMultiplier,
			MaintenanceMode:  false,
		}
		if err := tx.Create(&settings).Error; err != nil {
			return nil, err
		}
		return &settings, nil
	}
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

// SettingsUpdate carries the recognized admin-updatable keys; nil fields are
// left untouched. Bet bounds arrive in rupees from the API.
type SettingsUpdate struct {
	IsActive         *bool    `json:"isActive"`
	MinBet           *float64 `json:"minBet"`
	MaxBet           *float64 `json:"maxBet"`
	PayoutMultiplier *float64 `json:"payoutMultiplier"`
	MaintenanceMode  *bool    `json:"maintenanceMode"`
}

// UpdateSettings applies the recognized keys and invalidates the cache.
func UpdateSettings(db *gorm.DB, in SettingsUpdate) (*models.PlatformSettings, error) {
	var settings *models.PlatformSettings
	err := db.Transaction(func(tx *gorm.DB) error {
		s, err := fetchSettings(tx)
		if err != nil {
			return err
		}
		if in.IsActive != nil {
			s.IsActive = *in.IsActive
		}
		if in.MinBet != nil {
			p, ok := money.ToPaise(*in.MinBet)
			if !ok {
				return fmt.Errorf("%w: minBet has sub-paisa precision", ErrInvalidSettings)
			}
			s.MinBet = p
		}
		if in.MaxBet != nil {
			p, ok := money.ToPaise(*in.MaxBet)
			if !ok {
				return fmt.Errorf("%w: maxBet has sub-paisa precision", ErrInvalidSettings)
			}
			s.MaxBet = p
		}
		if in.PayoutMultiplier != nil {
			s.PayoutMultiplier = *in.PayoutMultiplier
		}
		if in.MaintenanceMode != nil {
			s.MaintenanceMode = *in.MaintenanceMode
		}
		// Settlement pays amount x multiplier and the wallet only moves
		// positive sums, so bad values must be stopped here.
		if s.PayoutMultiplier <= 0 {
			return fmt.Errorf("%w: payout multiplier must be positive", ErrInvalidSettings)
		}
		if s.MinBet <= 0 || s.MaxBet < s.MinBet {
			return fmt.Errorf("%w: bet bounds must satisfy 0 < min <= max", ErrInvalidSettings)
		}
		if err := tx.Save(s).Error; err != nil {
			return err
		}
		settings = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	InvalidateSettingsCache()
	return settings, nil
}
