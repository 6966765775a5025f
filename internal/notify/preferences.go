package notify

import (
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/loadlane/loadlane/internal/models"
	apperrors "github.com/loadlane/loadlane/pkg/errors"
	"github.com/loadlane/loadlane/pkg/logger"
)

// TypePreference controls one notification type for one user: whether it is
// enabled at all and which channels to try, in priority order.
type TypePreference struct {
	Enabled  bool      `json:"enabled"`
	Channels []Channel `json:"channels"`
}

// Preferences is the resolved view of one user's notification settings.
type Preferences struct {
	UserID string

	EnablePush  bool
	EnableSMS   bool
	EnableEmail bool

	QuietHoursStart *string
	QuietHoursEnd   *string
	Timezone        string

	Types map[Type]TypePreference
}

// ChannelEnabled reports the user's global toggle for a channel. The in-app
// channel has no toggle and is always on.
func (p *Preferences) ChannelEnabled(ch Channel) bool {
	switch ch {
	case ChannelPush:
		return p.EnablePush
	case ChannelSMS:
		return p.EnableSMS
	case ChannelEmail:
		return p.EnableEmail
	case ChannelInApp:
		return true
	default:
		return false
	}
}

// TypePreferenceFor returns the settings for a type, falling back to a
// disabled entry when the type is unknown to the stored map.
func (p *Preferences) TypePreferenceFor(t Type) TypePreference {
	if pref, ok := p.Types[t]; ok {
		return pref
	}
	return TypePreference{Enabled: false}
}

// DefaultPreferences builds the hardcoded default set: every type enabled
// with a channel list matched to its urgency. Messages reach the user on
// every medium; routine tracking updates stay in-app.
func DefaultPreferences(userID string) *Preferences {
	return &Preferences{
		UserID:      userID,
		EnablePush:  true,
		EnableSMS:   true,
		EnableEmail: true,
		Types: map[Type]TypePreference{
			TypeNewMessage:          {Enabled: true, Channels: []Channel{ChannelInApp, ChannelPush, ChannelSMS, ChannelEmail}},
			TypeLoadAssigned:        {Enabled: true, Channels: []Channel{ChannelInApp, ChannelPush, ChannelSMS}},
			TypeLoadStatusChange:    {Enabled: true, Channels: []Channel{ChannelInApp, ChannelPush}},
			TypeDocumentUploaded:    {Enabled: true, Channels: []Channel{ChannelInApp, ChannelPush}},
			TypeDocumentRequired:    {Enabled: true, Channels: []Channel{ChannelInApp, ChannelPush, ChannelSMS}},
			TypePaymentIssued:       {Enabled: true, Channels: []Channel{ChannelInApp, ChannelPush, ChannelEmail}},
			TypePaymentIssuedDriver: {Enabled: true, Channels: []Channel{ChannelInApp, ChannelPush, ChannelEmail}},
			TypeGeofenceEntry:       {Enabled: true, Channels: []Channel{ChannelInApp, ChannelPush}},
			TypeGeofenceExit:        {Enabled: true, Channels: []Channel{ChannelInApp, ChannelPush}},
			TypeApproachingGeofence: {Enabled: true, Channels: []Channel{ChannelInApp, ChannelPush}},
			TypeDwellTimeAlert:      {Enabled: true, Channels: []Channel{ChannelInApp, ChannelPush, ChannelSMS}},
			TypeETAUpdate:           {Enabled: true, Channels: []Channel{ChannelInApp}},
			TypeDelayAlert:          {Enabled: true, Channels: []Channel{ChannelInApp, ChannelPush, ChannelSMS}},
			TypeDeliveryComplete:    {Enabled: true, Channels: []Channel{ChannelInApp, ChannelPush, ChannelEmail}},
			TypeWeatherAlert:        {Enabled: true, Channels: []Channel{ChannelInApp, ChannelPush}},
		},
	}
}

// FallbackPreferences is the minimal in-memory set used when the preference
// store cannot be read at all. Only direct messages get through, on the two
// channels that need no external address.
func FallbackPreferences(userID string) *Preferences {
	return &Preferences{
		UserID:     userID,
		EnablePush: true,
		Types: map[Type]TypePreference{
			TypeNewMessage: {Enabled: true, Channels: []Channel{ChannelInApp, ChannelPush}},
		},
	}
}

// PreferenceService resolves and persists per-user notification settings.
type PreferenceService struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewPreferenceService constructs a PreferenceService.
func NewPreferenceService(db *gorm.DB) *PreferenceService {
	return &PreferenceService{
		db:  db,
		log: logger.WithModule("notify.preferences"),
	}
}

// Get resolves the preferences for a user. A missing record is created with
// defaults; a storage error degrades to the fallback set. It never returns
// an error so a preference-store outage cannot abort a dispatch.
func (s *PreferenceService) Get(ctx context.Context, userID string) *Preferences {
	var record models.NotificationPreference
	err := s.db.WithContext(ctx).Take(&record, "user_id = ?", userID).Error
	if err == nil {
		prefs, decodeErr := preferencesFromModel(&record)
		if decodeErr != nil {
			s.log.Warn("stored preferences unreadable, using defaults",
				zap.String("user_id", userID),
				zap.Error(decodeErr))
			return DefaultPreferences(userID)
		}
		return prefs
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		prefs := DefaultPreferences(userID)
		createErr := s.persist(ctx, prefs)
		if createErr == nil {
			return prefs
		}
		// Another dispatch may have created the row first; prefer its copy.
		if isUniqueConstraintError(createErr) {
			if stored, ok := s.reload(ctx, userID); ok {
				return stored
			}
			return prefs
		}
		s.log.Warn("failed to persist default preferences",
			zap.String("user_id", userID),
			zap.Error(createErr))
		return prefs
	}

	s.log.Error("preference lookup failed, using fallback",
		zap.String("user_id", userID),
		zap.Error(err))
	return FallbackPreferences(userID)
}

// Update replaces the stored preferences for a user.
func (s *PreferenceService) Update(ctx context.Context, prefs *Preferences) error {
	if prefs == nil || prefs.UserID == "" {
		return apperrors.NewBadRequest("preferences require a user id")
	}

	record, err := preferencesToModel(prefs)
	if err != nil {
		return apperrors.Wrap(err, "failed to encode preferences")
	}

	var existing models.NotificationPreference
	lookupErr := s.db.WithContext(ctx).Take(&existing, "user_id = ?", prefs.UserID).Error
	if lookupErr != nil && !errors.Is(lookupErr, gorm.ErrRecordNotFound) {
		return apperrors.Wrap(lookupErr, "failed to load preferences")
	}

	if errors.Is(lookupErr, gorm.ErrRecordNotFound) {
		if createErr := s.db.WithContext(ctx).Create(record).Error; createErr != nil {
			return apperrors.Wrap(createErr, "failed to create preferences")
		}
		return nil
	}

	record.ID = existing.ID
	record.CreatedAt = existing.CreatedAt
	if saveErr := s.db.WithContext(ctx).Save(record).Error; saveErr != nil {
		return apperrors.Wrap(saveErr, "failed to update preferences")
	}
	return nil
}

func (s *PreferenceService) reload(ctx context.Context, userID string) (*Preferences, bool) {
	var record models.NotificationPreference
	if err := s.db.WithContext(ctx).Take(&record, "user_id = ?", userID).Error; err != nil {
		return nil, false
	}
	prefs, err := preferencesFromModel(&record)
	if err != nil {
		return nil, false
	}
	return prefs, true
}

func (s *PreferenceService) persist(ctx context.Context, prefs *Preferences) error {
	record, err := preferencesToModel(prefs)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Create(record).Error
}

func preferencesFromModel(record *models.NotificationPreference) (*Preferences, error) {
	types := make(map[Type]TypePreference)
	if len(record.Types) > 0 {
		if err := json.Unmarshal(record.Types, &types); err != nil {
			return nil, err
		}
	}

	return &Preferences{
		UserID:          record.UserID,
		EnablePush:      record.EnablePush,
		EnableSMS:       record.EnableSMS,
		EnableEmail:     record.EnableEmail,
		QuietHoursStart: record.QuietHoursStart,
		QuietHoursEnd:   record.QuietHoursEnd,
		Timezone:        record.Timezone,
		Types:           types,
	}, nil
}

func preferencesToModel(prefs *Preferences) (*models.NotificationPreference, error) {
	encoded, err := json.Marshal(prefs.Types)
	if err != nil {
		return nil, err
	}

	return &models.NotificationPreference{
		UserID:          prefs.UserID,
		EnablePush:      prefs.EnablePush,
		EnableSMS:       prefs.EnableSMS,
		EnableEmail:     prefs.EnableEmail,
		QuietHoursStart: prefs.QuietHoursStart,
		QuietHoursEnd:   prefs.QuietHoursEnd,
		Timezone:        prefs.Timezone,
		Types:           datatypes.JSON(encoded),
	}, nil
}
