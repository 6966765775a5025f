package notify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/loadlane/loadlane/internal/database/testutil"
	"github.com/loadlane/loadlane/internal/models"
)

func TestPreferenceServiceLazilyCreatesDefaults(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc := NewPreferenceService(db)
	ctx := context.Background()

	prefs := svc.Get(ctx, "user-1")
	require.NotNil(t, prefs)
	require.True(t, prefs.EnablePush)
	require.True(t, prefs.Types[TypeNewMessage].Enabled)
	require.Equal(t,
		[]Channel{ChannelInApp, ChannelPush, ChannelSMS, ChannelEmail},
		prefs.Types[TypeNewMessage].Channels)

	var count int64
	require.NoError(t, db.Model(&models.NotificationPreference{}).Where("user_id = ?", "user-1").Count(&count).Error)
	require.EqualValues(t, 1, count)

	// Second read resolves the stored record, not a fresh default.
	again := svc.Get(ctx, "user-1")
	require.Equal(t, prefs.Types, again.Types)
	require.NoError(t, db.Model(&models.NotificationPreference{}).Where("user_id = ?", "user-1").Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestPreferenceServiceFallsBackOnStorageError(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc := NewPreferenceService(db)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	prefs := svc.Get(context.Background(), "user-1")
	require.NotNil(t, prefs)
	require.True(t, prefs.Types[TypeNewMessage].Enabled)
	require.Len(t, prefs.Types, 1)
	require.Equal(t, []Channel{ChannelInApp, ChannelPush}, prefs.Types[TypeNewMessage].Channels)
}

func TestPreferenceServiceUpdateRoundTrip(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc := NewPreferenceService(db)
	ctx := context.Background()

	prefs := DefaultPreferences("user-1")
	prefs.EnableSMS = false
	prefs.QuietHoursStart = strPtr("22:00")
	prefs.QuietHoursEnd = strPtr("06:00")
	prefs.Timezone = "America/Chicago"
	prefs.Types[TypeETAUpdate] = TypePreference{Enabled: false}

	require.NoError(t, svc.Update(ctx, prefs))

	loaded := svc.Get(ctx, "user-1")
	require.False(t, loaded.EnableSMS)
	require.Equal(t, "22:00", *loaded.QuietHoursStart)
	require.Equal(t, "America/Chicago", loaded.Timezone)
	require.False(t, loaded.Types[TypeETAUpdate].Enabled)

	// Updating again replaces rather than duplicating the row.
	prefs.EnableEmail = false
	require.NoError(t, svc.Update(ctx, prefs))

	var count int64
	require.NoError(t, db.Model(&models.NotificationPreference{}).Where("user_id = ?", "user-1").Count(&count).Error)
	require.EqualValues(t, 1, count)
	require.False(t, svc.Get(ctx, "user-1").EnableEmail)
}

func TestPreferenceServiceUpdateRequiresUserID(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc := NewPreferenceService(db)

	require.Error(t, svc.Update(context.Background(), nil))
	require.Error(t, svc.Update(context.Background(), &Preferences{}))
}

func TestDefaultPreferencesCoverAllTypes(t *testing.T) {
	prefs := DefaultPreferences("user-1")

	for _, typ := range AllTypes() {
		pref, ok := prefs.Types[typ]
		require.True(t, ok, "missing default for %s", typ)
		require.True(t, pref.Enabled)
		require.NotEmpty(t, pref.Channels)
		require.Equal(t, ChannelInApp, pref.Channels[0], "in-app should lead for %s", typ)
	}
}

func TestChannelEnabledToggles(t *testing.T) {
	prefs := &Preferences{EnablePush: true}

	require.True(t, prefs.ChannelEnabled(ChannelPush))
	require.False(t, prefs.ChannelEnabled(ChannelSMS))
	require.False(t, prefs.ChannelEnabled(ChannelEmail))
	require.True(t, prefs.ChannelEnabled(ChannelInApp))
	require.False(t, prefs.ChannelEnabled(Channel("carrier_pigeon")))
}
