package application_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/subcircle/subcircle/internal/application"
	"github.com/subcircle/subcircle/internal/domain/model"
)

func newNotificationFixture() (*application.NotificationService, *mockNotificationStore, *mockPushStore, *mockNotifier) {
	store := newMockNotificationStore()
	push := newMockPushStore()
	notifier := &mockNotifier{}
	return application.NewNotificationService(store, push, notifier, discardLogger()), store, push, notifier
}

func registerEndpoint(t *testing.T, push *mockPushStore, userID string) {
	t.Helper()
	_, err := push.Upsert(context.Background(), model.WebPushSubscription{
		UserID: userID, Endpoint: "https://push.example/" + userID, P256dhKey: "k", AuthKey: "a",
	})
	require.NoError(t, err)
}

func TestNotificationService_NotifyStoresAndPushes(t *testing.T) {
	svc, store, push, notifier := newNotificationFixture()
	registerEndpoint(t, push, "bob")

	stored, err := svc.Notify(context.Background(), model.Notification{
		UserID:   "bob",
		Type:     "partner_invite",
		Title:    "t",
		Message:  "m",
		Category: model.CategoryPartner,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, stored.ID)
	assert.Len(t, store.created, 1)

	require.Len(t, notifier.calls, 1)
	assert.Equal(t, "bob", notifier.calls[0].Targets[0].UserID)
	assert.Equal(t, stored.ID, notifier.calls[0].N.ID)
}

func TestNotificationService_NotifyValidation(t *testing.T) {
	svc, _, _, _ := newNotificationFixture()

	_, err := svc.Notify(context.Background(), model.Notification{UserID: "bob"})
	assert.ErrorIs(t, err, application.ErrValidation)
}

func TestNotificationService_PushDisabledStillStores(t *testing.T) {
	svc, store, push, notifier := newNotificationFixture()
	registerEndpoint(t, push, "bob")

	prefs := model.DefaultPreferences("bob")
	prefs.PushEnabled = false
	_, err := svc.UpdatePreferences(context.Background(), prefs)
	require.NoError(t, err)

	_, err = svc.Notify(context.Background(), model.Notification{
		UserID: "bob", Type: "x", Title: "t", Message: "m",
	})
	require.NoError(t, err)

	assert.Len(t, store.created, 1)
	assert.Empty(t, notifier.calls)
}

func TestNotificationService_MutedCategorySkipsPush(t *testing.T) {
	svc, store, push, notifier := newNotificationFixture()
	registerEndpoint(t, push, "bob")

	prefs := model.DefaultPreferences("bob")
	prefs.PartnerNotifications = false
	_, err := svc.UpdatePreferences(context.Background(), prefs)
	require.NoError(t, err)

	_, err = svc.Notify(context.Background(), model.Notification{
		UserID: "bob", Type: "x", Title: "t", Message: "m", Category: model.CategoryPartner,
	})
	require.NoError(t, err)
	assert.Len(t, store.created, 1)
	assert.Empty(t, notifier.calls)

	// A security notification is still pushed.
	_, err = svc.Notify(context.Background(), model.Notification{
		UserID: "bob", Type: "x", Title: "t", Message: "m", Category: model.CategorySecurity,
	})
	require.NoError(t, err)
	assert.Len(t, notifier.calls, 1)
}

func TestNotificationService_NoEndpointsNoPush(t *testing.T) {
	svc, _, _, notifier := newNotificationFixture()

	_, err := svc.Notify(context.Background(), model.Notification{
		UserID: "bob", Type: "x", Title: "t", Message: "m",
	})
	require.NoError(t, err)
	assert.Empty(t, notifier.calls)
}

func TestNotificationService_PreferencesDefaults(t *testing.T) {
	svc, _, _, _ := newNotificationFixture()

	prefs, err := svc.Preferences(context.Background(), "new-user")
	require.NoError(t, err)
	assert.True(t, prefs.PushEnabled)
	assert.True(t, prefs.PartnerNotifications)
	assert.False(t, prefs.SystemNotifications)
	assert.Equal(t, "22:00", prefs.QuietHoursStart)
}

func TestNotificationService_MarkReadFlow(t *testing.T) {
	svc, _, _, _ := newNotificationFixture()
	ctx := context.Background()

	stored, err := svc.Notify(ctx, model.Notification{
		UserID: "bob", Type: "x", Title: "t", Message: "m",
	})
	require.NoError(t, err)

	require.NoError(t, svc.MarkRead(ctx, "bob", stored.ID))
	assert.ErrorIs(t, svc.MarkRead(ctx, "bob", "missing"), application.ErrNotFound)

	list, err := svc.List(ctx, "bob")
	require.NoError(t, err)
	assert.True(t, list[0].Read)
}

func TestPreferences_QuietHoursWindow(t *testing.T) {
	prefs := model.DefaultPreferences("bob")
	prefs.QuietHoursEnabled = true
	prefs.QuietHoursStart = "22:00"
	prefs.QuietHoursEnd = "08:00"

	at := func(hour int) time.Time {
		return time.Date(2025, 6, 1, hour, 30, 0, 0, time.UTC)
	}

	assert.True(t, prefs.InQuietHours(at(23)))
	assert.True(t, prefs.InQuietHours(at(3)))
	assert.False(t, prefs.InQuietHours(at(12)))

	prefs.QuietHoursEnabled = false
	assert.False(t, prefs.InQuietHours(at(23)))

	// Non-wrapping window.
	prefs.QuietHoursEnabled = true
	prefs.QuietHoursStart = "09:00"
	prefs.QuietHoursEnd = "17:00"
	assert.True(t, prefs.InQuietHours(at(12)))
	assert.False(t, prefs.InQuietHours(at(20)))
}
