package application_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/subcircle/subcircle/internal/domain/model"
)

// --- In-memory store doubles ---

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type mockSubscriptionStore struct {
	subs map[string]model.Subscription
}

func newMockSubscriptionStore(subs ...model.Subscription) *mockSubscriptionStore {
	m := &mockSubscriptionStore{subs: make(map[string]model.Subscription)}
	for _, s := range subs {
		m.subs[s.ID] = s
	}
	return m
}

func (m *mockSubscriptionStore) Create(_ context.Context, sub model.Subscription) (*model.Subscription, error) {
	if sub.ID == "" {
		sub.ID = fmt.Sprintf("sub-%d", len(m.subs)+1)
	}
	sub.ShareSettings = sub.ShareSettings.Normalize()
	m.subs[sub.ID] = sub
	return &sub, nil
}

func (m *mockSubscriptionStore) Get(_ context.Context, id string) (*model.Subscription, error) {
	sub, ok := m.subs[id]
	if !ok {
		return nil, nil
	}
	return &sub, nil
}

func (m *mockSubscriptionStore) ListByUser(_ context.Context, userID string) ([]model.Subscription, error) {
	var out []model.Subscription
	for _, s := range m.subs {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *mockSubscriptionStore) ListSharedByUser(_ context.Context, userID string) ([]model.Subscription, error) {
	var out []model.Subscription
	for _, s := range m.subs {
		if s.UserID == userID && s.SharedWithPartners && s.IsActive {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *mockSubscriptionStore) UpdateShareSettings(_ context.Context, id string, settings model.ShareSettings) error {
	sub, ok := m.subs[id]
	if !ok {
		return fmt.Errorf("subscription %s not found", id)
	}
	sub.ShareSettings = settings.Normalize()
	m.subs[id] = sub
	return nil
}

func (m *mockSubscriptionStore) SetActive(_ context.Context, id string, active bool) error {
	sub := m.subs[id]
	sub.IsActive = active
	m.subs[id] = sub
	return nil
}

func (m *mockSubscriptionStore) Delete(_ context.Context, id string) error {
	delete(m.subs, id)
	return nil
}

type mockCredentialStore struct {
	records map[string]model.CredentialRecord // keyed by subscription id
	upserts int
}

func newMockCredentialStore() *mockCredentialStore {
	return &mockCredentialStore{records: make(map[string]model.CredentialRecord)}
}

func (m *mockCredentialStore) Upsert(_ context.Context, record model.CredentialRecord) (*model.CredentialRecord, error) {
	if existing, ok := m.records[record.SubscriptionID]; ok {
		record.ID = existing.ID
	} else if record.ID == "" {
		record.ID = fmt.Sprintf("cred-%d", len(m.records)+1)
	}
	m.records[record.SubscriptionID] = record
	m.upserts++
	return &record, nil
}

func (m *mockCredentialStore) Get(_ context.Context, subscriptionID string) (*model.CredentialRecord, error) {
	record, ok := m.records[subscriptionID]
	if !ok {
		return nil, nil
	}
	return &record, nil
}

func (m *mockCredentialStore) Delete(_ context.Context, subscriptionID string) error {
	delete(m.records, subscriptionID)
	return nil
}

type mockPartnerStore struct {
	conns map[string]model.PartnerConnection
	seq   int
}

func newMockPartnerStore(conns ...model.PartnerConnection) *mockPartnerStore {
	m := &mockPartnerStore{conns: make(map[string]model.PartnerConnection)}
	for _, c := range conns {
		m.conns[c.ID] = c
	}
	m.seq = len(m.conns)
	return m
}

func (m *mockPartnerStore) Create(_ context.Context, conn model.PartnerConnection) (*model.PartnerConnection, error) {
	if conn.ID == "" {
		// Like the real store, never reuse an ID, even after a delete.
		m.seq++
		conn.ID = fmt.Sprintf("conn-%d", m.seq)
	}
	if conn.Status == "" {
		conn.Status = model.PartnerStatusPending
	}
	m.conns[conn.ID] = conn
	return &conn, nil
}

func (m *mockPartnerStore) Get(_ context.Context, id string) (*model.PartnerConnection, error) {
	conn, ok := m.conns[id]
	if !ok {
		return nil, nil
	}
	return &conn, nil
}

func (m *mockPartnerStore) GetBetween(_ context.Context, userA, userB string) (*model.PartnerConnection, error) {
	for _, c := range m.conns {
		if (c.UserID == userA && c.PartnerID == userB) || (c.UserID == userB && c.PartnerID == userA) {
			return &c, nil
		}
	}
	return nil, nil
}

func (m *mockPartnerStore) ListByUser(_ context.Context, userID string) ([]model.PartnerConnection, error) {
	var out []model.PartnerConnection
	for _, c := range m.conns {
		if c.Involves(userID) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockPartnerStore) UpdateStatus(_ context.Context, id string, status model.PartnerStatus) error {
	conn, ok := m.conns[id]
	if !ok {
		return fmt.Errorf("connection %s not found", id)
	}
	conn.Status = status
	m.conns[id] = conn
	return nil
}

func (m *mockPartnerStore) Delete(_ context.Context, id string) error {
	delete(m.conns, id)
	return nil
}

type mockNotificationStore struct {
	created []model.Notification
	prefs   map[string]model.NotificationPreferences
}

func newMockNotificationStore() *mockNotificationStore {
	return &mockNotificationStore{prefs: make(map[string]model.NotificationPreferences)}
}

func (m *mockNotificationStore) Create(_ context.Context, n model.Notification) (*model.Notification, error) {
	if n.ID == "" {
		n.ID = fmt.Sprintf("ntf-%d", len(m.created)+1)
	}
	if n.Priority == "" {
		n.Priority = model.PriorityLow
	}
	if n.Category == "" {
		n.Category = model.CategoryPartner
	}
	m.created = append(m.created, n)
	return &n, nil
}

func (m *mockNotificationStore) ListByUser(_ context.Context, userID string) ([]model.Notification, error) {
	var out []model.Notification
	for _, n := range m.created {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *mockNotificationStore) MarkRead(_ context.Context, userID, notificationID string) error {
	for i, n := range m.created {
		if n.ID == notificationID && n.UserID == userID {
			m.created[i].Read = true
			return nil
		}
	}
	return fmt.Errorf("notification %s not found", notificationID)
}

func (m *mockNotificationStore) MarkAllRead(_ context.Context, userID string) (int64, error) {
	var affected int64
	for i, n := range m.created {
		if n.UserID == userID && !n.Read {
			m.created[i].Read = true
			affected++
		}
	}
	return affected, nil
}

func (m *mockNotificationStore) GetPreferences(_ context.Context, userID string) (*model.NotificationPreferences, error) {
	prefs, ok := m.prefs[userID]
	if !ok {
		return nil, nil
	}
	return &prefs, nil
}

func (m *mockNotificationStore) UpsertPreferences(_ context.Context, prefs model.NotificationPreferences) (*model.NotificationPreferences, error) {
	m.prefs[prefs.UserID] = prefs
	return &prefs, nil
}

type mockPushStore struct {
	subs map[string][]model.WebPushSubscription
}

func newMockPushStore() *mockPushStore {
	return &mockPushStore{subs: make(map[string][]model.WebPushSubscription)}
}

func (m *mockPushStore) Upsert(_ context.Context, sub model.WebPushSubscription) (*model.WebPushSubscription, error) {
	m.subs[sub.UserID] = append(m.subs[sub.UserID], sub)
	return &sub, nil
}

func (m *mockPushStore) ListByUser(_ context.Context, userID string) ([]model.WebPushSubscription, error) {
	return m.subs[userID], nil
}

func (m *mockPushStore) Delete(_ context.Context, userID, endpoint string) error {
	var kept []model.WebPushSubscription
	for _, s := range m.subs[userID] {
		if s.Endpoint != endpoint {
			kept = append(kept, s)
		}
	}
	m.subs[userID] = kept
	return nil
}

type pushCall struct {
	Targets []model.WebPushSubscription
	N       model.Notification
}

type mockNotifier struct {
	calls []pushCall
	err   error
}

func (m *mockNotifier) SendPush(_ context.Context, targets []model.WebPushSubscription, n model.Notification) error {
	m.calls = append(m.calls, pushCall{Targets: targets, N: n})
	return m.err
}
