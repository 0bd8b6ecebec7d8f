package application_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/subcircle/subcircle/internal/application"
	"github.com/subcircle/subcircle/internal/crypto"
	"github.com/subcircle/subcircle/internal/domain/model"
)

func newCredentialService(subs *mockSubscriptionStore, creds *mockCredentialStore) *application.CredentialService {
	return application.NewCredentialService(subs, creds, discardLogger())
}

func ownedSubscription(id, userID string) model.Subscription {
	return model.Subscription{ID: id, UserID: userID, ServiceID: "svc-1", IsActive: true}
}

func TestCredentialService_SaveAndDecryptRoundTrip(t *testing.T) {
	subs := newMockSubscriptionStore(ownedSubscription("sub-1", "alice"))
	creds := newMockCredentialStore()
	svc := newCredentialService(subs, creds)
	ctx := context.Background()

	record, err := svc.Save(ctx, "alice", "sub-1", model.CredentialInput{
		Username: "alice@x.com",
		Password: "s3cr3t",
		Notes:    "shared",
	}, "correcthorse")
	require.NoError(t, err)

	assert.NotEmpty(t, record.EncryptedUsername)
	assert.NotEmpty(t, record.EncryptedPassword)
	assert.NotEmpty(t, record.EncryptedNotes)
	assert.Empty(t, record.EncryptionKeyHint)
	assert.Equal(t, "alice", record.OwnerUserID)

	// Ciphertext never contains the plaintext or the master password.
	assert.NotContains(t, record.EncryptedUsername, "alice@x.com")
	assert.NotContains(t, record.EncryptedPassword, "s3cr3t")

	plaintext, err := svc.Decrypt(ctx, record, "correcthorse")
	require.NoError(t, err)
	assert.Equal(t, "alice@x.com", plaintext.Username)
	assert.Equal(t, "s3cr3t", plaintext.Password)
	assert.Equal(t, "shared", plaintext.Notes)
}

func TestCredentialService_SaveValidation(t *testing.T) {
	subs := newMockSubscriptionStore(ownedSubscription("sub-1", "alice"))
	svc := newCredentialService(subs, newMockCredentialStore())
	ctx := context.Background()

	cases := []struct {
		name     string
		input    model.CredentialInput
		password string
	}{
		{"missing username", model.CredentialInput{Password: "p"}, "m"},
		{"missing password", model.CredentialInput{Username: "u"}, "m"},
		{"missing master password", model.CredentialInput{Username: "u", Password: "p"}, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Save(ctx, "alice", "sub-1", tc.input, tc.password)
			assert.ErrorIs(t, err, application.ErrValidation)
		})
	}
}

func TestCredentialService_SaveUnknownSubscription(t *testing.T) {
	svc := newCredentialService(newMockSubscriptionStore(), newMockCredentialStore())

	_, err := svc.Save(context.Background(), "alice", "missing", model.CredentialInput{
		Username: "u", Password: "p",
	}, "m")
	assert.ErrorIs(t, err, application.ErrNotFound)
}

func TestCredentialService_SaveNotOwner(t *testing.T) {
	subs := newMockSubscriptionStore(ownedSubscription("sub-1", "alice"))
	svc := newCredentialService(subs, newMockCredentialStore())

	_, err := svc.Save(context.Background(), "bob", "sub-1", model.CredentialInput{
		Username: "u", Password: "p",
	}, "m")
	assert.ErrorIs(t, err, application.ErrForbidden)
}

func TestCredentialService_SaveUpserts(t *testing.T) {
	subs := newMockSubscriptionStore(ownedSubscription("sub-1", "alice"))
	creds := newMockCredentialStore()
	svc := newCredentialService(subs, creds)
	ctx := context.Background()

	first, err := svc.Save(ctx, "alice", "sub-1", model.CredentialInput{
		Username: "old", Password: "old",
	}, "m")
	require.NoError(t, err)

	second, err := svc.Save(ctx, "alice", "sub-1", model.CredentialInput{
		Username: "new", Password: "new",
	}, "m")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, creds.records, 1)

	plaintext, err := svc.Decrypt(ctx, second, "m")
	require.NoError(t, err)
	assert.Equal(t, "new", plaintext.Username)
}

func TestCredentialService_DecryptWrongPassword(t *testing.T) {
	subs := newMockSubscriptionStore(ownedSubscription("sub-1", "alice"))
	svc := newCredentialService(subs, newMockCredentialStore())
	ctx := context.Background()

	record, err := svc.Save(ctx, "alice", "sub-1", model.CredentialInput{
		Username: "alice@x.com", Password: "s3cr3t",
	}, "correcthorse")
	require.NoError(t, err)

	_, err = svc.Decrypt(ctx, record, "wrong")
	assert.ErrorIs(t, err, crypto.ErrAuthentication)
}

func TestCredentialService_DecryptCorruptedFieldAborts(t *testing.T) {
	subs := newMockSubscriptionStore(ownedSubscription("sub-1", "alice"))
	svc := newCredentialService(subs, newMockCredentialStore())
	ctx := context.Background()

	record, err := svc.Save(ctx, "alice", "sub-1", model.CredentialInput{
		Username: "alice@x.com", Password: "s3cr3t", Notes: "n",
	}, "correcthorse")
	require.NoError(t, err)

	// Corrupt only the notes field; the whole decrypt must still fail.
	corrupted := *record
	corrupted.EncryptedNotes = "AAAA"

	_, err = svc.Decrypt(ctx, &corrupted, "correcthorse")
	assert.Error(t, err)
}

func TestCredentialService_DecryptNilRecord(t *testing.T) {
	svc := newCredentialService(newMockSubscriptionStore(), newMockCredentialStore())

	_, err := svc.Decrypt(context.Background(), nil, "m")
	assert.ErrorIs(t, err, application.ErrNotFound)
}

func TestCredentialService_GetMissingReturnsNil(t *testing.T) {
	svc := newCredentialService(newMockSubscriptionStore(), newMockCredentialStore())

	record, err := svc.Get(context.Background(), "sub-1")
	require.NoError(t, err)
	assert.Nil(t, record)
}

func TestCredentialService_DeleteClearsShareCredentials(t *testing.T) {
	sub := ownedSubscription("sub-1", "alice")
	sub.ShareSettings = model.ShareSettings{SharedWithPartners: true, ShareCredentials: true}
	subs := newMockSubscriptionStore(sub)
	creds := newMockCredentialStore()
	svc := newCredentialService(subs, creds)
	ctx := context.Background()

	_, err := svc.Save(ctx, "alice", "sub-1", model.CredentialInput{
		Username: "u", Password: "p",
	}, "m")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "alice", "sub-1"))

	record, err := svc.Get(ctx, "sub-1")
	require.NoError(t, err)
	assert.Nil(t, record)

	got, err := subs.Get(ctx, "sub-1")
	require.NoError(t, err)
	assert.True(t, got.SharedWithPartners)
	assert.False(t, got.ShareCredentials)

	// Deleting again is not an error.
	require.NoError(t, svc.Delete(ctx, "alice", "sub-1"))
}

func TestCredentialService_SaveCanceledContextDoesNotPersist(t *testing.T) {
	subs := newMockSubscriptionStore(ownedSubscription("sub-1", "alice"))
	creds := newMockCredentialStore()
	svc := newCredentialService(subs, creds)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Save(ctx, "alice", "sub-1", model.CredentialInput{
		Username: "u", Password: "p",
	}, "m")
	require.Error(t, err)
	assert.Zero(t, creds.upserts)
}
