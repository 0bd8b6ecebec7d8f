package application

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/subcircle/subcircle/internal/crypto"
	"github.com/subcircle/subcircle/internal/domain/model"
	"github.com/subcircle/subcircle/internal/domain/port/driven"
)

// CredentialService orchestrates credential-record encryption and persistence.
// Each save derives one key from the caller's master password, encrypts
// username/password/notes independently, and upserts the whole record; decrypt
// reverses the path. The derived key lives only for the duration of a single
// call and the master password is never stored, logged, or echoed.
type CredentialService struct {
	subs   driven.SubscriptionStore
	creds  driven.CredentialStore
	logger *slog.Logger

	// Per-subscription locks serialize save/delete so concurrent writes for
	// the same subscription cannot interleave; whole-record last-write-wins.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewCredentialService creates a CredentialService with the required
// dependencies.
func NewCredentialService(subs driven.SubscriptionStore, creds driven.CredentialStore, logger *slog.Logger) *CredentialService {
	return &CredentialService{
		subs:   subs,
		creds:  creds,
		logger: logger,
		locks:  make(map[string]*sync.Mutex),
	}
}

func (s *CredentialService) lock(subscriptionID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.locks[subscriptionID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[subscriptionID] = l
	}
	return l
}

// Save encrypts the submitted credentials and upserts the record for the
// subscription. Username, password, and master password are mandatory; notes
// and hint are optional. All three fields are re-encrypted on every save, each
// with a fresh nonce.
func (s *CredentialService) Save(ctx context.Context, ownerID, subscriptionID string, input model.CredentialInput, masterPassword string) (*model.CredentialRecord, error) {
	if input.Username == "" {
		return nil, fmt.Errorf("%w: username is required", ErrValidation)
	}
	if input.Password == "" {
		return nil, fmt.Errorf("%w: password is required", ErrValidation)
	}
	if masterPassword == "" {
		return nil, fmt.Errorf("%w: master password is required", ErrValidation)
	}

	sub, err := s.subs.Get(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, fmt.Errorf("%w: subscription %s", ErrNotFound, subscriptionID)
	}
	if sub.UserID != ownerID {
		return nil, fmt.Errorf("%w: not the subscription owner", ErrForbidden)
	}

	// Derivation is deliberately slow; do it outside the lock so a slow save
	// for one subscription doesn't stall an unrelated one keyed the same.
	key, err := crypto.DeriveKey(masterPassword, ownerID)
	if err != nil {
		return nil, err
	}

	record := model.CredentialRecord{
		SubscriptionID:    subscriptionID,
		OwnerUserID:       ownerID,
		EncryptionKeyHint: input.KeyHint,
	}

	if record.EncryptedUsername, err = key.EncryptField(input.Username); err != nil {
		return nil, err
	}
	if record.EncryptedPassword, err = key.EncryptField(input.Password); err != nil {
		return nil, err
	}
	if input.Notes != "" {
		if record.EncryptedNotes, err = key.EncryptField(input.Notes); err != nil {
			return nil, err
		}
	}

	// An abandoned save must not persist a record.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l := s.lock(subscriptionID)
	l.Lock()
	defer l.Unlock()

	stored, err := s.creds.Upsert(ctx, record)
	if err != nil {
		return nil, err
	}

	s.logger.Info("credentials saved",
		"subscription_id", subscriptionID,
		"has_notes", record.EncryptedNotes != "",
		"has_hint", record.EncryptionKeyHint != "",
	)
	return stored, nil
}

// Get returns the stored record for display (hint plus opaque encrypted
// fields) without requiring a password. Returns (nil, nil) when none exists.
func (s *CredentialService) Get(ctx context.Context, subscriptionID string) (*model.CredentialRecord, error) {
	return s.creds.Get(ctx, subscriptionID)
}

// Decrypt re-derives the key from the record's owner id and the supplied
// master password and decrypts every present field. Any single field failing
// authentication aborts the whole operation; the caller never sees a
// partially decrypted result. A wrong password and corrupted data are
// indistinguishable by design.
func (s *CredentialService) Decrypt(ctx context.Context, record *model.CredentialRecord, masterPassword string) (*model.CredentialPlaintext, error) {
	if record == nil {
		return nil, fmt.Errorf("%w: no credential record", ErrNotFound)
	}
	if masterPassword == "" {
		return nil, fmt.Errorf("%w: master password is required", ErrValidation)
	}

	key, err := crypto.DeriveKey(masterPassword, record.OwnerUserID)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var plaintext model.CredentialPlaintext
	if plaintext.Username, err = key.DecryptField(record.EncryptedUsername); err != nil {
		return nil, fmt.Errorf("decrypt username: %w", err)
	}
	if plaintext.Password, err = key.DecryptField(record.EncryptedPassword); err != nil {
		return nil, fmt.Errorf("decrypt password: %w", err)
	}
	if record.EncryptedNotes != "" {
		if plaintext.Notes, err = key.DecryptField(record.EncryptedNotes); err != nil {
			return nil, fmt.Errorf("decrypt notes: %w", err)
		}
	}

	return &plaintext, nil
}

// Delete removes the credential record and clears the subscription's
// share_credentials flag so partners can no longer reach a record that is
// gone. Deleting when no record exists is a no-op.
func (s *CredentialService) Delete(ctx context.Context, ownerID, subscriptionID string) error {
	sub, err := s.subs.Get(ctx, subscriptionID)
	if err != nil {
		return err
	}
	if sub == nil {
		return fmt.Errorf("%w: subscription %s", ErrNotFound, subscriptionID)
	}
	if sub.UserID != ownerID {
		return fmt.Errorf("%w: not the subscription owner", ErrForbidden)
	}

	l := s.lock(subscriptionID)
	l.Lock()
	defer l.Unlock()

	if err := s.creds.Delete(ctx, subscriptionID); err != nil {
		return err
	}

	if sub.ShareCredentials {
		settings := sub.ShareSettings
		settings.ShareCredentials = false
		if err := s.subs.UpdateShareSettings(ctx, subscriptionID, settings); err != nil {
			return err
		}
	}

	s.logger.Info("credentials deleted", "subscription_id", subscriptionID)
	return nil
}
