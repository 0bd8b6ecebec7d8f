package model

import "time"

// CredentialRecord is the stored form of a subscription's shared login
// credentials. Username, password, and notes are independently encrypted
// opaque strings (base64 of nonce || ciphertext); the hint is plaintext and
// visible to anyone with record-read access. At most one record exists per
// subscription.
type CredentialRecord struct {
	ID                string
	SubscriptionID    string
	OwnerUserID       string
	EncryptedUsername string
	EncryptedPassword string
	EncryptedNotes    string // empty when no notes were saved
	EncryptionKeyHint string // optional, never sufficient to derive the key
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// CredentialInput is the plaintext a user submits when saving credentials.
// The master password travels separately and is never part of the record.
type CredentialInput struct {
	Username string
	Password string
	Notes    string
	KeyHint  string
}

// CredentialPlaintext is the result of a successful decrypt.
type CredentialPlaintext struct {
	Username string
	Password string
	Notes    string
}
