package credential

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

// KeyringStore persists the credential record in OS-native secure storage.
// Uses macOS Keychain, Windows Credential Manager, or Linux Secret Service.
// The record is stored as a single JSON-encoded secret.
type KeyringStore struct {
	service string
	user    string
}

// Compile-time check to ensure KeyringStore implements Store
var _ Store = (*KeyringStore)(nil)

// NewKeyringStore creates a KeyringStore using the given service and user
// identifiers.
func NewKeyringStore(service, user string) (*KeyringStore, error) {
	if service == "" {
		return nil, fmt.Errorf("service cannot be empty")
	}
	if user == "" {
		return nil, fmt.Errorf("user cannot be empty")
	}

	return &KeyringStore{
		service: service,
		user:    user,
	}, nil
}

// Load returns the record from the system keyring. A missing entry or an
// undecodable secret returns ErrNotFound.
func (k *KeyringStore) Load(ctx context.Context) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	secret, err := keyring.Get(k.service, k.user)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var record Record
	if err := json.Unmarshal([]byte(secret), &record); err != nil {
		return nil, ErrNotFound
	}
	if !record.HasRefreshToken() {
		return nil, ErrNotFound
	}
	return &record, nil
}

// Save persists the record to the system keyring, overwriting any existing
// entry. The keyring backend replaces the secret in one operation, so readers
// never see a partial record.
func (k *KeyringStore) Save(ctx context.Context, record *Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encoding credential record: %w", err)
	}

	return keyring.Set(k.service, k.user, string(data))
}
