package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/panelctl/internal/domain/model"
)

// ErrEncryptionKeyNotSet is returned by CredentialStore operations when neither
// PANELCTL_SECRET_KEY nor PANELCTL_PASSPHRASE has been configured.
var ErrEncryptionKeyNotSet = errors.New("encryption key not configured: set PANELCTL_SECRET_KEY or PANELCTL_PASSPHRASE")

// CredentialStore defines the driven port for encrypted credential persistence.
// The adapter layer is responsible for encryption/decryption; this interface
// operates on plaintext values at the domain boundary.
type CredentialStore interface {
	// Set stores or replaces the credential for the given key.
	Set(ctx context.Context, key, plaintext string) error

	// Get retrieves the plaintext credential for the given key.
	// Returns ("", nil) if no credential exists for that key.
	Get(ctx context.Context, key string) (string, error)

	// List returns all stored credentials. Values are decrypted plaintext.
	List(ctx context.Context) ([]model.Credential, error)

	// Delete removes the credential for the given key. Deleting a missing
	// key is not an error.
	Delete(ctx context.Context, key string) error
}
