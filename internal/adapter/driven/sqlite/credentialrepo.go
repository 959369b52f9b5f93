package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ericfisherdev/panelctl/internal/adapter/driven/secretbox"
	"github.com/ericfisherdev/panelctl/internal/domain/model"
	"github.com/ericfisherdev/panelctl/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.CredentialStore = (*CredentialRepo)(nil)

// CredentialRepo is the SQLite implementation of the CredentialStore port interface.
// Credential values are sealed by a secretbox.Box before write and opened after read.
type CredentialRepo struct {
	db  *DB
	box *secretbox.Box
}

// NewCredentialRepo creates a new CredentialRepo. A box without a key makes
// Set, Get and List return driven.ErrEncryptionKeyNotSet; Delete still works.
func NewCredentialRepo(db *DB, box *secretbox.Box) *CredentialRepo {
	return &CredentialRepo{db: db, box: box}
}

// Set stores or replaces the credential for the given key.
func (r *CredentialRepo) Set(ctx context.Context, key, plaintext string) error {
	sealed, err := r.box.Seal(plaintext)
	if err != nil {
		return err
	}

	const query = `INSERT INTO credentials (name, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
	if _, err := r.db.Writer.ExecContext(ctx, query, key, sealed); err != nil {
		return fmt.Errorf("set credential %q: %w", key, err)
	}
	return nil
}

// Get retrieves the plaintext credential for the given key.
// Returns ("", nil) if no credential exists for that key.
func (r *CredentialRepo) Get(ctx context.Context, key string) (string, error) {
	if !r.box.Enabled() {
		return "", driven.ErrEncryptionKeyNotSet
	}

	const query = `SELECT value FROM credentials WHERE name = ?`
	var sealed string
	err := r.db.Reader.QueryRowContext(ctx, query, key).Scan(&sealed)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get credential %q: %w", key, err)
	}

	plaintext, err := r.box.Open(sealed)
	if err != nil {
		return "", fmt.Errorf("decrypt credential %q: %w", key, err)
	}
	return plaintext, nil
}

// List returns all stored credentials with decrypted values, ordered by key.
func (r *CredentialRepo) List(ctx context.Context) ([]model.Credential, error) {
	if !r.box.Enabled() {
		return nil, driven.ErrEncryptionKeyNotSet
	}

	const query = `SELECT id, name, value, updated_at FROM credentials ORDER BY name`
	rows, err := r.db.Reader.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}
	defer rows.Close()

	var creds []model.Credential
	for rows.Next() {
		var cred model.Credential
		var sealed, updatedAt string
		if err := rows.Scan(&cred.ID, &cred.Key, &sealed, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan credential: %w", err)
		}

		cred.Value, err = r.box.Open(sealed)
		if err != nil {
			return nil, fmt.Errorf("decrypt credential %q: %w", cred.Key, err)
		}

		cred.UpdatedAt, err = parseTime(updatedAt)
		if err != nil {
			return nil, fmt.Errorf("parse updated_at for credential %q: %w", cred.Key, err)
		}

		creds = append(creds, cred)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate credentials: %w", err)
	}

	return creds, nil
}

// Delete removes the credential for the given key.
func (r *CredentialRepo) Delete(ctx context.Context, key string) error {
	const query = `DELETE FROM credentials WHERE name = ?`
	if _, err := r.db.Writer.ExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("delete credential %q: %w", key, err)
	}
	return nil
}
