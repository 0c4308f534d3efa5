// Package secrets implements client-held retention of commitment secrets,
// keyed by photo hash. The registry never sees these values; losing one
// makes the ownership proof for its hash permanently unavailable, so stores
// persist the secret before registration is attempted.
package secrets

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/adilhusain01/arbipic/cryptoutils"
	"github.com/adilhusain01/arbipic/interfaces"
)

// FileSecretStore retains secrets on the local file system, one file per
// photo hash, sealed at rest with a passphrase-derived key.
type FileSecretStore struct {
	baseDir    string
	passphrase []byte
	log        *slog.Logger
}

// NewFileSecretStore creates a secret store rooted at baseDir. Files are
// written with owner-only permissions and sealed with the given passphrase.
func NewFileSecretStore(baseDir string, passphrase []byte, log *slog.Logger) (*FileSecretStore, error) {
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create secret store directory: %w", err)
	}

	return &FileSecretStore{
		baseDir:    baseDir,
		passphrase: passphrase,
		log:        log,
	}, nil
}

// Put seals and persists the secret for photoHash. An existing entry is
// overwritten: re-generating a commitment for an unregistered hash replaces
// the retained secret.
func (s *FileSecretStore) Put(ctx context.Context, photoHash interfaces.PhotoHash, secret interfaces.Secret) error {
	sealed, err := cryptoutils.Seal(s.passphrase, secret.Bytes())
	if err != nil {
		return fmt.Errorf("failed to seal secret: %w", err)
	}

	path := s.secretPath(photoHash)
	if err := os.WriteFile(path, sealed, 0600); err != nil {
		return fmt.Errorf("failed to write secret file: %w", err)
	}

	s.log.Debug("Retained commitment secret",
		slog.String("photo_hash", photoHash.String()),
		slog.String("path", path))

	return nil
}

// Get returns the retained secret for photoHash, or
// interfaces.ErrSecretNotFound when no entry exists.
func (s *FileSecretStore) Get(ctx context.Context, photoHash interfaces.PhotoHash) (interfaces.Secret, error) {
	sealed, err := os.ReadFile(s.secretPath(photoHash))
	if os.IsNotExist(err) {
		return interfaces.Secret{}, interfaces.ErrSecretNotFound
	}
	if err != nil {
		return interfaces.Secret{}, fmt.Errorf("failed to read secret file: %w", err)
	}

	raw, err := cryptoutils.Open(s.passphrase, sealed)
	if err != nil {
		return interfaces.Secret{}, fmt.Errorf("failed to unseal secret: %w", err)
	}

	return interfaces.NewSecretFromBytes(raw)
}

// Delete removes the retained secret. Deleting an absent entry is a no-op.
func (s *FileSecretStore) Delete(ctx context.Context, photoHash interfaces.PhotoHash) error {
	err := os.Remove(s.secretPath(photoHash))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove secret file: %w", err)
	}
	return nil
}

func (s *FileSecretStore) secretPath(photoHash interfaces.PhotoHash) string {
	return filepath.Join(s.baseDir, photoHash.String()+".secret")
}
