package secrets

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hashicorp/vault/api"

	"github.com/adilhusain01/arbipic/interfaces"
)

// VaultSecretStore retains secrets in HashiCorp Vault using the KV v2
// engine, one entry per photo hash.
type VaultSecretStore struct {
	client    *api.Client
	mountPath string
	dataPath  string
	log       *slog.Logger
}

// NewVaultSecretStore creates a Vault-backed secret store.
//
// Parameters:
//   - address: Vault server address (e.g. https://vault.example.com:8200)
//   - token: Vault token with read/write access to the KV mount
//   - mountPath: KV v2 mount path (e.g. "secret")
//   - dataPath: path within the mount (e.g. "arbipic")
//   - log: structured logger for operational insights
func NewVaultSecretStore(address, token, mountPath, dataPath string, log *slog.Logger) (*VaultSecretStore, error) {
	config := api.DefaultConfig()
	config.Address = address
	config.Timeout = 30 * time.Second

	client, err := api.NewClient(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vault client: %w", err)
	}
	client.SetToken(token)

	mountPath = strings.TrimSuffix(mountPath, "/")
	dataPath = strings.Trim(dataPath, "/")

	return &VaultSecretStore{
		client:    client,
		mountPath: mountPath,
		dataPath:  dataPath,
		log:       log,
	}, nil
}

// Put writes the secret for photoHash to Vault.
func (s *VaultSecretStore) Put(ctx context.Context, photoHash interfaces.PhotoHash, secret interfaces.Secret) error {
	path := s.secretPath(photoHash)

	// KV v2 payload format.
	payload := map[string]interface{}{
		"data": map[string]interface{}{
			"secret": secret.String(),
		},
	}

	if _, err := s.client.Logical().WriteWithContext(ctx, path, payload); err != nil {
		s.log.Error("Failed to write secret to Vault",
			slog.String("path", path),
			slog.String("photo_hash", photoHash.String()),
			"err", err)
		return fmt.Errorf("%w: %v", interfaces.ErrBackendUnavailable, err)
	}

	s.log.Debug("Retained commitment secret in Vault",
		slog.String("photo_hash", photoHash.String()))

	return nil
}

// Get returns the retained secret for photoHash, or
// interfaces.ErrSecretNotFound when no entry exists.
func (s *VaultSecretStore) Get(ctx context.Context, photoHash interfaces.PhotoHash) (interfaces.Secret, error) {
	path := s.secretPath(photoHash)

	entry, err := s.client.Logical().ReadWithContext(ctx, path)
	if err != nil {
		return interfaces.Secret{}, fmt.Errorf("%w: %v", interfaces.ErrBackendUnavailable, err)
	}
	if entry == nil || entry.Data == nil {
		return interfaces.Secret{}, interfaces.ErrSecretNotFound
	}

	data, ok := entry.Data["data"].(map[string]interface{})
	if !ok {
		return interfaces.Secret{}, fmt.Errorf("invalid data format in Vault response")
	}

	hexSecret, ok := data["secret"].(string)
	if !ok {
		return interfaces.Secret{}, fmt.Errorf("secret key not found in Vault data")
	}

	return interfaces.NewSecretFromHex(hexSecret)
}

// Delete removes the retained secret. Deleting an absent entry is a no-op.
func (s *VaultSecretStore) Delete(ctx context.Context, photoHash interfaces.PhotoHash) error {
	path := fmt.Sprintf("%s/metadata/%s/%s", s.mountPath, s.dataPath, photoHash.String())

	if _, err := s.client.Logical().DeleteWithContext(ctx, path); err != nil {
		return fmt.Errorf("%w: %v", interfaces.ErrBackendUnavailable, err)
	}
	return nil
}

func (s *VaultSecretStore) secretPath(photoHash interfaces.PhotoHash) string {
	return fmt.Sprintf("%s/data/%s/%s", s.mountPath, s.dataPath, photoHash.String())
}
