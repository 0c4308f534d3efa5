package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/adilhusain01/arbipic/commitment"
	"github.com/adilhusain01/arbipic/interfaces"
	"github.com/adilhusain01/arbipic/metrics"
	"github.com/adilhusain01/arbipic/registry"
	"github.com/adilhusain01/arbipic/secrets"
	"github.com/adilhusain01/arbipic/storage"
)

func testAttestor(t *testing.T) (*Attestor, interfaces.AttestationRegistry, interfaces.StorageBackend) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	operator, err := interfaces.NewOwnerAddressFromHex("00000000000000000000000000000000000000aa")
	require.NoError(t, err)
	reg := registry.NewLedgerRegistry(registry.WallClock{}, operator)

	secretStore, err := secrets.NewFileSecretStore(t.TempDir(), []byte("test passphrase"), logger)
	require.NoError(t, err)

	backend, err := storage.NewFileBackend(t.TempDir(), logger)
	require.NoError(t, err)

	owner, err := interfaces.NewOwnerAddressFromHex("1111111111111111111111111111111111111111")
	require.NoError(t, err)

	return NewAttestor(reg, secretStore, backend, owner, metrics.New("arbipic_pipeline_test"), logger), reg, backend
}

func TestAttestAndProve(t *testing.T) {
	ctx := context.Background()
	attestor, reg, backend := testAttestor(t)

	image := []byte("raw jpeg bytes of a sunset")

	receipt, err := attestor.Attest(ctx, image)
	require.NoError(t, err)

	assert.True(t, receipt.PhotoHash.Equal(commitment.HashPhoto(image)))
	assert.Positive(t, receipt.VerifiedAt.Sign())

	// The photo is retrievable by the content ID on the receipt.
	stored, err := backend.Fetch(ctx, receipt.ContentID, interfaces.PhotoContent)
	require.NoError(t, err)
	assert.Equal(t, image, stored)

	// The registry record matches the receipt.
	att, err := reg.GetAttestation(ctx, receipt.PhotoHash)
	require.NoError(t, err)
	assert.True(t, att.Owner.Equal(receipt.Owner))
	assert.Equal(t, receipt.VerifiedAt.String(), att.VerifiedAt.String())

	// Proof via the retained secret.
	valid, err := attestor.Prove(ctx, receipt.PhotoHash)
	require.NoError(t, err)
	assert.True(t, valid)

	valid, err = attestor.ProveImage(ctx, image)
	require.NoError(t, err)
	assert.True(t, valid)
}

func TestAttestIdempotent(t *testing.T) {
	ctx := context.Background()
	attestor, _, _ := testAttestor(t)

	image := []byte("the same photo twice")

	first, err := attestor.Attest(ctx, image)
	require.NoError(t, err)
	assert.True(t, first.Registered)

	// Re-attesting is a no-op success: the existing record comes back and no
	// new registration happens.
	second, err := attestor.Attest(ctx, image)
	require.NoError(t, err)
	assert.False(t, second.Registered)
	assert.True(t, second.PhotoHash.Equal(first.PhotoHash))
	assert.Equal(t, first.VerifiedAt.String(), second.VerifiedAt.String())
	assert.True(t, second.Owner.Equal(first.Owner))
}

func TestAttestStoresMetadata(t *testing.T) {
	ctx := context.Background()
	attestor, _, backend := testAttestor(t)

	image := []byte("photo with metadata")
	receipt, err := attestor.Attest(ctx, image)
	require.NoError(t, err)

	doc := photoMetadata{
		PhotoHash:  receipt.PhotoHash.String(),
		ContentID:  receipt.ContentID.String(),
		Owner:      receipt.Owner.String(),
		VerifiedAt: receipt.VerifiedAt.String(),
	}

	// The metadata document is content-addressed; recompute its ID from the
	// stored fields to look it up, ignoring the upload timestamp.
	found := false
	for uploadedAt := receipt.VerifiedAt.Int64() - 2; uploadedAt <= receipt.VerifiedAt.Int64()+2 && !found; uploadedAt++ {
		doc.UploadedAt = uploadedAt
		raw, err := json.Marshal(doc)
		require.NoError(t, err)

		data, err := backend.Fetch(ctx, interfaces.ComputeContentID(raw), interfaces.MetadataContent)
		if err == nil {
			assert.Equal(t, raw, data)
			found = true
		}
	}
	assert.True(t, found, "metadata document not found in storage")
}

func TestProveWithoutSecret(t *testing.T) {
	ctx := context.Background()
	attestor, _, _ := testAttestor(t)

	unknown := commitment.HashPhoto([]byte("never attested"))

	_, err := attestor.Prove(ctx, unknown)
	assert.ErrorIs(t, err, interfaces.ErrSecretNotFound)
}

func TestUploadPersistsOnRegistrationFailure(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	mockReg := new(registry.MockRegistry)
	secretStore, err := secrets.NewFileSecretStore(t.TempDir(), []byte("test passphrase"), logger)
	require.NoError(t, err)
	backend, err := storage.NewFileBackend(t.TempDir(), logger)
	require.NoError(t, err)

	owner, err := interfaces.NewOwnerAddressFromHex("1111111111111111111111111111111111111111")
	require.NoError(t, err)

	image := []byte("photo whose registration fails")
	photoHash := commitment.HashPhoto(image)

	mockReg.On("IsVerified", mock.Anything, photoHash).Return(false, nil)
	mockReg.On("Register", mock.Anything, owner, photoHash, mock.Anything).
		Return((*big.Int)(nil), errors.New("rpc timeout"))

	attestor := NewAttestor(mockReg, secretStore, backend, owner, nil, logger)

	_, err = attestor.Attest(ctx, image)
	require.Error(t, err)

	// The upload and retained secret survive the failed registration so a
	// retry can reuse them.
	stored, err := backend.Fetch(ctx, interfaces.ComputeContentID(image), interfaces.PhotoContent)
	require.NoError(t, err)
	assert.Equal(t, image, stored)

	_, err = secretStore.Get(ctx, photoHash)
	assert.NoError(t, err)
}

func TestStatus(t *testing.T) {
	ctx := context.Background()
	attestor, _, _ := testAttestor(t)

	image := []byte("status check photo")

	att, err := attestor.Status(ctx, image)
	require.NoError(t, err)
	assert.True(t, att.IsZero())

	receipt, err := attestor.Attest(ctx, image)
	require.NoError(t, err)

	att, err = attestor.Status(ctx, image)
	require.NoError(t, err)
	assert.False(t, att.IsZero())
	assert.Equal(t, receipt.VerifiedAt.String(), att.VerifiedAt.String())
}
