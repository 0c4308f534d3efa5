// Package pipeline orchestrates the full attestation flow: hashing the image,
// generating a commitment, retaining the secret, uploading the photo to
// storage, and registering the attestation. It composes the registry, secret
// store and storage backend behind a single client-facing API.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/adilhusain01/arbipic/commitment"
	"github.com/adilhusain01/arbipic/interfaces"
	"github.com/adilhusain01/arbipic/metrics"
)

// Receipt summarizes a completed attestation.
type Receipt struct {
	// PhotoHash is the Keccak-256 digest of the image bytes, the registry key.
	PhotoHash interfaces.PhotoHash `json:"photo_hash"`

	// ContentID locates the uploaded photo in storage.
	ContentID interfaces.ContentID `json:"content_id"`

	// VerifiedAt is the ledger timestamp assigned at registration.
	VerifiedAt *big.Int `json:"verified_at"`

	// Owner is the identity the attestation was registered under.
	Owner interfaces.OwnerAddress `json:"owner"`

	// Registered is true when this call performed the registration, false
	// when the photo hash already had a record.
	Registered bool `json:"registered"`
}

// photoMetadata is the document stored alongside the photo bytes.
type photoMetadata struct {
	PhotoHash  string `json:"photo_hash"`
	ContentID  string `json:"content_id"`
	Owner      string `json:"owner"`
	VerifiedAt string `json:"verified_at"`
	UploadedAt int64  `json:"uploaded_at"`
}

// Attestor runs attestation flows for a single owner identity.
type Attestor struct {
	registry interfaces.AttestationRegistry
	secrets  interfaces.SecretStore
	storage  interfaces.StorageBackend
	owner    interfaces.OwnerAddress
	metrics  *metrics.Metrics
	log      *slog.Logger
}

// NewAttestor creates an attestor registering on behalf of owner. The metrics
// argument may be nil.
func NewAttestor(registry interfaces.AttestationRegistry, secrets interfaces.SecretStore, storage interfaces.StorageBackend, owner interfaces.OwnerAddress, m *metrics.Metrics, log *slog.Logger) *Attestor {
	return &Attestor{
		registry: registry,
		secrets:  secrets,
		storage:  storage,
		owner:    owner,
		metrics:  m,
		log:      log,
	}
}

// Attest hashes imageBytes, generates a fresh commitment, retains the secret,
// uploads the photo, and registers the attestation.
//
// The secret is stored before the registration is submitted so a failed
// registration can be retried with the same commitment, and the uploaded
// photo is left in place on registration failure. Attesting is idempotent
// per photo hash: an image whose hash is already registered returns the
// existing record with Registered false, without a new upload.
func (a *Attestor) Attest(ctx context.Context, imageBytes []byte) (*Receipt, error) {
	photoHash := commitment.HashPhoto(imageBytes)
	log := a.log.With(slog.String("photo_hash", photoHash.String()))

	verified, err := a.registry.IsVerified(ctx, photoHash)
	if err != nil {
		return nil, fmt.Errorf("registration check failed: %w", err)
	}
	if verified {
		att, err := a.registry.GetAttestation(ctx, photoHash)
		if err != nil {
			return nil, fmt.Errorf("failed to read existing attestation: %w", err)
		}
		log.Info("Photo already attested", slog.String("owner", att.Owner.String()))
		return &Receipt{
			PhotoHash:  photoHash,
			ContentID:  interfaces.ComputeContentID(imageBytes),
			VerifiedAt: att.VerifiedAt,
			Owner:      att.Owner,
			Registered: false,
		}, nil
	}

	secret, comm, err := commitment.Generate(photoHash)
	if err != nil {
		return nil, fmt.Errorf("commitment generation failed: %w", err)
	}

	// Retain the secret first: losing it after a successful registration
	// would make the ownership proof permanently unavailable.
	if err := a.secrets.Put(ctx, photoHash, secret); err != nil {
		return nil, fmt.Errorf("failed to retain secret: %w", err)
	}

	contentID, err := a.storage.Store(ctx, imageBytes, interfaces.PhotoContent)
	if err != nil {
		return nil, fmt.Errorf("photo upload failed: %w", err)
	}
	if a.metrics != nil {
		a.metrics.PhotosStored.Inc()
	}
	log.Debug("Photo uploaded",
		slog.String("content_id", contentID.String()),
		slog.String("backend", a.storage.Name()))

	verifiedAt, err := a.registry.Register(ctx, a.owner, photoHash, comm)
	if err != nil {
		// The upload and the retained secret stay in place: a retry reuses
		// the same commitment against the same content.
		return nil, fmt.Errorf("registration failed: %w", err)
	}

	log.Info("Photo attested",
		slog.String("owner", a.owner.String()),
		slog.String("verified_at", verifiedAt.String()))

	a.storeMetadata(ctx, photoHash, contentID, verifiedAt)

	return &Receipt{
		PhotoHash:  photoHash,
		ContentID:  contentID,
		VerifiedAt: verifiedAt,
		Owner:      a.owner,
		Registered: true,
	}, nil
}

// storeMetadata uploads the metadata document. Failures are logged, not
// returned: the attestation itself already succeeded.
func (a *Attestor) storeMetadata(ctx context.Context, photoHash interfaces.PhotoHash, contentID interfaces.ContentID, verifiedAt *big.Int) {
	doc, err := json.Marshal(photoMetadata{
		PhotoHash:  photoHash.String(),
		ContentID:  contentID.String(),
		Owner:      a.owner.String(),
		VerifiedAt: verifiedAt.String(),
		UploadedAt: time.Now().Unix(),
	})
	if err != nil {
		a.log.Error("Failed to encode photo metadata", "err", err)
		return
	}

	if _, err := a.storage.Store(ctx, doc, interfaces.MetadataContent); err != nil {
		a.log.Warn("Failed to store photo metadata", "err", err,
			slog.String("photo_hash", photoHash.String()))
	}
}

// Prove runs an ownership proof for photoHash using the retained secret.
// It returns interfaces.ErrSecretNotFound when no secret was retained.
func (a *Attestor) Prove(ctx context.Context, photoHash interfaces.PhotoHash) (bool, error) {
	secret, err := a.secrets.Get(ctx, photoHash)
	if err != nil {
		return false, err
	}

	return a.registry.VerifyProof(ctx, photoHash, secret)
}

// ProveImage hashes imageBytes and runs the ownership proof for the result.
func (a *Attestor) ProveImage(ctx context.Context, imageBytes []byte) (bool, error) {
	return a.Prove(ctx, commitment.HashPhoto(imageBytes))
}

// FetchPhoto retrieves previously uploaded photo bytes by content ID.
func (a *Attestor) FetchPhoto(ctx context.Context, contentID interfaces.ContentID) ([]byte, error) {
	return a.storage.Fetch(ctx, contentID, interfaces.PhotoContent)
}

// Status reads the attestation record for an image without mutating anything.
func (a *Attestor) Status(ctx context.Context, imageBytes []byte) (interfaces.Attestation, error) {
	return a.registry.GetAttestation(ctx, commitment.HashPhoto(imageBytes))
}
