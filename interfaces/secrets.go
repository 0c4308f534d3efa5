package interfaces

import (
	"context"
	"errors"
)

// ErrSecretNotFound is returned when no retained secret exists for a photo
// hash. Once the secret for a registered hash is gone, the ownership-proof
// path is permanently unavailable; the attestation record itself remains
// valid and readable.
var ErrSecretNotFound = errors.New("no secret retained for photo hash")

// SecretStore retains commitment secrets on behalf of the client, keyed by
// photo hash. The registry makes no confidentiality claim about how callers
// store secrets; implementations decide the channel and the protection at
// rest.
type SecretStore interface {
	// Put retains the secret for a photo hash. Storing must happen before
	// the registration call is submitted, so a failed registration can be
	// retried against the same commitment.
	Put(ctx context.Context, photoHash PhotoHash, secret Secret) error

	// Get returns the retained secret for a photo hash, or ErrSecretNotFound.
	Get(ctx context.Context, photoHash PhotoHash) (Secret, error)

	// Delete removes the retained secret. Deleting an absent entry is a
	// no-op.
	Delete(ctx context.Context, photoHash PhotoHash) error
}
