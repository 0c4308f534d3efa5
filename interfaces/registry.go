package interfaces

import (
	"context"
	"errors"
	"math/big"
)

// ErrAlreadyRegistered is returned when a registration targets a photo hash
// that already has an attestation record. The existing record is never
// overwritten.
var ErrAlreadyRegistered = errors.New("photo hash already registered")

// Attestation is the registry's record binding a photo hash to an owner, a
// ledger timestamp, and a commitment. The zero-valued record means "no
// record": VerifiedAt is never legitimately zero once written, since the
// ledger clock is always positive.
type Attestation struct {
	// VerifiedAt is the ledger time assigned at registration.
	VerifiedAt *big.Int

	// Owner is the identity of the caller that performed the registration.
	Owner OwnerAddress

	// Commitment is the opaque value bound at registration time.
	Commitment Commitment
}

// IsZero reports whether the record is absent.
func (a Attestation) IsZero() bool {
	return (a.VerifiedAt == nil || a.VerifiedAt.Sign() == 0) && a.Owner.IsZero() && a.Commitment.IsZero()
}

// AttestationRegistry is the single source of truth for "hash X was attested
// by identity Y at time T with commitment C", and the authority for
// ownership-proof checks.
//
// The only state transition per key is Unregistered -> Registered; Registered
// is terminal. There is no revoke, update, or transfer: the registry's
// guarantee is immutability of provenance, not mutability of ownership.
type AttestationRegistry interface {
	// Register creates the attestation record for photoHash with the given
	// caller as owner and returns the assigned ledger timestamp. It fails
	// with ErrAlreadyRegistered if a record exists; no partial state change
	// occurs on failure.
	Register(ctx context.Context, caller OwnerAddress, photoHash PhotoHash, commitment Commitment) (*big.Int, error)

	// GetAttestation returns the record for photoHash, or the zero-valued
	// record if absent. It never fails on a missing key.
	GetAttestation(ctx context.Context, photoHash PhotoHash) (Attestation, error)

	// IsVerified reports whether a record exists for photoHash.
	IsVerified(ctx context.Context, photoHash PhotoHash) (bool, error)

	// GetOwnerOf returns the registrant of photoHash, or the zero address if
	// absent.
	GetOwnerOf(ctx context.Context, photoHash PhotoHash) (OwnerAddress, error)

	// VerifyProof recomputes Keccak256(photoHash || secret) and compares it
	// byte-for-byte against the stored commitment. A false result is a
	// normal, first-class outcome for absent records and mismatching
	// secrets alike; the call never mutates state.
	VerifyProof(ctx context.Context, photoHash PhotoHash, secret Secret) (bool, error)

	// GetOwnerPhotoCount returns the number of records registered by owner.
	GetOwnerPhotoCount(ctx context.Context, owner OwnerAddress) (*big.Int, error)

	// GetPhotoCount returns the total number of registered records.
	GetPhotoCount(ctx context.Context) (*big.Int, error)

	// ContractOwner returns the identity that deployed or operates the
	// registry.
	ContractOwner(ctx context.Context) (OwnerAddress, error)
}

// LedgerClock supplies the ledger's notion of "current time" used to
// timestamp registrations. Implementations must return a strictly positive,
// monotonically non-decreasing value.
type LedgerClock interface {
	Now() *big.Int
}
