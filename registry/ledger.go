package registry

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/adilhusain01/arbipic/commitment"
	"github.com/adilhusain01/arbipic/interfaces"
)

// LedgerRegistry is an authoritative in-process implementation of the
// interfaces.AttestationRegistry interface. It reproduces the host ledger's
// serial execution model: writes are applied one at a time under an
// exclusive lock, so two concurrent registrations for the same photo hash
// race at the ordering layer and exactly one is applied. Reads always
// observe the most recently committed state.
type LedgerRegistry struct {
	mutex sync.RWMutex

	attestations    map[interfaces.PhotoHash]interfaces.Attestation
	ownerPhotoCount map[interfaces.OwnerAddress]*big.Int
	photoCount      *big.Int

	clock         interfaces.LedgerClock
	contractOwner interfaces.OwnerAddress
}

// WallClock is a LedgerClock backed by the system clock, reporting Unix
// seconds. The value is always positive, so a zero VerifiedAt reliably means
// "no record".
type WallClock struct{}

// Now returns the current Unix time in seconds.
func (WallClock) Now() *big.Int {
	return big.NewInt(time.Now().Unix())
}

// NewLedgerRegistry creates an empty registry. The clock timestamps
// registrations and must return strictly positive values; contractOwner is
// the deploying/operating identity, recorded once and never changed.
func NewLedgerRegistry(clock interfaces.LedgerClock, contractOwner interfaces.OwnerAddress) *LedgerRegistry {
	return &LedgerRegistry{
		attestations:    make(map[interfaces.PhotoHash]interfaces.Attestation),
		ownerPhotoCount: make(map[interfaces.OwnerAddress]*big.Int),
		photoCount:      big.NewInt(0),
		clock:           clock,
		contractOwner:   contractOwner,
	}
}

// Register creates the attestation record for photoHash and returns the
// assigned ledger timestamp. A second registration for the same hash fails
// with interfaces.ErrAlreadyRegistered and leaves all state untouched: the
// existence check and the full write happen under one exclusive lock, so the
// operation is atomic all-or-nothing.
//
// Any syntactically valid 256-bit commitment is accepted, including the
// all-zero value; the registry asserts the commitment derivation by
// protocol, not at write time.
func (r *LedgerRegistry) Register(ctx context.Context, caller interfaces.OwnerAddress, photoHash interfaces.PhotoHash, comm interfaces.Commitment) (*big.Int, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.attestations[photoHash]; exists {
		return nil, interfaces.ErrAlreadyRegistered
	}

	verifiedAt := new(big.Int).Set(r.clock.Now())
	r.attestations[photoHash] = interfaces.Attestation{
		VerifiedAt: verifiedAt,
		Owner:      caller,
		Commitment: comm,
	}

	count, ok := r.ownerPhotoCount[caller]
	if !ok {
		count = big.NewInt(0)
		r.ownerPhotoCount[caller] = count
	}
	count.Add(count, big.NewInt(1))
	r.photoCount.Add(r.photoCount, big.NewInt(1))

	return new(big.Int).Set(verifiedAt), nil
}

// GetAttestation returns the record for photoHash, or the zero-valued record
// if absent. Callers distinguish "absent" by comparing VerifiedAt to zero.
func (r *LedgerRegistry) GetAttestation(ctx context.Context, photoHash interfaces.PhotoHash) (interfaces.Attestation, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	att, exists := r.attestations[photoHash]
	if !exists {
		return interfaces.Attestation{VerifiedAt: big.NewInt(0)}, nil
	}

	// Copy so callers cannot alias the stored timestamp.
	return interfaces.Attestation{
		VerifiedAt: new(big.Int).Set(att.VerifiedAt),
		Owner:      att.Owner,
		Commitment: att.Commitment,
	}, nil
}

// IsVerified reports whether a record exists for photoHash.
func (r *LedgerRegistry) IsVerified(ctx context.Context, photoHash interfaces.PhotoHash) (bool, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	_, exists := r.attestations[photoHash]
	return exists, nil
}

// GetOwnerOf returns the registrant of photoHash, or the zero address if no
// record exists.
func (r *LedgerRegistry) GetOwnerOf(ctx context.Context, photoHash interfaces.PhotoHash) (interfaces.OwnerAddress, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return r.attestations[photoHash].Owner, nil
}

// VerifyProof recomputes Keccak256(photoHash || secret) and compares it
// byte-for-byte against the stored commitment. The derivation is computed
// before the record lookup so that a miss costs the same as a mismatch, and
// a false result carries no signal about which part of the guess was wrong.
// The check never mutates state and is free to call repeatedly.
func (r *LedgerRegistry) VerifyProof(ctx context.Context, photoHash interfaces.PhotoHash, secret interfaces.Secret) (bool, error) {
	computed := commitment.Derive(photoHash, secret)

	r.mutex.RLock()
	defer r.mutex.RUnlock()

	att, exists := r.attestations[photoHash]
	if !exists {
		return false, nil
	}

	return computed.Equal(att.Commitment), nil
}

// GetOwnerPhotoCount returns the number of records registered by owner.
func (r *LedgerRegistry) GetOwnerPhotoCount(ctx context.Context, owner interfaces.OwnerAddress) (*big.Int, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	count, ok := r.ownerPhotoCount[owner]
	if !ok {
		return big.NewInt(0), nil
	}
	return new(big.Int).Set(count), nil
}

// GetPhotoCount returns the total number of registered records.
func (r *LedgerRegistry) GetPhotoCount(ctx context.Context) (*big.Int, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return new(big.Int).Set(r.photoCount), nil
}

// ContractOwner returns the registry's operating identity.
func (r *LedgerRegistry) ContractOwner(ctx context.Context) (interfaces.OwnerAddress, error) {
	return r.contractOwner, nil
}
