package registry

import (
	"bytes"
	"context"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adilhusain01/arbipic/commitment"
	"github.com/adilhusain01/arbipic/interfaces"
)

// fixedClock returns a preset sequence of ledger timestamps.
type fixedClock struct {
	times []int64
	next  int
}

func (c *fixedClock) Now() *big.Int {
	t := c.times[c.next]
	if c.next < len(c.times)-1 {
		c.next++
	}
	return big.NewInt(t)
}

func repeatByte(b byte) [32]byte {
	var out [32]byte
	for i := range out {
		out[i] = b
	}
	return out
}

func newTestRegistry() *LedgerRegistry {
	return NewLedgerRegistry(&fixedClock{times: []int64{1000, 1001, 1002, 1003}}, addr(0xEE))
}

func addr(b byte) interfaces.OwnerAddress {
	var a interfaces.OwnerAddress
	for i := range a {
		a[i] = b
	}
	return a
}

func TestRegisterAndLookup(t *testing.T) {
	ctx := context.Background()
	reg := newTestRegistry()

	photoHash := interfaces.PhotoHash(repeatByte(0xAA))
	secret := interfaces.Secret(repeatByte(0x11))
	comm := commitment.Derive(photoHash, secret)
	owner := addr(0x01)

	verifiedAt, err := reg.Register(ctx, owner, photoHash, comm)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), verifiedAt.Int64())

	verified, err := reg.IsVerified(ctx, photoHash)
	require.NoError(t, err)
	assert.True(t, verified)

	gotOwner, err := reg.GetOwnerOf(ctx, photoHash)
	require.NoError(t, err)
	assert.Equal(t, owner, gotOwner)

	count, err := reg.GetPhotoCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count.Int64())

	att, err := reg.GetAttestation(ctx, photoHash)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), att.VerifiedAt.Int64())
	assert.Equal(t, owner, att.Owner)
	assert.True(t, att.Commitment.Equal(comm))
}

func TestRegisterWriteOnce(t *testing.T) {
	ctx := context.Background()
	reg := newTestRegistry()

	photoHash := interfaces.PhotoHash(repeatByte(0xAA))
	firstCommitment := commitment.Derive(photoHash, interfaces.Secret(repeatByte(0x11)))
	firstOwner := addr(0x01)

	firstVerifiedAt, err := reg.Register(ctx, firstOwner, photoHash, firstCommitment)
	require.NoError(t, err)

	// Second attempt from a different owner with a different commitment.
	otherCommitment := commitment.Derive(photoHash, interfaces.Secret(repeatByte(0x99)))
	_, err = reg.Register(ctx, addr(0x02), photoHash, otherCommitment)
	assert.ErrorIs(t, err, interfaces.ErrAlreadyRegistered)

	// Stored record still reflects the original registration.
	att, err := reg.GetAttestation(ctx, photoHash)
	require.NoError(t, err)
	assert.Equal(t, firstVerifiedAt, att.VerifiedAt)
	assert.Equal(t, firstOwner, att.Owner)
	assert.True(t, att.Commitment.Equal(firstCommitment))

	// The failed write left the counters untouched.
	count, err := reg.GetPhotoCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count.Int64())

	otherCount, err := reg.GetOwnerPhotoCount(ctx, addr(0x02))
	require.NoError(t, err)
	assert.Equal(t, int64(0), otherCount.Int64())
}

func TestVerifyProof(t *testing.T) {
	ctx := context.Background()
	reg := newTestRegistry()

	photoHash := interfaces.PhotoHash(repeatByte(0xAA))
	secret := interfaces.Secret(repeatByte(0x11))
	comm := commitment.Derive(photoHash, secret)

	_, err := reg.Register(ctx, addr(0x01), photoHash, comm)
	require.NoError(t, err)

	ok, err := reg.VerifyProof(ctx, photoHash, secret)
	require.NoError(t, err)
	assert.True(t, ok, "the registrant's secret should verify")

	ok, err = reg.VerifyProof(ctx, photoHash, interfaces.Secret(repeatByte(0x22)))
	require.NoError(t, err)
	assert.False(t, ok, "a wrong secret should not verify")

	// Proof checks are pure: neither outcome changed any state.
	count, err := reg.GetPhotoCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count.Int64())
}

func TestVerifyProofAbsentHash(t *testing.T) {
	ctx := context.Background()
	reg := newTestRegistry()

	ok, err := reg.VerifyProof(ctx, interfaces.PhotoHash(repeatByte(0xFF)), interfaces.Secret(repeatByte(0x11)))
	require.NoError(t, err)
	assert.False(t, ok, "an absent record is a false result, not a failure")
}

func TestVerifyProofIdempotent(t *testing.T) {
	ctx := context.Background()
	reg := newTestRegistry()

	photoHash := interfaces.PhotoHash(repeatByte(0xAA))
	secret := interfaces.Secret(repeatByte(0x11))
	comm := commitment.Derive(photoHash, secret)

	_, err := reg.Register(ctx, addr(0x01), photoHash, comm)
	require.NoError(t, err)

	before, err := reg.GetAttestation(ctx, photoHash)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		ok, err := reg.VerifyProof(ctx, photoHash, secret)
		require.NoError(t, err)
		assert.True(t, ok)
	}

	after, err := reg.GetAttestation(ctx, photoHash)
	require.NoError(t, err)
	assert.Equal(t, before.VerifiedAt, after.VerifiedAt)
	assert.Equal(t, before.Owner, after.Owner)
	assert.True(t, bytes.Equal(before.Commitment.Bytes(), after.Commitment.Bytes()))
}

func TestGetAttestationAbsent(t *testing.T) {
	ctx := context.Background()
	reg := newTestRegistry()

	att, err := reg.GetAttestation(ctx, interfaces.PhotoHash(repeatByte(0xFF)))
	require.NoError(t, err)
	assert.Equal(t, int64(0), att.VerifiedAt.Int64())
	assert.True(t, att.Owner.IsZero())
	assert.True(t, att.Commitment.IsZero())
	assert.True(t, att.IsZero())

	verified, err := reg.IsVerified(ctx, interfaces.PhotoHash(repeatByte(0xFF)))
	require.NoError(t, err)
	assert.False(t, verified)
}

func TestCounterConsistency(t *testing.T) {
	ctx := context.Background()
	reg := newTestRegistry()

	owners := []interfaces.OwnerAddress{addr(0x01), addr(0x01), addr(0x02)}
	hashes := []interfaces.PhotoHash{
		interfaces.PhotoHash(repeatByte(0xA1)),
		interfaces.PhotoHash(repeatByte(0xA2)),
		interfaces.PhotoHash(repeatByte(0xA3)),
	}

	for i := range hashes {
		comm := commitment.Derive(hashes[i], interfaces.Secret(repeatByte(byte(i + 1))))
		_, err := reg.Register(ctx, owners[i], hashes[i], comm)
		require.NoError(t, err)
	}

	total, err := reg.GetPhotoCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(len(hashes)), total.Int64())

	countA, err := reg.GetOwnerPhotoCount(ctx, addr(0x01))
	require.NoError(t, err)
	assert.Equal(t, int64(2), countA.Int64())

	countB, err := reg.GetOwnerPhotoCount(ctx, addr(0x02))
	require.NoError(t, err)
	assert.Equal(t, int64(1), countB.Int64())

	countC, err := reg.GetOwnerPhotoCount(ctx, addr(0x03))
	require.NoError(t, err)
	assert.Equal(t, int64(0), countC.Int64())
}

func TestZeroCommitmentAccepted(t *testing.T) {
	// The quick registration path submits a commitment the client never
	// intends to prove against; the registry accepts any 256-bit value.
	ctx := context.Background()
	reg := newTestRegistry()

	photoHash := interfaces.PhotoHash(repeatByte(0xAB))
	_, err := reg.Register(ctx, addr(0x01), photoHash, interfaces.Commitment{})
	require.NoError(t, err)

	verified, err := reg.IsVerified(ctx, photoHash)
	require.NoError(t, err)
	assert.True(t, verified)

	// No secret derives the all-zero commitment, so proofs simply fail.
	ok, err := reg.VerifyProof(ctx, photoHash, interfaces.Secret{})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTimestampCopiedOnRead(t *testing.T) {
	ctx := context.Background()
	reg := newTestRegistry()

	photoHash := interfaces.PhotoHash(repeatByte(0xAA))
	_, err := reg.Register(ctx, addr(0x01), photoHash, interfaces.Commitment(repeatByte(0x55)))
	require.NoError(t, err)

	att, err := reg.GetAttestation(ctx, photoHash)
	require.NoError(t, err)
	att.VerifiedAt.SetInt64(99) // mutate the returned copy

	again, err := reg.GetAttestation(ctx, photoHash)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), again.VerifiedAt.Int64())
}

func TestContractOwner(t *testing.T) {
	reg := NewLedgerRegistry(WallClock{}, addr(0xEE))

	owner, err := reg.ContractOwner(context.Background())
	require.NoError(t, err)
	assert.Equal(t, addr(0xEE), owner)
}

func TestWallClockPositive(t *testing.T) {
	now := WallClock{}.Now()
	assert.Equal(t, 1, now.Sign(), "ledger clock must always be positive")
}
