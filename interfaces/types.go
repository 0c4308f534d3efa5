// Package interfaces defines the core types and contracts for the photo
// attestation system. It provides the contract between different components
// without implementation details.
package interfaces

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// PhotoHash is the 32-byte content digest of an image, the primary key of the
// attestation registry. It is caller-supplied and assumed to already be a
// strong cryptographic digest of the underlying content.
type PhotoHash [32]byte

// NewPhotoHashFromBytes creates a photo hash from a raw 32-byte slice.
func NewPhotoHashFromBytes(source []byte) (PhotoHash, error) {
	if len(source) != 32 {
		return PhotoHash{}, errors.New("invalid photo hash length: must be 32 bytes")
	}

	var h PhotoHash
	copy(h[:], source)
	return h, nil
}

// NewPhotoHashFromHex creates a photo hash from a 64-character hex string,
// with or without a 0x prefix.
func NewPhotoHashFromHex(source string) (PhotoHash, error) {
	raw, err := decodeHex32(source)
	if err != nil {
		return PhotoHash{}, fmt.Errorf("invalid photo hash: %w", err)
	}
	return PhotoHash(raw), nil
}

// String returns the hex representation of the hash.
func (h PhotoHash) String() string {
	return hex.EncodeToString(h[:])
}

// Bytes returns the raw 32-byte hash.
func (h PhotoHash) Bytes() []byte {
	return h[:]
}

// Big returns the hash as a big-endian uint256 for the ABI boundary.
func (h PhotoHash) Big() *big.Int {
	return new(big.Int).SetBytes(h[:])
}

// IsZero reports whether the hash is the zero value.
func (h PhotoHash) IsZero() bool {
	return h == PhotoHash{}
}

// Equal compares two photo hashes for equality.
func (h PhotoHash) Equal(other PhotoHash) bool {
	return bytes.Equal(h[:], other[:])
}

// Commitment is the 32-byte value bound to a photo hash at registration time.
// The registry treats it as opaque: it is never decomposed, only re-derived
// from a revealed secret and compared.
type Commitment [32]byte

// NewCommitmentFromBytes creates a commitment from a raw 32-byte slice.
func NewCommitmentFromBytes(source []byte) (Commitment, error) {
	if len(source) != 32 {
		return Commitment{}, errors.New("invalid commitment length: must be 32 bytes")
	}

	var c Commitment
	copy(c[:], source)
	return c, nil
}

// NewCommitmentFromHex creates a commitment from a 64-character hex string.
func NewCommitmentFromHex(source string) (Commitment, error) {
	raw, err := decodeHex32(source)
	if err != nil {
		return Commitment{}, fmt.Errorf("invalid commitment: %w", err)
	}
	return Commitment(raw), nil
}

// String returns the hex representation of the commitment.
func (c Commitment) String() string {
	return hex.EncodeToString(c[:])
}

// Bytes returns the raw 32-byte commitment.
func (c Commitment) Bytes() []byte {
	return c[:]
}

// Big returns the commitment as a big-endian uint256 for the ABI boundary.
func (c Commitment) Big() *big.Int {
	return new(big.Int).SetBytes(c[:])
}

// IsZero reports whether the commitment is the zero value.
func (c Commitment) IsZero() bool {
	return c == Commitment{}
}

// Equal compares two commitments for equality.
func (c Commitment) Equal(other Commitment) bool {
	return bytes.Equal(c[:], other[:])
}

// Secret is the client-held 32-byte pre-image half of a commitment. It is
// generated at commitment time, never persisted in the registry, and revealed
// only to answer ownership-proof requests. Losing it makes the ownership
// proof permanently unavailable for that hash.
type Secret [32]byte

// NewSecretFromBytes creates a secret from a raw 32-byte slice.
func NewSecretFromBytes(source []byte) (Secret, error) {
	if len(source) != 32 {
		return Secret{}, errors.New("invalid secret length: must be 32 bytes")
	}

	var s Secret
	copy(s[:], source)
	return s, nil
}

// NewSecretFromHex creates a secret from a 64-character hex string.
func NewSecretFromHex(source string) (Secret, error) {
	raw, err := decodeHex32(source)
	if err != nil {
		return Secret{}, fmt.Errorf("invalid secret: %w", err)
	}
	return Secret(raw), nil
}

// String returns the hex representation of the secret.
func (s Secret) String() string {
	return hex.EncodeToString(s[:])
}

// Bytes returns the raw 32-byte secret.
func (s Secret) Bytes() []byte {
	return s[:]
}

// Big returns the secret as a big-endian uint256 for the ABI boundary.
func (s Secret) Big() *big.Int {
	return new(big.Int).SetBytes(s[:])
}

// IsZero reports whether the secret is the zero value.
func (s Secret) IsZero() bool {
	return s == Secret{}
}

// OwnerAddress is the 20-byte identity of a registrant, supplied by an
// external wallet/identity provider and treated as opaque by the registry.
// The zero address means "absent".
type OwnerAddress [20]byte

// NewOwnerAddressFromBytes creates an owner address from a raw 20-byte slice.
func NewOwnerAddressFromBytes(source []byte) (OwnerAddress, error) {
	if len(source) != 20 {
		return OwnerAddress{}, errors.New("invalid address length: must be 20 bytes")
	}

	var addr OwnerAddress
	copy(addr[:], source)
	return addr, nil
}

// NewOwnerAddressFromHex creates an owner address from a 40-character hex
// string, with or without a 0x prefix.
func NewOwnerAddressFromHex(source string) (OwnerAddress, error) {
	clean := strings.TrimPrefix(source, "0x")
	if len(clean) != 40 {
		return OwnerAddress{}, errors.New("invalid address length: hex string must be 40 characters")
	}

	raw, err := hex.DecodeString(clean)
	if err != nil {
		return OwnerAddress{}, fmt.Errorf("invalid hex format: %w", err)
	}

	return NewOwnerAddressFromBytes(raw)
}

// String returns the hex representation of the address.
func (addr OwnerAddress) String() string {
	return hex.EncodeToString(addr[:])
}

// Bytes returns the raw 20-byte address.
func (addr OwnerAddress) Bytes() []byte {
	return addr[:]
}

// IsZero reports whether the address is the zero address.
func (addr OwnerAddress) IsZero() bool {
	return addr == OwnerAddress{}
}

// Equal compares two owner addresses for equality.
func (addr OwnerAddress) Equal(other OwnerAddress) bool {
	return addr == other
}

func decodeHex32(source string) ([32]byte, error) {
	clean := strings.TrimPrefix(source, "0x")
	if len(clean) != 64 {
		return [32]byte{}, errors.New("hex string must be 64 characters")
	}

	raw, err := hex.DecodeString(clean)
	if err != nil {
		return [32]byte{}, fmt.Errorf("invalid hex format: %w", err)
	}

	var out [32]byte
	copy(out[:], raw)
	return out, nil
}
