package commitment

import (
	"crypto/rand"
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/adilhusain01/arbipic/interfaces"
)

// Generate draws a fresh 256-bit secret from a cryptographically secure
// random source and derives the commitment for photoHash. The caller is
// responsible for submitting the commitment to the registry and for
// retaining the secret indefinitely; the secret is never sent at
// registration time.
func Generate(photoHash interfaces.PhotoHash) (interfaces.Secret, interfaces.Commitment, error) {
	var secret interfaces.Secret
	if _, err := io.ReadFull(rand.Reader, secret[:]); err != nil {
		return interfaces.Secret{}, interfaces.Commitment{}, fmt.Errorf("failed to draw secret: %w", err)
	}

	return secret, Derive(photoHash, secret), nil
}

// Derive computes Keccak256(photoHash || secret) over the 64-byte
// concatenation of the two values. The concatenation is hashed as a whole,
// not hashed separately and combined, so a secret bound to one photo hash
// cannot be mixed and matched with another. This is the exact derivation the
// registry recomputes at proof time.
func Derive(photoHash interfaces.PhotoHash, secret interfaces.Secret) interfaces.Commitment {
	var data [64]byte
	copy(data[:32], photoHash.Bytes())
	copy(data[32:], secret.Bytes())

	return interfaces.Commitment(crypto.Keccak256Hash(data[:]))
}

// Check is the local counterpart of the registry's proof check: it reports
// whether secret is consistent with commitment for photoHash. Holders use it
// to sanity-check a secret before revealing it in a proof request.
func Check(photoHash interfaces.PhotoHash, commitment interfaces.Commitment, secret interfaces.Secret) bool {
	return Derive(photoHash, secret).Equal(commitment)
}

// HashPhoto computes the Keccak256 content digest of raw image bytes. The
// registry does not recompute this digest; it trusts the caller to supply a
// strong digest of the underlying content.
func HashPhoto(imageBytes []byte) interfaces.PhotoHash {
	return interfaces.PhotoHash(crypto.Keccak256Hash(imageBytes))
}
