// Package commitment implements the client-side hash-commitment protocol
// that pairs with the attestation registry.
//
// At capture time the client generates a random 256-bit secret and a
// commitment Keccak256(photoHash || secret), submits only the commitment to
// the registry, and retains the secret. Later, any holder of the secret can
// reveal it to the registry's read-only proof check, which re-derives the
// commitment and compares.
//
// This is a commitment scheme, not a zero-knowledge proof. Revealing the
// secret during a proof check discloses it to whoever observes the call: the
// binding is not deniable, not unlinkable across repeated proofs, and not
// resistant to interception at proof time. Callers depend on exactly these
// guarantees, so implementations must not silently strengthen the scheme.
package commitment
