// Package registry implements the attestation registry: an append-mostly
// key-value store mapping a photo hash to an attestation record, with a
// write-once registration entrypoint, read-only lookups, and a read-only
// ownership-proof check.
//
// Two implementations of interfaces.AttestationRegistry are provided:
//
//   - LedgerRegistry holds the records in process, with the caller identity
//     and ledger clock injected explicitly. It is the authoritative backend
//     for self-hosted deployments and for tests.
//
//   - OnchainRegistryClient talks to the Verifier contract deployed on an
//     Ethereum-compatible chain, with values crossing the ABI boundary as
//     uint256.
//
// Per photo hash the only state transition is Unregistered -> Registered;
// Registered is terminal. A duplicate registration fails with
// interfaces.ErrAlreadyRegistered and changes nothing, so clients may treat
// it as success-with-no-op after checking IsVerified.
//
// MockRegistry is a testify mock of the same interface for handler and
// pipeline tests.
package registry
