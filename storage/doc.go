// Package storage provides content-addressed off-chain storage for photo
// bytes and photo metadata. It is the "decentralized file store"
// collaborator of the attestation pipeline: uploads return an opaque content
// identifier that the registry never reads or validates.
//
// Backends are created from location URIs by StorageBackendFactory:
//
//   - file:///var/lib/arbipic — local filesystem
//   - ipfs://127.0.0.1:5001/?timeout=30s — IPFS node or gateway
//   - s3://ACCESS:SECRET@bucket/prefix?region=us-east-1 — S3 or compatible
//
// MultiStorageBackend aggregates several backends for redundant storage:
// Store writes to every available backend, Fetch returns from the first one
// that has the content.
package storage
