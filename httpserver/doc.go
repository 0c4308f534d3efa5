/*
Package httpserver implements the HTTP server for the photo attestation
registry.

It exposes the registry's operations as a REST API: registering photo
attestations, reading attestation records, checking ownership proofs, and
reading registration counters. The handler is backed by any
interfaces.AttestationRegistry implementation, so the same API serves both
the in-memory ledger and the on-chain registry client.

# API Endpoints

  - POST /api/v1/attestations - Register a photo attestation
  - GET /api/v1/attestations/{photo_hash} - Get an attestation record
  - GET /api/v1/attestations/{photo_hash}/verified - Check whether a hash is registered
  - POST /api/v1/proofs/verify - Verify an ownership proof
  - GET /api/v1/owners/{address}/photo-count - Count registrations by owner
  - GET /api/v1/photo-count - Count all registrations
  - GET /api/v1/contract-owner - Get the registry operator identity
  - GET /livez - Liveness check
  - GET /readyz - Readiness check
  - GET /drain - Gracefully mark server as not ready
  - GET /undrain - Mark server as ready

Registration is write-once: a second POST for the same photo hash returns
409 Conflict and leaves the existing record untouched. Reads of absent
records return zero-valued responses with status 200; a failed proof check
likewise returns a 200 with valid set to false.

# Example Usage

	cfg := &httpserver.HTTPServerConfig{
		ListenAddr:               ":8080",
		MetricsAddr:              ":8090",
		Log:                      logger,
		DrainDuration:            30 * time.Second,
		GracefulShutdownDuration: 30 * time.Second,
		ReadTimeout:              60 * time.Second,
		WriteTimeout:             30 * time.Second,
	}

	handler := httpserver.NewHandler(reg, metrics.New(common.PackageName), logger)

	server, err := httpserver.New(cfg, handler)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	server.RunInBackground()
	defer server.Shutdown()
*/
package httpserver
