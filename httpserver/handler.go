package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/adilhusain01/arbipic/interfaces"
	"github.com/adilhusain01/arbipic/metrics"
)

// maxBodySize is the maximum allowed request body size (1MB).
const maxBodySize = 1024 * 1024

// RegisterRequest is the body of POST /api/v1/attestations.
type RegisterRequest struct {
	PhotoHash  string `json:"photo_hash"`
	Commitment string `json:"commitment"`
	Owner      string `json:"owner"`
}

// RegisterResponse confirms a successful registration.
type RegisterResponse struct {
	PhotoHash  string `json:"photo_hash"`
	Owner      string `json:"owner"`
	VerifiedAt string `json:"verified_at"`
}

// AttestationResponse is the body of GET /api/v1/attestations/{photo_hash}.
// Absent records are reported with Verified false and zero-valued fields
// rather than an error status.
type AttestationResponse struct {
	PhotoHash  string `json:"photo_hash"`
	Verified   bool   `json:"verified"`
	Owner      string `json:"owner,omitempty"`
	Commitment string `json:"commitment,omitempty"`
	VerifiedAt string `json:"verified_at,omitempty"`
}

// VerifyProofRequest is the body of POST /api/v1/proofs/verify. Submitting it
// reveals the secret to the service; the scheme trades that for simplicity.
type VerifyProofRequest struct {
	PhotoHash string `json:"photo_hash"`
	Secret    string `json:"secret"`
}

// VerifyProofResponse reports the outcome of a proof check. Valid false is a
// normal result, not an error.
type VerifyProofResponse struct {
	PhotoHash string `json:"photo_hash"`
	Valid     bool   `json:"valid"`
}

// PhotoCountResponse carries a registration counter.
type PhotoCountResponse struct {
	Owner      string `json:"owner,omitempty"`
	PhotoCount string `json:"photo_count"`
}

// ContractOwnerResponse identifies the registry operator.
type ContractOwnerResponse struct {
	Owner string `json:"owner"`
}

// Handler processes HTTP requests for the attestation registry service.
type Handler struct {
	registry interfaces.AttestationRegistry
	metrics  *metrics.Metrics
	log      *slog.Logger
}

// NewHandler creates a new HTTP request handler backed by the given registry.
func NewHandler(registry interfaces.AttestationRegistry, m *metrics.Metrics, log *slog.Logger) *Handler {
	return &Handler{
		registry: registry,
		metrics:  m,
		log:      log,
	}
}

// HandleRegister processes attestation registration requests.
//
// URL format: POST /api/v1/attestations
//
// Request body: JSON with photo_hash, commitment (64-char hex) and owner
// (40-char hex address).
//
// Responses: 201 with the assigned ledger timestamp on success, 409 if the
// photo hash already has a record.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	photoHash, err := interfaces.NewPhotoHashFromHex(req.PhotoHash)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	commitment, err := interfaces.NewCommitmentFromHex(req.Commitment)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	owner, err := interfaces.NewOwnerAddressFromHex(req.Owner)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	verifiedAt, err := h.registry.Register(r.Context(), owner, photoHash, commitment)
	if err != nil {
		if errors.Is(err, interfaces.ErrAlreadyRegistered) {
			h.metrics.RegistrationConflicts.Inc()
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		h.log.Error("Registration failed", "err", err,
			slog.String("photo_hash", photoHash.String()),
			slog.String("owner", owner.String()))
		http.Error(w, "Registration failed", http.StatusInternalServerError)
		return
	}

	h.metrics.AttestationsRegistered.Inc()
	h.log.Info("Attestation registered",
		slog.String("photo_hash", photoHash.String()),
		slog.String("owner", owner.String()))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(RegisterResponse{
		PhotoHash:  photoHash.String(),
		Owner:      owner.String(),
		VerifiedAt: verifiedAt.String(),
	})
}

// HandleGetAttestation returns the attestation record for a photo hash.
//
// URL format: GET /api/v1/attestations/{photo_hash}
//
// An unknown hash is not an error: the response has verified set to false and
// the record fields omitted.
func (h *Handler) HandleGetAttestation(w http.ResponseWriter, r *http.Request) {
	photoHash, err := interfaces.NewPhotoHashFromHex(chi.URLParam(r, "photo_hash"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	att, err := h.registry.GetAttestation(r.Context(), photoHash)
	if err != nil {
		h.log.Error("Failed to read attestation", "err", err, slog.String("photo_hash", photoHash.String()))
		http.Error(w, "Failed to read attestation", http.StatusInternalServerError)
		return
	}

	resp := AttestationResponse{
		PhotoHash: photoHash.String(),
		Verified:  !att.IsZero(),
	}
	if resp.Verified {
		resp.Owner = att.Owner.String()
		resp.Commitment = att.Commitment.String()
		resp.VerifiedAt = att.VerifiedAt.String()
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// HandleIsVerified reports whether a photo hash has an attestation record.
//
// URL format: GET /api/v1/attestations/{photo_hash}/verified
func (h *Handler) HandleIsVerified(w http.ResponseWriter, r *http.Request) {
	photoHash, err := interfaces.NewPhotoHashFromHex(chi.URLParam(r, "photo_hash"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	verified, err := h.registry.IsVerified(r.Context(), photoHash)
	if err != nil {
		h.log.Error("Failed to check verification", "err", err, slog.String("photo_hash", photoHash.String()))
		http.Error(w, "Failed to check verification", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(AttestationResponse{
		PhotoHash: photoHash.String(),
		Verified:  verified,
	})
}

// HandleVerifyProof checks an ownership proof.
//
// URL format: POST /api/v1/proofs/verify
//
// Request body: JSON with photo_hash and the revealed secret (64-char hex).
// A mismatching secret or unknown hash yields valid false with status 200.
func (h *Handler) HandleVerifyProof(w http.ResponseWriter, r *http.Request) {
	var req VerifyProofRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	photoHash, err := interfaces.NewPhotoHashFromHex(req.PhotoHash)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	secret, err := interfaces.NewSecretFromHex(req.Secret)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	valid, err := h.registry.VerifyProof(r.Context(), photoHash, secret)
	if err != nil {
		h.log.Error("Proof verification failed", "err", err, slog.String("photo_hash", photoHash.String()))
		http.Error(w, "Proof verification failed", http.StatusInternalServerError)
		return
	}

	h.metrics.IncProofVerified(valid)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(VerifyProofResponse{
		PhotoHash: photoHash.String(),
		Valid:     valid,
	})
}

// HandleOwnerPhotoCount returns the number of attestations registered by an
// owner address. Unknown owners report zero.
//
// URL format: GET /api/v1/owners/{address}/photo-count
func (h *Handler) HandleOwnerPhotoCount(w http.ResponseWriter, r *http.Request) {
	owner, err := interfaces.NewOwnerAddressFromHex(chi.URLParam(r, "address"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	count, err := h.registry.GetOwnerPhotoCount(r.Context(), owner)
	if err != nil {
		h.log.Error("Failed to read owner photo count", "err", err, slog.String("owner", owner.String()))
		http.Error(w, "Failed to read owner photo count", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(PhotoCountResponse{
		Owner:      owner.String(),
		PhotoCount: count.String(),
	})
}

// HandlePhotoCount returns the total number of registered attestations.
//
// URL format: GET /api/v1/photo-count
func (h *Handler) HandlePhotoCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.registry.GetPhotoCount(r.Context())
	if err != nil {
		h.log.Error("Failed to read photo count", "err", err)
		http.Error(w, "Failed to read photo count", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(PhotoCountResponse{
		PhotoCount: count.String(),
	})
}

// HandleContractOwner returns the identity operating the registry.
//
// URL format: GET /api/v1/contract-owner
func (h *Handler) HandleContractOwner(w http.ResponseWriter, r *http.Request) {
	owner, err := h.registry.ContractOwner(r.Context())
	if err != nil {
		h.log.Error("Failed to read contract owner", "err", err)
		http.Error(w, "Failed to read contract owner", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ContractOwnerResponse{
		Owner: owner.String(),
	})
}
