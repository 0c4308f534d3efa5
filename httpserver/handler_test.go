package httpserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adilhusain01/arbipic/commitment"
	"github.com/adilhusain01/arbipic/interfaces"
	"github.com/adilhusain01/arbipic/metrics"
	"github.com/adilhusain01/arbipic/registry"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	operator, err := interfaces.NewOwnerAddressFromHex("00000000000000000000000000000000000000aa")
	require.NoError(t, err)

	reg := registry.NewLedgerRegistry(registry.WallClock{}, operator)
	return NewHandler(reg, metrics.New("arbipic_test"), logger)
}

func testRouter(h *Handler) http.Handler {
	mux := chi.NewRouter()
	mux.Post("/api/v1/attestations", h.HandleRegister)
	mux.Get("/api/v1/attestations/{photo_hash}", h.HandleGetAttestation)
	mux.Get("/api/v1/attestations/{photo_hash}/verified", h.HandleIsVerified)
	mux.Post("/api/v1/proofs/verify", h.HandleVerifyProof)
	mux.Get("/api/v1/owners/{address}/photo-count", h.HandleOwnerPhotoCount)
	mux.Get("/api/v1/photo-count", h.HandlePhotoCount)
	return mux
}

func postJSON(t *testing.T, mux http.Handler, path string, body any) *http.Response {
	t.Helper()

	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w.Result()
}

func getJSON(t *testing.T, mux http.Handler, path string, out any) *http.Response {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	resp := w.Result()

	if out != nil {
		respBody, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(respBody, out), string(respBody))
	}
	return resp
}

func TestHandleRegister_Success(t *testing.T) {
	handler := newTestHandler(t)
	mux := testRouter(handler)

	photoHash := commitment.HashPhoto([]byte("sunset over the bay"))
	_, comm, err := commitment.Generate(photoHash)
	require.NoError(t, err)

	resp := postJSON(t, mux, "/api/v1/attestations", RegisterRequest{
		PhotoHash:  photoHash.String(),
		Commitment: comm.String(),
		Owner:      "1111111111111111111111111111111111111111",
	})
	defer resp.Body.Close()

	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var result RegisterResponse
	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(respBody, &result))

	assert.Equal(t, photoHash.String(), result.PhotoHash)
	assert.Equal(t, "1111111111111111111111111111111111111111", result.Owner)
	assert.NotEqual(t, "0", result.VerifiedAt)
}

func TestHandleRegister_Duplicate(t *testing.T) {
	handler := newTestHandler(t)
	mux := testRouter(handler)

	photoHash := commitment.HashPhoto([]byte("duplicate photo"))
	_, comm, err := commitment.Generate(photoHash)
	require.NoError(t, err)

	req := RegisterRequest{
		PhotoHash:  photoHash.String(),
		Commitment: comm.String(),
		Owner:      "1111111111111111111111111111111111111111",
	}

	resp := postJSON(t, mux, "/api/v1/attestations", req)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// Second registration must be rejected even for a different owner.
	req.Owner = "2222222222222222222222222222222222222222"
	resp = postJSON(t, mux, "/api/v1/attestations", req)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "already registered")
}

func TestHandleRegister_InvalidInput(t *testing.T) {
	handler := newTestHandler(t)
	mux := testRouter(handler)

	tests := []struct {
		name string
		req  RegisterRequest
	}{
		{name: "short photo hash", req: RegisterRequest{PhotoHash: "abcd", Commitment: strings.Repeat("11", 32), Owner: strings.Repeat("22", 20)}},
		{name: "non-hex commitment", req: RegisterRequest{PhotoHash: strings.Repeat("11", 32), Commitment: strings.Repeat("zz", 32), Owner: strings.Repeat("22", 20)}},
		{name: "short owner address", req: RegisterRequest{PhotoHash: strings.Repeat("11", 32), Commitment: strings.Repeat("22", 32), Owner: "1234"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, mux, "/api/v1/attestations", tt.req)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestHandleGetAttestation(t *testing.T) {
	handler := newTestHandler(t)
	mux := testRouter(handler)

	photoHash := commitment.HashPhoto([]byte("registered photo"))
	_, comm, err := commitment.Generate(photoHash)
	require.NoError(t, err)

	resp := postJSON(t, mux, "/api/v1/attestations", RegisterRequest{
		PhotoHash:  photoHash.String(),
		Commitment: comm.String(),
		Owner:      "1111111111111111111111111111111111111111",
	})
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var result AttestationResponse
	resp = getJSON(t, mux, "/api/v1/attestations/"+photoHash.String(), &result)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, result.Verified)
	assert.Equal(t, "1111111111111111111111111111111111111111", result.Owner)
	assert.Equal(t, comm.String(), result.Commitment)
	assert.NotEmpty(t, result.VerifiedAt)
}

func TestHandleGetAttestation_Absent(t *testing.T) {
	handler := newTestHandler(t)
	mux := testRouter(handler)

	absent := commitment.HashPhoto([]byte("never registered"))

	var result AttestationResponse
	resp := getJSON(t, mux, "/api/v1/attestations/"+absent.String(), &result)
	defer resp.Body.Close()

	// Absent records are a normal read, not a 404.
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, result.Verified)
	assert.Empty(t, result.Owner)
	assert.Empty(t, result.Commitment)
}

func TestHandleVerifyProof(t *testing.T) {
	handler := newTestHandler(t)
	mux := testRouter(handler)

	photoHash := commitment.HashPhoto([]byte("proof subject"))
	secret, comm, err := commitment.Generate(photoHash)
	require.NoError(t, err)

	resp := postJSON(t, mux, "/api/v1/attestations", RegisterRequest{
		PhotoHash:  photoHash.String(),
		Commitment: comm.String(),
		Owner:      "1111111111111111111111111111111111111111",
	})
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// Correct secret verifies.
	resp = postJSON(t, mux, "/api/v1/proofs/verify", VerifyProofRequest{
		PhotoHash: photoHash.String(),
		Secret:    secret.String(),
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result VerifyProofResponse
	respBody, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(respBody, &result))
	assert.True(t, result.Valid)

	// Wrong secret is a normal negative result with status 200.
	resp = postJSON(t, mux, "/api/v1/proofs/verify", VerifyProofRequest{
		PhotoHash: photoHash.String(),
		Secret:    strings.Repeat("ab", 32),
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	respBody, err = io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(respBody, &result))
	assert.False(t, result.Valid)
}

func TestHandlePhotoCounts(t *testing.T) {
	handler := newTestHandler(t)
	mux := testRouter(handler)

	owner := "3333333333333333333333333333333333333333"
	for i := 0; i < 3; i++ {
		photoHash := commitment.HashPhoto([]byte(fmt.Sprintf("photo %d", i)))
		_, comm, err := commitment.Generate(photoHash)
		require.NoError(t, err)

		resp := postJSON(t, mux, "/api/v1/attestations", RegisterRequest{
			PhotoHash:  photoHash.String(),
			Commitment: comm.String(),
			Owner:      owner,
		})
		resp.Body.Close()
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	var ownerCount PhotoCountResponse
	resp := getJSON(t, mux, "/api/v1/owners/"+owner+"/photo-count", &ownerCount)
	resp.Body.Close()
	assert.Equal(t, "3", ownerCount.PhotoCount)
	assert.Equal(t, owner, ownerCount.Owner)

	var total PhotoCountResponse
	resp = getJSON(t, mux, "/api/v1/photo-count", &total)
	resp.Body.Close()
	assert.Equal(t, "3", total.PhotoCount)

	// Owners without registrations report zero.
	var unknown PhotoCountResponse
	resp = getJSON(t, mux, "/api/v1/owners/"+strings.Repeat("44", 20)+"/photo-count", &unknown)
	resp.Body.Close()
	assert.Equal(t, "0", unknown.PhotoCount)
}
