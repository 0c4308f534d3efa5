// Package clients provides an HTTP client for the attestation REST API. The
// client implements interfaces.AttestationRegistry, so code written against
// the registry interface can talk to a remote service without changes.
package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"

	"github.com/adilhusain01/arbipic/httpserver"
	"github.com/adilhusain01/arbipic/interfaces"
)

// AttestationClient is an HTTP-based implementation of
// interfaces.AttestationRegistry backed by a remote attestation service.
type AttestationClient struct {
	// ServerAddr is the base URL of the attestation service.
	ServerAddr string

	// HTTPClient is used for all requests; http.DefaultClient when nil.
	HTTPClient *http.Client
}

func (c *AttestationClient) client() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c *AttestationClient) doJSON(ctx context.Context, method, path string, body, out any) (int, error) {
	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return 0, err
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.ServerAddr+path, reqBody)
	if err != nil {
		return 0, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client().Do(req)
	if err != nil {
		return 0, fmt.Errorf("could not request attestation endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		bodyBytes, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return resp.StatusCode, fmt.Errorf("attestation endpoint returned error %d", resp.StatusCode)
		}
		return resp.StatusCode, fmt.Errorf("attestation endpoint returned error %d: %s", resp.StatusCode, string(bodyBytes))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("could not parse attestation response: %w", err)
		}
	}
	return resp.StatusCode, nil
}

// Register creates an attestation record for photoHash. A 409 response from
// the service maps to interfaces.ErrAlreadyRegistered.
func (c *AttestationClient) Register(ctx context.Context, caller interfaces.OwnerAddress, photoHash interfaces.PhotoHash, commitment interfaces.Commitment) (*big.Int, error) {
	var resp httpserver.RegisterResponse
	status, err := c.doJSON(ctx, http.MethodPost, "/api/v1/attestations", httpserver.RegisterRequest{
		PhotoHash:  photoHash.String(),
		Commitment: commitment.String(),
		Owner:      caller.String(),
	}, &resp)
	if err != nil {
		if status == http.StatusConflict {
			return nil, interfaces.ErrAlreadyRegistered
		}
		return nil, err
	}

	verifiedAt, ok := new(big.Int).SetString(resp.VerifiedAt, 10)
	if !ok {
		return nil, fmt.Errorf("invalid verified_at in response: %q", resp.VerifiedAt)
	}
	return verifiedAt, nil
}

// GetAttestation returns the record for photoHash, or the zero-valued record
// if the service has none.
func (c *AttestationClient) GetAttestation(ctx context.Context, photoHash interfaces.PhotoHash) (interfaces.Attestation, error) {
	var resp httpserver.AttestationResponse
	if _, err := c.doJSON(ctx, http.MethodGet, "/api/v1/attestations/"+photoHash.String(), nil, &resp); err != nil {
		return interfaces.Attestation{}, err
	}

	if !resp.Verified {
		return interfaces.Attestation{}, nil
	}

	owner, err := interfaces.NewOwnerAddressFromHex(resp.Owner)
	if err != nil {
		return interfaces.Attestation{}, fmt.Errorf("invalid owner in response: %w", err)
	}

	commitment, err := interfaces.NewCommitmentFromHex(resp.Commitment)
	if err != nil {
		return interfaces.Attestation{}, fmt.Errorf("invalid commitment in response: %w", err)
	}

	verifiedAt, ok := new(big.Int).SetString(resp.VerifiedAt, 10)
	if !ok {
		return interfaces.Attestation{}, fmt.Errorf("invalid verified_at in response: %q", resp.VerifiedAt)
	}

	return interfaces.Attestation{
		VerifiedAt: verifiedAt,
		Owner:      owner,
		Commitment: commitment,
	}, nil
}

// IsVerified reports whether photoHash has an attestation record.
func (c *AttestationClient) IsVerified(ctx context.Context, photoHash interfaces.PhotoHash) (bool, error) {
	var resp httpserver.AttestationResponse
	if _, err := c.doJSON(ctx, http.MethodGet, "/api/v1/attestations/"+photoHash.String()+"/verified", nil, &resp); err != nil {
		return false, err
	}
	return resp.Verified, nil
}

// GetOwnerOf returns the registrant of photoHash, or the zero address.
func (c *AttestationClient) GetOwnerOf(ctx context.Context, photoHash interfaces.PhotoHash) (interfaces.OwnerAddress, error) {
	att, err := c.GetAttestation(ctx, photoHash)
	if err != nil {
		return interfaces.OwnerAddress{}, err
	}
	return att.Owner, nil
}

// VerifyProof submits the revealed secret to the service for checking.
func (c *AttestationClient) VerifyProof(ctx context.Context, photoHash interfaces.PhotoHash, secret interfaces.Secret) (bool, error) {
	var resp httpserver.VerifyProofResponse
	if _, err := c.doJSON(ctx, http.MethodPost, "/api/v1/proofs/verify", httpserver.VerifyProofRequest{
		PhotoHash: photoHash.String(),
		Secret:    secret.String(),
	}, &resp); err != nil {
		return false, err
	}
	return resp.Valid, nil
}

// GetOwnerPhotoCount returns the number of records registered by owner.
func (c *AttestationClient) GetOwnerPhotoCount(ctx context.Context, owner interfaces.OwnerAddress) (*big.Int, error) {
	var resp httpserver.PhotoCountResponse
	if _, err := c.doJSON(ctx, http.MethodGet, "/api/v1/owners/"+owner.String()+"/photo-count", nil, &resp); err != nil {
		return nil, err
	}

	count, ok := new(big.Int).SetString(resp.PhotoCount, 10)
	if !ok {
		return nil, fmt.Errorf("invalid photo_count in response: %q", resp.PhotoCount)
	}
	return count, nil
}

// GetPhotoCount returns the total number of registered records.
func (c *AttestationClient) GetPhotoCount(ctx context.Context) (*big.Int, error) {
	var resp httpserver.PhotoCountResponse
	if _, err := c.doJSON(ctx, http.MethodGet, "/api/v1/photo-count", nil, &resp); err != nil {
		return nil, err
	}

	count, ok := new(big.Int).SetString(resp.PhotoCount, 10)
	if !ok {
		return nil, fmt.Errorf("invalid photo_count in response: %q", resp.PhotoCount)
	}
	return count, nil
}

// ContractOwner returns the identity operating the remote registry.
func (c *AttestationClient) ContractOwner(ctx context.Context) (interfaces.OwnerAddress, error) {
	var resp httpserver.ContractOwnerResponse
	if _, err := c.doJSON(ctx, http.MethodGet, "/api/v1/contract-owner", nil, &resp); err != nil {
		return interfaces.OwnerAddress{}, err
	}
	return interfaces.NewOwnerAddressFromHex(resp.Owner)
}
