package registry

import (
	"context"
	"math/big"

	"github.com/stretchr/testify/mock"

	"github.com/adilhusain01/arbipic/interfaces"
)

// MockRegistry mocks the interfaces.AttestationRegistry interface.
type MockRegistry struct {
	mock.Mock
}

// Register mocks the Register method.
func (m *MockRegistry) Register(ctx context.Context, caller interfaces.OwnerAddress, photoHash interfaces.PhotoHash, commitment interfaces.Commitment) (*big.Int, error) {
	args := m.Called(ctx, caller, photoHash, commitment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*big.Int), args.Error(1)
}

// GetAttestation mocks the GetAttestation method.
func (m *MockRegistry) GetAttestation(ctx context.Context, photoHash interfaces.PhotoHash) (interfaces.Attestation, error) {
	args := m.Called(ctx, photoHash)
	return args.Get(0).(interfaces.Attestation), args.Error(1)
}

// IsVerified mocks the IsVerified method.
func (m *MockRegistry) IsVerified(ctx context.Context, photoHash interfaces.PhotoHash) (bool, error) {
	args := m.Called(ctx, photoHash)
	return args.Bool(0), args.Error(1)
}

// GetOwnerOf mocks the GetOwnerOf method.
func (m *MockRegistry) GetOwnerOf(ctx context.Context, photoHash interfaces.PhotoHash) (interfaces.OwnerAddress, error) {
	args := m.Called(ctx, photoHash)
	return args.Get(0).(interfaces.OwnerAddress), args.Error(1)
}

// VerifyProof mocks the VerifyProof method.
func (m *MockRegistry) VerifyProof(ctx context.Context, photoHash interfaces.PhotoHash, secret interfaces.Secret) (bool, error) {
	args := m.Called(ctx, photoHash, secret)
	return args.Bool(0), args.Error(1)
}

// GetOwnerPhotoCount mocks the GetOwnerPhotoCount method.
func (m *MockRegistry) GetOwnerPhotoCount(ctx context.Context, owner interfaces.OwnerAddress) (*big.Int, error) {
	args := m.Called(ctx, owner)
	return args.Get(0).(*big.Int), args.Error(1)
}

// GetPhotoCount mocks the GetPhotoCount method.
func (m *MockRegistry) GetPhotoCount(ctx context.Context) (*big.Int, error) {
	args := m.Called(ctx)
	return args.Get(0).(*big.Int), args.Error(1)
}

// ContractOwner mocks the ContractOwner method.
func (m *MockRegistry) ContractOwner(ctx context.Context) (interfaces.OwnerAddress, error) {
	args := m.Called(ctx)
	return args.Get(0).(interfaces.OwnerAddress), args.Error(1)
}
