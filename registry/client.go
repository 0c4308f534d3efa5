package registry

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"

	"github.com/adilhusain01/arbipic/interfaces"
)

// ErrNoTransactOpts is returned when a registration is attempted without
// first setting transaction options.
var ErrNoTransactOpts = errors.New("no authorized transactor available")

// verifierABI describes the deployed Verifier contract. Hashes, commitments,
// secrets, counters, and timestamps all cross the ABI boundary as uint256.
const verifierABI = `[
  {"type":"function","name":"register","stateMutability":"nonpayable","inputs":[{"name":"photoHash","type":"uint256"},{"name":"commitment","type":"uint256"}],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"getAttestation","stateMutability":"view","inputs":[{"name":"photoHash","type":"uint256"}],"outputs":[{"name":"","type":"uint256"},{"name":"","type":"address"},{"name":"","type":"uint256"}]},
  {"type":"function","name":"isVerified","stateMutability":"view","inputs":[{"name":"photoHash","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
  {"type":"function","name":"verifyProof","stateMutability":"view","inputs":[{"name":"photoHash","type":"uint256"},{"name":"secret","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
  {"type":"function","name":"getOwnerOf","stateMutability":"view","inputs":[{"name":"photoHash","type":"uint256"}],"outputs":[{"name":"","type":"address"}]},
  {"type":"function","name":"getOwnerPhotoCount","stateMutability":"view","inputs":[{"name":"owner","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"getPhotoCount","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"getContractOwner","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]}
]`

// OnchainRegistryClient implements the interfaces.AttestationRegistry
// interface against a Verifier contract deployed on an Ethereum-compatible
// chain. Reads go through eth_call; Register submits a transaction and waits
// for it to be mined.
type OnchainRegistryClient struct {
	contract *bind.BoundContract
	backend  bind.DeployBackend
	address  common.Address
	auth     *bind.TransactOpts
}

// NewOnchainRegistryClient creates a client for the Verifier contract at the
// specified address. It requires a ContractBackend for reading from the
// blockchain and a DeployBackend for waiting on transactions.
func NewOnchainRegistryClient(client bind.ContractBackend, backend bind.DeployBackend, address common.Address) (*OnchainRegistryClient, error) {
	parsed, err := abi.JSON(strings.NewReader(verifierABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse verifier ABI: %w", err)
	}

	return &OnchainRegistryClient{
		contract: bind.NewBoundContract(address, parsed, client, client, client),
		backend:  backend,
		address:  address,
	}, nil
}

// SetTransactOpts sets the transaction options required for Register. This
// must be called before any method that sends transactions to the blockchain.
func (c *OnchainRegistryClient) SetTransactOpts(auth *bind.TransactOpts) {
	c.auth = auth
}

// Address returns the Verifier contract address.
func (c *OnchainRegistryClient) Address() common.Address {
	return c.address
}

// Register submits the registration transaction and waits for it to be
// mined, then reads back the assigned timestamp. The caller argument is
// informational only: on chain the owner is the transaction sender, so the
// configured transactor must match it.
//
// Duplicate registrations surface as interfaces.ErrAlreadyRegistered. The
// existence check happens before the transaction is sent, and a reverted
// transaction is re-checked against the registry so a lost race reports the
// same error.
func (c *OnchainRegistryClient) Register(ctx context.Context, caller interfaces.OwnerAddress, photoHash interfaces.PhotoHash, comm interfaces.Commitment) (*big.Int, error) {
	if c.auth == nil {
		return nil, ErrNoTransactOpts
	}

	verified, err := c.IsVerified(ctx, photoHash)
	if err != nil {
		return nil, err
	}
	if verified {
		return nil, interfaces.ErrAlreadyRegistered
	}

	tx, err := c.contract.Transact(c.auth, "register", photoHash.Big(), comm.Big())
	if err != nil {
		return nil, fmt.Errorf("failed to send register transaction: %w", err)
	}

	receipt, err := bind.WaitMined(ctx, c.backend, tx)
	if err != nil {
		return nil, fmt.Errorf("failed to wait for register transaction: %w", err)
	}
	if receipt.Status != 1 {
		// The transaction reverted; if the hash is registered by now we
		// lost an ordering race, which callers treat as success-with-no-op.
		if verified, verr := c.IsVerified(ctx, photoHash); verr == nil && verified {
			return nil, interfaces.ErrAlreadyRegistered
		}
		return nil, fmt.Errorf("register transaction %s reverted", tx.Hash().Hex())
	}

	att, err := c.GetAttestation(ctx, photoHash)
	if err != nil {
		return nil, err
	}
	return att.VerifiedAt, nil
}

// GetAttestation returns the record for photoHash. An absent record comes
// back zero-valued, exactly as the contract stores it.
func (c *OnchainRegistryClient) GetAttestation(ctx context.Context, photoHash interfaces.PhotoHash) (interfaces.Attestation, error) {
	var out []interface{}
	err := c.contract.Call(&bind.CallOpts{Context: ctx}, &out, "getAttestation", photoHash.Big())
	if err != nil {
		return interfaces.Attestation{}, fmt.Errorf("getAttestation call failed: %w", err)
	}

	verifiedAt := out[0].(*big.Int)
	owner := out[1].(common.Address)
	commitmentWord := out[2].(*big.Int)

	var comm interfaces.Commitment
	commitmentWord.FillBytes(comm[:])

	return interfaces.Attestation{
		VerifiedAt: verifiedAt,
		Owner:      interfaces.OwnerAddress(owner),
		Commitment: comm,
	}, nil
}

// IsVerified reports whether a record exists for photoHash.
func (c *OnchainRegistryClient) IsVerified(ctx context.Context, photoHash interfaces.PhotoHash) (bool, error) {
	var out []interface{}
	err := c.contract.Call(&bind.CallOpts{Context: ctx}, &out, "isVerified", photoHash.Big())
	if err != nil {
		return false, fmt.Errorf("isVerified call failed: %w", err)
	}

	return out[0].(bool), nil
}

// GetOwnerOf returns the registrant of photoHash, or the zero address.
func (c *OnchainRegistryClient) GetOwnerOf(ctx context.Context, photoHash interfaces.PhotoHash) (interfaces.OwnerAddress, error) {
	var out []interface{}
	err := c.contract.Call(&bind.CallOpts{Context: ctx}, &out, "getOwnerOf", photoHash.Big())
	if err != nil {
		return interfaces.OwnerAddress{}, fmt.Errorf("getOwnerOf call failed: %w", err)
	}

	return interfaces.OwnerAddress(out[0].(common.Address)), nil
}

// VerifyProof asks the contract to re-derive the commitment from the
// revealed secret and compare it against the stored one. This is a read-only
// eth_call: it never reverts on a wrong secret and costs nothing to repeat.
// Note that the secret travels to the RPC node and is visible to any
// observer of the call.
func (c *OnchainRegistryClient) VerifyProof(ctx context.Context, photoHash interfaces.PhotoHash, secret interfaces.Secret) (bool, error) {
	var out []interface{}
	err := c.contract.Call(&bind.CallOpts{Context: ctx}, &out, "verifyProof", photoHash.Big(), secret.Big())
	if err != nil {
		return false, fmt.Errorf("verifyProof call failed: %w", err)
	}

	return out[0].(bool), nil
}

// GetOwnerPhotoCount returns the number of records registered by owner.
func (c *OnchainRegistryClient) GetOwnerPhotoCount(ctx context.Context, owner interfaces.OwnerAddress) (*big.Int, error) {
	var out []interface{}
	err := c.contract.Call(&bind.CallOpts{Context: ctx}, &out, "getOwnerPhotoCount", common.Address(owner))
	if err != nil {
		return nil, fmt.Errorf("getOwnerPhotoCount call failed: %w", err)
	}

	return out[0].(*big.Int), nil
}

// GetPhotoCount returns the total number of registered records.
func (c *OnchainRegistryClient) GetPhotoCount(ctx context.Context) (*big.Int, error) {
	var out []interface{}
	err := c.contract.Call(&bind.CallOpts{Context: ctx}, &out, "getPhotoCount")
	if err != nil {
		return nil, fmt.Errorf("getPhotoCount call failed: %w", err)
	}

	return out[0].(*big.Int), nil
}

// ContractOwner returns the identity that deployed the Verifier contract.
func (c *OnchainRegistryClient) ContractOwner(ctx context.Context) (interfaces.OwnerAddress, error) {
	var out []interface{}
	err := c.contract.Call(&bind.CallOpts{Context: ctx}, &out, "getContractOwner")
	if err != nil {
		return interfaces.OwnerAddress{}, fmt.Errorf("getContractOwner call failed: %w", err)
	}

	return interfaces.OwnerAddress(out[0].(common.Address)), nil
}
