// The arbipic command is the client-side tool for photo attestation. It
// hashes images, generates commitments, retains secrets locally or in Vault,
// uploads photos to storage backends, and talks to the attestation service.
package main

import (
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/adilhusain01/arbipic/clients"
	"github.com/adilhusain01/arbipic/cmd/flags"
	"github.com/adilhusain01/arbipic/common"
	"github.com/adilhusain01/arbipic/commitment"
	"github.com/adilhusain01/arbipic/interfaces"
	"github.com/adilhusain01/arbipic/pipeline"
	"github.com/adilhusain01/arbipic/secrets"
	"github.com/adilhusain01/arbipic/storage"
)

var serverAddrFlag = &cli.StringFlag{
	Name:  "server-addr",
	Value: "http://127.0.0.1:8080",
	Usage: "base URL of the attestation service",
}

var vaultAddrFlag = &cli.StringFlag{
	Name:  "vault-addr",
	Usage: "Vault server address; when set, secrets are retained in Vault instead of the local sealed store",
}

var vaultTokenFlag = &cli.StringFlag{
	Name:    "vault-token",
	Usage:   "Vault authentication token",
	EnvVars: []string{"VAULT_TOKEN"},
}

var commonClientFlags = append([]cli.Flag{
	serverAddrFlag,
	flags.StorageFlag,
	flags.SecretsDirFlag,
	flags.SecretsPassphraseFlag,
	vaultAddrFlag,
	vaultTokenFlag,
	flags.OwnerFlag,
}, flags.CommonFlags...)

func main() {
	app := &cli.App{
		Name:    "arbipic",
		Usage:   "Attest photo ownership and prove it later",
		Version: common.Version,
		Commands: []*cli.Command{
			{
				Name:      "attest",
				Usage:     "Hash a photo, upload it, and register the attestation",
				ArgsUsage: "<image file>",
				Flags:     commonClientFlags,
				Action:    runAttest,
			},
			{
				Name:      "prove",
				Usage:     "Prove ownership of an attested photo using the retained secret",
				ArgsUsage: "<image file>",
				Flags:     commonClientFlags,
				Action:    runProve,
			},
			{
				Name:      "status",
				Usage:     "Show the attestation record for a photo",
				ArgsUsage: "<image file>",
				Flags:     commonClientFlags,
				Action:    runStatus,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func readImageArg(cCtx *cli.Context) ([]byte, error) {
	if cCtx.NArg() != 1 {
		return nil, errors.New("expected exactly one image file argument")
	}
	return os.ReadFile(cCtx.Args().First())
}

func buildSecretStore(cCtx *cli.Context, logger *slog.Logger) (interfaces.SecretStore, error) {
	if vaultAddr := cCtx.String(vaultAddrFlag.Name); vaultAddr != "" {
		return secrets.NewVaultSecretStore(vaultAddr, cCtx.String(vaultTokenFlag.Name), "secret", "arbipic", logger)
	}

	secretsDir := cCtx.String(flags.SecretsDirFlag.Name)
	if secretsDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("cannot determine home directory: %w", err)
		}
		secretsDir = filepath.Join(home, ".arbipic", "secrets")
	}

	passphrase := cCtx.String(flags.SecretsPassphraseFlag.Name)
	if passphrase == "" {
		return nil, errors.New("secrets-passphrase is required for the local secret store")
	}

	return secrets.NewFileSecretStore(secretsDir, []byte(passphrase), logger)
}

func buildStorage(cCtx *cli.Context, logger *slog.Logger) (interfaces.StorageBackend, error) {
	uris := cCtx.StringSlice(flags.StorageFlag.Name)
	if len(uris) == 0 {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("cannot determine home directory: %w", err)
		}
		uris = []string{"file://" + filepath.Join(home, ".arbipic", "photos")}
	}

	factory := storage.NewStorageBackendFactory(logger)
	return factory.CreateMultiBackend(uris)
}

func buildAttestor(cCtx *cli.Context, logger *slog.Logger) (*pipeline.Attestor, error) {
	owner, err := interfaces.NewOwnerAddressFromHex(cCtx.String(flags.OwnerFlag.Name))
	if err != nil {
		return nil, fmt.Errorf("invalid owner address: %w", err)
	}

	secretStore, err := buildSecretStore(cCtx, logger)
	if err != nil {
		return nil, err
	}

	backend, err := buildStorage(cCtx, logger)
	if err != nil {
		return nil, err
	}

	registry := &clients.AttestationClient{ServerAddr: cCtx.String(serverAddrFlag.Name)}
	return pipeline.NewAttestor(registry, secretStore, backend, owner, nil, logger), nil
}

func runAttest(cCtx *cli.Context) error {
	logger := flags.SetupLogger(cCtx)

	image, err := readImageArg(cCtx)
	if err != nil {
		return err
	}

	attestor, err := buildAttestor(cCtx, logger)
	if err != nil {
		return err
	}

	receipt, err := attestor.Attest(cCtx.Context, image)
	if err != nil {
		return err
	}

	if !receipt.Registered {
		fmt.Println("photo was already attested; existing record:")
	}
	fmt.Printf("photo hash:  %s\n", receipt.PhotoHash)
	fmt.Printf("content id:  %s\n", receipt.ContentID)
	fmt.Printf("owner:       %s\n", receipt.Owner)
	fmt.Printf("verified at: %s\n", receipt.VerifiedAt)
	return nil
}

func runProve(cCtx *cli.Context) error {
	logger := flags.SetupLogger(cCtx)

	image, err := readImageArg(cCtx)
	if err != nil {
		return err
	}

	attestor, err := buildAttestor(cCtx, logger)
	if err != nil {
		return err
	}

	valid, err := attestor.ProveImage(cCtx.Context, image)
	if err != nil {
		if errors.Is(err, interfaces.ErrSecretNotFound) {
			return errors.New("no secret retained for this photo; the proof cannot be produced")
		}
		return err
	}

	if valid {
		fmt.Println("proof valid: ownership confirmed")
		return nil
	}
	fmt.Println("proof invalid: secret does not match the registered commitment")
	return nil
}

func runStatus(cCtx *cli.Context) error {
	logger := flags.SetupLogger(cCtx)

	image, err := readImageArg(cCtx)
	if err != nil {
		return err
	}

	photoHash := commitment.HashPhoto(image)
	registry := &clients.AttestationClient{ServerAddr: cCtx.String(serverAddrFlag.Name)}

	att, err := registry.GetAttestation(cCtx.Context, photoHash)
	if err != nil {
		return err
	}

	fmt.Printf("photo hash: %s\n", photoHash)
	if att.IsZero() {
		fmt.Println("status:     not attested")
		return nil
	}

	fmt.Println("status:     attested")
	fmt.Printf("owner:       %s\n", att.Owner)
	fmt.Printf("commitment:  %s\n", att.Commitment)
	fmt.Printf("verified at: %s\n", att.VerifiedAt)

	logger.Debug("Attestation read", slog.String("photo_hash", photoHash.String()))
	return nil
}
