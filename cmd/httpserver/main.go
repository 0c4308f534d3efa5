// The httpserver command serves the photo attestation REST API.
//
// The API is backed either by an in-memory ledger (the default, useful for
// development and testing) or by the on-chain Verifier contract when a
// registry contract address is provided.
package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/urfave/cli/v2"

	"github.com/adilhusain01/arbipic/cmd/flags"
	"github.com/adilhusain01/arbipic/common"
	"github.com/adilhusain01/arbipic/httpserver"
	"github.com/adilhusain01/arbipic/interfaces"
	"github.com/adilhusain01/arbipic/metrics"
	"github.com/adilhusain01/arbipic/registry"
)

var serverFlags = append([]cli.Flag{
	&cli.StringFlag{
		Name:  "listen-addr",
		Value: "127.0.0.1:8080",
		Usage: "address to listen on for API",
	},
	flags.RPCAddrFlag,
	flags.ContractAddrFlag,
	flags.OwnerFlag,
}, flags.CommonFlags...)

func main() {
	app := &cli.App{
		Name:    "attestation-server",
		Usage:   "Serve the photo attestation registry API",
		Version: common.Version,
		Flags:   serverFlags,
		Action: func(cCtx *cli.Context) error {
			listenAddr := cCtx.String("listen-addr")
			contractAddr := cCtx.String(flags.ContractAddrFlag.Name)

			logger := flags.SetupLogger(cCtx)

			var reg interfaces.AttestationRegistry
			if contractAddr != "" {
				rpcAddress := cCtx.String(flags.RPCAddrFlag.Name)
				logger.Info("Connecting to Ethereum RPC", "address", rpcAddress)
				ethClient, err := ethclient.Dial(rpcAddress)
				if err != nil {
					logger.Error("Failed to dial RPC", "err", err)
					return err
				}

				if !ethcommon.IsHexAddress(contractAddr) {
					return fmt.Errorf("invalid registry contract address: %s", contractAddr)
				}

				reg, err = registry.NewOnchainRegistryClient(ethClient, ethClient, ethcommon.HexToAddress(contractAddr))
				if err != nil {
					logger.Error("Failed to create registry client", "err", err)
					return err
				}
				logger.Info("Using on-chain registry", "contract", contractAddr)
			} else {
				operator, err := interfaces.NewOwnerAddressFromHex(cCtx.String(flags.OwnerFlag.Name))
				if err != nil {
					// The operator identity is optional for the in-memory
					// ledger; fall back to the zero address.
					operator = interfaces.OwnerAddress{}
				}
				reg = registry.NewLedgerRegistry(registry.WallClock{}, operator)
				logger.Info("Using in-memory ledger registry")
			}

			handler := httpserver.NewHandler(reg, metrics.New(common.PackageName), logger)

			cfg := flags.ConfigureServer(cCtx, logger, listenAddr)
			server, err := httpserver.New(cfg, handler)
			if err != nil {
				logger.Error("Failed to create server", "err", err)
				return err
			}

			server.RunInBackground()

			exit := make(chan os.Signal, 1)
			signal.Notify(exit, os.Interrupt, syscall.SIGTERM)

			logger.Info("Server is running, press Ctrl+C to stop")
			<-exit
			logger.Info("Shutdown signal received")

			server.Shutdown()
			logger.Info("Server shutdown complete")

			return nil
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
