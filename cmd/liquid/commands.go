package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/tokenized/liquid/assets"
	"github.com/tokenized/liquid/esplora"
	"github.com/tokenized/liquid/liquid"
	"github.com/tokenized/liquid/storage"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/tokenized/logger"
	"github.com/urfave/cli"
)

const (
	exitSuccess            = 0
	exitFailure            = 1
	exitEntropyUnavailable = 2
	exitInvalidKey         = 3
	exitUnsupportedNetwork = 4
	exitInvalidAssetID     = 5
	exitAssetNotFound      = 6
	exitAssetLookupFailed  = 7
)

var (
	networkFlag = cli.StringFlag{
		Name:  "network, n",
		Usage: "network name (liquidv1, liquidtestnet, elementsregtest). Defaults to LIQUID_NETWORK",
	}
)

type application struct {
	ctx   context.Context
	cfg   *Config
	out   io.Writer
	trace string

	// random is the entropy source for new keys.
	random io.Reader

	newFetcher func(context.Context, liquid.Network) (assets.Fetcher, error)
}

func newApplication(ctx context.Context, cfg *Config, out io.Writer) *application {
	result := &application{
		ctx:    ctx,
		cfg:    cfg,
		out:    out,
		trace:  uuid.New().String(),
		random: rand.Reader,
	}
	result.newFetcher = result.buildFetcher
	return result
}

func newApp(a *application) *cli.App {
	app := cli.NewApp()
	app.Name = "liquid"
	app.Usage = "Liquid key, address, and asset tool"
	app.HideVersion = true
	app.Writer = a.out
	app.Commands = []cli.Command{
		{
			Name:      "generate-address",
			Usage:     "Generate a new key and its P2WPKH address",
			ArgsUsage: " ",
			Flags:     []cli.Flag{networkFlag},
			Action:    a.generateAddress,
		},
		{
			Name:      "asset-info",
			Usage:     "Display information about a Liquid asset",
			ArgsUsage: "<asset_id>",
			Flags:     []cli.Flag{networkFlag},
			Action:    a.assetInfo,
		},
		{
			Name:      "validate-address",
			Usage:     "Check that an address is a valid unconfidential Liquid segwit address",
			ArgsUsage: "<address>",
			Flags:     []cli.Flag{networkFlag},
			Action:    a.validateAddress,
		},
	}

	return app
}

func (a *application) generateAddress(c *cli.Context) error {
	net, err := a.network(c)
	if err != nil {
		return exitError(err)
	}

	ctx := a.ctx

	generated, err := liquid.GenerateFromReader(a.random, net)
	if err != nil {
		logger.ErrorWithFields(ctx, []logger.Field{
			logger.String("trace", a.trace),
			logger.Stringer("network", net),
		}, "Failed to generate address : %s", err)
		return exitError(err)
	}

	fmt.Fprintf(a.out, "Private Key (WIF): %s\n", generated.WIF())
	fmt.Fprintf(a.out, "Liquid Address: %s\n", generated.Address)

	logger.InfoWithFields(ctx, []logger.Field{
		logger.String("trace", a.trace),
		logger.Stringer("network", net),
		logger.Stringer("address", generated.Address),
	}, "Generated address")
	return nil
}

func (a *application) assetInfo(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.NewExitError("asset-info requires one asset id argument", exitFailure)
	}

	net, err := a.network(c)
	if err != nil {
		return exitError(err)
	}

	id, err := assets.NewAssetIDFromStr(c.Args().First())
	if err != nil {
		return exitError(err)
	}

	ctx := a.ctx
	start := time.Now()

	fetcher, err := a.newFetcher(ctx, net)
	if err != nil {
		return cli.NewExitError(errors.Wrap(err, "asset lookup").Error(), exitAssetLookupFailed)
	}

	asset, err := fetcher.GetAsset(ctx, id)
	if err != nil {
		logger.WarnWithFields(ctx, []logger.Field{
			logger.String("trace", a.trace),
			logger.Stringer("asset_id", id),
		}, "Failed to get asset : %s", err)

		if errors.Cause(err) == assets.ErrAssetNotFound {
			return exitError(err)
		}
		return cli.NewExitError(errors.Wrap(err, "asset lookup").Error(), exitAssetLookupFailed)
	}

	logger.VerboseWithFields(ctx, []logger.Field{
		logger.String("trace", a.trace),
		logger.Stringer("asset_id", id),
		logger.MillisecondsFromNano("elapsed_ms", time.Since(start).Nanoseconds()),
	}, "Retrieved asset")

	printAsset(a.out, id, asset)
	return nil
}

func printAsset(w io.Writer, id assets.AssetID, asset *assets.Asset) {
	fmt.Fprintf(w, "Asset ID: %s\n", id)
	fmt.Fprintf(w, "Name: %s\n", valueOrUnknown(asset.Name))
	fmt.Fprintf(w, "Ticker: %s\n", valueOrUnknown(asset.Ticker))
	if asset.Precision != nil {
		fmt.Fprintf(w, "Precision: %d\n", *asset.Precision)
	} else {
		fmt.Fprintf(w, "Precision: Unknown\n")
	}
	fmt.Fprintf(w, "Asset Type: %s\n", asset.AssetType())
	fmt.Fprintf(w, "Issuer: %s\n", valueOrUnknown(asset.Issuer()))

	if asset.Status != nil {
		fmt.Fprintf(w, "Status: %s\n", asset.Status)
	} else if asset.IsPolicyAsset() {
		fmt.Fprintf(w, "Status: Policy Asset\n")
	} else {
		fmt.Fprintf(w, "Status: Unknown\n")
	}

	if amount, known := asset.IssuedAmount(); known {
		fmt.Fprintf(w, "Issued Amount: %s\n", assets.FormatAmount(amount, asset.GetPrecision()))
	} else {
		fmt.Fprintf(w, "Issued Amount: Confidential\n")
	}
}

func valueOrUnknown(s string) string {
	if len(s) == 0 {
		return "Unknown"
	}
	return s
}

func (a *application) validateAddress(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.NewExitError("validate-address requires one address argument", exitFailure)
	}

	var address liquid.Address
	var err error
	if len(c.String("network")) > 0 {
		net, nerr := a.network(c)
		if nerr != nil {
			return exitError(nerr)
		}
		address, err = liquid.DecodeAddressForNet(c.Args().First(), net)
	} else {
		address, err = liquid.DecodeAddress(c.Args().First())
	}

	if err != nil {
		fmt.Fprintf(a.out, "Valid: false\n")
		fmt.Fprintf(a.out, "Reason: %s\n", errors.Cause(err))
		return nil
	}

	fmt.Fprintf(a.out, "Valid: true\n")
	fmt.Fprintf(a.out, "Network: %s\n", address.Network())
	fmt.Fprintf(a.out, "Type: %s\n", address.Type())
	fmt.Fprintf(a.out, "Witness Program: %s\n", hex.EncodeToString(address.WitnessProgram()))
	return nil
}

// network returns the network from the flag or the config.
func (a *application) network(c *cli.Context) (liquid.Network, error) {
	name := c.String("network")
	if len(name) == 0 {
		name = a.cfg.Network
	}

	net := liquid.NetworkFromString(strings.ToLower(name))
	if net == liquid.InvalidNet {
		return liquid.InvalidNet, errors.Wrap(liquid.ErrUnsupportedNetwork, name)
	}

	return net, nil
}

// buildFetcher returns an Esplora client, behind a storage cache unless the bucket is "none".
func (a *application) buildFetcher(ctx context.Context,
	net liquid.Network) (assets.Fetcher, error) {

	service, err := esplora.NewService(a.cfg.EsploraURL, net,
		time.Duration(a.cfg.EsploraTimeoutMS)*time.Millisecond)
	if err != nil {
		return nil, errors.Wrap(err, "esplora")
	}

	storeConfig := storage.NewConfig(a.cfg.AssetCacheBucket, a.cfg.AssetCacheRoot)
	storeConfig.SetupRetry(a.cfg.AssetCacheMaxRetries, a.cfg.AssetCacheRetryDelayMS)
	if storeConfig.Disabled() {
		return service, nil
	}

	store, err := storage.CreateStorage(storeConfig)
	if err != nil {
		return nil, errors.Wrap(err, "storage")
	}

	logger.VerboseWithFields(ctx, []logger.Field{
		logger.String("trace", a.trace),
		logger.String("esplora", service.URL()),
		logger.Stringer("storage", storeConfig),
		logger.Int("max_age_seconds", a.cfg.AssetCacheMaxAgeSeconds),
	}, "Using asset cache")

	return assets.NewCache(service, store, net,
		time.Duration(a.cfg.AssetCacheMaxAgeSeconds)*time.Second), nil
}

// exitCode returns the process exit code for an error.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}

	switch errors.Cause(err) {
	case liquid.ErrEntropyUnavailable:
		return exitEntropyUnavailable
	case liquid.ErrInvalidKey:
		return exitInvalidKey
	case liquid.ErrUnsupportedNetwork:
		return exitUnsupportedNetwork
	case assets.ErrInvalidAssetID:
		return exitInvalidAssetID
	case assets.ErrAssetNotFound:
		return exitAssetNotFound
	}

	return exitFailure
}

func exitError(err error) error {
	return cli.NewExitError(err.Error(), exitCode(err))
}
