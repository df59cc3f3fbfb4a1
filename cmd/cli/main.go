package main

import (
	"github.com/ZilDuck/nft-marketplace/internal/config"
	"github.com/ZilDuck/nft-marketplace/internal/config/di"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"os"
)

var container *di.Container

var (
	fromFlag       = &cli.StringFlag{Name: "from", Value: "", Usage: "caller address (defaults to CALLER_ADDRESS)"}
	itemFlag       = &cli.Uint64Flag{Name: "item", Required: true, Usage: "item id"}
	collectionFlag = &cli.StringFlag{Name: "collection", Value: "", Usage: "collection address (defaults to COLLECTION_ADDRESS)"}
	priceFlag      = &cli.StringFlag{Name: "price", Required: true, Usage: "price in ether, e.g. 0.01"}
	valueFlag      = &cli.StringFlag{Name: "value", Value: "", Usage: "payment in ether (defaults to the current price)"}
	toFlag         = &cli.StringFlag{Name: "to", Required: true, Usage: "receiving address"}
	addressFlag    = &cli.StringFlag{Name: "address", Value: "", Usage: "address to inspect (defaults to the caller)"}
	limitFlag      = &cli.IntFlag{Name: "limit", Value: 20, Usage: "maximum number of results"}
)

func main() {
	config.Init("cli")

	app := &cli.App{
		Name:   "market",
		Usage:  "operate the NFT registry and marketplace",
		Before: boot,
		After:  shutdown,
		Commands: []*cli.Command{
			{
				Name:   "mint",
				Usage:  "Mint the next item to the caller",
				Action: mint,
				Flags:  []cli.Flag{fromFlag, valueFlag},
			},
			{
				Name:   "price",
				Usage:  "Show the current mint price",
				Action: showPrice,
			},
			{
				Name:   "set-price",
				Usage:  "Change the mint price (administrator)",
				Action: setPrice,
				Flags:  []cli.Flag{fromFlag, priceFlag},
			},
			{
				Name:   "base-uri",
				Usage:  "Show the metadata base uri",
				Action: showBaseUri,
			},
			{
				Name:   "set-base-uri",
				Usage:  "Change the metadata base uri (administrator)",
				Action: setBaseUri,
				Flags:  []cli.Flag{fromFlag, &cli.StringFlag{Name: "uri", Required: true}},
			},
			{
				Name:   "withdraw",
				Usage:  "Withdraw the mint revenue (administrator)",
				Action: withdraw,
				Flags:  []cli.Flag{fromFlag},
			},
			{
				Name:   "token-uri",
				Usage:  "Show the metadata uri of an item",
				Action: tokenUri,
				Flags:  []cli.Flag{itemFlag},
			},
			{
				Name:   "owner",
				Usage:  "Show the owner of an item",
				Action: owner,
				Flags:  []cli.Flag{itemFlag},
			},
			{
				Name:   "approve",
				Usage:  "Approve an address (the marketplace by default) for an item",
				Action: approve,
				Flags:  []cli.Flag{fromFlag, itemFlag, &cli.StringFlag{Name: "to", Value: ""}},
			},
			{
				Name:   "transfer",
				Usage:  "Transfer an item",
				Action: transfer,
				Flags:  []cli.Flag{fromFlag, itemFlag, toFlag},
			},
			{
				Name:   "list",
				Usage:  "List an item for sale",
				Action: listItem,
				Flags:  []cli.Flag{fromFlag, itemFlag, collectionFlag, priceFlag},
			},
			{
				Name:   "update",
				Usage:  "Change the price of a listing",
				Action: updateListing,
				Flags:  []cli.Flag{fromFlag, itemFlag, collectionFlag, priceFlag},
			},
			{
				Name:   "cancel",
				Usage:  "Cancel a listing",
				Action: cancelListing,
				Flags:  []cli.Flag{fromFlag, itemFlag, collectionFlag},
			},
			{
				Name:   "buy",
				Usage:  "Buy a listed item",
				Action: buyItem,
				Flags:  []cli.Flag{fromFlag, itemFlag, collectionFlag, valueFlag},
			},
			{
				Name:   "listing",
				Usage:  "Show a listing",
				Action: showListing,
				Flags:  []cli.Flag{itemFlag, collectionFlag},
			},
			{
				Name:   "listings",
				Usage:  "Show active listings",
				Action: showListings,
				Flags:  []cli.Flag{collectionFlag, &cli.StringFlag{Name: "seller", Value: ""}, limitFlag},
			},
			{
				Name:   "proceeds",
				Usage:  "Show the proceeds of an address (the caller by default)",
				Action: showProceeds,
				Flags:  []cli.Flag{fromFlag, addressFlag},
			},
			{
				Name:   "withdraw-proceeds",
				Usage:  "Withdraw the caller's proceeds",
				Action: withdrawProceeds,
				Flags:  []cli.Flag{fromFlag},
			},
			{
				Name:   "mint-and-list",
				Usage:  "Mint an item, approve the marketplace and list it",
				Action: mintAndList,
				Flags:  []cli.Flag{fromFlag, &cli.StringFlag{Name: "price", Value: "2", Usage: "listing price in ether"}},
			},
			{
				Name:   "history",
				Usage:  "Show the history of an item",
				Action: history,
				Flags:  []cli.Flag{itemFlag, collectionFlag, limitFlag},
			},
			{
				Name:   "watch",
				Usage:  "Print marketplace events published to the broker",
				Action: watch,
				Flags:  []cli.Flag{&cli.StringFlag{Name: "queue", Value: "cli"}},
			},
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		zap.L().With(zap.Error(err)).Fatal("Command failed")
	}
}

func boot(c *cli.Context) error {
	var err error
	container, err = di.NewContainer()
	if err != nil {
		return err
	}

	return nil
}

func shutdown(c *cli.Context) error {
	if container == nil {
		return nil
	}

	return container.Delete()
}
