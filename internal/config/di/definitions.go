package di

import (
	"context"
	"fmt"
	"github.com/ZilDuck/nft-marketplace/internal/api"
	"github.com/ZilDuck/nft-marketplace/internal/config"
	"github.com/ZilDuck/nft-marketplace/internal/entity"
	"github.com/ZilDuck/nft-marketplace/internal/marketplace"
	"github.com/ZilDuck/nft-marketplace/internal/messenger"
	"github.com/ZilDuck/nft-marketplace/internal/metadata"
	"github.com/ZilDuck/nft-marketplace/internal/payout"
	"github.com/ZilDuck/nft-marketplace/internal/registry"
	"github.com/ZilDuck/nft-marketplace/internal/repository"
	"github.com/ZilDuck/nft-marketplace/internal/store"
	"github.com/ethereum/go-ethereum/common"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/patrickmn/go-cache"
	"github.com/sarulabs/di/v2"
	"go.uber.org/zap"
	"time"
)

var Definitions = []di.Def{
	{
		Name: "store",
		Build: func(ctn di.Container) (interface{}, error) {
			bs, err := store.OpenBadger(context.Background(), config.Get().DataDir)
			if err != nil {
				zap.L().With(zap.Error(err), zap.String("path", config.Get().DataDir)).Fatal("Failed to open store")
			}

			return bs, nil
		},
		Close: func(obj interface{}) error {
			return obj.(*store.BadgerStore).Close()
		},
	},
	{
		Name: "cache",
		Build: func(ctn di.Container) (interface{}, error) {
			return cache.New(5*time.Minute, 10*time.Minute), nil
		},
	},
	{
		Name: "ipfs.client",
		Build: func(ctn di.Container) (interface{}, error) {
			client := retryablehttp.NewClient()
			client.RetryMax = 2
			client.Logger = nil
			client.HTTPClient.Timeout = time.Duration(config.Get().IpfsTimeout) * time.Second

			return client, nil
		},
	},
	{
		Name: "payout.client",
		Build: func(ctn di.Container) (interface{}, error) {
			client := retryablehttp.NewClient()
			client.RetryMax = config.Get().Payout.Retries
			client.Logger = nil
			client.HTTPClient.Timeout = 30 * time.Second

			return client, nil
		},
	},
	{
		Name: "messenger",
		Build: func(ctn di.Container) (interface{}, error) {
			return messenger.NewMessenger(config.Get().AmqpUri), nil
		},
		Close: func(obj interface{}) error {
			return obj.(*messenger.Messenger).Close()
		},
	},
	{
		Name: "metadata.service",
		Build: func(ctn di.Container) (interface{}, error) {
			return metadata.NewMetadataService(
				ctn.Get("ipfs.client").(*retryablehttp.Client),
				ctn.Get("cache").(*cache.Cache),
				config.Get().IpfsHosts,
			), nil
		},
	},
	{
		Name: "wallet",
		Build: func(ctn di.Container) (interface{}, error) {
			bs := ctn.Get("store").(*store.BadgerStore)
			return payout.NewWallet(bs, repository.NewAccountRepository(bs)), nil
		},
	},
	{
		Name: "payer",
		Build: func(ctn di.Container) (interface{}, error) {
			if config.Get().Payout.Mode == config.PayoutModeWebhook {
				zap.L().With(zap.String("url", config.Get().Payout.WebhookUrl)).Info("Paying out through webhook")
				return payout.NewWebhook(config.Get().Payout.WebhookUrl, ctn.Get("payout.client").(*retryablehttp.Client)), nil
			}

			return ctn.Get("wallet").(*payout.Wallet), nil
		},
	},
	{
		Name: "action.repo",
		Build: func(ctn di.Container) (interface{}, error) {
			return repository.NewActionRepository(ctn.Get("store").(*store.BadgerStore)), nil
		},
	},
	{
		Name: "registry",
		Build: func(ctn di.Container) (interface{}, error) {
			cfg := config.Get()
			bs := ctn.Get("store").(*store.BadgerStore)

			price, err := entity.ParseEther(cfg.MintPrice)
			if err != nil {
				return nil, err
			}
			address, err := parseAddress("COLLECTION_ADDRESS", cfg.CollectionAddress)
			if err != nil {
				return nil, err
			}
			admin, err := parseAddress("ADMIN_ADDRESS", cfg.Admin)
			if err != nil {
				return nil, err
			}

			return registry.NewRegistry(context.Background(), registry.Config{
				Address: address,
				Admin:   admin,
				Name:    cfg.Name,
				Symbol:  cfg.Symbol,
				Price:   price,
				BaseUri: cfg.BaseUri,
			},
				bs,
				repository.NewItemRepository(bs),
				repository.NewSettingsRepository(bs),
				ctn.Get("action.repo").(repository.ActionRepository),
				ctn.Get("payer").(payout.Payer),
			)
		},
	},
	{
		Name: "marketplace",
		Build: func(ctn di.Container) (interface{}, error) {
			bs := ctn.Get("store").(*store.BadgerStore)

			address, err := parseAddress("MARKETPLACE_ADDRESS", config.Get().MarketplaceAddress)
			if err != nil {
				return nil, err
			}

			engine, err := marketplace.NewEngine(
				address,
				bs,
				repository.NewListingRepository(bs),
				repository.NewProceedsRepository(bs),
				ctn.Get("action.repo").(repository.ActionRepository),
				ctn.Get("payer").(payout.Payer),
			)
			if err != nil {
				return nil, err
			}
			engine.AddCollection(ctn.Get("registry").(*registry.Registry))

			return engine, nil
		},
	},
	{
		Name: "api.server",
		Build: func(ctn di.Container) (interface{}, error) {
			return api.NewServer(
				ctn.Get("registry").(*registry.Registry),
				ctn.Get("marketplace").(*marketplace.Engine),
				ctn.Get("metadata.service").(metadata.Service),
			), nil
		},
	},
}

func parseAddress(name, value string) (common.Address, error) {
	if !common.IsHexAddress(value) {
		return common.Address{}, fmt.Errorf("%s is not a valid address: %q", name, value)
	}

	return common.HexToAddress(value), nil
}
