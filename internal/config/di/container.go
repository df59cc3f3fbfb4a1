package di

import (
	"github.com/ZilDuck/nft-marketplace/internal/api"
	"github.com/ZilDuck/nft-marketplace/internal/marketplace"
	"github.com/ZilDuck/nft-marketplace/internal/messenger"
	"github.com/ZilDuck/nft-marketplace/internal/metadata"
	"github.com/ZilDuck/nft-marketplace/internal/payout"
	"github.com/ZilDuck/nft-marketplace/internal/registry"
	"github.com/ZilDuck/nft-marketplace/internal/store"
	"github.com/sarulabs/di/v2"
)

type Container struct {
	di.Container
}

func NewContainer() (*Container, error) {
	builder, err := di.NewBuilder()
	if err != nil {
		return nil, err
	}

	if err := builder.Add(Definitions...); err != nil {
		return nil, err
	}

	return &Container{builder.Build()}, nil
}

func (c *Container) GetStore() *store.BadgerStore {
	return c.Get("store").(*store.BadgerStore)
}

func (c *Container) GetRegistry() *registry.Registry {
	return c.Get("registry").(*registry.Registry)
}

func (c *Container) GetMarketplace() *marketplace.Engine {
	return c.Get("marketplace").(*marketplace.Engine)
}

func (c *Container) GetWallet() *payout.Wallet {
	return c.Get("wallet").(*payout.Wallet)
}

func (c *Container) GetMetadataService() metadata.Service {
	return c.Get("metadata.service").(metadata.Service)
}

func (c *Container) GetMessenger() *messenger.Messenger {
	return c.Get("messenger").(*messenger.Messenger)
}

func (c *Container) GetApiServer() api.Server {
	return c.Get("api.server").(api.Server)
}
