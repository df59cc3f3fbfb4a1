package main

import (
	"context"
	"errors"
	"fmt"
	"github.com/ZilDuck/nft-marketplace/internal/config"
	"github.com/ZilDuck/nft-marketplace/internal/entity"
	"github.com/ZilDuck/nft-marketplace/internal/messenger"
	"github.com/ethereum/go-ethereum/common"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"math/big"
)

var errInvalidAddress = errors.New("invalid address")

func caller(c *cli.Context) (common.Address, error) {
	from := c.String("from")
	if from == "" {
		from = config.Get().Caller
	}

	return parseAddress(from)
}

func collection(c *cli.Context) (common.Address, error) {
	addr := c.String("collection")
	if addr == "" {
		return container.GetRegistry().Address(), nil
	}

	return parseAddress(addr)
}

func parseAddress(addr string) (common.Address, error) {
	if !common.IsHexAddress(addr) {
		return common.Address{}, fmt.Errorf("%w: %q", errInvalidAddress, addr)
	}

	return common.HexToAddress(addr), nil
}

// payment reads the --value flag, falling back to fallback when it is unset.
func payment(c *cli.Context, fallback func() (*big.Int, error)) (*big.Int, error) {
	if c.String("value") == "" {
		return fallback()
	}

	return entity.ParseEther(c.String("value"))
}

func mint(c *cli.Context) error {
	from, err := caller(c)
	if err != nil {
		return err
	}

	value, err := payment(c, func() (*big.Int, error) { return container.GetRegistry().Price(c.Context) })
	if err != nil {
		return err
	}

	id, err := container.GetRegistry().Mint(c.Context, from, value)
	if err != nil {
		return err
	}

	fmt.Printf("Minted item %d to %s for %s ETH\n", id, from.Hex(), entity.FormatEther(value))
	return nil
}

func showPrice(c *cli.Context) error {
	price, err := container.GetRegistry().Price(c.Context)
	if err != nil {
		return err
	}

	fmt.Printf("%s ETH (%s wei)\n", entity.FormatEther(price), price)
	return nil
}

func setPrice(c *cli.Context) error {
	from, err := caller(c)
	if err != nil {
		return err
	}

	price, err := entity.ParseEther(c.String("price"))
	if err != nil {
		return err
	}

	if err := container.GetRegistry().ChangePrice(c.Context, from, price); err != nil {
		return err
	}

	zap.L().With(zap.String("price", price.String())).Info("Mint price changed")
	return nil
}

func showBaseUri(c *cli.Context) error {
	uri, err := container.GetRegistry().BaseURI(c.Context)
	if err != nil {
		return err
	}

	fmt.Println(uri)
	return nil
}

func setBaseUri(c *cli.Context) error {
	from, err := caller(c)
	if err != nil {
		return err
	}

	return container.GetRegistry().SetBaseURI(c.Context, from, c.String("uri"))
}

func withdraw(c *cli.Context) error {
	from, err := caller(c)
	if err != nil {
		return err
	}

	amount, err := container.GetRegistry().Withdraw(c.Context, from)
	if err != nil {
		return err
	}

	fmt.Printf("Withdrew %s ETH\n", entity.FormatEther(amount))
	return nil
}

func tokenUri(c *cli.Context) error {
	uri, err := container.GetRegistry().TokenURI(c.Context, c.Uint64("item"))
	if err != nil {
		return err
	}

	fmt.Println(uri)
	return nil
}

func owner(c *cli.Context) error {
	addr, err := container.GetRegistry().OwnerOf(c.Context, c.Uint64("item"))
	if err != nil {
		return err
	}

	fmt.Println(addr.Hex())
	return nil
}

func approve(c *cli.Context) error {
	from, err := caller(c)
	if err != nil {
		return err
	}

	to := container.GetMarketplace().Address()
	if c.String("to") != "" {
		if to, err = parseAddress(c.String("to")); err != nil {
			return err
		}
	}

	return container.GetRegistry().Approve(c.Context, from, to, c.Uint64("item"))
}

func transfer(c *cli.Context) error {
	from, err := caller(c)
	if err != nil {
		return err
	}

	to, err := parseAddress(c.String("to"))
	if err != nil {
		return err
	}

	return container.GetRegistry().TransferFrom(c.Context, from, from, to, c.Uint64("item"))
}

func listItem(c *cli.Context) error {
	from, coll, price, err := listingArgs(c)
	if err != nil {
		return err
	}

	return container.GetMarketplace().ListItem(c.Context, from, c.Uint64("item"), coll, price)
}

func updateListing(c *cli.Context) error {
	from, coll, price, err := listingArgs(c)
	if err != nil {
		return err
	}

	return container.GetMarketplace().UpdateListing(c.Context, from, price, c.Uint64("item"), coll)
}

func cancelListing(c *cli.Context) error {
	from, err := caller(c)
	if err != nil {
		return err
	}

	coll, err := collection(c)
	if err != nil {
		return err
	}

	return container.GetMarketplace().CancelListing(c.Context, from, c.Uint64("item"), coll)
}

func buyItem(c *cli.Context) error {
	from, err := caller(c)
	if err != nil {
		return err
	}

	coll, err := collection(c)
	if err != nil {
		return err
	}

	value, err := payment(c, func() (*big.Int, error) {
		listing, err := container.GetMarketplace().GetListing(c.Context, coll, c.Uint64("item"))
		if err != nil {
			return nil, err
		}
		if listing == nil {
			return nil, entity.ErrNotListed
		}
		return listing.Price, nil
	})
	if err != nil {
		return err
	}

	if err := container.GetMarketplace().BuyItem(c.Context, from, c.Uint64("item"), coll, value); err != nil {
		return err
	}

	fmt.Printf("Bought item %d for %s ETH\n", c.Uint64("item"), entity.FormatEther(value))
	return nil
}

func showListing(c *cli.Context) error {
	coll, err := collection(c)
	if err != nil {
		return err
	}

	listing, err := container.GetMarketplace().GetListing(c.Context, coll, c.Uint64("item"))
	if err != nil {
		return err
	}

	if listing == nil {
		fmt.Printf("Item %d is not listed\n", c.Uint64("item"))
		return nil
	}

	printListing(*listing)
	return nil
}

func showListings(c *cli.Context) error {
	filter := entity.ListingFilter{Limit: c.Int("limit")}
	if c.String("collection") != "" {
		coll, err := parseAddress(c.String("collection"))
		if err != nil {
			return err
		}
		filter.Collection = &coll
	}
	if c.String("seller") != "" {
		seller, err := parseAddress(c.String("seller"))
		if err != nil {
			return err
		}
		filter.Seller = &seller
	}

	listings, err := container.GetMarketplace().Listings(c.Context, filter)
	if err != nil {
		return err
	}

	for _, l := range listings {
		printListing(l)
	}
	return nil
}

func showProceeds(c *cli.Context) error {
	addr, err := caller(c)
	if c.String("address") != "" {
		addr, err = parseAddress(c.String("address"))
	}
	if err != nil {
		return err
	}

	balance, err := container.GetMarketplace().GetProceeds(c.Context, addr)
	if err != nil {
		return err
	}

	fmt.Printf("%s ETH\n", entity.FormatEther(balance))
	return nil
}

func withdrawProceeds(c *cli.Context) error {
	from, err := caller(c)
	if err != nil {
		return err
	}

	amount, err := container.GetMarketplace().WithdrawProceeds(c.Context, from)
	if err != nil {
		return err
	}

	fmt.Printf("Withdrew %s ETH\n", entity.FormatEther(amount))
	return nil
}

// mintAndList mints at the current price, approves the marketplace and lists
// the new item.
func mintAndList(c *cli.Context) error {
	from, err := caller(c)
	if err != nil {
		return err
	}

	listPrice, err := entity.ParseEther(c.String("price"))
	if err != nil {
		return err
	}

	reg := container.GetRegistry()
	market := container.GetMarketplace()

	var id uint64
	err = container.GetStore().Update(c.Context, func(ctx context.Context) error {
		price, err := reg.Price(ctx)
		if err != nil {
			return err
		}

		if id, err = reg.Mint(ctx, from, price); err != nil {
			return err
		}
		if err := reg.Approve(ctx, from, market.Address(), id); err != nil {
			return err
		}

		return market.ListItem(ctx, from, id, reg.Address(), listPrice)
	})
	if err != nil {
		return err
	}

	fmt.Printf("Minted and listed item %d for %s ETH\n", id, entity.FormatEther(listPrice))
	return nil
}

func history(c *cli.Context) error {
	coll, err := collection(c)
	if err != nil {
		return err
	}

	actions, err := container.GetMarketplace().History(c.Context, coll, c.Uint64("item"), c.Int("limit"))
	if err != nil {
		return err
	}

	for _, a := range actions {
		fmt.Printf("%s %-16s from=%s to=%s cost=%s\n", a.CreatedAt.Format("2006-01-02T15:04:05Z"), a.Action, a.From.Hex(), a.To.Hex(), a.Cost)
	}
	return nil
}

func watch(c *cli.Context) error {
	if config.Get().AmqpUri == "" {
		return errors.New("AMQP_URI is not configured")
	}

	return container.GetMessenger().ConsumeMessages(messenger.MarketplaceEvents, c.String("queue"), func(routingKey string, body []byte) {
		env, err := messenger.DecodeEnvelope(body)
		if err != nil {
			zap.L().With(zap.Error(err), zap.String("routingKey", routingKey)).Warn("Unreadable event")
			return
		}

		fmt.Printf("%s %s item=%d from=%s to=%s cost=%s\n", env.Type, env.Action.Collection.Hex(), env.Action.ItemId, env.Action.From.Hex(), env.Action.To.Hex(), env.Action.Cost)
	})
}

func listingArgs(c *cli.Context) (common.Address, common.Address, *big.Int, error) {
	from, err := caller(c)
	if err != nil {
		return common.Address{}, common.Address{}, nil, err
	}

	coll, err := collection(c)
	if err != nil {
		return common.Address{}, common.Address{}, nil, err
	}

	price, err := entity.ParseEther(c.String("price"))
	if err != nil {
		return common.Address{}, common.Address{}, nil, err
	}

	return from, coll, price, nil
}

func printListing(l entity.Listing) {
	fmt.Printf("%s item=%d seller=%s price=%s ETH\n", l.Collection.Hex(), l.ItemId, l.Seller.Hex(), entity.FormatEther(l.Price))
}
