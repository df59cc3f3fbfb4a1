package event

type Type string

const (
	ItemMintedEvent       Type = "ItemMintedEvent"
	ItemTransferredEvent  Type = "ItemTransferredEvent"
	ItemApprovedEvent     Type = "ItemApprovedEvent"
	ApprovalForAllEvent   Type = "ApprovalForAllEvent"
	PriceChangedEvent     Type = "PriceChangedEvent"
	BaseUriUpdatedEvent   Type = "BaseUriUpdatedEvent"
	RevenueWithdrawnEvent Type = "RevenueWithdrawnEvent"

	ItemListedEvent        Type = "ItemListedEvent"
	ListingUpdatedEvent    Type = "ListingUpdatedEvent"
	ListingCanceledEvent   Type = "ListingCanceledEvent"
	ItemBoughtEvent        Type = "ItemBoughtEvent"
	ProceedsWithdrawnEvent Type = "ProceedsWithdrawnEvent"
)

var AllTypes = []Type{
	ItemMintedEvent,
	ItemTransferredEvent,
	ItemApprovedEvent,
	ApprovalForAllEvent,
	PriceChangedEvent,
	BaseUriUpdatedEvent,
	RevenueWithdrawnEvent,
	ItemListedEvent,
	ListingUpdatedEvent,
	ListingCanceledEvent,
	ItemBoughtEvent,
	ProceedsWithdrawnEvent,
}
