package market

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

type EventKind int

const (
	EventTokenListed EventKind = iota
	EventTokenPriceChanged
	EventTokenPurchased
	EventTokenRevoked
	EventTokenApproved
)

func (kind EventKind) String() string {
	switch kind {
	case EventTokenListed:
		return "TokenListed"
	case EventTokenPriceChanged:
		return "TokenPriceChanged"
	case EventTokenPurchased:
		return "TokenPurchased"
	case EventTokenRevoked:
		return "TokenRevoked"
	case EventTokenApproved:
		return "TokenApproved"
	}
	return ""
}

// One decoded marketplace contract event
type OrderEvent struct {
	Kind EventKind

	OrderId      uint32
	CollectionId uint32
	TokenId      uint32

	// Arbitrary precision, on-chain values may exceed the safe integer range
	Amount *big.Int
	Price  *big.Int

	Currency uint32
	Seller   common.Address

	// Log position
	ContractAddress string
	BlockNumber     uint64
}

// Cursor update flowing from the listeners to the store.
// An empty contract address marks the collection-wide stream.
type CursorPayload struct {
	ContractAddress string
	Height          uint64
}
