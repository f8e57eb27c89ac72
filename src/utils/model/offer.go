package model

import (
	"github.com/shopspring/decimal"
)

const TableOffer = "offers"

type OfferStatus string

const (
	OfferStatusOpened    OfferStatus = "Opened"
	OfferStatusCanceled  OfferStatus = "Canceled"
	OfferStatusCompleted OfferStatus = "Completed"
)

// Canonical, mutable record of one on-chain sell order.
// At most one row exists per (contract_address, order_id).
type Offer struct {
	// Stable across updates
	Id string `gorm:"primaryKey"`

	OrderId      uint32 `gorm:"uniqueIndex:idx_offers_contract_order,priority:2"`
	CollectionId uint32
	TokenId      uint32

	Price    decimal.Decimal `gorm:"type:numeric"`
	Currency uint32

	// Amount is the authoritative "is this still live" signal.
	// Zero always implies a terminal status.
	Amount decimal.Decimal `gorm:"type:numeric"`

	SellerAddress   string
	ContractAddress string `gorm:"uniqueIndex:idx_offers_contract_order,priority:1"`

	Status OfferStatus
}

func (Offer) TableName() string {
	return TableOffer
}
