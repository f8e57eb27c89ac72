package model

import (
	"github.com/shopspring/decimal"
)

const TableOfferEvent = "offer_events"

type OfferEventType string

const (
	OfferEventOpen         OfferEventType = "Open"
	OfferEventPriceChanged OfferEventType = "PriceChanged"
	OfferEventBuy          OfferEventType = "Buy"
	OfferEventCancel       OfferEventType = "Cancel"
	OfferEventApprove      OfferEventType = "Approve"
)

// Append-only audit log of applied contract events.
// (offer_id, event_type, block_number, address) is the deduplication key
// guarding against the stream redelivering the same log.
type OfferEvent struct {
	Id uint64 `gorm:"primaryKey;autoIncrement"`

	OfferId     string         `gorm:"uniqueIndex:idx_offer_events_dedup,priority:1"`
	EventType   OfferEventType `gorm:"uniqueIndex:idx_offer_events_dedup,priority:2"`
	BlockNumber uint64         `gorm:"uniqueIndex:idx_offer_events_dedup,priority:3"`
	Address     string         `gorm:"uniqueIndex:idx_offer_events_dedup,priority:4"`

	Amount decimal.Decimal `gorm:"type:numeric"`
}

func (OfferEvent) TableName() string {
	return TableOfferEvent
}
