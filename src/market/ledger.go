package market

import (
	"context"
	"errors"

	"github.com/UniqueNetwork/unique-marketplace-backend-sub000/src/utils/logger"
	"github.com/UniqueNetwork/unique-marketplace-backend-sub000/src/utils/model"
	"github.com/UniqueNetwork/unique-marketplace-backend-sub000/src/utils/monitoring"

	"github.com/rs/xid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Ledger owns all writes to the offers and offer_events tables.
// Everything else only reads or requests mutation through it.
type Ledger struct {
	log     *logrus.Entry
	db      *gorm.DB
	monitor monitoring.Monitor
}

func NewLedger(db *gorm.DB, monitor monitoring.Monitor) (self *Ledger) {
	self = new(Ledger)
	self.log = logger.NewSublogger("ledger")
	self.db = db
	self.monitor = monitor
	return
}

// DeriveStatus maps a decoded event onto the offer status it implies.
// Amount is authoritative: zero always lands in a terminal status.
func DeriveStatus(event *OrderEvent) model.OfferStatus {
	switch event.Kind {
	case EventTokenPurchased:
		if event.Amount.Sign() == 0 {
			return model.OfferStatusCompleted
		}
		return model.OfferStatusOpened
	case EventTokenRevoked:
		if event.Amount.Sign() == 0 {
			return model.OfferStatusCanceled
		}
		return model.OfferStatusOpened
	default:
		return model.OfferStatusOpened
	}
}

func DeriveEventType(kind EventKind) model.OfferEventType {
	switch kind {
	case EventTokenListed:
		return model.OfferEventOpen
	case EventTokenPriceChanged:
		return model.OfferEventPriceChanged
	case EventTokenPurchased:
		return model.OfferEventBuy
	case EventTokenRevoked:
		return model.OfferEventCancel
	case EventTokenApproved:
		return model.OfferEventApprove
	}
	return ""
}

// ApplyOrderEvent applies one decoded contract event to the canonical
// offer row keyed by (contract address, order id).
//
// The latest delivered event always wins, there is no block-number
// gating. Out-of-order delivery after certain reconnect/pagination edge
// cases could therefore let a stale event overwrite newer state. This is
// a known consistency gap carried over deliberately: gating by block
// number changes the observable semantics around partial fills.
func (self *Ledger) ApplyOrderEvent(ctx context.Context, event *OrderEvent, newStatus model.OfferStatus) (offer *model.Offer, created bool, err error) {
	amount := decimal.NewFromBigInt(event.Amount, 0)
	price := decimal.NewFromBigInt(event.Price, 0)

	err = self.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.Offer
		err := tx.
			Where("contract_address = ? AND order_id = ?", event.ContractAddress, event.OrderId).
			First(&existing).
			Error

		if errors.Is(err, gorm.ErrRecordNotFound) {
			if amount.IsZero() {
				// Nothing to cancel, the order was never seen as live
				return nil
			}

			// A sale cannot start in a terminal state
			offer = &model.Offer{
				Id:              xid.New().String(),
				OrderId:         event.OrderId,
				CollectionId:    event.CollectionId,
				TokenId:         event.TokenId,
				Price:           price,
				Currency:        event.Currency,
				Amount:          amount,
				SellerAddress:   event.Seller.String(),
				ContractAddress: event.ContractAddress,
				Status:          model.OfferStatusOpened,
			}
			created = true
			return tx.Create(offer).Error
		}
		if err != nil {
			return err
		}

		existing.Price = price
		existing.Currency = event.Currency
		existing.Amount = amount
		existing.SellerAddress = event.Seller.String()
		existing.Status = newStatus

		offer = &existing
		return tx.Save(&existing).Error
	})
	if err != nil {
		self.log.WithError(err).
			WithField("contract", event.ContractAddress).
			WithField("order_id", event.OrderId).
			Error("Failed to apply order event")
		self.monitor.GetReport().Market.Errors.LedgerApplyFailures.Inc()
		return nil, false, err
	}

	if offer != nil {
		if created {
			self.monitor.GetReport().Market.State.LedgerOffersCreated.Inc()
		} else {
			self.monitor.GetReport().Market.State.LedgerOffersUpdated.Inc()
		}
	}
	return
}

// RecordEvent appends one row to the audit log, unless the dedup tuple
// (offer id, event type, block number, address) was seen before. A nil
// result with nil error marks a duplicate, the caller must then skip any
// side effects such as enrichment triggers.
func (self *Ledger) RecordEvent(ctx context.Context, offer *model.Offer, eventType model.OfferEventType, blockNumber uint64, address string, amount decimal.Decimal) (offerEvent *model.OfferEvent, err error) {
	err = self.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.OfferEvent
		err := tx.
			Where("offer_id = ? AND event_type = ? AND block_number = ? AND address = ?",
				offer.Id, eventType, blockNumber, address).
			First(&existing).
			Error

		if err == nil {
			// Duplicate delivery, success-no-op
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		offerEvent = &model.OfferEvent{
			OfferId:     offer.Id,
			EventType:   eventType,
			BlockNumber: blockNumber,
			Address:     address,
			Amount:      amount,
		}
		return tx.Create(offerEvent).Error
	})
	if err != nil {
		self.log.WithError(err).WithField("offer_id", offer.Id).Error("Failed to record offer event")
		self.monitor.GetReport().Market.Errors.LedgerRecordEventFailures.Inc()
		return nil, err
	}

	if offerEvent == nil {
		self.monitor.GetReport().Market.State.LedgerDuplicateEvents.Inc()
	}
	return
}

// HasOpenOffer reports whether the token is currently for sale
func (self *Ledger) HasOpenOffer(ctx context.Context, collectionId, tokenId uint32) (ok bool, err error) {
	var count int64
	err = self.db.WithContext(ctx).
		Model(&model.Offer{}).
		Where("collection_id = ? AND token_id = ? AND status = ?", collectionId, tokenId, model.OfferStatusOpened).
		Count(&count).
		Error
	if err != nil {
		return
	}
	return count > 0, nil
}

// OpenOffersForToken returns the live offers a collection-wide event may
// have invalidated
func (self *Ledger) OpenOffersForToken(ctx context.Context, collectionId, tokenId uint32) (offers []model.Offer, err error) {
	err = self.db.WithContext(ctx).
		Where("collection_id = ? AND token_id = ? AND status = ?", collectionId, tokenId, model.OfferStatusOpened).
		Find(&offers).
		Error
	return
}

// OpenOffersForCollection returns all live offers of a collection,
// used when the whole collection is destroyed
func (self *Ledger) OpenOffersForCollection(ctx context.Context, collectionId uint32) (offers []model.Offer, err error) {
	err = self.db.WithContext(ctx).
		Where("collection_id = ? AND status = ?", collectionId, model.OfferStatusOpened).
		Find(&offers).
		Error
	return
}

// Delete removes an offer and its audit trail for good. Reserved for
// explicit admin/owner action, status transitions never delete rows.
func (self *Ledger) Delete(ctx context.Context, offerId string) (err error) {
	return self.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("offer_id = ?", offerId).Delete(&model.OfferEvent{}).Error
		if err != nil {
			return err
		}
		return tx.Where("id = ?", offerId).Delete(&model.Offer{}).Error
	})
}
