package market

import (
	"errors"

	"github.com/UniqueNetwork/unique-marketplace-backend-sub000/src/utils/config"
	"github.com/UniqueNetwork/unique-marketplace-backend-sub000/src/utils/model"
	"github.com/UniqueNetwork/unique-marketplace-backend-sub000/src/utils/monitoring"
	"github.com/UniqueNetwork/unique-marketplace-backend-sub000/src/utils/task"

	"github.com/cenkalti/backoff/v4"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Listener follows the log stream of one marketplace contract and feeds
// decoded events through the ledger. Cursor updates go out on the shared
// output channel, persisting them is the store's job.
type Listener struct {
	*task.Task

	db        *gorm.DB
	transport Transport
	decoder   *Decoder
	ledger    *Ledger
	scheduler *Scheduler
	monitor   monitoring.Monitor

	contractAddress string

	// Resume position, reloaded from the database on every reconnect
	fromBlock uint64

	// Opaque pagination cursor, only valid within one connected session
	cursor string

	// Shared with the other listeners, consumed by the store
	Output chan *CursorPayload
}

func NewListener(config *config.Config, db *gorm.DB, transport Transport, decoder *Decoder, ledger *Ledger, scheduler *Scheduler, monitor monitoring.Monitor, contractAddress string, output chan *CursorPayload) (self *Listener) {
	self = new(Listener)
	self.db = db
	self.transport = transport
	self.decoder = decoder
	self.ledger = ledger
	self.scheduler = scheduler
	self.monitor = monitor
	self.contractAddress = contractAddress
	self.Output = output

	self.Task = task.NewTask(config, "listener").
		WithOnBeforeStart(self.loadCursor).
		WithPeriodicSubtaskFunc(config.Market.ListenerInterval, self.sync)

	return
}

// loadCursor restores the resume position from the contract row and
// drops any in-memory pagination state
func (self *Listener) loadCursor() (err error) {
	var contract model.Contract
	err = self.db.WithContext(self.Ctx).
		Where("address = ?", self.contractAddress).
		First(&contract).
		Error
	if err != nil {
		self.Log.WithError(err).WithField("contract", self.contractAddress).Error("Failed to load contract cursor")
		return
	}

	self.cursor = ""
	self.fromBlock = contract.ProcessedAtBlock
	if self.fromBlock == 0 {
		self.fromBlock = contract.CreatedAtBlock
	}
	return
}

func (self *Listener) sync() (err error) {
	err = task.NewRetry().
		WithContext(self.Ctx).
		WithMaxElapsedTime(0).
		WithMaxInterval(self.Config.Market.ListenerBackoffInterval).
		WithAcceptableDuration(2 * self.Config.Market.ListenerBackoffInterval).
		WithOnError(func(err error, isDurationAcceptable bool) error {
			if self.IsStopping.Load() {
				return backoff.Permanent(err)
			}
			if !isDurationAcceptable {
				self.Log.WithError(err).WithField("contract", self.contractAddress).
					Error("Downloading logs failed, still retrying")
			}
			self.monitor.GetReport().Market.Errors.ListenerDownloadFailures.Inc()

			// A session cursor may point into a page the indexer no longer
			// serves, start over from the durable position
			if loadErr := self.loadCursor(); loadErr != nil {
				return loadErr
			}
			return err
		}).
		Run(self.syncOnce)
	if err != nil {
		self.Log.WithError(err).Error("Failed to sync logs")
	}
	return nil
}

// syncOnce drains the stream page by page until the indexer reports no
// further pages. The indexer-issued cursor drives pagination, fromBlock
// only selects the entry point of a fresh session.
func (self *Listener) syncOnce() (err error) {
	for {
		if self.IsStopping.Load() {
			return nil
		}

		page, err := self.transport.GetLogs(self.Ctx, self.contractAddress, self.fromBlock, self.cursor, self.Config.Market.ListenerPageSize)
		if err != nil {
			return err
		}

		for i := range page.Logs {
			err = self.processLog(&page.Logs[i])
			if err != nil {
				// Cursor not advanced, the page will be re-fetched and
				// the ledger dedups whatever was already applied
				return err
			}
		}

		self.cursor = page.NextCursor
		self.monitor.GetReport().Market.State.ListenerLogsProcessed.Add(uint64(len(page.Logs)))

		if page.LastBlock > 0 {
			self.fromBlock = page.LastBlock
			self.monitor.GetReport().Market.State.ListenerLastProcessedBlock.Store(page.LastBlock)

			select {
			case self.Output <- &CursorPayload{ContractAddress: self.contractAddress, Height: page.LastBlock}:
			case <-self.StopChannel:
				return nil
			}
		}

		if !page.HasNext {
			return nil
		}
	}
}

func (self *Listener) processLog(rawLog *types.Log) (err error) {
	event, err := self.decoder.Decode(self.contractAddress, *rawLog)
	if err != nil {
		switch {
		case errors.Is(err, ErrUnknownContract):
			self.monitor.GetReport().Market.Errors.DecoderUnknownContract.Inc()
		case errors.Is(err, ErrUndecodableLog):
			self.monitor.GetReport().Market.Errors.DecoderUndecodableLog.Inc()
		}
		self.Log.WithError(err).
			WithField("block", rawLog.BlockNumber).
			WithField("contract", self.contractAddress).
			Warn("Dropping log")
		return nil
	}

	offer, created, err := self.ledger.ApplyOrderEvent(self.Ctx, event, DeriveStatus(event))
	if err != nil {
		return
	}
	if offer == nil {
		// Terminal event for an order that never had a visible offer
		return nil
	}

	offerEvent, err := self.ledger.RecordEvent(self.Ctx, offer, DeriveEventType(event.Kind), event.BlockNumber, event.Seller.String(), decimal.NewFromBigInt(event.Amount, 0))
	if err != nil {
		return
	}
	if offerEvent == nil {
		// Duplicate delivery, the offer row is already up to date and
		// side effects were triggered the first time around
		return nil
	}

	if created {
		self.scheduler.EscalateOffer(event.CollectionId, event.TokenId)
		self.scheduler.AddToken(event.CollectionId, event.TokenId, true)
	}
	return nil
}
