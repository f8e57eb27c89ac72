package market

import (
	"errors"
	"strconv"

	"github.com/UniqueNetwork/unique-marketplace-backend-sub000/src/utils/config"
	"github.com/UniqueNetwork/unique-marketplace-backend-sub000/src/utils/model"
	"github.com/UniqueNetwork/unique-marketplace-backend-sub000/src/utils/monitoring"
	"github.com/UniqueNetwork/unique-marketplace-backend-sub000/src/utils/task"

	"github.com/cenkalti/backoff/v4"
	"gorm.io/gorm"
)

// CollectionListener follows the collection-wide chain event stream.
// These events bypass the marketplace contract, so the listener cannot
// update offers directly. It only triggers reconciliation and metadata
// refreshes, the contract itself emits the corrective offer events.
type CollectionListener struct {
	*task.Task

	db         *gorm.DB
	transport  Transport
	ledger     *Ledger
	reconciler *Reconciler
	scheduler  *Scheduler
	monitor    monitoring.Monitor

	fromBlock uint64
	cursor    string

	Output chan *CursorPayload
}

func NewCollectionListener(config *config.Config, db *gorm.DB, transport Transport, ledger *Ledger, reconciler *Reconciler, scheduler *Scheduler, monitor monitoring.Monitor, output chan *CursorPayload) (self *CollectionListener) {
	self = new(CollectionListener)
	self.db = db
	self.transport = transport
	self.ledger = ledger
	self.reconciler = reconciler
	self.scheduler = scheduler
	self.monitor = monitor
	self.Output = output

	self.Task = task.NewTask(config, "collection-listener").
		WithOnBeforeStart(self.loadCursor).
		WithPeriodicSubtaskFunc(config.Market.ListenerInterval, self.sync)

	return
}

func (self *CollectionListener) loadCursor() (err error) {
	var setting model.Setting
	err = self.db.WithContext(self.Ctx).
		Where("key = ?", model.SettingCollectionProcessedBlock).
		First(&setting).
		Error

	self.cursor = ""

	if errors.Is(err, gorm.ErrRecordNotFound) {
		// First run, start from the beginning of the stream
		self.fromBlock = 0
		return nil
	}
	if err != nil {
		self.Log.WithError(err).Error("Failed to load collection stream cursor")
		return
	}

	self.fromBlock, err = strconv.ParseUint(setting.Value, 10, 64)
	if err != nil {
		self.Log.WithError(err).WithField("value", setting.Value).Error("Corrupted collection stream cursor")
		return
	}
	return
}

func (self *CollectionListener) sync() (err error) {
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
				self.Log.WithError(err).Error("Downloading collection events failed, still retrying")
			}
			self.monitor.GetReport().Market.Errors.ListenerDownloadFailures.Inc()

			if loadErr := self.loadCursor(); loadErr != nil {
				return loadErr
			}
			return err
		}).
		Run(self.syncOnce)
	if err != nil {
		self.Log.WithError(err).Error("Failed to sync collection events")
	}
	return nil
}

func (self *CollectionListener) syncOnce() (err error) {
	for {
		if self.IsStopping.Load() {
			return nil
		}

		page, err := self.transport.GetCollectionEvents(self.Ctx, self.fromBlock, self.Config.Indexer.CollectionSections, self.cursor, self.Config.Market.ListenerPageSize)
		if err != nil {
			return err
		}

		for _, raw := range page.Events {
			err = self.processEvent(raw)
			if err != nil {
				return err
			}
		}

		self.cursor = page.NextCursor
		self.monitor.GetReport().Market.State.CollectionEventsProcessed.Add(uint64(len(page.Events)))

		if page.LastBlock > 0 {
			self.fromBlock = page.LastBlock

			select {
			case self.Output <- &CursorPayload{Height: page.LastBlock}:
			case <-self.StopChannel:
				return nil
			}
		}

		if !page.HasNext {
			return nil
		}
	}
}

func (self *CollectionListener) processEvent(raw *RawCollectionEvent) (err error) {
	event, err := TransformCollectionEvent(raw)
	if err != nil {
		self.Log.WithError(err).
			WithField("section", raw.Section).
			WithField("method", raw.Method).
			Warn("Dropping malformed collection event")
		return nil
	}

	switch event.Kind {
	case CollectionEventTransfer, CollectionEventApproved, CollectionEventItemDestroyed:
		return self.enqueueTokenOffers(event.CollectionId, event.TokenId)

	case CollectionEventCollectionDestroyed:
		return self.enqueueCollectionOffers(event.CollectionId)

	case CollectionEventItemCreated:
		self.scheduler.AddToken(event.CollectionId, event.TokenId, true)

	case CollectionEventCollectionCreated:
		// Nothing to do until the collection gets tokens

	case CollectionEventUnrecognized:
		self.monitor.GetReport().Market.State.CollectionEventsUnrecognized.Inc()
	}
	return nil
}

func (self *CollectionListener) enqueueTokenOffers(collectionId, tokenId uint32) (err error) {
	offers, err := self.ledger.OpenOffersForToken(self.Ctx, collectionId, tokenId)
	if err != nil {
		return
	}
	for i := range offers {
		self.reconciler.Enqueue(&offers[i])
	}
	return nil
}

func (self *CollectionListener) enqueueCollectionOffers(collectionId uint32) (err error) {
	offers, err := self.ledger.OpenOffersForCollection(self.Ctx, collectionId)
	if err != nil {
		return
	}
	for i := range offers {
		self.reconciler.Enqueue(&offers[i])
	}
	return nil
}
