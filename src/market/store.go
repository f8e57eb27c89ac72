package market

import (
	"strconv"

	"github.com/UniqueNetwork/unique-marketplace-backend-sub000/src/utils/config"
	"github.com/UniqueNetwork/unique-marketplace-backend-sub000/src/utils/model"
	"github.com/UniqueNetwork/unique-marketplace-backend-sub000/src/utils/monitoring"
	"github.com/UniqueNetwork/unique-marketplace-backend-sub000/src/utils/task"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store persists listener cursors in batches. Heights only ever move
// forward, a reconnecting listener may re-emit older positions and those
// must not rewind the durable cursor.
type Store struct {
	*task.Processor[*CursorPayload, *CursorPayload]

	db      *gorm.DB
	monitor monitoring.Monitor

	// Last height written per contract address, the empty key is the
	// collection-wide stream
	lastSaved map[string]uint64
}

func NewStore(config *config.Config, db *gorm.DB, monitor monitoring.Monitor, input chan *CursorPayload) (self *Store) {
	self = new(Store)
	self.db = db
	self.monitor = monitor
	self.lastSaved = make(map[string]uint64)

	self.Processor = task.NewProcessor[*CursorPayload, *CursorPayload](config, "store").
		WithBatchSize(config.Market.StoreBatchSize).
		WithInputChannel(input).
		WithOnProcess(self.process).
		WithOnFlush(config.Market.StoreInterval, self.flush).
		WithBackoff(0, config.Market.StoreMaxBackoffInterval)

	return
}

func (self *Store) process(payload *CursorPayload) ([]*CursorPayload, error) {
	return []*CursorPayload{payload}, nil
}

func (self *Store) flush(payloads []*CursorPayload) (out []*CursorPayload, err error) {
	if len(payloads) == 0 {
		return
	}

	// Only the highest position per stream matters
	heights := make(map[string]uint64)
	for _, payload := range payloads {
		if payload.Height > heights[payload.ContractAddress] {
			heights[payload.ContractAddress] = payload.Height
		}
	}

	err = self.db.WithContext(self.Ctx).Transaction(func(tx *gorm.DB) error {
		for contractAddress, height := range heights {
			if height <= self.lastSaved[contractAddress] {
				continue
			}

			var err error
			if contractAddress == "" {
				err = self.saveCollectionCursor(tx, height)
			} else {
				err = self.saveContractCursor(tx, contractAddress, height)
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		self.Log.WithError(err).Error("Failed to save cursors")
		self.monitor.GetReport().Market.Errors.StoreCursorSaveFailures.Inc()
		return
	}

	for contractAddress, height := range heights {
		if height <= self.lastSaved[contractAddress] {
			continue
		}
		self.lastSaved[contractAddress] = height

		if contractAddress == "" {
			self.monitor.GetReport().Market.State.StoreCollectionLastSavedBlock.Store(height)
		} else {
			self.monitor.GetReport().Market.State.StoreLastSavedBlock.Store(height)
		}
	}
	return
}

func (self *Store) saveContractCursor(tx *gorm.DB, contractAddress string, height uint64) error {
	// The WHERE guard keeps the cursor monotonic even across restarts
	return tx.Model(&model.Contract{}).
		Where("address = ? AND processed_at_block < ?", contractAddress, height).
		Update("processed_at_block", height).
		Error
}

func (self *Store) saveCollectionCursor(tx *gorm.DB, height uint64) error {
	value := strconv.FormatUint(height, 10)

	// Guarded like the contract cursor, the stored height must survive a
	// restart even when a listener replays an older page first
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"value": value}),
		Where: clause.Where{Exprs: []clause.Expression{
			gorm.Expr("CAST(settings.value AS bigint) < ?", height),
		}},
	}).Create(&model.Setting{
		Key:   model.SettingCollectionProcessedBlock,
		Value: value,
	}).Error
}
