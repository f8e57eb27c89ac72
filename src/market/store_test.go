package market

import (
	"testing"

	"github.com/UniqueNetwork/unique-marketplace-backend-sub000/src/utils/config"
	"github.com/UniqueNetwork/unique-marketplace-backend-sub000/src/utils/model"
	monitor_market "github.com/UniqueNetwork/unique-marketplace-backend-sub000/src/utils/monitoring/market"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

func TestStoreTestSuite(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}

type StoreTestSuite struct {
	suite.Suite
	config *config.Config
	db     *gorm.DB
	store  *Store
}

func (s *StoreTestSuite) SetupTest() {
	s.config = config.Default()

	var err error
	s.db, err = newTestDB()
	s.Require().NoError(err)

	s.Require().NoError(s.db.Create(&model.Contract{
		Address:          testContract,
		Version:          1,
		CreatedAtBlock:   100,
		ProcessedAtBlock: 100,
	}).Error)

	s.store = NewStore(s.config, s.db, monitor_market.NewMonitor(s.config), make(chan *CursorPayload))
}

func (s *StoreTestSuite) processedBlock() uint64 {
	var contract model.Contract
	s.Require().NoError(s.db.First(&contract, "address = ?", testContract).Error)
	return contract.ProcessedAtBlock
}

func (s *StoreTestSuite) collectionCursor() string {
	var setting model.Setting
	err := s.db.First(&setting, "key = ?", model.SettingCollectionProcessedBlock).Error
	if err != nil {
		return ""
	}
	return setting.Value
}

func (s *StoreTestSuite) TestSavesHighestHeightPerBatch() {
	_, err := s.store.flush([]*CursorPayload{
		{ContractAddress: testContract, Height: 150},
		{ContractAddress: testContract, Height: 140},
		{ContractAddress: testContract, Height: 145},
	})
	s.NoError(err)
	s.Equal(uint64(150), s.processedBlock())
}

func (s *StoreTestSuite) TestCursorNeverRewinds() {
	_, err := s.store.flush([]*CursorPayload{{ContractAddress: testContract, Height: 150}})
	s.Require().NoError(err)

	// A reconnected listener replaying older positions
	_, err = s.store.flush([]*CursorPayload{{ContractAddress: testContract, Height: 120}})
	s.NoError(err)
	s.Equal(uint64(150), s.processedBlock())
}

func (s *StoreTestSuite) TestCursorGuardHoldsAcrossRestart() {
	// Fresh store with no in-memory history, only the SQL guard applies
	restarted := NewStore(s.config, s.db, monitor_market.NewMonitor(s.config), make(chan *CursorPayload))

	_, err := restarted.flush([]*CursorPayload{{ContractAddress: testContract, Height: 90}})
	s.NoError(err)
	s.Equal(uint64(100), s.processedBlock())

	_, err = restarted.flush([]*CursorPayload{{ContractAddress: testContract, Height: 110}})
	s.NoError(err)
	s.Equal(uint64(110), s.processedBlock())
}

func (s *StoreTestSuite) TestCollectionCursorGuardHoldsAcrossRestart() {
	_, err := s.store.flush([]*CursorPayload{{Height: 2000}})
	s.Require().NoError(err)
	s.Equal("2000", s.collectionCursor())

	// Fresh store with no in-memory history replaying an older page
	restarted := NewStore(s.config, s.db, monitor_market.NewMonitor(s.config), make(chan *CursorPayload))

	_, err = restarted.flush([]*CursorPayload{{Height: 1500}})
	s.NoError(err)
	s.Equal("2000", s.collectionCursor())

	_, err = restarted.flush([]*CursorPayload{{Height: 2100}})
	s.NoError(err)
	s.Equal("2100", s.collectionCursor())
}

func (s *StoreTestSuite) TestCollectionCursorUpsert() {
	_, err := s.store.flush([]*CursorPayload{{Height: 2000}})
	s.NoError(err)
	s.Equal("2000", s.collectionCursor())

	_, err = s.store.flush([]*CursorPayload{{Height: 2100}})
	s.NoError(err)
	s.Equal("2100", s.collectionCursor())

	_, err = s.store.flush([]*CursorPayload{{Height: 2050}})
	s.NoError(err)
	s.Equal("2100", s.collectionCursor())
}

func (s *StoreTestSuite) TestMixedStreamsInOneBatch() {
	_, err := s.store.flush([]*CursorPayload{
		{ContractAddress: testContract, Height: 180},
		{Height: 2000},
	})
	s.NoError(err)
	s.Equal(uint64(180), s.processedBlock())
	s.Equal("2000", s.collectionCursor())
}

func (s *StoreTestSuite) TestEmptyFlush() {
	_, err := s.store.flush(nil)
	s.NoError(err)
	s.Equal(uint64(100), s.processedBlock())
}
