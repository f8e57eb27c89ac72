package market

import (
	"context"
	"math/big"
	"sync"

	"github.com/UniqueNetwork/unique-marketplace-backend-sub000/src/utils/jobqueue"
	"github.com/UniqueNetwork/unique-marketplace-backend-sub000/src/utils/model"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB() (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}
	err = db.AutoMigrate(&model.Contract{}, &model.Offer{}, &model.OfferEvent{}, &model.Setting{})
	if err != nil {
		return nil, err
	}
	return db, nil
}

func newOrderEvent(kind EventKind, orderId uint32, amount, price int64) *OrderEvent {
	return &OrderEvent{
		Kind:            kind,
		OrderId:         orderId,
		CollectionId:    7,
		TokenId:         42,
		Amount:          big.NewInt(amount),
		Price:           big.NewInt(price),
		Currency:        0,
		Seller:          common.HexToAddress("0x5B38Da6a701c568545dCfcB03FcB875f56beddC4"),
		ContractAddress: "0x00000000000000000000000000000000000000a1",
		BlockNumber:     1000,
	}
}

// Records submitted and escalated jobs in memory
type fakeEnqueuer struct {
	mtx        sync.Mutex
	submitted  []*jobqueue.Job
	escalated  []string
	submitErr  error
	escalation map[string]jobqueue.Priority
}

func newFakeEnqueuer() *fakeEnqueuer {
	return &fakeEnqueuer{escalation: make(map[string]jobqueue.Priority)}
}

func (self *fakeEnqueuer) Submit(ctx context.Context, job *jobqueue.Job) error {
	self.mtx.Lock()
	defer self.mtx.Unlock()
	if self.submitErr != nil {
		return self.submitErr
	}
	self.submitted = append(self.submitted, job)
	return nil
}

func (self *fakeEnqueuer) Escalate(ctx context.Context, name, key string, priority jobqueue.Priority) error {
	self.mtx.Lock()
	defer self.mtx.Unlock()
	id := name + ":" + key
	self.escalated = append(self.escalated, id)
	self.escalation[id] = priority
	return nil
}

func (self *fakeEnqueuer) Submitted() []*jobqueue.Job {
	self.mtx.Lock()
	defer self.mtx.Unlock()
	out := make([]*jobqueue.Job, len(self.submitted))
	copy(out, self.submitted)
	return out
}

func (self *fakeEnqueuer) Escalated() []string {
	self.mtx.Lock()
	defer self.mtx.Unlock()
	out := make([]string, len(self.escalated))
	copy(out, self.escalated)
	return out
}

// Records reconciliation calls, optionally blocking until released
type fakeCaller struct {
	mtx   sync.Mutex
	calls []reconcileKey

	// When set, CheckApproved blocks until the gate is closed
	gate chan struct{}

	// Signals each call start
	started chan struct{}
}

func newFakeCaller() *fakeCaller {
	return &fakeCaller{started: make(chan struct{}, 100)}
}

func (self *fakeCaller) CheckApproved(ctx context.Context, contractAddress string, collectionId, tokenId uint32) error {
	self.started <- struct{}{}
	if self.gate != nil {
		<-self.gate
	}
	self.mtx.Lock()
	defer self.mtx.Unlock()
	self.calls = append(self.calls, reconcileKey{
		CollectionId:    collectionId,
		TokenId:         tokenId,
		ContractAddress: contractAddress,
	})
	return nil
}

func (self *fakeCaller) Calls() []reconcileKey {
	self.mtx.Lock()
	defer self.mtx.Unlock()
	out := make([]reconcileKey, len(self.calls))
	copy(out, self.calls)
	return out
}

// Serves pre-built pages in order, then empty pages
type fakeTransport struct {
	mtx        sync.Mutex
	logPages   []*LogsPage
	eventPages []*CollectionEventsPage

	// Captured request cursors, in call order
	logCursors   []string
	eventCursors []string
}

func (self *fakeTransport) GetLogs(ctx context.Context, contractAddress string, fromBlock uint64, cursor string, limit int) (*LogsPage, error) {
	self.mtx.Lock()
	defer self.mtx.Unlock()
	self.logCursors = append(self.logCursors, cursor)
	if len(self.logPages) == 0 {
		return &LogsPage{Logs: []types.Log{}}, nil
	}
	page := self.logPages[0]
	self.logPages = self.logPages[1:]
	return page, nil
}

func (self *fakeTransport) GetCollectionEvents(ctx context.Context, fromBlock uint64, sections []string, cursor string, limit int) (*CollectionEventsPage, error) {
	self.mtx.Lock()
	defer self.mtx.Unlock()
	self.eventCursors = append(self.eventCursors, cursor)
	if len(self.eventPages) == 0 {
		return &CollectionEventsPage{}, nil
	}
	page := self.eventPages[0]
	self.eventPages = self.eventPages[1:]
	return page, nil
}
