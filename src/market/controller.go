package market

import (
	"github.com/UniqueNetwork/unique-marketplace-backend-sub000/src/utils/config"
	"github.com/UniqueNetwork/unique-marketplace-backend-sub000/src/utils/eth"
	"github.com/UniqueNetwork/unique-marketplace-backend-sub000/src/utils/jobqueue"
	"github.com/UniqueNetwork/unique-marketplace-backend-sub000/src/utils/model"
	"github.com/UniqueNetwork/unique-marketplace-backend-sub000/src/utils/monitoring"
	monitor_market "github.com/UniqueNetwork/unique-marketplace-backend-sub000/src/utils/monitoring/market"
	"github.com/UniqueNetwork/unique-marketplace-backend-sub000/src/utils/task"
)

// Controller assembles the whole synchronization pipeline:
// one listener per registered contract plus the collection stream, all
// funneling cursor updates into a single store.
type Controller struct {
	*task.Task
}

func NewController(config *config.Config) (self *Controller, err error) {
	self = new(Controller)
	self.Task = task.NewTask(config, "controller")

	db, err := model.NewConnection(self.Ctx, config, "market")
	if err != nil {
		return
	}

	var contracts []model.Contract
	err = db.WithContext(self.Ctx).Find(&contracts).Error
	if err != nil {
		return
	}
	self.Log.WithField("num", len(contracts)).Info("Loaded registered contracts")

	monitor := monitor_market.NewMonitor(config)
	server := monitoring.NewServer(config).WithMonitor(monitor)

	caller, err := eth.NewContractCaller(&config.Market, contracts)
	if err != nil {
		return
	}

	decoder := NewDecoder(contracts)
	ledger := NewLedger(db, monitor)
	enqueuer := jobqueue.NewClient(&config.JobQueue)

	reconciler := NewReconciler(config, caller, monitor)
	scheduler := NewScheduler(config, ledger, enqueuer, monitor)

	cursors := make(chan *CursorPayload, config.Market.ListenerChannelSize)
	store := NewStore(config, db, monitor, cursors)

	// All listeners live under one parent task so the cursor channel can
	// be closed exactly once, after the last producer is done. The store
	// then drains the remaining buffer and exits on its own.
	listeners := task.NewTask(config, "listeners").
		WithOnAfterStop(func() {
			close(cursors)
		})

	transport := NewIndexerClient(&config.Indexer)
	for _, contract := range contracts {
		listener := NewListener(config, db, transport, decoder, ledger, scheduler, monitor, contract.Address, cursors)
		listeners = listeners.WithSubtask(listener.Task)
	}

	collectionListener := NewCollectionListener(config, db, transport, ledger, reconciler, scheduler, monitor, cursors)
	listeners = listeners.WithSubtask(collectionListener.Task)

	self.Task = self.Task.
		WithSubtask(monitor.Task).
		WithSubtask(server.Task).
		WithSubtask(reconciler.Task).
		WithSubtask(scheduler.Task).
		WithSubtask(listeners).
		WithSubtask(store.Task)

	return
}
