package market

import (
	"context"
	"sync"

	"github.com/UniqueNetwork/unique-marketplace-backend-sub000/src/utils/config"
	"github.com/UniqueNetwork/unique-marketplace-backend-sub000/src/utils/eth"
	"github.com/UniqueNetwork/unique-marketplace-backend-sub000/src/utils/model"
	"github.com/UniqueNetwork/unique-marketplace-backend-sub000/src/utils/monitoring"
	"github.com/UniqueNetwork/unique-marketplace-backend-sub000/src/utils/task"

	"github.com/gammazero/deque"
)

type reconcileKey struct {
	CollectionId    uint32
	TokenId         uint32
	ContractAddress string
}

// Reconciler asks the marketplace contract to verify approval of offers
// that an ownership or approval change may have invalidated. Checks run
// strictly one at a time in arrival order, concurrent checks for the
// same order would race on-chain.
type Reconciler struct {
	*task.Task

	caller  eth.Caller
	monitor monitoring.Monitor

	mtx     sync.Mutex
	queue   deque.Deque[*model.Offer]
	pending map[reconcileKey]struct{}

	// Nudges the consumer loop, buffered so Enqueue never blocks
	wake chan struct{}
}

func NewReconciler(config *config.Config, caller eth.Caller, monitor monitoring.Monitor) (self *Reconciler) {
	self = new(Reconciler)
	self.caller = caller
	self.monitor = monitor
	self.pending = make(map[reconcileKey]struct{})
	self.wake = make(chan struct{}, 1)

	self.Task = task.NewTask(config, "reconciler").
		WithSubtaskFunc(self.run)

	return
}

// Enqueue requests a re-check for the given offer. Requests for a token
// that is already queued or being checked coalesce into the earlier one.
func (self *Reconciler) Enqueue(offer *model.Offer) {
	key := reconcileKey{
		CollectionId:    offer.CollectionId,
		TokenId:         offer.TokenId,
		ContractAddress: offer.ContractAddress,
	}

	self.mtx.Lock()
	if _, ok := self.pending[key]; ok {
		self.mtx.Unlock()
		return
	}
	self.pending[key] = struct{}{}
	self.queue.PushBack(offer)
	self.mtx.Unlock()

	select {
	case self.wake <- struct{}{}:
	default:
	}
}

func (self *Reconciler) run() (err error) {
	for {
		select {
		case <-self.StopChannel:
			self.Log.Debug("Task stopped")
			return nil
		case <-self.wake:
		}

		for {
			self.mtx.Lock()
			if self.queue.Len() == 0 {
				self.mtx.Unlock()
				break
			}
			offer := self.queue.PopFront()
			self.mtx.Unlock()

			self.check(offer)
		}
	}
}

func (self *Reconciler) check(offer *model.Offer) {
	ctx, cancel := context.WithTimeout(self.Ctx, self.Config.Market.ReconcilerCallTimeout)
	defer cancel()

	err := self.caller.CheckApproved(ctx, offer.ContractAddress, offer.CollectionId, offer.TokenId)
	if err != nil {
		// The contract emits the corrective event itself, a failed call
		// only delays reconciliation until the next trigger
		self.Log.WithError(err).
			WithField("collection_id", offer.CollectionId).
			WithField("token_id", offer.TokenId).
			Error("Reconciliation call failed")
		self.monitor.GetReport().Market.Errors.ReconcilerCallFailures.Inc()
	} else {
		self.monitor.GetReport().Market.State.ReconcilerChecksDone.Inc()
	}

	self.mtx.Lock()
	delete(self.pending, reconcileKey{
		CollectionId:    offer.CollectionId,
		TokenId:         offer.TokenId,
		ContractAddress: offer.ContractAddress,
	})
	self.mtx.Unlock()
}
