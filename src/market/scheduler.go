package market

import (
	"fmt"

	"github.com/UniqueNetwork/unique-marketplace-backend-sub000/src/utils/config"
	"github.com/UniqueNetwork/unique-marketplace-backend-sub000/src/utils/jobqueue"
	"github.com/UniqueNetwork/unique-marketplace-backend-sub000/src/utils/monitoring"
	"github.com/UniqueNetwork/unique-marketplace-backend-sub000/src/utils/task"
)

const (
	JobCollectTokens     = "collectTokens"
	JobCollectProperties = "collectProperties"
)

// Payload of a metadata refresh job, consumed by the external workers
type TokenJobPayload struct {
	CollectionId uint32 `json:"collectionId"`
	TokenId      uint32 `json:"tokenId"`
	Network      string `json:"network"`
}

// Scheduler feeds the metadata refresh queue. Tokens without a live
// offer go in at low priority, tokens someone is actively trading get
// bumped to the front.
type Scheduler struct {
	*task.Task

	ledger   *Ledger
	enqueuer jobqueue.Enqueuer
	monitor  monitoring.Monitor
}

func NewScheduler(config *config.Config, ledger *Ledger, enqueuer jobqueue.Enqueuer, monitor monitoring.Monitor) (self *Scheduler) {
	self = new(Scheduler)
	self.ledger = ledger
	self.enqueuer = enqueuer
	self.monitor = monitor

	self.Task = task.NewTask(config, "scheduler").
		WithWorkerPool(config.Market.SchedulerNumWorkers, config.Market.SchedulerWorkerQueueSize).
		WithSubtaskFunc(self.run)

	return
}

// Keeps the task alive so the worker pool only drains on Stop
func (self *Scheduler) run() error {
	<-self.StopChannel
	self.Log.Debug("Task stopped")
	return nil
}

func jobKey(collectionId, tokenId uint32) string {
	return fmt.Sprintf("%d:%d", collectionId, tokenId)
}

// AddToken schedules a metadata refresh for the token. With
// checkPriority set the ledger decides the priority, tokens that are
// currently for sale jump the queue.
//
// Refreshes are best-effort: when the worker backlog is full the request
// is dropped, the next event touching the token schedules it again.
func (self *Scheduler) AddToken(collectionId, tokenId uint32, checkPriority bool) {
	self.SubmitToWorkerIfEmpty(func() {
		priority := jobqueue.PriorityLow

		if checkPriority {
			hasOffer, err := self.ledger.HasOpenOffer(self.Ctx, collectionId, tokenId)
			if err != nil {
				// Priority is best-effort, fall back to low rather than drop the job
				self.Log.WithError(err).Warn("Failed to check offer priority")
			} else if hasOffer {
				priority = jobqueue.PriorityHigh
			}
		}

		self.submit(collectionId, tokenId, priority)
	})
}

// EscalateOffer bumps the pending refresh jobs of a token that just got
// a live offer. Jobs that already left the queue are left alone, the
// workers are processing them anyway.
func (self *Scheduler) EscalateOffer(collectionId, tokenId uint32) {
	self.SubmitToWorker(func() {
		key := jobKey(collectionId, tokenId)
		for _, name := range []string{JobCollectTokens, JobCollectProperties} {
			err := self.enqueuer.Escalate(self.Ctx, name, key, jobqueue.PriorityHigh)
			if err != nil {
				self.Log.WithError(err).WithField("job", name+":"+key).Error("Failed to escalate job")
				self.monitor.GetReport().Market.Errors.SchedulerSubmitFailures.Inc()
				continue
			}
			self.monitor.GetReport().Market.State.SchedulerPrioritiesEscalated.Inc()
		}
	})
}

func (self *Scheduler) submit(collectionId, tokenId uint32, priority jobqueue.Priority) {
	key := jobKey(collectionId, tokenId)
	payload := &TokenJobPayload{
		CollectionId: collectionId,
		TokenId:      tokenId,
		Network:      self.Config.Market.Network,
	}

	for _, name := range []string{JobCollectTokens, JobCollectProperties} {
		err := self.enqueuer.Submit(self.Ctx, &jobqueue.Job{
			Name:     name,
			Key:      key,
			Priority: priority,
			Payload:  payload,
		})
		if err != nil {
			self.Log.WithError(err).WithField("job", name+":"+key).Error("Failed to submit job")
			self.monitor.GetReport().Market.Errors.SchedulerSubmitFailures.Inc()
			continue
		}
		self.monitor.GetReport().Market.State.SchedulerJobsSubmitted.Inc()
	}
}
