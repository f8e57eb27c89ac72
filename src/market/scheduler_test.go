package market

import (
	"context"
	"testing"
	"time"

	"github.com/UniqueNetwork/unique-marketplace-backend-sub000/src/utils/config"
	"github.com/UniqueNetwork/unique-marketplace-backend-sub000/src/utils/jobqueue"
	monitor_market "github.com/UniqueNetwork/unique-marketplace-backend-sub000/src/utils/monitoring/market"

	"github.com/stretchr/testify/suite"
)

func TestSchedulerTestSuite(t *testing.T) {
	suite.Run(t, new(SchedulerTestSuite))
}

type SchedulerTestSuite struct {
	suite.Suite
	ctx       context.Context
	config    *config.Config
	ledger    *Ledger
	enqueuer  *fakeEnqueuer
	scheduler *Scheduler
}

func (s *SchedulerTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.config = config.Default()

	db, err := newTestDB()
	s.Require().NoError(err)

	s.ledger = NewLedger(db, monitor_market.NewMonitor(s.config))
	s.enqueuer = newFakeEnqueuer()
	s.scheduler = NewScheduler(s.config, s.ledger, s.enqueuer, monitor_market.NewMonitor(s.config))

	s.Require().NoError(s.scheduler.Start())
}

func (s *SchedulerTestSuite) TearDownTest() {
	s.scheduler.StopWait()
}

func (s *SchedulerTestSuite) submittedJobs(num int) []*jobqueue.Job {
	s.Eventually(func() bool {
		return len(s.enqueuer.Submitted()) >= num
	}, time.Second, 10*time.Millisecond)
	return s.enqueuer.Submitted()
}

func (s *SchedulerTestSuite) TestAddTokenWithoutOfferIsLowPriority() {
	s.scheduler.AddToken(7, 42, true)

	jobs := s.submittedJobs(2)
	s.Require().Len(jobs, 2)

	names := map[string]bool{}
	for _, job := range jobs {
		names[job.Name] = true
		s.Equal("7:42", job.Key)
		s.Equal(jobqueue.PriorityLow, job.Priority)

		payload, ok := job.Payload.(*TokenJobPayload)
		s.Require().True(ok)
		s.Equal(uint32(7), payload.CollectionId)
		s.Equal(uint32(42), payload.TokenId)
		s.Equal(s.config.Market.Network, payload.Network)
	}
	s.True(names[JobCollectTokens])
	s.True(names[JobCollectProperties])
}

func (s *SchedulerTestSuite) TestAddTokenWithOpenOfferIsHighPriority() {
	listed := newOrderEvent(EventTokenListed, 1, 10, 500)
	_, _, err := s.ledger.ApplyOrderEvent(s.ctx, listed, DeriveStatus(listed))
	s.Require().NoError(err)

	s.scheduler.AddToken(7, 42, true)

	jobs := s.submittedJobs(2)
	for _, job := range jobs {
		s.Equal(jobqueue.PriorityHigh, job.Priority)
	}
}

func (s *SchedulerTestSuite) TestAddTokenWithoutPriorityCheckStaysLow() {
	listed := newOrderEvent(EventTokenListed, 1, 10, 500)
	_, _, err := s.ledger.ApplyOrderEvent(s.ctx, listed, DeriveStatus(listed))
	s.Require().NoError(err)

	s.scheduler.AddToken(7, 42, false)

	jobs := s.submittedJobs(2)
	for _, job := range jobs {
		s.Equal(jobqueue.PriorityLow, job.Priority)
	}
}

func (s *SchedulerTestSuite) TestAddTokenDroppedWhenBacklogFull() {
	conf := config.Default()
	conf.Market.SchedulerWorkerQueueSize = 0

	enqueuer := newFakeEnqueuer()
	throttled := NewScheduler(conf, s.ledger, enqueuer, monitor_market.NewMonitor(conf))
	s.Require().NoError(throttled.Start())
	defer throttled.StopWait()

	// Refresh requests are shed when the backlog is full
	throttled.AddToken(7, 42, false)

	// Escalation is never shed
	throttled.EscalateOffer(7, 42)
	s.Eventually(func() bool {
		return len(enqueuer.Escalated()) >= 2
	}, time.Second, 10*time.Millisecond)

	s.Empty(enqueuer.Submitted())
}

func (s *SchedulerTestSuite) TestEscalateOffer() {
	s.scheduler.EscalateOffer(7, 42)

	s.Eventually(func() bool {
		return len(s.enqueuer.Escalated()) >= 2
	}, time.Second, 10*time.Millisecond)

	escalated := s.enqueuer.Escalated()
	s.Contains(escalated, JobCollectTokens+":7:42")
	s.Contains(escalated, JobCollectProperties+":7:42")
	for _, id := range escalated {
		s.Equal(jobqueue.PriorityHigh, s.enqueuer.escalation[id])
	}
}
