package monitor_market

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Collector struct {
	monitor *Monitor

	// Run
	UpForSeconds *prometheus.Desc

	// Errors
	DecoderUnknownContract    *prometheus.Desc
	DecoderUndecodableLog     *prometheus.Desc
	ListenerDownloadFailures  *prometheus.Desc
	LedgerApplyFailures       *prometheus.Desc
	LedgerRecordEventFailures *prometheus.Desc
	ReconcilerCallFailures    *prometheus.Desc
	SchedulerSubmitFailures   *prometheus.Desc
	StoreCursorSaveFailures   *prometheus.Desc

	// State
	ListenerLogsProcessed         *prometheus.Desc
	ListenerLastProcessedBlock    *prometheus.Desc
	CollectionEventsProcessed     *prometheus.Desc
	CollectionEventsUnrecognized  *prometheus.Desc
	LedgerOffersCreated           *prometheus.Desc
	LedgerOffersUpdated           *prometheus.Desc
	LedgerDuplicateEvents         *prometheus.Desc
	ReconcilerChecksDone          *prometheus.Desc
	SchedulerJobsSubmitted        *prometheus.Desc
	SchedulerPrioritiesEscalated  *prometheus.Desc
	StoreLastSavedBlock           *prometheus.Desc
	StoreCollectionLastSavedBlock *prometheus.Desc
}

func NewCollector() *Collector {
	return &Collector{
		UpForSeconds: prometheus.NewDesc("up_for_seconds", "", nil, nil),

		// Errors
		DecoderUnknownContract:    prometheus.NewDesc("decoder_unknown_contract", "", nil, nil),
		DecoderUndecodableLog:     prometheus.NewDesc("decoder_undecodable_log", "", nil, nil),
		ListenerDownloadFailures:  prometheus.NewDesc("listener_download_failures", "", nil, nil),
		LedgerApplyFailures:       prometheus.NewDesc("ledger_apply_failures", "", nil, nil),
		LedgerRecordEventFailures: prometheus.NewDesc("ledger_record_event_failures", "", nil, nil),
		ReconcilerCallFailures:    prometheus.NewDesc("reconciler_call_failures", "", nil, nil),
		SchedulerSubmitFailures:   prometheus.NewDesc("scheduler_submit_failures", "", nil, nil),
		StoreCursorSaveFailures:   prometheus.NewDesc("store_cursor_save_failures", "", nil, nil),

		// State
		ListenerLogsProcessed:         prometheus.NewDesc("listener_logs_processed", "", nil, nil),
		ListenerLastProcessedBlock:    prometheus.NewDesc("listener_last_processed_block", "", nil, nil),
		CollectionEventsProcessed:     prometheus.NewDesc("collection_events_processed", "", nil, nil),
		CollectionEventsUnrecognized:  prometheus.NewDesc("collection_events_unrecognized", "", nil, nil),
		LedgerOffersCreated:           prometheus.NewDesc("ledger_offers_created", "", nil, nil),
		LedgerOffersUpdated:           prometheus.NewDesc("ledger_offers_updated", "", nil, nil),
		LedgerDuplicateEvents:         prometheus.NewDesc("ledger_duplicate_events", "", nil, nil),
		ReconcilerChecksDone:          prometheus.NewDesc("reconciler_checks_done", "", nil, nil),
		SchedulerJobsSubmitted:        prometheus.NewDesc("scheduler_jobs_submitted", "", nil, nil),
		SchedulerPrioritiesEscalated:  prometheus.NewDesc("scheduler_priorities_escalated", "", nil, nil),
		StoreLastSavedBlock:           prometheus.NewDesc("store_last_saved_block", "", nil, nil),
		StoreCollectionLastSavedBlock: prometheus.NewDesc("store_collection_last_saved_block", "", nil, nil),
	}
}

func (self *Collector) WithMonitor(m *Monitor) *Collector {
	self.monitor = m
	return self
}

func (self *Collector) Describe(ch chan<- *prometheus.Desc) {
	// Run
	ch <- self.UpForSeconds

	// Errors
	ch <- self.DecoderUnknownContract
	ch <- self.DecoderUndecodableLog
	ch <- self.ListenerDownloadFailures
	ch <- self.LedgerApplyFailures
	ch <- self.LedgerRecordEventFailures
	ch <- self.ReconcilerCallFailures
	ch <- self.SchedulerSubmitFailures
	ch <- self.StoreCursorSaveFailures

	// State
	ch <- self.ListenerLogsProcessed
	ch <- self.ListenerLastProcessedBlock
	ch <- self.CollectionEventsProcessed
	ch <- self.CollectionEventsUnrecognized
	ch <- self.LedgerOffersCreated
	ch <- self.LedgerOffersUpdated
	ch <- self.LedgerDuplicateEvents
	ch <- self.ReconcilerChecksDone
	ch <- self.SchedulerJobsSubmitted
	ch <- self.SchedulerPrioritiesEscalated
	ch <- self.StoreLastSavedBlock
	ch <- self.StoreCollectionLastSavedBlock
}

func (self *Collector) Collect(ch chan<- prometheus.Metric) {
	market := self.monitor.Report.Market

	// Run
	ch <- prometheus.MustNewConstMetric(self.UpForSeconds, prometheus.CounterValue, float64(self.monitor.Report.Run.UpForSeconds.Load()))

	// Errors
	ch <- prometheus.MustNewConstMetric(self.DecoderUnknownContract, prometheus.CounterValue, float64(market.Errors.DecoderUnknownContract.Load()))
	ch <- prometheus.MustNewConstMetric(self.DecoderUndecodableLog, prometheus.CounterValue, float64(market.Errors.DecoderUndecodableLog.Load()))
	ch <- prometheus.MustNewConstMetric(self.ListenerDownloadFailures, prometheus.CounterValue, float64(market.Errors.ListenerDownloadFailures.Load()))
	ch <- prometheus.MustNewConstMetric(self.LedgerApplyFailures, prometheus.CounterValue, float64(market.Errors.LedgerApplyFailures.Load()))
	ch <- prometheus.MustNewConstMetric(self.LedgerRecordEventFailures, prometheus.CounterValue, float64(market.Errors.LedgerRecordEventFailures.Load()))
	ch <- prometheus.MustNewConstMetric(self.ReconcilerCallFailures, prometheus.CounterValue, float64(market.Errors.ReconcilerCallFailures.Load()))
	ch <- prometheus.MustNewConstMetric(self.SchedulerSubmitFailures, prometheus.CounterValue, float64(market.Errors.SchedulerSubmitFailures.Load()))
	ch <- prometheus.MustNewConstMetric(self.StoreCursorSaveFailures, prometheus.CounterValue, float64(market.Errors.StoreCursorSaveFailures.Load()))

	// State
	ch <- prometheus.MustNewConstMetric(self.ListenerLogsProcessed, prometheus.CounterValue, float64(market.State.ListenerLogsProcessed.Load()))
	ch <- prometheus.MustNewConstMetric(self.ListenerLastProcessedBlock, prometheus.GaugeValue, float64(market.State.ListenerLastProcessedBlock.Load()))
	ch <- prometheus.MustNewConstMetric(self.CollectionEventsProcessed, prometheus.CounterValue, float64(market.State.CollectionEventsProcessed.Load()))
	ch <- prometheus.MustNewConstMetric(self.CollectionEventsUnrecognized, prometheus.CounterValue, float64(market.State.CollectionEventsUnrecognized.Load()))
	ch <- prometheus.MustNewConstMetric(self.LedgerOffersCreated, prometheus.CounterValue, float64(market.State.LedgerOffersCreated.Load()))
	ch <- prometheus.MustNewConstMetric(self.LedgerOffersUpdated, prometheus.CounterValue, float64(market.State.LedgerOffersUpdated.Load()))
	ch <- prometheus.MustNewConstMetric(self.LedgerDuplicateEvents, prometheus.CounterValue, float64(market.State.LedgerDuplicateEvents.Load()))
	ch <- prometheus.MustNewConstMetric(self.ReconcilerChecksDone, prometheus.CounterValue, float64(market.State.ReconcilerChecksDone.Load()))
	ch <- prometheus.MustNewConstMetric(self.SchedulerJobsSubmitted, prometheus.CounterValue, float64(market.State.SchedulerJobsSubmitted.Load()))
	ch <- prometheus.MustNewConstMetric(self.SchedulerPrioritiesEscalated, prometheus.CounterValue, float64(market.State.SchedulerPrioritiesEscalated.Load()))
	ch <- prometheus.MustNewConstMetric(self.StoreLastSavedBlock, prometheus.GaugeValue, float64(market.State.StoreLastSavedBlock.Load()))
	ch <- prometheus.MustNewConstMetric(self.StoreCollectionLastSavedBlock, prometheus.GaugeValue, float64(market.State.StoreCollectionLastSavedBlock.Load()))
}
