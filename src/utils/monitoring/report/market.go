package report

import (
	"go.uber.org/atomic"
)

type MarketErrors struct {
	DecoderUnknownContract    atomic.Uint64 `json:"decoder_unknown_contract"`
	DecoderUndecodableLog     atomic.Uint64 `json:"decoder_undecodable_log"`
	ListenerDownloadFailures  atomic.Uint64 `json:"listener_download_failures"`
	LedgerApplyFailures       atomic.Uint64 `json:"ledger_apply_failures"`
	LedgerRecordEventFailures atomic.Uint64 `json:"ledger_record_event_failures"`
	ReconcilerCallFailures    atomic.Uint64 `json:"reconciler_call_failures"`
	SchedulerSubmitFailures   atomic.Uint64 `json:"scheduler_submit_failures"`
	StoreCursorSaveFailures   atomic.Uint64 `json:"store_cursor_save_failures"`
}

type MarketState struct {
	ListenerLogsProcessed         atomic.Uint64 `json:"listener_logs_processed"`
	ListenerLastProcessedBlock    atomic.Uint64 `json:"listener_last_processed_block"`
	CollectionEventsProcessed     atomic.Uint64 `json:"collection_events_processed"`
	CollectionEventsUnrecognized  atomic.Uint64 `json:"collection_events_unrecognized"`
	LedgerOffersCreated           atomic.Uint64 `json:"ledger_offers_created"`
	LedgerOffersUpdated           atomic.Uint64 `json:"ledger_offers_updated"`
	LedgerDuplicateEvents         atomic.Uint64 `json:"ledger_duplicate_events"`
	ReconcilerChecksDone          atomic.Uint64 `json:"reconciler_checks_done"`
	SchedulerJobsSubmitted        atomic.Uint64 `json:"scheduler_jobs_submitted"`
	SchedulerPrioritiesEscalated  atomic.Uint64 `json:"scheduler_priorities_escalated"`
	StoreLastSavedBlock           atomic.Uint64 `json:"store_last_saved_block"`
	StoreCollectionLastSavedBlock atomic.Uint64 `json:"store_collection_last_saved_block"`
}

type MarketReport struct {
	State  MarketState  `json:"state"`
	Errors MarketErrors `json:"errors"`
}
