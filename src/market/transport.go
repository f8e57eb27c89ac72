package market

import (
	"context"

	"github.com/ethereum/go-ethereum/core/types"
)

// One page of contract logs from the indexer. The cursor is opaque,
// only the indexer knows how to advance it.
type LogsPage struct {
	Logs       []types.Log
	NextCursor string
	HasNext    bool

	// Highest block the indexer has fully processed for this page
	LastBlock uint64
}

// One page of collection-wide chain events
type CollectionEventsPage struct {
	Events     []*RawCollectionEvent
	NextCursor string
	HasNext    bool
	LastBlock  uint64
}

// Transport fetches event pages from the upstream indexer.
// Implementations must treat the cursor as the single source of truth
// for pagination, callers never synthesize cursors.
type Transport interface {
	GetLogs(ctx context.Context, contractAddress string, fromBlock uint64, cursor string, limit int) (*LogsPage, error)
	GetCollectionEvents(ctx context.Context, fromBlock uint64, sections []string, cursor string, limit int) (*CollectionEventsPage, error)
}
