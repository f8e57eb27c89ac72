package config

import (
	"time"

	"github.com/spf13/viper"
)

type Market struct {
	// Network tag forwarded to enrichment jobs
	Network string

	// EVM RPC endpoint used for reconciliation calls
	RpcUrl  string
	ChainId int64

	// Hex-encoded private key of the account that submits checkApproved transactions
	SignerKey string
	GasLimit  uint64

	// Contract log listeners
	ListenerInterval        time.Duration
	ListenerPageSize        int
	ListenerBackoffInterval time.Duration
	ListenerChannelSize     int

	// Cursor store
	StoreBatchSize          int
	StoreInterval           time.Duration
	StoreMaxBackoffInterval time.Duration

	// Reconciliation queue
	ReconcilerCallTimeout time.Duration

	// Metadata refresh scheduler
	SchedulerNumWorkers      int
	SchedulerWorkerQueueSize int
}

func setMarketDefaults() {
	viper.SetDefault("Market.Network", "opal")
	viper.SetDefault("Market.RpcUrl", "http://127.0.0.1:8545")
	viper.SetDefault("Market.ChainId", "8880")
	viper.SetDefault("Market.SignerKey", "")
	viper.SetDefault("Market.GasLimit", "300000")

	viper.SetDefault("Market.ListenerInterval", "2s")
	viper.SetDefault("Market.ListenerPageSize", "1000")
	viper.SetDefault("Market.ListenerBackoffInterval", "10s")
	viper.SetDefault("Market.ListenerChannelSize", "100")

	viper.SetDefault("Market.StoreBatchSize", "100")
	viper.SetDefault("Market.StoreInterval", "2s")
	viper.SetDefault("Market.StoreMaxBackoffInterval", "30s")

	viper.SetDefault("Market.ReconcilerCallTimeout", "1m")

	viper.SetDefault("Market.SchedulerNumWorkers", "4")
	viper.SetDefault("Market.SchedulerWorkerQueueSize", "100")
}
