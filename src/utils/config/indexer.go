package config

import (
	"time"

	"github.com/spf13/viper"
)

// Indexer is the upstream chain indexer that serves raw EVM logs per contract
// and the collection-wide extrinsic event stream.
type Indexer struct {
	Url            string
	RequestTimeout time.Duration

	// Extrinsic (section, method) pairs the collection stream is filtered by
	CollectionSections []string
}

func setIndexerDefaults() {
	viper.SetDefault("Indexer.Url", "http://127.0.0.1:3020")
	viper.SetDefault("Indexer.RequestTimeout", "30s")
	viper.SetDefault("Indexer.CollectionSections", []string{
		"common.Transfer",
		"common.Approved",
		"common.ItemDestroyed",
		"common.CollectionDestroyed",
		"common.ItemCreated",
		"common.CollectionCreated",
	})
}
