package config

import (
	"time"

	"github.com/spf13/viper"
)

// JobQueue is the Redis-backed queue the metadata workers consume from.
type JobQueue struct {
	Port     uint16
	Host     string
	Password string
	DB       int

	// Queue the enrichment jobs are submitted to
	QueueName string

	SubmitTimeout time.Duration
}

func setJobQueueDefaults() {
	viper.SetDefault("JobQueue.Port", "6379")
	viper.SetDefault("JobQueue.Host", "127.0.0.1")
	viper.SetDefault("JobQueue.Password", "")
	viper.SetDefault("JobQueue.DB", "0")
	viper.SetDefault("JobQueue.QueueName", "tokens")
	viper.SetDefault("JobQueue.SubmitTimeout", "10s")
}
