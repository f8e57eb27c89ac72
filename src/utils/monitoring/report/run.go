package report

import (
	"go.uber.org/atomic"
)

type RunReport struct {
	StartTimestamp atomic.Int64  `json:"start_timestamp"`
	UpForSeconds   atomic.Uint64 `json:"up_for_seconds"`
}
