package model

const TableContract = "contracts"

// One row per deployed marketplace contract version.
type Contract struct {
	// EVM address of the deployed contract
	Address string `gorm:"primaryKey"`

	// Contract version, selects the ABI used for decoding
	Version uint32

	// Block the contract was deployed at
	CreatedAtBlock uint64

	// Cursor of the contract's log stream. Monotonically non-decreasing,
	// updated only after a batch of events is durably applied.
	ProcessedAtBlock uint64
}

func (Contract) TableName() string {
	return TableContract
}
