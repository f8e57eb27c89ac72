package model

const TableSetting = "settings"

const (
	// Cursor of the collection-wide extrinsic event stream
	SettingCollectionProcessedBlock = "collection_processed_at_block"
)

// Scalar key/value settings
type Setting struct {
	Key   string `gorm:"primaryKey"`
	Value string
}

func (Setting) TableName() string {
	return TableSetting
}
