package metadata

// Metadata 是一张通用的键值表，用于持久化子系统级的水位线和标记。
type Metadata struct {
	Key   string `gorm:"primarykey;type:varchar(64)"`
	Value string `gorm:"type:text"`
}
