package metadata

// --- SQLite metadata表中的键 ---

const (
	// LastMirroredEventIDKey 记录最近一次镜像刷新时，
	// 已经完整反映到Redis排行榜镜像中的最大ScoreEvent ID。
	LastMirroredEventIDKey = "last_mirrored_event_id"
)

// --- Redis键 ---

const (
	// RedisLastMirroredEventIDKey 是积分事件处理器在Redis中维护的实时水位线。
	// 巡查员根据它从SQLite补齐遗漏的事件。
	RedisLastMirroredEventIDKey = "engagement:last_mirrored_event_id"
)
