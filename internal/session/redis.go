package session

// 定义与会话相关的Redis键名
const (
	// KnownSessionsKey 是一个Set，用于快速查找一个UUID是否是已知的、已激活的会话。
	// Key: known_sessions
	// Member: Session UUID
	KnownSessionsKey = "known_sessions"
)
